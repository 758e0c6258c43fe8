package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/matzehuels/orgtower/internal/server"
	"github.com/matzehuels/orgtower/pkg/buildinfo"
	"github.com/matzehuels/orgtower/pkg/cache"
	"github.com/matzehuels/orgtower/pkg/pipeline"
	"github.com/matzehuels/orgtower/pkg/session"
)

// serveOpts holds the command-line flags for the serve command.
type serveOpts struct {
	layoutFlags
	addr     string // listen address
	redisURL string // shared session store and layout cache
	store    string // memory, file or redis
	dir      string // directory for the file store
}

func (c *CLI) serveCommand() *cobra.Command {
	opts := serveOpts{addr: server.DefaultAddr, store: "memory"}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve analysis sessions over HTTP",
		Long: `Serve runs the HTTP API: clients create a session from an analysis, then
delete contacts, drag boxes and change the department filter. Every change
returns the updated chart document.

With --redis, sessions and layouts are shared between instances.`,
		Example: `  orgtower serve
  orgtower serve --addr :9000 --store file
  orgtower serve --redis redis://localhost:6379/0`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), &opts)
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVar(&opts.addr, "addr", opts.addr, "listen address")
	cmd.Flags().StringVar(&opts.redisURL, "redis", "", "redis URL for sessions and the layout cache (implies --store redis)")
	cmd.Flags().StringVar(&opts.store, "store", opts.store, "session store: memory, file, redis")
	cmd.Flags().StringVar(&opts.dir, "sessions-dir", "", "directory for the file store (default: ~/.config/orgtower/sessions)")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, opts *serveOpts) error {
	if opts.redisURL != "" {
		opts.store = "redis"
	}

	store, err := c.openStore(ctx, opts)
	if err != nil {
		return err
	}
	if err := store.Cleanup(ctx); err != nil {
		c.Logger.Warn("session cleanup failed", "error", err)
	}

	runner, err := c.serveRunner(ctx, opts)
	if err != nil {
		store.Close()
		return err
	}
	defer runner.Close()

	popts := opts.options()
	popts.Logger = c.Logger
	manager := session.NewManager(store, runner, popts)
	defer manager.Close()

	printInfo("Serving on %s (%s sessions)", styleText.Render(opts.addr), opts.store)
	return server.New(manager, c.Logger).ListenAndServe(ctx, opts.addr)
}

func (c *CLI) openStore(ctx context.Context, opts *serveOpts) (session.Store, error) {
	switch opts.store {
	case "memory":
		return session.NewMemoryStore(), nil
	case "file":
		dir := opts.dir
		if dir == "" {
			d, err := sessionDir()
			if err != nil {
				return nil, err
			}
			dir = d
		}
		return session.NewFileStore(dir)
	case "redis":
		if opts.redisURL == "" {
			return nil, errRedisURL
		}
		return session.NewRedisStore(ctx, opts.redisURL)
	default:
		return nil, errUnknownStore(opts.store)
	}
}

// serveRunner shares the layout cache through redis when configured and
// falls back to the local file cache otherwise.
func (c *CLI) serveRunner(ctx context.Context, opts *serveOpts) (*pipeline.Runner, error) {
	if opts.redisURL == "" || opts.noCache {
		return c.newRunner(opts.noCache)
	}
	rc, err := cache.NewRedisCache(ctx, opts.redisURL)
	if err != nil {
		return nil, err
	}
	keyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), buildinfo.Version)
	return pipeline.NewRunner(rc, keyer, c.Logger), nil
}
