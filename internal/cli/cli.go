package cli

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/orgtower/pkg/buildinfo"
	"github.com/matzehuels/orgtower/pkg/cache"
	"github.com/matzehuels/orgtower/pkg/layout"
	"github.com/matzehuels/orgtower/pkg/pipeline"
)

const appName = "orgtower"

// Log levels accepted by New and SetLogLevel.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI is shared by every subcommand.
type CLI struct {
	Logger *log.Logger
}

// New returns a CLI logging to w at level.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand returns the orgtower command tree.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Orgtower turns stakeholder lists into org charts",
		Long:         `Orgtower reconciles extracted stakeholder lists into a single reporting hierarchy, lays it out as an org chart and lets you edit it by deleting contacts or dragging boxes.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.AddCommand(
		c.buildCommand(),
		c.deleteCommand(),
		c.analyzeCommand(),
		c.exploreCommand(),
		c.serveCommand(),
		c.cacheCommand(),
		c.completionCommand(),
	)
	return root
}

// newRunner creates a pipeline runner for CLI use. Cache keys are scoped to
// the build version so an upgrade never reads layouts from an older release.
func (c *CLI) newRunner(noCache bool) (*pipeline.Runner, error) {
	ch, err := newCache(noCache)
	if err != nil {
		return nil, err
	}
	keyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), buildinfo.Version)
	return pipeline.NewRunner(ch, keyer, c.Logger), nil
}

func newCache(noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// cacheDir is $XDG_CACHE_HOME/orgtower, falling back to ~/.cache/orgtower.
func cacheDir() (string, error) { return xdgDir("XDG_CACHE_HOME", ".cache") }

// sessionDir holds file-backed sessions under the XDG config home.
func sessionDir() (string, error) {
	dir, err := xdgDir("XDG_CONFIG_HOME", ".config")
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "sessions"), nil
}

func xdgDir(env, fallback string) (string, error) {
	if base := os.Getenv(env); base != "" {
		return filepath.Join(base, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, fallback, appName), nil
}

// layoutFlags are the flags shared by every command that lays out a chart.
type layoutFlags struct {
	department string
	nodeWidth  float64
	nodeHeight float64
	vSpacing   float64
	hSpacing   float64
	noCache    bool
}

func (f *layoutFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.department, "department", "", "only chart contacts in this department (exact match)")
	cmd.Flags().Float64Var(&f.nodeWidth, "node-width", layout.DefaultNodeWidth, "box width")
	cmd.Flags().Float64Var(&f.nodeHeight, "node-height", layout.DefaultNodeHeight, "box height")
	cmd.Flags().Float64Var(&f.vSpacing, "vertical-spacing", layout.DefaultVerticalSpacing, "gap between levels")
	cmd.Flags().Float64Var(&f.hSpacing, "horizontal-spacing", layout.DefaultHorizontalSpacing, "gap between siblings")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable the layout cache")
}

func (f *layoutFlags) options() pipeline.Options {
	return pipeline.Options{
		Department:        f.department,
		NodeWidth:         f.nodeWidth,
		NodeHeight:        f.nodeHeight,
		VerticalSpacing:   f.vSpacing,
		HorizontalSpacing: f.hSpacing,
	}
}

// parseFormats splits a comma list, defaulting to svg.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// basePath derives the output base path. Without an explicit output, the
// input's extension is stripped. A known format extension on output is
// stripped as well.
func basePath(output, input string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}
