package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	orgio "github.com/matzehuels/orgtower/pkg/io"
	"github.com/matzehuels/orgtower/pkg/pipeline"
)

// buildOpts holds the command-line flags for the build command.
type buildOpts struct {
	layoutFlags
	output      string // output file or base path for multiple formats
	formats     string // comma-separated output formats
	title       string // chart title; defaults to the account name
	showRoot    bool   // draw the synthetic root box
	interactive bool   // embed hover and drag scripts in SVG output
	details     bool   // show department and seniority in SVG boxes
	refresh     bool   // recompute the layout even when cached
}

func (c *CLI) buildCommand() *cobra.Command {
	var opts buildOpts

	cmd := &cobra.Command{
		Use:   "build [analysis]",
		Short: "Render an analysis as an org chart",
		Long: `Build reconciles the contacts of an analysis file (.json or .toml) into a
single reporting tree and writes it in one or more formats.

Unknown managers, self-managed contacts and reporting cycles are repaired by
attaching the affected contacts to a synthetic root; the repairs are listed
after the build.`,
		Example: `  orgtower build acme.json
  orgtower build acme.json -f svg,json -o charts/acme
  orgtower build acme.toml --department Engineering --interactive`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runBuild(cmd.Context(), args[0], &opts)
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&opts.formats, "format", "f", "", "output format(s): svg (default), json, dot, graphviz (comma-separated)")
	cmd.Flags().StringVar(&opts.title, "title", "", "chart title (default: account name)")
	cmd.Flags().BoolVar(&opts.showRoot, "show-root", false, "draw the synthetic root")
	cmd.Flags().BoolVar(&opts.interactive, "interactive", false, "embed hover highlighting and dragging in SVG output")
	cmd.Flags().BoolVar(&opts.details, "details", false, "show department and seniority in boxes")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "ignore cached layouts")

	return cmd
}

func (c *CLI) runBuild(ctx context.Context, input string, opts *buildOpts) error {
	prog := newProgress(c.Logger)

	a, err := orgio.ImportAnalysis(input)
	if err != nil {
		return err
	}
	c.Logger.Debug("loaded analysis", "file", input, "contacts", len(a.Contacts))

	runner, err := c.newRunner(opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	popts := opts.options()
	popts.Formats = parseFormats(opts.formats)
	popts.ShowRoot = opts.showRoot
	popts.Interactive = opts.interactive
	popts.Details = opts.details
	popts.Refresh = opts.refresh
	popts.Title = opts.title
	if popts.Title == "" {
		popts.Title = a.AccountName
	}

	result, err := runner.Execute(ctx, a, popts)
	if err != nil {
		return err
	}

	paths, err := writeArtifacts(result.Artifacts, opts.output, input, popts.Formats)
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Built %d contacts", result.Stats.Nodes))

	name := a.AccountName
	if name == "" {
		name = input
	}
	printSuccess("Charted %s", name)
	fmt.Println(statsLine(result.Stats, result.CacheInfo.LayoutHit))
	printReport(result.Report)
	for _, p := range paths {
		printFile(p)
	}
	printNextStep("Edit interactively", fmt.Sprintf("%s explore %s", appName, input))
	return nil
}

// writeArtifacts writes each artifact and returns the written paths in
// format order. A single format with an explicit output is written to
// output verbatim; otherwise each format gets its extension appended to the
// base path.
func writeArtifacts(artifacts map[string][]byte, output, input string, formats []string) ([]string, error) {
	base := basePath(output, input)
	paths := make([]string, 0, len(formats))
	for _, f := range formats {
		path := base + pipeline.Extensions[f]
		if len(formats) == 1 && output != "" {
			path = output
		}
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create output dir: %w", err)
			}
		}
		if err := os.WriteFile(path, artifacts[f], 0o644); err != nil {
			return nil, fmt.Errorf("write %s: %w", f, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
