package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/orgtower/pkg/extract"
	orgio "github.com/matzehuels/orgtower/pkg/io"
)

func (c *CLI) analyzeCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "analyze [document...]",
		Short: "Merge extraction documents into one analysis",
		Long: `Analyze reads one or more extraction documents (JSON or TOML analyses,
typically one per meeting transcript) and merges them in argument order: the
first non-empty account name wins, summaries and findings are concatenated
and contacts are appended.

Without --output the merged analysis is written to stdout as JSON.`,
		Example: `  orgtower analyze call1.json call2.json -o acme.json`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runAnalyze(cmd.Context(), args, output)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (.json or .toml)")
	return cmd
}

func (c *CLI) runAnalyze(ctx context.Context, paths []string, output string) error {
	docs, err := extract.ReadDocuments(ctx, paths)
	if err != nil {
		return err
	}

	prog := newProgress(c.Logger)
	sp := startSpinner(ctx, "Extracting stakeholders")
	var coord extract.Coordinator
	a, _, err := coord.Run(ctx, extract.StaticExtractor{}, docs)
	sp.stop()
	if err != nil {
		return err
	}
	prog.done("Extracted " + pluralize(len(a.Contacts), "contact") + " from " + pluralize(len(docs), "document"))

	if output == "" {
		return orgio.WriteAnalysis(a, os.Stdout, orgio.FormatJSON)
	}
	if err := orgio.ExportAnalysis(a, output); err != nil {
		return err
	}
	printSuccess("Merged %s", pluralize(len(docs), "document"))
	printFile(output)
	printNextStep("Render it", appName+" build "+output)
	return nil
}
