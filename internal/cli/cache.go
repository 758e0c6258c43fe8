package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/orgtower/pkg/cache"
)

func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or empty the on-disk layout and chart cache",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "clear",
			Short: "Remove every cached layout and chart",
			Args:  cobra.NoArgs,
			RunE:  func(*cobra.Command, []string) error { return clearCache() },
		},
		&cobra.Command{
			Use:   "path",
			Short: "Print where cached entries live",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				dir, err := cacheDir()
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), dir)
				return nil
			},
		},
	)
	return cmd
}

func clearCache() error {
	dir, err := cacheDir()
	if err != nil {
		return err
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		printInfo("Nothing cached yet")
		return nil
	}

	fc, err := cache.NewFileCache(dir)
	if err != nil {
		return err
	}
	n, err := fc.Clear()
	if err != nil {
		return fmt.Errorf("clear %s: %w", dir, err)
	}
	noun := "entries"
	if n == 1 {
		noun = "entry"
	}
	printSuccess("Removed %d cached %s", n, noun)
	printDetail("Directory: %s", dir)
	return nil
}
