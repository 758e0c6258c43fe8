package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/orgtower/pkg/contact"
	"github.com/matzehuels/orgtower/pkg/errors"
	orgio "github.com/matzehuels/orgtower/pkg/io"
	"github.com/matzehuels/orgtower/pkg/mutate"
)

func (c *CLI) deleteCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "delete [analysis] [id...]",
		Short: "Delete contacts and bridge their reports to their manager",
		Long: `Delete removes every contact with the given ids from an analysis. Their
direct reports move up to the deleted contact's own manager, so nobody is
orphaned. Unknown ids are skipped with a warning.

The analysis is rewritten in place unless --output is given.`,
		Example: `  orgtower delete acme.json cto
  orgtower delete acme.toml intern1 intern2 -o trimmed.toml`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runDelete(args[0], args[1:], output)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: overwrite input)")
	return cmd
}

func (c *CLI) runDelete(input string, ids []string, output string) error {
	for _, id := range ids {
		if err := errors.ValidateContactID(id); err != nil {
			return err
		}
	}

	a, err := orgio.ImportAnalysis(input)
	if err != nil {
		return err
	}

	a, deleted := deleteContacts(a, ids, func(id string, found bool, bridged int) {
		if !found {
			printWarning("No contact with id %q", id)
			return
		}
		c.Logger.Debug("deleted contact", "id", id, "bridged", bridged)
		printSuccess("Deleted %s", id)
		if bridged > 0 {
			printDetail("%d reports moved up", bridged)
		}
	})

	if output == "" {
		output = input
	}
	if deleted == 0 && output == input {
		printInfo("Nothing to write")
		return nil
	}
	if err := orgio.ExportAnalysis(a, output); err != nil {
		return err
	}
	printFile(output)
	printNextStep("Render the result", fmt.Sprintf("%s build %s", appName, output))
	return nil
}

// deleteContacts applies mutate.Delete for each id in order and reports
// each outcome to fn. It returns the result and how many ids matched.
func deleteContacts(a contact.Analysis, ids []string, fn func(id string, found bool, bridged int)) (contact.Analysis, int) {
	deleted := 0
	for _, id := range ids {
		bridged := len(mutate.Reports(a, id))
		var found bool
		a, found = mutate.Delete(a, id)
		if found {
			deleted++
		} else {
			bridged = 0
		}
		fn(id, found, bridged)
	}
	return a, deleted
}
