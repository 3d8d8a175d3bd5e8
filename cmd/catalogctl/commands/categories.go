// cmd/catalogctl/commands/categories.go
package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "Category tree maintenance",
}

// categoriesCheckCmd verifies that parent pointers and child lists agree
var categoriesCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify parent and child links agree",
	Long: `Walk every category and report links that disagree: a child listed by a
parent it does not point to, a parent pointer missing from the parent's child
list, or a reference to a category that no longer exists.

Run "catalogctl journal replay" first; a link still waiting in the journal
shows up here until it is applied.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		problems, err := a.Categories.CheckIntegrity(cmd.Context())
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), problems)
		}
		for _, p := range problems {
			fmt.Fprintln(cmd.OutOrStdout(), p)
		}
		if len(problems) > 0 {
			return fmt.Errorf("%d inconsistencies found", len(problems))
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Category tree is consistent")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(categoriesCmd)
	categoriesCmd.AddCommand(categoriesCheckCmd)
}
