// cmd/catalogctl/commands/journal.go
package commands

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

var (
	// Journal flags
	journalLimit int
)

// journalCmd groups commands over pending cross-aggregate operations
var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Inspect and replay pending operations",
	Long: `Operations are recorded before a write that spans two aggregates and removed
once the second write lands. Anything listed here is still waiting.

Subcommands:
  list    - Show pending operations
  replay  - Apply pending operations now`,
}

var journalListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show pending operations",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		ops, err := a.Journal.Pending(cmd.Context(), journalLimit)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), ops)
		}
		if len(ops) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No pending operations")
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tKIND\tAGGREGATE\tSUBJECT\tATTEMPTS\tAGE\tLAST ERROR")
		for _, op := range ops {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\t%s\n",
				op.ID, op.Kind, op.AggregateID, op.SubjectID, op.Attempts,
				time.Since(op.CreatedAt).Round(time.Second), op.LastError)
		}
		return w.Flush()
	},
}

var journalReplayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Apply pending operations now",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		result, err := a.Journal.Replay(cmd.Context(), journalLimit)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), result)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Attempted %d, completed %d, failed %d\n",
			result.Attempted, result.Completed, result.Failed)
		if result.Failed > 0 {
			return fmt.Errorf("%d operations still pending", result.Failed)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(journalCmd)
	journalCmd.AddCommand(journalListCmd, journalReplayCmd)

	journalCmd.PersistentFlags().IntVar(&journalLimit, "limit", 100, "Maximum operations to process")
}
