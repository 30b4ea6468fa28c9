package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/usestring/critpath/internal/ingest"
)

func newCleanCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "clean <input.csv> <output.csv>",
		Short: "Drop traces with unparseable response times and incomplete rows",
		Long: `Clean removes every record of a trace that has any non-numeric response time,
then every row with an empty field, and writes the rest with the canonical
header (trace_id,timestamp,upstream_module,downstream_module,response_time).`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			stats, err := ingest.CleanFile(args[0], args[1])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Initial records: %d\n", stats.Initial)
			if stats.BadLines > 0 {
				fmt.Fprintf(out, "Malformed lines skipped: %d\n", stats.BadLines)
			}
			fmt.Fprintf(out, "Removed (invalid response time): %d\n", stats.RemovedInvalidRT)
			fmt.Fprintf(out, "Removed (incomplete): %d\n", stats.RemovedIncomplete)
			fmt.Fprintf(out, "Removed total: %d (%.2f%%)\n", stats.Removed(), stats.PercentRemoved())
			fmt.Fprintf(out, "Remaining records: %d\n", stats.Remaining)
			fmt.Fprintf(out, "Cleaned dataset saved to %s\n", args[1])
			return nil
		},
	}
}
