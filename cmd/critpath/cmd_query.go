package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/usestring/critpath/internal/query"
	"github.com/usestring/critpath/internal/report"
)

func newQueryCmd(a *app) *cobra.Command {
	var (
		deduplicate bool
		maxResults  int
	)

	cmd := &cobra.Command{
		Use:   "query <jq-expression> <export.json>...",
		Short: "Run a jq expression over export files",
		Long: `Query evaluates a jq expression against each export file and prints one JSON
value per line. Inside the expression $source is the export kind when the
file name identifies one, otherwise the file path.`,
		Example: `  critpath query '.["0"] | to_entries[] | select(.value.critical_path | contains("db")) | .key' run_all_critical_paths.json
  critpath query 'to_entries[] | {key, peak: (.value.stds | max)}' run_interaction_stats.json`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			limit := a.cfg.QueryMaxResults
			if cmd.Flags().Changed("max-results") {
				limit = maxResults
			}
			engine := query.NewEngine(limit)
			if err := engine.ValidateExpression(args[0]); err != nil {
				return err
			}

			docs := make([]query.Document, 0, len(args)-1)
			for _, path := range args[1:] {
				data, err := os.ReadFile(path)
				if err != nil {
					return err
				}
				label := path
				if kind, err := report.ParseKind(path); err == nil {
					label = string(kind)
				}
				doc, err := query.ParseDocument(label, data)
				if err != nil {
					return err
				}
				docs = append(docs, doc)
			}

			result, err := engine.Run(cmd.Context(), args[0], deduplicate, docs...)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetEscapeHTML(false)
			for _, v := range result.Values {
				if err := enc.Encode(v); err != nil {
					return err
				}
			}
			for _, msg := range result.Errors {
				fmt.Fprintln(cmd.ErrOrStderr(), msg)
			}
			if result.Truncated {
				fmt.Fprintf(cmd.ErrOrStderr(), "results truncated at %d values\n", engine.MaxResults())
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&deduplicate, "dedupe", "d", false, "drop duplicate values")
	cmd.Flags().IntVarP(&maxResults, "max-results", "n", 0, "max values to print (overrides QUERY_MAX_RESULTS)")
	return cmd
}
