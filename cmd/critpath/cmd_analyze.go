package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/usestring/critpath/internal/batch"
	"github.com/usestring/critpath/internal/ingest"
	"github.com/usestring/critpath/internal/pipeline"
	"github.com/usestring/critpath/internal/report"
	"github.com/usestring/critpath/internal/variation"
)

func newAnalyzeCmd(a *app) *cobra.Command {
	var (
		workers         int
		factor          float64
		output          string
		exportCCT       bool
		intervalMinutes int
		quiet           bool
	)

	cmd := &cobra.Command{
		Use:   "analyze <interval.csv>...",
		Short: "Analyze interval files and write the summary and JSON exports",
		Long: `Analyze reads one CSV file per interval, in order; the position of a file on
the command line is its interval index. Files that cannot be read are skipped
and keep their index. Writes <output>, <output>_all_critical_paths.json and
<output>_interaction_stats.json (plus <output>_call_context.json with
--export-cct).`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.cfg
			flags := cmd.Flags()
			if flags.Changed("workers") {
				cfg.Workers = workers
			}
			if flags.Changed("factor") {
				cfg.HighVariationFactor = factor
			}
			if flags.Changed("output") {
				cfg.OutputFile = output
			}
			if flags.Changed("export-cct") {
				cfg.ExportCCT = exportCCT
			}
			if flags.Changed("interval-minutes") {
				cfg.IntervalMinutes = intervalMinutes
			}
			if cfg.HighVariationFactor <= 0 {
				return fmt.Errorf("factor must be positive, got %g", cfg.HighVariationFactor)
			}

			loader, err := ingest.NewLoader(cfg.BatchCacheMaxItems)
			if err != nil {
				return err
			}
			runner := pipeline.NewRunner(loader, batch.New(cfg.Workers), variation.NewDetector(cfg.HighVariationFactor))
			res, err := runner.Run(cmd.Context(), pipeline.InputsFromPaths(args))
			if err != nil {
				return err
			}
			if len(res.Intervals) == 0 {
				return fmt.Errorf("none of the %d inputs could be read", len(args))
			}

			summarizer := &report.Summarizer{IntervalMinutes: cfg.IntervalMinutes, ExportCCT: cfg.ExportCCT}
			paths, err := summarizer.WriteAll(res, cfg.OutputFile)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if !quiet {
				if err := summarizer.WriteSummary(out, res); err != nil {
					return err
				}
				fmt.Fprintln(out)
			}
			fmt.Fprintf(out, "Summary saved to %s\n", paths.Summary)
			fmt.Fprintf(out, "Critical paths saved to %s\n", paths.CriticalPaths)
			fmt.Fprintf(out, "Interaction stats saved to %s\n", paths.InteractionStats)
			if paths.CallContext != "" {
				fmt.Fprintf(out, "Call context trees saved to %s\n", paths.CallContext)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "worker pool size per interval, capped at 10 and GOMAXPROCS (overrides WORKERS)")
	cmd.Flags().Float64Var(&factor, "factor", 0, "high-variation factor (overrides HIGH_VARIATION_FACTOR)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "summary file; exports are written next to it (overrides OUTPUT_FILE)")
	cmd.Flags().BoolVar(&exportCCT, "export-cct", false, "also export call context trees (overrides EXPORT_CCT)")
	cmd.Flags().IntVar(&intervalMinutes, "interval-minutes", 0, "label intervals as minute ranges (overrides INTERVAL_MINUTES)")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "do not print the summary")
	return cmd
}
