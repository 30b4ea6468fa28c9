// Package report renders a completed run as a text summary and JSON exports.
package report

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gonum.org/v1/gonum/stat"

	"github.com/usestring/critpath/internal/pipeline"
	"github.com/usestring/critpath/pkg/types"
)

// printer formats counts in the summary header.
var printer = message.NewPrinter(language.English)

// Paths are the files written for one run.
type Paths struct {
	Summary          string `json:"summary"`
	CriticalPaths    string `json:"critical_paths"`
	InteractionStats string `json:"interaction_stats"`
	CallContext      string `json:"call_context,omitempty"`
}

// OutputPaths derives the export file names from the summary file name.
func OutputPaths(summaryFile string, withCCT bool) Paths {
	base := strings.TrimSuffix(summaryFile, ".txt")
	p := Paths{
		Summary:          summaryFile,
		CriticalPaths:    base + "_all_critical_paths.json",
		InteractionStats: base + "_interaction_stats.json",
	}
	if withCCT {
		p.CallContext = base + "_call_context.json"
	}
	return p
}

// Summarizer renders run results.
type Summarizer struct {
	// IntervalMinutes, when positive, labels interval i as "i*m-(i+1)*m min".
	IntervalMinutes int
	// ExportCCT also writes the call-context export.
	ExportCCT bool
}

// IntervalLabel names an interval in human-readable output.
func (s *Summarizer) IntervalLabel(index int) string {
	if s.IntervalMinutes > 0 {
		return fmt.Sprintf("%d-%dmin", index*s.IntervalMinutes, (index+1)*s.IntervalMinutes)
	}
	return fmt.Sprintf("interval %d", index)
}

// WriteSummary writes the text summary.
func (s *Summarizer) WriteSummary(w io.Writer, res *pipeline.Result) error {
	bw := bufio.NewWriter(w)

	printer.Fprintf(bw, "Number of unique traces: %d\n", res.TraceCount())
	printer.Fprintf(bw, "Number of unique critical paths: %d\n", len(res.UniquePaths()))
	printer.Fprintf(bw, "High variation interactions: %d\n\n", len(res.Report.Flagged))

	if len(res.Report.Flagged) > 0 {
		fmt.Fprintln(bw, "High Variation Interactions:")
		for _, key := range res.Report.Flagged {
			f := res.Report.Findings[key]
			path, ok := res.ExamplePath(key)
			if !ok {
				path = "No path"
			}
			fmt.Fprintf(bw, "Interaction: %s, Peak Std RT: %.2f ms (%s), Baseline Std RT: %.2f ms, Critical path: %s\n",
				key, f.PeakStdDev, s.IntervalLabel(f.PeakInterval), f.BaselineSpread, path)
		}
		fmt.Fprintln(bw)
	}

	if len(res.Skipped) > 0 || res.FailureCount() > 0 {
		fmt.Fprintln(bw, "Processing Issues:")
		for _, sk := range res.Skipped {
			fmt.Fprintf(bw, "Skipped %s (%s): %s\n", s.IntervalLabel(sk.Interval), sk.Source, sk.Error)
		}
		if n := res.FailureCount(); n > 0 {
			fmt.Fprintf(bw, "Traces excluded after reconstruction failure: %d\n", n)
		}
		fmt.Fprintln(bw)
	}

	fmt.Fprintln(bw, "Detailed Interaction Stats:")
	for _, key := range res.Keys() {
		st := res.Stats[key]
		fmt.Fprintf(bw, "Interaction: %s, Mean RT: %.2f ms, Std RT: %.2f ms, Count: %d\n",
			key, stat.Mean(st.Means, nil), stat.Mean(st.StdDevs, nil), st.TotalCount())
	}

	return bw.Flush()
}

// WriteAll writes the summary and the exports next to summaryFile.
func (s *Summarizer) WriteAll(res *pipeline.Result, summaryFile string) (Paths, error) {
	paths := OutputPaths(summaryFile, s.ExportCCT)

	if dir := filepath.Dir(summaryFile); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return paths, fmt.Errorf("creating output directory: %w", err)
		}
	}

	if err := writeJSONFile(paths.CriticalPaths, BuildCriticalPathsExport(res)); err != nil {
		return paths, err
	}
	if err := writeJSONFile(paths.InteractionStats, BuildInteractionStatsExport(res)); err != nil {
		return paths, err
	}
	if paths.CallContext != "" {
		if err := writeJSONFile(paths.CallContext, BuildCallContextExport(res)); err != nil {
			return paths, err
		}
	}

	f, err := os.Create(paths.Summary)
	if err != nil {
		return paths, fmt.Errorf("creating summary: %w", err)
	}
	if err := s.WriteSummary(f, res); err != nil {
		f.Close()
		return paths, fmt.Errorf("writing summary: %w", err)
	}
	if err := f.Close(); err != nil {
		return paths, fmt.Errorf("closing summary: %w", err)
	}

	slog.Info("summary saved",
		slog.String("summary", paths.Summary),
		slog.String("critical_paths", paths.CriticalPaths),
		slog.String("interaction_stats", paths.InteractionStats),
	)
	return paths, nil
}

func writeJSONFile(path string, v any) error {
	data, err := types.MarshalIndent(v, "    ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
