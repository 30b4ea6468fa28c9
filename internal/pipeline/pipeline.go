// Package pipeline drives a full analysis run: intervals are loaded and
// reconstructed one after another, then aggregated and screened for anomalies.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/usestring/critpath/internal/batch"
	"github.com/usestring/critpath/internal/callgraph"
	"github.com/usestring/critpath/internal/ingest"
	"github.com/usestring/critpath/internal/variation"
)

// BatchSource loads the validated call-record table of one interval.
type BatchSource interface {
	Load(ctx context.Context, path string) (*ingest.Batch, error)
}

// Input names one interval's source.
type Input struct {
	Index int
	Path  string
}

// InputsFromPaths assigns interval indices by position.
func InputsFromPaths(paths []string) []Input {
	inputs := make([]Input, len(paths))
	for i, p := range paths {
		inputs[i] = Input{Index: i, Path: p}
	}
	return inputs
}

// Runner executes analysis runs.
type Runner struct {
	source    BatchSource
	processor *batch.Processor
	detector  *variation.Detector
}

// NewRunner creates a Runner.
func NewRunner(source BatchSource, processor *batch.Processor, detector *variation.Detector) *Runner {
	return &Runner{
		source:    source,
		processor: processor,
		detector:  detector,
	}
}

// Run processes inputs in order. An interval whose input cannot be loaded is
// skipped and reported; the run continues with the next one. Only context
// cancellation aborts the run.
func (r *Runner) Run(ctx context.Context, inputs []Input) (*Result, error) {
	start := time.Now()
	acc := variation.NewAccumulator()
	res := newResult()

	for _, in := range inputs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		b, err := r.source.Load(ctx, in.Path)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			slog.Warn("skipping interval: input unavailable",
				slog.Int("interval", in.Index),
				slog.String("path", in.Path),
				slog.String("error", err.Error()),
			)
			res.Skipped = append(res.Skipped, Skipped{Interval: in.Index, Source: in.Path, Error: err.Error()})
			continue
		}
		res.Ingest[in.Index] = b.Stats

		traces := callgraph.Partition(b.Records)
		ir, err := r.processor.Process(ctx, in.Index, traces)
		if err != nil {
			return nil, fmt.Errorf("processing interval %d: %w", in.Index, err)
		}

		acc.Add(ir)
		res.Intervals = append(res.Intervals, ir)
	}

	res.Accumulator = acc
	res.Stats = acc.Stats()
	res.Report = r.detector.Detect(res.Stats)

	for _, w := range res.Report.Warnings {
		slog.Debug("degenerate interaction stats", slog.String("warning", w.String()))
	}

	slog.Info("analysis complete",
		slog.Int("intervals", len(res.Intervals)),
		slog.Int("skipped", len(res.Skipped)),
		slog.Int("traces", res.TraceCount()),
		slog.Int("interactions", len(res.Stats)),
		slog.Int("high_variation", len(res.Report.Flagged)),
		slog.Int64("duration_ms", time.Since(start).Milliseconds()),
	)
	return res, nil
}
