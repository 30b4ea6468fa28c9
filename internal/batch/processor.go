// Package batch fans critical-path reconstruction out across the traces of one interval.
package batch

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/usestring/critpath/internal/callgraph"
	"github.com/usestring/critpath/pkg/types"
)

// MaxWorkers caps the per-interval worker pool.
const MaxWorkers = 10

// ReconstructFunc reconstructs one trace. callgraph.Reconstruct by default.
type ReconstructFunc func(*types.Trace) (*callgraph.TraceResult, error)

// Processor runs the reconstructor over every trace of an interval.
type Processor struct {
	workers     int
	reconstruct ReconstructFunc
}

// Option configures a Processor.
type Option func(*Processor)

// WithReconstructFunc replaces the reconstructor. Used by tests.
func WithReconstructFunc(fn ReconstructFunc) Option {
	return func(p *Processor) {
		p.reconstruct = fn
	}
}

// New creates a Processor whose pool size is min(workers, MaxWorkers, GOMAXPROCS).
// A non-positive workers value means MaxWorkers.
func New(workers int, opts ...Option) *Processor {
	p := &Processor{
		workers:     PoolSize(workers),
		reconstruct: callgraph.Reconstruct,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// PoolSize returns the effective pool size for a requested worker count.
func PoolSize(workers int) int {
	if workers <= 0 || workers > MaxWorkers {
		workers = MaxWorkers
	}
	return max(1, min(workers, runtime.GOMAXPROCS(0)))
}

// Workers returns the pool size.
func (p *Processor) Workers() int {
	return p.workers
}

// slot holds one worker's private output.
type slot struct {
	result *callgraph.TraceResult
	err    error
}

// Process reconstructs every trace of one interval. Failed traces are logged,
// listed in Failures and left out of Paths; they never abort the interval.
// Cancellation stops dispatching new traces; traces already running complete.
func (p *Processor) Process(ctx context.Context, interval int, traces map[string]*types.Trace) (*types.IntervalResult, error) {
	start := time.Now()
	ids := callgraph.TraceIDs(traces)
	slots := make([]slot, len(ids))

	g := new(errgroup.Group)
	g.SetLimit(p.workers)

	for i, id := range ids {
		if err := ctx.Err(); err != nil {
			_ = g.Wait()
			return nil, err
		}
		trace := traces[id]
		g.Go(func() error {
			res, err := p.reconstruct(trace)
			slots[i] = slot{result: res, err: err}
			return nil
		})
	}
	_ = g.Wait()

	out := types.NewIntervalResult(interval)
	for i, id := range ids {
		s := slots[i]
		if s.err != nil {
			slog.Warn("trace reconstruction failed",
				slog.Int("interval", interval),
				slog.String("trace_id", id),
				slog.String("error", s.err.Error()),
			)
			out.Failures = append(out.Failures, types.TraceFailure{TraceID: id, Error: s.err.Error()})
			continue
		}
		out.Paths[id] = s.result.Path
		out.CCTs[id] = s.result.CCT
	}

	slog.Info("interval processed",
		slog.Int("interval", interval),
		slog.Int("traces", len(ids)),
		slog.Int("reconstructed", len(out.Paths)),
		slog.Int("failed", len(out.Failures)),
		slog.Int("workers", p.workers),
		slog.Int64("duration_ms", time.Since(start).Milliseconds()),
	)

	return out, nil
}
