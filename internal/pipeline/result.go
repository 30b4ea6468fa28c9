package pipeline

import (
	"slices"

	"github.com/usestring/critpath/internal/ingest"
	"github.com/usestring/critpath/internal/variation"
	"github.com/usestring/critpath/pkg/types"
)

// Skipped records an interval whose input could not be obtained.
type Skipped struct {
	Interval int    `json:"interval"`
	Source   string `json:"source"`
	Error    string `json:"error"`
}

// Result is the outcome of one run.
type Result struct {
	Intervals   []*types.IntervalResult // in processing order
	Skipped     []Skipped
	Ingest      map[int]ingest.CleanStats
	Accumulator *variation.Accumulator
	Stats       map[types.InteractionKey]*types.InteractionStats
	Report      *variation.Report
}

func newResult() *Result {
	return &Result{Ingest: make(map[int]ingest.CleanStats)}
}

// TraceCount sums the reconstructed traces of every interval.
func (r *Result) TraceCount() int {
	n := 0
	for _, ir := range r.Intervals {
		n += len(ir.Paths)
	}
	return n
}

// FailureCount sums the failed traces of every interval.
func (r *Result) FailureCount() int {
	n := 0
	for _, ir := range r.Intervals {
		n += len(ir.Failures)
	}
	return n
}

// UniquePaths returns the distinct critical-path strings, sorted.
func (r *Result) UniquePaths() []string {
	seen := make(map[string]bool)
	var out []string
	for _, ir := range r.Intervals {
		for _, p := range ir.Paths {
			s := p.String()
			if !seen[s] {
				seen[s] = true
				out = append(out, s)
			}
		}
	}
	slices.Sort(out)
	return out
}

// Keys returns the interaction keys, sorted.
func (r *Result) Keys() []types.InteractionKey {
	keys := make([]types.InteractionKey, 0, len(r.Stats))
	for k := range r.Stats {
		keys = append(keys, k)
	}
	types.SortKeys(keys)
	return keys
}

// Interval returns the result of the interval with the given index.
func (r *Result) Interval(index int) (*types.IntervalResult, bool) {
	for _, ir := range r.Intervals {
		if ir.Index == index {
			return ir, true
		}
	}
	return nil, false
}

// FindTrace looks a trace up across intervals, earliest interval first.
func (r *Result) FindTrace(traceID string) (*types.IntervalResult, types.CriticalPath, bool) {
	for _, ir := range r.Intervals {
		if p, ok := ir.Paths[traceID]; ok {
			return ir, p, true
		}
	}
	return nil, types.CriticalPath{}, false
}

// ExamplePath returns a critical path containing key, searching intervals in
// processing order and traces in id order.
func (r *Result) ExamplePath(key types.InteractionKey) (string, bool) {
	for _, ir := range r.Intervals {
		ids := make([]string, 0, len(ir.Paths))
		for id := range ir.Paths {
			ids = append(ids, id)
		}
		slices.Sort(ids)
		for _, id := range ids {
			p := ir.Paths[id]
			for _, e := range p.Edges() {
				if e.Key == key {
					return p.String(), true
				}
			}
		}
	}
	return "", false
}
