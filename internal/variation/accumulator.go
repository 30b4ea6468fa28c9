// Package variation aggregates critical-path edge latencies across intervals
// and flags edges whose per-interval spread is anomalous.
package variation

import (
	"slices"

	"gonum.org/v1/gonum/stat"

	"github.com/usestring/critpath/pkg/types"
)

// Accumulator collects per-interval response times for every edge of every
// critical path it is given. It is owned by a single goroutine.
type Accumulator struct {
	edges map[types.InteractionKey]map[int]*types.IntervalStats
}

// NewAccumulator creates an empty accumulator.
func NewAccumulator() *Accumulator {
	return &Accumulator{
		edges: make(map[types.InteractionKey]map[int]*types.IntervalStats),
	}
}

// Add folds one interval's critical paths into the accumulator. Step i of a
// path contributes its response time to the edge (module i, module i+1).
func (a *Accumulator) Add(result *types.IntervalResult) {
	if result == nil {
		return
	}
	ids := make([]string, 0, len(result.Paths))
	for id := range result.Paths {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	for _, id := range ids {
		for _, edge := range result.Paths[id].Edges() {
			a.observe(edge.Key, result.Index, edge.ResponseTime)
		}
	}
}

func (a *Accumulator) observe(key types.InteractionKey, interval int, rt float64) {
	byInterval, ok := a.edges[key]
	if !ok {
		byInterval = make(map[int]*types.IntervalStats)
		a.edges[key] = byInterval
	}
	s, ok := byInterval[interval]
	if !ok {
		s = &types.IntervalStats{}
		byInterval[interval] = s
	}
	s.Observe(rt)
}

// Merge folds other into a. other is left unchanged.
func (a *Accumulator) Merge(other *Accumulator) {
	if other == nil {
		return
	}
	for key, byInterval := range other.edges {
		for interval, s := range byInterval {
			for _, rt := range s.ResponseTimes {
				a.observe(key, interval, rt)
			}
		}
	}
}

// Len returns the number of distinct edges seen.
func (a *Accumulator) Len() int {
	return len(a.edges)
}

// IntervalStats returns the raw observations of one edge in one interval.
func (a *Accumulator) IntervalStats(key types.InteractionKey, interval int) (*types.IntervalStats, bool) {
	s, ok := a.edges[key][interval]
	return s, ok
}

// Stats computes, for every edge, the population mean and standard deviation
// of each interval's observations. Entries are ordered by interval; intervals
// without observations are absent.
func (a *Accumulator) Stats() map[types.InteractionKey]*types.InteractionStats {
	out := make(map[types.InteractionKey]*types.InteractionStats, len(a.edges))
	for key, byInterval := range a.edges {
		intervals := make([]int, 0, len(byInterval))
		for interval := range byInterval {
			intervals = append(intervals, interval)
		}
		slices.Sort(intervals)

		is := &types.InteractionStats{}
		for _, interval := range intervals {
			s := byInterval[interval]
			mean, std := stat.PopMeanStdDev(s.ResponseTimes, nil)
			is.Append(interval, mean, std, s.Count)
		}
		out[key] = is
	}
	return out
}
