package report

import (
	"strconv"

	"github.com/usestring/critpath/internal/pipeline"
	"github.com/usestring/critpath/pkg/types"
)

// TraceEntry is one trace's critical path in export A.
type TraceEntry struct {
	CriticalPath  string    `json:"critical_path" jsonschema:"minLength=1,description=Modules joined by ' --> '"`
	ResponseTimes []float64 `json:"response_times" jsonschema:"description=Per-step response times; one fewer than the modules on the path"`
}

// CriticalPathsExport is export A: interval index -> trace id -> critical path.
type CriticalPathsExport map[string]map[string]TraceEntry

// InteractionEntry is one edge's statistics in export B. The slices are parallel.
type InteractionEntry struct {
	Intervals []int     `json:"intervals" jsonschema:"minItems=1,description=Interval indices in ascending order"`
	Means     []float64 `json:"means" jsonschema:"minItems=1"`
	StdDevs   []float64 `json:"stds" jsonschema:"minItems=1,description=Population standard deviations"`
	Counts    []int     `json:"counts" jsonschema:"minItems=1"`
}

// InteractionStatsExport is export B: "upstream --> downstream" -> statistics.
type InteractionStatsExport map[string]InteractionEntry

// CallContextExport is the auxiliary call-context export:
// interval index -> trace id -> upstream module -> downstream modules.
type CallContextExport map[string]map[string]map[string][]string

// BuildCriticalPathsExport assembles export A.
func BuildCriticalPathsExport(res *pipeline.Result) CriticalPathsExport {
	out := make(CriticalPathsExport, len(res.Intervals))
	for _, ir := range res.Intervals {
		traces := make(map[string]TraceEntry, len(ir.Paths))
		for id, p := range ir.Paths {
			rts := p.ResponseTimes
			if rts == nil {
				rts = []float64{}
			}
			traces[id] = TraceEntry{CriticalPath: p.String(), ResponseTimes: rts}
		}
		out[strconv.Itoa(ir.Index)] = traces
	}
	return out
}

// BuildInteractionStatsExport assembles export B.
func BuildInteractionStatsExport(res *pipeline.Result) InteractionStatsExport {
	out := make(InteractionStatsExport, len(res.Stats))
	for key, s := range res.Stats {
		out[key.String()] = entryFromStats(s)
	}
	return out
}

func entryFromStats(s *types.InteractionStats) InteractionEntry {
	return InteractionEntry{
		Intervals: s.Intervals,
		Means:     s.Means,
		StdDevs:   s.StdDevs,
		Counts:    s.Counts,
	}
}

// BuildCallContextExport assembles the call-context export.
func BuildCallContextExport(res *pipeline.Result) CallContextExport {
	out := make(CallContextExport, len(res.Intervals))
	for _, ir := range res.Intervals {
		traces := make(map[string]map[string][]string, len(ir.CCTs))
		for id, cct := range ir.CCTs {
			traces[id] = map[string][]string(cct)
		}
		out[strconv.Itoa(ir.Index)] = traces
	}
	return out
}
