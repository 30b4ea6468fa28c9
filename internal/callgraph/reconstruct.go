package callgraph

import (
	"github.com/usestring/critpath/pkg/types"
)

// TraceResult is the reconstruction output for one trace.
type TraceResult struct {
	TraceID string
	Path    types.CriticalPath
	CCT     types.CallContextTree
}

// Reconstruct computes the critical path and call-context tree of one trace.
// The trace's records must already be in (timestamp, seq) order, as produced by
// Partition.
//
// It fails with *EmptyTraceError for a trace without records and with
// *types.MalformedRecordError when a record violates the CallRecord invariants.
func Reconstruct(trace *types.Trace) (*TraceResult, error) {
	if trace.Len() == 0 {
		id := ""
		if trace != nil {
			id = trace.ID
		}
		return nil, &EmptyTraceError{TraceID: id}
	}

	records := trace.Records
	for _, r := range records {
		if err := r.Validate(); err != nil {
			return nil, err
		}
	}

	cct := make(types.CallContextTree)
	idx := buildIndex(records, cct)

	anchor := 0
	for pos := 1; pos < len(records); pos++ {
		if records[pos].EndTime() > records[anchor].EndTime() {
			anchor = pos
		}
	}

	a := records[anchor]
	path := types.CriticalPath{
		Modules:       []string{a.UpstreamModule},
		ResponseTimes: []float64{},
	}
	if a.DownstreamModule != a.UpstreamModule {
		path.Modules = append(path.Modules, a.DownstreamModule)
		path.ResponseTimes = append(path.ResponseTimes, a.ResponseTime)
	}

	current, cursor := a.DownstreamModule, anchor
	for {
		next, ok := idx.slowestCallAfter(current, cursor)
		if !ok {
			break
		}
		call := records[next]
		// Cycle guard: never revisit a module.
		if path.Contains(call.DownstreamModule) {
			break
		}
		path.Modules = append(path.Modules, call.DownstreamModule)
		path.ResponseTimes = append(path.ResponseTimes, call.ResponseTime)
		current, cursor = call.DownstreamModule, next
	}

	return &TraceResult{
		TraceID: trace.ID,
		Path:    path,
		CCT:     cct,
	}, nil
}
