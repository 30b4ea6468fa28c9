package callgraph

import (
	"cmp"
	"slices"

	"github.com/usestring/critpath/pkg/types"
)

// Partition groups records by trace id. Each trace's records are ordered by
// timestamp, ties broken by Seq (the original ingestion order). Records without
// a trace id cannot belong to any trace and are skipped.
func Partition(records []types.CallRecord) map[string]*types.Trace {
	traces := make(map[string]*types.Trace)
	for _, r := range records {
		if r.TraceID == "" {
			continue
		}
		t, ok := traces[r.TraceID]
		if !ok {
			t = &types.Trace{ID: r.TraceID}
			traces[r.TraceID] = t
		}
		t.Records = append(t.Records, r)
	}

	for _, t := range traces {
		SortRecords(t.Records)
	}
	return traces
}

// SortRecords orders records by (Timestamp, Seq).
func SortRecords(records []types.CallRecord) {
	slices.SortStableFunc(records, func(a, b types.CallRecord) int {
		if c := cmp.Compare(a.Timestamp, b.Timestamp); c != 0 {
			return c
		}
		return cmp.Compare(a.Seq, b.Seq)
	})
}

// TraceIDs returns the ids of traces in sorted order.
func TraceIDs(traces map[string]*types.Trace) []string {
	ids := make([]string, 0, len(traces))
	for id := range traces {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
