package callgraph

import (
	"github.com/RoaringBitmap/roaring/v2"

	"github.com/usestring/critpath/pkg/types"
)

// moduleIndex maps each upstream module to the positions of its calls within
// one trace. Positions refer to the trace's timestamp order.
type moduleIndex struct {
	records    []types.CallRecord
	byUpstream map[string]*roaring.Bitmap
}

// buildIndex indexes the trace and fills cct with every observed call.
func buildIndex(records []types.CallRecord, cct types.CallContextTree) *moduleIndex {
	idx := &moduleIndex{
		records:    records,
		byUpstream: make(map[string]*roaring.Bitmap),
	}
	for pos, r := range records {
		bm, ok := idx.byUpstream[r.UpstreamModule]
		if !ok {
			bm = roaring.New()
			idx.byUpstream[r.UpstreamModule] = bm
		}
		bm.Add(uint32(pos))
		cct.Add(r.UpstreamModule, r.DownstreamModule)
	}
	return idx
}

// slowestCallAfter returns the position of the call made by module after cursor
// with the largest response time. The earliest position wins ties.
func (idx *moduleIndex) slowestCallAfter(module string, cursor int) (int, bool) {
	bm, ok := idx.byUpstream[module]
	if !ok {
		return 0, false
	}

	iter := bm.Iterator()
	iter.AdvanceIfNeeded(uint32(cursor + 1))

	best := -1
	for iter.HasNext() {
		pos := int(iter.Next())
		if best < 0 || idx.records[pos].ResponseTime > idx.records[best].ResponseTime {
			best = pos
		}
	}
	return best, best >= 0
}
