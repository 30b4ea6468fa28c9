package batch

import (
	"context"
	"fmt"
	"runtime"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usestring/critpath/internal/callgraph"
	"github.com/usestring/critpath/pkg/types"
)

func TestPoolSize(t *testing.T) {
	procs := runtime.GOMAXPROCS(0)
	assert.Equal(t, min(MaxWorkers, procs), PoolSize(0))
	assert.Equal(t, min(MaxWorkers, procs), PoolSize(100))
	assert.Equal(t, 1, PoolSize(1))
	assert.Equal(t, min(3, procs), PoolSize(3))
}

func TestProcess(t *testing.T) {
	records := []types.CallRecord{
		{TraceID: "t1", UpstreamModule: "A", DownstreamModule: "B", Timestamp: 0, ResponseTime: 100, Seq: 0},
		{TraceID: "t1", UpstreamModule: "B", DownstreamModule: "C", Timestamp: 1, ResponseTime: 50, Seq: 1},
		{TraceID: "t2", UpstreamModule: "X", DownstreamModule: "Y", Timestamp: 0, ResponseTime: 3, Seq: 2},
		{TraceID: "bad", UpstreamModule: "X", DownstreamModule: "Y", Timestamp: 0, ResponseTime: -3, Seq: 3},
	}
	traces := callgraph.Partition(records)
	traces["empty"] = &types.Trace{ID: "empty"}

	result, err := New(4).Process(context.Background(), 7, traces)
	require.NoError(t, err)

	assert.Equal(t, 7, result.Index)
	require.Len(t, result.Paths, 2)
	assert.Equal(t, "A --> B --> C", result.Paths["t1"].String())
	assert.Equal(t, []float64{100, 50}, result.Paths["t1"].ResponseTimes)
	assert.Equal(t, "X --> Y", result.Paths["t2"].String())
	assert.Contains(t, result.CCTs, "t1")

	require.Len(t, result.Failures, 2)
	assert.Equal(t, "bad", result.Failures[0].TraceID)
	assert.Equal(t, "empty", result.Failures[1].TraceID)
}

func TestProcess_matchesSequentialReconstruction(t *testing.T) {
	var records []types.CallRecord
	for i := 0; i < 200; i++ {
		id := fmt.Sprintf("trace-%03d", i)
		records = append(records,
			types.CallRecord{TraceID: id, UpstreamModule: "gw", DownstreamModule: "svc", Timestamp: 0, ResponseTime: float64(i), Seq: len(records)},
			types.CallRecord{TraceID: id, UpstreamModule: "svc", DownstreamModule: "db", Timestamp: 1, ResponseTime: float64(i % 7), Seq: len(records) + 1},
		)
	}
	traces := callgraph.Partition(records)

	result, err := New(MaxWorkers).Process(context.Background(), 0, traces)
	require.NoError(t, err)
	require.Len(t, result.Paths, len(traces))

	for id, trace := range traces {
		want, err := callgraph.Reconstruct(trace)
		require.NoError(t, err)
		assert.Equal(t, want.Path, result.Paths[id])
	}
}

func TestProcess_boundedConcurrency(t *testing.T) {
	var running, peak atomic.Int32
	fn := func(tr *types.Trace) (*callgraph.TraceResult, error) {
		n := running.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		runtime.Gosched()
		running.Add(-1)
		return &callgraph.TraceResult{TraceID: tr.ID, Path: types.CriticalPath{Modules: []string{"A"}}}, nil
	}

	traces := make(map[string]*types.Trace)
	for i := 0; i < 100; i++ {
		id := fmt.Sprintf("t%d", i)
		traces[id] = &types.Trace{ID: id, Records: []types.CallRecord{{TraceID: id}}}
	}

	p := New(2, WithReconstructFunc(fn))
	result, err := p.Process(context.Background(), 0, traces)
	require.NoError(t, err)
	assert.Len(t, result.Paths, 100)
	assert.LessOrEqual(t, int(peak.Load()), p.Workers())
}

func TestProcess_canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	traces := map[string]*types.Trace{"t": {ID: "t"}}
	_, err := New(1).Process(ctx, 0, traces)
	assert.ErrorIs(t, err, context.Canceled)
}
