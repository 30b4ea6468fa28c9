package report

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usestring/critpath/internal/batch"
	"github.com/usestring/critpath/internal/ingest"
	"github.com/usestring/critpath/internal/pipeline"
	"github.com/usestring/critpath/internal/variation"
	"github.com/usestring/critpath/pkg/types"
)

type memSource map[string][]types.CallRecord

func (m memSource) Load(_ context.Context, path string) (*ingest.Batch, error) {
	recs, ok := m[path]
	if !ok {
		return nil, fmt.Errorf("no such input: %s", path)
	}
	return &ingest.Batch{Source: path, Records: recs}, nil
}

func rec(trace, up, down string, ts int64, rt float64) types.CallRecord {
	return types.CallRecord{TraceID: trace, UpstreamModule: up, DownstreamModule: down, Timestamp: ts, ResponseTime: rt}
}

func runFixture(t *testing.T) *pipeline.Result {
	t.Helper()
	src := memSource{
		"i0": {
			rec("t1", "A", "B", 0, 100),
			rec("t1", "B", "C", 1, 50),
			rec("t2", "A", "B", 0, 80),
		},
		"i2": {
			rec("t3", "A", "B", 0, 10),
			rec("t3", "B", "C", 1, 5),
			rec("bad", "A", "B", 0, -1),
		},
	}
	runner := pipeline.NewRunner(src, batch.New(2), variation.NewDetector(0))
	res, err := runner.Run(context.Background(), pipeline.InputsFromPaths([]string{"i0", "missing", "i2"}))
	require.NoError(t, err)
	return res
}

func TestOutputPaths(t *testing.T) {
	p := OutputPaths("out/summary.txt", false)
	assert.Equal(t, "out/summary.txt", p.Summary)
	assert.Equal(t, "out/summary_all_critical_paths.json", p.CriticalPaths)
	assert.Equal(t, "out/summary_interaction_stats.json", p.InteractionStats)
	assert.Empty(t, p.CallContext)

	p = OutputPaths("report", true)
	assert.Equal(t, "report_all_critical_paths.json", p.CriticalPaths)
	assert.Equal(t, "report_call_context.json", p.CallContext)
}

func TestIntervalLabel(t *testing.T) {
	assert.Equal(t, "interval 3", (&Summarizer{}).IntervalLabel(3))
	assert.Equal(t, "30-45min", (&Summarizer{IntervalMinutes: 15}).IntervalLabel(2))
}

func TestWriteSummary(t *testing.T) {
	res := runFixture(t)

	var buf bytes.Buffer
	require.NoError(t, (&Summarizer{}).WriteSummary(&buf, res))
	out := buf.String()

	assert.Contains(t, out, "Number of unique traces: 3\n")
	assert.Contains(t, out, "Number of unique critical paths: 2\n")
	assert.Contains(t, out, "High variation interactions: 0\n")
	assert.NotContains(t, out, "High Variation Interactions:")
	assert.Contains(t, out, "Skipped interval 1 (missing)")
	assert.Contains(t, out, "Traces excluded after reconstruction failure: 1")
	assert.Contains(t, out, "Detailed Interaction Stats:\n"+
		"Interaction: A --> B, Mean RT: 50.00 ms, Std RT: 5.00 ms, Count: 3\n"+
		"Interaction: B --> C, Mean RT: 27.50 ms, Std RT: 0.00 ms, Count: 2\n")
}

func TestWriteSummary_flagged(t *testing.T) {
	src := memSource{}
	var paths []string
	for i := 0; i < 20; i++ {
		name := fmt.Sprintf("i%d", i)
		paths = append(paths, name)
		second := 10.0
		if i == 19 {
			second = 20
		}
		src[name] = []types.CallRecord{
			rec("t1", "A", "B", 0, 10),
			rec("t2", "A", "B", 0, second),
		}
	}
	res, err := pipeline.NewRunner(src, batch.New(2), variation.NewDetector(0)).
		Run(context.Background(), pipeline.InputsFromPaths(paths))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, (&Summarizer{IntervalMinutes: 5}).WriteSummary(&buf, res))
	out := buf.String()

	assert.Contains(t, out, "High variation interactions: 1\n")
	assert.Contains(t, out, "Interaction: A --> B, Peak Std RT: 5.00 ms (95-100min), Baseline Std RT: 0.25 ms, Critical path: A --> B\n")
}

func TestWriteAll(t *testing.T) {
	res := runFixture(t)
	dir := t.TempDir()

	s := &Summarizer{ExportCCT: true}
	paths, err := s.WriteAll(res, filepath.Join(dir, "nested", "summary.txt"))
	require.NoError(t, err)

	for _, p := range []string{paths.Summary, paths.CriticalPaths, paths.InteractionStats, paths.CallContext} {
		assert.FileExists(t, p)
	}

	cases := map[Kind]string{
		KindCriticalPaths:    paths.CriticalPaths,
		KindInteractionStats: paths.InteractionStats,
		KindCallContext:      paths.CallContext,
	}
	for kind, path := range cases {
		data, err := os.ReadFile(path)
		require.NoError(t, err)

		v, err := NewValidator(kind)
		require.NoError(t, err)
		result := v.Validate(data)
		assert.True(t, result.Valid, "%s: %v", kind, result.Errors)
	}

	data, err := os.ReadFile(paths.CriticalPaths)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"critical_path": "A --> B --> C"`)
}

func TestBuildCriticalPathsExport(t *testing.T) {
	res := runFixture(t)
	exp := BuildCriticalPathsExport(res)

	require.Contains(t, exp, "0")
	require.Contains(t, exp, "2")
	assert.NotContains(t, exp, "1")
	assert.Equal(t, TraceEntry{CriticalPath: "A --> B --> C", ResponseTimes: []float64{100, 50}}, exp["0"]["t1"])
	assert.Equal(t, TraceEntry{CriticalPath: "A --> B", ResponseTimes: []float64{80}}, exp["0"]["t2"])
	assert.NotContains(t, exp["2"], "bad")
}

func TestBuildInteractionStatsExport(t *testing.T) {
	exp := BuildInteractionStatsExport(runFixture(t))
	require.Contains(t, exp, "A --> B")
	e := exp["A --> B"]
	assert.Equal(t, []int{0, 2}, e.Intervals)
	assert.Equal(t, []int{2, 1}, e.Counts)
	assert.InDeltaSlice(t, []float64{90, 10}, e.Means, 1e-9)
	assert.InDeltaSlice(t, []float64{10, 0}, e.StdDevs, 1e-9)
}

func TestBuildCallContextExport(t *testing.T) {
	exp := BuildCallContextExport(runFixture(t))
	assert.Equal(t, map[string][]string{"A": {"B"}, "B": {"C"}}, exp["0"]["t1"])
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind("x/summary_interaction_stats.json")
	require.NoError(t, err)
	assert.Equal(t, KindInteractionStats, k)

	k, err = ParseKind("call_context")
	require.NoError(t, err)
	assert.Equal(t, KindCallContext, k)

	_, err = ParseKind("other.json")
	assert.Error(t, err)
}

func TestSchema(t *testing.T) {
	for _, kind := range Kinds() {
		s, err := Schema(kind)
		require.NoError(t, err)
		assert.Equal(t, string(kind), s.Title)
		assert.NotEmpty(t, s.Description)
	}
	_, err := Schema("nope")
	assert.Error(t, err)
}

func TestValidator_rejects(t *testing.T) {
	tests := []struct {
		name string
		kind Kind
		doc  string
		want string
	}{
		{
			name: "not json",
			kind: KindCriticalPaths,
			doc:  `{`,
			want: "invalid JSON",
		},
		{
			name: "missing field",
			kind: KindInteractionStats,
			doc:  `{"A --> B": {"intervals": [0], "means": [1], "counts": [1]}}`,
			want: "stds",
		},
		{
			name: "response time count",
			kind: KindCriticalPaths,
			doc:  `{"0": {"t1": {"critical_path": "A --> B --> C", "response_times": [1]}}}`,
			want: "1 response times for 3 modules",
		},
		{
			name: "repeated module",
			kind: KindCriticalPaths,
			doc:  `{"0": {"t1": {"critical_path": "A --> B --> A", "response_times": [1, 2]}}}`,
			want: `module "A" repeated`,
		},
		{
			name: "parallel arrays",
			kind: KindInteractionStats,
			doc:  `{"A --> B": {"intervals": [0, 1], "means": [1], "stds": [0], "counts": [1]}}`,
			want: "parallel arrays differ in length",
		},
		{
			name: "unordered intervals",
			kind: KindInteractionStats,
			doc:  `{"A --> B": {"intervals": [1, 0], "means": [1, 1], "stds": [0, 0], "counts": [1, 1]}}`,
			want: "not strictly ascending",
		},
		{
			name: "bad key",
			kind: KindInteractionStats,
			doc:  `{"A": {"intervals": [0], "means": [1], "stds": [0], "counts": [1]}}`,
			want: "/A:",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := NewValidator(tt.kind)
			require.NoError(t, err)
			result := v.Validate([]byte(tt.doc))
			assert.False(t, result.Valid)
			require.NotEmpty(t, result.Errors)
			joined := fmt.Sprint(result.Errors)
			assert.Contains(t, joined, tt.want)
		})
	}
}
