package variation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usestring/critpath/pkg/types"
)

func statsWithStds(stds ...float64) *types.InteractionStats {
	s := &types.InteractionStats{}
	for i, std := range stds {
		s.Append(i, 100, std, 1)
	}
	return s
}

func TestDetector_Evaluate(t *testing.T) {
	tests := []struct {
		name         string
		stds         []float64
		wantBaseline float64
		wantFlagged  bool
	}{
		{
			name:         "moderate spike stays under ten times the baseline",
			stds:         []float64{1, 1, 50},
			wantBaseline: 52.0 / 3,
			wantFlagged:  false,
		},
		{
			name:         "large spike over few intervals inflates its own baseline",
			stds:         []float64{1, 1, 1, 1, 500},
			wantBaseline: 504.0 / 5,
			wantFlagged:  false,
		},
		{
			name:         "spike over many quiet intervals is flagged",
			stds:         append(make([]float64, 19), 5),
			wantBaseline: 0.25,
			wantFlagged:  true,
		},
		{
			name:         "flat spread is not flagged",
			stds:         []float64{3, 3, 3, 3},
			wantBaseline: 3,
			wantFlagged:  false,
		},
		{
			name:         "all zero spread is not flagged",
			stds:         []float64{0, 0, 0},
			wantBaseline: 0,
			wantFlagged:  false,
		},
	}

	d := NewDetector(0)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := d.Evaluate(ab, statsWithStds(tt.stds...))
			assert.InDelta(t, tt.wantBaseline, f.BaselineSpread, 1e-9)
			assert.Equal(t, tt.wantFlagged, f.Flagged)
		})
	}
}

func TestDetector_singleIntervalNeverFlagged(t *testing.T) {
	d := NewDetector(0.5)
	for _, std := range []float64{0, 1, 1e9} {
		f := d.Evaluate(ab, statsWithStds(std))
		assert.False(t, f.Flagged, "std=%v", std)
	}
}

func TestDetector_Detect(t *testing.T) {
	stats := map[types.InteractionKey]*types.InteractionStats{
		ab:                               statsWithStds(append(make([]float64, 19), 5)...),
		bc:                               statsWithStds(42),
		{Upstream: "C", Downstream: "D"}: statsWithStds(1, 1, 50),
	}

	report := NewDetector(DefaultFactor).Detect(stats)
	require.Len(t, report.Findings, 3)
	assert.Equal(t, []types.InteractionKey{ab}, report.Flagged)
	assert.True(t, report.IsFlagged(ab))
	assert.False(t, report.IsFlagged(bc))

	finding := report.Findings[ab]
	assert.Equal(t, 19, finding.PeakInterval)
	assert.InDelta(t, 5, finding.PeakStdDev, 1e-9)

	require.Len(t, report.Warnings, 1)
	assert.Equal(t, bc, report.Warnings[0].Key)
	assert.Equal(t, 0, report.Warnings[0].Interval)
	assert.Contains(t, report.Warnings[0].String(), "B --> C")
}

func TestDetector_Detect_skipsEmptyStats(t *testing.T) {
	stats := map[types.InteractionKey]*types.InteractionStats{
		ab:                               nil,
		bc:                               {},
		{Upstream: "C", Downstream: "D"}: statsWithStds(1, 1, 50),
	}

	var report *Report
	require.NotPanics(t, func() { report = NewDetector(DefaultFactor).Detect(stats) })
	assert.Len(t, report.Findings, 1)
	assert.Empty(t, report.Warnings)
	assert.False(t, report.IsFlagged(ab))
}

func TestNewDetector_defaultFactor(t *testing.T) {
	assert.Equal(t, DefaultFactor, NewDetector(0).Factor)
	assert.Equal(t, DefaultFactor, NewDetector(-3).Factor)
	assert.Equal(t, 4.0, NewDetector(4).Factor)
}
