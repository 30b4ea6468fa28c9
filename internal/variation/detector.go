package variation

import (
	"fmt"
	"slices"
	"strings"

	"gonum.org/v1/gonum/stat"

	"github.com/usestring/critpath/pkg/types"
)

// DefaultFactor is the multiple of an edge's baseline spread that an interval's
// standard deviation must exceed for the edge to be flagged.
const DefaultFactor = 10.0

// DegenerateStatsWarning notes an edge observed in exactly one interval. Its
// baseline spread equals its only standard deviation, so it is never flagged.
type DegenerateStatsWarning struct {
	Key      types.InteractionKey
	Interval int
}

func (w DegenerateStatsWarning) String() string {
	return fmt.Sprintf("interaction %s observed only in interval %d; variation test skipped", w.Key, w.Interval)
}

// Finding is the detector's verdict for one edge.
type Finding struct {
	Key            types.InteractionKey `json:"interaction"`
	BaselineSpread float64              `json:"baseline_spread"`
	PeakStdDev     float64              `json:"peak_std"`
	PeakInterval   int                  `json:"peak_interval"`
	Flagged        bool                 `json:"flagged"`
}

// Report is the detector's output over all edges.
type Report struct {
	Findings map[types.InteractionKey]Finding
	Flagged  []types.InteractionKey // sorted
	Warnings []DegenerateStatsWarning
}

// IsFlagged reports whether key was flagged.
func (r *Report) IsFlagged(key types.InteractionKey) bool {
	return r.Findings[key].Flagged
}

// Detector flags edges whose spread in some interval exceeds Factor times the
// edge's own mean spread across intervals.
type Detector struct {
	Factor float64
}

// NewDetector returns a detector; a non-positive factor means DefaultFactor.
func NewDetector(factor float64) *Detector {
	if factor <= 0 {
		factor = DefaultFactor
	}
	return &Detector{Factor: factor}
}

// Evaluate judges one edge.
func (d *Detector) Evaluate(key types.InteractionKey, s *types.InteractionStats) Finding {
	f := Finding{Key: key}
	if s == nil || s.Len() == 0 {
		return f
	}

	f.BaselineSpread = stat.Mean(s.StdDevs, nil)
	f.PeakStdDev, f.PeakInterval = s.StdDevs[0], s.Intervals[0]
	for i, std := range s.StdDevs {
		if std > f.PeakStdDev {
			f.PeakStdDev, f.PeakInterval = std, s.Intervals[i]
		}
	}

	if s.Len() > 1 {
		f.Flagged = f.PeakStdDev > d.Factor*f.BaselineSpread
	}
	return f
}

// Detect judges every edge.
func (d *Detector) Detect(stats map[types.InteractionKey]*types.InteractionStats) *Report {
	r := &Report{Findings: make(map[types.InteractionKey]Finding, len(stats))}
	for key, s := range stats {
		if s == nil || s.Len() == 0 {
			continue
		}
		f := d.Evaluate(key, s)
		r.Findings[key] = f
		if f.Flagged {
			r.Flagged = append(r.Flagged, key)
		}
		if s.Len() == 1 {
			r.Warnings = append(r.Warnings, DegenerateStatsWarning{Key: key, Interval: s.Intervals[0]})
		}
	}
	types.SortKeys(r.Flagged)
	sortWarnings(r.Warnings)
	return r
}

func sortWarnings(ws []DegenerateStatsWarning) {
	slices.SortFunc(ws, func(a, b DegenerateStatsWarning) int {
		return strings.Compare(a.Key.String(), b.Key.String())
	})
}
