// Package tools contains the MCP tools exposing a critical-path analysis run.
package tools

import (
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/usestring/critpath/internal/pipeline"
	"github.com/usestring/critpath/pkg/types"
)

// MIME type constant.
const MimeJSON = "application/json"

// FlaggedInteraction describes one high-variation edge.
type FlaggedInteraction struct {
	Interaction  string  `json:"interaction"`
	PeakStd      float64 `json:"peak_std_ms"`
	PeakInterval int     `json:"peak_interval"`
	PeakLabel    string  `json:"peak_label"`
	BaselineStd  float64 `json:"baseline_std_ms"`
	ExamplePath  string  `json:"example_path,omitempty"`
}

// InteractionRow is the aggregate view of one edge across intervals.
type InteractionRow struct {
	Interaction   string  `json:"interaction"`
	MeanRT        float64 `json:"mean_rt_ms"` // mean of per-interval means
	StdRT         float64 `json:"std_rt_ms"`  // mean of per-interval stds
	Count         int     `json:"count"`
	Intervals     int     `json:"intervals"`
	HighVariation bool    `json:"high_variation"`
}

// IntervalDetail holds one edge's distribution in one interval.
type IntervalDetail struct {
	Interval int     `json:"interval"`
	Label    string  `json:"label"`
	Count    int     `json:"count"`
	Mean     float64 `json:"mean_ms"`
	Std      float64 `json:"std_ms"`
	Min      float64 `json:"min_ms"`
	Max      float64 `json:"max_ms"`
	P50      float64 `json:"p50_ms"`
	P95      float64 `json:"p95_ms"`
}

func (d *Deps) flagged(res *pipeline.Result) []FlaggedInteraction {
	out := make([]FlaggedInteraction, 0, len(res.Report.Flagged))
	for _, key := range res.Report.Flagged {
		f := res.Report.Findings[key]
		example, _ := res.ExamplePath(key)
		out = append(out, FlaggedInteraction{
			Interaction:  key.String(),
			PeakStd:      f.PeakStdDev,
			PeakInterval: f.PeakInterval,
			PeakLabel:    d.Summarizer.IntervalLabel(f.PeakInterval),
			BaselineStd:  f.BaselineSpread,
			ExamplePath:  example,
		})
	}
	return out
}

func interactionRow(res *pipeline.Result, key types.InteractionKey) InteractionRow {
	s := res.Stats[key]
	return InteractionRow{
		Interaction:   key.String(),
		MeanRT:        stat.Mean(s.Means, nil),
		StdRT:         stat.Mean(s.StdDevs, nil),
		Count:         s.TotalCount(),
		Intervals:     s.Len(),
		HighVariation: res.Report.IsFlagged(key),
	}
}

func (d *Deps) intervalDetails(res *pipeline.Result, key types.InteractionKey) []IntervalDetail {
	s := res.Stats[key]
	out := make([]IntervalDetail, 0, s.Len())
	for i, interval := range s.Intervals {
		detail := IntervalDetail{
			Interval: interval,
			Label:    d.Summarizer.IntervalLabel(interval),
			Count:    s.Counts[i],
			Mean:     s.Means[i],
			Std:      s.StdDevs[i],
		}
		if is, ok := res.Accumulator.IntervalStats(key, interval); ok && len(is.ResponseTimes) > 0 {
			sorted := slices.Clone(is.ResponseTimes)
			slices.Sort(sorted)
			detail.Min = floats.Min(sorted)
			detail.Max = floats.Max(sorted)
			detail.P50 = stat.Quantile(0.5, stat.Empirical, sorted, nil)
			detail.P95 = stat.Quantile(0.95, stat.Empirical, sorted, nil)
		}
		out = append(out, detail)
	}
	return out
}
