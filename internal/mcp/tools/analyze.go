package tools

import (
	"context"
	"fmt"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/usestring/critpath/internal/pipeline"
)

// AnalyzeInput is the input for critpath_analyze.
type AnalyzeInput struct {
	Inputs              []string `json:"inputs" jsonschema:"CSV files of call records, one per interval, in interval order"`
	HighVariationFactor float64  `json:"high_variation_factor,omitempty" jsonschema:"Flag an interaction when an interval's std exceeds this multiple of its mean std (default: configured, 10)"`
}

// SummaryInput is the input for critpath_summary.
type SummaryInput struct{}

// SummaryOutput describes the current run.
type SummaryOutput struct {
	Inputs              []string             `json:"inputs,omitempty"`
	Intervals           int                  `json:"intervals"`
	UniqueTraces        int                  `json:"unique_traces"`
	UniqueCriticalPaths int                  `json:"unique_critical_paths"`
	FailedTraces        int                  `json:"failed_traces"`
	Interactions        int                  `json:"interactions"`
	HighVariation       []FlaggedInteraction `json:"high_variation,omitempty"`
	DegenerateEdges     int                  `json:"degenerate_edges"`
	Skipped             []pipeline.Skipped   `json:"skipped,omitempty"`
	Hint                string               `json:"hint,omitempty"`
}

func (d *Deps) summary(res *pipeline.Result) SummaryOutput {
	out := SummaryOutput{
		Inputs:              d.Inputs(),
		Intervals:           len(res.Intervals),
		UniqueTraces:        res.TraceCount(),
		UniqueCriticalPaths: len(res.UniquePaths()),
		FailedTraces:        res.FailureCount(),
		Interactions:        len(res.Stats),
		HighVariation:       d.flagged(res),
		Skipped:             res.Skipped,
	}
	if res.Report != nil {
		out.DegenerateEdges = len(res.Report.Warnings)
	}
	switch {
	case len(out.HighVariation) > 0:
		out.Hint = "Use critpath_interaction on a high_variation entry to see its per-interval distribution."
	case out.Interactions > 0:
		out.Hint = "No interaction exceeded the variation threshold. Use critpath_interactions to browse edges."
	}
	return out
}

// ToolAnalyze runs a new analysis and makes it current.
func ToolAnalyze(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input AnalyzeInput) (*sdkmcp.CallToolResult, SummaryOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input AnalyzeInput) (*sdkmcp.CallToolResult, SummaryOutput, error) {
		if len(input.Inputs) == 0 {
			return nil, SummaryOutput{}, ErrInvalidInput("inputs must name at least one CSV file")
		}
		if input.HighVariationFactor < 0 {
			return nil, SummaryOutput{}, ErrInvalidInput(fmt.Sprintf("high_variation_factor must be positive, got %g", input.HighVariationFactor))
		}

		res, err := d.Analyze(ctx, input.Inputs, input.HighVariationFactor)
		if err != nil {
			return nil, SummaryOutput{}, WrapError(err)
		}
		return nil, d.summary(res), nil
	}
}

// ToolSummary describes the current run.
func ToolSummary(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input SummaryInput) (*sdkmcp.CallToolResult, SummaryOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input SummaryInput) (*sdkmcp.CallToolResult, SummaryOutput, error) {
		res, err := d.Result()
		if err != nil {
			return nil, SummaryOutput{}, err
		}
		return nil, d.summary(res), nil
	}
}
