package tools

import (
	"context"
	"fmt"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/usestring/critpath/internal/pipeline"
	"github.com/usestring/critpath/internal/query"
	"github.com/usestring/critpath/internal/report"
)

// QueryInput is the input for critpath_query.
type QueryInput struct {
	Expression  string   `json:"expression" jsonschema:"jq expression evaluated against each selected export; $source holds the export name"`
	Exports     []string `json:"exports,omitempty" jsonschema:"Exports to query: critical_paths, interaction_stats, call_context (default: critical_paths)"`
	Deduplicate bool     `json:"deduplicate,omitempty" jsonschema:"Remove duplicate values (default: false)"`
	MaxResults  int      `json:"max_results,omitempty" jsonschema:"Max results to return (default and cap: configured, 1000)"`
}

// QueryOutput is the output for critpath_query.
type QueryOutput struct {
	Values       []any          `json:"values,omitempty"`
	Errors       []string       `json:"errors,omitempty"`
	RawCount     int            `json:"raw_count"`
	Truncated    bool           `json:"truncated,omitempty"`
	SourceCounts map[string]int `json:"source_counts,omitempty"`
}

// ExportDocument builds the query document for one export kind.
func ExportDocument(res *pipeline.Result, kind report.Kind) (query.Document, error) {
	switch kind {
	case report.KindCriticalPaths:
		return query.DocumentOf(string(kind), report.BuildCriticalPathsExport(res))
	case report.KindInteractionStats:
		return query.DocumentOf(string(kind), report.BuildInteractionStatsExport(res))
	case report.KindCallContext:
		return query.DocumentOf(string(kind), report.BuildCallContextExport(res))
	}
	return query.Document{}, fmt.Errorf("unknown export kind %q", kind)
}

// ToolQuery runs a jq expression over the current run's exports.
func ToolQuery(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input QueryInput) (*sdkmcp.CallToolResult, QueryOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input QueryInput) (*sdkmcp.CallToolResult, QueryOutput, error) {
		if input.Expression == "" {
			return nil, QueryOutput{}, ErrInvalidInput("expression is required")
		}
		if err := d.Query.ValidateExpression(input.Expression); err != nil {
			return nil, QueryOutput{}, ErrInvalidInput(err.Error())
		}

		names := input.Exports
		if len(names) == 0 {
			names = []string{string(report.KindCriticalPaths)}
		}
		kinds := make([]report.Kind, 0, len(names))
		for _, name := range names {
			kind, err := report.ParseKind(name)
			if err != nil {
				return nil, QueryOutput{}, ErrInvalidInput(err.Error())
			}
			kinds = append(kinds, kind)
		}

		res, err := d.Result()
		if err != nil {
			return nil, QueryOutput{}, err
		}

		docs := make([]query.Document, 0, len(kinds))
		for _, kind := range kinds {
			doc, err := ExportDocument(res, kind)
			if err != nil {
				return nil, QueryOutput{}, WrapError(err)
			}
			docs = append(docs, doc)
		}

		engine := d.Query
		if input.MaxResults > 0 && input.MaxResults < engine.MaxResults() {
			engine = query.NewEngine(input.MaxResults)
		}

		result, err := engine.Run(ctx, input.Expression, input.Deduplicate, docs...)
		if err != nil {
			return nil, QueryOutput{}, WrapError(err)
		}

		out := QueryOutput{
			Values:       result.Values,
			Errors:       result.Errors,
			RawCount:     result.RawCount,
			Truncated:    result.Truncated,
			SourceCounts: result.SourceCounts,
		}
		return nil, out, nil
	}
}
