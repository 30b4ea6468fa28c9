package tools

import (
	"context"
	"fmt"
	"net/url"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/usestring/critpath/pkg/types"
)

// URIScheme prefixes every critpath resource URI.
const URIScheme = "critpath://"

// TraceURI returns the resource URI of a trace.
func TraceURI(traceID string) string {
	return URIScheme + "trace/" + url.PathEscape(traceID)
}

// InteractionURI returns the resource URI of an interaction.
func InteractionURI(key types.InteractionKey) string {
	return URIScheme + "interaction/" + url.PathEscape(key.String())
}

// TraceInput is the input for critpath_trace.
type TraceInput struct {
	TraceID    string `json:"trace_id" jsonschema:"Trace to look up"`
	IncludeCCT bool   `json:"include_cct,omitempty" jsonschema:"Also return the trace's call context tree (upstream -> downstream modules)"`
}

// TraceStep is one edge on a critical path.
type TraceStep struct {
	Interaction   string  `json:"interaction"`
	ResponseTime  float64 `json:"response_time_ms"`
	HighVariation bool    `json:"high_variation"`
}

// TraceOutput is the output for critpath_trace.
type TraceOutput struct {
	TraceID           string              `json:"trace_id"`
	Interval          int                 `json:"interval"`
	IntervalLabel     string              `json:"interval_label"`
	CriticalPath      string              `json:"critical_path"`
	Steps             []TraceStep         `json:"steps,omitempty"`
	TotalResponseTime float64             `json:"total_response_time_ms"`
	CallContext       map[string][]string `json:"call_context,omitempty"`
	Resource          *types.ResourceRef  `json:"resource,omitempty"`
}

// ToolTrace returns one trace's critical path.
func ToolTrace(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input TraceInput) (*sdkmcp.CallToolResult, TraceOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input TraceInput) (*sdkmcp.CallToolResult, TraceOutput, error) {
		if input.TraceID == "" {
			return nil, TraceOutput{}, ErrInvalidInput("trace_id is required")
		}
		res, err := d.Result()
		if err != nil {
			return nil, TraceOutput{}, err
		}

		ir, path, ok := res.FindTrace(input.TraceID)
		if !ok {
			for _, ir := range res.Intervals {
				for _, f := range ir.Failures {
					if f.TraceID == input.TraceID {
						return nil, TraceOutput{}, &CodedError{
							Code:    ErrCodeNotFound,
							Message: fmt.Sprintf("trace %s failed reconstruction in %s: %s", f.TraceID, d.Summarizer.IntervalLabel(ir.Index), f.Error),
						}
					}
				}
			}
			return nil, TraceOutput{}, ErrNotFound("trace", input.TraceID)
		}

		out := TraceOutput{
			TraceID:       input.TraceID,
			Interval:      ir.Index,
			IntervalLabel: d.Summarizer.IntervalLabel(ir.Index),
			CriticalPath:  path.String(),
		}
		for _, e := range path.Edges() {
			out.Steps = append(out.Steps, TraceStep{
				Interaction:   e.Key.String(),
				ResponseTime:  e.ResponseTime,
				HighVariation: res.Report.IsFlagged(e.Key),
			})
			out.TotalResponseTime += e.ResponseTime
		}
		out.Resource = &types.ResourceRef{
			URI:  TraceURI(input.TraceID),
			MIME: MimeJSON,
			Hint: "Critical path with the full call context tree",
		}
		if input.IncludeCCT {
			out.CallContext = ir.CCTs[input.TraceID]
		}
		return nil, out, nil
	}
}
