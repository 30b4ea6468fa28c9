package tools

import (
	"context"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/usestring/critpath/pkg/types"
)

const defaultInteractionLimit = 100

// InteractionsInput is the input for critpath_interactions.
type InteractionsInput struct {
	HighVariationOnly bool   `json:"high_variation_only,omitempty" jsonschema:"Only return flagged interactions"`
	Module            string `json:"module,omitempty" jsonschema:"Only return interactions with this module as upstream or downstream"`
	Limit             int    `json:"limit,omitempty" jsonschema:"Max interactions to return (default: 100)"`
}

// InteractionsOutput is the output for critpath_interactions.
type InteractionsOutput struct {
	Interactions []InteractionRow `json:"interactions,omitempty"`
	Total        int              `json:"total"`
	Truncated    bool             `json:"truncated,omitempty"`
}

// InteractionInput is the input for critpath_interaction.
type InteractionInput struct {
	Interaction string `json:"interaction" jsonschema:"Interaction key in the form 'upstream --> downstream'"`
}

// InteractionOutput is the output for critpath_interaction.
type InteractionOutput struct {
	Summary      InteractionRow   `json:"summary"`
	BaselineStd  float64          `json:"baseline_std_ms"`
	PeakStd      float64          `json:"peak_std_ms"`
	PeakInterval int              `json:"peak_interval"`
	Degenerate   bool             `json:"degenerate,omitempty"` // seen in a single interval
	ExamplePath  string           `json:"example_path,omitempty"`
	PerInterval  []IntervalDetail `json:"per_interval,omitempty"`
}

// ToolInteractions lists interactions sorted by key.
func ToolInteractions(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input InteractionsInput) (*sdkmcp.CallToolResult, InteractionsOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input InteractionsInput) (*sdkmcp.CallToolResult, InteractionsOutput, error) {
		res, err := d.Result()
		if err != nil {
			return nil, InteractionsOutput{}, err
		}

		limit := input.Limit
		if limit <= 0 {
			limit = defaultInteractionLimit
		}

		var out InteractionsOutput
		for _, key := range res.Keys() {
			if input.HighVariationOnly && !res.Report.IsFlagged(key) {
				continue
			}
			if input.Module != "" && key.Upstream != input.Module && key.Downstream != input.Module {
				continue
			}
			out.Total++
			if len(out.Interactions) >= limit {
				out.Truncated = true
				continue
			}
			out.Interactions = append(out.Interactions, interactionRow(res, key))
		}
		return nil, out, nil
	}
}

// ToolInteraction details one interaction across intervals.
func ToolInteraction(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input InteractionInput) (*sdkmcp.CallToolResult, InteractionOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input InteractionInput) (*sdkmcp.CallToolResult, InteractionOutput, error) {
		key, err := types.ParseInteractionKey(strings.TrimSpace(input.Interaction))
		if err != nil {
			return nil, InteractionOutput{}, ErrInvalidInput(err.Error())
		}
		res, err := d.Result()
		if err != nil {
			return nil, InteractionOutput{}, err
		}
		if _, ok := res.Stats[key]; !ok {
			return nil, InteractionOutput{}, ErrNotFound("interaction", key.String())
		}

		f := res.Report.Findings[key]
		example, _ := res.ExamplePath(key)
		return nil, InteractionOutput{
			Summary:      interactionRow(res, key),
			BaselineStd:  f.BaselineSpread,
			PeakStd:      f.PeakStdDev,
			PeakInterval: f.PeakInterval,
			Degenerate:   res.Stats[key].Len() == 1,
			ExamplePath:  example,
			PerInterval:  d.intervalDetails(res, key),
		}, nil
	}
}
