package prompts

import (
	"context"
	"fmt"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// HandleToolGuide serves the tool usage guide.
func HandleToolGuide(cfg *Config) func(ctx context.Context, req *sdkmcp.GetPromptRequest) (*sdkmcp.GetPromptResult, error) {
	return func(ctx context.Context, req *sdkmcp.GetPromptRequest) (*sdkmcp.GetPromptResult, error) {
		var sb strings.Builder

		sb.WriteString("# Critical Path Tool Guide\n\n")

		sb.WriteString("## Concepts\n\n")
		sb.WriteString("- **Interval**: one input CSV file; intervals are numbered by their position in `inputs`")
		if cfg.IntervalMinutes > 0 {
			fmt.Fprintf(&sb, " and each spans %d minutes", cfg.IntervalMinutes)
		}
		sb.WriteString("\n")
		sb.WriteString("- **Critical path**: per trace, a greedy chain from the call that ends last, following the slowest later call of each downstream module. It approximates, not proves, the latency-dominant chain.\n")
		sb.WriteString("- **Interaction**: an edge `upstream --> downstream` on some critical path\n")
		fmt.Fprintf(&sb, "- **High variation**: an interaction whose std in some interval exceeds %gx the mean of its per-interval stds. Interactions seen in a single interval are never flagged.\n\n", cfg.HighVariationFactor)

		sb.WriteString("## Tools by Context Cost\n\n")
		sb.WriteString("| Tool | Cost | Use |\n")
		sb.WriteString("|------|------|-----|\n")
		sb.WriteString("| `critpath_summary` | low | counts, flagged interactions, skipped inputs |\n")
		sb.WriteString("| `critpath_interactions` | low-medium | browse edges; filter with `module` or `high_variation_only` |\n")
		sb.WriteString("| `critpath_interaction` | low | one edge's per-interval p50/p95/std |\n")
		sb.WriteString("| `critpath_trace` | low | one trace's path and step times |\n")
		sb.WriteString("| `critpath_query` | varies | jq over exports; cap with `max_results` |\n")
		sb.WriteString("| `critpath://export/{kind}` | high | full export; prefer `critpath_query` |\n\n")

		sb.WriteString("## JQ Quick Reference\n\n")
		sb.WriteString("- `[.[][] | .critical_path] | group_by(.) | map({path: .[0], n: length}) | sort_by(-.n)` - most common critical paths\n")
		sb.WriteString("- `.[\"0\"] | to_entries[] | select(.value.response_times | add > 1000) | .key` - slow traces in interval 0\n")
		sb.WriteString("- `to_entries[] | select(.value.counts | add > 100) | .key` (exports: [\"interaction_stats\"]) - busy interactions\n")

		return &sdkmcp.GetPromptResult{
			Description: "Guide to the critical-path analysis tools",
			Messages: []*sdkmcp.PromptMessage{
				{
					Role:    "user",
					Content: &sdkmcp.TextContent{Text: sb.String()},
				},
			},
		}, nil
	}
}
