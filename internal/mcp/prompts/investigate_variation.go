package prompts

import (
	"context"
	"fmt"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// HandleInvestigateVariation walks through explaining a latency regression
// from high-variation interactions.
func HandleInvestigateVariation(cfg *Config) func(ctx context.Context, req *sdkmcp.GetPromptRequest) (*sdkmcp.GetPromptResult, error) {
	return func(ctx context.Context, req *sdkmcp.GetPromptRequest) (*sdkmcp.GetPromptResult, error) {
		var inputs, interaction string
		if args := req.Params.Arguments; args != nil {
			inputs = args["inputs"]
			interaction = args["interaction"]
		}

		var sb strings.Builder

		sb.WriteString("# Investigate High-Variation Interactions\n\n")
		sb.WriteString("You are a performance engineer. Explain which service-to-service calls make end-to-end latency unstable, ")
		sb.WriteString("when it happens, and which request chains are affected.\n\n")

		sb.WriteString("## Workflow Steps\n\n")
		step := 1
		if inputs != "" {
			fmt.Fprintf(&sb, "%d. **Analyze** the inputs in interval order\n", step)
			fmt.Fprintf(&sb, "   `critpath_analyze(inputs=[%s])`\n", quoteList(inputs))
			step++
		}
		fmt.Fprintf(&sb, "%d. **Summarize** with `critpath_summary()`. Note skipped inputs and failed traces before drawing conclusions.\n", step)
		step++
		if interaction != "" {
			fmt.Fprintf(&sb, "%d. **Detail** the interaction: `critpath_interaction(interaction=%q)`\n", step, interaction)
		} else {
			fmt.Fprintf(&sb, "%d. **Detail** each entry of `high_variation`: `critpath_interaction(interaction=...)`\n", step)
		}
		sb.WriteString("   - Compare the peak interval's p95 with the other intervals; a jump in p95 with a stable p50 means tail latency, a jump in both means a shift\n")
		fmt.Fprintf(&sb, "   - The flag fires when the peak std exceeds %gx the baseline std\n", cfg.HighVariationFactor)
		step++
		fmt.Fprintf(&sb, "%d. **Trace** the example path with `critpath_trace(trace_id=...)` to see which steps dominate\n", step)
		step++
		fmt.Fprintf(&sb, "%d. **Quantify** reach with `critpath_query`, e.g. counting traces whose critical path contains the interaction:\n", step)
		sb.WriteString("   `[.[][] | select(.critical_path | contains(\"<up> --> <down>\"))] | length`\n\n")

		sb.WriteString("## Expected Output Format\n\n")
		sb.WriteString("1. **Overview**: intervals, traces, flagged interactions\n")
		sb.WriteString("2. **Per flagged interaction**: peak interval, baseline vs peak std, p50/p95 shift, affected critical paths\n")
		sb.WriteString("3. **Key Findings**: likely culprit modules and when to look\n\n")

		sb.WriteString("## Constraints\n\n")
		sb.WriteString("- Critical paths are greedy approximations; treat them as evidence, not proof\n")
		sb.WriteString("- Interactions seen in one interval carry no variation signal\n")
		sb.WriteString("- Do NOT read full export resources unless a query cannot answer the question\n")

		return &sdkmcp.GetPromptResult{
			Description: "Guide for investigating high-variation interactions",
			Messages: []*sdkmcp.PromptMessage{
				{
					Role:    "user",
					Content: &sdkmcp.TextContent{Text: sb.String()},
				},
			},
		}, nil
	}
}

func quoteList(csv string) string {
	var parts []string
	for _, p := range strings.Split(csv, ",") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, fmt.Sprintf("%q", p))
		}
	}
	return strings.Join(parts, ", ")
}
