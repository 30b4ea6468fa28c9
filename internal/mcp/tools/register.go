package tools

import (
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// Register registers all tools with the MCP server.
func Register(srv *sdkmcp.Server, d *Deps) {
	AddTool(srv, &sdkmcp.Tool{
		Name:        "critpath_analyze",
		Description: "Reconstruct the critical path of every trace in the given CSV files (one file per interval, in order), aggregate per-interaction response time statistics across intervals and flag high-variation interactions. Replaces the current analysis. Returns the same shape as critpath_summary.",
	}, ToolAnalyze(d))

	AddTool(srv, &sdkmcp.Tool{
		Name:        "critpath_summary",
		Description: "Summarize the current analysis: interval, trace and critical path counts, high-variation interactions with an example critical path each, and skipped inputs. Start here.",
	}, ToolSummary(d))

	AddTool(srv, &sdkmcp.Tool{
		Name:        "critpath_trace",
		Description: "Get one trace's critical path with per-step response times. Steps on high-variation interactions are marked. Set include_cct=true for the call context tree.",
	}, ToolTrace(d))

	AddTool(srv, &sdkmcp.Tool{
		Name:        "critpath_interactions",
		Description: "List interactions ('upstream --> downstream') with mean of per-interval means, mean of per-interval stds and total count, sorted by key. Filter by module or to high-variation only.",
	}, ToolInteractions(d))

	AddTool(srv, &sdkmcp.Tool{
		Name:        "critpath_interaction",
		Description: "Detail one interaction: baseline and peak std, whether it was flagged, an example critical path, and per-interval count, mean, std, min, max, p50 and p95.",
	}, ToolInteraction(d))

	AddTool(srv, &sdkmcp.Tool{
		Name:        "critpath_query",
		Description: "Run a jq expression over the current analysis exports. critical_paths is {interval: {trace_id: {critical_path, response_times}}}; interaction_stats is {interaction: {intervals, means, stds, counts}}; call_context is {interval: {trace_id: {upstream: [downstream]}}}.",
	}, ToolQuery(d))

	AddTool(srv, &sdkmcp.Tool{
		Name:        "critpath_export_schema",
		Description: "Get the JSON Schema of an export kind (critical_paths, interaction_stats, call_context).",
	}, ToolExportSchema(d))

	AddTool(srv, &sdkmcp.Tool{
		Name:        "critpath_validate_export",
		Description: "Validate an export file against its JSON Schema and the cross-field rules (path length, parallel arrays, interval order).",
	}, ToolValidateExport(d))
}
