package prompts

import (
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// Register registers all prompts with the MCP server.
func Register(srv *sdkmcp.Server, cfg *Config) {
	srv.AddPrompt(&sdkmcp.Prompt{
		Name:        "investigate_variation",
		Description: "RECOMMENDED: Explain unstable latency from high-variation interactions. Start here.",
		Arguments: []*sdkmcp.PromptArgument{
			{
				Name:        "inputs",
				Description: "Comma-separated CSV files to analyze first, in interval order",
				Required:    false,
			},
			{
				Name:        "interaction",
				Description: "Interaction to focus on, as 'upstream --> downstream'",
				Required:    false,
			},
		},
	}, HandleInvestigateVariation(cfg))

	srv.AddPrompt(&sdkmcp.Prompt{
		Name:        "tool_guide",
		Description: "Concepts and context costs of the critical-path tools, with jq examples.",
	}, HandleToolGuide(cfg))
}
