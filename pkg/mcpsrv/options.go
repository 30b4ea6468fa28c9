package mcpsrv

import (
	"context"

	mcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/usestring/critpath/internal/config"
)

// serverConfig holds configuration built from options.
type serverConfig struct {
	config *config.Config
	inputs []string

	logLevel string
	logFile  string

	disableBuiltinTools   bool
	disableBuiltinPrompts bool

	toolRegistrations         []func(*mcp.Server)
	promptRegistrations       []func(*mcp.Server)
	resourceRegistrations     []func(*mcp.Server)
	deferredToolRegistrations []func(*mcp.Server, *Deps)
}

// Option configures the server.
type Option func(*serverConfig)

// WithConfig replaces the configuration loaded from the environment.
func WithConfig(cfg *config.Config) Option {
	return func(sc *serverConfig) {
		sc.config = cfg
	}
}

// WithInputs analyzes the given interval files before serving.
func WithInputs(paths ...string) Option {
	return func(sc *serverConfig) {
		sc.inputs = append(sc.inputs, paths...)
	}
}

// WithLogLevel sets the log level (debug, info, warn, error).
func WithLogLevel(level string) Option {
	return func(sc *serverConfig) {
		sc.logLevel = level
	}
}

// WithLogFile sets the log file path.
// If empty, logs are written to stderr only.
func WithLogFile(path string) Option {
	return func(sc *serverConfig) {
		sc.logFile = path
	}
}

// WithoutBuiltinTools disables the builtin tools and resources.
func WithoutBuiltinTools() Option {
	return func(sc *serverConfig) {
		sc.disableBuiltinTools = true
	}
}

// WithoutBuiltinPrompts disables the builtin prompts.
func WithoutBuiltinPrompts() Option {
	return func(sc *serverConfig) {
		sc.disableBuiltinPrompts = true
	}
}

// WithTool registers a custom tool with the server.
//
// The handler signature must match the MCP SDK pattern:
//
//	func(ctx context.Context, req *mcp.CallToolRequest, input T) (*mcp.CallToolResult, Out, error)
func WithTool[In, Out any](tool *mcp.Tool, handler func(context.Context, *mcp.CallToolRequest, In) (*mcp.CallToolResult, Out, error)) Option {
	return func(sc *serverConfig) {
		sc.toolRegistrations = append(sc.toolRegistrations, func(srv *mcp.Server) {
			AddTool(srv, tool, handler)
		})
	}
}

// WithDepsTool registers a custom tool that has access to Deps, for example
// to read the current analysis. The builder receives Deps and returns the
// handler.
func WithDepsTool[In, Out any](tool *mcp.Tool, builder func(*Deps) func(context.Context, *mcp.CallToolRequest, In) (*mcp.CallToolResult, Out, error)) Option {
	return func(sc *serverConfig) {
		sc.deferredToolRegistrations = append(sc.deferredToolRegistrations, func(srv *mcp.Server, deps *Deps) {
			AddTool(srv, tool, builder(deps))
		})
	}
}

// WithPrompt registers a custom prompt with the server.
func WithPrompt(prompt *mcp.Prompt, handler func(context.Context, *mcp.GetPromptRequest) (*mcp.GetPromptResult, error)) Option {
	return func(sc *serverConfig) {
		sc.promptRegistrations = append(sc.promptRegistrations, func(srv *mcp.Server) {
			srv.AddPrompt(prompt, handler)
		})
	}
}

// WithResourceTemplate registers a custom resource template with the server.
func WithResourceTemplate(template *mcp.ResourceTemplate, handler func(context.Context, *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error)) Option {
	return func(sc *serverConfig) {
		sc.resourceRegistrations = append(sc.resourceRegistrations, func(srv *mcp.Server) {
			srv.AddResourceTemplate(template, handler)
		})
	}
}
