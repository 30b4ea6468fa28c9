package mcpsrv

import (
	"context"
	"fmt"
	"log/slog"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/usestring/critpath/internal/batch"
	"github.com/usestring/critpath/internal/config"
	"github.com/usestring/critpath/internal/ingest"
	"github.com/usestring/critpath/internal/logging"
	"github.com/usestring/critpath/internal/mcp"
	"github.com/usestring/critpath/internal/mcp/tools"
	"github.com/usestring/critpath/internal/query"
	"github.com/usestring/critpath/internal/report"
)

// Server is the critpath MCP server.
// It wraps the internal implementation and provides extension points.
type Server struct {
	internal   *mcp.Server
	deps       *Deps
	inputs     []string
	logCleanup func() error
}

// NewServer creates a new MCP server with the builtin critpath tools.
func NewServer(opts ...Option) (*Server, error) {
	sc := &serverConfig{}
	for _, opt := range opts {
		opt(sc)
	}
	if sc.config == nil {
		cfg, err := config.Load()
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		sc.config = cfg
	}
	cfg := sc.config

	logCfg := logging.FromConfig(cfg)
	if sc.logLevel != "" {
		logCfg.Level = sc.logLevel
	}
	if sc.logFile != "" {
		logCfg.FilePath = sc.logFile
	}
	logCleanup, err := logging.Setup(logCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to setup logging: %w", err)
	}

	loader, err := ingest.NewLoader(cfg.BatchCacheMaxItems)
	if err != nil {
		logCleanup()
		return nil, fmt.Errorf("failed to create batch loader: %w", err)
	}

	toolDeps := &tools.Deps{
		Config:     cfg,
		Source:     loader,
		Processor:  batch.New(cfg.Workers),
		Query:      query.NewEngine(cfg.QueryMaxResults),
		Summarizer: &report.Summarizer{IntervalMinutes: cfg.IntervalMinutes, ExportCCT: cfg.ExportCCT},
	}
	deps := &Deps{
		Config:     cfg,
		Loader:     loader,
		Processor:  toolDeps.Processor,
		Query:      toolDeps.Query,
		Summarizer: toolDeps.Summarizer,
		tools:      toolDeps,
	}

	var internalOpts []mcp.ServerOption
	if !sc.disableBuiltinTools {
		internalOpts = append(internalOpts, mcp.WithBuiltinTools())
	}
	if !sc.disableBuiltinPrompts {
		internalOpts = append(internalOpts, mcp.WithBuiltinPrompts())
	}
	for _, fn := range sc.toolRegistrations {
		internalOpts = append(internalOpts, mcp.WithCustomRegistration(fn))
	}
	for _, fn := range sc.promptRegistrations {
		internalOpts = append(internalOpts, mcp.WithCustomRegistration(fn))
	}
	for _, fn := range sc.resourceRegistrations {
		internalOpts = append(internalOpts, mcp.WithCustomRegistration(fn))
	}
	for _, fn := range sc.deferredToolRegistrations {
		internalOpts = append(internalOpts, mcp.WithCustomRegistration(func(srv *sdkmcp.Server) {
			fn(srv, deps)
		}))
	}

	internal, err := mcp.NewServer(toolDeps, internalOpts...)
	if err != nil {
		logCleanup()
		return nil, fmt.Errorf("failed to create server: %w", err)
	}

	return &Server{
		internal:   internal,
		deps:       deps,
		inputs:     sc.inputs,
		logCleanup: logCleanup,
	}, nil
}

// Run analyzes the configured inputs, if any, then serves MCP over stdio
// until the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	if len(s.inputs) > 0 {
		res, err := s.deps.Analyze(ctx, s.inputs, 0)
		if err != nil {
			return fmt.Errorf("initial analysis: %w", err)
		}
		slog.Info("initial analysis loaded",
			slog.Int("intervals", len(res.Intervals)),
			slog.Int("traces", res.TraceCount()),
		)
	}
	return s.internal.Run(ctx)
}

// Close cleans up server resources.
func (s *Server) Close() error {
	if s.logCleanup != nil {
		return s.logCleanup()
	}
	return nil
}

// Deps returns the dependencies for building custom tools.
func (s *Server) Deps() *Deps {
	return s.deps
}

// MCPServer returns the underlying MCP server.
func (s *Server) MCPServer() *sdkmcp.Server {
	return s.internal.MCPServer()
}
