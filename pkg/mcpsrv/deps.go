package mcpsrv

import (
	"context"

	"github.com/usestring/critpath/internal/batch"
	"github.com/usestring/critpath/internal/config"
	"github.com/usestring/critpath/internal/ingest"
	"github.com/usestring/critpath/internal/mcp/tools"
	"github.com/usestring/critpath/internal/pipeline"
	"github.com/usestring/critpath/internal/query"
	"github.com/usestring/critpath/internal/report"
)

// Deps contains all dependencies available to custom tools.
// This gives custom tools access to the same infrastructure as builtin tools.
type Deps struct {
	Config     *config.Config
	Loader     *ingest.Loader
	Processor  *batch.Processor
	Query      *query.Engine
	Summarizer *report.Summarizer

	tools *tools.Deps
}

// Result returns the current analysis run.
func (d *Deps) Result() (*pipeline.Result, error) {
	return d.tools.Result()
}

// Analyze runs a new analysis over paths and makes it current.
func (d *Deps) Analyze(ctx context.Context, paths []string, factor float64) (*pipeline.Result, error) {
	return d.tools.Analyze(ctx, paths, factor)
}
