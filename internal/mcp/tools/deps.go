package tools

import (
	"context"
	"sync"

	"github.com/usestring/critpath/internal/batch"
	"github.com/usestring/critpath/internal/config"
	"github.com/usestring/critpath/internal/pipeline"
	"github.com/usestring/critpath/internal/query"
	"github.com/usestring/critpath/internal/report"
	"github.com/usestring/critpath/internal/variation"
)

// Deps contains all dependencies needed by tool handlers.
type Deps struct {
	Config     *config.Config
	Source     pipeline.BatchSource
	Processor  *batch.Processor
	Query      *query.Engine
	Summarizer *report.Summarizer

	mu     sync.RWMutex
	result *pipeline.Result
	inputs []string
}

// Analyze runs the pipeline over paths and makes the result current.
// A non-positive factor uses the configured one.
func (d *Deps) Analyze(ctx context.Context, paths []string, factor float64) (*pipeline.Result, error) {
	if factor <= 0 {
		factor = d.Config.HighVariationFactor
	}
	runner := pipeline.NewRunner(d.Source, d.Processor, variation.NewDetector(factor))
	res, err := runner.Run(ctx, pipeline.InputsFromPaths(paths))
	if err != nil {
		return nil, err
	}
	d.SetResult(res, paths)
	return res, nil
}

// SetResult replaces the current run.
func (d *Deps) SetResult(res *pipeline.Result, inputs []string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.result = res
	d.inputs = append([]string(nil), inputs...)
}

// Result returns the current run, or a NOT_FOUND error when none is loaded.
func (d *Deps) Result() (*pipeline.Result, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.result == nil {
		return nil, ErrNoAnalysis
	}
	return d.result, nil
}

// Inputs returns the files of the current run.
func (d *Deps) Inputs() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]string(nil), d.inputs...)
}
