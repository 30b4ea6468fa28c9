// Package query runs jq expressions over analysis exports.
package query

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/itchyny/gojq"

	"github.com/usestring/critpath/pkg/types"
)

// DefaultMaxResults caps result size when the engine is given no limit.
const DefaultMaxResults = 1000

// Document is one parsed JSON input. Label names it in errors and is bound to
// $source inside expressions.
type Document struct {
	Label string
	Value any
}

// ParseDocument decodes raw JSON.
func ParseDocument(label string, data []byte) (Document, error) {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return Document{}, fmt.Errorf("%s: invalid JSON: %w", label, err)
	}
	return Document{Label: label, Value: v}, nil
}

// DocumentOf converts a Go value into the generic form jq operates on.
func DocumentOf(label string, v any) (Document, error) {
	generic, err := types.ToAny(v)
	if err != nil {
		return Document{}, fmt.Errorf("%s: encoding: %w", label, err)
	}
	return Document{Label: label, Value: generic}, nil
}

// Engine executes jq expressions.
type Engine struct {
	maxResults int
}

// NewEngine creates an engine returning at most maxResults values per query.
// Non-positive means DefaultMaxResults.
func NewEngine(maxResults int) *Engine {
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}
	return &Engine{maxResults: maxResults}
}

// MaxResults returns the result cap.
func (e *Engine) MaxResults() int {
	return e.maxResults
}

// Result holds the values an expression produced.
type Result struct {
	Values       []any          `json:"values"`
	Errors       []string       `json:"errors,omitempty"`
	RawCount     int            `json:"raw_count"`           // before deduplication
	Truncated    bool           `json:"truncated,omitempty"` // hit the result cap
	SourceCounts map[string]int `json:"source_counts,omitempty"`
}

func compile(expression string) (*gojq.Code, error) {
	q, err := gojq.Parse(expression)
	if err != nil {
		var parseErr *gojq.ParseError
		if errors.As(err, &parseErr) {
			return nil, fmt.Errorf("invalid jq expression at position %d: %w", parseErr.Offset, err)
		}
		return nil, fmt.Errorf("invalid jq expression: %w", err)
	}
	code, err := gojq.Compile(q, gojq.WithVariables([]string{"$source"}))
	if err != nil {
		return nil, fmt.Errorf("failed to compile jq expression: %w", err)
	}
	return code, nil
}

// ValidateExpression checks an expression without running it.
func (e *Engine) ValidateExpression(expression string) error {
	_, err := compile(expression)
	return err
}

// Run evaluates expression against each document in turn. Runtime errors are
// collected per document rather than aborting the query; null outputs are
// dropped.
func (e *Engine) Run(ctx context.Context, expression string, deduplicate bool, docs ...Document) (*Result, error) {
	code, err := compile(expression)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Values:       make([]any, 0),
		SourceCounts: make(map[string]int),
	}
	seen := make(map[string]bool)
	seenErrors := make(map[string]bool)

	for i, doc := range docs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		label := doc.Label
		if label == "" {
			label = fmt.Sprintf("input[%d]", i)
		}

		iter := code.RunWithContext(ctx, doc.Value, label)
		for {
			if len(result.Values) >= e.maxResults {
				result.Truncated = true
				return result, nil
			}
			v, ok := iter.Next()
			if !ok {
				break
			}
			if err, isErr := v.(error); isErr {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return nil, err
				}
				msg := formatJQError(label, err)
				if !seenErrors[msg] {
					seenErrors[msg] = true
					result.Errors = append(result.Errors, msg)
				}
				continue
			}
			if v == nil {
				continue
			}

			result.RawCount++
			result.SourceCounts[label]++

			if deduplicate {
				key := valueKey(v)
				if seen[key] {
					continue
				}
				seen[key] = true
			}
			result.Values = append(result.Values, v)
		}
	}

	return result, nil
}

// formatJQError decorates common runtime errors with a hint. gojq reports
// most of them as plain errors, so this matches on text.
func formatJQError(label string, err error) string {
	var haltErr *gojq.HaltError
	if errors.As(err, &haltErr) {
		if haltErr.Value() == nil {
			return fmt.Sprintf("%s: query halted", label)
		}
		return fmt.Sprintf("%s: query halted with: %v", label, haltErr.Value())
	}

	msg := err.Error()
	var hint string
	switch {
	case strings.Contains(msg, "cannot iterate over: null"):
		hint = " (no such interval, trace or interaction)"
	case strings.Contains(msg, "cannot index") && strings.Contains(msg, "with"):
		hint = " (field not found or wrong type)"
	case strings.Contains(msg, "object") && strings.Contains(msg, "cannot be iterated"):
		hint = " (exports are keyed objects, try to_entries[] or .[])"
	case strings.Contains(msg, "array") && strings.Contains(msg, "cannot be indexed"):
		hint = " (expected object but got array, try adding '[]')"
	}
	return fmt.Sprintf("%s: %s%s", label, msg, hint)
}

func valueKey(v any) string {
	switch val := v.(type) {
	case string:
		return "s:" + val
	case float64, int:
		return fmt.Sprintf("n:%v", val)
	case bool:
		return fmt.Sprintf("b:%v", val)
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprintf("?:%v", val)
		}
		return "j:" + string(b)
	}
}
