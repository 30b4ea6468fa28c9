package query

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const criticalPaths = `{
	"0": {
		"t1": {"critical_path": "A --> B --> C", "response_times": [100, 50]},
		"t2": {"critical_path": "A --> B", "response_times": [80]}
	},
	"2": {
		"t3": {"critical_path": "A --> B --> C", "response_times": [10, 5]}
	}
}`

const interactionStats = `{
	"A --> B": {"intervals": [0, 2], "means": [90, 10], "stds": [10, 0], "counts": [2, 1]},
	"B --> C": {"intervals": [0, 2], "means": [50, 5], "stds": [0, 0], "counts": [1, 1]}
}`

func doc(t *testing.T, label, data string) Document {
	t.Helper()
	d, err := ParseDocument(label, []byte(data))
	require.NoError(t, err)
	return d
}

func TestEngine_Run(t *testing.T) {
	engine := NewEngine(0)

	result, err := engine.Run(context.Background(), `.["0"].t1.critical_path`, false, doc(t, "paths", criticalPaths))
	require.NoError(t, err)
	assert.Equal(t, []any{"A --> B --> C"}, result.Values)
	assert.Equal(t, 1, result.RawCount)
	assert.Equal(t, map[string]int{"paths": 1}, result.SourceCounts)
}

func TestEngine_Run_Deduplicate(t *testing.T) {
	engine := NewEngine(0)

	result, err := engine.Run(context.Background(), `.[][] | .critical_path`, true, doc(t, "paths", criticalPaths))
	require.NoError(t, err)
	assert.ElementsMatch(t, []any{"A --> B --> C", "A --> B"}, result.Values)
	assert.Equal(t, 3, result.RawCount)
}

func TestEngine_Run_Select(t *testing.T) {
	engine := NewEngine(0)

	result, err := engine.Run(context.Background(),
		`to_entries[] | select(.value.means | add / length > 30) | .key`, false,
		doc(t, "stats", interactionStats))
	require.NoError(t, err)
	assert.Equal(t, []any{"A --> B"}, result.Values)
}

func TestEngine_Run_SourceVariable(t *testing.T) {
	engine := NewEngine(0)

	result, err := engine.Run(context.Background(), `$source`, false,
		doc(t, "paths", criticalPaths), doc(t, "stats", interactionStats))
	require.NoError(t, err)
	assert.Equal(t, []any{"paths", "stats"}, result.Values)
}

func TestEngine_Run_MaxResults(t *testing.T) {
	engine := NewEngine(2)
	assert.Equal(t, 2, engine.MaxResults())

	d := doc(t, "nums", `[1, 2, 3, 4, 5]`)
	result, err := engine.Run(context.Background(), `.[]`, false, d)
	require.NoError(t, err)
	assert.Equal(t, []any{float64(1), float64(2)}, result.Values)
	assert.True(t, result.Truncated)
}

func TestEngine_Run_RuntimeErrors(t *testing.T) {
	engine := NewEngine(0)

	result, err := engine.Run(context.Background(), `.["9"][]`, false, doc(t, "paths", criticalPaths))
	require.NoError(t, err)
	assert.Empty(t, result.Values)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "paths: ")
	assert.Contains(t, result.Errors[0], "no such interval")
}

func TestEngine_Run_Halt(t *testing.T) {
	engine := NewEngine(0)

	result, err := engine.Run(context.Background(), `"stop" | halt_error`, false, doc(t, "x", `{}`))
	require.NoError(t, err)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "query halted with: stop")
}

func TestEngine_Run_InvalidExpression(t *testing.T) {
	engine := NewEngine(0)

	_, err := engine.Run(context.Background(), `.a[`, false, doc(t, "x", `{}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid jq expression")
}

func TestEngine_Run_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewEngine(0).Run(ctx, `.`, false, doc(t, "x", `{}`))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEngine_ValidateExpression(t *testing.T) {
	engine := NewEngine(0)

	assert.NoError(t, engine.ValidateExpression(`.[] | keys`))
	assert.NoError(t, engine.ValidateExpression(`$source`))
	assert.Error(t, engine.ValidateExpression(`.[`))
	assert.Error(t, engine.ValidateExpression(`$undefined`))
}

func TestParseDocument_InvalidJSON(t *testing.T) {
	_, err := ParseDocument("bad", []byte(`{`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad: invalid JSON")
}

func TestDocumentOf(t *testing.T) {
	type entry struct {
		Path string `json:"critical_path"`
	}
	d, err := DocumentOf("typed", map[string]entry{"t1": {Path: "A --> B"}})
	require.NoError(t, err)

	result, err := NewEngine(0).Run(context.Background(), `.t1.critical_path`, false, d)
	require.NoError(t, err)
	assert.Equal(t, []any{"A --> B"}, result.Values)
}

func TestFormatJQError_Hints(t *testing.T) {
	engine := NewEngine(0)

	result, err := engine.Run(context.Background(), `.[0]`, false, doc(t, "stats", interactionStats))
	require.NoError(t, err)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "stats: ")
}
