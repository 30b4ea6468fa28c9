package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoader_Load(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "interval_0.csv")
	require.NoError(t, os.WriteFile(path, []byte("traceid,timestamp,um,dm,rt\nt1,0,A,B,5\n"), 0644))

	l, err := NewLoader(4)
	require.NoError(t, err)

	first, err := l.Load(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, first.Records, 1)
	assert.Equal(t, path, first.Source)

	second, err := l.Load(context.Background(), path)
	require.NoError(t, err)
	assert.Same(t, first, second, "unchanged file is served from cache")
	assert.Equal(t, 1, l.Len())
}

func TestLoader_Load_errors(t *testing.T) {
	l, err := NewLoader(0)
	require.NoError(t, err)

	_, err = l.Load(context.Background(), filepath.Join(t.TempDir(), "missing.csv"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = l.Load(context.Background(), t.TempDir())
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = l.Load(ctx, "whatever.csv")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCleanFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "raw.csv")
	dst := filepath.Join(dir, "out", "clean.csv")
	require.NoError(t, os.WriteFile(src, []byte("traceid,timestamp,um,dm,rt\nt1,0,A,B,5\nt2,0,A,B,NaN\n"), 0644))

	stats, err := CleanFile(src, dst)
	require.NoError(t, err)
	assert.Equal(t, CleanStats{Initial: 2, RemovedInvalidRT: 1, Remaining: 1}, stats)

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "trace_id,timestamp,upstream_module,downstream_module,response_time\nt1,0,A,B,5\n", string(data))
}
