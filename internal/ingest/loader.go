package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"
)

// Loader reads interval batches from disk. Parsed batches are cached by path,
// size and modification time, and concurrent loads of one file are coalesced.
type Loader struct {
	cache *lru.Cache[string, *Batch]
	group singleflight.Group
}

// NewLoader creates a Loader caching up to maxItems batches.
func NewLoader(maxItems int) (*Loader, error) {
	if maxItems <= 0 {
		maxItems = 1
	}
	c, err := lru.New[string, *Batch](maxItems)
	if err != nil {
		return nil, err
	}
	return &Loader{cache: c}, nil
}

// Load returns the cleaned batch stored at path.
func (l *Loader) Load(ctx context.Context, path string) (*Batch, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}
	key := path + "|" + strconv.FormatInt(info.Size(), 10) + "|" + strconv.FormatInt(info.ModTime().UnixNano(), 10)

	if b, ok := l.cache.Get(key); ok {
		slog.Debug("batch cache hit", slog.String("path", path))
		return b, nil
	}

	v, err, _ := l.group.Do(key, func() (any, error) {
		return l.read(path)
	})
	if err != nil {
		return nil, err
	}
	b := v.(*Batch)
	l.cache.Add(key, b)
	return b, nil
}

func (l *Loader) read(path string) (*Batch, error) {
	start := time.Now()
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	b, err := Parse(f, path)
	if err != nil {
		return nil, err
	}

	slog.Info("batch loaded",
		slog.String("path", path),
		slog.Int("initial", b.Stats.Initial),
		slog.Int("bad_lines", b.Stats.BadLines),
		slog.Int("removed_invalid_rt", b.Stats.RemovedInvalidRT),
		slog.Int("removed_incomplete", b.Stats.RemovedIncomplete),
		slog.Int("remaining", b.Stats.Remaining),
		slog.Int64("duration_ms", time.Since(start).Milliseconds()),
	)
	return b, nil
}

// Len returns the number of cached batches.
func (l *Loader) Len() int {
	return l.cache.Len()
}
