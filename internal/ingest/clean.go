package ingest

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// CleanFile applies the cleaning rules to the CSV at src and writes the
// surviving records, with the canonical header, to dst.
func CleanFile(src, dst string) (CleanStats, error) {
	in, err := os.Open(src)
	if err != nil {
		return CleanStats{}, fmt.Errorf("opening %s: %w", src, err)
	}
	defer in.Close()

	batch, err := Parse(in, src)
	if err != nil {
		return CleanStats{}, err
	}

	if dir := filepath.Dir(dst); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return CleanStats{}, fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	out, err := os.Create(dst)
	if err != nil {
		return CleanStats{}, fmt.Errorf("creating %s: %w", dst, err)
	}
	if err := Write(out, batch.Records); err != nil {
		out.Close()
		return CleanStats{}, fmt.Errorf("writing %s: %w", dst, err)
	}
	if err := out.Close(); err != nil {
		return CleanStats{}, fmt.Errorf("closing %s: %w", dst, err)
	}

	slog.Info("cleaned dataset saved",
		slog.String("source", src),
		slog.String("destination", dst),
		slog.Int("removed", batch.Stats.Removed()),
		slog.Int("remaining", batch.Stats.Remaining),
	)
	return batch.Stats, nil
}
