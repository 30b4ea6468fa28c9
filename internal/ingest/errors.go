package ingest

import (
	"errors"
	"fmt"
)

// ErrMissingColumn is returned when the input header lacks a required column.
var ErrMissingColumn = errors.New("missing required column")

// ErrEmptyInput is returned for an input without a header row.
var ErrEmptyInput = errors.New("empty input")

func missingColumn(name string, aliases []string) error {
	return fmt.Errorf("%w %q (accepted names: %v)", ErrMissingColumn, name, aliases)
}
