package callgraph

import (
	"errors"
	"fmt"
)

// ErrEmptyTrace is the sentinel wrapped by every EmptyTraceError.
var ErrEmptyTrace = errors.New("empty trace")

// EmptyTraceError reports a trace with zero records reaching the reconstructor.
type EmptyTraceError struct {
	TraceID string
}

func (e *EmptyTraceError) Error() string {
	return fmt.Sprintf("trace %q has no call records", e.TraceID)
}

func (e *EmptyTraceError) Unwrap() error {
	return ErrEmptyTrace
}
