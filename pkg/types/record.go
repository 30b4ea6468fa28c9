package types

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrMalformedRecord is the sentinel wrapped by every MalformedRecordError.
var ErrMalformedRecord = errors.New("malformed call record")

// MalformedRecordError reports a record that violates the CallRecord invariants.
type MalformedRecordError struct {
	TraceID string
	Seq     int
	Reason  string
}

func (e *MalformedRecordError) Error() string {
	if e.TraceID == "" {
		return fmt.Sprintf("malformed call record at row %d: %s", e.Seq, e.Reason)
	}
	return fmt.Sprintf("malformed call record at row %d of trace %s: %s", e.Seq, e.TraceID, e.Reason)
}

func (e *MalformedRecordError) Unwrap() error {
	return ErrMalformedRecord
}

// CallRecord is one observed call between two modules within one trace.
type CallRecord struct {
	TraceID          string  `json:"trace_id"`
	Timestamp        int64   `json:"timestamp"`
	UpstreamModule   string  `json:"upstream_module"`
	DownstreamModule string  `json:"downstream_module"`
	ResponseTime     float64 `json:"response_time"`

	// Seq is the record's position in its source table. It breaks timestamp ties.
	Seq int `json:"seq"`
}

// EndTime returns Timestamp + ResponseTime.
func (r CallRecord) EndTime() float64 {
	return float64(r.Timestamp) + r.ResponseTime
}

// Validate checks the CallRecord invariants.
func (r CallRecord) Validate() error {
	switch {
	case r.TraceID == "":
		return &MalformedRecordError{Seq: r.Seq, Reason: "empty trace id"}
	case r.UpstreamModule == "":
		return &MalformedRecordError{TraceID: r.TraceID, Seq: r.Seq, Reason: "missing upstream module"}
	case r.DownstreamModule == "":
		return &MalformedRecordError{TraceID: r.TraceID, Seq: r.Seq, Reason: "missing downstream module"}
	case strings.Contains(r.UpstreamModule, PathSeparator) || strings.Contains(r.DownstreamModule, PathSeparator):
		return &MalformedRecordError{TraceID: r.TraceID, Seq: r.Seq, Reason: fmt.Sprintf("module name contains %q", PathSeparator)}
	case math.IsNaN(r.ResponseTime) || math.IsInf(r.ResponseTime, 0):
		return &MalformedRecordError{TraceID: r.TraceID, Seq: r.Seq, Reason: "response time is not a finite number"}
	case r.ResponseTime < 0:
		return &MalformedRecordError{TraceID: r.TraceID, Seq: r.Seq, Reason: fmt.Sprintf("negative response time %v", r.ResponseTime)}
	}
	return nil
}

// Trace is the set of calls sharing one trace id, ordered by (Timestamp, Seq).
type Trace struct {
	ID      string
	Records []CallRecord
}

// Len returns the number of records in the trace.
func (t *Trace) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Records)
}
