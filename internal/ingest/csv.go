// Package ingest loads interval batches of call records from CSV and applies
// the cleaning rules the analysis assumes.
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/usestring/critpath/pkg/types"
)

// Canonical column names, written by Clean.
const (
	ColTraceID          = "trace_id"
	ColTimestamp        = "timestamp"
	ColUpstreamModule   = "upstream_module"
	ColDownstreamModule = "downstream_module"
	ColResponseTime     = "response_time"
)

// columnAliases lists the accepted header names per column. The short names are
// the ones used by the public call-graph datasets.
var columnAliases = map[string][]string{
	ColTraceID:          {"trace_id", "traceid"},
	ColTimestamp:        {"timestamp", "ts"},
	ColUpstreamModule:   {"upstream_module", "um"},
	ColDownstreamModule: {"downstream_module", "dm"},
	ColResponseTime:     {"response_time", "rt"},
}

var columnOrder = []string{ColTraceID, ColTimestamp, ColUpstreamModule, ColDownstreamModule, ColResponseTime}

// CleanStats reports what the cleaning rules removed from one input.
type CleanStats struct {
	Initial           int `json:"initial"`
	BadLines          int `json:"bad_lines"`
	RemovedInvalidRT  int `json:"removed_invalid_rt"`
	RemovedIncomplete int `json:"removed_incomplete"`
	Remaining         int `json:"remaining"`
}

// Removed returns the number of rows dropped by the cleaning rules.
func (s CleanStats) Removed() int {
	return s.RemovedInvalidRT + s.RemovedIncomplete
}

// PercentRemoved returns Removed as a percentage of Initial.
func (s CleanStats) PercentRemoved() float64 {
	if s.Initial == 0 {
		return 0
	}
	return float64(s.Removed()) / float64(s.Initial) * 100
}

// Batch is the validated call-record table of one interval.
type Batch struct {
	Source  string
	Records []types.CallRecord
	Stats   CleanStats
}

type rawRow struct {
	seq    int
	fields [5]string
}

// Parse reads a CSV table with a header row and applies the cleaning rules:
//
//  1. rows with the wrong number of fields are skipped;
//  2. every row of a trace that has any row with a non-numeric response time is dropped;
//  3. remaining rows with an empty field or an unparseable timestamp are dropped.
//
// Columns other than the five call-record columns are ignored.
func Parse(r io.Reader, source string) (*Batch, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.ReuseRecord = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%s: %w", source, ErrEmptyInput)
	}
	if err != nil {
		return nil, fmt.Errorf("reading header of %s: %w", source, err)
	}

	positions, err := resolveColumns(header)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", source, err)
	}
	width := len(header)

	batch := &Batch{Source: source}
	var rows []rawRow
	invalidTraces := make(map[string]bool)

	for seq := 0; ; seq++ {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				batch.Stats.BadLines++
				continue
			}
			return nil, fmt.Errorf("reading %s: %w", source, err)
		}
		if len(rec) != width {
			batch.Stats.BadLines++
			continue
		}

		var row rawRow
		row.seq = seq
		for i, pos := range positions {
			row.fields[i] = strings.TrimSpace(rec[pos])
		}
		if !isNumeric(row.fields[4]) {
			invalidTraces[row.fields[0]] = true
		}
		rows = append(rows, row)
	}
	batch.Stats.Initial = len(rows)

	batch.Records = make([]types.CallRecord, 0, len(rows))
	for _, row := range rows {
		if invalidTraces[row.fields[0]] {
			batch.Stats.RemovedInvalidRT++
			continue
		}
		rec, ok := toRecord(row)
		if !ok {
			batch.Stats.RemovedIncomplete++
			continue
		}
		batch.Records = append(batch.Records, rec)
	}
	batch.Stats.Remaining = len(batch.Records)

	return batch, nil
}

func resolveColumns(header []string) ([5]int, error) {
	var positions [5]int
	index := make(map[string]int, len(header))
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(h))
		if _, dup := index[name]; !dup {
			index[name] = i
		}
	}
	for i, col := range columnOrder {
		found := false
		for _, alias := range columnAliases[col] {
			if pos, ok := index[alias]; ok {
				positions[i] = pos
				found = true
				break
			}
		}
		if !found {
			return positions, missingColumn(col, columnAliases[col])
		}
	}
	return positions, nil
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	v, err := strconv.ParseFloat(s, 64)
	return err == nil && !math.IsNaN(v)
}

func toRecord(row rawRow) (types.CallRecord, bool) {
	for _, f := range row.fields {
		if f == "" {
			return types.CallRecord{}, false
		}
	}
	ts, err := parseTimestamp(row.fields[1])
	if err != nil {
		return types.CallRecord{}, false
	}
	rt, err := strconv.ParseFloat(row.fields[4], 64)
	if err != nil {
		return types.CallRecord{}, false
	}
	return types.CallRecord{
		TraceID:          row.fields[0],
		Timestamp:        ts,
		UpstreamModule:   row.fields[2],
		DownstreamModule: row.fields[3],
		ResponseTime:     rt,
		Seq:              row.seq,
	}, true
}

// parseTimestamp accepts integers and integral floats ("1.0").
func parseTimestamp(s string) (int64, error) {
	if ts, err := strconv.ParseInt(s, 10, 64); err == nil {
		return ts, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, fmt.Errorf("timestamp %q is not an integer", s)
	}
	return int64(f), nil
}

// Write emits records as CSV with the canonical header.
func Write(w io.Writer, records []types.CallRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(columnOrder); err != nil {
		return err
	}
	for _, r := range records {
		row := []string{
			r.TraceID,
			strconv.FormatInt(r.Timestamp, 10),
			r.UpstreamModule,
			r.DownstreamModule,
			strconv.FormatFloat(r.ResponseTime, 'f', -1, 64),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
