package ingest

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usestring/critpath/pkg/types"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantStats CleanStats
		wantIDs   []string
	}{
		{
			name: "canonical header",
			input: "trace_id,timestamp,upstream_module,downstream_module,response_time\n" +
				"t1,0,A,B,5\n" +
				"t1,1,B,C,50\n",
			wantStats: CleanStats{Initial: 2, Remaining: 2},
			wantIDs:   []string{"t1", "t1"},
		},
		{
			name: "dataset header with extra columns",
			input: "timestamp,traceid,service,rpc_id,um,rpctype,dm,interface,rt\n" +
				"0,t1,s,0.1,A,rpc,B,i,5\n" +
				"1,t2,s,0.1,C,rpc,D,i,7.5\n",
			wantStats: CleanStats{Initial: 2, Remaining: 2},
			wantIDs:   []string{"t1", "t2"},
		},
		{
			name: "non-numeric response time drops the whole trace",
			input: "traceid,timestamp,um,dm,rt\n" +
				"t1,0,A,B,5\n" +
				"t1,1,B,C,unknown\n" +
				"t2,0,A,B,3\n" +
				"t3,0,A,B,\n",
			wantStats: CleanStats{Initial: 4, RemovedInvalidRT: 3, Remaining: 1},
			wantIDs:   []string{"t2"},
		},
		{
			name: "incomplete rows are dropped individually",
			input: "traceid,timestamp,um,dm,rt\n" +
				"t1,0,A,,5\n" +
				"t1,1,B,C,6\n" +
				"t2,x,A,B,3\n" +
				"t2,2.0,A,B,3\n",
			wantStats: CleanStats{Initial: 4, RemovedIncomplete: 2, Remaining: 2},
			wantIDs:   []string{"t1", "t2"},
		},
		{
			name: "rows with the wrong field count are skipped",
			input: "traceid,timestamp,um,dm,rt\n" +
				"t1,0,A,B,5,extra\n" +
				"t1,1,B,C,6\n",
			wantStats: CleanStats{Initial: 1, BadLines: 1, Remaining: 1},
			wantIDs:   []string{"t1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := Parse(strings.NewReader(tt.input), "test.csv")
			require.NoError(t, err)
			assert.Equal(t, tt.wantStats, b.Stats)

			ids := make([]string, len(b.Records))
			for i, r := range b.Records {
				ids[i] = r.TraceID
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func TestParse_recordFields(t *testing.T) {
	b, err := Parse(strings.NewReader("traceid,timestamp,um,dm,rt\nbad,0,A,B,x\nt1,42,A,B,1.5\n"), "x")
	require.NoError(t, err)
	require.Len(t, b.Records, 1)
	assert.Equal(t, types.CallRecord{
		TraceID:          "t1",
		Timestamp:        42,
		UpstreamModule:   "A",
		DownstreamModule: "B",
		ResponseTime:     1.5,
		Seq:              1,
	}, b.Records[0])
}

func TestParse_errors(t *testing.T) {
	_, err := Parse(strings.NewReader(""), "empty.csv")
	assert.ErrorIs(t, err, ErrEmptyInput)

	_, err = Parse(strings.NewReader("traceid,timestamp,um,rt\n"), "nodm.csv")
	assert.ErrorIs(t, err, ErrMissingColumn)
	assert.Contains(t, err.Error(), "downstream_module")
}

func TestCleanStats_PercentRemoved(t *testing.T) {
	assert.Equal(t, 0.0, CleanStats{}.PercentRemoved())
	s := CleanStats{Initial: 8, RemovedInvalidRT: 1, RemovedIncomplete: 1}
	assert.Equal(t, 2, s.Removed())
	assert.InDelta(t, 25.0, s.PercentRemoved(), 1e-9)
}

func TestWrite_roundTrip(t *testing.T) {
	records := []types.CallRecord{
		{TraceID: "t1", Timestamp: 3, UpstreamModule: "A", DownstreamModule: "B", ResponseTime: 0.25},
	}
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, records))
	assert.Equal(t, "trace_id,timestamp,upstream_module,downstream_module,response_time\nt1,3,A,B,0.25\n", buf.String())

	b, err := Parse(&buf, "roundtrip")
	require.NoError(t, err)
	require.Len(t, b.Records, 1)
	assert.Equal(t, records[0], b.Records[0])
}
