package types

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalIndent_keepsArrows(t *testing.T) {
	v := map[string]any{"A --> B": []int{1}}

	data, err := MarshalIndent(v, "  ")
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"A --> B\": [\n    1\n  ]\n}", string(data))

	compact, err := MarshalIndent(v, "")
	require.NoError(t, err)
	assert.Equal(t, `{"A --> B":[1]}`, string(compact))
}

func TestCriticalPath_JSON(t *testing.T) {
	p := CriticalPath{Modules: []string{"A", "B", "C"}, ResponseTimes: []float64{100, 50}}

	data, err := MarshalIndent(p, "")
	require.NoError(t, err)
	assert.Equal(t, `{"critical_path":"A --> B --> C","response_times":[100,50]}`, string(data))

	var back CriticalPath
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, p, back)

	data, err = MarshalIndent(CriticalPath{Modules: []string{"A"}}, "")
	require.NoError(t, err)
	assert.Equal(t, `{"critical_path":"A","response_times":[]}`, string(data))
}

func TestCallRecord_Validate(t *testing.T) {
	valid := CallRecord{TraceID: "t1", UpstreamModule: "A", DownstreamModule: "B", ResponseTime: 5}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		modify func(r *CallRecord)
		reason string
	}{
		{"empty trace id", func(r *CallRecord) { r.TraceID = "" }, "empty trace id"},
		{"missing upstream", func(r *CallRecord) { r.UpstreamModule = "" }, "missing upstream module"},
		{"negative rt", func(r *CallRecord) { r.ResponseTime = -1 }, "negative response time"},
		{"separator in upstream", func(r *CallRecord) { r.UpstreamModule = "x --> y" }, "module name contains"},
		{"separator in downstream", func(r *CallRecord) { r.DownstreamModule = "B --> C" }, "module name contains"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := valid
			tt.modify(&r)
			err := r.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformedRecord))

			var mre *MalformedRecordError
			require.ErrorAs(t, err, &mre)
			assert.Contains(t, mre.Reason, tt.reason)
		})
	}
}
