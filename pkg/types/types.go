// Package types provides the shared data model for critpath.
// These types are used across multiple packages and are designed for external consumption.
package types

import (
	"bytes"
	"encoding/json"
)

// MarshalIndent is json.MarshalIndent without HTML escaping, so " --> " keys
// and paths stay readable. The result has no trailing newline.
func MarshalIndent(v any, indent string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", indent)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// ToAny round-trips a typed value through JSON to produce an untyped any.
// Use this when a tool output field must be any to satisfy the MCP SDK's
// schema validation, or when handing typed exports to the jq engine.
func ToAny(v any) (any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ResourceRef points to an MCP resource.
type ResourceRef struct {
	URI  string `json:"uri"`
	MIME string `json:"mime"`
	Hint string `json:"hint,omitempty"`
}
