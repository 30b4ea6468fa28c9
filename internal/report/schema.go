package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/invopop/jsonschema"
	santhosh "github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/usestring/critpath/pkg/types"
)

// Kind names one of the export formats.
type Kind string

const (
	KindCriticalPaths    Kind = "critical_paths"
	KindInteractionStats Kind = "interaction_stats"
	KindCallContext      Kind = "call_context"
)

// Kinds lists every export kind in a stable order.
func Kinds() []Kind {
	return []Kind{KindCriticalPaths, KindInteractionStats, KindCallContext}
}

// ParseKind accepts a kind name or the suffix of an export file name.
func ParseKind(s string) (Kind, error) {
	switch {
	case s == string(KindCriticalPaths) || strings.HasSuffix(s, "_all_critical_paths.json"):
		return KindCriticalPaths, nil
	case s == string(KindInteractionStats) || strings.HasSuffix(s, "_interaction_stats.json"):
		return KindInteractionStats, nil
	case s == string(KindCallContext) || strings.HasSuffix(s, "_call_context.json"):
		return KindCallContext, nil
	}
	return "", fmt.Errorf("unknown export kind %q", s)
}

// Schema reflects the JSON Schema of an export kind.
func Schema(kind Kind) (*jsonschema.Schema, error) {
	r := &jsonschema.Reflector{ExpandedStruct: true}
	var s *jsonschema.Schema
	switch kind {
	case KindCriticalPaths:
		s = r.Reflect(CriticalPathsExport{})
		s.Description = "Critical path per trace, keyed by interval index then trace id"
	case KindInteractionStats:
		s = r.Reflect(InteractionStatsExport{})
		s.Description = "Per-interval response time statistics keyed by \"upstream --> downstream\""
	case KindCallContext:
		s = r.Reflect(CallContextExport{})
		s.Description = "Call context tree per trace, keyed by interval index then trace id"
	default:
		return nil, fmt.Errorf("unknown export kind %q", kind)
	}
	s.Title = string(kind)
	return s, nil
}

// ValidationResult is the outcome of validating an export document.
type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors,omitempty"`
}

// Validator checks export documents against their reflected schema plus the
// cross-field rules a schema cannot express.
type Validator struct {
	kind   Kind
	schema *santhosh.Schema
}

// NewValidator compiles the schema for kind.
func NewValidator(kind Kind) (*Validator, error) {
	s, err := Schema(kind)
	if err != nil {
		return nil, err
	}

	// Round-trip to get a plain JSON value for the compiler.
	raw, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("marshaling schema: %w", err)
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("unmarshaling schema: %w", err)
	}

	url := string(kind) + ".json"
	compiler := santhosh.NewCompiler()
	if err := compiler.AddResource(url, doc); err != nil {
		return nil, fmt.Errorf("adding schema resource: %w", err)
	}
	compiled, err := compiler.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compiling schema: %w", err)
	}
	return &Validator{kind: kind, schema: compiled}, nil
}

// Kind returns the export kind this validator checks.
func (v *Validator) Kind() Kind {
	return v.kind
}

// Validate checks raw JSON bytes.
func (v *Validator) Validate(data []byte) *ValidationResult {
	var value any
	if err := json.Unmarshal(data, &value); err != nil {
		return &ValidationResult{Errors: []string{fmt.Sprintf("invalid JSON: %s", err)}}
	}
	if err := v.schema.Validate(value); err != nil {
		return &ValidationResult{Errors: extractValidationErrors(err)}
	}

	var errs []string
	switch v.kind {
	case KindCriticalPaths:
		errs = checkCriticalPaths(data)
	case KindInteractionStats:
		errs = checkInteractionStats(data)
	}
	if len(errs) > 0 {
		return &ValidationResult{Errors: errs}
	}
	return &ValidationResult{Valid: true}
}

func checkCriticalPaths(data []byte) []string {
	var doc CriticalPathsExport
	if err := json.Unmarshal(data, &doc); err != nil {
		return []string{err.Error()}
	}
	var errs []string
	for interval, traces := range doc {
		for id, entry := range traces {
			modules := strings.Split(entry.CriticalPath, types.PathSeparator)
			if want := len(modules) - 1; len(entry.ResponseTimes) != want {
				errs = append(errs, fmt.Sprintf("/%s/%s: %d response times for %d modules",
					interval, id, len(entry.ResponseTimes), len(modules)))
			}
			seen := make(map[string]bool, len(modules))
			for _, m := range modules {
				if seen[m] {
					errs = append(errs, fmt.Sprintf("/%s/%s: module %q repeated", interval, id, m))
					break
				}
				seen[m] = true
			}
		}
	}
	slices.Sort(errs)
	return errs
}

func checkInteractionStats(data []byte) []string {
	var doc InteractionStatsExport
	if err := json.Unmarshal(data, &doc); err != nil {
		return []string{err.Error()}
	}
	var errs []string
	for key, e := range doc {
		if _, err := types.ParseInteractionKey(key); err != nil {
			errs = append(errs, fmt.Sprintf("/%s: %s", key, err))
		}
		n := len(e.Intervals)
		if len(e.Means) != n || len(e.StdDevs) != n || len(e.Counts) != n {
			errs = append(errs, fmt.Sprintf("/%s: parallel arrays differ in length", key))
			continue
		}
		for i := range n {
			if i > 0 && e.Intervals[i] <= e.Intervals[i-1] {
				errs = append(errs, fmt.Sprintf("/%s/intervals: not strictly ascending", key))
				break
			}
			if e.Counts[i] < 1 {
				errs = append(errs, fmt.Sprintf("/%s/counts/%d: must be at least 1", key, i))
			}
			if e.StdDevs[i] < 0 {
				errs = append(errs, fmt.Sprintf("/%s/stds/%d: negative", key, i))
			}
		}
	}
	slices.Sort(errs)
	return errs
}

func extractValidationErrors(err error) []string {
	var verr *santhosh.ValidationError
	if !errors.As(err, &verr) {
		return []string{err.Error()}
	}
	byPath := make(map[string][]string)
	collectErrors(verr, byPath)

	var out []string
	for path, msgs := range byPath {
		seen := make(map[string]bool)
		for _, msg := range msgs {
			if seen[msg] {
				continue
			}
			seen[msg] = true
			if path != "" {
				out = append(out, path+": "+msg)
			} else {
				out = append(out, msg)
			}
		}
	}
	slices.Sort(out)
	return out
}

// collectErrors keeps leaf errors only.
func collectErrors(err *santhosh.ValidationError, byPath map[string][]string) {
	path := ""
	if len(err.InstanceLocation) > 0 {
		path = "/" + strings.Join(err.InstanceLocation, "/")
	}
	if err.ErrorKind != nil && len(err.Causes) == 0 {
		msg := err.ErrorKind.LocalizedString(printer)
		if !strings.HasPrefix(msg, "$ref ") && !strings.HasPrefix(msg, "doesn't validate with") {
			byPath[path] = append(byPath[path], msg)
		}
	}
	for _, c := range err.Causes {
		collectErrors(c, byPath)
	}
}
