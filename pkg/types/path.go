package types

import (
	"encoding/json"
	"fmt"
	"slices"
	"sort"
	"strings"
)

// PathSeparator joins modules in the external representation of a critical path
// and the two sides of an InteractionKey.
const PathSeparator = " --> "

// InteractionKey identifies one directed edge of the aggregate call graph.
type InteractionKey struct {
	Upstream   string
	Downstream string
}

// String returns the "upstream --> downstream" form.
func (k InteractionKey) String() string {
	return k.Upstream + PathSeparator + k.Downstream
}

// MarshalText implements encoding.TextMarshaler so keys work as JSON map keys.
func (k InteractionKey) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *InteractionKey) UnmarshalText(text []byte) error {
	parsed, err := ParseInteractionKey(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ParseInteractionKey parses the "upstream --> downstream" form.
func ParseInteractionKey(s string) (InteractionKey, error) {
	up, down, ok := strings.Cut(s, PathSeparator)
	if !ok || up == "" || down == "" {
		return InteractionKey{}, fmt.Errorf("invalid interaction key %q: expected \"upstream%sdownstream\"", s, PathSeparator)
	}
	return InteractionKey{Upstream: up, Downstream: down}, nil
}

// SortKeys sorts interaction keys by their string form.
func SortKeys(keys []InteractionKey) {
	sort.Slice(keys, func(i, j int) bool {
		return keys[i].String() < keys[j].String()
	})
}

// CriticalPath is the dominant latency chain of one trace.
// ResponseTimes[i] is the response time of the edge Modules[i] -> Modules[i+1].
type CriticalPath struct {
	Modules       []string  `json:"-"`
	ResponseTimes []float64 `json:"response_times"`
}

// String joins the modules with PathSeparator.
func (p CriticalPath) String() string {
	return strings.Join(p.Modules, PathSeparator)
}

// Len returns the number of modules on the path.
func (p CriticalPath) Len() int {
	return len(p.Modules)
}

// Contains reports whether module is already on the path.
func (p CriticalPath) Contains(module string) bool {
	return slices.Contains(p.Modules, module)
}

// Edge is one step of a critical path.
type Edge struct {
	Key          InteractionKey
	ResponseTime float64
}

// Edges decomposes the path into consecutive interaction keys paired with their
// step response times. Steps without a response time are dropped.
func (p CriticalPath) Edges() []Edge {
	if len(p.Modules) < 2 {
		return nil
	}
	edges := make([]Edge, 0, len(p.Modules)-1)
	for i := 0; i < len(p.Modules)-1 && i < len(p.ResponseTimes); i++ {
		edges = append(edges, Edge{
			Key:          InteractionKey{Upstream: p.Modules[i], Downstream: p.Modules[i+1]},
			ResponseTime: p.ResponseTimes[i],
		})
	}
	return edges
}

type criticalPathJSON struct {
	CriticalPath  string    `json:"critical_path"`
	ResponseTimes []float64 `json:"response_times"`
}

// MarshalJSON writes {critical_path, response_times}.
func (p CriticalPath) MarshalJSON() ([]byte, error) {
	rts := p.ResponseTimes
	if rts == nil {
		rts = []float64{}
	}
	return MarshalIndent(criticalPathJSON{CriticalPath: p.String(), ResponseTimes: rts}, "")
}

// UnmarshalJSON reads {critical_path, response_times}.
func (p *CriticalPath) UnmarshalJSON(data []byte) error {
	var raw criticalPathJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	p.Modules = nil
	if raw.CriticalPath != "" {
		p.Modules = strings.Split(raw.CriticalPath, PathSeparator)
	}
	p.ResponseTimes = raw.ResponseTimes
	return nil
}

// CallContextTree records, per upstream module, the downstream modules it was
// observed calling within one trace, in observation order.
type CallContextTree map[string][]string

// Add records one call.
func (c CallContextTree) Add(upstream, downstream string) {
	c[upstream] = append(c[upstream], downstream)
}

// Callers returns the upstream modules in sorted order.
func (c CallContextTree) Callers() []string {
	callers := make([]string, 0, len(c))
	for up := range c {
		callers = append(callers, up)
	}
	sort.Strings(callers)
	return callers
}
