package types

// IntervalStats holds the response times of one edge observed in one interval.
// Count always equals len(ResponseTimes).
type IntervalStats struct {
	ResponseTimes []float64 `json:"times"`
	Count         int       `json:"count"`
}

// Observe appends one response time.
func (s *IntervalStats) Observe(rt float64) {
	s.ResponseTimes = append(s.ResponseTimes, rt)
	s.Count++
}

// InteractionStats holds one edge's per-interval statistics as parallel slices,
// one entry per interval the edge was observed in, ordered by interval.
type InteractionStats struct {
	Intervals []int     `json:"intervals"`
	Means     []float64 `json:"means"`
	StdDevs   []float64 `json:"stds"`
	Counts    []int     `json:"counts"`
}

// Len returns the number of intervals the edge was observed in.
func (s *InteractionStats) Len() int {
	return len(s.Intervals)
}

// Append adds one interval's entry.
func (s *InteractionStats) Append(interval int, mean, std float64, count int) {
	s.Intervals = append(s.Intervals, interval)
	s.Means = append(s.Means, mean)
	s.StdDevs = append(s.StdDevs, std)
	s.Counts = append(s.Counts, count)
}

// TotalCount sums Counts.
func (s *InteractionStats) TotalCount() int {
	total := 0
	for _, c := range s.Counts {
		total += c
	}
	return total
}

// TraceFailure reports one trace whose reconstruction failed.
type TraceFailure struct {
	TraceID string `json:"trace_id"`
	Error   string `json:"error"`
}

// IntervalResult is the outcome of processing one interval's traces.
type IntervalResult struct {
	Index    int                        `json:"interval"`
	Paths    map[string]CriticalPath    `json:"paths"`
	CCTs     map[string]CallContextTree `json:"-"`
	Failures []TraceFailure             `json:"failures,omitempty"`
}

// NewIntervalResult returns an empty result for the given interval.
func NewIntervalResult(index int) *IntervalResult {
	return &IntervalResult{
		Index: index,
		Paths: make(map[string]CriticalPath),
		CCTs:  make(map[string]CallContextTree),
	}
}
