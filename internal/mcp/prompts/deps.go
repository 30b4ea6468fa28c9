// Package prompts contains MCP prompts guiding critical-path investigations.
package prompts

// Config holds configuration needed by prompts.
type Config struct {
	HighVariationFactor float64
	IntervalMinutes     int
}
