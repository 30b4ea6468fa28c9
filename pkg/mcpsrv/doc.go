// Package mcpsrv provides an extensible MCP server over critical-path analyses.
//
// The server exposes tools to run an analysis over interval CSV files and to
// explore its critical paths, interaction statistics and high-variation
// findings. Users can extend it with custom tools, prompts and resources.
//
// # Basic Usage
//
//	server, err := mcpsrv.NewServer(mcpsrv.WithInputs("0.csv", "1.csv"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer server.Close()
//	server.Run(ctx)
//
// # Extension
//
//	type SlowInput struct {
//	    ThresholdMs float64 `json:"threshold_ms"`
//	}
//
//	type SlowOutput struct {
//	    Traces int `json:"traces"`
//	}
//
//	mcpsrv.WithDepsTool(
//	    &mcp.Tool{Name: "slow_traces", Description: "Count traces slower than a threshold"},
//	    func(d *mcpsrv.Deps) func(ctx context.Context, req *mcp.CallToolRequest, in SlowInput) (*mcp.CallToolResult, SlowOutput, error) {
//	        return func(ctx context.Context, req *mcp.CallToolRequest, in SlowInput) (*mcp.CallToolResult, SlowOutput, error) {
//	            res, err := d.Result()
//	            if err != nil {
//	                return nil, SlowOutput{}, err
//	            }
//	            var out SlowOutput
//	            for _, ir := range res.Intervals {
//	                for _, p := range ir.Paths {
//	                    if floats.Sum(p.ResponseTimes) > in.ThresholdMs {
//	                        out.Traces++
//	                    }
//	                }
//	            }
//	            return nil, out, nil
//	        }
//	    },
//	)
//
// # Configuration
//
// Configuration is read from the environment (see internal/config) and can be
// replaced or adjusted with options:
//
//	server, err := mcpsrv.NewServer(
//	    mcpsrv.WithLogLevel("debug"),
//	    mcpsrv.WithLogFile("/var/log/critpath.log"),
//	)
package mcpsrv
