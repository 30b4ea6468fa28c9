// Package callgraph partitions call records into traces and reconstructs each
// trace's critical path.
//
// The reconstruction is a greedy forward walk seeded at the call that finishes
// last in the trace (the anchor). From the anchor's callee it repeatedly follows
// the slowest later call made by the current module, stopping when the module
// makes no further calls or when the next callee is already on the path. It is
// an approximation: it does not search the call DAG for a maximum-latency path
// and gives no global optimality guarantee. Its output is deterministic for a
// given trace because every "first wins" rule is resolved on the trace's
// (timestamp, ingestion order) ordering.
package callgraph
