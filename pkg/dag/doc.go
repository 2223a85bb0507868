// Package dag provides the directed dependency graph used by chart analysis.
//
// # Overview
//
// Each node is a task key; each edge points from a dependency to the task
// that depends on it. The graph keeps insertion order for nodes and edges so
// that traversals, and everything computed from them, are deterministic.
//
// # Basic Usage
//
//	g := dag.New(nil)
//	g.AddNode(dag.Node{ID: "design"})
//	g.AddNode(dag.Node{ID: "build"})
//	g.AddEdge(dag.Edge{From: "design", To: "build"})
//
// Query the structure with [DAG.Children] (dependents), [DAG.Parents]
// (dependencies), [DAG.Sources] and [DAG.Sinks]. [DAG.TopologicalSort]
// orders the nodes with Kahn's algorithm and [DAG.AssignRows] stores each
// node's dependency depth in [Node.Row].
//
// # Cycles
//
// Charts may declare circular dependencies. The graph accepts them;
// [DAG.Validate] and [DAG.TopologicalSort] report [ErrGraphHasCycle], and
// TopologicalSort still returns the nodes that could be ordered.
//
// # Concurrency
//
// DAG instances are not safe for concurrent use. Callers must synchronize
// access if multiple goroutines read or modify the same graph.
package dag
