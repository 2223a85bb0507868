// Package analysis derives graph facts from resolved tasks: dependency
// cycles, the critical path with per-task slack, and conflicts between
// explicit dates and declared dependencies.
//
// Every result is keyed by task key (id token, or label when there is none).
// Vertical markers never take part. Dangling references are ignored here;
// the resolver already reports them.
package analysis

import (
	"encoding/json"
	"maps"
	"slices"

	"github.com/matzehuels/ganttsync/pkg/dag"
	"github.com/matzehuels/ganttsync/pkg/gantt"
	"github.com/matzehuels/ganttsync/pkg/schedule"
)

// Node metadata keys set by BuildGraph.
const (
	MetaLabel = "label"
	MetaIndex = "index"
)

// Set is a set of task keys. It serializes as a sorted list.
type Set map[string]bool

// Has reports whether key is in the set.
func (s Set) Has(key string) bool { return s[key] }

// Sorted returns the members in ascending order.
func (s Set) Sorted() []string { return slices.Sorted(maps.Keys(s)) }

// MarshalJSON implements json.Marshaler.
func (s Set) MarshalJSON() ([]byte, error) { return json.Marshal(s.Sorted()) }

// UnmarshalJSON implements json.Unmarshaler.
func (s *Set) UnmarshalJSON(data []byte) error {
	var keys []string
	if err := json.Unmarshal(data, &keys); err != nil {
		return err
	}
	*s = make(Set, len(keys))
	for _, k := range keys {
		(*s)[k] = true
	}
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (s Set) MarshalYAML() (any, error) { return s.Sorted(), nil }

type edge struct{ from, to int }

// dependencyEdges returns dependency → dependent index pairs in source
// order, skipping vertical markers, dangling references and duplicates.
// Self references are kept.
func dependencyEdges(tasks []gantt.Task) []edge {
	var edges []edge
	seen := make(map[edge]bool)
	for i, t := range tasks {
		if t.IsVertMarker {
			continue
		}
		for _, ref := range t.AfterDeps {
			j := gantt.IndexOfRef(tasks, ref)
			if j < 0 || tasks[j].IsVertMarker {
				continue
			}
			e := edge{from: j, to: i}
			if !seen[e] {
				seen[e] = true
				edges = append(edges, e)
			}
		}
	}
	return edges
}

func plain(tasks []schedule.ResolvedTask) []gantt.Task {
	return schedule.Resolution{Tasks: tasks}.Plain()
}

// BuildGraph builds the dependency graph of tasks with edges pointing from
// a dependency to its dependent. Tasks sharing a key collapse into the
// first one.
func BuildGraph(tasks []schedule.ResolvedTask) *dag.DAG {
	pt := plain(tasks)
	g := dag.New(nil)
	for i, t := range pt {
		if t.IsVertMarker {
			continue
		}
		_ = g.AddNode(dag.Node{
			ID:   t.Key(),
			Meta: dag.Metadata{MetaLabel: t.Label, MetaIndex: i},
		})
	}
	for _, e := range dependencyEdges(pt) {
		// Self loops and edges between collapsed duplicates are rejected.
		_ = g.AddEdge(dag.Edge{From: pt[e.from].Key(), To: pt[e.to].Key()})
	}
	g.AssignRows()
	return g
}
