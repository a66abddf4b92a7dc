package workflow

import (
	"fmt"
	"maps"
)

// Snapshot is the full graph state at one instant.
// Revision increases by one on every committed mutation of a store.
type Snapshot struct {
	Nodes    []Node `json:"nodes"`
	Edges    []Edge `json:"edges"`
	Revision uint64 `json:"revision"`
}

// Clone returns a deep copy of s. Node data maps are copied recursively.
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{
		Nodes:    make([]Node, len(s.Nodes)),
		Edges:    make([]Edge, len(s.Edges)),
		Revision: s.Revision,
	}
	for i, n := range s.Nodes {
		out.Nodes[i] = n.Clone()
	}
	copy(out.Edges, s.Edges)
	return out
}

// Selection derives the selection from the per-entity selected flags.
func (s Snapshot) Selection() Selection {
	sel := Selection{Nodes: []string{}, Edges: []string{}}
	for _, n := range s.Nodes {
		if n.Selected {
			sel.Nodes = append(sel.Nodes, n.ID)
		}
	}
	for _, e := range s.Edges {
		if e.Selected {
			sel.Edges = append(sel.Edges, e.ID)
		}
	}
	return sel
}

// Validate checks the structural invariants: unique node ids, unique edge ids,
// known node types and edge endpoints that reference existing nodes.
func (s Snapshot) Validate() error {
	nodes := make(map[string]struct{}, len(s.Nodes))
	for _, n := range s.Nodes {
		if n.ID == "" {
			return fmt.Errorf("%w: node with empty id", ErrInvalidSnapshot)
		}
		if _, dup := nodes[n.ID]; dup {
			return fmt.Errorf("%w: duplicate node id %q", ErrInvalidSnapshot, n.ID)
		}
		if !n.Type.Valid() {
			return fmt.Errorf("%w: node %q has unknown type %q", ErrInvalidSnapshot, n.ID, n.Type)
		}
		nodes[n.ID] = struct{}{}
	}

	edges := make(map[string]struct{}, len(s.Edges))
	for _, e := range s.Edges {
		if e.ID == "" {
			return fmt.Errorf("%w: edge with empty id", ErrInvalidSnapshot)
		}
		if _, dup := edges[e.ID]; dup {
			return fmt.Errorf("%w: duplicate edge id %q", ErrInvalidSnapshot, e.ID)
		}
		if _, ok := nodes[e.Source]; !ok {
			return fmt.Errorf("%w: edge %q references unknown source %q", ErrInvalidSnapshot, e.ID, e.Source)
		}
		if _, ok := nodes[e.Target]; !ok {
			return fmt.Errorf("%w: edge %q references unknown target %q", ErrInvalidSnapshot, e.ID, e.Target)
		}
		if !e.Status.Valid() {
			return fmt.Errorf("%w: edge %q has unknown status %q", ErrInvalidSnapshot, e.ID, e.Status)
		}
		edges[e.ID] = struct{}{}
	}
	return nil
}

// Clone returns a copy of n whose data map shares nothing with the original.
func (n Node) Clone() Node {
	n.Data = CloneData(n.Data)
	return n
}

// CloneData deep-copies nested maps and slices of a node payload.
// Scalars are copied by value; other reference types are shared.
func CloneData(data map[string]any) map[string]any {
	if data == nil {
		return map[string]any{}
	}
	out := make(map[string]any, len(data))
	for k, v := range data {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return CloneData(t)
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return v
	}
}

// MergeData applies patch onto data. Keys whose patch value is nil are removed.
func MergeData(data, patch map[string]any) map[string]any {
	out := maps.Clone(data)
	if out == nil {
		out = map[string]any{}
	}
	for k, v := range patch {
		if v == nil {
			delete(out, k)
			continue
		}
		out[k] = cloneValue(v)
	}
	return out
}
