package memory

import (
	"fmt"

	"github.com/meikuraledutech/workflow"
)

// AddNode inserts a node of type t.
// If pos is nil the node lands at a random point inside the configured viewport.
// Returns ErrInvalidNodeType if t is not a known node type.
func (s *Store) AddNode(t workflow.NodeType, pos *workflow.Position) (workflow.Node, error) {
	if !t.Valid() {
		return workflow.Node{}, fmt.Errorf("%w: %q", workflow.ErrInvalidNodeType, t)
	}

	s.mu.Lock()
	n := workflow.Node{
		ID:    s.generateID(),
		Type:  t,
		Label: t.DefaultLabel(),
		Data:  map[string]any{},
	}
	if pos != nil {
		n.Position = *pos
	} else {
		n.Position = workflow.Position{
			X: s.rng.Float64() * s.viewW,
			Y: s.rng.Float64() * s.viewH,
		}
	}
	s.nodes = append(s.nodes, n)
	notify := s.commit()
	s.mu.Unlock()

	notify()
	return n.Clone(), nil
}

// Node fetches a single node by its ID.
func (s *Store) Node(id string) (workflow.Node, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.nodeIndex(id)
	if i < 0 {
		return workflow.Node{}, false
	}
	return s.nodes[i].Clone(), true
}

// UpdateNode applies a partial update to an existing node.
// Data is shallow-merged into the current payload.
// Returns ErrUnknownNode if the node doesn't exist.
func (s *Store) UpdateNode(id string, patch workflow.NodePatch) (workflow.Node, error) {
	s.mu.Lock()
	i := s.nodeIndex(id)
	if i < 0 {
		s.mu.Unlock()
		return workflow.Node{}, fmt.Errorf("%w: %q", workflow.ErrUnknownNode, id)
	}

	n := &s.nodes[i]
	if patch.Label != nil {
		n.Label = *patch.Label
	}
	if patch.Position != nil {
		n.Position = *patch.Position
	}
	if patch.Data != nil {
		n.Data = workflow.MergeData(n.Data, patch.Data)
	}
	out := n.Clone()
	notify := s.commit()
	s.mu.Unlock()

	notify()
	return out, nil
}

// DeleteNode deletes a node by its ID.
// Edges touching the node are deleted with it.
// Returns ErrUnknownNode if the node doesn't exist.
func (s *Store) DeleteNode(id string) (workflow.Deletion, error) {
	s.mu.Lock()
	if s.nodeIndex(id) < 0 {
		s.mu.Unlock()
		return workflow.Deletion{}, fmt.Errorf("%w: %q", workflow.ErrUnknownNode, id)
	}

	del := s.removeLocked(map[string]struct{}{id: {}}, nil)
	notify := s.commit()
	s.mu.Unlock()

	notify()
	return del, nil
}

// DuplicateSelected copies every selected node with a fresh id, shifted by the
// duplicate offset and not selected. Edges are not copied and originals are
// left unchanged.
func (s *Store) DuplicateSelected() []workflow.Node {
	s.mu.Lock()
	var copies []workflow.Node
	for _, n := range s.nodes {
		if !n.Selected {
			continue
		}
		c := n.Clone()
		c.ID = s.generateID()
		c.Position = n.Position.Offset(s.dupX, s.dupY)
		c.Selected = false
		copies = append(copies, c)
	}
	if len(copies) == 0 {
		s.mu.Unlock()
		return []workflow.Node{}
	}

	for _, c := range copies {
		s.nodes = append(s.nodes, c.Clone())
	}
	notify := s.commit()
	s.mu.Unlock()

	notify()
	return copies
}

// removeLocked drops the given nodes and edges plus every edge touching a
// dropped node. Caller holds the lock.
func (s *Store) removeLocked(nodeIDs, edgeIDs map[string]struct{}) workflow.Deletion {
	del := workflow.Deletion{Nodes: []string{}, Edges: []string{}}

	keptNodes := s.nodes[:0]
	for _, n := range s.nodes {
		if _, drop := nodeIDs[n.ID]; drop {
			del.Nodes = append(del.Nodes, n.ID)
			continue
		}
		keptNodes = append(keptNodes, n)
	}
	s.nodes = keptNodes

	keptEdges := s.edges[:0]
	for _, e := range s.edges {
		_, dropEdge := edgeIDs[e.ID]
		_, dropSource := nodeIDs[e.Source]
		_, dropTarget := nodeIDs[e.Target]
		if dropEdge || dropSource || dropTarget {
			del.Edges = append(del.Edges, e.ID)
			continue
		}
		keptEdges = append(keptEdges, e)
	}
	s.edges = keptEdges

	return del
}
