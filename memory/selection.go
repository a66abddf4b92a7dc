package memory

import (
	"github.com/meikuraledutech/workflow"
)

// Selection returns the ids of the currently selected nodes and edges.
func (s *Store) Selection() workflow.Selection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selectionLocked()
}

// SetSelection replaces the selection wholesale. Ids that are not in the graph
// are ignored. Returns the selection actually applied.
func (s *Store) SetSelection(nodeIDs, edgeIDs []string) workflow.Selection {
	wantNodes := toSet(nodeIDs)
	wantEdges := toSet(edgeIDs)

	s.mu.Lock()
	changed := false
	for i := range s.nodes {
		_, want := wantNodes[s.nodes[i].ID]
		if s.nodes[i].Selected != want {
			s.nodes[i].Selected = want
			changed = true
		}
	}
	for i := range s.edges {
		_, want := wantEdges[s.edges[i].ID]
		if s.edges[i].Selected != want {
			s.edges[i].Selected = want
			changed = true
		}
	}
	sel := s.selectionLocked()
	if !changed {
		s.mu.Unlock()
		return sel
	}
	notify := s.commit()
	s.mu.Unlock()

	notify()
	return sel
}

// DeleteSelected removes every selected node and edge, plus every edge whose
// endpoint was removed. With nothing selected it is a no-op.
func (s *Store) DeleteSelected() workflow.Deletion {
	s.mu.Lock()
	sel := s.selectionLocked()
	if sel.Empty() {
		s.mu.Unlock()
		return workflow.Deletion{Nodes: []string{}, Edges: []string{}}
	}

	del := s.removeLocked(toSet(sel.Nodes), toSet(sel.Edges))
	notify := s.commit()
	s.mu.Unlock()

	notify()
	return del
}

func (s *Store) selectionLocked() workflow.Selection {
	return workflow.Snapshot{Nodes: s.nodes, Edges: s.edges}.Selection()
}

func toSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
