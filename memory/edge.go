package memory

import (
	"fmt"

	"github.com/meikuraledutech/workflow"
)

// Connect inserts an edge from sourceHandle on source to targetHandle on target.
// Returns ErrUnknownEndpoint if either node doesn't exist. Depending on the
// policy it may also return ErrSelfLoop, ErrDuplicateEdge, ErrInvalidHandle or
// ErrPortInUse. On error the edge set is unchanged.
func (s *Store) Connect(source, sourceHandle, target, targetHandle string) (workflow.Edge, error) {
	s.mu.Lock()
	if err := s.checkConnectLocked(source, sourceHandle, target, targetHandle); err != nil {
		s.mu.Unlock()
		return workflow.Edge{}, err
	}

	e := workflow.Edge{
		ID:           s.generateID(),
		Source:       source,
		SourceHandle: sourceHandle,
		Target:       target,
		TargetHandle: targetHandle,
	}
	s.edges = append(s.edges, e)
	notify := s.commit()
	s.mu.Unlock()

	notify()
	return e, nil
}

func (s *Store) checkConnectLocked(source, sourceHandle, target, targetHandle string) error {
	si := s.nodeIndex(source)
	if si < 0 {
		return fmt.Errorf("%w: source %q", workflow.ErrUnknownEndpoint, source)
	}
	ti := s.nodeIndex(target)
	if ti < 0 {
		return fmt.Errorf("%w: target %q", workflow.ErrUnknownEndpoint, target)
	}

	if !s.policy.AllowSelfLoops && source == target {
		return fmt.Errorf("%w: node %q", workflow.ErrSelfLoop, source)
	}

	if s.policy.StrictPorts {
		src, _ := workflow.LookupNodeType(s.nodes[si].Type)
		if !src.HasOutput(sourceHandle) {
			return fmt.Errorf("%w: %s node has no output %q", workflow.ErrInvalidHandle, src.Type, sourceHandle)
		}
		dst, _ := workflow.LookupNodeType(s.nodes[ti].Type)
		if !dst.HasInput(targetHandle) {
			return fmt.Errorf("%w: %s node has no input %q", workflow.ErrInvalidHandle, dst.Type, targetHandle)
		}
		for _, e := range s.edges {
			if e.Source == source && e.SourceHandle == sourceHandle {
				return fmt.Errorf("%w: %q on node %q", workflow.ErrPortInUse, sourceHandle, source)
			}
		}
	}

	if !s.policy.AllowDuplicateEdges {
		for _, e := range s.edges {
			if e.Source == source && e.SourceHandle == sourceHandle &&
				e.Target == target && e.TargetHandle == targetHandle {
				return fmt.Errorf("%w: %q", workflow.ErrDuplicateEdge, e.ID)
			}
		}
	}
	return nil
}

// Edge fetches a single edge by its ID.
func (s *Store) Edge(id string) (workflow.Edge, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.edgeIndex(id)
	if i < 0 {
		return workflow.Edge{}, false
	}
	return s.edges[i], true
}

// UpdateEdge changes an edge's label and/or cosmetic status.
// Returns ErrUnknownEdge if the edge doesn't exist and ErrInvalidEdgeStatus for
// a status outside the known set.
func (s *Store) UpdateEdge(id string, patch workflow.EdgePatch) (workflow.Edge, error) {
	if patch.Status != nil && !patch.Status.Valid() {
		return workflow.Edge{}, fmt.Errorf("%w: %q", workflow.ErrInvalidEdgeStatus, *patch.Status)
	}

	s.mu.Lock()
	i := s.edgeIndex(id)
	if i < 0 {
		s.mu.Unlock()
		return workflow.Edge{}, fmt.Errorf("%w: %q", workflow.ErrUnknownEdge, id)
	}

	e := &s.edges[i]
	if patch.Label != nil {
		e.Label = *patch.Label
	}
	if patch.Status != nil {
		e.Status = *patch.Status
	}
	out := *e
	notify := s.commit()
	s.mu.Unlock()

	notify()
	return out, nil
}

// DeleteEdge deletes an edge by its ID.
// Returns ErrUnknownEdge if the edge doesn't exist.
func (s *Store) DeleteEdge(id string) error {
	s.mu.Lock()
	i := s.edgeIndex(id)
	if i < 0 {
		s.mu.Unlock()
		return fmt.Errorf("%w: %q", workflow.ErrUnknownEdge, id)
	}

	s.edges = append(s.edges[:i], s.edges[i+1:]...)
	notify := s.commit()
	s.mu.Unlock()

	notify()
	return nil
}
