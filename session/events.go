package session

import (
	"github.com/meikuraledutech/workflow"
)

// The On* methods adapt renderer callbacks to commands. The renderer may hold
// stale ids (an event racing a delete), so recoverable errors are logged by Do
// and dropped here. Only unexpected errors are returned.

// OnNodeDrag moves a node to pos.
func (s *Session) OnNodeDrag(id string, pos workflow.Position) error {
	_, err := s.Do(workflow.UpdateNode{ID: id, Patch: workflow.NodePatch{Position: &pos}})
	return swallow(err)
}

// OnNodeClick makes id the only selected entity.
func (s *Session) OnNodeClick(id string) error {
	_, err := s.Do(workflow.SetSelection{Nodes: []string{id}})
	return swallow(err)
}

// OnEdgeClick makes the edge id the only selected entity.
func (s *Session) OnEdgeClick(id string) error {
	_, err := s.Do(workflow.SetSelection{Edges: []string{id}})
	return swallow(err)
}

// OnPaneClick clears the selection.
func (s *Session) OnPaneClick() error {
	_, err := s.Do(workflow.SetSelection{})
	return swallow(err)
}

// OnConnect creates an edge for a completed connection gesture.
func (s *Session) OnConnect(source, sourceHandle, target, targetHandle string) error {
	_, err := s.Do(workflow.Connect{
		Source:       source,
		SourceHandle: sourceHandle,
		Target:       target,
		TargetHandle: targetHandle,
	})
	return swallow(err)
}

func swallow(err error) error {
	if workflow.IsRecoverable(err) {
		return nil
	}
	return err
}
