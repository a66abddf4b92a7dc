package workflow

// Command is one user- or renderer-initiated mutation. Chrome controls build
// commands and hand them to whoever owns the Store, so nothing outside that owner
// needs a handle on the store's methods.
type Command interface {
	Name() string
	Apply(s Store) (any, error)
}

// AddNode places a node of Type at Position, or at a fallback position when nil.
type AddNode struct {
	Type     NodeType
	Position *Position
}

func (AddNode) Name() string { return "add_node" }

func (c AddNode) Apply(s Store) (any, error) { return s.AddNode(c.Type, c.Position) }

// UpdateNode merges Patch into the node with ID.
type UpdateNode struct {
	ID    string
	Patch NodePatch
}

func (UpdateNode) Name() string { return "update_node" }

func (c UpdateNode) Apply(s Store) (any, error) { return s.UpdateNode(c.ID, c.Patch) }

// DeleteNode removes one node and every edge touching it.
type DeleteNode struct {
	ID string
}

func (DeleteNode) Name() string { return "delete_node" }

func (c DeleteNode) Apply(s Store) (any, error) { return s.DeleteNode(c.ID) }

// Connect adds an edge between two node ports.
type Connect struct {
	Source       string
	SourceHandle string
	Target       string
	TargetHandle string
}

func (Connect) Name() string { return "connect" }

func (c Connect) Apply(s Store) (any, error) {
	return s.Connect(c.Source, c.SourceHandle, c.Target, c.TargetHandle)
}

// UpdateEdge changes the cosmetic fields of an edge.
type UpdateEdge struct {
	ID    string
	Patch EdgePatch
}

func (UpdateEdge) Name() string { return "update_edge" }

func (c UpdateEdge) Apply(s Store) (any, error) { return s.UpdateEdge(c.ID, c.Patch) }

// DeleteEdge removes one edge.
type DeleteEdge struct {
	ID string
}

func (DeleteEdge) Name() string { return "delete_edge" }

func (c DeleteEdge) Apply(s Store) (any, error) { return nil, s.DeleteEdge(c.ID) }

// SetSelection replaces the selection wholesale.
type SetSelection struct {
	Nodes []string
	Edges []string
}

func (SetSelection) Name() string { return "set_selection" }

func (c SetSelection) Apply(s Store) (any, error) { return s.SetSelection(c.Nodes, c.Edges), nil }

// DeleteSelected removes selected nodes and edges.
type DeleteSelected struct{}

func (DeleteSelected) Name() string { return "delete_selected" }

func (DeleteSelected) Apply(s Store) (any, error) { return s.DeleteSelected(), nil }

// DuplicateSelected copies every selected node.
type DuplicateSelected struct{}

func (DuplicateSelected) Name() string { return "duplicate_selected" }

func (DuplicateSelected) Apply(s Store) (any, error) { return s.DuplicateSelected(), nil }

// Reset restores the initial snapshot.
type Reset struct{}

func (Reset) Name() string { return "reset" }

func (Reset) Apply(s Store) (any, error) {
	s.Reset()
	return s.Snapshot(), nil
}
