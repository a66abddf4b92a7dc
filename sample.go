package workflow

// DefaultSnapshot returns the order-processing sample graph that new stores
// start from and reset to unless another initial snapshot is configured.
// Each call returns a fresh copy.
func DefaultSnapshot() Snapshot {
	return Snapshot{
		Nodes: []Node{
			{ID: "1", Type: NodeTypeStart, Label: "Customer places order", Position: Position{X: 100, Y: 250}, Data: map[string]any{}},
			{ID: "2", Type: NodeTypeAction, Label: "Check inventory", Position: Position{X: 400, Y: 250}, Data: map[string]any{}},
			{ID: "3", Type: NodeTypeDecision, Label: "In stock?", Position: Position{X: 700, Y: 250}, Data: map[string]any{}},
			{ID: "4", Type: NodeTypeAction, Label: "Process & ship", Position: Position{X: 1000, Y: 150}, Data: map[string]any{}},
			{ID: "5", Type: NodeTypeAction, Label: "Notify out of stock", Position: Position{X: 1000, Y: 350}, Data: map[string]any{}},
			{ID: "6", Type: NodeTypeEnd, Label: "Complete", Position: Position{X: 1300, Y: 250}, Data: map[string]any{}},
		},
		Edges: []Edge{
			{ID: "e1-2", Source: "1", SourceHandle: HandleRight, Target: "2", TargetHandle: HandleLeft},
			{ID: "e2-3", Source: "2", SourceHandle: HandleRight, Target: "3", TargetHandle: HandleLeft},
			{ID: "e3-4", Source: "3", SourceHandle: HandleRight, Target: "4", TargetHandle: HandleLeft, Label: "Yes"},
			{ID: "e3-5", Source: "3", SourceHandle: HandleBottom, Target: "5", TargetHandle: HandleTop, Label: "No"},
			{ID: "e4-6", Source: "4", SourceHandle: HandleRight, Target: "6", TargetHandle: HandleLeft},
			{ID: "e5-6", Source: "5", SourceHandle: HandleRight, Target: "6", TargetHandle: HandleLeft},
		},
	}
}
