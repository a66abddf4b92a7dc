package workflow

// NodeType is the closed set of node kinds an editor can place on the canvas.
type NodeType string

const (
	NodeTypeStart        NodeType = "start"
	NodeTypeEnd          NodeType = "end"
	NodeTypeAction       NodeType = "action"
	NodeTypeDecision     NodeType = "decision"
	NodeTypeLoop         NodeType = "loop"
	NodeTypeCondition    NodeType = "condition"
	NodeTypeDelay        NodeType = "delay"
	NodeTypeNotification NodeType = "notification"
	NodeTypeCustom       NodeType = "custom"
)

// EdgeStatus is the cosmetic execution colour of an edge. It never drives behaviour.
type EdgeStatus string

const (
	EdgeStatusNone      EdgeStatus = ""
	EdgeStatusPending   EdgeStatus = "pending"
	EdgeStatusRunning   EdgeStatus = "running"
	EdgeStatusCompleted EdgeStatus = "completed"
	EdgeStatusError     EdgeStatus = "error"
)

// Valid reports whether s is one of the known edge statuses (or empty).
func (s EdgeStatus) Valid() bool {
	switch s {
	case EdgeStatusNone, EdgeStatusPending, EdgeStatusRunning, EdgeStatusCompleted, EdgeStatusError:
		return true
	}
	return false
}

// Position is a point in canvas (domain) coordinates. The store never sees pixels.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Offset returns p moved by dx, dy.
func (p Position) Offset(dx, dy float64) Position {
	return Position{X: p.X + dx, Y: p.Y + dy}
}

// Node represents one workflow step on the canvas.
// Data is an open payload for type-specific fields (e.g. decision logic text).
type Node struct {
	ID       string         `json:"id"`
	Type     NodeType       `json:"type"`
	Label    string         `json:"label"`
	Position Position       `json:"position"`
	Data     map[string]any `json:"data"`
	Selected bool           `json:"selected,omitempty"`
}

// Edge represents a directed connection from a port on Source to a port on Target.
type Edge struct {
	ID           string     `json:"id"`
	Source       string     `json:"source"`
	SourceHandle string     `json:"sourceHandle,omitempty"`
	Target       string     `json:"target"`
	TargetHandle string     `json:"targetHandle,omitempty"`
	Label        string     `json:"label,omitempty"`
	Status       EdgeStatus `json:"status,omitempty"`
	Selected     bool       `json:"selected,omitempty"`
}

// Touches reports whether the edge has nodeID as either endpoint.
func (e Edge) Touches(nodeID string) bool {
	return e.Source == nodeID || e.Target == nodeID
}

// Selection lists the ids currently marked selected.
type Selection struct {
	Nodes []string `json:"nodes"`
	Edges []string `json:"edges"`
}

// Empty reports whether nothing is selected.
func (s Selection) Empty() bool {
	return len(s.Nodes) == 0 && len(s.Edges) == 0
}

// NodePatch is a partial node update. Nil fields are left untouched.
// Data is merged key by key; a nil value removes the key.
type NodePatch struct {
	Label    *string        `json:"label,omitempty"`
	Position *Position      `json:"position,omitempty"`
	Data     map[string]any `json:"data,omitempty"`
}

// EdgePatch is a partial edge update. Nil fields are left untouched.
type EdgePatch struct {
	Label  *string     `json:"label,omitempty"`
	Status *EdgeStatus `json:"status,omitempty"`
}

// Deletion reports which entities a delete operation removed, cascades included.
type Deletion struct {
	Nodes []string `json:"nodes"`
	Edges []string `json:"edges"`
}

// Empty reports whether nothing was removed.
func (d Deletion) Empty() bool {
	return len(d.Nodes) == 0 && len(d.Edges) == 0
}
