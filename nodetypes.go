package workflow

import "slices"

// Handle names used by the built-in node renderers.
const (
	HandleLeft   = "left"
	HandleRight  = "right"
	HandleTop    = "top"
	HandleBottom = "bottom"
)

// NodeTypeConfig is the static, display-oriented description of a node type.
// Port counts are advisory unless a strict ConnectPolicy is in force.
type NodeTypeConfig struct {
	Type        NodeType `json:"type"`
	Label       string   `json:"label"`
	Icon        string   `json:"icon"`
	Color       string   `json:"color"`
	Description string   `json:"description"`
	Inputs      []string `json:"inputs"`
	Outputs     []string `json:"outputs"`
}

var nodeTypes = []NodeTypeConfig{
	{NodeTypeStart, "Start", "▶️", "#10b981", "Workflow entry point", nil, []string{HandleRight}},
	{NodeTypeEnd, "End", "⏹️", "#ef4444", "Workflow exit point", []string{HandleLeft}, nil},
	{NodeTypeAction, "Action", "⚡", "#3b82f6", "Execute an action or task", []string{HandleLeft}, []string{HandleRight}},
	{NodeTypeDecision, "Decision", "❓", "#f59e0b", "Conditional branching", []string{HandleLeft}, []string{HandleRight, HandleBottom}},
	{NodeTypeLoop, "Loop", "🔄", "#8b5cf6", "Repeat actions", []string{HandleLeft}, []string{HandleRight}},
	{NodeTypeCondition, "Condition", "🔍", "#06b6d4", "Check conditions", []string{HandleLeft}, []string{HandleRight, HandleBottom}},
	{NodeTypeDelay, "Delay", "⏱️", "#6b7280", "Wait for specified time", []string{HandleLeft}, []string{HandleRight}},
	{NodeTypeNotification, "Notification", "📢", "#f97316", "Send notifications", []string{HandleLeft}, []string{HandleRight}},
	{NodeTypeCustom, "Custom", "🧩", "#64748b", "User defined step", []string{HandleLeft}, []string{HandleRight}},
}

// NodeTypes returns the type table in display order. The result is a copy.
func NodeTypes() []NodeTypeConfig {
	out := make([]NodeTypeConfig, len(nodeTypes))
	for i, c := range nodeTypes {
		c.Inputs = slices.Clone(c.Inputs)
		c.Outputs = slices.Clone(c.Outputs)
		out[i] = c
	}
	return out
}

// LookupNodeType returns the config for t.
func LookupNodeType(t NodeType) (NodeTypeConfig, bool) {
	for _, c := range nodeTypes {
		if c.Type == t {
			c.Inputs = slices.Clone(c.Inputs)
			c.Outputs = slices.Clone(c.Outputs)
			return c, true
		}
	}
	return NodeTypeConfig{}, false
}

// Valid reports whether t is part of the closed type enumeration.
func (t NodeType) Valid() bool {
	_, ok := LookupNodeType(t)
	return ok
}

// DefaultLabel is the label given to freshly added nodes, e.g. "Action Node".
func (t NodeType) DefaultLabel() string {
	c, ok := LookupNodeType(t)
	if !ok {
		return "Node"
	}
	return c.Label + " Node"
}

// HasInput reports whether handle is a declared input port of the type.
func (c NodeTypeConfig) HasInput(handle string) bool {
	return slices.Contains(c.Inputs, handle)
}

// HasOutput reports whether handle is a declared output port of the type.
func (c NodeTypeConfig) HasOutput(handle string) bool {
	return slices.Contains(c.Outputs, handle)
}
