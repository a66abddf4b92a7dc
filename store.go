package workflow

import (
	"context"
	"errors"
)

var (
	ErrInvalidNodeType   = errors.New("workflow: invalid node type")
	ErrUnknownNode       = errors.New("workflow: node not found")
	ErrUnknownEdge       = errors.New("workflow: edge not found")
	ErrUnknownEndpoint   = errors.New("workflow: edge endpoint not found")
	ErrSelfLoop          = errors.New("workflow: self loops are not allowed")
	ErrDuplicateEdge     = errors.New("workflow: duplicate edge")
	ErrInvalidHandle     = errors.New("workflow: handle not declared on node type")
	ErrPortInUse         = errors.New("workflow: output port already connected")
	ErrInvalidEdgeStatus = errors.New("workflow: invalid edge status")
	ErrInvalidSnapshot   = errors.New("workflow: invalid snapshot")
	ErrTemplateNotFound  = errors.New("workflow: template not found")
)

// IsRecoverable reports whether err is a contract violation from a caller holding
// a stale id or an out-of-policy request. Such errors leave the store unchanged and
// callers are expected to log and carry on.
func IsRecoverable(err error) bool {
	for _, target := range []error{
		ErrInvalidNodeType, ErrUnknownNode, ErrUnknownEdge, ErrUnknownEndpoint,
		ErrSelfLoop, ErrDuplicateEdge, ErrInvalidHandle, ErrPortInUse, ErrInvalidEdgeStatus,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// ConnectPolicy decides which connections Connect accepts.
type ConnectPolicy struct {
	AllowSelfLoops      bool `json:"allow_self_loops" yaml:"allow_self_loops"`
	AllowDuplicateEdges bool `json:"allow_duplicate_edges" yaml:"allow_duplicate_edges"`
	// StrictPorts requires declared handles and at most one edge per output handle.
	StrictPorts bool `json:"strict_ports" yaml:"strict_ports"`
}

// PermissivePolicy allows self loops, duplicate edges and any handle name.
func PermissivePolicy() ConnectPolicy {
	return ConnectPolicy{AllowSelfLoops: true, AllowDuplicateEdges: true}
}

// Store defines the contract of the in-memory workflow graph: nodes, edges and
// selection, plus the operations that keep them consistent.
//
// Every mutation runs to completion before returning; observers never see a
// partially applied change.
type Store interface {
	// Queries
	Snapshot() Snapshot
	Node(id string) (Node, bool)
	Edge(id string) (Edge, bool)
	Selection() Selection

	// Nodes
	AddNode(t NodeType, pos *Position) (Node, error)
	UpdateNode(id string, patch NodePatch) (Node, error)
	DeleteNode(id string) (Deletion, error)

	// Edges
	Connect(source, sourceHandle, target, targetHandle string) (Edge, error)
	UpdateEdge(id string, patch EdgePatch) (Edge, error)
	DeleteEdge(id string) error

	// Selection (bulk operations)
	SetSelection(nodeIDs, edgeIDs []string) Selection
	DeleteSelected() Deletion
	DuplicateSelected() []Node

	// Graph
	Reset()
	Subscribe(fn func(Snapshot)) (cancel func())
}

// TemplateStore defines the contract for persisting named initial snapshots.
// Templates seed new sessions and are their reset target.
type TemplateStore interface {
	// Schema
	CreateSchema(ctx context.Context) error
	DropSchema(ctx context.Context) error

	// Templates
	SaveTemplate(ctx context.Context, name string, snap Snapshot) error
	GetTemplate(ctx context.Context, name string) (*Snapshot, error)
	ListTemplates(ctx context.Context) ([]string, error)
	DeleteTemplate(ctx context.Context, name string) error
}
