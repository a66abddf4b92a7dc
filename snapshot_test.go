package workflow

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSnapshot(t *testing.T) {
	snap := DefaultSnapshot()
	require.NoError(t, snap.Validate())
	assert.Len(t, snap.Nodes, 6)
	assert.Len(t, snap.Edges, 6)
	assert.True(t, snap.Selection().Empty())

	// Each call returns an independent graph.
	snap.Nodes[0].Label = "changed"
	assert.Equal(t, "Customer places order", DefaultSnapshot().Nodes[0].Label)
}

func TestSnapshotValidate(t *testing.T) {
	base := func() Snapshot {
		return Snapshot{
			Nodes: []Node{
				{ID: "a", Type: NodeTypeStart},
				{ID: "b", Type: NodeTypeEnd},
			},
			Edges: []Edge{
				{ID: "ab", Source: "a", Target: "b"},
			},
		}
	}

	testCases := []struct {
		name    string
		mutate  func(*Snapshot)
		wantMsg string
	}{
		{
			name:   "valid",
			mutate: func(*Snapshot) {},
		},
		{
			name:    "empty node id",
			mutate:  func(s *Snapshot) { s.Nodes[0].ID = "" },
			wantMsg: "node with empty id",
		},
		{
			name:    "duplicate node id",
			mutate:  func(s *Snapshot) { s.Nodes[1].ID = "a" },
			wantMsg: `duplicate node id "a"`,
		},
		{
			name:    "unknown node type",
			mutate:  func(s *Snapshot) { s.Nodes[1].Type = "webhook" },
			wantMsg: `unknown type "webhook"`,
		},
		{
			name:    "duplicate edge id",
			mutate:  func(s *Snapshot) { s.Edges = append(s.Edges, Edge{ID: "ab", Source: "b", Target: "a"}) },
			wantMsg: `duplicate edge id "ab"`,
		},
		{
			name:    "dangling source",
			mutate:  func(s *Snapshot) { s.Edges[0].Source = "z" },
			wantMsg: `unknown source "z"`,
		},
		{
			name:    "dangling target",
			mutate:  func(s *Snapshot) { s.Edges[0].Target = "z" },
			wantMsg: `unknown target "z"`,
		},
		{
			name:    "unknown status",
			mutate:  func(s *Snapshot) { s.Edges[0].Status = "stuck" },
			wantMsg: `unknown status "stuck"`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			snap := base()
			tc.mutate(&snap)

			err := snap.Validate()
			if tc.wantMsg == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, ErrInvalidSnapshot)
			assert.Contains(t, err.Error(), tc.wantMsg)
		})
	}
}

func TestSnapshotClone(t *testing.T) {
	snap := DefaultSnapshot()
	snap.Nodes[1].Data["details"] = map[string]any{"tags": []any{"x"}}

	cp := snap.Clone()
	if diff := cmp.Diff(snap, cp); diff != "" {
		t.Fatalf("clone mismatch (-want +got):\n%s", diff)
	}

	cp.Nodes[1].Data["details"].(map[string]any)["tags"].([]any)[0] = "y"
	cp.Edges[0].Label = "changed"
	assert.Equal(t, "x", snap.Nodes[1].Data["details"].(map[string]any)["tags"].([]any)[0])
	assert.Empty(t, snap.Edges[0].Label)
}

func TestMergeData(t *testing.T) {
	data := map[string]any{"keep": 1, "drop": 2, "replace": "old"}
	patch := map[string]any{"drop": nil, "replace": "new", "add": true}

	got := MergeData(data, patch)
	assert.Equal(t, map[string]any{"keep": 1, "replace": "new", "add": true}, got)
	assert.Equal(t, map[string]any{"keep": 1, "drop": 2, "replace": "old"}, data, "input must not change")

	assert.Equal(t, map[string]any{"a": "b"}, MergeData(nil, map[string]any{"a": "b"}))
}

func TestDecodeSnapshot(t *testing.T) {
	doc := `{
		"nodes": [
			{"id": "s", "type": "start", "label": "Begin", "position": {"x": 0, "y": 10}, "selected": true},
			{"id": "e", "type": "end", "position": {"x": 300, "y": 10}, "data": {"note": "bye"}}
		],
		"edges": [
			{"id": "s-e", "source": "s", "sourceHandle": "right", "target": "e", "targetHandle": "left", "status": "pending"}
		]
	}`

	snap, err := DecodeSnapshot(strings.NewReader(doc))
	require.NoError(t, err)

	want := &Snapshot{
		Nodes: []Node{
			{ID: "s", Type: NodeTypeStart, Label: "Begin", Position: Position{X: 0, Y: 10}, Data: map[string]any{}},
			{ID: "e", Type: NodeTypeEnd, Position: Position{X: 300, Y: 10}, Data: map[string]any{"note": "bye"}},
		},
		Edges: []Edge{
			{ID: "s-e", Source: "s", SourceHandle: "right", Target: "e", TargetHandle: "left", Status: EdgeStatusPending},
		},
	}
	if diff := cmp.Diff(want, snap); diff != "" {
		t.Fatalf("decoded snapshot mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeSnapshot_NoEdges(t *testing.T) {
	snap, err := DecodeSnapshot(strings.NewReader(`{"nodes": [{"id": "a", "type": "custom", "position": {"x": 1, "y": 2}}]}`))
	require.NoError(t, err)
	assert.NotNil(t, snap.Edges)
	assert.Empty(t, snap.Edges)
}

func TestDecodeSnapshot_Rejects(t *testing.T) {
	testCases := []struct {
		name string
		doc  string
	}{
		{"not json", `{"nodes": [`},
		{"missing nodes", `{"edges": []}`},
		{"unknown field", `{"nodes": [], "viewport": {}}`},
		{"unknown type", `{"nodes": [{"id": "a", "type": "webhook", "position": {"x": 0, "y": 0}}]}`},
		{"missing position", `{"nodes": [{"id": "a", "type": "start"}]}`},
		{"empty id", `{"nodes": [{"id": "", "type": "start", "position": {"x": 0, "y": 0}}]}`},
		{"bad status", `{"nodes": [{"id": "a", "type": "start", "position": {"x": 0, "y": 0}}],
			"edges": [{"id": "e", "source": "a", "target": "a", "status": "stuck"}]}`},
		{"dangling edge", `{"nodes": [{"id": "a", "type": "start", "position": {"x": 0, "y": 0}}],
			"edges": [{"id": "e", "source": "a", "target": "b"}]}`},
		{"duplicate ids", `{"nodes": [
			{"id": "a", "type": "start", "position": {"x": 0, "y": 0}},
			{"id": "a", "type": "end", "position": {"x": 0, "y": 0}}]}`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DecodeSnapshot(strings.NewReader(tc.doc))
			require.ErrorIs(t, err, ErrInvalidSnapshot)
		})
	}
}

func TestDecodeSnapshot_DefaultRoundTrips(t *testing.T) {
	raw, err := json.Marshal(DefaultSnapshot())
	require.NoError(t, err)

	snap, err := DecodeSnapshot(bytes.NewReader(raw))
	require.NoError(t, err)
	if diff := cmp.Diff(DefaultSnapshot(), *snap); diff != "" {
		t.Fatalf("sample graph does not survive decoding (-want +got):\n%s", diff)
	}
}
