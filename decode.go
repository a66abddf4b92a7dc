package workflow

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v6"
)

const snapshotSchemaURL = "https://workflow.meikuraledutech.dev/schemas/snapshot.json"

// snapshotSchemaJSON describes the initial snapshot document format.
const snapshotSchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "$id": "https://workflow.meikuraledutech.dev/schemas/snapshot.json",
  "type": "object",
  "required": ["nodes"],
  "properties": {
    "nodes": {
      "type": "array",
      "items": { "$ref": "#/$defs/node" }
    },
    "edges": {
      "type": "array",
      "items": { "$ref": "#/$defs/edge" }
    },
    "revision": { "type": "integer", "minimum": 0 }
  },
  "additionalProperties": false,
  "$defs": {
    "position": {
      "type": "object",
      "required": ["x", "y"],
      "properties": {
        "x": { "type": "number" },
        "y": { "type": "number" }
      },
      "additionalProperties": false
    },
    "node": {
      "type": "object",
      "required": ["id", "type", "position"],
      "properties": {
        "id": { "type": "string", "minLength": 1 },
        "type": {
          "type": "string",
          "enum": ["start", "end", "action", "decision", "loop", "condition", "delay", "notification", "custom"]
        },
        "label": { "type": "string" },
        "position": { "$ref": "#/$defs/position" },
        "data": { "type": "object" },
        "selected": { "type": "boolean" }
      },
      "additionalProperties": false
    },
    "edge": {
      "type": "object",
      "required": ["id", "source", "target"],
      "properties": {
        "id": { "type": "string", "minLength": 1 },
        "source": { "type": "string", "minLength": 1 },
        "sourceHandle": { "type": "string" },
        "target": { "type": "string", "minLength": 1 },
        "targetHandle": { "type": "string" },
        "label": { "type": "string" },
        "status": {
          "type": "string",
          "enum": ["", "pending", "running", "completed", "error"]
        },
        "selected": { "type": "boolean" }
      },
      "additionalProperties": false
    }
  }
}`

var compileSnapshotSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(snapshotSchemaJSON))
	if err != nil {
		return nil, fmt.Errorf("workflow: unmarshal snapshot schema: %w", err)
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource(snapshotSchemaURL, doc); err != nil {
		return nil, fmt.Errorf("workflow: add snapshot schema: %w", err)
	}
	return c.Compile(snapshotSchemaURL)
})

// DecodeSnapshot reads a snapshot document, validates it against the snapshot
// JSON Schema and then against the graph invariants (see Snapshot.Validate).
// Selection flags in the document are cleared.
func DecodeSnapshot(r io.Reader) (*Snapshot, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("workflow: read snapshot: %w", err)
	}

	sch, err := compileSnapshotSchema()
	if err != nil {
		return nil, err
	}

	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	if err := sch.Validate(doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}

	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	if err := snap.Validate(); err != nil {
		return nil, err
	}

	for i := range snap.Nodes {
		snap.Nodes[i].Selected = false
		if snap.Nodes[i].Data == nil {
			snap.Nodes[i].Data = map[string]any{}
		}
	}
	for i := range snap.Edges {
		snap.Edges[i].Selected = false
	}
	if snap.Edges == nil {
		snap.Edges = []Edge{}
	}
	return &snap, nil
}
