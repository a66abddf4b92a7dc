package postgres

import (
	"context"
	"fmt"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS workflow_templates (
    name       TEXT PRIMARY KEY,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS workflow_template_nodes (
    template TEXT NOT NULL REFERENCES workflow_templates(name) ON DELETE CASCADE,
    id       TEXT NOT NULL,
    ord      INT NOT NULL,
    type     TEXT NOT NULL,
    label    TEXT NOT NULL DEFAULT '',
    x        DOUBLE PRECISION NOT NULL DEFAULT 0,
    y        DOUBLE PRECISION NOT NULL DEFAULT 0,
    data     JSONB NOT NULL DEFAULT '{}',
    PRIMARY KEY (template, id)
);

CREATE TABLE IF NOT EXISTS workflow_template_edges (
    template      TEXT NOT NULL REFERENCES workflow_templates(name) ON DELETE CASCADE,
    id            TEXT NOT NULL,
    ord           INT NOT NULL,
    source_id     TEXT NOT NULL,
    source_handle TEXT NOT NULL DEFAULT '',
    target_id     TEXT NOT NULL,
    target_handle TEXT NOT NULL DEFAULT '',
    label         TEXT NOT NULL DEFAULT '',
    status        TEXT NOT NULL DEFAULT '',
    PRIMARY KEY (template, id),
    FOREIGN KEY (template, source_id) REFERENCES workflow_template_nodes(template, id) ON DELETE CASCADE,
    FOREIGN KEY (template, target_id) REFERENCES workflow_template_nodes(template, id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_workflow_template_edges_source ON workflow_template_edges(template, source_id);
CREATE INDEX IF NOT EXISTS idx_workflow_template_edges_target ON workflow_template_edges(template, target_id);
`

// CreateSchema creates the template tables if they don't exist.
func (s *PGStore) CreateSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("workflow: create schema: %w", err)
	}
	return nil
}

// DropSchema drops the template tables.
func (s *PGStore) DropSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx,
		`DROP TABLE IF EXISTS workflow_template_edges, workflow_template_nodes, workflow_templates CASCADE;`)
	if err != nil {
		return fmt.Errorf("workflow: drop schema: %w", err)
	}
	return nil
}
