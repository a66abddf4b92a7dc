package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/meikuraledutech/workflow"
)

// SaveTemplate stores snap under name in one transaction, replacing any
// template of the same name. Selection flags and the revision are not stored.
// Returns an ErrInvalidSnapshot error if snap breaks the graph invariants.
func (s *PGStore) SaveTemplate(ctx context.Context, name string, snap workflow.Snapshot) error {
	if err := snap.Validate(); err != nil {
		return err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("workflow: begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	// Replace semantics: children go with the parent row via ON DELETE CASCADE.
	if _, err := tx.Exec(ctx, `DELETE FROM workflow_templates WHERE name = $1`, name); err != nil {
		return fmt.Errorf("workflow: delete template: %w", err)
	}
	if _, err := tx.Exec(ctx, `INSERT INTO workflow_templates (name) VALUES ($1)`, name); err != nil {
		return fmt.Errorf("workflow: insert template: %w", err)
	}
	if err := insertNodes(ctx, tx, name, snap.Nodes); err != nil {
		return err
	}
	if err := insertEdges(ctx, tx, name, snap.Edges); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("workflow: commit: %w", err)
	}
	return nil
}

// GetTemplate loads the template stored under name.
// Returns ErrTemplateNotFound if there is none.
func (s *PGStore) GetTemplate(ctx context.Context, name string) (*workflow.Snapshot, error) {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.RepeatableRead,
		AccessMode: pgx.ReadOnly,
	})
	if err != nil {
		return nil, fmt.Errorf("workflow: begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var exists int
	err = tx.QueryRow(ctx, `SELECT 1 FROM workflow_templates WHERE name = $1`, name).Scan(&exists)
	if err != nil {
		if isNoRows(err) {
			return nil, fmt.Errorf("%w: %q", workflow.ErrTemplateNotFound, name)
		}
		return nil, fmt.Errorf("workflow: get template: %w", err)
	}

	nodes, err := listNodes(ctx, tx, name)
	if err != nil {
		return nil, err
	}
	edges, err := listEdges(ctx, tx, name)
	if err != nil {
		return nil, err
	}
	return &workflow.Snapshot{Nodes: nodes, Edges: edges}, nil
}

// ListTemplates returns all template names in alphabetical order.
// Returns an empty slice (not nil) if none exist.
func (s *PGStore) ListTemplates(ctx context.Context) ([]string, error) {
	rows, err := s.db.Query(ctx, `SELECT name FROM workflow_templates ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("workflow: list templates: %w", err)
	}
	names, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("workflow: scan template: %w", err)
	}
	if names == nil {
		names = []string{}
	}
	return names, nil
}

// DeleteTemplate removes a template with its nodes and edges.
// Returns ErrTemplateNotFound if there is none.
func (s *PGStore) DeleteTemplate(ctx context.Context, name string) error {
	ct, err := s.db.Exec(ctx, `DELETE FROM workflow_templates WHERE name = $1`, name)
	if err != nil {
		return fmt.Errorf("workflow: delete template: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("%w: %q", workflow.ErrTemplateNotFound, name)
	}
	return nil
}
