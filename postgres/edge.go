package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/meikuraledutech/workflow"
)

// insertEdges queues one INSERT per edge in a single batch. Nodes must be
// inserted first; the foreign keys reject dangling endpoints.
func insertEdges(ctx context.Context, q querier, template string, edges []workflow.Edge) error {
	if len(edges) == 0 {
		return nil
	}

	b := &pgx.Batch{}
	for i, e := range edges {
		b.Queue(
			`INSERT INTO workflow_template_edges
			   (template, id, ord, source_id, source_handle, target_id, target_handle, label, status)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			template, e.ID, i, e.Source, e.SourceHandle, e.Target, e.TargetHandle, e.Label, string(e.Status),
		)
	}

	br := q.SendBatch(ctx, b)
	for _, e := range edges {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return fmt.Errorf("workflow: insert edge %s: %w", e.ID, err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("workflow: insert edges: %w", err)
	}
	return nil
}

// listEdges returns all edges of a template in their stored order.
// Returns an empty slice (not nil) if none found.
func listEdges(ctx context.Context, q querier, template string) ([]workflow.Edge, error) {
	rows, err := q.Query(ctx,
		`SELECT id, source_id, source_handle, target_id, target_handle, label, status
		 FROM workflow_template_edges WHERE template = $1 ORDER BY ord`, template)
	if err != nil {
		return nil, fmt.Errorf("workflow: list edges: %w", err)
	}
	defer rows.Close()

	edges := []workflow.Edge{}
	for rows.Next() {
		var (
			e      workflow.Edge
			status string
		)
		if err := rows.Scan(&e.ID, &e.Source, &e.SourceHandle, &e.Target, &e.TargetHandle, &e.Label, &status); err != nil {
			return nil, fmt.Errorf("workflow: scan edge: %w", err)
		}
		e.Status = workflow.EdgeStatus(status)
		edges = append(edges, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("workflow: rows edges: %w", err)
	}

	return edges, nil
}
