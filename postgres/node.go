package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/meikuraledutech/workflow"
)

// insertNodes queues one INSERT per node in a single batch, keeping the
// snapshot order in the ord column.
func insertNodes(ctx context.Context, q querier, template string, nodes []workflow.Node) error {
	if len(nodes) == 0 {
		return nil
	}

	b := &pgx.Batch{}
	for i, n := range nodes {
		data := n.Data
		if data == nil {
			data = map[string]any{}
		}
		b.Queue(
			`INSERT INTO workflow_template_nodes (template, id, ord, type, label, x, y, data)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			template, n.ID, i, string(n.Type), n.Label, n.Position.X, n.Position.Y, data,
		)
	}

	br := q.SendBatch(ctx, b)
	for _, n := range nodes {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return fmt.Errorf("workflow: insert node %s: %w", n.ID, err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("workflow: insert nodes: %w", err)
	}
	return nil
}

// listNodes returns all nodes of a template in their stored order.
// Returns an empty slice (not nil) if none found.
func listNodes(ctx context.Context, q querier, template string) ([]workflow.Node, error) {
	rows, err := q.Query(ctx,
		`SELECT id, type, label, x, y, data FROM workflow_template_nodes WHERE template = $1 ORDER BY ord`, template)
	if err != nil {
		return nil, fmt.Errorf("workflow: list nodes: %w", err)
	}
	defer rows.Close()

	nodes := []workflow.Node{}
	for rows.Next() {
		var (
			n   workflow.Node
			typ string
		)
		if err := rows.Scan(&n.ID, &typ, &n.Label, &n.Position.X, &n.Position.Y, &n.Data); err != nil {
			return nil, fmt.Errorf("workflow: scan node: %w", err)
		}
		n.Type = workflow.NodeType(typ)
		if n.Data == nil {
			n.Data = map[string]any{}
		}
		nodes = append(nodes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("workflow: rows nodes: %w", err)
	}

	return nodes, nil
}
