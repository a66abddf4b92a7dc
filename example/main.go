package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/meikuraledutech/workflow"
	"github.com/meikuraledutech/workflow/memory"
	"github.com/meikuraledutech/workflow/postgres"
	"go.uber.org/zap"
)

func main() {
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	// The in-memory store starts from the order processing sample.
	store, err := memory.New()
	if err != nil {
		logger.Fatal("new store", zap.Error(err))
	}

	cancel := store.Subscribe(func(s workflow.Snapshot) {
		logger.Info("snapshot", zap.Uint64("revision", s.Revision),
			zap.Int("nodes", len(s.Nodes)), zap.Int("edges", len(s.Edges)))
	})
	defer cancel()

	fmt.Println("initial graph:")
	printJSON(store.Snapshot())

	// ── Add a node and wire it in ─────────────────────────────────────
	pos := workflow.Position{X: 1000, Y: 500}
	notify, err := store.AddNode(workflow.NodeTypeNotification, &pos)
	if err != nil {
		logger.Fatal("add node", zap.Error(err))
	}
	fmt.Printf("\nadded node: %s (%s)\n", notify.ID, notify.Label)

	edge, err := store.Connect("5", workflow.HandleRight, notify.ID, workflow.HandleLeft)
	if err != nil {
		logger.Fatal("connect", zap.Error(err))
	}
	fmt.Printf("added edge: %s\n", edge.ID)

	// ── Inspector edit ────────────────────────────────────────────────
	label := "Email customer"
	updated, err := store.UpdateNode(notify.ID, workflow.NodePatch{
		Label: &label,
		Data:  map[string]any{"channel": "email"},
	})
	if err != nil {
		logger.Fatal("update node", zap.Error(err))
	}
	printJSON(updated)

	// ── Stale ids are contract errors, not crashes ────────────────────
	if _, err := store.Connect("1", workflow.HandleRight, "gone", workflow.HandleLeft); workflow.IsRecoverable(err) {
		fmt.Printf("\nrejected: %v\n", err)
	}

	// ── Select, duplicate, delete ─────────────────────────────────────
	store.SetSelection([]string{"3"}, nil)
	copies := store.DuplicateSelected()
	fmt.Printf("\nduplicated decision node as %s\n", copies[0].ID)

	del := store.DeleteSelected()
	fmt.Println("deleted:")
	printJSON(del)

	// ── Reset ─────────────────────────────────────────────────────────
	store.Reset()
	fmt.Printf("\nafter reset: %d nodes, %d edges\n", len(store.Snapshot().Nodes), len(store.Snapshot().Edges))

	// ── Templates (only with DATABASE_URL) ────────────────────────────
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return
	}
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		logger.Fatal("connect", zap.Error(err))
	}
	defer pool.Close()

	var templates workflow.TemplateStore = postgres.New(pool)
	if err := templates.CreateSchema(ctx); err != nil {
		logger.Fatal("schema", zap.Error(err))
	}
	if err := templates.SaveTemplate(ctx, "order-processing", store.Snapshot()); err != nil {
		logger.Fatal("save template", zap.Error(err))
	}
	fmt.Println("\ntemplate saved")

	tpl, err := templates.GetTemplate(ctx, "order-processing")
	if err != nil {
		logger.Fatal("get template", zap.Error(err))
	}
	seeded, err := memory.New(memory.WithInitial(*tpl))
	if err != nil {
		logger.Fatal("seed store", zap.Error(err))
	}
	fmt.Printf("seeded store from template: %d nodes\n", len(seeded.Snapshot().Nodes))

	if err := templates.DeleteTemplate(ctx, "order-processing"); err != nil {
		logger.Fatal("delete template", zap.Error(err))
	}
	fmt.Println("template deleted")
}

func printJSON(v any) {
	out, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(out))
}
