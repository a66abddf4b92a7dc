package api

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/meikuraledutech/workflow"
	"github.com/meikuraledutech/workflow/session"
	"go.uber.org/zap"
)

func (h *handler) streamRoutes(app *fiber.App) {
	// ── Snapshot stream (SSE) ─────────────────────────────────────────
	app.Get("/sessions/:id/stream", h.withSession(func(c fiber.Ctx, s *session.Session) error {
		c.Set("Content-Type", "text/event-stream")
		c.Set("Cache-Control", "no-cache")
		c.Set("Connection", "keep-alive")
		c.Set("X-Accel-Buffering", "no")

		return c.SendStreamWriter(func(w *bufio.Writer) {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			updates := s.Subscribe(ctx)

			if err := writeSnapshot(w, s.Snapshot()); err != nil {
				return
			}

			ticker := time.NewTicker(h.keepAlive)
			defer ticker.Stop()
			for {
				select {
				case snap, ok := <-updates:
					if !ok {
						return
					}
					if err := writeSnapshot(w, snap); err != nil {
						h.log.Debug("stream closed", zap.String("session", s.ID()), zap.Error(err))
						return
					}
				case <-ticker.C:
					if _, err := fmt.Fprint(w, ": keep-alive\n\n"); err != nil {
						return
					}
					if err := w.Flush(); err != nil {
						return
					}
				}
			}
		})
	}))
}

// writeSnapshot emits one SSE "snapshot" event whose id is the revision.
func writeSnapshot(w *bufio.Writer, snap workflow.Snapshot) error {
	body, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "id: %d\nevent: snapshot\ndata: %s\n\n", snap.Revision, body); err != nil {
		return err
	}
	return w.Flush()
}
