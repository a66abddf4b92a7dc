package api

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/meikuraledutech/workflow"
	"github.com/meikuraledutech/workflow/session"
	"go.uber.org/zap"
)

type createSessionRequest struct {
	Template string `json:"template" validate:"omitempty,max=100"`
}

type sessionView struct {
	ID        string             `json:"id"`
	Template  string             `json:"template,omitempty"`
	CreatedAt time.Time          `json:"createdAt"`
	Snapshot  workflow.Snapshot  `json:"snapshot"`
	Selection workflow.Selection `json:"selection"`
	Chrome    session.Chrome     `json:"chrome"`
}

type sessionSummary struct {
	ID        string    `json:"id"`
	Template  string    `json:"template,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	Revision  uint64    `json:"revision"`
	Nodes     int       `json:"nodes"`
	Edges     int       `json:"edges"`
}

func viewOf(s *session.Session) sessionView {
	snap := s.Snapshot()
	return sessionView{
		ID:        s.ID(),
		Template:  s.Template(),
		CreatedAt: s.CreatedAt(),
		Snapshot:  snap,
		Selection: snap.Selection(),
		Chrome:    s.Chrome(),
	}
}

func (h *handler) sessionRoutes(app *fiber.App) {
	// ── Sessions ──────────────────────────────────────────────────────
	app.Post("/sessions", func(c fiber.Ctx) error {
		var req createSessionRequest
		if err := bind(c, &req); err != nil {
			return badRequest(c, err)
		}
		name := req.Template
		if name == "" {
			name = h.defaultTemplate
		}

		initial, err := h.loadTemplate(c.Context(), name)
		if err != nil {
			return h.fail(c, err)
		}
		s, err := h.sessions.Create(initial, session.FromTemplate(name))
		if err != nil {
			return h.fail(c, err)
		}
		return c.Status(201).JSON(viewOf(s))
	})

	app.Get("/sessions", func(c fiber.Ctx) error {
		list := h.sessions.List()
		out := make([]sessionSummary, 0, len(list))
		for _, s := range list {
			snap := s.Snapshot()
			out = append(out, sessionSummary{
				ID:        s.ID(),
				Template:  s.Template(),
				CreatedAt: s.CreatedAt(),
				Revision:  snap.Revision,
				Nodes:     len(snap.Nodes),
				Edges:     len(snap.Edges),
			})
		}
		return c.JSON(out)
	})

	app.Get("/sessions/:id", h.withSession(func(c fiber.Ctx, s *session.Session) error {
		return c.JSON(viewOf(s))
	}))

	app.Delete("/sessions/:id", func(c fiber.Ctx) error {
		if err := h.sessions.Close(c.Params("id")); err != nil {
			return h.fail(c, err)
		}
		return c.SendStatus(204)
	})
}

// loadTemplate fetches the named template. An empty name means the built-in
// sample graph.
func (h *handler) loadTemplate(ctx context.Context, name string) (*workflow.Snapshot, error) {
	if name == "" {
		return nil, nil
	}
	if h.templates == nil {
		h.log.Warn("template requested without a template store", zap.String("template", name))
		return nil, workflow.ErrTemplateNotFound
	}
	return h.templates.GetTemplate(ctx, name)
}
