package api

import (
	"github.com/gofiber/fiber/v3"
	"github.com/meikuraledutech/workflow"
	"github.com/meikuraledutech/workflow/session"
)

type nodeDragRequest struct {
	ID       string             `json:"id" validate:"required"`
	Position *workflow.Position `json:"position" validate:"required"`
}

type clickRequest struct {
	ID string `json:"id" validate:"required"`
}

// eventRoutes mounts the renderer callbacks and the chrome state. Events whose
// ids have gone stale answer 204 like any other event.
func (h *handler) eventRoutes(app *fiber.App) {
	g := app.Group("/sessions/:id")

	// ── Renderer events ───────────────────────────────────────────────
	g.Post("/events/node-drag", h.withSession(func(c fiber.Ctx, s *session.Session) error {
		var req nodeDragRequest
		if err := c.Bind().JSON(&req); err != nil {
			return badRequest(c, err)
		}
		if err := s.OnNodeDrag(req.ID, *req.Position); err != nil {
			return h.fail(c, err)
		}
		return c.SendStatus(204)
	}))

	g.Post("/events/node-click", h.withSession(func(c fiber.Ctx, s *session.Session) error {
		var req clickRequest
		if err := c.Bind().JSON(&req); err != nil {
			return badRequest(c, err)
		}
		if err := s.OnNodeClick(req.ID); err != nil {
			return h.fail(c, err)
		}
		return c.SendStatus(204)
	}))

	g.Post("/events/edge-click", h.withSession(func(c fiber.Ctx, s *session.Session) error {
		var req clickRequest
		if err := c.Bind().JSON(&req); err != nil {
			return badRequest(c, err)
		}
		if err := s.OnEdgeClick(req.ID); err != nil {
			return h.fail(c, err)
		}
		return c.SendStatus(204)
	}))

	g.Post("/events/pane-click", h.withSession(func(c fiber.Ctx, s *session.Session) error {
		if err := s.OnPaneClick(); err != nil {
			return h.fail(c, err)
		}
		return c.SendStatus(204)
	}))

	g.Post("/events/connect", h.withSession(func(c fiber.Ctx, s *session.Session) error {
		var req connectRequest
		if err := c.Bind().JSON(&req); err != nil {
			return badRequest(c, err)
		}
		if err := s.OnConnect(req.Source, req.SourceHandle, req.Target, req.TargetHandle); err != nil {
			return h.fail(c, err)
		}
		return c.SendStatus(204)
	}))

	// ── Chrome ────────────────────────────────────────────────────────
	g.Get("/chrome", h.withSession(func(c fiber.Ctx, s *session.Session) error {
		return c.JSON(s.Chrome())
	}))

	g.Patch("/chrome", h.withSession(func(c fiber.Ctx, s *session.Session) error {
		var req session.ChromePatch
		if err := c.Bind().JSON(&req); err != nil {
			return badRequest(c, err)
		}
		return c.JSON(s.SetChrome(req))
	}))
}
