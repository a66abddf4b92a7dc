package api

import (
	"github.com/gofiber/fiber/v3"
	"github.com/meikuraledutech/workflow"
	"github.com/meikuraledutech/workflow/session"
)

type addNodeRequest struct {
	Type     workflow.NodeType  `json:"type" validate:"required"`
	Position *workflow.Position `json:"position"`
}

type updateNodeRequest struct {
	Label    *string            `json:"label" validate:"omitempty,max=200"`
	Position *workflow.Position `json:"position"`
	Data     map[string]any     `json:"data"`
}

type connectRequest struct {
	Source       string `json:"source" validate:"required"`
	SourceHandle string `json:"sourceHandle"`
	Target       string `json:"target" validate:"required"`
	TargetHandle string `json:"targetHandle"`
}

type updateEdgeRequest struct {
	Label  *string              `json:"label" validate:"omitempty,max=200"`
	Status *workflow.EdgeStatus `json:"status"`
}

type selectionRequest struct {
	Nodes []string `json:"nodes" validate:"dive,required"`
	Edges []string `json:"edges" validate:"dive,required"`
}

func (h *handler) graphRoutes(app *fiber.App) {
	g := app.Group("/sessions/:id")

	// ── Nodes ─────────────────────────────────────────────────────────
	g.Post("/nodes", h.withSession(func(c fiber.Ctx, s *session.Session) error {
		var req addNodeRequest
		if err := c.Bind().JSON(&req); err != nil {
			return badRequest(c, err)
		}
		out, err := s.Do(workflow.AddNode{Type: req.Type, Position: req.Position})
		if err != nil {
			return h.fail(c, err)
		}
		return c.Status(201).JSON(out)
	}))

	g.Get("/nodes/:nodeId", h.withSession(func(c fiber.Ctx, s *session.Session) error {
		n, ok := s.Node(c.Params("nodeId"))
		if !ok {
			return c.Status(404).JSON(fiber.Map{"error": "node not found"})
		}
		return c.JSON(n)
	}))

	g.Patch("/nodes/:nodeId", h.withSession(func(c fiber.Ctx, s *session.Session) error {
		var req updateNodeRequest
		if err := c.Bind().JSON(&req); err != nil {
			return badRequest(c, err)
		}
		out, err := s.Do(workflow.UpdateNode{
			ID:    c.Params("nodeId"),
			Patch: workflow.NodePatch{Label: req.Label, Position: req.Position, Data: req.Data},
		})
		if err != nil {
			return h.fail(c, err)
		}
		return c.JSON(out)
	}))

	g.Delete("/nodes/:nodeId", h.withSession(func(c fiber.Ctx, s *session.Session) error {
		out, err := s.Do(workflow.DeleteNode{ID: c.Params("nodeId")})
		if err != nil {
			return h.fail(c, err)
		}
		return c.JSON(out)
	}))

	// ── Edges ─────────────────────────────────────────────────────────
	g.Post("/edges", h.withSession(func(c fiber.Ctx, s *session.Session) error {
		var req connectRequest
		if err := c.Bind().JSON(&req); err != nil {
			return badRequest(c, err)
		}
		out, err := s.Do(workflow.Connect{
			Source:       req.Source,
			SourceHandle: req.SourceHandle,
			Target:       req.Target,
			TargetHandle: req.TargetHandle,
		})
		if err != nil {
			return h.fail(c, err)
		}
		return c.Status(201).JSON(out)
	}))

	g.Patch("/edges/:edgeId", h.withSession(func(c fiber.Ctx, s *session.Session) error {
		var req updateEdgeRequest
		if err := c.Bind().JSON(&req); err != nil {
			return badRequest(c, err)
		}
		out, err := s.Do(workflow.UpdateEdge{
			ID:    c.Params("edgeId"),
			Patch: workflow.EdgePatch{Label: req.Label, Status: req.Status},
		})
		if err != nil {
			return h.fail(c, err)
		}
		return c.JSON(out)
	}))

	g.Delete("/edges/:edgeId", h.withSession(func(c fiber.Ctx, s *session.Session) error {
		if _, err := s.Do(workflow.DeleteEdge{ID: c.Params("edgeId")}); err != nil {
			return h.fail(c, err)
		}
		return c.SendStatus(204)
	}))

	// ── Selection & bulk commands ─────────────────────────────────────
	g.Put("/selection", h.withSession(func(c fiber.Ctx, s *session.Session) error {
		var req selectionRequest
		if err := bind(c, &req); err != nil {
			return badRequest(c, err)
		}
		out, err := s.Do(workflow.SetSelection{Nodes: req.Nodes, Edges: req.Edges})
		if err != nil {
			return h.fail(c, err)
		}
		return c.JSON(out)
	}))

	commands := map[string]workflow.Command{
		"delete-selected":    workflow.DeleteSelected{},
		"duplicate-selected": workflow.DuplicateSelected{},
		"reset":              workflow.Reset{},
	}
	for name, cmd := range commands {
		g.Post("/commands/"+name, h.withSession(func(c fiber.Ctx, s *session.Session) error {
			out, err := s.Do(cmd)
			if err != nil {
				return h.fail(c, err)
			}
			return c.JSON(out)
		}))
	}
}
