package api

import (
	"bytes"

	"github.com/gofiber/fiber/v3"
	"github.com/meikuraledutech/workflow"
)

const templateNameRule = "required,max=100,excludesall=/?#% "

func (h *handler) templateRoutes(app *fiber.App) {
	// ── Schema ────────────────────────────────────────────────────────
	app.Post("/schema", func(c fiber.Ctx) error {
		if err := h.templates.CreateSchema(c.Context()); err != nil {
			return h.fail(c, err)
		}
		return c.JSON(fiber.Map{"message": "schema created"})
	})

	app.Delete("/schema", func(c fiber.Ctx) error {
		if err := h.templates.DropSchema(c.Context()); err != nil {
			return h.fail(c, err)
		}
		return c.JSON(fiber.Map{"message": "schema dropped"})
	})

	// ── Templates ─────────────────────────────────────────────────────
	app.Get("/templates", func(c fiber.Ctx) error {
		names, err := h.templates.ListTemplates(c.Context())
		if err != nil {
			return h.fail(c, err)
		}
		return c.JSON(fiber.Map{"templates": names})
	})

	app.Put("/templates/:name", func(c fiber.Ctx) error {
		name := c.Params("name")
		if err := h.validate.Var(name, templateNameRule); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid template name"})
		}
		snap, err := workflow.DecodeSnapshot(bytes.NewReader(c.Body()))
		if err != nil {
			return h.fail(c, err)
		}
		if err := h.templates.SaveTemplate(c.Context(), name, *snap); err != nil {
			return h.fail(c, err)
		}
		return c.SendStatus(204)
	})

	app.Get("/templates/:name", func(c fiber.Ctx) error {
		snap, err := h.templates.GetTemplate(c.Context(), c.Params("name"))
		if err != nil {
			return h.fail(c, err)
		}
		return c.JSON(snap)
	})

	app.Delete("/templates/:name", func(c fiber.Ctx) error {
		if err := h.templates.DeleteTemplate(c.Context(), c.Params("name")); err != nil {
			return h.fail(c, err)
		}
		return c.SendStatus(204)
	})
}
