// Package api exposes editor sessions over HTTP with fiber.
package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/cors"
	recoverer "github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/meikuraledutech/workflow"
	"github.com/meikuraledutech/workflow/internal/logging"
	"github.com/meikuraledutech/workflow/session"
	"go.uber.org/zap"
)

const defaultKeepAlive = 15 * time.Second

// Config wires the API to its collaborators. Templates and Metrics are optional;
// their routes are only mounted when set.
type Config struct {
	Sessions        *session.Manager
	Templates       workflow.TemplateStore
	DefaultTemplate string
	Metrics         http.Handler
	Logger          *zap.Logger
	// KeepAlive is the interval of comment lines on idle snapshot streams.
	KeepAlive time.Duration
}

type handler struct {
	sessions        *session.Manager
	templates       workflow.TemplateStore
	defaultTemplate string
	validate        *validator.Validate
	log             *zap.Logger
	keepAlive       time.Duration
}

// New builds the fiber app with every route registered.
func New(cfg Config) *fiber.App {
	h := &handler{
		sessions:        cfg.Sessions,
		templates:       cfg.Templates,
		defaultTemplate: cfg.DefaultTemplate,
		validate:        validator.New(validator.WithRequiredStructEnabled()),
		log:             logging.OrNop(cfg.Logger),
		keepAlive:       cfg.KeepAlive,
	}
	if h.keepAlive <= 0 {
		h.keepAlive = defaultKeepAlive
	}

	app := fiber.New(fiber.Config{
		AppName:         "workflow",
		StructValidator: &structValidator{validate: h.validate},
	})
	app.Use(recoverer.New())
	app.Use(cors.New())
	app.Use(h.requestLogger)

	app.Get("/node-types", func(c fiber.Ctx) error {
		return c.JSON(workflow.NodeTypes())
	})

	h.sessionRoutes(app)
	h.graphRoutes(app)
	h.eventRoutes(app)
	h.streamRoutes(app)
	if h.templates != nil {
		h.templateRoutes(app)
	}
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics))
	}
	return app
}

// structValidator plugs go-playground/validator into fiber's Bind.
type structValidator struct {
	validate *validator.Validate
}

func (v *structValidator) Validate(out any) error {
	return v.validate.Struct(out)
}

func (h *handler) requestLogger(c fiber.Ctx) error {
	start := time.Now()
	err := c.Next()
	h.log.Debug("request",
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.Int("status", c.Response().StatusCode()),
		zap.Duration("duration", time.Since(start)),
	)
	return err
}

// withSession resolves the :id param before calling fn.
func (h *handler) withSession(fn func(fiber.Ctx, *session.Session) error) fiber.Handler {
	return func(c fiber.Ctx) error {
		s, err := h.sessions.Get(c.Params("id"))
		if err != nil {
			return h.fail(c, err)
		}
		return fn(c, s)
	}
}

// bind decodes an optional JSON body into out. An empty body leaves out as is.
func bind(c fiber.Ctx, out any) error {
	if len(c.Body()) == 0 {
		return nil
	}
	return c.Bind().JSON(out)
}

func badRequest(c fiber.Ctx, err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return c.Status(400).JSON(fiber.Map{"error": "invalid " + verrs[0].Namespace() + ": " + verrs[0].Tag()})
	}
	return c.Status(400).JSON(fiber.Map{"error": "invalid body"})
}

// statusFor maps store, session and template errors to HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, session.ErrSessionNotFound),
		errors.Is(err, session.ErrSessionClosed),
		errors.Is(err, workflow.ErrUnknownNode),
		errors.Is(err, workflow.ErrUnknownEdge),
		errors.Is(err, workflow.ErrTemplateNotFound):
		return 404
	case errors.Is(err, workflow.ErrUnknownEndpoint),
		errors.Is(err, workflow.ErrInvalidNodeType),
		errors.Is(err, workflow.ErrSelfLoop),
		errors.Is(err, workflow.ErrDuplicateEdge),
		errors.Is(err, workflow.ErrInvalidHandle),
		errors.Is(err, workflow.ErrPortInUse):
		return 422
	case errors.Is(err, workflow.ErrInvalidEdgeStatus),
		errors.Is(err, workflow.ErrInvalidSnapshot):
		return 400
	default:
		return 500
	}
}

func (h *handler) fail(c fiber.Ctx, err error) error {
	status := statusFor(err)
	if status == 500 {
		h.log.Error("request failed", zap.String("path", c.Path()), zap.Error(err))
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}
