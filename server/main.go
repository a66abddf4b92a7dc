package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/meikuraledutech/workflow"
	"github.com/meikuraledutech/workflow/api"
	"github.com/meikuraledutech/workflow/internal/config"
	"github.com/meikuraledutech/workflow/internal/logging"
	"github.com/meikuraledutech/workflow/internal/metrics"
	"github.com/meikuraledutech/workflow/postgres"
	"github.com/meikuraledutech/workflow/session"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", os.Getenv("WORKFLOW_CONFIG"), "path to a YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ── Templates (optional) ──────────────────────────────────────────
	var templates workflow.TemplateStore
	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal("connect", zap.Error(err))
		}
		defer pool.Close()
		if err := pool.Ping(ctx); err != nil {
			logger.Fatal("ping database", zap.Error(err))
		}
		templates = postgres.New(pool)

		if cfg.DefaultTemplate != "" {
			if _, err := templates.GetTemplate(ctx, cfg.DefaultTemplate); err != nil {
				logger.Warn("default template unavailable, new sessions will fail until it is saved",
					zap.String("template", cfg.DefaultTemplate), zap.Error(err))
			}
		}
	} else {
		logger.Info("no database_url, template routes disabled")
	}

	// ── Sessions & API ────────────────────────────────────────────────
	collector := metrics.New()
	manager := session.NewManager(session.Config{
		Policy:         cfg.Policy,
		ViewportWidth:  cfg.Viewport.Width,
		ViewportHeight: cfg.Viewport.Height,
		OffsetX:        cfg.DuplicateOffset.X,
		OffsetY:        cfg.DuplicateOffset.Y,
		Chrome: session.Chrome{
			DarkMode:            cfg.Chrome.DarkMode,
			AutopilotOpen:       cfg.Chrome.AutopilotOpen,
			NodesPanelOpen:      cfg.Chrome.NodesPanelOpen,
			PropertiesPanelOpen: cfg.Chrome.PropertiesPanelOpen,
		},
		StreamBuffer: cfg.StreamBuffer,
	}, session.WithLogger(logger), session.WithRecorder(collector))

	app := api.New(api.Config{
		Sessions:        manager,
		Templates:       templates,
		DefaultTemplate: cfg.DefaultTemplate,
		Metrics:         collector.Handler(),
		Logger:          logger,
	})

	go func() {
		<-ctx.Done()
		logger.Info("shutting down")
		// Closing sessions ends open snapshot streams so shutdown can drain.
		manager.CloseAll()
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			logger.Error("shutdown", zap.Error(err))
		}
	}()

	logger.Info("listening",
		zap.String("addr", cfg.ListenAddr),
		zap.Bool("templates", templates != nil),
		zap.Bool("strict_ports", cfg.Policy.StrictPorts),
	)
	if err := app.Listen(cfg.ListenAddr, fiber.ListenConfig{DisableStartupMessage: true}); err != nil {
		logger.Fatal("listen", zap.Error(err))
	}
}
