// Package config loads server configuration.
// Priority: WORKFLOW_* env vars > YAML file > defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/meikuraledutech/workflow"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment variable the loader reads.
const EnvPrefix = "WORKFLOW_"

// Config holds all server configuration.
type Config struct {
	ListenAddr      string                 `yaml:"listen_addr"`
	DatabaseURL     string                 `yaml:"database_url"`
	LogLevel        string                 `yaml:"log_level"`
	LogFormat       string                 `yaml:"log_format"`
	DefaultTemplate string                 `yaml:"default_template"`
	Viewport        Viewport               `yaml:"viewport"`
	DuplicateOffset Offset                 `yaml:"duplicate_offset"`
	Policy          workflow.ConnectPolicy `yaml:"policy"`
	Chrome          Chrome                 `yaml:"chrome"`
	StreamBuffer    int                    `yaml:"stream_buffer"`
}

// Viewport bounds the random placement of nodes added without a position.
type Viewport struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// Offset is the shift applied to duplicated nodes.
type Offset struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// Chrome is the initial editor chrome state of every new session.
type Chrome struct {
	DarkMode            bool `yaml:"dark_mode"`
	AutopilotOpen       bool `yaml:"autopilot_open"`
	NodesPanelOpen      bool `yaml:"nodes_panel_open"`
	PropertiesPanelOpen bool `yaml:"properties_panel_open"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		ListenAddr:      ":8080",
		LogLevel:        "info",
		LogFormat:       "json",
		Viewport:        Viewport{Width: 500, Height: 500},
		DuplicateOffset: Offset{X: 50, Y: 50},
		Policy:          workflow.PermissivePolicy(),
		Chrome:          Chrome{NodesPanelOpen: true, PropertiesPanelOpen: true},
		StreamBuffer:    16,
	}
}

// Load builds the configuration from defaults, the YAML file at path and the
// environment. An empty path skips the file layer.
func Load(path string) (Config, error) {
	return load(path, os.LookupEnv)
}

func load(path string, lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	if err := applyEnv(&cfg, lookup); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	env := envReader{lookup: lookup}

	env.setString("LISTEN_ADDR", &cfg.ListenAddr)
	env.setString("DATABASE_URL", &cfg.DatabaseURL)
	env.setString("LOG_LEVEL", &cfg.LogLevel)
	env.setString("LOG_FORMAT", &cfg.LogFormat)
	env.setString("DEFAULT_TEMPLATE", &cfg.DefaultTemplate)
	env.setFloat("VIEWPORT_WIDTH", &cfg.Viewport.Width)
	env.setFloat("VIEWPORT_HEIGHT", &cfg.Viewport.Height)
	env.setFloat("DUPLICATE_OFFSET_X", &cfg.DuplicateOffset.X)
	env.setFloat("DUPLICATE_OFFSET_Y", &cfg.DuplicateOffset.Y)
	env.setBool("POLICY_ALLOW_SELF_LOOPS", &cfg.Policy.AllowSelfLoops)
	env.setBool("POLICY_ALLOW_DUPLICATE_EDGES", &cfg.Policy.AllowDuplicateEdges)
	env.setBool("POLICY_STRICT_PORTS", &cfg.Policy.StrictPorts)
	env.setBool("CHROME_DARK_MODE", &cfg.Chrome.DarkMode)
	env.setBool("CHROME_AUTOPILOT_OPEN", &cfg.Chrome.AutopilotOpen)
	env.setBool("CHROME_NODES_PANEL_OPEN", &cfg.Chrome.NodesPanelOpen)
	env.setBool("CHROME_PROPERTIES_PANEL_OPEN", &cfg.Chrome.PropertiesPanelOpen)
	env.setInt("STREAM_BUFFER", &cfg.StreamBuffer)

	return errors.Join(env.errs...)
}

type envReader struct {
	lookup func(string) (string, bool)
	errs   []error
}

func (r *envReader) get(key string) (string, bool) {
	v, ok := r.lookup(EnvPrefix + key)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

func (r *envReader) setString(key string, dst *string) {
	if v, ok := r.get(key); ok {
		*dst = v
	}
}

func (r *envReader) setFloat(key string, dst *float64) {
	v, ok := r.get(key)
	if !ok {
		return
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("config: %s%s: %w", EnvPrefix, key, err))
		return
	}
	*dst = f
}

func (r *envReader) setInt(key string, dst *int) {
	v, ok := r.get(key)
	if !ok {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("config: %s%s: %w", EnvPrefix, key, err))
		return
	}
	*dst = n
}

func (r *envReader) setBool(key string, dst *bool) {
	v, ok := r.get(key)
	if !ok {
		return
	}
	b, err := strconv.ParseBool(strings.ToLower(v))
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("config: %s%s: %w", EnvPrefix, key, err))
		return
	}
	*dst = b
}

// Validate rejects values the server cannot start with.
func (c Config) Validate() error {
	var errs []error
	if c.ListenAddr == "" {
		errs = append(errs, errors.New("config: listen_addr is required"))
	}
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("config: log_level: %w", err))
	}
	switch c.LogFormat {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("config: log_format must be json or console, got %q", c.LogFormat))
	}
	if c.Viewport.Width <= 0 || c.Viewport.Height <= 0 {
		errs = append(errs, fmt.Errorf("config: viewport must be positive, got %gx%g", c.Viewport.Width, c.Viewport.Height))
	}
	if c.StreamBuffer < 1 {
		errs = append(errs, fmt.Errorf("config: stream_buffer must be at least 1, got %d", c.StreamBuffer))
	}
	if c.DefaultTemplate != "" && c.DatabaseURL == "" {
		errs = append(errs, errors.New("config: default_template needs database_url"))
	}
	return errors.Join(errs...)
}
