package session

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/meikuraledutech/workflow"
	"github.com/meikuraledutech/workflow/internal/logging"
	"github.com/meikuraledutech/workflow/memory"
	"go.uber.org/zap"
)

// Config is applied to every session the Manager creates.
type Config struct {
	Policy         workflow.ConnectPolicy
	ViewportWidth  float64
	ViewportHeight float64
	OffsetX        float64
	OffsetY        float64
	Chrome         Chrome
	StreamBuffer   int
}

// DefaultConfig mirrors the editor defaults.
func DefaultConfig() Config {
	return Config{
		Policy:         workflow.PermissivePolicy(),
		ViewportWidth:  500,
		ViewportHeight: 500,
		OffsetX:        50,
		OffsetY:        50,
		Chrome:         Chrome{NodesPanelOpen: true, PropertiesPanelOpen: true},
		StreamBuffer:   16,
	}
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(m *Manager) { m.log = logging.OrNop(l) }
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(m *Manager) {
		if r != nil {
			m.rec = r
		}
	}
}

// Manager is the registry of open sessions.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	cfg Config
	log *zap.Logger
	rec Recorder
}

// NewManager returns an empty registry.
func NewManager(cfg Config, opts ...Option) *Manager {
	if cfg.StreamBuffer < 1 {
		cfg.StreamBuffer = 1
	}
	m := &Manager{
		sessions: make(map[string]*Session),
		cfg:      cfg,
		log:      zap.NewNop(),
		rec:      nopRecorder{},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// CreateOption configures a single session.
type CreateOption func(*createOptions)

type createOptions struct {
	template string
}

// FromTemplate records the template the session was seeded from.
func FromTemplate(name string) CreateOption {
	return func(o *createOptions) { o.template = name }
}

// Create opens a session whose store starts from, and resets to, initial.
// A nil initial uses the sample order processing graph. An initial snapshot
// that breaks the graph invariants yields an ErrInvalidSnapshot error.
func (m *Manager) Create(initial *workflow.Snapshot, opts ...CreateOption) (*Session, error) {
	var co createOptions
	for _, opt := range opts {
		opt(&co)
	}

	storeOpts := []memory.Option{
		memory.WithPolicy(m.cfg.Policy),
		memory.WithViewport(m.cfg.ViewportWidth, m.cfg.ViewportHeight),
		memory.WithDuplicateOffset(m.cfg.OffsetX, m.cfg.OffsetY),
	}
	if initial != nil {
		storeOpts = append(storeOpts, memory.WithInitial(*initial))
	}

	store, err := memory.New(storeOpts...)
	if err != nil {
		return nil, fmt.Errorf("session: create: %w", err)
	}

	id := uuid.NewString()
	s := newSession(id, co.template, store, m.cfg.Chrome, m.cfg.StreamBuffer, m.log, m.rec)

	m.mu.Lock()
	m.sessions[id] = s
	m.mu.Unlock()

	m.rec.SessionOpened()
	m.log.Info("session created",
		zap.String("session", id),
		zap.String("template", co.template),
		zap.Int("nodes", len(s.Snapshot().Nodes)),
	)
	return s, nil
}

// Get returns the session with id.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrSessionNotFound, id)
	}
	return s, nil
}

// List returns open sessions, oldest first.
func (m *Manager) List() []*Session {
	m.mu.RLock()
	out := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s)
	}
	m.mu.RUnlock()

	slices.SortFunc(out, func(a, b *Session) int {
		if c := a.createdAt.Compare(b.createdAt); c != 0 {
			return c
		}
		return strings.Compare(a.id, b.id)
	})
	return out
}

// Close removes the session and ends its streams.
func (m *Manager) Close(id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %q", ErrSessionNotFound, id)
	}

	if s.close() {
		m.rec.SessionClosed()
		m.log.Info("session closed", zap.String("session", id))
	}
	return nil
}

// CloseAll closes every open session.
func (m *Manager) CloseAll() {
	for _, s := range m.List() {
		_ = m.Close(s.id)
	}
}
