// Package session confines one workflow store to one editor session.
//
// A Session owns its store, serializes the commands applied to it, keeps the
// editor chrome state, and fans snapshots out to stream subscribers. Sessions
// never share a store.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/meikuraledutech/workflow"
	"github.com/meikuraledutech/workflow/internal/metrics"
	"go.uber.org/zap"
)

var (
	ErrSessionNotFound = errors.New("session: not found")
	ErrSessionClosed   = errors.New("session: closed")
)

// Recorder receives session metrics. *metrics.Collector implements it.
type Recorder interface {
	CommandApplied(command, outcome string, took time.Duration)
	SessionOpened()
	SessionClosed()
	SnapshotDropped()
}

type nopRecorder struct{}

func (nopRecorder) CommandApplied(string, string, time.Duration) {}
func (nopRecorder) SessionOpened()                               {}
func (nopRecorder) SessionClosed()                               {}
func (nopRecorder) SnapshotDropped()                             {}

// Chrome is the editor shell state around the canvas.
type Chrome struct {
	DarkMode            bool `json:"darkMode"`
	AutopilotOpen       bool `json:"autopilotOpen"`
	NodesPanelOpen      bool `json:"nodesPanelOpen"`
	PropertiesPanelOpen bool `json:"propertiesPanelOpen"`
}

// ChromePatch changes the chrome flags that are non-nil.
type ChromePatch struct {
	DarkMode            *bool `json:"darkMode,omitempty"`
	AutopilotOpen       *bool `json:"autopilotOpen,omitempty"`
	NodesPanelOpen      *bool `json:"nodesPanelOpen,omitempty"`
	PropertiesPanelOpen *bool `json:"propertiesPanelOpen,omitempty"`
}

// Session is one editor's store plus its chrome.
type Session struct {
	id        string
	template  string
	createdAt time.Time
	store     workflow.Store
	log       *zap.Logger
	rec       Recorder

	// mu serializes commands so concurrent requests behave like one event loop.
	mu sync.Mutex

	chromeMu sync.RWMutex
	chrome   Chrome

	streamBuffer int
	subMu        sync.Mutex
	subs         map[uint64]chan workflow.Snapshot
	nextSub      uint64
	unsubscribe  func()

	closeOnce sync.Once
	done      chan struct{}
}

func newSession(id, template string, store workflow.Store, chrome Chrome, streamBuffer int, log *zap.Logger, rec Recorder) *Session {
	s := &Session{
		id:           id,
		template:     template,
		createdAt:    time.Now().UTC(),
		store:        store,
		log:          log.With(zap.String("session", id)),
		rec:          rec,
		chrome:       chrome,
		streamBuffer: streamBuffer,
		subs:         make(map[uint64]chan workflow.Snapshot),
		done:         make(chan struct{}),
	}
	s.unsubscribe = store.Subscribe(s.publish)
	return s
}

func (s *Session) ID() string           { return s.id }
func (s *Session) Template() string     { return s.template }
func (s *Session) CreatedAt() time.Time { return s.createdAt }

// Snapshot returns the current graph.
func (s *Session) Snapshot() workflow.Snapshot { return s.store.Snapshot() }

// Selection returns the current selection.
func (s *Session) Selection() workflow.Selection { return s.store.Selection() }

// Node looks up a node for the inspector.
func (s *Session) Node(id string) (workflow.Node, bool) { return s.store.Node(id) }

// Edge looks up an edge.
func (s *Session) Edge(id string) (workflow.Edge, bool) { return s.store.Edge(id) }

// Do applies cmd to the session's store. Commands run one at a time.
// Contract violations such as stale ids are logged at Warn and returned.
func (s *Session) Do(cmd workflow.Command) (any, error) {
	select {
	case <-s.done:
		return nil, ErrSessionClosed
	default:
	}

	s.mu.Lock()
	start := time.Now()
	out, err := cmd.Apply(s.store)
	took := time.Since(start)
	s.mu.Unlock()

	fields := []zap.Field{zap.String("command", cmd.Name()), zap.Duration("took", took)}
	switch {
	case err == nil:
		s.rec.CommandApplied(cmd.Name(), metrics.OutcomeOK, took)
		s.log.Debug("command applied", fields...)
	case workflow.IsRecoverable(err):
		s.rec.CommandApplied(cmd.Name(), metrics.OutcomeRejected, took)
		s.log.Warn("command rejected", append(fields, zap.Error(err))...)
	default:
		s.rec.CommandApplied(cmd.Name(), metrics.OutcomeError, took)
		s.log.Error("command failed", append(fields, zap.Error(err))...)
	}
	return out, err
}

// Chrome returns the current chrome state.
func (s *Session) Chrome() Chrome {
	s.chromeMu.RLock()
	defer s.chromeMu.RUnlock()
	return s.chrome
}

// SetChrome applies p and returns the resulting state.
func (s *Session) SetChrome(p ChromePatch) Chrome {
	s.chromeMu.Lock()
	defer s.chromeMu.Unlock()

	set := func(dst *bool, v *bool) {
		if v != nil {
			*dst = *v
		}
	}
	set(&s.chrome.DarkMode, p.DarkMode)
	set(&s.chrome.AutopilotOpen, p.AutopilotOpen)
	set(&s.chrome.NodesPanelOpen, p.NodesPanelOpen)
	set(&s.chrome.PropertiesPanelOpen, p.PropertiesPanelOpen)
	return s.chrome
}

// Done is closed when the session is closed.
func (s *Session) Done() <-chan struct{} { return s.done }

func (s *Session) close() bool {
	closed := false
	s.closeOnce.Do(func() {
		s.unsubscribe()
		close(s.done)

		s.subMu.Lock()
		for id, ch := range s.subs {
			close(ch)
			delete(s.subs, id)
		}
		s.subMu.Unlock()
		closed = true
	})
	return closed
}
