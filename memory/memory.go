package memory

import (
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/google/uuid"
	"github.com/meikuraledutech/workflow"
)

const (
	defaultViewportWidth   = 500
	defaultViewportHeight  = 500
	defaultDuplicateOffset = 50

	// maxIDAttempts bounds how often a custom id generator is retried before
	// falling back to uuids.
	maxIDAttempts = 64
)

// Store implements workflow.Store entirely in memory.
// It is safe for concurrent use; each operation holds the lock for its full
// duration so a Snapshot is never partial. Subscribers receive snapshots in
// revision order even when mutations race.
type Store struct {
	mu       sync.RWMutex
	nodes    []workflow.Node
	edges    []workflow.Edge
	revision uint64

	// pristine is true while the graph equals initial with nothing selected.
	pristine bool

	// used holds every id the store has ever held or issued.
	used map[string]struct{}

	initial workflow.Snapshot
	policy  workflow.ConnectPolicy
	viewW   float64
	viewH   float64
	dupX    float64
	dupY    float64
	newID   func() string
	rng     *rand.Rand
	subs    map[uint64]func(workflow.Snapshot)
	nextSub uint64

	// pending holds committed snapshots not yet delivered; one goroutine at a
	// time drains it.
	pending  []delivery
	draining bool
}

type delivery struct {
	snap workflow.Snapshot
	subs []func(workflow.Snapshot)
}

// Option configures a Store.
type Option func(*Store)

// WithInitial sets the snapshot the store starts from and resets to.
func WithInitial(snap workflow.Snapshot) Option {
	return func(s *Store) { s.initial = snap.Clone() }
}

// WithPolicy sets the connection policy. The default is workflow.PermissivePolicy.
func WithPolicy(p workflow.ConnectPolicy) Option {
	return func(s *Store) { s.policy = p }
}

// WithViewport bounds the fallback position of nodes added without one.
func WithViewport(width, height float64) Option {
	return func(s *Store) {
		if width > 0 {
			s.viewW = width
		}
		if height > 0 {
			s.viewH = height
		}
	}
}

// WithDuplicateOffset sets how far duplicates are moved from their originals.
func WithDuplicateOffset(dx, dy float64) Option {
	return func(s *Store) {
		s.dupX = dx
		s.dupY = dy
	}
}

// WithIDGenerator replaces the uuid based id generator.
// Generated ids that collide with an id the store has seen are skipped.
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// WithRand sets the random source used for fallback positions.
func WithRand(r *rand.Rand) Option {
	return func(s *Store) {
		if r != nil {
			s.rng = r
		}
	}
}

// New creates a Store holding a copy of the initial snapshot
// (workflow.DefaultSnapshot unless WithInitial is given). It returns an
// ErrInvalidSnapshot error if the initial snapshot breaks the graph invariants.
func New(opts ...Option) (*Store, error) {
	s := &Store{
		initial: workflow.DefaultSnapshot(),
		policy:  workflow.PermissivePolicy(),
		viewW:   defaultViewportWidth,
		viewH:   defaultViewportHeight,
		dupX:    defaultDuplicateOffset,
		dupY:    defaultDuplicateOffset,
		newID:   uuid.NewString,
		rng:     rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		used:    make(map[string]struct{}),
		subs:    make(map[uint64]func(workflow.Snapshot)),
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.initial.Validate(); err != nil {
		return nil, fmt.Errorf("workflow: new store: %w", err)
	}
	s.initial.Revision = 0
	s.load(s.initial)
	return s, nil
}

var _ workflow.Store = (*Store)(nil)
