package memory

import (
	"github.com/google/uuid"
	"github.com/meikuraledutech/workflow"
)

// Snapshot returns a deep copy of the current nodes and edges.
func (s *Store) Snapshot() workflow.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// Reset replaces the whole graph with the initial snapshot and clears the selection.
// Resetting a store that already holds the initial graph changes nothing and
// emits nothing.
func (s *Store) Reset() {
	s.mu.Lock()
	if s.pristine {
		s.mu.Unlock()
		return
	}
	s.load(s.initial)
	notify := s.commit()
	s.pristine = true
	s.mu.Unlock()
	notify()
}

// Subscribe registers fn to receive a snapshot after every committed mutation.
// fn runs after the store lock is released, on the mutating goroutine or on
// one whose own delivery is still in progress.
// The returned cancel func is idempotent.
func (s *Store) Subscribe(fn func(workflow.Snapshot)) (cancel func()) {
	s.mu.Lock()
	s.nextSub++
	id := s.nextSub
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// load replaces nodes and edges with a copy of snap. Caller holds the lock.
func (s *Store) load(snap workflow.Snapshot) {
	cp := snap.Clone()
	s.nodes = cp.Nodes
	s.edges = cp.Edges
	for i := range s.nodes {
		s.nodes[i].Selected = false
		s.used[s.nodes[i].ID] = struct{}{}
	}
	for i := range s.edges {
		s.edges[i].Selected = false
		s.used[s.edges[i].ID] = struct{}{}
	}
	s.pristine = true
}

func (s *Store) snapshotLocked() workflow.Snapshot {
	return workflow.Snapshot{
		Nodes:    s.nodes,
		Edges:    s.edges,
		Revision: s.revision,
	}.Clone()
}

// commit bumps the revision and queues the new snapshot for subscribers.
// Caller holds the lock and must call the returned func after unlocking.
func (s *Store) commit() func() {
	s.revision++
	s.pristine = false
	if len(s.subs) == 0 {
		return func() {}
	}
	d := delivery{
		snap: s.snapshotLocked(),
		subs: make([]func(workflow.Snapshot), 0, len(s.subs)),
	}
	for _, fn := range s.subs {
		d.subs = append(d.subs, fn)
	}
	s.pending = append(s.pending, d)
	return s.drain
}

// drain delivers queued snapshots in commit order. If another goroutine is
// already draining, it picks up whatever was queued here.
func (s *Store) drain() {
	s.mu.Lock()
	if s.draining {
		s.mu.Unlock()
		return
	}
	s.draining = true
	for len(s.pending) > 0 {
		d := s.pending[0]
		s.pending[0] = delivery{}
		s.pending = s.pending[1:]
		s.mu.Unlock()
		for _, fn := range d.subs {
			fn(d.snap.Clone())
		}
		s.mu.Lock()
	}
	s.pending = nil
	s.draining = false
	s.mu.Unlock()
}

// generateID returns an id the store has never held. A custom generator that
// keeps yielding empty or used ids is abandoned for uuids.
func (s *Store) generateID() string {
	gen := s.newID
	for attempt := 0; ; attempt++ {
		if attempt == maxIDAttempts {
			gen = uuid.NewString
		}
		id := gen()
		if _, taken := s.used[id]; id != "" && !taken {
			s.used[id] = struct{}{}
			return id
		}
	}
}

func (s *Store) nodeIndex(id string) int {
	for i := range s.nodes {
		if s.nodes[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) edgeIndex(id string) int {
	for i := range s.edges {
		if s.edges[i].ID == id {
			return i
		}
	}
	return -1
}
