package session

import (
	"context"

	"github.com/meikuraledutech/workflow"
)

// Subscribe returns a channel that receives a snapshot after every committed
// mutation. A subscriber that falls behind loses snapshots rather than
// blocking the store; every snapshot carries its revision so gaps are visible.
// The channel is closed when ctx ends or the session closes.
func (s *Session) Subscribe(ctx context.Context) <-chan workflow.Snapshot {
	ch := make(chan workflow.Snapshot, s.streamBuffer)

	s.subMu.Lock()
	select {
	case <-s.done:
		s.subMu.Unlock()
		close(ch)
		return ch
	default:
	}
	s.nextSub++
	id := s.nextSub
	s.subs[id] = ch
	s.subMu.Unlock()

	go func() {
		select {
		case <-ctx.Done():
		case <-s.done:
		}
		s.subMu.Lock()
		if c, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(c)
		}
		s.subMu.Unlock()
	}()
	return ch
}

// publish runs as the store subscriber.
func (s *Session) publish(snap workflow.Snapshot) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	for _, ch := range s.subs {
		select {
		case ch <- snap.Clone():
		default:
			s.rec.SnapshotDropped()
		}
	}
}
