package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/meikuraledutech/workflow"
	"github.com/meikuraledutech/workflow/internal/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type commandCall struct {
	command, outcome string
}

type fakeRecorder struct {
	mu       sync.Mutex
	commands []commandCall
	open     int
	dropped  int
}

func (r *fakeRecorder) CommandApplied(command, outcome string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commands = append(r.commands, commandCall{command, outcome})
}

func (r *fakeRecorder) SessionOpened() { r.mu.Lock(); r.open++; r.mu.Unlock() }
func (r *fakeRecorder) SessionClosed() { r.mu.Lock(); r.open--; r.mu.Unlock() }

func (r *fakeRecorder) SnapshotDropped() { r.mu.Lock(); r.dropped++; r.mu.Unlock() }

func newTestManager(t *testing.T, cfg Config) (*Manager, *observer.ObservedLogs, *fakeRecorder) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	rec := &fakeRecorder{}
	return NewManager(cfg, WithLogger(zap.New(core)), WithRecorder(rec)), logs, rec
}

func create(t *testing.T, m *Manager, initial *workflow.Snapshot, opts ...CreateOption) *Session {
	t.Helper()
	s, err := m.Create(initial, opts...)
	require.NoError(t, err)
	return s
}

func TestManager_Lifecycle(t *testing.T) {
	m, logs, rec := newTestManager(t, DefaultConfig())

	a := create(t, m, nil)
	b := create(t, m, nil, FromTemplate("orders"))
	require.NotEqual(t, a.ID(), b.ID())
	assert.Equal(t, "orders", b.Template())
	assert.Equal(t, 2, rec.open)

	got, err := m.Get(a.ID())
	require.NoError(t, err)
	assert.Same(t, a, got)
	assert.Len(t, m.List(), 2)

	require.NoError(t, m.Close(a.ID()))
	_, err = m.Get(a.ID())
	require.ErrorIs(t, err, ErrSessionNotFound)
	require.ErrorIs(t, m.Close(a.ID()), ErrSessionNotFound)
	assert.Equal(t, 1, rec.open)

	_, err = a.Do(workflow.Reset{})
	require.ErrorIs(t, err, ErrSessionClosed)

	m.CloseAll()
	assert.Empty(t, m.List())
	assert.Equal(t, 0, rec.open)
	assert.Equal(t, 2, logs.FilterMessage("session created").Len())
	assert.Equal(t, 2, logs.FilterMessage("session closed").Len())
}

func TestManager_SessionsAreIsolated(t *testing.T) {
	m, _, _ := newTestManager(t, DefaultConfig())
	a := create(t, m, nil)
	b := create(t, m, nil)

	_, err := a.Do(workflow.DeleteNode{ID: "3"})
	require.NoError(t, err)

	assert.Len(t, a.Snapshot().Nodes, 5)
	assert.Len(t, b.Snapshot().Nodes, 6)
}

func TestManager_CreateFromInitial(t *testing.T) {
	m, _, _ := newTestManager(t, DefaultConfig())
	initial := workflow.Snapshot{
		Nodes: []workflow.Node{{ID: "only", Type: workflow.NodeTypeStart, Label: "Go", Data: map[string]any{}}},
		Edges: []workflow.Edge{},
	}
	s := create(t, m, &initial)

	_, err := s.Do(workflow.AddNode{Type: workflow.NodeTypeEnd})
	require.NoError(t, err)
	out, err := s.Do(workflow.Reset{})
	require.NoError(t, err)
	snap := out.(workflow.Snapshot)
	require.Len(t, snap.Nodes, 1)
	assert.Equal(t, "only", snap.Nodes[0].ID)
}

func TestManager_CreateRejectsInvalidInitial(t *testing.T) {
	m, logs, rec := newTestManager(t, DefaultConfig())
	initial := workflow.Snapshot{
		Nodes: []workflow.Node{{ID: "a", Type: workflow.NodeTypeStart}},
		Edges: []workflow.Edge{{ID: "e", Source: "a", Target: "ghost"}},
	}

	s, err := m.Create(&initial)
	require.ErrorIs(t, err, workflow.ErrInvalidSnapshot)
	assert.Nil(t, s)
	assert.Empty(t, m.List())
	assert.Zero(t, rec.open)
	assert.Zero(t, logs.FilterMessage("session created").Len())
}

func TestManager_AppliesStoreConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Policy = workflow.ConnectPolicy{StrictPorts: true}
	cfg.OffsetX, cfg.OffsetY = 10, 20
	m, _, _ := newTestManager(t, cfg)
	s := create(t, m, nil)

	_, err := s.Do(workflow.Connect{Source: "6", SourceHandle: "right", Target: "1", TargetHandle: "left"})
	require.ErrorIs(t, err, workflow.ErrInvalidHandle)

	_, err = s.Do(workflow.SetSelection{Nodes: []string{"1"}})
	require.NoError(t, err)
	out, err := s.Do(workflow.DuplicateSelected{})
	require.NoError(t, err)
	assert.Equal(t, workflow.Position{X: 110, Y: 270}, out.([]workflow.Node)[0].Position)
}

func TestSession_DoLogsAndRecords(t *testing.T) {
	m, logs, rec := newTestManager(t, DefaultConfig())
	s := create(t, m, nil)

	_, err := s.Do(workflow.AddNode{Type: workflow.NodeTypeAction})
	require.NoError(t, err)
	_, err = s.Do(workflow.DeleteNode{ID: "missing"})
	require.ErrorIs(t, err, workflow.ErrUnknownNode)

	assert.Equal(t, []commandCall{
		{"add_node", metrics.OutcomeOK},
		{"delete_node", metrics.OutcomeRejected},
	}, rec.commands)

	applied := logs.FilterMessage("command applied").All()
	require.Len(t, applied, 1)
	assert.Equal(t, zapcore.DebugLevel, applied[0].Level)
	assert.Equal(t, "add_node", applied[0].ContextMap()["command"])
	assert.Equal(t, s.ID(), applied[0].ContextMap()["session"])

	rejected := logs.FilterMessage("command rejected").All()
	require.Len(t, rejected, 1)
	assert.Equal(t, zapcore.WarnLevel, rejected[0].Level)
	assert.Contains(t, rejected[0].ContextMap()["error"], "node not found")
}

func TestSession_ConcurrentCommands(t *testing.T) {
	m, _, _ := newTestManager(t, DefaultConfig())
	s := create(t, m, nil)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Do(workflow.AddNode{Type: workflow.NodeTypeDelay})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	snap := s.Snapshot()
	assert.Len(t, snap.Nodes, 26)
	assert.Equal(t, uint64(20), snap.Revision)
}

func TestSession_Chrome(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Chrome.DarkMode = true
	m, _, _ := newTestManager(t, cfg)
	a := create(t, m, nil)
	b := create(t, m, nil)

	assert.Equal(t, Chrome{DarkMode: true, NodesPanelOpen: true, PropertiesPanelOpen: true}, a.Chrome())

	off, on := false, true
	got := a.SetChrome(ChromePatch{DarkMode: &off, AutopilotOpen: &on})
	assert.Equal(t, Chrome{AutopilotOpen: true, NodesPanelOpen: true, PropertiesPanelOpen: true}, got)
	assert.Equal(t, got, a.Chrome())
	assert.True(t, b.Chrome().DarkMode, "chrome is per session")
}

func TestSession_Events(t *testing.T) {
	m, logs, _ := newTestManager(t, DefaultConfig())
	s := create(t, m, nil)

	require.NoError(t, s.OnNodeDrag("2", workflow.Position{X: 9, Y: 8}))
	n, _ := s.Node("2")
	assert.Equal(t, workflow.Position{X: 9, Y: 8}, n.Position)

	require.NoError(t, s.OnNodeClick("3"))
	assert.Equal(t, workflow.Selection{Nodes: []string{"3"}, Edges: []string{}}, s.Selection())

	require.NoError(t, s.OnEdgeClick("e1-2"))
	assert.Equal(t, workflow.Selection{Nodes: []string{}, Edges: []string{"e1-2"}}, s.Selection())

	require.NoError(t, s.OnPaneClick())
	assert.True(t, s.Selection().Empty())

	require.NoError(t, s.OnConnect("4", "right", "5", "left"))
	assert.Len(t, s.Snapshot().Edges, 7)

	// Stale ids from the renderer are logged and ignored.
	before := s.Snapshot()
	require.NoError(t, s.OnNodeDrag("gone", workflow.Position{}))
	require.NoError(t, s.OnConnect("1", "right", "gone", "left"))
	require.NoError(t, s.OnNodeClick("gone"))
	assert.Equal(t, before.Nodes, s.Snapshot().Nodes)
	assert.Equal(t, before.Edges, s.Snapshot().Edges)
	assert.Equal(t, 2, logs.FilterMessage("command rejected").FilterLevelExact(zapcore.WarnLevel).Len())
}

func TestSession_Subscribe(t *testing.T) {
	m, _, _ := newTestManager(t, DefaultConfig())
	s := create(t, m, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch := s.Subscribe(ctx)

	_, err := s.Do(workflow.AddNode{Type: workflow.NodeTypeLoop})
	require.NoError(t, err)
	_, err = s.Do(workflow.DeleteEdge{ID: "e1-2"})
	require.NoError(t, err)

	first := <-ch
	second := <-ch
	assert.Equal(t, uint64(1), first.Revision)
	assert.Len(t, first.Nodes, 7)
	assert.Equal(t, uint64(2), second.Revision)
	assert.Len(t, second.Edges, 5)

	cancel()
	require.Eventually(t, func() bool {
		_, open := <-ch
		return !open
	}, time.Second, 5*time.Millisecond)
}

func TestSession_SubscribeDropsWhenFull(t *testing.T) {
	cfg := DefaultConfig()
	cfg.StreamBuffer = 2
	m, _, rec := newTestManager(t, cfg)
	s := create(t, m, nil)

	ch := s.Subscribe(context.Background())
	for i := 0; i < 5; i++ {
		_, err := s.Do(workflow.AddNode{Type: workflow.NodeTypeAction})
		require.NoError(t, err)
	}

	assert.Equal(t, 3, rec.dropped)
	assert.Equal(t, uint64(1), (<-ch).Revision)
	assert.Equal(t, uint64(2), (<-ch).Revision)
}

func TestSession_SubscribeEndsOnClose(t *testing.T) {
	m, _, _ := newTestManager(t, DefaultConfig())
	s := create(t, m, nil)
	ch := s.Subscribe(context.Background())

	require.NoError(t, m.Close(s.ID()))
	_, open := <-ch
	assert.False(t, open)

	late := s.Subscribe(context.Background())
	_, open = <-late
	assert.False(t, open)
}
