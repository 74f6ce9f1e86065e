package loader

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Akima-zed/teleSport/src/types"
)

func snapshot(t *testing.T, seq uint64, names ...string) *types.DataSnapshot {
	t.Helper()
	es := make([]types.EntityRecord, len(names))
	for i, n := range names {
		es[i] = types.EntityRecord{Name: n, Participations: []types.ParticipationRecord{{Edition: 2020, MedalCount: i + 1, AthleteCount: 10}}}
	}
	s, err := types.NewSnapshot(es, seq)
	require.NoError(t, err)
	return s
}

type countingReleaser struct {
	mu    sync.Mutex
	calls int
}

func (r *countingReleaser) ReleaseAll() {
	r.mu.Lock()
	r.calls++
	r.mu.Unlock()
}

func (r *countingReleaser) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

type recorder struct {
	mu   sync.Mutex
	seen []Status
}

func (r *recorder) listen(st Status) {
	r.mu.Lock()
	r.seen = append(r.seen, st)
	r.mu.Unlock()
}

func (r *recorder) all() []Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Status(nil), r.seen...)
}

// gatedSource blocks every fetch until the test releases it.
type gatedSource struct {
	mu    sync.Mutex
	gates []chan fetchResult
	calls chan int
}

type fetchResult struct {
	snap *types.DataSnapshot
	err  error
}

func newGatedSource() *gatedSource {
	return &gatedSource{calls: make(chan int, 16)}
}

func (g *gatedSource) FetchAll(ctx context.Context) (*types.DataSnapshot, error) {
	ch := make(chan fetchResult, 1)
	g.mu.Lock()
	g.gates = append(g.gates, ch)
	n := len(g.gates) - 1
	g.mu.Unlock()
	g.calls <- n
	select {
	case r := <-ch:
		return r.snap, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (g *gatedSource) release(i int, snap *types.DataSnapshot, err error) {
	g.mu.Lock()
	ch := g.gates[i]
	g.mu.Unlock()
	ch <- fetchResult{snap: snap, err: err}
}

func waitCall(t *testing.T, g *gatedSource) int {
	t.Helper()
	select {
	case n := <-g.calls:
		return n
	case <-time.After(2 * time.Second):
		t.Fatal("fetch was not started")
		return -1
	}
}

func waitDone(t *testing.T, done <-chan bool) bool {
	t.Helper()
	select {
	case applied := <-done:
		return applied
	case <-time.After(2 * time.Second):
		t.Fatal("completion was not delivered")
		return false
	}
}

func TestBeginLoadIssuesIncreasingTokens(t *testing.T) {
	m := NewMachine()
	assert.Equal(t, StateIdle, m.Status().State)

	t1 := m.BeginLoad()
	t2 := m.BeginLoad()
	assert.NotZero(t, t1)
	assert.Greater(t, t2, t1)
	st := m.Status()
	assert.Equal(t, StateLoading, st.State)
	assert.Equal(t, t2, st.Token)
}

func TestCompleteLoadTransitions(t *testing.T) {
	rec := &recorder{}
	m := NewMachine(WithListener(rec.listen))

	tok := m.BeginLoad()
	snap := snapshot(t, 1, "France")
	require.True(t, m.CompleteLoad(tok, snap, nil))
	st := m.Status()
	assert.Equal(t, StateReady, st.State)
	assert.Same(t, snap, st.Snapshot)
	assert.NoError(t, st.Err)
	assert.Zero(t, st.Token, "nothing in flight after completion")

	fetchErr := &types.FetchError{Reason: "GET olympic.json", StatusCode: 503}
	tok = m.BeginLoad()
	require.True(t, m.CompleteLoad(tok, nil, fetchErr))
	st = m.Status()
	assert.Equal(t, StateFailed, st.State)
	assert.Nil(t, st.Snapshot)
	var fe *types.FetchError
	require.ErrorAs(t, st.Err, &fe)
	assert.Equal(t, 503, fe.StatusCode)

	tok = m.BeginLoad()
	empty := snapshot(t, 2)
	require.True(t, m.CompleteLoad(tok, empty, nil))
	assert.ErrorIs(t, m.Status().Err, types.ErrEmptyDataset)

	seen := rec.all()
	require.Len(t, seen, 3)
	assert.Equal(t, []State{StateReady, StateFailed, StateFailed}, []State{seen[0].State, seen[1].State, seen[2].State})
	assert.Equal(t, Token(1), seen[0].Token)
}

func TestSupersededCompletionNeverBecomesVisible(t *testing.T) {
	t.Run("first completes after second", func(t *testing.T) {
		rec := &recorder{}
		m := NewMachine(WithListener(rec.listen))
		first := m.BeginLoad()
		second := m.BeginLoad()

		b := snapshot(t, 2, "B")
		require.True(t, m.CompleteLoad(second, b, nil))
		assert.False(t, m.CompleteLoad(first, snapshot(t, 1, "A"), nil))

		st := m.Status()
		assert.Equal(t, StateReady, st.State)
		assert.Same(t, b, st.Snapshot)
		require.Len(t, rec.all(), 1)
	})
	t.Run("first completes before second", func(t *testing.T) {
		m := NewMachine()
		first := m.BeginLoad()
		second := m.BeginLoad()

		assert.False(t, m.CompleteLoad(first, snapshot(t, 1, "A"), nil))
		assert.Equal(t, StateLoading, m.Status().State)

		require.True(t, m.CompleteLoad(second, nil, errors.New("offline")))
		st := m.Status()
		assert.Equal(t, StateFailed, st.State)
		assert.EqualError(t, st.Err, "offline")
	})
	t.Run("double completion", func(t *testing.T) {
		m := NewMachine()
		tok := m.BeginLoad()
		require.True(t, m.CompleteLoad(tok, snapshot(t, 1, "A"), nil))
		assert.False(t, m.CompleteLoad(tok, snapshot(t, 2, "B"), nil), "one visible outcome per load")
		assert.False(t, m.CompleteLoad(0, snapshot(t, 3, "C"), nil))
		assert.Equal(t, "A", m.Status().Snapshot.Entities()[0].Name)
	})
}

func TestCancelDropsLateCompletion(t *testing.T) {
	rel := &countingReleaser{}
	rec := &recorder{}
	m := NewMachine(WithReleaser(rel), WithListener(rec.listen))

	tok := m.BeginLoad()
	m.Cancel()
	assert.Equal(t, 1, rel.count())
	assert.Equal(t, StateIdle, m.Status().State)

	assert.False(t, m.CompleteLoad(tok, snapshot(t, 1, "France"), nil))
	assert.Equal(t, StateIdle, m.Status().State)
	assert.Empty(t, rec.all(), "late completion must not reach listeners")

	m.Cancel()
	assert.Equal(t, 2, rel.count(), "cancel is idempotent and always releases")
}

func TestCancelKeepsLastVisibleState(t *testing.T) {
	m := NewMachine()
	tok := m.BeginLoad()
	snap := snapshot(t, 1, "France")
	require.True(t, m.CompleteLoad(tok, snap, nil))

	refresh := m.BeginLoad()
	m.Cancel()
	st := m.Status()
	assert.Equal(t, StateReady, st.State)
	assert.Same(t, snap, st.Snapshot)
	assert.False(t, m.CompleteLoad(refresh, snapshot(t, 2, "Spain"), nil))

	next := m.BeginLoad()
	assert.Greater(t, next, refresh)
}

func TestRetryAfterFailure(t *testing.T) {
	m := NewMachine()
	tok := m.BeginLoad()
	require.True(t, m.CompleteLoad(tok, nil, &types.FetchError{Reason: "dial"}))
	require.Equal(t, StateFailed, m.Status().State)

	retry := m.BeginLoad()
	assert.Equal(t, StateLoading, m.Status().State)
	require.True(t, m.CompleteLoad(retry, snapshot(t, 2, "Italy"), nil))
	assert.Equal(t, StateReady, m.Status().State)
}

func TestLoadAbortsSupersededFetch(t *testing.T) {
	src := newGatedSource()
	m := NewMachine()

	_, firstDone := m.Load(context.Background(), src)
	waitCall(t, src)
	_, secondDone := m.Load(context.Background(), src)
	second := waitCall(t, src)

	assert.False(t, waitDone(t, firstDone), "aborted fetch must be discarded")
	assert.Equal(t, StateLoading, m.Status().State)

	want := snapshot(t, 2, "Spain")
	src.release(second, want, nil)
	require.True(t, waitDone(t, secondDone))
	assert.Same(t, want, m.Status().Snapshot)
}

func TestLoadCancelledByTeardown(t *testing.T) {
	src := newGatedSource()
	rel := &countingReleaser{}
	rec := &recorder{}
	m := NewMachine(WithReleaser(rel), WithListener(rec.listen))

	_, done := m.Load(context.Background(), src)
	waitCall(t, src)
	m.Cancel()

	assert.False(t, waitDone(t, done))
	assert.Equal(t, StateIdle, m.Status().State)
	assert.Empty(t, rec.all())
	assert.Equal(t, 1, rel.count())
}

func TestLoadAndWait(t *testing.T) {
	src := newGatedSource()
	m := NewMachine()
	go func() {
		n := <-src.calls
		src.release(n, snapshot(t, 1, "Japan", "China"), nil)
	}()
	st, err := m.LoadAndWait(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, StateReady, st.State)
	assert.Equal(t, 2, st.Snapshot.Len())
}

func TestCallerDeadlineFailsLoad(t *testing.T) {
	src := newGatedSource()
	m := NewMachine()
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, done := m.Load(ctx, src)
	waitCall(t, src)
	require.True(t, waitDone(t, done), "a timeout is an ordinary failure of the current load")
	st := m.Status()
	assert.Equal(t, StateFailed, st.State)
	assert.ErrorIs(t, st.Err, context.DeadlineExceeded)
}

func TestStateNames(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "loading", StateLoading.String())
	assert.Equal(t, "ready", StateReady.String())
	assert.Equal(t, "failed", StateFailed.String())
	assert.Equal(t, "State(9)", State(9).String())
}
