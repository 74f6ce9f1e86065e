// Package loader owns the dataset load lifecycle: Idle → Loading → Ready | Failed.
//
// Every load is identified by a Token. Only the completion carrying the most recently
// issued token may change the visible state; completions for superseded or cancelled
// tokens are dropped without side effects. The Ready snapshot held here is the single
// "current" dataset of a view; nothing else keeps a global copy.
package loader

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Akima-zed/teleSport/src/logging"
	"github.com/Akima-zed/teleSport/src/types"
)

// State of the load lifecycle.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateReady
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Token identifies one load request. Tokens are strictly increasing per Machine; the
// zero Token is never issued.
type Token uint64

// DataSource supplies the full record set on demand.
type DataSource interface {
	FetchAll(ctx context.Context) (*types.DataSnapshot, error)
}

// Releaser is notified on Cancel so live chart handles can be torn down.
type Releaser interface {
	ReleaseAll()
}

// Status is an immutable view of the machine at one instant. From Machine.Status, Token
// is the in-flight token (0 when nothing is loading); in a Listener delivery it is the
// token whose completion produced the state.
type Status struct {
	State    State
	Token    Token
	Snapshot *types.DataSnapshot
	Err      error
}

// Listener observes every visible transition. It is called without the state lock held,
// but deliveries are serialized with each other and with Cancel: once Cancel returns no
// listener call for an older token is running or will start. Listeners may call Status,
// BeginLoad and Load but must not call Cancel or CompleteLoad.
type Listener func(Status)

// Option configures a Machine.
type Option func(*Machine)

// WithReleaser registers the component to release on Cancel.
func WithReleaser(r Releaser) Option {
	return func(m *Machine) { m.releaser = r }
}

// WithListener adds a transition listener.
func WithListener(l Listener) Option {
	return func(m *Machine) { m.listeners = append(m.listeners, l) }
}

// WithName labels log lines of this machine.
func WithName(name string) Option {
	return func(m *Machine) { m.name = name }
}

// Machine is the load state machine. Safe for concurrent use.
type Machine struct {
	name      string
	releaser  Releaser
	listeners []Listener

	// deliverMu serializes "apply + notify" against "invalidate + release".
	deliverMu sync.Mutex

	mu       sync.Mutex
	state    State
	issued   Token // last token handed out or burned
	current  Token // token allowed to complete; 0 when none
	snapshot *types.DataSnapshot
	err      error
	// cancels the fetch context of the current token
	abort context.CancelFunc
}

// NewMachine returns a machine in StateIdle.
func NewMachine(opts ...Option) *Machine {
	m := &Machine{name: "loader"}
	for _, o := range opts {
		o(m)
	}
	return m
}

// BeginLoad issues a new token, makes it current and moves to StateLoading. The
// previous snapshot stays readable through Status until the new load completes.
func (m *Machine) BeginLoad() Token {
	return m.begin(nil)
}

func (m *Machine) begin(abort context.CancelFunc) Token {
	m.mu.Lock()
	if m.abort != nil {
		// a newer request makes the in-flight fetch useless
		m.abort()
	}
	m.issued++
	m.current = m.issued
	m.state = StateLoading
	m.abort = abort
	tok := m.current
	m.mu.Unlock()

	recordStarted(context.Background())
	logging.Debugf("[%s] begin load token=%d", m.name, tok)
	return tok
}

// CompleteLoad delivers the result of the load identified by tok. It returns false when
// the result was discarded because tok is no longer current. A nil error with an empty
// snapshot fails with types.ErrEmptyDataset.
func (m *Machine) CompleteLoad(tok Token, snap *types.DataSnapshot, err error) bool {
	m.deliverMu.Lock()
	defer m.deliverMu.Unlock()

	m.mu.Lock()
	if tok == 0 || tok != m.current {
		current := m.current
		m.mu.Unlock()
		recordStale(context.Background())
		logging.Debugf("[%s] discarded stale completion token=%d current=%d", m.name, tok, current)
		return false
	}
	if err == nil && snap.Len() == 0 {
		err = types.ErrEmptyDataset
	}
	if err != nil {
		m.state = StateFailed
		m.err = err
		m.snapshot = nil
	} else {
		m.state = StateReady
		m.err = nil
		m.snapshot = snap
	}
	m.current = 0
	m.abort = nil
	st := m.statusLocked()
	st.Token = tok
	m.mu.Unlock()

	recordCompleted(context.Background(), st.State)
	if st.Err != nil {
		logging.Warnf("[%s] load token=%d failed: %v", m.name, tok, st.Err)
	} else {
		logging.Infof("[%s] load token=%d ready: %d countries (seq %d)", m.name, tok, snap.Len(), snap.FetchedAt())
	}
	m.notify(st)
	return true
}

// Cancel invalidates the current token, aborts its fetch and releases chart handles.
// A completion that arrives later for that token is discarded. Cancel is idempotent.
func (m *Machine) Cancel() {
	m.deliverMu.Lock()
	defer m.deliverMu.Unlock()

	m.mu.Lock()
	invalidated := m.current
	if m.current != 0 {
		// burn a token so the in-flight one can never match again
		m.issued++
		m.current = 0
	}
	if m.state == StateLoading {
		if m.snapshot != nil {
			m.state = StateReady
		} else if m.err != nil {
			m.state = StateFailed
		} else {
			m.state = StateIdle
		}
	}
	if m.abort != nil {
		m.abort()
		m.abort = nil
	}
	m.mu.Unlock()

	recordCancelled(context.Background())
	if invalidated != 0 {
		logging.Debugf("[%s] cancelled in-flight token=%d", m.name, invalidated)
	}
	if m.releaser != nil {
		m.releaser.ReleaseAll()
	}
}

// Status returns the current visible state.
func (m *Machine) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	st := m.statusLocked()
	st.Token = m.current
	return st
}

func (m *Machine) statusLocked() Status {
	return Status{State: m.state, Snapshot: m.snapshot, Err: m.err}
}

func (m *Machine) notify(st Status) {
	for _, l := range m.listeners {
		l(st)
	}
}

// Load begins a load and fetches from src on a new goroutine. The fetch context derives
// from ctx and is cancelled when a newer load begins or Cancel is called. The returned
// channel yields whether the completion was applied, then closes.
func (m *Machine) Load(ctx context.Context, src DataSource) (Token, <-chan bool) {
	fetchCtx, abort := context.WithCancel(ctx)
	tok := m.begin(abort)
	done := make(chan bool, 1)
	go func() {
		defer close(done)
		defer abort()
		start := time.Now()
		snap, err := src.FetchAll(fetchCtx)
		logging.TimeTrack(start, fmt.Sprintf("[%s] fetch token=%d", m.name, tok))
		if err != nil && errors.Is(err, context.Canceled) && fetchCtx.Err() != nil {
			// aborted by a newer load or Cancel; the token is already stale
			logging.Debugf("[%s] fetch token=%d aborted", m.name, tok)
		}
		done <- m.CompleteLoad(tok, snap, err)
	}()
	return tok, done
}

// LoadAndWait runs Load and blocks until the completion is delivered or ctx ends.
func (m *Machine) LoadAndWait(ctx context.Context, src DataSource) (Status, error) {
	_, done := m.Load(ctx, src)
	select {
	case <-done:
		return m.Status(), nil
	case <-ctx.Done():
		return m.Status(), ctx.Err()
	}
}
