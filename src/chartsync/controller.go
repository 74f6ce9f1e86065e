package chartsync

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/Akima-zed/teleSport/src/logging"
)

// ErrNoRenderer is returned by Reconcile on a controller built without a Renderer.
var ErrNoRenderer = errors.New("chartsync: no renderer configured")

type slot struct {
	target Target
	handle Handle
	// shown is what handle currently displays
	shown Series
	// pending is the latest series waiting for the target to mount
	pending *Series
}

// Controller owns the chart handles of every render slot. Safe for concurrent use; all
// handle mutations happen under its lock so two code paths can never build competing
// charts for one target. Targets must be comparable (pointer types in practice).
type Controller struct {
	renderer Renderer

	mu    sync.Mutex
	slots map[string]*slot
}

// NewController returns a controller creating charts through r.
func NewController(r Renderer) *Controller {
	return &Controller{renderer: r, slots: map[string]*slot{}}
}

// Reconcile brings the chart of t in line with s. When t is not mounted the series is
// kept as pending (replacing any older pending series) and OutcomeDeferred is returned;
// NotifyMounted renders it later. A failed create or update also leaves the series pending.
func (c *Controller) Reconcile(s Series, t Target) (Outcome, error) {
	if err := s.Validate(); err != nil {
		return OutcomeUnchanged, err
	}
	s = s.Clone()

	c.mu.Lock()
	defer c.mu.Unlock()

	sl := c.slots[t.ID()]
	if sl == nil {
		sl = &slot{target: t}
		c.slots[t.ID()] = sl
	}
	if !t.Mounted() {
		sl.pending = &s
		recordReconcile(context.Background(), OutcomeDeferred)
		logging.Debugf("[chartsync] target=%s not mounted; deferring %s chart (%d elements)", t.ID(), s.Kind, s.Len())
		return OutcomeDeferred, nil
	}
	return c.applyLocked(sl, t, s)
}

// NotifyMounted renders the pending series of t, if any. Presentation code calls it once
// the mount point is attached.
func (c *Controller) NotifyMounted(t Target) (Outcome, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	sl := c.slots[t.ID()]
	if sl == nil || sl.pending == nil {
		return OutcomeUnchanged, nil
	}
	if !t.Mounted() {
		return OutcomeDeferred, nil
	}
	return c.applyLocked(sl, t, *sl.pending)
}

func (c *Controller) applyLocked(sl *slot, t Target, s Series) (Outcome, error) {
	outcome := OutcomeCreated
	if sl.handle != nil {
		switch {
		case sl.target != t:
			// same slot, new mount point: the old chart is bound to a detached target
			c.destroyLocked(sl)
			outcome = OutcomeRecreated
		case sl.handle.Kind() != s.Kind:
			c.destroyLocked(sl)
			outcome = OutcomeRecreated
		case sl.shown.Equal(s):
			sl.pending = nil
			recordReconcile(context.Background(), OutcomeUnchanged)
			return OutcomeUnchanged, nil
		default:
			if err := sl.handle.Update(s); err != nil {
				sl.pending = &s
				return OutcomeUnchanged, fmt.Errorf("update %s chart on %s: %w", s.Kind, t.ID(), err)
			}
			sl.shown = s
			sl.pending = nil
			recordReconcile(context.Background(), OutcomeUpdated)
			logging.Debugf("[chartsync] updated chart %s on %s in place", sl.handle.ID(), t.ID())
			return OutcomeUpdated, nil
		}
	}

	if c.renderer == nil {
		sl.pending = &s
		return OutcomeUnchanged, ErrNoRenderer
	}
	h, err := c.renderer.Create(t, s)
	if err != nil {
		sl.pending = &s
		return OutcomeUnchanged, fmt.Errorf("create %s chart on %s: %w", s.Kind, t.ID(), err)
	}
	sl.target = t
	sl.handle = h
	sl.shown = s
	sl.pending = nil
	recordHandleCreated(context.Background())
	recordReconcile(context.Background(), outcome)
	logging.Debugf("[chartsync] %s %s chart %s on %s (%d elements)", outcome, s.Kind, h.ID(), t.ID(), s.Len())
	return outcome, nil
}

func (c *Controller) destroyLocked(sl *slot) {
	if sl.handle == nil {
		return
	}
	id := sl.handle.ID()
	sl.handle.Destroy()
	sl.handle = nil
	sl.shown = Series{}
	recordHandleDestroyed(context.Background())
	logging.Debugf("[chartsync] destroyed chart %s", id)
}

// Release destroys the chart of t and drops any pending series. Safe to call when no
// chart exists.
func (c *Controller) Release(t Target) {
	c.ReleaseID(t.ID())
}

// ReleaseID is Release keyed by slot ID.
func (c *Controller) ReleaseID(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if sl := c.slots[id]; sl != nil {
		c.destroyLocked(sl)
		delete(c.slots, id)
	}
}

// ReleaseAll destroys every chart. Used on view teardown.
func (c *Controller) ReleaseAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for id, sl := range c.slots {
		c.destroyLocked(sl)
		delete(c.slots, id)
	}
}

// OnInteraction hit-tests ev against the live chart of t.
func (c *Controller) OnInteraction(t Target, ev PointerEvent) (int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	sl := c.slots[t.ID()]
	if sl == nil || sl.handle == nil || !t.Mounted() {
		return 0, false
	}
	return sl.handle.HitTest(ev)
}

// Live describes the chart currently shown on t.
func (c *Controller) Live(t Target) (HandleInfo, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	sl := c.slots[t.ID()]
	if sl == nil || sl.handle == nil {
		return HandleInfo{}, false
	}
	return HandleInfo{HandleID: sl.handle.ID(), Kind: sl.handle.Kind(), Series: sl.shown.Clone()}, true
}

// Pending reports whether t has a series waiting for its mount.
func (c *Controller) Pending(t Target) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	sl := c.slots[t.ID()]
	return sl != nil && sl.pending != nil
}

// LiveCount returns the number of live charts across all slots.
func (c *Controller) LiveCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, sl := range c.slots {
		if sl.handle != nil {
			n++
		}
	}
	return n
}
