// Package chartsync keeps at most one live chart per render target in step with the
// latest derived series.
//
// The Controller is the only owner of chart handles. Callers describe what should be
// shown (a Series) and where (a Target); the controller decides whether that means
// creating a chart, updating the live one in place, or destroying and recreating it
// because the chart kind changed. Targets that are not mounted yet get the request
// parked as pending; the latest pending series is rendered on NotifyMounted.
package chartsync

import (
	"fmt"
	"slices"
)

// Kind is the chart type.
type Kind int

const (
	KindPie Kind = iota
	KindLine
)

func (k Kind) String() string {
	switch k {
	case KindPie:
		return "pie"
	case KindLine:
		return "line"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Series is the immutable payload handed to a chart: one value per label.
type Series struct {
	Kind   Kind
	Title  string
	Labels []string
	Values []float64
}

// Clone returns a copy that shares no backing arrays with s.
func (s Series) Clone() Series {
	s.Labels = slices.Clone(s.Labels)
	s.Values = slices.Clone(s.Values)
	return s
}

// Equal reports whether both series would render identically.
func (s Series) Equal(o Series) bool {
	return s.Kind == o.Kind && s.Title == o.Title &&
		slices.Equal(s.Labels, o.Labels) && slices.Equal(s.Values, o.Values)
}

// Len is the number of chart elements.
func (s Series) Len() int { return len(s.Labels) }

// Validate checks labels and values line up.
func (s Series) Validate() error {
	if len(s.Labels) != len(s.Values) {
		return fmt.Errorf("series %q: %d labels for %d values", s.Title, len(s.Labels), len(s.Values))
	}
	return nil
}

// Target is an opaque mount point supplied by the presentation layer.
type Target interface {
	// ID keys the render slot; two targets with the same ID are the same slot.
	ID() string
	// Mounted reports whether the target can receive a chart now.
	Mounted() bool
}

// PointerEvent is an interaction position in target pixel coordinates.
type PointerEvent struct {
	X, Y float64
}

// Handle is a live rendered chart. Only the Controller calls these methods.
type Handle interface {
	ID() string
	Kind() Kind
	// Update re-renders in place with a series of the same kind.
	Update(Series) error
	// HitTest returns the element index under the pointer.
	HitTest(PointerEvent) (int, bool)
	// Destroy releases the rendered chart. Calling it twice is a no-op.
	Destroy()
}

// Renderer creates handles bound to a mounted target.
type Renderer interface {
	Create(t Target, s Series) (Handle, error)
}

// Outcome tells the caller what Reconcile did.
type Outcome int

const (
	// OutcomeUnchanged means the live chart already shows this series.
	OutcomeUnchanged Outcome = iota
	// OutcomeDeferred means the target is not mounted; the series is pending.
	OutcomeDeferred
	OutcomeCreated
	OutcomeUpdated
	// OutcomeRecreated means the kind changed: old handle destroyed, new one created.
	OutcomeRecreated
)

func (o Outcome) String() string {
	switch o {
	case OutcomeUnchanged:
		return "unchanged"
	case OutcomeDeferred:
		return "deferred"
	case OutcomeCreated:
		return "created"
	case OutcomeUpdated:
		return "updated"
	case OutcomeRecreated:
		return "recreated"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// HandleInfo describes the live chart of a target without exposing the handle.
type HandleInfo struct {
	HandleID string
	Kind     Kind
	Series   Series
}
