package dashboard

import (
	"context"
	"slices"
	"sync"

	"github.com/Akima-zed/teleSport/src/analysis"
	"github.com/Akima-zed/teleSport/src/chartsync"
	"github.com/Akima-zed/teleSport/src/loader"
	"github.com/Akima-zed/teleSport/src/logging"
	"github.com/Akima-zed/teleSport/src/selection"
	"github.com/Akima-zed/teleSport/src/types"
)

// HomeTitle is the home page and pie chart title.
const HomeTitle = "Medals per country"

// HomeModel is what the home page displays.
type HomeModel struct {
	Header
	Sort    analysis.SortCriterion
	Ordered []types.EntityRecord
	Medals  []int
}

// HomeView is the dashboard page.
type HomeView struct {
	cfg     Config
	charts  *chartsync.Controller
	machine *loader.Machine

	mu        sync.Mutex
	ctx       context.Context
	criterion analysis.SortCriterion
	snapshot  *types.DataSnapshot
	summary   *analysis.DashboardSummary
	err       error
	destroyed bool
}

// NewHomeView builds a home view ordered by sort.
func NewHomeView(cfg Config, sort analysis.SortCriterion) (*HomeView, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	v := &HomeView{cfg: cfg, criterion: sort, charts: chartsync.NewController(cfg.Renderer)}
	v.machine = loader.NewMachine(
		loader.WithName("home"),
		loader.WithReleaser(v.charts),
		loader.WithListener(v.onStatus),
	)
	return v, nil
}

// Init starts the first load. The channel reports whether the load was applied.
func (v *HomeView) Init(ctx context.Context) <-chan bool {
	v.mu.Lock()
	if v.destroyed {
		v.mu.Unlock()
		return closedDone()
	}
	v.ctx = orBackground(ctx)
	ctx = v.ctx
	v.mu.Unlock()
	_, done := v.machine.Load(ctx, v.cfg.Source)
	return done
}

// Reload fetches again, superseding any load in flight. Used for retry and file changes.
func (v *HomeView) Reload() <-chan bool {
	v.mu.Lock()
	ctx := v.ctx
	v.mu.Unlock()
	return v.Init(ctx)
}

// Mounted tells the view its chart target is attached.
func (v *HomeView) Mounted() error {
	_, err := v.charts.NotifyMounted(v.cfg.Target)
	return err
}

// SetSort re-orders the current snapshot. It never fetches.
func (v *HomeView) SetSort(c analysis.SortCriterion) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.destroyed {
		return ErrDestroyed
	}
	if c == v.criterion {
		return nil
	}
	v.criterion = c
	if v.snapshot == nil {
		return nil
	}
	return v.deriveLocked()
}

func (v *HomeView) onStatus(st loader.Status) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.destroyed {
		return
	}
	switch st.State {
	case loader.StateReady:
		v.snapshot = st.Snapshot
		v.err = nil
		if err := v.deriveLocked(); err != nil {
			logging.Errorf("[home] render failed: %v", err)
		}
	case loader.StateFailed:
		v.snapshot = nil
		v.summary = nil
		v.err = st.Err
		v.charts.Release(v.cfg.Target)
	}
}

func (v *HomeView) deriveLocked() error {
	sum := analysis.SummarizeDashboard(v.snapshot, v.criterion)
	v.summary = &sum
	labels, values := sum.MedalSeries()
	out, err := v.charts.Reconcile(chartsync.Series{
		Kind:   chartsync.KindPie,
		Title:  HomeTitle,
		Labels: labels,
		Values: values,
	}, v.cfg.Target)
	if err != nil {
		return err
	}
	logging.Debugf("[home] chart %s (%d countries, sort=%s)", out, sum.Countries, sum.Criterion)
	return nil
}

// Click resolves a pointer event on the pie and navigates to the country under it. A hit
// that no longer maps to a country navigates to the not-found route. It reports false
// when the pointer hit no slice.
func (v *HomeView) Click(ev chartsync.PointerEvent) (selection.Identity, bool) {
	idx, ok := v.charts.OnInteraction(v.cfg.Target, ev)
	if !ok {
		return selection.Unknown, false
	}
	return v.Select(idx), true
}

// Select navigates to the country at index in the current order.
func (v *HomeView) Select(index int) selection.Identity {
	var id selection.Identity
	v.mu.Lock()
	if v.summary != nil {
		id = selection.Resolve(index, v.summary.Ordered)
		if live, ok := v.charts.Live(v.cfg.Target); ok {
			id = selection.ResolveLabel(index, live.Series.Labels, v.summary.Ordered)
		}
	}
	v.mu.Unlock()
	logging.Infof("[home] selected index=%d -> %s", index, id)
	if v.cfg.Navigator != nil {
		v.cfg.Navigator.NavigateTo(id)
	}
	return id
}

// Model returns a snapshot of what the page shows.
func (v *HomeView) Model() HomeModel {
	st := v.machine.Status()
	v.mu.Lock()
	defer v.mu.Unlock()
	m := HomeModel{
		Header: Header{Title: HomeTitle, Loading: st.State == loader.StateLoading, Error: errMessage(v.err)},
		Sort:   v.criterion,
	}
	if v.summary != nil {
		m.Indicators = v.summary.Indicators()
		m.Ordered = slices.Clone(v.summary.Ordered)
		m.Medals = slices.Clone(v.summary.Medals)
	}
	return m
}

// Err is the error shown by the view, nil when there is none.
func (v *HomeView) Err() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.err
}

// State is the load state of the view.
func (v *HomeView) State() loader.State { return v.machine.Status().State }

// Chart describes the live pie, if any.
func (v *HomeView) Chart() (chartsync.HandleInfo, bool) { return v.charts.Live(v.cfg.Target) }

// Destroy tears the view down: the in-flight load is invalidated and the chart released.
// Completions that arrive afterwards are ignored. Safe to call more than once.
func (v *HomeView) Destroy() {
	v.mu.Lock()
	v.destroyed = true
	v.mu.Unlock()
	v.machine.Cancel()
}
