package dashboard

import (
	"context"
	"errors"
	"sync"

	"github.com/Akima-zed/teleSport/src/analysis"
	"github.com/Akima-zed/teleSport/src/chartsync"
	"github.com/Akima-zed/teleSport/src/loader"
	"github.com/Akima-zed/teleSport/src/logging"
	"github.com/Akima-zed/teleSport/src/selection"
	"github.com/Akima-zed/teleSport/src/types"
)

// CountryChartTitle titles the medals-per-edition line chart.
const CountryChartTitle = "Medals per edition"

// CountryModel is what the country page displays.
type CountryModel struct {
	Header
	Years  []string
	Medals []float64
}

// CountryView is the detail page of one country, addressed by name.
type CountryView struct {
	cfg     Config
	name    string
	charts  *chartsync.Controller
	machine *loader.Machine

	mu        sync.Mutex
	ctx       context.Context
	summary   *analysis.CountrySummary
	err       error
	destroyed bool
}

// NewCountryView builds the view for the country called name. An empty name is not an
// error here; the view reports ErrNoCountrySelected once initialised.
func NewCountryView(cfg Config, name string) (*CountryView, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	v := &CountryView{cfg: cfg, name: name, charts: chartsync.NewController(cfg.Renderer)}
	v.machine = loader.NewMachine(
		loader.WithName("country"),
		loader.WithReleaser(v.charts),
		loader.WithListener(v.onStatus),
	)
	return v, nil
}

// Init starts loading the dataset and looks the country up once it arrives.
func (v *CountryView) Init(ctx context.Context) <-chan bool {
	v.mu.Lock()
	if v.destroyed {
		v.mu.Unlock()
		return closedDone()
	}
	v.ctx = orBackground(ctx)
	ctx = v.ctx
	if v.name == "" {
		v.err = ErrNoCountrySelected
		v.mu.Unlock()
		logging.Warnf("[country] %v", ErrNoCountrySelected)
		return closedDone()
	}
	v.mu.Unlock()
	_, done := v.machine.Load(ctx, v.cfg.Source)
	return done
}

// Reload retries after an error.
func (v *CountryView) Reload() <-chan bool {
	v.mu.Lock()
	ctx := v.ctx
	v.mu.Unlock()
	return v.Init(ctx)
}

// Mounted tells the view its chart target is attached.
func (v *CountryView) Mounted() error {
	_, err := v.charts.NotifyMounted(v.cfg.Target)
	return err
}

func (v *CountryView) onStatus(st loader.Status) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.destroyed {
		return
	}
	if st.State == loader.StateFailed {
		v.fail(st.Err)
		return
	}
	if st.State != loader.StateReady {
		return
	}
	e, err := analysis.FindEntity(st.Snapshot, v.name)
	if err != nil {
		v.fail(err)
		return
	}
	sum := analysis.SummarizeCountry(e)
	v.summary = &sum
	v.err = nil
	years, medals := sum.YearSeries()
	out, err := v.charts.Reconcile(chartsync.Series{
		Kind:   chartsync.KindLine,
		Title:  CountryChartTitle,
		Labels: years,
		Values: medals,
	}, v.cfg.Target)
	if err != nil {
		logging.Errorf("[country] render %s failed: %v", v.name, err)
		return
	}
	logging.Debugf("[country] %s chart %s (%d editions)", v.name, out, sum.Entries)
}

func (v *CountryView) fail(err error) {
	v.summary = nil
	v.err = err
	v.charts.Release(v.cfg.Target)
	if errors.Is(err, types.ErrNotFound) {
		logging.Warnf("[country] %v", err)
	}
}

// Click returns the edition year under the pointer and logs it.
func (v *CountryView) Click(ev chartsync.PointerEvent) (string, bool) {
	idx, ok := v.charts.OnInteraction(v.cfg.Target, ev)
	if !ok {
		return "", false
	}
	live, ok := v.charts.Live(v.cfg.Target)
	if !ok || idx >= len(live.Series.Labels) {
		return "", false
	}
	year := live.Series.Labels[idx]
	logging.Infof("[country] clicked year index: %d, year: %s", idx, year)
	return year, true
}

// Back navigates to the dashboard when the navigator supports it.
func (v *CountryView) Back() {
	if h, ok := v.cfg.Navigator.(selection.HomeNavigator); ok {
		h.NavigateHome()
	}
}

// Model returns a snapshot of what the page shows.
func (v *CountryView) Model() CountryModel {
	st := v.machine.Status()
	v.mu.Lock()
	defer v.mu.Unlock()
	m := CountryModel{Header: Header{
		Title:   v.name,
		Loading: st.State == loader.StateLoading,
		Error:   errMessage(v.err),
	}}
	if v.summary != nil {
		m.Title = v.summary.Name
		m.Indicators = v.summary.Indicators()
		m.Years, m.Medals = v.summary.YearSeries()
	}
	return m
}

// Err is the error shown by the view, nil when there is none.
func (v *CountryView) Err() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.err
}

// Chart describes the live line chart, if any.
func (v *CountryView) Chart() (chartsync.HandleInfo, bool) { return v.charts.Live(v.cfg.Target) }

// Destroy invalidates the in-flight load and releases the chart. Idempotent.
func (v *CountryView) Destroy() {
	v.mu.Lock()
	v.destroyed = true
	v.mu.Unlock()
	v.machine.Cancel()
}
