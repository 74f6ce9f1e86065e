// Package dashboard holds the two page models of the medal dashboard: the home view
// (all countries, medal pie) and the country view (one country, medals per edition).
// A view owns its load machine and chart controller; the presentation layer drives it
// through lifecycle calls (Init, Mounted, Destroy) and user events (SetSort, Click,
// Reload).
package dashboard

import (
	"context"
	"errors"

	"github.com/Akima-zed/teleSport/src/analysis"
	"github.com/Akima-zed/teleSport/src/chartsync"
	"github.com/Akima-zed/teleSport/src/loader"
	"github.com/Akima-zed/teleSport/src/selection"
)

// ErrNoCountrySelected is the error of a country view opened without a name.
var ErrNoCountrySelected = errors.New("no country selected")

// ErrDestroyed is returned by operations on a torn down view.
var ErrDestroyed = errors.New("dashboard: view destroyed")

// Header is the part of a page every view shows.
type Header struct {
	Title      string
	Indicators []analysis.Indicator
	Loading    bool
	// Error is the message shown instead of the chart; empty when there is none.
	Error string
}

// Config wires a view to its collaborators.
type Config struct {
	Source    loader.DataSource
	Renderer  chartsync.Renderer
	Target    chartsync.Target
	Navigator selection.Navigator
}

func (c Config) validate() error {
	switch {
	case c.Source == nil:
		return errors.New("dashboard: no data source")
	case c.Renderer == nil:
		return errors.New("dashboard: no renderer")
	case c.Target == nil:
		return errors.New("dashboard: no render target")
	}
	return nil
}

func closedDone() <-chan bool {
	ch := make(chan bool, 1)
	ch <- false
	close(ch)
	return ch
}

func errMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

func orBackground(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
