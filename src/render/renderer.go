// Package render draws chartsync series with go-chart. Pie series become a medal share
// chart, line series a medals-per-edition chart; both are rasterised to an image and
// presented on a Surface. Handles remember the geometry they drew so pointer events can
// be mapped back to the element index.
package render

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"strings"
	"sync"

	"github.com/google/uuid"
	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/Akima-zed/teleSport/src/chartsync"
	"github.com/Akima-zed/teleSport/src/logging"
	"github.com/Akima-zed/teleSport/src/render/uihelpers"
)

// DefaultPalette is the slice colour cycle of the medal chart.
var DefaultPalette = []string{"#0b868f", "#adc3de", "#7a3c53", "#8f6263", "orange", "#94819d"}

var namedColors = map[string]string{
	"orange": "ffa500",
	"black":  "000000",
	"white":  "ffffff",
	"gray":   "808080",
	"grey":   "808080",
}

// ErrHandleDestroyed is returned by Update after Destroy.
var ErrHandleDestroyed = errors.New("render: chart destroyed")

// ParseColor accepts #rgb, #rrggbb (with or without #) and a few CSS names.
func ParseColor(s string) (drawing.Color, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	if hex, ok := namedColors[v]; ok {
		v = hex
	}
	v = strings.TrimPrefix(v, "#")
	if len(v) != 3 && len(v) != 6 {
		return drawing.Color{}, fmt.Errorf("invalid colour %q", s)
	}
	for _, r := range v {
		if !strings.ContainsRune("0123456789abcdef", r) {
			return drawing.Color{}, fmt.Errorf("invalid colour %q", s)
		}
	}
	return drawing.ColorFromHex(v), nil
}

// Renderer creates go-chart backed handles. It is stateless after construction and safe
// for concurrent use.
type Renderer struct {
	palette   []drawing.Color
	lineColor drawing.Color
}

// Option configures a Renderer.
type Option func(*Renderer) error

// WithPalette replaces the slice colours.
func WithPalette(colors ...string) Option {
	return func(r *Renderer) error {
		if len(colors) == 0 {
			return nil
		}
		p := make([]drawing.Color, 0, len(colors))
		for _, c := range colors {
			col, err := ParseColor(c)
			if err != nil {
				return err
			}
			p = append(p, col)
		}
		r.palette = p
		r.lineColor = p[0]
		return nil
	}
}

// NewRenderer builds a renderer with DefaultPalette unless overridden.
func NewRenderer(opts ...Option) (*Renderer, error) {
	r := &Renderer{}
	if err := WithPalette(DefaultPalette...)(r); err != nil {
		return nil, err
	}
	for _, o := range opts {
		if err := o(r); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *Renderer) color(i int) drawing.Color {
	return r.palette[i%len(r.palette)]
}

// Create renders s onto t, which must be a Surface.
func (r *Renderer) Create(t chartsync.Target, s chartsync.Series) (chartsync.Handle, error) {
	surf, ok := t.(Surface)
	if !ok {
		return nil, fmt.Errorf("render: target %s (%T) is not a drawable surface", t.ID(), t)
	}
	h := &Handle{id: uuid.NewString(), kind: s.Kind, surface: surf, r: r}
	if err := h.draw(s); err != nil {
		return nil, err
	}
	return h, nil
}

// Handle is one live go-chart rendering bound to a surface.
type Handle struct {
	id      string
	kind    chartsync.Kind
	surface Surface
	r       *Renderer

	mu        sync.Mutex
	pie       pieLayout
	line      lineLayout
	destroyed bool
}

func (h *Handle) ID() string           { return h.id }
func (h *Handle) Kind() chartsync.Kind { return h.kind }

// Update re-renders with s on the same surface.
func (h *Handle) Update(s chartsync.Series) error {
	h.mu.Lock()
	destroyed := h.destroyed
	h.mu.Unlock()
	if destroyed {
		return ErrHandleDestroyed
	}
	if s.Kind != h.kind {
		return fmt.Errorf("render: cannot update %s chart with %s series", h.kind, s.Kind)
	}
	return h.draw(s)
}

// HitTest maps a pointer position to the element index.
func (h *Handle) HitTest(ev chartsync.PointerEvent) (int, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.destroyed {
		return 0, false
	}
	if h.kind == chartsync.KindPie {
		return h.pie.hit(ev.X, ev.Y)
	}
	return h.line.hit(ev.X, ev.Y)
}

// Destroy clears the surface. Further calls are no-ops.
func (h *Handle) Destroy() {
	h.mu.Lock()
	if h.destroyed {
		h.mu.Unlock()
		return
	}
	h.destroyed = true
	h.mu.Unlock()
	h.surface.Present(nil)
}

// ElementCentre returns a pointer position inside element i, for click simulation.
func (h *Handle) ElementCentre(i int) (chartsync.PointerEvent, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.kind == chartsync.KindPie {
		x, y, ok := h.pie.sliceCentre(i)
		return chartsync.PointerEvent{X: x, Y: y}, ok
	}
	if i < 0 || i >= h.line.n {
		return chartsync.PointerEvent{}, false
	}
	return chartsync.PointerEvent{X: h.line.centre(i), Y: (h.line.top + h.line.bottom) / 2}, true
}

func (h *Handle) draw(s chartsync.Series) error {
	w, ht := h.surface.Size()
	var (
		img image.Image
		err error
		pl  pieLayout
		ll  lineLayout
	)
	switch s.Kind {
	case chartsync.KindPie:
		img, pl, err = h.r.renderPie(w, ht, s)
	case chartsync.KindLine:
		img, ll, err = h.r.renderLine(w, ht, s)
	default:
		err = fmt.Errorf("render: unsupported chart kind %s", s.Kind)
	}
	if err != nil {
		return err
	}
	h.mu.Lock()
	h.pie, h.line = pl, ll
	h.mu.Unlock()
	h.surface.Present(img)
	return nil
}

func (r *Renderer) renderPie(w, h int, s chartsync.Series) (image.Image, pieLayout, error) {
	layout := layoutPie(w, h, s.Values)
	if len(layout.index) == 0 {
		return drawCaption(blank(w, h), "No medals to display"), layout, nil
	}
	values := make([]chart.Value, 0, len(layout.index))
	for _, i := range layout.index {
		values = append(values, chart.Value{
			Label: s.Labels[i],
			Value: s.Values[i],
			Style: chart.Style{FillColor: r.color(i), StrokeColor: drawing.ColorBlack, StrokeWidth: 1},
		})
	}
	pc := chart.PieChart{
		Title:      s.Title,
		Width:      w,
		Height:     h,
		Background: chart.Style{Padding: chart.Box{Top: piePadTop, Left: piePadSide, Right: piePadSide, Bottom: piePadSide}},
		Values:     values,
	}
	img, err := rasterize(func(buf *bytes.Buffer) error { return pc.Render(chart.PNG, buf) })
	if err != nil {
		return nil, pieLayout{}, fmt.Errorf("render pie %q: %w", s.Title, err)
	}
	return img, layout, nil
}

func (r *Renderer) renderLine(w, h int, s chartsync.Series) (image.Image, lineLayout, error) {
	n := len(s.Values)
	if n == 0 {
		return drawCaption(blank(w, h), "No participations to display"), lineLayout{}, nil
	}
	xs := make([]float64, n)
	// go-chart takes the axis range from the tick extremes, so the half-step margins
	// need unlabelled ticks of their own
	xTicks := make([]chart.Tick, 0, n+2)
	xTicks = append(xTicks, chart.Tick{Value: -0.5})
	maxY := 0.0
	for i := range s.Values {
		xs[i] = float64(i)
		xTicks = append(xTicks, chart.Tick{Value: float64(i), Label: s.Labels[i]})
		maxY = max(maxY, s.Values[i])
	}
	xTicks = append(xTicks, chart.Tick{Value: float64(n) - 0.5})
	yVals := uihelpers.BuildNumericTicks(0, max(maxY, 1), 6)
	yTicks := make([]chart.Tick, len(yVals))
	for i, v := range yVals {
		yTicks[i] = chart.Tick{Value: v, Label: uihelpers.FormatNumericTick(v)}
	}
	col := r.lineColor
	var plot chart.Box
	ch := chart.Chart{
		Title:  s.Title,
		Width:  w,
		Height: h,
		Background: chart.Style{Padding: chart.Box{
			Top: linePadTop, Left: linePadLeft, Right: linePadRight, Bottom: linePadBot,
		}},
		XAxis: chart.XAxis{Ticks: xTicks},
		YAxis: chart.YAxis{Name: "Medals", Ticks: yTicks},
		Series: []chart.Series{chart.ContinuousSeries{
			Name:    s.Title,
			XValues: xs,
			YValues: append([]float64(nil), s.Values...),
			Style:   chart.Style{StrokeColor: col, StrokeWidth: 2, DotColor: col, DotWidth: 4},
		}},
		Elements: []chart.Renderable{func(_ chart.Renderer, canvas chart.Box, _ chart.Style) {
			plot = canvas
		}},
	}
	img, err := rasterize(func(buf *bytes.Buffer) error { return ch.Render(chart.PNG, buf) })
	if err != nil {
		return nil, lineLayout{}, fmt.Errorf("render line %q: %w", s.Title, err)
	}
	return img, layoutLine(plot, n), nil
}

func rasterize(render func(*bytes.Buffer) error) (image.Image, error) {
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		return nil, err
	}
	img, err := png.Decode(&buf)
	if err != nil {
		logging.Warnf("[render] decode of rendered chart failed: %v", err)
		return nil, err
	}
	return img, nil
}
