package render

import (
	"bytes"
	"image"
	"image/png"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Akima-zed/teleSport/src/chartsync"
)

type plainTarget struct{}

func (plainTarget) ID() string    { return "plain" }
func (plainTarget) Mounted() bool { return true }

func mountedTarget(id string, viewport int) *ImageTarget {
	t := NewImageTarget(id, viewport)
	t.Mount()
	return t
}

func medalPie() chartsync.Series {
	return chartsync.Series{
		Kind:   chartsync.KindPie,
		Title:  "Medals per country",
		Labels: []string{"United States", "France", "Spain"},
		Values: []float64{63, 33, 37},
	}
}

func TestCreatePieAndHitSlices(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)
	target := mountedTarget("home", 1100)

	h, err := r.Create(target, medalPie())
	require.NoError(t, err)
	require.NotNil(t, target.Image())
	w, ht := target.Size()
	assert.Equal(t, w, target.Image().Bounds().Dx())
	assert.Equal(t, ht, target.Image().Bounds().Dy())
	assert.Equal(t, chartsync.KindPie, h.Kind())
	assert.NotEmpty(t, h.ID())

	rh := h.(*Handle)
	for i := range medalPie().Labels {
		ev, ok := rh.ElementCentre(i)
		require.True(t, ok, i)
		idx, hit := h.HitTest(ev)
		assert.True(t, hit, i)
		assert.Equal(t, i, idx)
	}
	_, hit := h.HitTest(chartsync.PointerEvent{X: 1, Y: 1})
	assert.False(t, hit, "corner is outside the pie")
}

func TestPieSkipsZeroSlices(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)
	target := mountedTarget("home", 800)
	s := chartsync.Series{Kind: chartsync.KindPie, Labels: []string{"A", "B", "C"}, Values: []float64{5, 0, 5}}

	h, err := r.Create(target, s)
	require.NoError(t, err)
	rh := h.(*Handle)
	_, ok := rh.ElementCentre(1)
	assert.False(t, ok, "zero slice is not drawn")
	ev, ok := rh.ElementCentre(2)
	require.True(t, ok)
	idx, hit := h.HitTest(ev)
	assert.True(t, hit)
	assert.Equal(t, 2, idx, "indices stay bound to the series position")
}

func TestUpdateKeepsHandle(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)
	target := mountedTarget("home", 800)
	h, err := r.Create(target, medalPie())
	require.NoError(t, err)
	id := h.ID()

	s := medalPie()
	s.Values = []float64{1, 1, 1}
	require.NoError(t, h.Update(s))
	assert.Equal(t, id, h.ID())
	assert.Equal(t, 2, target.Frames())

	err = h.Update(chartsync.Series{Kind: chartsync.KindLine, Labels: []string{"2012"}, Values: []float64{1}})
	assert.Error(t, err, "kind mismatch")
}

func TestLineChartHitTest(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)
	target := mountedTarget("detail", 1100)
	s := chartsync.Series{
		Kind:   chartsync.KindLine,
		Title:  "Medals per edition",
		Labels: []string{"2012", "2016", "2020"},
		Values: []float64{35, 28, 33},
	}
	h, err := r.Create(target, s)
	require.NoError(t, err)
	require.NotNil(t, target.Image())

	rh := h.(*Handle)
	for i := range s.Labels {
		ev, ok := rh.ElementCentre(i)
		require.True(t, ok)
		idx, hit := h.HitTest(ev)
		assert.True(t, hit)
		assert.Equal(t, i, idx)
	}
	_, hit := h.HitTest(chartsync.PointerEvent{X: -5, Y: 100})
	assert.False(t, hit)
}

func TestSinglePointLineRenders(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)
	target := mountedTarget("detail", 400)
	h, err := r.Create(target, chartsync.Series{Kind: chartsync.KindLine, Labels: []string{"2020"}, Values: []float64{0}})
	require.NoError(t, err)
	assert.NotNil(t, target.Image())

	ev, ok := h.(*Handle).ElementCentre(0)
	require.True(t, ok)
	idx, hit := h.HitTest(ev)
	assert.True(t, hit)
	assert.Equal(t, 0, idx)
}

// lineColumns returns the leftmost and rightmost x inside the plot box whose pixel is the
// line colour.
func lineColumns(img image.Image, l lineLayout) (int, int, bool) {
	want := DefaultPalette[0]
	col, _ := ParseColor(want)
	near := func(a uint32, b uint8) bool { return math.Abs(float64(a>>8)-float64(b)) <= 12 }
	lo, hi, found := math.MaxInt, -1, false
	for y := int(l.top); y <= int(l.bottom); y++ {
		for x := int(l.left); x <= int(l.right); x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			if near(r, col.R) && near(g, col.G) && near(b, col.B) {
				lo, hi, found = min(lo, x), max(hi, x), true
			}
		}
	}
	return lo, hi, found
}

func TestLinePointsDrawnAtHitCentres(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)
	target := mountedTarget("detail", 1100)
	s := chartsync.Series{
		Kind:   chartsync.KindLine,
		Labels: []string{"2008", "2012", "2016", "2020"},
		Values: []float64{10, 30, 20, 25},
	}
	h, err := r.Create(target, s)
	require.NoError(t, err)
	l := h.(*Handle).line
	require.Equal(t, 4, l.n)

	lo, hi, ok := lineColumns(target.Image(), l)
	require.True(t, ok, "line colour not found in the plot area")
	assert.InDelta(t, l.centre(0), float64(lo), 8, "first dot")
	assert.InDelta(t, l.centre(3), float64(hi), 8, "last dot")

	// every point column is the one the hit test reports for its centre
	for i := range s.Values {
		idx, hit := h.HitTest(chartsync.PointerEvent{X: l.centre(i), Y: (l.top + l.bottom) / 2})
		assert.True(t, hit)
		assert.Equal(t, i, idx)
	}
}

func TestEmptySeriesRenderCaption(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)
	for _, kind := range []chartsync.Kind{chartsync.KindPie, chartsync.KindLine} {
		target := mountedTarget("empty", 400)
		h, err := r.Create(target, chartsync.Series{Kind: kind})
		require.NoError(t, err, kind)
		assert.NotNil(t, target.Image(), kind)
		_, hit := h.HitTest(chartsync.PointerEvent{X: 200, Y: 200})
		assert.False(t, hit, kind)
	}
}

func TestDestroyClearsSurface(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)
	target := mountedTarget("home", 800)
	h, err := r.Create(target, medalPie())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, target.WritePNG(&buf))
	_, err = png.Decode(&buf)
	require.NoError(t, err)

	h.Destroy()
	h.Destroy()
	assert.Nil(t, target.Image())
	assert.ErrorIs(t, target.WritePNG(&buf), ErrNothingRendered)
	assert.ErrorIs(t, h.Update(medalPie()), ErrHandleDestroyed)
	_, hit := h.HitTest(chartsync.PointerEvent{X: 400, Y: 160})
	assert.False(t, hit)
}

func TestCreateRejectsNonSurface(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)
	_, err = r.Create(plainTarget{}, medalPie())
	assert.Error(t, err)
}

func TestWorksThroughController(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)
	c := chartsync.NewController(r)
	target := NewImageTarget("home", 800)

	out, err := c.Reconcile(medalPie(), target)
	require.NoError(t, err)
	assert.Equal(t, chartsync.OutcomeDeferred, out)
	assert.Nil(t, target.Image())

	target.Mount()
	out, err = c.NotifyMounted(target)
	require.NoError(t, err)
	assert.Equal(t, chartsync.OutcomeCreated, out)
	assert.Equal(t, 1, target.Frames())

	c.ReleaseAll()
	assert.Nil(t, target.Image())
}

func TestParseColor(t *testing.T) {
	c, err := ParseColor("#0b868f")
	require.NoError(t, err)
	assert.Equal(t, uint8(0x0b), c.R)
	assert.Equal(t, uint8(0x86), c.G)
	assert.Equal(t, uint8(0x8f), c.B)

	c, err = ParseColor("orange")
	require.NoError(t, err)
	assert.Equal(t, uint8(0xff), c.R)
	assert.Equal(t, uint8(0xa5), c.G)

	for _, bad := range []string{"", "#12", "zzzzzz", "#1234567"} {
		_, err := ParseColor(bad)
		assert.Error(t, err, bad)
	}

	_, err = NewRenderer(WithPalette("nope"))
	assert.Error(t, err)
}

func TestImageTargetSizing(t *testing.T) {
	w, h := NewImageTarget("m", 500).Size()
	assert.Equal(t, 500, w)
	assert.Equal(t, 500, h, "narrow viewports get a square chart")
	w, h = NewImageTarget("d", 1000).Size()
	assert.Equal(t, 1000, w)
	assert.Equal(t, 400, h)
}
