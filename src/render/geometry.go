package render

import (
	"math"

	chart "github.com/wcharczuk/go-chart/v2"
)

// Padding applied around charts. Values are non-zero so go-chart never falls back to
// its own defaults.
const (
	piePadTop    = 30
	piePadSide   = 10
	linePadTop   = 30
	linePadLeft  = 16
	linePadRight = 12
	linePadBot   = 28
)

// pieLayout mirrors go-chart's slice placement: the circle sits centred in the padded
// canvas, slices start at angle 0 (3 o'clock) and sweep clockwise in screen space.
type pieLayout struct {
	cx, cy, radius float64
	starts, sweeps []float64
	// index maps drawn slices back to series positions; zero values draw nothing
	index []int
}

func layoutPie(w, h int, values []float64) pieLayout {
	left, top := piePadSide, piePadTop
	right, bottom := w-piePadSide, h-piePadSide
	bw, bh := right-left, bottom-top
	d := min(bw, bh)
	l := pieLayout{
		cx:     float64(left + bw/2),
		cy:     float64(top + bh/2),
		radius: float64(d >> 1),
	}
	total := 0.0
	for _, v := range values {
		if v > 0 {
			total += v
		}
	}
	if total <= 0 || l.radius <= 0 {
		return l
	}
	rads := 0.0
	for i, v := range values {
		if v <= 0 {
			continue
		}
		sweep := v / total * 2 * math.Pi
		l.starts = append(l.starts, rads)
		l.sweeps = append(l.sweeps, sweep)
		l.index = append(l.index, i)
		rads += sweep
	}
	return l
}

func (l pieLayout) hit(x, y float64) (int, bool) {
	if len(l.index) == 0 {
		return 0, false
	}
	dx, dy := x-l.cx, y-l.cy
	if dx*dx+dy*dy > l.radius*l.radius {
		return 0, false
	}
	a := math.Atan2(dy, dx)
	if a < 0 {
		a += 2 * math.Pi
	}
	for k := range l.index {
		if a >= l.starts[k] && a < l.starts[k]+l.sweeps[k] {
			return l.index[k], true
		}
	}
	// float slack at the 2π seam
	return l.index[len(l.index)-1], true
}

// sliceCentre returns a point well inside slice k, used by tests and click simulation.
func (l pieLayout) sliceCentre(i int) (float64, float64, bool) {
	for k, idx := range l.index {
		if idx == i {
			mid := l.starts[k] + l.sweeps[k]/2
			return l.cx + math.Cos(mid)*l.radius/2, l.cy + math.Sin(mid)*l.radius/2, true
		}
	}
	return 0, 0, false
}

// lineLayout places n points evenly across the plot area with half a step of margin on
// each side (the X range is [-0.5, n-0.5]).
type lineLayout struct {
	left, right, top, bottom float64
	n                        int
}

// layoutLine takes the plot box go-chart settled on after shrinking the canvas for its
// axis labels. That box depends on font metrics, so it is captured during Render.
func layoutLine(box chart.Box, n int) lineLayout {
	return lineLayout{
		left:   float64(box.Left),
		right:  float64(box.Right),
		top:    float64(box.Top),
		bottom: float64(box.Bottom),
		n:      n,
	}
}

func (l lineLayout) step() float64 {
	if l.n == 0 {
		return 0
	}
	return (l.right - l.left) / float64(l.n)
}

func (l lineLayout) centre(i int) float64 {
	return l.left + l.step()*(float64(i)+0.5)
}

// hit picks the point column under x, like the viewer crosshair's nearest-centre rule.
func (l lineLayout) hit(x, y float64) (int, bool) {
	if l.n == 0 || x < l.left || x >= l.right || y < l.top || y > l.bottom {
		return 0, false
	}
	i := int((x - l.left) / l.step())
	if i >= l.n {
		i = l.n - 1
	}
	return i, true
}
