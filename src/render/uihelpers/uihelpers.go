// Package uihelpers holds the pure sizing and tick rules shared by chart rendering.
package uihelpers

import (
	"math"
	"strconv"
)

// MobileBreakpoint is the widest viewport that still gets the square chart layout.
const MobileBreakpoint = 767

// AspectRatio returns the width/height ratio charts use at a given viewport width:
// square on narrow screens, 2.5:1 otherwise.
func AspectRatio(viewportW int) float64 {
	if viewportW <= MobileBreakpoint {
		return 1
	}
	return 2.5
}

// ComputeChartDimensions applies width clamp and aspect rules used for charts.
// Input: desired raw width (e.g., viewport width). Returns clamped width & height.
func ComputeChartDimensions(rawW int) (int, int) {
	w := rawW
	if w < 320 {
		w = 320
	}
	if w > 2400 {
		w = 2400
	}
	h := int(math.Round(float64(w) / AspectRatio(w)))
	if h < 240 {
		h = 240
	}
	return w, h
}

// round6 rounds to 6 decimal places to stabilize test comparisons / labels prep.
func round6(v float64) float64 { return math.Round(v*1e6) / 1e6 }

// BuildNumericTicks generates up to n tick marks spanning [min,max] using the 1,2,2.5,5 pattern.
// Returns slice of raw numeric positions (label formatting left to caller).
func BuildNumericTicks(min, max float64, n int) []float64 {
	if n < 2 || math.IsNaN(min) || math.IsNaN(max) {
		return nil
	}
	if max <= min {
		max = min + 1
	}
	span := max - min
	mag := math.Pow(10, math.Floor(math.Log10(span/float64(n-1))))
	candidates := []float64{1, 2, 2.5, 5, 10}
	bestStep := mag
	bestScore := math.MaxFloat64
	for _, c := range candidates {
		step := c * mag
		count := math.Ceil(span/step) + 1
		if count < 2 {
			count = 2
		}
		diff := math.Abs(count - float64(n))
		if diff < bestScore {
			bestScore = diff
			bestStep = step
		}
	}
	start := math.Floor(min/bestStep) * bestStep
	end := math.Ceil(max/bestStep) * bestStep
	var out []float64
	for v := start; v <= end+bestStep*0.5; v += bestStep {
		out = append(out, round6(v))
	}
	if len(out) < 2 {
		out = []float64{min, max}
	}
	return out
}

// FormatNumericTick provides a compact label; whole numbers (medal counts) print without decimals.
func FormatNumericTick(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return strconv.FormatInt(int64(v), 10)
	}
	av := math.Abs(v)
	switch {
	case av >= 100:
		return strconv.FormatInt(int64(math.Round(v)), 10)
	case av >= 10:
		return strconv.FormatFloat(v, 'f', 1, 64)
	case av >= 1:
		return strconv.FormatFloat(v, 'f', 2, 64)
	case av >= 0.01:
		return strconv.FormatFloat(v, 'f', 3, 64)
	default:
		return strconv.FormatFloat(v, 'f', 4, 64)
	}
}
