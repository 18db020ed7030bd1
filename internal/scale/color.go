package scale

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/montanaflynn/stats"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// ErrInvalidColor is returned by ParseHex for malformed input.
var ErrInvalidColor = errors.New("invalid hex color")

var (
	// LowColor is the color of the smallest correlation.
	LowColor = drawing.Color{R: 0xFF, G: 0xFF, B: 0x00, A: 0xFF}
	// HighColor is the color of the largest correlation.
	HighColor = drawing.Color{R: 0x0E, G: 0x03, B: 0xBB, A: 0xFF}
)

// ColorScale interpolates linearly in RGB between two colors.
type ColorScale struct {
	lin       *Linear
	low, high drawing.Color
}

// NewColorScale maps [lo, hi] onto low..high.
func NewColorScale(lo, hi float64, low, high drawing.Color) *ColorScale {
	return &ColorScale{
		lin:  BuildLinear([2]float64{lo, hi}, [2]float64{0, 1}, false),
		low:  low,
		high: high,
	}
}

// BuildColorScale is the heatmap fill scale.
func BuildColorScale(lo, hi float64) *ColorScale {
	return NewColorScale(lo, hi, LowColor, HighColor)
}

// BuildColorBarScale is the legend scale. It shares the domain of the fill
// scale with the endpoints swapped.
func BuildColorBarScale(lo, hi float64) *ColorScale {
	return NewColorScale(lo, hi, HighColor, LowColor)
}

// Domain returns the value interval.
func (c *ColorScale) Domain() [2]float64 { return c.lin.Domain() }

// Ticks returns tick values over the domain.
func (c *ColorScale) Ticks(count int) []float64 { return c.lin.Ticks(count) }

// Color returns the interpolated color for v. ok is false for NaN, which
// has no color.
func (c *ColorScale) Color(v float64) (drawing.Color, bool) {
	if math.IsNaN(v) {
		return drawing.Color{}, false
	}
	t := c.lin.Map(v)
	return drawing.Color{
		R: channel(c.low.R, c.high.R, t),
		G: channel(c.low.G, c.high.G, t),
		B: channel(c.low.B, c.high.B, t),
		A: 0xFF,
	}, true
}

func channel(a, b uint8, t float64) uint8 {
	v := jsRound(float64(a) + (float64(b)-float64(a))*t)
	return uint8(math.Max(0, math.Min(255, v)))
}

// ParseHex parses "#rrggbb", "rrggbb" or the three-digit short form.
func ParseHex(s string) (drawing.Color, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) != 3 && len(h) != 6 {
		return drawing.Color{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	for _, r := range h {
		if !strings.ContainsRune("0123456789abcdefABCDEF", r) {
			return drawing.Color{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
		}
	}
	return drawing.ColorFromHex(h), nil
}

// Hex formats c as "#rrggbb".
func Hex(c drawing.Color) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// CSS formats c the way d3 serializes interpolated colors.
func CSS(c drawing.Color) string {
	return fmt.Sprintf("rgb(%d, %d, %d)", c.R, c.G, c.B)
}

// Extent returns the minimum and maximum of values, ignoring NaN and
// infinities. ok is false when no value is left.
func Extent(values []float64) (lo, hi float64, ok bool) {
	finite := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			finite = append(finite, v)
		}
	}
	if len(finite) == 0 {
		return 0, 0, false
	}
	lo, err := stats.Min(finite)
	if err != nil {
		return 0, 0, false
	}
	hi, err = stats.Max(finite)
	if err != nil {
		return 0, 0, false
	}
	return lo, hi, true
}
