// Package render draws derived dashboard outputs as PNG images.
package render

import (
	"errors"
	"fmt"
	"io"
	"math"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/KaramelBytes/tipscope/internal/dashboard"
)

// ErrNothingToDraw is returned when an output has no drawable marks.
var ErrNothingToDraw = errors.New("nothing to draw")

var barColor = drawing.Color{R: 0x46, G: 0x82, B: 0xB4, A: 0xFF}

// pointStyle renders dots without a connecting line.
func pointStyle(col drawing.Color, radius float64) chart.Style {
	return chart.Style{
		StrokeWidth: chart.Disabled,
		DotWidth:    radius,
		DotColor:    col,
	}
}

// BarsPNG writes the bar chart. Missing bars are drawn with zero height.
func BarsPNG(w io.Writer, b *dashboard.Bars, l dashboard.Layout) error {
	if b == nil || len(b.Bars) == 0 {
		return ErrNothingToDraw
	}
	values := make([]chart.Value, 0, len(b.Bars))
	for _, bar := range b.Bars {
		v := float64(bar.Value)
		if bar.Missing {
			v = 0
		}
		values = append(values, chart.Value{
			Label: bar.Category,
			Value: v,
			Style: chart.Style{FillColor: barColor, StrokeColor: barColor},
		})
	}
	lo, hi := axisRange(b.Domain)
	bw := max(1, int(b.Bars[0].Rect.Width))
	bc := chart.BarChart{
		Title:  fmt.Sprintf("%s by %s", b.YLabel, b.XLabel),
		Width:  int(l.Bars.Width),
		Height: int(l.Bars.Height),
		Background: chart.Style{Padding: chart.Box{
			Top:    int(l.Bars.Margin.Top) + 20,
			Left:   int(l.Bars.Margin.Left),
			Right:  int(l.Bars.Margin.Right),
			Bottom: int(l.Bars.Margin.Bottom),
		}},
		BarWidth:   bw,
		BarSpacing: max(1, bw/9),
		YAxis: chart.YAxis{
			Name:  b.YLabel,
			Range: &chart.ContinuousRange{Min: lo, Max: hi},
			Ticks: chartTicks(b.YTicks),
		},
		Bars: values,
	}
	if err := bc.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("render bars: %w", err)
	}
	return nil
}

// ScatterPNG writes the scatterplot.
func ScatterPNG(w io.Writer, sc *dashboard.Scatter, l dashboard.Layout) error {
	if sc == nil || len(sc.Points) == 0 {
		return ErrNothingToDraw
	}
	xs := make([]float64, len(sc.Points))
	ys := make([]float64, len(sc.Points))
	for i, p := range sc.Points {
		xs[i], ys[i] = p.X, p.Y
	}
	xlo, xhi := axisRange(sc.XDomain)
	ylo, yhi := axisRange(sc.YDomain)
	ch := chart.Chart{
		Title:  sc.Title,
		Width:  int(l.Scatter.Width),
		Height: int(l.Scatter.Height),
		Background: chart.Style{Padding: chart.Box{
			Top:    int(l.Scatter.Margin.Top) + 20,
			Left:   int(l.Scatter.Margin.Left),
			Right:  int(l.Scatter.Margin.Right),
			Bottom: int(l.Scatter.Margin.Bottom),
		}},
		XAxis: chart.XAxis{Name: sc.XField, Range: &chart.ContinuousRange{Min: xlo, Max: xhi}, Ticks: chartTicks(sc.XTicks)},
		YAxis: chart.YAxis{Name: sc.YField, Range: &chart.ContinuousRange{Min: ylo, Max: yhi}, Ticks: chartTicks(sc.YTicks)},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    fmt.Sprintf("%s vs %s", sc.YField, sc.XField),
				XValues: xs,
				YValues: ys,
				Style:   pointStyle(l.PointColor, sc.Radius),
			},
		},
	}
	if err := ch.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("render scatter: %w", err)
	}
	return nil
}

// axisRange widens an empty domain so go-chart accepts it.
func axisRange(d [2]float64) (float64, float64) {
	lo, hi := math.Min(d[0], d[1]), math.Max(d[0], d[1])
	if hi-lo == 0 {
		hi = lo + 1
	}
	return lo, hi
}

func chartTicks(ticks []dashboard.Tick) []chart.Tick {
	if len(ticks) < 2 {
		return nil
	}
	out := make([]chart.Tick, len(ticks))
	for i, t := range ticks {
		out[i] = chart.Tick{Value: t.Value, Label: t.Label}
	}
	return out
}
