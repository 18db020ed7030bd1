package dashboard

import (
	"math"
	"strconv"

	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/KaramelBytes/tipscope/internal/scale"
)

// Margin is the space between a chart's outer box and its plot area.
type Margin struct {
	Top    float64 `json:"top" yaml:"top" mapstructure:"top"`
	Right  float64 `json:"right" yaml:"right" mapstructure:"right"`
	Bottom float64 `json:"bottom" yaml:"bottom" mapstructure:"bottom"`
	Left   float64 `json:"left" yaml:"left" mapstructure:"left"`
}

// Frame is the outer size of one chart.
type Frame struct {
	Width  float64 `json:"width" yaml:"width" mapstructure:"width"`
	Height float64 `json:"height" yaml:"height" mapstructure:"height"`
	Margin Margin  `json:"margin" yaml:"margin" mapstructure:"margin"`
}

// InnerWidth is the plot-area width.
func (f Frame) InnerWidth() float64 { return f.Width - f.Margin.Left - f.Margin.Right }

// InnerHeight is the plot-area height.
func (f Frame) InnerHeight() float64 { return f.Height - f.Margin.Top - f.Margin.Bottom }

// Layout holds every presentation constant the derivation needs.
type Layout struct {
	Heatmap Frame `json:"heatmap"`
	Bars    Frame `json:"bars"`
	Scatter Frame `json:"scatter"`

	HeatmapPadding float64 `json:"heatmap_padding"`
	BarPadding     float64 `json:"bar_padding"`
	LegendTicks    int     `json:"legend_ticks"`
	AxisTicks      int     `json:"axis_ticks"`
	ScatterTicks   int     `json:"scatter_ticks"`
	PointRadius    float64 `json:"point_radius"`

	LowColor   drawing.Color `json:"-"`
	HighColor  drawing.Color `json:"-"`
	PointColor drawing.Color `json:"-"`
}

// DefaultLayout returns the stock chart sizes and colors.
func DefaultLayout() Layout {
	return Layout{
		Heatmap: Frame{Width: 300, Height: 300, Margin: Margin{Top: 30, Right: 30, Bottom: 30, Left: 30}},
		Bars:    Frame{Width: 500, Height: 300, Margin: Margin{Top: 20, Right: 20, Bottom: 50, Left: 50}},
		Scatter: Frame{Width: 1000, Height: 300, Margin: Margin{Top: 30, Right: 30, Bottom: 60, Left: 60}},

		HeatmapPadding: 0.01,
		BarPadding:     0.1,
		LegendTicks:    10,
		AxisTicks:      10,
		ScatterTicks:   5,
		PointRadius:    5,

		LowColor:   scale.LowColor,
		HighColor:  scale.HighColor,
		PointColor: drawing.Color{R: 0x46, G: 0x82, B: 0xB4, A: 0xFF}, // steelblue
	}
}

// Rect is an axis-aligned box in plot-area coordinates.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Tick is one labelled axis position.
type Tick struct {
	Value    float64 `json:"value"`
	Position float64 `json:"position"`
	Label    string  `json:"label"`
}

// axisTicks labels ticks with just enough decimals to tell neighbours
// apart, as d3's default tick format does.
func axisTicks(s *scale.Linear, count int) []Tick {
	vals := s.Ticks(count)
	decimals := 0
	if len(vals) > 1 {
		step := math.Abs(vals[1] - vals[0])
		decimals = max(0, -int(math.Floor(math.Log10(step)+1e-9)))
	}
	out := make([]Tick, len(vals))
	for i, v := range vals {
		out[i] = Tick{Value: v, Position: s.Map(v), Label: strconv.FormatFloat(v, 'f', decimals, 64)}
	}
	return out
}
