package dashboard

import (
	"fmt"
	"math"

	"github.com/KaramelBytes/tipscope/internal/analysis"
	"github.com/KaramelBytes/tipscope/internal/scale"
	"github.com/KaramelBytes/tipscope/internal/selection"
	"github.com/KaramelBytes/tipscope/internal/table"
)

// Bar is one category's average.
type Bar struct {
	Category string             `json:"category"`
	Value    analysis.NullFloat `json:"value"`
	Count    int                `json:"count"`
	Rect     Rect               `json:"rect"`
	// Missing marks a NaN mean; its bar has zero height.
	Missing bool `json:"missing,omitempty"`
}

// Bars is the derived category-averaged bar chart.
type Bars struct {
	Category string     `json:"category"`
	Field    string     `json:"field"`
	XLabel   string     `json:"x_label"`
	YLabel   string     `json:"y_label"`
	Width    float64    `json:"width"`
	Height   float64    `json:"height"`
	Domain   [2]float64 `json:"domain"`
	Bars     []Bar      `json:"bars"`
	YTicks   []Tick     `json:"y_ticks"`
}

// BuildBars averages the selected field per value of the selected category.
// The value axis starts at zero and is niced.
func BuildBars(t *table.Table, s selection.State, l Layout) (*Bars, error) {
	agg, err := analysis.GroupedAverage(t, string(s.Category), string(s.Field))
	if err != nil {
		return nil, fmt.Errorf("grouped average: %w", err)
	}

	w, h := l.Bars.InnerWidth(), l.Bars.InnerHeight()
	top, ok := agg.MaxValue()
	if !ok {
		top = 0
	}
	y := scale.BuildLinear([2]float64{0, top}, [2]float64{h, 0}, true)
	x := scale.NewBand(agg.Categories(), [2]float64{0, w}, l.BarPadding)

	b := &Bars{
		Category: string(s.Category),
		Field:    string(s.Field),
		XLabel:   string(s.Category),
		YLabel:   string(s.Field) + " (Average)",
		Width:    w,
		Height:   h,
		Domain:   y.Domain(),
		Bars:     make([]Bar, 0, len(agg)),
		YTicks:   axisTicks(y, l.AxisTicks),
	}
	base := y.Map(0)
	for _, g := range agg {
		px, _ := x.Position(g.Category)
		bar := Bar{
			Category: g.Category,
			Value:    analysis.NullFloat(g.Value),
			Count:    g.Count,
			Rect:     Rect{X: px, Y: base, Width: x.Bandwidth()},
		}
		if math.IsNaN(g.Value) {
			bar.Missing = true
		} else {
			py := y.Map(g.Value)
			bar.Rect.Y = math.Min(py, base)
			bar.Rect.Height = math.Abs(base - py)
		}
		b.Bars = append(b.Bars, bar)
	}
	return b, nil
}
