package dashboard

import (
	"fmt"
	"math"

	"github.com/KaramelBytes/tipscope/internal/scale"
	"github.com/KaramelBytes/tipscope/internal/selection"
	"github.com/KaramelBytes/tipscope/internal/table"
)

// Point is one record on the scatterplot.
type Point struct {
	Index int     `json:"index"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	CX    float64 `json:"cx"`
	CY    float64 `json:"cy"`
}

// Scatter is the derived scatterplot for the clicked heatmap cell.
type Scatter struct {
	Title   string     `json:"title"`
	XField  string     `json:"x_field"`
	YField  string     `json:"y_field"`
	Width   float64    `json:"width"`
	Height  float64    `json:"height"`
	XDomain [2]float64 `json:"x_domain"`
	YDomain [2]float64 `json:"y_domain"`
	Radius  float64    `json:"radius"`
	Points  []Point    `json:"points"`
	Skipped int        `json:"skipped,omitempty"`
	XTicks  []Tick     `json:"x_ticks"`
	YTicks  []Tick     `json:"y_ticks"`
}

// BuildScatter plots the field pair implied by the selected cell. It returns
// nil without error when no cell is selected. Both axes run from zero to the
// column maximum; records with a NaN coordinate are skipped.
func BuildScatter(t *table.Table, s selection.State, l Layout) (*Scatter, error) {
	xf, yf, ok := s.ScatterPair()
	if !ok {
		return nil, nil
	}
	for _, f := range []selection.Field{xf, yf} {
		if !t.Has(string(f)) {
			return nil, fmt.Errorf("scatter: unknown field %s", f)
		}
	}
	xs, ys := t.Floats(string(xf)), t.Floats(string(yf))
	w, h := l.Scatter.InnerWidth(), l.Scatter.InnerHeight()
	x := scale.BuildLinear([2]float64{0, columnMax(xs)}, [2]float64{0, w}, false)
	y := scale.BuildLinear([2]float64{0, columnMax(ys)}, [2]float64{h, 0}, false)

	sc := &Scatter{
		Title:   fmt.Sprintf("Scatterplot between %s and %s", xf, yf),
		XField:  string(xf),
		YField:  string(yf),
		Width:   w,
		Height:  h,
		XDomain: x.Domain(),
		YDomain: y.Domain(),
		Radius:  l.PointRadius,
		Points:  make([]Point, 0, len(xs)),
		XTicks:  axisTicks(x, l.ScatterTicks),
		YTicks:  axisTicks(y, l.ScatterTicks),
	}
	for i := range xs {
		if math.IsNaN(xs[i]) || math.IsNaN(ys[i]) {
			sc.Skipped++
			continue
		}
		sc.Points = append(sc.Points, Point{Index: i, X: xs[i], Y: ys[i], CX: x.Map(xs[i]), CY: y.Map(ys[i])})
	}
	return sc, nil
}

func columnMax(vals []float64) float64 {
	_, hi, ok := scale.Extent(vals)
	if !ok {
		return 0
	}
	return hi
}
