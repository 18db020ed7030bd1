package dashboard

import (
	"fmt"
	"math"

	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/KaramelBytes/tipscope/internal/analysis"
	"github.com/KaramelBytes/tipscope/internal/scale"
	"github.com/KaramelBytes/tipscope/internal/selection"
	"github.com/KaramelBytes/tipscope/internal/table"
)

// HeatCell is one tile of the correlation heatmap.
type HeatCell struct {
	Row      int                `json:"row"`
	Col      int                `json:"col"`
	RowField string             `json:"row_field"`
	ColField string             `json:"col_field"`
	Value    analysis.NullFloat `json:"value"`
	Rect     Rect               `json:"rect"`
	// Fill is empty when Value is NaN.
	Fill  string        `json:"fill,omitempty"`
	Color drawing.Color `json:"-"`
	Label string        `json:"label"`
}

// LegendStop is one gradient stop of the color bar.
type LegendStop struct {
	Offset float64 `json:"offset"` // percent from the top
	Value  float64 `json:"value"`
	Fill   string  `json:"fill"`
	Y      float64 `json:"y"`
	Label  string  `json:"label"`
}

// Heatmap is the derived correlation heatmap.
type Heatmap struct {
	Fields      []string             `json:"fields"`
	Matrix      *analysis.CorrMatrix `json:"matrix"`
	Domain      *[2]float64          `json:"domain,omitempty"`
	Width       float64              `json:"width"`
	Height      float64              `json:"height"`
	Cells       []HeatCell           `json:"cells"`
	Legend      []LegendStop         `json:"legend,omitempty"`
	LegendMax   string               `json:"legend_max,omitempty"`
	Fingerprint string               `json:"fingerprint"`
}

// Cell returns the tile at (row, col).
func (h *Heatmap) Cell(row, col int) (HeatCell, bool) {
	n := len(h.Fields)
	if row < 0 || col < 0 || row >= n || col >= n {
		return HeatCell{}, false
	}
	return h.Cells[row*n+col], true
}

// BuildHeatmap correlates the numeric fields and lays the matrix out as
// tiles. The color domain spans the finite entries only; when there are
// none the tiles carry no fill and the legend is empty.
func BuildHeatmap(t *table.Table, l Layout) (*Heatmap, error) {
	fields := selection.FieldNames()
	m, err := analysis.CorrelationMatrix(t, fields)
	if err != nil {
		return nil, fmt.Errorf("correlation matrix: %w", err)
	}

	w, h := l.Heatmap.InnerWidth(), l.Heatmap.InnerHeight()
	x := scale.NewBand(fields, [2]float64{0, w}, l.HeatmapPadding)
	y := scale.NewBand(fields, [2]float64{h, 0}, l.HeatmapPadding)

	hm := &Heatmap{
		Fields:      fields,
		Matrix:      m,
		Width:       w,
		Height:      h,
		Cells:       make([]HeatCell, 0, len(fields)*len(fields)),
		Fingerprint: fmt.Sprintf("%016x", t.Fingerprint()),
	}

	var fill *scale.ColorScale
	lo, hi, ok := scale.Extent(m.Flatten())
	if ok {
		hm.Domain = &[2]float64{lo, hi}
		fill = scale.NewColorScale(lo, hi, l.LowColor, l.HighColor)
		hm.Legend, hm.LegendMax = legend(scale.NewColorScale(lo, hi, l.HighColor, l.LowColor), h, l.LegendTicks)
	}

	for i, rf := range fields {
		for j, cf := range fields {
			v := m.At(i, j)
			px, _ := x.Position(cf)
			py, _ := y.Position(rf)
			c := HeatCell{
				Row:      i,
				Col:      j,
				RowField: rf,
				ColField: cf,
				Value:    analysis.NullFloat(v),
				Rect:     Rect{X: px, Y: py, Width: x.Bandwidth(), Height: y.Bandwidth()},
				Label:    formatCorr(v),
			}
			if fill != nil {
				if col, ok := fill.Color(v); ok {
					c.Color = col
					c.Fill = scale.CSS(col)
				}
			}
			hm.Cells = append(hm.Cells, c)
		}
	}
	return hm, nil
}

// legend places one stop per tick, evenly spaced from the top of the bar.
func legend(bar *scale.ColorScale, height float64, ticks int) ([]LegendStop, string) {
	if ticks <= 0 {
		ticks = scale.DefaultTickCount
	}
	vals := bar.Ticks(ticks)
	stops := make([]LegendStop, 0, len(vals))
	for i, v := range vals {
		col, _ := bar.Color(v)
		stops = append(stops, LegendStop{
			Offset: float64(i) * 100 / float64(ticks),
			Value:  v,
			Fill:   scale.CSS(col),
			Y:      height - float64(i)*height/float64(ticks),
			Label:  fmt.Sprintf("%.2f", v),
		})
	}
	return stops, fmt.Sprintf("%.2f", bar.Domain()[1])
}

func formatCorr(v float64) string {
	if math.IsNaN(v) {
		return "N/A"
	}
	return fmt.Sprintf("%.2f", v)
}
