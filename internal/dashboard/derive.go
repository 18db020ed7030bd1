package dashboard

import (
	"errors"

	"github.com/KaramelBytes/tipscope/internal/selection"
	"github.com/KaramelBytes/tipscope/internal/table"
)

// ErrNoTable is returned when outputs are requested before a table loaded.
var ErrNoTable = errors.New("no table loaded")

// Outputs is everything the three charts draw from.
type Outputs struct {
	State   selection.State `json:"state"`
	Heatmap *Heatmap        `json:"heatmap"`
	Bars    *Bars           `json:"bars"`
	Scatter *Scatter        `json:"scatter,omitempty"`
}

// Derive computes every output from scratch. It has no side effects.
func Derive(t *table.Table, s selection.State, l Layout) (*Outputs, error) {
	if t == nil {
		return nil, ErrNoTable
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	hm, err := BuildHeatmap(t, l)
	if err != nil {
		return nil, err
	}
	bars, err := BuildBars(t, s, l)
	if err != nil {
		return nil, err
	}
	sc, err := BuildScatter(t, s, l)
	if err != nil {
		return nil, err
	}
	return &Outputs{State: s, Heatmap: hm, Bars: bars, Scatter: sc}, nil
}
