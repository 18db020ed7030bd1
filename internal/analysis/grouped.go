package analysis

import (
	"fmt"
	"math"

	"github.com/montanaflynn/stats"

	"github.com/KaramelBytes/tipscope/internal/table"
)

// GroupMean is the average of one value field within a single category.
type GroupMean struct {
	Category string  `json:"category"`
	Value    float64 `json:"value"`
	Count    int     `json:"count"`
}

// Aggregation is an ordered list of per-category means.
type Aggregation []GroupMean

// Categories returns the category keys in order.
func (a Aggregation) Categories() []string {
	out := make([]string, len(a))
	for i, g := range a {
		out[i] = g.Category
	}
	return out
}

// Total returns the number of records across all groups.
func (a Aggregation) Total() int {
	var n int
	for _, g := range a {
		n += g.Count
	}
	return n
}

// MaxValue returns the largest finite mean. ok is false when no mean is
// finite or the aggregation is empty.
func (a Aggregation) MaxValue() (float64, bool) {
	vals := make([]float64, 0, len(a))
	for _, g := range a {
		vals = append(vals, g.Value)
	}
	return maxFinite(vals)
}

// GroupedAverage partitions records by categoryField, preserving the order in
// which each category is first seen, and averages valueField within each
// partition. Non-numeric values make their group's mean NaN.
func GroupedAverage(t *table.Table, categoryField, valueField string) (Aggregation, error) {
	if t.Len() == 0 {
		return nil, ErrEmptyTable
	}
	for _, f := range []string{categoryField, valueField} {
		if !t.Has(f) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownField, f)
		}
	}

	var order []string
	parts := make(map[string][]float64)
	for i := 0; i < t.Len(); i++ {
		rec := t.Record(i)
		key := rec.String(categoryField)
		if _, ok := parts[key]; !ok {
			order = append(order, key)
		}
		parts[key] = append(parts[key], rec.Float(valueField))
	}

	out := make(Aggregation, 0, len(order))
	for _, key := range order {
		vals := parts[key]
		m, err := stats.Mean(vals)
		if err != nil {
			return nil, fmt.Errorf("mean of %s=%s: %w", categoryField, key, err)
		}
		out = append(out, GroupMean{Category: key, Value: m, Count: len(vals)})
	}
	return out, nil
}

func maxFinite(values []float64) (float64, bool) {
	finite := dropNonFinite(values)
	if len(finite) == 0 {
		return 0, false
	}
	m, err := stats.Max(finite)
	return m, err == nil
}

func dropNonFinite(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out = append(out, v)
		}
	}
	return out
}
