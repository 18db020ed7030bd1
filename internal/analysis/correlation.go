package analysis

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/KaramelBytes/tipscope/internal/table"
)

var (
	// ErrEmptyTable is returned when there are no records to analyze.
	ErrEmptyTable = errors.New("table is empty")
	// ErrUnknownField is returned when a requested column does not exist.
	ErrUnknownField = errors.New("unknown field")
	// ErrNoFields is returned when a correlation is requested over no fields.
	ErrNoFields = errors.New("no fields requested")
)

// CorrMatrix holds a square Pearson correlation matrix.
type CorrMatrix struct {
	Fields []string    `json:"fields"`
	Values [][]float64 `json:"values"` // row-major, Values[i][j]
}

// Size returns the matrix dimension.
func (m *CorrMatrix) Size() int { return len(m.Fields) }

// At returns entry (i, j).
func (m *CorrMatrix) At(i, j int) float64 { return m.Values[i][j] }

// Index returns the position of field, or -1.
func (m *CorrMatrix) Index(field string) int {
	for i, f := range m.Fields {
		if f == field {
			return i
		}
	}
	return -1
}

// Lookup returns the coefficient between two named fields.
func (m *CorrMatrix) Lookup(a, b string) (float64, bool) {
	i, j := m.Index(a), m.Index(b)
	if i < 0 || j < 0 {
		return 0, false
	}
	return m.Values[i][j], true
}

// Flatten returns all entries in row-major order.
func (m *CorrMatrix) Flatten() []float64 {
	out := make([]float64, 0, len(m.Fields)*len(m.Fields))
	for _, row := range m.Values {
		out = append(out, row...)
	}
	return out
}

// CorrelationMatrix computes the Pearson coefficient for every ordered pair
// of fields. Covariance and standard deviations are both Bessel-corrected,
// so the diagonal is 1 for any field with positive variance. A zero-variance
// field yields NaN in its whole row and column, and non-numeric cells
// propagate NaN; neither is reported as an error.
func CorrelationMatrix(t *table.Table, fields []string) (*CorrMatrix, error) {
	if t.Len() == 0 {
		return nil, ErrEmptyTable
	}
	if len(fields) == 0 {
		return nil, ErrNoFields
	}
	cols := make([][]float64, len(fields))
	for i, f := range fields {
		if !t.Has(f) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownField, f)
		}
		cols[i] = t.Floats(f)
	}

	n := len(fields)
	vals := make([][]float64, n)
	for i := range vals {
		vals[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			r := pearson(cols[i], cols[j])
			vals[i][j] = r
			vals[j][i] = r
		}
	}
	names := make([]string, n)
	copy(names, fields)
	return &CorrMatrix{Fields: names, Values: vals}, nil
}

func pearson(x, y []float64) float64 {
	if constant(x) || constant(y) {
		return math.NaN()
	}
	return stat.Covariance(x, y, nil) / (stat.StdDev(x, nil) * stat.StdDev(y, nil))
}

// constant reports zero variance. Columns holding NaN are not constant; the
// NaN is left to propagate through the arithmetic.
func constant(xs []float64) bool {
	for _, v := range xs[1:] {
		if v != xs[0] {
			return false
		}
	}
	return !math.IsNaN(xs[0])
}
