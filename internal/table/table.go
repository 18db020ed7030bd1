package table

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

var (
	// ErrNoHeader is returned when the source has no header row.
	ErrNoHeader = errors.New("table has no header row")
	// ErrRaggedRow is returned when a row carries more cells than the header.
	ErrRaggedRow = errors.New("row has more cells than header")
	// ErrDuplicateColumn is returned when two header cells share a name.
	ErrDuplicateColumn = errors.New("duplicate column name")
)

// Record is one observation keyed by column name. Records handed out by a
// Table must not be modified.
type Record map[string]string

// String returns the raw cell value, or "" when the field is absent.
func (r Record) String(field string) string { return r[field] }

// Float coerces the cell to a number. Absent, empty or non-numeric cells
// yield NaN so the failure flows through arithmetic instead of stopping it.
func (r Record) Float(field string) float64 {
	v, ok := r[field]
	if !ok {
		return math.NaN()
	}
	return ParseNumber(v)
}

// ParseNumber converts a trimmed cell to float64, returning NaN on failure.
// Infinity and NaN spellings are not numbers and also yield NaN.
func ParseNumber(s string) float64 {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return math.NaN()
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return math.NaN()
	}
	return f
}

// Table is an ordered, read-only sequence of records sharing one field set.
type Table struct {
	name        string
	columns     []string
	colIndex    map[string]int
	records     []Record
	fingerprint uint64
}

// New builds a Table from a header and raw rows. Short rows are padded with
// empty cells; rows wider than the header are rejected.
func New(name string, header []string, rows [][]string) (*Table, error) {
	if len(header) == 0 {
		return nil, ErrNoHeader
	}
	cols := make([]string, len(header))
	idx := make(map[string]int, len(header))
	for i, h := range header {
		c := strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if _, dup := idx[c]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateColumn, c)
		}
		cols[i] = c
		idx[c] = i
	}

	h := xxhash.New()
	_, _ = h.WriteString(strings.Join(cols, "\x1f"))
	recs := make([]Record, 0, len(rows))
	for n, row := range rows {
		if len(row) > len(cols) {
			return nil, fmt.Errorf("row %d: %w (%d > %d)", n+1, ErrRaggedRow, len(row), len(cols))
		}
		rec := make(Record, len(cols))
		for i, c := range cols {
			v := ""
			if i < len(row) {
				v = row[i]
			}
			rec[c] = v
			_, _ = h.WriteString("\x1f")
			_, _ = h.WriteString(v)
		}
		_, _ = h.WriteString("\x1e")
		recs = append(recs, rec)
	}
	return &Table{
		name:        name,
		columns:     cols,
		colIndex:    idx,
		records:     recs,
		fingerprint: h.Sum64(),
	}, nil
}

// Name is the source name (usually the file base name).
func (t *Table) Name() string { return t.name }

// Len returns the number of records. A nil table has none.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.records)
}

// Columns returns the header in source order.
func (t *Table) Columns() []string {
	out := make([]string, len(t.columns))
	copy(out, t.columns)
	return out
}

// Has reports whether the table carries the named column.
func (t *Table) Has(field string) bool {
	_, ok := t.colIndex[field]
	return ok
}

// Record returns the i-th record.
func (t *Table) Record(i int) Record { return t.records[i] }

// Floats extracts a numeric column; non-numeric cells become NaN.
func (t *Table) Floats(field string) []float64 {
	out := make([]float64, len(t.records))
	for i, r := range t.records {
		out[i] = r.Float(field)
	}
	return out
}

// Strings extracts a column as raw strings.
func (t *Table) Strings(field string) []string {
	out := make([]string, len(t.records))
	for i, r := range t.records {
		out[i] = r[field]
	}
	return out
}

// Distinct returns the distinct values of a column in first-seen order.
func (t *Table) Distinct(field string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, r := range t.records {
		v := r[field]
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// Fingerprint is an xxHash64 over the header and every cell. Identical
// content always yields the same value.
func (t *Table) Fingerprint() uint64 { return t.fingerprint }
