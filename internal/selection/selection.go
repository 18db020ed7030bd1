package selection

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrUnknownCategory is returned for a category outside the fixed set.
	ErrUnknownCategory = errors.New("unknown category")
	// ErrUnknownField is returned for a numeric field outside the fixed set.
	ErrUnknownField = errors.New("unknown field")
	// ErrCellOutOfRange is returned when a clicked cell is not on the heatmap.
	ErrCellOutOfRange = errors.New("cell out of range")
)

// Category is a categorical column the bar chart can group by.
type Category string

const (
	Sex    Category = "sex"
	Smoker Category = "smoker"
	Day    Category = "day"
	Time   Category = "time"
)

// Categories lists the selectable categories in display order.
func Categories() []Category { return []Category{Sex, Smoker, Day, Time} }

// Field is a numeric column.
type Field string

const (
	Tip       Field = "tip"
	TotalBill Field = "total_bill"
	Size      Field = "size"
)

// Fields lists the numeric fields in heatmap order.
func Fields() []Field { return []Field{Tip, TotalBill, Size} }

// FieldNames is Fields as column names.
func FieldNames() []string {
	fs := Fields()
	out := make([]string, len(fs))
	for i, f := range fs {
		out[i] = string(f)
	}
	return out
}

// ParseCategory matches s against the known categories, ignoring case and
// surrounding space.
func ParseCategory(s string) (Category, error) {
	want := strings.ToLower(strings.TrimSpace(s))
	for _, c := range Categories() {
		if string(c) == want {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCategory, s)
}

// ParseField matches s against the known numeric fields, ignoring case and
// surrounding space.
func ParseField(s string) (Field, error) {
	want := strings.ToLower(strings.TrimSpace(s))
	for _, f := range Fields() {
		if string(f) == want {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownField, s)
}

// Cell addresses one heatmap entry by row and column index into Fields.
type Cell struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// ParseCell reads "row,col".
func ParseCell(s string) (Cell, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return Cell{}, fmt.Errorf("cell %q: want row,col", s)
	}
	row, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return Cell{}, fmt.Errorf("cell %q: row: %w", s, err)
	}
	col, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return Cell{}, fmt.Errorf("cell %q: col: %w", s, err)
	}
	c := Cell{Row: row, Col: col}
	if !c.valid() {
		return Cell{}, fmt.Errorf("%w: %d,%d", ErrCellOutOfRange, row, col)
	}
	return c, nil
}

func (c Cell) valid() bool {
	n := len(Fields())
	return c.Row >= 0 && c.Row < n && c.Col >= 0 && c.Col < n
}

// State is the complete user selection. It is a value; Apply returns a new
// one rather than mutating.
type State struct {
	Category Category `json:"category"`
	Field    Field    `json:"field"`
	Cell     *Cell    `json:"cell,omitempty"`
}

// Default is the selection a fresh session starts with.
func Default() State {
	return State{Category: Sex, Field: Tip}
}

// Change reports which derived outputs an event invalidated.
type Change uint8

const (
	ChangeBars Change = 1 << iota
	ChangeScatter

	ChangeNone Change = 0
	ChangeAll         = ChangeBars | ChangeScatter
)

// Has reports whether every bit of o is set in c.
func (c Change) Has(o Change) bool { return c&o == o }

func (c Change) String() string {
	var parts []string
	if c.Has(ChangeBars) {
		parts = append(parts, "bars")
	}
	if c.Has(ChangeScatter) {
		parts = append(parts, "scatter")
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "|")
}

// Event is a user interaction that replaces one slice of State.
type Event interface {
	apply(State) (State, Change, error)
}

// CategoryChanged selects the bar chart grouping.
type CategoryChanged struct{ Category Category }

// FieldChanged selects the averaged numeric field.
type FieldChanged struct{ Field Field }

// CellClicked selects a heatmap cell, which picks the scatterplot axes.
type CellClicked struct{ Row, Col int }

func (e CategoryChanged) apply(s State) (State, Change, error) {
	c, err := ParseCategory(string(e.Category))
	if err != nil {
		return s, ChangeNone, err
	}
	s.Category = c
	return s, ChangeBars, nil
}

func (e FieldChanged) apply(s State) (State, Change, error) {
	f, err := ParseField(string(e.Field))
	if err != nil {
		return s, ChangeNone, err
	}
	s.Field = f
	return s, ChangeBars, nil
}

func (e CellClicked) apply(s State) (State, Change, error) {
	c := Cell{Row: e.Row, Col: e.Col}
	if !c.valid() {
		return s, ChangeNone, fmt.Errorf("%w: %d,%d", ErrCellOutOfRange, e.Row, e.Col)
	}
	s.Cell = &c
	return s, ChangeScatter, nil
}

// Apply returns the state after e and the outputs that must be recomputed.
// On error the receiver is returned unchanged.
func (s State) Apply(e Event) (State, Change, error) {
	if e == nil {
		return s, ChangeNone, errors.New("nil event")
	}
	return e.apply(s)
}

// ScatterPair returns the fields plotted on the scatterplot: the clicked
// row on x and the clicked column on y.
func (s State) ScatterPair() (x, y Field, ok bool) {
	if s.Cell == nil || !s.Cell.valid() {
		return "", "", false
	}
	fs := Fields()
	return fs[s.Cell.Row], fs[s.Cell.Col], true
}

// Validate checks that every slice of s holds a known value.
func (s State) Validate() error {
	if _, err := ParseCategory(string(s.Category)); err != nil {
		return err
	}
	if _, err := ParseField(string(s.Field)); err != nil {
		return err
	}
	if s.Cell != nil && !s.Cell.valid() {
		return fmt.Errorf("%w: %d,%d", ErrCellOutOfRange, s.Cell.Row, s.Cell.Col)
	}
	return nil
}
