package dashboard

import (
	"log/slog"

	"github.com/google/uuid"

	"github.com/KaramelBytes/tipscope/internal/selection"
	"github.com/KaramelBytes/tipscope/internal/table"
)

// Counts records how many times each output was built.
type Counts struct {
	Heatmap int `json:"heatmap"`
	Bars    int `json:"bars"`
	Scatter int `json:"scatter"`
}

// Session is one dashboard: an optional table, the current selection and
// the outputs derived from them. A Session is not safe for concurrent use.
type Session struct {
	id     string
	table  *table.Table
	layout Layout
	state  selection.State
	out    *Outputs
	counts Counts
	log    *slog.Logger
}

// NewSession derives the initial outputs for t. A nil t yields an inert
// session that still tracks the selection.
func NewSession(t *table.Table, l Layout, logger *slog.Logger) (*Session, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Session{
		id:     uuid.NewString(),
		table:  t,
		layout: l,
		state:  selection.Default(),
	}
	s.log = logger.With("session", s.id)
	if t == nil {
		return s, nil
	}
	out, err := Derive(t, s.state, l)
	if err != nil {
		return nil, err
	}
	s.out = out
	s.counts = Counts{Heatmap: 1, Bars: 1}
	if out.Scatter != nil {
		s.counts.Scatter++
	}
	s.log.Debug("session ready", "table", t.Name(), "rows", t.Len())
	return s, nil
}

// Open loads path and starts a session over it. A load or derivation
// failure is logged and returned alongside an inert session, which is
// never nil.
func Open(path string, opt table.Options, l Layout, logger *slog.Logger) (*Session, error) {
	if logger == nil {
		logger = slog.Default()
	}
	t, err := table.Load(path, opt)
	if err != nil {
		logger.Error("load table failed", "path", path, "err", err)
		s, _ := NewSession(nil, l, logger)
		return s, err
	}
	s, err := NewSession(t, l, logger)
	if err != nil {
		logger.Error("derive outputs failed", "path", path, "err", err)
		s, _ = NewSession(nil, l, logger)
		return s, err
	}
	return s, nil
}

// ID is a random identifier for log correlation.
func (s *Session) ID() string { return s.id }

// Ready reports whether a table is loaded and outputs exist.
func (s *Session) Ready() bool { return s.out != nil }

// Table returns the loaded table, or nil.
func (s *Session) Table() *table.Table { return s.table }

// State returns the current selection.
func (s *Session) State() selection.State { return s.state }

// Outputs returns the current outputs, or nil when not ready. The value is
// replaced, never modified, by Dispatch.
func (s *Session) Outputs() *Outputs { return s.out }

// Counts returns the rebuild counters.
func (s *Session) Counts() Counts { return s.counts }

// Layout returns the layout outputs are derived with.
func (s *Session) Layout() Layout { return s.layout }

// Dispatch applies e and rebuilds exactly the outputs it invalidated. An
// inert session only records the new selection. On error nothing changes.
func (s *Session) Dispatch(e selection.Event) (selection.Change, error) {
	next, change, err := s.state.Apply(e)
	if err != nil {
		return selection.ChangeNone, err
	}
	if err := s.commit(next, change); err != nil {
		return selection.ChangeNone, err
	}
	return change, nil
}

// Select moves the session to st, rebuilding only the outputs whose inputs
// differ. Either the whole selection is applied or nothing changes.
func (s *Session) Select(st selection.State) error {
	if err := st.Validate(); err != nil {
		return err
	}
	next := selection.State{Category: st.Category, Field: st.Field}
	if st.Cell != nil {
		c := *st.Cell
		next.Cell = &c
	}
	change := selection.ChangeNone
	if next.Category != s.state.Category || next.Field != s.state.Field {
		change |= selection.ChangeBars
	}
	if !sameCell(next.Cell, s.state.Cell) {
		change |= selection.ChangeScatter
	}
	return s.commit(next, change)
}

// commit builds the invalidated outputs for next and swaps them in only
// when every build succeeded.
func (s *Session) commit(next selection.State, change selection.Change) error {
	if s.out == nil {
		s.state = next
		return nil
	}
	out := *s.out
	out.State = next
	counts := s.counts
	if change.Has(selection.ChangeBars) {
		bars, err := BuildBars(s.table, next, s.layout)
		if err != nil {
			return err
		}
		out.Bars = bars
		counts.Bars++
	}
	if change.Has(selection.ChangeScatter) {
		sc, err := BuildScatter(s.table, next, s.layout)
		if err != nil {
			return err
		}
		out.Scatter = sc
		counts.Scatter++
	}
	s.state = next
	s.out = &out
	s.counts = counts
	s.log.Debug("selection applied", "change", change.String(), "category", next.Category, "field", next.Field)
	return nil
}

func sameCell(a, b *selection.Cell) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
