package selection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	s := Default()
	assert.Equal(t, Sex, s.Category)
	assert.Equal(t, Tip, s.Field)
	assert.Nil(t, s.Cell)
	assert.NoError(t, s.Validate())
	_, _, ok := s.ScatterPair()
	assert.False(t, ok)
}

func TestParseCategory(t *testing.T) {
	c, err := ParseCategory(" Sex ")
	require.NoError(t, err)
	assert.Equal(t, Sex, c)

	c, err = ParseCategory("DAY")
	require.NoError(t, err)
	assert.Equal(t, Day, c)

	_, err = ParseCategory("tip")
	assert.ErrorIs(t, err, ErrUnknownCategory)
}

func TestParseField(t *testing.T) {
	f, err := ParseField("Total_Bill")
	require.NoError(t, err)
	assert.Equal(t, TotalBill, f)

	_, err = ParseField("sex")
	assert.ErrorIs(t, err, ErrUnknownField)
	assert.Equal(t, []string{"tip", "total_bill", "size"}, FieldNames())
}

func TestApply_DirtyOutputs(t *testing.T) {
	tests := []struct {
		name  string
		event Event
		want  Change
	}{
		{name: "category", event: CategoryChanged{Category: Smoker}, want: ChangeBars},
		{name: "field", event: FieldChanged{Field: Size}, want: ChangeBars},
		{name: "cell", event: CellClicked{Row: 1, Col: 0}, want: ChangeScatter},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, got, err := Default().Apply(tt.event)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestApply_ReplacesOnlyItsSlice(t *testing.T) {
	s := Default()
	s, _, err := s.Apply(CellClicked{Row: 0, Col: 2})
	require.NoError(t, err)
	s, _, err = s.Apply(CategoryChanged{Category: "Day"})
	require.NoError(t, err)
	s, _, err = s.Apply(FieldChanged{Field: TotalBill})
	require.NoError(t, err)

	assert.Equal(t, Day, s.Category)
	assert.Equal(t, TotalBill, s.Field)
	require.NotNil(t, s.Cell)
	assert.Equal(t, Cell{Row: 0, Col: 2}, *s.Cell)

	x, y, ok := s.ScatterPair()
	require.True(t, ok)
	assert.Equal(t, Tip, x)
	assert.Equal(t, Size, y)
}

func TestApply_DoesNotMutateReceiver(t *testing.T) {
	base := Default()
	next, _, err := base.Apply(CellClicked{Row: 2, Col: 1})
	require.NoError(t, err)
	assert.Nil(t, base.Cell)
	assert.NotNil(t, next.Cell)
}

func TestApply_Errors(t *testing.T) {
	s := Default()
	for _, e := range []Event{
		CellClicked{Row: 3, Col: 0},
		CellClicked{Row: 0, Col: -1},
		CategoryChanged{Category: "weekday"},
		FieldChanged{Field: "price"},
		nil,
	} {
		got, change, err := s.Apply(e)
		assert.Error(t, err, "%#v", e)
		assert.Equal(t, ChangeNone, change)
		assert.Equal(t, s, got)
	}

	_, _, err := s.Apply(CellClicked{Row: 5, Col: 5})
	assert.ErrorIs(t, err, ErrCellOutOfRange)
}

func TestParseCell(t *testing.T) {
	c, err := ParseCell("1, 2")
	require.NoError(t, err)
	assert.Equal(t, Cell{Row: 1, Col: 2}, c)

	_, err = ParseCell("1")
	assert.Error(t, err)
	_, err = ParseCell("a,1")
	assert.Error(t, err)
	_, err = ParseCell("3,0")
	assert.ErrorIs(t, err, ErrCellOutOfRange)
}

func TestChangeString(t *testing.T) {
	assert.Equal(t, "none", ChangeNone.String())
	assert.Equal(t, "bars", ChangeBars.String())
	assert.Equal(t, "bars|scatter", ChangeAll.String())
	assert.True(t, ChangeAll.Has(ChangeScatter))
	assert.False(t, ChangeBars.Has(ChangeScatter))
}
