package table

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestLoadCSV_Tips(t *testing.T) {
	tb, err := Load(filepath.Join("testdata", "tips_small.csv"), DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, "tips_small.csv", tb.Name())
	assert.Equal(t, 3, tb.Len())
	assert.Equal(t, []string{"total_bill", "tip", "sex", "smoker", "day", "time", "size"}, tb.Columns())
	assert.Equal(t, []float64{1, 2, 3}, tb.Floats("tip"))
	assert.Equal(t, []string{"Sun", "Sun", "Sat"}, tb.Strings("day"))
	assert.Equal(t, "Female", tb.Record(0).String("sex"))
	assert.True(t, tb.Has("size"))
	assert.False(t, tb.Has("Size"))
}

func TestReadCSV_PadsShortRowsAndSkipsBlankLines(t *testing.T) {
	src := "a,b,c\n1,2,3\n\n4,5\n"
	tb, err := ReadCSV(strings.NewReader(src), "inline", Options{})
	require.NoError(t, err)
	require.Equal(t, 2, tb.Len())
	assert.Equal(t, "", tb.Record(1).String("c"))
	assert.True(t, math.IsNaN(tb.Record(1).Float("c")))
}

func TestReadCSV_RejectsWideRows(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("a,b\n1,2,3\n"), "inline", Options{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRaggedRow))
}

func TestReadCSV_EmptySource(t *testing.T) {
	_, err := ReadCSV(strings.NewReader(""), "empty", Options{})
	assert.ErrorIs(t, err, ErrNoHeader)
}

func TestReadCSV_DuplicateHeader(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("tip,tip\n1,2\n"), "dup", Options{})
	assert.ErrorIs(t, err, ErrDuplicateColumn)
}

func TestReadCSV_SemicolonAndBOM(t *testing.T) {
	src := "\ufefftip; day\n1.5;Sun\n"
	tb, err := ReadCSV(strings.NewReader(src), "semi", Options{Delimiter: ';'})
	require.NoError(t, err)
	assert.Equal(t, []string{"tip", "day"}, tb.Columns())
	assert.Equal(t, 1.5, tb.Record(0).Float("tip"))
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		nan  bool
	}{
		{in: "16.99", want: 16.99},
		{in: " 3 ", want: 3},
		{in: "1e2", want: 100},
		{in: "", nan: true},
		{in: "abc", nan: true},
		{in: "1,5", nan: true},
		{in: "inf", nan: true},
		{in: "-Infinity", nan: true},
		{in: "NaN", nan: true},
		{in: "1e400", nan: true},
	}
	for _, tt := range tests {
		got := ParseNumber(tt.in)
		if tt.nan {
			assert.True(t, math.IsNaN(got), "ParseNumber(%q) = %v, want NaN", tt.in, got)
			continue
		}
		assert.Equal(t, tt.want, got, "ParseNumber(%q)", tt.in)
	}
}

func TestRecordFloat_MissingField(t *testing.T) {
	r := Record{"tip": "2"}
	assert.Equal(t, 2.0, r.Float("tip"))
	assert.True(t, math.IsNaN(r.Float("size")))
}

func TestDistinct_FirstSeenOrder(t *testing.T) {
	tb, err := New("d", []string{"day"}, [][]string{{"Sun"}, {"Sat"}, {"Sun"}, {"Thur"}, {"Sat"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"Sun", "Sat", "Thur"}, tb.Distinct("day"))
}

func TestFingerprint(t *testing.T) {
	rows := [][]string{{"1", "Sun"}, {"2", "Sat"}}
	a, err := New("a", []string{"tip", "day"}, rows)
	require.NoError(t, err)
	b, err := New("b", []string{"tip", "day"}, rows)
	require.NoError(t, err)
	c, err := New("c", []string{"tip", "day"}, [][]string{{"1", "Sun"}, {"2", "Sun"}})
	require.NoError(t, err)

	assert.Equal(t, a.Fingerprint(), b.Fingerprint())
	assert.NotEqual(t, a.Fingerprint(), c.Fingerprint())
}

func TestLoad_MissingFileIsLoadError(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.csv"), DefaultOptions())
	require.Error(t, err)
	var le *LoadError
	require.True(t, errors.As(err, &le))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestLoadXLSX_SheetSelection(t *testing.T) {
	path := writeWorkbook(t)

	byIndex, err := Load(path, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 1, byIndex.Len())
	assert.Equal(t, []string{"note"}, byIndex.Columns())

	byName, err := Load(path, Options{SheetName: "tips"})
	require.NoError(t, err)
	assert.Equal(t, "tips.xlsx (sheet: Tips)", byName.Name())
	assert.Equal(t, 2, byName.Len())
	assert.Equal(t, []float64{1.01, 1.66}, byName.Floats("tip"))

	bySecond, err := Load(path, Options{SheetIndex: 2})
	require.NoError(t, err)
	assert.Equal(t, byName.Fingerprint(), bySecond.Fingerprint())

	_, err = Load(path, Options{SheetName: "missing"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "available: Sheet1, Tips")
}

func writeWorkbook(t *testing.T) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]interface{}{"note"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]interface{}{"cover sheet"}))

	_, err := f.NewSheet("Tips")
	require.NoError(t, err)
	require.NoError(t, f.SetSheetRow("Tips", "A1", &[]interface{}{"total_bill", "tip", "day"}))
	require.NoError(t, f.SetSheetRow("Tips", "A2", &[]interface{}{"16.99", "1.01", "Sun"}))
	require.NoError(t, f.SetSheetRow("Tips", "A3", &[]interface{}{"10.34", "1.66", "Sun"}))

	path := filepath.Join(t.TempDir(), "tips.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}
