package analysis

import (
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/tipscope/internal/table"
)

func TestSummarize_GoldenMarkdown(t *testing.T) {
	tb, err := table.Load(filepath.Join("testdata", "tips_small.csv"), table.DefaultOptions())
	require.NoError(t, err)

	opt := DefaultOptions()
	opt.GroupBy = []string{"day"}
	opt.Correlations = true
	rep, err := Summarize(tb, opt)
	require.NoError(t, err)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "tips_small_report", []byte(rep.Markdown()))
}

func TestSummarize_ColumnKinds(t *testing.T) {
	rep, err := Summarize(tipsTable(t), DefaultOptions())
	require.NoError(t, err)
	require.Len(t, rep.Cols, 4)

	kinds := map[string]string{}
	for _, c := range rep.Cols {
		kinds[c.Name] = c.Kind
	}
	assert.Equal(t, map[string]string{
		"total_bill": "numeric",
		"tip":        "numeric",
		"size":       "numeric",
		"day":        "categorical",
	}, kinds)

	tip := rep.Cols[1]
	assert.Equal(t, 1.0, tip.Min)
	assert.Equal(t, 3.0, tip.Max)
	assert.Equal(t, 2.0, tip.Mean)
	assert.Equal(t, 1.0, tip.Std)
	assert.Nil(t, rep.Corr)
	assert.Empty(t, rep.Groups)
	assert.Len(t, rep.Samples, 3)
}

func TestSummarize_WarnsOnCoercionAndMissingGroup(t *testing.T) {
	tb := mustTable(t, []string{"score", "label"},
		[]string{"1", "a"},
		[]string{"2", "b"},
		[]string{"x", "a"},
		[]string{"", "c"},
	)
	opt := DefaultOptions()
	opt.GroupBy = []string{"region"}
	rep, err := Summarize(tb, opt)
	require.NoError(t, err)

	score := rep.Cols[0]
	assert.Equal(t, "numeric", score.Kind)
	assert.Equal(t, 3, score.NonNull)
	assert.Equal(t, 1, score.Missing)
	assert.Equal(t, 1, score.Invalid)
	assert.Contains(t, rep.Warnings, "score: 1 non-numeric values read as NaN")
	assert.Contains(t, rep.Warnings, `group-by column "region" not found`)

	md := rep.Markdown()
	assert.Contains(t, md, "[NOTES]")
	assert.Contains(t, md, "missing 25.0%")
}

func TestSummarize_RobustOutliers(t *testing.T) {
	var rows [][]string
	for _, v := range []int{10, 10, 10, 11, 11, 11, 12, 12, 12, 100} {
		rows = append(rows, []string{fmt.Sprint(v)})
	}
	tb, err := table.New("outliers", []string{"tip"}, rows)
	require.NoError(t, err)

	rep, err := Summarize(tb, DefaultOptions())
	require.NoError(t, err)
	c := rep.Cols[0]
	assert.Equal(t, 1, c.OutliersCount)
	assert.Equal(t, 3.5, c.OutlierThreshold)
	assert.InDelta(t, 0.6745*89, c.OutliersMaxAbsZ, 1e-9)
	assert.Contains(t, rep.Markdown(), "outliers: 1 above |z|>3.5")
}

func TestSummarize_TopValuesCapped(t *testing.T) {
	var rows [][]string
	for i := 0; i < 12; i++ {
		rows = append(rows, []string{fmt.Sprintf("v%02d", i)})
	}
	rows = append(rows, []string{"v05"})
	tb, err := table.New("many", []string{"label"}, rows)
	require.NoError(t, err)

	rep, err := Summarize(tb, Options{})
	require.NoError(t, err)
	c := rep.Cols[0]
	require.Len(t, c.TopValues, maxTopValues)
	assert.Equal(t, CategoryCount{Value: "v05", Count: 2}, c.TopValues[0])
	assert.Equal(t, "v00", c.TopValues[1].Value)
	assert.Equal(t, 12, c.Unique)
	assert.Empty(t, rep.Samples)
	assert.True(t, strings.Contains(rep.Markdown(), "unique=12"))
}

func TestSummarize_NilTable(t *testing.T) {
	_, err := Summarize(nil, DefaultOptions())
	assert.ErrorIs(t, err, ErrEmptyTable)
}
