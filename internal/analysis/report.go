package analysis

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/montanaflynn/stats"

	"github.com/KaramelBytes/tipscope/internal/table"
)

// Options controls the dataset summary.
type Options struct {
	// SampleRows determines how many example rows to include in the report.
	SampleRows int
	// GroupBy computes per-category averages of every numeric column.
	GroupBy []string
	// Correlations computes Pearson correlations among numeric columns.
	Correlations bool
	// Outlier detection via robust Z-score (MAD). If Outliers is true, counts |z|>threshold.
	Outliers         bool
	OutlierThreshold float64
}

// DefaultOptions returns reasonable defaults for dataset analysis.
func DefaultOptions() Options {
	return Options{
		SampleRows:       5,
		Outliers:         true,
		OutlierThreshold: 3.5,
	}
}

// Report is a markdown-friendly summary of a loaded table.
type Report struct {
	Name     string          `json:"name"`
	Rows     int             `json:"rows"`
	Cols     []ColumnSummary `json:"columns"`
	Samples  [][]string      `json:"samples,omitempty"`
	Warnings []string        `json:"warnings,omitempty"`
	Groups   []GroupSummary  `json:"groups,omitempty"`
	Corr     *CorrMatrix     `json:"correlations,omitempty"`
}

// ColumnSummary captures inferred kind and statistics per column.
type ColumnSummary struct {
	Name    string `json:"name"`
	Kind    string `json:"kind"` // numeric|categorical|empty
	NonNull int    `json:"non_null"`
	Missing int    `json:"missing"`
	Unique  int    `json:"unique,omitempty"`
	// Numeric stats
	Min     float64 `json:"min,omitempty"`
	Max     float64 `json:"max,omitempty"`
	Mean    float64 `json:"mean,omitempty"`
	Std     float64 `json:"std,omitempty"`
	Invalid int     `json:"invalid,omitempty"` // non-numeric cells in a numeric column
	// Outliers (robust Z via MAD)
	OutliersCount    int     `json:"outliers_count,omitempty"`
	OutliersMaxAbsZ  float64 `json:"outliers_max_abs_z,omitempty"`
	OutlierThreshold float64 `json:"outlier_threshold,omitempty"`
	// Categorical top values
	TopValues []CategoryCount `json:"top_values,omitempty"`
}

type CategoryCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// GroupSummary is the grouped average of one numeric column by one
// categorical column.
type GroupSummary struct {
	By     string      `json:"by"`
	Field  string      `json:"field"`
	Groups Aggregation `json:"groups"`
}

const maxTopValues = 8

// Summarize profiles every column of t and, depending on opt, adds grouped
// averages and the correlation matrix of the numeric columns.
func Summarize(t *table.Table, opt Options) (*Report, error) {
	if t == nil {
		return nil, ErrEmptyTable
	}
	rep := &Report{Name: t.Name(), Rows: t.Len()}
	sampleRows := opt.SampleRows
	if sampleRows < 0 {
		sampleRows = 0
	}
	cols := t.Columns()
	for i := 0; i < t.Len() && i < sampleRows; i++ {
		rec := t.Record(i)
		row := make([]string, len(cols))
		for j, c := range cols {
			row[j] = rec.String(c)
		}
		rep.Samples = append(rep.Samples, row)
	}

	var numeric []string
	for _, c := range cols {
		s := summarizeColumn(t, c, opt)
		if s.Kind == "numeric" {
			numeric = append(numeric, c)
			if s.Invalid > 0 {
				rep.Warnings = append(rep.Warnings, fmt.Sprintf("%s: %d non-numeric values read as NaN", c, s.Invalid))
			}
		}
		rep.Cols = append(rep.Cols, s)
	}

	if t.Len() == 0 {
		return rep, nil
	}
	for _, by := range opt.GroupBy {
		by = strings.TrimSpace(by)
		if !t.Has(by) {
			rep.Warnings = append(rep.Warnings, fmt.Sprintf("group-by column %q not found", by))
			continue
		}
		for _, f := range numeric {
			if f == by {
				continue
			}
			agg, err := GroupedAverage(t, by, f)
			if err != nil {
				return nil, err
			}
			rep.Groups = append(rep.Groups, GroupSummary{By: by, Field: f, Groups: agg})
		}
	}
	if opt.Correlations && len(numeric) >= 2 {
		m, err := CorrelationMatrix(t, numeric)
		if err != nil {
			return nil, err
		}
		rep.Corr = m
	}
	return rep, nil
}

func summarizeColumn(t *table.Table, name string, opt Options) ColumnSummary {
	s := ColumnSummary{Name: name}
	var nums []float64
	cats := map[string]int{}
	for _, raw := range t.Strings(name) {
		v := strings.TrimSpace(raw)
		if v == "" {
			s.Missing++
			continue
		}
		s.NonNull++
		cats[v]++
		if x := table.ParseNumber(v); !math.IsNaN(x) {
			nums = append(nums, x)
		}
	}
	switch {
	case s.NonNull == 0:
		s.Kind = "empty"
	case len(nums) >= s.NonNull-len(nums):
		s.Kind = "numeric"
		s.Invalid = s.NonNull - len(nums)
		s.Min, _ = stats.Min(nums)
		s.Max, _ = stats.Max(nums)
		s.Mean, _ = stats.Mean(nums)
		if len(nums) > 1 {
			s.Std, _ = stats.StandardDeviationSample(nums)
		}
		if opt.Outliers && len(nums) >= 8 {
			thr := opt.OutlierThreshold
			if thr <= 0 {
				thr = 3.5
			}
			s.OutliersCount, s.OutliersMaxAbsZ = robustOutliers(nums, thr)
			s.OutlierThreshold = thr
		}
	default:
		s.Kind = "categorical"
		tops := make([]CategoryCount, 0, len(cats))
		for k, v := range cats {
			tops = append(tops, CategoryCount{Value: k, Count: v})
		}
		sort.Slice(tops, func(i, j int) bool {
			if tops[i].Count == tops[j].Count {
				return tops[i].Value < tops[j].Value
			}
			return tops[i].Count > tops[j].Count
		})
		if len(tops) > maxTopValues {
			tops = tops[:maxTopValues]
		}
		s.TopValues = tops
		s.Unique = len(cats)
	}
	return s
}

// robustOutliers counts values whose modified z-score exceeds thr.
func robustOutliers(vals []float64, thr float64) (count int, maxAbsZ float64) {
	median, err := stats.Median(vals)
	if err != nil {
		return 0, 0
	}
	mad, err := stats.MedianAbsoluteDeviation(vals)
	if err != nil || mad == 0 {
		return 0, 0
	}
	for _, v := range vals {
		az := math.Abs(0.6745 * (v - median) / mad)
		if az > thr {
			count++
		}
		if az > maxAbsZ {
			maxAbsZ = az
		}
	}
	return count, maxAbsZ
}

// Markdown renders a compact report suitable for terminals or standalone docs.
func (r *Report) Markdown() string {
	var b strings.Builder
	b.WriteString("[DATASET SUMMARY]\n")
	if r.Name != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", r.Name))
	}
	b.WriteString(fmt.Sprintf("Rows: %d\n", r.Rows))
	b.WriteString(fmt.Sprintf("Columns: %d\n\n", len(r.Cols)))

	b.WriteString("[SCHEMA]\n")
	for _, c := range r.Cols {
		total := c.NonNull + c.Missing
		missPct := 0.0
		if total > 0 {
			missPct = float64(c.Missing) * 100.0 / float64(total)
		}
		b.WriteString(fmt.Sprintf("- %s: %s (non-null %d, missing %.1f%%)", safeName(c.Name), c.Kind, c.NonNull, missPct))
		switch c.Kind {
		case "numeric":
			b.WriteString(fmt.Sprintf("; min %.4g, max %.4g, mean %.4g, std %.4g", c.Min, c.Max, c.Mean, c.Std))
			if c.OutlierThreshold > 0 {
				b.WriteString(fmt.Sprintf("; outliers: %d above |z|>%.1f", c.OutliersCount, c.OutlierThreshold))
				if c.OutliersMaxAbsZ > 0 {
					b.WriteString(fmt.Sprintf(" (max |z|≈%.2f)", c.OutliersMaxAbsZ))
				}
			}
		case "categorical":
			if len(c.TopValues) > 0 {
				b.WriteString("; top: ")
				for i, kv := range c.TopValues {
					if i > 0 {
						b.WriteString(", ")
					}
					b.WriteString(fmt.Sprintf("%s(%d)", safeVal(kv.Value), kv.Count))
				}
				if c.Unique > len(c.TopValues) {
					b.WriteString(fmt.Sprintf("; unique=%d", c.Unique))
				}
			}
		}
		b.WriteString("\n")
	}

	if len(r.Groups) > 0 {
		b.WriteString("\n[GROUPED AVERAGES]\n")
		for _, g := range r.Groups {
			b.WriteString(fmt.Sprintf("- %s by %s:", g.Field, g.By))
			for i, m := range g.Groups {
				if i > 0 {
					b.WriteString(",")
				}
				b.WriteString(fmt.Sprintf(" %s=%s (n=%d)", safeVal(m.Category), formatValue(m.Value, "%.4g"), m.Count))
			}
			b.WriteString("\n")
		}
	}

	if r.Corr != nil && r.Corr.Size() >= 2 {
		b.WriteString("\n[CORRELATIONS]\n")
		b.WriteString("| |")
		for _, f := range r.Corr.Fields {
			b.WriteString(" " + safeName(f) + " |")
		}
		b.WriteString("\n|---|")
		for range r.Corr.Fields {
			b.WriteString("---|")
		}
		b.WriteString("\n")
		for i, f := range r.Corr.Fields {
			b.WriteString("| " + safeName(f) + " |")
			for j := range r.Corr.Fields {
				b.WriteString(" " + formatValue(r.Corr.At(i, j), "%.2f") + " |")
			}
			b.WriteString("\n")
		}
	}

	if len(r.Samples) > 0 {
		b.WriteString("\n[HEAD AND SAMPLE ROWS]\n")
		b.WriteString("|")
		for _, c := range r.Cols {
			b.WriteString(" " + safeName(c.Name) + " |")
		}
		b.WriteString("\n|")
		for range r.Cols {
			b.WriteString("---|")
		}
		b.WriteString("\n")
		for _, row := range r.Samples {
			b.WriteString("|")
			for i := range r.Cols {
				val := ""
				if i < len(row) {
					val = row[i]
				}
				if len(val) > 80 {
					val = val[:77] + "..."
				}
				b.WriteString(" " + safeVal(val) + " |")
			}
			b.WriteString("\n")
		}
	}
	if len(r.Warnings) > 0 {
		b.WriteString("\n[NOTES]\n")
		for _, w := range r.Warnings {
			b.WriteString("- ")
			b.WriteString(w)
			b.WriteString("\n")
		}
	}
	return b.String()
}

// formatValue prints NaN as N/A so callers never see "NaN" in a report.
func formatValue(v float64, format string) string {
	if math.IsNaN(v) {
		return "N/A"
	}
	return fmt.Sprintf(format, v)
}

func safeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "(unnamed)"
	}
	return s
}
func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
