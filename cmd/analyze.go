package cmd

import (
	"fmt"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/spf13/cobra"

	"github.com/KaramelBytes/tipscope/internal/analysis"
	cfgpkg "github.com/KaramelBytes/tipscope/internal/config"
	"github.com/KaramelBytes/tipscope/internal/table"
	"github.com/KaramelBytes/tipscope/internal/utils"
)

var (
	anaOutputPath string
	anaFormat     string
	anaDelimiter  string
	anaSampleRows int
	anaGroupBy    []string
	anaCorr       bool
	anaSheetName  string
	anaSheetIndex int
	anaOutliers   bool
	anaOutlierThr float64
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [file]",
	Short: "Summarize a CSV/TSV/XLSX table",
	Long: `Profile every column of a table and optionally add grouped averages and
the correlation matrix of its numeric columns. Without a file argument the
configured data_file is used.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := dataPath(args)
		topt, err := loaderOptions(cmd, anaDelimiter, anaSheetName, anaSheetIndex)
		if err != nil {
			return err
		}
		t, err := table.Load(path, topt)
		if err != nil {
			return err
		}

		opt := analysis.DefaultOptions()
		opt.SampleRows = anaSampleRows
		opt.GroupBy = anaGroupBy
		opt.Correlations = anaCorr
		opt.Outliers = anaOutliers
		if anaOutlierThr > 0 {
			opt.OutlierThreshold = anaOutlierThr
		}
		rep, err := analysis.Summarize(t, opt)
		if err != nil {
			return err
		}
		out, err := formatReport(rep, anaFormat)
		if err != nil {
			return err
		}

		if anaOutputPath != "" {
			if err := utils.SafeWriteFile(anaOutputPath, out); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "✓ Wrote analysis to %s\n", anaOutputPath)
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), strings.TrimRight(string(out), "\n"))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().StringVarP(&anaOutputPath, "output", "o", "", "optional path to write the analysis")
	analyzeCmd.Flags().StringVarP(&anaFormat, "format", "f", "markdown", "output format: markdown | json | html")
	analyzeCmd.Flags().StringVar(&anaDelimiter, "delimiter", "", "CSV delimiter: ',' | ';' | 'tab'")
	analyzeCmd.Flags().IntVar(&anaSampleRows, "sample-rows", 5, "number of sample rows to include")
	analyzeCmd.Flags().StringSliceVar(&anaGroupBy, "group-by", nil, "comma-separated column names to group by (repeatable)")
	analyzeCmd.Flags().BoolVar(&anaCorr, "correlations", false, "compute Pearson correlations among numeric columns")
	analyzeCmd.Flags().BoolVar(&anaOutliers, "outliers", true, "compute robust outlier counts (MAD)")
	analyzeCmd.Flags().Float64Var(&anaOutlierThr, "outlier-threshold", 3.5, "robust |z| threshold for outliers (MAD-based)")
	analyzeCmd.Flags().StringVar(&anaSheetName, "sheet-name", "", "XLSX: sheet name to analyze")
	analyzeCmd.Flags().IntVar(&anaSheetIndex, "sheet-index", 1, "XLSX: 1-based sheet index (used if --sheet-name not provided)")
}

func formatReport(rep *analysis.Report, format string) ([]byte, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "markdown", "md":
		return []byte(rep.Markdown()), nil
	case "json":
		return utils.PrettyJSON(rep)
	case "html":
		p := parser.NewWithExtensions(parser.CommonExtensions)
		r := html.NewRenderer(html.RendererOptions{
			Title: rep.Name,
			Flags: html.CommonFlags | html.CompletePage,
		})
		return markdown.ToHTML([]byte(rep.Markdown()), p, r), nil
	default:
		return nil, fmt.Errorf("unsupported --format: %s (use markdown|json|html)", format)
	}
}

// loaderOptions starts from the configured loader settings and applies the
// flags the user set explicitly.
func loaderOptions(cmd *cobra.Command, delimiter, sheetName string, sheetIndex int) (table.Options, error) {
	opt, err := effectiveConfig().TableOptions()
	if err != nil {
		return opt, err
	}
	f := cmd.Flags()
	if f.Changed("delimiter") {
		d, err := cfgpkg.ParseDelimiter(delimiter)
		if err != nil {
			return opt, fmt.Errorf("unsupported --delimiter: %w", err)
		}
		opt.Delimiter = d
	}
	if f.Changed("sheet-name") {
		opt.SheetName = sheetName
	}
	if f.Changed("sheet-index") {
		if sheetIndex < 1 {
			return opt, fmt.Errorf("--sheet-index must be >= 1, got %d", sheetIndex)
		}
		opt.SheetIndex = sheetIndex
	}
	return opt, nil
}
