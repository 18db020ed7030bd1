package cmd

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/tipscope/internal/dashboard"
	"github.com/KaramelBytes/tipscope/internal/selection"
	"github.com/KaramelBytes/tipscope/internal/utils"
)

var (
	expCategory   string
	expField      string
	expCell       string
	expFormat     string
	expDelimiter  string
	expSheetName  string
	expSheetIndex int
)

var exploreCmd = &cobra.Command{
	Use:   "explore [file]",
	Short: "Derive the heatmap, bar chart and scatterplot for one selection",
	Long: `Load a tips table, apply a selection and print the derived chart outputs.
--cell picks a heatmap entry as row,col into the numeric fields
(tip, total_bill, size); its row field becomes the scatter x axis.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := openSession(cmd, args, expDelimiter, expSheetName, expSheetIndex)
		if err != nil {
			return err
		}
		st, err := selectionFromFlags(expCategory, expField, expCell)
		if err != nil {
			return err
		}
		if err := sess.Select(st); err != nil {
			return err
		}
		out := sess.Outputs()
		switch strings.ToLower(strings.TrimSpace(expFormat)) {
		case "", "text":
			return writeOutputsText(cmd.OutOrStdout(), out)
		case "json":
			b, err := utils.PrettyJSON(out)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(b))
			return nil
		default:
			return fmt.Errorf("unsupported --format: %s (use text|json)", expFormat)
		}
	},
}

func init() {
	rootCmd.AddCommand(exploreCmd)
	exploreCmd.Flags().StringVar(&expCategory, "category", "", "grouping category: sex | smoker | day | time")
	exploreCmd.Flags().StringVar(&expField, "field", "", "averaged field: tip | total_bill | size")
	exploreCmd.Flags().StringVar(&expCell, "cell", "", "heatmap cell as row,col (enables the scatterplot)")
	exploreCmd.Flags().StringVarP(&expFormat, "format", "f", "text", "output format: text | json")
	exploreCmd.Flags().StringVar(&expDelimiter, "delimiter", "", "CSV delimiter: ',' | ';' | 'tab'")
	exploreCmd.Flags().StringVar(&expSheetName, "sheet-name", "", "XLSX: sheet name to load")
	exploreCmd.Flags().IntVar(&expSheetIndex, "sheet-index", 1, "XLSX: 1-based sheet index (used if --sheet-name not provided)")
}

// openSession loads the table named by args, or the configured data file,
// and returns a session with outputs. Load failures and sessions without a
// table are errors.
func openSession(cmd *cobra.Command, args []string, delimiter, sheetName string, sheetIndex int) (*dashboard.Session, error) {
	c := effectiveConfig()
	path := dataPath(args)
	topt, err := loaderOptions(cmd, delimiter, sheetName, sheetIndex)
	if err != nil {
		return nil, err
	}
	layout, err := c.Layout()
	if err != nil {
		return nil, err
	}
	sess, err := dashboard.Open(path, topt, layout, logger)
	if err != nil {
		return nil, err
	}
	if !sess.Ready() {
		return nil, dashboard.ErrNoTable
	}
	return sess, nil
}

// selectionFromFlags starts from the configured default selection.
func selectionFromFlags(category, field, cell string) (selection.State, error) {
	st, err := effectiveConfig().Selection()
	if err != nil {
		return st, err
	}
	if category != "" {
		if st.Category, err = selection.ParseCategory(category); err != nil {
			return st, err
		}
	}
	if field != "" {
		if st.Field, err = selection.ParseField(field); err != nil {
			return st, err
		}
	}
	if cell != "" {
		c, err := selection.ParseCell(cell)
		if err != nil {
			return st, err
		}
		st.Cell = &c
	}
	return st, nil
}

func writeOutputsText(w io.Writer, out *dashboard.Outputs) error {
	if out == nil {
		return dashboard.ErrNoTable
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	hm := out.Heatmap
	fmt.Fprintln(tw, "[HEATMAP]")
	fmt.Fprint(tw, "\t")
	for _, f := range hm.Fields {
		fmt.Fprintf(tw, "%s\t", f)
	}
	fmt.Fprintln(tw)
	for i, f := range hm.Fields {
		fmt.Fprintf(tw, "%s\t", f)
		for j := range hm.Fields {
			c, _ := hm.Cell(i, j)
			fill := c.Fill
			if fill == "" {
				fill = "-"
			}
			fmt.Fprintf(tw, "%s %s\t", c.Label, fill)
		}
		fmt.Fprintln(tw)
	}
	if hm.Domain != nil {
		fmt.Fprintf(tw, "domain: [%.4g, %.4g]\n", hm.Domain[0], hm.Domain[1])
	}

	b := out.Bars
	fmt.Fprintf(tw, "\n[BARS] %s by %s\n", b.YLabel, b.XLabel)
	for _, bar := range b.Bars {
		val := "N/A"
		if !bar.Missing {
			val = fmt.Sprintf("%.4g", float64(bar.Value))
		}
		fmt.Fprintf(tw, "%s\t%s\t(n=%d)\n", bar.Category, val, bar.Count)
	}
	fmt.Fprintf(tw, "domain: [%.4g, %.4g]\n", b.Domain[0], b.Domain[1])

	if sc := out.Scatter; sc != nil {
		fmt.Fprintf(tw, "\n[SCATTER] %s\n", sc.Title)
		fmt.Fprintf(tw, "points\t%d\n", len(sc.Points))
		if sc.Skipped > 0 {
			fmt.Fprintf(tw, "skipped\t%d\n", sc.Skipped)
		}
		fmt.Fprintf(tw, "x (%s)\t[%.4g, %.4g]\n", sc.XField, sc.XDomain[0], sc.XDomain[1])
		fmt.Fprintf(tw, "y (%s)\t[%.4g, %.4g]\n", sc.YField, sc.YDomain[0], sc.YDomain[1])
	} else {
		fmt.Fprintln(tw, "\n[SCATTER] no cell selected")
	}
	return tw.Flush()
}
