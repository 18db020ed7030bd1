package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/tipscope/internal/render"
	"github.com/KaramelBytes/tipscope/internal/utils"
)

var (
	rndOutDir     string
	rndCategory   string
	rndField      string
	rndCell       string
	rndDelimiter  string
	rndSheetName  string
	rndSheetIndex int
)

var renderCmd = &cobra.Command{
	Use:   "render [file]",
	Short: "Render the bar chart and scatterplot to PNG files",
	Long: `Apply a selection and write bars.png, plus scatter.png when --cell is set,
into the output directory.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := openSession(cmd, args, rndDelimiter, rndSheetName, rndSheetIndex)
		if err != nil {
			return err
		}
		st, err := selectionFromFlags(rndCategory, rndField, rndCell)
		if err != nil {
			return err
		}
		if err := sess.Select(st); err != nil {
			return err
		}
		if err := utils.EnsureDir(rndOutDir); err != nil {
			return err
		}
		out, layout := sess.Outputs(), sess.Layout()

		var buf bytes.Buffer
		if err := render.BarsPNG(&buf, out.Bars, layout); err != nil {
			return err
		}
		path := filepath.Join(rndOutDir, "bars.png")
		if err := utils.SafeWriteFile(path, buf.Bytes()); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "✓ Wrote %s\n", path)

		if out.Scatter == nil {
			return nil
		}
		buf.Reset()
		if err := render.ScatterPNG(&buf, out.Scatter, layout); err != nil {
			if errors.Is(err, render.ErrNothingToDraw) {
				fmt.Fprintf(cmd.ErrOrStderr(), "⚠ Warning: scatterplot has no points, skipped\n")
				return nil
			}
			return err
		}
		path = filepath.Join(rndOutDir, "scatter.png")
		if err := utils.SafeWriteFile(path, buf.Bytes()); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "✓ Wrote %s\n", path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(renderCmd)
	renderCmd.Flags().StringVarP(&rndOutDir, "out", "o", ".", "directory for the PNG files")
	renderCmd.Flags().StringVar(&rndCategory, "category", "", "grouping category: sex | smoker | day | time")
	renderCmd.Flags().StringVar(&rndField, "field", "", "averaged field: tip | total_bill | size")
	renderCmd.Flags().StringVar(&rndCell, "cell", "", "heatmap cell as row,col (adds scatter.png)")
	renderCmd.Flags().StringVar(&rndDelimiter, "delimiter", "", "CSV delimiter: ',' | ';' | 'tab'")
	renderCmd.Flags().StringVar(&rndSheetName, "sheet-name", "", "XLSX: sheet name to load")
	renderCmd.Flags().IntVar(&rndSheetIndex, "sheet-index", 1, "XLSX: 1-based sheet index (used if --sheet-name not provided)")
}
