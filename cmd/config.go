package cmd

import (
	"fmt"
	"strconv"
	"strings"

	cfgpkg "github.com/KaramelBytes/tipscope/internal/config"
	"github.com/KaramelBytes/tipscope/internal/scale"
	"github.com/KaramelBytes/tipscope/internal/selection"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set TipScope configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg == nil {
			fmt.Fprintln(cmd.OutOrStdout(), "No config loaded")
			return nil
		}
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "data_file: %s\n", cfg.DataFile)
		if cfg.Delimiter != "" {
			fmt.Fprintf(w, "delimiter: %q\n", cfg.Delimiter)
		}
		if cfg.SheetName != "" {
			fmt.Fprintf(w, "sheet_name: %s\n", cfg.SheetName)
		}
		fmt.Fprintf(w, "sheet_index: %d\n", cfg.SheetIndex)
		fmt.Fprintf(w, "default_category: %s\n", cfg.DefaultCategory)
		fmt.Fprintf(w, "default_field: %s\n", cfg.DefaultField)
		fmt.Fprintf(w, "low_color: %s\n", cfg.LowColor)
		fmt.Fprintf(w, "high_color: %s\n", cfg.HighColor)
		fmt.Fprintf(w, "heatmap: %gx%g\n", cfg.Heatmap.Width, cfg.Heatmap.Height)
		fmt.Fprintf(w, "bars: %gx%g\n", cfg.Bars.Width, cfg.Bars.Height)
		fmt.Fprintf(w, "scatter: %gx%g\n", cfg.Scatter.Width, cfg.Scatter.Height)
		fmt.Fprintf(w, "listen_addr: %s\n", cfg.ListenAddr)
		fmt.Fprintf(w, "log_level: %s\n", cfg.LogLevel)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		if cfg == nil {
			c, err := cfgpkg.Load(cfgFile)
			if err != nil {
				return err
			}
			cfg = c
		}
		switch key {
		case "data_file":
			cfg.DataFile = val
		case "delimiter":
			if _, err := cfgpkg.ParseDelimiter(val); err != nil {
				return err
			}
			cfg.Delimiter = val
		case "sheet_name":
			cfg.SheetName = val
		case "sheet_index":
			i, err := strconv.Atoi(val)
			if err != nil || i < 1 {
				return fmt.Errorf("invalid int for sheet_index: %v", val)
			}
			cfg.SheetIndex = i
		case "default_category":
			c, err := selection.ParseCategory(val)
			if err != nil {
				return err
			}
			cfg.DefaultCategory = string(c)
		case "default_field":
			f, err := selection.ParseField(val)
			if err != nil {
				return err
			}
			cfg.DefaultField = string(f)
		case "low_color", "high_color":
			col, err := scale.ParseHex(val)
			if err != nil {
				return err
			}
			if key == "low_color" {
				cfg.LowColor = scale.Hex(col)
			} else {
				cfg.HighColor = scale.Hex(col)
			}
		case "listen_addr":
			cfg.ListenAddr = val
		case "log_level":
			switch strings.ToLower(val) {
			case "debug", "info", "warn", "error":
				cfg.LogLevel = strings.ToLower(val)
			default:
				return fmt.Errorf("invalid log_level: %s (use debug|info|warn|error)", val)
			}
		default:
			return fmt.Errorf("unknown key: %s", key)
		}
		if err := cfgpkg.Save(cfg, cfgFile); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
