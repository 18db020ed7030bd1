package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	cfgpkg "github.com/KaramelBytes/tipscope/internal/config"
	"github.com/KaramelBytes/tipscope/internal/utils"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	debug   bool

	// Loaded configuration
	cfg *cfgpkg.Global
	// Logger configured from --debug and log_level
	logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
)

var rootCmd = &cobra.Command{
	Use:   "tipscope",
	Short: "TipScope: explore the restaurant tips dataset",
	Long: `TipScope loads a tips table and derives a correlation heatmap, grouped
bar chart and scatterplot from it. Outputs can be printed, rendered to PNG
or served over HTTP for an interactive frontend.`,
	SilenceUsage: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	// Initialize configuration before executing commands
	cobra.OnInitialize(loadConfig)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.tipscope/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: commands fall back to built-in defaults
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
	} else {
		cfg = c
	}
	level := ""
	if cfg != nil {
		level = cfg.LogLevel
	}
	logger = newLogger(level, debug)
	slog.SetDefault(logger)
}

func newLogger(level string, debug bool) *slog.Logger {
	var lv slog.Level
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		lv = slog.LevelDebug
	case "warn", "warning":
		lv = slog.LevelWarn
	case "error":
		lv = slog.LevelError
	default:
		lv = slog.LevelInfo
	}
	if debug {
		lv = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lv}))
}

// effectiveConfig returns the loaded config, or the built-in defaults when
// loading failed.
func effectiveConfig() *cfgpkg.Global {
	if cfg != nil {
		return cfg
	}
	return &cfgpkg.Global{
		DataFile:   cfgpkg.DefaultDataFile,
		ListenAddr: cfgpkg.DefaultListenAddr,
	}
}

// dataPath picks the table to load: the argument if given, otherwise the
// configured data file. A relative data file missing from the working
// directory is searched for in its parents.
func dataPath(args []string) string {
	if len(args) == 1 {
		return args[0]
	}
	p := effectiveConfig().DataFile
	if filepath.IsAbs(p) {
		return p
	}
	if _, err := os.Stat(p); err == nil {
		return p
	}
	if found, err := utils.FindUp("", p); err == nil {
		return found
	}
	return p
}
