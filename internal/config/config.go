package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/tipscope/internal/dashboard"
	"github.com/KaramelBytes/tipscope/internal/scale"
	"github.com/KaramelBytes/tipscope/internal/selection"
	"github.com/KaramelBytes/tipscope/internal/table"
)

const (
	envPrefix = "TIPSCOPE"
	dirName   = ".tipscope"

	// DefaultDataFile is the table loaded when none is configured.
	DefaultDataFile = "data/tips.csv"
	// DefaultListenAddr is the address serve binds to.
	DefaultListenAddr = "127.0.0.1:8080"
)

// Global configuration structure.
type Global struct {
	DataFile  string `mapstructure:"data_file" yaml:"data_file"`
	Delimiter string `mapstructure:"delimiter" yaml:"delimiter"`
	// Workbook sheet selection; name wins over index.
	SheetName  string `mapstructure:"sheet_name" yaml:"sheet_name"`
	SheetIndex int    `mapstructure:"sheet_index" yaml:"sheet_index"`

	DefaultCategory string `mapstructure:"default_category" yaml:"default_category"`
	DefaultField    string `mapstructure:"default_field" yaml:"default_field"`

	// Heatmap gradient endpoints as hex.
	LowColor  string `mapstructure:"low_color" yaml:"low_color"`
	HighColor string `mapstructure:"high_color" yaml:"high_color"`

	// Chart frames
	Heatmap dashboard.Frame `mapstructure:"heatmap" yaml:"heatmap"`
	Bars    dashboard.Frame `mapstructure:"bars" yaml:"bars"`
	Scatter dashboard.Frame `mapstructure:"scatter" yaml:"scatter"`

	// HTTP
	ListenAddr string `mapstructure:"listen_addr" yaml:"listen_addr"`
	LogLevel   string `mapstructure:"log_level" yaml:"log_level"`
}

// Dir returns ~/.tipscope.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, dirName), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.tipscope/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		dir, err := Dir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	l := dashboard.DefaultLayout()
	v.SetDefault("data_file", DefaultDataFile)
	v.SetDefault("delimiter", "")
	v.SetDefault("sheet_name", "")
	v.SetDefault("sheet_index", 1)
	v.SetDefault("default_category", string(selection.Sex))
	v.SetDefault("default_field", string(selection.Tip))
	v.SetDefault("low_color", scale.Hex(scale.LowColor))
	v.SetDefault("high_color", scale.Hex(scale.HighColor))
	for key, f := range map[string]dashboard.Frame{"heatmap": l.Heatmap, "bars": l.Bars, "scatter": l.Scatter} {
		v.SetDefault(key+".width", f.Width)
		v.SetDefault(key+".height", f.Height)
		v.SetDefault(key+".margin.top", f.Margin.Top)
		v.SetDefault(key+".margin.right", f.Margin.Right)
		v.SetDefault(key+".margin.bottom", f.Margin.Bottom)
		v.SetDefault(key+".margin.left", f.Margin.Left)
	}
	v.SetDefault("listen_addr", DefaultListenAddr)
	v.SetDefault("log_level", "info")
}

// Load loads configuration from file, env, and defaults.
// Precedence: env > config file > defaults. A .env file in the working
// directory is read first and never overrides variables already set.
func Load(cfgFile string) (*Global, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		// optional read
		var notFound viper.ConfigFileNotFoundError
		if err := v.ReadInConfig(); err != nil && !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, nil
}

// TableOptions converts the loader settings.
func (c *Global) TableOptions() (table.Options, error) {
	opt := table.DefaultOptions()
	opt.SheetName = c.SheetName
	if c.SheetIndex > 0 {
		opt.SheetIndex = c.SheetIndex
	}
	d, err := ParseDelimiter(c.Delimiter)
	if err != nil {
		return opt, err
	}
	opt.Delimiter = d
	return opt, nil
}

// ParseDelimiter accepts a single character, "tab" or a literal \t. The
// empty string yields 0, leaving the choice to the loader.
func ParseDelimiter(d string) (rune, error) {
	switch {
	case d == "":
		return 0, nil
	case d == `\t` || strings.EqualFold(d, "tab"):
		return '\t', nil
	case len([]rune(d)) == 1:
		return []rune(d)[0], nil
	default:
		return 0, fmt.Errorf("delimiter must be a single character, got %q", d)
	}
}

// Layout builds the chart layout, applying configured frames and colors.
func (c *Global) Layout() (dashboard.Layout, error) {
	l := dashboard.DefaultLayout()
	for _, f := range []struct {
		dst *dashboard.Frame
		src dashboard.Frame
	}{{&l.Heatmap, c.Heatmap}, {&l.Bars, c.Bars}, {&l.Scatter, c.Scatter}} {
		if f.src.Width > 0 && f.src.Height > 0 {
			*f.dst = f.src
		}
	}
	if c.LowColor != "" {
		col, err := scale.ParseHex(c.LowColor)
		if err != nil {
			return l, fmt.Errorf("low_color: %w", err)
		}
		l.LowColor = col
	}
	if c.HighColor != "" {
		col, err := scale.ParseHex(c.HighColor)
		if err != nil {
			return l, fmt.Errorf("high_color: %w", err)
		}
		l.HighColor = col
	}
	return l, nil
}

// Selection returns the configured initial selection.
func (c *Global) Selection() (selection.State, error) {
	s := selection.Default()
	if c.DefaultCategory != "" {
		cat, err := selection.ParseCategory(c.DefaultCategory)
		if err != nil {
			return s, fmt.Errorf("default_category: %w", err)
		}
		s.Category = cat
	}
	if c.DefaultField != "" {
		f, err := selection.ParseField(c.DefaultField)
		if err != nil {
			return s, fmt.Errorf("default_field: %w", err)
		}
		s.Field = f
	}
	return s, nil
}
