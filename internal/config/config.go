package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/tobiasfrejo/rv-thesis-supporting-material/internal/core/model"
	"github.com/tobiasfrejo/rv-thesis-supporting-material/internal/core/timeline"
	"github.com/tobiasfrejo/rv-thesis-supporting-material/internal/data/parser"
	"github.com/tobiasfrejo/rv-thesis-supporting-material/internal/presentation/chart"
	"github.com/tobiasfrejo/rv-thesis-supporting-material/internal/util"
)

// EnvPrefix prefixes environment overrides, e.g. LOLA_TIMELINE_CHART_WIDTH
const EnvPrefix = "LOLA_TIMELINE"

// Config is the tool configuration: defaults, then the config file, then
// the environment. Command-line flags are applied on top by the commands.
type Config struct {
	Stream      string            `mapstructure:"stream"`
	Binary      string            `mapstructure:"binary"`
	Dialect     string            `mapstructure:"dialect"`
	Sentinel    int               `mapstructure:"sentinel"`
	Overlap     string            `mapstructure:"overlap"`
	Normalize   bool              `mapstructure:"normalize"`
	Output      string            `mapstructure:"output"`
	Concurrency int               `mapstructure:"concurrency"`
	Order       []string          `mapstructure:"order"`
	Colors      map[string]string `mapstructure:"colors"`
	Chart       ChartConfig       `mapstructure:"chart"`
	Log         LogConfig         `mapstructure:"log"`
}

type ChartConfig struct {
	Format      string `mapstructure:"format"`
	Width       int    `mapstructure:"width"`
	RowHeight   int    `mapstructure:"row_height"`
	BinaryColor string `mapstructure:"binary_color"`
	Reverse     bool   `mapstructure:"reverse"`
}

type LogConfig struct {
	Level      string `mapstructure:"level"`
	File       string `mapstructure:"file"`
	Format     string `mapstructure:"format"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("stream", model.StreamAtomicStage)
	v.SetDefault("binary", "")
	v.SetDefault("dialect", string(parser.DialectAuto))
	v.SetDefault("sentinel", timeline.SentinelFirstStep)
	v.SetDefault("overlap", string(timeline.OverlapFIFO))
	v.SetDefault("normalize", false)
	v.SetDefault("output", "table")
	v.SetDefault("concurrency", 4)
	v.SetDefault("order", model.DefaultOrder)
	v.SetDefault("colors", model.DefaultColors)

	style := chart.DefaultStyle()
	v.SetDefault("chart.format", "text")
	v.SetDefault("chart.width", style.Width)
	v.SetDefault("chart.row_height", style.RowHeight)
	v.SetDefault("chart.binary_color", style.BinaryColor)
	v.SetDefault("chart.reverse", true)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetDefault("log.format", string(util.FormatText))
	v.SetDefault("log.max_size_mb", 10)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age_days", 7)
}

// Load reads the configuration. An empty path uses defaults and the
// environment only; the file type follows the extension (yaml, toml, json).
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		util.LogDebugf("Loaded config file: %s", v.ConfigFileUsed())
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the enumerated settings
func (c *Config) Validate() error {
	if c.Stream == "" {
		return fmt.Errorf("stream must not be empty")
	}
	if _, err := parser.ParseDialect(c.Dialect); err != nil {
		return err
	}
	if _, err := timeline.ParseOverlapPolicy(c.Overlap); err != nil {
		return err
	}
	switch c.Chart.Format {
	case "svg", "text", "none":
	default:
		return fmt.Errorf("unknown chart format %q (svg, text, none)", c.Chart.Format)
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1, got %d", c.Concurrency)
	}
	return nil
}

// TimelineOptions are the reconstruction options for the configured stream
func (c *Config) TimelineOptions() timeline.Options {
	overlap, _ := timeline.ParseOverlapPolicy(c.Overlap)
	return timeline.Options{
		Stream:   c.Stream,
		Sentinel: c.Sentinel,
		Overlap:  overlap,
	}
}

// ParserOptions are the parse options; Streams is left to the caller
func (c *Config) ParserOptions() parser.Options {
	dialect, _ := parser.ParseDialect(c.Dialect)
	return parser.Options{Dialect: dialect}
}

// DisplayOrder ranks stage keys for output
func (c *Config) DisplayOrder() model.DisplayOrder {
	return model.NewDisplayOrder(c.Order...)
}

// Style is the chart style for the given title
func (c *Config) Style(title string) chart.Style {
	return chart.Style{
		Title:       title,
		Width:       c.Chart.Width,
		RowHeight:   c.Chart.RowHeight,
		Colors:      c.Colors,
		BinaryColor: c.Chart.BinaryColor,
	}
}

// LoggerConfig is the logger setup; debug forces debug level on the console
func (c *Config) LoggerConfig(debug bool) util.LoggerConfig {
	level := c.Log.Level
	if debug {
		level = "debug"
	}
	return util.LoggerConfig{
		Level:      level,
		File:       c.Log.File,
		Format:     util.LogFormat(c.Log.Format),
		Console:    debug,
		MaxSizeMB:  c.Log.MaxSizeMB,
		MaxBackups: c.Log.MaxBackups,
		MaxAgeDays: c.Log.MaxAgeDays,
	}
}
