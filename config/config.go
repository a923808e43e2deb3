// Package config loads service settings from an optional YAML file and
// PROPOSAL_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/viper"

	"proposalbuilder/services"
)

// Config holds the service settings.
type Config struct {
	DefaultMarkup  float64               `mapstructure:"default_markup"`
	GlobalMarkup   services.GlobalMarkup `mapstructure:"global_markup"`
	CurrencySymbol string                `mapstructure:"currency_symbol"`
	LogLevel       string                `mapstructure:"log_level"`
	LogFormat      string                `mapstructure:"log_format"`
	SeedCatalog    bool                  `mapstructure:"seed_catalog"`
}

// Load reads proposalbuilder.yaml from dir when present. A missing file is not
// an error; defaults and environment overrides still apply.
func Load(dir string) (Config, error) {
	v := viper.New()
	v.SetConfigName("proposalbuilder")
	v.SetConfigType("yaml")
	if dir != "" {
		v.AddConfigPath(dir)
	}

	v.SetDefault("default_markup", services.DefaultMarkup)
	v.SetDefault("global_markup.enabled", false)
	v.SetDefault("global_markup.percentage", 0)
	v.SetDefault("currency_symbol", "$")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("seed_catalog", true)

	v.SetEnvPrefix("PROPOSAL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("reading config file : %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config to struct : %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects negative markups.
func (c Config) Validate() error {
	if c.DefaultMarkup < 0 {
		return fmt.Errorf("default_markup: %w", services.ErrNegativeMarkup)
	}
	if c.GlobalMarkup.Percentage < 0 {
		return fmt.Errorf("global_markup.percentage: %w", services.ErrNegativeMarkup)
	}
	return nil
}

// NewLogger creates a slog.Logger writing text or JSON to w at the given
// level. Unknown levels fall back to info.
func NewLogger(levelStr, formatStr string, w io.Writer) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(levelStr) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if formatStr == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}
