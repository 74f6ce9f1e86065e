// Package config loads the CLI settings: built-in defaults, then an optional YAML file,
// then TELESPORT_* environment variables. Command-line flags are applied last by the
// caller.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/Akima-zed/teleSport/src/analysis"
	"github.com/Akima-zed/teleSport/src/logging"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "TELESPORT_"

// Config holds the settings shared by all commands.
type Config struct {
	DataFile     string        `yaml:"data_file" env:"DATA_FILE"`
	DataURL      string        `yaml:"data_url" env:"DATA_URL"`
	SortBy       string        `yaml:"sort_by" env:"SORT_BY"`
	LogLevel     string        `yaml:"log_level" env:"LOG_LEVEL"`
	ChartWidth   int           `yaml:"chart_width" env:"CHART_WIDTH"`
	FetchTimeout time.Duration `yaml:"fetch_timeout" env:"FETCH_TIMEOUT"`
	OutDir       string        `yaml:"out_dir" env:"OUT_DIR"`
	Palette      []string      `yaml:"palette" env:"PALETTE"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		DataFile:     "assets/mock/olympic.json",
		SortBy:       analysis.ByTotalMedalsDescending.String(),
		LogLevel:     "info",
		ChartWidth:   1100,
		FetchTimeout: 10 * time.Second,
		OutDir:       ".",
	}
}

// Load builds the configuration from defaults, the YAML file at path (skipped when path
// is empty) and the environment. The result is not validated; call Validate after
// applying flags.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := decodeYAML(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := ParseEnv(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func decodeYAML(b []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// ParseEnv overlays TELESPORT_* variables onto target. Unset variables leave fields alone.
func ParseEnv(target any) error {
	if err := env.ParseWithOptions(target, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Validate rejects settings no command can run with.
func (c Config) Validate() error {
	var errs []error
	if c.DataFile == "" && c.DataURL == "" {
		errs = append(errs, errors.New("one of data_file or data_url is required"))
	}
	if _, err := analysis.ParseSortCriterion(c.SortBy); err != nil {
		errs = append(errs, err)
	}
	if _, ok := logging.ParseLevel(c.LogLevel); !ok {
		errs = append(errs, fmt.Errorf("unknown log level %q", c.LogLevel))
	}
	if c.ChartWidth <= 0 {
		errs = append(errs, fmt.Errorf("chart_width must be positive, got %d", c.ChartWidth))
	}
	if c.FetchTimeout <= 0 {
		errs = append(errs, fmt.Errorf("fetch_timeout must be positive, got %s", c.FetchTimeout))
	}
	return errors.Join(errs...)
}

// Criterion is the parsed SortBy.
func (c Config) Criterion() analysis.SortCriterion {
	s, err := analysis.ParseSortCriterion(c.SortBy)
	if err != nil {
		return analysis.ByTotalMedalsDescending
	}
	return s
}
