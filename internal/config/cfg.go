// Package config loads the editor configuration: YAML on top of embedded
// defaults, validated after every layer.
package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	yaml "gopkg.in/yaml.v3"

	"github.com/csheth/pagewright/internal/overflow"
)

//go:embed config.yaml
var defaults []byte

type (
	PageConfig struct {
		Preset         string  `yaml:"preset" validate:"oneof=a4 letter custom"`
		HeightMM       float64 `yaml:"height_mm" validate:"gte=0"`
		WidthMM        float64 `yaml:"width_mm" validate:"gte=0"`
		MarginTopMM    float64 `yaml:"margin_top_mm" validate:"gte=0"`
		MarginBottomMM float64 `yaml:"margin_bottom_mm" validate:"gte=0"`
		MarginLeftMM   float64 `yaml:"margin_left_mm" validate:"gte=0"`
		MarginRightMM  float64 `yaml:"margin_right_mm" validate:"gte=0"`
		LineHeightMM   float64 `yaml:"line_height_mm" validate:"gte=0"`
		CellWidthMM    float64 `yaml:"cell_width_mm" validate:"gte=0"`
	}

	EditorConfig struct {
		Title        string        `yaml:"title"`
		LabelRefresh time.Duration `yaml:"label_refresh" validate:"min=1s"`
		HistoryLimit int           `yaml:"history_limit" validate:"gte=0,lte=1000"`
	}

	Config struct {
		Version int           `yaml:"version" validate:"eq=1"`
		Page    PageConfig    `yaml:"page"`
		Editor  EditorConfig  `yaml:"editor"`
		Logging LoggingConfig `yaml:"logging"`
	}
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterStructValidation(func(sl validator.StructLevel) {
		page := sl.Current().Interface().(PageConfig)
		if page.Preset != "custom" {
			return
		}
		if page.HeightMM == 0 {
			sl.ReportError(page.HeightMM, "HeightMM", "height_mm", "required_custom", "")
		}
		if page.WidthMM == 0 {
			sl.ReportError(page.WidthMM, "WidthMM", "width_mm", "required_custom", "")
		}
	}, PageConfig{})
	return v
}

func unmarshalConfig(data []byte, cfg *Config) (*Config, error) {
	// Unknown keys are typos more often than not, refuse them.
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration data: %w", err)
	}
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// LoadConfiguration reads the file at path over the built-in defaults. An
// empty path returns the defaults.
func LoadConfiguration(path string) (*Config, error) {
	cfg, err := unmarshalConfig(defaults, &Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to process default configuration: %w", err)
	}
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if cfg, err = unmarshalConfig(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to process configuration file: %w", err)
	}
	return cfg, nil
}

// Defaults returns the built-in configuration file.
func Defaults() []byte { return bytes.Clone(defaults) }

// Dump renders cfg as YAML.
func Dump(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(*cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config to yaml: %w", err)
	}
	return data, nil
}

// PageSize resolves the configured page. Non-zero values override the preset.
func (p PageConfig) PageSize() (overflow.PageSize, error) {
	size, ok := overflow.Preset(p.Preset)
	if p.Preset == "custom" {
		size, ok = overflow.A4, true
	}
	if !ok {
		return overflow.PageSize{}, fmt.Errorf("unknown page preset %q", p.Preset)
	}
	override := func(dst *float64, v float64) {
		if v > 0 {
			*dst = v
		}
	}
	override(&size.HeightMM, p.HeightMM)
	override(&size.WidthMM, p.WidthMM)
	override(&size.MarginTopMM, p.MarginTopMM)
	override(&size.MarginBottomMM, p.MarginBottomMM)
	override(&size.MarginLeftMM, p.MarginLeftMM)
	override(&size.MarginRightMM, p.MarginRightMM)
	override(&size.LineHeightMM, p.LineHeightMM)
	override(&size.CellWidthMM, p.CellWidthMM)
	return size, nil
}

// Capacity is the page capacity in rows and columns.
func (p PageConfig) Capacity() (overflow.Capacity, error) {
	size, err := p.PageSize()
	if err != nil {
		return overflow.Capacity{}, err
	}
	return size.Capacity()
}
