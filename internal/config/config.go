// Package config holds the application configuration: the Config struct
// with defaults and validation, and a viper-backed loader that merges
// config files, WASL_ environment variables, and command-line flags.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/atlasocr/wasl/internal/extract"
	"github.com/atlasocr/wasl/internal/layout"
	"github.com/atlasocr/wasl/internal/ocr/tesseract"
)

// DefaultTemplatesPath is the bundled Moroccan template set, relative to
// the working directory.
const DefaultTemplatesPath = "assets/templates/morocco_templates.json"

// Log level values accepted by Validate.
const (
	debugLevel = "debug"
	infoLevel  = "info"
	warnLevel  = "warn"
	errorLevel = "error"
)

// Config is the complete configuration for the wasl application. It covers
// all commands (extract, scan, templates, serve) and is populated from
// configuration files, environment variables, and command-line flags.
type Config struct {
	// Global settings
	TemplatesPath string `mapstructure:"templates_path" yaml:"templates_path" json:"templates_path"`
	LogLevel      string `mapstructure:"log_level"      yaml:"log_level"      json:"log_level"`
	Verbose       bool   `mapstructure:"verbose"        yaml:"verbose"        json:"verbose"`

	// Recognition backend
	OCR OCRConfig `mapstructure:"ocr" yaml:"ocr" json:"ocr"`

	// Extraction run settings
	Extract ExtractConfig `mapstructure:"extract" yaml:"extract" json:"extract"`

	// Script classifier tuning for auto-layout scans
	Layout LayoutConfig `mapstructure:"layout" yaml:"layout" json:"layout"`

	// Output formatting
	Output OutputConfig `mapstructure:"output" yaml:"output" json:"output"`

	// HTTP server settings (for the serve command)
	Server ServerConfig `mapstructure:"server" yaml:"server" json:"server"`
}

// OCRConfig selects and tunes the Tesseract backend.
type OCRConfig struct {
	// Backend is one of "auto", "cli", "lib". Auto prefers the linked
	// library when the build carries it and falls back to the binary.
	Backend    string `mapstructure:"backend"     yaml:"backend"     json:"backend"`
	Binary     string `mapstructure:"binary"      yaml:"binary"      json:"binary"`
	Tessdata   string `mapstructure:"tessdata"    yaml:"tessdata"    json:"tessdata"`
	TimeoutSec int    `mapstructure:"timeout_sec" yaml:"timeout_sec" json:"timeout_sec"`
}

// ExtractConfig contains extraction run settings.
type ExtractConfig struct {
	Workers int `mapstructure:"workers" yaml:"workers" json:"workers"`
}

// LayoutConfig tunes the projection script classifier.
type LayoutConfig struct {
	KernelWidth  int `mapstructure:"kernel_width"  yaml:"kernel_width"  json:"kernel_width"`
	KernelHeight int `mapstructure:"kernel_height" yaml:"kernel_height" json:"kernel_height"`
	Iterations   int `mapstructure:"iterations"    yaml:"iterations"    json:"iterations"`
	MinArea      int `mapstructure:"min_area"      yaml:"min_area"      json:"min_area"`
}

// OutputConfig contains output formatting settings.
type OutputConfig struct {
	Format string `mapstructure:"format" yaml:"format" json:"format"`
	File   string `mapstructure:"file"   yaml:"file"   json:"file"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host            string `mapstructure:"host"             yaml:"host"             json:"host"`
	Port            int    `mapstructure:"port"             yaml:"port"             json:"port"`
	CORSOrigin      string `mapstructure:"cors_origin"      yaml:"cors_origin"      json:"cors_origin"`
	MaxUploadMB     int    `mapstructure:"max_upload_mb"    yaml:"max_upload_mb"    json:"max_upload_mb"`
	TimeoutSec      int    `mapstructure:"timeout_sec"      yaml:"timeout_sec"      json:"timeout_sec"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout" json:"shutdown_timeout"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() Config {
	return Config{
		TemplatesPath: DefaultTemplatesPath,
		LogLevel:      infoLevel,
		Verbose:       false,
		OCR: OCRConfig{
			Backend:    tesseract.KindAuto,
			TimeoutSec: 30,
		},
		Extract: ExtractConfig{
			Workers: extract.DefaultWorkers,
		},
		Layout: defaultLayoutConfig(),
		Output: OutputConfig{
			Format: "text",
		},
		Server: ServerConfig{
			Host:            "localhost",
			Port:            8080,
			CORSOrigin:      "*",
			MaxUploadMB:     50,
			TimeoutSec:      30,
			ShutdownTimeout: 10,
		},
	}
}

// defaultLayoutConfig mirrors the classifier's own defaults so the two
// stay in sync.
func defaultLayoutConfig() LayoutConfig {
	cfg := layout.DefaultConfig()
	return LayoutConfig{
		KernelWidth:  cfg.KernelWidth,
		KernelHeight: cfg.KernelHeight,
		Iterations:   cfg.Iterations,
		MinArea:      cfg.MinArea,
	}
}

// Validate validates the configuration and returns the first error found.
func (c *Config) Validate() error {
	if err := c.validateEnums(); err != nil {
		return err
	}
	return c.validateBounds()
}

// validateEnums checks the closed-set string settings.
func (c *Config) validateEnums() error {
	validLogLevels := []string{debugLevel, infoLevel, warnLevel, errorLevel}
	if !contains(validLogLevels, c.LogLevel) {
		return fmt.Errorf("invalid log level: %s (must be one of: %s)", c.LogLevel, strings.Join(validLogLevels, ", "))
	}

	validFormats := []string{"text", "json"}
	if c.Output.Format != "" && !contains(validFormats, c.Output.Format) {
		return fmt.Errorf("invalid output format: %s (must be one of: %s)", c.Output.Format, strings.Join(validFormats, ", "))
	}

	validBackends := []string{tesseract.KindAuto, tesseract.KindCLI, tesseract.KindLib}
	if c.OCR.Backend != "" && !contains(validBackends, c.OCR.Backend) {
		return fmt.Errorf("invalid ocr backend: %s (must be one of: %s)", c.OCR.Backend, strings.Join(validBackends, ", "))
	}

	return nil
}

// validateBounds checks the numeric settings.
func (c *Config) validateBounds() error {
	if c.OCR.TimeoutSec <= 0 {
		return fmt.Errorf("invalid ocr timeout: %d (must be positive)", c.OCR.TimeoutSec)
	}
	if c.Extract.Workers <= 0 {
		return fmt.Errorf("invalid extract workers: %d (must be positive)", c.Extract.Workers)
	}
	if c.Layout.KernelWidth <= 0 || c.Layout.KernelHeight <= 0 {
		return fmt.Errorf("invalid layout kernel: %dx%d (both sides must be positive)",
			c.Layout.KernelWidth, c.Layout.KernelHeight)
	}
	if c.Layout.Iterations <= 0 {
		return fmt.Errorf("invalid layout iterations: %d (must be positive)", c.Layout.Iterations)
	}
	if c.Layout.MinArea < 0 {
		return fmt.Errorf("invalid layout min area: %d (must not be negative)", c.Layout.MinArea)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d (must be between 1 and 65535)", c.Server.Port)
	}
	if c.Server.MaxUploadMB <= 0 {
		return fmt.Errorf("invalid max upload size: %d (must be positive)", c.Server.MaxUploadMB)
	}
	if c.Server.TimeoutSec <= 0 {
		return fmt.Errorf("invalid server timeout: %d (must be positive)", c.Server.TimeoutSec)
	}
	return nil
}

// TesseractOptions converts the OCR section to backend construction options.
func (c *Config) TesseractOptions() tesseract.Options {
	return tesseract.Options{
		Binary:   c.OCR.Binary,
		Tessdata: c.OCR.Tessdata,
		Timeout:  time.Duration(c.OCR.TimeoutSec) * time.Second,
	}
}

// ToLayoutConfig converts the layout section to classifier configuration.
func (c *Config) ToLayoutConfig() layout.Config {
	cfg := layout.DefaultConfig()
	if c.Layout.KernelWidth > 0 {
		cfg.KernelWidth = c.Layout.KernelWidth
	}
	if c.Layout.KernelHeight > 0 {
		cfg.KernelHeight = c.Layout.KernelHeight
	}
	if c.Layout.Iterations > 0 {
		cfg.Iterations = c.Layout.Iterations
	}
	if c.Layout.MinArea > 0 {
		cfg.MinArea = c.Layout.MinArea
	}
	return cfg
}

// ToExtractConfig converts the config to the extraction engine configuration.
func (c *Config) ToExtractConfig() extract.Config {
	cfg := extract.DefaultConfig()
	if c.Extract.Workers > 0 {
		cfg.Workers = c.Extract.Workers
	}
	cfg.Layout = c.ToLayoutConfig()
	return cfg
}

// contains checks if a slice contains a string.
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
