// Package config provides configuration management for the dataexplorer CLI.
package config

import (
	"log/slog"
	"time"

	"github.com/leapstack-labs/dataexplorer/internal/dashboard"
	"github.com/leapstack-labs/dataexplorer/internal/loader"
)

// UIConfig holds configuration for the UI server.
type UIConfig struct {
	Port          int           `koanf:"port" yaml:"port"`
	AutoOpen      bool          `koanf:"auto_open" yaml:"auto_open"`
	Watch         bool          `koanf:"watch" yaml:"watch"`
	SessionSecret string        `koanf:"session_secret" yaml:"session_secret,omitempty"`
	SessionTTL    time.Duration `koanf:"session_ttl" yaml:"session_ttl"`
}

// DefaultUIConfig returns a UIConfig with default values.
func DefaultUIConfig() *UIConfig {
	return &UIConfig{
		Port:       DefaultPort,
		AutoOpen:   false,
		Watch:      true,
		SessionTTL: dashboard.DefaultSessionTTL,
	}
}

// GetUIConfig returns the UI config with defaults applied for any unset values.
func (c *Config) GetUIConfig() *UIConfig {
	if c.UI == nil {
		return DefaultUIConfig()
	}
	ui := c.UI
	if ui.Port == 0 {
		ui.Port = DefaultPort
	}
	if ui.SessionTTL == 0 {
		ui.SessionTTL = dashboard.DefaultSessionTTL
	}
	return ui
}

// Config holds all CLI configuration options.
type Config struct {
	DataURL      string        `koanf:"data_url" yaml:"data_url,omitempty"`
	LocalPath    string        `koanf:"local_path" yaml:"local_path"`
	FetchTimeout time.Duration `koanf:"fetch_timeout" yaml:"fetch_timeout"`
	FilterColumn string        `koanf:"filter_column" yaml:"filter_column"`
	XColumn      string        `koanf:"x_column" yaml:"x_column"`
	YColumn      string        `koanf:"y_column" yaml:"y_column"`
	ColorColumn  string        `koanf:"color_column" yaml:"color_column"`
	SizeColumn   string        `koanf:"size_column" yaml:"size_column"`
	Title        string        `koanf:"title" yaml:"title"`
	LogLevel     slog.Level    `koanf:"log_level" yaml:"log_level"`
	OutputFormat string        `koanf:"output" yaml:"output"`
	UI           *UIConfig     `koanf:"ui" yaml:"ui"`

	// ProjectRoot is the directory relative paths are resolved against: the
	// config file's directory, or the working directory without one.
	ProjectRoot string `koanf:"-" yaml:"-"`
}

// Default configuration values.
const (
	DefaultLocalPath = "data/sample.csv"
	DefaultPort      = 8765
	DefaultOutput    = "auto" // Auto-detect: TTY=text, non-TTY=markdown
	DefaultLogLevel  = "info"
)

// Environment variables read directly, outside the DATAEXPLORER_ prefix
// mapping.
const (
	EnvPrefix        = "DATAEXPLORER_"
	EnvDataURL       = "DATAEXPLORER_DATA_URL"
	EnvLegacyDataURL = "POSIT_DATA_URL"
)

// Bindings returns the dashboard column bindings.
func (c *Config) Bindings() dashboard.Bindings {
	return dashboard.Bindings{
		FilterColumn: c.FilterColumn,
		X:            c.XColumn,
		Y:            c.YColumn,
		Color:        c.ColorColumn,
		Size:         c.SizeColumn,
		Title:        c.Title,
	}
}

// Source returns the loader source: remote with local fallback when a data
// URL is configured, otherwise the local file.
func (c *Config) Source() loader.Source {
	return loader.NewSource(c.DataURL, c.LocalPath, c.FetchTimeout)
}
