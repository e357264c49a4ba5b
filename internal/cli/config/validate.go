package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/leapstack-labs/dataexplorer/internal/cli/output"
)

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.LocalPath == "" {
		return fmt.Errorf("local_path is required")
	}
	if c.FetchTimeout <= 0 {
		return fmt.Errorf("fetch_timeout must be positive, got %s", c.FetchTimeout)
	}
	if c.DataURL != "" {
		u, err := url.Parse(c.DataURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("data_url must be an http(s) URL, got %q", c.DataURL)
		}
	}

	for key, value := range map[string]string{
		"filter_column": c.FilterColumn,
		"x_column":      c.XColumn,
		"y_column":      c.YColumn,
		"color_column":  c.ColorColumn,
	} {
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("%s is required", key)
		}
	}

	if !output.Mode(c.OutputFormat).Valid() {
		return fmt.Errorf("output must be one of %v, got %q", output.Modes(), c.OutputFormat)
	}

	ui := c.GetUIConfig()
	if ui.Port < 1 || ui.Port > 65535 {
		return fmt.Errorf("ui.port must be between 1 and 65535, got %d", ui.Port)
	}
	if ui.SessionTTL < 0 {
		return fmt.Errorf("ui.session_ttl must not be negative, got %s", ui.SessionTTL)
	}
	return nil
}
