package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateConversion(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return c.validateFormats()
}

func (c *Config) validateServer() error {
	parsed, err := url.Parse(c.Server.BaseURL)
	if err != nil {
		return fmt.Errorf("server.base_url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("server.base_url must use http or https, got %q", c.Server.BaseURL)
	}
	if parsed.Host == "" {
		return fmt.Errorf("server.base_url must include a host, got %q", c.Server.BaseURL)
	}
	if c.Server.RequestTimeout < 0 {
		return errors.New("server.request_timeout must be zero or positive")
	}
	return nil
}

func (c *Config) validateConversion() error {
	if c.Conversion.ProgressCap >= 100 {
		return errors.New("conversion.progress_cap must be below 100")
	}
	if c.Conversion.ProgressStep > c.Conversion.ProgressCap {
		return errors.New("conversion.progress_step must not exceed conversion.progress_cap")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}

func (c *Config) validateFormats() error {
	for category, entries := range c.Formats {
		seen := make(map[string]struct{}, len(entries))
		for _, entry := range entries {
			if _, dup := seen[entry.Code]; dup {
				return fmt.Errorf("formats.%s: duplicate code %q", category, entry.Code)
			}
			seen[entry.Code] = struct{}{}
			if strings.ContainsAny(entry.Code, " /\\") {
				return fmt.Errorf("formats.%s: invalid code %q", category, entry.Code)
			}
		}
	}
	return nil
}
