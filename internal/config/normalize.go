package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizeServer(); err != nil {
		return err
	}
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeConversion()
	c.normalizeLogging()
	c.normalizeFormats()
	return nil
}

func (c *Config) normalizeServer() error {
	if value, ok := os.LookupEnv("FILECONV_SERVER_URL"); ok && strings.TrimSpace(value) != "" {
		c.Server.BaseURL = value
	}
	c.Server.BaseURL = strings.TrimRight(strings.TrimSpace(c.Server.BaseURL), "/")
	if c.Server.BaseURL == "" {
		c.Server.BaseURL = defaultServerBaseURL
	}
	if value, ok := os.LookupEnv("FILECONV_REQUEST_TIMEOUT"); ok && strings.TrimSpace(value) != "" {
		seconds, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("FILECONV_REQUEST_TIMEOUT: %w", err)
		}
		c.Server.RequestTimeout = seconds
	}
	c.Server.UserAgent = strings.TrimSpace(c.Server.UserAgent)
	if c.Server.UserAgent == "" {
		c.Server.UserAgent = defaultUserAgent
	}
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.DownloadDir) == "" {
		c.Paths.DownloadDir = defaultDownloadDir
	}
	if c.Paths.DownloadDir, err = expandPath(c.Paths.DownloadDir); err != nil {
		return fmt.Errorf("paths.download_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeConversion() {
	if c.Conversion.ProgressIntervalMS <= 0 {
		c.Conversion.ProgressIntervalMS = defaultProgressIntervalMS
	}
	if c.Conversion.ProgressStep <= 0 {
		c.Conversion.ProgressStep = defaultProgressStep
	}
	if c.Conversion.ProgressCap <= 0 {
		c.Conversion.ProgressCap = defaultProgressCap
	}
	if c.Conversion.SuccessDelayMS < 0 {
		c.Conversion.SuccessDelayMS = 0
	}
	if c.Conversion.FailureDelayMS < 0 {
		c.Conversion.FailureDelayMS = 0
	}
}

func (c *Config) normalizeLogging() {
	if value, ok := os.LookupEnv("FILECONV_LOG_LEVEL"); ok && strings.TrimSpace(value) != "" {
		c.Logging.Level = value
	}
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func (c *Config) normalizeFormats() {
	if len(c.Formats) == 0 {
		return
	}
	normalized := make(map[string][]FormatEntry, len(c.Formats))
	for category, entries := range c.Formats {
		key := strings.ToLower(strings.TrimSpace(category))
		if key == "" {
			continue
		}
		out := make([]FormatEntry, 0, len(entries))
		for _, entry := range entries {
			code := strings.ToLower(strings.TrimSpace(entry.Code))
			if code == "" {
				continue
			}
			label := strings.TrimSpace(entry.Label)
			if label == "" {
				label = strings.ToUpper(code)
			}
			out = append(out, FormatEntry{Code: code, Label: label})
		}
		normalized[key] = out
	}
	c.Formats = normalized
}
