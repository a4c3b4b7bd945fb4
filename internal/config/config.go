package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Server contains connection settings for the conversion service.
type Server struct {
	BaseURL string `toml:"base_url"`
	// RequestTimeout is in seconds. Zero waits indefinitely.
	RequestTimeout int    `toml:"request_timeout"`
	UserAgent      string `toml:"user_agent"`
}

// Conversion contains the cosmetic progress and display timing.
type Conversion struct {
	ProgressIntervalMS int  `toml:"progress_interval_ms"`
	ProgressStep       int  `toml:"progress_step"`
	ProgressCap        int  `toml:"progress_cap"`
	SuccessDelayMS     int  `toml:"success_delay_ms"`
	FailureDelayMS     int  `toml:"failure_delay_ms"`
	Compress           bool `toml:"compress"`
}

// Paths contains local directories used by the client.
type Paths struct {
	StateDir    string `toml:"state_dir"`
	DownloadDir string `toml:"download_dir"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Metrics contains configuration for the Prometheus textfile export.
type Metrics struct {
	Textfile string `toml:"textfile"`
}

// FormatEntry is a single target format offered for a file category.
type FormatEntry struct {
	Code  string `toml:"code"`
	Label string `toml:"label"`
}

// Config encapsulates all configuration values for fileconv.
//
// Configuration sections by subsystem:
//   - Server: conversion service location and request timeout
//   - Conversion: progress indicator cadence and display delays
//   - Paths: state (history, lock, log) and download directories
//   - Logging: log format and level
//   - Metrics: optional Prometheus textfile output
//   - Formats: per-category target format overrides
type Config struct {
	Server     Server                   `toml:"server"`
	Conversion Conversion               `toml:"conversion"`
	Paths      Paths                    `toml:"paths"`
	Logging    Logging                  `toml:"logging"`
	Metrics    Metrics                  `toml:"metrics"`
	Formats    map[string][]FormatEntry `toml:"formats"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/fileconv/config.toml")
}

// Load locates, parses, and validates a configuration file. A .env file in the
// working directory is applied to the environment first; existing variables win.
// The returned config has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	_ = godotenv.Load()

	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("fileconv.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the state directory. The download directory is
// created lazily by the downloader.
func (c *Config) EnsureDirectories() error {
	if err := os.MkdirAll(c.Paths.StateDir, 0o755); err != nil {
		return fmt.Errorf("create directory %q: %w", c.Paths.StateDir, err)
	}
	return nil
}

// RequestTimeout returns the HTTP timeout. Zero means no timeout.
func (c *Config) RequestTimeout() time.Duration {
	if c.Server.RequestTimeout <= 0 {
		return 0
	}
	return time.Duration(c.Server.RequestTimeout) * time.Second
}

// ProgressInterval returns the progress tick interval.
func (c *Config) ProgressInterval() time.Duration {
	return time.Duration(c.Conversion.ProgressIntervalMS) * time.Millisecond
}

// SuccessDelay returns how long the completion message stays visible.
func (c *Config) SuccessDelay() time.Duration {
	return time.Duration(c.Conversion.SuccessDelayMS) * time.Millisecond
}

// FailureDelay returns how long a conversion error stays visible.
func (c *Config) FailureDelay() time.Duration {
	return time.Duration(c.Conversion.FailureDelayMS) * time.Millisecond
}

// HistoryPath returns the sqlite database location.
func (c *Config) HistoryPath() string {
	return filepath.Join(c.Paths.StateDir, "history.db")
}

// LockPath returns the conversion lock file location.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.StateDir, "convert.lock")
}

// LogPath returns the log file location.
func (c *Config) LogPath() string {
	return filepath.Join(c.Paths.StateDir, "fileconv.log")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
