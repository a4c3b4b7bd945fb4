// Package config loads, normalizes, and validates fileconv configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, applies an optional .env file and honours
// environment overrides such as FILECONV_SERVER_URL. The Config type
// centralizes every knob the CLI needs: where the conversion service lives,
// how the cosmetic progress indicator advances, where history and downloads
// are kept, and which target formats are offered per file category.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
