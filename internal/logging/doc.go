// Package logging assembles structured slog loggers used across fileconv.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so flow code can tag log lines
// with the stage and per-attempt request id. The console handler folds the
// component, stage and request id into a compact subject so interactive output
// stays readable while the JSON handler keeps every key for machine parsing.
//
// Prefer these constructors over hand-rolled slog setup.
package logging
