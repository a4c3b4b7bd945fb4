// Package history persists upload and conversion attempts in a local SQLite
// database so separate command invocations can continue the same flow.
//
// The most recent successful upload is what `fileconv convert` restores, and
// the most recent successful conversion is what `fileconv download` fetches.
// Records are written by Recorder, which plugs into the session machine.
//
// The schema lives in schema.sql and is embedded into the binary. When the
// schema changes, bump schemaVersion; mismatched databases are rejected with
// ErrSchemaMismatch and must be cleared with `fileconv history clear`.
//
// ConversionLock guards a state directory with an advisory file lock so only
// one conversion request is in flight per user across processes.
package history
