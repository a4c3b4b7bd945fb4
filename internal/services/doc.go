// Package services defines shared utilities consumed by the flow stages and
// the conversion service client.
//
// Key responsibilities:
//   - Context helpers that stamp stage names and per-attempt correlation
//     identifiers for logging.
//   - Structured error markers plus the Wrap helper that let callers tell a
//     transport failure from an explicit server rejection.
package services
