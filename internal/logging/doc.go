// Package logging provides the leveled logger shared by the asset store,
// the thumbnail pipeline and the host CLI.
//
// Levels, lowest first:
//   - DEBUG: per-request tracing and phase timings
//   - INFO: startup and configuration
//   - WARN: degraded operations (fallbacks, failed cache writes)
//   - ERROR: failed requests and ingestion errors
//   - FATAL: unrecoverable startup errors
//
// The level comes from the LOG_LEVEL environment variable, or DEBUG=1.
package logging
