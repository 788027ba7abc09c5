// Package logging assembles structured slog loggers and formatting helpers used
// across the karaoke daemon and CLI.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so request handlers and the queue
// engine automatically tag log lines with queue ids, operations, and
// correlation ids. The package also provides a no-op logger for tests and
// wiring code that cannot fail.
package logging
