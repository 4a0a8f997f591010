// Package logging assembles structured slog loggers and formatting helpers used
// across formatrisk.
//
// It owns the console and JSON handlers, tees terminal output into an optional
// JSON log file, and exposes context-aware helpers so pipeline code can tag
// log lines with run IDs, accessions, and stages. A no-op logger is provided
// for tests and wiring code that cannot fail.
package logging
