// Package logging assembles structured slog loggers and formatting helpers
// used across m4bind.
//
// It owns the configurable console/JSON handlers, centralizes level and
// output plumbing, and exposes context-aware helpers so pipeline code can
// automatically tag log lines with the running operation and workspace run
// ID. The package also provides a no-op logger for tests and wiring code that
// cannot fail.
package logging
