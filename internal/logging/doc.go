// Package logging assembles the structured slog loggers used across shuttle.
//
// It owns the console and JSON handlers, level plumbing, and context-aware
// helpers so worker code automatically tags log lines with queue item IDs and
// correlation IDs. A no-op logger is provided for tests and wiring code that
// cannot fail.
package logging
