// Package services defines the error taxonomy and context annotations shared
// by worker stages.
//
// Stage code wraps failures with a sentinel marker so the workflow manager can
// classify an error (transient destination outage vs. terminal task failure)
// without string matching. Context helpers carry the queue item ID and the
// per-dispatch correlation ID into structured logs.
package services
