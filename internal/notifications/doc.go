// Package notifications delivers user-facing push notifications via ntfy
// and streams copy progress without blocking the worker.
package notifications
