package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound marks a source path that vanished before processing.
	ErrNotFound = errors.New("not found")
	// ErrUnavailable marks a destination that is missing or not writable;
	// the worker requeues the task instead of failing it.
	ErrUnavailable = errors.New("destination unavailable")
	// ErrValidation marks bad task input.
	ErrValidation = errors.New("validation error")
	// ErrConfiguration marks missing or inconsistent configuration.
	ErrConfiguration = errors.New("configuration error")
	// ErrTransient marks failures worth surfacing but not classifying further.
	ErrTransient = errors.New("transient failure")
)

// Wrap tags an error with a classification marker and stage context. The
// marker should be one of the sentinels above; errors.Is against the sentinel
// recovers the classification later.
func Wrap(marker error, stage, operation, message string, err error) error {
	if marker == nil {
		marker = ErrTransient
	}
	detail := buildDetail(stage, operation, message)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// IsUnavailable reports whether err represents a destination outage the
// worker should retry rather than fail.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
