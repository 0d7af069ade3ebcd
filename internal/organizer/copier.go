package organizer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// copyChunkSize is the unit of transfer and of progress reporting.
const copyChunkSize = 1 << 20

// tempSuffix marks an in-flight copy. A leftover temp file from an
// interrupted run is simply truncated by the next attempt.
const tempSuffix = ".tmp"

// ProgressFunc receives cumulative byte counts after every chunk. total is
// the source size at the start of the copy.
type ProgressFunc func(copied, total int64)

// Percent converts a byte count pair into a whole progress percentage.
// An empty source always reads as zero.
func Percent(copied, total int64) int {
	if total <= 0 {
		return 0
	}
	return int(copied * 100 / total)
}

// CopyFile copies src to dst through a temp file that is renamed into
// place only after all bytes are written and synced, so dst never holds a
// partial copy. onProgress fires once per chunk; an empty source still
// gets a single zero report. Cancellation is checked only before the
// stream starts; once underway the copy runs to completion.
func CopyFile(ctx context.Context, src, dst string, onProgress ProgressFunc) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}
	total := info.Size()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("create destination directory: %w", err)
	}

	tmpPath := dst + tempSuffix
	out, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	cleanup := func(cause error) error {
		out.Close()
		_ = os.Remove(tmpPath)
		return cause
	}

	var copied int64
	buf := make([]byte, copyChunkSize)
	for {
		n, readErr := in.Read(buf)
		if n > 0 {
			if _, writeErr := out.Write(buf[:n]); writeErr != nil {
				return cleanup(fmt.Errorf("write chunk: %w", writeErr))
			}
			copied += int64(n)
			if onProgress != nil {
				onProgress(copied, total)
			}
		}
		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				break
			}
			return cleanup(fmt.Errorf("read chunk: %w", readErr))
		}
	}
	if copied == 0 && onProgress != nil {
		onProgress(0, total)
	}

	if err := out.Sync(); err != nil {
		return cleanup(fmt.Errorf("sync temp file: %w", err))
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, dst); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename into place: %w", err)
	}
	return nil
}
