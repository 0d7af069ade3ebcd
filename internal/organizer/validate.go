package organizer

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sys/unix"
)

const (
	writeProbeName     = ".shuttle-write-probe"
	writeProbeAttempts = 3
	writeProbeDelay    = 100 * time.Millisecond
)

// IsWritable reports whether dir accepts new files. Flaky mounts get a few
// chances before the directory is declared unwritable.
func IsWritable(ctx context.Context, dir string) bool {
	probe := filepath.Join(dir, writeProbeName)
	for attempt := 0; attempt < writeProbeAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return false
			case <-time.After(writeProbeDelay):
			}
		}
		f, err := os.OpenFile(probe, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err != nil {
			continue
		}
		f.Close()
		_ = os.Remove(probe)
		return true
	}
	return false
}

// FreeBytes returns the free space available to unprivileged writers on the
// filesystem holding dir.
func FreeBytes(dir string) (uint64, error) {
	var stat unix.Statfs_t
	if err := unix.Statfs(dir, &stat); err != nil {
		return 0, err
	}
	return stat.Bavail * uint64(stat.Bsize), nil
}
