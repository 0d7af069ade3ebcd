package drives

import (
	"context"
	"log/slog"
	"strings"

	"shuttle/internal/logging"
)

// RescanOnChange returns a monitor callback that re-reads the mount table
// after a block device event and logs the drives now available. Requeued
// items re-resolve their destination on every attempt, so surfacing the
// current drive set is all the hotplug path needs to do.
func RescanOnChange(logger *slog.Logger) func(ctx context.Context, device, action string) {
	return rescanHandler(logger, Detect)
}

func rescanHandler(logger *slog.Logger, detect DetectFunc) func(ctx context.Context, device, action string) {
	log := logging.NewComponentLogger(logger, "drives")
	return func(ctx context.Context, device, action string) {
		detected, err := detect()
		if err != nil {
			logging.WithContext(ctx, log).Warn("drive rescan failed",
				logging.String("device", device),
				logging.String("action", action),
				logging.Error(err),
			)
			return
		}

		mounts := make([]string, 0, len(detected))
		for _, drive := range detected {
			mounts = append(mounts, drive.MountPoint)
		}
		logging.WithContext(ctx, log).Info("drive set changed",
			logging.String("device", device),
			logging.String("action", action),
			logging.Int("drives", len(detected)),
			logging.String("mount_points", strings.Join(mounts, ",")),
		)
	}
}
