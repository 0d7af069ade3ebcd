package drives

import (
	"context"
	"log/slog"
	"strings"

	"shuttle/internal/config"
	"shuttle/internal/logging"
	"shuttle/internal/services"
)

// DetectFunc enumerates candidate drives. It matches Detect.
type DetectFunc func() ([]Drive, error)

// Selector resolves the destination root for organized media: the
// configured directory when one is set, otherwise the first detected
// removable drive.
type Selector struct {
	cfg    *config.Config
	logger *slog.Logger
	detect DetectFunc
}

// NewSelector builds a selector backed by the system mount table.
func NewSelector(cfg *config.Config, logger *slog.Logger) *Selector {
	return NewSelectorWithDetect(cfg, logger, Detect)
}

// NewSelectorWithDetect allows injecting drive detection (used in tests).
func NewSelectorWithDetect(cfg *config.Config, logger *slog.Logger, detect DetectFunc) *Selector {
	return &Selector{
		cfg:    cfg,
		logger: logging.NewComponentLogger(logger, "drive-selector"),
		detect: detect,
	}
}

// Destination returns the library root. It fails with a destination
// unavailable error when nothing is configured and no drive is mounted.
func (s *Selector) Destination(ctx context.Context) (string, error) {
	if configured := strings.TrimSpace(s.cfg.Paths.DestinationDir); configured != "" {
		return configured, nil
	}

	candidates, err := s.detect()
	if err != nil {
		return "", services.Wrap(services.ErrUnavailable, "destination", "detect drives", "Failed to read the mount table", err)
	}
	if len(candidates) == 0 {
		return "", services.Wrap(services.ErrUnavailable, "destination", "select drive", "No removable drive is mounted and no destination_dir is configured", nil)
	}

	chosen := candidates[0]
	logging.WithContext(ctx, s.logger).Debug("selected destination drive",
		logging.String("mount_point", chosen.MountPoint),
		logging.String("device", chosen.Device),
	)
	return chosen.MountPoint, nil
}
