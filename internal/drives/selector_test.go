package drives_test

import (
	"context"
	"errors"
	"testing"

	"shuttle/internal/drives"
	"shuttle/internal/logging"
	"shuttle/internal/services"
	"shuttle/internal/testsupport"
)

func TestDestinationPrefersConfiguredDirectory(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	selector := drives.NewSelectorWithDetect(cfg, logging.NewNop(), func() ([]drives.Drive, error) {
		t.Fatal("configured destination must not trigger detection")
		return nil, nil
	})

	got, err := selector.Destination(context.Background())
	if err != nil {
		t.Fatalf("Destination failed: %v", err)
	}
	if got != cfg.Paths.DestinationDir {
		t.Fatalf("expected configured dir %q, got %q", cfg.Paths.DestinationDir, got)
	}
}

func TestDestinationFallsBackToFirstDrive(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Paths.DestinationDir = ""
	selector := drives.NewSelectorWithDetect(cfg, logging.NewNop(), func() ([]drives.Drive, error) {
		return []drives.Drive{
			{Device: "/dev/sda1", MountPoint: "/media/first"},
			{Device: "/dev/sdb1", MountPoint: "/media/second"},
		}, nil
	})

	got, err := selector.Destination(context.Background())
	if err != nil {
		t.Fatalf("Destination failed: %v", err)
	}
	if got != "/media/first" {
		t.Fatalf("expected first detected drive, got %q", got)
	}
}

func TestDestinationUnavailableWhenNothingMounted(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Paths.DestinationDir = ""
	selector := drives.NewSelectorWithDetect(cfg, logging.NewNop(), func() ([]drives.Drive, error) {
		return nil, nil
	})

	_, err := selector.Destination(context.Background())
	if !services.IsUnavailable(err) {
		t.Fatalf("expected destination unavailable, got %v", err)
	}
}

func TestDestinationDetectFailureIsUnavailable(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Paths.DestinationDir = ""
	selector := drives.NewSelectorWithDetect(cfg, logging.NewNop(), func() ([]drives.Drive, error) {
		return nil, errors.New("mount table unreadable")
	})

	_, err := selector.Destination(context.Background())
	if !services.IsUnavailable(err) {
		t.Fatalf("expected destination unavailable, got %v", err)
	}
}
