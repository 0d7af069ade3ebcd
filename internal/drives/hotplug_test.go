package drives

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestRescanHandlerLogsDriveSet(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	handler := rescanHandler(logger, func() ([]Drive, error) {
		return []Drive{
			{Device: "/dev/sdb1", MountPoint: "/media/usb", Filesystem: "vfat"},
			{Device: "/dev/sdc1", MountPoint: "/media/backup", Filesystem: "ext4"},
		}, nil
	})
	handler(context.Background(), "/dev/sdb1", "add")

	out := buf.String()
	if !strings.Contains(out, "drive set changed") {
		t.Fatalf("expected rescan record, got %q", out)
	}
	if !strings.Contains(out, "/media/usb") || !strings.Contains(out, "/media/backup") {
		t.Fatalf("expected mount points in record, got %q", out)
	}
	if !strings.Contains(out, "action=add") || !strings.Contains(out, "drives=2") {
		t.Fatalf("expected action and drive count, got %q", out)
	}
}

func TestRescanHandlerReportsDetectFailure(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	handler := rescanHandler(logger, func() ([]Drive, error) {
		return nil, errors.New("mount table unreadable")
	})
	handler(context.Background(), "/dev/sdb1", "remove")

	out := buf.String()
	if !strings.Contains(out, "drive rescan failed") {
		t.Fatalf("expected failure record, got %q", out)
	}
	if strings.Contains(out, "drive set changed") {
		t.Fatalf("failure must not report a drive set, got %q", out)
	}
}
