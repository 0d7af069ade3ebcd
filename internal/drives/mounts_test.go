package drives

import (
	"strings"
	"testing"
)

const mountTable = `sysfs /sys sysfs rw,nosuid,nodev,noexec 0 0
/dev/nvme0n1p2 / ext4 rw,relatime 0 0
/dev/sda1 /media/usb-drive exfat rw,nosuid,nodev 0 0
/dev/sdb1 /run/media/alex/My\040Passport ntfs3 rw,nosuid 0 0
/dev/sdc1 /mnt/backup ext4 rw 0 0
tmpfs /run tmpfs rw,nosuid,nodev 0 0
`

func TestParseMountsFiltersByRoot(t *testing.T) {
	drives, err := parseMounts(strings.NewReader(mountTable), defaultMountRoots)
	if err != nil {
		t.Fatalf("parseMounts failed: %v", err)
	}
	if len(drives) != 3 {
		t.Fatalf("expected 3 removable mounts, got %+v", drives)
	}
	if drives[0].MountPoint != "/media/usb-drive" || drives[0].Device != "/dev/sda1" {
		t.Fatalf("unexpected first drive: %+v", drives[0])
	}
	if drives[1].MountPoint != "/run/media/alex/My Passport" {
		t.Fatalf("octal escapes not decoded: %+v", drives[1])
	}
	if drives[2].Filesystem != "ext4" {
		t.Fatalf("filesystem not captured: %+v", drives[2])
	}
}

func TestParseMountsIgnoresRootItself(t *testing.T) {
	table := "/dev/sda1 /mnt ext4 rw 0 0\n"
	drives, err := parseMounts(strings.NewReader(table), defaultMountRoots)
	if err != nil {
		t.Fatalf("parseMounts failed: %v", err)
	}
	if len(drives) != 0 {
		t.Fatalf("a bare mount root is not a drive: %+v", drives)
	}
}
