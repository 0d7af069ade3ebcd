package drives

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

const procMountsPath = "/proc/mounts"

// defaultMountRoots are the directories where desktop automounters and
// manual mounts place removable drives.
var defaultMountRoots = []string{"/media", "/run/media", "/mnt"}

// Drive is a mounted filesystem that can serve as a library destination.
type Drive struct {
	Device     string
	MountPoint string
	Filesystem string
}

// Detect lists drives currently mounted under the removable mount roots,
// in the order the kernel reports them.
func Detect() ([]Drive, error) {
	f, err := os.Open(procMountsPath)
	if err != nil {
		return nil, fmt.Errorf("open mount table: %w", err)
	}
	defer f.Close()
	return parseMounts(f, defaultMountRoots)
}

// parseMounts reads /proc/mounts-format data and keeps entries whose mount
// point sits under one of roots.
func parseMounts(r io.Reader, roots []string) ([]Drive, error) {
	var drives []Drive
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 3 {
			continue
		}
		mountPoint := unescapeMountField(fields[1])
		if !underAnyRoot(mountPoint, roots) {
			continue
		}
		drives = append(drives, Drive{
			Device:     unescapeMountField(fields[0]),
			MountPoint: mountPoint,
			Filesystem: fields[2],
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read mount table: %w", err)
	}
	return drives, nil
}

func underAnyRoot(mountPoint string, roots []string) bool {
	for _, root := range roots {
		if mountPoint != root && strings.HasPrefix(mountPoint, root+"/") {
			return true
		}
	}
	return false
}

// unescapeMountField decodes the octal escapes the kernel uses for
// whitespace and backslashes in mount entries.
func unescapeMountField(field string) string {
	if !strings.Contains(field, `\`) {
		return field
	}
	replacer := strings.NewReplacer(
		`\040`, " ",
		`\011`, "\t",
		`\012`, "\n",
		`\134`, `\`,
	)
	return replacer.Replace(field)
}
