package textutil

import "strings"

// invalid covers the characters rejected by Windows and FAT filesystems.
// Removable destinations are commonly FAT/exFAT, so the strictest set wins.
const invalid = `<>:"/\|?*`

// SanitizeFileName strips filesystem-unsafe characters from a name, collapses
// runs of whitespace to single spaces, and trims the ends. An empty result
// becomes "unnamed" so callers always get a usable path segment.
func SanitizeFileName(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		if strings.ContainsRune(invalid, r) {
			continue
		}
		b.WriteRune(r)
	}
	fields := strings.Fields(b.String())
	if len(fields) == 0 {
		return "unnamed"
	}
	return strings.Join(fields, " ")
}
