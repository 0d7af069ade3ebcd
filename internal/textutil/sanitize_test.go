package textutil_test

import (
	"strings"
	"testing"

	"shuttle/internal/textutil"
)

func TestSanitizeFileName(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{"passthrough", "Show Name", "Show Name"},
		{"strips unsafe runes", `A<B>C:D"E/F\G|H?I*J`, "ABCDEFGHIJ"},
		{"collapses whitespace", "  Show    Name \t Two ", "Show Name Two"},
		{"empty becomes unnamed", "", "unnamed"},
		{"only unsafe becomes unnamed", `<>:"/\|?*`, "unnamed"},
		{"keeps unicode", "Amélie", "Amélie"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := textutil.SanitizeFileName(tc.input)
			if got != tc.want {
				t.Fatalf("SanitizeFileName(%q) = %q, want %q", tc.input, got, tc.want)
			}
			if strings.ContainsAny(got, `<>:"/\|?*`) {
				t.Fatalf("result %q still contains unsafe characters", got)
			}
		})
	}
}
