package classify

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

var (
	seasonEpisodePattern = regexp.MustCompile(`(?i)^(.*?)[. _-]*S(\d{1,2})[. _-]?E(\d{1,3})\b`)
	crossPattern         = regexp.MustCompile(`^(.*?)[. _-]*(\d{1,2})x(\d{2,3})\b`)
	yearPattern          = regexp.MustCompile(`^(.*?)[. _(-]+((?:19|20)\d{2})[). _-]*`)
)

// FilenameParser is the built-in parser. It recognizes the common release
// name shapes: "Series.S01E02", "Series.1x02", and "Title.2021".
type FilenameParser struct{}

// NewFilenameParser returns the built-in release name parser.
func NewFilenameParser() *FilenameParser {
	return &FilenameParser{}
}

// Parse extracts a guess from name. It never fails; names that match no
// pattern come back as an untyped guess with empty fields.
func (p *FilenameParser) Parse(name string) (Guess, error) {
	base := strings.TrimSuffix(name, filepath.Ext(name))

	if m := seasonEpisodePattern.FindStringSubmatch(base); m != nil {
		return Guess{
			Type:    string(TypeEpisode),
			Series:  cleanSegment(m[1]),
			Season:  mustInt(m[2]),
			Episode: mustInt(m[3]),
		}, nil
	}
	if m := crossPattern.FindStringSubmatch(base); m != nil {
		return Guess{
			Type:    string(TypeEpisode),
			Series:  cleanSegment(m[1]),
			Season:  mustInt(m[2]),
			Episode: mustInt(m[3]),
		}, nil
	}
	if m := yearPattern.FindStringSubmatch(base); m != nil && cleanSegment(m[1]) != "" {
		return Guess{
			Type:  string(TypeMovie),
			Title: cleanSegment(m[1]),
			Year:  mustInt(m[2]),
		}, nil
	}
	return Guess{Type: string(TypeMovie)}, nil
}

func cleanSegment(segment string) string {
	replaced := strings.Map(func(r rune) rune {
		if r == '.' || r == '_' || r == '-' {
			return ' '
		}
		return r
	}, segment)
	return strings.Join(strings.Fields(replaced), " ")
}

func mustInt(digits string) int {
	n, _ := strconv.Atoi(digits)
	return n
}
