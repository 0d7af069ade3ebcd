package classify

import (
	"path/filepath"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// MediaType distinguishes the two kinds of media the organizer handles.
type MediaType string

const (
	TypeMovie   MediaType = "movie"
	TypeEpisode MediaType = "episode"
)

// Classification is the fully resolved identity of a media file. Numeric
// fields use zero to mean unknown.
type Classification struct {
	Type    MediaType
	Title   string
	Series  string
	Year    int
	Season  int
	Episode int
}

// HasSeasonEpisode reports whether both season and episode numbers are known.
func (c Classification) HasSeasonEpisode() bool {
	return c.Season > 0 && c.Episode > 0
}

// Classifier turns parser guesses into classifications, filling gaps from
// the filename itself.
type Classifier struct {
	parser Parser
}

// NewClassifier builds a classifier around the given parser. A nil parser
// falls back to the built-in filename parser.
func NewClassifier(parser Parser) *Classifier {
	if parser == nil {
		parser = NewFilenameParser()
	}
	return &Classifier{parser: parser}
}

// Classify resolves the media identity of the file at path. Parser fields
// that are missing or malformed are treated as absent rather than errors;
// the filename supplies a fallback title.
func (c *Classifier) Classify(path string) Classification {
	name := filepath.Base(path)
	guess, err := c.parser.Parse(name)
	if err != nil {
		guess = Guess{}
	}

	season := coerceInt(guess.Season)
	episode := coerceInt(guess.Episode)
	year := coerceInt(guess.Year)

	result := Classification{
		Title:   strings.TrimSpace(guess.Title),
		Series:  strings.TrimSpace(guess.Series),
		Year:    year,
		Season:  season,
		Episode: episode,
	}

	// Anything that names an episode number is an episode even when the
	// parser forgot to say so.
	if strings.EqualFold(guess.Type, string(TypeEpisode)) || episode > 0 {
		result.Type = TypeEpisode
	} else {
		result.Type = TypeMovie
	}

	fallback := deriveTitle(path)
	if result.Type == TypeEpisode {
		if result.Series == "" {
			result.Series = fallback
		}
		if result.Title == "" {
			result.Title = result.Series
		}
	} else if result.Title == "" {
		result.Title = fallback
	}
	return result
}

// deriveTitle builds a display title from the file's base name: extension
// dropped, separators flattened to spaces, words title-cased.
func deriveTitle(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	cleaned := strings.Builder{}
	for _, r := range base {
		switch {
		case r == '.' || r == '_' || r == '-':
			cleaned.WriteRune(' ')
		default:
			cleaned.WriteRune(r)
		}
	}
	title := strings.Join(strings.Fields(cleaned.String()), " ")
	if title == "" {
		return "unnamed"
	}
	return cases.Title(language.Und).String(title)
}
