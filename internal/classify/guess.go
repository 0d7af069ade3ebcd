package classify

import (
	"fmt"
	"strconv"
	"strings"
)

// Guess is a parser's raw take on a filename. Numeric fields are loosely
// typed because external parsers emit strings, floats, or ints depending
// on the source; the classifier coerces them and drops anything malformed.
type Guess struct {
	Type    string
	Title   string
	Series  string
	Year    any
	Season  any
	Episode any
}

// Parser extracts a guess from a single file name (no directory part).
// Implementations should return an error only when parsing is impossible;
// partial guesses with missing fields are preferred.
type Parser interface {
	Parse(name string) (Guess, error)
}

// coerceInt converts loosely typed numeric values to int. Unparseable or
// non-positive values collapse to zero, meaning unknown.
func coerceInt(value any) int {
	switch v := value.(type) {
	case nil:
		return 0
	case int:
		return max(v, 0)
	case int64:
		return max(int(v), 0)
	case float64:
		if v < 0 {
			return 0
		}
		return int(v)
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil || n < 0 {
			return 0
		}
		return n
	default:
		n, err := strconv.Atoi(strings.TrimSpace(fmt.Sprint(v)))
		if err != nil || n < 0 {
			return 0
		}
		return n
	}
}
