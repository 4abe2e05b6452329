package importers

import (
	"regexp"
	"strconv"
	"strings"
)

// Rating bounds for a pasted comment.
const (
	MinRating     = 1
	MaxRating     = 5
	DefaultRating = 3
)

// ParsedComment is a single comment extracted from pasted text.
type ParsedComment struct {
	Text   string `json:"text"`
	Rating int    `json:"rating"`
}

// CommentText implements TextSource.
func (c ParsedComment) CommentText() string {
	return c.Text
}

// Matches exactly a trailing ", D" rating token: "Great effort this term, 4".
// ",4" or ",  4" are not rating tokens.
var trailingRatingPattern = regexp.MustCompile(`^(.*), (\d)$`)

// ParseComments turns pasted multi-line text into comments, one per non-blank line.
// A trailing ", D" with D in 1..5 becomes the rating; anything else keeps the whole
// line as text with DefaultRating. Parsing never fails.
func ParseComments(text string) []ParsedComment {
	comments := make([]ParsedComment, 0)

	// Splitting on \n and trimming also drops the \r of CRLF input.
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		comments = append(comments, parseLine(line))
	}

	return comments
}

func parseLine(line string) ParsedComment {
	match := trailingRatingPattern.FindStringSubmatch(line)
	if match == nil {
		return ParsedComment{Text: line, Rating: DefaultRating}
	}

	rating, err := strconv.Atoi(match[2])
	if err != nil || rating < MinRating || rating > MaxRating {
		return ParsedComment{Text: line, Rating: DefaultRating}
	}

	text := strings.TrimSpace(match[1])
	if text == "" {
		// ", 4" alone has nothing to save as text
		return ParsedComment{Text: line, Rating: DefaultRating}
	}

	return ParsedComment{Text: text, Rating: rating}
}
