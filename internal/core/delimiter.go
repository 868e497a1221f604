package core

// delimiter.go infers which character separates fields in a spreadsheet export.
//
// Only two delimiters are considered: comma and semicolon. The detector scans
// rows in order and stops at the first row that rules one of them out, so row
// order matters. Rows that contain both characters (commas inside free text
// such as "ocean, sea") are inconclusive and skipped.

import "strings"

// Delimiter is the field separator used by every row of one input batch.
type Delimiter string

const (
	Comma     Delimiter = ","
	Semicolon Delimiter = ";"
)

// DefaultDelimiter is returned when no row decides the question.
const DefaultDelimiter = Comma

// String returns the delimiter character.
func (d Delimiter) String() string {
	return string(d)
}

// Name returns a human-readable name for the delimiter.
func (d Delimiter) Name() string {
	switch d {
	case Comma:
		return "comma"
	case Semicolon:
		return "semicolon"
	default:
		return "unknown"
	}
}

// ParseDelimiter accepts either the character or its name.
func ParseDelimiter(s string) (Delimiter, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case ",", "comma":
		return Comma, true
	case ";", "semicolon":
		return Semicolon, true
	default:
		return "", false
	}
}

// DetectDelimiter returns the delimiter to use for all rows.
//
// A row without a comma means the separator must be a semicolon; a row without
// a semicolon means it must be a comma. The first such row wins. Empty input or
// input where every row contains both characters falls back to DefaultDelimiter.
func DetectDelimiter(rows []string) Delimiter {
	for _, row := range rows {
		hasComma := strings.Contains(row, string(Comma))
		hasSemicolon := strings.Contains(row, string(Semicolon))

		if !hasComma {
			return Semicolon
		}
		if !hasSemicolon {
			return Comma
		}
	}
	return DefaultDelimiter
}
