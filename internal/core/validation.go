package core

// validation.go checks free-typed field text line by line.
//
// The expected shape is "word,hint:word,hint": a comma joins a word to its
// hint and a colon joins the source pair to the target pair. This is not the
// ":"/"|" shape that Normalize produces. Text typed directly into the field
// follows this older convention, so the two are kept separate.

import "strings"

// Separators of the free-typed line format.
const (
	freeTextPairSeparator     = ":"
	freeTextWordHintSeparator = ","
)

// ValidateLines returns every non-blank line that does not have the
// "word,hint:word,hint" shape. Indexes are 1-based line positions, counting
// blank lines.
func ValidateLines(lines []string) []InvalidRow {
	var invalid []InvalidRow
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if !ValidateLine(line) {
			invalid = append(invalid, InvalidRow{Index: i + 1, Row: line})
		}
	}
	return invalid
}

// ValidateText splits text on newlines and validates each line.
func ValidateText(text string) []InvalidRow {
	return ValidateLines(strings.Split(text, "\n"))
}

// ValidateLine reports whether a single line has the "word,hint:word,hint"
// shape. The source hint may be empty but its field must exist; the target
// hint is not checked.
func ValidateLine(line string) bool {
	parts := strings.Split(line, freeTextPairSeparator)
	if len(parts) < 2 {
		return false
	}
	sourcePart, targetPart := parts[0], parts[1]
	if sourcePart == "" || targetPart == "" {
		return false
	}

	// strings.Split always yields at least one field, so the target word
	// exists whenever targetPart does.
	sourceFields := strings.Split(sourcePart, freeTextWordHintSeparator)
	return len(sourceFields) >= 2
}
