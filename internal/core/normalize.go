package core

// normalize.go turns raw spreadsheet text into canonical word-pair lines.
//
// The pipeline is:
//  1. Split the text into rows on "\n"
//  2. Detect the delimiter once for the whole batch
//  3. Strip a pure-delimiter header row, then a leading empty column
//  4. Reshape each remaining row into sourceWord:sourceHint|targetWord:targetHint
//
// Rows that cannot be reshaped are collected as InvalidRow records instead of
// failing the whole input. Deciding how to show them is up to the caller.

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// CellCount is the number of fields a row must provide.
const CellCount = 4

// Separators used to build a canonical line.
const (
	DefaultWordHintSeparator = ":"
	DefaultPairSeparator     = "|"
)

// Separators joins a word to its hint and the source pair to the target pair.
type Separators struct {
	WordHint string `json:"word_hint" yaml:"word_hint"`
	Pair     string `json:"pair" yaml:"pair"`
}

// DefaultSeparators returns the ":" and "|" separators of the canonical format.
func DefaultSeparators() Separators {
	return Separators{
		WordHint: DefaultWordHintSeparator,
		Pair:     DefaultPairSeparator,
	}
}

// ErrInvalidSeparators is returned when separators are empty or identical.
var ErrInvalidSeparators = errors.New("invalid separators: word/hint and pair separators must be non-empty and distinct")

// Validate checks that both separators are set and differ.
func (s Separators) Validate() error {
	if s.WordHint == "" || s.Pair == "" || s.WordHint == s.Pair {
		return fmt.Errorf("%w (word_hint=%q, pair=%q)", ErrInvalidSeparators, s.WordHint, s.Pair)
	}
	return nil
}

// InvalidRow identifies a row that did not have the expected shape.
type InvalidRow struct {
	Index int    `json:"index" yaml:"index"` // 1-based
	Row   string `json:"row" yaml:"row"`
}

// String formats the row as "<index>: <row>".
func (r InvalidRow) String() string {
	return strconv.Itoa(r.Index) + ": " + r.Row
}

// NormalizeResult holds the canonical lines and the rows that were skipped.
type NormalizeResult struct {
	Delimiter Delimiter    `json:"delimiter" yaml:"delimiter"`
	Lines     []string     `json:"lines" yaml:"lines"`
	Errors    []InvalidRow `json:"invalid_rows" yaml:"invalid_rows"`
}

// HasErrors reports whether any row was malformed.
func (r NormalizeResult) HasErrors() bool {
	return len(r.Errors) > 0
}

// Normalize converts raw CSV text into canonical lines.
//
// Row indexes in the returned errors are 1-based positions in the row list
// after header stripping, counting blank rows. Blank rows produce neither a
// line nor an error. Fields are copied verbatim, including empty ones, and
// fields beyond the fourth are ignored.
func Normalize(rawText, wordHintSeparator, pairSeparator string) NormalizeResult {
	rows := strings.Split(rawText, "\n")
	return normalizeRows(rows, DetectDelimiter(rows), wordHintSeparator, pairSeparator)
}

// NormalizeDelimited is Normalize with a delimiter chosen by the caller, for
// input whose delimiter is known, such as flattened spreadsheet rows.
func NormalizeDelimited(rawText string, d Delimiter, seps Separators) NormalizeResult {
	return normalizeRows(strings.Split(rawText, "\n"), d, seps.WordHint, seps.Pair)
}

func normalizeRows(rows []string, d Delimiter, wordHintSeparator, pairSeparator string) NormalizeResult {
	rows = StripHeaderRow(rows, d)
	rows = StripHeaderColumn(rows, d)

	result := NormalizeResult{
		Delimiter: d,
		Lines:     make([]string, 0, len(rows)),
	}

	for i, row := range rows {
		if strings.TrimSpace(row) == "" {
			continue
		}

		line, ok := reshapeRow(row, d, wordHintSeparator, pairSeparator)
		if !ok {
			result.Errors = append(result.Errors, InvalidRow{Index: i + 1, Row: row})
			continue
		}
		result.Lines = append(result.Lines, line)
	}

	return result
}

// NormalizeWith is Normalize with a Separators value.
func NormalizeWith(rawText string, seps Separators) NormalizeResult {
	return Normalize(rawText, seps.WordHint, seps.Pair)
}

// reshapeRow builds a canonical line from one row, or reports false when the
// row has fewer than CellCount fields.
func reshapeRow(row string, d Delimiter, wordHintSeparator, pairSeparator string) (string, bool) {
	cells := strings.Split(row, d.String())
	if len(cells) < CellCount {
		return "", false
	}

	sourceWord, sourceHint, targetWord, targetHint := cells[0], cells[1], cells[2], cells[3]

	var b strings.Builder
	b.Grow(len(row) + 2*len(wordHintSeparator) + len(pairSeparator))
	b.WriteString(sourceWord)
	b.WriteString(wordHintSeparator)
	b.WriteString(sourceHint)
	b.WriteString(pairSeparator)
	b.WriteString(targetWord)
	b.WriteString(wordHintSeparator)
	b.WriteString(targetHint)
	return b.String(), true
}

// FormatReport renders invalid rows as one "<index>: <row>" line each.
// Returns "" when there are none.
func FormatReport(rows []InvalidRow) string {
	if len(rows) == 0 {
		return ""
	}
	lines := make([]string, len(rows))
	for i, r := range rows {
		lines[i] = r.String()
	}
	return strings.Join(lines, "\n")
}

// AppendLines appends converted lines to existing field text, separated by
// newlines. A newline is inserted between the two only when existing is
// non-empty and does not already end with one.
func AppendLines(existing string, lines []string) string {
	if len(lines) == 0 {
		return existing
	}
	joined := strings.Join(lines, "\n")
	if existing == "" || strings.HasSuffix(existing, "\n") {
		return existing + joined
	}
	return existing + "\n" + joined
}
