package core

import "strings"

// StripHeaderRow drops the first row when it consists of nothing but
// delimiters. Spreadsheet tools (Numbers.app among them) export an empty
// header line this way. Only row 0 is inspected; every other row is kept.
func StripHeaderRow(rows []string, d Delimiter) []string {
	if len(rows) == 0 {
		return rows
	}
	if strings.ReplaceAll(rows[0], d.String(), "") != "" {
		return rows
	}

	out := make([]string, len(rows)-1)
	copy(out, rows[1:])
	return out
}

// StripHeaderColumn removes a leading empty column.
//
// The column is removed only when every non-blank row, once trimmed, starts
// with the delimiter. In that case every row is trimmed and loses its first
// character; blank rows stay blank. A single row without the leading delimiter
// leaves the input untouched.
func StripHeaderColumn(rows []string, d Delimiter) []string {
	if !hasHeaderColumn(rows, d) {
		return rows
	}

	out := make([]string, len(rows))
	for i, row := range rows {
		row = strings.TrimSpace(row)
		if row != "" {
			row = row[len(d):]
		}
		out[i] = row
	}
	return out
}

// hasHeaderColumn reports whether every non-blank row starts with d.
func hasHeaderColumn(rows []string, d Delimiter) bool {
	for _, row := range rows {
		row = strings.TrimSpace(row)
		if row == "" {
			continue
		}
		if !strings.HasPrefix(row, d.String()) {
			return false
		}
	}
	return true
}
