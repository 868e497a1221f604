package core

// sheet.go reads .xlsx workbooks into the same raw text a CSV export would
// contain, so spreadsheets go through Normalize without a separate code path.

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

var (
	// ErrUnsupportedFile is returned for uploads that are neither text nor .xlsx.
	ErrUnsupportedFile = errors.New("unsupported file type")

	// ErrMixedSeparators is returned for a sheet whose cells contain both
	// ';' and ','. No delimiter could join such rows without splitting a cell.
	ErrMixedSeparators = errors.New("cells contain both separators")
)

// FileFormat identifies how a source file is read.
type FileFormat string

const (
	FormatText FileFormat = "csv"
	FormatXLSX FileFormat = "xlsx"
)

// zipMagic prefixes every .xlsx file (it is a zip archive).
var zipMagic = []byte("PK\x03\x04")

// DetectFormat picks the format from the file name, falling back to content.
func DetectFormat(name string, data []byte) (FileFormat, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	case ".xls", ".numbers", ".ods":
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFile, filepath.Ext(name))
	}
	if bytes.HasPrefix(data, zipMagic) {
		return FormatXLSX, nil
	}
	return FormatText, nil
}

// SheetText returns the rows of a workbook sheet joined by a delimiter, one
// row per line, along with the delimiter it chose.
//
// An empty sheet name selects the first sheet. Rows are padded to the width of
// the widest row because excelize drops trailing empty cells, and a row such
// as "fire;f__e;ild;" must keep its empty fourth field.
func SheetText(r io.Reader, sheet string) (string, Delimiter, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return "", "", fmt.Errorf("invalid csv: open workbook: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		return "", "", fmt.Errorf("invalid csv: sheet %q not found", sheet)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return "", "", fmt.Errorf("invalid csv: read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return "", "", ErrEmptyFile
	}

	d, err := sheetDelimiter(rows)
	if err != nil {
		return "", "", fmt.Errorf("sheet %q: %w", sheet, err)
	}

	width := 0
	for _, row := range rows {
		width = max(width, len(row))
	}

	lines := make([]string, len(rows))
	for i, row := range rows {
		cells := make([]string, width)
		copy(cells, row)
		lines[i] = strings.Join(cells, d.String())
	}
	return strings.Join(lines, "\n"), d, nil
}

// sheetDelimiter picks a delimiter that no cell contains. Cell text often
// holds commas ("ocean, sea"), so semicolon is tried first.
func sheetDelimiter(rows [][]string) (Delimiter, error) {
	semicolonCell := findCell(rows, Semicolon.String())
	if semicolonCell == "" {
		return Semicolon, nil
	}
	commaCell := findCell(rows, Comma.String())
	if commaCell == "" {
		return Comma, nil
	}
	return "", fmt.Errorf("%w: %s holds %q and %s holds %q",
		ErrMixedSeparators, semicolonCell, Semicolon.String(), commaCell, Comma.String())
}

// findCell returns the reference ("B3") of the first cell containing s, or "".
func findCell(rows [][]string, s string) string {
	for r, row := range rows {
		for c, cell := range row {
			if strings.Contains(cell, s) {
				ref, _ := excelize.CoordinatesToCellName(c+1, r+1)
				return ref
			}
		}
	}
	return ""
}
