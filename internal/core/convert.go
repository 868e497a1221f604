package core

// convert.go turns one uploaded file into canonical lines.
//
// Text files are decoded to UTF-8 and normalized with delimiter detection.
// Workbooks are flattened by SheetText, which already knows the delimiter,
// so detection is skipped for them.

import (
	"bytes"
	"fmt"
)

// ConvertOptions controls how a single file is converted.
type ConvertOptions struct {
	Separators  Separators
	MaxFileSize int64  // 0 disables the limit
	Sheet       string // workbook sheet; "" selects the first
}

// SourceFile is one uploaded file.
type SourceFile struct {
	Name string
	Data []byte
}

// FileResult is the outcome of converting one file.
// A file that could not be read has Error set and no lines.
type FileResult struct {
	Name        string       `json:"name" yaml:"name"`
	Format      FileFormat   `json:"format,omitempty" yaml:"format,omitempty"`
	Charset     string       `json:"charset,omitempty" yaml:"charset,omitempty"`
	Delimiter   Delimiter    `json:"delimiter,omitempty" yaml:"delimiter,omitempty"`
	Lines       []string     `json:"lines" yaml:"lines"`
	InvalidRows []InvalidRow `json:"invalid_rows,omitempty" yaml:"invalid_rows,omitempty"`
	Error       string       `json:"error,omitempty" yaml:"error,omitempty"`
	ErrorCode   string       `json:"error_code,omitempty" yaml:"error_code,omitempty"`
	Cached      bool         `json:"cached,omitempty" yaml:"-"`
}

// Failed reports whether the file could not be converted at all.
func (r FileResult) Failed() bool {
	return r.Error != ""
}

// ConvertFile decodes and normalizes one file.
//
// The returned error covers unreadable files only. Malformed rows are not an
// error; they are listed in FileResult.InvalidRows.
func ConvertFile(f SourceFile, opts ConvertOptions) (FileResult, error) {
	result := FileResult{Name: f.Name, Lines: []string{}}

	if opts.MaxFileSize > 0 && int64(len(f.Data)) > opts.MaxFileSize {
		return result, fmt.Errorf("%s: %w: %d bytes exceeds %d", f.Name, ErrFileTooLarge, len(f.Data), opts.MaxFileSize)
	}

	format, err := DetectFormat(f.Name, f.Data)
	if err != nil {
		return result, fmt.Errorf("%s: %w", f.Name, err)
	}
	result.Format = format

	var normalized NormalizeResult
	switch format {
	case FormatXLSX:
		text, d, err := SheetText(bytes.NewReader(f.Data), opts.Sheet)
		if err != nil {
			return result, fmt.Errorf("%s: %w", f.Name, err)
		}
		normalized = NormalizeDelimited(text, d, opts.Separators)

	default:
		decoded, err := DecodeBytes(f.Data)
		if err != nil {
			return result, fmt.Errorf("%s: %w", f.Name, err)
		}
		result.Charset = decoded.Charset
		normalized = NormalizeWith(decoded.Text, opts.Separators)
	}

	result.Delimiter = normalized.Delimiter
	result.Lines = normalized.Lines
	result.InvalidRows = normalized.Errors
	return result, nil
}
