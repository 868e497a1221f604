package core

// streaming.go provides the readers an uploaded file passes through before
// its bytes are decoded:
//
//   - BOMSkippingReader: removes a UTF-8 byte order mark
//   - SizeLimitedReader: counts bytes read and fails once a limit is exceeded
//
// Use WrapForDecode to apply both in the correct order, or ReadSource to
// read a whole upload through them.

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
)

// utf8BOM is the UTF-8 byte order mark written by Excel and Notepad.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ErrFileTooLarge is returned when a file exceeds the configured size limit.
var ErrFileTooLarge = errors.New("file too large")

// BOMSkippingReader wraps an io.Reader and skips the UTF-8 BOM if present.
type BOMSkippingReader struct {
	reader  *bufio.Reader
	checked bool
}

// NewBOMSkippingReader creates a new BOM-skipping reader.
func NewBOMSkippingReader(r io.Reader) *BOMSkippingReader {
	return &BOMSkippingReader{reader: bufio.NewReader(r)}
}

// Read implements io.Reader. On the first read, it checks for and skips the BOM.
func (r *BOMSkippingReader) Read(p []byte) (int, error) {
	if !r.checked {
		r.checked = true
		head, err := r.reader.Peek(len(utf8BOM))
		if err != nil && err != io.EOF {
			return 0, err
		}
		if bytes.Equal(head, utf8BOM) {
			if _, err := r.reader.Discard(len(utf8BOM)); err != nil {
				return 0, err
			}
		}
	}
	return r.reader.Read(p)
}

// SizeLimitedReader wraps an io.Reader to track bytes read and reject input
// larger than Limit. A Limit of 0 or less disables the check.
type SizeLimitedReader struct {
	reader    io.Reader
	BytesRead int64
	Limit     int64
}

// NewSizeLimitedReader creates a counting reader that fails past limit bytes.
func NewSizeLimitedReader(r io.Reader, limit int64) *SizeLimitedReader {
	return &SizeLimitedReader{
		reader: r,
		Limit:  limit,
	}
}

// Read implements io.Reader.
func (r *SizeLimitedReader) Read(p []byte) (int, error) {
	n, err := r.reader.Read(p)
	r.BytesRead += int64(n)
	if r.Limit > 0 && r.BytesRead > r.Limit {
		return n, fmt.Errorf("%w: more than %d bytes", ErrFileTooLarge, r.Limit)
	}
	return n, err
}

// WrapForDecode wraps a reader with BOM skipping and a size limit.
//
// The BOM is stripped first so it never counts towards charset detection;
// the limit wraps the raw input so it measures what the client sent.
func WrapForDecode(r io.Reader, limit int64) io.Reader {
	return NewBOMSkippingReader(NewSizeLimitedReader(r, limit))
}

// ReadSource reads an uploaded file through WrapForDecode. Reading stops with
// ErrFileTooLarge as soon as more than limit bytes have arrived.
func ReadSource(name string, r io.Reader, limit int64) (SourceFile, error) {
	data, err := io.ReadAll(WrapForDecode(r, limit))
	if err != nil {
		return SourceFile{}, fmt.Errorf("read %s: %w", name, err)
	}
	return SourceFile{Name: name, Data: data}, nil
}
