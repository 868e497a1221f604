package core

// decode.go turns uploaded file bytes into UTF-8 text with "\n" line endings.
//
// Spreadsheet exports arrive in whatever encoding the exporting tool used:
// Excel on Windows writes Windows-1252, "Unicode text" exports are UTF-16,
// and Numbers/LibreOffice write UTF-8. Valid UTF-8 is always taken as-is;
// only invalid input goes through charset detection.

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ErrEmptyFile is returned when a file contains no bytes.
var ErrEmptyFile = errors.New("empty file")

// Charset names reported by DecodeBytes.
const (
	CharsetUTF8        = "utf-8"
	CharsetUTF16LE     = "utf-16le"
	CharsetUTF16BE     = "utf-16be"
	CharsetWindows1252 = "windows-1252"
)

var (
	utf16LEBOM = []byte{0xFF, 0xFE}
	utf16BEBOM = []byte{0xFE, 0xFF}
)

// Decoded is the UTF-8 text of a file and the charset it was read as.
type Decoded struct {
	Text    string
	Charset string
}

// DecodeText reads at most limit bytes from r and decodes them.
// Returns ErrFileTooLarge past the limit and ErrEmptyFile for empty input.
func DecodeText(r io.Reader, limit int64) (Decoded, error) {
	data, err := io.ReadAll(WrapForDecode(r, limit))
	if err != nil {
		return Decoded{}, fmt.Errorf("read file: %w", err)
	}
	return DecodeBytes(data)
}

// DecodeBytes decodes raw file bytes to UTF-8 and normalizes line endings.
func DecodeBytes(data []byte) (Decoded, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if len(data) == 0 {
		return Decoded{}, ErrEmptyFile
	}

	charset, enc := detectEncoding(data)
	text := string(data)
	if enc != nil {
		decoded, _, err := transform.Bytes(enc.NewDecoder(), data)
		if err != nil {
			return Decoded{}, fmt.Errorf("encoding error: decode %s: %w", charset, err)
		}
		text = string(decoded)
	}

	text = strings.ToValidUTF8(text, string(utf8.RuneError))
	text = normalizeLineEndings(text)
	if strings.TrimSpace(text) == "" {
		return Decoded{}, ErrEmptyFile
	}

	return Decoded{Text: text, Charset: charset}, nil
}

// detectEncoding picks the charset of data. A nil encoding means the bytes
// are already UTF-8.
func detectEncoding(data []byte) (string, encoding.Encoding) {
	switch {
	case bytes.HasPrefix(data, utf16LEBOM):
		return CharsetUTF16LE, unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM)
	case bytes.HasPrefix(data, utf16BEBOM):
		return CharsetUTF16BE, unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM)
	case utf8.Valid(data):
		return CharsetUTF8, nil
	}

	result, err := chardet.NewTextDetector().DetectBest(data)
	if err != nil || result == nil {
		return CharsetWindows1252, charmap.Windows1252
	}

	name := strings.ToLower(result.Charset)
	switch name {
	case "utf-16le":
		return CharsetUTF16LE, unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)
	case "utf-16be":
		return CharsetUTF16BE, unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)
	case "iso-8859-1":
		return name, charmap.ISO8859_1
	case "iso-8859-15":
		return name, charmap.ISO8859_15
	case "windows-1251":
		return name, charmap.Windows1251
	case "koi8-r":
		return name, charmap.KOI8R
	default:
		// Invalid UTF-8 that chardet cannot place is most often an Excel export.
		return CharsetWindows1252, charmap.Windows1252
	}
}

// CleanText prepares pasted text the way DecodeBytes prepares file text:
// a leading byte order mark is dropped and line endings become "\n".
func CleanText(s string) string {
	return normalizeLineEndings(strings.TrimPrefix(s, "\uFEFF"))
}

// normalizeLineEndings converts "\r\n" and lone "\r" to "\n".
func normalizeLineEndings(s string) string {
	if !strings.Contains(s, "\r") {
		return s
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}
