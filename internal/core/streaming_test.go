package core

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestBOMSkippingReader(t *testing.T) {
	tests := []struct {
		name     string
		input    []byte
		expected string
	}{
		{
			name:     "file with BOM",
			input:    append([]byte{0xEF, 0xBB, 0xBF}, []byte("hello;world")...),
			expected: "hello;world",
		},
		{
			name:     "file without BOM",
			input:    []byte("hello;world"),
			expected: "hello;world",
		},
		{
			name:     "empty file",
			input:    []byte{},
			expected: "",
		},
		{
			name:     "only BOM",
			input:    []byte{0xEF, 0xBB, 0xBF},
			expected: "",
		},
		{
			name:     "partial BOM at start",
			input:    []byte{0xEF, 0xBB, 'a', 'b', 'c'},
			expected: string([]byte{0xEF, 0xBB, 'a', 'b', 'c'}),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reader := NewBOMSkippingReader(bytes.NewReader(tt.input))
			result, err := io.ReadAll(reader)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if string(result) != tt.expected {
				t.Errorf("got %q, want %q", string(result), tt.expected)
			}
		})
	}
}

func TestSizeLimitedReader(t *testing.T) {
	input := strings.Repeat("x", 1000)

	t.Run("within limit", func(t *testing.T) {
		reader := NewSizeLimitedReader(strings.NewReader(input), int64(len(input)))

		buf := make([]byte, 100)
		totalRead := 0
		for {
			n, err := reader.Read(buf)
			totalRead += n
			if err == io.EOF {
				break
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		}

		if totalRead != len(input) {
			t.Errorf("total read = %d, want %d", totalRead, len(input))
		}
		if reader.BytesRead != int64(len(input)) {
			t.Errorf("BytesRead = %d, want %d", reader.BytesRead, len(input))
		}
	})

	t.Run("over limit", func(t *testing.T) {
		reader := NewSizeLimitedReader(strings.NewReader(input), 999)
		_, err := io.ReadAll(reader)
		if !errors.Is(err, ErrFileTooLarge) {
			t.Errorf("error = %v, want ErrFileTooLarge", err)
		}
	})

	t.Run("zero disables limit", func(t *testing.T) {
		reader := NewSizeLimitedReader(strings.NewReader(input), 0)
		if _, err := io.ReadAll(reader); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})
}

func TestDecodeText(t *testing.T) {
	input := append([]byte{0xEF, 0xBB, 0xBF}, []byte("a;b;c;d\r\ne;f;g;h\r\n")...)

	got, err := DecodeText(bytes.NewReader(input), int64(len(input)))
	if err != nil {
		t.Fatalf("DecodeText() error = %v", err)
	}
	if got.Text != "a;b;c;d\ne;f;g;h\n" {
		t.Errorf("Text = %q", got.Text)
	}
	if got.Charset != CharsetUTF8 {
		t.Errorf("Charset = %q, want %q", got.Charset, CharsetUTF8)
	}

	if _, err := DecodeText(bytes.NewReader(input), 10); !errors.Is(err, ErrFileTooLarge) {
		t.Errorf("DecodeText() over limit error = %v, want ErrFileTooLarge", err)
	}
}

func TestReadSource(t *testing.T) {
	input := append([]byte{0xEF, 0xBB, 0xBF}, []byte("a;b;c;d\n")...)

	got, err := ReadSource("words.csv", bytes.NewReader(input), int64(len(input)))
	if err != nil {
		t.Fatalf("ReadSource() error = %v", err)
	}
	if got.Name != "words.csv" || string(got.Data) != "a;b;c;d\n" {
		t.Errorf("ReadSource() = %q %q", got.Name, got.Data)
	}

	_, err = ReadSource("words.csv", bytes.NewReader(input), 4)
	if !errors.Is(err, ErrFileTooLarge) {
		t.Errorf("ReadSource() over limit error = %v, want ErrFileTooLarge", err)
	}
	if err != nil && !strings.Contains(err.Error(), "words.csv") {
		t.Errorf("error %q does not name the file", err)
	}
}

func TestCleanText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"unchanged", "a;b;c;d\ne;f;g;h", "a;b;c;d\ne;f;g;h"},
		{"crlf", "a;b;c;d\r\ne;f;g;h\r\n", "a;b;c;d\ne;f;g;h\n"},
		{"lone cr", "a;b;c;d\re;f;g;h", "a;b;c;d\ne;f;g;h"},
		{"byte order mark", "\uFEFFa;b;c;d", "a;b;c;d"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanText(tt.input); got != tt.want {
				t.Errorf("CleanText(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestDecodeBytes(t *testing.T) {
	tests := []struct {
		name        string
		input       []byte
		wantText    string
		wantCharset string
		wantErr     error
	}{
		{
			name:        "plain utf-8",
			input:       []byte("sea;s_a;sjø;s_ø"),
			wantText:    "sea;s_a;sjø;s_ø",
			wantCharset: CharsetUTF8,
		},
		{
			name:        "utf-8 BOM stripped",
			input:       append([]byte{0xEF, 0xBB, 0xBF}, []byte("a,b,c,d")...),
			wantText:    "a,b,c,d",
			wantCharset: CharsetUTF8,
		},
		{
			name:        "crlf and lone cr",
			input:       []byte("a;b;c;d\r\ne;f;g;h\ri;j;k;l"),
			wantText:    "a;b;c;d\ne;f;g;h\ni;j;k;l",
			wantCharset: CharsetUTF8,
		},
		{
			name:        "utf-16le with BOM",
			input:       []byte{0xFF, 0xFE, 'h', 0, 0xE5, 0, 'v', 0},
			wantText:    "håv",
			wantCharset: CharsetUTF16LE,
		},
		{
			name:        "utf-16be with BOM",
			input:       []byte{0xFE, 0xFF, 0, 'h', 0, 0xE5, 0, 'v'},
			wantText:    "håv",
			wantCharset: CharsetUTF16BE,
		},
		{
			name:    "empty",
			input:   []byte{},
			wantErr: ErrEmptyFile,
		},
		{
			name:    "whitespace only",
			input:   []byte("\r\n  \n"),
			wantErr: ErrEmptyFile,
		},
		{
			name:    "BOM only",
			input:   []byte{0xEF, 0xBB, 0xBF},
			wantErr: ErrEmptyFile,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeBytes(tt.input)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("DecodeBytes() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("DecodeBytes() error = %v", err)
			}
			if got.Text != tt.wantText {
				t.Errorf("Text = %q, want %q", got.Text, tt.wantText)
			}
			if got.Charset != tt.wantCharset {
				t.Errorf("Charset = %q, want %q", got.Charset, tt.wantCharset)
			}
		})
	}
}

func TestDecodeBytes_LegacyEncoding(t *testing.T) {
	// Latin-1 bytes such as 0xE5 are not valid UTF-8 on their own.
	input := []byte("h\xe5v;h_v;sm\xf6rg\xe5s;s______s\nk\xe4se;k__e;ost;o_t\n")

	got, err := DecodeBytes(input)
	if err != nil {
		t.Fatalf("DecodeBytes() error = %v", err)
	}
	if got.Charset == CharsetUTF8 {
		t.Errorf("Charset = %q, want a legacy charset", got.Charset)
	}
	if !utf8.ValidString(got.Text) {
		t.Errorf("Text is not valid UTF-8: %q", got.Text)
	}
	if !strings.Contains(got.Text, ";k__e;ost;o_t\n") {
		t.Errorf("Text = %q, ASCII content not preserved", got.Text)
	}
}
