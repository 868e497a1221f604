package core

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestConvertFile(t *testing.T) {
	opts := ConvertOptions{Separators: DefaultSeparators(), MaxFileSize: 1 << 20}

	t.Run("csv", func(t *testing.T) {
		got, err := ConvertFile(SourceFile{Name: "words.csv", Data: []byte("a;b;c;d\r\nshort\r\n")}, opts)
		if err != nil {
			t.Fatalf("ConvertFile() error = %v", err)
		}
		want := FileResult{
			Name:        "words.csv",
			Format:      FormatText,
			Charset:     CharsetUTF8,
			Delimiter:   Semicolon,
			Lines:       []string{"a:b|c:d"},
			InvalidRows: []InvalidRow{{Index: 2, Row: "short"}},
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("ConvertFile() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("workbook", func(t *testing.T) {
		data := workbook(t, "", [][]any{{"a, b", "c", "d", "e"}})
		got, err := ConvertFile(SourceFile{Name: "words.xlsx", Data: data}, opts)
		if err != nil {
			t.Fatalf("ConvertFile() error = %v", err)
		}
		if got.Format != FormatXLSX || got.Delimiter != Semicolon {
			t.Errorf("Format = %q, Delimiter = %q", got.Format, got.Delimiter)
		}
		if diff := cmp.Diff([]string{"a, b:c|d:e"}, got.Lines); diff != "" {
			t.Errorf("Lines mismatch (-want +got):\n%s", diff)
		}
	})

	errorTests := []struct {
		name    string
		file    SourceFile
		limit   int64
		wantErr error
	}{
		{"too large", SourceFile{Name: "big.csv", Data: make([]byte, 2048)}, 1024, ErrFileTooLarge},
		{"workbook too large", SourceFile{Name: "big.xlsx", Data: workbook(t, "", [][]any{{"a", "b", "c", "d"}})}, 1024, ErrFileTooLarge},
		{"empty", SourceFile{Name: "empty.csv", Data: nil}, 0, ErrEmptyFile},
		{"unsupported", SourceFile{Name: "old.xls", Data: []byte("x")}, 0, ErrUnsupportedFile},
	}
	for _, tt := range errorTests {
		t.Run(tt.name, func(t *testing.T) {
			opts := opts
			if tt.limit > 0 {
				opts.MaxFileSize = tt.limit
			}
			got, err := ConvertFile(tt.file, opts)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ConvertFile() error = %v, want %v", err, tt.wantErr)
			}
			if got.Name != tt.file.Name || len(got.Lines) != 0 || got.Lines == nil {
				t.Errorf("result = %+v, want name and empty lines", got)
			}
		})
	}
}
