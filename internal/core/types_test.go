package core

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func testBatch() *Batch {
	return &Batch{
		ID:        "7f1c2f4e-3c0b-4c55-9d0e-2b3f0c9a1a11",
		CreatedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Files: []FileResult{
			{Name: "a.csv", Format: FormatText, Delimiter: Comma, Lines: []string{"a:b|c:d"}},
			{Name: "b.csv", Format: FormatText, Delimiter: Semicolon, Lines: []string{"e:f|g:h"},
				InvalidRows: []InvalidRow{{Index: 2, Row: "broken"}, {Index: 4, Row: "x;y"}}},
			{Name: "c.xls", Lines: []string{}, Error: "Only CSV and .xlsx files can be converted", ErrorCode: "FILE006"},
		},
		Lines: []string{"a:b|c:d", "e:f|g:h"},
	}
}

func TestBatch_Counts(t *testing.T) {
	b := testBatch()
	if got := b.InvalidCount(); got != 2 {
		t.Errorf("InvalidCount() = %d, want 2", got)
	}
	if got := b.FailedCount(); got != 1 {
		t.Errorf("FailedCount() = %d, want 1", got)
	}
}

func TestBatch_Text(t *testing.T) {
	if got := testBatch().Text(); got != "a:b|c:d\ne:f|g:h" {
		t.Errorf("Text() = %q", got)
	}
	if got := (&Batch{}).Text(); got != "" {
		t.Errorf("empty Text() = %q", got)
	}
}

func TestBatch_Report(t *testing.T) {
	want := "b.csv - the following rows had errors:\n2: broken\n4: x;y\n\n" +
		"c.xls: Only CSV and .xlsx files can be converted"
	if got := testBatch().Report(); got != want {
		t.Errorf("Report() = %q, want %q", got, want)
	}

	clean := &Batch{Files: []FileResult{{Name: "a.csv", Lines: []string{"a:b|c:d"}}}}
	if got := clean.Report(); got != "" {
		t.Errorf("clean Report() = %q, want empty", got)
	}
}

func TestNewConversionRecord(t *testing.T) {
	b := testBatch()
	got := NewConversionRecord(b, RequestMeta{IPAddress: "192.0.2.1", UserAgent: "test"})

	want := ConversionRecord{
		ID:           b.ID,
		CreatedAt:    b.CreatedAt,
		FileCount:    3,
		LineCount:    2,
		InvalidCount: 2,
		Files: []FileSummary{
			{Name: "a.csv", Format: FormatText, Delimiter: Comma, LineCount: 1},
			{Name: "b.csv", Format: FormatText, Delimiter: Semicolon, LineCount: 1, InvalidCount: 2},
			{Name: "c.xls", Error: "Only CSV and .xlsx files can be converted"},
		},
		IPAddress: "192.0.2.1",
		UserAgent: "test",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("NewConversionRecord() mismatch (-want +got):\n%s", diff)
	}
}

func TestRequestMetaFromContext(t *testing.T) {
	if got := RequestMetaFromContext(t.Context()); got != (RequestMeta{}) {
		t.Errorf("empty context meta = %+v", got)
	}

	ctx := ContextWithRequestMeta(t.Context(), RequestMeta{IPAddress: "198.51.100.7"})
	if got := RequestMetaFromContext(ctx); got.IPAddress != "198.51.100.7" {
		t.Errorf("IPAddress = %q", got.IPAddress)
	}
}
