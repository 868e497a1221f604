package core

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNoFiles is returned when a batch contains no files.
	ErrNoFiles = errors.New("no files provided")

	// ErrTooManyFiles is returned when a batch exceeds the per-request file limit.
	ErrTooManyFiles = errors.New("too many files")

	// ErrConversionNotFound is returned by History when an ID is unknown.
	ErrConversionNotFound = errors.New("conversion not found")

	// ErrHistoryDisabled is returned when no History is configured.
	ErrHistoryDisabled = errors.New("history disabled")
)

// Batch is the result of converting several files in one request.
// Lines holds every file's lines concatenated in submission order.
type Batch struct {
	ID         string       `json:"id" yaml:"id"`
	CreatedAt  time.Time    `json:"created_at" yaml:"created_at"`
	Separators Separators   `json:"separators" yaml:"separators"`
	Files      []FileResult `json:"files" yaml:"files"`
	Lines      []string     `json:"lines" yaml:"lines"`
}

// InvalidCount returns the number of malformed rows across all files.
func (b *Batch) InvalidCount() int {
	n := 0
	for _, f := range b.Files {
		n += len(f.InvalidRows)
	}
	return n
}

// FailedCount returns the number of files that could not be read.
func (b *Batch) FailedCount() int {
	n := 0
	for _, f := range b.Files {
		if f.Failed() {
			n++
		}
	}
	return n
}

// Text returns the converted lines joined by newlines.
func (b *Batch) Text() string {
	return AppendLines("", b.Lines)
}

// Report renders the problems of every file, grouped by file name.
// Returns "" when every file converted cleanly.
func (b *Batch) Report() string {
	var out string
	for _, f := range b.Files {
		var section string
		switch {
		case f.Failed():
			section = f.Name + ": " + f.Error
		case len(f.InvalidRows) > 0:
			section = f.Name + " - the following rows had errors:\n" + FormatReport(f.InvalidRows)
		default:
			continue
		}
		if out != "" {
			out += "\n\n"
		}
		out += section
	}
	return out
}

// FileSummary is the persisted outline of one converted file.
type FileSummary struct {
	Name         string     `json:"name"`
	Format       FileFormat `json:"format,omitempty"`
	Delimiter    Delimiter  `json:"delimiter,omitempty"`
	LineCount    int        `json:"line_count"`
	InvalidCount int        `json:"invalid_count"`
	Error        string     `json:"error,omitempty"`
}

// ConversionRecord is the history entry written for each batch.
// Converted text is not stored, only counts.
type ConversionRecord struct {
	ID           string        `json:"id"`
	CreatedAt    time.Time     `json:"created_at"`
	FileCount    int           `json:"file_count"`
	LineCount    int           `json:"line_count"`
	InvalidCount int           `json:"invalid_count"`
	Files        []FileSummary `json:"files"`
	IPAddress    string        `json:"ip_address,omitempty"`
	UserAgent    string        `json:"user_agent,omitempty"`
}

// NewConversionRecord summarizes a batch for the history log.
func NewConversionRecord(b *Batch, meta RequestMeta) ConversionRecord {
	files := make([]FileSummary, len(b.Files))
	for i, f := range b.Files {
		files[i] = FileSummary{
			Name:         f.Name,
			Format:       f.Format,
			Delimiter:    f.Delimiter,
			LineCount:    len(f.Lines),
			InvalidCount: len(f.InvalidRows),
			Error:        f.Error,
		}
	}
	return ConversionRecord{
		ID:           b.ID,
		CreatedAt:    b.CreatedAt,
		FileCount:    len(b.Files),
		LineCount:    len(b.Lines),
		InvalidCount: b.InvalidCount(),
		Files:        files,
		IPAddress:    meta.IPAddress,
		UserAgent:    meta.UserAgent,
	}
}

// History persists conversion records.
type History interface {
	Record(ctx context.Context, rec ConversionRecord) error
	Get(ctx context.Context, id string) (*ConversionRecord, error)
	Recent(ctx context.Context, limit int) ([]ConversionRecord, error)
	Prune(ctx context.Context, before time.Time) (int64, error)
}

// ResultCache stores converted files keyed by content.
// Get reports false on a miss.
type ResultCache interface {
	Get(ctx context.Context, key string) (*FileResult, bool, error)
	Set(ctx context.Context, key string, result FileResult) error
}
