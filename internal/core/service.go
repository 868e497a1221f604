package core

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/JonMunkholm/csvtotext/internal/config"
	"github.com/JonMunkholm/csvtotext/internal/logging"
	"github.com/google/uuid"
	"github.com/sourcegraph/conc/pool"
)

// DefaultDecodeWorkers bounds how many files of one batch are decoded at once.
const DefaultDecodeWorkers = 4

// Service provides batch conversion on top of the pure conversion functions.
// History and cache are optional; a nil value disables them.
type Service struct {
	opts     ConvertOptions
	maxFiles int
	workers  int
	timeout  time.Duration

	limiter *ConversionLimiter
	history History
	cache   ResultCache
}

// NewService creates a Service from configuration.
func NewService(cfg *config.Config, history History, cache ResultCache) (*Service, error) {
	seps := Separators{
		WordHint: cfg.Conversion.WordHintSeparator,
		Pair:     cfg.Conversion.PairSeparator,
	}
	if err := seps.Validate(); err != nil {
		return nil, err
	}

	workers := cfg.Conversion.DecodeWorkers
	if workers <= 0 {
		workers = DefaultDecodeWorkers
	}

	return &Service{
		opts: ConvertOptions{
			Separators:  seps,
			MaxFileSize: cfg.Conversion.MaxFileSize,
			Sheet:       cfg.Conversion.Sheet,
		},
		maxFiles: cfg.Conversion.MaxFiles,
		workers:  workers,
		timeout:  cfg.Conversion.Timeout,
		limiter:  NewConversionLimiter(cfg.Conversion.MaxConcurrent, cfg.Conversion.MaxWaitTime),
		history:  history,
		cache:    cache,
	}, nil
}

// Separators returns the separators used to build canonical lines.
func (s *Service) Separators() Separators {
	return s.opts.Separators
}

// Normalize converts pasted CSV text with the configured separators.
// Windows line endings are accepted.
func (s *Service) Normalize(text string) NormalizeResult {
	return NormalizeWith(CleanText(text), s.opts.Separators)
}

// Validate checks free-typed field text line by line.
func (s *Service) Validate(text string) []InvalidRow {
	return ValidateText(CleanText(text))
}

// ConvertFiles converts a batch of files.
//
// Files are decoded and normalized concurrently, then assembled in the order
// they were submitted once every file has finished. A file that cannot be read
// is reported in its FileResult and does not fail the batch.
func (s *Service) ConvertFiles(ctx context.Context, files []SourceFile) (*Batch, error) {
	if len(files) == 0 {
		return nil, ErrNoFiles
	}
	if s.maxFiles > 0 && len(files) > s.maxFiles {
		return nil, fmt.Errorf("%w: %d files, limit is %d", ErrTooManyFiles, len(files), s.maxFiles)
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.limiter.Release()

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	batch := &Batch{
		ID:         uuid.New().String(),
		CreatedAt:  time.Now().UTC(),
		Separators: s.opts.Separators,
		Files:      make([]FileResult, len(files)),
	}
	logger := logging.WithFields(ctx, "conversion_id", batch.ID)
	logger.Info("conversion started", "files", len(files))
	start := time.Now()

	p := pool.New().WithMaxGoroutines(s.workers)
	for i, f := range files {
		p.Go(func() {
			batch.Files[i] = s.convertFile(ctx, logger, f)
		})
	}
	p.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("conversion %s: %w", batch.ID, err)
	}

	lines := make([]string, 0)
	for _, f := range batch.Files {
		lines = append(lines, f.Lines...)
	}
	batch.Lines = lines

	logger.Info("conversion completed",
		"files", len(files),
		"lines", len(batch.Lines),
		"invalid_rows", batch.InvalidCount(),
		"failed_files", batch.FailedCount(),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if s.history != nil {
		rec := NewConversionRecord(batch, RequestMetaFromContext(ctx))
		if err := s.history.Record(ctx, rec); err != nil {
			logger.Warn("failed to record conversion history", "error", err)
		}
	}

	return batch, nil
}

// convertFile converts one file, consulting the cache first.
// Panics are turned into a failed FileResult so one bad file cannot take
// down the batch.
func (s *Service) convertFile(ctx context.Context, logger *slog.Logger, f SourceFile) (result FileResult) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("panic in file conversion", "file", f.Name, "panic", r)
			result = failedResult(f.Name, fmt.Errorf("internal error: %v", r))
		}
	}()

	if err := ctx.Err(); err != nil {
		return failedResult(f.Name, err)
	}

	key := s.cacheKey(f.Data)
	if s.cache != nil {
		cached, ok, err := s.cache.Get(ctx, key)
		if err != nil {
			logger.Warn("cache lookup failed", "file", f.Name, "error", err)
		} else if ok {
			cached.Name = f.Name
			cached.Cached = true
			return *cached
		}
	}

	result, err := ConvertFile(f, s.opts)
	if err != nil {
		logger.Warn("file conversion failed", "file", f.Name, "error", err)
		return failedResult(f.Name, err)
	}

	if len(result.InvalidRows) > 0 {
		logger.Info("file has invalid rows", "file", f.Name, "invalid_rows", len(result.InvalidRows))
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, result); err != nil {
			logger.Warn("cache store failed", "file", f.Name, "error", err)
		}
	}
	return result
}

// failedResult builds the FileResult of a file that could not be read.
func failedResult(name string, err error) FileResult {
	msg := MapError(err)
	return FileResult{
		Name:      name,
		Lines:     []string{},
		Error:     msg.Message,
		ErrorCode: msg.Code,
	}
}

// cacheKey identifies a conversion by file content and the options that
// shape its output.
func (s *Service) cacheKey(data []byte) string {
	h := sha256.New()
	h.Write([]byte(s.opts.Separators.WordHint))
	h.Write([]byte{0})
	h.Write([]byte(s.opts.Separators.Pair))
	h.Write([]byte{0})
	h.Write([]byte(s.opts.Sheet))
	h.Write([]byte{0})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// GetConversion returns a recorded conversion.
func (s *Service) GetConversion(ctx context.Context, id string) (*ConversionRecord, error) {
	if s.history == nil {
		return nil, ErrHistoryDisabled
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrConversionNotFound, id)
	}
	return s.history.Get(ctx, id)
}

// RecentConversions returns the most recent conversions, newest first.
func (s *Service) RecentConversions(ctx context.Context, limit int) ([]ConversionRecord, error) {
	if s.history == nil {
		return nil, ErrHistoryDisabled
	}
	return s.history.Recent(ctx, limit)
}

// HistoryEnabled reports whether conversions are recorded.
func (s *Service) HistoryEnabled() bool {
	return s.history != nil
}

// CacheEnabled reports whether converted files are cached.
func (s *Service) CacheEnabled() bool {
	return s.cache != nil
}

// LimiterStatus returns the conversion limiter state.
func (s *Service) LimiterStatus() LimiterStatus {
	return s.limiter.Status()
}

// WaitForConversions blocks until running conversions finish or ctx is done.
func (s *Service) WaitForConversions(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}
