// Package store persists conversion history in PostgreSQL.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/netip"
	"time"

	"github.com/JonMunkholm/csvtotext/internal/core"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
)

// Recent listing bounds.
const (
	DefaultRecentLimit = 20
	MaxRecentLimit     = 100
)

// DBTX is the subset of pgxpool.Pool and pgx.Tx the store needs.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// schema is applied by Migrate. Every statement is idempotent.
const schema = `
CREATE TABLE IF NOT EXISTS conversions (
	id            UUID PRIMARY KEY,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
	file_count    INTEGER NOT NULL,
	line_count    INTEGER NOT NULL,
	invalid_count INTEGER NOT NULL,
	files         JSONB NOT NULL DEFAULT '[]'::jsonb,
	ip_address    INET,
	user_agent    TEXT
);
CREATE INDEX IF NOT EXISTS conversions_created_at_idx ON conversions (created_at DESC);
`

const (
	insertConversion = `INSERT INTO conversions
		(id, created_at, file_count, line_count, invalid_count, files, ip_address, user_agent)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	selectConversion = `SELECT id, created_at, file_count, line_count, invalid_count,
		files, ip_address, user_agent
		FROM conversions`

	deleteConversionsBefore = `DELETE FROM conversions WHERE created_at < $1`

	truncateConversions = `TRUNCATE conversions`
)

// Store implements core.History on PostgreSQL.
type Store struct {
	db DBTX
}

// New creates a Store. Pass a *pgxpool.Pool in production.
func New(db DBTX) *Store {
	return &Store{db: db}
}

// Migrate creates the conversions table if it does not exist.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("migrate conversions: %w", err)
	}
	return nil
}

// Record inserts a conversion record.
func (s *Store) Record(ctx context.Context, rec core.ConversionRecord) error {
	id := toPgUUID(rec.ID)
	if !id.Valid {
		return fmt.Errorf("record conversion: invalid id %q", rec.ID)
	}

	files := rec.Files
	if files == nil {
		files = []core.FileSummary{}
	}
	filesJSON, err := json.Marshal(files)
	if err != nil {
		return fmt.Errorf("record conversion %s: marshal files: %w", rec.ID, err)
	}

	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err = s.db.Exec(ctx, insertConversion,
		id,
		pgtype.Timestamptz{Time: createdAt, Valid: true},
		rec.FileCount,
		rec.LineCount,
		rec.InvalidCount,
		filesJSON,
		toInet(rec.IPAddress),
		toPgText(rec.UserAgent),
	)
	if err != nil {
		return fmt.Errorf("record conversion %s: %w", rec.ID, err)
	}
	return nil
}

// Get returns one conversion record, or core.ErrConversionNotFound.
func (s *Store) Get(ctx context.Context, id string) (*core.ConversionRecord, error) {
	pgID := toPgUUID(id)
	if !pgID.Valid {
		return nil, fmt.Errorf("%w: %s", core.ErrConversionNotFound, id)
	}

	rec, err := scanConversion(s.db.QueryRow(ctx, selectConversion+" WHERE id = $1", pgID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", core.ErrConversionNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get conversion %s: %w", id, err)
	}
	return rec, nil
}

// Recent returns up to limit records, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]core.ConversionRecord, error) {
	rows, err := s.db.Query(ctx, selectConversion+" ORDER BY created_at DESC LIMIT $1", clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("list conversions: %w", err)
	}
	defer rows.Close()

	records := make([]core.ConversionRecord, 0)
	for rows.Next() {
		rec, err := scanConversion(rows)
		if err != nil {
			return nil, fmt.Errorf("list conversions: %w", err)
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list conversions: %w", err)
	}
	return records, nil
}

// Prune deletes records created before the cutoff and returns how many went.
func (s *Store) Prune(ctx context.Context, before time.Time) (int64, error) {
	tag, err := s.db.Exec(ctx, deleteConversionsBefore, pgtype.Timestamptz{Time: before, Valid: true})
	if err != nil {
		return 0, fmt.Errorf("prune conversions: %w", err)
	}
	return tag.RowsAffected(), nil
}

// Reset deletes every conversion record.
func (s *Store) Reset(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, truncateConversions); err != nil {
		return fmt.Errorf("reset conversions: %w", err)
	}
	return nil
}

// scanConversion reads one row in selectConversion column order.
func scanConversion(row pgx.Row) (*core.ConversionRecord, error) {
	var (
		id           pgtype.UUID
		createdAt    pgtype.Timestamptz
		fileCount    int32
		lineCount    int32
		invalidCount int32
		filesJSON    []byte
		ipAddress    *netip.Addr
		userAgent    pgtype.Text
	)

	err := row.Scan(&id, &createdAt, &fileCount, &lineCount, &invalidCount,
		&filesJSON, &ipAddress, &userAgent)
	if err != nil {
		return nil, err
	}

	rec := &core.ConversionRecord{
		ID:           uuidToString(id),
		CreatedAt:    createdAt.Time,
		FileCount:    int(fileCount),
		LineCount:    int(lineCount),
		InvalidCount: int(invalidCount),
		Files:        []core.FileSummary{},
	}
	if len(filesJSON) > 0 {
		if err := json.Unmarshal(filesJSON, &rec.Files); err != nil {
			return nil, fmt.Errorf("decode files: %w", err)
		}
	}
	if ipAddress != nil {
		rec.IPAddress = ipAddress.String()
	}
	if userAgent.Valid {
		rec.UserAgent = userAgent.String
	}
	return rec, nil
}

func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultRecentLimit
	case limit > MaxRecentLimit:
		return MaxRecentLimit
	default:
		return limit
	}
}

func toPgText(s string) pgtype.Text {
	if s == "" {
		return pgtype.Text{Valid: false}
	}
	return pgtype.Text{String: s, Valid: true}
}

func toPgUUID(s string) pgtype.UUID {
	parsed, err := uuid.Parse(s)
	if err != nil {
		return pgtype.UUID{Valid: false}
	}
	return pgtype.UUID{Bytes: parsed, Valid: true}
}

func uuidToString(u pgtype.UUID) string {
	if !u.Valid {
		return ""
	}
	return uuid.UUID(u.Bytes).String()
}

// toInet returns nil for addresses that do not parse, storing NULL.
func toInet(s string) *netip.Addr {
	addr, err := netip.ParseAddr(s)
	if err != nil {
		ap, err := netip.ParseAddrPort(s)
		if err != nil {
			return nil
		}
		addr = ap.Addr()
	}
	return &addr
}
