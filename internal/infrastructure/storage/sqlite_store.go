package storage

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"GrantRadar/internal/domain"
	"GrantRadar/internal/ports"
)

const schema = `
CREATE TABLE IF NOT EXISTS seen_items (
	source_id     TEXT PRIMARY KEY,
	source        TEXT NOT NULL DEFAULT '',
	title         TEXT NOT NULL DEFAULT '',
	url           TEXT NOT NULL DEFAULT '',
	first_seen_at TEXT NOT NULL
);`

var builder = sq.StatementBuilder.PlaceholderFormat(sq.Question)

// SQLiteStore is the durable seen-item record. The table is append-only:
// rows are inserted once and never updated or deleted. A single open
// connection is enough since the store is single-writer by design.
type SQLiteStore struct {
	db *sqlx.DB
}

var _ ports.SeenStore = (*SQLiteStore)(nil)

// Open connects to (or creates) the store file and ensures the schema.
func Open(path string) (*SQLiteStore, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)

	db, err := sqlx.Connect("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open seen store: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate seen store: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close releases the underlying connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// MarkIfNew atomically records the item as seen and reports whether this
// was its first observation. The conflict clause makes the check and the
// mark a single statement, so there is no race between them within a run.
func (s *SQLiteStore) MarkIfNew(ctx context.Context, rec domain.SeenRecord) (bool, error) {
	firstSeen := rec.FirstSeenAt
	if firstSeen.IsZero() {
		firstSeen = time.Now()
	}

	query, args, err := builder.
		Insert("seen_items").
		Columns("source_id", "source", "title", "url", "first_seen_at").
		Values(rec.SourceID, rec.Source, rec.Title, rec.URL, firstSeen.UTC().Format(time.RFC3339)).
		Suffix("ON CONFLICT(source_id) DO NOTHING").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build insert: %w", err)
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("mark seen %s: %w", rec.SourceID, err)
	}

	inserted, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}

	return inserted == 1, nil
}

// HasSeen reports whether the id was recorded by any prior observation.
func (s *SQLiteStore) HasSeen(ctx context.Context, sourceID string) (bool, error) {
	query, args, err := builder.
		Select("COUNT(1)").
		From("seen_items").
		Where(sq.Eq{"source_id": sourceID}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build select: %w", err)
	}

	var count int
	if err := s.db.GetContext(ctx, &count, query, args...); err != nil {
		return false, fmt.Errorf("query seen %s: %w", sourceID, err)
	}

	return count > 0, nil
}

// MarkSeen records the item unconditionally; marking an already-seen id
// is a no-op, not an error.
func (s *SQLiteStore) MarkSeen(ctx context.Context, rec domain.SeenRecord) error {
	_, err := s.MarkIfNew(ctx, rec)
	return err
}

// Count returns the number of recorded items, for operator diagnostics.
func (s *SQLiteStore) Count(ctx context.Context) (int64, error) {
	query, _, err := builder.Select("COUNT(1)").From("seen_items").ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count: %w", err)
	}

	var count int64
	if err := s.db.GetContext(ctx, &count, query); err != nil {
		return 0, fmt.Errorf("count seen: %w", err)
	}

	return count, nil
}
