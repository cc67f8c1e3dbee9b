package ports

import (
	"context"
	"time"

	"GrantRadar/internal/domain"
)

// ItemSource aggregates raw announcements from all enabled origins.
type ItemSource interface {
	FetchAll(ctx context.Context) ([]domain.RawItem, error)
}

// SeenStore is the durable dedup boundary. MarkIfNew performs a single
// atomic select-or-insert: it reports true exactly once per source id
// across all runs sharing the same backing store.
type SeenStore interface {
	MarkIfNew(ctx context.Context, rec domain.SeenRecord) (bool, error)
	HasSeen(ctx context.Context, sourceID string) (bool, error)
	MarkSeen(ctx context.Context, rec domain.SeenRecord) error
}

// Notifier delivers the run result to a chat channel. It is invoked even
// for empty results so the channel sees a heartbeat.
type Notifier interface {
	Notify(ctx context.Context, items []domain.NormalizedItem) error
}

// Archiver persists a run's full normalized output to a new record.
type Archiver interface {
	Save(generatedAt time.Time, items []domain.NormalizedItem) (string, error)
}
