package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"GrantRadar/internal/domain"
)

func openTestStore(t *testing.T) (*SQLiteStore, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "seen.db")
	store, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	return store, path
}

func record(id string) domain.SeenRecord {
	return domain.SeenRecord{
		SourceID:    id,
		Source:      "kstartup",
		Title:       "창업도약패키지",
		URL:         "https://example.go.kr/" + id,
		FirstSeenAt: time.Date(2025, time.August, 30, 9, 0, 0, 0, time.UTC),
	}
}

func TestMarkIfNewFirstObservationWins(t *testing.T) {
	t.Parallel()

	store, _ := openTestStore(t)
	ctx := context.Background()

	isNew, err := store.MarkIfNew(ctx, record("a-1"))
	require.NoError(t, err)
	assert.True(t, isNew)

	isNew, err = store.MarkIfNew(ctx, record("a-1"))
	require.NoError(t, err)
	assert.False(t, isNew, "second observation of the same id is not new")
}

func TestHasSeen(t *testing.T) {
	t.Parallel()

	store, _ := openTestStore(t)
	ctx := context.Background()

	seen, err := store.HasSeen(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, seen)

	_, err = store.MarkIfNew(ctx, record("b-1"))
	require.NoError(t, err)

	seen, err = store.HasSeen(ctx, "b-1")
	require.NoError(t, err)
	assert.True(t, seen)
}

func TestMarkSeenIsIdempotent(t *testing.T) {
	t.Parallel()

	store, _ := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.MarkSeen(ctx, record("c-1")))
	require.NoError(t, store.MarkSeen(ctx, record("c-1")))

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestRecordsSurviveReopen(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "seen.db")
	ctx := context.Background()

	store, err := Open(path)
	require.NoError(t, err)
	_, err = store.MarkIfNew(ctx, record("d-1"))
	require.NoError(t, err)
	require.NoError(t, store.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	isNew, err := reopened.MarkIfNew(ctx, record("d-1"))
	require.NoError(t, err)
	assert.False(t, isNew, "durability is the whole point of the store")
}

func TestCount(t *testing.T) {
	t.Parallel()

	store, _ := openTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"e-1", "e-2", "e-3"} {
		_, err := store.MarkIfNew(ctx, record(id))
		require.NoError(t, err)
	}

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 3, count)
}
