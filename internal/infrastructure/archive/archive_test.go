package archive

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"GrantRadar/internal/domain"
)

var generatedAt = time.Date(2025, time.August, 30, 9, 15, 42, 0, time.UTC)

func TestSaveWritesTimestampedRecord(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "archive")
	writer := NewWriter(dir)

	items := []domain.NormalizedItem{{
		Source:   "kstartup",
		SourceID: "174201",
		Title:    "창업도약패키지",
		Link:     "https://example.go.kr/174201",
		Keywords: []string{"창업"},
	}}

	path, err := writer.Save(generatedAt, items)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "grants-20250830T091542Z.json"), path)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var record struct {
		GeneratedAt string                  `json:"generated_at"`
		Count       int                     `json:"count"`
		Items       []domain.NormalizedItem `json:"items"`
	}
	require.NoError(t, json.Unmarshal(raw, &record))
	assert.Equal(t, "2025-08-30T09:15:42Z", record.GeneratedAt)
	assert.Equal(t, 1, record.Count)
	require.Len(t, record.Items, 1)
	assert.Equal(t, "174201", record.Items[0].SourceID)
}

func TestSaveNeverOverwrites(t *testing.T) {
	t.Parallel()

	writer := NewWriter(t.TempDir())

	_, err := writer.Save(generatedAt, nil)
	require.NoError(t, err)

	_, err = writer.Save(generatedAt, nil)
	require.Error(t, err, "same timestamp means same file name; the second save must fail")
}

func TestSaveNilItemsSerializeAsEmptyList(t *testing.T) {
	t.Parallel()

	writer := NewWriter(t.TempDir())

	path, err := writer.Save(generatedAt, nil)
	require.NoError(t, err)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"items": []`)
	assert.NotContains(t, string(raw), "null")
}
