package slack

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"GrantRadar/internal/domain"
)

func sampleItems(n int) []domain.NormalizedItem {
	items := make([]domain.NormalizedItem, 0, n)
	for i := 0; i < n; i++ {
		items = append(items, domain.NormalizedItem{
			Title:    fmt.Sprintf("공고 %d", i+1),
			Link:     fmt.Sprintf("https://example.go.kr/%d", i+1),
			Keywords: []string{"창업"},
		})
	}
	return items
}

func TestNotifyPostsTextPayload(t *testing.T) {
	t.Parallel()

	var payload map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &payload))
	}))
	defer srv.Close()

	err := NewNotifier(srv.URL).Notify(context.Background(), sampleItems(2))
	require.NoError(t, err)
	assert.Contains(t, payload["text"], "2 new grant announcements")
	assert.Contains(t, payload["text"], "공고 1")
}

func TestNotifyNonSuccessStatusIsError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid_token", http.StatusForbidden)
	}))
	defer srv.Close()

	err := NewNotifier(srv.URL).Notify(context.Background(), sampleItems(1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
	assert.Contains(t, err.Error(), "invalid_token")
}

func TestNotifyEmptyWebhookURL(t *testing.T) {
	t.Parallel()

	err := NewNotifier("").Notify(context.Background(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "webhook url is empty")
}

func TestBuildMessageEmptyRun(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "[grant-radar] no new grant announcements", BuildMessage(nil))
}

func TestBuildMessageCapsDetailButNotCount(t *testing.T) {
	t.Parallel()

	msg := BuildMessage(sampleItems(25))

	assert.Contains(t, msg, "25 new grant announcements")
	assert.Equal(t, MaxNotifyItems, strings.Count(msg, "\n• "), "only ten item blocks rendered")
	assert.Contains(t, msg, "... and 15 more")
	assert.NotContains(t, msg, "공고 11")
}

func TestBuildMessageItemBlock(t *testing.T) {
	t.Parallel()

	msg := BuildMessage([]domain.NormalizedItem{{
		Title:      "수출바우처 모집",
		Link:       "https://example.go.kr/1",
		ApplyStart: "20250901",
		ApplyEnd:   "20250930",
		Keywords:   []string{"바우처", "수출"},
	}})

	assert.Contains(t, msg, "• 수출바우처 모집")
	assert.Contains(t, msg, "apply: 20250901 ~ 20250930")
	assert.Contains(t, msg, "keywords: 바우처, 수출")
	assert.NotContains(t, msg, "... and")
}
