package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"GrantRadar/internal/domain"
	"GrantRadar/internal/ports"
)

// MaxNotifyItems caps how many items a single message details; the
// total count still appears in the header.
const MaxNotifyItems = 10

// Notifier posts run results to a Slack incoming webhook. It fires on
// every run, including empty ones, so the channel doubles as a
// heartbeat. A non-success response is an error: delivery failures must
// surface to the operator, not vanish.
type Notifier struct {
	webhookURL string
	client     *http.Client
}

var _ ports.Notifier = (*Notifier)(nil)

// NewNotifier registers the webhook endpoint.
func NewNotifier(webhookURL string) *Notifier {
	return &Notifier{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

// Notify sends the formatted run summary to the webhook.
func (n *Notifier) Notify(ctx context.Context, items []domain.NormalizedItem) error {
	if n.webhookURL == "" {
		return fmt.Errorf("slack notifier misconfigured: webhook url is empty")
	}

	body, err := json.Marshal(map[string]string{"text": BuildMessage(items)})
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("post to webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("slack error %s: %s", resp.Status, strings.TrimSpace(string(excerpt)))
	}

	return nil
}

// BuildMessage renders the notification text: a count header, up to
// MaxNotifyItems item blocks, and a trailer naming the overflow count.
func BuildMessage(items []domain.NormalizedItem) string {
	if len(items) == 0 {
		return "[grant-radar] no new grant announcements"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "[grant-radar] %d new grant announcements\n", len(items))

	shown := items
	if len(shown) > MaxNotifyItems {
		shown = shown[:MaxNotifyItems]
	}

	for _, item := range shown {
		fmt.Fprintf(&b, "\n• %s\n", item.Title)
		if item.Link != "" {
			fmt.Fprintf(&b, "  %s\n", item.Link)
		}
		if item.ApplyStart != "" || item.ApplyEnd != "" {
			fmt.Fprintf(&b, "  apply: %s ~ %s\n", item.ApplyStart, item.ApplyEnd)
		}
		if len(item.Keywords) > 0 {
			fmt.Fprintf(&b, "  keywords: %s\n", strings.Join(item.Keywords, ", "))
		}
	}

	if rest := len(items) - len(shown); rest > 0 {
		fmt.Fprintf(&b, "\n... and %d more", rest)
	}

	return strings.TrimRight(b.String(), "\n")
}
