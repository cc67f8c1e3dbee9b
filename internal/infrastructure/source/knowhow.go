package source

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/SlyMarbo/rss"
	"github.com/samber/lo"

	"GrantRadar/internal/connector"
	"GrantRadar/internal/domain"
)

const defaultKnowhowFeedURL = "https://knowhow.ceo/feed"

// Knowhow reads the KNOWHOW announcement RSS feed. The feed carries no
// application window, only publish dates.
type Knowhow struct {
	logger *slog.Logger
}

// NewKnowhow builds the RSS connector.
func NewKnowhow(logger *slog.Logger) *Knowhow {
	return &Knowhow{logger: logger}
}

// Name identifies the strategy inside the registry.
func (c *Knowhow) Name() string {
	return "knowhow_feed"
}

// Fetch loads the configured feed and maps its entries to raw items.
// Feed failures degrade to zero items.
func (c *Knowhow) Fetch(ctx context.Context, src connector.Source) ([]domain.RawItem, error) {
	feedURL := firstNonEmpty(src.RSS.FeedURL, src.Endpoint, defaultKnowhowFeedURL)
	sourceID := firstNonEmpty(src.ID, "knowhow")

	feed, err := c.loadFeed(ctx, feedURL)
	if err != nil {
		c.warn("feed request failed", "url", feedURL, "error", err)
		return nil, nil
	}

	items := lo.Map(feed.Items, func(entry *rss.Item, _ int) domain.RawItem {
		published := nowISO()
		if entry.DateValid && !entry.Date.IsZero() {
			published = entry.Date.UTC().Format(time.RFC3339)
		}

		id := strings.TrimSpace(entry.ID)
		if id == "" {
			id = contentHash(sourceID, entry.Title, entry.Link, published)
		}

		return domain.RawItem{
			Source:      sourceID,
			SourceID:    id,
			Title:       strings.TrimSpace(entry.Title),
			URL:         strings.TrimSpace(entry.Link),
			PublishedAt: published,
			Summary:     strings.TrimSpace(entry.Summary),
			Content:     strings.TrimSpace(entry.Content),
			Raw: map[string]any{
				"title": entry.Title,
				"link":  entry.Link,
				"date":  published,
			},
		}
	})

	c.debug("feed parsed", "url", feedURL, "items", len(items))
	return items, nil
}

// loadFeed runs the blocking feed fetch in a goroutine so the context
// can still cancel the wait.
func (c *Knowhow) loadFeed(ctx context.Context, feedURL string) (*rss.Feed, error) {
	var (
		feedCh = make(chan *rss.Feed, 1)
		errCh  = make(chan error, 1)
	)

	go func() {
		feed, err := rss.Fetch(feedURL)
		if err != nil {
			errCh <- err
			return
		}
		feedCh <- feed
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case err := <-errCh:
		return nil, err
	case feed := <-feedCh:
		return feed, nil
	}
}

func (c *Knowhow) debug(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Debug(msg, args...)
	}
}

func (c *Knowhow) warn(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Warn(msg, args...)
	}
}
