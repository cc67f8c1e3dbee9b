package source

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"GrantRadar/internal/connector"
	"GrantRadar/internal/domain"
)

const defaultSMTechBaseURL = "https://www.smtech.go.kr"

// announcementExpr gates candidate links to announcement-looking texts.
var announcementExpr = regexp.MustCompile(`공고|모집|지원|사업|프로그램|행사|설명회|세미나|교육`)

// SMTech conservatively collects candidate announcement links from
// explicitly configured public list pages. The portal has login/SSO
// walls on most paths, so only operator-vetted list URLs are scraped.
// Scraped links carry no application window, which keeps them outside
// the temporal admission window by construction.
type SMTech struct {
	client *http.Client
	logger *slog.Logger
}

// NewSMTech wires an HTTP client; a nil client gets a 20s timeout default.
func NewSMTech(client *http.Client, logger *slog.Logger) *SMTech {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &SMTech{client: client, logger: logger}
}

// Name identifies the strategy inside the registry.
func (c *SMTech) Name() string {
	return "smtech_public"
}

// Fetch scrapes each configured list page for announcement links.
// Unconfigured or failing pages degrade to zero items.
func (c *SMTech) Fetch(ctx context.Context, src connector.Source) ([]domain.RawItem, error) {
	if len(src.Web.ListURLs) == 0 {
		c.info("no public list urls configured, skipping source", "source", src.ID)
		return nil, nil
	}

	baseURL := firstNonEmpty(src.Web.BaseURL, defaultSMTechBaseURL)
	sourceID := firstNonEmpty(src.ID, "smtech")

	var results []domain.RawItem
	for _, listURL := range src.Web.ListURLs {
		doc, err := c.fetchDocument(ctx, listURL)
		if err != nil {
			c.warn("list page request failed", "url", listURL, "error", err)
			continue
		}

		doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
			text := strings.Join(strings.Fields(sel.Text()), " ")
			href, _ := sel.Attr("href")
			href = strings.TrimSpace(href)

			if href == "" || utf8.RuneCountInString(text) < 4 {
				return
			}
			if !announcementExpr.MatchString(text) {
				return
			}

			fullURL := resolveHref(baseURL, href)
			results = append(results, domain.RawItem{
				Source:      sourceID,
				SourceID:    contentHash(sourceID, text, fullURL),
				Title:       text,
				URL:         fullURL,
				PublishedAt: nowISO(),
				Raw: map[string]any{
					"list_url": listURL,
					"href":     href,
				},
			})
		})
	}

	c.debug("collection done", "source", sourceID, "items", len(results))
	return results, nil
}

func (c *SMTech) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "GrantRadar/1.0")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("smtech returned %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	return doc, nil
}

func resolveHref(baseURL, href string) string {
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	base := strings.TrimRight(baseURL, "/")
	if strings.HasPrefix(href, "/") {
		return base + href
	}
	return base + "/" + strings.TrimLeft(href, "/")
}

func (c *SMTech) debug(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Debug(msg, args...)
	}
}

func (c *SMTech) info(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Info(msg, args...)
	}
}

func (c *SMTech) warn(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Warn(msg, args...)
	}
}
