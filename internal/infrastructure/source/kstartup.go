package source

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/tomakado/containers/set"

	"GrantRadar/internal/connector"
	"GrantRadar/internal/domain"
)

const (
	defaultKStartupBaseURL = "https://apis.data.go.kr/B552735/kisedKstartupService01"
	defaultServiceKeyEnv   = "DATA_GO_KR_SERVICE_KEY"
	defaultServiceKeyParam = "ServiceKey"
	defaultPerPage         = 100
	defaultMaxPagesPerRun  = 30
	kstartupBaseURLEnv     = "KSTARTUP_BASE_URL"
	defaultKStartupReturn  = "json"
)

var defaultKStartupEndpoints = map[string]string{
	"announcements": "/getAnnouncementInformation01",
	"business":      "/getBusinessInformation01",
	"content":       "/getContentInformation01",
	"stats":         "/getStatisticalInformation01",
}

// KStartup pulls grant announcements from the data.go.kr K-Startup
// OpenAPI. The response envelope varies between endpoint versions, so
// both the item container and the individual fields are resolved through
// alias chains rather than a fixed schema.
type KStartup struct {
	client *http.Client
	logger *slog.Logger
}

// NewKStartup wires an HTTP client; a nil client gets a 20s timeout default.
func NewKStartup(client *http.Client, logger *slog.Logger) *KStartup {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &KStartup{client: client, logger: logger}
}

// Name identifies the strategy inside the registry.
func (k *KStartup) Name() string {
	return "kstartup_api"
}

// Fetch pages through each enabled endpoint until an empty page, the
// totalCount boundary, or a short page signals the end. A missing
// service key or a failed request degrades to whatever was collected so
// far; it never fails the run.
func (k *KStartup) Fetch(ctx context.Context, src connector.Source) ([]domain.RawItem, error) {
	api := src.API

	baseURL := firstNonEmpty(api.BaseURL, src.Endpoint, os.Getenv(kstartupBaseURLEnv), defaultKStartupBaseURL)
	endpoints := api.Endpoints
	if len(endpoints) == 0 {
		endpoints = defaultKStartupEndpoints
	}
	enabled := api.EnabledEndpoints
	if len(enabled) == 0 {
		enabled = []string{"announcements", "business"}
	}

	perPage := api.PerPage
	if perPage <= 0 {
		perPage = defaultPerPage
	}
	maxPages := api.MaxPagesPerRun
	if maxPages <= 0 {
		maxPages = defaultMaxPagesPerRun
	}
	returnType := firstNonEmpty(api.ReturnType, defaultKStartupReturn)
	keyEnv := firstNonEmpty(api.ServiceKeyEnv, defaultServiceKeyEnv)
	keyParam := firstNonEmpty(api.ServiceKeyParam, defaultServiceKeyParam)

	serviceKey := strings.TrimSpace(os.Getenv(keyEnv))
	if serviceKey == "" {
		k.warn("service key not set, skipping source", "env", keyEnv, "source", src.ID)
		return nil, nil
	}

	sourceID := firstNonEmpty(src.ID, "kstartup")
	ids := set.New[string]()
	var all []domain.RawItem

	for _, epName := range enabled {
		path, ok := endpoints[epName]
		if !ok || path == "" {
			k.warn("endpoint has no configured path, skipping", "endpoint", epName)
			continue
		}
		endpointURL := strings.TrimRight(baseURL, "/") + path

		for page := 1; page <= maxPages; page++ {
			params := url.Values{}
			params.Set(keyParam, serviceKey)
			params.Set("returnType", returnType)
			params.Set("page", strconv.Itoa(page))
			params.Set("perPage", strconv.Itoa(perPage))

			payload, err := k.fetchPage(ctx, endpointURL, params)
			if err != nil {
				k.warn("page request failed", "endpoint", epName, "page", page, "error", err)
				break
			}

			items, totalCount := pickItems(payload)
			if len(items) == 0 {
				k.debug("empty page, endpoint done", "endpoint", epName, "page", page)
				break
			}

			for _, item := range mapKStartupItems(items, sourceID, epName) {
				if ids.Contains(item.SourceID) {
					continue
				}
				ids.Add(item.SourceID)
				all = append(all, item)
			}

			k.debug("page collected", "endpoint", epName, "page", page, "items", len(items), "total_so_far", len(all))

			if totalCount > 0 {
				lastPage := (totalCount + perPage - 1) / perPage
				if page >= lastPage {
					break
				}
			}
			if len(items) < perPage {
				break
			}
		}
	}

	k.debug("collection done", "source", sourceID, "items", len(all))
	return all, nil
}

func (k *KStartup) fetchPage(ctx context.Context, endpointURL string, params url.Values) (any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpointURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "GrantRadar/1.0")

	resp, err := k.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("kstartup returned %s", resp.Status)
	}

	var payload any
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}

	return payload, nil
}

// pickItems extracts the item list and total count from the OpenAPI
// response envelope, tolerating the known shape variants:
// {"response": {"body": {"items": {"item": [...]}, "totalCount": N}}},
// bare lists, and body/data/result wrappers.
func pickItems(payload any) ([]map[string]any, int) {
	if list, ok := payload.([]any); ok {
		return toItemMaps(list), len(list)
	}

	root, ok := payload.(map[string]any)
	if !ok {
		return nil, 0
	}

	envelope := root
	if r, ok := root["response"].(map[string]any); ok {
		envelope = r
	}

	body := envelope
	for _, key := range []string{"body", "data", "result"} {
		switch inner := envelope[key].(type) {
		case map[string]any:
			body = inner
		case []any:
			return toItemMaps(inner), len(inner)
		default:
			continue
		}
		break
	}

	totalCount := 0
	for _, key := range []string{"totalCount", "total_count", "total"} {
		if v, ok := body[key]; ok {
			totalCount = asInt(v)
			break
		}
	}

	var container any
	for _, key := range []string{"items", "item", "itemsList", "list", "data"} {
		if v, ok := body[key]; ok && v != nil {
			container = v
			break
		}
	}
	if m, ok := container.(map[string]any); ok {
		if inner, ok := m["item"]; ok {
			container = inner
		}
	}

	switch v := container.(type) {
	case []any:
		return toItemMaps(v), totalCount
	case map[string]any:
		return []map[string]any{v}, totalCount
	}
	return nil, totalCount
}

func toItemMaps(list []any) []map[string]any {
	items := make([]map[string]any, 0, len(list))
	for _, el := range list {
		if m, ok := el.(map[string]any); ok {
			items = append(items, m)
		} else {
			items = append(items, map[string]any{"value": el})
		}
	}
	return items
}

func asInt(v any) int {
	switch t := v.(type) {
	case float64:
		return int(t)
	case int:
		return t
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(t)); err == nil {
			return n
		}
	}
	return 0
}

// mapKStartupItems projects endpoint items onto the raw shape through
// the known field alias chains. The receipt window doubles as the
// publish date fallback because the API has no registration date on some
// endpoints.
func mapKStartupItems(items []map[string]any, sourceID, endpoint string) []domain.RawItem {
	mapped := make([]domain.RawItem, 0, len(items))

	for _, it := range items {
		nativeID := pickText(it, "pbanc_sn", "pbancSn", "id")
		title := pickText(it, "pbanc_titl_nm", "pbancTitlNm", "biz_pbanc_nm", "bizPbancNm", "title")
		link := pickText(it, "detl_pg_url", "detlPgUrl", "url")

		applyStart := pickText(it, "pbanc_rcpt_bgng_dt", "pbancRcptBgngDt")
		applyEnd := pickText(it, "pbanc_rcpt_end_dt", "pbancRcptEndDt")

		summary := pickText(it,
			"supt_biz_clsfc", "suptBizClsfc",
			"biz_supt_ctnt", "bizSuptCtnt",
			"supt_ctnt", "summary",
		)
		content := pickText(it,
			"pbanc_ctnt", "pbancCtnt",
			"supt_ctnt", "biz_supt_ctnt",
			"supt_biz_intrd_info", "suptBizIntrdInfo",
			"content",
		)

		published := firstNonEmpty(
			pickText(it, "pbanc_reg_dt", "pbancRegDt", "reg_dt", "regDt"),
			applyStart,
		)
		if published == "" {
			published = nowISO()
		}

		id := nativeID
		if id == "" {
			id = contentHash(endpoint, title, link, applyStart, applyEnd, published)
		}

		mapped = append(mapped, domain.RawItem{
			Source:      sourceID,
			SourceID:    id,
			Title:       title,
			URL:         link,
			PublishedAt: published,
			Summary:     summary,
			Content:     content,
			ApplyStart:  applyStart,
			ApplyEnd:    applyEnd,
			Raw:         it,
		})
	}

	return mapped
}

func (k *KStartup) debug(msg string, args ...any) {
	if k.logger != nil {
		k.logger.Debug(msg, args...)
	}
}

func (k *KStartup) warn(msg string, args ...any) {
	if k.logger != nil {
		k.logger.Warn(msg, args...)
	}
}
