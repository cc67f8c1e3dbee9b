package source

import (
	"context"
	"errors"
	"log/slog"

	"GrantRadar/internal/config"
	"GrantRadar/internal/connector"
	"GrantRadar/internal/domain"
	"GrantRadar/internal/ports"
)

// MultiSource implements ItemSource over the connector registry. Sources
// run strictly in configured order; a failing source degrades to zero
// items and the remaining sources still contribute.
type MultiSource struct {
	registry *connector.Registry
	sources  []config.SourceConfig
	logger   *slog.Logger
}

var _ ports.ItemSource = (*MultiSource)(nil)

// NewMultiSource wires the connector registry with config-defined sources.
func NewMultiSource(reg *connector.Registry, sources []config.SourceConfig, logger *slog.Logger) *MultiSource {
	return &MultiSource{
		registry: reg,
		sources:  sources,
		logger:   logger,
	}
}

// FetchAll collects raw items from every configured source, preserving
// source order and, within a source, fetch order.
func (s *MultiSource) FetchAll(ctx context.Context) ([]domain.RawItem, error) {
	var aggregated []domain.RawItem

	for _, site := range s.sources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		conn, err := s.registry.Resolve(site.Connector)
		if err != nil {
			s.warn("unknown connector, skipping source", "source", site.ID, "connector", site.Connector)
			continue
		}

		items, err := conn.Fetch(ctx, toConnectorSource(site))
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, err
			}
			s.warn("source fetch failed, continuing without it", "source", site.ID, "error", err)
			continue
		}

		for i := range items {
			if items[i].Source == "" {
				items[i].Source = site.ID
			}
		}

		s.debug("source produced items", "source", site.ID, "count", len(items))
		aggregated = append(aggregated, items...)
	}

	s.debug("fetch done", "total_items", len(aggregated))
	return aggregated, nil
}

func toConnectorSource(cfg config.SourceConfig) connector.Source {
	return connector.Source{
		ID:       cfg.ID,
		Endpoint: cfg.Endpoint,
		API: connector.APIConfig{
			BaseURL:          cfg.API.BaseURL,
			Endpoints:        cfg.API.Endpoints,
			EnabledEndpoints: cfg.API.EnabledEndpoints,
			ServiceKeyEnv:    cfg.API.ServiceKeyEnv,
			ServiceKeyParam:  cfg.API.ServiceKeyParam,
			ReturnType:       cfg.API.ReturnType,
			PerPage:          cfg.API.PerPage,
			MaxPagesPerRun:   cfg.API.MaxPagesPerRun,
		},
		RSS: connector.RSSConfig{FeedURL: cfg.RSS.FeedURL},
		Web: connector.WebConfig{
			BaseURL:  cfg.Web.BaseURL,
			ListURLs: cfg.Web.ListURLs,
		},
		Options: cfg.Options,
	}
}

func (s *MultiSource) debug(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}

func (s *MultiSource) warn(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}
