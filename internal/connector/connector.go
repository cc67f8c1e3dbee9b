package connector

import (
	"context"
	"fmt"

	"GrantRadar/internal/domain"
)

// APIConfig carries paginated OpenAPI parameters for API-backed sources.
type APIConfig struct {
	BaseURL          string
	Endpoints        map[string]string
	EnabledEndpoints []string
	ServiceKeyEnv    string
	ServiceKeyParam  string
	ReturnType       string
	PerPage          int
	MaxPagesPerRun   int
}

// RSSConfig points at a feed endpoint.
type RSSConfig struct {
	FeedURL string
}

// WebConfig lists public pages to scrape for announcement links.
type WebConfig struct {
	BaseURL  string
	ListURLs []string
}

// Source describes one configured origin handed to its connector.
type Source struct {
	ID       string
	Endpoint string
	API      APIConfig
	RSS      RSSConfig
	Web      WebConfig
	Options  map[string]string
}

// Connector turns one source's native responses into raw items.
// Implementations recover transient network and parse failures
// internally: a source that produced nothing is not an error.
type Connector interface {
	Name() string
	Fetch(ctx context.Context, src Source) ([]domain.RawItem, error)
}

// Registry keeps a mapping from connector names to their implementations.
type Registry struct {
	connectors map[string]Connector
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{connectors: map[string]Connector{}}
}

// Register adds or replaces a connector implementation.
func (r *Registry) Register(c Connector) {
	if r.connectors == nil {
		r.connectors = map[string]Connector{}
	}
	r.connectors[c.Name()] = c
}

// Resolve returns a connector by name or an error if it is absent.
func (r *Registry) Resolve(name string) (Connector, error) {
	if c, ok := r.connectors[name]; ok {
		return c, nil
	}
	return nil, fmt.Errorf("connector %s is not registered", name)
}
