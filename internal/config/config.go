package config

import (
	"fmt"
	"log"
	"os"

	"gopkg.in/yaml.v3"

	"GrantRadar/internal/domain"
)

const (
	configPathEnv   = "GRANT_RADAR_CONFIG"
	databasePathEnv = "DATABASE_PATH"
	webhookURLEnv   = "SLACK_WEBHOOK_URL"
	archiveDirEnv   = "ARCHIVE_DIR"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging  LoggingConfig  `yaml:"logging"`
	Database DatabaseConfig `yaml:"database"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	Slack    SlackConfig    `yaml:"slack"`
	Archive  ArchiveConfig  `yaml:"archive"`
	// RulesPath locates the keyword rule policy document.
	RulesPath string         `yaml:"rulesPath"`
	Sources   []SourceConfig `yaml:"sources"`
}

// LoggingConfig controls slog verbosity.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DatabaseConfig locates the seen-item store file.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// PipelineConfig tunes the admission window and result cap.
type PipelineConfig struct {
	LookbackDays int `yaml:"lookbackDays"`
	MaxItems     int `yaml:"maxItems"`
}

// SlackConfig wires the notification webhook.
type SlackConfig struct {
	WebhookURL string `yaml:"webhookUrl"`
}

// ArchiveConfig locates the per-run JSON archive directory.
type ArchiveConfig struct {
	Dir string `yaml:"dir"`
}

// SourceConfig describes a single origin with its connector strategy.
type SourceConfig struct {
	ID        string            `yaml:"id"`
	Connector string            `yaml:"connector"`
	Enabled   bool              `yaml:"enabled"`
	Endpoint  string            `yaml:"endpoint"`
	API       APISourceConfig   `yaml:"api"`
	RSS       RSSSourceConfig   `yaml:"rss"`
	Web       WebSourceConfig   `yaml:"web"`
	Options   map[string]string `yaml:"options"`
}

// APISourceConfig holds paginated OpenAPI parameters.
type APISourceConfig struct {
	BaseURL          string            `yaml:"baseUrl"`
	Endpoints        map[string]string `yaml:"endpoints"`
	EnabledEndpoints []string          `yaml:"enabledEndpoints"`
	ServiceKeyEnv    string            `yaml:"serviceKeyEnv"`
	ServiceKeyParam  string            `yaml:"serviceKeyParam"`
	ReturnType       string            `yaml:"returnType"`
	PerPage          int               `yaml:"perPage"`
	MaxPagesPerRun   int               `yaml:"maxPagesPerRun"`
}

// RSSSourceConfig holds the feed endpoint.
type RSSSourceConfig struct {
	FeedURL string `yaml:"feedUrl"`
}

// WebSourceConfig holds public list pages for scraping connectors.
type WebSourceConfig struct {
	BaseURL  string   `yaml:"baseUrl"`
	ListURLs []string `yaml:"listUrls"`
}

// Load reads YAML configuration (if present) and applies environment
// overrides. A missing or broken file degrades to defaults with a log
// line rather than failing the run.
func Load(path string) Config {
	cfg := defaultConfig()

	if path == "" {
		path = os.Getenv(configPathEnv)
	}
	if path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()

	if len(cfg.Sources) == 0 {
		cfg.Sources = defaultConfig().Sources
	}

	return cfg
}

// LoadRules reads the keyword rule policy from its own YAML document.
func LoadRules(path string) (domain.RulePolicy, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return domain.RulePolicy{}, fmt.Errorf("read rules: %w", err)
	}

	var policy domain.RulePolicy
	if err := yaml.Unmarshal(raw, &policy); err != nil {
		return domain.RulePolicy{}, fmt.Errorf("parse rules %s: %w", path, err)
	}

	return policy, nil
}

// EnabledSources filters the configured sources down to the enabled ones,
// optionally narrowed by an allow-list of source ids. Order is preserved:
// it defines the processing order of the run.
func (c Config) EnabledSources(only []string) []SourceConfig {
	allow := map[string]bool{}
	for _, id := range only {
		allow[id] = true
	}

	var out []SourceConfig
	for _, src := range c.Sources {
		if !src.Enabled {
			continue
		}
		if len(allow) > 0 && !allow[src.ID] {
			continue
		}
		out = append(out, src)
	}
	return out
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(databasePathEnv); v != "" {
		c.Database.Path = v
	}

	if v := os.Getenv(webhookURLEnv); v != "" {
		c.Slack.WebhookURL = v
	}

	if v := os.Getenv(archiveDirEnv); v != "" {
		c.Archive.Dir = v
	}
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging = override.Logging
	}

	if override.Database.Path != "" {
		base.Database = override.Database
	}

	if override.Pipeline.LookbackDays != 0 {
		base.Pipeline.LookbackDays = override.Pipeline.LookbackDays
	}
	if override.Pipeline.MaxItems != 0 {
		base.Pipeline.MaxItems = override.Pipeline.MaxItems
	}

	if override.Slack.WebhookURL != "" {
		base.Slack.WebhookURL = override.Slack.WebhookURL
	}

	if override.Archive.Dir != "" {
		base.Archive.Dir = override.Archive.Dir
	}

	if override.RulesPath != "" {
		base.RulesPath = override.RulesPath
	}

	if len(override.Sources) > 0 {
		base.Sources = override.Sources
	}

	return base
}

func defaultConfig() Config {
	return Config{
		Logging:   LoggingConfig{Level: "info"},
		Database:  DatabaseConfig{Path: "radar.db"},
		Pipeline:  PipelineConfig{LookbackDays: 7},
		Archive:   ArchiveConfig{Dir: "runs"},
		RulesPath: "rules.yaml",
		Sources: []SourceConfig{
			{
				ID:        "kstartup",
				Connector: "kstartup_api",
				Enabled:   true,
				API: APISourceConfig{
					BaseURL: "https://apis.data.go.kr/B552735/kisedKstartupService01",
				},
			},
			{
				ID:        "knowhow",
				Connector: "knowhow_feed",
				Enabled:   true,
				RSS:       RSSSourceConfig{FeedURL: "https://knowhow.ceo/feed"},
			},
			{
				ID:        "smtech",
				Connector: "smtech_public",
				Enabled:   false,
				Web:       WebSourceConfig{BaseURL: "https://www.smtech.go.kr"},
			},
		},
	}
}
