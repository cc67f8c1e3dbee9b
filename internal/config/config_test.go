package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaultsWhenNoFile(t *testing.T) {
	cfg := Load("")

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "radar.db", cfg.Database.Path)
	assert.Equal(t, 7, cfg.Pipeline.LookbackDays)
	assert.Equal(t, "rules.yaml", cfg.RulesPath)
	require.NotEmpty(t, cfg.Sources)
	assert.Equal(t, "kstartup", cfg.Sources[0].ID)
}

func TestLoadMergesFileOverDefaults(t *testing.T) {
	path := writeFile(t, "config.yaml", `
logging:
  level: debug
pipeline:
  lookbackDays: 14
slack:
  webhookUrl: https://hooks.slack.com/services/T/B/X
sources:
  - id: kstartup
    connector: kstartup_api
    enabled: true
    api:
      perPage: 50
`)

	cfg := Load(path)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 14, cfg.Pipeline.LookbackDays)
	assert.Equal(t, "https://hooks.slack.com/services/T/B/X", cfg.Slack.WebhookURL)
	// Untouched sections keep their defaults.
	assert.Equal(t, "radar.db", cfg.Database.Path)
	require.Len(t, cfg.Sources, 1)
	assert.Equal(t, 50, cfg.Sources[0].API.PerPage)
}

func TestLoadBrokenFileFallsBackToDefaults(t *testing.T) {
	path := writeFile(t, "broken.yaml", "sources: [not: valid: yaml")

	cfg := Load(path)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.NotEmpty(t, cfg.Sources)
}

func TestLoadEnvOverridesWinOverFile(t *testing.T) {
	path := writeFile(t, "config.yaml", `
database:
  path: from-file.db
`)
	t.Setenv("DATABASE_PATH", "from-env.db")
	t.Setenv("SLACK_WEBHOOK_URL", "https://hooks.slack.com/services/env")
	t.Setenv("ARCHIVE_DIR", "/var/radar/runs")

	cfg := Load(path)

	assert.Equal(t, "from-env.db", cfg.Database.Path)
	assert.Equal(t, "https://hooks.slack.com/services/env", cfg.Slack.WebhookURL)
	assert.Equal(t, "/var/radar/runs", cfg.Archive.Dir)
}

func TestLoadHonorsConfigPathEnv(t *testing.T) {
	path := writeFile(t, "config.yaml", `
logging:
  level: warn
`)
	t.Setenv("GRANT_RADAR_CONFIG", path)

	cfg := Load("")
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestEnabledSources(t *testing.T) {
	cfg := Config{Sources: []SourceConfig{
		{ID: "kstartup", Enabled: true},
		{ID: "knowhow", Enabled: true},
		{ID: "smtech", Enabled: false},
	}}

	all := cfg.EnabledSources(nil)
	require.Len(t, all, 2)
	assert.Equal(t, "kstartup", all[0].ID)
	assert.Equal(t, "knowhow", all[1].ID)

	only := cfg.EnabledSources([]string{"knowhow"})
	require.Len(t, only, 1)
	assert.Equal(t, "knowhow", only[0].ID)

	// An allow-list cannot resurrect a disabled source.
	assert.Empty(t, cfg.EnabledSources([]string{"smtech"}))
}

func TestLoadRules(t *testing.T) {
	path := writeFile(t, "rules.yaml", `
always_include:
  - 정부지원
match_groups:
  - name: stage
    any: [예비창업, 초기창업]
`)

	policy, err := LoadRules(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"정부지원"}, policy.AlwaysInclude)
	require.Len(t, policy.MatchGroups, 1)
	assert.Equal(t, "stage", policy.MatchGroups[0].Name)
	assert.Equal(t, []string{"예비창업", "초기창업"}, policy.MatchGroups[0].Any)
}

func TestLoadRulesMissingFile(t *testing.T) {
	_, err := LoadRules(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}
