package domain

import "time"

// RawItem is a single candidate announcement as a connector produced it.
// Fields carry the origin's own formatting; nothing is validated or
// normalized at this point.
type RawItem struct {
	// Source identifies the origin system (e.g. "kstartup", "knowhow").
	Source string
	// SourceID is unique within the source. Connectors derive it from a
	// content hash when the origin supplies no native identifier.
	SourceID string
	Title    string
	URL      string
	// PublishedAt keeps the origin's date string as-is; formats vary.
	PublishedAt string
	Summary     string
	Content     string
	// ApplyStart/ApplyEnd bound the acceptance window when the source has
	// that notion; empty otherwise.
	ApplyStart string
	ApplyEnd   string
	// Raw is the untouched origin payload, passed through for the archive.
	Raw map[string]any
}

// NormalizedItem is the canonical pipeline output shape.
type NormalizedItem struct {
	Source     string   `json:"source"`
	SourceID   string   `json:"source_id"`
	Title      string   `json:"title"`
	Link       string   `json:"link"`
	Date       string   `json:"date"`
	ApplyStart string   `json:"apply_start"`
	ApplyEnd   string   `json:"apply_end"`
	Summary    string   `json:"summary"`
	Content    string   `json:"content"`
	// Keywords holds the matched rule strings in insertion order.
	Keywords []string `json:"keywords"`
}

// SeenRecord is the durable trace of an item the pipeline has evaluated.
// Records are append-only: written once, never updated or deleted.
type SeenRecord struct {
	SourceID    string
	Source      string
	Title       string
	URL         string
	FirstSeenAt time.Time
}

// RuleGroup is a set of keyword alternatives; any single keyword
// satisfies the group.
type RuleGroup struct {
	Name string   `yaml:"name"`
	Any  []string `yaml:"any"`
}

// RulePolicy configures the keyword rule engine for one run.
type RulePolicy struct {
	AlwaysInclude []string    `yaml:"always_include"`
	MatchGroups   []RuleGroup `yaml:"match_groups"`
}
