package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"GrantRadar/internal/config"
	"GrantRadar/internal/connector"
	"GrantRadar/internal/infrastructure/archive"
	"GrantRadar/internal/infrastructure/console"
	"GrantRadar/internal/infrastructure/slack"
	"GrantRadar/internal/infrastructure/source"
	"GrantRadar/internal/infrastructure/storage"
	"GrantRadar/internal/logging"
	"GrantRadar/internal/usecase"
)

// Options carries the per-invocation overrides from the CLI.
type Options struct {
	// Sources narrows the run to these source ids; empty means all enabled.
	Sources []string
	// Publish enables the archive and notification sinks. Off by default:
	// a dry run only prints the preview.
	Publish bool
	// MaxItems caps the normalized result when > 0.
	MaxItems int
	// LookbackDays overrides the configured admission window when > 0.
	LookbackDays int
}

// Application wires config to the pipeline and sinks for a single run.
type Application struct {
	cfg      config.Config
	opts     Options
	logger   *slog.Logger
	store    *storage.SQLiteStore
	pipeline *usecase.Pipeline
	printer  *console.Printer
	archive  *archive.Writer
	notifier *slack.Notifier
}

// New builds a runnable application instance. The rule policy and the
// seen store are both required: a run without either cannot make its
// inclusion decisions.
func New(cfg config.Config, opts Options, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level, false)
	}

	policy, err := config.LoadRules(cfg.RulesPath)
	if err != nil {
		return nil, fmt.Errorf("load rule policy: %w", err)
	}

	store, err := storage.Open(cfg.Database.Path)
	if err != nil {
		return nil, err
	}

	httpClient := &http.Client{Timeout: 20 * time.Second}

	registry := connector.NewRegistry()
	registry.Register(source.NewKStartup(httpClient, baseLogger.With("component", "connector.kstartup")))
	registry.Register(source.NewKnowhow(baseLogger.With("component", "connector.knowhow")))
	registry.Register(source.NewSMTech(httpClient, baseLogger.With("component", "connector.smtech")))

	enabled := cfg.EnabledSources(opts.Sources)
	multi := source.NewMultiSource(registry, enabled, baseLogger.With("component", "source"))

	lookbackDays := cfg.Pipeline.LookbackDays
	if opts.LookbackDays > 0 {
		lookbackDays = opts.LookbackDays
	}
	maxItems := cfg.Pipeline.MaxItems
	if opts.MaxItems > 0 {
		maxItems = opts.MaxItems
	}

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Source:       multi,
		Store:        store,
		Policy:       policy,
		LookbackDays: lookbackDays,
		MaxItems:     maxItems,
		Logger:       baseLogger.With("component", "pipeline"),
	})

	return &Application{
		cfg:      cfg,
		opts:     opts,
		logger:   baseLogger.With("component", "app"),
		store:    store,
		pipeline: pipeline,
		printer:  console.NewPrinter(),
		archive:  archive.NewWriter(cfg.Archive.Dir),
		notifier: slack.NewNotifier(cfg.Slack.WebhookURL),
	}, nil
}

// Run performs one pipeline execution and drives the sinks. The console
// preview and the archive come before notification, so a notification
// failure never loses the run's other side effects.
func (a *Application) Run(ctx context.Context) error {
	started := time.Now()
	mode := "dry-run"
	if a.opts.Publish {
		mode = "publish"
	}
	a.logger.Info("run started", "mode", mode)

	ref := time.Now().UTC()
	items, err := a.pipeline.Run(ctx, ref)
	if err != nil {
		return err
	}

	a.printer.Print(items)

	if !a.opts.Publish {
		a.logger.Info("publish skipped (dry-run)", "selected", len(items))
		return nil
	}

	if len(items) > 0 {
		path, err := a.archive.Save(ref, items)
		if err != nil {
			return fmt.Errorf("archive run: %w", err)
		}
		a.logger.Info("run archived", "path", path, "count", len(items))
	}

	if err := a.notifier.Notify(ctx, items); err != nil {
		return fmt.Errorf("notify: %w", err)
	}

	a.logger.Info("run finished",
		"selected", len(items),
		"duration", time.Since(started).Round(time.Millisecond).String(),
	)
	return nil
}

// Close releases the seen store.
func (a *Application) Close() error {
	return a.store.Close()
}
