package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"GrantRadar/internal/app"
	"GrantRadar/internal/config"
	"GrantRadar/internal/logging"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("grantradar", flag.ContinueOnError)
	configPath := fs.String("config", "", "path to YAML config (default: $GRANT_RADAR_CONFIG)")
	sourcesFlag := fs.String("sources", "", `comma-separated source ids to run (e.g. "kstartup,knowhow"); empty runs all enabled`)
	publish := fs.Bool("publish", false, "actually publish results (archive + slack); default is dry-run")
	dryRun := fs.Bool("dry-run", false, "force dry-run even when --publish is set")
	maxItems := fs.Int("max-items", 0, "hard cap on selected items (0 = unlimited)")
	lookbackDays := fs.Int("lookback-days", 0, "override the admission lookback window in days")
	verbose := fs.Bool("verbose", false, "debug logging")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	// Optional .env for webhook URLs and API keys; absence is fine.
	_ = godotenv.Load()

	cfg := config.Load(*configPath)
	logger := logging.New(cfg.Logging.Level, *verbose)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(cfg, app.Options{
		Sources:      parseSources(*sourcesFlag),
		Publish:      *publish && !*dryRun,
		MaxItems:     *maxItems,
		LookbackDays: *lookbackDays,
	}, logger)
	if err != nil {
		logger.Error("startup failed", "error", err)
		return 1
	}
	defer application.Close()

	if err := application.Run(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Info("interrupted by user")
			return 130
		}
		logger.Error("run failed", "error", err)
		return 1
	}

	return 0
}

func parseSources(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
