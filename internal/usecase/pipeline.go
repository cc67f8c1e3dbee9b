package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"GrantRadar/internal/admission"
	"GrantRadar/internal/domain"
	"GrantRadar/internal/normalize"
	"GrantRadar/internal/ports"
	"GrantRadar/internal/rules"
)

// PipelineDeps wires the collaborators into the orchestration pipeline.
type PipelineDeps struct {
	Source       ports.ItemSource
	Store        ports.SeenStore
	Policy       domain.RulePolicy
	LookbackDays int
	MaxItems     int
	Logger       *slog.Logger
}

// Pipeline implements the ingestion-to-decision workflow: dedup against
// the durable store, temporal admission, keyword rule matching, and
// normalization. Data flows strictly forward; no stage re-enters an
// earlier one and no item is reordered after the dedup pass.
type Pipeline struct {
	source       ports.ItemSource
	store        ports.SeenStore
	engine       *rules.Engine
	lookbackDays int
	maxItems     int
	logger       *slog.Logger
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	return &Pipeline{
		source:       deps.Source,
		store:        deps.Store,
		engine:       rules.NewEngine(deps.Policy),
		lookbackDays: deps.LookbackDays,
		maxItems:     deps.MaxItems,
		logger:       deps.Logger,
	}
}

// Run fetches one batch from every enabled source and processes it.
func (p *Pipeline) Run(ctx context.Context, ref time.Time) ([]domain.NormalizedItem, error) {
	raw, err := p.source.FetchAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch sources: %w", err)
	}

	return p.Process(ctx, raw, ref)
}

// Process runs the single deterministic pass over a batch of raw items,
// preserving their fetch order. Items are marked seen the moment they
// clear the dedup check, before the temporal or rule filters run: "seen"
// means evaluated by the pipeline, not delivered. An item rejected this
// run is never reconsidered, which keeps the dedup posture conservative
// (safe-but-lossy) rather than duplicate-delivering.
func (p *Pipeline) Process(ctx context.Context, raw []domain.RawItem, ref time.Time) ([]domain.NormalizedItem, error) {
	var (
		out          []domain.NormalizedItem
		unidentified int
		duplicates   int
		outOfWindow  int
		unmatched    int
	)

	for _, item := range raw {
		if item.SourceID == "" {
			unidentified++
			p.warn("dropping item without identifier", "source", item.Source, "title", item.Title)
			continue
		}

		isNew, err := p.store.MarkIfNew(ctx, domain.SeenRecord{
			SourceID:    item.SourceID,
			Source:      item.Source,
			Title:       item.Title,
			URL:         item.URL,
			FirstSeenAt: ref,
		})
		if err != nil {
			// Store failures are fatal to the run; markings committed
			// before this point remain durable.
			return nil, fmt.Errorf("seen store: %w", err)
		}
		if !isNew {
			duplicates++
			continue
		}

		if !admission.Admit(item, p.lookbackDays, ref) {
			outOfWindow++
			continue
		}

		matched := p.engine.Match(item)
		if len(matched) == 0 {
			unmatched++
			continue
		}

		out = append(out, normalize.Item(item, matched))
	}

	if p.maxItems > 0 && len(out) > p.maxItems {
		p.warn("capping result", "cap", p.maxItems, "selected", len(out))
		out = out[:p.maxItems]
	}

	p.info("pipeline pass done",
		"fetched", len(raw),
		"unidentified", unidentified,
		"duplicates", duplicates,
		"out_of_window", outOfWindow,
		"unmatched", unmatched,
		"selected", len(out),
	)

	return out, nil
}

func (p *Pipeline) info(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Info(msg, args...)
	}
}

func (p *Pipeline) warn(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Warn(msg, args...)
	}
}
