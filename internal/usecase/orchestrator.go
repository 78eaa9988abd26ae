package usecase

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"

	"JobFeed/internal/domain"
	"JobFeed/internal/logging"
	"JobFeed/internal/ports"
)

// OrchestratorConfig bounds the work done per source.
type OrchestratorConfig struct {
	Policy        domain.FilterPolicy
	MaxPerSource  int
	// SourceTimeout bounds one source's whole Fetch, across all its boards
	// and pages. Individual requests are bounded by the HTTP client.
	SourceTimeout time.Duration
}

// Orchestrator drives every source through normalization and filtering.
type Orchestrator struct {
	normalizer *Normalizer
	cfg        OrchestratorConfig
	logger     *logging.Logger
}

// NewOrchestrator wires the fetch stage.
func NewOrchestrator(normalizer *Normalizer, cfg OrchestratorConfig, log *logging.Logger) *Orchestrator {
	return &Orchestrator{normalizer: normalizer, cfg: cfg, logger: log}
}

// Run fetches each source in turn. A failing source is recorded with one
// error and contributes no listings; the remaining sources still run.
func (o *Orchestrator) Run(ctx context.Context, sources []ports.SourceAdapter, since time.Time) ([]domain.Listing, map[string]domain.SourceRunStats) {
	stats := make(map[string]domain.SourceRunStats, len(sources))
	var listings []domain.Listing

	for _, src := range sources {
		id := src.ID()
		st := stats[id]

		raw, err := o.fetch(ctx, src, since)
		if err != nil {
			st.Errors++
			stats[id] = st
			if errors.Is(err, context.DeadlineExceeded) {
				o.logger.Warn("source exceeded its time budget",
					"source", id,
					"source_timeout", o.cfg.SourceTimeout.String(),
					"error", err,
				)
				continue
			}
			o.logger.Warn("source fetch failed", "source", id, "error", err)
			continue
		}

		st.Fetched += len(raw)
		if o.cfg.MaxPerSource > 0 && len(raw) > o.cfg.MaxPerSource {
			raw = raw[:o.cfg.MaxPerSource]
		}

		for _, r := range raw {
			listing, ok := o.normalizer.Normalize(id, r)
			if !ok {
				continue
			}
			if !Keep(listing, o.cfg.Policy) {
				continue
			}
			listings = append(listings, listing)
			st.Retained++
		}

		stats[id] = st
		o.logger.Info("source processed", "source", id, "fetched", st.Fetched, "retained", st.Retained)
	}

	return listings, stats
}

func (o *Orchestrator) fetch(ctx context.Context, src ports.SourceAdapter, since time.Time) (raw []domain.RawPosting, err error) {
	defer func() {
		if r := recover(); r != nil {
			raw = nil
			err = errors.Newf("source %s panicked: %v", src.ID(), r)
		}
	}()

	if o.cfg.SourceTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.cfg.SourceTimeout)
		defer cancel()
	}

	return src.Fetch(ctx, since)
}
