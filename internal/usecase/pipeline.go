package usecase

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"

	"JobFeed/internal/domain"
	"JobFeed/internal/logging"
	"JobFeed/internal/ports"
)

// PipelineDeps wires all driven adapters into the orchestration pipeline.
type PipelineDeps struct {
	Sources      []ports.SourceAdapter
	Orchestrator *Orchestrator
	Listings     ports.ListingStore
	Ledger       ports.DeliveryLedger
	Users        ports.UserRepository
	Dispatcher   *Dispatcher
	Lease        ports.RunLease
	Logger       *logging.Logger

	Lookback      time.Duration
	RecencyWindow time.Duration
	UnsentLimit   int
}

// Pipeline implements one full run: fetch, store, deliver.
type Pipeline struct {
	deps PipelineDeps
	now  func() time.Time
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	return &Pipeline{deps: deps, now: time.Now}
}

// Run executes the pipeline once. Only faults that compromise the whole run
// (lease held, storage unreachable) are returned; per-source and per-user
// faults end up as counters in the summary.
func (p *Pipeline) Run(ctx context.Context) (domain.RunSummary, error) {
	started := p.now()
	summary := domain.RunSummary{
		RunID:   uuid.NewString(),
		Sources: map[string]domain.SourceRunStats{},
	}
	log := p.deps.Logger.With("run_id", summary.RunID)

	if p.deps.Lease != nil {
		release, err := p.deps.Lease.TryAcquire()
		if err != nil {
			return summary, errors.Wrap(err, "acquire run lease")
		}
		defer release()
	}

	if len(p.deps.Sources) == 0 {
		log.Info("no sources enabled")
		summary.DurationMS = p.now().Sub(started).Milliseconds()
		return summary, nil
	}

	since := started.Add(-p.deps.Lookback)
	listings, stats := p.deps.Orchestrator.Run(ctx, p.deps.Sources, since)
	summary.Sources = stats
	for _, st := range stats {
		summary.Fetched += st.Fetched
	}
	summary.Retained = len(listings)

	batch, err := p.deps.Listings.InsertBatch(ctx, listings)
	if err != nil {
		return summary, errors.Wrap(err, "store listings")
	}
	summary.Stored = len(batch.InsertedHashes)
	summary.Duplicates = len(batch.DuplicateHashes)
	log.Info("listings stored", "stored", summary.Stored, "duplicates", summary.Duplicates)

	if p.deps.Users == nil || p.deps.Dispatcher == nil {
		log.Warn("delivery disabled, no notification channel configured")
		summary.DurationMS = p.now().Sub(started).Milliseconds()
		return summary, nil
	}

	users, err := p.deps.Users.List(ctx)
	if err != nil {
		return summary, errors.Wrap(err, "list users")
	}

	for _, user := range users {
		sent, err := p.deliverTo(ctx, user)
		summary.UsersProcessed++
		summary.NotificationsSent += sent
		if err != nil {
			summary.UserErrors++
			log.Warn("user delivery failed", "user_id", user.ID, "error", err)
		}
	}

	summary.DurationMS = p.now().Sub(started).Milliseconds()
	log.Info("run finished",
		"fetched", summary.Fetched,
		"stored", summary.Stored,
		"duplicates", summary.Duplicates,
		"notifications_sent", summary.NotificationsSent,
		"duration_ms", summary.DurationMS,
	)
	return summary, nil
}

func (p *Pipeline) deliverTo(ctx context.Context, user domain.User) (sent int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Newf("user %d panicked: %v", user.ID, r)
		}
	}()

	unsent, err := p.deps.Ledger.UnsentFor(ctx, user.ID, p.deps.RecencyWindow, p.deps.UnsentLimit)
	if err != nil {
		return 0, errors.Wrap(err, "load unsent listings")
	}
	if len(unsent) == 0 {
		return 0, nil
	}
	return p.deps.Dispatcher.Dispatch(ctx, user, unsent), nil
}
