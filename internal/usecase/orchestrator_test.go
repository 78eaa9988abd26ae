package usecase

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"JobFeed/internal/domain"
	"JobFeed/internal/logging/loggingtest"
	"JobFeed/internal/ports"
)

func raw(title, company string) domain.RawPosting {
	return domain.RawPosting{Title: title, Company: company, URL: "https://x/" + title, PostedAt: time.Now()}
}

func TestOrchestratorIsolatesFailingSource(t *testing.T) {
	t.Parallel()

	a := &fakeSource{id: "a", items: []domain.RawPosting{raw("Go Dev", "Acme"), raw("SRE", "Acme")}}
	broken := &fakeSource{id: "broken", err: errors.New("connection reset")}
	c := &fakeSource{id: "c", items: []domain.RawPosting{raw("Data Engineer", "Globex")}}

	o := NewOrchestrator(NewNormalizer(nil), OrchestratorConfig{}, loggingtest.New(t))
	listings, stats := o.Run(context.Background(), []ports.SourceAdapter{a, broken, c}, time.Time{})

	require.Len(t, listings, 3)
	assert.Equal(t, "a", listings[0].Platform)
	assert.Equal(t, "c", listings[2].Platform)

	assert.Equal(t, domain.SourceRunStats{Fetched: 2, Retained: 2}, stats["a"])
	assert.Equal(t, domain.SourceRunStats{Errors: 1}, stats["broken"])
	assert.Equal(t, domain.SourceRunStats{Fetched: 1, Retained: 1}, stats["c"])
	assert.Equal(t, 1, c.calls)
}

func TestOrchestratorRecoversPanickingSource(t *testing.T) {
	t.Parallel()

	good := &fakeSource{id: "good", items: []domain.RawPosting{raw("Go Dev", "Acme")}}
	bad := &fakeSource{id: "bad", panic: true}

	o := NewOrchestrator(NewNormalizer(nil), OrchestratorConfig{}, loggingtest.New(t))
	listings, stats := o.Run(context.Background(), []ports.SourceAdapter{bad, good}, time.Time{})

	assert.Len(t, listings, 1)
	assert.Equal(t, 1, stats["bad"].Errors)
}

func TestOrchestratorCapsBeforeFiltering(t *testing.T) {
	t.Parallel()

	src := &fakeSource{id: "s", items: []domain.RawPosting{
		raw("Frontend Dev", "Acme"),
		raw("", "Acme"),
		raw("Backend Dev", "Acme"),
		raw("Backend Lead", "Acme"),
	}}
	o := NewOrchestrator(NewNormalizer(nil), OrchestratorConfig{
		MaxPerSource: 3,
		Policy:       domain.FilterPolicy{IncludeKeywords: []string{"backend"}},
	}, loggingtest.New(t))

	listings, stats := o.Run(context.Background(), []ports.SourceAdapter{src}, time.Time{})

	require.Len(t, listings, 1)
	assert.Equal(t, "Backend Dev", listings[0].Title)
	assert.Equal(t, domain.SourceRunStats{Fetched: 4, Retained: 1}, stats["s"])
}

func TestOrchestratorTimesOutSlowSource(t *testing.T) {
	t.Parallel()

	o := NewOrchestrator(NewNormalizer(nil), OrchestratorConfig{SourceTimeout: 10 * time.Millisecond}, loggingtest.New(t))
	listings, stats := o.Run(context.Background(), []ports.SourceAdapter{blockingSource{id: "slow"}}, time.Time{})

	assert.Empty(t, listings)
	assert.Equal(t, 1, stats["slow"].Errors)
}

type rateLimitedSource struct {
	id      string
	boards  int
	limiter *rate.Limiter
}

func (r rateLimitedSource) ID() string { return r.id }

func (r rateLimitedSource) Fetch(ctx context.Context, _ time.Time) ([]domain.RawPosting, error) {
	var out []domain.RawPosting
	for i := 0; i < r.boards; i++ {
		if err := r.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		out = append(out, raw(fmt.Sprintf("Engineer %d", i), "Acme"))
	}
	return out, nil
}

func TestOrchestratorSourceBudgetCoversEveryBoard(t *testing.T) {
	t.Parallel()

	// each board waits ~20ms on the shared host limiter, well past a single
	// request timeout but inside the source budget
	src := rateLimitedSource{id: "greenhouse", boards: 6, limiter: rate.NewLimiter(rate.Every(20*time.Millisecond), 1)}
	o := NewOrchestrator(NewNormalizer(nil), OrchestratorConfig{SourceTimeout: 5 * time.Second}, loggingtest.New(t))

	listings, stats := o.Run(context.Background(), []ports.SourceAdapter{src}, time.Time{})

	assert.Len(t, listings, 6)
	assert.Equal(t, domain.SourceRunStats{Fetched: 6, Retained: 6}, stats["greenhouse"])
}

func TestOrchestratorSourceBudgetExceeded(t *testing.T) {
	t.Parallel()

	src := rateLimitedSource{id: "lever", boards: 6, limiter: rate.NewLimiter(rate.Every(50*time.Millisecond), 1)}
	o := NewOrchestrator(NewNormalizer(nil), OrchestratorConfig{SourceTimeout: 60 * time.Millisecond}, loggingtest.New(t))

	listings, stats := o.Run(context.Background(), []ports.SourceAdapter{src}, time.Time{})

	assert.Empty(t, listings)
	assert.Equal(t, domain.SourceRunStats{Errors: 1}, stats["lever"])
}
