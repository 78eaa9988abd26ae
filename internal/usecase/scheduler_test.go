package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"JobFeed/internal/domain"
	"JobFeed/internal/logging"
	"JobFeed/internal/logging/loggingtest"
	"JobFeed/internal/ports"
)

type manualDriver struct {
	job     func(time.Time)
	stopped bool
}

func (d *manualDriver) Start(_ context.Context, job func(time.Time)) error {
	d.job = job
	return nil
}

func (d *manualDriver) Stop(context.Context) error {
	d.stopped = true
	return nil
}

func TestSchedulerRunsPipelineOnTick(t *testing.T) {
	t.Parallel()

	source := &fakeSource{id: "lever", items: []domain.RawPosting{
		{Title: "Go Developer", Company: "Acme", Location: "Remote", PostedAt: time.Now()},
	}}
	lease := &countingLease{}
	p := NewPipeline(PipelineDeps{
		Sources:      []ports.SourceAdapter{source},
		Orchestrator: NewOrchestrator(NewNormalizer(nil), OrchestratorConfig{}, logging.NewNop()),
		Listings:     newSQLiteHarness(t).listings,
		Lease:        lease,
		Logger:       loggingtest.New(t),
	})

	driver := &manualDriver{}
	s := NewScheduler(driver, p, loggingtest.New(t))
	require.NoError(t, s.Start(context.Background()))
	require.NotNil(t, driver.job)

	driver.job(time.Now())
	driver.job(time.Now())

	assert.Equal(t, 2, source.calls)
	assert.Equal(t, 2, lease.acquired)
	assert.Equal(t, 2, lease.released)

	require.NoError(t, s.Stop(context.Background()))
	assert.True(t, driver.stopped)
}

func TestSchedulerSkipsTickWhileLeaseHeld(t *testing.T) {
	t.Parallel()

	source := &fakeSource{id: "lever"}
	p := NewPipeline(PipelineDeps{
		Sources:      []ports.SourceAdapter{source},
		Orchestrator: NewOrchestrator(NewNormalizer(nil), OrchestratorConfig{}, logging.NewNop()),
		Listings:     newSQLiteHarness(t).listings,
		Lease:        heldLease{err: ports.ErrLeaseHeld},
		Logger:       loggingtest.New(t),
	})

	driver := &manualDriver{}
	s := NewScheduler(driver, p, loggingtest.New(t))
	require.NoError(t, s.Start(context.Background()))

	assert.NotPanics(t, func() { driver.job(time.Now()) })
	assert.Zero(t, source.calls)
}

func TestSchedulerWithoutDriverIsNoop(t *testing.T) {
	t.Parallel()

	s := NewScheduler(nil, nil, logging.NewNop())
	assert.NoError(t, s.Start(context.Background()))
	assert.NoError(t, s.Stop(context.Background()))
}
