package app

import (
	"context"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
	"golang.org/x/sync/errgroup"

	"JobFeed/internal/config"
	"JobFeed/internal/domain"
	"JobFeed/internal/httpapi"
	"JobFeed/internal/infrastructure/lease"
	"JobFeed/internal/infrastructure/parser"
	"JobFeed/internal/infrastructure/scheduler"
	"JobFeed/internal/infrastructure/storage"
	"JobFeed/internal/infrastructure/telegram"
	"JobFeed/internal/logging"
	"JobFeed/internal/ports"
	"JobFeed/internal/usecase"
)

const shutdownTimeout = 15 * time.Second

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg       config.Config
	logger    *logging.Logger
	db        *storage.DB
	pipeline  *usecase.Pipeline
	registrar *usecase.Registrar
	scheduler *usecase.Scheduler
}

// Migrate opens the configured database and applies pending migrations.
func Migrate(ctx context.Context, cfg config.Config, log *logging.Logger) (int, error) {
	db, err := storage.Open(ctx, cfg.Database.Driver, cfg.Database.DSN, log)
	if err != nil {
		return 0, err
	}
	defer db.Close()

	return db.Migrate(ctx, log)
}

// New opens storage, applies migrations and builds every component.
func New(ctx context.Context, cfg config.Config, baseLogger *logging.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	db, err := storage.Open(ctx, cfg.Database.Driver, cfg.Database.DSN, baseLogger.With("component", "storage"))
	if err != nil {
		return nil, err
	}
	if _, err := db.Migrate(ctx, baseLogger.With("component", "migrate")); err != nil {
		_ = db.Close()
		return nil, err
	}

	fetcher := parser.NewHTTPFetcher(
		&http.Client{Timeout: cfg.Pipeline.FetchTimeout},
		parser.NewHostLimiter(cfg.Pipeline.RequestsPerSecond, 1),
	)
	registry := parser.NewRegistry(fetcher)

	siteSources, err := parser.BuildSources(registry, cfg.Sites, baseLogger.With("component", "source"))
	if err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "build sources")
	}
	sources := make([]ports.SourceAdapter, 0, len(siteSources))
	fallbacks := make(map[string]string, len(siteSources))
	for _, src := range siteSources {
		sources = append(sources, src)
		fallbacks[src.ID()] = src.LocationFallback()
	}

	listings := storage.NewListingStore(db)
	ledger := storage.NewDeliveryLedger(db)
	users := storage.NewUserRepository(db)

	var (
		notifier   ports.Notifier
		dispatcher *usecase.Dispatcher
	)
	if cfg.Notifications.Telegram.BotToken != "" {
		notifier = telegram.NewNotifier(cfg.Notifications.Telegram.BotToken, cfg.Notifications.Telegram.APIBaseURL)
		dispatcher = usecase.NewDispatcher(ledger, notifier,
			cfg.Pipeline.MaxPerUser,
			cfg.Pipeline.SendTimeout,
			baseLogger.With("component", "dispatcher"),
		)
	} else {
		baseLogger.Warn("telegram bot token is not set, listings will be stored but not delivered")
	}

	orchestrator := usecase.NewOrchestrator(
		usecase.NewNormalizer(fallbacks),
		usecase.OrchestratorConfig{
			Policy:        cfg.Filters,
			MaxPerSource:  cfg.Pipeline.MaxPerSource,
			SourceTimeout: cfg.Pipeline.SourceTimeout,
		},
		baseLogger.With("component", "orchestrator"),
	)

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Sources:       sources,
		Orchestrator:  orchestrator,
		Listings:      listings,
		Ledger:        ledger,
		Users:         users,
		Dispatcher:    dispatcher,
		Lease:         lease.NewFileLease(cfg.Pipeline.LockFile),
		Logger:        baseLogger.With("component", "pipeline"),
		Lookback:      cfg.Pipeline.Lookback,
		RecencyWindow: cfg.Pipeline.RecencyWindow,
		UnsentLimit:   cfg.Pipeline.UnsentLimit,
	})

	app := &Application{
		cfg:       cfg,
		logger:    baseLogger,
		db:        db,
		pipeline:  pipeline,
		registrar: usecase.NewRegistrar(users, notifier, baseLogger.With("component", "registrar")),
	}
	if cfg.Scheduler.Enabled {
		app.scheduler = usecase.NewScheduler(
			scheduler.NewIntervalScheduler(cfg.Scheduler.Interval, cfg.Scheduler.RunOnStart),
			pipeline,
			baseLogger.With("component", "scheduler"),
		)
	}
	return app, nil
}

// RunOnce performs a single pipeline execution.
func (a *Application) RunOnce(ctx context.Context) (domain.RunSummary, error) {
	return a.pipeline.Run(ctx)
}

// Handler exposes the HTTP surface.
func (a *Application) Handler() http.Handler {
	return httpapi.NewRouter(httpapi.Deps{
		Runner:        a.pipeline,
		Events:        a.registrar,
		TriggerToken:  a.cfg.Server.TriggerToken,
		WebhookSecret: a.cfg.Server.WebhookSecret,
		RunTimeout:    a.cfg.Pipeline.RunTimeout,
		Logger:        a.logger.With("component", "http"),
	})
}

// Serve runs the HTTP server and the scheduler until ctx is cancelled.
func (a *Application) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:              a.cfg.Server.Addr,
		Handler:           a.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.logger.Info("http server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "http server")
		}
		return nil
	})

	if a.scheduler != nil {
		if err := a.scheduler.Start(gctx); err != nil {
			return errors.Wrap(err, "start scheduler")
		}
		a.logger.Info("scheduler started",
			"interval", a.cfg.Scheduler.Interval.String(),
			"run_on_start", a.cfg.Scheduler.RunOnStart,
			"next_run", time.Now().Add(a.cfg.Scheduler.Interval).In(a.cfg.Scheduler.Location()).Format(time.RFC3339),
		)
	}

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if a.scheduler != nil {
			if err := a.scheduler.Stop(shutdownCtx); err != nil {
				a.logger.Warn("scheduler stop", "error", err)
			}
		}
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// Close releases storage.
func (a *Application) Close() error {
	return a.db.Close()
}
