package app

import (
	"context"
	"log/slog"

	"NewsRecommender/internal/config"
	"NewsRecommender/internal/fetch"
	"NewsRecommender/internal/infrastructure/classify"
	"NewsRecommender/internal/infrastructure/extract"
	"NewsRecommender/internal/infrastructure/feed"
	"NewsRecommender/internal/infrastructure/scheduler"
	"NewsRecommender/internal/infrastructure/storage"
	"NewsRecommender/internal/logging"
	"NewsRecommender/internal/ports"
	"NewsRecommender/internal/prefs"
	"NewsRecommender/internal/recommend"
	"NewsRecommender/internal/store"
	"NewsRecommender/internal/usecase"
)

// Application wires configs to the pipeline and lifecycle orchestration.
type Application struct {
	cfg       config.Config
	logger    *slog.Logger
	pipeline  *usecase.Pipeline
	refresher *usecase.Refresher
	snapshot  ports.SnapshotRepository
}

// New builds a runnable application instance.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	client := fetch.New(nil)
	extractor := extract.New(client, baseLogger.With("component", "extractor"))
	registry := feed.NewRegistry(cfg.FeedsByCategory())
	aggregator := feed.NewAggregator(client, registry, extractor, feed.Options{
		MaxPerFeed:      cfg.Aggregator.MaxPerFeed,
		FeedTimeout:     cfg.Aggregator.FeedTimeout(),
		ExtractTimeout:  cfg.Aggregator.ExtractTimeout(),
		DefaultPageSize: cfg.Aggregator.DefaultPageSize,
	}, baseLogger.With("component", "aggregator"))

	var classifier ports.Classifier
	if cfg.Classifier.Endpoint != "" {
		classifier = classify.NewClient(cfg.Classifier.Endpoint, cfg.Classifier.APIKey, cfg.Classifier.Timeout())
	}

	var snapshot ports.SnapshotRepository
	if cfg.Snapshot.Path != "" {
		repo, err := storage.Open(cfg.Snapshot.Path)
		if err != nil {
			return nil, err
		}
		snapshot = repo
	}

	articles := store.New(cfg.Recommender.Capacity, cfg.Recommender.EvictBatch,
		cfg.Recommender.MaxFeatures, baseLogger.With("component", "store"))
	tracker := prefs.NewTracker(cfg.Recommender.DecayLambda)
	engine := recommend.NewEngine(articles, tracker, cfg.Recommender.DecayLambda,
		baseLogger.With("component", "engine"))

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Source:               aggregator,
		Classifier:           classifier,
		Snapshot:             snapshot,
		Store:                articles,
		Tracker:              tracker,
		Engine:               engine,
		SubcategoryThreshold: cfg.Recommender.SubcategoryThreshold,
		Logger:               baseLogger.With("component", "pipeline"),
	})

	refresher := usecase.NewRefresher(
		scheduler.NewIntervalScheduler(cfg.Scheduler.Interval()),
		pipeline,
		cfg.Scheduler.Categories,
		cfg.Scheduler.PageSize,
		baseLogger.With("component", "refresher"),
	)

	return &Application{
		cfg:       cfg,
		logger:    baseLogger,
		pipeline:  pipeline,
		refresher: refresher,
		snapshot:  snapshot,
	}, nil
}

// Pipeline exposes the workflow for embedding callers.
func (a *Application) Pipeline() *usecase.Pipeline {
	return a.pipeline
}

// Run restores the snapshot, starts the periodic refresh, and blocks
// until the context is cancelled.
func (a *Application) Run(ctx context.Context) error {
	if err := a.pipeline.Restore(ctx); err != nil {
		a.logger.Warn("snapshot restore failed, starting cold", "error", err)
	}

	if err := a.refresher.Start(ctx); err != nil {
		return err
	}

	<-ctx.Done()

	stopCtx := context.Background()
	if err := a.refresher.Stop(stopCtx); err != nil {
		a.logger.Warn("refresher stop failed", "error", err)
	}
	if a.snapshot != nil {
		if err := a.snapshot.Close(); err != nil {
			a.logger.Warn("snapshot close failed", "error", err)
		}
	}
	return nil
}
