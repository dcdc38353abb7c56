package usecase

import (
	"context"
	"log/slog"
	"time"

	"NewsRecommender/internal/domain"
	"NewsRecommender/internal/ports"
)

// Refresher wires the scheduler driver with the pipeline so the store
// keeps rolling forward with fresh articles per category.
type Refresher struct {
	driver     ports.Scheduler
	pipeline   *Pipeline
	categories []string
	pageSize   int
	logger     *slog.Logger
}

// NewRefresher returns a helper to start/stop the recurring refresh.
func NewRefresher(driver ports.Scheduler, pipeline *Pipeline, categories []string, pageSize int, logger *slog.Logger) *Refresher {
	return &Refresher{
		driver:     driver,
		pipeline:   pipeline,
		categories: categories,
		pageSize:   pageSize,
		logger:     logger,
	}
}

// Start registers the refresh job with the provided scheduler.
func (r *Refresher) Start(ctx context.Context) error {
	if r.driver == nil || r.pipeline == nil {
		return nil
	}

	job := func(trigger time.Time) {
		r.refresh(ctx)
	}

	return r.driver.Start(ctx, job)
}

// Stop gracefully tears down the underlying scheduler.
func (r *Refresher) Stop(ctx context.Context) error {
	if r.driver == nil {
		return nil
	}
	return r.driver.Stop(ctx)
}

func (r *Refresher) refresh(ctx context.Context) {
	for _, cat := range r.categories {
		articles, err := r.pipeline.FetchAndClassify(ctx, domain.FetchRequest{
			Category: cat,
			PageSize: r.pageSize,
		})
		if err != nil {
			if r.logger != nil {
				r.logger.Warn("refresh failed", "category", cat, "error", err)
			}
			continue
		}
		if r.logger != nil {
			r.logger.Info("refreshed category", "category", cat, "articles", len(articles))
		}
	}
}
