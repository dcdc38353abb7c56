package ports

import (
	"context"
	"time"

	"NewsRecommender/internal/domain"
)

// ArticleSource aggregates normalized articles from upstream feeds.
type ArticleSource interface {
	Fetch(ctx context.Context, req domain.FetchRequest) ([]domain.Article, error)
}

// ContentExtractor retrieves full article bodies via readability parsing.
// It never fails: a degraded Extraction carries the fallback title and no
// content.
type ContentExtractor interface {
	Extract(ctx context.Context, url, fallbackTitle string) domain.Extraction
}

// Classifier is the external text-classification oracle. It may be slow
// or wrong; callers normalize unknown labels and degrade on error.
type Classifier interface {
	Classify(ctx context.Context, text string) (domain.Classification, error)
}

// SnapshotRepository persists article and interaction snapshots so the
// in-memory core can warm-start. Entirely optional.
type SnapshotRepository interface {
	SaveArticles(ctx context.Context, articles []domain.Article) error
	RecentArticles(ctx context.Context, limit int) ([]domain.Article, error)
	SaveInteraction(ctx context.Context, interaction domain.Interaction) error
	Interactions(ctx context.Context) ([]domain.Interaction, error)
	Close() error
}

// Scheduler controls when feed refreshes execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
