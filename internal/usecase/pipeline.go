package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"NewsRecommender/internal/category"
	"NewsRecommender/internal/domain"
	"NewsRecommender/internal/ports"
	"NewsRecommender/internal/prefs"
	"NewsRecommender/internal/recommend"
	"NewsRecommender/internal/store"
)

// classifyTextLimit caps how much article body accompanies the title
// into the classifier, which has its own token budget.
const classifyTextLimit = 400

// PipelineDeps wires the driven adapters and core components into the
// ingestion/recommendation workflow.
type PipelineDeps struct {
	Source               ports.ArticleSource
	Classifier           ports.Classifier
	Snapshot             ports.SnapshotRepository
	Store                *store.Store
	Tracker              *prefs.Tracker
	Engine               *recommend.Engine
	SubcategoryThreshold float64
	Logger               *slog.Logger
}

// Pipeline implements the fetch -> classify -> store -> recommend
// workflow. The classifier and snapshot adapters are optional; a nil
// classifier leaves articles in the sentinel category.
type Pipeline struct {
	source       ports.ArticleSource
	classifier   ports.Classifier
	snapshot     ports.SnapshotRepository
	store        *store.Store
	tracker      *prefs.Tracker
	engine       *recommend.Engine
	subThreshold float64
	logger       *slog.Logger
	now          func() time.Time
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	return &Pipeline{
		source:       deps.Source,
		classifier:   deps.Classifier,
		snapshot:     deps.Snapshot,
		store:        deps.Store,
		tracker:      deps.Tracker,
		engine:       deps.Engine,
		subThreshold: deps.SubcategoryThreshold,
		logger:       deps.Logger,
		now:          time.Now,
	}
}

// FetchAndClassify pulls one batch of articles, labels them, and inserts
// them into the store. Per-article degradation (classifier failure,
// missing dates) never drops the batch.
func (p *Pipeline) FetchAndClassify(ctx context.Context, req domain.FetchRequest) ([]domain.Article, error) {
	if p.source == nil {
		return nil, fmt.Errorf("article source is not configured")
	}

	articles, err := p.source.Fetch(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("fetch articles: %w", err)
	}

	processed := make([]domain.Article, 0, len(articles))
	for _, article := range articles {
		if article.PublishedAt.IsZero() {
			article.PublishedAt = p.now().UTC()
			p.info("article has no publish date, substituting now", "article", article.ID)
		} else {
			article.PublishedAt = article.PublishedAt.UTC()
		}

		text := article.Title + " " + truncate(article.Content, classifyTextLimit)
		article.Category, article.Confidence = p.classify(ctx, text, article.Category)
		article.Subcategory = category.DetectSubcategory(article.Category, text, p.subThreshold)

		p.store.Add(article)
		processed = append(processed, article)
	}

	if p.snapshot != nil && len(processed) > 0 {
		if err := p.snapshot.SaveArticles(ctx, processed); err != nil {
			p.warn("snapshot save failed", "error", err)
		}
	}

	return processed, nil
}

// classify labels the text, degrading to the sentinel category when the
// oracle is unavailable or misbehaves.
func (p *Pipeline) classify(ctx context.Context, text, fallback string) (string, float64) {
	if p.classifier == nil {
		return category.Normalize(fallback), 0
	}

	result, err := p.classifier.Classify(ctx, text)
	if err != nil {
		p.warn("classification failed, degrading to sentinel category", "error", err)
		return category.Other, 0
	}
	return category.Normalize(result.Category), result.Confidence
}

// RecordInteraction notes that the user read the article. Duplicate
// interactions are no-ops and are not persisted twice.
func (p *Pipeline) RecordInteraction(ctx context.Context, userID, articleID, cat string, confidence float64) {
	cat = category.Normalize(cat)
	if !p.tracker.Record(userID, cat, confidence, articleID) {
		return
	}

	if p.snapshot != nil {
		interaction := domain.Interaction{
			UserID:     userID,
			ArticleID:  articleID,
			Category:   cat,
			Confidence: confidence,
			At:         p.now().UTC(),
		}
		if err := p.snapshot.SaveInteraction(ctx, interaction); err != nil {
			p.warn("snapshot interaction save failed", "error", err)
		}
	}
}

// Recommend returns up to n personalized articles for the user.
func (p *Pipeline) Recommend(userID string, n int) []domain.Article {
	return p.engine.Recommend(userID, n)
}

// Restore warm-starts the store and tracker from the snapshot, oldest
// first so arrival order and eviction behave as if the articles had been
// ingested live.
func (p *Pipeline) Restore(ctx context.Context) error {
	if p.snapshot == nil {
		return nil
	}

	articles, err := p.snapshot.RecentArticles(ctx, 0)
	if err != nil {
		return fmt.Errorf("load article snapshot: %w", err)
	}
	for i := len(articles) - 1; i >= 0; i-- {
		p.store.Add(articles[i])
	}

	interactions, err := p.snapshot.Interactions(ctx)
	if err != nil {
		return fmt.Errorf("load interaction snapshot: %w", err)
	}
	for _, in := range interactions {
		p.tracker.Record(in.UserID, in.Category, in.Confidence, in.ArticleID)
	}

	p.info("restored snapshot", "articles", len(articles), "interactions", len(interactions))
	return nil
}

func truncate(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + "..."
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
