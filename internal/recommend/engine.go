package recommend

import (
	"log/slog"
	"math"
	"sort"
	"time"

	"NewsRecommender/internal/domain"
	"NewsRecommender/internal/index"
	"NewsRecommender/internal/prefs"
	"NewsRecommender/internal/store"
)

// Engine produces ranked, source-diverse article lists per user. It never
// surfaces an error: anything going wrong degrades to the diverse-recent
// fallback, and an empty store yields an empty list.
type Engine struct {
	store   *store.Store
	tracker *prefs.Tracker
	lambda  float64
	logger  *slog.Logger
	now     func() time.Time
}

// NewEngine wires the store and tracker with the freshness decay constant
// per day (non-positive falls back to 0.1).
func NewEngine(articles *store.Store, tracker *prefs.Tracker, lambda float64, logger *slog.Logger) *Engine {
	if lambda <= 0 {
		lambda = 0.1
	}
	return &Engine{
		store:   articles,
		tracker: tracker,
		lambda:  lambda,
		logger:  logger,
		now:     time.Now,
	}
}

type scored struct {
	article domain.Article
	score   float64
}

// Recommend returns up to n unseen articles for the user, ranked by the
// composite score (topical similarity, freshness, category preference,
// source rarity) with a per-source diversity cap of ceil(n/2).
func (e *Engine) Recommend(userID string, n int) []domain.Article {
	if n <= 0 {
		return nil
	}

	articles := e.store.Articles()
	if len(articles) == 0 {
		return []domain.Article{}
	}

	seen := e.tracker.Seen(userID)

	if !e.tracker.HasInteractions(userID) || !e.store.HasVectors() {
		e.info("no usable history, serving diverse recent", "user", userID)
		return e.diverseRecent(articles, seen, n)
	}

	userProfile := e.profileVector(seen)
	if userProfile == nil {
		// Every read article lost its vector to eviction; treat the
		// user as cold again rather than failing.
		e.info("profile vectors evicted, serving diverse recent", "user", userID)
		return e.diverseRecent(articles, seen, n)
	}

	candidates := make([]scored, 0, len(articles))
	for _, article := range articles {
		if seen[article.ID] {
			continue
		}
		score, ok := e.scoreArticle(article, userProfile, userID)
		if !ok {
			continue
		}
		candidates = append(candidates, scored{article: article, score: score})
	}

	if len(candidates) == 0 {
		e.info("no scorable candidates, serving diverse recent", "user", userID)
		return e.diverseRecent(articles, seen, n)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].article.PublishedAt.After(candidates[j].article.PublishedAt)
	})

	ranked := make([]domain.Article, len(candidates))
	for i, c := range candidates {
		ranked[i] = c.article
	}

	picks := selectDiverse(ranked, n)
	if len(picks) == 0 {
		e.info("diverse selection came up empty, serving diverse recent", "user", userID)
		return e.diverseRecent(articles, seen, n)
	}
	return picks
}

func (e *Engine) info(msg string, args ...any) {
	if e.logger != nil {
		e.logger.Info(msg, args...)
	}
}

// profileVector is the mean of the vectors of the user's read articles.
// Articles whose vector is gone (evicted) are skipped, not errors.
func (e *Engine) profileVector(seen map[string]bool) []float64 {
	vectors := make([][]float64, 0, len(seen))
	for id := range seen {
		if vec, ok := e.store.VectorOf(id); ok {
			vectors = append(vectors, vec)
		}
	}
	if len(vectors) == 0 {
		return nil
	}
	return index.Mean(vectors)
}

// scoreArticle computes the composite score for one candidate. A missing
// vector or degenerate inputs skip the article only.
func (e *Engine) scoreArticle(article domain.Article, userProfile []float64, userID string) (float64, bool) {
	vec, ok := e.store.VectorOf(article.ID)
	if !ok || len(vec) != len(userProfile) {
		return 0, false
	}

	similarity := index.Cosine(userProfile, vec)

	days := e.now().Sub(article.PublishedAt).Hours() / 24
	if days < 0 {
		days = 0
	}
	freshness := math.Exp(-e.lambda * days)

	// Categories the user never read keep the neutral weight 1.0 so
	// similarity can still surface them.
	categoryWeight := 1.0
	if share, ok := e.tracker.Share(userID, article.Category); ok {
		categoryWeight = share
	}

	occurrences := e.store.SourceCount(article.Source)
	if occurrences < 1 {
		occurrences = 1
	}
	sourceFactor := 1 / math.Sqrt(float64(occurrences))

	return similarity * freshness * categoryWeight * sourceFactor, true
}

// diverseRecent is the cold-start and failure fallback: unseen articles
// newest first, with the same per-source cap as the scored path.
func (e *Engine) diverseRecent(articles []domain.Article, seen map[string]bool, n int) []domain.Article {
	unseen := make([]domain.Article, 0, len(articles))
	for _, article := range articles {
		if !seen[article.ID] {
			unseen = append(unseen, article)
		}
	}

	sort.SliceStable(unseen, func(i, j int) bool {
		return unseen[i].PublishedAt.After(unseen[j].PublishedAt)
	})

	return selectDiverse(unseen, n)
}

// selectDiverse greedily picks from ranked candidates, capping any single
// source at ceil(n/2). The cap binds whenever at least ceil(n/2) distinct
// sources are available, even if that yields fewer than n picks; only
// when fewer distinct sources exist are the remaining slots topped up in
// ranked order.
func selectDiverse(ranked []domain.Article, n int) []domain.Article {
	if n <= 0 {
		return nil
	}

	maxPerSource := (n + 1) / 2
	perSource := map[string]int{}
	picked := make([]domain.Article, 0, n)
	taken := map[string]bool{}

	distinct := map[string]bool{}
	for _, article := range ranked {
		distinct[article.Source] = true
	}

	for _, article := range ranked {
		if len(picked) >= n {
			break
		}
		if perSource[article.Source] >= maxPerSource {
			continue
		}
		perSource[article.Source]++
		picked = append(picked, article)
		taken[article.ID] = true
	}

	if len(distinct) >= maxPerSource {
		return picked
	}

	for _, article := range ranked {
		if len(picked) >= n {
			break
		}
		if taken[article.ID] {
			continue
		}
		picked = append(picked, article)
	}

	return picked
}
