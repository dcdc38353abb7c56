package feed

import (
	"context"
	"log/slog"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/mmcdole/gofeed"

	"NewsRecommender/internal/category"
	"NewsRecommender/internal/domain"
	"NewsRecommender/internal/fetch"
	"NewsRecommender/internal/ports"
)

const (
	defaultMaxPerFeed     = 3
	defaultFeedTimeout    = 5 * time.Second
	defaultExtractTimeout = 15 * time.Second
	defaultPageSize       = 10

	// generalQuery asks for top headlines across all categories.
	generalQuery = "__GENERAL__"
)

// Aggregator implements ports.ArticleSource over a registry of RSS/Atom
// feeds: concurrent per-feed fetch with individual timeouts, entry
// normalization, URL dedup, and bounded readability enrichment of the
// page-sized subset. A failing or empty feed contributes zero articles
// without aborting the batch.
type Aggregator struct {
	client         *fetch.Client
	registry       *Registry
	extractor      ports.ContentExtractor
	maxPerFeed     int
	feedTimeout    time.Duration
	extractTimeout time.Duration
	pageSize       int
	logger         *slog.Logger
}

var _ ports.ArticleSource = (*Aggregator)(nil)

// Options tunes the aggregation stage; zero values take defaults.
type Options struct {
	MaxPerFeed      int
	FeedTimeout     time.Duration
	ExtractTimeout  time.Duration
	DefaultPageSize int
}

// NewAggregator wires the fetch client, feed registry, and extractor.
func NewAggregator(client *fetch.Client, registry *Registry, extractor ports.ContentExtractor, opts Options, logger *slog.Logger) *Aggregator {
	if client == nil {
		client = fetch.New(nil)
	}
	if opts.MaxPerFeed <= 0 {
		opts.MaxPerFeed = defaultMaxPerFeed
	}
	if opts.FeedTimeout <= 0 {
		opts.FeedTimeout = defaultFeedTimeout
	}
	if opts.ExtractTimeout <= 0 {
		opts.ExtractTimeout = defaultExtractTimeout
	}
	if opts.DefaultPageSize <= 0 {
		opts.DefaultPageSize = defaultPageSize
	}
	return &Aggregator{
		client:         client,
		registry:       registry,
		extractor:      extractor,
		maxPerFeed:     opts.MaxPerFeed,
		feedTimeout:    opts.FeedTimeout,
		extractTimeout: opts.ExtractTimeout,
		pageSize:       opts.DefaultPageSize,
		logger:         logger,
	}
}

// Fetch resolves the request to one or more categories, pulls their feeds
// concurrently, and returns a deduplicated, shuffled, page-sized batch of
// normalized articles. Partial failure is routine; the only empty result
// without articles is a registry that resolves nothing.
func (a *Aggregator) Fetch(ctx context.Context, req domain.FetchRequest) ([]domain.Article, error) {
	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = a.pageSize
	}

	categories := a.resolveCategories(req)

	if len(categories) > 1 {
		// Split the page between the requested categories and fetch
		// them in parallel, then mix.
		share := pageSize / len(categories)
		if share < 1 {
			share = 1
		}

		var (
			wg   sync.WaitGroup
			mu   sync.Mutex
			pool []domain.Article
		)
		for _, cat := range categories {
			wg.Add(1)
			go func(cat string) {
				defer wg.Done()
				batch := a.fetchCategory(ctx, cat, share)
				mu.Lock()
				pool = append(pool, batch...)
				mu.Unlock()
			}(cat)
		}
		wg.Wait()

		pool = dedupByURL(pool)
		rand.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
		if len(pool) > pageSize {
			pool = pool[:pageSize]
		}
		return pool, nil
	}

	cat := ""
	if len(categories) == 1 {
		cat = categories[0]
	}
	return a.fetchCategory(ctx, cat, pageSize), nil
}

// resolveCategories interprets the request: an explicit category wins, a
// query of the form "a OR b" fans out, a single-word query is treated as
// a category name, and anything else (including the general query) maps
// to the cross-category mix.
func (a *Aggregator) resolveCategories(req domain.FetchRequest) []string {
	if req.Category != "" {
		return []string{strings.ToLower(req.Category)}
	}

	query := strings.TrimSpace(req.Query)
	switch {
	case query == "" || query == generalQuery:
		return nil
	case strings.Contains(query, " OR "):
		parts := strings.Split(query, " OR ")
		categories := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.ToLower(strings.TrimSpace(p)); p != "" {
				categories = append(categories, p)
			}
		}
		return categories
	case !strings.Contains(query, " "):
		return []string{strings.ToLower(query)}
	default:
		return nil
	}
}

// fetchCategory pulls every feed of one category concurrently and returns
// the deduplicated, shuffled, enriched page.
func (a *Aggregator) fetchCategory(ctx context.Context, cat string, pageSize int) []domain.Article {
	urls := a.registry.Resolve(cat)
	if len(urls) == 0 {
		a.debug("no feeds resolvable", "category", cat)
		return []domain.Article{}
	}

	label := category.Other
	if a.registry.Known(cat) {
		label = cat
	}

	results := make(chan []domain.Article, len(urls))
	var wg sync.WaitGroup
	for _, feedURL := range urls {
		wg.Add(1)
		go func(feedURL string) {
			defer wg.Done()
			results <- a.fetchFeed(ctx, feedURL, label)
		}(feedURL)
	}
	wg.Wait()
	close(results)

	var pool []domain.Article
	for batch := range results {
		pool = append(pool, batch...)
	}

	pool = dedupByURL(pool)
	rand.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	if len(pool) > pageSize {
		pool = pool[:pageSize]
	}

	a.enrich(ctx, pool)
	return pool
}

// fetchFeed retrieves and normalizes one feed under its own timeout.
// Every failure mode degrades to zero articles.
func (a *Aggregator) fetchFeed(ctx context.Context, feedURL, label string) []domain.Article {
	feedCtx, cancel := context.WithTimeout(ctx, a.feedTimeout)
	defer cancel()

	body, _, err := a.client.Get(feedCtx, feedURL)
	if err != nil {
		a.debug("feed fetch failed", "url", feedURL, "error", err)
		return nil
	}

	parsed, err := gofeed.NewParser().ParseString(string(body))
	if err != nil {
		a.debug("feed parse failed", "url", feedURL, "error", err)
		return nil
	}

	source := strings.TrimSpace(parsed.Title)
	if source == "" {
		source = "Unknown Source"
	}

	articles := make([]domain.Article, 0, a.maxPerFeed)
	for _, item := range parsed.Items {
		if len(articles) >= a.maxPerFeed {
			break
		}
		article, ok := normalizeItem(item, source, label)
		if !ok {
			continue
		}
		articles = append(articles, article)
	}
	return articles
}

// enrich replaces summary-only content with extracted full text for the
// already-truncated page, one bounded extraction per article. Extraction
// only ever improves an article: a failure leaves the original intact.
func (a *Aggregator) enrich(ctx context.Context, articles []domain.Article) {
	if a.extractor == nil || len(articles) == 0 {
		return
	}

	var wg sync.WaitGroup
	for i := range articles {
		wg.Add(1)
		go func(article *domain.Article) {
			defer wg.Done()

			extractCtx, cancel := context.WithTimeout(ctx, a.extractTimeout)
			defer cancel()

			extracted := a.extractor.Extract(extractCtx, article.URL, article.Title)
			if len(extracted.Content) > len(article.Content) {
				article.Content = extracted.Content
			}
			if extracted.Title != "" {
				article.Title = extracted.Title
			}
			if article.ImageURL == "" && extracted.ImageURL != "" {
				article.ImageURL = extracted.ImageURL
			}
			if article.PublishedAt.IsZero() && !extracted.DateGuessed {
				article.PublishedAt = extracted.PublishedAt
			}
		}(&articles[i])
	}
	wg.Wait()
}

// dedupByURL keeps the first occurrence of every URL across the batch.
func dedupByURL(articles []domain.Article) []domain.Article {
	seen := make(map[string]bool, len(articles))
	out := articles[:0]
	for _, article := range articles {
		if seen[article.URL] {
			continue
		}
		seen[article.URL] = true
		out = append(out, article)
	}
	return out
}

func (a *Aggregator) debug(msg string, args ...any) {
	if a.logger != nil {
		a.logger.Debug(msg, args...)
	}
}
