package store

import (
	"log/slog"
	"sort"
	"strings"
	"sync"

	"NewsRecommender/internal/domain"
	"NewsRecommender/internal/index"
)

const (
	defaultCapacity   = 1000
	defaultEvictBatch = 100
)

// Store is the bounded, time-ordered article cache. It owns the vector
// index: every add or eviction rebuilds the vector table off to the side
// and swaps it in under the write lock, so readers never observe an
// article mid-eviction or a half-updated index.
type Store struct {
	mu           sync.RWMutex
	capacity     int
	evictBatch   int
	articles     map[string]domain.Article
	order        []string
	sourceCounts map[string]int
	vectorizer   *index.Vectorizer
	vectors      map[string][]float64
	logger       *slog.Logger
}

// New builds an empty store. Non-positive capacity or batch size falls
// back to the defaults (1000 articles, eviction in batches of 100).
func New(capacity, evictBatch, maxFeatures int, logger *slog.Logger) *Store {
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	if evictBatch <= 0 {
		evictBatch = defaultEvictBatch
	}
	if evictBatch > capacity {
		evictBatch = capacity
	}
	return &Store{
		capacity:     capacity,
		evictBatch:   evictBatch,
		articles:     map[string]domain.Article{},
		sourceCounts: map[string]int{},
		vectorizer:   index.NewVectorizer(maxFeatures),
		vectors:      map[string][]float64{},
		logger:       logger,
	}
}

// Add inserts an article, evicting the oldest batch first when the store
// is at capacity, then refreshes the vector index. Re-adding an existing
// id replaces the stored copy without inflating source counts.
func (s *Store) Add(article domain.Article) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.articles[article.ID]; exists {
		s.articles[article.ID] = article
		s.rebuildVectors()
		return
	}

	if len(s.articles) >= s.capacity {
		s.evictOldest()
	}

	s.articles[article.ID] = article
	s.order = append(s.order, article.ID)
	s.sourceCounts[article.Source]++
	s.rebuildVectors()
}

// evictOldest removes the oldest-by-published batch in one step. Batch
// eviction amortizes the vector rebuild, which is O(corpus size).
// Caller holds the write lock.
func (s *Store) evictOldest() {
	victims := make([]domain.Article, 0, len(s.articles))
	for _, a := range s.articles {
		victims = append(victims, a)
	}
	sort.Slice(victims, func(i, j int) bool {
		return victims[i].PublishedAt.Before(victims[j].PublishedAt)
	})

	batch := s.evictBatch
	if batch > len(victims) {
		batch = len(victims)
	}

	evicted := make(map[string]bool, batch)
	for _, victim := range victims[:batch] {
		delete(s.articles, victim.ID)
		evicted[victim.ID] = true
		s.sourceCounts[victim.Source]--
		if s.sourceCounts[victim.Source] <= 0 {
			delete(s.sourceCounts, victim.Source)
		}
	}

	kept := s.order[:0]
	for _, id := range s.order {
		if !evicted[id] {
			kept = append(kept, id)
		}
	}
	s.order = kept

	if s.logger != nil {
		s.logger.Info("evicted oldest articles", "count", batch, "remaining", len(s.articles))
	}
}

// rebuildVectors refits or retransforms the whole corpus and swaps the
// vector table. Degenerate documents keep their article stored but get no
// vector; a transform failure resets the vectorizer so the next add
// re-fits from scratch. Caller holds the write lock.
func (s *Store) rebuildVectors() {
	docs := make([]string, 0, len(s.order))
	ids := make([]string, 0, len(s.order))
	for _, id := range s.order {
		doc := s.articles[id].Document()
		if strings.TrimSpace(doc) == "" {
			continue
		}
		docs = append(docs, doc)
		ids = append(ids, id)
	}

	if len(docs) == 0 {
		s.vectors = map[string][]float64{}
		return
	}

	if !s.vectorizer.Fitted() {
		if err := s.vectorizer.Fit(docs); err != nil {
			if s.logger != nil {
				s.logger.Warn("vectorizer fit failed", "error", err)
			}
			s.vectors = map[string][]float64{}
			return
		}
	}

	fresh := make(map[string][]float64, len(ids))
	for i, id := range ids {
		vec, err := s.vectorizer.Transform(docs[i])
		if err != nil {
			// Vocabulary collapse. Drop back to the unfit state; the
			// next add re-fits from the surviving corpus.
			if s.logger != nil {
				s.logger.Warn("vector transform failed, resetting index", "error", err)
			}
			s.vectorizer.Reset()
			s.vectors = map[string][]float64{}
			return
		}
		fresh[id] = vec
	}

	s.vectors = fresh
}

// VectorOf returns the current vector for an article id. Articles that
// are degenerate, evicted, or mid-collapse have no vector and are simply
// excluded from similarity scoring.
func (s *Store) VectorOf(id string) ([]float64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	vec, ok := s.vectors[id]
	return vec, ok
}

// HasVectors reports whether any article currently has a vector.
func (s *Store) HasVectors() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.vectors) > 0
}

// Get returns a stored article by id.
func (s *Store) Get(id string) (domain.Article, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.articles[id]
	return a, ok
}

// Articles returns a snapshot of the stored articles in arrival order.
func (s *Store) Articles() []domain.Article {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Article, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.articles[id])
	}
	return out
}

// Size returns the number of stored articles.
func (s *Store) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.articles)
}

// SourceCount returns how many stored articles share the source.
func (s *Store) SourceCount(source string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sourceCounts[source]
}
