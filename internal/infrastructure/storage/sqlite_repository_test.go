package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"NewsRecommender/internal/domain"
)

func openTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := Open(filepath.Join(t.TempDir(), "snapshot.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestSaveAndLoadArticles(t *testing.T) {
	t.Parallel()

	repo := openTestRepo(t)
	ctx := context.Background()
	base := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)

	articles := []domain.Article{
		{
			ID: "a1", Title: "Older", Content: "body one", Category: "tech",
			Subcategory: "ai", Confidence: 0.9, Source: "Wire A",
			URL: "https://example.com/1", PublishedAt: base,
		},
		{
			ID: "a2", Title: "Newer", Content: "body two", Category: "sport",
			Confidence: 0.7, Source: "Wire B",
			URL: "https://example.com/2", PublishedAt: base.Add(time.Hour),
		},
	}
	if err := repo.SaveArticles(ctx, articles); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := repo.RecentArticles(ctx, 0)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 articles, got %d", len(got))
	}
	if got[0].ID != "a2" || got[1].ID != "a1" {
		t.Fatalf("expected newest first, got %s, %s", got[0].ID, got[1].ID)
	}
	if got[1].Subcategory != "ai" || got[1].Confidence != 0.9 {
		t.Fatalf("round trip lost fields: %+v", got[1])
	}
	if !got[1].PublishedAt.Equal(base) {
		t.Fatalf("expected %v, got %v", base, got[1].PublishedAt)
	}
}

func TestSaveArticlesUpserts(t *testing.T) {
	t.Parallel()

	repo := openTestRepo(t)
	ctx := context.Background()
	a := domain.Article{
		ID: "a1", Title: "First title", Content: "short", Category: "tech",
		Source: "Wire A", URL: "https://example.com/1",
		PublishedAt: time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC),
	}
	if err := repo.SaveArticles(ctx, []domain.Article{a}); err != nil {
		t.Fatalf("save: %v", err)
	}

	a.Content = "a much fuller extracted body"
	if err := repo.SaveArticles(ctx, []domain.Article{a}); err != nil {
		t.Fatalf("second save: %v", err)
	}

	got, err := repo.RecentArticles(ctx, 0)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected a single row after upsert, got %d", len(got))
	}
	if got[0].Content != a.Content {
		t.Fatalf("upsert did not replace content: %q", got[0].Content)
	}
}

func TestRecentArticlesLimit(t *testing.T) {
	t.Parallel()

	repo := openTestRepo(t)
	ctx := context.Background()
	base := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		a := domain.Article{
			ID: string(rune('a' + i)), Title: "t", Content: "c", Category: "tech",
			Source: "Wire", URL: "https://example.com", PublishedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if err := repo.SaveArticles(ctx, []domain.Article{a}); err != nil {
			t.Fatalf("save: %v", err)
		}
	}

	got, err := repo.RecentArticles(ctx, 3)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected limit of 3, got %d", len(got))
	}
}

func TestInteractionsRoundTrip(t *testing.T) {
	t.Parallel()

	repo := openTestRepo(t)
	ctx := context.Background()
	base := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)

	first := domain.Interaction{
		UserID: "u1", ArticleID: "a1", Category: "tech", Confidence: 0.9, At: base,
	}
	second := domain.Interaction{
		UserID: "u1", ArticleID: "a2", Category: "sport", Confidence: 0.6, At: base.Add(time.Minute),
	}
	for _, in := range []domain.Interaction{second, first} {
		if err := repo.SaveInteraction(ctx, in); err != nil {
			t.Fatalf("save interaction: %v", err)
		}
	}

	// Duplicate of an existing (user, article) pair is silently ignored.
	dup := first
	dup.Confidence = 0.1
	if err := repo.SaveInteraction(ctx, dup); err != nil {
		t.Fatalf("duplicate save: %v", err)
	}

	got, err := repo.Interactions(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 interactions, got %d", len(got))
	}
	if got[0].ArticleID != "a1" || got[1].ArticleID != "a2" {
		t.Fatalf("expected chronological order, got %s, %s", got[0].ArticleID, got[1].ArticleID)
	}
	if got[0].Confidence != 0.9 {
		t.Fatalf("duplicate must not overwrite, got %f", got[0].Confidence)
	}
}
