package recommend

import (
	"bytes"
	"fmt"
	"log/slog"
	"strings"
	"testing"
	"time"

	"NewsRecommender/internal/domain"
	"NewsRecommender/internal/prefs"
	"NewsRecommender/internal/store"
)

func article(id, source, category, text string, published time.Time) domain.Article {
	return domain.Article{
		ID:          id,
		Title:       text,
		Content:     text,
		Category:    category,
		Source:      source,
		URL:         "https://example.com/" + id,
		PublishedAt: published,
	}
}

func newEngine(t *testing.T) (*Engine, *store.Store, *prefs.Tracker) {
	t.Helper()
	s := store.New(100, 10, 500, nil)
	tr := prefs.NewTracker(0.1)
	return NewEngine(s, tr, 0.1, nil), s, tr
}

func TestRecommendEmptyStore(t *testing.T) {
	t.Parallel()

	e, _, _ := newEngine(t)
	got := e.Recommend("u1", 5)
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil list, got %v", got)
	}
}

func TestRecommendExcludesSeen(t *testing.T) {
	t.Parallel()

	e, s, tr := newEngine(t)
	now := time.Now()
	for i := 0; i < 6; i++ {
		s.Add(article(fmt.Sprintf("a%d", i), fmt.Sprintf("src%d", i), "tech",
			fmt.Sprintf("quantum computing update number %d", i), now.Add(-time.Duration(i)*time.Hour)))
	}
	tr.Record("u1", "tech", 0.9, "a0")
	tr.Record("u1", "tech", 0.9, "a1")

	for _, a := range e.Recommend("u1", 10) {
		if a.ID == "a0" || a.ID == "a1" {
			t.Fatalf("seen article %s must not be recommended", a.ID)
		}
	}
}

func TestColdUserFallbackIsRecentAndDiverse(t *testing.T) {
	t.Parallel()

	e, s, _ := newEngine(t)
	now := time.Now()

	// Two articles from one source bracketing one from another; with n=2
	// the per-source cap is 1, so the result is one per source, newest
	// first.
	s.Add(article("a1", "Alpha Wire", "tech", "chip launch news", now))
	s.Add(article("a2", "Alpha Wire", "tech", "second chip story", now.Add(-time.Hour)))
	s.Add(article("b1", "Beta Post", "tech", "cloud outage report", now.Add(-2*time.Hour)))

	got := e.Recommend("newcomer", 2)
	if len(got) != 2 {
		t.Fatalf("expected 2 picks, got %d", len(got))
	}
	if got[0].ID != "a1" {
		t.Fatalf("expected newest first, got %s", got[0].ID)
	}
	if got[1].ID != "b1" {
		t.Fatalf("expected the other source second, got %s", got[1].ID)
	}
}

func TestDiversityCap(t *testing.T) {
	t.Parallel()

	e, s, _ := newEngine(t)
	now := time.Now()
	for i := 0; i < 8; i++ {
		s.Add(article(fmt.Sprintf("m%d", i), "Mono Source", "tech",
			fmt.Sprintf("story number %d", i), now.Add(-time.Duration(i)*time.Minute)))
	}
	for i := 0; i < 4; i++ {
		s.Add(article(fmt.Sprintf("o%d", i), fmt.Sprintf("Other %d", i), "tech",
			fmt.Sprintf("different outlet piece %d", i), now.Add(-time.Duration(i)*time.Minute)))
	}

	n := 6
	got := e.Recommend("newcomer", n)
	if len(got) != n {
		t.Fatalf("expected %d picks, got %d", n, len(got))
	}

	counts := map[string]int{}
	for _, a := range got {
		counts[a.Source]++
	}
	maxPerSource := (n + 1) / 2
	for source, c := range counts {
		if c > maxPerSource {
			t.Fatalf("source %s exceeds cap: %d > %d", source, c, maxPerSource)
		}
	}
}

func TestDiversityCapBindsWithEnoughSources(t *testing.T) {
	t.Parallel()

	e, s, _ := newEngine(t)
	now := time.Now()
	for i := 0; i < 3; i++ {
		s.Add(article(fmt.Sprintf("x%d", i), "Source X", "tech",
			fmt.Sprintf("story number %d", i), now.Add(-time.Duration(i)*time.Minute)))
	}
	s.Add(article("y0", "Source Y", "tech", "different outlet piece", now.Add(-time.Minute)))

	// Two distinct sources meet the cap of ceil(4/2)=2, so the cap binds
	// and the result is shorter than n rather than over-serving Source X.
	got := e.Recommend("newcomer", 4)
	if len(got) != 3 {
		t.Fatalf("expected capped list of 3, got %d", len(got))
	}

	counts := map[string]int{}
	for _, a := range got {
		counts[a.Source]++
	}
	if counts["Source X"] > 2 {
		t.Fatalf("Source X exceeds cap: %d > 2", counts["Source X"])
	}
	if counts["Source Y"] != 1 {
		t.Fatalf("expected the Source Y article, got %d", counts["Source Y"])
	}
}

func TestDiversityCapTopUp(t *testing.T) {
	t.Parallel()

	e, s, _ := newEngine(t)
	now := time.Now()
	for i := 0; i < 6; i++ {
		s.Add(article(fmt.Sprintf("m%d", i), "Mono Source", "tech",
			fmt.Sprintf("story number %d", i), now.Add(-time.Duration(i)*time.Minute)))
	}

	// Only one source exists, so the cap cannot be honored and the list
	// is topped up to n anyway.
	got := e.Recommend("newcomer", 4)
	if len(got) != 4 {
		t.Fatalf("expected top-up to 4, got %d", len(got))
	}
}

func TestPersonalizedRankingFollowsHistory(t *testing.T) {
	t.Parallel()

	e, s, tr := newEngine(t)
	now := time.Now()

	s.Add(article("t1", "Tech Daily", "tech", "quantum computing processors breakthrough research", now))
	s.Add(article("t2", "Chip Weekly", "tech", "quantum processors research milestone achieved", now))
	s.Add(article("s1", "Goal Net", "sport", "football transfer window gossip roundup", now))

	tr.Record("u1", "tech", 0.95, "t1")

	got := e.Recommend("u1", 2)
	if len(got) == 0 {
		t.Fatal("expected recommendations")
	}
	if got[0].ID != "t2" {
		t.Fatalf("expected topically similar article first, got %s", got[0].ID)
	}
}

func TestRecommendAllSeenFallsBack(t *testing.T) {
	t.Parallel()

	e, s, tr := newEngine(t)
	now := time.Now()
	s.Add(article("a1", "Alpha Wire", "tech", "chip launch news", now))
	s.Add(article("a2", "Beta Post", "tech", "cloud outage report", now))

	tr.Record("u1", "tech", 0.9, "a1")
	tr.Record("u1", "tech", 0.9, "a2")

	got := e.Recommend("u1", 5)
	if len(got) != 0 {
		t.Fatalf("every article seen: expected empty result, got %d", len(got))
	}
}

func TestRecommendLogsFallback(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	s := store.New(100, 10, 500, nil)
	tr := prefs.NewTracker(0.1)
	e := NewEngine(s, tr, 0.1, logger)

	s.Add(article("a1", "Alpha Wire", "tech", "chip launch news", time.Now()))
	e.Recommend("newcomer", 2)

	if !strings.Contains(buf.String(), "diverse recent") {
		t.Fatalf("expected a fallback log line, got %q", buf.String())
	}
}

func TestRecommendZeroN(t *testing.T) {
	t.Parallel()

	e, s, _ := newEngine(t)
	s.Add(article("a1", "Alpha Wire", "tech", "chip launch news", time.Now()))

	if got := e.Recommend("u1", 0); len(got) != 0 {
		t.Fatalf("n=0 should yield nothing, got %d", len(got))
	}
}
