package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Logging.Level != "info" {
		t.Fatalf("unexpected log level %q", cfg.Logging.Level)
	}
	if cfg.Recommender.Capacity != 1000 || cfg.Recommender.EvictBatch != 100 {
		t.Fatalf("unexpected store defaults: %+v", cfg.Recommender)
	}
	if cfg.Recommender.DecayLambda != 0.1 {
		t.Fatalf("unexpected decay lambda %f", cfg.Recommender.DecayLambda)
	}
	if cfg.Recommender.SubcategoryThreshold != 0.2 {
		t.Fatalf("unexpected subcategory threshold %f", cfg.Recommender.SubcategoryThreshold)
	}
	if len(cfg.Feeds) == 0 {
		t.Fatal("expected default feeds")
	}
	if cfg.Scheduler.Interval() != 30*time.Minute {
		t.Fatalf("unexpected refresh interval %v", cfg.Scheduler.Interval())
	}
	if cfg.Snapshot.Path != "" {
		t.Fatal("persistence should be disabled by default")
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	raw := `
logging:
  level: debug
feeds:
  - category: science
    urls:
      - https://example.com/science.xml
recommender:
  capacity: 50
  evictBatch: 5
scheduler:
  intervalMinutes: 5
`
	if err := os.WriteFile(path, []byte(raw), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("NEWS_RECOMMENDER_CONFIG", path)

	cfg := Load()
	if cfg.Logging.Level != "debug" {
		t.Fatalf("expected debug level, got %q", cfg.Logging.Level)
	}
	if cfg.Recommender.Capacity != 50 || cfg.Recommender.EvictBatch != 5 {
		t.Fatalf("file overrides not applied: %+v", cfg.Recommender)
	}
	// Unset fields keep their defaults.
	if cfg.Recommender.MaxFeatures != 5000 {
		t.Fatalf("default max features lost: %d", cfg.Recommender.MaxFeatures)
	}
	if cfg.Scheduler.Interval() != 5*time.Minute {
		t.Fatalf("unexpected interval %v", cfg.Scheduler.Interval())
	}
	if len(cfg.Feeds) != 1 || cfg.Feeds[0].Category != "science" {
		t.Fatalf("feed override not applied: %+v", cfg.Feeds)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("CLASSIFIER_URL", "https://classifier.internal/v1")
	t.Setenv("CLASSIFIER_API_KEY", "secret")
	t.Setenv("SNAPSHOT_PATH", "/tmp/snapshot.db")

	cfg := Load()
	if cfg.Classifier.Endpoint != "https://classifier.internal/v1" {
		t.Fatalf("endpoint override not applied: %q", cfg.Classifier.Endpoint)
	}
	if cfg.Classifier.APIKey != "secret" {
		t.Fatalf("api key override not applied")
	}
	if cfg.Snapshot.Path != "/tmp/snapshot.db" {
		t.Fatalf("snapshot path override not applied: %q", cfg.Snapshot.Path)
	}
}

func TestBadConfigFileFallsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("{{not yaml"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("NEWS_RECOMMENDER_CONFIG", path)

	cfg := Load()
	if cfg.Logging.Level != "info" {
		t.Fatalf("expected defaults on parse failure, got %q", cfg.Logging.Level)
	}
}

func TestFeedsByCategory(t *testing.T) {
	cfg := Config{Feeds: []FeedConfig{
		{Category: "tech", URLs: []string{"https://a", "https://b"}},
		{Category: "tech", URLs: []string{"https://c"}},
		{Category: "sport", URLs: []string{"https://d"}},
	}}

	feeds := cfg.FeedsByCategory()
	if len(feeds["tech"]) != 3 {
		t.Fatalf("expected merged tech feeds, got %v", feeds["tech"])
	}
	if len(feeds["sport"]) != 1 {
		t.Fatalf("expected one sport feed, got %v", feeds["sport"])
	}
}
