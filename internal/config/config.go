package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	configPathEnv       = "NEWS_RECOMMENDER_CONFIG"
	classifierURLEnv    = "CLASSIFIER_URL"
	classifierAPIKeyEnv = "CLASSIFIER_API_KEY"
	snapshotPathEnv     = "SNAPSHOT_PATH"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging     LoggingConfig     `yaml:"logging"`
	Feeds       []FeedConfig      `yaml:"feeds"`
	Aggregator  AggregatorConfig  `yaml:"aggregator"`
	Classifier  ClassifierConfig  `yaml:"classifier"`
	Recommender RecommenderConfig `yaml:"recommender"`
	Snapshot    SnapshotConfig    `yaml:"snapshot"`
	Scheduler   SchedulerConfig   `yaml:"scheduler"`
}

// LoggingConfig controls log verbosity.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// FeedConfig maps a category name to its source feed URLs.
type FeedConfig struct {
	Category string   `yaml:"category"`
	URLs     []string `yaml:"urls"`
}

// AggregatorConfig tunes the parallel feed-fetch stage.
type AggregatorConfig struct {
	MaxPerFeed        int `yaml:"maxPerFeed"`
	FeedTimeoutSec    int `yaml:"feedTimeoutSec"`
	ExtractTimeoutSec int `yaml:"extractTimeoutSec"`
	DefaultPageSize   int `yaml:"defaultPageSize"`
}

// FeedTimeout resolves the per-feed fetch deadline.
func (a AggregatorConfig) FeedTimeout() time.Duration {
	return time.Duration(a.FeedTimeoutSec) * time.Second
}

// ExtractTimeout resolves the per-article extraction deadline.
func (a AggregatorConfig) ExtractTimeout() time.Duration {
	return time.Duration(a.ExtractTimeoutSec) * time.Second
}

// ClassifierConfig describes the external classification service.
type ClassifierConfig struct {
	Endpoint   string `yaml:"endpoint"`
	APIKey     string `yaml:"apiKey"`
	TimeoutSec int    `yaml:"timeoutSec"`
}

// Timeout resolves the classifier request deadline.
func (c ClassifierConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSec) * time.Second
}

// RecommenderConfig carries the store and scoring tunables. DecayLambda
// and SubcategoryThreshold are empirical constants, kept configurable on
// purpose.
type RecommenderConfig struct {
	Capacity             int     `yaml:"capacity"`
	EvictBatch           int     `yaml:"evictBatch"`
	MaxFeatures          int     `yaml:"maxFeatures"`
	DecayLambda          float64 `yaml:"decayLambda"`
	SubcategoryThreshold float64 `yaml:"subcategoryThreshold"`
}

// SnapshotConfig points at the optional SQLite snapshot file. An empty
// path disables persistence entirely.
type SnapshotConfig struct {
	Path string `yaml:"path"`
}

// SchedulerConfig defines the periodic feed refresh.
type SchedulerConfig struct {
	IntervalMinutes int      `yaml:"intervalMinutes"`
	Categories      []string `yaml:"categories"`
	PageSize        int      `yaml:"pageSize"`
}

// Interval resolves the refresh cadence.
func (s SchedulerConfig) Interval() time.Duration {
	return time.Duration(s.IntervalMinutes) * time.Minute
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()

	if len(cfg.Feeds) == 0 {
		cfg.Feeds = defaultConfig().Feeds
	}

	return cfg
}

// FeedsByCategory reindexes the feed list for registry lookups.
func (c Config) FeedsByCategory() map[string][]string {
	feeds := make(map[string][]string, len(c.Feeds))
	for _, f := range c.Feeds {
		feeds[f.Category] = append(feeds[f.Category], f.URLs...)
	}
	return feeds
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(classifierURLEnv); v != "" {
		c.Classifier.Endpoint = v
	}

	if v := os.Getenv(classifierAPIKeyEnv); v != "" {
		c.Classifier.APIKey = v
	}

	if v := os.Getenv(snapshotPathEnv); v != "" {
		c.Snapshot.Path = v
	}
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging = override.Logging
	}

	if len(override.Feeds) > 0 {
		base.Feeds = override.Feeds
	}

	if override.Aggregator.MaxPerFeed > 0 {
		base.Aggregator.MaxPerFeed = override.Aggregator.MaxPerFeed
	}
	if override.Aggregator.FeedTimeoutSec > 0 {
		base.Aggregator.FeedTimeoutSec = override.Aggregator.FeedTimeoutSec
	}
	if override.Aggregator.ExtractTimeoutSec > 0 {
		base.Aggregator.ExtractTimeoutSec = override.Aggregator.ExtractTimeoutSec
	}
	if override.Aggregator.DefaultPageSize > 0 {
		base.Aggregator.DefaultPageSize = override.Aggregator.DefaultPageSize
	}

	if override.Classifier.Endpoint != "" {
		base.Classifier.Endpoint = override.Classifier.Endpoint
	}
	if override.Classifier.APIKey != "" {
		base.Classifier.APIKey = override.Classifier.APIKey
	}
	if override.Classifier.TimeoutSec > 0 {
		base.Classifier.TimeoutSec = override.Classifier.TimeoutSec
	}

	if override.Recommender.Capacity > 0 {
		base.Recommender.Capacity = override.Recommender.Capacity
	}
	if override.Recommender.EvictBatch > 0 {
		base.Recommender.EvictBatch = override.Recommender.EvictBatch
	}
	if override.Recommender.MaxFeatures > 0 {
		base.Recommender.MaxFeatures = override.Recommender.MaxFeatures
	}
	if override.Recommender.DecayLambda > 0 {
		base.Recommender.DecayLambda = override.Recommender.DecayLambda
	}
	if override.Recommender.SubcategoryThreshold > 0 {
		base.Recommender.SubcategoryThreshold = override.Recommender.SubcategoryThreshold
	}

	if override.Snapshot.Path != "" {
		base.Snapshot = override.Snapshot
	}

	if override.Scheduler.IntervalMinutes > 0 {
		base.Scheduler.IntervalMinutes = override.Scheduler.IntervalMinutes
	}
	if len(override.Scheduler.Categories) > 0 {
		base.Scheduler.Categories = override.Scheduler.Categories
	}
	if override.Scheduler.PageSize > 0 {
		base.Scheduler.PageSize = override.Scheduler.PageSize
	}

	return base
}

func defaultConfig() Config {
	return Config{
		Logging: LoggingConfig{Level: "info"},
		Feeds: []FeedConfig{
			{
				Category: "tech",
				URLs: []string{
					"https://techcrunch.com/feed/",
					"https://www.theverge.com/rss/index.xml",
					"https://www.wired.com/feed/rss",
					"https://www.engadget.com/rss.xml",
				},
			},
			{
				Category: "business",
				URLs: []string{
					"https://www.ft.com/rss/home",
					"https://www.cnbc.com/id/100003114/device/rss/rss.html",
					"https://www.businessinsider.com/rss",
					"https://www.fortune.com/feed/",
				},
			},
			{
				Category: "politics",
				URLs: []string{
					"https://www.politico.com/rss/politicopicks.xml",
					"https://www.theguardian.com/politics/rss",
					"https://www.npr.org/rss/politics/",
					"https://www.rollcall.com/feed/",
				},
			},
			{
				Category: "entertainment",
				URLs: []string{
					"https://www.rollingstone.com/feed/",
					"https://www.variety.com/feed",
					"https://www.hollywoodreporter.com/feed",
					"https://www.billboard.com/feed/",
				},
			},
			{
				Category: "sport",
				URLs: []string{
					"https://www.espn.com/espn/rss/news",
					"https://www.bbc.com/sport/rss.xml",
					"https://www.theguardian.com/sport/rss",
					"https://www.skysports.com/rss/0,20514,11661,00.xml",
				},
			},
		},
		Aggregator: AggregatorConfig{
			MaxPerFeed:        3,
			FeedTimeoutSec:    5,
			ExtractTimeoutSec: 15,
			DefaultPageSize:   10,
		},
		Classifier: ClassifierConfig{
			Endpoint:   "http://localhost:8080/classify",
			TimeoutSec: 15,
		},
		Recommender: RecommenderConfig{
			Capacity:             1000,
			EvictBatch:           100,
			MaxFeatures:          5000,
			DecayLambda:          0.1,
			SubcategoryThreshold: 0.2,
		},
		Snapshot: SnapshotConfig{Path: ""},
		Scheduler: SchedulerConfig{
			IntervalMinutes: 30,
			Categories:      []string{"tech", "business", "politics", "entertainment", "sport"},
			PageSize:        10,
		},
	}
}
