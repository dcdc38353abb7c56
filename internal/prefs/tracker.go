package prefs

import (
	"math"
	"sync"
	"time"
)

const defaultLambda = 0.1

// Tracker keeps per-user running statistics over the categories a user
// reads. Updates for different users proceed concurrently; updates for
// one user are serialized since weight recomputation reads aggregate
// state. Profiles are created lazily and live for the process lifetime.
type Tracker struct {
	mu     sync.RWMutex
	users  map[string]*profile
	lambda float64
	now    func() time.Time
}

// profile is one user's aggregate reading history, including the exact
// set of article ids already recorded so duplicate interactions are no-ops.
type profile struct {
	mu         sync.Mutex
	categories map[string]*categoryStats
	seen       map[string]bool
	total      int
}

type categoryStats struct {
	count           int
	totalConfidence float64
	lastInteraction time.Time
}

// NewTracker builds a tracker with the given time-decay constant per day
// (non-positive values fall back to 0.1).
func NewTracker(lambda float64) *Tracker {
	if lambda <= 0 {
		lambda = defaultLambda
	}
	return &Tracker{
		users:  map[string]*profile{},
		lambda: lambda,
		now:    time.Now,
	}
}

func (t *Tracker) profileFor(userID string) *profile {
	t.mu.RLock()
	p, ok := t.users[userID]
	t.mu.RUnlock()
	if ok {
		return p
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if p, ok = t.users[userID]; ok {
		return p
	}
	p = &profile{
		categories: map[string]*categoryStats{},
		seen:       map[string]bool{},
	}
	t.users[userID] = p
	return p
}

// Record notes that the user read the article. A second call with the
// same article id changes nothing and returns false.
func (t *Tracker) Record(userID, category string, confidence float64, articleID string) bool {
	p := t.profileFor(userID)

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.seen[articleID] {
		return false
	}
	p.seen[articleID] = true
	p.total++

	stats, ok := p.categories[category]
	if !ok {
		stats = &categoryStats{}
		p.categories[category] = stats
	}
	stats.count++
	stats.totalConfidence += confidence
	stats.lastInteraction = t.now()
	return true
}

// Weights returns the decayed preference weight per category:
// exp(-lambda * days since last interaction) times the mean confidence
// times the category's share of all interactions. Categories the user
// never read are absent.
func (t *Tracker) Weights(userID string) map[string]float64 {
	p := t.profileFor(userID)

	p.mu.Lock()
	defer p.mu.Unlock()

	weights := make(map[string]float64, len(p.categories))
	if p.total == 0 {
		return weights
	}

	now := t.now()
	for category, stats := range p.categories {
		if stats.count == 0 {
			continue
		}
		days := now.Sub(stats.lastInteraction).Hours() / 24
		if days < 0 {
			days = 0
		}
		decay := math.Exp(-t.lambda * days)
		base := stats.totalConfidence / float64(stats.count)
		share := float64(stats.count) / float64(p.total)
		weights[category] = base * decay * share
	}
	return weights
}

// Share returns the category's share of the user's interactions and
// whether the user has read it at all.
func (t *Tracker) Share(userID, category string) (float64, bool) {
	p := t.profileFor(userID)

	p.mu.Lock()
	defer p.mu.Unlock()

	stats, ok := p.categories[category]
	if !ok || p.total == 0 {
		return 0, false
	}
	return float64(stats.count) / float64(p.total), true
}

// Seen returns a copy of the user's recorded article ids.
func (t *Tracker) Seen(userID string) map[string]bool {
	p := t.profileFor(userID)

	p.mu.Lock()
	defer p.mu.Unlock()

	seen := make(map[string]bool, len(p.seen))
	for id := range p.seen {
		seen[id] = true
	}
	return seen
}

// HasInteractions reports whether the user has any recorded reads.
func (t *Tracker) HasInteractions(userID string) bool {
	p := t.profileFor(userID)

	p.mu.Lock()
	defer p.mu.Unlock()
	return p.total > 0
}
