package feed

import "sort"

// mixPerCategory is how many feeds each category contributes to the
// cross-category mix used for unknown categories and top headlines.
const mixPerCategory = 2

// Registry maps category names to their source feed URLs. It is built
// once from config and read-only afterwards.
type Registry struct {
	feeds map[string][]string
}

// NewRegistry indexes the configured feeds by category.
func NewRegistry(feeds map[string][]string) *Registry {
	copied := make(map[string][]string, len(feeds))
	for cat, urls := range feeds {
		copied[cat] = append([]string(nil), urls...)
	}
	return &Registry{feeds: copied}
}

// Resolve returns the feed URLs for a category. An unknown or empty
// category falls back to a fixed cross-category mix (the first feeds of
// every category, in stable order) rather than failing.
func (r *Registry) Resolve(category string) []string {
	if urls, ok := r.feeds[category]; ok && len(urls) > 0 {
		return append([]string(nil), urls...)
	}
	return r.mix()
}

func (r *Registry) mix() []string {
	categories := r.Categories()
	var urls []string
	for _, cat := range categories {
		feeds := r.feeds[cat]
		take := mixPerCategory
		if take > len(feeds) {
			take = len(feeds)
		}
		urls = append(urls, feeds[:take]...)
	}
	return urls
}

// Categories lists the configured category names in stable order.
func (r *Registry) Categories() []string {
	categories := make([]string, 0, len(r.feeds))
	for cat := range r.feeds {
		categories = append(categories, cat)
	}
	sort.Strings(categories)
	return categories
}

// Known reports whether the category has configured feeds.
func (r *Registry) Known(category string) bool {
	urls, ok := r.feeds[category]
	return ok && len(urls) > 0
}
