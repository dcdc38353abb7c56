package domain

import "time"

// Article is the core entity flowing through the ingestion and
// recommendation pipeline. Once stored it is immutable except for its
// vector, which the store owns.
type Article struct {
	ID          string
	Title       string
	Content     string
	Category    string
	Subcategory string
	Confidence  float64
	Source      string
	URL         string
	PublishedAt time.Time
	ImageURL    string
}

// Document concatenates the textual fields used for vectorization.
// Category and subcategory are included on purpose so similarity leans
// toward topical clustering rather than pure lexical overlap.
func (a Article) Document() string {
	doc := a.Title + " " + a.Category
	if a.Subcategory != "" {
		doc += " " + a.Subcategory
	}
	return doc + " " + a.Content
}

// FetchRequest carries the parameters of one aggregation run.
type FetchRequest struct {
	Query    string
	Category string
	PageSize int
	Page     int
}

// Extraction is the outcome of readability parsing for one URL. It is
// always usable: a failed extraction keeps the fallback title, carries no
// content, and flags the publish date as guessed.
type Extraction struct {
	Title       string
	Content     string
	ImageURL    string
	PublishedAt time.Time
	DateGuessed bool
}

// Classification is the label/confidence pair produced by the external
// classifier for a piece of text.
type Classification struct {
	Category   string
	Confidence float64
}

// Interaction records that a user read an article of a given category.
type Interaction struct {
	UserID     string
	ArticleID  string
	Category   string
	Confidence float64
	At         time.Time
}
