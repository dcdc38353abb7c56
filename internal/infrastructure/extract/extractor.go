package extract

import (
	"bytes"
	"context"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"

	"NewsRecommender/internal/domain"
	"NewsRecommender/internal/fetch"
	"NewsRecommender/internal/ports"
)

// Extractor retrieves full article bodies with readability parsing. Any
// failure (timeout, non-200, unparseable markup) yields a degraded record
// with the fallback title and empty content; callers treat empty content
// as "no improvement", never as an error.
type Extractor struct {
	client *fetch.Client
	logger *slog.Logger
	now    func() time.Time
}

var _ ports.ContentExtractor = (*Extractor)(nil)

// New wires the fetch client.
func New(client *fetch.Client, logger *slog.Logger) *Extractor {
	if client == nil {
		client = fetch.New(nil)
	}
	return &Extractor{client: client, logger: logger, now: time.Now}
}

// Extract fetches and parses the article page. The publish date falls
// back to the current time, flagged as guessed, when the page carries
// none.
func (e *Extractor) Extract(ctx context.Context, rawURL, fallbackTitle string) domain.Extraction {
	pageURL, err := url.Parse(rawURL)
	if err != nil {
		return e.degraded(rawURL, fallbackTitle, err)
	}

	body, _, err := e.client.Get(ctx, rawURL)
	if err != nil {
		return e.degraded(rawURL, fallbackTitle, err)
	}

	article, err := readability.FromReader(bytes.NewReader(body), pageURL)
	if err != nil {
		return e.degraded(rawURL, fallbackTitle, err)
	}

	title := fallbackTitle
	if extracted := strings.TrimSpace(article.Title); extracted != "" && extracted != fallbackTitle {
		title = extracted
	}

	result := domain.Extraction{
		Title:    title,
		Content:  cleanText(article.TextContent),
		ImageURL: article.Image,
	}

	doc, docErr := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if docErr == nil {
		if result.ImageURL == "" {
			result.ImageURL = pageImage(doc)
		}
		result.PublishedAt = pageDate(doc)
	}

	if result.PublishedAt.IsZero() {
		result.PublishedAt = e.now().UTC()
		result.DateGuessed = true
		e.debug("no publish date on page, substituting now", "url", rawURL)
	}

	return result
}

func (e *Extractor) degraded(rawURL, fallbackTitle string, err error) domain.Extraction {
	e.debug("extraction failed", "url", rawURL, "error", err)
	return domain.Extraction{
		Title:       fallbackTitle,
		PublishedAt: e.now().UTC(),
		DateGuessed: true,
	}
}

// pageImage finds a representative image: Open Graph first, then the
// first <img> with a source.
func pageImage(doc *goquery.Document) string {
	if content, ok := doc.Find(`meta[property="og:image"]`).First().Attr("content"); ok && content != "" {
		return content
	}
	if src, ok := doc.Find("img[src]").First().Attr("src"); ok {
		return src
	}
	return ""
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05Z0700",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// pageDate reads the publish date from the usual meta tags.
func pageDate(doc *goquery.Document) time.Time {
	selectors := []string{
		`meta[property="article:published_time"]`,
		`meta[property="og:published_time"]`,
		`meta[name="date"]`,
		`time[datetime]`,
	}

	for _, selector := range selectors {
		sel := doc.Find(selector).First()
		value, ok := sel.Attr("content")
		if !ok {
			value, ok = sel.Attr("datetime")
		}
		if !ok || value == "" {
			continue
		}
		for _, layout := range dateLayouts {
			if parsed, err := time.Parse(layout, strings.TrimSpace(value)); err == nil {
				return parsed.UTC()
			}
		}
	}
	return time.Time{}
}

// cleanText collapses the whitespace readability leaves behind.
func cleanText(text string) string {
	lines := strings.Split(text, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}

func (e *Extractor) debug(msg string, args ...any) {
	if e.logger != nil {
		e.logger.Debug(msg, args...)
	}
}
