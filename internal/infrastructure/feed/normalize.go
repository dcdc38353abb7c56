package feed

import (
	"crypto/sha1"
	"encoding/hex"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"NewsRecommender/internal/domain"
)

const (
	idSlugLimit = 50
	idHashLen   = 8
)

// normalizeItem converts a feed entry into the common article shape.
// Entries without a title, link, or any content are dropped.
func normalizeItem(item *gofeed.Item, source, label string) (domain.Article, bool) {
	title := strings.TrimSpace(item.Title)
	link := strings.TrimSpace(item.Link)
	if title == "" || link == "" {
		return domain.Article{}, false
	}

	content := strings.TrimSpace(item.Description)
	if content == "" {
		content = strings.TrimSpace(item.Content)
	}
	if content == "" {
		return domain.Article{}, false
	}

	article := domain.Article{
		ID:       ArticleID(source, title, link),
		Title:    title,
		Content:  content,
		Source:   source,
		URL:      link,
		Category: label,
		ImageURL: itemImage(item),
	}

	if item.PublishedParsed != nil {
		article.PublishedAt = item.PublishedParsed.UTC()
	} else if item.UpdatedParsed != nil {
		article.PublishedAt = item.UpdatedParsed.UTC()
	}

	return article, true
}

// itemImage digs an image URL out of the entry: media extensions first,
// then enclosures, the feed-level item image, and finally the first <img>
// embedded in the summary HTML.
func itemImage(item *gofeed.Item) string {
	if media, ok := item.Extensions["media"]; ok {
		for _, key := range []string{"content", "thumbnail"} {
			for _, ext := range media[key] {
				url := ext.Attrs["url"]
				if url == "" {
					continue
				}
				if key == "content" && !strings.HasPrefix(ext.Attrs["type"], "image/") && ext.Attrs["type"] != "" {
					continue
				}
				return url
			}
		}
	}

	for _, enclosure := range item.Enclosures {
		if enclosure != nil && strings.HasPrefix(enclosure.Type, "image/") && enclosure.URL != "" {
			return enclosure.URL
		}
	}

	if item.Image != nil && item.Image.URL != "" {
		return item.Image.URL
	}

	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(item.Description)); err == nil {
		if src, ok := doc.Find("img").First().Attr("src"); ok {
			return src
		}
	}

	return ""
}

// ArticleID derives a stable identifier from source, title, and URL: a
// slug capped at 50 bytes plus an 8-hex URL hash. Re-fetching the same
// story always produces the same id, which is what makes cross-batch
// deduplication work.
func ArticleID(source, title, url string) string {
	slug := slugify(source + "-" + title)
	if len(slug) > idSlugLimit {
		slug = slug[:idSlugLimit]
	}

	sum := sha1.Sum([]byte(url))
	return slug + "-" + hex.EncodeToString(sum[:])[:idHashLen]
}

func slugify(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			b.WriteByte('-')
		}
	}
	return strings.Trim(b.String(), "-")
}
