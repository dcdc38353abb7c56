package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "modernc.org/sqlite"

	"NewsRecommender/internal/domain"
	"NewsRecommender/internal/ports"
)

// SQLiteRepository persists article and interaction snapshots so the
// in-memory store and tracker can warm-start after a restart. The core
// never depends on it; an empty path in config disables persistence.
type SQLiteRepository struct {
	db *sql.DB
}

var _ ports.SnapshotRepository = (*SQLiteRepository)(nil)

// Open creates (or opens) the snapshot database and its schema.
func Open(path string) (*SQLiteRepository, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create snapshot dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open snapshot db: %w", err)
	}
	db.SetMaxOpenConns(1)

	repo := &SQLiteRepository{db: db}
	if err := repo.init(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

func (r *SQLiteRepository) init() error {
	_, err := r.db.Exec(`
		CREATE TABLE IF NOT EXISTS articles (
			id           TEXT PRIMARY KEY,
			title        TEXT NOT NULL,
			content      TEXT NOT NULL DEFAULT '',
			category     TEXT NOT NULL,
			subcategory  TEXT NOT NULL DEFAULT '',
			confidence   REAL NOT NULL DEFAULT 0,
			source       TEXT NOT NULL,
			url          TEXT NOT NULL,
			published_at TEXT NOT NULL,
			image_url    TEXT NOT NULL DEFAULT ''
		);
		CREATE INDEX IF NOT EXISTS idx_articles_published ON articles(published_at DESC);

		CREATE TABLE IF NOT EXISTS interactions (
			user_id    TEXT NOT NULL,
			article_id TEXT NOT NULL,
			category   TEXT NOT NULL,
			confidence REAL NOT NULL DEFAULT 0,
			at         TEXT NOT NULL,
			PRIMARY KEY (user_id, article_id)
		);
	`)
	if err != nil {
		return fmt.Errorf("init snapshot schema: %w", err)
	}
	return nil
}

// Close releases the database handle.
func (r *SQLiteRepository) Close() error {
	if r.db == nil {
		return nil
	}
	return r.db.Close()
}

// SaveArticles upserts one snapshot row per article.
func (r *SQLiteRepository) SaveArticles(ctx context.Context, articles []domain.Article) error {
	if len(articles) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin snapshot tx: %w", err)
	}
	defer tx.Rollback()

	for _, a := range articles {
		query, args, err := sq.Insert("articles").
			Columns("id", "title", "content", "category", "subcategory",
				"confidence", "source", "url", "published_at", "image_url").
			Values(a.ID, a.Title, a.Content, a.Category, a.Subcategory,
				a.Confidence, a.Source, a.URL, a.PublishedAt.UTC().Format(time.RFC3339), a.ImageURL).
			Suffix(`ON CONFLICT(id) DO UPDATE SET
				title = excluded.title,
				content = excluded.content,
				category = excluded.category,
				subcategory = excluded.subcategory,
				confidence = excluded.confidence,
				image_url = excluded.image_url`).
			ToSql()
		if err != nil {
			return fmt.Errorf("build upsert: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("upsert article %s: %w", a.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit snapshot tx: %w", err)
	}
	return nil
}

// RecentArticles returns up to limit snapshot articles, newest first.
func (r *SQLiteRepository) RecentArticles(ctx context.Context, limit int) ([]domain.Article, error) {
	builder := sq.Select("id", "title", "content", "category", "subcategory",
		"confidence", "source", "url", "published_at", "image_url").
		From("articles").
		OrderBy("published_at DESC")
	if limit > 0 {
		builder = builder.Limit(uint64(limit))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query articles: %w", err)
	}
	defer rows.Close()

	var articles []domain.Article
	for rows.Next() {
		var (
			a         domain.Article
			published string
		)
		if err := rows.Scan(&a.ID, &a.Title, &a.Content, &a.Category, &a.Subcategory,
			&a.Confidence, &a.Source, &a.URL, &published, &a.ImageURL); err != nil {
			return nil, fmt.Errorf("scan article: %w", err)
		}
		a.PublishedAt, err = time.Parse(time.RFC3339, published)
		if err != nil {
			a.PublishedAt = time.Now().UTC()
		}
		articles = append(articles, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return articles, nil
}

// SaveInteraction records one interaction; duplicates are ignored, which
// matches the tracker's idempotency.
func (r *SQLiteRepository) SaveInteraction(ctx context.Context, interaction domain.Interaction) error {
	query, args, err := sq.Insert("interactions").
		Columns("user_id", "article_id", "category", "confidence", "at").
		Values(interaction.UserID, interaction.ArticleID, interaction.Category,
			interaction.Confidence, interaction.At.UTC().Format(time.RFC3339)).
		Suffix("ON CONFLICT(user_id, article_id) DO NOTHING").
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert interaction: %w", err)
	}
	return nil
}

// Interactions returns every recorded interaction in chronological order
// so preference state can be replayed at boot.
func (r *SQLiteRepository) Interactions(ctx context.Context) ([]domain.Interaction, error) {
	query, args, err := sq.Select("user_id", "article_id", "category", "confidence", "at").
		From("interactions").
		OrderBy("at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query interactions: %w", err)
	}
	defer rows.Close()

	var interactions []domain.Interaction
	for rows.Next() {
		var (
			in domain.Interaction
			at string
		)
		if err := rows.Scan(&in.UserID, &in.ArticleID, &in.Category, &in.Confidence, &at); err != nil {
			return nil, fmt.Errorf("scan interaction: %w", err)
		}
		if in.At, err = time.Parse(time.RFC3339, at); err != nil {
			in.At = time.Now().UTC()
		}
		interactions = append(interactions, in)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return interactions, nil
}
