package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

var _ ArticleRepository = (*ArticleRepo)(nil)

// ArticleRepo handles database operations for articles
type ArticleRepo struct {
	db *DB
}

func NewArticleRepo(db *DB) *ArticleRepo {
	return &ArticleRepo{db: db}
}

const articleColumns = `
	a.id, a.user_id, u.username, u.name, u.profile_image_url,
	a.title, a.slug, a.path, a.description, a.body_html,
	a.published, a.published_at, a.score, a.public_reactions_count, a.comments_count,
	a.reading_time, a.cached_tag_list, a.canonical_url, a.feed_source_url, a.content_hash,
	a.video, a.video_source_url, a.video_thumbnail_url, a.video_duration_in_seconds,
	a.created_at, a.updated_at`

func scanArticle(row interface{ Scan(...any) error }) (*Article, error) {
	var article Article
	var tagList string
	err := row.Scan(
		&article.ID, &article.UserID, &article.Author.Username, &article.Author.Name, &article.Author.ProfileImageURL,
		&article.Title, &article.Slug, &article.Path, &article.Description, &article.BodyHTML,
		&article.Published, &article.PublishedAt, &article.Score, &article.PublicReactionsCount, &article.CommentsCount,
		&article.ReadingTime, &tagList, &article.CanonicalURL, &article.FeedSourceURL, &article.ContentHash,
		&article.Video, &article.VideoSourceURL, &article.VideoThumbnailURL, &article.VideoDurationInSeconds,
		&article.CreatedAt, &article.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	article.Tags = splitTags(tagList)
	if article.PublishedAt != nil {
		utc := article.PublishedAt.UTC()
		article.PublishedAt = &utc
	}
	article.CreatedAt = article.CreatedAt.UTC()
	article.UpdatedAt = article.UpdatedAt.UTC()

	return &article, nil
}

func (r *ArticleRepo) queryArticles(ctx context.Context, query string, args ...any) ([]Article, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var articles []Article
	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan article row: %w", err)
		}
		articles = append(articles, *article)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating article rows: %w", err)
	}

	return articles, nil
}

func (r *ArticleRepo) GetArticle(ctx context.Context, id int64) (*Article, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+articleColumns+`
		FROM articles a
		JOIN users u ON u.id = a.user_id
		WHERE a.id = ?
	`, id)

	article, err := scanArticle(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get article: %w", err)
	}
	return article, nil
}

// GetPublishedArticles returns published articles newest first. Ties on
// published_at are broken by score and then id, both descending.
func (r *ArticleRepo) GetPublishedArticles(ctx context.Context, q ArticleQuery) ([]Article, error) {
	where := []string{"a.published = 1", "a.published_at IS NOT NULL"}
	var args []any

	if !q.Since.IsZero() {
		where = append(where, "a.published_at >= ?")
		args = append(args, q.Since.UTC())
	}
	if !q.Until.IsZero() {
		where = append(where, "a.published_at <= ?")
		args = append(args, q.Until.UTC())
	}
	if q.MinScore != nil {
		where = append(where, "a.score > ?")
		args = append(args, *q.MinScore)
	}
	if q.UserID != 0 {
		where = append(where, "a.user_id = ?")
		args = append(args, q.UserID)
	}

	query := `SELECT ` + articleColumns + `
		FROM articles a
		JOIN users u ON u.id = a.user_id
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY a.published_at DESC, a.score DESC, a.id DESC`

	limit := q.Limit
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}
	query += " LIMIT ? OFFSET ?"
	args = append(args, limit, max(q.Offset, 0))

	articles, err := r.queryArticles(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get published articles: %w", err)
	}
	return articles, nil
}

// GetVideoArticles returns published articles carrying a video, highest
// score first.
func (r *ArticleRepo) GetVideoArticles(ctx context.Context, limit, offset int) ([]Article, error) {
	articles, err := r.queryArticles(ctx, `
		SELECT `+articleColumns+`
		FROM articles a
		JOIN users u ON u.id = a.user_id
		WHERE a.published = 1
		  AND a.video != ''
		ORDER BY a.score DESC, a.published_at DESC, a.id DESC
		LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to get video articles: %w", err)
	}
	return articles, nil
}

func (r *ArticleRepo) GetArticleCount(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM articles").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get article count: %w", err)
	}
	return count, nil
}

// CreateArticle inserts the article and fills in ID, Path and timestamps.
// The path is derived from the owner's username and the slug.
func (r *ArticleRepo) CreateArticle(ctx context.Context, article *Article) error {
	now := time.Now().UTC()

	var publishedAt any
	if article.PublishedAt != nil {
		publishedAt = article.PublishedAt.UTC()
	}

	err := r.db.QueryRowContext(ctx, `
		INSERT INTO articles (
			user_id, title, slug, path, description, body_html,
			published, published_at, score, public_reactions_count, comments_count,
			reading_time, cached_tag_list, canonical_url, feed_source_url, content_hash,
			video, video_source_url, video_thumbnail_url, video_duration_in_seconds,
			created_at, updated_at
		) VALUES (
			?, ?, ?, (SELECT '/' || username || '/' || ? FROM users WHERE id = ?), ?, ?,
			?, ?, ?, ?, ?,
			?, ?, ?, ?, ?,
			?, ?, ?, ?,
			?, ?
		)
		RETURNING id, path
	`, article.UserID, article.Title, article.Slug, article.Slug, article.UserID, article.Description, article.BodyHTML,
		article.Published, publishedAt, article.Score, article.PublicReactionsCount, article.CommentsCount,
		article.ReadingTime, joinTags(article.Tags), article.CanonicalURL, article.FeedSourceURL, article.ContentHash,
		article.Video, article.VideoSourceURL, article.VideoThumbnailURL, article.VideoDurationInSeconds,
		now, now,
	).Scan(&article.ID, &article.Path)
	if err != nil {
		return fmt.Errorf("failed to create article: %w", err)
	}

	article.CreatedAt = now
	article.UpdatedAt = now
	return nil
}

func (r *ArticleRepo) SlugExists(ctx context.Context, userID int64, slug string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM articles WHERE user_id = ? AND slug = ?)`,
		userID, slug).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check slug: %w", err)
	}
	return exists, nil
}

// CheckImported reports whether the user already owns an article imported
// from the same entry link or with the same content hash.
func (r *ArticleRepo) CheckImported(ctx context.Context, userID int64, feedSourceURL, contentHash string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM articles
			WHERE user_id = ?
			  AND ((feed_source_url != '' AND feed_source_url = ?) OR (content_hash != '' AND content_hash = ?))
		)
	`, userID, feedSourceURL, contentHash).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check imported article: %w", err)
	}
	return exists, nil
}

// GetArticlesForExtraction returns imported articles whose body is still empty.
func (r *ArticleRepo) GetArticlesForExtraction(ctx context.Context, userID int64, limit int) ([]ArticleForExtraction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, feed_source_url
		FROM articles
		WHERE user_id = ?
		  AND feed_source_url != ''
		  AND body_html = ''
		ORDER BY created_at DESC
		LIMIT ?
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get articles for extraction: %w", err)
	}
	defer rows.Close()

	var items []ArticleForExtraction
	for rows.Next() {
		var item ArticleForExtraction
		if err := rows.Scan(&item.ID, &item.Link); err != nil {
			return nil, fmt.Errorf("failed to scan extraction row: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating extraction rows: %w", err)
	}

	return items, nil
}

func (r *ArticleRepo) UpdateArticleBody(ctx context.Context, id int64, bodyHTML string, readingTime int) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE articles
		SET body_html = ?, reading_time = ?, updated_at = ?
		WHERE id = ?
	`, bodyHTML, readingTime, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update article body: %w", err)
	}
	return nil
}
