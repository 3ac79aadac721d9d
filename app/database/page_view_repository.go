package database

import (
	"context"
	"fmt"
	"time"
)

var _ PageViewRepository = (*PageViewRepo)(nil)

// PageViewRepo tracks which articles a user has read
type PageViewRepo struct {
	db *DB
}

func NewPageViewRepo(db *DB) *PageViewRepo {
	return &PageViewRepo{db: db}
}

// RecordPageView is idempotent per user and article; repeated views only
// move viewed_at forward.
func (r *PageViewRepo) RecordPageView(ctx context.Context, userID, articleID int64, viewedAt time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO page_views (user_id, article_id, viewed_at)
		VALUES (?, ?, ?)
		ON CONFLICT (user_id, article_id) DO UPDATE SET
			viewed_at = MAX(page_views.viewed_at, excluded.viewed_at)
	`, userID, articleID, viewedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to record page view: %w", err)
	}
	return nil
}

func (r *PageViewRepo) GetReadArticleIDs(ctx context.Context, userID int64) (map[int64]struct{}, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT article_id FROM page_views WHERE user_id = ?`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get read articles: %w", err)
	}
	defer rows.Close()

	ids := make(map[int64]struct{})
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan page view row: %w", err)
		}
		ids[id] = struct{}{}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating page view rows: %w", err)
	}

	return ids, nil
}
