package database

import (
	"context"
	"time"
)

type UserRepository interface {
	GetUser(ctx context.Context, id int64) (*User, error)
	GetUserByUsername(ctx context.Context, username string) (*User, error)
	GetUserByAPISecret(ctx context.Context, secret string) (*User, error)
	GetUserCount(ctx context.Context) (int, error)

	CreateUser(ctx context.Context, user *User) error
	UpsertUser(ctx context.Context, username, name, feedURL string) (*User, error)
}

// ArticleQuery selects published articles. A zero Since means no lower
// bound on published_at; a zero Until means now is not enforced.
type ArticleQuery struct {
	Since    time.Time
	Until    time.Time
	MinScore *int
	UserID   int64
	Limit    int
	Offset   int
}

type ArticleForExtraction struct {
	ID   int64
	Link string
}

type ArticleRepository interface {
	GetArticle(ctx context.Context, id int64) (*Article, error)
	GetPublishedArticles(ctx context.Context, q ArticleQuery) ([]Article, error)
	GetVideoArticles(ctx context.Context, limit, offset int) ([]Article, error)
	GetArticleCount(ctx context.Context) (int, error)

	CreateArticle(ctx context.Context, article *Article) error
	SlugExists(ctx context.Context, userID int64, slug string) (bool, error)
	CheckImported(ctx context.Context, userID int64, feedSourceURL, contentHash string) (bool, error)

	GetArticlesForExtraction(ctx context.Context, userID int64, limit int) ([]ArticleForExtraction, error)
	UpdateArticleBody(ctx context.Context, id int64, bodyHTML string, readingTime int) error
}

type PageViewRepository interface {
	RecordPageView(ctx context.Context, userID, articleID int64, viewedAt time.Time) error
	GetReadArticleIDs(ctx context.Context, userID int64) (map[int64]struct{}, error)
}
