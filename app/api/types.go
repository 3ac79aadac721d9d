package api

import (
	"context"
	"html/template"
	"time"

	"github.com/lysyi3m/storyfeed/app/cache"
	"github.com/lysyi3m/storyfeed/app/database"
	"github.com/lysyi3m/storyfeed/app/feed"
	"github.com/lysyi3m/storyfeed/app/importer"
)

// FeedSelector produces one page of a time-windowed feed.
type FeedSelector interface {
	SelectFeed(ctx context.Context, req feed.Request) (*feed.Page, error)
	Options() feed.Options
}

var _ FeedSelector = (*feed.Service)(nil)

type Handler struct {
	users        database.UserRepository
	articles     database.ArticleRepository
	pageViews    database.PageViewRepository
	feeds        FeedSelector
	configCache  *importer.ConfigCache
	pageCache    cache.PageCache
	pageCacheTTL time.Duration
	generator    *RSSGenerator
	templates    *template.Template
	version      string
}
