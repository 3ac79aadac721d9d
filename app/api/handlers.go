package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lysyi3m/storyfeed/app/cache"
	"github.com/lysyi3m/storyfeed/app/cfg"
	"github.com/lysyi3m/storyfeed/app/database"
	"github.com/lysyi3m/storyfeed/app/importer"
)

// NewHandler wires the HTTP handlers. pageCache may be nil, which disables
// page caching.
func NewHandler(c *cfg.Cfg, users database.UserRepository, articles database.ArticleRepository,
	pageViews database.PageViewRepository, feeds FeedSelector, configCache *importer.ConfigCache,
	pageCache cache.PageCache) *Handler {
	return &Handler{
		users:        users,
		articles:     articles,
		pageViews:    pageViews,
		feeds:        feeds,
		configCache:  configCache,
		pageCache:    pageCache,
		pageCacheTTL: c.GetPageCacheTTL(),
		generator:    NewRSSGenerator(publicBaseURL(c), c.Version),
		templates:    loadTemplates(),
		version:      c.Version,
	}
}

func (h *Handler) GetHealth(c *gin.Context) {
	ctx := c.Request.Context()
	health := map[string]any{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
		"version":   h.version,
	}

	if count, err := h.articles.GetArticleCount(ctx); err == nil {
		health["articles"] = count
	}
	if count, err := h.users.GetUserCount(ctx); err == nil {
		health["users"] = count
	}
	if h.configCache != nil {
		health["loaded_sources"] = h.configCache.GetConfigCount()
	}
	if h.pageCache != nil {
		health["page_cache"] = h.pageCache.Ping(ctx) == nil
	}

	c.JSON(http.StatusOK, health)
}

func publicBaseURL(c *cfg.Cfg) string {
	if c.BaseUrl != "" {
		return c.BaseUrl
	}
	return "http://localhost:" + c.Port
}
