package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type pageViewRequest struct {
	ArticleID int64 `json:"article_id" binding:"required,gt=0"`
}

// CreatePageView records that the signed-in viewer read an article.
func (h *Handler) CreatePageView(c *gin.Context) {
	var req pageViewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "article_id is required", "status": http.StatusUnprocessableEntity})
		return
	}

	ctx := c.Request.Context()
	viewer := viewerFrom(c)

	article, err := h.articles.GetArticle(ctx, req.ArticleID)
	if err != nil {
		slog.Error("Database error", "operation", "get_article", "article_id", req.ArticleID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error", "status": http.StatusInternalServerError})
		return
	}
	if article == nil || !article.Published {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found", "status": http.StatusNotFound})
		return
	}

	if err := h.pageViews.RecordPageView(ctx, viewer.UserID, article.ID, time.Now()); err != nil {
		slog.Error("Database error", "operation", "record_page_view", "article_id", article.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error", "status": http.StatusInternalServerError})
		return
	}

	slog.Debug("Page view recorded", "user_id", viewer.UserID, "article_id", article.ID)
	c.Status(http.StatusCreated)
}
