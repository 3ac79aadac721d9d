package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/lysyi3m/storyfeed/app/database"
	"github.com/lysyi3m/storyfeed/app/feed"
)

const (
	defaultVideosPerPage = 24
	maxVideosPerPage     = 1000
)

var ErrUnauthorized = errors.New("unauthorized")

// VideoLister lists video articles for an authenticated viewer.
type VideoLister interface {
	ListVideos(ctx context.Context, viewer feed.Viewer, page, perPage int) ([]VideoItem, error)
}

var _ VideoLister = (*Handler)(nil)

type VideoUser struct {
	Name string `json:"name"`
}

type VideoItem struct {
	TypeOf                 string    `json:"type_of"`
	ID                     int64     `json:"id"`
	Path                   string    `json:"path"`
	CloudinaryVideoURL     string    `json:"cloudinary_video_url"`
	Title                  string    `json:"title"`
	UserID                 int64     `json:"user_id"`
	VideoDurationInMinutes string    `json:"video_duration_in_minutes"`
	VideoSourceURL         string    `json:"video_source_url"`
	User                   VideoUser `json:"user"`
}

func newVideoItem(article *database.Article) VideoItem {
	return VideoItem{
		TypeOf:                 "video_article",
		ID:                     article.ID,
		Path:                   article.Path,
		CloudinaryVideoURL:     article.VideoThumbnailURL,
		Title:                  article.Title,
		UserID:                 article.UserID,
		VideoDurationInMinutes: formatVideoDuration(article.VideoDurationInSeconds),
		VideoSourceURL:         article.VideoSourceURL,
		User:                   VideoUser{Name: article.Author.Name},
	}
}

// formatVideoDuration renders seconds as mm:ss, prefixed with hours when
// the video is an hour or longer.
func formatVideoDuration(seconds float64) string {
	total := int(seconds)
	hours := total / 3600
	minutes := (total % 3600) / 60
	secs := total % 60

	if hours < 1 {
		return fmt.Sprintf("%02d:%02d", minutes, secs)
	}
	return fmt.Sprintf("%d:%02d:%02d", hours, minutes, secs)
}

// ListVideos returns published video articles, highest score first.
func (h *Handler) ListVideos(ctx context.Context, viewer feed.Viewer, page, perPage int) ([]VideoItem, error) {
	if !viewer.Authenticated() {
		return nil, ErrUnauthorized
	}

	page = max(page, 1)
	if perPage <= 0 {
		perPage = defaultVideosPerPage
	}
	perPage = min(perPage, maxVideosPerPage)

	articles, err := h.articles.GetVideoArticles(ctx, perPage, (page-1)*perPage)
	if err != nil {
		return nil, fmt.Errorf("failed to list videos: %w", err)
	}

	items := make([]VideoItem, 0, len(articles))
	for i := range articles {
		items = append(items, newVideoItem(&articles[i]))
	}
	return items, nil
}

func (h *Handler) GetVideos(c *gin.Context) {
	page, _ := strconv.Atoi(c.Query("page"))
	perPage, _ := strconv.Atoi(c.Query("per_page"))

	items, err := h.ListVideos(c.Request.Context(), viewerFrom(c), page, perPage)
	if errors.Is(err, ErrUnauthorized) {
		abortUnauthorized(c)
		return
	}
	if err != nil {
		slog.Error("Database error", "operation", "list_videos", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error", "status": http.StatusInternalServerError})
		return
	}

	setEdgeCacheHeaders(c, videoSurrogateKeys(items))
	c.JSON(http.StatusOK, items)
}

// setEdgeCacheHeaders lets the CDN hold the response while browsers
// always revalidate.
func setEdgeCacheHeaders(c *gin.Context, surrogateKeys []string) {
	c.Header("Cache-Control", "public, no-cache")
	c.Header("Surrogate-Control", "max-age=600, stale-while-revalidate=30, stale-if-error=86400")
	if len(surrogateKeys) > 0 {
		c.Header("Surrogate-Key", strings.Join(surrogateKeys, " "))
	}
}

func videoSurrogateKeys(items []VideoItem) []string {
	keys := make([]string, 0, len(items)+1)
	keys = append(keys, "videos")
	for _, item := range items {
		keys = append(keys, "articles/"+strconv.FormatInt(item.ID, 10))
	}
	return keys
}
