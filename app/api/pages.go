package api

import (
	"bytes"
	"embed"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lysyi3m/storyfeed/app/cache"
	"github.com/lysyi3m/storyfeed/app/database"
	"github.com/lysyi3m/storyfeed/app/feed"
)

const htmlContentType = "text/html; charset=utf-8"

//go:embed templates/*.html
var templateFS embed.FS

var templateFuncs = template.FuncMap{
	"shortDate": func(t *time.Time) string {
		if t == nil {
			return ""
		}
		return t.Format("Jan 2, 2006")
	},
	"isoTime": func(t *time.Time) string {
		if t == nil {
			return ""
		}
		return t.Format(time.RFC3339)
	},
}

func loadTemplates() *template.Template {
	return template.Must(template.New("").Funcs(templateFuncs).ParseFS(templateFS, "templates/*.html"))
}

var windowTitles = map[feed.Window]string{
	feed.WindowWeek:     "Top posts this week",
	feed.WindowMonth:    "Top posts this month",
	feed.WindowYear:     "Top posts this year",
	feed.WindowInfinity: "Top posts of all time",
	feed.WindowLatest:   "Latest posts",
}

type navLink struct {
	Label  string
	Href   string
	Active bool
}

// storySlot is one entry of the rendered list: an article or the
// call-to-action.
type storySlot struct {
	Article *database.Article
	CTA     bool
}

type feedPageData struct {
	Title    string
	Viewer   feed.Viewer
	Nav      []navLink
	Slots    []storySlot
	Empty    bool
	PrevPage int
	NextPage int
	featured *database.Article
}

func (d feedPageData) IsFeatured(article *database.Article) bool {
	return d.featured != nil && article.ID == d.featured.ID
}

type notFoundData struct {
	Title   string
	Viewer  feed.Viewer
	Message string
}

func newFeedPageData(page *feed.Page, viewer feed.Viewer) feedPageData {
	data := feedPageData{
		Title:    windowTitles[page.Window],
		Viewer:   viewer,
		Nav:      feedNav(page.Window),
		Empty:    page.Empty(),
		featured: page.Featured,
	}

	if page.Number > 1 {
		data.PrevPage = page.Number - 1
	}
	if page.HasNextPage {
		data.NextPage = page.Number + 1
	}

	if page.Featured == nil {
		return data
	}

	data.Slots = append(data.Slots, storySlot{Article: page.Featured})
	for i := range page.Stories {
		if page.ShowCTA() && i == page.CTAIndex {
			data.Slots = append(data.Slots, storySlot{CTA: true})
		}
		data.Slots = append(data.Slots, storySlot{Article: &page.Stories[i]})
	}
	if page.ShowCTA() && page.CTAIndex == len(page.Stories) {
		data.Slots = append(data.Slots, storySlot{CTA: true})
	}

	return data
}

func feedNav(current feed.Window) []navLink {
	links := []navLink{{Label: "Latest", Href: "/latest", Active: current == feed.WindowLatest}}
	labels := map[feed.Window]string{
		feed.WindowWeek:     "Week",
		feed.WindowMonth:    "Month",
		feed.WindowYear:     "Year",
		feed.WindowInfinity: "Infinity",
	}
	for _, w := range feed.TopWindows() {
		links = append(links, navLink{Label: labels[w], Href: "/top/" + w.String(), Active: current == w})
	}
	return links
}

func (h *Handler) GetTopFeed(c *gin.Context) {
	window, err := feed.ParseWindow(c.Param("window"))
	if err != nil || window == feed.WindowLatest {
		h.notFound(c)
		return
	}
	h.renderFeed(c, window)
}

func (h *Handler) GetLatestFeed(c *gin.Context) {
	h.renderFeed(c, feed.WindowLatest)
}

func (h *Handler) renderFeed(c *gin.Context, window feed.Window) {
	ctx := c.Request.Context()
	viewer := viewerFrom(c)

	pageNumber, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || pageNumber < 1 {
		pageNumber = 1
	}

	cacheable := h.pageCache != nil && h.pageCacheTTL > 0 && !viewer.Authenticated()
	key := cache.PageKey(c.Request.URL.Path + "?page=" + strconv.Itoa(pageNumber))

	if cacheable {
		body, ok, err := h.pageCache.Get(ctx, key)
		if err != nil {
			slog.Warn("Page cache read failed", "key", key, "error", err)
		} else if ok {
			c.Header("X-Cache", "HIT")
			setFeedCacheControl(c, viewer)
			c.Data(http.StatusOK, htmlContentType, []byte(body))
			return
		}
	}

	page, err := h.feeds.SelectFeed(ctx, feed.Request{Window: window, Viewer: viewer, Page: pageNumber})
	if errors.Is(err, feed.ErrUnsupportedWindow) {
		h.notFound(c)
		return
	}
	if err != nil {
		slog.Error("Feed selection failed", "window", window, "page", pageNumber, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := h.templates.ExecuteTemplate(&buf, "feed.html", newFeedPageData(page, viewer)); err != nil {
		slog.Error("Template rendering failed", "template", "feed.html", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	if cacheable {
		if err := h.pageCache.Set(ctx, key, buf.String(), h.pageCacheTTL); err != nil {
			slog.Warn("Page cache write failed", "key", key, "error", err)
		}
		c.Header("X-Cache", "MISS")
	}

	setFeedCacheControl(c, viewer)
	c.Data(http.StatusOK, htmlContentType, buf.Bytes())
}

func setFeedCacheControl(c *gin.Context, viewer feed.Viewer) {
	if viewer.Authenticated() {
		c.Header("Cache-Control", "private, no-store")
		return
	}
	c.Header("Cache-Control", "public, max-age=60")
}

func (h *Handler) notFound(c *gin.Context) {
	c.HTML(http.StatusNotFound, "not_found.html", notFoundData{
		Title:   "Not found",
		Viewer:  viewerFrom(c),
		Message: "The page you were looking for does not exist.",
	})
}
