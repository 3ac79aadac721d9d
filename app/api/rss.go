package api

import (
	"bytes"
	"cmp"
	"encoding/xml"
	"fmt"
	"html"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lysyi3m/storyfeed/app/database"
)

const rssItemLimit = 50

// Channel describes the RSS channel wrapping a list of articles.
type Channel struct {
	Title       string
	Path        string
	Description string
}

type RSSGenerator struct {
	baseURL string
	version string
}

func NewRSSGenerator(baseURL, version string) *RSSGenerator {
	return &RSSGenerator{
		baseURL: strings.TrimRight(baseURL, "/"),
		version: version,
	}
}

func (g *RSSGenerator) Run(channel Channel, articles []database.Article) (string, error) {
	var buf bytes.Buffer

	buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	buf.WriteString("\n")
	buf.WriteString(`<rss version="2.0" xmlns:content="http://purl.org/rss/1.0/modules/content/" xmlns:atom="http://www.w3.org/2005/Atom">`)
	buf.WriteString("\n  <channel>\n")

	g.writeElement(&buf, "title", channel.Title, 4)
	g.writeElement(&buf, "link", g.baseURL+"/", 4)
	g.writeElement(&buf, "description", cmp.Or(channel.Description, channel.Title), 4)
	fmt.Fprintf(&buf, "    <atom:link href=\"%s\" rel=\"self\" type=\"application/rss+xml\" />\n",
		html.EscapeString(g.baseURL+channel.Path))

	lastBuildDate := time.Now()
	if len(articles) > 0 {
		lastBuildDate = cmp.Or(articles[0].PublishedTime(), articles[0].CreatedAt, lastBuildDate)
	}
	g.writeElement(&buf, "lastBuildDate", lastBuildDate.Format(time.RFC1123Z), 4)
	g.writeElement(&buf, "generator", "Storyfeed/"+g.version, 4)
	g.writeElement(&buf, "language", "en", 4)

	for i := range articles {
		g.writeItem(&buf, &articles[i])
	}

	buf.WriteString("  </channel>\n</rss>")

	return buf.String(), nil
}

func (g *RSSGenerator) writeItem(buf *bytes.Buffer, article *database.Article) {
	link := g.baseURL + article.Path

	buf.WriteString("    <item>\n")

	buf.WriteString("      <guid isPermaLink=\"true\">")
	xml.EscapeText(buf, []byte(link))
	buf.WriteString("</guid>\n")

	g.writeElement(buf, "title", article.Title, 6)
	g.writeElement(buf, "link", link, 6)
	g.writeElement(buf, "description", cmp.Or(article.Description, "No description available"), 6)

	if article.BodyHTML != "" {
		buf.WriteString("      <content:encoded><![CDATA[")
		buf.WriteString(strings.ReplaceAll(article.BodyHTML, "]]>", "]]]]><![CDATA[>"))
		buf.WriteString("]]></content:encoded>\n")
	}

	if article.PublishedAt != nil {
		g.writeElement(buf, "pubDate", article.PublishedAt.Format(time.RFC1123Z), 6)
	}

	g.writeElement(buf, "author", cmp.Or(article.Author.Name, article.Author.Username), 6)

	for _, tag := range article.Tags {
		g.writeElement(buf, "category", tag, 6)
	}

	buf.WriteString("    </item>\n")
}

func (g *RSSGenerator) writeElement(buf *bytes.Buffer, tag, content string, indent int) {
	if content == "" {
		return
	}

	buf.WriteString(strings.Repeat(" ", indent))
	buf.WriteString("<")
	buf.WriteString(tag)
	buf.WriteString(">")
	xml.EscapeText(buf, []byte(content))
	buf.WriteString("</")
	buf.WriteString(tag)
	buf.WriteString(">\n")
}

// GetFeed serves the latest qualifying articles as RSS, optionally limited
// to one author.
func (h *Handler) GetFeed(c *gin.Context) {
	ctx := c.Request.Context()
	channel := Channel{
		Title:       "Storyfeed",
		Path:        "/feed",
		Description: "Latest stories on Storyfeed",
	}
	minScore := h.feeds.Options().MinScore
	query := database.ArticleQuery{Until: time.Now(), MinScore: &minScore, Limit: rssItemLimit}

	if username := c.Param("username"); username != "" {
		user, err := h.users.GetUserByUsername(ctx, username)
		if err != nil {
			slog.Error("Database error", "operation", "get_user_by_username", "username", username, "error", err)
			c.Status(http.StatusInternalServerError)
			return
		}
		if user == nil {
			c.Status(http.StatusNotFound)
			return
		}

		query.UserID = user.ID
		channel = Channel{
			Title:       fmt.Sprintf("Storyfeed: %s", cmp.Or(user.Name, user.Username)),
			Path:        "/feed/" + user.Username,
			Description: fmt.Sprintf("Stories by %s", cmp.Or(user.Name, user.Username)),
		}
	}

	articles, err := h.articles.GetPublishedArticles(ctx, query)
	if err != nil {
		slog.Error("Database error", "operation", "get_published_articles", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	rss, err := h.generator.Run(channel, articles)
	if err != nil {
		slog.Error("RSS generation error", "path", channel.Path, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	c.Header("X-Feed-Items", fmt.Sprint(len(articles)))
	c.Data(http.StatusOK, "application/rss+xml; charset=utf-8", []byte(rss))
}
