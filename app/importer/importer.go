package importer

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/lysyi3m/storyfeed/app/database"
)

const wordsPerMinute = 275

// Result summarizes one import run.
type Result struct {
	Total      int
	Duplicates int
	Filtered   int
	Created    int
}

// Importer turns parsed source items into articles owned by the source's
// user.
type Importer struct {
	articles database.ArticleRepository
	filterer *Filterer
	now      func() time.Time
}

func NewImporter(articles database.ArticleRepository, filterer *Filterer) *Importer {
	return &Importer{
		articles: articles,
		filterer: filterer,
		now:      time.Now,
	}
}

func (im *Importer) Import(ctx context.Context, config *Config, user *database.User, items []Item) (Result, error) {
	result := Result{Total: len(items)}

	if config.Settings.MaxItems > 0 && len(items) > config.Settings.MaxItems {
		items = items[:config.Settings.MaxItems]
	}

	var fresh []Item
	for _, item := range items {
		if item.Link == "" || item.Title == "" {
			continue
		}

		imported, err := im.articles.CheckImported(ctx, user.ID, item.Link, item.ContentHash)
		if err != nil {
			return result, fmt.Errorf("failed to check for duplicates: %w", err)
		}
		if imported {
			result.Duplicates++
			continue
		}
		fresh = append(fresh, item)
	}

	for _, item := range im.filterer.Run(fresh, config) {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		if item.IsFiltered {
			result.Filtered++
			slog.Debug("Item filtered", "source", config.Name, "link", item.Link, "reason", item.FilterReason)
			continue
		}

		article, err := im.buildArticle(ctx, config, user, item)
		if err != nil {
			return result, err
		}
		if err := im.articles.CreateArticle(ctx, article); err != nil {
			return result, fmt.Errorf("failed to store article: %w", err)
		}
		result.Created++
	}

	return result, nil
}

func (im *Importer) buildArticle(ctx context.Context, config *Config, user *database.User, item Item) (*database.Article, error) {
	slug, err := UniqueSlug(ctx, im.articles, user.ID, item.Title)
	if err != nil {
		return nil, err
	}

	publishedAt := im.now().UTC()
	if item.PublishedAt != nil && !item.PublishedAt.After(publishedAt) {
		publishedAt = item.PublishedAt.UTC()
	}

	body := cmp.Or(item.Content, item.Description)
	if config.Settings.ExtractContent {
		// Filled in later by content extraction.
		body = item.Content
	}

	article := &database.Article{
		UserID:        user.ID,
		Title:         item.Title,
		Slug:          slug,
		Description:   truncate(plainText(item.Description), 300),
		BodyHTML:      body,
		Published:     config.Settings.ShouldPublish(),
		PublishedAt:   &publishedAt,
		ReadingTime:   ReadingTime(body),
		Tags:          item.Categories,
		CanonicalURL:  item.Link,
		FeedSourceURL: item.Link,
		ContentHash:   item.ContentHash,
	}

	if item.IsVideo() {
		article.Video = item.EnclosureURL
		article.VideoSourceURL = item.EnclosureURL
		article.VideoThumbnailURL = item.ImageURL
		article.VideoDurationInSeconds = item.DurationSeconds
	}

	return article, nil
}

// ReadingTime estimates minutes to read an HTML body, at least one.
func ReadingTime(body string) int {
	words := len(strings.Fields(plainText(body)))
	return max(1, (words+wordsPerMinute-1)/wordsPerMinute)
}

// plainText returns the visible text of an HTML fragment with whitespace
// collapsed.
func plainText(fragment string) string {
	if !strings.ContainsRune(fragment, '<') {
		return strings.Join(strings.Fields(fragment), " ")
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return strings.Join(strings.Fields(fragment), " ")
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return strings.TrimSpace(string(runes[:limit-1])) + "…"
}
