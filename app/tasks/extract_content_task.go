package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lysyi3m/storyfeed/app/database"
	"github.com/lysyi3m/storyfeed/app/importer"
)

// ExtractContentTask fills in article bodies for imported articles whose
// entries carried no content.
type ExtractContentTask struct {
	Task
	Config    *importer.Config
	fetcher   *importer.Fetcher
	extractor *importer.ContentExtractor
	users     database.UserRepository
	articles  database.ArticleRepository
}

func NewExtractContentTask(config *importer.Config, fetcher *importer.Fetcher, extractor *importer.ContentExtractor,
	users database.UserRepository, articles database.ArticleRepository) *ExtractContentTask {
	return &ExtractContentTask{
		Task:      NewTask(TaskTypeExtractContent, config.Name),
		Config:    config,
		fetcher:   fetcher,
		extractor: extractor,
		users:     users,
		articles:  articles,
	}
}

func (t *ExtractContentTask) Execute(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if !t.Config.Settings.ExtractContent {
		slog.Debug("Content extraction disabled for source", "source", t.SourceName)
		return nil
	}

	user, err := t.users.GetUserByUsername(ctx, t.Config.Username)
	if err != nil {
		return fmt.Errorf("failed to get source owner: %w", err)
	}
	if user == nil {
		slog.Debug("Source owner not synced yet", "source", t.SourceName)
		return nil
	}

	pending, err := t.articles.GetArticlesForExtraction(ctx, user.ID, t.Config.Settings.MaxItems)
	if err != nil {
		return fmt.Errorf("failed to get articles for content extraction: %w", err)
	}
	if len(pending) == 0 {
		slog.Debug("No articles need content extraction", "source", t.SourceName)
		return nil
	}

	successCount := 0
	errorCount := 0

	for _, article := range pending {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := t.extract(ctx, article); err != nil {
			slog.Error("Failed to extract content for article", "article_id", article.ID, "url", article.Link, "error", err)
			errorCount++
			continue
		}
		successCount++
	}

	slog.Info("Task completed",
		"type", t.GetType(),
		"source", t.SourceName,
		"duration", t.GetDuration(),
		"success", successCount,
		"errors", errorCount)

	return nil
}

func (t *ExtractContentTask) extract(ctx context.Context, article database.ArticleForExtraction) error {
	if article.Link == "" {
		return fmt.Errorf("article has no source link")
	}

	data, err := t.fetcher.Fetch(ctx, article.Link, t.Config.Settings.GetTimeout(), true)
	if err != nil {
		return fmt.Errorf("failed to fetch article page: %w", err)
	}

	body, err := t.extractor.Run(data, article.Link)
	if err != nil {
		return err
	}

	if err := t.articles.UpdateArticleBody(ctx, article.ID, body, importer.ReadingTime(body)); err != nil {
		return fmt.Errorf("failed to store extracted content: %w", err)
	}

	slog.Debug("Content extracted", "article_id", article.ID, "content_length", len(body))
	return nil
}
