package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lysyi3m/storyfeed/app/database"
	"github.com/lysyi3m/storyfeed/app/importer"
)

// ImportSourceTask fetches a source and turns its new entries into
// articles.
type ImportSourceTask struct {
	Task
	Config   *importer.Config
	fetcher  *importer.Fetcher
	parser   *importer.Parser
	importer ArticleImporter
	users    database.UserRepository
}

func NewImportSourceTask(config *importer.Config, fetcher *importer.Fetcher, parser *importer.Parser,
	articleImporter ArticleImporter, users database.UserRepository) *ImportSourceTask {
	return &ImportSourceTask{
		Task:     NewTask(TaskTypeImportSource, config.Name),
		Config:   config,
		fetcher:  fetcher,
		parser:   parser,
		importer: articleImporter,
		users:    users,
	}
}

func (t *ImportSourceTask) Execute(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if !t.Config.Settings.Enabled {
		slog.Debug("Source disabled, skipping", "source", t.SourceName)
		return nil
	}

	user, err := t.users.UpsertUser(ctx, t.Config.Username, t.Config.Author, t.Config.URL)
	if err != nil {
		return fmt.Errorf("failed to resolve source owner: %w", err)
	}

	data, err := t.fetcher.Fetch(ctx, t.Config.URL, t.Config.Settings.GetTimeout(), false)
	if err != nil {
		return fmt.Errorf("failed to fetch source: %w", err)
	}

	metadata, items, err := t.parser.Run(data)
	if err != nil {
		return fmt.Errorf("failed to parse source: %w", err)
	}

	result, err := t.importer.Import(ctx, t.Config, user, items)
	if err != nil {
		return fmt.Errorf("failed to import articles: %w", err)
	}

	slog.Info("Task completed",
		"type", t.GetType(),
		"source", t.SourceName,
		"title", metadata.Title,
		"duration", t.GetDuration(),
		"total", result.Total,
		"duplicates", result.Duplicates,
		"filtered", result.Filtered,
		"new", result.Created)

	return nil
}
