package tasks

import (
	"context"

	"github.com/lysyi3m/storyfeed/app/database"
	"github.com/lysyi3m/storyfeed/app/importer"
)

// TaskSchedulerInterface is what the application needs from the background
// scheduler.
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
}

// ArticleImporter stores parsed source items as articles.
type ArticleImporter interface {
	Import(ctx context.Context, config *importer.Config, user *database.User, items []importer.Item) (importer.Result, error)
}

var _ ArticleImporter = (*importer.Importer)(nil)
