package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lysyi3m/storyfeed/app/database"
	"github.com/lysyi3m/storyfeed/app/importer"
)

// SyncSourceTask makes sure the user owning a source exists.
type SyncSourceTask struct {
	Task
	Config *importer.Config
	users  database.UserRepository
}

func NewSyncSourceTask(config *importer.Config, users database.UserRepository) *SyncSourceTask {
	return &SyncSourceTask{
		Task:   NewTask(TaskTypeSyncSource, config.Name),
		Config: config,
		users:  users,
	}
}

func (t *SyncSourceTask) Execute(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	user, err := t.users.UpsertUser(ctx, t.Config.Username, t.Config.Author, t.Config.URL)
	if err != nil {
		return fmt.Errorf("failed to sync source owner: %w", err)
	}

	slog.Info("Task completed",
		"type", t.GetType(),
		"source", t.SourceName,
		"user_id", user.ID,
		"duration", t.GetDuration())

	return nil
}
