package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/lysyi3m/storyfeed/app/database"
	"github.com/lysyi3m/storyfeed/app/importer"
)

var _ TaskSchedulerInterface = (*Scheduler)(nil)

const (
	taskQueueSize = 300
	taskTimeout   = 5 * time.Minute
)

type Scheduler struct {
	users       database.UserRepository
	articles    database.ArticleRepository
	configCache *importer.ConfigCache
	fetcher     *importer.Fetcher
	parser      *importer.Parser
	importer    ArticleImporter
	extractor   *importer.ContentExtractor
	interval    time.Duration
	workerCount int

	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	taskQueue chan TaskInterface

	mu        sync.Mutex
	nextRunAt map[string]time.Time
}

func NewScheduler(configCache *importer.ConfigCache, users database.UserRepository, articles database.ArticleRepository,
	fetcher *importer.Fetcher, parser *importer.Parser, articleImporter ArticleImporter,
	extractor *importer.ContentExtractor, interval time.Duration, workerCount int) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		users:       users,
		articles:    articles,
		configCache: configCache,
		fetcher:     fetcher,
		parser:      parser,
		importer:    articleImporter,
		extractor:   extractor,
		interval:    interval,
		workerCount: max(workerCount, 1),
		ctx:         ctx,
		cancel:      cancel,
		taskQueue:   make(chan TaskInterface, taskQueueSize),
		nextRunAt:   make(map[string]time.Time),
	}
}

func (s *Scheduler) Start() {
	for i := 0; i < s.workerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.enqueueStartupTasks()

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.enqueueTasks(time.Now())
			}
		}
	}()
}

// Stop cancels running tasks and waits for the workers to exit.
func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
}

func (s *Scheduler) EnqueueTask(task TaskInterface) error {
	select {
	case <-s.ctx.Done():
		return s.ctx.Err()
	default:
	}

	select {
	case s.taskQueue <- task:
		return nil
	default:
		return fmt.Errorf("task queue is full")
	}
}

func (s *Scheduler) enqueueStartupTasks() {
	configs := s.configCache.GetConfigs()
	if len(configs) == 0 {
		slog.Debug("No import sources found")
		return
	}

	slog.Debug("Syncing import sources", "count", len(configs))

	for _, config := range configs {
		if err := s.EnqueueTask(NewSyncSourceTask(config, s.users)); err != nil {
			slog.Warn("Failed to enqueue SyncSourceTask", "source", config.Name, "error", err)
		}
	}

	s.enqueueTasks(time.Now())
}

// enqueueTasks schedules imports for enabled sources that are due and an
// extraction pass for sources that want full content.
func (s *Scheduler) enqueueTasks(now time.Time) {
	configs := s.configCache.GetEnabledConfigs()
	if len(configs) == 0 {
		slog.Debug("No enabled import sources found")
		return
	}

	for _, config := range configs {
		if !s.due(config, now) {
			slog.Debug("Source not due for import yet", "source", config.Name)
		} else {
			task := NewImportSourceTask(config, s.fetcher, s.parser, s.importer, s.users)
			if err := s.EnqueueTask(task); err != nil {
				slog.Warn("Failed to enqueue ImportSourceTask", "source", config.Name, "error", err)
			} else {
				s.book(config, now)
			}
		}

		if config.Settings.ExtractContent {
			task := NewExtractContentTask(config, s.fetcher, s.extractor, s.users, s.articles)
			if err := s.EnqueueTask(task); err != nil {
				slog.Warn("Failed to enqueue ExtractContentTask", "source", config.Name, "error", err)
			}
		}
	}
}

func (s *Scheduler) due(config *importer.Config, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, ok := s.nextRunAt[config.Name]
	return !ok || !next.After(now)
}

// book records the next import of a source once one has been queued.
func (s *Scheduler) book(config *importer.Config, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextRunAt[config.Name] = now.Add(config.Settings.GetRefreshInterval())
}

func (s *Scheduler) worker(id int) {
	defer s.wg.Done()

	for {
		select {
		case task := <-s.taskQueue:
			s.executeTask(id, task)
		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Scheduler) executeTask(workerID int, task TaskInterface) {
	task.Start()

	taskCtx, cancel := context.WithTimeout(s.ctx, taskTimeout)
	defer cancel()

	err := task.Execute(taskCtx)
	if err == nil {
		return
	}

	slog.Error("Worker task execution failed", "worker_id", workerID, "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", err)

	if !task.CanRetry() {
		slog.Error("Task failed after maximum retries", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "last_error", err)
		return
	}

	task.IncrementRetryCount()
	delay := retryDelay(task.GetRetryCount())

	slog.Warn("Task retry scheduled", "type", string(task.GetType()), "source", task.GetSourceName(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "delay", delay.String())

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		timer := time.NewTimer(delay)
		defer timer.Stop()

		select {
		case <-s.ctx.Done():
			slog.Debug("Scheduler stopped, skipping task retry", "type", string(task.GetType()), "id", task.GetID())
		case <-timer.C:
			if err := s.EnqueueTask(task); err != nil {
				slog.Error("Failed to re-enqueue task for retry", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", err)
			}
		}
	}()
}
