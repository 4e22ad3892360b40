package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/lib/pq"

	"NoticeScanner/internal/board"
	"NoticeScanner/internal/config"
	"NoticeScanner/internal/infrastructure/parser"
	"NoticeScanner/internal/infrastructure/scheduler"
	"NoticeScanner/internal/infrastructure/storage"
	"NoticeScanner/internal/infrastructure/telegram"
	"NoticeScanner/internal/logging"
	"NoticeScanner/internal/ports"
	"NoticeScanner/internal/usecase"
)

const shutdownTimeout = 15 * time.Second

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg       config.Config
	logger    *slog.Logger
	db        *sql.DB
	repo      *storage.PostgresRepository
	scheduler *usecase.Scheduler
}

// New builds a runnable application instance. Failing to reach the store is
// fatal here: the pipeline has no degraded mode without storage.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	db, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	repo := storage.NewPostgresRepository(db)
	if err := repo.Ping(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("database unreachable: %w", err)
	}

	registry := board.NewRegistry()
	registry.Register(parser.NewDeptBoardScanner(nil, logging.ForComponent(baseLogger, "scanner.deptboard")))

	var notifier ports.Notifier
	tg := cfg.Notifications.Telegram
	if tg.BotToken != "" && tg.ChatID != "" {
		notifier = telegram.NewNotifier(tg.BotToken, tg.ChatID)
	}

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Registry:   registry,
		Sources:    toBoardSources(cfg.Sources),
		Repository: repo,
		Notifier:   notifier,
		Workers:    cfg.Pipeline.Workers,
		Logger:     logging.ForComponent(baseLogger, "pipeline"),
	})

	driver := scheduler.NewCronScheduler(cfg.Scheduler.CronExpression)

	return &Application{
		cfg:       cfg,
		logger:    baseLogger,
		db:        db,
		repo:      repo,
		scheduler: usecase.NewScheduler(driver, pipeline),
	}, nil
}

// Run starts the poll schedule and blocks until the context is cancelled,
// then drains in-flight units within the shutdown timeout.
func (a *Application) Run(ctx context.Context) error {
	defer a.db.Close()

	if a.cfg.Database.InitSchema {
		if err := a.repo.EnsureSchema(ctx); err != nil {
			return fmt.Errorf("provision schema: %w", err)
		}
		a.logger.Info("schema provisioned")
	}

	if err := a.scheduler.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	a.logger.Info("polling started",
		"cron", a.cfg.Scheduler.CronExpression,
		"sources", len(a.cfg.Sources))

	<-ctx.Done()

	a.logger.Info("shutting down")
	stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := a.scheduler.Stop(stopCtx); err != nil {
		return fmt.Errorf("stop scheduler: %w", err)
	}
	return nil
}

func toBoardSources(cfg []config.SourceConfig) []board.Source {
	sources := make([]board.Source, 0, len(cfg))
	for _, src := range cfg {
		sources = append(sources, board.Source{
			Name:     src.Name,
			Scanner:  src.Scanner,
			Category: src.Category,
			ListURL:  src.ListURL,
			Options:  src.Options,
		})
	}
	return sources
}
