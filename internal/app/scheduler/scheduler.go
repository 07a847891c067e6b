// Package scheduler собирает воркер планировщика: подключение к RabbitMQ,
// ожидание готовности базы и запуск периодического сметания истекающих покупок.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/coach-hub/internal/config"
	"github.com/magabrotheeeer/coach-hub/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/coach-hub/internal/lib/sl"
	schedulerservice "github.com/magabrotheeeer/coach-hub/internal/services/scheduler"
	"github.com/magabrotheeeer/coach-hub/internal/storage"
	"github.com/magabrotheeeer/coach-hub/internal/storage/repository"
)

// App воркер планировщика уведомлений об истечении.
type App struct {
	service *schedulerservice.Service
	channel *amqp.Channel
	conn    *amqp.Connection
	db      *storage.Storage
	logger  *slog.Logger
}

// New создает воркер: подключается к RabbitMQ и базе, настраивает очереди.
func New(cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "app.scheduler.New"

	conn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	channel, err := rabbitmq.SetupChannel(conn, rabbitmq.GetNotificationQueues())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	db, err := storage.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = waitForDB(db, logger); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	service := schedulerservice.NewService(repository.New(db), logger)
	return &App{
		service: service,
		channel: channel,
		conn:    conn,
		db:      db,
		logger:  logger,
	}, nil
}

// Run запускает цикл сметания и блокируется до отмены контекста.
func (a *App) Run(ctx context.Context) error {
	a.logger.Info("scheduler worker started")
	a.service.Run(ctx, a.channel)

	if err := a.channel.Close(); err != nil {
		a.logger.Error("failed to close channel", sl.Err(err))
	}
	if err := a.conn.Close(); err != nil {
		a.logger.Error("failed to close connection", sl.Err(err))
	}
	return a.db.DB.Close()
}

// waitForDB ждет, пока применятся миграции основного приложения.
func waitForDB(db *storage.Storage, logger *slog.Logger) error {
	const attempts = 30

	var err error
	for i := 0; i < attempts; i++ {
		if err = storage.CheckDatabaseReady(db); err == nil {
			return nil
		}
		logger.Info("database is not ready, waiting", slog.Int("attempt", i+1))
		time.Sleep(2 * time.Second)
	}
	return err
}
