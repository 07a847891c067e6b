// Package sender собирает воркер рассылки: подключение к RabbitMQ
// и потребление очереди уведомлений об истекающих покупках.
package sender

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/coach-hub/internal/config"
	"github.com/magabrotheeeer/coach-hub/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/coach-hub/internal/lib/sl"
	libsmtp "github.com/magabrotheeeer/coach-hub/internal/lib/smtp"
	senderservice "github.com/magabrotheeeer/coach-hub/internal/services/sender"
)

// App воркер отправки почтовых уведомлений.
type App struct {
	service *senderservice.Service
	channel *amqp.Channel
	conn    *amqp.Connection
	logger  *slog.Logger
}

// New создает воркер: подключается к RabbitMQ и настраивает SMTP-транспорт.
func New(cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "app.sender.New"

	conn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	channel, err := rabbitmq.SetupChannel(conn, rabbitmq.GetNotificationQueues())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	service := senderservice.NewService(libsmtp.NewTransport(cfg), logger)
	return &App{
		service: service,
		channel: channel,
		conn:    conn,
		logger:  logger,
	}, nil
}

// Run потребляет очередь уведомлений до отмены контекста.
func (a *App) Run(ctx context.Context) error {
	a.logger.Info("sender worker started")

	err := rabbitmq.ConsumerMessage(ctx, a.channel, rabbitmq.ExpiringQueue, a.service.SendExpiringPurchaseNotice)
	if err != nil {
		a.logger.Error("consumer stopped with error", sl.Err(err))
	}

	if closeErr := a.channel.Close(); closeErr != nil {
		a.logger.Error("failed to close channel", sl.Err(closeErr))
	}
	if closeErr := a.conn.Close(); closeErr != nil {
		a.logger.Error("failed to close connection", sl.Err(closeErr))
	}
	return err
}
