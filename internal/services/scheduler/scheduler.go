// Package scheduler содержит воркер, находящий покупки с истекающим сроком
// и публикующий напоминания в очередь уведомлений.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/coach-hub/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/coach-hub/internal/lib/sl"
	"github.com/magabrotheeeer/coach-hub/internal/models"
)

// sweepInterval период между обходами журнала покупок.
const sweepInterval = 12 * time.Hour

// expiryHorizon за сколько дней до окончания пакета уходит напоминание.
const expiryHorizon = 3

// PurchaseRepository описывает выборку истекающих покупок.
type PurchaseRepository interface {
	// FindExpiringWithin возвращает активные оплаченные покупки, истекающие
	// в интервале (now, now+days], вместе с данными владельца.
	FindExpiringWithin(ctx context.Context, now time.Time, days int) ([]*models.ExpiringPurchaseInfo, error)
}

// Service воркер напоминаний об истекающих пакетах.
type Service struct {
	repo PurchaseRepository
	log  *slog.Logger
}

// NewService создает новый Service.
func NewService(repo PurchaseRepository, log *slog.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// Run запускает периодический обход до отмены контекста.
func (s *Service) Run(ctx context.Context, channel *amqp.Channel) {
	s.sweep(ctx, channel)

	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweep(ctx, channel)
		case <-ctx.Done():
			return
		}
	}
}

func (s *Service) sweep(ctx context.Context, channel *amqp.Channel) {
	s.log.Info("starting sweep for expiring purchases")
	infos, err := s.repo.FindExpiringWithin(ctx, time.Now().UTC(), expiryHorizon)
	if err != nil {
		s.log.Error("failed to find expiring purchases", sl.Err(err))
		return
	}
	if len(infos) == 0 {
		s.log.Info("no expiring purchases found")
		return
	}
	s.log.Info("found expiring purchases", "count", len(infos))
	for _, info := range infos {
		if err := rabbitmq.PublishMessage(channel, "notifications", "expiring", info); err != nil {
			s.log.Error("failed to publish reminder", sl.Err(err))
		}
	}
}
