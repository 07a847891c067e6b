// Package dashboard собирает агрегированный снимок дашборда тренера.
//
// Сборка лучшая-из-возможных: отказ второстепенной подвыборки (счётчики
// программ, тикеты, сессии) не валит остальные секции — секция получает
// нулевое значение, а причина попадает в Diagnostics. Наружу пробрасываются
// только ошибки базовых батч-чтений (клиенты и их покупки): без них считать
// нечего.
package dashboard

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/coach-hub/internal/lib/clock"
	"github.com/magabrotheeeer/coach-hub/internal/lib/sl"
	"github.com/magabrotheeeer/coach-hub/internal/metrics"
	"github.com/magabrotheeeer/coach-hub/internal/models"
)

// topN размер списков "последние клиенты/заказы/ближайшие сессии".
const topN = 5

// cacheTTL время жизни закешированного снимка.
const cacheTTL = time.Minute

// Repository описывает батч-чтения данных тренера. Каждый вызов — один
// запрос к базе; построчных дозапросов движок не делает.
type Repository interface {
	ListClientsByTrainer(ctx context.Context, trainerUID string) ([]*models.User, error)
	ListPurchasesByClients(ctx context.Context, clientUIDs []string) ([]*models.Purchase, error)
	CountActiveProgramsByTrainer(ctx context.Context, trainerUID string) (map[string]int, error)
	CountTicketsByTrainer(ctx context.Context, trainerUID string) (open int, urgent int, err error)
	ListUpcomingSessions(ctx context.Context, trainerUID string, after time.Time, limit int) ([]*models.Session, error)
}

// Cache описывает методы для кэширования снимков.
type Cache interface {
	Get(key string, result any) (bool, error)
	Set(key string, value any, expiration time.Duration) error
	Invalidate(key string) error
}

// Service собирает снимок дашборда тренера.
type Service struct {
	repo  Repository
	cache Cache
	clk   clock.Clock
	log   *slog.Logger
}

// NewService создает новый Service.
func NewService(repo Repository, cache Cache, clk clock.Clock, log *slog.Logger) *Service {
	return &Service{repo: repo, cache: cache, clk: clk, log: log}
}

// BuildSnapshot собирает снимок дашборда для тренера.
func (s *Service) BuildSnapshot(ctx context.Context, trainerUID string) (*models.DashboardSnapshot, error) {
	const op = "dashboard.BuildSnapshot"

	cacheKey := "dashboard:" + trainerUID
	if s.cache != nil {
		var cached models.DashboardSnapshot
		found, err := s.cache.Get(cacheKey, &cached)
		if err != nil {
			s.log.Warn("dashboard cache read failed", sl.Err(err))
		}
		if found {
			return &cached, nil
		}
	}

	now := s.clk.Now()

	clients, err := s.repo.ListClientsByTrainer(ctx, trainerUID)
	if err != nil {
		metrics.DashboardBuilds.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	clientUIDs := make([]string, 0, len(clients))
	activeClients := 0
	for _, c := range clients {
		clientUIDs = append(clientUIDs, c.UID)
		if c.IsActive {
			activeClients++
		}
	}

	var purchases []*models.Purchase
	if len(clientUIDs) > 0 {
		purchases, err = s.repo.ListPurchasesByClients(ctx, clientUIDs)
		if err != nil {
			metrics.DashboardBuilds.WithLabelValues("error").Inc()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	snapshot := &models.DashboardSnapshot{
		RevenueTrend:     RevenueTrend(purchases, trendDepth),
		ClientTrend:      ClientTrend(clients, trendDepth),
		RecentClients:    TopRecentClients(clients, topN),
		RecentOrders:     TopRecentOrders(purchases, topN),
		UpcomingSessions: []models.SessionBrief{},
	}

	currentRevenue := MonthlyRevenue(purchases, now)
	previousRevenue := MonthlyRevenue(purchases, now.AddDate(0, -1, 0))
	snapshot.Metrics = models.DashboardMetrics{
		TotalClients:         len(clients),
		ActiveClients:        activeClients,
		MonthlyRevenue:       currentRevenue,
		RevenueChangePercent: RevenueChange(currentRevenue, previousRevenue),
	}

	s.fillWorkload(ctx, trainerUID, snapshot)
	s.fillUpcomingSessions(ctx, trainerUID, now, snapshot)

	if s.cache != nil {
		if err := s.cache.Set(cacheKey, snapshot, cacheTTL); err != nil {
			s.log.Warn("dashboard cache write failed", sl.Err(err))
		}
	}
	metrics.DashboardBuilds.WithLabelValues("ok").Inc()
	return snapshot, nil
}

// InvalidateTrainer сбрасывает закешированный снимок тренера.
func (s *Service) InvalidateTrainer(trainerUID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate("dashboard:" + trainerUID); err != nil {
		s.log.Warn("dashboard cache invalidation failed", sl.Err(err))
	}
}

func (s *Service) fillWorkload(ctx context.Context, trainerUID string, snapshot *models.DashboardSnapshot) {
	counts, err := s.repo.CountActiveProgramsByTrainer(ctx, trainerUID)
	if err != nil {
		s.log.Error("program counts failed", sl.Err(err))
		snapshot.Diagnostics = append(snapshot.Diagnostics, "workload: program counts unavailable")
	} else {
		snapshot.Workload.ActiveWorkoutPrograms = counts[models.ProgramKindWorkout]
		snapshot.Workload.ActiveNutritionPrograms = counts[models.ProgramKindNutrition]
		snapshot.Workload.ActiveSupplementPrograms = counts[models.ProgramKindSupplement]
	}

	open, urgent, err := s.repo.CountTicketsByTrainer(ctx, trainerUID)
	if err != nil {
		s.log.Error("ticket counts failed", sl.Err(err))
		snapshot.Diagnostics = append(snapshot.Diagnostics, "workload: ticket counts unavailable")
		return
	}
	snapshot.Workload.OpenTickets = open
	snapshot.Workload.UrgentTickets = urgent
}

func (s *Service) fillUpcomingSessions(ctx context.Context, trainerUID string, now time.Time, snapshot *models.DashboardSnapshot) {
	sessions, err := s.repo.ListUpcomingSessions(ctx, trainerUID, now, topN)
	if err != nil {
		s.log.Error("upcoming sessions failed", sl.Err(err))
		snapshot.Diagnostics = append(snapshot.Diagnostics, "upcoming_sessions: unavailable")
		return
	}
	briefs := make([]models.SessionBrief, 0, len(sessions))
	for _, sess := range sessions {
		briefs = append(briefs, models.SessionBrief{
			SessionID:   sess.ID,
			ClientUID:   sess.ClientUID,
			Title:       sess.Title,
			ScheduledAt: sess.ScheduledAt,
		})
	}
	snapshot.UpcomingSessions = briefs
}
