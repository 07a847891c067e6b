// Package purchase реализует журнал покупок: добавление записи о попытке
// покупки и подтверждение оплаты вебхуком.
//
// Движок резолюции журнал только читает; здесь — единственные две записи,
// которые делает само приложение: pending-строка при оформлении и перевод
// pending -> active при подтверждении оплаты. Остальные переходы статусов
// (expired, cancelled, refunded) принадлежат внешним процессам.
package purchase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/coach-hub/internal/lib/clock"
	"github.com/magabrotheeeer/coach-hub/internal/models"
)

// Repository описывает запись в журнал покупок.
type Repository interface {
	// CreatePurchase вставляет запись и возвращает её ID.
	CreatePurchase(ctx context.Context, purchase models.Purchase) (int, error)
	// GetPurchaseByID возвращает запись по ID.
	GetPurchaseByID(ctx context.Context, id int) (*models.Purchase, error)
	// MarkPurchasePaid переводит запись в active/paid и ставит окно действия.
	MarkPurchasePaid(ctx context.Context, id int, startsAt, expiresAt time.Time) (int, error)
}

// Catalog описывает чтение каталога пакетов.
type Catalog interface {
	GetPackageByID(ctx context.Context, id int) (*models.Package, error)
}

// EntitlementInvalidator сбрасывает закешированную резолюцию пользователя.
type EntitlementInvalidator interface {
	InvalidateUser(userUID string)
}

// Service реализует операции журнала покупок.
type Service struct {
	repo        Repository
	catalog     Catalog
	invalidator EntitlementInvalidator
	clk         clock.Clock
	log         *slog.Logger
}

// NewService создает новый Service.
func NewService(repo Repository, catalog Catalog, invalidator EntitlementInvalidator, clk clock.Clock, log *slog.Logger) *Service {
	return &Service{
		repo:        repo,
		catalog:     catalog,
		invalidator: invalidator,
		clk:         clk,
		log:         log,
	}
}

// Create добавляет pending-запись о покупке пакета со снапшотом цены,
// срока и списка фич на момент оформления. Каталожная запись дальше может
// меняться — резолюция опирается на снапшот.
func (s *Service) Create(ctx context.Context, userUID string, packageID int) (int, error) {
	const op = "purchase.Create"

	pkg, err := s.catalog.GetPackageByID(ctx, packageID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	if !pkg.IsActive {
		return 0, fmt.Errorf("%s: package %q is not for sale", op, pkg.Slug)
	}

	now := s.clk.Now()
	entry := models.Purchase{
		UserUID:       userUID,
		PackageID:     pkg.ID,
		Status:        models.PurchaseStatusPending,
		PaymentStatus: models.PaymentStatusPending,
		Amount:        pkg.Price,
		Currency:      pkg.Currency,
		StartsAt:      now,
		ExpiresAt:     now.AddDate(0, 0, pkg.DurationDays),
		PurchasedAt:   now,
		Snapshot: models.PackageSnapshot{
			Name:         pkg.Name,
			Price:        pkg.Price,
			Currency:     pkg.Currency,
			DurationDays: pkg.DurationDays,
			Features:     pkg.Features,
		},
	}
	id, err := s.repo.CreatePurchase(ctx, entry)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	s.invalidator.InvalidateUser(userUID)
	return id, nil
}

// ConfirmPayment обрабатывает подтверждение оплаты: переводит запись в
// active/paid и перештамповывает окно действия от момента подтверждения.
func (s *Service) ConfirmPayment(ctx context.Context, purchaseID int) error {
	const op = "purchase.ConfirmPayment"

	entry, err := s.repo.GetPurchaseByID(ctx, purchaseID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if entry.Status != models.PurchaseStatusPending {
		s.log.Warn("payment confirmation for non-pending purchase",
			slog.Int("purchase_id", purchaseID),
			slog.String("status", entry.Status))
		return nil // повторный вебхук не должен ломать журнал
	}

	now := s.clk.Now()
	durationDays := entry.Snapshot.DurationDays
	if durationDays == 0 {
		durationDays = int(entry.ExpiresAt.Sub(entry.StartsAt) / (24 * time.Hour))
	}
	affected, err := s.repo.MarkPurchasePaid(ctx, purchaseID, now, now.AddDate(0, 0, durationDays))
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		return fmt.Errorf("%s: purchase %d not updated", op, purchaseID)
	}
	s.invalidator.InvalidateUser(entry.UserUID)
	s.log.Info("purchase activated",
		slog.Int("purchase_id", purchaseID),
		slog.String("user_uid", entry.UserUID))
	return nil
}
