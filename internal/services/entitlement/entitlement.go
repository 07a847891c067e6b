// Package entitlement реализует резолюцию активного пакета пользователя.
//
// Среди всех покупок пользователя действующей считается покупка со статусом
// pending или active и датой окончания строго позже now; при нескольких
// кандидатах побеждает та, что истекает позже всех, при равенстве — более
// поздняя по времени покупки. Статус в сортировке не участвует: pending с
// дальним сроком обгоняет active с ближним (правило перенесено из
// наблюдаемого поведения, продуктом явно не подтверждено).
package entitlement

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/coach-hub/internal/lib/clock"
	"github.com/magabrotheeeer/coach-hub/internal/lib/sl"
	"github.com/magabrotheeeer/coach-hub/internal/models"
)

// cacheTTL время жизни закешированной резолюции.
const cacheTTL = 30 * time.Second

// PurchaseRepository описывает чтение журнала покупок.
type PurchaseRepository interface {
	// ListValidByUser возвращает покупки пользователя со статусом pending/active
	// и expires_at > now, отсортированные по expires_at DESC, purchased_at DESC.
	ListValidByUser(ctx context.Context, userUID string, now time.Time) ([]*models.Purchase, error)
}

// PackageCatalog описывает чтение каталога пакетов.
type PackageCatalog interface {
	GetPackageByID(ctx context.Context, id int) (*models.Package, error)
}

// Cache описывает методы для кэширования резолюций.
type Cache interface {
	Get(key string, result any) (bool, error)
	Set(key string, value any, expiration time.Duration) error
	Invalidate(key string) error
}

// Resolver отвечает за выбор текущего активного пакета пользователя.
type Resolver struct {
	purchases PurchaseRepository
	catalog   PackageCatalog
	cache     Cache
	clk       clock.Clock
	log       *slog.Logger
}

// NewResolver создает новый Resolver.
func NewResolver(purchases PurchaseRepository, catalog PackageCatalog, cache Cache, clk clock.Clock, log *slog.Logger) *Resolver {
	return &Resolver{
		purchases: purchases,
		catalog:   catalog,
		cache:     cache,
		clk:       clk,
		log:       log,
	}
}

// Resolve возвращает активный пакет пользователя или nil, если действующих
// покупок нет. Ошибка хранилища пробрасывается наружу; ссылка покупки на
// несуществующий пакет возвращается как models.ErrPackageMissing.
//
// now берётся один раз на весь вызов — строки не сравниваются с плывущими часами.
func (r *Resolver) Resolve(ctx context.Context, userUID string) (*models.Entitlement, error) {
	const op = "entitlement.Resolve"

	cacheKey := "entitlement:" + userUID
	if r.cache != nil {
		var cached models.Entitlement
		found, err := r.cache.Get(cacheKey, &cached)
		if err != nil {
			r.log.Warn("entitlement cache read failed", sl.Err(err))
		}
		if found {
			return &cached, nil
		}
	}

	now := r.clk.Now()
	purchases, err := r.purchases.ListValidByUser(ctx, userUID, now)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	winner := PickActive(purchases, now)
	if winner == nil {
		return nil, nil
	}

	snapshot := winner.Snapshot
	if snapshot.Name == "" {
		// Легаси-строки без снапшота: добираем пакет из каталога.
		pkg, err := r.catalog.GetPackageByID(ctx, winner.PackageID)
		if err != nil {
			r.log.Error("purchase references missing package",
				slog.Int("purchase_id", winner.ID),
				slog.Int("package_id", winner.PackageID),
				sl.Err(err))
			return nil, fmt.Errorf("%s: %w", op, models.ErrPackageMissing)
		}
		snapshot = models.PackageSnapshot{
			Name:         pkg.Name,
			Price:        pkg.Price,
			Currency:     pkg.Currency,
			DurationDays: pkg.DurationDays,
			Features:     pkg.Features,
		}
	}

	ent := &models.Entitlement{
		PurchaseID:    winner.ID,
		Status:        winner.Status,
		StartsAt:      winner.StartsAt,
		ExpiresAt:     winner.ExpiresAt,
		RemainingDays: RemainingDays(winner.ExpiresAt, now),
		Package:       snapshot,
	}

	if r.cache != nil {
		if err := r.cache.Set(cacheKey, ent, cacheTTL); err != nil {
			r.log.Warn("entitlement cache write failed", sl.Err(err))
		}
	}
	return ent, nil
}

// InvalidateUser сбрасывает закешированную резолюцию пользователя.
// Вызывается после записи в журнал покупок (создание, вебхук оплаты).
func (r *Resolver) InvalidateUser(userUID string) {
	if r.cache == nil {
		return
	}
	if err := r.cache.Invalidate("entitlement:" + userUID); err != nil {
		r.log.Warn("entitlement cache invalidation failed", sl.Err(err))
	}
}

// PickActive выбирает действующую покупку из произвольного набора строк.
// Чистая функция: фильтр по статусу и сроку, затем победитель по самому
// дальнему expires_at, при равенстве — по более позднему purchased_at.
func PickActive(purchases []*models.Purchase, now time.Time) *models.Purchase {
	var winner *models.Purchase
	for _, p := range purchases {
		if p.Status != models.PurchaseStatusActive && p.Status != models.PurchaseStatusPending {
			continue
		}
		if !p.ExpiresAt.After(now) {
			continue
		}
		if winner == nil {
			winner = p
			continue
		}
		if p.ExpiresAt.After(winner.ExpiresAt) {
			winner = p
			continue
		}
		if p.ExpiresAt.Equal(winner.ExpiresAt) && p.PurchasedAt.After(winner.PurchasedAt) {
			winner = p
		}
	}
	return winner
}

// RemainingDays возвращает число оставшихся дней: ceil((expiresAt-now)/24h),
// не меньше нуля.
func RemainingDays(expiresAt, now time.Time) int {
	diff := expiresAt.Sub(now)
	if diff <= 0 {
		return 0
	}
	days := int(diff / (24 * time.Hour))
	if diff%(24*time.Hour) != 0 {
		days++
	}
	return days
}
