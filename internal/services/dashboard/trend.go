package dashboard

import (
	"sort"
	"time"

	"github.com/magabrotheeeer/coach-hub/internal/models"
)

// trendDepth сколько помесячных корзин отдаётся в трендах.
const trendDepth = 6

// MonthKey ключ календарной корзины месяца в формате "2006-01".
func MonthKey(t time.Time) string {
	return t.Format("2006-01")
}

// RevenueTrend раскладывает покупки клиентов тренера по календарным месяцам
// purchased_at и суммирует только оплаченные (payment_status=paid); pending и
// refunded в выручку не попадают. Возвращаются последние depth непустых
// корзин в хронологическом порядке. Месяцы без заказов не дозаполняются
// нулями: пропуск корзины — наблюдаемое поведение, zero-fill остаётся
// альтернативой до подтверждения продуктом.
func RevenueTrend(purchases []*models.Purchase, depth int) []models.TrendPoint {
	buckets := make(map[string]int64)
	for _, p := range purchases {
		if p.PaymentStatus != models.PaymentStatusPaid {
			continue
		}
		buckets[MonthKey(p.PurchasedAt)] += int64(p.Amount)
	}
	return lastBuckets(buckets, depth)
}

// ClientTrend раскладывает новых клиентов по календарным месяцам даты
// регистрации; значение корзины — количество, не выручка.
func ClientTrend(clients []*models.User, depth int) []models.TrendPoint {
	buckets := make(map[string]int64)
	for _, c := range clients {
		buckets[MonthKey(c.CreatedAt)]++
	}
	return lastBuckets(buckets, depth)
}

func lastBuckets(buckets map[string]int64, depth int) []models.TrendPoint {
	keys := make([]string, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	// Ключи "2006-01" сортируются лексикографически как хронологически.
	sort.Strings(keys)
	if len(keys) > depth {
		keys = keys[len(keys)-depth:]
	}
	points := make([]models.TrendPoint, 0, len(keys))
	for _, k := range keys {
		points = append(points, models.TrendPoint{Month: k, Value: buckets[k]})
	}
	return points
}

// RevenueChange считает процент изменения выручки месяца к месяцу.
// При нулевой или отсутствующей выручке предыдущего месяца возвращает nil —
// наружу никогда не уходит Inf или NaN.
func RevenueChange(current, previous int64) *float64 {
	if previous == 0 {
		return nil
	}
	change := (float64(current) - float64(previous)) / float64(previous) * 100
	return &change
}

// MonthlyRevenue возвращает оплаченную выручку календарного месяца, в который
// попадает момент at.
func MonthlyRevenue(purchases []*models.Purchase, at time.Time) int64 {
	key := MonthKey(at)
	var total int64
	for _, p := range purchases {
		if p.PaymentStatus != models.PaymentStatusPaid {
			continue
		}
		if MonthKey(p.PurchasedAt) == key {
			total += int64(p.Amount)
		}
	}
	return total
}

// TopRecentClients возвращает не более limit клиентов, отсортированных по
// дате регистрации по убыванию; равные даты упорядочиваются по uid, чтобы
// пагинация была детерминированной между запросами.
func TopRecentClients(clients []*models.User, limit int) []models.ClientBrief {
	sorted := make([]*models.User, len(clients))
	copy(sorted, clients)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].CreatedAt.Equal(sorted[j].CreatedAt) {
			return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
		}
		return sorted[i].UID < sorted[j].UID
	})
	if len(sorted) > limit {
		sorted = sorted[:limit]
	}
	briefs := make([]models.ClientBrief, 0, len(sorted))
	for _, c := range sorted {
		briefs = append(briefs, models.ClientBrief{
			UID:      c.UID,
			Username: c.Username,
			Email:    c.Email,
			JoinedAt: c.CreatedAt,
		})
	}
	return briefs
}

// TopRecentOrders возвращает не более limit покупок по убыванию purchased_at,
// равные даты — по возрастанию id.
func TopRecentOrders(purchases []*models.Purchase, limit int) []models.OrderBrief {
	sorted := make([]*models.Purchase, len(purchases))
	copy(sorted, purchases)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].PurchasedAt.Equal(sorted[j].PurchasedAt) {
			return sorted[i].PurchasedAt.After(sorted[j].PurchasedAt)
		}
		return sorted[i].ID < sorted[j].ID
	})
	if len(sorted) > limit {
		sorted = sorted[:limit]
	}
	briefs := make([]models.OrderBrief, 0, len(sorted))
	for _, p := range sorted {
		briefs = append(briefs, models.OrderBrief{
			PurchaseID:  p.ID,
			ClientUID:   p.UserUID,
			PackageName: p.Snapshot.Name,
			Amount:      p.Amount,
			Currency:    p.Currency,
			PurchasedAt: p.PurchasedAt,
		})
	}
	return briefs
}
