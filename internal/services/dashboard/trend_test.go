package dashboard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/coach-hub/internal/models"
)

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 10, 0, 0, 0, time.UTC)
}

func TestRevenueTrend(t *testing.T) {
	t.Run("months without orders are skipped, not zero-filled", func(t *testing.T) {
		purchases := []*models.Purchase{
			{Amount: 100, PaymentStatus: models.PaymentStatusPaid, PurchasedAt: date(2025, time.January, 5)},
			{Amount: 200, PaymentStatus: models.PaymentStatusPaid, PurchasedAt: date(2025, time.March, 5)},
		}

		points := RevenueTrend(purchases, trendDepth)

		require.Len(t, points, 2)
		assert.Equal(t, models.TrendPoint{Month: "2025-01", Value: 100}, points[0])
		assert.Equal(t, models.TrendPoint{Month: "2025-03", Value: 200}, points[1])
	})

	t.Run("unpaid purchases are excluded from revenue", func(t *testing.T) {
		purchases := []*models.Purchase{
			{Amount: 100, PaymentStatus: models.PaymentStatusPaid, PurchasedAt: date(2025, time.April, 1)},
			{Amount: 500, PaymentStatus: models.PaymentStatusPending, PurchasedAt: date(2025, time.April, 2)},
			{Amount: 700, PaymentStatus: models.PaymentStatusRefunded, PurchasedAt: date(2025, time.April, 3)},
			{Amount: 50, PaymentStatus: models.PaymentStatusPaid, PurchasedAt: date(2025, time.April, 20)},
		}

		points := RevenueTrend(purchases, trendDepth)

		require.Len(t, points, 1)
		assert.Equal(t, int64(150), points[0].Value)
	})

	t.Run("only last depth non-empty buckets survive", func(t *testing.T) {
		var purchases []*models.Purchase
		for m := time.January; m <= time.October; m++ {
			purchases = append(purchases, &models.Purchase{
				Amount:        int(m),
				PaymentStatus: models.PaymentStatusPaid,
				PurchasedAt:   date(2025, m, 1),
			})
		}

		points := RevenueTrend(purchases, trendDepth)

		require.Len(t, points, trendDepth)
		assert.Equal(t, "2025-05", points[0].Month)
		assert.Equal(t, "2025-10", points[len(points)-1].Month)
	})
}

func TestClientTrend(t *testing.T) {
	clients := []*models.User{
		{UID: "a", CreatedAt: date(2025, time.February, 1)},
		{UID: "b", CreatedAt: date(2025, time.February, 15)},
		{UID: "c", CreatedAt: date(2025, time.April, 3)},
	}

	points := ClientTrend(clients, trendDepth)

	require.Len(t, points, 2)
	assert.Equal(t, models.TrendPoint{Month: "2025-02", Value: 2}, points[0])
	assert.Equal(t, models.TrendPoint{Month: "2025-04", Value: 1}, points[1])
}

func TestRevenueChange(t *testing.T) {
	t.Run("previous month zero gives nil, never Inf", func(t *testing.T) {
		assert.Nil(t, RevenueChange(1000, 0))
	})

	t.Run("growth is positive percent", func(t *testing.T) {
		change := RevenueChange(150, 100)
		require.NotNil(t, change)
		assert.InDelta(t, 50.0, *change, 0.001)
	})

	t.Run("drop is negative percent", func(t *testing.T) {
		change := RevenueChange(50, 100)
		require.NotNil(t, change)
		assert.InDelta(t, -50.0, *change, 0.001)
	})

	t.Run("zero current against nonzero previous is minus hundred", func(t *testing.T) {
		change := RevenueChange(0, 100)
		require.NotNil(t, change)
		assert.InDelta(t, -100.0, *change, 0.001)
	})
}

func TestMonthlyRevenue(t *testing.T) {
	purchases := []*models.Purchase{
		{Amount: 100, PaymentStatus: models.PaymentStatusPaid, PurchasedAt: date(2025, time.June, 1)},
		{Amount: 40, PaymentStatus: models.PaymentStatusPaid, PurchasedAt: date(2025, time.June, 28)},
		{Amount: 999, PaymentStatus: models.PaymentStatusPending, PurchasedAt: date(2025, time.June, 2)},
		{Amount: 500, PaymentStatus: models.PaymentStatusPaid, PurchasedAt: date(2025, time.May, 31)},
	}

	assert.Equal(t, int64(140), MonthlyRevenue(purchases, date(2025, time.June, 15)))
	assert.Equal(t, int64(500), MonthlyRevenue(purchases, date(2025, time.May, 1)))
	assert.Zero(t, MonthlyRevenue(purchases, date(2025, time.April, 1)))
}

func TestTopRecentClients(t *testing.T) {
	joined := date(2025, time.March, 1)
	clients := []*models.User{
		{UID: "b", Username: "bob", CreatedAt: joined},
		{UID: "a", Username: "alice", CreatedAt: joined},
		{UID: "c", Username: "carol", CreatedAt: joined.AddDate(0, 0, 5)},
	}

	briefs := TopRecentClients(clients, 2)

	require.Len(t, briefs, 2)
	assert.Equal(t, "c", briefs[0].UID)
	// Равные даты регистрации упорядочиваются по uid.
	assert.Equal(t, "a", briefs[1].UID)
}

func TestTopRecentOrders(t *testing.T) {
	at := date(2025, time.March, 1)
	purchases := []*models.Purchase{
		{ID: 9, UserUID: "u1", PurchasedAt: at},
		{ID: 3, UserUID: "u2", PurchasedAt: at},
		{ID: 5, UserUID: "u3", PurchasedAt: at.AddDate(0, 0, 1)},
	}

	briefs := TopRecentOrders(purchases, 2)

	require.Len(t, briefs, 2)
	assert.Equal(t, 5, briefs[0].PurchaseID)
	// Равные purchased_at упорядочиваются по возрастанию id.
	assert.Equal(t, 3, briefs[1].PurchaseID)
}
