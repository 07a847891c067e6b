package entitlement

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/coach-hub/internal/lib/clock"
	"github.com/magabrotheeeer/coach-hub/internal/models"
)

type PurchaseRepoMock struct {
	mock.Mock
}

func (m *PurchaseRepoMock) ListValidByUser(ctx context.Context, userUID string, now time.Time) ([]*models.Purchase, error) {
	args := m.Called(ctx, userUID, now)
	purchases, _ := args.Get(0).([]*models.Purchase)
	return purchases, args.Error(1)
}

type CatalogMock struct {
	mock.Mock
}

func (m *CatalogMock) GetPackageByID(ctx context.Context, id int) (*models.Package, error) {
	args := m.Called(ctx, id)
	pkg, _ := args.Get(0).(*models.Package)
	return pkg, args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestPickActive(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		purchases []*models.Purchase
		wantID    int // 0 — победителя нет
	}{
		{
			name:      "no purchases",
			purchases: nil,
			wantID:    0,
		},
		{
			name: "single valid purchase",
			purchases: []*models.Purchase{
				{ID: 1, Status: models.PurchaseStatusActive, ExpiresAt: now.AddDate(0, 0, 10)},
			},
			wantID: 1,
		},
		{
			name: "furthest expiry wins",
			purchases: []*models.Purchase{
				{ID: 1, Status: models.PurchaseStatusActive, ExpiresAt: now.AddDate(0, 0, 10)},
				{ID: 2, Status: models.PurchaseStatusActive, ExpiresAt: now.AddDate(0, 0, 30)},
			},
			wantID: 2,
		},
		{
			name: "pending with later expiry beats active with sooner",
			purchases: []*models.Purchase{
				{ID: 1, Status: models.PurchaseStatusActive, ExpiresAt: now.AddDate(0, 0, 2)},
				{ID: 2, Status: models.PurchaseStatusPending, ExpiresAt: now.AddDate(0, 0, 5)},
			},
			wantID: 2,
		},
		{
			name: "equal expiry resolved by latest purchased_at",
			purchases: []*models.Purchase{
				{ID: 1, Status: models.PurchaseStatusActive, ExpiresAt: now.AddDate(0, 0, 7), PurchasedAt: now.AddDate(0, 0, -10)},
				{ID: 2, Status: models.PurchaseStatusActive, ExpiresAt: now.AddDate(0, 0, 7), PurchasedAt: now.AddDate(0, 0, -3)},
			},
			wantID: 2,
		},
		{
			name: "expired and cancelled rows are ignored",
			purchases: []*models.Purchase{
				{ID: 1, Status: models.PurchaseStatusExpired, ExpiresAt: now.AddDate(0, 0, 30)},
				{ID: 2, Status: models.PurchaseStatusCancelled, ExpiresAt: now.AddDate(0, 0, 30)},
				{ID: 3, Status: models.PurchaseStatusRefunded, ExpiresAt: now.AddDate(0, 0, 30)},
				{ID: 4, Status: models.PurchaseStatusActive, ExpiresAt: now.AddDate(0, 0, -1)},
			},
			wantID: 0,
		},
		{
			name: "expiry exactly at now does not count",
			purchases: []*models.Purchase{
				{ID: 1, Status: models.PurchaseStatusActive, ExpiresAt: now},
			},
			wantID: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			winner := PickActive(tt.purchases, now)
			if tt.wantID == 0 {
				assert.Nil(t, winner)
				return
			}
			require.NotNil(t, winner)
			assert.Equal(t, tt.wantID, winner.ID)
		})
	}
}

func TestRemainingDays(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		expiresAt time.Time
		want      int
	}{
		{name: "already expired", expiresAt: now.AddDate(0, 0, -1), want: 0},
		{name: "expires right now", expiresAt: now, want: 0},
		{name: "partial day rounds up", expiresAt: now.Add(time.Hour), want: 1},
		{name: "exactly ten days", expiresAt: now.AddDate(0, 0, 10), want: 10},
		{name: "ten days and an hour rounds up", expiresAt: now.AddDate(0, 0, 10).Add(time.Hour), want: 11},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RemainingDays(tt.expiresAt, now))
		})
	}
}

func TestResolver_Resolve(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	logger := newNoopLogger()

	t.Run("no valid purchases resolves to nil without error", func(t *testing.T) {
		repo := new(PurchaseRepoMock)
		repo.On("ListValidByUser", mock.Anything, "u1", now).Return(nil, nil).Once()

		resolver := NewResolver(repo, new(CatalogMock), nil, clock.Fixed{Time: now}, logger)
		ent, err := resolver.Resolve(context.Background(), "u1")

		require.NoError(t, err)
		assert.Nil(t, ent)
		repo.AssertExpectations(t)
	})

	t.Run("winner with snapshot is returned as entitlement", func(t *testing.T) {
		repo := new(PurchaseRepoMock)
		repo.On("ListValidByUser", mock.Anything, "u1", now).Return([]*models.Purchase{
			{
				ID:        7,
				Status:    models.PurchaseStatusActive,
				StartsAt:  now.AddDate(0, 0, -5),
				ExpiresAt: now.AddDate(0, 0, 25),
				Snapshot:  models.PackageSnapshot{Name: "Premium", Price: 990000, Currency: "RUB", DurationDays: 30},
			},
		}, nil).Once()

		resolver := NewResolver(repo, new(CatalogMock), nil, clock.Fixed{Time: now}, logger)
		ent, err := resolver.Resolve(context.Background(), "u1")

		require.NoError(t, err)
		require.NotNil(t, ent)
		assert.Equal(t, 7, ent.PurchaseID)
		assert.Equal(t, 25, ent.RemainingDays)
		assert.Equal(t, "Premium", ent.Package.Name)
		repo.AssertExpectations(t)
	})

	t.Run("legacy row without snapshot falls back to catalog", func(t *testing.T) {
		repo := new(PurchaseRepoMock)
		repo.On("ListValidByUser", mock.Anything, "u1", now).Return([]*models.Purchase{
			{ID: 3, PackageID: 12, Status: models.PurchaseStatusActive, ExpiresAt: now.AddDate(0, 0, 10)},
		}, nil).Once()
		catalog := new(CatalogMock)
		catalog.On("GetPackageByID", mock.Anything, 12).Return(&models.Package{
			ID: 12, Name: "Basic", Price: 490000, Currency: "RUB", DurationDays: 30,
		}, nil).Once()

		resolver := NewResolver(repo, catalog, nil, clock.Fixed{Time: now}, logger)
		ent, err := resolver.Resolve(context.Background(), "u1")

		require.NoError(t, err)
		require.NotNil(t, ent)
		assert.Equal(t, "Basic", ent.Package.Name)
		catalog.AssertExpectations(t)
	})

	t.Run("missing package surfaces as ErrPackageMissing", func(t *testing.T) {
		repo := new(PurchaseRepoMock)
		repo.On("ListValidByUser", mock.Anything, "u1", now).Return([]*models.Purchase{
			{ID: 3, PackageID: 404, Status: models.PurchaseStatusActive, ExpiresAt: now.AddDate(0, 0, 10)},
		}, nil).Once()
		catalog := new(CatalogMock)
		catalog.On("GetPackageByID", mock.Anything, 404).Return(nil, models.ErrPackageMissing).Once()

		resolver := NewResolver(repo, catalog, nil, clock.Fixed{Time: now}, logger)
		ent, err := resolver.Resolve(context.Background(), "u1")

		require.Error(t, err)
		assert.ErrorIs(t, err, models.ErrPackageMissing)
		assert.Nil(t, ent)
	})

	t.Run("storage error is propagated", func(t *testing.T) {
		repo := new(PurchaseRepoMock)
		repo.On("ListValidByUser", mock.Anything, "u1", now).Return(nil, errors.New("connection refused")).Once()

		resolver := NewResolver(repo, new(CatalogMock), nil, clock.Fixed{Time: now}, logger)
		ent, err := resolver.Resolve(context.Background(), "u1")

		require.Error(t, err)
		assert.Nil(t, ent)
	})
}
