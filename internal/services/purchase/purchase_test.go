package purchase

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

type RepoMock struct {
	mock.Mock
}

func (m *RepoMock) CreatePurchase(ctx context.Context, purchase models.Purchase) (int, error) {
	args := m.Called(ctx, purchase)
	return args.Int(0), args.Error(1)
}

func (m *RepoMock) GetPurchaseByID(ctx context.Context, id int) (*models.Purchase, error) {
	args := m.Called(ctx, id)
	entry, _ := args.Get(0).(*models.Purchase)
	return entry, args.Error(1)
}

func (m *RepoMock) MarkPurchasePaid(ctx context.Context, id int, startsAt, expiresAt time.Time) (int, error) {
	args := m.Called(ctx, id, startsAt, expiresAt)
	return args.Int(0), args.Error(1)
}

type CatalogMock struct {
	mock.Mock
}

func (m *CatalogMock) GetPackageByID(ctx context.Context, id int) (*models.Package, error) {
	args := m.Called(ctx, id)
	pkg, _ := args.Get(0).(*models.Package)
	return pkg, args.Error(1)
}

type InvalidatorMock struct {
	mock.Mock
}

func (m *InvalidatorMock) InvalidateUser(userUID string) {
	m.Called(userUID)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestService_Create(t *testing.T) {
	logger := newNoopLogger()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	pkg := &models.Package{
		ID:           3,
		Slug:         "premium",
		Name:         "Premium",
		Price:        990000,
		Currency:     "RUB",
		DurationDays: 30,
		Features:     []string{"workout", "nutrition"},
		IsActive:     true,
	}

	t.Run("creates pending entry with package snapshot", func(t *testing.T) {
		catalog := new(CatalogMock)
		catalog.On("GetPackageByID", mock.Anything, 3).Return(pkg, nil).Once()
		repo := new(RepoMock)
		repo.On("CreatePurchase", mock.Anything, mock.MatchedBy(func(p models.Purchase) bool {
			return p.Status == models.PurchaseStatusPending &&
				p.PaymentStatus == models.PaymentStatusPending &&
				p.Amount == 990000 &&
				p.Snapshot.Name == "Premium" &&
				p.ExpiresAt.Equal(now.AddDate(0, 0, 30))
		})).Return(11, nil).Once()
		invalidator := new(InvalidatorMock)
		invalidator.On("InvalidateUser", "u1").Once()

		service := NewService(repo, catalog, invalidator, clock.Fixed{Time: now}, logger)
		id, err := service.Create(context.Background(), "u1", 3)

		require.NoError(t, err)
		assert.Equal(t, 11, id)
		repo.AssertExpectations(t)
		invalidator.AssertExpectations(t)
	})

	t.Run("inactive package is not for sale", func(t *testing.T) {
		catalog := new(CatalogMock)
		catalog.On("GetPackageByID", mock.Anything, 3).
			Return(&models.Package{ID: 3, Slug: "legacy", IsActive: false}, nil).Once()
		repo := new(RepoMock)

		service := NewService(repo, catalog, new(InvalidatorMock), clock.Fixed{Time: now}, logger)
		_, err := service.Create(context.Background(), "u1", 3)

		require.Error(t, err)
		repo.AssertNotCalled(t, "CreatePurchase")
	})

	t.Run("unknown package aborts creation", func(t *testing.T) {
		catalog := new(CatalogMock)
		catalog.On("GetPackageByID", mock.Anything, 404).
			Return(nil, models.ErrPackageMissing).Once()

		service := NewService(new(RepoMock), catalog, new(InvalidatorMock), clock.Fixed{Time: now}, logger)
		_, err := service.Create(context.Background(), "u1", 404)

		require.Error(t, err)
		assert.ErrorIs(t, err, models.ErrPackageMissing)
	})
}

func TestService_ConfirmPayment(t *testing.T) {
	logger := newNoopLogger()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("pending purchase is activated from confirmation moment", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("GetPurchaseByID", mock.Anything, 11).Return(&models.Purchase{
			ID:      11,
			UserUID: "u1",
			Status:  models.PurchaseStatusPending,
			Snapshot: models.PackageSnapshot{
				Name:         "Premium",
				DurationDays: 30,
			},
		}, nil).Once()
		repo.On("MarkPurchasePaid", mock.Anything, 11, now, now.AddDate(0, 0, 30)).
			Return(1, nil).Once()
		invalidator := new(InvalidatorMock)
		invalidator.On("InvalidateUser", "u1").Once()

		service := NewService(repo, new(CatalogMock), invalidator, clock.Fixed{Time: now}, logger)
		err := service.ConfirmPayment(context.Background(), 11)

		require.NoError(t, err)
		repo.AssertExpectations(t)
		invalidator.AssertExpectations(t)
	})

	t.Run("repeated webhook for active purchase is a no-op", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("GetPurchaseByID", mock.Anything, 11).Return(&models.Purchase{
			ID:     11,
			Status: models.PurchaseStatusActive,
		}, nil).Once()

		service := NewService(repo, new(CatalogMock), new(InvalidatorMock), clock.Fixed{Time: now}, logger)
		err := service.ConfirmPayment(context.Background(), 11)

		require.NoError(t, err)
		repo.AssertNotCalled(t, "MarkPurchasePaid")
	})

	t.Run("zero affected rows is an error", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("GetPurchaseByID", mock.Anything, 11).Return(&models.Purchase{
			ID:       11,
			Status:   models.PurchaseStatusPending,
			Snapshot: models.PackageSnapshot{DurationDays: 30},
		}, nil).Once()
		repo.On("MarkPurchasePaid", mock.Anything, 11, now, now.AddDate(0, 0, 30)).
			Return(0, nil).Once()

		service := NewService(repo, new(CatalogMock), new(InvalidatorMock), clock.Fixed{Time: now}, logger)
		err := service.ConfirmPayment(context.Background(), 11)

		require.Error(t, err)
	})

	t.Run("storage error is propagated", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("GetPurchaseByID", mock.Anything, 11).
			Return(nil, errors.New("connection refused")).Once()

		service := NewService(repo, new(CatalogMock), new(InvalidatorMock), clock.Fixed{Time: now}, logger)
		err := service.ConfirmPayment(context.Background(), 11)

		require.Error(t, err)
	})
}
