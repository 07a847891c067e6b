package access

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

	"github.com/magabrotheeeer/coach-hub/internal/models"
)

type ResolverMock struct {
	mock.Mock
}

func (m *ResolverMock) Resolve(ctx context.Context, userUID string) (*models.Entitlement, error) {
	args := m.Called(ctx, userUID)
	ent, _ := args.Get(0).(*models.Entitlement)
	return ent, args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestGate_Authorize(t *testing.T) {
	logger := newNoopLogger()

	t.Run("active entitlement allows", func(t *testing.T) {
		resolver := new(ResolverMock)
		ent := &models.Entitlement{
			PurchaseID: 5,
			Status:     models.PurchaseStatusActive,
			ExpiresAt:  time.Now().AddDate(0, 0, 14),
		}
		resolver.On("Resolve", mock.Anything, "u1").Return(ent, nil).Once()

		gate := NewGate(resolver, logger)
		decision, err := gate.Authorize(context.Background(), "u1", CapabilityViewWorkout)

		require.NoError(t, err)
		assert.True(t, decision.Allowed)
		assert.Empty(t, decision.RedirectHint)
		assert.Equal(t, ent, decision.Entitlement)
	})

	t.Run("no entitlement denies with redirect hint", func(t *testing.T) {
		resolver := new(ResolverMock)
		resolver.On("Resolve", mock.Anything, "u1").Return(nil, nil).Once()

		gate := NewGate(resolver, logger)
		decision, err := gate.Authorize(context.Background(), "u1", CapabilityViewNutrition)

		require.NoError(t, err)
		assert.False(t, decision.Allowed)
		assert.Equal(t, "/pricing?source=view_nutrition", decision.RedirectHint)
		assert.Nil(t, decision.Entitlement)
	})

	t.Run("data integrity failure fails closed without error", func(t *testing.T) {
		resolver := new(ResolverMock)
		resolver.On("Resolve", mock.Anything, "u1").
			Return(nil, models.ErrPackageMissing).Once()

		gate := NewGate(resolver, logger)
		decision, err := gate.Authorize(context.Background(), "u1", CapabilitySubmitPTForm)

		require.NoError(t, err)
		assert.False(t, decision.Allowed)
		assert.Equal(t, "/pricing?source=submit_pt_form", decision.RedirectHint)
	})

	t.Run("storage error is propagated", func(t *testing.T) {
		resolver := new(ResolverMock)
		resolver.On("Resolve", mock.Anything, "u1").
			Return(nil, errors.New("connection refused")).Once()

		gate := NewGate(resolver, logger)
		decision, err := gate.Authorize(context.Background(), "u1", CapabilityViewWorkout)

		require.Error(t, err)
		assert.False(t, decision.Allowed)
	})
}

func TestRedirectHint(t *testing.T) {
	assert.Equal(t, "/pricing?source=view_workout", RedirectHint(CapabilityViewWorkout))
	assert.Equal(t, "/pricing?source=submit_pt_form", RedirectHint(CapabilitySubmitPTForm))
}
