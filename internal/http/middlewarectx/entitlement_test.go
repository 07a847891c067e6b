package middlewarectx

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/coach-hub/internal/services/access"
)

type GateMock struct {
	mock.Mock
}

func (m *GateMock) Authorize(ctx context.Context, userUID string, capability access.Capability) (access.Decision, error) {
	args := m.Called(ctx, userUID, capability)
	decision, _ := args.Get(0).(access.Decision)
	return decision, args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestEntitlementMiddleware(t *testing.T) {
	logger := newNoopLogger()
	nextCalled := false
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		nextCalled = true
		w.WriteHeader(http.StatusOK)
	})

	newRequest := func(uid string) *http.Request {
		req := httptest.NewRequest(http.MethodGet, "/programs/workout", nil)
		if uid != "" {
			req = req.WithContext(context.WithValue(req.Context(), UserUID, uid))
		}
		return req
	}

	t.Run("allowed decision passes request through", func(t *testing.T) {
		nextCalled = false
		gate := new(GateMock)
		gate.On("Authorize", mock.Anything, "u1", access.CapabilityViewWorkout).
			Return(access.Decision{Allowed: true}, nil).Once()

		mw := EntitlementMiddleware(gate, access.CapabilityViewWorkout, logger)
		rec := httptest.NewRecorder()
		mw(next).ServeHTTP(rec, newRequest("u1"))

		assert.True(t, nextCalled)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("denied decision answers 403 with redirect hint", func(t *testing.T) {
		nextCalled = false
		gate := new(GateMock)
		gate.On("Authorize", mock.Anything, "u1", access.CapabilityViewWorkout).
			Return(access.Decision{
				Allowed:      false,
				RedirectHint: "/pricing?source=view_workout",
			}, nil).Once()

		mw := EntitlementMiddleware(gate, access.CapabilityViewWorkout, logger)
		rec := httptest.NewRecorder()
		mw(next).ServeHTTP(rec, newRequest("u1"))

		assert.False(t, nextCalled)
		assert.Equal(t, http.StatusForbidden, rec.Code)
		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "/pricing?source=view_workout", body["redirect_hint"])
	})

	t.Run("missing user is unauthorized", func(t *testing.T) {
		nextCalled = false
		mw := EntitlementMiddleware(new(GateMock), access.CapabilityViewWorkout, logger)
		rec := httptest.NewRecorder()
		mw(next).ServeHTTP(rec, newRequest(""))

		assert.False(t, nextCalled)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("gate failure is a server error", func(t *testing.T) {
		nextCalled = false
		gate := new(GateMock)
		gate.On("Authorize", mock.Anything, "u1", access.CapabilityViewWorkout).
			Return(access.Decision{}, errors.New("connection refused")).Once()

		mw := EntitlementMiddleware(gate, access.CapabilityViewWorkout, logger)
		rec := httptest.NewRecorder()
		mw(next).ServeHTTP(rec, newRequest("u1"))

		assert.False(t, nextCalled)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}
