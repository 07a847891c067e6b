package middlewarectx

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	libjwt "github.com/magabrotheeeer/coach-hub/internal/lib/jwt"
)

type makerValidator struct {
	maker *libjwt.MakerImpl
}

func (v makerValidator) ValidateToken(token string) (*libjwt.CustomClaims, error) {
	return v.maker.ParseToken(token)
}

func TestJWTMiddleware(t *testing.T) {
	logger := newNoopLogger()
	maker := libjwt.NewMaker("test-secret", time.Hour)

	var gotUID, gotRole, gotUser string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser, _ = r.Context().Value(User).(string)
		gotRole, _ = r.Context().Value(Role).(string)
		gotUID, _ = r.Context().Value(UserUID).(string)
		w.WriteHeader(http.StatusOK)
	})

	mw := JWTMiddleware(makerValidator{maker: maker}, logger)

	t.Run("valid token populates context", func(t *testing.T) {
		token, err := maker.GenerateToken("alice", "trainer", "uid-1")
		assert.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		mw(next).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "alice", gotUser)
		assert.Equal(t, "trainer", gotRole)
		assert.Equal(t, "uid-1", gotUID)
	})

	t.Run("missing header is unauthorized", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		mw(next).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("garbage token is unauthorized", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer garbage")
		rec := httptest.NewRecorder()
		mw(next).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
