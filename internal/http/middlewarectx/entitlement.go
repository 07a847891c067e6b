package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/coach-hub/internal/http/response"
	"github.com/magabrotheeeer/coach-hub/internal/lib/sl"
	"github.com/magabrotheeeer/coach-hub/internal/services/access"
)

// Gate описывает гейт доступа по активному пакету.
type Gate interface {
	Authorize(ctx context.Context, userUID string, capability access.Capability) (access.Decision, error)
}

// deniedBody тело ответа при отказе: redirect_hint позволяет фронту увести
// пользователя на страницу покупки с атрибуцией источника.
type deniedBody struct {
	Status       string `json:"status"`
	Error        string `json:"error"`
	RedirectHint string `json:"redirect_hint"`
}

// EntitlementMiddleware — API-адаптер гейта доступа: одно и то же решение
// Authorize серверный рендер превращает в редирект, а здесь отказ
// превращается в 403 с подсказкой перехода.
func EntitlementMiddleware(gate Gate, capability access.Capability, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.EntitlementMiddleware"

			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			userUID, ok := r.Context().Value(UserUID).(string)
			if !ok || userUID == "" {
				log.Error("user identification missing")
				w.WriteHeader(http.StatusUnauthorized)
				render.JSON(w, r, response.Error("user identification missing"))
				return
			}

			decision, err := gate.Authorize(r.Context(), userUID, capability)
			if err != nil {
				log.Error("failed to authorize capability", sl.Err(err))
				w.WriteHeader(http.StatusInternalServerError)
				render.JSON(w, r, response.Error("internal service error"))
				return
			}
			if !decision.Allowed {
				w.WriteHeader(http.StatusForbidden)
				render.JSON(w, r, deniedBody{
					Status:       response.StatusError,
					Error:        "no active package",
					RedirectHint: decision.RedirectHint,
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
