// Package status реализует обработчик "есть ли у пользователя активный пакет".
//
// Это гард-форма гейта доступа: вместо 403 обработчик всегда отвечает 200 и
// отдаёт решение с подсказкой перехода — страничный слой сам делает редирект
// до отрисовки.
package status

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/coach-hub/internal/http/middlewarectx"
	"github.com/magabrotheeeer/coach-hub/internal/http/response"
	"github.com/magabrotheeeer/coach-hub/internal/lib/sl"
	"github.com/magabrotheeeer/coach-hub/internal/services/access"
)

// Gate описывает гейт доступа по активному пакету.
type Gate interface {
	Authorize(ctx context.Context, userUID string, capability access.Capability) (access.Decision, error)
}

// Handler обрабатывает запросы статуса активного пакета.
type Handler struct {
	log  *slog.Logger
	gate Gate
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, gate Gate) *Handler {
	return &Handler{log: log, gate: gate}
}

// capabilityFromQuery возвращает проверяемую способность из query-параметра.
// Неизвестные значения сводятся к просмотру тренировок.
func capabilityFromQuery(r *http.Request) access.Capability {
	switch access.Capability(r.URL.Query().Get("capability")) {
	case access.CapabilityViewNutrition:
		return access.CapabilityViewNutrition
	case access.CapabilitySubmitPTForm:
		return access.CapabilitySubmitPTForm
	default:
		return access.CapabilityViewWorkout
	}
}

// ServeHTTP godoc
// @Summary Статус активного пакета
// @Description Возвращает решение гейта: активный пакет, либо подсказку перехода на покупку.
// @Tags Entitlement
// @Produce json
// @Param capability query string false "Проверяемая способность" Enums(view_workout, view_nutrition, submit_pt_form)
// @Success 200 {object} response.Response "Решение гейта"
// @Failure 401 {object} response.ErrorResponse "Не авторизован"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /entitlement [get]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.entitlement.status"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || userUID == "" {
		log.Error("user uid not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	capability := capabilityFromQuery(r)
	decision, err := h.gate.Authorize(r.Context(), userUID, capability)
	if err != nil {
		log.Error("failed to authorize", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal service error"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"allowed":       decision.Allowed,
		"redirect_hint": decision.RedirectHint,
		"entitlement":   decision.Entitlement,
	}))
}
