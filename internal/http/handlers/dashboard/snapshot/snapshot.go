// Package snapshot реализует обработчик снимка дашборда тренера.
package snapshot

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/coach-hub/internal/http/middlewarectx"
	"github.com/magabrotheeeer/coach-hub/internal/http/response"
	"github.com/magabrotheeeer/coach-hub/internal/lib/sl"
	"github.com/magabrotheeeer/coach-hub/internal/models"
)

// Service описывает сборку снимка дашборда.
type Service interface {
	BuildSnapshot(ctx context.Context, trainerUID string) (*models.DashboardSnapshot, error)
}

// Handler обрабатывает запросы снимка дашборда.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Дашборд тренера
// @Description Возвращает агрегированный снимок: метрики, нагрузку, тренды и списки.
// @Tags Dashboard
// @Produce json
// @Success 200 {object} models.DashboardSnapshot "Снимок дашборда"
// @Failure 403 {object} response.ErrorResponse "Доступно только тренеру"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /dashboard [get]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.dashboard.snapshot"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	role, _ := r.Context().Value(middlewarectx.Role).(string)
	if role != models.RoleTrainer && role != models.RoleAdmin {
		log.Error("dashboard requires trainer role", slog.String("role", role))
		w.WriteHeader(http.StatusForbidden)
		render.JSON(w, r, response.Error("trainer role required"))
		return
	}
	trainerUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || trainerUID == "" {
		log.Error("user uid not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	snapshot, err := h.service.BuildSnapshot(r.Context(), trainerUID)
	if err != nil {
		log.Error("failed to build dashboard snapshot", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not build dashboard"))
		return
	}
	if len(snapshot.Diagnostics) > 0 {
		log.Warn("dashboard built with degraded sections",
			slog.Int("diagnostics", len(snapshot.Diagnostics)))
	}

	render.JSON(w, r, snapshot)
}
