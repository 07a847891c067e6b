// Package current реализует обработчик текущей программы клиента.
package current

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/coach-hub/internal/http/middlewarectx"
	"github.com/magabrotheeeer/coach-hub/internal/http/response"
	"github.com/magabrotheeeer/coach-hub/internal/lib/sl"
	"github.com/magabrotheeeer/coach-hub/internal/models"
)

// Resolver описывает резолюцию текущей программы клиента.
type Resolver interface {
	ResolveCurrent(ctx context.Context, clientUID, kind string) (*models.ProgramSummary, error)
}

// Handler обрабатывает запросы текущей программы.
type Handler struct {
	log      *slog.Logger
	resolver Resolver
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, resolver Resolver) *Handler {
	return &Handler{log: log, resolver: resolver}
}

func validKind(kind string) bool {
	switch kind {
	case models.ProgramKindWorkout, models.ProgramKindNutrition, models.ProgramKindSupplement:
		return true
	}
	return false
}

// ServeHTTP godoc
// @Summary Текущая программа клиента
// @Description Возвращает актуальную программу заданного вида или null, если программ нет.
// @Tags Programs
// @Produce json
// @Param kind path string true "Вид программы" Enums(workout, nutrition, supplement)
// @Success 200 {object} response.Response "Сводка программы или null"
// @Failure 400 {object} response.ErrorResponse "Неизвестный вид программы"
// @Failure 401 {object} response.ErrorResponse "Не авторизован"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /programs/{kind} [get]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.program.current"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	kind := chi.URLParam(r, "kind")
	if !validKind(kind) {
		log.Error("unknown program kind", slog.String("kind", kind))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("unknown program kind"))
		return
	}

	userUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || userUID == "" {
		log.Error("user uid not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	summary, err := h.resolver.ResolveCurrent(r.Context(), userUID, kind)
	if err != nil {
		log.Error("failed to resolve current program", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not resolve program"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"program": summary,
	}))
}
