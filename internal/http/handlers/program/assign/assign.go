// Package assign реализует обработчик назначения программы клиенту тренером.
//
// Назначение гасит прежние активные строки того же вида: история остаётся,
// актуальной становится новая строка.
package assign

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/coach-hub/internal/http/middlewarectx"
	"github.com/magabrotheeeer/coach-hub/internal/http/response"
	"github.com/magabrotheeeer/coach-hub/internal/lib/sl"
	"github.com/magabrotheeeer/coach-hub/internal/models"
)

// Request — структура входных данных назначения программы.
type Request struct {
	Kind    string          `json:"kind" validate:"required,oneof=workout nutrition supplement"`
	Title   string          `json:"title" validate:"required,min=1,max=200"`
	Payload json.RawMessage `json:"payload"`
}

// Service описывает назначение программ.
type Service interface {
	Assign(ctx context.Context, program models.Program) (int, error)
}

// DashboardInvalidator сбрасывает закешированный снимок дашборда тренера.
type DashboardInvalidator interface {
	InvalidateTrainer(trainerUID string)
}

// Handler обрабатывает назначение программ.
type Handler struct {
	log         *slog.Logger
	service     Service
	invalidator DashboardInvalidator
	validate    *validator.Validate
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service, invalidator DashboardInvalidator) *Handler {
	return &Handler{
		log:         log,
		service:     service,
		invalidator: invalidator,
		validate:    validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Назначить программу клиенту
// @Description Создает новую программу клиента, погасив прежние активные строки того же вида.
// @Tags Programs
// @Accept json
// @Produce json
// @Param uid path string true "UID клиента"
// @Param request body Request true "Данные программы"
// @Success 200 {object} map[string]any "ID созданной программы"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 403 {object} response.ErrorResponse "Доступно только тренеру"
// @Failure 422 {object} response.Response "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /clients/{uid}/programs [post]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.program.assign"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	role, _ := r.Context().Value(middlewarectx.Role).(string)
	if role != models.RoleTrainer && role != models.RoleAdmin {
		log.Error("program assignment requires trainer role", slog.String("role", role))
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

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	clientUID := chi.URLParam(r, "uid")
	id, err := h.service.Assign(r.Context(), models.Program{
		ClientUID:  clientUID,
		TrainerUID: trainerUID,
		Kind:       req.Kind,
		Title:      req.Title,
		Payload:    req.Payload,
	})
	if err != nil {
		log.Error("failed to assign program", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not assign program"))
		return
	}
	h.invalidator.InvalidateTrainer(trainerUID)
	log.Info("program assigned",
		slog.Int("program_id", id),
		slog.String("client_uid", clientUID),
		slog.String("kind", req.Kind))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"program_id": id,
	}))
}
