// Package create реализует HTTP-обработчик оформления покупки пакета.
//
// Запись попадает в журнал в статусе pending; активной она становится
// после подтверждения оплаты вебхуком.
package create

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/coach-hub/internal/http/middlewarectx"
	"github.com/magabrotheeeer/coach-hub/internal/http/response"
	"github.com/magabrotheeeer/coach-hub/internal/lib/sl"
)

// Request — структура входных данных оформления покупки.
type Request struct {
	PackageID int `json:"package_id" validate:"required,gt=0"`
}

// Service описывает интерфейс журнала покупок.
type Service interface {
	Create(ctx context.Context, userUID string, packageID int) (int, error)
}

// Handler обрабатывает HTTP-запросы оформления покупки.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Оформить покупку пакета
// @Description Добавляет pending-запись в журнал покупок со снапшотом пакета.
// @Tags Purchases
// @Accept json
// @Produce json
// @Param request body Request true "Идентификатор пакета"
// @Success 200 {object} map[string]any "ID записи журнала"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 422 {object} response.Response "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /purchases [post]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.purchase.create"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

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

	userUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || userUID == "" {
		log.Error("user uid not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	id, err := h.service.Create(r.Context(), userUID, req.PackageID)
	if err != nil {
		log.Error("failed to create purchase", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not create purchase"))
		return
	}
	log.Info("purchase created", slog.Int("purchase_id", id))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"purchase_id": id,
	}))
}
