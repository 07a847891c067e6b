// Package webhook реализует обработчик вебхука подтверждения оплаты.
//
// Платёжный провайдер — внешний коллаборатор: движок не инициирует списания,
// он лишь получает подтверждение и переводит pending-запись журнала в active.
package webhook

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/coach-hub/internal/http/response"
	"github.com/magabrotheeeer/coach-hub/internal/lib/sl"
)

// Event — тело вебхука платёжного провайдера.
type Event struct {
	Event      string `json:"event" validate:"required,oneof=payment.succeeded payment.canceled"`
	PurchaseID int    `json:"purchase_id" validate:"required,gt=0"`
}

// Service описывает подтверждение оплаты в журнале покупок.
type Service interface {
	ConfirmPayment(ctx context.Context, purchaseID int) error
}

// Handler обрабатывает вебхуки платёжного провайдера.
type Handler struct {
	log      *slog.Logger
	service  Service
	secret   string
	validate *validator.Validate
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service, secret string) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		secret:   secret,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Вебхук подтверждения оплаты
// @Description Переводит pending-покупку в active после успешной оплаты.
// @Tags Purchases
// @Accept json
// @Produce json
// @Param request body Event true "Событие платёжного провайдера"
// @Success 200 {object} response.Response "Событие обработано"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Неверная подпись"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /payments/webhook [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.purchase.webhook"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	signature := r.Header.Get("X-Webhook-Secret")
	if subtle.ConstantTimeCompare([]byte(signature), []byte(h.secret)) != 1 {
		log.Error("invalid webhook signature")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("invalid signature"))
		return
	}

	var event Event
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		log.Error("failed to decode webhook body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	if err := h.validate.Struct(event); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid webhook payload"))
		return
	}

	if event.Event != "payment.succeeded" {
		// Отмены не трогают журнал: запись остаётся pending до сметания.
		log.Info("ignoring webhook event", slog.String("event", event.Event))
		render.JSON(w, r, response.StatusOKWithData(nil))
		return
	}

	if err := h.service.ConfirmPayment(r.Context(), event.PurchaseID); err != nil {
		log.Error("failed to confirm payment", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not confirm payment"))
		return
	}
	log.Info("payment confirmed", slog.Int("purchase_id", event.PurchaseID))
	render.JSON(w, r, response.StatusOKWithData(nil))
}
