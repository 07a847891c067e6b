// Package clients реализует обработчик батч-резолюции текущих программ
// всех клиентов тренера: одна предварительно отсортированная выборка,
// один победитель на клиента, без N+1 запросов.
package clients

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

// UserRepository описывает чтение клиентов тренера.
type UserRepository interface {
	ListClientsByTrainer(ctx context.Context, trainerUID string) ([]*models.User, error)
}

// Resolver описывает батч-резолюцию текущих программ.
type Resolver interface {
	ResolveCurrentBatch(ctx context.Context, clientUIDs []string, kind string) (map[string]*models.ProgramSummary, error)
}

// Handler обрабатывает батч-запросы текущих программ клиентов тренера.
type Handler struct {
	log      *slog.Logger
	users    UserRepository
	resolver Resolver
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, users UserRepository, resolver Resolver) *Handler {
	return &Handler{log: log, users: users, resolver: resolver}
}

func validKind(kind string) bool {
	switch kind {
	case models.ProgramKindWorkout, models.ProgramKindNutrition, models.ProgramKindSupplement:
		return true
	}
	return false
}

// ServeHTTP godoc
// @Summary Текущие программы клиентов тренера
// @Description Возвращает по одной актуальной программе на клиента; null для клиентов без программ.
// @Tags Programs
// @Produce json
// @Param kind query string true "Вид программы" Enums(workout, nutrition, supplement)
// @Success 200 {object} response.Response "Карта клиент - программа"
// @Failure 400 {object} response.ErrorResponse "Неизвестный вид программы"
// @Failure 403 {object} response.ErrorResponse "Доступно только тренеру"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /clients/programs [get]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.program.clients"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	role, _ := r.Context().Value(middlewarectx.Role).(string)
	if role != models.RoleTrainer && role != models.RoleAdmin {
		log.Error("client listing requires trainer role", slog.String("role", role))
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

	kind := r.URL.Query().Get("kind")
	if !validKind(kind) {
		log.Error("unknown program kind", slog.String("kind", kind))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("unknown program kind"))
		return
	}

	clients, err := h.users.ListClientsByTrainer(r.Context(), trainerUID)
	if err != nil {
		log.Error("failed to list clients", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list clients"))
		return
	}
	clientUIDs := make([]string, 0, len(clients))
	for _, c := range clients {
		clientUIDs = append(clientUIDs, c.UID)
	}

	programs, err := h.resolver.ResolveCurrentBatch(r.Context(), clientUIDs, kind)
	if err != nil {
		log.Error("failed to resolve programs", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not resolve programs"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"programs": programs,
	}))
}
