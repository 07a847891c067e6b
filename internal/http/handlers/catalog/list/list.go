// Package list реализует HTTP-обработчик списка пакетов каталога.
package list

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/coach-hub/internal/http/response"
	"github.com/magabrotheeeer/coach-hub/internal/lib/sl"
	"github.com/magabrotheeeer/coach-hub/internal/models"
)

// Catalog описывает чтение каталога пакетов.
type Catalog interface {
	ListActivePackages(ctx context.Context) ([]*models.Package, error)
}

// Handler обрабатывает HTTP-запросы списка пакетов.
type Handler struct {
	log     *slog.Logger
	catalog Catalog
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, catalog Catalog) *Handler {
	return &Handler{log: log, catalog: catalog}
}

// ServeHTTP godoc
// @Summary Список пакетов
// @Description Возвращает пакеты, доступные к покупке.
// @Tags Catalog
// @Produce json
// @Success 200 {object} response.Response "Список пакетов"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /packages [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.catalog.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	packages, err := h.catalog.ListActivePackages(r.Context())
	if err != nil {
		log.Error("failed to list packages", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list packages"))
		return
	}
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"packages": packages,
	}))
}
