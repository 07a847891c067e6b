package coach

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	loginhandler "github.com/magabrotheeeer/coach-hub/internal/http/handlers/auth/login"
	registerhandler "github.com/magabrotheeeer/coach-hub/internal/http/handlers/auth/register"
	cataloglisthandler "github.com/magabrotheeeer/coach-hub/internal/http/handlers/catalog/list"
	dashboardhandler "github.com/magabrotheeeer/coach-hub/internal/http/handlers/dashboard/snapshot"
	statushandler "github.com/magabrotheeeer/coach-hub/internal/http/handlers/entitlement/status"
	assignhandler "github.com/magabrotheeeer/coach-hub/internal/http/handlers/program/assign"
	clientshandler "github.com/magabrotheeeer/coach-hub/internal/http/handlers/program/clients"
	currenthandler "github.com/magabrotheeeer/coach-hub/internal/http/handlers/program/current"
	createpurchasehandler "github.com/magabrotheeeer/coach-hub/internal/http/handlers/purchase/create"
	webhookhandler "github.com/magabrotheeeer/coach-hub/internal/http/handlers/purchase/webhook"
	"github.com/magabrotheeeer/coach-hub/internal/http/middlewarectx"
	accessservice "github.com/magabrotheeeer/coach-hub/internal/services/access"
	assignmentservice "github.com/magabrotheeeer/coach-hub/internal/services/assignment"
	authservice "github.com/magabrotheeeer/coach-hub/internal/services/auth"
	dashboardservice "github.com/magabrotheeeer/coach-hub/internal/services/dashboard"
	purchaseservice "github.com/magabrotheeeer/coach-hub/internal/services/purchase"
	"github.com/magabrotheeeer/coach-hub/internal/storage/repository"
)

// Services набор сервисов, необходимых маршрутам приложения.
type Services struct {
	Auth        *authservice.Service
	Gate        *accessservice.Gate
	Assignment  *assignmentservice.Resolver
	Dashboard   *dashboardservice.Service
	Purchase    *purchaseservice.Service
	Users       *repository.Repo
	Catalog     *repository.Repo
	WebhookAuth string
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(router chi.Router, log *slog.Logger, svcs *Services) {
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.URLFormat)

	router.Handle("/metrics", promhttp.Handler())
	router.Get("/docs/*", httpSwagger.WrapHandler)

	router.Route("/api/v1", func(r chi.Router) {
		r.Post("/register", registerhandler.New(log, svcs.Auth).ServeHTTP)
		r.Post("/login", loginhandler.New(log, svcs.Auth).ServeHTTP)
		r.Get("/packages", cataloglisthandler.New(log, svcs.Catalog).ServeHTTP)
		r.Post("/payments/webhook", webhookhandler.New(log, svcs.Purchase, svcs.WebhookAuth).ServeHTTP)

		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(svcs.Auth, log))
			r.Use(middlewarectx.RateLimitMiddleware(log))

			r.Get("/entitlement", statushandler.New(log, svcs.Gate).ServeHTTP)
			r.Post("/purchases", createpurchasehandler.New(log, svcs.Purchase).ServeHTTP)

			// Страницы программ закрыты гейтом: вид программы определяет
			// проверяемую способность.
			currentH := currenthandler.New(log, svcs.Assignment)
			r.Route("/programs", func(r chi.Router) {
				r.With(middlewarectx.EntitlementMiddleware(svcs.Gate, accessservice.CapabilityViewWorkout, log)).
					Get("/{kind:workout}", currentH.ServeHTTP)
				r.With(middlewarectx.EntitlementMiddleware(svcs.Gate, accessservice.CapabilityViewNutrition, log)).
					Get("/{kind:nutrition|supplement}", currentH.ServeHTTP)
			})

			r.Get("/dashboard", dashboardhandler.New(log, svcs.Dashboard).ServeHTTP)
			r.Get("/clients/programs", clientshandler.New(log, svcs.Users, svcs.Assignment).ServeHTTP)
			r.Post("/clients/{uid}/programs", assignhandler.New(log, svcs.Assignment, svcs.Dashboard).ServeHTTP)
		})
	})
}
