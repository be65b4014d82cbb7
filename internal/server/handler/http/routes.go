package http

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/lexora/lexora/internal/middleware"
	"github.com/lexora/lexora/internal/models"
)

// NewRouter constructs the HTTP handler serving the practice management
// API.
//
// Routes:
//
//	POST /api/register, /api/login                    — public
//	POST /api/logout, GET /api/me                     — token in header
//	GET  /api/dashboard                               — protected
//	POST /api/appointments/{id}/complete              — protected
//	GET  /api/search?q=                               — protected
//	GET  /api/subscribe?collection=                   — protected, websocket
//	CRUD /api/{clients,cases,billing,appointments}    — protected
//	     /api/documents plus upload/url/download      — protected
//
// Every protected route resolves the bearer token before any data call,
// so an unauthenticated request never reaches a store.
func NewRouter(
	authHandler *AuthHandler,
	entityHandler *EntityHandler,
	documentHandler *DocumentHandler,
	dashboardHandler *DashboardHandler,
	searchHandler *SearchHandler,
	subscribeHandler *SubscribeHandler,
	sessions middleware.SessionResolver,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Log each request and its metadata
	r.Use(middleware.WithRequestLogging(logger))

	r.Route("/api", func(r chi.Router) {
		// Public endpoints
		r.Group(func(r chi.Router) {
			r.Use(chiMiddleware.AllowContentType("application/json"))
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
		})
		r.Post("/logout", authHandler.Logout)
		r.Get("/me", authHandler.Me)

		// Protected group: requires a valid session token
		r.Group(func(r chi.Router) {
			r.Use(middleware.BearerAuth(sessions))

			r.Get("/dashboard", dashboardHandler.Overview)
			r.Get("/search", searchHandler.Handle)
			r.Get("/subscribe", subscribeHandler.Handle)

			for _, collection := range []models.Collection{
				models.Clients, models.Cases, models.Billing,
			} {
				mountCollection(r, entityHandler, string(collection))
			}
			mountCollection(r, entityHandler, string(models.Appointments), func(r chi.Router) {
				r.Post("/{id}/complete", dashboardHandler.Complete)
			})

			r.Route("/documents", func(r chi.Router) {
				r.Get("/", entityHandler.List(string(models.Documents)))
				r.Post("/upload", documentHandler.Upload)
				r.Get("/{id}", entityHandler.Get(string(models.Documents)))
				r.Get("/{id}/url", documentHandler.URL)
				r.Get("/{id}/download", documentHandler.Download)
				r.Delete("/{id}", documentHandler.Delete)
			})
		})
	})

	return r
}

// mountCollection wires the uniform CRUD surface for one collection,
// plus any collection-specific extras.
func mountCollection(r chi.Router, h *EntityHandler, collection string, extras ...func(chi.Router)) {
	r.Route("/"+collection, func(r chi.Router) {
		r.Use(chiMiddleware.AllowContentType("application/json"))
		r.Get("/", h.List(collection))
		r.Post("/", h.Create(collection))
		r.Get("/{id}", h.Get(collection))
		r.Patch("/{id}", h.Update(collection))
		r.Delete("/{id}", h.Delete(collection))
		for _, extra := range extras {
			extra(r)
		}
	})
}
