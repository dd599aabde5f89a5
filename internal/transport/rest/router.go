package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"

	"github.com/frahmantamala/moola-sync/internal/sync"
	"github.com/frahmantamala/moola-sync/internal/transport/middleware"
	"github.com/frahmantamala/moola-sync/internal/transport/swagger"
)

func RegisterAllRoutes(router *chi.Mux, db *sql.DB, syncHandler *sync.Handler, operatorAPIKey string, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)

	// Apply global middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.RecoveryMiddleware(logger))

	// Serve OpenAPI spec at root (outside API prefix)
	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	// Swagger UI route at root
	router.Handle("/swagger/*", swagger.Handler())

	// Mount API under /api/v1 to match OpenAPI basePath
	router.Route("/api/v1", func(r chi.Router) {
		// Health check routes
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		// Sync control routes, operator key protected
		if syncHandler != nil {
			r.Group(func(sr chi.Router) {
				sr.Use(middleware.OperatorAuth(operatorAPIKey))

				sr.Route("/sync", func(syncRouter chi.Router) {
					syncRouter.Post("/now", syncHandler.SyncNow)            // POST /sync/now
					syncRouter.Post("/from-date", syncHandler.SyncFromDate) // POST /sync/from-date
					syncRouter.Get("/runs", syncHandler.Runs)               // GET /sync/runs
				})
			})
		}
	})
}
