// Package http exposes the grading pipeline to teachers over HTTP.
// Grading endpoints mirror the CI entry points so a teacher can re-run
// any stage by hand; roster endpoints serve reconciled results.
package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/h-lu/gitea-autograde/internal/auth"
	"github.com/h-lu/gitea-autograde/internal/config"
	"github.com/h-lu/gitea-autograde/internal/grading"
	"github.com/h-lu/gitea-autograde/internal/roster"
	"github.com/h-lu/gitea-autograde/internal/storage"
)

// Deps carries everything the router serves from.
type Deps struct {
	Auth    *auth.AuthService
	Records storage.RecordStore
	Oracle  grading.Oracle
	Roster  *roster.SQLStore // optional; roster endpoints 404 without it
}

func NewRouter(cfg config.Config, deps Deps) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Post("/auth/login", auth.LoginHandler(deps.Auth, cfg.AdminUser, cfg.AdminPassHash))
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })

	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(deps.Auth))

		pr.Post("/grade/programming", ProgrammingGradeHandler())
		pr.Post("/grade/objective", ObjectiveGradeHandler())
		pr.Post("/grade/llm", LLMGradeHandler(deps.Oracle))

		pr.Post("/records", UploadRecordHandler(deps.Records))
		pr.Post("/reconcile", ReconcileHandler(cfg, deps.Records, deps.Roster))
		pr.Get("/roster", RosterHandler(cfg, deps.Roster))
	})

	return r
}
