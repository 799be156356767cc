package router

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"cloud-auth/internal/config"
	"cloud-auth/internal/handler"
	"cloud-auth/internal/middleware"
	"cloud-auth/internal/model"
)

const apiVersion = "0.1.0"

func New(
	cfg *config.Config,
	authMiddleware *middleware.AuthMiddleware,
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
) http.Handler {
	r := chi.NewRouter()
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(cfg.RateLimitRPM, cfg.AuthRateLimitRPM)

	r.Use(middleware.Recovery)
	r.Use(middleware.Logging)
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(rateLimitMiddleware.Handler)

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(model.WelcomeResponse{
			Message:       "Welcome to the Cloud Automation Web Application!",
			Status:        "online",
			Documentation: "/docs",
		})
	})

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(model.HealthResponse{
			Status:    "operational",
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Version:   apiVersion,
		})
	})

	r.Route("/api/v1", func(api chi.Router) {
		api.Use(middleware.Timeout(cfg.RequestTimeout))

		api.Route("/auth", func(auth chi.Router) {
			auth.Post("/register", authHandler.Register)
			auth.Post("/login", authHandler.Login)
			auth.With(authMiddleware.RequireAuth).Get("/me", authHandler.Me)
			auth.With(authMiddleware.RequireAuth).Post("/refresh", authHandler.Refresh)
		})

		api.Route("/users", func(users chi.Router) {
			users.Use(authMiddleware.RequireAuth)
			users.Put("/me", userHandler.UpdateMe)
			users.With(authMiddleware.RequireSuperuser).Get("/", userHandler.List)
			users.With(authMiddleware.RequireSuperuser).Patch("/{user_id}/active", userHandler.SetActive)
		})
	})

	return r
}
