package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"craft-invoice/backend/internal/app/config"
	"craft-invoice/backend/internal/app/http/handlers"
	"craft-invoice/backend/internal/app/http/middleware"
)

func NewRouter(cfg config.Config, log zerolog.Logger, h *handlers.Handlers, verifier middleware.TokenVerifier) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.WithRequestID)
	r.Use(middleware.Logging(log))
	r.Use(middleware.Recover(log))
	r.Use(middleware.Metrics)
	r.Use(middleware.CORS(cfg.CORSAllowOrigins))

	r.Get("/health", h.Health)
	r.Handle("/metrics", promhttp.Handler())

	rl := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	rl.StartCleanup(10 * time.Minute)

	r.Route("/api/invoices", func(r chi.Router) {
		r.Use(middleware.Auth(verifier))
		r.Use(rl.Handler)

		r.Get("/", h.List)
		r.Get("/stats", h.Stats)
		r.Post("/", h.Create)
		r.Get("/{id}", h.Get)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
		r.Post("/{id}/duplicate", h.Duplicate)
		r.Put("/{id}/status", h.UpdateStatus)
		r.Get("/{id}/pdf", h.DownloadPDF)
		r.Post("/{id}/pdf/upload", h.UploadPDF)
	})

	return r
}
