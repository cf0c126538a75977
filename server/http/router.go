package serverhttp

import (
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"dcb-service/internal/config"
	dcbHnd "dcb-service/internal/dcb/handler"
	"dcb-service/internal/middleware"
	"dcb-service/internal/store"
	"dcb-service/server/http/handlers"
)

func NewRouter(cfg config.Config, st store.Store, aliases map[string]string, logger zerolog.Logger) *chi.Mux {
	r := chi.NewRouter()

	// order matters: recover -> requestID -> logging -> cors -> limit
	r.Use(middleware.Recover(logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logging(logger))
	r.Use(middleware.CORS(cfg.AllowOrigins))
	r.Use(middleware.LimitBytes(int64(cfg.MaxUploadMB) * 1024 * 1024))

	// health-check
	r.Get("/health", handlers.Health)

	// workbook upload
	r.Post("/import", dcbHnd.Import(cfg, st, aliases, logger))

	return r
}
