package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/DoyleJ11/duel-backend/internal/hub"
	"github.com/DoyleJ11/duel-backend/internal/metrics"
	"github.com/DoyleJ11/duel-backend/internal/ws"
)

func SetupRoutes(h *hub.Hub, reg *ws.Registry, opts ws.Options, log *zap.Logger) http.Handler {
	log = log.Named("http")
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(log))

	// Public routes
	r.Get("/healthz", Healthz)
	r.Get("/ws", ws.Handler(h, reg, opts, log))
	r.Get("/duels/{code}", GetDuel(h))
	r.Method(http.MethodGet, "/metrics", metrics.Handler())
	return r
}
