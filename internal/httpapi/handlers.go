package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/DoyleJ11/duel-backend/internal/duel"
	"github.com/DoyleJ11/duel-backend/internal/hub"
	"github.com/DoyleJ11/duel-backend/pkg/types"
)

const lookupTimeout = 2 * time.Second

// GetDuel serves a read-only view of a live duel. Finished or cancelled
// duels are gone from the hub and answer 404.
func GetDuel(h *hub.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := chi.URLParam(r, "code")
		if !duel.ValidCode(code) {
			http.Error(w, "malformed duel code", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), lookupTimeout)
		defer cancel()
		d, ok, err := h.Duel(ctx, code)
		if err != nil {
			http.Error(w, "duel lookup failed", http.StatusServiceUnavailable)
			return
		}
		if !ok {
			http.Error(w, "duel not found", http.StatusNotFound)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(types.DuelView{
			Code:            d.Code,
			Phase:           string(d.Phase()),
			CubeSize:        d.CubeSize,
			InspectionTime:  d.InspectionTime,
			Scramble:        d.Scramble,
			HasChallenger:   d.HasChallenger(),
			HostReady:       d.HostReady,
			ChallengerReady: d.ChallengerReady,
			CreatedAt:       d.CreatedAt,
		})
	}
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// requestLogger logs one line per request once the handler returns.
func requestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			log.Debug("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Duration("elapsed", time.Since(start)))
		})
	}
}
