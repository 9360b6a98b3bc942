// Package http is the REST gateway: mode metadata, the session flow,
// and stateless scoring. Results are computed on demand and returned
// to the caller; the gateway never stores them.
package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/typemetry/typemetry/internal/bank"
	"github.com/typemetry/typemetry/internal/scoring"
	"github.com/typemetry/typemetry/internal/session"
)

// Deps carries everything the gateway serves from.
type Deps struct {
	Scoring  *scoring.Service
	Banks    bank.Store // nil when serving from a payload file without item stems
	Sessions *session.Registry
	Codec    *session.Codec
	TokenTTL time.Duration
	Origins  []string
	Log      *zap.Logger
}

// New assembles the router.
func New(d Deps) http.Handler {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.Origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/modes", ListModesHandler(d.Scoring))
	r.Get("/modes/{mode}/functions", FunctionsHandler(d.Scoring))
	r.Get("/modes/{mode}/types", TypesHandler(d.Scoring))

	r.Post("/score", ScoreHandler(d.Scoring))

	r.Post("/sessions", CreateSessionHandler(d))
	r.Group(func(pr chi.Router) {
		pr.Use(session.Require(d.Sessions, d.Codec))
		pr.Get("/sessions/me", GetSessionHandler(d))
		pr.Put("/sessions/me/answers", SaveAnswersHandler(d))
		pr.Post("/sessions/me/score", ScoreSessionHandler(d))
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", ReadyzHandler(d.Scoring))

	return r
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
