package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/typemetry/typemetry/internal/scoring"
)

// scoringError maps engine failures onto status codes. Unknown modes are
// 404, sheet and scale problems belong to the caller, anything else means
// the payload could not be served.
func scoringError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, scoring.ErrUnknownMode):
		http.Error(w, "unknown mode", 404)
	case errors.Is(err, scoring.ErrBadScale),
		errors.Is(err, scoring.ErrSeedRequired),
		errors.Is(err, scoring.ErrNoItemOrder),
		errors.Is(err, scoring.ErrSheetMismatch):
		http.Error(w, err.Error(), 400)
	default:
		http.Error(w, "payload unavailable", 503)
	}
}

func ListModesHandler(svc *scoring.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		modes, err := svc.Modes(r.Context())
		if err != nil {
			http.Error(w, "payload unavailable", 503)
			return
		}
		writeJSON(w, map[string]any{"modes": modes})
	}
}

func FunctionsHandler(svc *scoring.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		funcs, err := svc.FuncMeta(r.Context(), chi.URLParam(r, "mode"))
		if err != nil {
			scoringError(w, err)
			return
		}
		writeJSON(w, map[string]any{"functions": funcs, "axes": scoring.AxisDefs()})
	}
}

func TypesHandler(svc *scoring.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tm, err := svc.TypeMap(r.Context(), chi.URLParam(r, "mode"))
		if err != nil {
			scoringError(w, err)
			return
		}
		writeJSON(w, tm)
	}
}

// ScoreHandler is the stateless one-shot: a full request in, a full
// result out, no session involved.
func ScoreHandler(svc *scoring.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req scoring.ScoreRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", 400)
			return
		}
		if req.Mode == "" {
			http.Error(w, "mode required", 400)
			return
		}
		res, err := svc.Score(r.Context(), req)
		if err != nil {
			scoringError(w, err)
			return
		}
		writeJSON(w, res)
	}
}

// ReadyzHandler reports ready once the payload decodes.
func ReadyzHandler(svc *scoring.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, err := svc.Modes(r.Context()); err != nil {
			http.Error(w, "payload unavailable", 503)
			return
		}
		w.WriteHeader(200)
	}
}
