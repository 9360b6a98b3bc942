package http

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/typemetry/typemetry/internal/bank"
	"github.com/typemetry/typemetry/internal/scoring"
	"github.com/typemetry/typemetry/internal/session"
)

type sessionView struct {
	SessionID string              `json:"session_id"`
	Mode      string              `json:"mode"`
	Scale     string              `json:"scale,omitempty"`
	CreatedAt time.Time           `json:"created_at"`
	Answers   map[string]*float64 `json:"answers"`
	Items     []bank.Item         `json:"items,omitempty"`
}

func viewOf(s session.Session, items []bank.Item) sessionView {
	return sessionView{
		SessionID: s.ID,
		Mode:      s.Mode,
		Scale:     s.Scale,
		CreatedAt: s.CreatedAt,
		Answers:   s.Answers,
		Items:     items,
	}
}

// sessionItems returns the bank's items in the session's shuffled order.
// A payload-only deployment has no stems to show; that is not an error.
func sessionItems(ctx context.Context, banks bank.Store, mode, seed string) []bank.Item {
	if banks == nil {
		return nil
	}
	b, err := banks.GetBank(ctx, mode)
	if err != nil {
		return nil
	}
	return scoring.Permute(b.Items, seed)
}

// POST /sessions {mode, scale?}
func CreateSessionHandler(d Deps) http.HandlerFunc {
	type out struct {
		SessionID string      `json:"session_id"`
		Token     string      `json:"token"`
		Mode      string      `json:"mode"`
		Scale     string      `json:"scale,omitempty"`
		Items     []bank.Item `json:"items,omitempty"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Mode  string `json:"mode"`
			Scale string `json:"scale"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", 400)
			return
		}
		if req.Mode == "" {
			http.Error(w, "mode required", 400)
			return
		}
		scale, err := scoring.ParseScale(req.Scale)
		if err != nil {
			http.Error(w, err.Error(), 400)
			return
		}
		// Building the engine up front rejects unknown modes before a
		// session exists for them.
		if _, err := d.Scoring.FuncMeta(r.Context(), req.Mode); err != nil {
			scoringError(w, err)
			return
		}

		s := d.Sessions.Create(req.Mode, string(scale))
		tok, err := d.Codec.Issue(s, d.TokenTTL)
		if err != nil {
			http.Error(w, "issue token", 500)
			return
		}
		d.Log.Debug("session created", zap.String("sid", s.ID), zap.String("mode", s.Mode))

		writeJSON(w, out{
			SessionID: s.ID,
			Token:     tok,
			Mode:      s.Mode,
			Scale:     s.Scale,
			Items:     sessionItems(r.Context(), d.Banks, s.Mode, s.Seed),
		})
	}
}

// GET /sessions/me
func GetSessionHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := session.FromContext(r.Context())
		if !ok {
			http.Error(w, "session expired", 401)
			return
		}
		writeJSON(w, viewOf(s, sessionItems(r.Context(), d.Banks, s.Mode, s.Seed)))
	}
}

// PUT /sessions/me/answers {answers: <id-keyed map | record list | positional list>}
//
// Saves merge: items absent from the batch keep their stored values, a
// null value marks an item as seen but unanswered.
func SaveAnswersHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := session.FromContext(r.Context())
		if !ok {
			http.Error(w, "session expired", 401)
			return
		}
		var req struct {
			Answers *scoring.AnswerSheet `json:"answers"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", 400)
			return
		}
		if req.Answers == nil {
			http.Error(w, "answers required", 400)
			return
		}

		records := req.Answers.Records
		if req.Answers.Positional {
			if d.Banks == nil {
				http.Error(w, "positional answers need a question bank", 400)
				return
			}
			b, err := d.Banks.GetBank(r.Context(), s.Mode)
			if err != nil {
				http.Error(w, "no item order for mode", 400)
				return
			}
			records, err = req.Answers.ResolvePositional(scoring.Permute(b.ItemIDs(), s.Seed))
			if err != nil {
				http.Error(w, err.Error(), 400)
				return
			}
		}

		updates := make(map[string]*float64, len(records))
		for _, rec := range records {
			updates[rec.ID] = rec.Value
		}
		merged, ok := d.Sessions.MergeAnswers(s.ID, updates)
		if !ok {
			http.Error(w, "session expired", 401)
			return
		}
		writeJSON(w, viewOf(merged, nil))
	}
}

// POST /sessions/me/score
//
// Scores whatever is saved so far. The result goes back to the caller
// and nowhere else.
func ScoreSessionHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := session.FromContext(r.Context())
		if !ok {
			http.Error(w, "session expired", 401)
			return
		}

		ids := make([]string, 0, len(s.Answers))
		for id := range s.Answers {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		records := make([]scoring.AnswerRecord, len(ids))
		for i, id := range ids {
			records[i] = scoring.AnswerRecord{ID: id, Value: s.Answers[id]}
		}

		res, err := d.Scoring.Score(r.Context(), scoring.ScoreRequest{
			Mode:    s.Mode,
			Seed:    s.Seed,
			Scale:   s.Scale,
			Answers: scoring.AnswerSheet{Records: records},
		})
		if err != nil {
			scoringError(w, err)
			return
		}
		writeJSON(w, res)
	}
}
