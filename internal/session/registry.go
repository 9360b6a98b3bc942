// Package session keeps in-flight assessment sessions in memory.
//
// A session binds a mode to a shuffle seed and collects answers as
// they arrive. Nothing here is persisted: when the session expires or
// the process exits, the answers are gone. Scoring results are never
// stored at all.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

type Session struct {
	ID        string              `json:"id"`
	Mode      string              `json:"mode"`
	Seed      string              `json:"seed"`
	Scale     string              `json:"scale,omitempty"`
	CreatedAt time.Time           `json:"created_at"`
	LastSeen  time.Time           `json:"last_seen"`
	Answers   map[string]*float64 `json:"answers"`
}

// Registry is an in-memory session table with a TTL sweep.
type Registry struct {
	ttl time.Duration
	now func() time.Time

	mu       sync.RWMutex
	sessions map[string]*Session

	done chan struct{}
	once sync.Once
}

func NewRegistry(ttl time.Duration) *Registry {
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	r := &Registry{
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]*Session),
		done:     make(chan struct{}),
	}
	go r.janitor()
	return r
}

// Close stops the sweep goroutine. Sessions stay readable until the
// process exits.
func (r *Registry) Close() {
	r.once.Do(func() { close(r.done) })
}

func (r *Registry) janitor() {
	t := time.NewTicker(time.Minute)
	defer t.Stop()
	for {
		select {
		case <-r.done:
			return
		case <-t.C:
			r.sweep()
		}
	}
}

func (r *Registry) sweep() {
	cutoff := r.now().Add(-r.ttl)
	r.mu.Lock()
	for id, s := range r.sessions {
		if s.LastSeen.Before(cutoff) {
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()
}

// Create opens a session with a fresh id and shuffle seed.
func (r *Registry) Create(mode, scale string) Session {
	now := r.now()
	s := &Session{
		ID:        uuid.NewString(),
		Mode:      mode,
		Seed:      uuid.NewString(),
		Scale:     scale,
		CreatedAt: now,
		LastSeen:  now,
		Answers:   make(map[string]*float64),
	}
	r.mu.Lock()
	r.sessions[s.ID] = s
	r.mu.Unlock()
	return snapshot(s)
}

// Get returns a copy of the session and refreshes its TTL.
func (r *Registry) Get(id string) (Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return Session{}, false
	}
	s.LastSeen = r.now()
	return snapshot(s), true
}

// MergeAnswers folds updates into the stored answer set. A nil value
// marks the item as seen but unanswered; it overwrites any earlier
// value for that item.
func (r *Registry) MergeAnswers(id string, updates map[string]*float64) (Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return Session{}, false
	}
	for item, v := range updates {
		if v == nil {
			s.Answers[item] = nil
			continue
		}
		val := *v
		s.Answers[item] = &val
	}
	s.LastSeen = r.now()
	return snapshot(s), true
}

// Delete drops a session immediately.
func (r *Registry) Delete(id string) {
	r.mu.Lock()
	delete(r.sessions, id)
	r.mu.Unlock()
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// snapshot deep-copies so callers never share the live answer map.
func snapshot(s *Session) Session {
	out := *s
	out.Answers = make(map[string]*float64, len(s.Answers))
	for k, v := range s.Answers {
		if v == nil {
			out.Answers[k] = nil
			continue
		}
		val := *v
		out.Answers[k] = &val
	}
	return out
}
