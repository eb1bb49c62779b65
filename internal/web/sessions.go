package web

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/evcraddock/wealth-map/internal/search"
)

const (
	// SessionHeader names the session a request belongs to.
	SessionHeader = "X-Session-ID"
	// SessionCookie is the cookie fallback for browsers.
	SessionCookie = "wm_session"

	sessionIdleTimeout = 2 * time.Hour
	maxSessions        = 1000
)

// sessionRegistry keeps one orchestrator per client session. Sessions
// expire after idle time and the least recently used is dropped past max.
type sessionRegistry struct {
	mu       sync.Mutex
	sessions *expirable.LRU[string, *search.Orchestrator]
	create   func(id string) *search.Orchestrator
}

func newSessionRegistry(create func(id string) *search.Orchestrator, idle time.Duration, max int) *sessionRegistry {
	return &sessionRegistry{
		sessions: expirable.NewLRU[string, *search.Orchestrator](max, nil, idle),
		create:   create,
	}
}

// resolve returns the caller's orchestrator, creating a session when the
// request names none or an unknown one, and echoes the session ID back.
func (reg *sessionRegistry) resolve(w http.ResponseWriter, r *http.Request) *search.Orchestrator {
	id := requestSessionID(r)

	reg.mu.Lock()
	orch, ok := reg.sessions.Get(id)
	if !ok {
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		orch = reg.create(id)
	}
	// Re-adding restarts the idle timer.
	reg.sessions.Add(id, orch)
	reg.mu.Unlock()

	w.Header().Set(SessionHeader, id)
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return orch
}

// lookup returns an existing session without creating one.
func (reg *sessionRegistry) lookup(r *http.Request) (*search.Orchestrator, bool) {
	id := requestSessionID(r)
	reg.mu.Lock()
	defer reg.mu.Unlock()
	orch, ok := reg.sessions.Get(id)
	if ok {
		reg.sessions.Add(id, orch)
	}
	return orch, ok
}

func (reg *sessionRegistry) len() int {
	return reg.sessions.Len()
}

func requestSessionID(r *http.Request) string {
	if id := r.Header.Get(SessionHeader); id != "" {
		return id
	}
	if c, err := r.Cookie(SessionCookie); err == nil {
		return c.Value
	}
	return ""
}
