// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pdiddy/scholar-digest/internal/observability"
	"github.com/pdiddy/scholar-digest/internal/session"
)

const (
	// SessionCookie names the cookie carrying the session ID.
	SessionCookie = "scholar_digest_session"

	// SessionHeader carries the session ID for clients that cannot send
	// cookies. Every API response echoes the current ID in it.
	SessionHeader = "X-Session-ID"
)

// registry holds one controller per browser session.
type registry struct {
	mu       sync.Mutex
	sessions map[string]*session.Controller
	ttl      time.Duration
	create   func() *session.Controller
	metrics  *observability.Metrics
	now      func() time.Time
}

func newRegistry(ttl time.Duration, m *observability.Metrics, create func() *session.Controller) *registry {
	return &registry{
		sessions: make(map[string]*session.Controller),
		ttl:      ttl,
		create:   create,
		metrics:  m,
		now:      time.Now,
	}
}

// get returns the controller for id, if any.
func (r *registry) get(id string) (*session.Controller, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.sessions[id]
	return c, ok
}

// open creates a controller under a fresh ID.
func (r *registry) open() (string, *session.Controller) {
	id := uuid.NewString()
	c := r.create()

	r.mu.Lock()
	r.sessions[id] = c
	n := len(r.sessions)
	r.mu.Unlock()

	r.metrics.SetActiveSessions(n)
	return id, c
}

// sweep closes and removes sessions idle longer than the TTL. A zero TTL
// keeps sessions forever.
func (r *registry) sweep() int {
	if r.ttl <= 0 {
		return 0
	}
	cutoff := r.now().Add(-r.ttl)

	r.mu.Lock()
	var expired []*session.Controller
	for id, c := range r.sessions {
		if c.LastActive().Before(cutoff) {
			expired = append(expired, c)
			delete(r.sessions, id)
		}
	}
	n := len(r.sessions)
	r.mu.Unlock()

	for _, c := range expired {
		c.Close()
	}
	r.metrics.SetActiveSessions(n)
	return len(expired)
}

func (r *registry) closeAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, c := range r.sessions {
		c.Close()
		delete(r.sessions, id)
	}
	r.metrics.SetActiveSessions(0)
}

func (r *registry) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

type ctxKey struct{}

// sessionMiddleware attaches the caller's controller to the request context,
// opening a new session when the cookie is absent or expired.
func (s *Server) sessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var (
			id   string
			ctrl *session.Controller
		)
		if ck, err := r.Cookie(SessionCookie); err == nil {
			id = ck.Value
			ctrl, _ = s.sessions.get(id)
		}
		if h := r.Header.Get(SessionHeader); ctrl == nil && h != "" {
			id = h
			ctrl, _ = s.sessions.get(id)
		}
		if ctrl == nil {
			id, ctrl = s.sessions.open()
			http.SetCookie(w, &http.Cookie{
				Name:     SessionCookie,
				Value:    id,
				Path:     "/",
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}
		w.Header().Set(SessionHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, ctrl)))
	})
}

func controllerFrom(ctx context.Context) *session.Controller {
	c, _ := ctx.Value(ctxKey{}).(*session.Controller)
	return c
}
