package interview

import (
	"log"
	"sync"
	"time"
)

// Registry tracks live interview sessions by id. Sessions are ephemeral:
// they expire after a TTL of inactivity, which is how navigating away
// abandons an interview. A late generation result for an expired session is
// discarded rather than applied.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	ttl      time.Duration
}

// NewRegistry creates a registry with the given inactivity TTL.
func NewRegistry(ttl time.Duration) *Registry {
	return &Registry{
		sessions: map[string]*Session{},
		ttl:      ttl,
	}
}

// Put registers a session.
func (r *Registry) Put(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.ID] = s
}

// Get returns the live session for id, or nil if unknown or expired.
func (r *Registry) Get(id string) *Session {
	r.mu.RLock()
	s := r.sessions[id]
	r.mu.RUnlock()
	if s == nil {
		return nil
	}
	if time.Since(s.UpdatedAt()) > r.ttl {
		r.Remove(id)
		return nil
	}
	return s
}

// Remove drops a session. Used for "start over" and expiry.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}

// StartCleanup sweeps expired sessions on an interval until stop is closed.
func (r *Registry) StartCleanup(interval time.Duration, stop <-chan struct{}) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				r.sweep()
			case <-stop:
				return
			}
		}
	}()
}

func (r *Registry) sweep() {
	cutoff := time.Now().Add(-r.ttl)
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, s := range r.sessions {
		if s.UpdatedAt().Before(cutoff) {
			delete(r.sessions, id)
			log.Printf("Interview session %s expired", id)
		}
	}
}
