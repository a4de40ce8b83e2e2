package web

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/abhisek/lembar/internal/orchestrator"
)

type entry struct {
	session  *orchestrator.Session
	lastSeen time.Time
}

// Registry holds one orchestrator.Session per browser session. Idle
// entries expire after the TTL.
type Registry struct {
	mu      sync.Mutex
	entries map[string]*entry
	ttl     time.Duration
	now     func() time.Time
	logger  *zap.Logger
}

// NewRegistry creates an empty Registry.
func NewRegistry(ttl time.Duration, logger *zap.Logger) *Registry {
	return &Registry{
		entries: make(map[string]*entry),
		ttl:     ttl,
		now:     time.Now,
		logger:  logger,
	}
}

// Create registers a new idle session and returns its id.
func (r *Registry) Create() (string, *orchestrator.Session) {
	id := uuid.NewString()
	s := orchestrator.NewSession()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[id] = &entry{session: s, lastSeen: r.now()}
	return id, s
}

// Get returns the session for id and marks it as seen.
func (r *Registry) Get(id string) (*orchestrator.Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	if !ok {
		return nil, false
	}
	e.lastSeen = r.now()
	return e.session, true
}

// Delete resets and forgets the session for id.
func (r *Registry) Delete(id string) {
	r.mu.Lock()
	e, ok := r.entries[id]
	delete(r.entries, id)
	r.mu.Unlock()
	if ok {
		e.session.Reset()
	}
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Sweep drops sessions not seen within the TTL. Busy sessions are
// kept regardless.
func (r *Registry) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	cutoff := r.now().Add(-r.ttl)
	removed := 0
	for id, e := range r.entries {
		if e.lastSeen.Before(cutoff) && !e.session.Busy() {
			delete(r.entries, id)
			e.session.Reset()
			removed++
		}
	}
	return removed
}

// Janitor sweeps every interval until ctx is done.
func (r *Registry) Janitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Sweep(); n > 0 {
				r.logger.Debug("expired sessions removed", zap.Int("count", n), zap.Int("live", r.Len()))
			}
		}
	}
}
