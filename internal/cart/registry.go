package cart

import (
	"context"
	"sync"
	"time"
)

// Registry keeps one cart per session id and forgets carts left idle past ttl.
type Registry struct {
	mu      sync.Mutex
	carts   map[string]*entry
	creator OrderCreator
	ttl     time.Duration
	now     func() time.Time
}

type entry struct {
	cart     *Cart
	lastSeen time.Time
}

// NewRegistry creates a registry that drops carts idle for longer than ttl.
func NewRegistry(creator OrderCreator, ttl time.Duration) *Registry {
	return &Registry{
		carts:   make(map[string]*entry),
		creator: creator,
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns the session's cart, creating it on first use.
func (r *Registry) Get(sessionID string) *Cart {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.carts[sessionID]
	if !ok {
		e = &entry{cart: New(r.creator)}
		e.cart.now = r.now
		r.carts[sessionID] = e
	}
	e.lastSeen = r.now()
	return e.cart
}

// Drop forgets the session's cart.
func (r *Registry) Drop(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.carts, sessionID)
}

// Len returns the number of live carts.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.carts)
}

// Sweep drops carts idle longer than ttl and returns how many went.
func (r *Registry) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.now().Add(-r.ttl)
	dropped := 0
	for id, e := range r.carts {
		if e.lastSeen.Before(cutoff) {
			delete(r.carts, id)
			dropped++
		}
	}
	return dropped
}

// Run sweeps every interval until ctx is done.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep()
		}
	}
}
