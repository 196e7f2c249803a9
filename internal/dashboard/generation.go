package dashboard

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

// ErrStaleResponse is returned when a newer request for the same render target has started.
var ErrStaleResponse = errors.New("response superseded by a newer request")

const sweepInterval = time.Minute

type generation struct {
	counter atomic.Uint64
	expires time.Time
}

// Generations numbers the requests issued for each render target so that only the
// latest one may render. Targets are dropped once their expiry has passed.
type Generations struct {
	mu        sync.Mutex
	entries   map[string]*generation
	lastSweep time.Time
	now       func() time.Time
}

// NewGenerations constructs an empty tracker.
func NewGenerations() *Generations {
	return &Generations{entries: make(map[string]*generation), now: time.Now}
}

// Ticket identifies one request for a render target.
type Ticket struct {
	counter *atomic.Uint64
	value   uint64
}

// Begin starts a new request for target, superseding earlier ones. The target is
// kept at least until expires, normally the expiry of the session that owns it.
func (g *Generations) Begin(target string, expires time.Time) Ticket {
	now := g.now()

	g.mu.Lock()
	if now.Sub(g.lastSweep) >= sweepInterval {
		g.sweepLocked(now)
	}
	entry, ok := g.entries[target]
	if !ok {
		entry = &generation{}
		g.entries[target] = entry
	}
	if expires.After(entry.expires) {
		entry.expires = expires
	}
	g.mu.Unlock()

	return Ticket{counter: &entry.counter, value: entry.counter.Add(1)}
}

func (g *Generations) sweepLocked(now time.Time) {
	for target, entry := range g.entries {
		if !now.Before(entry.expires) {
			delete(g.entries, target)
		}
	}
	g.lastSweep = now
}

// Check returns ErrStaleResponse when a newer request for the same target exists.
func (t Ticket) Check() error {
	if t.counter == nil || t.counter.Load() != t.value {
		return ErrStaleResponse
	}
	return nil
}

// Forget drops the counter of target.
func (g *Generations) Forget(target string) {
	g.mu.Lock()
	delete(g.entries, target)
	g.mu.Unlock()
}

// Len reports how many targets are tracked.
func (g *Generations) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.entries)
}
