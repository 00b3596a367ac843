package ratelimit

import (
	"sync"
	"time"
)

// Decision is the outcome of an admission check.
type Decision struct {
	Allowed   bool
	Remaining int
	// RetryAfter is how long until the oldest counted event leaves the
	// window. Zero when Allowed is true.
	RetryAfter time.Duration
}

// Usage reports the current consumption of a key without recording an event.
type Usage struct {
	Used      int
	Remaining int
	ResetIn   time.Duration
}

// Limiter admits at most `limit` events per key within a sliding window.
// A map-level lock guards membership while each key carries its own
// lock, so admissions for different keys never contend. Checking and
// recording for one key are a single atomic step, so concurrent callers
// can never jointly exceed the limit.
type Limiter struct {
	limit  int
	window time.Duration
	now    func() time.Time

	mu   sync.RWMutex
	keys map[string]*entry
}

type entry struct {
	mu sync.Mutex
	// events holds the timestamps still inside the window, oldest first.
	events []time.Time
}

// New creates a limiter allowing `limit` events per `window` for each key.
func New(limit int, window time.Duration) *Limiter {
	return &Limiter{
		limit:  limit,
		window: window,
		now:    time.Now,
		keys:   make(map[string]*entry),
	}
}

// Admit checks the key against the limit and, when allowed, records the
// event in the same atomic step.
func (l *Limiter) Admit(key string) Decision {
	now := l.now()

	e := l.entryFor(key)
	e.mu.Lock()
	defer e.mu.Unlock()
	e.prune(now, l.window)

	if len(e.events) >= l.limit {
		retryAfter := e.events[0].Add(l.window).Sub(now)
		if retryAfter < 0 {
			retryAfter = 0
		}
		return Decision{Allowed: false, Remaining: 0, RetryAfter: retryAfter}
	}

	e.events = append(e.events, now)
	return Decision{Allowed: true, Remaining: l.limit - len(e.events)}
}

// Peek reports the key's current usage without consuming quota.
func (l *Limiter) Peek(key string) Usage {
	now := l.now()

	l.mu.RLock()
	e := l.keys[key]
	l.mu.RUnlock()
	if e == nil {
		return Usage{Used: 0, Remaining: l.limit}
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.prune(now, l.window)
	if len(e.events) == 0 {
		return Usage{Used: 0, Remaining: l.limit}
	}

	return Usage{
		Used:      len(e.events),
		Remaining: l.limit - len(e.events),
		ResetIn:   e.events[0].Add(l.window).Sub(now),
	}
}

// Limit returns the configured per-window limit.
func (l *Limiter) Limit() int { return l.limit }

// Window returns the configured window duration.
func (l *Limiter) Window() time.Duration { return l.window }

// entryFor returns the key's entry, creating it on first use. Entries
// are never removed, so a returned pointer stays valid.
func (l *Limiter) entryFor(key string) *entry {
	l.mu.RLock()
	e := l.keys[key]
	l.mu.RUnlock()
	if e != nil {
		return e
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if e = l.keys[key]; e == nil {
		e = &entry{}
		l.keys[key] = e
	}
	return e
}

func (e *entry) prune(now time.Time, window time.Duration) {
	cutoff := now.Add(-window)
	idx := 0
	for idx < len(e.events) && !e.events[idx].After(cutoff) {
		idx++
	}
	if idx > 0 {
		e.events = append(e.events[:0], e.events[idx:]...)
	}
}
