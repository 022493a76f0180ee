// Package notice keeps short-lived user notices such as "illegal move".
package notice

import (
	"sync"
	"time"
)

// Notice is one message shown until its deadline.
type Notice struct {
	Message string
	Posted  time.Time
	Expires time.Time
}

// Tray is an owned collection of notices. The zero value is not usable;
// create one with New. A Tray is safe for concurrent use.
type Tray struct {
	now func() time.Time

	mu      sync.Mutex
	notices []Notice
}

// Option configures a Tray.
type Option func(*Tray)

// WithClock sets the clock used to stamp and expire notices.
func WithClock(now func() time.Time) Option {
	return func(t *Tray) {
		t.now = now
	}
}

// New creates an empty Tray.
func New(opts ...Option) *Tray {
	t := &Tray{now: time.Now}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Add posts msg for ttl.
func (t *Tray) Add(msg string, ttl time.Duration) Notice {
	now := t.now()
	n := Notice{Message: msg, Posted: now, Expires: now.Add(ttl)}

	t.mu.Lock()
	t.notices = append(t.notices, n)
	t.mu.Unlock()
	return n
}

// Update drops every notice that has expired at now and returns how many
// were removed.
func (t *Tray) Update(now time.Time) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	kept := t.notices[:0]
	for _, n := range t.notices {
		if now.Before(n.Expires) {
			kept = append(kept, n)
		}
	}
	removed := len(t.notices) - len(kept)
	clear(t.notices[len(kept):])
	t.notices = kept
	return removed
}

// Tick is Update with the tray's clock.
func (t *Tray) Tick() int {
	return t.Update(t.now())
}

// Active returns the live notices, oldest first.
func (t *Tray) Active() []Notice {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Notice, len(t.notices))
	copy(out, t.notices)
	return out
}

// Len returns the number of notices held.
func (t *Tray) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.notices)
}
