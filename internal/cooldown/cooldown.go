// Package cooldown suppresses repeated attendance events for one identity
// within a fixed window.
package cooldown

import "time"

// Tracker holds the last accepted sighting per identity. It is owned by the
// recognition loop goroutine and is not safe for concurrent use.
type Tracker struct {
	window   time.Duration
	lastSeen map[string]time.Time
}

// NewTracker creates a tracker with the given window.
func NewTracker(window time.Duration) *Tracker {
	return &Tracker{
		window:   window,
		lastSeen: make(map[string]time.Time),
	}
}

// ShouldSuppress reports whether name was recorded less than the window before now.
func (t *Tracker) ShouldSuppress(name string, now time.Time) bool {
	last, ok := t.lastSeen[name]
	if !ok {
		return false
	}
	return now.Sub(last) < t.window
}

// Remaining returns how long name stays suppressed after now, zero if it is eligible.
func (t *Tracker) Remaining(name string, now time.Time) time.Duration {
	last, ok := t.lastSeen[name]
	if !ok {
		return 0
	}
	if left := t.window - now.Sub(last); left > 0 {
		return left
	}
	return 0
}

// Record stores now as the last accepted sighting of name.
// Call it only after the attendance record has been written.
func (t *Tracker) Record(name string, now time.Time) {
	t.lastSeen[name] = now
}

// LastSeen returns the last recorded sighting of name.
func (t *Tracker) LastSeen(name string) (time.Time, bool) {
	last, ok := t.lastSeen[name]
	return last, ok
}

// Len returns the number of tracked identities.
func (t *Tracker) Len() int {
	return len(t.lastSeen)
}
