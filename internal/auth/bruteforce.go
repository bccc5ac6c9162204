package auth

import (
	"sync"
	"time"
)

// blockSteps maps failed-attempt counts to block durations. The largest
// threshold reached wins.
var blockSteps = []struct {
	failures int
	duration time.Duration
}{
	{10, time.Hour},
	{7, 15 * time.Minute},
	{5, 5 * time.Minute},
	{3, time.Minute},
}

// attemptWindow is how long a failed attempt counts against the identifier.
const attemptWindow = 15 * time.Minute

type attemptEntry struct {
	failures     []time.Time
	blockedUntil time.Time
}

// BruteForceTracker counts failed logins per identifier and applies
// progressive blocks. In-memory and process-local; a multi-instance
// deployment needs an external keyed store.
type BruteForceTracker struct {
	mu      sync.Mutex
	entries map[string]*attemptEntry
	now     func() time.Time
	stop    chan struct{}
}

func NewBruteForceTracker() *BruteForceTracker {
	return &BruteForceTracker{
		entries: make(map[string]*attemptEntry),
		now:     time.Now,
		stop:    make(chan struct{}),
	}
}

// Fail records a failed attempt and updates the block, if any.
func (t *BruteForceTracker) Fail(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	entry, ok := t.entries[id]
	if !ok {
		entry = &attemptEntry{}
		t.entries[id] = entry
	}

	entry.failures = pruneBefore(entry.failures, now.Add(-attemptWindow))
	entry.failures = append(entry.failures, now)

	for _, step := range blockSteps {
		if len(entry.failures) >= step.failures {
			until := now.Add(step.duration)
			if until.After(entry.blockedUntil) {
				entry.blockedUntil = until
			}
			break
		}
	}
}

// Blocked reports whether the identifier is currently blocked and for how
// much longer.
func (t *BruteForceTracker) Blocked(id string) (time.Duration, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	entry, ok := t.entries[id]
	if !ok {
		return 0, false
	}
	now := t.now()
	if entry.blockedUntil.After(now) {
		return entry.blockedUntil.Sub(now), true
	}
	return 0, false
}

// Clear forgets the identifier entirely. Called on successful login.
func (t *BruteForceTracker) Clear(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.entries, id)
}

// Sweep drops entries with no live block and no attempts inside the window.
func (t *BruteForceTracker) Sweep() {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	cutoff := now.Add(-attemptWindow)
	for id, entry := range t.entries {
		entry.failures = pruneBefore(entry.failures, cutoff)
		if len(entry.failures) == 0 && !entry.blockedUntil.After(now) {
			delete(t.entries, id)
		}
	}
}

// StartSweep runs Sweep on the given interval until Stop.
func (t *BruteForceTracker) StartSweep(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			t.Sweep()
		case <-t.stop:
			return
		}
	}
}

// Stop terminates the sweep goroutine.
func (t *BruteForceTracker) Stop() {
	close(t.stop)
}

func pruneBefore(ts []time.Time, cutoff time.Time) []time.Time {
	kept := ts[:0]
	for _, v := range ts {
		if v.After(cutoff) {
			kept = append(kept, v)
		}
	}
	return kept
}

// loginTracker guards POST /login.
var loginTracker = NewBruteForceTracker()

// StartLoginSweep launches the background sweep for the login tracker.
func StartLoginSweep() {
	go loginTracker.StartSweep(5 * time.Minute)
}
