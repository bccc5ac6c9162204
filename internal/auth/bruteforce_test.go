package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTracker(start time.Time) (*BruteForceTracker, *time.Time) {
	now := start
	tr := NewBruteForceTracker()
	tr.now = func() time.Time { return now }
	return tr, &now
}

func TestBruteForceThresholdTable(t *testing.T) {
	cases := []struct {
		name     string
		failures int
		want     time.Duration
	}{
		{"two failures no block", 2, 0},
		{"three failures one minute", 3, time.Minute},
		{"five failures five minutes", 5, 5 * time.Minute},
		{"seven failures fifteen minutes", 7, 15 * time.Minute},
		{"ten failures one hour", 10, time.Hour},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tr, _ := newTestTracker(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
			for i := 0; i < tc.failures; i++ {
				tr.Fail("user@example.com")
			}

			remaining, blocked := tr.Blocked("user@example.com")
			if tc.want == 0 {
				assert.False(t, blocked)
				return
			}
			require.True(t, blocked)
			assert.Equal(t, tc.want, remaining)
		})
	}
}

func TestBruteForceBlockExpires(t *testing.T) {
	tr, now := newTestTracker(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	for i := 0; i < 3; i++ {
		tr.Fail("user@example.com")
	}

	_, blocked := tr.Blocked("user@example.com")
	require.True(t, blocked)

	*now = now.Add(time.Minute + time.Second)
	_, blocked = tr.Blocked("user@example.com")
	assert.False(t, blocked)
}

func TestBruteForceClearOnSuccess(t *testing.T) {
	tr, _ := newTestTracker(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	for i := 0; i < 5; i++ {
		tr.Fail("user@example.com")
	}
	_, blocked := tr.Blocked("user@example.com")
	require.True(t, blocked)

	tr.Clear("user@example.com")

	_, blocked = tr.Blocked("user@example.com")
	assert.False(t, blocked)

	// Counter restarts from zero after a successful login.
	tr.Fail("user@example.com")
	tr.Fail("user@example.com")
	_, blocked = tr.Blocked("user@example.com")
	assert.False(t, blocked)
}

func TestBruteForceWindowForgivesOldAttempts(t *testing.T) {
	tr, now := newTestTracker(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))

	tr.Fail("user@example.com")
	tr.Fail("user@example.com")

	// Outside the observation window the old attempts no longer count.
	*now = now.Add(attemptWindow + time.Minute)
	tr.Fail("user@example.com")

	_, blocked := tr.Blocked("user@example.com")
	assert.False(t, blocked)
}

func TestBruteForceIdentifiersIndependent(t *testing.T) {
	tr, _ := newTestTracker(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	for i := 0; i < 3; i++ {
		tr.Fail("alice@example.com")
	}

	_, blocked := tr.Blocked("alice@example.com")
	assert.True(t, blocked)
	_, blocked = tr.Blocked("bob@example.com")
	assert.False(t, blocked)
}

func TestBruteForceSweepEvictsStaleEntries(t *testing.T) {
	tr, now := newTestTracker(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))

	tr.Fail("stale@example.com")
	for i := 0; i < 10; i++ {
		tr.Fail("blocked@example.com")
	}

	*now = now.Add(attemptWindow + time.Minute)
	tr.Sweep()

	tr.mu.Lock()
	_, staleKept := tr.entries["stale@example.com"]
	_, blockedKept := tr.entries["blocked@example.com"]
	tr.mu.Unlock()

	assert.False(t, staleKept, "stale entry should be evicted")
	assert.True(t, blockedKept, "entry with a live block must survive the sweep")
}
