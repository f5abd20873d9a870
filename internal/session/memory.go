// Package session keeps a per-session memory of the last player a
// conversation resolved, so follow-up turns can say "him" or "her" instead
// of repeating the name.
package session

import (
	"sync"
	"time"

	"github.com/cerebrochat/cerebrochat/internal/db"
)

const (
	// TTL is how long a remembered player stays valid.
	TTL = 30 * time.Minute

	// maxSessionIDLen caps caller-supplied session ids. Longer ids are
	// truncated, not rejected.
	maxSessionIDLen = 128

	// sweepThreshold bounds map growth: once the map holds this many
	// entries, writes trigger a full expiry sweep.
	sweepThreshold = 4096
)

type entry struct {
	player   db.PlayerSummary
	storedAt time.Time
}

// Memory is an in-process TTL map from session id to the last resolved
// player. Safe for concurrent use. Entries are evicted lazily on read and
// swept in bulk when the map grows past a threshold.
type Memory struct {
	mu      sync.Mutex
	entries map[string]entry
	now     func() time.Time
}

// NewMemory creates an empty session memory.
func NewMemory() *Memory {
	return &Memory{
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

// Get returns the remembered player for a session, or nil when absent or
// expired. Expired entries are evicted on read.
func (m *Memory) Get(sessionID string) *db.PlayerSummary {
	key := truncateID(sessionID)
	if key == "" {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		return nil
	}
	if m.now().Sub(e.storedAt) > TTL {
		delete(m.entries, key)
		return nil
	}
	player := e.player
	return &player
}

// Set remembers a player for a session, overwriting any previous entry.
// No-op when the player has no identifier or the session id is empty.
func (m *Memory) Set(sessionID string, player db.PlayerSummary) {
	key := truncateID(sessionID)
	if key == "" || player.UniqueID == "" {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.entries) >= sweepThreshold {
		m.sweepLocked()
	}
	m.entries[key] = entry{player: player, storedAt: m.now()}
}

// sweepLocked drops all expired entries. Caller holds mu.
func (m *Memory) sweepLocked() {
	cutoff := m.now().Add(-TTL)
	for key, e := range m.entries {
		if e.storedAt.Before(cutoff) {
			delete(m.entries, key)
		}
	}
}

func truncateID(sessionID string) string {
	if len(sessionID) > maxSessionIDLen {
		return sessionID[:maxSessionIDLen]
	}
	return sessionID
}
