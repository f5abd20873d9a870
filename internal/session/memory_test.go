package session

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cerebrochat/cerebrochat/internal/db"
)

func player(id string) db.PlayerSummary {
	return db.PlayerSummary{UniqueID: id, Name: "Jane Doe", Team: "State"}
}

func TestSetThenGet(t *testing.T) {
	m := NewMemory()
	m.Set("s1", player("p1"))

	got := m.Get("s1")
	require.NotNil(t, got)
	assert.Equal(t, "p1", got.UniqueID)
}

func TestGetUnknownSession(t *testing.T) {
	m := NewMemory()
	assert.Nil(t, m.Get("never-seen"))
}

func TestExpiryAfterTTL(t *testing.T) {
	m := NewMemory()
	now := time.Now()
	m.now = func() time.Time { return now }

	m.Set("s1", player("p1"))

	m.now = func() time.Time { return now.Add(TTL - time.Second) }
	assert.NotNil(t, m.Get("s1"), "still fresh just inside the window")

	m.now = func() time.Time { return now.Add(TTL + time.Second) }
	assert.Nil(t, m.Get("s1"), "expired entries are evicted on read")
	assert.Empty(t, m.entries, "lazy eviction removes the entry")
}

func TestSetWithoutPlayerIDIsNoOp(t *testing.T) {
	m := NewMemory()
	m.Set("s1", db.PlayerSummary{Name: "No ID"})
	assert.Nil(t, m.Get("s1"))
}

func TestEmptySessionIDIsNoOp(t *testing.T) {
	m := NewMemory()
	m.Set("", player("p1"))
	assert.Nil(t, m.Get(""))
}

func TestLongSessionIDsShareTruncatedKey(t *testing.T) {
	m := NewMemory()
	long := strings.Repeat("x", 200)
	m.Set(long, player("p1"))

	// Any id with the same first 128 characters reads the same entry.
	other := strings.Repeat("x", 128) + "different-tail"
	got := m.Get(other)
	require.NotNil(t, got)
	assert.Equal(t, "p1", got.UniqueID)
}

func TestOverwrite(t *testing.T) {
	m := NewMemory()
	m.Set("s1", player("p1"))
	m.Set("s1", player("p2"))

	got := m.Get("s1")
	require.NotNil(t, got)
	assert.Equal(t, "p2", got.UniqueID)
}

func TestSweepDropsExpiredEntries(t *testing.T) {
	m := NewMemory()
	now := time.Now()
	m.now = func() time.Time { return now }

	for i := 0; i < sweepThreshold; i++ {
		m.Set("s"+string(rune(i)), player("p1"))
	}

	m.now = func() time.Time { return now.Add(TTL + time.Minute) }
	m.Set("fresh", player("p2"))

	assert.LessOrEqual(t, len(m.entries), 2, "write past the threshold sweeps expired entries")
	require.NotNil(t, m.Get("fresh"))
}
