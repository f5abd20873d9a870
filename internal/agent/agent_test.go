package agent

import (
	"context"
	"strings"

	"github.com/cerebrochat/cerebrochat/internal/db"
)

// fakeStore is an in-memory PlayerStore with ILIKE-style substring search.
type fakeStore struct {
	summaries []db.PlayerSummary
	players   map[string]*db.Player
	topResult *db.TopPlayersResult
	pool      []db.PlayerRow

	searchCalls []db.SearchFilter
	getCalls    []string
	poolCalls   []db.TopPlayersFilter
}

func (f *fakeStore) SearchPlayers(_ context.Context, filter db.SearchFilter) ([]db.PlayerSummary, error) {
	f.searchCalls = append(f.searchCalls, filter)
	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	query := strings.ToLower(filter.Query)
	var out []db.PlayerSummary
	for _, s := range f.summaries {
		if query != "" && !strings.Contains(strings.ToLower(s.Name), query) {
			continue
		}
		if filter.Position != "" && !strings.EqualFold(s.Position, filter.Position) {
			continue
		}
		if filter.Team != "" && !strings.Contains(strings.ToLower(s.Team), strings.ToLower(filter.Team)) {
			continue
		}
		out = append(out, s)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *fakeStore) GetPlayer(_ context.Context, id string) (*db.Player, error) {
	f.getCalls = append(f.getCalls, id)
	return f.players[id], nil
}

func (f *fakeStore) TopPlayersByMetric(_ context.Context, filter db.TopPlayersFilter) (*db.TopPlayersResult, error) {
	if f.topResult != nil {
		return f.topResult, nil
	}
	return &db.TopPlayersResult{Metric: db.SafeMetric(filter.Metric)}, nil
}

func (f *fakeStore) CandidatePool(_ context.Context, filter db.TopPlayersFilter) ([]db.PlayerRow, error) {
	f.poolCalls = append(f.poolCalls, filter)
	return f.pool, nil
}

// fakeGen replays canned replies and records every prompt it saw.
type fakeGen struct {
	replies []string
	prompts []string
	err     error
	next    int
}

func (g *fakeGen) Generate(_ context.Context, prompt string) (string, error) {
	g.prompts = append(g.prompts, prompt)
	if g.err != nil {
		return "", g.err
	}
	if g.next < len(g.replies) {
		reply := g.replies[g.next]
		g.next++
		return reply, nil
	}
	return "ok", nil
}

// fakeThresholds serves a fixed threshold map.
type fakeThresholds struct {
	thresholds map[string]float64
	calls      int
}

func (f *fakeThresholds) Thresholds(_ context.Context, _ float64) (map[string]float64, error) {
	f.calls++
	return f.thresholds, nil
}

// fakeMemory is a plain map-backed Memory without TTL.
type fakeMemory struct {
	entries map[string]db.PlayerSummary
}

func newFakeMemory() *fakeMemory {
	return &fakeMemory{entries: make(map[string]db.PlayerSummary)}
}

func (m *fakeMemory) Get(sessionID string) *db.PlayerSummary {
	if p, ok := m.entries[sessionID]; ok {
		return &p
	}
	return nil
}

func (m *fakeMemory) Set(sessionID string, player db.PlayerSummary) {
	m.entries[sessionID] = player
}

func summary(id, name, team, position string) db.PlayerSummary {
	return db.PlayerSummary{
		UniqueID: id,
		Name:     name,
		Team:     team,
		Position: position,
		League:   "NCAA D1",
		Class:    "JR",
	}
}

func fullPlayer(id, name string, pts float64) *db.Player {
	return &db.Player{
		UniqueID: id,
		Name:     name,
		Team:     "State",
		Position: "PG",
		League:   "NCAA D1",
		Class:    "JR",
		PtsG:     ptr(pts),
		G:        ptr(30.0),
	}
}

func ptr(v float64) *float64 { return &v }

func poolRow(id, name string, metrics map[string]float64) db.PlayerRow {
	m := make(map[string]*float64, len(metrics))
	for k, v := range metrics {
		m[k] = ptr(v)
	}
	return db.PlayerRow{
		PlayerSummary: summary(id, name, "State", "PG"),
		Games:         ptr(30.0),
		Metrics:       m,
	}
}
