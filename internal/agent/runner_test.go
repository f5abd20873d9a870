package agent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cerebrochat/cerebrochat/internal/db"
)

func TestChatDeterministicRouteSkipsLLMClassifier(t *testing.T) {
	store := &fakeStore{
		topResult: &db.TopPlayersResult{
			Metric: "ast_g",
			Players: []db.PlayerRow{
				poolRow("p1", "Jane Doe", map[string]float64{"ast_g": 8.1}),
			},
		},
	}
	gen := &fakeGen{replies: []string{"Jane Doe leads PGs with 8.1 assists."}}
	runner := NewRunner(store, gen, &fakeThresholds{}, newFakeMemory(), nil)

	result, err := runner.Chat(context.Background(), "s1", "who is the best PG by assists")
	require.NoError(t, err)

	assert.Equal(t, string(ToolTopPlayers), result.ToolUsed)
	// Exactly one generation call: the reply. The routing never reached the
	// free-text classifier.
	require.Len(t, gen.prompts, 1)
	assert.Contains(t, gen.prompts[0], "ast_g")
	assert.Contains(t, gen.prompts[0], "who is the best PG by assists")
}

func TestChatAmbiguityRepliesWithoutGeneration(t *testing.T) {
	store := &fakeStore{
		summaries: []db.PlayerSummary{
			summary("p1", "Jane Doe", "State", "PG"),
			summary("p2", "Jane Doe", "Tech", "SG"),
		},
	}
	gen := &fakeGen{replies: []string{`{"tool":"search_players","args":{"query":"Jane Doe"}}`}}
	runner := NewRunner(store, gen, &fakeThresholds{}, newFakeMemory(), nil)

	result, err := runner.Chat(context.Background(), "s1", "tell me about Jane Doe")
	require.NoError(t, err)

	assert.Contains(t, result.Reply, "State")
	assert.Contains(t, result.Reply, "Tech")
	assert.Len(t, gen.prompts, 1, "only the routing call; the disambiguation reply is built locally")
}

func TestChatRemembersResolvedPlayer(t *testing.T) {
	store := &fakeStore{
		summaries: []db.PlayerSummary{summary("p1", "Jane Doe", "State", "PG")},
		players:   map[string]*db.Player{"p1": fullPlayer("p1", "Jane Doe", 21.4)},
	}
	gen := &fakeGen{replies: []string{
		`{"tool":"search_players","args":{"query":"Jane Doe"}}`,
		"Jane Doe averages 21.4 points.",
	}}
	memory := newFakeMemory()
	runner := NewRunner(store, gen, &fakeThresholds{}, memory, nil)

	_, err := runner.Chat(context.Background(), "s1", "tell me about Jane Doe")
	require.NoError(t, err)

	remembered := memory.Get("s1")
	require.NotNil(t, remembered)
	assert.Equal(t, "p1", remembered.UniqueID)
}

func TestChatPronounUsesSessionMemory(t *testing.T) {
	store := &fakeStore{
		players: map[string]*db.Player{"p1": fullPlayer("p1", "Jane Doe", 21.4)},
	}
	gen := &fakeGen{replies: []string{
		`{"tool":"none"}`,
		`{"playerName":"","team":"","position":""}`,
		"She averages 21.4 points per game.",
	}}
	memory := newFakeMemory()
	memory.Set("s1", summary("p1", "Jane Doe", "State", "PG"))
	runner := NewRunner(store, gen, &fakeThresholds{}, memory, nil)

	result, err := runner.Chat(context.Background(), "s1", "how many points does she average")
	require.NoError(t, err)

	assert.Equal(t, string(ToolGetPlayerByID), result.ToolUsed)
	assert.Equal(t, []string{"p1"}, store.getCalls)
}

func TestChatFuzzyMatchAnnouncesResolvedName(t *testing.T) {
	store := &fakeStore{
		summaries: []db.PlayerSummary{summary("p1", "Jane Doe", "State", "PG")},
		players:   map[string]*db.Player{"p1": fullPlayer("p1", "Jane Doe", 21.4)},
	}
	gen := &fakeGen{replies: []string{
		`{"tool":"search_players","args":{"query":"Janne Doe"}}`,
		"21.4 points per game.",
	}}
	runner := NewRunner(store, gen, &fakeThresholds{}, newFakeMemory(), nil)

	result, err := runner.Chat(context.Background(), "s1", "how good is Janne Doe")
	require.NoError(t, err)

	assert.Contains(t, result.Reply, "Showing results for Jane Doe")
}

func TestReportExtractsSubjectAndGroundsPrompt(t *testing.T) {
	store := &fakeStore{
		summaries: []db.PlayerSummary{summary("p1", "Jane Doe", "State", "PG")},
		players:   map[string]*db.Player{"p1": fullPlayer("p1", "Jane Doe", 21.4)},
	}
	gen := &fakeGen{replies: []string{
		`{"playerName":"Jane Doe","team":"","position":""}`,
		"1) Player/Cohort Overview ...",
	}}
	runner := NewRunner(store, gen, &fakeThresholds{}, newFakeMemory(), nil)

	result, err := runner.Report(context.Background(), ReportInput{
		Message: "write me a scouting report for Jane Doe",
	})
	require.NoError(t, err)

	assert.Equal(t, "search_players+get_player_by_id", result.ToolUsed)
	require.Len(t, gen.prompts, 2)
	reportPrompt := gen.prompts[1]
	assert.Contains(t, reportPrompt, "Jane Doe")
	assert.Contains(t, reportPrompt, "21.4", "the stat line is embedded verbatim")
	assert.Contains(t, reportPrompt, "Key Strengths")
}

func TestReportByPlayerID(t *testing.T) {
	store := &fakeStore{
		players: map[string]*db.Player{"p1": fullPlayer("p1", "Jane Doe", 21.4)},
	}
	gen := &fakeGen{replies: []string{"report text"}}
	runner := NewRunner(store, gen, &fakeThresholds{}, newFakeMemory(), nil)

	result, err := runner.Report(context.Background(), ReportInput{PlayerID: "p1"})
	require.NoError(t, err)
	assert.Equal(t, string(ToolGetPlayerByID), result.ToolUsed)
	assert.Equal(t, "report text", result.Report)
}

func TestReportByPlayerIDNotFound(t *testing.T) {
	runner := NewRunner(&fakeStore{players: map[string]*db.Player{}}, &fakeGen{},
		&fakeThresholds{}, newFakeMemory(), nil)

	_, err := runner.Report(context.Background(), ReportInput{PlayerID: "missing"})
	var notFound *ErrPlayerNotFound
	assert.ErrorAs(t, err, &notFound)
}

func TestReportWithoutSubjectDefaultsToScoringLeaders(t *testing.T) {
	store := &fakeStore{
		topResult: &db.TopPlayersResult{Metric: "pts_g"},
	}
	gen := &fakeGen{replies: []string{
		`{"playerName":"","team":"","position":""}`,
		`{"tool":"none"}`,
		"cohort report",
	}}
	runner := NewRunner(store, gen, &fakeThresholds{}, newFakeMemory(), nil)

	result, err := runner.Report(context.Background(), ReportInput{
		Message: "give me a report on the top scorers this season",
	})
	require.NoError(t, err)
	assert.Equal(t, string(ToolTopPlayers), result.ToolUsed)
	assert.Equal(t, "cohort report", result.Report)
}

func TestReportRunsRouterSearchPlan(t *testing.T) {
	store := &fakeStore{
		summaries: []db.PlayerSummary{summary("p1", "Jane Doe", "State", "PG")},
	}
	gen := &fakeGen{replies: []string{
		`{"playerName":"","team":"","position":""}`,
		`{"tool":"search_players","args":{"query":"State guards"}}`,
		"roster report",
	}}
	runner := NewRunner(store, gen, &fakeThresholds{}, newFakeMemory(), nil)

	result, err := runner.Report(context.Background(), ReportInput{
		Message: "report on the State guards",
	})
	require.NoError(t, err)

	// The router's search plan runs as-is instead of being replaced with
	// the scoring-leaders default.
	assert.Equal(t, string(ToolSearchPlayers), result.ToolUsed)
	require.Len(t, store.searchCalls, 1)
	assert.Equal(t, "State guards", store.searchCalls[0].Query)
}

func TestChatReportIntentDelegates(t *testing.T) {
	store := &fakeStore{
		summaries: []db.PlayerSummary{summary("p1", "Jane Doe", "State", "PG")},
		players:   map[string]*db.Player{"p1": fullPlayer("p1", "Jane Doe", 21.4)},
	}
	gen := &fakeGen{replies: []string{
		`{"playerName":"Jane Doe","team":"","position":""}`,
		"full report",
	}}
	runner := NewRunner(store, gen, &fakeThresholds{}, newFakeMemory(), nil)

	result, err := runner.Chat(context.Background(), "s1", "write me a scouting report for Jane Doe")
	require.NoError(t, err)
	assert.Equal(t, "full report", result.Reply)
	assert.Contains(t, result.ToolUsed, "chat->report:")
}

func TestPickBestPlayerMatch(t *testing.T) {
	matches := []db.PlayerSummary{
		summary("p1", "Jane Doering", "State", "PG"),
		summary("p2", "Jane Doe", "Tech", "SG"),
	}
	best := pickBestPlayerMatch("Jane Doe", matches)
	require.NotNil(t, best)
	assert.Equal(t, "p2", best.UniqueID, "exact normalized match wins over prefix")

	best = pickBestPlayerMatch("Jane", matches)
	require.NotNil(t, best)
	assert.Equal(t, "p1", best.UniqueID, "prefix falls back to first prefix match")

	assert.Nil(t, pickBestPlayerMatch("Jane", nil))
}
