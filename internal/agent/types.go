// Package agent implements the chat/report orchestration layer: intent
// classification, player-name resolution, tool dispatch, and evidence/prompt
// assembly for grounded text generation.
package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/cerebrochat/cerebrochat/internal/db"
)

// Tool names the data operation a plan selects.
type Tool string

// Tools the classifier may select.
const (
	ToolSearchPlayers        Tool = "search_players"
	ToolGetPlayerByID        Tool = "get_player_by_id"
	ToolTopPlayers           Tool = "top_players"
	ToolTopPlayersByPosition Tool = "top_players_by_position"
	ToolNone                 Tool = "none"
)

// Plan is the classifier's decision, consumed by the dispatcher.
type Plan struct {
	Tool Tool     `json:"tool"`
	Args PlanArgs `json:"args"`
}

// PlanArgs carries tool arguments. Name/PlayerName exist because models put
// player names under those keys despite the prompt instructing "query".
type PlanArgs struct {
	Query      string  `json:"query,omitempty"`
	Name       string  `json:"name,omitempty"`
	PlayerName string  `json:"playerName,omitempty"`
	ID         string  `json:"id,omitempty"`
	Metric     string  `json:"metric,omitempty"`
	Team       string  `json:"team,omitempty"`
	Position   string  `json:"position,omitempty"`
	Limit      int     `json:"limit,omitempty"`
	MinGames   float64 `json:"minGames,omitempty"`
}

// SearchQuery returns the first non-empty of query/name/playerName, trimmed.
func (a PlanArgs) SearchQuery() string {
	for _, v := range []string{a.Query, a.Name, a.PlayerName} {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}

// ToolResult pairs the tool that ran with its free-form result payload.
type ToolResult struct {
	Tool   string `json:"tool"`
	Result any    `json:"result"`
}

// ResolutionKind tags an unambiguous name-resolution outcome.
type ResolutionKind string

// Unambiguous resolution outcomes.
const (
	ResolutionExact           ResolutionKind = "exact"
	ResolutionSingleCandidate ResolutionKind = "single_candidate"
	ResolutionFuzzySingle     ResolutionKind = "fuzzy_single"
)

// Ambiguity tags an ambiguous name-resolution outcome; the caller must
// re-prompt the user instead of auto-fetching a record.
type Ambiguity string

// Ambiguous resolution outcomes.
const (
	AmbiguityDuplicateExactName    Ambiguity = "duplicate_exact_name"
	AmbiguitySimilarNameCandidates Ambiguity = "similar_name_candidates"
)

// Resolution is the structured outcome of resolving a free-text player name.
// Exactly one of Kind or Ambiguity is set when the query matched anything.
type Resolution struct {
	Query            string             `json:"query"`
	Kind             ResolutionKind     `json:"resolution,omitempty"`
	Ambiguity        Ambiguity          `json:"ambiguity,omitempty"`
	BestMatch        *db.PlayerSummary  `json:"bestMatch,omitempty"`
	ResolvedName     string             `json:"resolvedName,omitempty"`
	Player           *db.Player         `json:"player,omitempty"`
	Candidates       []db.PlayerSummary `json:"candidates,omitempty"`
	CandidateMatches []db.PlayerSummary `json:"candidateMatches,omitempty"`
}

// Target is the secondary extraction result used when routing fails.
type Target struct {
	PlayerName string `json:"playerName"`
	Team       string `json:"team"`
	Position   string `json:"position"`
}

// Evidence is the free-form grounding payload embedded into prompts.
type Evidence map[string]any

// PlayerStore is the subset of the statistics store the agent needs.
type PlayerStore interface {
	SearchPlayers(ctx context.Context, filter db.SearchFilter) ([]db.PlayerSummary, error)
	GetPlayer(ctx context.Context, id string) (*db.Player, error)
	TopPlayersByMetric(ctx context.Context, filter db.TopPlayersFilter) (*db.TopPlayersResult, error)
	CandidatePool(ctx context.Context, filter db.TopPlayersFilter) ([]db.PlayerRow, error)
}

// Generator is the prompt->text function the agent delegates to.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// ThresholdSource supplies per-metric 90th-percentile thresholds.
type ThresholdSource interface {
	Thresholds(ctx context.Context, minGames float64) (map[string]float64, error)
}

// Memory remembers the last resolved player per session, for pronoun
// references in follow-up turns.
type Memory interface {
	Get(sessionID string) *db.PlayerSummary
	Set(sessionID string, player db.PlayerSummary)
}

// ErrPlayerNotFound indicates a get_player_by_id lookup matched no row.
type ErrPlayerNotFound struct {
	ID string
}

func (e *ErrPlayerNotFound) Error() string {
	return fmt.Sprintf("player not found: %s", e.ID)
}
