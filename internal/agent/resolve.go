package agent

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/cerebrochat/cerebrochat/internal/db"
)

const (
	// fuzzyScoreThreshold is the minimum token-overlap score for a fuzzy
	// candidate to count as a plausible match.
	fuzzyScoreThreshold = 0.45

	// fuzzyTokenSearchLimit caps each per-token fallback search.
	fuzzyTokenSearchLimit = 25

	// maxCandidateReplies caps how many candidates an ambiguous outcome
	// surfaces to the user.
	maxCandidateReplies = 5
)

// NormalizeName lowercases a name and collapses every run of
// non-alphanumeric characters to a single space.
func NormalizeName(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	lastSpace := true
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			lastSpace = false
		} else if !lastSpace {
			b.WriteByte(' ')
			lastSpace = true
		}
	}
	return strings.TrimSpace(b.String())
}

// TokenizeName splits a normalized name into its tokens.
func TokenizeName(name string) []string {
	return strings.Fields(NormalizeName(name))
}

// SimilarityScore measures token-set overlap between two names:
// |intersection| / max(|tokensA|, |tokensB|). Returns 0 when either
// side has no tokens.
func SimilarityScore(a, b string) float64 {
	setA := tokenSet(a)
	setB := tokenSet(b)
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}
	shared := 0
	for token := range setA {
		if setB[token] {
			shared++
		}
	}
	larger := len(setA)
	if len(setB) > larger {
		larger = len(setB)
	}
	return float64(shared) / float64(larger)
}

func tokenSet(name string) map[string]bool {
	set := make(map[string]bool)
	for _, token := range TokenizeName(name) {
		set[token] = true
	}
	return set
}

// fallbackTokens picks the tokens used for per-token fuzzy searches: the
// first and last tokens of the query, skipping tokens shorter than two
// characters, at most two tokens total.
func fallbackTokens(query string) []string {
	tokens := TokenizeName(query)
	var picked []string
	appendToken := func(t string) {
		if len(t) < 2 {
			return
		}
		for _, existing := range picked {
			if existing == t {
				return
			}
		}
		picked = append(picked, t)
	}
	if len(tokens) > 0 {
		appendToken(tokens[0])
	}
	if len(tokens) > 1 {
		appendToken(tokens[len(tokens)-1])
	}
	return picked
}

// Resolver turns a free-text player name into one of six structured
// outcomes: exact, single_candidate, fuzzy_single, duplicate_exact_name,
// similar_name_candidates, or a raw match list when nothing resolves.
type Resolver struct {
	store  PlayerStore
	logger *zap.Logger
}

// NewResolver creates a resolver over the given store.
func NewResolver(store PlayerStore, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{store: store, logger: logger}
}

// Resolve runs the full resolution ladder for a search plan. It never
// auto-fetches a record on an ambiguous outcome.
func (r *Resolver) Resolve(ctx context.Context, args PlanArgs) (*ToolResult, error) {
	filter := db.SearchFilter{
		Query:    args.SearchQuery(),
		Team:     args.Team,
		Position: args.Position,
		Limit:    args.Limit,
	}

	matches, err := r.store.SearchPlayers(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("player search failed: %w", err)
	}

	query := filter.Query
	if query == "" {
		return &ToolResult{Tool: string(ToolSearchPlayers), Result: matches}, nil
	}

	normalizedQuery := NormalizeName(query)
	var exact []db.PlayerSummary
	for _, m := range matches {
		if NormalizeName(m.Name) == normalizedQuery {
			exact = append(exact, m)
		}
	}

	switch {
	case len(exact) == 1:
		return r.resolved(ctx, query, ResolutionExact, exact[0], matches)
	case len(exact) > 1:
		r.logger.Info("ambiguous player name",
			zap.String("query", query),
			zap.String("ambiguity", string(AmbiguityDuplicateExactName)),
			zap.Int("candidates", len(exact)))
		return &ToolResult{
			Tool: string(ToolSearchPlayers),
			Result: &Resolution{
				Query:      query,
				Ambiguity:  AmbiguityDuplicateExactName,
				Candidates: capCandidates(exact),
			},
		}, nil
	}

	if len(matches) == 1 {
		return r.resolved(ctx, query, ResolutionSingleCandidate, matches[0], matches)
	}

	if len(matches) == 0 {
		return r.resolveFuzzy(ctx, query, args)
	}

	// Multiple partial matches, none exact: hand the list back as-is.
	return &ToolResult{Tool: string(ToolSearchPlayers), Result: matches}, nil
}

// resolveFuzzy runs per-token fallback searches and scores the merged
// candidates against the original query.
func (r *Resolver) resolveFuzzy(ctx context.Context, query string, args PlanArgs) (*ToolResult, error) {
	var merged []db.PlayerSummary
	seen := make(map[string]bool)
	for _, token := range fallbackTokens(query) {
		found, err := r.store.SearchPlayers(ctx, db.SearchFilter{
			Query:    token,
			Team:     args.Team,
			Position: args.Position,
			Limit:    fuzzyTokenSearchLimit,
		})
		if err != nil {
			return nil, fmt.Errorf("fuzzy player search failed: %w", err)
		}
		for _, m := range found {
			if seen[m.UniqueID] {
				continue
			}
			seen[m.UniqueID] = true
			merged = append(merged, m)
		}
	}

	type scored struct {
		player db.PlayerSummary
		score  float64
	}
	var plausible []scored
	for _, m := range merged {
		if s := SimilarityScore(query, m.Name); s >= fuzzyScoreThreshold {
			plausible = append(plausible, scored{player: m, score: s})
		}
	}
	sort.SliceStable(plausible, func(i, j int) bool {
		return plausible[i].score > plausible[j].score
	})

	ranked := make([]db.PlayerSummary, len(plausible))
	for i, s := range plausible {
		ranked[i] = s.player
	}

	switch {
	case len(ranked) == 1:
		return r.resolved(ctx, query, ResolutionFuzzySingle, ranked[0], ranked)
	case len(ranked) > 1:
		r.logger.Info("ambiguous player name",
			zap.String("query", query),
			zap.String("ambiguity", string(AmbiguitySimilarNameCandidates)),
			zap.Int("candidates", len(ranked)))
		return &ToolResult{
			Tool: string(ToolSearchPlayers),
			Result: &Resolution{
				Query:      query,
				Ambiguity:  AmbiguitySimilarNameCandidates,
				Candidates: capCandidates(ranked),
			},
		}, nil
	}

	return &ToolResult{Tool: string(ToolSearchPlayers), Result: []db.PlayerSummary{}}, nil
}

// resolved fetches the full record for an unambiguous match.
func (r *Resolver) resolved(ctx context.Context, query string, kind ResolutionKind, match db.PlayerSummary, matches []db.PlayerSummary) (*ToolResult, error) {
	player, err := r.store.GetPlayer(ctx, match.UniqueID)
	if err != nil {
		return nil, fmt.Errorf("player fetch failed: %w", err)
	}
	if player == nil {
		return nil, &ErrPlayerNotFound{ID: match.UniqueID}
	}

	r.logger.Info("resolved player name",
		zap.String("query", query),
		zap.String("resolution", string(kind)),
		zap.String("player", match.Name),
		zap.String("uniqueId", match.UniqueID))

	matchCopy := match
	return &ToolResult{
		Tool: string(ToolSearchPlayers) + "+" + string(ToolGetPlayerByID),
		Result: &Resolution{
			Query:            query,
			Kind:             kind,
			BestMatch:        &matchCopy,
			ResolvedName:     match.Name,
			Player:           player,
			CandidateMatches: capCandidates(matches),
		},
	}, nil
}

func capCandidates(players []db.PlayerSummary) []db.PlayerSummary {
	if len(players) > maxCandidateReplies {
		return players[:maxCandidateReplies]
	}
	return players
}
