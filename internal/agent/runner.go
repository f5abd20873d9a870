package agent

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/cerebrochat/cerebrochat/internal/db"
)

// pronounRe detects follow-up references to a previously discussed player.
var pronounRe = regexp.MustCompile(`(?i)\b(he|him|his|she|her|hers|they|them|their|that player|this player|the same player)\b`)

// ChatResult is the outcome of one chat turn. Agent names which agent
// produced the reply: "chat", or "report" when the turn was delegated.
type ChatResult struct {
	Reply    string `json:"reply"`
	Agent    string `json:"agent"`
	ToolUsed string `json:"toolUsed"`
}

// ReportInput identifies the report subject: a free-text message, a partial
// player descriptor, or a direct identifier. At least one must be set.
type ReportInput struct {
	Message  string
	Player   *Target
	PlayerID string
}

// ReportResult is a generated scouting report.
type ReportResult struct {
	Report   string `json:"report"`
	Agent    string `json:"agent"`
	ToolUsed string `json:"toolUsed"`
}

// Runner wires the classifier, resolver, dispatcher, and session memory into
// the two agent entry points: Chat and Report.
type Runner struct {
	store      PlayerStore
	gen        Generator
	classifier *Classifier
	resolver   *Resolver
	dispatcher *Dispatcher
	memory     Memory
	logger     *zap.Logger
}

// NewRunner assembles an agent runner from its collaborators.
func NewRunner(store PlayerStore, gen Generator, thresholds ThresholdSource, memory Memory, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	resolver := NewResolver(store, logger)
	return &Runner{
		store:      store,
		gen:        gen,
		classifier: NewClassifier(gen, logger),
		resolver:   resolver,
		dispatcher: NewDispatcher(store, thresholds, resolver, logger),
		memory:     memory,
		logger:     logger,
	}
}

// Chat handles one conversational turn: route to a tool, gather evidence,
// and generate a grounded reply. Ambiguous name resolution returns a locally
// built disambiguation reply without a generation call.
func (r *Runner) Chat(ctx context.Context, sessionID, message string) (*ChatResult, error) {
	if IsReportIntent(message) {
		report, err := r.Report(ctx, ReportInput{Message: message})
		if err != nil {
			return nil, err
		}
		return &ChatResult{
			Reply:    report.Report,
			Agent:    "report",
			ToolUsed: "chat->report:" + report.ToolUsed,
		}, nil
	}

	plan := r.decidePlan(ctx, sessionID, message)
	r.logger.Info("chat plan decided",
		zap.String("tool", string(plan.Tool)),
		zap.String("session", sessionID))

	if plan.Tool == ToolNone {
		reply, err := r.gen.Generate(ctx, BuildChatPrompt(message, Evidence{}))
		if err != nil {
			return nil, fmt.Errorf("chat generation failed: %w", err)
		}
		return &ChatResult{Reply: reply, Agent: "chat", ToolUsed: string(ToolNone)}, nil
	}

	toolResult, err := r.dispatcher.Run(ctx, plan)
	if err != nil {
		return nil, err
	}

	if res, ok := toolResult.Result.(*Resolution); ok {
		if res.Ambiguity != "" {
			return &ChatResult{Reply: AmbiguityReply(res), Agent: "chat", ToolUsed: toolResult.Tool}, nil
		}
		r.remember(sessionID, res.BestMatch)
		reply, err := r.generateChatReply(ctx, message, toolResult)
		if err != nil {
			return nil, err
		}
		// Make silent corrections visible: if the record came from a fuzzy
		// or single-candidate match, say whose data the answer uses.
		if res.ResolvedName != "" && NormalizeName(res.ResolvedName) != NormalizeName(res.Query) {
			reply = fmt.Sprintf("Showing results for %s.\n\n%s", res.ResolvedName, reply)
		}
		return &ChatResult{Reply: reply, Agent: "chat", ToolUsed: toolResult.Tool}, nil
	}

	if player, ok := toolResult.Result.(*db.Player); ok && player != nil {
		summary := player.Summary()
		r.remember(sessionID, &summary)
	}

	reply, err := r.generateChatReply(ctx, message, toolResult)
	if err != nil {
		return nil, err
	}
	return &ChatResult{Reply: reply, Agent: "chat", ToolUsed: toolResult.Tool}, nil
}

// decidePlan runs the layered routing pipeline: deterministic detectors,
// then the LLM router, then target extraction, then session-memory pronoun
// fallback.
func (r *Runner) decidePlan(ctx context.Context, sessionID, message string) Plan {
	if plan := DetectPlan(message); plan != nil {
		r.logger.Info("deterministic intent matched", zap.String("tool", string(plan.Tool)))
		return *plan
	}

	plan := r.classifier.DecideTool(ctx, message)
	if plan.Tool != ToolNone {
		return plan
	}

	if target := r.classifier.ExtractTarget(ctx, message); target != nil && target.PlayerName != "" {
		return Plan{Tool: ToolSearchPlayers, Args: PlanArgs{
			Query:    target.PlayerName,
			Team:     target.Team,
			Position: target.Position,
		}}
	}

	if r.memory != nil && pronounRe.MatchString(message) {
		if remembered := r.memory.Get(sessionID); remembered != nil {
			r.logger.Info("resolved pronoun from session memory",
				zap.String("session", sessionID),
				zap.String("player", remembered.Name))
			return Plan{Tool: ToolGetPlayerByID, Args: PlanArgs{ID: remembered.UniqueID}}
		}
	}

	return Plan{Tool: ToolNone}
}

func (r *Runner) generateChatReply(ctx context.Context, message string, toolResult *ToolResult) (string, error) {
	evidence := Evidence{
		"tool":   toolResult.Tool,
		"result": toolResult.Result,
	}
	reply, err := r.gen.Generate(ctx, BuildChatPrompt(message, evidence))
	if err != nil {
		return "", fmt.Errorf("chat generation failed: %w", err)
	}
	return reply, nil
}

func (r *Runner) remember(sessionID string, player *db.PlayerSummary) {
	if r.memory == nil || player == nil {
		return
	}
	r.memory.Set(sessionID, *player)
}

// Report generates a scouting report. Subject resolution prefers the most
// explicit input: direct id, then a provided player descriptor, then model
// extraction from the message, then the tool router, then a scoring-leaders
// default.
func (r *Runner) Report(ctx context.Context, input ReportInput) (*ReportResult, error) {
	if input.PlayerID != "" {
		player, err := r.store.GetPlayer(ctx, input.PlayerID)
		if err != nil {
			return nil, fmt.Errorf("player fetch failed: %w", err)
		}
		if player == nil {
			return nil, &ErrPlayerNotFound{ID: input.PlayerID}
		}
		return r.generateReport(ctx, input.Message, string(ToolGetPlayerByID), Evidence{"player": player})
	}

	if input.Player != nil && strings.TrimSpace(input.Player.PlayerName) != "" {
		return r.reportForTarget(ctx, input.Message, input.Player, true)
	}

	if target := r.classifier.ExtractTarget(ctx, input.Message); target != nil && target.PlayerName != "" {
		return r.reportForTarget(ctx, input.Message, target, false)
	}

	// No subject found: run whatever plan the router picks, defaulting to
	// the scoring leaderboard only when the router declines.
	plan := r.classifier.DecideTool(ctx, input.Message)
	if plan.Tool == ToolNone {
		plan = Plan{Tool: ToolTopPlayers, Args: PlanArgs{Metric: db.DefaultMetric, Limit: defaultTopLimit}}
	}
	toolResult, err := r.dispatcher.RunDirect(ctx, plan)
	if err != nil {
		return nil, err
	}
	return r.generateReport(ctx, input.Message, toolResult.Tool, Evidence{
		"userRequest": input.Message,
		"tool":        toolResult.Tool,
		"result":      toolResult.Result,
	})
}

// reportForTarget searches for the named subject and reports on the best
// match, or on the candidate list when no single match stands out.
func (r *Runner) reportForTarget(ctx context.Context, message string, target *Target, provided bool) (*ReportResult, error) {
	limit := 10
	if provided {
		limit = 5
	}
	matches, err := r.store.SearchPlayers(ctx, db.SearchFilter{
		Query:    target.PlayerName,
		Team:     target.Team,
		Position: target.Position,
		Limit:    limit,
	})
	if err != nil {
		return nil, fmt.Errorf("player search failed: %w", err)
	}

	evidence := Evidence{"candidateMatches": matches}
	if provided {
		evidence["providedPlayer"] = target
	} else {
		evidence["extractedTarget"] = target
	}

	best := pickBestPlayerMatch(target.PlayerName, matches)
	if best == nil {
		return r.generateReport(ctx, message, string(ToolSearchPlayers), evidence)
	}

	player, err := r.store.GetPlayer(ctx, best.UniqueID)
	if err != nil {
		return nil, fmt.Errorf("player fetch failed: %w", err)
	}
	if player != nil {
		evidence["bestMatch"] = best
		evidence["player"] = player
	}
	return r.generateReport(ctx, message,
		string(ToolSearchPlayers)+"+"+string(ToolGetPlayerByID), evidence)
}

// pickBestPlayerMatch prefers exact normalized equality, then prefix, then
// substring, then the first match.
func pickBestPlayerMatch(name string, matches []db.PlayerSummary) *db.PlayerSummary {
	if len(matches) == 0 {
		return nil
	}
	target := NormalizeName(name)
	for i := range matches {
		if NormalizeName(matches[i].Name) == target {
			return &matches[i]
		}
	}
	for i := range matches {
		if strings.HasPrefix(NormalizeName(matches[i].Name), target) {
			return &matches[i]
		}
	}
	for i := range matches {
		if strings.Contains(NormalizeName(matches[i].Name), target) {
			return &matches[i]
		}
	}
	return &matches[0]
}

func (r *Runner) generateReport(ctx context.Context, message, toolUsed string, evidence Evidence) (*ReportResult, error) {
	report, err := r.gen.Generate(ctx, BuildReportPrompt(message, evidence))
	if err != nil {
		return nil, fmt.Errorf("report generation failed: %w", err)
	}
	return &ReportResult{Report: report, Agent: "report", ToolUsed: toolUsed}, nil
}
