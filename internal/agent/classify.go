package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"go.uber.org/zap"

	"github.com/cerebrochat/cerebrochat/internal/llm"
)

// planSchema constrains the router's JSON reply. Unknown tool names fail
// validation and degrade to the none plan.
const planSchema = `{
  "type": "object",
  "required": ["tool"],
  "properties": {
    "tool": {
      "type": "string",
      "enum": ["search_players", "get_player_by_id", "top_players", "top_players_by_position", "none"]
    },
    "args": {
      "type": "object",
      "properties": {
        "query": {"type": "string"},
        "name": {"type": "string"},
        "playerName": {"type": "string"},
        "id": {"type": "string"},
        "metric": {"type": "string"},
        "team": {"type": "string"},
        "position": {"type": "string"},
        "limit": {"type": "integer"},
        "minGames": {"type": "number"}
      }
    }
  }
}`

var (
	planSchemaLoader = gojsonschema.NewStringLoader(planSchema)
	fencedBlockRe    = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)```")
)

const routerPrompt = `You are a routing layer for a basketball scouting assistant backed by an NCAA D1 men's statistics store.

Pick exactly one tool for the user's message and reply with a single JSON object, no prose, no code fences:
{"tool": "<tool>", "args": { ... }}

Tools:
- "search_players": look up players by name. args: {"query": string, "team"?: string, "position"?: string, "limit"?: number}
- "get_player_by_id": fetch one player record. args: {"id": string}
- "top_players": leaders for a single stat. args: {"metric": string, "position"?: string, "team"?: string, "limit"?: number}
- "top_players_by_position": best overall players at a position when no single stat is named. args: {"position": string, "metric"?: string, "limit"?: number}
- "none": the message needs no data lookup.

Valid metrics: pts_g, reb_g, ast_g, stl_g, blk_g, fg, c_3pt, ft, efg, ts, usg, ppp, a_to, orb_40, ram, c_ram, psp, c_3pe, dsi, fgs, bms.
Valid positions: PG, SG, SF, PF, C, G, F.

User message: %s`

const extractTargetPrompt = `Extract the basketball player the user is asking about.

Reply with a single JSON object, no prose, no code fences:
{"playerName": "<name or empty string>", "team": "<team or empty string>", "position": "<position or empty string>"}

User message: %s`

// Classifier routes free-text messages to tool plans via a delegated LLM
// call. All of its methods degrade to safe defaults on malformed model
// output; they never propagate parse failures.
type Classifier struct {
	gen    Generator
	logger *zap.Logger
}

// NewClassifier creates a classifier over the given generator.
func NewClassifier(gen Generator, logger *zap.Logger) *Classifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Classifier{gen: gen, logger: logger}
}

// DecideTool asks the model to pick a tool. Any generation or parse failure
// yields the none plan.
func (c *Classifier) DecideTool(ctx context.Context, message string) Plan {
	raw, err := c.gen.Generate(ctx, fmt.Sprintf(routerPrompt, message))
	if err != nil {
		c.logger.Warn("tool routing call failed", zap.Error(err))
		return Plan{Tool: ToolNone}
	}

	plan, err := ParsePlan(raw)
	if err != nil {
		c.logger.Warn("tool routing reply unparseable",
			zap.Error(err),
			zap.String("raw", truncateForLog(raw)))
		return Plan{Tool: ToolNone}
	}
	return plan
}

// ParsePlan parses a model reply into a Plan: direct JSON parse first, then
// the first fenced code block, validated against the plan schema.
func ParsePlan(raw string) (Plan, error) {
	doc, err := extractJSONDocument(raw)
	if err != nil {
		return Plan{}, err
	}

	result, err := gojsonschema.Validate(planSchemaLoader, gojsonschema.NewStringLoader(doc))
	if err != nil {
		return Plan{}, fmt.Errorf("plan schema validation failed: %w", err)
	}
	if !result.Valid() {
		return Plan{}, fmt.Errorf("plan violates schema: %s", result.Errors()[0].String())
	}

	var plan Plan
	if err := json.Unmarshal([]byte(doc), &plan); err != nil {
		return Plan{}, fmt.Errorf("failed to parse plan: %w", err)
	}
	return plan, nil
}

// extractJSONDocument finds a parseable JSON object in a model reply.
func extractJSONDocument(raw string) (string, error) {
	cleaned := llm.CleanJSONBlock(raw)
	if json.Valid([]byte(cleaned)) {
		return cleaned, nil
	}
	if m := fencedBlockRe.FindStringSubmatch(raw); m != nil {
		inner := strings.TrimSpace(m[1])
		if json.Valid([]byte(inner)) {
			return inner, nil
		}
	}
	return "", fmt.Errorf("reply contains no valid JSON")
}

// ExtractTarget asks the model for a {playerName, team, position} struct.
// Returns nil when the call fails, the reply is unparseable, or no name was
// found.
func (c *Classifier) ExtractTarget(ctx context.Context, message string) *Target {
	raw, err := c.gen.Generate(ctx, fmt.Sprintf(extractTargetPrompt, message))
	if err != nil {
		c.logger.Warn("target extraction call failed", zap.Error(err))
		return nil
	}

	doc, err := extractJSONDocument(raw)
	if err != nil {
		c.logger.Warn("target extraction reply unparseable",
			zap.String("raw", truncateForLog(raw)))
		return nil
	}

	var target Target
	if err := json.Unmarshal([]byte(doc), &target); err != nil {
		return nil
	}
	target.PlayerName = strings.TrimSpace(target.PlayerName)
	target.Team = strings.TrimSpace(target.Team)
	target.Position = strings.TrimSpace(target.Position)
	if target.PlayerName == "" && target.Team == "" && target.Position == "" {
		return nil
	}
	return &target
}

func truncateForLog(s string) string {
	if len(s) > 200 {
		return s[:200] + "..."
	}
	return s
}
