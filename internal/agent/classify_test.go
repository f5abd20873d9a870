package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePlanDirectJSON(t *testing.T) {
	plan, err := ParsePlan(`{"tool":"top_players","args":{"metric":"ast_g","position":"PG","limit":5}}`)
	require.NoError(t, err)
	assert.Equal(t, ToolTopPlayers, plan.Tool)
	assert.Equal(t, "ast_g", plan.Args.Metric)
	assert.Equal(t, "PG", plan.Args.Position)
	assert.Equal(t, 5, plan.Args.Limit)
}

func TestParsePlanFencedBlock(t *testing.T) {
	raw := "Here is my decision:\n```json\n{\"tool\":\"search_players\",\"args\":{\"query\":\"Jane Doe\"}}\n```\nLet me know."
	plan, err := ParsePlan(raw)
	require.NoError(t, err)
	assert.Equal(t, ToolSearchPlayers, plan.Tool)
	assert.Equal(t, "Jane Doe", plan.Args.Query)
}

func TestParsePlanWrappedInBareFence(t *testing.T) {
	plan, err := ParsePlan("```\n{\"tool\":\"none\"}\n```")
	require.NoError(t, err)
	assert.Equal(t, ToolNone, plan.Tool)
}

func TestParsePlanRejectsUnknownTool(t *testing.T) {
	_, err := ParsePlan(`{"tool":"drop_table"}`)
	assert.Error(t, err)
}

func TestParsePlanRejectsMalformed(t *testing.T) {
	_, err := ParsePlan("I think you should search for Jane Doe")
	assert.Error(t, err)

	_, err = ParsePlan(`{"tool":`)
	assert.Error(t, err)
}

func TestDecideToolDegradesToNone(t *testing.T) {
	gen := &fakeGen{replies: []string{"sorry, I can't decide"}}
	classifier := NewClassifier(gen, nil)

	plan := classifier.DecideTool(context.Background(), "hello")
	assert.Equal(t, ToolNone, plan.Tool)
}

func TestDecideToolGenerationFailure(t *testing.T) {
	gen := &fakeGen{err: errors.New("provider down")}
	classifier := NewClassifier(gen, nil)

	plan := classifier.DecideTool(context.Background(), "hello")
	assert.Equal(t, ToolNone, plan.Tool)
}

func TestExtractTarget(t *testing.T) {
	gen := &fakeGen{replies: []string{`{"playerName":"Jane Doe","team":"State","position":"PG"}`}}
	classifier := NewClassifier(gen, nil)

	target := classifier.ExtractTarget(context.Background(), "how is jane doe doing at state")
	require.NotNil(t, target)
	assert.Equal(t, "Jane Doe", target.PlayerName)
	assert.Equal(t, "State", target.Team)
}

func TestExtractTargetEmptyReply(t *testing.T) {
	gen := &fakeGen{replies: []string{`{"playerName":"","team":"","position":""}`}}
	classifier := NewClassifier(gen, nil)

	assert.Nil(t, classifier.ExtractTarget(context.Background(), "what a great game"))
}

func TestExtractTargetMalformedReply(t *testing.T) {
	gen := &fakeGen{replies: []string{"no player here"}}
	classifier := NewClassifier(gen, nil)

	assert.Nil(t, classifier.ExtractTarget(context.Background(), "what a great game"))
}

func TestPlanArgsSearchQuery(t *testing.T) {
	assert.Equal(t, "a", PlanArgs{Query: "a", Name: "b"}.SearchQuery())
	assert.Equal(t, "b", PlanArgs{Name: " b "}.SearchQuery())
	assert.Equal(t, "c", PlanArgs{PlayerName: "c"}.SearchQuery())
	assert.Equal(t, "", PlanArgs{}.SearchQuery())
}
