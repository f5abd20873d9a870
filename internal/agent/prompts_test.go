package agent

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cerebrochat/cerebrochat/internal/db"
)

func TestBuildChatPromptEmbedsEvidence(t *testing.T) {
	prompt := BuildChatPrompt("who leads in assists?", Evidence{
		"tool":   "top_players",
		"result": map[string]any{"metric": "ast_g"},
	})

	assert.Contains(t, prompt, "ONLY the evidence")
	assert.Contains(t, prompt, `"ast_g"`)
	assert.Contains(t, prompt, "User message: who leads in assists?")
}

func TestBuildChatPromptNilEvidence(t *testing.T) {
	prompt := BuildChatPrompt("hello", nil)
	assert.Contains(t, prompt, "{}")
}

func TestBuildReportPromptSectionOrdering(t *testing.T) {
	prompt := BuildReportPrompt("report on Jane Doe", Evidence{"player": "x"})

	sections := []string{
		"1) Player/Cohort Overview",
		"2) Key Strengths",
		"3) Key Concerns",
		"4) Metrics Snapshot",
		"5) Projection / Recommendation",
	}
	last := -1
	for _, section := range sections {
		idx := strings.Index(prompt, section)
		assert.Greater(t, idx, last, "section %q out of order", section)
		last = idx
	}
}

func TestAmbiguityReplyDuplicateExactName(t *testing.T) {
	reply := AmbiguityReply(&Resolution{
		Query:     "John Smith",
		Ambiguity: AmbiguityDuplicateExactName,
		Candidates: []db.PlayerSummary{
			{Name: "John Smith", Team: "State", Position: "PG", Class: "JR"},
			{Name: "John Smith", Team: "Tech", Position: "C"},
		},
	})

	assert.Contains(t, reply, `multiple players named "John Smith"`)
	assert.Contains(t, reply, "1. John Smith (State, PG, JR)")
	assert.Contains(t, reply, "2. John Smith (Tech, C)")
	assert.Contains(t, reply, "Reply with the number or the full name.")
}

func TestAmbiguityReplySimilarNames(t *testing.T) {
	reply := AmbiguityReply(&Resolution{
		Query:     "Jon Smith",
		Ambiguity: AmbiguitySimilarNameCandidates,
		Candidates: []db.PlayerSummary{
			{Name: "John Smith"},
		},
	})

	assert.Contains(t, reply, "look close")
	assert.Contains(t, reply, "1. John Smith\n")
}
