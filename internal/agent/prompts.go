package agent

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cerebrochat/cerebrochat/internal/db"
)

// marshalEvidence renders evidence as inline JSON for prompt embedding.
// Marshal failures degrade to an empty object; the downstream model is
// instructed to say so when the evidence is insufficient.
func marshalEvidence(evidence any) string {
	if evidence == nil {
		return "{}"
	}
	data, err := json.MarshalIndent(evidence, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(data)
}

// BuildChatPrompt renders the chat-reply instruction with tool evidence
// inlined as JSON.
func BuildChatPrompt(message string, evidence any) string {
	var b strings.Builder
	b.WriteString("You are CerebroChat, a basketball scouting assistant for NCAA D1 men's basketball.\n\n")
	b.WriteString("Answer the user's message using ONLY the evidence below. Do not use outside knowledge. ")
	b.WriteString("If the evidence is insufficient to answer, say so plainly.\n")
	b.WriteString("Cite concrete numbers from the evidence where relevant. Keep the reply conversational and concise.\n\n")
	b.WriteString("Evidence (JSON):\n")
	b.WriteString(marshalEvidence(evidence))
	b.WriteString("\n\nUser message: ")
	b.WriteString(message)
	return b.String()
}

// BuildReportPrompt renders the scouting-report instruction with a fixed
// output section ordering.
func BuildReportPrompt(message string, evidence any) string {
	var b strings.Builder
	b.WriteString("You are CerebroChat, a basketball scouting analyst for NCAA D1 men's basketball.\n\n")
	b.WriteString("Write a scouting report using ONLY the evidence below. Do not use outside knowledge. ")
	b.WriteString("If the evidence is insufficient, say so rather than inventing numbers.\n\n")
	b.WriteString("Structure the report with exactly these sections, in this order:\n")
	b.WriteString("1) Player/Cohort Overview\n")
	b.WriteString("2) Key Strengths\n")
	b.WriteString("3) Key Concerns\n")
	b.WriteString("4) Metrics Snapshot\n")
	b.WriteString("5) Projection / Recommendation\n\n")
	b.WriteString("Evidence (JSON):\n")
	b.WriteString(marshalEvidence(evidence))
	b.WriteString("\n\nUser request: ")
	b.WriteString(message)
	return b.String()
}

// AmbiguityReply builds the user-facing disambiguation message for an
// ambiguous resolution. No model call is involved; the reply is assembled
// locally from the candidate list.
func AmbiguityReply(res *Resolution) string {
	var b strings.Builder
	switch res.Ambiguity {
	case AmbiguityDuplicateExactName:
		fmt.Fprintf(&b, "I found multiple players named %q. Which one did you mean?\n", res.Query)
	default:
		fmt.Fprintf(&b, "I couldn't find an exact match for %q, but these players look close. Did you mean one of them?\n", res.Query)
	}
	for i, c := range res.Candidates {
		b.WriteString(candidateLine(i+1, c))
	}
	b.WriteString("\nReply with the number or the full name.")
	return b.String()
}

func candidateLine(n int, c db.PlayerSummary) string {
	var details []string
	for _, part := range []string{c.Team, c.Position, c.Class} {
		if part != "" {
			details = append(details, part)
		}
	}
	if len(details) == 0 {
		return fmt.Sprintf("%d. %s\n", n, c.Name)
	}
	return fmt.Sprintf("%d. %s (%s)\n", n, c.Name, strings.Join(details, ", "))
}
