// Package server provides the HTTP REST API for the scouting backend.
package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/cerebrochat/cerebrochat/internal/vectorindex"
)

const ragTopK = 3

// ChatRequest is the plain-chat payload. Retrieval grounding is on by
// default when a vector index is loaded.
type ChatRequest struct {
	Message string `json:"message"`
	NoRAG   bool   `json:"noRag,omitempty"`
}

// ChatSource describes one retrieved grounding chunk.
type ChatSource struct {
	ID    string  `json:"id"`
	Score float64 `json:"score"`
}

// ChatResponse is the plain-chat reply.
type ChatResponse struct {
	Reply   string       `json:"reply"`
	Sources []ChatSource `json:"sources,omitempty"`
}

// handleChat answers a message directly against the LLM, grounding the
// prompt with retrieved stat chunks when a vector index is available.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		s.errorResponse(w, http.StatusBadRequest, "message is required")
		return
	}

	var matches []vectorindex.Match
	if s.vectorIndex != nil && !req.NoRAG {
		embedding, err := s.llmClient.Embed(r.Context(), req.Message)
		if err != nil {
			// Retrieval is best-effort; the provider may not support
			// embeddings at all.
			s.logger.Warn("query embedding failed, answering without retrieval", zap.Error(err))
		} else {
			matches = s.vectorIndex.Search(embedding, ragTopK)
		}
	}

	reply, err := s.llmClient.Generate(r.Context(), buildChatPrompt(req.Message, matches))
	if err != nil {
		s.logger.Error("chat generation failed", zap.Error(err))
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp := ChatResponse{Reply: reply}
	for _, m := range matches {
		resp.Sources = append(resp.Sources, ChatSource{ID: m.ID, Score: m.Score})
	}
	writeJSON(w, http.StatusOK, resp)
}

func buildChatPrompt(message string, matches []vectorindex.Match) string {
	if len(matches) == 0 {
		return message
	}

	var b strings.Builder
	b.WriteString("Answer the question using the player statistics below where relevant. ")
	b.WriteString("If they do not cover the question, say so.\n\n")
	for _, m := range matches {
		b.WriteString(m.Text)
		b.WriteString("\n\n")
	}
	b.WriteString("Question: ")
	b.WriteString(message)
	return b.String()
}
