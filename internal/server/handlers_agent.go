// Package server provides the HTTP REST API for the scouting backend.
package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/cerebrochat/cerebrochat/internal/agent"
)

// AgentChatRequest is the conversational agent payload.
type AgentChatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"sessionId"`
}

// AgentReportRequest identifies a report subject. At least one of the three
// fields must be provided.
type AgentReportRequest struct {
	Message  string        `json:"message"`
	Player   *agent.Target `json:"player"`
	PlayerID string        `json:"playerId"`
}

// handleAgentChat runs one chat turn through the agent.
func (s *Server) handleAgentChat(w http.ResponseWriter, r *http.Request) {
	var req AgentChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		s.errorResponse(w, http.StatusBadRequest, "message is required")
		return
	}

	result, err := s.runner.Chat(r.Context(), req.SessionID, req.Message)
	if err != nil {
		s.logger.Error("agent chat failed", zap.Error(err))
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleAgentReport generates a scouting report through the agent.
func (s *Server) handleAgentReport(w http.ResponseWriter, r *http.Request) {
	var req AgentReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Message) == "" && req.PlayerID == "" &&
		(req.Player == nil || strings.TrimSpace(req.Player.PlayerName) == "") {
		s.errorResponse(w, http.StatusBadRequest, "one of message, player, or playerId is required")
		return
	}

	result, err := s.runner.Report(r.Context(), agent.ReportInput{
		Message:  req.Message,
		Player:   req.Player,
		PlayerID: req.PlayerID,
	})
	if err != nil {
		s.logger.Error("agent report failed", zap.Error(err))
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, result)
}
