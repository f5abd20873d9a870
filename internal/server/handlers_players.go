// Package server provides the HTTP REST API for the scouting backend.
package server

import (
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/cerebrochat/cerebrochat/internal/db"
)

// searchRouteCap bounds directory listings; the agent path has its own limits.
const searchRouteCap = 25

// handleSearchPlayers lists players matching name/team/position substrings.
func (s *Server) handleSearchPlayers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit := queryInt(r, "limit", 20)
	if limit > searchRouteCap {
		limit = searchRouteCap
	}
	players, err := s.db.SearchPlayers(r.Context(), db.SearchFilter{
		Query:    q.Get("q"),
		Team:     q.Get("team"),
		Position: q.Get("position"),
		Limit:    limit,
	})
	if err != nil {
		s.logger.Error("player search failed", zap.Error(err))
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"players": players})
}

// handleGetPlayer returns one full player record.
func (s *Server) handleGetPlayer(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	player, err := s.db.GetPlayer(r.Context(), id)
	if err != nil {
		s.logger.Error("player fetch failed", zap.Error(err))
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	if player == nil {
		s.errorResponse(w, http.StatusNotFound, "player not found: "+id)
		return
	}
	writeJSON(w, http.StatusOK, player)
}

// handleTopPlayers returns metric leaders. Unrecognized metrics fall back to
// points per game.
func (s *Server) handleTopPlayers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	minGames, _ := strconv.ParseFloat(q.Get("minGames"), 64)
	if minGames <= 0 {
		minGames = 5
	}

	result, err := s.db.TopPlayersByMetric(r.Context(), db.TopPlayersFilter{
		Metric:   q.Get("metric"),
		Position: q.Get("position"),
		Team:     q.Get("team"),
		Limit:    queryInt(r, "limit", 10),
		MinGames: minGames,
	})
	if err != nil {
		s.logger.Error("top players query failed", zap.Error(err))
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func queryInt(r *http.Request, key string, fallback int) int {
	value := r.URL.Query().Get(key)
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return n
}
