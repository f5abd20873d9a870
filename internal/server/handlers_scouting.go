// Package server provides the HTTP REST API for the scouting backend.
package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/cerebrochat/cerebrochat/internal/agent"
	"github.com/cerebrochat/cerebrochat/internal/db"
)

// ScoutingRequest identifies the report subject by id or name.
type ScoutingRequest struct {
	PlayerID   string `json:"playerId"`
	PlayerName string `json:"playerName"`
}

// ScoutingResponse pairs the generated report with the subject it covers.
type ScoutingResponse struct {
	Player *db.PlayerSummary `json:"player"`
	Report string            `json:"report"`
}

// handleScoutingGenerate builds a formatted stat profile for one player and
// generates a structured scouting report from it.
func (s *Server) handleScoutingGenerate(w http.ResponseWriter, r *http.Request) {
	var req ScoutingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.PlayerID == "" && strings.TrimSpace(req.PlayerName) == "" {
		s.errorResponse(w, http.StatusBadRequest, "playerId or playerName is required")
		return
	}

	player, err := s.lookupScoutingSubject(r, &req)
	if err != nil {
		s.logger.Error("scouting subject lookup failed", zap.Error(err))
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	if player == nil {
		s.errorResponse(w, http.StatusNotFound, "no player matches the request")
		return
	}

	profile := formatPlayerProfile(player)
	report, err := s.llmClient.Generate(r.Context(),
		agent.BuildReportPrompt("Write a scouting report for "+player.Name, agent.Evidence{
			"player":        player,
			"statedProfile": profile,
		}))
	if err != nil {
		s.logger.Error("scouting generation failed", zap.Error(err))
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	summary := player.Summary()
	writeJSON(w, http.StatusOK, ScoutingResponse{Player: &summary, Report: report})
}

func (s *Server) lookupScoutingSubject(r *http.Request, req *ScoutingRequest) (*db.Player, error) {
	if req.PlayerID != "" {
		return s.db.GetPlayer(r.Context(), req.PlayerID)
	}

	matches, err := s.db.SearchPlayers(r.Context(), db.SearchFilter{
		Query: req.PlayerName,
		Limit: 5,
	})
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, nil
	}
	return s.db.GetPlayer(r.Context(), matches[0].UniqueID)
}

// percentageMetrics are rendered as percentages in the stat profile.
var percentageMetrics = map[string]bool{
	"fg": true, "c_3pt": true, "ft": true, "efg": true, "ts": true, "usg": true,
}

// formatPlayerProfile renders a player's stat line as labeled text, one
// metric per line. Missing values render as N/A.
func formatPlayerProfile(p *db.Player) string {
	lines := []string{
		fmt.Sprintf("%s | %s | %s | %s | %s", p.Name, p.Team, p.Position, p.League, p.Class),
		"Games: " + formatStat("g", p.G),
		"Points/G: " + formatStat("pts_g", p.PtsG),
		"Rebounds/G: " + formatStat("reb_g", p.RebG),
		"Assists/G: " + formatStat("ast_g", p.AstG),
		"Steals/G: " + formatStat("stl_g", p.StlG),
		"Blocks/G: " + formatStat("blk_g", p.BlkG),
		"Turnovers/G: " + formatStat("to_g", p.ToG),
		"FG%: " + formatStat("fg", p.FG),
		"3PT%: " + formatStat("c_3pt", p.C3Pt),
		"FT%: " + formatStat("ft", p.FT),
		"eFG%: " + formatStat("efg", p.EFG),
		"TS%: " + formatStat("ts", p.TS),
		"Usage: " + formatStat("usg", p.Usg),
		"Points/Possession: " + formatStat("ppp", p.PPP),
		"Assist/Turnover: " + formatStat("a_to", p.ATO),
	}
	return strings.Join(lines, "\n")
}

// formatStat renders a metric value: percentages as xx.x%, counting stats
// with one decimal, nil as N/A.
func formatStat(metric string, value *float64) string {
	if value == nil {
		return "N/A"
	}
	if percentageMetrics[metric] {
		v := *value
		// Ratios may be stored as fractions or already as percentages.
		if v <= 1.0 {
			v *= 100
		}
		return fmt.Sprintf("%.1f%%", v)
	}
	return fmt.Sprintf("%.1f", *value)
}
