package db

// playersTable is the single statistics table this service reads. Rows are
// owned by the ingestion pipeline; this layer never writes to it.
const playersTable = "ncaa_players_d1_male"

// MetricAllowList is the fixed set of metric columns callers may rank by.
// Anything outside this list falls back to DefaultMetric and never reaches
// SQL text.
var MetricAllowList = []string{
	"pts_g", "reb_g", "ast_g", "stl_g", "blk_g",
	"fg", "c_3pt", "ft", "efg", "ts", "usg", "ppp", "a_to", "orb_40",
	"ram", "c_ram", "psp", "c_3pe", "dsi", "fgs", "bms",
}

// DefaultMetric is the ranking column used when a requested metric is not
// allow-listed.
const DefaultMetric = "pts_g"

var metricAllowSet = func() map[string]bool {
	set := make(map[string]bool, len(MetricAllowList))
	for _, m := range MetricAllowList {
		set[m] = true
	}
	return set
}()

// SafeMetric maps a caller-supplied metric name onto the allow-list,
// returning DefaultMetric for anything unrecognized.
func SafeMetric(metric string) string {
	if metricAllowSet[metric] {
		return metric
	}
	return DefaultMetric
}

// PlayerSummary is the projection returned by name/team/position searches.
type PlayerSummary struct {
	UniqueID string `json:"unique_id"`
	Name     string `json:"name_split"`
	Team     string `json:"team"`
	Position string `json:"position"`
	League   string `json:"league"`
	Class    string `json:"class"`
}

// Player is the full statistics record for a single player. Metric fields
// are pointers because the source table is sparse.
type Player struct {
	UniqueID string `json:"unique_id"`
	Name     string `json:"name_split"`
	Team     string `json:"team"`
	Position string `json:"position"`
	League   string `json:"league"`
	Class    string `json:"class"`

	PtsG  *float64 `json:"pts_g"`
	RebG  *float64 `json:"reb_g"`
	AstG  *float64 `json:"ast_g"`
	FG    *float64 `json:"fg"`
	C3Pt  *float64 `json:"c_3pt"`
	FT    *float64 `json:"ft"`
	StlG  *float64 `json:"stl_g"`
	BlkG  *float64 `json:"blk_g"`
	ToG   *float64 `json:"to_g"`
	MinG  *float64 `json:"min_g"`
	G     *float64 `json:"g"`
	C2Pt  *float64 `json:"c_2pt"`
	EFG   *float64 `json:"efg"`
	TS    *float64 `json:"ts"`
	Usg   *float64 `json:"usg"`
	PPP   *float64 `json:"ppp"`
	OrbG  *float64 `json:"orb_g"`
	DrbG  *float64 `json:"drb_g"`
	PfG   *float64 `json:"pf_g"`
	ATO   *float64 `json:"a_to"`
	RAM   *float64 `json:"ram"`
	CRAM  *float64 `json:"c_ram"`
	PSP   *float64 `json:"psp"`
	C3PE  *float64 `json:"c_3pe"`
	DSI   *float64 `json:"dsi"`
	FGS   *float64 `json:"fgs"`
	BMS   *float64 `json:"bms"`
	Orb40 *float64 `json:"orb_40"`
}

// Summary projects the full record down to the search projection.
func (p *Player) Summary() PlayerSummary {
	return PlayerSummary{
		UniqueID: p.UniqueID,
		Name:     p.Name,
		Team:     p.Team,
		Position: p.Position,
		League:   p.League,
		Class:    p.Class,
	}
}

// PlayerRow is a ranking row: the search projection plus games played and
// every allow-listed metric, keyed by column name in Metrics.
type PlayerRow struct {
	PlayerSummary
	Games   *float64            `json:"g"`
	Metrics map[string]*float64 `json:"metrics"`
}

// MetricValue returns the named metric for this row, or nil when absent.
func (r *PlayerRow) MetricValue(metric string) *float64 {
	if r.Metrics == nil {
		return nil
	}
	return r.Metrics[metric]
}

// TopPlayersResult pairs the (sanitized) ranking metric with the ranked rows.
type TopPlayersResult struct {
	Metric  string      `json:"metric"`
	Players []PlayerRow `json:"players"`
}

// SearchFilter holds the optional narrowing filters for player searches.
type SearchFilter struct {
	Query    string
	Team     string
	Position string
	Limit    int
}

// TopPlayersFilter holds the parameters for metric-ranked queries.
type TopPlayersFilter struct {
	Metric   string
	Position string
	Team     string
	Limit    int
	MinGames float64
}
