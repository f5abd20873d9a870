package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
)

const summaryColumns = "unique_id, name_split, team, position, league, class"

const playerColumns = summaryColumns + `,
	pts_g, reb_g, ast_g, fg, c_3pt, ft, stl_g, blk_g, to_g,
	min_g, g, c_2pt, efg, ts, usg, ppp, orb_g, drb_g, pf_g, a_to,
	ram, c_ram, psp, c_3pe, dsi, fgs, bms, orb_40`

// clampLimit bounds a caller-supplied limit to [1, 100].
func clampLimit(limit, fallback int) int {
	if limit <= 0 {
		limit = fallback
	}
	if limit < 1 {
		limit = 1
	}
	if limit > 100 {
		limit = 100
	}
	return limit
}

// SearchPlayers finds players by name substring, optionally narrowed by team
// and position substrings. Rows without a name are excluded. The limit
// defaults to 20 and is capped at 100.
func (db *DB) SearchPlayers(ctx context.Context, filter SearchFilter) ([]PlayerSummary, error) {
	query := `SELECT ` + summaryColumns + ` FROM ` + playersTable +
		` WHERE name_split IS NOT NULL AND name_split <> ''`
	args := []any{}
	argNum := 1

	if filter.Query != "" {
		query += fmt.Sprintf(" AND name_split ILIKE $%d", argNum)
		args = append(args, "%"+filter.Query+"%")
		argNum++
	}
	if filter.Team != "" {
		query += fmt.Sprintf(" AND team ILIKE $%d", argNum)
		args = append(args, "%"+filter.Team+"%")
		argNum++
	}
	if filter.Position != "" {
		query += fmt.Sprintf(" AND position ILIKE $%d", argNum)
		args = append(args, "%"+filter.Position+"%")
		argNum++
	}

	query += fmt.Sprintf(" LIMIT $%d", argNum)
	args = append(args, clampLimit(filter.Limit, 20))

	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("player search failed: %w", err)
	}
	defer rows.Close()

	var players []PlayerSummary
	for rows.Next() {
		var p PlayerSummary
		if err := rows.Scan(&p.UniqueID, &p.Name, &p.Team, &p.Position, &p.League, &p.Class); err != nil {
			return nil, fmt.Errorf("failed to scan player: %w", err)
		}
		players = append(players, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("player search failed: %w", err)
	}
	return players, nil
}

// GetPlayer fetches the full statistics record for one player.
// Returns nil when no row matches.
func (db *DB) GetPlayer(ctx context.Context, id string) (*Player, error) {
	var p Player
	err := db.pool.QueryRow(ctx,
		`SELECT `+playerColumns+` FROM `+playersTable+` WHERE unique_id = $1 LIMIT 1`,
		id,
	).Scan(
		&p.UniqueID, &p.Name, &p.Team, &p.Position, &p.League, &p.Class,
		&p.PtsG, &p.RebG, &p.AstG, &p.FG, &p.C3Pt, &p.FT, &p.StlG, &p.BlkG, &p.ToG,
		&p.MinG, &p.G, &p.C2Pt, &p.EFG, &p.TS, &p.Usg, &p.PPP, &p.OrbG, &p.DrbG, &p.PfG, &p.ATO,
		&p.RAM, &p.CRAM, &p.PSP, &p.C3PE, &p.DSI, &p.FGS, &p.BMS, &p.Orb40,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("player lookup failed: %w", err)
	}
	return &p, nil
}

// rankingColumns is the fixed projection for metric-ranked queries:
// summary fields, games played, then every allow-listed metric in
// MetricAllowList order.
var rankingColumns = summaryColumns + ", g, " + strings.Join(MetricAllowList, ", ")

func scanPlayerRow(rows pgx.Rows) (PlayerRow, error) {
	row := PlayerRow{Metrics: make(map[string]*float64, len(MetricAllowList))}
	dest := []any{
		&row.UniqueID, &row.Name, &row.Team, &row.Position, &row.League, &row.Class,
		&row.Games,
	}
	values := make([]*float64, len(MetricAllowList))
	for i := range values {
		dest = append(dest, &values[i])
	}
	if err := rows.Scan(dest...); err != nil {
		return row, fmt.Errorf("failed to scan ranking row: %w", err)
	}
	for i, metric := range MetricAllowList {
		row.Metrics[metric] = values[i]
	}
	return row, nil
}

// queryPlayerRows runs a ranking query with the shared WHERE skeleton.
func (db *DB) queryPlayerRows(ctx context.Context, filter TopPlayersFilter, orderBy string) ([]PlayerRow, error) {
	query := `SELECT ` + rankingColumns + ` FROM ` + playersTable +
		` WHERE name_split IS NOT NULL AND name_split <> '' AND g >= $1`
	args := []any{filter.MinGames}
	argNum := 2

	if filter.Position != "" {
		query += fmt.Sprintf(" AND position ILIKE $%d", argNum)
		args = append(args, "%"+filter.Position+"%")
		argNum++
	}
	if filter.Team != "" {
		query += fmt.Sprintf(" AND team ILIKE $%d", argNum)
		args = append(args, "%"+filter.Team+"%")
		argNum++
	}

	if orderBy != "" {
		query += " ORDER BY " + orderBy
	}
	query += fmt.Sprintf(" LIMIT $%d", argNum)
	args = append(args, filter.Limit)

	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ranking query failed: %w", err)
	}
	defer rows.Close()

	var players []PlayerRow
	for rows.Next() {
		row, err := scanPlayerRow(rows)
		if err != nil {
			return nil, err
		}
		players = append(players, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ranking query failed: %w", err)
	}
	return players, nil
}

// TopPlayersByMetric returns players ordered descending by an allow-listed
// metric, filtered by optional position/team substrings and a minimum games
// threshold. Unrecognized metrics fall back to DefaultMetric.
func (db *DB) TopPlayersByMetric(ctx context.Context, filter TopPlayersFilter) (*TopPlayersResult, error) {
	metric := SafeMetric(filter.Metric)
	filter.Metric = metric
	filter.Limit = clampLimit(filter.Limit, 10)

	// metric passed allow-list validation above; safe to interpolate
	players, err := db.queryPlayerRows(ctx, filter, metric+" DESC NULLS LAST")
	if err != nil {
		return nil, err
	}
	return &TopPlayersResult{Metric: metric, Players: players}, nil
}

// CandidatePool returns rows for composite ranking, ordered descending by
// the focus metric (DefaultMetric when none is given) so the pool prefix
// always holds the strongest candidates rather than an arbitrary storage
// subset. The limit here is a pool size chosen by the caller, not a user
// limit, so it is not clamped to the search cap.
func (db *DB) CandidatePool(ctx context.Context, filter TopPlayersFilter) ([]PlayerRow, error) {
	if filter.Limit <= 0 {
		filter.Limit = 25
	}
	metric := SafeMetric(filter.Metric)
	filter.Metric = metric

	// metric passed allow-list validation above; safe to interpolate
	return db.queryPlayerRows(ctx, filter, metric+" DESC NULLS LAST")
}

// MetricSamples returns every allow-listed metric value across players with
// at least minGames games, keyed by metric name. Null values are skipped.
// Used by the percentile threshold cache.
func (db *DB) MetricSamples(ctx context.Context, minGames float64) (map[string][]float64, error) {
	query := `SELECT ` + strings.Join(MetricAllowList, ", ") + ` FROM ` + playersTable +
		` WHERE name_split IS NOT NULL AND name_split <> '' AND g >= $1`

	rows, err := db.pool.Query(ctx, query, minGames)
	if err != nil {
		return nil, fmt.Errorf("metric sample query failed: %w", err)
	}
	defer rows.Close()

	samples := make(map[string][]float64, len(MetricAllowList))
	for rows.Next() {
		values := make([]*float64, len(MetricAllowList))
		dest := make([]any, len(values))
		for i := range values {
			dest[i] = &values[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan metric sample: %w", err)
		}
		for i, metric := range MetricAllowList {
			if values[i] != nil {
				samples[metric] = append(samples[metric], *values[i])
			}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("metric sample query failed: %w", err)
	}
	return samples, nil
}
