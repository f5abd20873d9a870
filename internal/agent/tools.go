package agent

import (
	"context"
	"fmt"
	"math"
	"sort"

	"go.uber.org/zap"

	"github.com/cerebrochat/cerebrochat/internal/db"
)

const (
	defaultTopLimit   = 10
	defaultMinGames   = 5
	candidatePoolMult = 5
	candidatePoolMin  = 25
	elitePercentile   = 0.9
)

// RankedPlayer is a candidate-pool row annotated with how many tracked
// metrics clear the 90th-percentile threshold.
type RankedPlayer struct {
	db.PlayerRow
	EliteCount int `json:"eliteCount"`
}

// TopByPositionResult is the composite-ranking payload.
type TopByPositionResult struct {
	Position    string         `json:"position,omitempty"`
	FocusMetric string         `json:"focusMetric,omitempty"`
	Percentile  float64        `json:"percentile"`
	MinGames    float64        `json:"minGames"`
	Players     []RankedPlayer `json:"players"`
}

// Dispatcher executes the concrete data operation a plan names.
type Dispatcher struct {
	store      PlayerStore
	thresholds ThresholdSource
	resolver   *Resolver
	logger     *zap.Logger
}

// NewDispatcher creates a dispatcher over the given store and threshold
// source.
func NewDispatcher(store PlayerStore, thresholds ThresholdSource, resolver *Resolver, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{store: store, thresholds: thresholds, resolver: resolver, logger: logger}
}

// Run executes a plan on the chat path: search_players goes through the
// disambiguating resolver so ambiguity surfaces to the user.
func (d *Dispatcher) Run(ctx context.Context, plan Plan) (*ToolResult, error) {
	d.logger.Info("invoking tool",
		zap.String("tool", string(plan.Tool)),
		zap.String("query", plan.Args.SearchQuery()),
		zap.String("metric", plan.Args.Metric),
		zap.String("position", plan.Args.Position))

	switch plan.Tool {
	case ToolSearchPlayers:
		return d.resolver.Resolve(ctx, plan.Args)
	case ToolGetPlayerByID:
		return d.getPlayerByID(ctx, plan.Args)
	case ToolTopPlayers:
		return d.topPlayers(ctx, plan.Args)
	case ToolTopPlayersByPosition:
		result, err := d.TopPlayersByPosition(ctx, plan.Args)
		if err != nil {
			return nil, err
		}
		return &ToolResult{Tool: string(ToolTopPlayersByPosition), Result: result}, nil
	default:
		return &ToolResult{Tool: string(ToolNone), Result: nil}, nil
	}
}

// RunDirect executes a plan on the report path: search_players is a plain
// substring search with no disambiguation.
func (d *Dispatcher) RunDirect(ctx context.Context, plan Plan) (*ToolResult, error) {
	if plan.Tool != ToolSearchPlayers {
		return d.Run(ctx, plan)
	}
	matches, err := d.store.SearchPlayers(ctx, db.SearchFilter{
		Query:    plan.Args.SearchQuery(),
		Team:     plan.Args.Team,
		Position: plan.Args.Position,
		Limit:    plan.Args.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("player search failed: %w", err)
	}
	return &ToolResult{Tool: string(ToolSearchPlayers), Result: matches}, nil
}

func (d *Dispatcher) getPlayerByID(ctx context.Context, args PlanArgs) (*ToolResult, error) {
	if args.ID == "" {
		return nil, fmt.Errorf("get_player_by_id requires an id")
	}
	player, err := d.store.GetPlayer(ctx, args.ID)
	if err != nil {
		return nil, fmt.Errorf("player fetch failed: %w", err)
	}
	if player == nil {
		return nil, &ErrPlayerNotFound{ID: args.ID}
	}
	return &ToolResult{Tool: string(ToolGetPlayerByID), Result: player}, nil
}

func (d *Dispatcher) topPlayers(ctx context.Context, args PlanArgs) (*ToolResult, error) {
	result, err := d.store.TopPlayersByMetric(ctx, db.TopPlayersFilter{
		Metric:   args.Metric,
		Position: args.Position,
		Team:     args.Team,
		Limit:    orDefault(args.Limit, defaultTopLimit),
		MinGames: orDefaultF(args.MinGames, defaultMinGames),
	})
	if err != nil {
		return nil, fmt.Errorf("top players query failed: %w", err)
	}
	return &ToolResult{Tool: string(ToolTopPlayers), Result: result}, nil
}

// TopPlayersByPosition ranks a candidate pool by elite metric count: the
// number of tracked metrics above the cached 90th-percentile threshold.
// Ties break by focus metric (when given), then elite count, then true
// shooting, then points per possession.
func (d *Dispatcher) TopPlayersByPosition(ctx context.Context, args PlanArgs) (*TopByPositionResult, error) {
	limit := orDefault(args.Limit, defaultTopLimit)
	if limit < 1 {
		limit = 1
	}
	if limit > 100 {
		limit = 100
	}
	minGames := orDefaultF(args.MinGames, defaultMinGames)
	focus := ""
	if args.Metric != "" {
		focus = db.SafeMetric(args.Metric)
	}

	thresholds, err := d.thresholds.Thresholds(ctx, minGames)
	if err != nil {
		return nil, fmt.Errorf("percentile thresholds unavailable: %w", err)
	}

	poolSize := limit * candidatePoolMult
	if poolSize < candidatePoolMin {
		poolSize = candidatePoolMin
	}
	// The store orders the pool by the focus metric, so the strongest
	// candidates survive the pool-size cut before elite counting.
	pool, err := d.store.CandidatePool(ctx, db.TopPlayersFilter{
		Metric:   focus,
		Position: args.Position,
		Team:     args.Team,
		Limit:    poolSize,
		MinGames: minGames,
	})
	if err != nil {
		return nil, fmt.Errorf("candidate pool query failed: %w", err)
	}

	var ranked []RankedPlayer
	for _, row := range pool {
		elite := 0
		for _, metric := range db.MetricAllowList {
			threshold, tracked := thresholds[metric]
			if !tracked {
				continue
			}
			if v := row.MetricValue(metric); v != nil && *v > threshold {
				elite++
			}
		}
		if elite > 0 {
			ranked = append(ranked, RankedPlayer{PlayerRow: row, EliteCount: elite})
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if focus != "" {
			fi := metricOrNegInf(ranked[i].PlayerRow, focus)
			fj := metricOrNegInf(ranked[j].PlayerRow, focus)
			if fi != fj {
				return fi > fj
			}
		}
		if ranked[i].EliteCount != ranked[j].EliteCount {
			return ranked[i].EliteCount > ranked[j].EliteCount
		}
		ti := metricOrNegInf(ranked[i].PlayerRow, "ts")
		tj := metricOrNegInf(ranked[j].PlayerRow, "ts")
		if ti != tj {
			return ti > tj
		}
		return metricOrNegInf(ranked[i].PlayerRow, "ppp") > metricOrNegInf(ranked[j].PlayerRow, "ppp")
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return &TopByPositionResult{
		Position:    args.Position,
		FocusMetric: focus,
		Percentile:  elitePercentile,
		MinGames:    minGames,
		Players:     ranked,
	}, nil
}

func metricOrNegInf(row db.PlayerRow, metric string) float64 {
	if v := row.MetricValue(metric); v != nil {
		return *v
	}
	return math.Inf(-1)
}

func orDefault(v, fallback int) int {
	if v > 0 {
		return v
	}
	return fallback
}

func orDefaultF(v, fallback float64) float64 {
	if v > 0 {
		return v
	}
	return fallback
}
