package agent

import (
	"regexp"
	"strconv"
	"strings"
)

// reportIntentRe short-circuits routing into report generation.
var reportIntentRe = regexp.MustCompile(`(?i)\b(scouting report|scout report|player report|report|write[\s-]?up)\b`)

// IsReportIntent reports whether the message asks for a scouting report.
func IsReportIntent(message string) bool {
	return reportIntentRe.MatchString(message)
}

// rankingIntentRe gates the top-by-metric detectors: without a ranking word
// the message is not asking for a leaderboard.
var rankingIntentRe = regexp.MustCompile(`(?i)\b(best|top|most|highest|leaders?)\b`)

// compositeIntentRe detects "most effective/efficient/impactful" phrasing
// that names no single metric.
var compositeIntentRe = regexp.MustCompile(`(?i)\b(most\s+(effective|efficient|impactful)|best\s+overall)\b`)

// topNRe extracts an explicit count from "top 5 ..." phrasing.
var topNRe = regexp.MustCompile(`(?i)\btop\s+(\d{1,3})\b`)

// positionPatterns map position phrasing to canonical position tokens.
// Multi-word synonyms are listed before their abbreviations so "point guard"
// wins over the bare "guard".
var positionPatterns = []struct {
	re       *regexp.Regexp
	position string
}{
	{regexp.MustCompile(`(?i)\bpoint\s+guards?\b`), "PG"},
	{regexp.MustCompile(`(?i)\bshooting\s+guards?\b`), "SG"},
	{regexp.MustCompile(`(?i)\bsmall\s+forwards?\b`), "SF"},
	{regexp.MustCompile(`(?i)\bpower\s+forwards?\b`), "PF"},
	{regexp.MustCompile(`(?i)\bpgs?\b`), "PG"},
	{regexp.MustCompile(`(?i)\bsgs?\b`), "SG"},
	{regexp.MustCompile(`(?i)\bsfs?\b`), "SF"},
	{regexp.MustCompile(`(?i)\bpfs?\b`), "PF"},
	{regexp.MustCompile(`(?i)\bcenters?\b`), "C"},
	{regexp.MustCompile(`(?i)\bguards?\b`), "G"},
	{regexp.MustCompile(`(?i)\bforwards?\b`), "F"},
	{regexp.MustCompile(`(?i)\bbig\s+m[ae]n\b`), "C"},
}

// DetectPosition extracts a canonical position token from the message, or
// "" when none is present.
func DetectPosition(message string) string {
	for _, p := range positionPatterns {
		if p.re.MatchString(message) {
			return p.position
		}
	}
	return ""
}

// metricPatterns map counting-stat phrasing to metric columns. Checked in
// order; the first hit wins.
var metricPatterns = []struct {
	re     *regexp.Regexp
	metric string
}{
	{regexp.MustCompile(`(?i)\b(points?|scorers?|scoring|ppg)\b`), "pts_g"},
	{regexp.MustCompile(`(?i)\b(rebounds?|rebounders?|rebounding|boards?|rpg)\b`), "reb_g"},
	{regexp.MustCompile(`(?i)\b(assists?|passers?|passing|playmakers?|apg)\b`), "ast_g"},
	{regexp.MustCompile(`(?i)\b(steals?|spg)\b`), "stl_g"},
	{regexp.MustCompile(`(?i)\b(blocks?|shot[\s-]?blockers?|bpg)\b`), "blk_g"},
	{regexp.MustCompile(`(?i)\b(three[\s-]?point|3[\s-]?point|3pt|threes?)\b`), "c_3pt"},
	{regexp.MustCompile(`(?i)\bfree[\s-]?throws?\b`), "ft"},
	{regexp.MustCompile(`(?i)\bfield[\s-]?goals?\b`), "fg"},
	{regexp.MustCompile(`(?i)\busage\b`), "usg"},
}

// efficiencyPatterns handle efficiency-ratio phrasing that the counting
// table above would miss.
var efficiencyPatterns = []struct {
	re     *regexp.Regexp
	metric string
}{
	{regexp.MustCompile(`(?i)\btrue[\s-]?shooting\b|\bts%\b`), "ts"},
	{regexp.MustCompile(`(?i)\beffective\s+field[\s-]?goal\b|\befg%?\b`), "efg"},
	{regexp.MustCompile(`(?i)\bpoints?\s+per\s+possession\b|\bppp\b`), "ppp"},
	{regexp.MustCompile(`(?i)\bassist[\s-/]?to[\s-/]?turnover\b|\bast?[\s-]?/[\s-]?to\b`), "a_to"},
}

// DetectMetric maps stat phrasing to a metric column, falling back to the
// efficiency sub-detector. Returns "" when no metric phrasing is present.
func DetectMetric(message string) string {
	for _, m := range metricPatterns {
		if m.re.MatchString(message) {
			return m.metric
		}
	}
	for _, m := range efficiencyPatterns {
		if m.re.MatchString(message) {
			return m.metric
		}
	}
	return ""
}

// DetectTopByMetric recognizes "top/best <position> by <metric>" phrasing.
// Position, ranking word, and metric must all resolve; otherwise nil.
func DetectTopByMetric(message string) *Plan {
	position := DetectPosition(message)
	if position == "" || !rankingIntentRe.MatchString(message) {
		return nil
	}
	metric := DetectMetric(message)
	if metric == "" {
		return nil
	}
	return &Plan{
		Tool: ToolTopPlayers,
		Args: PlanArgs{
			Metric:   metric,
			Position: position,
			Limit:    detectLimit(message),
		},
	}
}

// DetectCompositeRanking recognizes "most effective/efficient/impactful
// <position>" phrasing, which names no single metric and ranks by elite
// metric count instead.
func DetectCompositeRanking(message string) *Plan {
	position := DetectPosition(message)
	if position == "" || !compositeIntentRe.MatchString(message) {
		return nil
	}
	plan := &Plan{
		Tool: ToolTopPlayersByPosition,
		Args: PlanArgs{
			Position: position,
			Limit:    detectLimit(message),
		},
	}
	// "most efficient scorer" keeps scoring as the focus metric.
	if metric := DetectMetric(message); metric != "" && !strings.EqualFold(metric, "efg") {
		plan.Args.Metric = metric
	}
	return plan
}

// DetectPlan runs the deterministic detectors in order. Returns nil when
// neither fires, meaning the caller should fall back to the LLM router.
func DetectPlan(message string) *Plan {
	if plan := DetectTopByMetric(message); plan != nil {
		return plan
	}
	return DetectCompositeRanking(message)
}

func detectLimit(message string) int {
	m := topNRe.FindStringSubmatch(message)
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return n
}
