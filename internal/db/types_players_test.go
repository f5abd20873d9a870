package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSafeMetric(t *testing.T) {
	assert.Equal(t, "ast_g", SafeMetric("ast_g"))
	assert.Equal(t, "ts", SafeMetric("ts"))

	// Anything outside the allow-list falls back and never reaches SQL text.
	assert.Equal(t, DefaultMetric, SafeMetric("unknown"))
	assert.Equal(t, DefaultMetric, SafeMetric("pts_g; DROP TABLE users"))
	assert.Equal(t, DefaultMetric, SafeMetric(""))
	assert.Equal(t, DefaultMetric, SafeMetric("PTS_G"), "matching is case-sensitive")
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, 20, clampLimit(0, 20))
	assert.Equal(t, 20, clampLimit(-5, 20))
	assert.Equal(t, 7, clampLimit(7, 20))
	assert.Equal(t, 100, clampLimit(500, 20))
	assert.Equal(t, 1, clampLimit(0, 0))
}

func TestMetricValue(t *testing.T) {
	v := 8.1
	row := PlayerRow{Metrics: map[string]*float64{"ast_g": &v}}
	assert.Equal(t, &v, row.MetricValue("ast_g"))
	assert.Nil(t, row.MetricValue("pts_g"))

	var empty PlayerRow
	assert.Nil(t, empty.MetricValue("ast_g"))
}

func TestPlayerSummaryProjection(t *testing.T) {
	p := Player{UniqueID: "p1", Name: "Jane Doe", Team: "State", Position: "PG"}
	s := p.Summary()
	assert.Equal(t, "p1", s.UniqueID)
	assert.Equal(t, "Jane Doe", s.Name)
	assert.Equal(t, "State", s.Team)
}
