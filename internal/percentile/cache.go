// Package percentile maintains the 90th-percentile threshold cache that the
// composite player ranking reads. Thresholds are computed over every player
// meeting a minimum games-played bar and persisted as a JSON file so
// restarts do not pay the full-table scan again.
package percentile

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/cerebrochat/cerebrochat/internal/db"
)

const (
	// Percentile is the fixed percentile the cache tracks.
	Percentile = 0.9

	// MaxAge is how long a cache entry stays fresh.
	MaxAge = 12 * time.Hour

	cacheFileName = "percentile_thresholds.json"
)

// SampleSource supplies per-metric value samples for threshold computation.
type SampleSource interface {
	MetricSamples(ctx context.Context, minGames float64) (map[string][]float64, error)
}

// Entry is the persisted cache document. SampleSize is the largest per-metric
// sample count the thresholds were computed from, recorded for inspection.
type Entry struct {
	GeneratedAt time.Time          `json:"generatedAt"`
	MinGames    float64            `json:"minGames"`
	Percentile  float64            `json:"percentile"`
	SampleSize  int                `json:"sampleSize"`
	Thresholds  map[string]float64 `json:"thresholds"`
}

// Cache serves metric thresholds, rebuilding from the sample source when the
// cached entry is absent, stale, built for a different minGames, or missing
// a tracked metric. Concurrent rebuild requests are collapsed into one.
type Cache struct {
	source SampleSource
	path   string
	logger *zap.Logger
	now    func() time.Time

	group singleflight.Group
}

// NewCache creates a cache persisting under dir.
func NewCache(source SampleSource, dir string, logger *zap.Logger) *Cache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{
		source: source,
		path:   filepath.Join(dir, cacheFileName),
		logger: logger,
		now:    time.Now,
	}
}

// Thresholds returns the metric→90th-percentile map for the given
// games-played floor, rebuilding when the persisted entry cannot serve.
func (c *Cache) Thresholds(ctx context.Context, minGames float64) (map[string]float64, error) {
	if entry := c.load(); c.usable(entry, minGames) {
		return entry.Thresholds, nil
	}

	v, err, _ := c.group.Do(fmt.Sprintf("rebuild:%g", minGames), func() (any, error) {
		// Re-check under the flight: a concurrent caller may have just
		// rebuilt for the same minGames.
		if entry := c.load(); c.usable(entry, minGames) {
			return entry.Thresholds, nil
		}
		return c.rebuild(ctx, minGames)
	})
	if err != nil {
		return nil, err
	}
	return v.(map[string]float64), nil
}

// usable reports whether a loaded entry can serve a request.
func (c *Cache) usable(entry *Entry, minGames float64) bool {
	if entry == nil || entry.Thresholds == nil {
		return false
	}
	if entry.MinGames != minGames {
		return false
	}
	if c.now().Sub(entry.GeneratedAt) > MaxAge {
		return false
	}
	for _, metric := range db.MetricAllowList {
		if _, ok := entry.Thresholds[metric]; !ok {
			return false
		}
	}
	return true
}

func (c *Cache) load() *Entry {
	data, err := os.ReadFile(c.path)
	if err != nil {
		return nil
	}
	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		c.logger.Warn("discarding unreadable percentile cache",
			zap.String("path", c.path), zap.Error(err))
		return nil
	}
	return &entry
}

// rebuild recomputes thresholds from the sample source and persists them.
// A persist failure is logged but does not fail the request; the thresholds
// are still correct for this process.
func (c *Cache) rebuild(ctx context.Context, minGames float64) (map[string]float64, error) {
	started := c.now()
	samples, err := c.source.MetricSamples(ctx, minGames)
	if err != nil {
		return nil, fmt.Errorf("metric sample query failed: %w", err)
	}

	thresholds := make(map[string]float64, len(db.MetricAllowList))
	sampleSize := 0
	for _, metric := range db.MetricAllowList {
		values := samples[metric]
		if len(values) > sampleSize {
			sampleSize = len(values)
		}
		if v, ok := NearestRank(values, Percentile); ok {
			thresholds[metric] = v
		} else {
			// No finite samples for this metric: a zero threshold keeps
			// the entry complete without ever marking anyone elite by it.
			thresholds[metric] = 0
		}
	}

	entry := &Entry{
		GeneratedAt: c.now(),
		MinGames:    minGames,
		Percentile:  Percentile,
		SampleSize:  sampleSize,
		Thresholds:  thresholds,
	}
	if err := c.persist(entry); err != nil {
		c.logger.Warn("failed to persist percentile cache",
			zap.String("path", c.path), zap.Error(err))
	}

	c.logger.Info("rebuilt percentile thresholds",
		zap.Float64("minGames", minGames),
		zap.Int("metrics", len(thresholds)),
		zap.Duration("elapsed", c.now().Sub(started)))
	return thresholds, nil
}

func (c *Cache) persist(entry *Entry) error {
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}
	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode cache entry: %w", err)
	}
	if err := os.WriteFile(c.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}
	return nil
}

// NearestRank returns the value at the given percentile of values using the
// nearest-rank method (round up): sorted ascending, index
// clamp(ceil(p*n)-1, 0, n-1). The second return is false when no finite
// values exist.
func NearestRank(values []float64, p float64) (float64, bool) {
	finite := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			finite = append(finite, v)
		}
	}
	if len(finite) == 0 {
		return 0, false
	}
	sort.Float64s(finite)

	idx := int(math.Ceil(p*float64(len(finite)))) - 1
	if idx < 0 {
		idx = 0
	}
	if idx > len(finite)-1 {
		idx = len(finite) - 1
	}
	return finite[idx], true
}
