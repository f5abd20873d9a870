// Package config provides configuration loading and validation for the server.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// App holds the top-level service configuration, read from environment
// variables. Missing values use defaults; DatabaseURL is required for serve.
type App struct {
	Port        int
	DatabaseURL string

	// DataDir holds the scraped CSV exports; the vector index and the
	// percentile cache live under it unless overridden.
	DataDir            string
	VectorIndexPath    string
	PercentileCacheDir string
}

// LoadApp reads the application configuration from the environment.
func LoadApp() App {
	dataDir := GetEnvString("DATA_DIR", "data")
	return App{
		Port:               GetEnvInt("PORT", 5000),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		DataDir:            dataDir,
		VectorIndexPath:    GetEnvString("VECTOR_INDEX_PATH", filepath.Join(dataDir, "vector_index.json")),
		PercentileCacheDir: GetEnvString("PERCENTILE_CACHE_DIR", filepath.Join(dataDir, "cache")),
	}
}

// GetEnvString gets an environment variable as a string with a default value.
func GetEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// GetEnvInt gets an environment variable as an integer with a default value.
func GetEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// GetEnvFloat gets an environment variable as a float64. The second return
// value reports whether the variable was set to a parseable number, so
// callers can distinguish "unset" from zero.
func GetEnvFloat(key string) (float64, bool) {
	value := os.Getenv(key)
	if value == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// GetEnvList gets a comma-separated environment variable as a trimmed,
// empty-filtered slice with a default value.
func GetEnvList(key, defaultValue string) []string {
	raw := GetEnvString(key, defaultValue)
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
