package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetEnvString(t *testing.T) {
	t.Setenv("TEST_STRING_VAR", "value")
	assert.Equal(t, "value", GetEnvString("TEST_STRING_VAR", "default"))
	assert.Equal(t, "default", GetEnvString("TEST_STRING_VAR_UNSET", "default"))
}

func TestGetEnvInt(t *testing.T) {
	t.Setenv("TEST_INT_VAR", "42")
	assert.Equal(t, 42, GetEnvInt("TEST_INT_VAR", 7))
	assert.Equal(t, 7, GetEnvInt("TEST_INT_VAR_UNSET", 7))

	t.Setenv("TEST_INT_BAD", "not-a-number")
	assert.Equal(t, 7, GetEnvInt("TEST_INT_BAD", 7))
}

func TestGetEnvFloat(t *testing.T) {
	t.Setenv("TEST_FLOAT_VAR", "0.25")
	v, ok := GetEnvFloat("TEST_FLOAT_VAR")
	assert.True(t, ok)
	assert.Equal(t, 0.25, v)

	// Unset and unparseable both report not-set.
	_, ok = GetEnvFloat("TEST_FLOAT_VAR_UNSET")
	assert.False(t, ok)

	t.Setenv("TEST_FLOAT_BAD", "warm")
	_, ok = GetEnvFloat("TEST_FLOAT_BAD")
	assert.False(t, ok)
}

func TestGetEnvList(t *testing.T) {
	t.Setenv("TEST_LIST_VAR", "a, b ,,c")
	assert.Equal(t, []string{"a", "b", "c"}, GetEnvList("TEST_LIST_VAR", ""))
	assert.Equal(t, []string{"x", "y"}, GetEnvList("TEST_LIST_VAR_UNSET", "x,y"))
}

func TestLoadAppDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("DATA_DIR", "")
	t.Setenv("VECTOR_INDEX_PATH", "")
	t.Setenv("PERCENTILE_CACHE_DIR", "")

	app := LoadApp()
	assert.Equal(t, 5000, app.Port)
	assert.Equal(t, "data", app.DataDir)
	assert.Contains(t, app.VectorIndexPath, "vector_index.json")
}

func TestNewJWTConfig(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret-at-least-32-characters!!")
	t.Setenv("JWT_EXPIRATION_HOURS", "48")

	cfg, err := NewJWTConfig()
	require.NoError(t, err)
	assert.Equal(t, 48, cfg.ExpirationHours)
}

func TestNewJWTConfigMissingSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	_, err := NewJWTConfig()
	assert.Error(t, err)
}

func TestNewJWTConfigInvalidExpiration(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret-at-least-32-characters!!")
	t.Setenv("JWT_EXPIRATION_HOURS", "0")
	_, err := NewJWTConfig()
	assert.Error(t, err)
}

func TestPasswordHashRoundtrip(t *testing.T) {
	cfg := &PasswordConfig{BcryptCost: 10}

	hash, err := cfg.HashPassword("correct horse")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse", hash)

	assert.True(t, cfg.VerifyPassword("correct horse", hash))
	assert.False(t, cfg.VerifyPassword("wrong horse", hash))
}

func TestPasswordPepperChangesVerification(t *testing.T) {
	peppered := &PasswordConfig{BcryptCost: 10, Pepper: "global-secret"}
	plain := &PasswordConfig{BcryptCost: 10}

	hash, err := peppered.HashPassword("correct horse")
	require.NoError(t, err)

	assert.True(t, peppered.VerifyPassword("correct horse", hash))
	assert.False(t, plain.VerifyPassword("correct horse", hash))
}

func TestNewPasswordConfigCostBounds(t *testing.T) {
	t.Setenv("BCRYPT_COST", "9")
	_, err := NewPasswordConfig()
	assert.Error(t, err)

	t.Setenv("BCRYPT_COST", "15")
	_, err = NewPasswordConfig()
	assert.Error(t, err)

	t.Setenv("BCRYPT_COST", "")
	cfg, err := NewPasswordConfig()
	require.NoError(t, err)
	assert.Equal(t, 12, cfg.BcryptCost)
}
