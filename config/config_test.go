package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/brensch/floodsnek/strategy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mapLookup(m map[string]string) LookupFunc {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestLoadServer_Defaults(t *testing.T) {
	cfg, err := LoadServer([]string{"simple"}, mapLookup(nil))
	require.NoError(t, err)

	assert.Equal(t, ":8000", cfg.Addr)
	assert.Equal(t, "simple", cfg.Strategy)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.False(t, cfg.Parallel)
	assert.Equal(t, DefaultAppearance, cfg.Appearance)
	assert.Equal(t, 5*time.Second, cfg.ReadHeaderTimeout)
}

func TestLoadServer_EnvAndFlags(t *testing.T) {
	env := mapLookup(map[string]string{
		"PORT":             "9001",
		"STRATEGY":         "nearest",
		"LOG_LEVEL":        "debug",
		"PARALLEL_SCORING": "true",
		"SEED":             "42",
		"COLOR":            "#123456",
		"WRITE_TIMEOUT":    "not-a-duration",
	})

	cfg, err := LoadServer(nil, env)
	require.NoError(t, err)
	assert.Equal(t, ":9001", cfg.Addr)
	assert.Equal(t, "nearest", cfg.Strategy)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.True(t, cfg.Parallel)
	assert.Equal(t, int64(42), cfg.Seed)
	assert.Equal(t, "#123456", cfg.Appearance.Color)
	assert.Equal(t, 10*time.Second, cfg.WriteTimeout)
	assert.Len(t, cfg.StrategyOptions(), 2)

	// Flags and the positional argument win over the environment.
	cfg, err = LoadServer([]string{"-addr", "127.0.0.1:7000", "-log-format", "pretty", "Random"}, env)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:7000", cfg.Addr)
	assert.Equal(t, "random", cfg.Strategy)
	assert.Equal(t, "pretty", cfg.LogFormat)
}

func TestLoadServer_Errors(t *testing.T) {
	_, err := LoadServer(nil, mapLookup(nil))
	assert.ErrorIs(t, err, ErrNoStrategy)

	_, err = LoadServer([]string{"greedy"}, mapLookup(nil))
	assert.ErrorIs(t, err, strategy.ErrUnknownStrategy)

	_, err = LoadServer([]string{"-log-level", "loud", "simple"}, mapLookup(nil))
	assert.Error(t, err)

	_, err = LoadServer([]string{"-log-format", "xml", "simple"}, mapLookup(nil))
	assert.Error(t, err)

	_, err = LoadServer([]string{"-nope", "simple"}, mapLookup(nil))
	assert.Error(t, err)
}

func TestEnv(t *testing.T) {
	env := NewEnv(mapLookup(map[string]string{
		"S": "x", "I": " 7 ", "BAD": "seven", "D": "250ms", "B": "1", "EMPTY": "",
	}))

	assert.Equal(t, "x", env.String("S", "d"))
	assert.Equal(t, "d", env.String("EMPTY", "d"))
	assert.Equal(t, 7, env.Int("I", 1))
	assert.Equal(t, 1, env.Int("BAD", 1))
	assert.Equal(t, int64(7), env.Int64("I", 1))
	assert.Equal(t, 250*time.Millisecond, env.Duration("D", time.Second))
	assert.Equal(t, time.Second, env.Duration("BAD", time.Second))
	assert.True(t, env.Bool("B", false))
	assert.True(t, env.Bool("MISSING", true))
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("FLOODSNEK_TEST_DOTENV=from-file\n"), 0o644))

	t.Setenv("FLOODSNEK_TEST_DOTENV", "")
	require.NoError(t, os.Unsetenv("FLOODSNEK_TEST_DOTENV"))

	loaded, err := LoadDotEnv(filepath.Join(dir, "missing.env"), path)
	require.NoError(t, err)
	assert.True(t, loaded)
	assert.Equal(t, "from-file", os.Getenv("FLOODSNEK_TEST_DOTENV"))

	loaded, err = LoadDotEnv(filepath.Join(dir, "missing.env"))
	require.NoError(t, err)
	assert.False(t, loaded)
}
