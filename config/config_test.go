package config

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nathoo/dungeoncore/engine/effects"
	"github.com/nathoo/dungeoncore/refdata"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dungeoncore.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_MissingFileGivesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_EmptyPath(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 6, cfg.BoardWidth)
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
log_level: debug
log_format: json
merge_strategy: min
seed: 42
board_width: 7
scripts_dir: behaviours
reference:
  fetch: true
  urls:
    - https://example.com/DungeonsAndEncounters.json
  files:
    - dump.json
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, effects.MergeMin, cfg.Strategy())
	assert.Equal(t, int64(42), cfg.Seed)
	assert.Equal(t, 7, cfg.BoardWidth)
	assert.Equal(t, "behaviours", cfg.ScriptsDir)
	// Unset keys keep their defaults.
	assert.Equal(t, 256, cfg.CacheSize)

	fetchers := cfg.Fetchers()
	require.Len(t, fetchers, 2)
	assert.Equal(t, refdata.HTTPFetcher{URL: "https://example.com/DungeonsAndEncounters.json"}, fetchers[0])
	assert.Equal(t, refdata.FileFetcher{Path: "dump.json"}, fetchers[1])
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeConfig(t, "log_level: debug\nseed: 1\n")
	t.Setenv("DUNGEONCORE_LOG_LEVEL", "WARN")
	t.Setenv("DUNGEONCORE_SEED", "99")
	t.Setenv("DUNGEONCORE_MERGE_STRATEGY", "replace")
	t.Setenv("DUNGEONCORE_FETCH", "true")
	t.Setenv("DUNGEONCORE_REFERENCE_FILE", "a.json, b.json")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, int64(99), cfg.Seed)
	assert.Equal(t, effects.MergeReplace, cfg.Strategy())
	assert.Equal(t, []string{"a.json", "b.json"}, cfg.Reference.Files)
}

func TestLoad_BadEnv(t *testing.T) {
	t.Setenv("DUNGEONCORE_SEED", "soon")
	_, err := Load("")
	assert.ErrorContains(t, err, "DUNGEONCORE_SEED")
}

func TestLoad_BadYAML(t *testing.T) {
	path := writeConfig(t, "log_level: [unclosed\n")
	_, err := Load(path)
	assert.ErrorContains(t, err, "parsing config")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"bad level", func(c *Config) { c.LogLevel = "loud" }, "LogLevel must be one of"},
		{"bad format", func(c *Config) { c.LogFormat = "xml" }, "LogFormat must be one of"},
		{"bad strategy", func(c *Config) { c.MergeStrategy = "sum" }, "MergeStrategy must be one of"},
		{"narrow board", func(c *Config) { c.BoardWidth = 4 }, "BoardWidth must be at least 5"},
		{"wide board", func(c *Config) { c.BoardWidth = 8 }, "BoardWidth must be at most 7"},
		{"negative cache", func(c *Config) { c.CacheSize = -1 }, "CacheSize must be at least 0"},
		{"bad url", func(c *Config) { c.Reference.URLs = []string{"not a url"} }, "is not a URL"},
		{"fetch without source", func(c *Config) { c.Reference.Fetch = true }, "no urls or files"},
		{"source without fetch", func(c *Config) { c.Reference.Files = []string{"x.json"} }, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := Validate(cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestValidate_ReportsAllProblems(t *testing.T) {
	cfg := Default()
	cfg.LogLevel = "loud"
	cfg.BoardWidth = 9
	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LogLevel")
	assert.Contains(t, err.Error(), "BoardWidth")
}

func TestFetchers_Disabled(t *testing.T) {
	cfg := Default()
	cfg.Reference.URLs = []string{"https://example.com/x.json"}
	assert.Nil(t, cfg.Fetchers())
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	cfg := Default()
	cfg.LogLevel = "warn"
	cfg.LogFormat = "json"
	log := NewLogger(cfg, &buf)

	log.Info("hidden")
	log.Warn("shown", "floor", 2)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)
	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &rec))
	assert.Equal(t, "shown", rec["msg"])
	assert.Equal(t, float64(2), rec["floor"])
}

func TestLevel(t *testing.T) {
	for name, want := range map[string]string{
		"debug": "DEBUG", "info": "INFO", "warning": "WARN", "error": "ERROR", "": "INFO",
	} {
		cfg := Config{LogLevel: name}
		assert.Equal(t, want, cfg.Level().String(), name)
	}
}
