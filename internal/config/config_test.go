package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"us", "uk", "de"}, cfg.Markets)
	assert.Equal(t, 200, cfg.Fetch.MaxPages)
	assert.Equal(t, 500, cfg.Fetch.PageSize)
	assert.Equal(t, 5, cfg.Fetch.CheckpointInterval)
	assert.Equal(t, 30, cfg.Logo.BatchSize)
	assert.Equal(t, 8, cfg.Logo.ProbeTimeoutSecs)
	assert.Equal(t, 200, cfg.Logo.MinImageBytes)
	assert.Equal(t, 40, cfg.Classify.BatchSize)
	assert.False(t, cfg.Classify.Enabled)
	assert.Equal(t, []string{"commission", "logo", "name_length"}, cfg.Dedup.WithinMarketKeys)
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "data", cfg.Output.DataDir)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("BRANDSWITCH_FETCH_MAX_PAGES", "9")
	t.Setenv("BRANDSWITCH_LOG_LEVEL", "debug")
	t.Setenv("BRANDSWITCH_STORE_DRIVER", "postgres")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9, cfg.Fetch.MaxPages)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "postgres", cfg.Store.Driver)
}

func TestLoadFeedsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feeds.yaml")
	doc := `feeds:
  - name: alpha
    base_url: https://feeds.alpha.example/v2/advertisers
    api_key: key-a
    priority: 1
  - name: beta
    base_url: https://api.beta.example/listings
    api_key: key-b
    priority: 2
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	feeds, err := LoadFeedsFile(path)
	require.NoError(t, err)
	require.Len(t, feeds, 2)
	assert.Equal(t, "alpha", feeds[0].Name)
	assert.Equal(t, 1, feeds[0].Priority)
	assert.Equal(t, "https://api.beta.example/listings", feeds[1].BaseURL)
}

func TestLoadFeedsFile_Missing(t *testing.T) {
	_, err := LoadFeedsFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestInitLogger_BadLevel(t *testing.T) {
	assert.Error(t, InitLogger(LogConfig{Level: "nope", Format: "json"}))
	assert.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
}
