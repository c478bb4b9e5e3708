package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLoadConfigDefaults: no file configured means pure defaults.
func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.InDelta(t, 1.4, cfg.Sync.PriceMultiplier, 1e-9)
	assert.Equal(t, 5, cfg.Sync.RetentionCount)
	assert.Equal(t, 10, cfg.Sync.WorkerPoolSize)
	assert.Equal(t, 50, cfg.Sync.SkuChunkLimit)
	assert.Equal(t, 100, cfg.Sync.PageSize)
	assert.Equal(t, 25, cfg.Sync.QuantityThreshold)
}

// TestLoadConfigOverlay: a partial yaml file overrides only what it names.
func TestLoadConfigOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.yaml")
	content := "sync:\n  price-multiplier: 1.6\n  worker-pool-size: 40\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.InDelta(t, 1.6, cfg.Sync.PriceMultiplier, 1e-9)
	assert.Equal(t, 40, cfg.Sync.WorkerPoolSize)
	// untouched values stay at defaults
	assert.Equal(t, 5, cfg.Sync.RetentionCount)
	assert.Equal(t, 50, cfg.Sync.SkuChunkLimit)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig("/does/not/exist.yaml")
	assert.Error(t, err)
}
