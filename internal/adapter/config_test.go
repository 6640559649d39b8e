package adapter

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/sift/internal/query"
	"github.com/mmcdole/sift/internal/selection"
)

func TestDefaultConfigMatchesQueryDefaults(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, query.DefaultConfig(), cfg.QueryConfig())
	assert.Equal(t, selection.Multiple, cfg.SelectionMode())
	assert.Equal(t, ProviderTypeCatalog, cfg.Provider.Type)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfigWithoutFile(t *testing.T) {
	cfg, err := loadConfig(viper.New(), t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, DefaultConfig().QueryConfig(), cfg.QueryConfig())
	assert.Equal(t, 5, cfg.View.Overscan)
}

func TestLoadConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	yaml := `
provider:
  type: http
  url: https://search.example.com
query:
  debounce: 150ms
  limit: 20
selection:
  mode: Single
view:
  overscan: 3
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := loadConfig(viper.New(), dir)
	require.NoError(t, err)

	assert.Equal(t, ProviderTypeHTTP, cfg.Provider.Type)
	assert.Equal(t, "https://search.example.com", cfg.Provider.URL)
	assert.Equal(t, 150*time.Millisecond, cfg.Query.Debounce)
	assert.Equal(t, 20, cfg.Query.Limit)
	assert.Equal(t, 10*time.Second, cfg.Query.Timeout)
	assert.Equal(t, selection.Single, cfg.SelectionMode())
	assert.Equal(t, 3, cfg.View.Overscan)
	assert.NoError(t, cfg.Validate())
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("SIFT_QUERY_LIMIT", "25")
	t.Setenv("SIFT_PROVIDER_COLLECTION", "labels")

	cfg, err := loadConfig(viper.New(), t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 25, cfg.Query.Limit)
	assert.Equal(t, "labels", cfg.Provider.Collection)
}

func TestSaveConfigRoundTrip(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.Provider.Collection = "assignees"
	cfg.Query.Debounce = 75 * time.Millisecond

	require.NoError(t, saveConfig(viper.New(), cfg, dir))
	assert.FileExists(t, filepath.Join(dir, "config.yaml"))

	loaded, err := loadConfig(viper.New(), dir)
	require.NoError(t, err)
	assert.Equal(t, "assignees", loaded.Provider.Collection)
	assert.Equal(t, 75*time.Millisecond, loaded.Query.Debounce)
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Provider.Type = ProviderTypeHTTP
	assert.Error(t, cfg.Validate())

	cfg.Provider.Type = "ftp"
	assert.Error(t, cfg.Validate())

	cfg.Provider.Type = ProviderTypeCatalog
	cfg.Provider.Collection = ""
	assert.Error(t, cfg.Validate())
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	got, err := ExpandPath("~/logs/sift.log")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "logs", "sift.log"), got)

	got, err = ExpandPath("/tmp/sift.log")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/sift.log", got)
}
