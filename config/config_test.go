package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromMissingFileUsesDefaults(t *testing.T) {
	c, err := LoadFrom(filepath.Join(t.TempDir(), "nope.json"))
	require.NoError(t, err)

	assert.Equal(t, "8080", c.AppPort)
	assert.Equal(t, "redis", c.KVBackend)
	assert.True(t, c.EnableBackend)
	assert.Equal(t, 6, c.PostsPerPage)
	assert.Equal(t, 10, c.MaxFileSizeMB)
	assert.Equal(t, 1000, c.DisableWindowMs)
	assert.Equal(t, []string{"*"}, c.AllowedOrigins)
}

func TestLoadFromGroupedSections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	body := `{
	  "app": {"AppPort": "3000", "AllowedOrigins": ["http://localhost:5173"]},
	  "storage": {"Backend": "mysql"},
	  "database": {"DBName": "forum"},
	  "redis": {"RedisPort": 6380},
	  "log": {"Level": "debug", "Compress": true},
	  "client": {"APIBaseURL": "http://api.test", "EnableBackend": false, "PostsPerPage": 12}
	}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	c, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, "3000", c.AppPort)
	assert.Equal(t, []string{"http://localhost:5173"}, c.AllowedOrigins)
	assert.Equal(t, "mysql", c.KVBackend)
	assert.Equal(t, "forum", c.DBName)
	assert.Equal(t, 6380, c.RedisPort)
	assert.Equal(t, "debug", c.LogLevel)
	assert.True(t, c.LogCompress)
	assert.Equal(t, "http://api.test", c.APIBaseURL)
	assert.False(t, c.EnableBackend)
	assert.Equal(t, 12, c.PostsPerPage)
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"client": {"APIBaseURL": "http://file"}}`), 0o600))
	t.Setenv("ARZ_API_URL", "http://env")
	t.Setenv("ARZ_ENABLE_BACKEND", "false")
	t.Setenv("KV_BACKEND", "MySQL")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a, http://b ,")

	c, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, "http://env", c.APIBaseURL)
	assert.False(t, c.EnableBackend)
	assert.Equal(t, "mysql", c.KVBackend)
	assert.Equal(t, []string{"http://a", "http://b"}, c.AllowedOrigins)
}

func TestLoadFromInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"app":`), 0o600))

	c, err := LoadFrom(path)
	assert.Error(t, err)
	assert.Equal(t, "8080", c.AppPort)
}
