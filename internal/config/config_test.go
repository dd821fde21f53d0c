package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultValues(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "::", cfg.SSH.Host)
	assert.Equal(t, "2222", cfg.SSH.Port)
	assert.Equal(t, "/app/keys/host_key", cfg.SSH.HostKey)
	assert.Equal(t, "0.0.0.0", cfg.Web.Host)
	assert.Equal(t, "8080", cfg.Web.Port)
	assert.Empty(t, cfg.Web.AllowedOrigins)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.True(t, cfg.Log.Pretty)
	assert.Equal(t, 5, cfg.Game.DefaultCount)
	assert.Equal(t, 650, cfg.Game.AreaWidth)
	assert.Equal(t, 400, cfg.Game.AreaHeight)
	assert.Equal(t, "", cfg.Metrics.Addr)
}

func TestLoad_WithConfigFile(t *testing.T) {
	t.Chdir(t.TempDir())

	dir := t.TempDir()
	yaml := `
ssh:
  port: "2323"
log:
  level: debug
  pretty: false
game:
  defaultCount: 9
web:
  allowedOrigins:
    - https://example.com
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "points.yaml"), []byte(yaml), 0644))

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "2323", cfg.SSH.Port)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.False(t, cfg.Log.Pretty)
	assert.Equal(t, 9, cfg.Game.DefaultCount)
	assert.Equal(t, []string{"https://example.com"}, cfg.Web.AllowedOrigins)
	assert.Equal(t, "::", cfg.SSH.Host)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SSH_PORT", "2424")
	t.Setenv("WEB_ALLOWED_ORIGINS", "https://a.test, https://b.test")
	t.Setenv("GAME_AREA_WIDTH", "800")

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "2424", cfg.SSH.Port)
	assert.Equal(t, []string{"https://a.test", "https://b.test"}, cfg.Web.AllowedOrigins)
	assert.Equal(t, 800, cfg.Game.AreaWidth)
}

func TestLoad_MalformedFile(t *testing.T) {
	t.Chdir(t.TempDir())

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "points.yaml"), []byte("ssh: [unclosed"), 0644))

	_, err := Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}
