package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_FileAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte(`
server:
  port: 9090
auth:
  jwt_secret: "file-secret-0123456789"
app:
  timezone: "UTC"
`)
	require.NoError(t, os.WriteFile(path, content, 0o600))

	t.Setenv("SIWES_SERVER_PORT", "9191")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9191, cfg.Server.Port)
	assert.Equal(t, "file-secret-0123456789", cfg.Auth.JWTSecret)
	assert.Equal(t, "UTC", cfg.App.Location().String())
	assert.Equal(t, "./media", cfg.Storage.MediaRoot)
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{
			Server:  ServerConfig{Port: 8080},
			Auth:    AuthConfig{JWTSecret: "0123456789abcdef"},
			App:     AppConfig{Timezone: "Africa/Lagos"},
			Storage: StorageConfig{MediaRoot: "./media"},
		}
	}

	cfg := base()
	assert.NoError(t, cfg.Validate())

	cfg = base()
	cfg.Auth.JWTSecret = "short"
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.Server.Port = 0
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.App.Timezone = "Mars/Olympus"
	assert.Error(t, cfg.Validate())
}
