package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "next-label", cfg.App.Name)
	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, CompletionConfirmed, cfg.Metrics.Completion)
	assert.Equal(t, 30*time.Second, cfg.Metrics.TTL())
	assert.Equal(t, 24*time.Hour, cfg.Auth.TTL())
	assert.False(t, cfg.Redis.Enabled)
	assert.Same(t, cfg, Get())
}

func TestLoad_MissingFileFallsBackToDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := writeConfig(t, `
app:
  debug: false
server:
  port: 9090
database:
  driver: sqlite
  path: /tmp/labels.db
auth:
  jwtSecret: file-secret
metrics:
  completion: all
  requiredShapes: [category, span]
`)
	t.Setenv("NEXT_LABEL_SERVER_PORT", "7070")
	t.Setenv("NEXT_LABEL_AUTH_JWTSECRET", "env-secret")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port, "env overrides file")
	assert.Equal(t, "env-secret", cfg.Auth.JWTSecret)
	assert.Equal(t, "/tmp/labels.db", cfg.Database.GetDSN())
	assert.Equal(t, CompletionAll, cfg.Metrics.Completion)
	assert.Equal(t, []string{"category", "span"}, cfg.Metrics.RequiredShapes)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "unknown driver", content: "database:\n  driver: oracle\n"},
		{name: "unknown completion", content: "metrics:\n  completion: most\n"},
		{name: "missing secret outside debug", content: "app:\n  debug: false\n"},
		{name: "non-positive ttl", content: "auth:\n  tokenTTL: 0\n"},
		{name: "negative write rate", content: "server:\n  writeRate: -1\n"},
		{name: "malformed yaml", content: "server: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestDatabaseConfig_GetDSN(t *testing.T) {
	c := DatabaseConfig{Driver: DriverPostgres, Host: "db", Port: 5432, User: "u", Password: "p", DBName: "labels", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=labels sslmode=disable", c.GetDSN())

	c.Driver = DriverMySQL
	c.Port = 3306
	assert.Equal(t, "u:p@tcp(db:3306)/labels?charset=utf8mb4&parseTime=True&loc=Local", c.GetDSN())
}
