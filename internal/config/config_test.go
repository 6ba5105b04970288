package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
app:
  env: prod
log:
  level: warn
jwt:
  secret: "0123456789abcdef0123456789abcdef"
  access_ttl: 30m
auth:
  user_service_url: http://users:8082
storage:
  dsn: postgres://localhost/test
cache:
  kind: redis
  permission_ttl: 1m
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, "prod", cfg.App.Env)
	require.Equal(t, "warn", cfg.Log.Level)
	require.Equal(t, 30*time.Minute, cfg.AccessTTL())
	require.Equal(t, time.Minute, cfg.PermissionTTL())
	require.Equal(t, "redis", cfg.Cache.Kind)
	require.NoError(t, cfg.ValidateJWT())
	require.NoError(t, cfg.ValidateUsers())

	// defaults que el YAML no pisa
	require.Equal(t, "gacetilla-auth", cfg.JWT.Issuer)
	require.Equal(t, 5*time.Second, cfg.ClientTimeout())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "no-existe.yaml"))
	require.Error(t, err)
}

func TestFromEnv(t *testing.T) {
	t.Setenv("JWT_SECRET", "0123456789abcdef0123456789abcdef")
	t.Setenv("JWT_ACCESS_TTL", "5m")
	t.Setenv("STORAGE_DSN", "postgres://localhost/test")
	t.Setenv("CACHE_KIND", "memory")
	t.Setenv("FLAGS_MIGRATE", "false")

	cfg := FromEnv()
	require.Equal(t, 5*time.Minute, cfg.AccessTTL())
	require.Equal(t, "memory", cfg.Cache.Kind)
	require.False(t, cfg.Flags.Migrate)
	require.NoError(t, cfg.ValidateJWT())
	require.NoError(t, cfg.ValidateUsers())
}

func TestValidateJWTRejectsShortSecret(t *testing.T) {
	c := &Config{}
	c.JWT.Secret = "corta"
	require.Error(t, c.ValidateJWT())

	c.JWT.Secret = "0123456789abcdef0123456789abcdef"
	require.NoError(t, c.ValidateJWT())
}

func TestDurationFallbacks(t *testing.T) {
	c := &Config{}
	c.JWT.AccessTTL = "no-es-duracion"
	require.Equal(t, 15*time.Minute, c.AccessTTL())
	require.Equal(t, 5*time.Second, c.ClientTimeout())
	require.Equal(t, 30*time.Second, c.PermissionTTL())
}
