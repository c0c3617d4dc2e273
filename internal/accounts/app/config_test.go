package app

import (
	"testing"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func parseEnv(t *testing.T, vars map[string]string) (Config, error) {
	t.Helper()
	return parseConfig(env.Options{Environment: vars})
}

func TestConfigDefaults(t *testing.T) {
	cfg, err := parseEnv(t, map[string]string{"AUTH_JWT_SECRET": testSecret})
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "/api/auth", cfg.RoutePrefix)
	assert.Equal(t, AlgorithmHS256, cfg.Algorithm)
	assert.Equal(t, time.Hour, cfg.TokenTTL)
	assert.Equal(t, 15*time.Minute, cfg.CodeTTL)
	assert.Equal(t, DriverSQLite, cfg.DatabaseDriver)
	assert.Equal(t, QueueMemory, cfg.MailQueue)
	assert.Equal(t, BlobLocal, cfg.BlobBackend)
	assert.Equal(t, int64(5<<20), cfg.UploadMaxBytes)
	assert.Equal(t, []string{"http://localhost:3000", "http://localhost:5173"}, cfg.CORSOrigins)
	assert.True(t, cfg.MetricsEnabled)
	assert.False(t, cfg.RequireVerifiedSession)
}

func TestConfigOverrides(t *testing.T) {
	cfg, err := parseEnv(t, map[string]string{
		"AUTH_ALGORITHM":                AlgorithmEdDSA,
		"AUTH_TOKEN_TTL":                "30m",
		"AUTH_REQUIRE_VERIFIED_SESSION": "true",
		"CORS_ALLOWED_ORIGINS":          "https://a.example, https://b.example",
		"MAIL_SEND_RATE":                "0.5",
	})
	require.NoError(t, err)

	assert.Equal(t, 30*time.Minute, cfg.TokenTTL)
	assert.True(t, cfg.RequireVerifiedSession)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.InDelta(t, 0.5, cfg.MailSendRate, 1e-9)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name string
		vars map[string]string
		key  string
	}{
		{"short secret", map[string]string{"AUTH_JWT_SECRET": "short"}, "AUTH_JWT_SECRET"},
		{"unknown algorithm", map[string]string{"AUTH_ALGORITHM": "RS256"}, "AUTH_ALGORITHM"},
		{"postgres without url", map[string]string{"AUTH_JWT_SECRET": testSecret, "AUTH_DATABASE_DRIVER": "postgres"}, "AUTH_DATABASE_URL"},
		{"unknown driver", map[string]string{"AUTH_JWT_SECRET": testSecret, "AUTH_DATABASE_DRIVER": "mysql"}, "AUTH_DATABASE_DRIVER"},
		{"redis without url", map[string]string{"AUTH_JWT_SECRET": testSecret, "MAIL_QUEUE": "redis"}, "REDIS_URL"},
		{"s3 without bucket", map[string]string{"AUTH_JWT_SECRET": testSecret, "BLOB_BACKEND": "s3"}, "S3_BUCKET"},
		{"wildcard cors in prod", map[string]string{"AUTH_JWT_SECRET": testSecret, "ENV": "prod", "CORS_ALLOWED_ORIGINS": "*"}, "CORS_ALLOWED_ORIGINS"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseEnv(t, tt.vars)
			require.Error(t, err)

			oopsErr, ok := oops.AsOops(err)
			require.True(t, ok)
			assert.Equal(t, "CONFIG_INVALID", oopsErr.Code())
			assert.Equal(t, tt.key, oopsErr.Context()["key"])
		})
	}
}

func TestConfigRejectsBadDuration(t *testing.T) {
	_, err := parseEnv(t, map[string]string{"AUTH_JWT_SECRET": testSecret, "AUTH_TOKEN_TTL": "soon"})
	require.Error(t, err)
}
