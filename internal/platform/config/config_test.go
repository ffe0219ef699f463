package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DevelopmentDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "development")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 5*time.Second, cfg.SideEffectTimeout)
	assert.Zero(t, cfg.ReconcileInterval)
	assert.NotEmpty(t, cfg.JWTSecret)
	assert.False(t, cfg.Email.Enabled())
	assert.True(t, cfg.MetricsEnabled)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("PORT", "9090")
	t.Setenv("LOG_LEVEL", "WARNING")
	t.Setenv("RECONCILE_INTERVAL", "1m")
	t.Setenv("EMAIL_API_URL", "https://mail.example.com")
	t.Setenv("EMAIL_API_KEY", "key")
	t.Setenv("RATE_BURST", "3")
	t.Setenv("ADMIN_EMAILS", " Admin@Example.com, ,ops@example.com")

	cfg, err := Load()
	require.NoError(t, err)

	assert.False(t, cfg.IsDevelopment())
	assert.Equal(t, []string{"admin@example.com", "ops@example.com"}, cfg.AdminEmails)
	assert.Equal(t, ":9090", cfg.Addr())
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, time.Minute, cfg.ReconcileInterval)
	assert.True(t, cfg.Email.Enabled())
	assert.Equal(t, 3, cfg.RateBurst)
}

func TestLoad_ProductionRequiresSecret(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	require.Error(t, err)
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	cases := map[string][2]string{
		"bad env":       {"APP_ENV", "staging"},
		"bad log level": {"LOG_LEVEL", "trace"},
		"bad burst":     {"RATE_BURST", "0"},
		"bad rps":       {"RATE_RPS", "-1"},
		"bad reconcile": {"RECONCILE_INTERVAL", "-5s"},
	}
	for name, kv := range cases {
		t.Run(name, func(t *testing.T) {
			t.Setenv("APP_ENV", "development")
			t.Setenv(kv[0], kv[1])
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
