package config

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("GO_ENV", "production") // skip .env lookup
	// Empty values fall back to the defaults.
	for _, k := range []string{"PORT", "MONGO_DATABASE", "JWT_EXPIRY", "CONTEXT_TIMEOUT", "PAGE_DEFAULT_LIMIT", "PAGE_MAX_LIMIT", "CURSOR_ID_PATTERN", "PLAN_QUOTAS"} {
		t.Setenv(k, "")
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "inviteplanner", cfg.MongoDatabase)
	assert.Equal(t, 24*time.Hour, cfg.JWTExpiry)
	assert.Equal(t, 5*time.Second, cfg.ContextTimeout)
	assert.Equal(t, 20, cfg.PageDefaultLimit)
	assert.Equal(t, 100, cfg.PageMaxLimit)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, map[string]int{"basic": 5, "premium": 20}, cfg.PlanQuotas)

	valid := cfg.CursorIDValidator()
	assert.True(t, valid("665f1f77bcf86cd799439011"))
	assert.False(t, valid("665f1f77bcf86cd79943901"))
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("GO_ENV", "production")
	t.Setenv("PORT", "9000")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("JWT_EXPIRY", "2h")
	t.Setenv("CONTEXT_TIMEOUT", "750ms")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test,http://b.test")
	t.Setenv("PAGE_DEFAULT_LIMIT", "10")
	t.Setenv("PAGE_MAX_LIMIT", "50")
	t.Setenv("FREE_INVITATIONS", "3")
	t.Setenv("PLAN_QUOTAS", "basic:5,premium:25")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9000", cfg.Port)
	assert.NoError(t, cfg.RequireJWTSecret())
	assert.Equal(t, 2*time.Hour, cfg.JWTExpiry)
	assert.Equal(t, 750*time.Millisecond, cfg.ContextTimeout)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, 10, cfg.PageDefaultLimit)
	assert.Equal(t, 50, cfg.PageMaxLimit)
	assert.Equal(t, 3, cfg.FreeInvitations)
	assert.Equal(t, map[string]int{"basic": 5, "premium": 25}, cfg.PlanQuotas)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "default above max", env: map[string]string{"PAGE_DEFAULT_LIMIT": "200", "PAGE_MAX_LIMIT": "100"}},
		{name: "zero max", env: map[string]string{"PAGE_MAX_LIMIT": "0"}},
		{name: "bad pattern", env: map[string]string{"CURSOR_ID_PATTERN": "(["}},
		{name: "negative plan quota", env: map[string]string{"PLAN_QUOTAS": "basic:-1"}},
		{name: "non-numeric limit", env: map[string]string{"PAGE_DEFAULT_LIMIT": "many"}},
		{name: "bad duration", env: map[string]string{"JWT_EXPIRY": "forever"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("GO_ENV", "production")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestRequireJWTSecret(t *testing.T) {
	cfg := &Config{}
	assert.Error(t, cfg.RequireJWTSecret())
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"WARN":    slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	NewLogger(&buf, "production", "info").Info("hello", "k", "v")
	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "hello", line["msg"])
	assert.Equal(t, "v", line["k"])

	buf.Reset()
	logger := NewLogger(&buf, "development", "warn")
	logger.Info("dropped")
	logger.Warn("kept")
	assert.NotContains(t, buf.String(), "dropped")
	assert.Contains(t, buf.String(), "msg=kept")
}
