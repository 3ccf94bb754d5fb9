package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, EnvDevelopment, cfg.Environment)
	assert.Equal(t, "mongo", cfg.StorageBackend)
	assert.Equal(t, 6, cfg.CodeLength)
	assert.Equal(t, 5*time.Minute, cfg.CodeTTL())
	assert.Equal(t, "123456", cfg.TestBypassCode)
}

func TestServerConfig_TestBypassEnabled(t *testing.T) {
	tests := []struct {
		name   string
		env    string
		suffix string
		want   bool
	}{
		{"enabled in staging with suffix", EnvStaging, "@e2e.baliciaga.com", true},
		{"enabled in development with suffix", EnvDevelopment, "@e2e.baliciaga.com", true},
		{"never in production, even with suffix", EnvProduction, "@e2e.baliciaga.com", false},
		{"disabled without suffix", EnvStaging, "", false},
		{"disabled without suffix in development", EnvDevelopment, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &ServerConfig{Environment: tt.env, TestEmailSuffix: tt.suffix}
			assert.Equal(t, tt.want, cfg.TestBypassEnabled())
		})
	}
}
