package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "ordenescli/internal/errors"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, int64(10<<20), cfg.Upload.MaxSizeBytes)
	assert.True(t, cfg.Security.RateLimit.Enabled)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "defaults are valid",
			mutate: func(c *Config) {},
		},
		{
			name:    "invalid port",
			mutate:  func(c *Config) { c.Server.Port = -1 },
			wantErr: "invalid server port",
		},
		{
			name:    "zero read timeout",
			mutate:  func(c *Config) { c.Server.ReadTimeout = 0 },
			wantErr: "read timeout",
		},
		{
			name:    "zero upload limit",
			mutate:  func(c *Config) { c.Upload.MaxSizeBytes = 0 },
			wantErr: "upload size limit",
		},
		{
			name:    "no allowed origins",
			mutate:  func(c *Config) { c.Security.AllowedOrigins = nil },
			wantErr: "allowed origin",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)

				var appErr *apperrors.AppError
				require.ErrorAs(t, err, &appErr)
				assert.Equal(t, apperrors.ErrTypeConfig, appErr.Type)
			}
		})
	}
}

func TestValidate_NormalizesLogFormat(t *testing.T) {
	cfg := Default()
	cfg.Logging.Format = "pretty"
	require.NoError(t, cfg.validate())
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestMergeConfigs_EnvTakesPrecedence(t *testing.T) {
	fileCfg := *Default()
	fileCfg.Server.Port = 9090

	envCfg := Config{}
	envCfg.Server.Port = 3000

	merged := mergeConfigs(fileCfg, envCfg)
	assert.Equal(t, 3000, merged.Server.Port)

	envCfg.Server.Port = 0
	merged = mergeConfigs(fileCfg, envCfg)
	assert.Equal(t, 9090, merged.Server.Port)
}
