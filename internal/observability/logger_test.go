package observability

import (
	"testing"

	"github.com/edubridge/platform/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name        string
		cfg         config.ObservabilityConfig
		environment string
		wantErr     bool
		enabled     zapcore.Level
		disabled    zapcore.Level
	}{
		{
			name:        "development debug",
			cfg:         config.ObservabilityConfig{LogLevel: "debug", LogFormat: "json"},
			environment: "development",
			enabled:     zapcore.DebugLevel,
			disabled:    zapcore.DebugLevel - 1,
		},
		{
			name:        "production info",
			cfg:         config.ObservabilityConfig{LogLevel: "INFO", LogFormat: "json"},
			environment: "production",
			enabled:     zapcore.InfoLevel,
			disabled:    zapcore.DebugLevel,
		},
		{
			name:        "text format warn",
			cfg:         config.ObservabilityConfig{LogLevel: "warn", LogFormat: "text"},
			environment: "development",
			enabled:     zapcore.WarnLevel,
			disabled:    zapcore.InfoLevel,
		},
		{
			name:    "invalid level",
			cfg:     config.ObservabilityConfig{LogLevel: "loud"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := NewLogger(tt.cfg, tt.environment)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, logger.Core().Enabled(tt.enabled))
			assert.False(t, logger.Core().Enabled(tt.disabled))
		})
	}
}
