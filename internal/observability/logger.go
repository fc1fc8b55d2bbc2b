package observability

import (
	"fmt"
	"strings"

	"github.com/edubridge/platform/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Field represents a structured log field.
type Field = zap.Field

// NewLogger builds the process logger. Production environments get the zap
// production preset; everything else gets the development preset. LogFormat
// "text" switches to the console encoder.
func NewLogger(cfg config.ObservabilityConfig, environment string) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}

	var zcfg zap.Config
	switch environment {
	case "production", "prod":
		zcfg = zap.NewProductionConfig()
	default:
		zcfg = zap.NewDevelopmentConfig()
		zcfg.Encoding = "json"
	}

	if cfg.LogFormat == "text" {
		zcfg.Encoding = "console"
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)

	logger, err := zcfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	return logger.With(zap.String("service", "edubridge")), nil
}
