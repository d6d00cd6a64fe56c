package logs

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Build the process logger.
// level: "debug", "info", "warn", "error" (default: "info")
// format: "json" or "console" (default: "console")
// file: extra output path next to stderr, empty for none
func NewLogger(level string, format string, file string) (*zap.Logger, error) {
	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	var config zap.Config
	if format == "json" {
		config = zap.NewProductionConfig()
		config.EncoderConfig.TimeKey = "timestamp"
		config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	} else {
		config = zap.NewDevelopmentConfig()
	}
	config.Level = zap.NewAtomicLevelAt(zapLevel)
	config.OutputPaths = []string{"stderr"}
	config.ErrorOutputPaths = []string{"stderr"}
	if file != "" {
		config.OutputPaths = append(config.OutputPaths, file)
	}

	logger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("error while building logger: %w", err)
	}
	return logger, nil
}
