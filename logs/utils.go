package logs

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Allow contexts to provide and get loggers.
type loggerKey struct{}

func ContextWithLogger(ctx context.Context, l *JobLogger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

// The job logger carried by ctx, or nil.
func Logger(ctx context.Context) *JobLogger {
	jobLogger, _ := ctx.Value(loggerKey{}).(*JobLogger)
	return jobLogger
}

// For low-risk function calls that would be cumbersome to deal with otherwise, such as connection closing calls in defer statements.
func LogErrorsWithContext(ctx context.Context, function func() error, description string) {
	if function == nil {
		ErrorWithContext(ctx, "error while calling log on nonexistent function with description %v", description)
		return
	}
	err := function()
	if err != nil {
		ErrorWithContext(ctx, "error while calling function with description: %v: %v", description, err)
	}
}

// Log through the job logger in ctx, falling back to the global zap logger.
func LogWithContext(ctx context.Context, level int, fstring string, args ...any) {
	logger := Logger(ctx)
	if logger != nil {
		logger.log(ctx, level, fstring, args...)
		return
	}
	if ce := zap.L().Check(zapLevel(level), fmt.Sprintf(fstring, args...)); ce != nil {
		ce.Write(zap.Bool("no_job", true))
	}
}

// Create a debug log.
func DebugWithContext(ctx context.Context, fstring string, args ...any) {
	LogWithContext(ctx, LevelDebug, fstring, args...)
}

// Create an info log.
func InfoWithContext(ctx context.Context, fstring string, args ...any) {
	LogWithContext(ctx, LevelInfo, fstring, args...)
}

// Create a warning log.
func WarnWithContext(ctx context.Context, fstring string, args ...any) {
	LogWithContext(ctx, LevelWarn, fstring, args...)
}

// Create an error log.
func ErrorWithContext(ctx context.Context, fstring string, args ...any) {
	LogWithContext(ctx, LevelError, fstring, args...)
}
