package logs

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/samborkent/uuidv7"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Mause/tuya-graphing/connections/db"
	"github.com/Mause/tuya-graphing/data"
)

// Log levels as stored in the ledger.
const (
	LevelError = 1
	LevelWarn  = 2
	LevelInfo  = 3
	LevelDebug = 4
)

const stackBufferSize = 64 * 1024

type JobCategory string

const (
	Main   JobCategory = "MAIN"
	Export JobCategory = "EXPORT"
)

// Create a top level job. ledger may be nil, in which case the job only exists in the process logs.
func CreateJob(ctx context.Context, ledger db.DBConnection, logger *zap.Logger, category JobCategory) (*JobLogger, error) {
	return createChildJob(ctx, ledger, logger, category, nil)
}

func createChildJob(ctx context.Context, ledger db.DBConnection, logger *zap.Logger, category JobCategory, parentJobLogger *JobLogger) (*JobLogger, error) {
	timestamp := time.Now().UTC().Unix()
	var parentJobID string
	if parentJobLogger != nil {
		parentJobID = parentJobLogger.job.ID
	}
	job := data.Job{
		ParentID:       parentJobID,
		Category:       string(category),
		StartTimestamp: timestamp,
		EndTimestamp:   0,
	}

	// Create job in db
	var id string
	if ledger != nil {
		var err error
		id, err = ledger.Jobs().Add(ctx, job)
		if err != nil {
			return nil, fmt.Errorf("unable to create job with category %v: %w", category, err)
		}
	} else {
		id = uuidv7.New().String()
	}

	fields := []zap.Field{zap.String("job_id", id), zap.String("job_category", string(category))}
	if parentJobID != "" {
		fields = append(fields, zap.String("parent_job_id", parentJobID))
	}
	return &JobLogger{
		ledger:          ledger,
		logger:          logger.With(fields...),
		job:             data.StoreJob{Job: job, HasID: data.HasID{ID: id}},
		parentJobLogger: parentJobLogger,
	}, nil
}

// Logs to the process logger and, when a ledger is attached, to the ledger's logs table.
type JobLogger struct {
	ledger          db.DBConnection
	logger          *zap.Logger
	job             data.StoreJob
	parentJobLogger *JobLogger
}

func (l *JobLogger) ID() string {
	return l.job.ID
}

func (l *JobLogger) Parent() *JobLogger {
	return l.parentJobLogger
}

func (l *JobLogger) Zap() *zap.Logger {
	return l.logger
}

// Mark the job as finished in the ledger.
func (l *JobLogger) End(ctx context.Context) {
	l.logger.Debug("job ended")
	if l.ledger == nil {
		return
	}
	err := l.ledger.Jobs().Close(ctx, l.job)
	if err != nil {
		l.logger.Error("unable to end job", zap.Error(err))
	}
}

func (l *JobLogger) Debug(ctx context.Context, fstring string, args ...any) {
	l.log(ctx, LevelDebug, fstring, args...)
}
func (l *JobLogger) Info(ctx context.Context, fstring string, args ...any) {
	l.log(ctx, LevelInfo, fstring, args...)
}
func (l *JobLogger) Warn(ctx context.Context, fstring string, args ...any) {
	l.log(ctx, LevelWarn, fstring, args...)
}
func (l *JobLogger) Error(ctx context.Context, fstring string, args ...any) {
	l.log(ctx, LevelError, fstring, args...)
}

func (l *JobLogger) CreateChildJob(ctx context.Context, category JobCategory) (*JobLogger, error) {
	return createChildJob(ctx, l.ledger, l.logger, category, l)
}

func (l *JobLogger) log(ctx context.Context, level int, fstring string, args ...any) {
	description := fmt.Sprintf(fstring, args...)

	// Log to process logger
	if ce := l.logger.Check(zapLevel(level), description); ce != nil {
		ce.Write()
	}

	if l.ledger == nil {
		return
	}

	// Log to db. Stack traces are only kept for warnings and errors
	var stackTrace string
	if level <= LevelWarn {
		stackBuffer := make([]byte, stackBufferSize)
		numBytes := runtime.Stack(stackBuffer, false)
		stackTrace = string(stackBuffer[:numBytes])
	}
	entry := data.Log{
		JobID:       l.job.ID,
		Level:       level,
		StackTrace:  stackTrace,
		Description: description,
		Timestamp:   time.Now().UTC().Unix(),
	}
	_, err := l.ledger.Logs().Add(ctx, entry)
	if err != nil {
		l.logger.Warn("error adding log to database", zap.Error(err))
	}
}

func zapLevel(level int) zapcore.Level {
	switch level {
	case LevelError:
		return zapcore.ErrorLevel
	case LevelWarn:
		return zapcore.WarnLevel
	case LevelInfo:
		return zapcore.InfoLevel
	}
	return zapcore.DebugLevel
}
