package logs

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Mause/tuya-graphing/connections"
	"github.com/Mause/tuya-graphing/connections/db"
	"github.com/Mause/tuya-graphing/data"
)

type memoryJobs struct {
	added  []data.Job
	closed []string
}

func (s *memoryJobs) Add(ctx context.Context, item data.Job) (string, error) {
	s.added = append(s.added, item)
	return "job-" + string(rune('0'+len(s.added))), nil
}
func (s *memoryJobs) Delete(ctx context.Context, storeItem data.StoreJob) error { return nil }
func (s *memoryJobs) Get(ctx context.Context, filter data.JobFilter) *data.IterablePaginatedData[data.StoreJob] {
	return nil
}
func (s *memoryJobs) Setup(ctx context.Context, isDestructive bool) error { return nil }
func (s *memoryJobs) GetInTimeRange(ctx context.Context, filter data.JobFilter, startTime *int64, endTime *int64) *data.IterablePaginatedData[data.StoreJob] {
	return nil
}
func (s *memoryJobs) Close(ctx context.Context, storeItem data.StoreJob) error {
	s.closed = append(s.closed, storeItem.ID)
	return nil
}

type memoryLogs struct {
	added []data.Log
	err   error
}

func (s *memoryLogs) Add(ctx context.Context, item data.Log) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.added = append(s.added, item)
	return "log", nil
}
func (s *memoryLogs) Delete(ctx context.Context, storeItem data.StoreLog) error { return nil }
func (s *memoryLogs) Get(ctx context.Context, filter data.LogFilter) *data.IterablePaginatedData[data.StoreLog] {
	return nil
}
func (s *memoryLogs) Setup(ctx context.Context, isDestructive bool) error { return nil }
func (s *memoryLogs) GetInTimeRange(ctx context.Context, filter data.LogFilter, startTime *int64, endTime *int64) *data.IterablePaginatedData[data.StoreLog] {
	return nil
}

type memoryLedger struct {
	jobs *memoryJobs
	logs *memoryLogs
}

var _ db.DBConnection = (*memoryLedger)(nil)

func newMemoryLedger() *memoryLedger {
	return &memoryLedger{jobs: &memoryJobs{}, logs: &memoryLogs{}}
}
func (l *memoryLedger) Open(ctx context.Context) error { return nil }
func (l *memoryLedger) Close() error                   { return nil }
func (l *memoryLedger) Status(ctx context.Context) (connections.PingResult, string) {
	return connections.Good, ""
}
func (l *memoryLedger) Jobs() db.JobStore { return l.jobs }
func (l *memoryLedger) Logs() db.LogStore { return l.logs }

func observedLogger(level zapcore.Level) (*zap.Logger, *observer.ObservedLogs) {
	core, observed := observer.New(level)
	return zap.New(core), observed
}

func TestJobLogger_WithoutLedger(t *testing.T) {
	ctx := context.Background()
	logger, observed := observedLogger(zapcore.InfoLevel)

	job, err := CreateJob(ctx, nil, logger, Main)
	require.NoError(t, err)
	assert.NotEmpty(t, job.ID())

	job.Info(ctx, "fetched %d events", 3)
	job.Debug(ctx, "hidden")
	job.End(ctx)

	entries := observed.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "fetched 3 events", entries[0].Message)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	fields := entries[0].ContextMap()
	assert.Equal(t, job.ID(), fields["job_id"])
	assert.Equal(t, "MAIN", fields["job_category"])
}

func TestJobLogger_Ledger(t *testing.T) {
	ctx := context.Background()
	ledger := newMemoryLedger()
	logger, observed := observedLogger(zapcore.DebugLevel)

	parent, err := CreateJob(ctx, ledger, logger, Main)
	require.NoError(t, err)
	child, err := parent.CreateChildJob(ctx, Export)
	require.NoError(t, err)

	child.Info(ctx, "device %v", "kitchen")
	child.Error(ctx, "failed: %v", "boom")
	child.End(ctx)

	require.Len(t, ledger.jobs.added, 2)
	assert.Equal(t, "", ledger.jobs.added[0].ParentID)
	assert.Equal(t, parent.ID(), ledger.jobs.added[1].ParentID)
	assert.Equal(t, "EXPORT", ledger.jobs.added[1].Category)
	assert.Same(t, parent, child.Parent())
	assert.Equal(t, []string{child.ID()}, ledger.jobs.closed)

	require.Len(t, ledger.logs.added, 2)
	assert.Equal(t, LevelInfo, ledger.logs.added[0].Level)
	assert.Equal(t, "device kitchen", ledger.logs.added[0].Description)
	assert.Empty(t, ledger.logs.added[0].StackTrace)
	assert.Equal(t, LevelError, ledger.logs.added[1].Level)
	assert.Contains(t, ledger.logs.added[1].StackTrace, "goroutine")
	assert.Equal(t, child.ID(), ledger.logs.added[1].JobID)

	errorEntries := observed.FilterLevelExact(zapcore.ErrorLevel).All()
	require.Len(t, errorEntries, 1)
	assert.Equal(t, parent.ID(), errorEntries[0].ContextMap()["parent_job_id"])
}

func TestJobLogger_LedgerFailureIsLogged(t *testing.T) {
	ctx := context.Background()
	ledger := newMemoryLedger()
	ledger.logs.err = errors.New("db down")
	logger, observed := observedLogger(zapcore.InfoLevel)

	job, err := CreateJob(ctx, ledger, logger, Main)
	require.NoError(t, err)
	job.Info(ctx, "hello")

	assert.Equal(t, 1, observed.FilterMessage("error adding log to database").Len())
}

func TestLogWithContext(t *testing.T) {
	logger, observed := observedLogger(zapcore.InfoLevel)

	// Without a job, the global logger is used
	restore := zap.ReplaceGlobals(logger)
	defer restore()
	WarnWithContext(context.Background(), "no job %v", 1)
	require.Equal(t, 1, observed.Len())
	assert.Equal(t, true, observed.All()[0].ContextMap()["no_job"])

	job, err := CreateJob(context.Background(), nil, logger, Main)
	require.NoError(t, err)
	ctx := ContextWithLogger(context.Background(), job)
	assert.Same(t, job, Logger(ctx))
	InfoWithContext(ctx, "with job")
	assert.Equal(t, job.ID(), observed.All()[1].ContextMap()["job_id"])

	assert.Nil(t, Logger(context.Background()))
}

func TestLogErrorsWithContext(t *testing.T) {
	logger, observed := observedLogger(zapcore.InfoLevel)
	job, err := CreateJob(context.Background(), nil, logger, Main)
	require.NoError(t, err)
	ctx := ContextWithLogger(context.Background(), job)

	LogErrorsWithContext(ctx, func() error { return nil }, "fine")
	LogErrorsWithContext(ctx, func() error { return errors.New("closed twice") }, "closing file")

	require.Equal(t, 1, observed.Len())
	assert.Equal(t, "error while calling function with description: closing file: closed twice", observed.All()[0].Message)
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger("warn", "json", "")
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, logger.Core().Enabled(zapcore.WarnLevel))

	logger, err = NewLogger("bogus", "console", "")
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.False(t, logger.Core().Enabled(zapcore.DebugLevel))
}
