package mysql

import (
	"context"
	"database/sql/driver"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mause/tuya-graphing/connections"
	"github.com/Mause/tuya-graphing/data"
)

const jobColumns = "job_id, parent_job_id, job_category, job_start_timestamp, job_end_timestamp"

type anyID struct{}

func (anyID) Match(v driver.Value) bool {
	s, ok := v.(string)
	return ok && len(s) == 36
}

func newMock(t *testing.T) (*MySQLConnection, sqlmock.Sqlmock) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS jobs")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS logs")).WillReturnResult(sqlmock.NewResult(0, 0))
	connection, err := NewMySQLConnectionFromDB(context.Background(), sqlDB, false)
	require.NoError(t, err)
	return connection, mock
}

func TestSetup_Destructive(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	for _, table := range []string{"jobs", "logs"} {
		mock.ExpectExec("SET FOREIGN_KEY_CHECKS = 0").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec("DROP TABLE IF EXISTS " + table).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec("SET FOREIGN_KEY_CHECKS = 1").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS " + table)).WillReturnResult(sqlmock.NewResult(0, 0))
	}

	_, err = NewMySQLConnectionFromDB(context.Background(), sqlDB, true)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJobStore_AddAndClose(t *testing.T) {
	connection, mock := newMock(t)
	ctx := context.Background()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO jobs ("+jobColumns+") VALUES (?, ?, ?, ?, ?)")).
		WithArgs(anyID{}, "", "MAIN", int64(100), int64(0)).
		WillReturnResult(sqlmock.NewResult(1, 1))
	id, err := connection.Jobs().Add(ctx, data.Job{Category: "MAIN", StartTimestamp: 100})
	require.NoError(t, err)
	assert.Len(t, id, 36)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE jobs SET job_end_timestamp = ? WHERE job_id = ?")).
		WithArgs(sqlmock.AnyArg(), id).
		WillReturnResult(sqlmock.NewResult(0, 1))
	err = connection.Jobs().Close(ctx, data.StoreJob{HasID: data.HasID{ID: id}})
	require.NoError(t, err)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE jobs SET job_end_timestamp = ? WHERE job_id = ?")).
		WithArgs(sqlmock.AnyArg(), "missing").
		WillReturnResult(sqlmock.NewResult(0, 0))
	err = connection.Jobs().Close(ctx, data.StoreJob{HasID: data.HasID{ID: "missing"}})
	assert.ErrorContains(t, err, "no rows found")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJobStore_GetInTimeRange(t *testing.T) {
	connection, mock := newMock(t)
	ctx := context.Background()
	category := "EXPORT"
	start := int64(10)
	end := int64(20)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT "+jobColumns+" FROM jobs WHERE job_category = ? AND job_start_timestamp > ? AND job_start_timestamp < ? AND job_id > ? ORDER BY job_id LIMIT ?")).
		WithArgs("EXPORT", int64(10), int64(20), "", data.PAGE_SIZE).
		WillReturnRows(sqlmock.NewRows([]string{"job_id", "parent_job_id", "job_category", "job_start_timestamp", "job_end_timestamp"}).
			AddRow("a", "p", "EXPORT", 11, 12).
			AddRow("b", "p", "EXPORT", 13, 0))

	jobs, err := connection.Jobs().GetInTimeRange(ctx, data.JobFilter{Category: &category}, &start, &end).Collect(ctx)

	require.NoError(t, err)
	assert.Equal(t, []data.StoreJob{
		{HasID: data.HasID{ID: "a"}, Job: data.Job{ParentID: "p", Category: "EXPORT", StartTimestamp: 11, EndTimestamp: 12}},
		{HasID: data.HasID{ID: "b"}, Job: data.Job{ParentID: "p", Category: "EXPORT", StartTimestamp: 13}},
	}, jobs)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLogStore_PaginatesByID(t *testing.T) {
	connection, mock := newMock(t)
	ctx := context.Background()
	jobID := "job"
	columns := []string{"log_id", "job_id", "log_level", "log_stack_trace", "log_description", "log_timestamp"}
	query := regexp.QuoteMeta("SELECT log_id, job_id, log_level, log_stack_trace, log_description, log_timestamp FROM logs WHERE job_id = ? AND log_id > ? ORDER BY log_id LIMIT ?")

	fullPage := sqlmock.NewRows(columns)
	for i := 0; i < data.PAGE_SIZE; i++ {
		fullPage.AddRow(string(rune('A'+i)), jobID, 3, "", "line", 1)
	}
	lastID := string(rune('A' + data.PAGE_SIZE - 1))
	mock.ExpectQuery(query).WithArgs(jobID, "", data.PAGE_SIZE).WillReturnRows(fullPage)
	mock.ExpectQuery(query).WithArgs(jobID, lastID, data.PAGE_SIZE).
		WillReturnRows(sqlmock.NewRows(columns).AddRow("zz", jobID, 1, "trace", "last", 2))

	logs, err := connection.Logs().Get(ctx, data.LogFilter{JobID: &jobID}).Collect(ctx)

	require.NoError(t, err)
	require.Len(t, logs, data.PAGE_SIZE+1)
	assert.Equal(t, "last", logs[data.PAGE_SIZE].Description)
	assert.Equal(t, 1, logs[data.PAGE_SIZE].Level)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLogStore_AddAndDelete(t *testing.T) {
	connection, mock := newMock(t)
	ctx := context.Background()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO logs (log_id, job_id, log_level, log_stack_trace, log_description, log_timestamp) VALUES (?, ?, ?, ?, ?, ?)")).
		WithArgs(anyID{}, "job", 3, "", "hello", int64(5)).
		WillReturnResult(sqlmock.NewResult(1, 1))
	_, err := connection.Logs().Add(ctx, data.Log{JobID: "job", Level: 3, Description: "hello", Timestamp: 5})
	require.NoError(t, err)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM logs WHERE log_id = ?")).WithArgs("gone").
		WillReturnResult(sqlmock.NewResult(0, 0))
	err = connection.Logs().Delete(ctx, data.StoreLog{HasID: data.HasID{ID: "gone"}})
	assert.ErrorContains(t, err, "no rows deleted")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStatus(t *testing.T) {
	sqlDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS jobs").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS logs").WillReturnResult(sqlmock.NewResult(0, 0))
	connection, err := NewMySQLConnectionFromDB(context.Background(), sqlDB, false)
	require.NoError(t, err)

	mock.ExpectPing()
	status, _ := connection.Status(context.Background())
	assert.Equal(t, connections.Good, status)

	mock.ExpectClose()
	require.NoError(t, connection.Close())
	status, description := connection.Status(context.Background())
	assert.Equal(t, connections.Bad, status)
	assert.Equal(t, "db is nil", description)
	assert.NoError(t, mock.ExpectationsWereMet())
}
