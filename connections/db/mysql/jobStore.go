package mysql

import (
	"database/sql"

	"github.com/Mause/tuya-graphing/connections/db"
	"github.com/Mause/tuya-graphing/data"
)

var _ db.JobStore = (*MySQLJobStore)(nil)

type MySQLJobStore struct {
	MySQLClosableStore[data.Job, data.StoreJob, data.JobFilter]
}

func NewMySQLJobStore(sqlDB *sql.DB) *MySQLJobStore {
	return &MySQLJobStore{
		MySQLClosableStore[data.Job, data.StoreJob, data.JobFilter]{
			MySQLTimestampedDataStore: MySQLTimestampedDataStore[data.Job, data.StoreJob, data.JobFilter]{
				MySQLStore: MySQLStore[data.Job, data.StoreJob, data.JobFilter]{
					db:        sqlDB,
					tableName: "jobs",
					tableCreationSQL: `
						CREATE TABLE IF NOT EXISTS jobs (
							job_id 				VARCHAR(36) NOT NULL,
							parent_job_id		VARCHAR(36) NOT NULL,
							job_category 		VARCHAR(64) NOT NULL,
							job_start_timestamp BIGINT		NOT NULL,
							job_end_timestamp 	BIGINT		NOT NULL,
							PRIMARY KEY (job_id)
						) ENGINE = InnoDB;
					`,
					tableColumns: []string{"job_id", "parent_job_id", "job_category", "job_start_timestamp", "job_end_timestamp"},
					primaryKey:   "job_id",
				},
				timestampKey: "job_start_timestamp",
			},
			closeKey: "job_end_timestamp",
		},
	}
}
