package mysql

import (
	"database/sql"

	"github.com/Mause/tuya-graphing/connections/db"
	"github.com/Mause/tuya-graphing/data"
)

var _ db.LogStore = (*MySQLLogStore)(nil)

type MySQLLogStore struct {
	MySQLTimestampedDataStore[data.Log, data.StoreLog, data.LogFilter]
}

func NewMySQLLogStore(sqlDB *sql.DB) *MySQLLogStore {
	return &MySQLLogStore{
		MySQLTimestampedDataStore[data.Log, data.StoreLog, data.LogFilter]{
			MySQLStore: MySQLStore[data.Log, data.StoreLog, data.LogFilter]{
				db:        sqlDB,
				tableName: "logs",
				tableCreationSQL: `
					CREATE TABLE IF NOT EXISTS logs (
						log_id 			VARCHAR(36) NOT NULL,
						job_id 			VARCHAR(36) NOT NULL,
						log_level 		INT			NOT NULL,
						log_stack_trace TEXT 		NOT NULL,
						log_description TEXT		NOT NULL,
						log_timestamp 	BIGINT		NOT NULL,
						PRIMARY KEY (log_id)
					) ENGINE = InnoDB;
				`,
				tableColumns: []string{"log_id", "job_id", "log_level", "log_stack_trace", "log_description", "log_timestamp"},
				primaryKey:   "log_id",
			},
			timestampKey: "log_timestamp",
		},
	}
}
