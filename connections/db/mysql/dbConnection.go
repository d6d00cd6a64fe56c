package mysql

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/go-sql-driver/mysql"

	"github.com/Mause/tuya-graphing/connections"
	"github.com/Mause/tuya-graphing/connections/db"
	"github.com/Mause/tuya-graphing/logs"
	"github.com/Mause/tuya-graphing/utils"
)

// Used when the DSN names no database.
const DatabaseName = "tuya_telemetry"

var _ db.DBConnection = (*MySQLConnection)(nil)

type MySQLConnection struct {
	connectionString string
	jobStore         *MySQLJobStore
	logStore         *MySQLLogStore
	db               *sql.DB
}

// Connect to the server in dsn, create the ledger database if missing, then set up its tables.
func NewMySQLConnection(ctx context.Context, dsn string, isSetupDestructive bool) (*MySQLConnection, error) {
	config, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("error while parsing MySQL DSN: %w", err)
	}
	databaseName := config.DBName
	if databaseName == "" {
		databaseName = DatabaseName
	}

	// Create database from a server level connection
	config.DBName = ""
	server := &MySQLConnection{connectionString: config.FormatDSN()}
	err = server.Open(ctx)
	if err != nil {
		return nil, fmt.Errorf("error while connecting to MySQL server: %w", err)
	}
	defer logs.LogErrorsWithContext(ctx, server.Close, "error closing MySQL server connection")
	sqlctx, cancel := utils.TimeoutContext(ctx, RequestTimeout)
	defer cancel()
	_, err = server.DB().ExecContext(sqlctx, fmt.Sprintf("CREATE DATABASE IF NOT EXISTS `%s`", databaseName))
	if err != nil {
		return nil, fmt.Errorf("error while creating database: %w", err)
	}

	config.DBName = databaseName
	connection := &MySQLConnection{connectionString: config.FormatDSN()}
	err = connection.Open(ctx)
	if err != nil {
		return nil, fmt.Errorf("error while connecting to database: %w", err)
	}
	err = connection.setupStores(ctx, isSetupDestructive)
	if err != nil {
		return nil, err
	}
	return connection, nil
}

// Wrap an already open database, setting up the ledger tables.
func NewMySQLConnectionFromDB(ctx context.Context, sqlDB *sql.DB, isSetupDestructive bool) (*MySQLConnection, error) {
	connection := &MySQLConnection{db: sqlDB}
	err := connection.setupStores(ctx, isSetupDestructive)
	if err != nil {
		return nil, err
	}
	return connection, nil
}

func (manager *MySQLConnection) setupStores(ctx context.Context, isSetupDestructive bool) error {
	jobs := NewMySQLJobStore(manager.db)
	err := jobs.Setup(ctx, isSetupDestructive)
	if err != nil {
		return fmt.Errorf("error setting up jobs: %w", err)
	}
	manager.jobStore = jobs

	logStore := NewMySQLLogStore(manager.db)
	err = logStore.Setup(ctx, isSetupDestructive)
	if err != nil {
		return fmt.Errorf("error setting up logs: %w", err)
	}
	manager.logStore = logStore
	return nil
}

func (manager *MySQLConnection) Open(ctx context.Context) error {
	if manager.db != nil {
		return nil
	}
	sqlDB, err := sql.Open("mysql", manager.connectionString)
	if err != nil {
		return fmt.Errorf("error opening MySQL connection: %w", err)
	}
	sqlctx, cancel := utils.TimeoutContext(ctx, RequestTimeout)
	defer cancel()
	err = sqlDB.PingContext(sqlctx)
	if err != nil {
		_ = sqlDB.Close()
		return fmt.Errorf("error pinging MySQL: %w", err)
	}
	manager.db = sqlDB
	return nil
}

func (manager *MySQLConnection) Close() error {
	if manager.db == nil {
		return nil
	}
	err := manager.db.Close()
	if err != nil {
		return fmt.Errorf("error while disconnecting from mysql db: %w", err)
	}
	manager.db = nil
	return nil
}

func (manager *MySQLConnection) Status(ctx context.Context) (connections.PingResult, string) {
	if manager.db == nil {
		return connections.Bad, "db is nil"
	}
	sqlctx, cancel := utils.TimeoutContext(ctx, RequestTimeout)
	defer cancel()
	err := manager.db.PingContext(sqlctx)
	if err != nil {
		return connections.Bad, "error on db ping"
	}
	return connections.Good, ""
}

func (manager *MySQLConnection) Jobs() db.JobStore {
	return manager.jobStore
}

func (manager *MySQLConnection) Logs() db.LogStore {
	return manager.logStore
}

func (manager *MySQLConnection) DB() *sql.DB {
	return manager.db
}
