package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/samborkent/uuidv7"

	"github.com/Mause/tuya-graphing/data"
	"github.com/Mause/tuya-graphing/logs"
	"github.com/Mause/tuya-graphing/utils"
)

const RequestTimeout = 60 * time.Second

// Generic MySQL Store. Instantiations require a couple assertions:
// Columns, spreads, scans and filters must always be in the same order.
// The ID comes first in this order.
// The main way this order is coordinated is via the data structs "Spread" and "SpreadAddresses".
type MySQLStore[T data.Spreadable, S data.Storable[S], F data.Spreadable] struct {
	db               *sql.DB
	tableName        string
	tableCreationSQL string
	tableColumns     []string
	primaryKey       string
}

func (s *MySQLStore[T, S, F]) Add(ctx context.Context, item T) (string, error) {
	// Build query
	id := uuidv7.New().String() // Time ordered, so pagination by id follows insertion order
	sqlArgs := append([]any{id}, item.Spread()...)
	sqlColumns := strings.Join(s.tableColumns, ", ")
	sqlPlaceholders := strings.Repeat("?, ", len(s.tableColumns)-1) + "?"
	sqlQuery := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", s.tableName, sqlColumns, sqlPlaceholders)

	// Execute query
	sqlctx, cancel := utils.TimeoutContext(ctx, RequestTimeout)
	defer cancel()
	_, err := s.db.ExecContext(sqlctx, sqlQuery, sqlArgs...)
	if err != nil {
		return "", fmt.Errorf("error inserting into %s with values %v: %w", s.tableName, item.Spread(), err)
	}
	return id, nil
}

func (s *MySQLStore[T, S, F]) Get(ctx context.Context, filter F) *data.IterablePaginatedData[S] {
	conditions, args := s.filterConditions(filter)
	return s.paginate(conditions, args)
}

func (s *MySQLStore[T, S, F]) Delete(ctx context.Context, storeItem S) error {
	sqlctx, cancel := utils.TimeoutContext(ctx, RequestTimeout)
	defer cancel()

	res, err := s.db.ExecContext(sqlctx, fmt.Sprintf("DELETE FROM %s WHERE %s = ?", s.tableName, s.primaryKey), storeItem.GetID())
	if err != nil {
		return fmt.Errorf("error deleting id %v from table %s: %w", storeItem.GetID(), s.tableName, err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error checking rows affected for id %v in table %s: %w", storeItem.GetID(), s.tableName, err)
	}
	if rows == 0 {
		return fmt.Errorf("no rows deleted for id %v in table %s", storeItem.GetID(), s.tableName)
	}
	return nil
}

func (s *MySQLStore[T, S, F]) Setup(ctx context.Context, isDestructive bool) error {
	if isDestructive {
		for _, statement := range []string{
			`SET FOREIGN_KEY_CHECKS = 0`,
			`DROP TABLE IF EXISTS ` + s.tableName,
			`SET FOREIGN_KEY_CHECKS = 1`,
		} {
			err := s.exec(ctx, statement)
			if err != nil {
				return fmt.Errorf("error dropping table %s: %w", s.tableName, err)
			}
		}
	}

	// Create table
	err := s.exec(ctx, s.tableCreationSQL)
	if err != nil {
		return fmt.Errorf("error creating table %s: %w", s.tableName, err)
	}
	return nil
}

func (s *MySQLStore[T, S, F]) exec(ctx context.Context, statement string) error {
	sqlctx, cancel := utils.TimeoutContext(ctx, RequestTimeout)
	defer cancel()
	_, err := s.db.ExecContext(sqlctx, statement)
	return err
}

// Equality conditions for every set filter field.
func (s *MySQLStore[T, S, F]) filterConditions(filter F) ([]string, []any) {
	args := []any{}
	conditions := []string{}
	for index, value := range filter.Spread() {
		if value == nil {
			continue
		}
		conditions = append(conditions, s.tableColumns[index]+" = ?")
		args = append(args, value)
	}
	return conditions, args
}

// Keyset pagination over the primary key.
func (s *MySQLStore[T, S, F]) paginate(conditions []string, args []any) *data.IterablePaginatedData[S] {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE ", strings.Join(s.tableColumns, ", "), s.tableName)
	for _, condition := range conditions {
		query += condition + " AND "
	}
	query += fmt.Sprintf("%v > ? ORDER BY %v LIMIT ?", s.primaryKey, s.primaryKey)

	paginator := newSQLIterablePaginatedData[S](s.db, query, args)
	return &paginator
}

type MySQLTimestampedDataStore[T data.Spreadable, S data.Storable[S], F data.Spreadable] struct {
	MySQLStore[T, S, F]

	timestampKey string
}

func (s *MySQLTimestampedDataStore[T, S, F]) GetInTimeRange(ctx context.Context, filter F, startTime *int64, endTime *int64) *data.IterablePaginatedData[S] {
	conditions, args := s.filterConditions(filter)
	if startTime != nil {
		conditions = append(conditions, s.timestampKey+" > ?")
		args = append(args, *startTime)
	}
	if endTime != nil {
		conditions = append(conditions, s.timestampKey+" < ?")
		args = append(args, *endTime)
	}
	return s.paginate(conditions, args)
}

type MySQLClosableStore[T data.Spreadable, S data.Storable[S], F data.Spreadable] struct {
	MySQLTimestampedDataStore[T, S, F]

	closeKey string
}

func (s *MySQLClosableStore[T, S, F]) Close(ctx context.Context, storeItem S) error {
	sqlctx, cancel := utils.TimeoutContext(ctx, RequestTimeout)
	defer cancel()
	result, err := s.db.ExecContext(
		sqlctx,
		fmt.Sprintf(
			`UPDATE %v SET %v = ? WHERE %v = ?`,
			s.tableName, s.closeKey, s.primaryKey,
		),
		utils.TimeSeconds(),
		storeItem.GetID(),
	)
	if err != nil {
		return fmt.Errorf("error closing item %v in table %v: %w", storeItem.GetID(), s.tableName, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error getting rows affected while closing item %v in table %v: %w", storeItem.GetID(), s.tableName, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("no rows found while closing item %v in table %v", storeItem.GetID(), s.tableName)
	}
	return nil
}

// Helper function for get methods.
func newSQLIterablePaginatedData[T data.Storable[T]](db *sql.DB, query string, args []any) data.IterablePaginatedData[T] {
	// Define pagination function
	return data.NewIterablePaginatedData(
		func(ctx context.Context, lastID *string) ([]T, *string, error) {
			// First query has no pagination filter, subsequent queries use the last id from the previous page
			var filterID string
			if lastID != nil {
				filterID = *lastID
			}
			pageArgs := make([]any, 0, len(args)+2)
			pageArgs = append(pageArgs, args...)
			pageArgs = append(pageArgs, filterID, data.PAGE_SIZE)

			sqlctx, cancel := utils.TimeoutContext(ctx, RequestTimeout)
			defer cancel()
			rows, err := db.QueryContext(sqlctx, query, pageArgs...)
			if err != nil {
				return nil, nil, fmt.Errorf("error running query %v with args %v: %w", query, pageArgs, err)
			}
			defer logs.LogErrorsWithContext(ctx, rows.Close, fmt.Sprintf("error closing rows for query %v and lastID %v", query, filterID))

			// Scan all results into the next "page" of data to store
			items := []T{}
			for rows.Next() {
				var emptyItem T
				item, addresses := emptyItem.SpreadAddresses()
				err := rows.Scan(addresses...)
				if err != nil {
					return nil, nil, fmt.Errorf("error scanning while paginating: %w", err)
				}
				items = append(items, *item)
			}
			err = rows.Err()
			if err != nil {
				return nil, nil, fmt.Errorf("error in rows: %w", err)
			}
			if len(items) < data.PAGE_SIZE {
				return items, nil, nil
			}
			id := items[len(items)-1].GetID()
			return items, &id, nil
		},
	)
}
