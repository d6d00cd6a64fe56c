package db

import (
	"context"

	"github.com/Mause/tuya-graphing/data"
)

// T represents the base type of the store.
// S represents the store object type, which is typically the base type with an id field.
// F represents the filter object type, which is typically a partial version of the store object type.
type GenericStore[T any, S data.HasIDGetter, F any] interface {
	// Add the object, return the ID.
	Add(ctx context.Context, item T) (string, error)
	// Fully remove the given item.
	Delete(ctx context.Context, storeItem S) error
	// Data is lazily fetched, so there is no error returned from the getter, which merely sets up the query.
	Get(ctx context.Context, filter F) *data.IterablePaginatedData[S]
	// Create the objects necessary to store data.
	// if isDestructive is false, tables or data should not be destroyed.
	Setup(ctx context.Context, isDestructive bool) error
}

// Stores that have timestamped data, allowing for range queries.
type TimestampedDataStore[T any, S data.HasIDGetter, F any] interface {
	GenericStore[T, S, F]
	// Bounds are exclusive and in epoch seconds. Nil bounds are open.
	GetInTimeRange(ctx context.Context, filter F, startTime *int64, endTime *int64) *data.IterablePaginatedData[S]
}

// Stores that have ongoing and closable events that can be ended.
type ClosableStore[T any, S data.HasIDGetter, F any] interface {
	GenericStore[T, S, F]
	// Ends the given item, typically by setting its end date to the current time.
	Close(ctx context.Context, storeItem S) error
}

type LogStore interface {
	TimestampedDataStore[data.Log, data.StoreLog, data.LogFilter]
}

type JobStore interface {
	TimestampedDataStore[data.Job, data.StoreJob, data.JobFilter]
	ClosableStore[data.Job, data.StoreJob, data.JobFilter]
}
