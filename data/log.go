package data

// A log as read from a store. Mutations are not implicitly persisted.
var _ Storable[StoreLog] = StoreLog{}

type StoreLog struct {
	HasID
	Log
}

func (l StoreLog) SpreadAddresses() (*StoreLog, []any) {
	log := &StoreLog{}
	return log, []any{
		&log.ID,
		&log.JobID,
		&log.Level,
		&log.StackTrace,
		&log.Description,
		&log.Timestamp,
	}
}

// A log that is not necessarily associated with a Store object.
var _ Spreadable = Log{}

type Log struct {
	JobID       string
	Level       int
	StackTrace  string
	Description string
	Timestamp   int64
}

func (l Log) Spread() []any {
	return []any{
		l.JobID,
		l.Level,
		l.StackTrace,
		l.Description,
		l.Timestamp,
	}
}

// A partial log for querying a store.
var _ Spreadable = LogFilter{}

type LogFilter struct {
	ID          *string
	JobID       *string
	Level       *int
	StackTrace  *string
	Description *string
	Timestamp   *int64
}

func (l LogFilter) Spread() []any {
	return []any{
		optional(l.ID),
		optional(l.JobID),
		optional(l.Level),
		optional(l.StackTrace),
		optional(l.Description),
		optional(l.Timestamp),
	}
}
