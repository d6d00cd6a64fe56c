package data

// A job as read from a store. Mutations are not implicitly persisted.
var _ Storable[StoreJob] = StoreJob{}

type StoreJob struct {
	HasID
	Job
}

func (j StoreJob) SpreadAddresses() (*StoreJob, []any) {
	job := &StoreJob{}
	return job, []any{
		&job.ID,
		&job.ParentID,
		&job.Category,
		&job.StartTimestamp,
		&job.EndTimestamp,
	}
}

// A job that is not necessarily associated with a Store object.
var _ Spreadable = Job{}

type Job struct {
	ParentID       string
	Category       string
	StartTimestamp int64
	EndTimestamp   int64
}

func (j Job) Spread() []any {
	return []any{
		j.ParentID,
		j.Category,
		j.StartTimestamp,
		j.EndTimestamp,
	}
}

// A partial job for querying a store.
var _ Spreadable = JobFilter{}

type JobFilter struct {
	ID             *string
	ParentID       *string
	Category       *string
	StartTimestamp *int64
	EndTimestamp   *int64
}

func (j JobFilter) Spread() []any {
	return []any{
		optional(j.ID),
		optional(j.ParentID),
		optional(j.Category),
		optional(j.StartTimestamp),
		optional(j.EndTimestamp),
	}
}
