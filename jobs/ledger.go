package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/Mause/tuya-graphing/connections/db"
	"github.com/Mause/tuya-graphing/data"
	"github.com/Mause/tuya-graphing/logs"
)

// The most recently started job of category that has ended, or nil if there is none.
func LastFinishedJob(ctx context.Context, jobStore db.JobStore, category logs.JobCategory) (*data.StoreJob, error) {
	categoryName := string(category)
	jobs := jobStore.Get(ctx, data.JobFilter{Category: &categoryName})

	// Ids are time ordered, so the last match is the latest
	var last *data.StoreJob
	for {
		job, err := jobs.Next(ctx)
		if err != nil {
			return nil, fmt.Errorf("error while reading %v jobs: %w", category, err)
		}
		if job == nil {
			return last, nil
		}
		if job.EndTimestamp != 0 {
			last = job
		}
	}
}

// Delete log lines written before cutoff, then finished jobs started before it.
// Returns the number of logs and jobs deleted.
func PruneLedger(ctx context.Context, ledger db.DBConnection, cutoff time.Time) (int, int, error) {
	before := cutoff.UTC().Unix()

	// Prune logs
	oldLogs, err := ledger.Logs().GetInTimeRange(ctx, data.LogFilter{}, nil, &before).Collect(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("error while reading logs before %v: %w", cutoff, err)
	}
	for _, log := range oldLogs {
		err = ledger.Logs().Delete(ctx, log)
		if err != nil {
			return 0, 0, fmt.Errorf("error while pruning log %v: %w", log.ID, err)
		}
	}

	// Prune jobs. Unfinished jobs may still be running
	oldJobs, err := ledger.Jobs().GetInTimeRange(ctx, data.JobFilter{}, nil, &before).Collect(ctx)
	if err != nil {
		return len(oldLogs), 0, fmt.Errorf("error while reading jobs before %v: %w", cutoff, err)
	}
	deletedJobs := 0
	for _, job := range oldJobs {
		if job.EndTimestamp == 0 || job.EndTimestamp >= before {
			continue
		}
		err = ledger.Jobs().Delete(ctx, job)
		if err != nil {
			return len(oldLogs), deletedJobs, fmt.Errorf("error while pruning job %v: %w", job.ID, err)
		}
		deletedJobs++
	}
	return len(oldLogs), deletedJobs, nil
}
