package jobs

import (
	"context"
	"fmt"

	"github.com/Mause/tuya-graphing/logs"
)

// Run jobFunction as a child job of the job logger in ctx, ending the child job afterwards.
func RunJob(ctx context.Context, category logs.JobCategory, jobDescription string, jobFunction func(ctx context.Context) error) error {
	parent := logs.Logger(ctx)
	if parent == nil {
		return fmt.Errorf("no job logger in context for %v", jobDescription)
	}
	logger, err := parent.CreateChildJob(ctx, category)
	if err != nil {
		return fmt.Errorf("unable to create child job for %v: %w", jobDescription, err)
	}
	jobctx := logs.ContextWithLogger(ctx, logger)
	defer logger.End(jobctx)
	logger.Info(jobctx, "%v...", jobDescription)

	err = jobFunction(jobctx)
	if err != nil {
		logger.Error(jobctx, "error while %v: %v", jobDescription, err)
		return err
	}
	logger.Info(jobctx, "job ending normally")
	return nil
}

// Wrap RunJob for a scheduler, which has nowhere to return errors to.
func CreateJob(ctx context.Context, category logs.JobCategory, jobDescription string, jobFunction func(ctx context.Context) error) func() {
	return func() {
		_ = RunJob(ctx, category, jobDescription, jobFunction)
	}
}
