package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/Mause/tuya-graphing/config"
	"github.com/Mause/tuya-graphing/connections/db"
	"github.com/Mause/tuya-graphing/connections/db/mysql"
	"github.com/Mause/tuya-graphing/connections/sensors"
	"github.com/Mause/tuya-graphing/jobs"
	"github.com/Mause/tuya-graphing/logs"
	"github.com/Mause/tuya-graphing/series"
)

func main() {
	err := godotenv.Load()
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatal("fatal: ", err)
	}
	if err := run(); err != nil {
		log.Fatal("fatal: ", err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}
	logger, err := logs.NewLogger(cfg.Log.Level, cfg.Log.Format, cfg.Log.File)
	if err != nil {
		return err
	}
	defer logger.Sync() // ignore error
	zap.ReplaceGlobals(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to run ledger
	var ledger db.DBConnection
	if cfg.MySQL.DSN != "" {
		mySQL, err := mysql.NewMySQLConnection(ctx, cfg.MySQL.DSN, cfg.MySQL.SetupDestructive)
		if err != nil {
			return fmt.Errorf("error connecting to DB: %w", err)
		}
		defer mySQL.Close() // ignore error
		ledger = mySQL
	}

	mainJob, err := logs.CreateJob(ctx, ledger, logger, logs.Main)
	if err != nil {
		return fmt.Errorf("error creating main job: %w", err)
	}
	defer mainJob.End(ctx)
	ctx = logs.ContextWithLogger(ctx, mainJob)

	if ledger != nil {
		err = reviewLedger(ctx, ledger, mainJob, cfg.MySQL.Retention)
		if err != nil {
			return err
		}
	}

	// Connect to Tuya
	tuyaConnection, err := sensors.NewTuyaConnection(ctx, sensors.TuyaConfig{
		AccessID:     cfg.Tuya.AccessID,
		AccessSecret: cfg.Tuya.AccessSecret,
		Region:       cfg.Tuya.Region,
		Endpoint:     cfg.Tuya.Endpoint,
		HTTPTimeout:  cfg.Tuya.HTTPTimeout,
		MaxLogPages:  cfg.Tuya.MaxLogPages,
	})
	if err != nil {
		return fmt.Errorf("error while creating new Tuya connection: %w", err)
	}
	defer tuyaConnection.Close() // ignore error
	mainJob.Info(ctx, "Connected to Tuya as user %v", tuyaConnection.UID())

	export := &jobs.TelemetryExport{
		Sensors:     tuyaConnection,
		Builder:     series.NewBuilder(cfg.Location, series.DefaultSkipCodes...),
		Window:      cfg.LogWindow,
		Location:    cfg.Location,
		OutputFile:  cfg.OutputFile,
		ChartFile:   cfg.ChartFile,
		MetricsFile: cfg.MetricsFile,
	}

	// Export telemetry
	mainJob.Info(ctx, "Initial run starting...")
	err = jobs.RunJob(ctx, logs.Export, "exporting telemetry", export.Run)
	if err != nil {
		return fmt.Errorf("error while exporting telemetry: %w", err)
	}
	if cfg.RunInterval == 0 {
		return nil
	}

	// Repeat until interrupted
	mainJob.Info(ctx, "Scheduling starting, every %v...", cfg.RunInterval)
	return scheduleJob(ctx, jobs.CreateJob(ctx, logs.Export, "exporting telemetry", export.Run), cfg.RunInterval)
}

// Report the previous export and prune ledger rows older than retention.
func reviewLedger(ctx context.Context, ledger db.DBConnection, mainJob *logs.JobLogger, retention time.Duration) error {
	last, err := jobs.LastFinishedJob(ctx, ledger.Jobs(), logs.Export)
	if err != nil {
		return fmt.Errorf("error reading previous export: %w", err)
	}
	if last == nil {
		mainJob.Info(ctx, "No previous export in ledger")
	} else {
		mainJob.Info(ctx, "Previous export %v ran from %v to %v", last.ID,
			time.Unix(last.StartTimestamp, 0).UTC().Format(time.RFC3339), time.Unix(last.EndTimestamp, 0).UTC().Format(time.RFC3339))
	}

	if retention == 0 {
		return nil
	}
	deletedLogs, deletedJobs, err := jobs.PruneLedger(ctx, ledger, time.Now().Add(-retention))
	if err != nil {
		return fmt.Errorf("error pruning ledger: %w", err)
	}
	mainJob.Info(ctx, "Pruned %d logs and %d jobs older than %v", deletedLogs, deletedJobs, retention)
	return nil
}

// Run function every interval until ctx is done. A run still in progress delays the next one.
func scheduleJob(ctx context.Context, function func(), interval time.Duration) error {
	s, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("error creating scheduler: %w", err)
	}
	_, err = s.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(function),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("error creating job: %w", err)
	}
	s.Start()
	<-ctx.Done()
	err = s.Shutdown()
	if err != nil {
		return fmt.Errorf("error shutting down: %w", err)
	}
	return nil
}
