// Package main is the entry point of the tutoring report generator.
//
// One run loads a consistent snapshot of teachers, students and tutoring
// sessions, computes the aggregate views and writes them to a single report
// file (xlsx by default).
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"

	"github.com/coderva/tutoring-reports/config"
	"github.com/coderva/tutoring-reports/internal/application/analytics"
	"github.com/coderva/tutoring-reports/internal/application/report"
	"github.com/coderva/tutoring-reports/internal/domain/tutoring"
	"github.com/coderva/tutoring-reports/internal/infrastructure/persistence/redis"
	"github.com/coderva/tutoring-reports/internal/interface/render"
	"github.com/coderva/tutoring-reports/pkg/logger"
	"github.com/coderva/tutoring-reports/pkg/timeutil"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "Report generation failed: %v\n%+v\n", err, err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	startedAt := time.Now()

	// ─────────────────────────────────────────────────────────────────────────
	// 1. CONFIGURATION
	// ─────────────────────────────────────────────────────────────────────────
	fs := config.NewFlagSet("tutoring-report")
	fs.SetOutput(stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(fs)
	if err != nil {
		return errors.Wrap(err, "load config")
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 2. LOGGING
	// ─────────────────────────────────────────────────────────────────────────
	runID := redis.NewRunID()
	log := setupLogger(cfg, stderr).With(logger.RunID(runID))
	ctx = logger.WithContext(ctx, log)
	log.Info("starting tutoring report",
		logger.String("env", string(cfg.App.Environment)),
		logger.String("timezone", cfg.App.Timezone),
		logger.String("config_file", cfg.File),
		logger.Path(cfg.Report.Output),
		logger.Format(cfg.Report.Format),
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 3. RECORD STORE
	// ─────────────────────────────────────────────────────────────────────────
	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	ds, err := store.Load(ctx)
	if err != nil {
		return err
	}
	loadLog := log.With(logger.Operation("load"))
	loadLog.Info("snapshot loaded",
		logger.Int("teachers", len(ds.Teachers)),
		logger.Int("students", len(ds.Students)),
		logger.Int("sessions", len(ds.Sessions)),
	)
	if n := ds.Orphans(); n > 0 {
		loadLog.Warn("sessions reference missing teachers or students", logger.Int("sessions", n))
	}
	weekend := analytics.Count(ds.Sessions, func(s tutoring.Session) bool {
		return timeutil.IsWeekend(s.Date.Weekday())
	})
	if weekend > 0 {
		loadLog.Info("weekend sessions left out of the daily breakdown", logger.Int64("sessions", weekend))
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 4. AGGREGATION AND RENDERING
	// ─────────────────────────────────────────────────────────────────────────
	engine := analytics.New(ds)

	opts := report.DefaultOptions()
	opts.SchoolYear = cfg.Report.SchoolYear
	opts.Extended = cfg.Report.Extended
	opts.TopStudents = cfg.Report.TopStudents
	opts.TopSubjects = cfg.Report.TopSubjects
	opts.Location = cfg.App.Location
	rep := report.NewAssembler(engine, opts).Assemble(time.Now())

	renderer, err := render.New(cfg.Report.Format)
	if err != nil {
		return err
	}
	if err := render.WriteFile(cfg.Report.Output, renderer, rep); err != nil {
		return err
	}
	finishedAt := time.Now()
	log.Info("report written",
		logger.Operation("render"),
		logger.Path(cfg.Report.Output),
		logger.Int("sections", len(rep.Sections)),
		logger.Int64("total_sessions", engine.TotalSessionCount()),
		logger.Duration("took", finishedAt.Sub(startedAt)),
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 5. RUN STATUS
	// ─────────────────────────────────────────────────────────────────────────
	recordRun(ctx, cfg, redis.RunSummary{
		RunID:         runID,
		StartedAt:     startedAt,
		FinishedAt:    finishedAt,
		Output:        cfg.Report.Output,
		Format:        renderer.Format(),
		TotalSessions: engine.TotalSessionCount(),
	})

	fmt.Fprintf(stdout, "Report generated. File name: %s\n", cfg.Report.Output)
	return nil
}

// setupLogger builds the logger from the observability settings.
func setupLogger(cfg *config.Config, w io.Writer) *logger.Logger {
	return logger.New(logger.Options{
		Output:    w,
		Level:     logger.ParseLevel(cfg.Observability.LogLevel),
		Format:    cfg.Observability.LogFormat,
		AddCaller: cfg.IsDevelopment(),
	}).With(logger.Component(cfg.App.Name))
}

// recordRun stores the run summary when a recorder is configured. The report
// already exists at this point, so failures are only logged.
func recordRun(ctx context.Context, cfg *config.Config, s redis.RunSummary) {
	if !cfg.Redis.Enabled() {
		return
	}
	log := logger.FromContext(ctx)

	rcfg := redis.DefaultConfig()
	rcfg.URL = cfg.Redis.URL
	if cfg.Redis.DialTimeout > 0 {
		rcfg.DialTimeout = cfg.Redis.DialTimeout
	}

	client, err := redis.NewClient(ctx, rcfg)
	if err != nil {
		log.Warn("run status not recorded", logger.Err(err))
		return
	}
	defer client.Close()

	if err := redis.NewRunRecorder(client, cfg.Redis.TTL).Record(ctx, s); err != nil {
		log.Warn("run status not recorded", logger.Err(err))
		return
	}
	log.Debug("run status recorded")
}
