package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/evolveapp/statusprobe/internal/config"
	"github.com/evolveapp/statusprobe/internal/errkind"
	"github.com/evolveapp/statusprobe/internal/feed"
	"github.com/evolveapp/statusprobe/internal/fsutil"
	"github.com/evolveapp/statusprobe/internal/history"
	"github.com/evolveapp/statusprobe/internal/override"
	"github.com/evolveapp/statusprobe/internal/probe"
	"github.com/evolveapp/statusprobe/internal/report"
	"github.com/evolveapp/statusprobe/internal/schedule"
)

// RunOneshot performs a single run. The exit code only reports whether the
// run itself worked; failing endpoints still exit 0.
func (cmd *StatusProbeCommand) RunOneshot(ctx context.Context, conf *config.Config, logger *zap.Logger) (exitCode int) {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return cmd.runOnce(ctx, conf, logger)
}

// RunSchedule keeps performing runs until interrupted.
func (cmd *StatusProbeCommand) RunSchedule(ctx context.Context, conf *config.Config, sched schedule.Schedule, logger *zap.Logger) (exitCode int) {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("scheduler started", zap.String("schedule", sched.String()))

	if sched.NeedKickWhenStart() {
		cmd.runOnce(ctx, conf, logger)
	}

	for {
		timer := time.NewTimer(time.Until(sched.Next(time.Now())))

		select {
		case <-ctx.Done():
			timer.Stop()
			logger.Info("scheduler stopped")
			return 0
		case <-timer.C:
			cmd.runOnce(ctx, conf, logger)
		}
	}
}

func (cmd *StatusProbeCommand) runOnce(ctx context.Context, conf *config.Config, logger *zap.Logger) (exitCode int) {
	run := logger.With(zap.String("run_id", uuid.NewString()))
	now := time.Now().UTC()

	doc, err := executeRun(ctx, conf, run, now)
	if err != nil {
		run.Error("run failed", zap.Error(err))
		doc = report.FailSafe(err, conf.Region, now)
		exitCode = 1
	}

	// The document goes out even when the run broke; consumers must always
	// find a well-formed artifact.
	if werr := cmd.emit(doc); werr != nil {
		run.Error("failed to emit status document", zap.Error(werr))
		return 1
	}

	run.Info("run finished",
		zap.String("overall", doc.Overall.String()),
		zap.Int("checks", len(doc.Checks)),
		zap.Int("incidents", len(doc.Incidents)),
		zap.Int("exit_code", exitCode))

	return exitCode
}

// executeRun is one sequential pass: probe, record, prune, persist, merge
// the override, publish the feed, and assemble the document. Component
// errors surface here as values; nothing below this function panics the
// process.
func executeRun(ctx context.Context, conf *config.Config, logger *zap.Logger, now time.Time) (doc report.Document, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("unexpected error: %v", p)
		}
	}()

	executor := probe.NewExecutor(probe.Config{
		Region:        conf.Region,
		Timeout:       conf.API.Timeout,
		FallbackHost:  conf.API.FallbackHost,
		FallbackPaths: conf.FallbackPaths,
	}, logger)

	checks := executor.ExecuteAll(ctx, conf.Endpoints)

	store := history.NewStore(conf.Paths.History, logger)
	h := store.Load()
	h.Add(checks, now)
	h.Prune(conf.RetentionDays, now)
	if err := store.Save(h); err != nil {
		return report.Document{}, err
	}

	ov := override.NewResolver(conf.Paths.Override, logger).Load()

	publisher := feed.Publisher{Path: conf.Paths.Feed, Conf: conf.Feed}
	if err := publisher.Publish(ov.Incidents); err != nil {
		return report.Document{}, err
	}

	return report.New(checks, ov, now), nil
}

func (cmd *StatusProbeCommand) emit(doc report.Document) error {
	if cmd.OutputPath == "" || cmd.OutputPath == "-" {
		return doc.Write(cmd.OutStream)
	}

	var buf bytes.Buffer
	if err := doc.Write(&buf); err != nil {
		return err
	}
	if err := fsutil.WriteFile(cmd.OutputPath, buf.Bytes()); err != nil {
		return errkind.New(errkind.IO, err, "failed to write status document")
	}
	return nil
}
