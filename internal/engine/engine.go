// Package engine runs one export: collect, assemble, check, publish.
package engine

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"time"

	"go.uber.org/zap"

	"rdsdash/internal/collector"
	"rdsdash/internal/config"
	"rdsdash/internal/logging"
	"rdsdash/internal/output"
	"rdsdash/internal/records"
	"rdsdash/internal/snapshot"
)

const (
	ExitClean   = 0
	ExitWrongs  = 1
	ExitPartial = 2
	ExitFatal   = 3
)

func exitCodeForRun(fatal, partial, wrongs bool) int {
	// Exit code contract:
	// 0 = clean run
	// 1 = --strict and FAIL or ERROR verdicts were exported
	// 2 = partial failure (a destination could not be written)
	// 3 = fatal error (nothing was exported)
	if fatal {
		return ExitFatal
	}
	if partial {
		return ExitPartial
	}
	if wrongs {
		return ExitWrongs
	}
	return ExitClean
}

type Engine struct {
	Logger     *zap.Logger
	AppVersion string

	// Stdout receives console output. Defaults to os.Stdout.
	Stdout io.Writer

	// Test seams. nil selects the real implementation.
	fsys        fs.FS
	now         func() time.Time
	newSheets   func(ctx context.Context, cfg *config.Config, logger *zap.Logger) (output.SheetsAPI, error)
	newContents func(ctx context.Context, cfg *config.Config, logger *zap.Logger) (output.ContentsAPI, error)
}

func NewEngine(logger *zap.Logger, appVersion string) *Engine {
	return &Engine{
		Logger:     logging.OrNop(logger),
		AppVersion: appVersion,
	}
}

// RunSummary describes a finished run. It is nil when the run was fatal.
type RunSummary struct {
	RunID    string
	Snapshot *snapshot.Snapshot
	// HistoryRunID is the id the run was recorded under in the history
	// database, empty when no history is configured or the write failed.
	HistoryRunID string
	Skipped  []collector.Skipped
	Excluded []string
	// PublishErr holds the joined destination failures, if any.
	PublishErr error
}

// Run performs one export with a validated cfg and returns the process
// exit code.
func (e *Engine) Run(ctx context.Context, cfg *config.Config) int {
	code, _ := e.Export(ctx, cfg)
	return code
}

// Export is Run, also returning what was exported.
func (e *Engine) Export(ctx context.Context, cfg *config.Config) (int, *RunSummary) {
	logger, runID := logging.WithRun(logging.OrNop(e.Logger))

	ctx, cancel := context.WithTimeout(ctx, cfg.Runtime.Timeout)
	defer cancel()

	outMgr, history, err := e.setupOutputManager(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to create output sinks", zap.Error(err))
		return exitCodeForRun(true, false, false), nil
	}
	defer func() {
		if err := outMgr.Close(); err != nil {
			logger.Warn("failed to close output sinks", zap.Error(err))
		}
	}()

	logger.Info("collecting operations",
		zap.String("base_path", cfg.Source.BasePath),
		zap.Int("operations", len(cfg.Source.OperationPaths)),
	)
	col := collector.New(e.sourceFS(cfg), collector.Options{
		Paths:       cfg.Source.OperationPaths,
		ProductID:   cfg.Source.ProductID,
		Filter:      collector.Filter{Include: cfg.Source.Include, Exclude: cfg.Source.Exclude},
		Concurrency: cfg.Runtime.Concurrency,
	}, logger)
	collected, err := col.Collect(ctx)
	if err != nil {
		logger.Error("collection failed", zap.Error(err))
		return exitCodeForRun(true, false, false), nil
	}

	snap, err := snapshot.Assemble(snapshot.Input{
		Records:     collected.Records,
		Operations:  collected.Operations,
		Countries:   collected.Countries,
		AppVersion:  e.AppVersion,
		GeneratedAt: e.clock()().UTC(),
	})
	if err != nil {
		logger.Error("failed to assemble export", zap.Error(err))
		return exitCodeForRun(true, false, false), nil
	}
	if err := snapshot.Check(snap); err != nil {
		logger.Error("export failed consistency check", zap.Error(err))
		return exitCodeForRun(true, false, false), nil
	}

	totals := snap.Data.SummaryStatistics.TotalsByResult
	logger.Info("export assembled",
		zap.Int("operations", len(snap.Data.Operations)),
		zap.Int("layers", snap.Len()),
		zap.Int("fail", totals[records.ResultFail]),
		zap.Int("error", totals[records.ResultError]),
	)

	summary := &RunSummary{
		RunID:    runID,
		Snapshot: snap,
		Skipped:  collected.Skipped,
		Excluded: collected.Excluded,
	}

	if err := outMgr.Write(ctx, snap); err != nil {
		summary.PublishErr = err
		logger.Error("export not fully published",
			zap.String("error", presentPublishError(err, cfg.Runtime.Verbose)),
		)
	}

	if history != nil {
		summary.HistoryRunID = history.LastRunID()
	}

	wrongs := cfg.Runtime.Strict && (totals[records.ResultFail] > 0 || totals[records.ResultError] > 0)
	code := exitCodeForRun(false, summary.PublishErr != nil, wrongs)
	logger.Info("run finished",
		zap.Int("exit_code", code),
		zap.Int("sinks", outMgr.Len()),
		zap.String("history_run_id", summary.HistoryRunID),
	)
	return code, summary
}

func (e *Engine) sourceFS(cfg *config.Config) fs.FS {
	if e.fsys != nil {
		return e.fsys
	}
	return os.DirFS(cfg.Source.BasePath)
}

func (e *Engine) clock() func() time.Time {
	if e.now != nil {
		return e.now
	}
	return time.Now
}

var errNoSinks = errors.New("no output destination configured")
