package ingest

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/sanctions-cli/internal/fetcher"
	"github.com/sells-group/sanctions-cli/internal/store"
)

// Engine orchestrates source sync runs.
type Engine struct {
	store   store.Store
	fetcher fetcher.Fetcher
	reg     *Registry
	tempDir string
}

// RunOpts configures which sources to sync and how.
type RunOpts struct {
	Sources []string // restrict to specific source names
	Force   bool     // ignore ShouldRun() scheduling
}

// NewEngine creates a new sync engine.
func NewEngine(st store.Store, f fetcher.Fetcher, reg *Registry, tempDir string) *Engine {
	return &Engine{
		store:   st,
		fetcher: f,
		reg:     reg,
		tempDir: tempDir,
	}
}

// Run iterates over the selected sources, checks if each needs syncing,
// and runs the sync. Results are recorded in the sync log. A scheduling
// skip is not an error; a source failure is logged, recorded, and rolled
// into the returned error after the remaining sources have run.
func (e *Engine) Run(ctx context.Context, opts RunOpts) error {
	log := zap.L().With(zap.String("component", "ingest.engine"))
	now := time.Now().UTC()

	sources, err := e.reg.Select(opts.Sources)
	if err != nil {
		return err
	}

	if len(sources) == 0 {
		log.Info("no sources selected")
		return nil
	}

	log.Info("selected sources", zap.Int("count", len(sources)))

	var synced, skipped, failed int

	for _, src := range sources {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		srcLog := log.With(zap.String("source", src.Name()))

		if !opts.Force {
			last, err := e.store.LastSyncSuccess(ctx, src.Name())
			if err != nil {
				return eris.Wrapf(err, "engine: check last sync for %s", src.Name())
			}
			var lastAt *time.Time
			if last != nil {
				lastAt = &last.StartedAt
			}

			if !src.ShouldRun(now, lastAt) {
				srcLog.Debug("skipping (not due)")
				skipped++
				continue
			}
		}

		srcLog.Info("starting sync")
		syncID, err := e.store.StartSync(ctx, src.Name())
		if err != nil {
			return eris.Wrapf(err, "engine: start sync log for %s", src.Name())
		}

		start := time.Now()
		result, err := src.Sync(ctx, e.store, e.fetcher, e.tempDir)
		elapsed := time.Since(start)

		if err != nil {
			srcLog.Error("sync failed", zap.Error(err), zap.Duration("elapsed", elapsed))
			if logErr := e.store.FailSync(ctx, syncID, err.Error()); logErr != nil {
				srcLog.Error("failed to record sync failure", zap.Error(logErr))
			}
			failed++
			continue
		}

		if err := e.store.CompleteSync(ctx, syncID, result); err != nil {
			srcLog.Error("failed to record sync completion", zap.Error(err))
		}

		srcLog.Info("sync complete",
			zap.Int64("rows", result.RowsSynced),
			zap.Duration("elapsed", elapsed),
		)
		synced++
	}

	log.Info("engine run complete",
		zap.Int("synced", synced),
		zap.Int("skipped", skipped),
		zap.Int("failed", failed),
	)

	if failed > 0 {
		return eris.Errorf("engine: %d of %d sources failed", failed, len(sources))
	}
	return nil
}
