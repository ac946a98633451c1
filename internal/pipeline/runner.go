// Package pipeline implements the fetch-and-scan unit of work: download a
// candidate JavaScript URL, hand the bytes to the external scanner through
// a scoped temporary file, and record the normalized outcome.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/iamunixtz/jshunter-agent/internal/config"
	"github.com/iamunixtz/jshunter-agent/internal/notify"
	"github.com/iamunixtz/jshunter-agent/internal/results"
	"github.com/iamunixtz/jshunter-agent/internal/scanners"
	"github.com/iamunixtz/jshunter-agent/internal/schema"
)

// tempPattern names per-run scratch files so leftovers from a crashed
// process are recognizable and sweepable.
const tempPattern = "jshunter_*.js"

// Runner executes independent pipeline runs. It holds no per-run mutable
// state, so it is safe to call Scan concurrently for different targets.
type Runner struct {
	cfg      *config.Store
	store    *results.Store
	notifier *notify.Notifier
	fetcher  *Fetcher
	logger   *slog.Logger
}

func NewRunner(cfg *config.Store, store *results.Store, notifier *notify.Notifier, fetcher *Fetcher, logger *slog.Logger) *Runner {
	return &Runner{
		cfg:      cfg,
		store:    store,
		notifier: notifier,
		fetcher:  fetcher,
		logger:   logger,
	}
}

// Scan runs the full pipeline for one accepted target. Every terminal
// path records a result in the results store; fetch and scanner failures
// terminate only this run. The configuration snapshot is taken once so a
// concurrent settings update is never observed half-applied.
func (r *Runner) Scan(ctx context.Context, target schema.ScanTarget) schema.ScanResult {
	settings := r.cfg.Current()

	res := schema.ScanResult{
		ID:     uuid.NewString(),
		Target: target,
	}

	body, err := r.fetcher.Fetch(ctx, target.URL)
	if err != nil {
		res.Status = schema.StatusFetchError
		res.Error = err.Error()
		r.finish(ctx, &res, settings)
		return res
	}

	findings, stats, err := r.scanBody(ctx, settings.ScannerPath, target.URL, body)
	res.Malformed = stats.Malformed
	if err != nil {
		res.Status = schema.StatusScannerError
		res.Error = err.Error()
		r.finish(ctx, &res, settings)
		return res
	}

	res.Status = schema.StatusSuccess
	res.Findings = findings
	r.finish(ctx, &res, settings)
	return res
}

// scanBody writes the fetched bytes to a uniquely named temporary file
// and invokes the scanner against it. The file is removed on every exit
// path before the run is considered complete.
func (r *Runner) scanBody(ctx context.Context, scannerPath, sourceURL string, body []byte) ([]schema.Finding, scanners.RunStats, error) {
	var stats scanners.RunStats

	tmp, err := os.CreateTemp("", tempPattern)
	if err != nil {
		return nil, stats, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if err := os.Remove(tmpPath); err != nil && !os.IsNotExist(err) {
			r.logger.Warn("failed to remove temp file", "path", tmpPath, "error", err)
		}
	}()

	if _, err := tmp.Write(body); err != nil {
		tmp.Close()
		return nil, stats, fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, stats, fmt.Errorf("close temp file: %w", err)
	}

	return scanners.Run(ctx, scannerPath, tmpPath, sourceURL)
}

// finish stamps, records, and (for successful runs with findings)
// notifies. A notification failure is logged and surfaced but never
// changes the recorded result.
func (r *Runner) finish(ctx context.Context, res *schema.ScanResult, settings config.Settings) {
	res.ScannedAt = time.Now()
	r.store.Record(*res)

	switch res.Status {
	case schema.StatusSuccess:
		r.logger.Info("scan complete", "url", res.Target.URL, "findings", len(res.Findings), "malformed", res.Malformed)
	default:
		r.logger.Warn("scan failed", "url", res.Target.URL, "status", string(res.Status), "error", res.Error)
	}

	if res.Status != schema.StatusSuccess || len(res.Findings) == 0 {
		return
	}
	if err := r.notifier.Notify(ctx, *res, settings); err != nil {
		r.logger.Warn("webhook notification failed", "url", res.Target.URL, "error", err)
	}
}

// SweepTemp removes leftover jshunter scratch files from the system temp
// directory. Called at startup and on shutdown so interrupted runs don't
// accumulate downloads on disk.
func SweepTemp(logger *slog.Logger) {
	matches, err := filepath.Glob(filepath.Join(os.TempDir(), tempPattern))
	if err != nil {
		return
	}
	for _, path := range matches {
		if err := os.Remove(path); err == nil {
			logger.Debug("removed leftover temp file", "path", path)
		}
	}
}
