package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/viper"

	"github.com/iamunixtz/jshunter-agent/internal/config"
	"github.com/iamunixtz/jshunter-agent/internal/dedup"
	"github.com/iamunixtz/jshunter-agent/internal/notify"
	"github.com/iamunixtz/jshunter-agent/internal/pipeline"
	"github.com/iamunixtz/jshunter-agent/internal/results"
	"github.com/iamunixtz/jshunter-agent/internal/schema"
)

// app wires the shared components one command invocation needs.
type app struct {
	cfg      *config.Store
	store    *results.Store
	guard    *dedup.Guard
	notifier *notify.Notifier
	runner   *pipeline.Runner
	logger   *slog.Logger
}

// newApp loads persisted settings, applies flag/env overrides for this
// invocation only, and builds the pipeline. A malformed config file is
// downgraded to a warning: the agent starts from defaults.
func newApp() *app {
	logger := newLogger()

	cfgStore, err := config.Load(viper.GetString("config"))
	if err != nil {
		logger.Warn("config unreadable, using defaults", "error", err)
	}

	settings := cfgStore.Current()
	if scanner := viper.GetString("scanner"); scanner != "" {
		settings.ScannerPath = scanner
	}
	if webhook := viper.GetString("webhook"); webhook != "" {
		settings.WebhookURL = webhook
	}
	cfgStore.Apply(settings)

	store := results.NewStore()
	notifier := notify.NewNotifier(logger)
	fetcher := pipeline.NewFetcher(viper.GetInt("rate-limit"))
	runner := pipeline.NewRunner(cfgStore, store, notifier, fetcher, logger)

	// Reclaim scratch files an interrupted run may have left behind.
	pipeline.SweepTemp(logger)

	return &app{
		cfg:      cfgStore,
		store:    store,
		guard:    dedup.NewGuard(),
		notifier: notifier,
		runner:   runner,
		logger:   logger,
	}
}

// summary prints the end-of-run counts in one line.
func (a *app) summary() {
	verified, unverified, failed, skipped := 0, 0, 0, 0
	for _, res := range a.store.List() {
		switch res.Status {
		case schema.StatusSuccess:
			verified += len(res.Verified())
			unverified += len(res.Unverified())
		case schema.StatusSkipped:
			skipped++
		default:
			failed++
		}
	}
	fmt.Printf("   Scans: %d  Verified: %d  Unverified: %d  Failed: %d  Skipped: %d\n",
		a.store.Len(), verified, unverified, failed, skipped)
}
