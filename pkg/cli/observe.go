package cli

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/iamunixtz/jshunter-agent/internal/extractor"
	"github.com/iamunixtz/jshunter-agent/internal/observer"
	"github.com/iamunixtz/jshunter-agent/internal/pipeline"
	"github.com/iamunixtz/jshunter-agent/internal/schema"
	"github.com/iamunixtz/jshunter-agent/pkg/utils"
)

func newObserveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "observe",
		Short: "Observe pages in a headless browser and scan discovered JavaScript",
		Long:  "Navigate target pages in headless Chrome, watch every network response, and scan each JavaScript resource exactly once. Interrupt (Ctrl-C) to stop; in-flight scans are drained and temp files swept.",
		RunE: func(cmd *cobra.Command, args []string) error {
			pages := viper.GetStringSlice("observe.target")
			pages = append(pages, args...)
			if len(pages) == 0 {
				return errors.New("please provide --target pages to observe")
			}

			a := newApp()
			ctx := cmd.Context()
			settle := viper.GetDuration("observe.settle")

			var wg sync.WaitGroup
			startedAt := time.Now()

			schedule := func(target schema.ScanTarget) {
				if !a.guard.ShouldScan(target.URL) {
					return
				}
				a.logger.Info("found JavaScript URL", "url", target.URL)
				wg.Add(1)
				go func() {
					defer wg.Done()
					a.runner.Scan(ctx, target)
				}()
			}

			// The handler runs on the browser event path: classify, claim,
			// hand off to a background run. No network I/O here.
			handler := func(ex extractor.Exchange) {
				if !a.cfg.Current().AutoScan {
					return
				}
				if target, ok := extractor.FromExchange(ex); ok {
					schedule(target)
				}
				for _, u := range extractor.FromBody(ex.URL, ex.ResponseBody) {
					schedule(schema.ScanTarget{URL: u, DiscoveredAt: time.Now()})
				}
			}

			browser := observer.NewBrowser(handler, settle, a.logger)
			fmt.Printf("👀 Observing %d page(s)\n", len(pages))
			if err := browser.Observe(ctx, pages); err != nil && !errors.Is(err, context.Canceled) {
				a.logger.Warn("observer stopped", "error", err)
			}

			// Drain in-flight pipeline runs, then reclaim scratch files.
			wg.Wait()
			pipeline.SweepTemp(a.logger)

			if a.store.Len() == 0 {
				fmt.Println("✅ Observation complete. No JavaScript URLs discovered.")
				return nil
			}

			session := schema.Session{StartedAt: startedAt, Results: a.store.List()}
			file, err := utils.SaveSession(session, viper.GetString("output"))
			if err != nil {
				return err
			}
			fmt.Printf("✅ Observation complete. Results saved to %s\n", file)
			a.summary()
			return nil
		},
	}

	cmd.Flags().StringSliceP("target", "t", nil, "Page URL to observe (repeatable)")
	cmd.Flags().Duration("settle", 5*time.Second, "How long to keep each page open after navigation")
	_ = viper.BindPFlag("observe.target", cmd.Flags().Lookup("target"))
	_ = viper.BindPFlag("observe.settle", cmd.Flags().Lookup("settle"))

	return cmd
}
