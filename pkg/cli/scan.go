package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/iamunixtz/jshunter-agent/internal/extractor"
	"github.com/iamunixtz/jshunter-agent/internal/schema"
	"github.com/iamunixtz/jshunter-agent/pkg/utils"
)

func newScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan [urls...]",
		Short: "Scan JavaScript URLs for secrets",
		Long:  "Download each JavaScript URL, run trufflehog against it, and report findings. URLs come from arguments or STDIN (one per line).",
		RunE: func(cmd *cobra.Command, args []string) error {
			urls := args
			if len(urls) == 0 {
				urls = readStdinURLs()
			}
			if len(urls) == 0 {
				return errors.New("please provide JavaScript URLs as arguments or via STDIN")
			}

			a := newApp()
			ctx := cmd.Context()

			fmt.Printf("🚀 Scanning %d JavaScript URL(s)\n", len(urls))

			var wg sync.WaitGroup
			startedAt := time.Now()
			for _, raw := range urls {
				target, ok := extractor.FromExchange(extractor.Exchange{URL: raw})
				if !ok {
					fmt.Printf("⏭️  Skipping %s (not a JavaScript URL)\n", raw)
					a.store.Record(schema.ScanResult{
						ID:        uuid.NewString(),
						Target:    schema.ScanTarget{URL: raw, DiscoveredAt: time.Now()},
						Status:    schema.StatusSkipped,
						Error:     "not a JavaScript URL",
						ScannedAt: time.Now(),
					})
					continue
				}
				if !a.guard.ShouldScan(target.URL) {
					continue
				}

				wg.Add(1)
				go func(t schema.ScanTarget) {
					defer wg.Done()
					a.runner.Scan(ctx, t)
				}(target)
			}
			wg.Wait()

			session := schema.Session{StartedAt: startedAt, Results: a.store.List()}
			file, err := utils.SaveSession(session, viper.GetString("output"))
			if err != nil {
				return err
			}

			fmt.Printf("✅ Scan complete. Results saved to %s\n", file)
			a.summary()
			return nil
		},
	}

	return cmd
}

// readStdinURLs collects URLs piped in, one per line, when stdin is not
// a terminal.
func readStdinURLs() []string {
	info, err := os.Stdin.Stat()
	if err != nil || info.Mode()&os.ModeCharDevice != 0 {
		return nil
	}

	var urls []string
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			urls = append(urls, line)
		}
	}
	return urls
}
