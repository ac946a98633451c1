package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/iamunixtz/jshunter-agent/internal/scanners"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and persist agent settings",
	}
	cmd.AddCommand(newConfigShowCmd())
	cmd.AddCommand(newConfigSetCmd())
	cmd.AddCommand(newConfigTestScannerCmd())
	return cmd
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the current settings",
		Run: func(cmd *cobra.Command, args []string) {
			a := newApp()
			s := a.cfg.Current()
			fmt.Printf("config file:  %s\n", a.cfg.Path())
			fmt.Printf("scanner path: %s\n", s.ScannerPath)
			fmt.Printf("webhook url:  %s\n", maskWebhook(s.WebhookURL))
			fmt.Printf("auto scan:    %t\n", s.AutoScan)
			fmt.Printf("notify:       %t\n", s.Notify)
		},
	}
}

func newConfigSetCmd() *cobra.Command {
	var (
		scanner  string
		webhook  string
		autoScan bool
		notify   bool
	)

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Persist settings to the config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := newApp()
			next := a.cfg.Current()

			changed := false
			if cmd.Flags().Changed("scanner") {
				next.ScannerPath = scanner
				changed = true
			}
			if cmd.Flags().Changed("webhook") {
				next.WebhookURL = webhook
				changed = true
			}
			if cmd.Flags().Changed("auto-scan") {
				next.AutoScan = autoScan
				changed = true
			}
			if cmd.Flags().Changed("notify") {
				next.Notify = notify
				changed = true
			}
			if !changed {
				return errors.New("nothing to set; pass at least one of --scanner, --webhook, --auto-scan, --notify")
			}

			// On failure the previous configuration stays in effect.
			if err := a.cfg.Update(next); err != nil {
				return err
			}
			fmt.Printf("✅ Settings saved to %s\n", a.cfg.Path())
			return nil
		},
	}

	cmd.Flags().StringVar(&scanner, "scanner", "", "TruffleHog binary path")
	cmd.Flags().StringVar(&webhook, "webhook", "", "Discord webhook URL")
	cmd.Flags().BoolVar(&autoScan, "auto-scan", true, "Scan discovered JavaScript automatically in observe mode")
	cmd.Flags().BoolVar(&notify, "notify", true, "Send findings to the webhook")
	return cmd
}

func newConfigTestScannerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "test-scanner",
		Short: "Verify the configured trufflehog binary",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := newApp()
			version, err := scanners.Verify(cmd.Context(), a.cfg.Current().ScannerPath)
			if err != nil {
				return err
			}
			fmt.Printf("✅ TruffleHog OK: %s\n", version)
			return nil
		},
	}
}

// maskWebhook hides the webhook token when printing settings.
func maskWebhook(url string) string {
	if url == "" {
		return "(not set)"
	}
	if len(url) <= 40 {
		return url[:len(url)/2] + "…"
	}
	return url[:40] + "…"
}
