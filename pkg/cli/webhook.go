package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/iamunixtz/jshunter-agent/internal/notify"
)

func newWebhookCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "webhook",
		Short: "Webhook utilities",
	}
	cmd.AddCommand(newWebhookTestCmd())
	return cmd
}

func newWebhookTestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "test",
		Short: "Send a test message to the configured Discord webhook",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := newApp()
			url := a.cfg.Current().WebhookURL
			if url == "" {
				return errors.New("no webhook URL configured (set one with --webhook or 'jshunter config set --webhook ...')")
			}

			notifier := notify.NewNotifier(a.logger)
			if err := notifier.Test(cmd.Context(), url); err != nil {
				return fmt.Errorf("webhook test failed: %w", err)
			}
			fmt.Println("✅ Test message sent successfully!")
			return nil
		},
	}
}
