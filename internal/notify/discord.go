// Package notify delivers finding notifications to a Discord webhook.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/iamunixtz/jshunter-agent/internal/config"
	"github.com/iamunixtz/jshunter-agent/internal/schema"
)

const (
	botUsername  = "JSHunter Bot"
	botAvatarURL = "https://i.imgur.com/4M34hi2.png"

	// Webhook delivery is bounded so a slow Discord endpoint never stalls
	// a pipeline run for long.
	deliveryTimeout = 10 * time.Second
)

type payload struct {
	Content   string `json:"content"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatar_url"`
}

// Notifier posts formatted finding messages to a configured webhook.
// Delivery failures are reported to the caller but never retried; a
// failed notification never invalidates the scan result it describes.
type Notifier struct {
	client *http.Client
	logger *slog.Logger
}

func NewNotifier(logger *slog.Logger) *Notifier {
	return &Notifier{
		client: &http.Client{Timeout: deliveryTimeout},
		logger: logger,
	}
}

// Notify sends the result's findings to the webhook, verified and
// unverified findings as separate messages (one per group, not per
// finding). No-op when notifications are disabled, no webhook is
// configured, or the result has no findings.
func (n *Notifier) Notify(ctx context.Context, res schema.ScanResult, settings config.Settings) error {
	if !settings.Notify || settings.WebhookURL == "" || len(res.Findings) == 0 {
		return nil
	}

	// Each group is delivered independently: a failed verified send must
	// not suppress the unverified message.
	var errs []error
	if verified := res.Verified(); len(verified) > 0 {
		if err := n.post(ctx, settings.WebhookURL, formatGroup(verified, res.Target.URL, true)); err != nil {
			errs = append(errs, fmt.Errorf("deliver verified findings: %w", err))
		} else {
			n.logger.Info("sent verified findings to webhook", "count", len(verified), "url", res.Target.URL)
		}
	}

	if unverified := res.Unverified(); len(unverified) > 0 {
		if err := n.post(ctx, settings.WebhookURL, formatGroup(unverified, res.Target.URL, false)); err != nil {
			errs = append(errs, fmt.Errorf("deliver unverified findings: %w", err))
		} else {
			n.logger.Info("sent unverified findings to webhook", "count", len(unverified), "url", res.Target.URL)
		}
	}

	return errors.Join(errs...)
}

// Test sends the webhook self-test message so a user can confirm their
// configuration end to end.
func (n *Notifier) Test(ctx context.Context, webhookURL string) error {
	msg := "[TEST] **JSHunter Test Message**\n\n" +
		"This is a test message from the JSHunter agent. " +
		"If you receive this, your webhook is configured correctly!"
	return n.post(ctx, webhookURL, msg)
}

// formatGroup renders one notification message for a verified or
// unverified finding group. Only redacted secret values appear here.
func formatGroup(findings []schema.Finding, sourceURL string, verified bool) string {
	var buf bytes.Buffer
	if verified {
		buf.WriteString("[VERIFIED] **Verified Secrets**")
	} else {
		buf.WriteString("[UNVERIFIED] **Unverified Secrets**")
	}
	fmt.Fprintf(&buf, " found in %s (%d)\n\n", sourceURL, len(findings))

	for _, f := range findings {
		fmt.Fprintf(&buf, "**%s**\n```\n%s\n```\n", f.SecretType, f.Redacted)
		if f.Line > 0 {
			fmt.Fprintf(&buf, "Line: %d\n", f.Line)
		} else {
			buf.WriteString("Line: unknown\n")
		}
		buf.WriteString("\n")
	}
	return buf.String()
}

func (n *Notifier) post(ctx context.Context, webhookURL, content string) error {
	body, err := json.Marshal(payload{
		Content:   content,
		Username:  botUsername,
		AvatarURL: botAvatarURL,
	})
	if err != nil {
		return fmt.Errorf("encode webhook payload: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, deliveryTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}
