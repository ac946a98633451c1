// Package observer surfaces HTTP exchanges to the extraction pipeline.
// The browser observer drives a headless Chrome session and streams every
// network response it sees, standing in for the proxy listener the agent
// would otherwise need.
package observer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"github.com/iamunixtz/jshunter-agent/internal/extractor"
)

// Handler receives one observed exchange. It runs on the event path and
// must stay cheap: classify, claim, and hand off — no network I/O.
type Handler func(ex extractor.Exchange)

// Browser observes traffic by navigating pages in headless Chrome and
// listening to CDP network events.
type Browser struct {
	handler Handler
	logger  *slog.Logger

	// settle is how long to keep a page open after navigation so
	// late-loading scripts still fire network events.
	settle time.Duration
}

func NewBrowser(handler Handler, settle time.Duration, logger *slog.Logger) *Browser {
	if settle <= 0 {
		settle = 5 * time.Second
	}
	return &Browser{handler: handler, settle: settle, logger: logger}
}

// Observe navigates each page in turn, emitting an Exchange per network
// response. HTML document bodies are pulled back asynchronously so script
// references inside them can be harvested too. Returns once every page
// has settled or the context is cancelled.
func (b *Browser) Observe(ctx context.Context, pages []string) error {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("ignore-certificate-errors", true),
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	chromedp.ListenTarget(browserCtx, func(ev any) {
		e, ok := ev.(*network.EventResponseReceived)
		if !ok {
			return
		}

		ex := extractor.Exchange{
			URL:         e.Response.URL,
			StatusCode:  int(e.Response.Status),
			ContentType: e.Response.MimeType,
		}

		if e.Type == network.ResourceTypeDocument && isHTML(e.Response.MimeType) {
			// Body retrieval needs the CDP executor and must not block the
			// event dispatcher.
			go b.emitWithBody(browserCtx, e.RequestID, ex)
			return
		}

		b.handler(ex)
	})

	if err := chromedp.Run(browserCtx, network.Enable()); err != nil {
		return fmt.Errorf("enable network events: %w", err)
	}

	for _, page := range pages {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		b.logger.Info("navigating", "page", page)
		err := chromedp.Run(browserCtx,
			chromedp.Navigate(page),
			chromedp.Sleep(b.settle),
		)
		if err != nil {
			b.logger.Warn("navigation failed", "page", page, "error", err)
		}
	}

	return nil
}

// emitWithBody fetches the document body and emits the exchange with it
// attached; on failure the exchange is emitted body-less so the URL
// itself is still classified.
func (b *Browser) emitWithBody(browserCtx context.Context, id network.RequestID, ex extractor.Exchange) {
	c := chromedp.FromContext(browserCtx)
	if c == nil || c.Target == nil {
		b.handler(ex)
		return
	}

	execCtx := cdp.WithExecutor(browserCtx, c.Target)
	body, err := network.GetResponseBody(id).Do(execCtx)
	if err != nil {
		b.logger.Debug("response body unavailable", "url", ex.URL, "error", err)
		b.handler(ex)
		return
	}

	ex.ResponseBody = string(body)
	b.handler(ex)
}

func isHTML(mimeType string) bool {
	return mimeType == "text/html" || mimeType == "application/xhtml+xml"
}
