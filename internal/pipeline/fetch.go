package pipeline

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	userAgent    = "JSHunter-Agent/1.0"
	dialTimeout  = 10 * time.Second
	fetchTimeout = 30 * time.Second
	maxBodyBytes = 10 * 1024 * 1024
)

// Fetcher downloads JavaScript bodies with bounded timeouts, a body size
// cap, and per-host rate limiting so bursts of discovered URLs stay
// polite.
type Fetcher struct {
	client   *http.Client
	perHost  rate.Limit
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewFetcher builds a fetcher limited to reqPerSecond per host
// (0 disables limiting).
func NewFetcher(reqPerSecond int) *Fetcher {
	return &Fetcher{
		client: &http.Client{
			Timeout: fetchTimeout,
			Transport: &http.Transport{
				MaxIdleConns:        50,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     30 * time.Second,
				TLSHandshakeTimeout: 5 * time.Second,
				DialContext: (&net.Dialer{
					Timeout:   dialTimeout,
					KeepAlive: 30 * time.Second,
				}).DialContext,
			},
		},
		perHost:  rate.Limit(reqPerSecond),
		limiters: make(map[string]*rate.Limiter),
	}
}

// Fetch downloads rawURL and returns the body, capped at maxBodyBytes.
// Any network error, timeout, or non-2xx status is a fetch failure.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse url: %w", err)
	}

	if lim := f.limiter(u.Host); lim != nil {
		if err := lim.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter cancelled: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("get %s: status %d", rawURL, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read body of %s: %w", rawURL, err)
	}
	return body, nil
}

func (f *Fetcher) limiter(host string) *rate.Limiter {
	if f.perHost <= 0 {
		return nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	lim, ok := f.limiters[host]
	if !ok {
		lim = rate.NewLimiter(f.perHost, 1)
		f.limiters[host] = lim
	}
	return lim
}
