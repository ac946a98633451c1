// Package extractor classifies observed HTTP exchanges as JavaScript
// resources and harvests script URLs out of response bodies. Everything
// here is pure metadata work: it runs on the traffic-observation path and
// must never touch the network.
package extractor

import (
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/iamunixtz/jshunter-agent/internal/schema"
)

// Exchange is the slice of one observed HTTP exchange the extractor needs.
type Exchange struct {
	URL          string
	StatusCode   int
	ContentType  string
	ResponseBody string
}

var jsMIMEs = []string{
	"application/javascript",
	"application/x-javascript",
	"text/javascript",
}

var (
	scriptSrcRe = regexp.MustCompile(`(?i)<script[^>]+src\s*=\s*["']([^"']+\.js(?:\?[^"']*)?(?:#[^"']*)?)["']`)
	absoluteRe  = regexp.MustCompile(`(?i)https?://[^\s"'<>]+\.js(?:\?[^\s"'<>]*)?(?:#[^\s"'<>]*)?`)
)

// FromExchange classifies the exchange's own URL. A script extension on
// the path wins regardless of Content-Type; otherwise a JavaScript MIME
// pattern in the Content-Type decides.
func FromExchange(ex Exchange) (schema.ScanTarget, bool) {
	abs, ok := normalize(ex.URL, ex.URL)
	if !ok {
		return schema.ScanTarget{}, false
	}
	if !hasScriptExtension(abs) && !isJavaScriptMIME(ex.ContentType) {
		return schema.ScanTarget{}, false
	}
	return schema.ScanTarget{URL: abs, DiscoveredAt: time.Now()}, true
}

// FromBody harvests script-src attributes and absolute JavaScript URLs out
// of a request or response body, normalized against baseURL and
// deduplicated. Relative paths are resolved; unparsable candidates are
// dropped.
func FromBody(baseURL, body string) []string {
	seen := make(map[string]struct{})
	var out []string

	add := func(raw string) {
		abs, ok := normalize(baseURL, raw)
		if !ok || !hasScriptExtension(abs) {
			return
		}
		if _, dup := seen[abs]; dup {
			return
		}
		seen[abs] = struct{}{}
		out = append(out, abs)
	}

	for _, m := range scriptSrcRe.FindAllStringSubmatch(body, -1) {
		add(m[1])
	}
	for _, m := range absoluteRe.FindAllString(body, -1) {
		add(m)
	}
	return out
}

// hasScriptExtension reports whether the URL path (query/fragment aside)
// ends in .js.
func hasScriptExtension(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return strings.HasSuffix(strings.ToLower(u.Path), ".js")
}

func isJavaScriptMIME(contentType string) bool {
	ct := strings.ToLower(contentType)
	for _, m := range jsMIMEs {
		if strings.Contains(ct, m) {
			return true
		}
	}
	return false
}

// normalize resolves raw against base and returns an absolute http(s) URL.
// Protocol-relative references default to https, matching how browsers
// resolve them off secure pages.
func normalize(base, raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	if strings.HasPrefix(raw, "//") {
		raw = "https:" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", false
	}

	if !u.IsAbs() {
		b, err := url.Parse(base)
		if err != nil || !b.IsAbs() {
			return "", false
		}
		u = b.ResolveReference(u)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return "", false
	}
	if u.Host == "" {
		return "", false
	}
	return u.String(), true
}
