// Package scanners adapts external secret-detection binaries. Detection
// itself is wholly delegated to the subprocess; this package only invokes
// it, parses its structured output, and normalizes the records.
package scanners

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/iamunixtz/jshunter-agent/internal/schema"
)

// Timeout bounds one scanner invocation. On expiry the subprocess is
// force-killed and the run reports a scanner error.
const Timeout = 60 * time.Second

// runTimeout is the live bound; tests shrink it to exercise the kill path.
var runTimeout = Timeout

// ErrScannerNotFound means the configured binary path did not answer to a
// version probe as trufflehog.
var ErrScannerNotFound = errors.New("trufflehog binary not found")

// RunStats carries per-invocation bookkeeping that is not part of the
// findings themselves.
type RunStats struct {
	// Malformed counts output lines that were not parsable JSON records.
	// They are skipped, never fatal.
	Malformed int
}

// rawRecord is the slice of trufflehog's NDJSON output we consume.
// Verified and line are pointers so an absent field is distinguishable
// from a false/zero one.
type rawRecord struct {
	DetectorName   string `json:"DetectorName"`
	Raw            string `json:"Raw"`
	Verified       *bool  `json:"Verified"`
	SourceMetadata struct {
		Data struct {
			Filesystem struct {
				File string `json:"file"`
				Line *int   `json:"line"`
			} `json:"Filesystem"`
		} `json:"Data"`
	} `json:"SourceMetadata"`
}

// Run executes trufflehog in filesystem mode against filePath and returns
// the normalized findings. sourceURL is denormalized onto every finding
// for display and notification.
//
// Non-zero exit alone is not an error when valid records were parsed;
// no parsable output combined with a failed or timed-out process is.
func Run(ctx context.Context, binPath, filePath, sourceURL string) ([]schema.Finding, RunStats, error) {
	ctx, cancel := context.WithTimeout(ctx, runTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, binPath, "filesystem", filePath, "--json")
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	// Don't wait on lingering pipe readers once the context kills the
	// process.
	cmd.WaitDelay = 5 * time.Second

	runErr := cmd.Run()

	var stats RunStats
	var findings []schema.Finding

	scanner := bufio.NewScanner(&stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var rec rawRecord
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			stats.Malformed++
			continue
		}
		findings = append(findings, normalize(rec, sourceURL))
	}

	if runErr != nil && len(findings) == 0 {
		diag := strings.TrimSpace(stderr.String())
		if ctx.Err() == context.DeadlineExceeded {
			return nil, stats, fmt.Errorf("trufflehog timed out after %s", runTimeout)
		}
		if diag != "" {
			return nil, stats, fmt.Errorf("trufflehog failed: %s", diag)
		}
		return nil, stats, fmt.Errorf("trufflehog failed: %w", runErr)
	}

	return findings, stats, nil
}

// normalize maps one raw trufflehog record to a Finding. A record without
// a verification flag is unverified; a missing line number is 0 and shown
// as unknown at display time.
func normalize(rec rawRecord, sourceURL string) schema.Finding {
	detector := rec.DetectorName
	if detector == "" {
		detector = "Unknown"
	}

	line := 0
	if rec.SourceMetadata.Data.Filesystem.Line != nil {
		line = *rec.SourceMetadata.Data.Filesystem.Line
	}

	verified := false
	if rec.Verified != nil {
		verified = *rec.Verified
	}

	return schema.Finding{
		SecretType: detector,
		Redacted:   Redact(rec.Raw),
		Raw:        rec.Raw,
		URL:        sourceURL,
		Line:       line,
		Verified:   verified,
	}
}

// Redact masks a secret for display and transmission. Long values keep
// four characters on each end so an analyst can correlate them against
// the source; short values are masked entirely.
func Redact(raw string) string {
	const marker = "[REDACTED]"
	if len(raw) <= 12 {
		return marker
	}
	return raw[:4] + marker + raw[len(raw)-4:]
}

// Verify probes binPath with --version and returns the version text. Bare
// names are resolved through PATH; the binary must exist and identify
// itself as trufflehog in its combined output.
func Verify(ctx context.Context, binPath string) (string, error) {
	resolved := binPath
	if !filepath.IsAbs(binPath) {
		p, err := exec.LookPath(binPath)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrScannerNotFound, err)
		}
		resolved = p
	}
	if info, err := os.Stat(resolved); err != nil || info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrScannerNotFound, resolved)
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	out, err := exec.CommandContext(ctx, resolved, "--version").CombinedOutput()
	version := strings.TrimSpace(string(out))
	if err != nil && version == "" {
		return "", fmt.Errorf("%w: %v", ErrScannerNotFound, err)
	}
	if !strings.Contains(strings.ToLower(version), "trufflehog") {
		return "", fmt.Errorf("%w: %q does not identify as trufflehog", ErrScannerNotFound, binPath)
	}
	return version, nil
}
