package utils

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/iamunixtz/jshunter-agent/internal/schema"
)

// SaveSession writes the session into a JSON file inside
// ./reports/<label_timestamp>/ and returns the file path.
func SaveSession(session schema.Session, outputDir string) (string, error) {
	dir := filepath.Join(outputDir, safeName(sessionLabel(session))+"_"+session.StartedAt.Format("20060102_150405"))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output dir: %w", err)
	}

	file := filepath.Join(dir, "results.json")
	fh, err := os.Create(file)
	if err != nil {
		return "", fmt.Errorf("failed to create results.json: %w", err)
	}
	defer fh.Close()

	enc := json.NewEncoder(fh)
	enc.SetIndent("", "  ")
	if err := enc.Encode(session); err != nil {
		return "", fmt.Errorf("failed to encode results: %w", err)
	}

	return file, nil
}

// sessionLabel names the session directory after the first scanned host.
func sessionLabel(session schema.Session) string {
	for _, res := range session.Results {
		if u, err := url.Parse(res.Target.URL); err == nil && u.Host != "" {
			return u.Host
		}
	}
	return "session"
}

// safeName replaces characters not safe for file paths
func safeName(s string) string {
	invalid := []rune{'/', '\\', ':', '*', '?', '"', '<', '>', '|'}
	rs := []rune(s)
	for i, r := range rs {
		for _, bad := range invalid {
			if r == bad {
				rs[i] = '_'
			}
		}
	}
	return string(rs)
}
