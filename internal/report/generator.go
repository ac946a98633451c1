package report

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/iamunixtz/jshunter-agent/internal/schema"
)

//go:embed report.gohtml
var reportHTMLTemplate string

// ---------- Public API ----------

// LoadSession reads a saved results.json back into a session.
func LoadSession(fromDir string) (schema.Session, error) {
	var session schema.Session
	data, err := os.ReadFile(filepath.Join(fromDir, "results.json"))
	if err != nil {
		return session, fmt.Errorf("read results.json: %w", err)
	}
	if err := json.Unmarshal(data, &session); err != nil {
		return session, fmt.Errorf("parse results.json: %w", err)
	}
	return session, nil
}

// GenerateHTML renders the session report. Only redacted secret values
// appear in the output.
func GenerateHTML(session schema.Session, outDir string) (string, error) {
	vm := buildViewModel(session)

	if err := os.MkdirAll(outDir, 0755); err != nil {
		return "", fmt.Errorf("create out dir: %w", err)
	}

	tmpl, err := template.New("report").Parse(reportHTMLTemplate)
	if err != nil {
		return "", fmt.Errorf("parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, vm); err != nil {
		return "", fmt.Errorf("execute template: %w", err)
	}

	htmlPath := filepath.Join(outDir, "report.html")
	if err := os.WriteFile(htmlPath, buf.Bytes(), 0644); err != nil {
		return "", fmt.Errorf("write report.html: %w", err)
	}

	return htmlPath, nil
}

// ---------- View Model & helpers ----------

type viewModel struct {
	StartedAt     string
	TotalScans    int
	StatusCounts  map[string]int
	TotalFindings int
	Verified      int
	Unverified    int
	Findings      []findingRow
	Failures      []failureRow
	Generator     string
	GeneratedAt   string
	Year          int
}

type findingRow struct {
	SecretType string
	Redacted   string
	URL        string
	Line       string
	Verified   string
}

type failureRow struct {
	URL    string
	Status string
	Error  string
}

func buildViewModel(session schema.Session) viewModel {
	now := time.Now().UTC()

	statusCounts := map[string]int{}
	verified, unverified := 0, 0
	var rows []findingRow
	var failures []failureRow

	for _, res := range session.Results {
		statusCounts[strings.ToUpper(string(res.Status))]++

		if res.Status != schema.StatusSuccess {
			failures = append(failures, failureRow{
				URL:    res.Target.URL,
				Status: strings.ToUpper(string(res.Status)),
				Error:  trimTo(res.Error, 300),
			})
			continue
		}

		for _, f := range res.Findings {
			if f.Verified {
				verified++
			} else {
				unverified++
			}
			rows = append(rows, findingRow{
				SecretType: emptyFallback(f.SecretType, "Unknown"),
				Redacted:   f.Redacted,
				URL:        f.URL,
				Line:       lineLabel(f.Line),
				Verified:   yesNo(f.Verified),
			})
		}
	}

	// Sort findings: verified first, then detector name
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Verified != rows[j].Verified {
			return rows[i].Verified == "Yes"
		}
		return rows[i].SecretType < rows[j].SecretType
	})

	return viewModel{
		StartedAt:     session.StartedAt.UTC().Format(time.RFC3339),
		TotalScans:    len(session.Results),
		StatusCounts:  statusCounts,
		TotalFindings: verified + unverified,
		Verified:      verified,
		Unverified:    unverified,
		Findings:      rows,
		Failures:      failures,
		Generator:     "jshunter-agent",
		GeneratedAt:   now.Format(time.RFC3339),
		Year:          now.Year(),
	}
}

func lineLabel(line int) string {
	if line <= 0 {
		return "unknown"
	}
	return fmt.Sprintf("%d", line)
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

func trimTo(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n] + "…"
}

func emptyFallback(s, fb string) string {
	if strings.TrimSpace(s) == "" {
		return fb
	}
	return s
}
