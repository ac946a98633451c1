package schema

import "time"

// ScanStatus is the terminal state of one pipeline run.
type ScanStatus string

const (
	StatusSuccess      ScanStatus = "success"
	StatusFetchError   ScanStatus = "fetch_error"
	StatusScannerError ScanStatus = "scanner_error"
	StatusSkipped      ScanStatus = "skipped"
)

// ScanTarget is one candidate JavaScript URL accepted for scanning
type ScanTarget struct {
	URL          string    `json:"url"`
	DiscoveredAt time.Time `json:"discovered_at"`
}

// Finding is a normalized secret detected by the external scanner.
// Raw holds the actual secret for the local reveal/copy affordance and
// never leaves the process; Redacted is what gets displayed, exported,
// and notified.
type Finding struct {
	SecretType string `json:"secret_type"`
	Redacted   string `json:"redacted"`
	Raw        string `json:"-"`
	URL        string `json:"url"`
	Line       int    `json:"line"`
	Verified   bool   `json:"verified"`
}

// ScanResult is the outcome record of one full pipeline run
type ScanResult struct {
	ID        string     `json:"id"`
	Target    ScanTarget `json:"target"`
	Status    ScanStatus `json:"status"`
	Findings  []Finding  `json:"findings"`
	Error     string     `json:"error,omitempty"`
	Malformed int        `json:"malformed,omitempty"`
	ScannedAt time.Time  `json:"scanned_at"`
}

// Session groups all results for one run of the agent
type Session struct {
	StartedAt time.Time    `json:"started_at"`
	Results   []ScanResult `json:"results"`
}

// Verified returns the findings confirmed against a live credential check.
func (r ScanResult) Verified() []Finding {
	var out []Finding
	for _, f := range r.Findings {
		if f.Verified {
			out = append(out, f)
		}
	}
	return out
}

// Unverified returns the findings that were not (or could not be) verified.
func (r ScanResult) Unverified() []Finding {
	var out []Finding
	for _, f := range r.Findings {
		if !f.Verified {
			out = append(out, f)
		}
	}
	return out
}
