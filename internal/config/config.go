package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/spf13/viper"
)

// DefaultScannerPath mirrors the usual trufflehog install location.
const DefaultScannerPath = "/usr/local/bin/trufflehog"

const (
	keyScannerPath = "scanner_path"
	keyWebhookURL  = "webhook_url"
	keyAutoScan    = "auto_scan"
	keyNotify      = "notify"
)

// Settings is one immutable configuration snapshot. Pipeline runs read a
// snapshot once at the start and never observe a partial update.
type Settings struct {
	ScannerPath string `json:"scanner_path"`
	WebhookURL  string `json:"webhook_url"`
	AutoScan    bool   `json:"auto_scan"`
	Notify      bool   `json:"notify"`
}

// Defaults returns the settings used when no config file exists or a field
// is absent.
func Defaults() Settings {
	return Settings{
		ScannerPath: DefaultScannerPath,
		WebhookURL:  "",
		AutoScan:    true,
		Notify:      true,
	}
}

// DefaultPath is where settings persist between runs.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".jshunter", "config.yaml")
	}
	return filepath.Join(home, ".jshunter", "config.yaml")
}

// Store holds the current settings snapshot plus the file it persists to.
// Reads are lock-free; updates swap the whole snapshot atomically.
type Store struct {
	path string
	cur  atomic.Pointer[Settings]
}

// Load reads settings from path, defaulting every absent field. A missing
// or malformed file is not fatal: the store starts from defaults so the
// agent always comes up.
func Load(path string) (*Store, error) {
	s := &Store{path: path}

	v := newViper(path)
	settings := Defaults()
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			// Malformed file: fall back to defaults, report upward so the
			// caller can warn.
			s.cur.Store(&settings)
			return s, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		settings.ScannerPath = v.GetString(keyScannerPath)
		settings.WebhookURL = v.GetString(keyWebhookURL)
		settings.AutoScan = v.GetBool(keyAutoScan)
		settings.Notify = v.GetBool(keyNotify)
	}

	s.cur.Store(&settings)
	return s, nil
}

// Current returns the live snapshot.
func (s *Store) Current() Settings { return *s.cur.Load() }

// Update persists the new settings and swaps them in. On persistence
// failure the previous snapshot stays in effect.
func (s *Store) Update(next Settings) error {
	if err := s.write(next); err != nil {
		return err
	}
	s.cur.Store(&next)
	return nil
}

func (s *Store) write(settings Settings) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	v := newViper(s.path)
	v.Set(keyScannerPath, settings.ScannerPath)
	v.Set(keyWebhookURL, settings.WebhookURL)
	v.Set(keyAutoScan, settings.AutoScan)
	v.Set(keyNotify, settings.Notify)

	if err := v.WriteConfigAs(s.path); err != nil {
		return fmt.Errorf("write config %s: %w", s.path, err)
	}
	return nil
}

// Apply swaps in new settings without persisting them. Used for
// per-invocation flag and environment overrides.
func (s *Store) Apply(next Settings) {
	s.cur.Store(&next)
}

// Path returns the backing file.
func (s *Store) Path() string { return s.path }

func newViper(path string) *viper.Viper {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	for key, val := range map[string]any{
		keyScannerPath: DefaultScannerPath,
		keyWebhookURL:  "",
		keyAutoScan:    true,
		keyNotify:      true,
	} {
		v.SetDefault(key, val)
	}
	return v
}
