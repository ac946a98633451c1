package config

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	store, err := Load(filepath.Join(t.TempDir(), "config.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Defaults(), store.Current())
}

func TestLoad_MalformedFileFallsBackToDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("{{{not yaml"), 0o644))

	store, err := Load(path)
	require.Error(t, err)
	// The store still comes up usable.
	assert.Equal(t, Defaults(), store.Current())
}

func TestUpdate_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	store, err := Load(path)
	require.NoError(t, err)

	want := Settings{
		ScannerPath: "/opt/bin/trufflehog",
		WebhookURL:  "https://discord.com/api/webhooks/123/abc",
		AutoScan:    false,
		Notify:      true,
	}
	require.NoError(t, store.Update(want))
	assert.Equal(t, want, store.Current())

	// Field-for-field equality after a fresh load.
	reloaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, want, reloaded.Current())
}

func TestLoad_PartialFileDefaultsAbsentKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("webhook_url: https://hooks.example/x\n"), 0o644))

	store, err := Load(path)
	require.NoError(t, err)

	got := store.Current()
	assert.Equal(t, "https://hooks.example/x", got.WebhookURL)
	assert.Equal(t, DefaultScannerPath, got.ScannerPath)
	assert.True(t, got.AutoScan)
	assert.True(t, got.Notify)
}

func TestUpdate_FailureKeepsPreviousSnapshot(t *testing.T) {
	// Point the store at a path whose parent cannot be created.
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	store := &Store{path: filepath.Join(blocker, "dir", "config.yaml")}
	initial := Defaults()
	store.cur.Store(&initial)

	next := initial
	next.WebhookURL = "https://hooks.example/y"
	require.Error(t, store.Update(next))
	assert.Equal(t, initial, store.Current())
}

func TestStore_ConcurrentReadersNeverSeeTornUpdate(t *testing.T) {
	store, err := Load(filepath.Join(t.TempDir(), "config.yaml"))
	require.NoError(t, err)

	a := Settings{ScannerPath: "/a", WebhookURL: "https://a", AutoScan: true, Notify: true}
	b := Settings{ScannerPath: "/b", WebhookURL: "https://b", AutoScan: false, Notify: false}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			if i%2 == 0 {
				store.Apply(a)
			} else {
				store.Apply(b)
			}
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			got := store.Current()
			// Each snapshot is entirely a or entirely b (or the initial
			// defaults), never a mix.
			if got.ScannerPath == "/a" {
				assert.Equal(t, a, got)
			} else if got.ScannerPath == "/b" {
				assert.Equal(t, b, got)
			}
		}
	}()
	wg.Wait()
}
