package utils

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iamunixtz/jshunter-agent/internal/schema"
)

func TestSaveSession(t *testing.T) {
	session := schema.Session{
		StartedAt: time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC),
		Results: []schema.ScanResult{
			{Target: schema.ScanTarget{URL: "https://example.com:8443/a.js"}, Status: schema.StatusSuccess},
		},
	}

	file, err := SaveSession(session, t.TempDir())
	require.NoError(t, err)
	assert.FileExists(t, file)
	assert.Equal(t, "results.json", filepath.Base(file))

	// Directory name carries the host with unsafe characters replaced.
	dir := filepath.Base(filepath.Dir(file))
	assert.True(t, strings.HasPrefix(dir, "example.com_8443_"), dir)
}

func TestSaveSession_NoResults(t *testing.T) {
	session := schema.Session{StartedAt: time.Now()}
	file, err := SaveSession(session, t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, filepath.Base(filepath.Dir(file)), "session_")
}

func TestSafeName(t *testing.T) {
	assert.Equal(t, "a_b_c", safeName("a/b:c"))
	assert.Equal(t, "plain", safeName("plain"))
}
