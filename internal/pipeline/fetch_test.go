package pipeline

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetch_ReturnsBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, userAgent, r.Header.Get("User-Agent"))
		io.WriteString(w, "var x = 1;")
	}))
	defer srv.Close()

	body, err := NewFetcher(0).Fetch(context.Background(), srv.URL+"/a.js")
	require.NoError(t, err)
	assert.Equal(t, "var x = 1;", string(body))
}

func TestFetch_Non2xxIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := NewFetcher(0).Fetch(context.Background(), srv.URL+"/a.js")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}

func TestFetch_BodyCapped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, strings.Repeat("a", maxBodyBytes+4096))
	}))
	defer srv.Close()

	body, err := NewFetcher(0).Fetch(context.Background(), srv.URL+"/big.js")
	require.NoError(t, err)
	assert.Len(t, body, maxBodyBytes)
}

func TestFetch_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewFetcher(0).Fetch(ctx, "http://127.0.0.1:1/a.js")
	assert.Error(t, err)
}

func TestFetch_BadURL(t *testing.T) {
	_, err := NewFetcher(0).Fetch(context.Background(), "http://[::1]:namedport/a.js")
	assert.Error(t, err)
}
