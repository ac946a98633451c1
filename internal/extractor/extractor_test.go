package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromExchange_Classification(t *testing.T) {
	tests := []struct {
		name        string
		url         string
		contentType string
		want        bool
	}{
		{"js extension plain", "https://example.com/app.js", "", true},
		{"js extension wins over html content type", "https://example.com/app.js", "text/html", true},
		{"js extension with query", "https://example.com/app.js?v=12", "", true},
		{"js extension with fragment", "https://example.com/app.js#main", "", true},
		{"mime wins without extension", "https://example.com/data", "application/javascript", true},
		{"mime with charset", "https://example.com/data", "text/javascript; charset=utf-8", true},
		{"x-javascript mime", "https://example.com/bundle", "application/x-javascript", true},
		{"html page", "https://example.com/index.html", "text/html", false},
		{"plain path no mime", "https://example.com/data", "", false},
		{"json api", "https://example.com/api", "application/json", false},
		{"jsx is not js", "https://example.com/app.jsx", "", false},
		{"non-http scheme", "ftp://example.com/app.js", "", false},
		{"empty url", "", "application/javascript", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target, ok := FromExchange(Exchange{URL: tt.url, ContentType: tt.contentType})
			assert.Equal(t, tt.want, ok)
			if ok {
				assert.NotEmpty(t, target.URL)
				assert.False(t, target.DiscoveredAt.IsZero())
			}
		})
	}
}

func TestFromExchange_QueryDoesNotFakeExtension(t *testing.T) {
	// ".js" inside the query string is not a script extension.
	_, ok := FromExchange(Exchange{URL: "https://example.com/download?file=app.js&x=1", ContentType: "text/html"})
	assert.False(t, ok)
}

func TestFromBody_ScriptTags(t *testing.T) {
	body := `<html><head>
		<script src="/static/main.js?v=3"></script>
		<script type="module" src="https://cdn.example.org/lib.js"></script>
		<script src="//cdn.example.org/proto.js"></script>
		</head><body>var u = "https://other.example.net/inline.js";</body></html>`

	urls := FromBody("https://example.com/index.html", body)
	require.Len(t, urls, 4)
	assert.Contains(t, urls, "https://example.com/static/main.js?v=3")
	assert.Contains(t, urls, "https://cdn.example.org/lib.js")
	assert.Contains(t, urls, "https://cdn.example.org/proto.js")
	assert.Contains(t, urls, "https://other.example.net/inline.js")
}

func TestFromBody_Deduplicates(t *testing.T) {
	body := `<script src="https://example.com/a.js"></script>
		<script src="https://example.com/a.js"></script>
		https://example.com/a.js`
	urls := FromBody("https://example.com/", body)
	assert.Equal(t, []string{"https://example.com/a.js"}, urls)
}

func TestFromBody_EmptyBody(t *testing.T) {
	assert.Empty(t, FromBody("https://example.com/", ""))
}

func TestNormalize_ProtocolRelative(t *testing.T) {
	target, ok := FromExchange(Exchange{URL: "//example.com/app.js"})
	require.True(t, ok)
	assert.Equal(t, "https://example.com/app.js", target.URL)
}
