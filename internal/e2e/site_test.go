package e2e

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func get(t *testing.T, ts *httptest.Server, path string) (int, string) {
	t.Helper()
	resp, err := http.Get(ts.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func sidebar(t *testing.T, html string) string {
	t.Helper()
	start := strings.Index(html, `id="sidebar-navigation"`)
	require.GreaterOrEqual(t, start, 0, "sidebar missing")
	end := strings.Index(html[start:], "</nav>")
	require.Greater(t, end, 0)
	return html[start : start+end]
}

func TestRenderDocsPage_Index(t *testing.T) {
	html, err := RenderDocsPage("index")
	require.NoError(t, err)

	nav := sidebar(t, html)
	assert.Equal(t, 6, strings.Count(nav, "<a "))
	assert.NotContains(t, nav, "aria-current")
	assert.Contains(t, nav, `<a href="page-1.html">Getting Started</a>`)
	assert.Contains(t, html, `id="sidebar-toggle-button"`)
	assert.Contains(t, html, `<a href="index.html">HydePHP Docs</a>`)
}

func TestRenderDocsPage_Current(t *testing.T) {
	html, err := RenderDocsPage("page-1")
	require.NoError(t, err)

	nav := sidebar(t, html)
	assert.Contains(t, nav, `<a href="page-1.html" aria-current="page">Getting Started</a>`)
	assert.Equal(t, 1, strings.Count(nav, "aria-current"))
	assert.Contains(t, html, "<title>Getting Started | HydePHP Docs</title>")
}

func TestRenderDocsPage_Unknown(t *testing.T) {
	_, err := RenderDocsPage("page-99")
	assert.Error(t, err)
}

func TestHandler(t *testing.T) {
	ts := httptest.NewServer(Handler())
	defer ts.Close()

	tests := []struct {
		path   string
		status int
		want   string
	}{
		{"/index.html", http.StatusOK, `id="main-navigation-links"`},
		{"/", http.StatusOK, `href="docs/index.html"`},
		{"/docs/index.html", http.StatusOK, `id="documentation-sidebar"`},
		{"/docs/", http.StatusOK, `id="documentation-sidebar"`},
		{"/docs/page-6.html", http.StatusOK, "Deployment"},
		{"/media/app.css", http.StatusOK, "@media (max-width: 767px)"},
		{"/docs/page-7.html", http.StatusNotFound, ""},
		{"/docs/page-1.txt", http.StatusNotFound, ""},
		{"/layouts/docs.hbs", http.StatusNotFound, ""},
	}
	for _, tc := range tests {
		t.Run(tc.path, func(t *testing.T) {
			status, body := get(t, ts, tc.path)
			assert.Equal(t, tc.status, status)
			if tc.want != "" {
				assert.Contains(t, body, tc.want)
			}
		})
	}
}
