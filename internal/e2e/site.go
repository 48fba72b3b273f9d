// Package e2e serves the documentation fixture site and drives a headless
// browser against it.
package e2e

import (
	"embed"
	"fmt"
	"io/fs"
	"net/http"
	"path"
	"strings"
	"sync"

	"github.com/aymerick/raymond"
)

//go:embed site
var site embed.FS

// DocsPage is one entry of the documentation sidebar.
type DocsPage struct {
	Slug  string
	Label string
}

// DocsPages lists the sidebar entries in order.
var DocsPages = []DocsPage{
	{Slug: "page-1", Label: "Getting Started"},
	{Slug: "page-2", Label: "Installation"},
	{Slug: "page-3", Label: "Configuration"},
	{Slug: "page-4", Label: "Creating Pages"},
	{Slug: "page-5", Label: "Documentation Pages"},
	{Slug: "page-6", Label: "Deployment"},
}

var (
	layoutOnce sync.Once
	layout     *raymond.Template
	layoutErr  error
)

func docsLayout() (*raymond.Template, error) {
	layoutOnce.Do(func() {
		src, err := fs.ReadFile(site, "site/layouts/docs.hbs")
		if err != nil {
			layoutErr = err
			return
		}
		layout, layoutErr = raymond.Parse(string(src))
	})
	return layout, layoutErr
}

// RenderDocsPage renders docs/<slug>.html. The slug "index" renders the
// documentation index, where no sidebar entry is current.
func RenderDocsPage(slug string) (string, error) {
	title := "Documentation"
	found := slug == "index"

	pages := make([]map[string]interface{}, 0, len(DocsPages))
	for _, p := range DocsPages {
		current := p.Slug == slug
		if current {
			title = p.Label
			found = true
		}
		pages = append(pages, map[string]interface{}{
			"href":    p.Slug + ".html",
			"label":   p.Label,
			"current": current,
		})
	}
	if !found {
		return "", fmt.Errorf("unknown docs page %q: %w", slug, fs.ErrNotExist)
	}

	tpl, err := docsLayout()
	if err != nil {
		return "", fmt.Errorf("parse docs layout: %w", err)
	}
	return tpl.Exec(map[string]interface{}{
		"title": title,
		"pages": pages,
	})
}

// Handler serves the fixture site: static files from the embedded tree and
// documentation pages rendered from the docs layout.
func Handler() http.Handler {
	static, err := fs.Sub(site, "site")
	if err != nil {
		panic(err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/docs/", func(w http.ResponseWriter, r *http.Request) {
		name := path.Base(r.URL.Path)
		if name == "docs" || name == "/" || r.URL.Path == "/docs/" {
			name = "index.html"
		}
		if !strings.HasSuffix(name, ".html") {
			http.NotFound(w, r)
			return
		}
		html, err := RenderDocsPage(strings.TrimSuffix(name, ".html"))
		if err != nil {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(html))
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		// Serve index.html in place; http.FileServer would redirect it to "/".
		if r.URL.Path == "/" || r.URL.Path == "/index.html" {
			data, err := fs.ReadFile(static, "index.html")
			if err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			_, _ = w.Write(data)
			return
		}
		if strings.HasPrefix(r.URL.Path, "/layouts/") {
			http.NotFound(w, r)
			return
		}
		http.FileServer(http.FS(static)).ServeHTTP(w, r)
	})
	return mux
}
