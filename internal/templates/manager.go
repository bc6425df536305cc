// Package templates renders the embedded HTML pages, the ad snippet and the
// embed script.
package templates

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path"
	"strings"
	texttemplate "text/template"
)

//go:embed files
var files embed.FS

const layoutPath = "files/layouts/base.html"

// Manager holds one parsed template set per page, each combined with the layout.
type Manager struct {
	pages   map[string]*template.Template
	snippet *template.Template
	embedJS *texttemplate.Template
}

func FuncMap() template.FuncMap {
	return template.FuncMap{
		"pct":      pct,
		"truncate": truncate,
		"safeHTML": safeHTML,
	}
}

func NewManager() (*Manager, error) {
	m := &Manager{pages: make(map[string]*template.Template)}

	layout, err := files.ReadFile(layoutPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read layout: %w", err)
	}

	err = fs.WalkDir(files, "files/pages", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || path.Ext(p) != ".html" {
			return nil
		}
		page, err := files.ReadFile(p)
		if err != nil {
			return fmt.Errorf("failed to read template %s: %w", p, err)
		}

		name := strings.TrimPrefix(p, "files/pages/")
		tmpl := template.New("base").Funcs(FuncMap())
		if _, err := tmpl.Parse(string(layout)); err != nil {
			return fmt.Errorf("failed to parse layout for %s: %w", name, err)
		}
		if _, err := tmpl.Parse(string(page)); err != nil {
			return fmt.Errorf("failed to parse template %s: %w", name, err)
		}
		m.pages[name] = tmpl
		return nil
	})
	if err != nil {
		return nil, err
	}

	m.snippet, err = template.New("snippet.html").Funcs(FuncMap()).ParseFS(files, "files/partials/snippet.html")
	if err != nil {
		return nil, err
	}
	m.embedJS, err = texttemplate.New("embed.js").ParseFS(files, "files/partials/embed.js")
	if err != nil {
		return nil, err
	}
	return m, nil
}

// Render executes page name (relative to pages/, e.g. "admin/zones.html").
func (m *Manager) Render(w io.Writer, name string, data any) error {
	tmpl, ok := m.pages[name]
	if !ok {
		return fmt.Errorf("template not found: %s", name)
	}
	return tmpl.ExecuteTemplate(w, "base", data)
}

type SnippetData struct {
	ClickURL string
	HTML     string
}

// RenderSnippet writes the served ad wrapped in its click-through link.
// The ad HTML is trusted admin input and is not escaped.
func (m *Manager) RenderSnippet(w io.Writer, clickURL, html string) error {
	return m.snippet.Execute(w, SnippetData{ClickURL: clickURL, HTML: html})
}

// RenderEmbedJS writes the loader script. A zero zone loads zone 1.
func (m *Manager) RenderEmbedJS(w io.Writer, zone int64) error {
	return m.embedJS.Execute(w, struct{ Zone int64 }{zone})
}

// pct formats a CTR fraction as a percentage.
func pct(v float64) string {
	return fmt.Sprintf("%.2f%%", v*100)
}

func truncate(n int, s string) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

func safeHTML(s string) template.HTML {
	return template.HTML(s)
}
