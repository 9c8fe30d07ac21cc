// Package template implements the Engine the directory-listing and error
// responders render through, backed by the standard library's
// html/template. Its auto-escaping keeps untrusted directory entries and
// error reasons safe to interpolate without a separate sanitization pass.
package template

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"path/filepath"
	"sync"
)

// Engine renders named templates under a template root, in the two
// shapes the directory-listing and error responders need.
type Engine interface {
	// Render renders name with a flat variable map.
	Render(w io.Writer, name string, vars map[string]any) error

	// RenderCollection renders name with vars plus a named list of
	// per-item variable maps, the shape a directory listing's rows need.
	RenderCollection(w io.Writer, name string, vars map[string]any, collectionKey string, items []map[string]any) error
}

// HTMLEngine is the Engine implementation backing the server: a thin
// wrapper around html/template.Template.Execute that caches each parsed
// template by name.
type HTMLEngine struct {
	root string

	mu    sync.Mutex
	cache map[string]*template.Template
}

// NewHTMLEngine builds an Engine that loads "<root>/<name>" on first use
// and caches the parsed template for subsequent renders.
func NewHTMLEngine(root string) *HTMLEngine {
	return &HTMLEngine{root: root, cache: make(map[string]*template.Template)}
}

func (e *HTMLEngine) load(name string) (*template.Template, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if t, ok := e.cache[name]; ok {
		return t, nil
	}
	t, err := template.New(name).ParseFiles(filepath.Join(e.root, name))
	if err != nil {
		return nil, fmt.Errorf("template: parse %s: %w", name, err)
	}
	e.cache[name] = t
	return t, nil
}

func (e *HTMLEngine) Render(w io.Writer, name string, vars map[string]any) error {
	t, err := e.load(name)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, filepath.Base(name), vars); err != nil {
		return fmt.Errorf("template: render %s: %w", name, err)
	}
	_, err = buf.WriteTo(w)
	return err
}

func (e *HTMLEngine) RenderCollection(w io.Writer, name string, vars map[string]any, collectionKey string, items []map[string]any) error {
	merged := make(map[string]any, len(vars)+1)
	for k, v := range vars {
		merged[k] = v
	}
	merged[collectionKey] = items
	return e.Render(w, name, merged)
}
