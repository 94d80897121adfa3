package html

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"
	"github.com/gomarkdown/markdown"
	"github.com/microcosm-cc/bluemonday"
)

// engine wraps a pongo2 template set with a parsed-template cache. Loaders
// are consulted in order, so overrides come before the embedded bundle.
type engine struct {
	mu        sync.RWMutex
	set       *pongo2.TemplateSet
	templates map[string]*pongo2.Template
}

func newEngine(files ...fs.FS) (*engine, error) {
	var loaders []pongo2.TemplateLoader
	for _, fsys := range files {
		if fsys != nil {
			loaders = append(loaders, pongo2.NewFSLoader(fsys))
		}
	}
	if len(loaders) == 0 {
		return nil, errors.New("html: no template source configured")
	}
	registerDefaultFilters()
	return &engine{
		set:       pongo2.NewSet("formwizard", loaders...),
		templates: make(map[string]*pongo2.Template),
	}, nil
}

func (e *engine) render(name string, data pongo2.Context) ([]byte, error) {
	tmpl, err := e.template(name)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := tmpl.ExecuteWriter(data, &buf); err != nil {
		return nil, fmt.Errorf("html: execute template %q: %w", name, err)
	}
	return buf.Bytes(), nil
}

func (e *engine) template(name string) (*pongo2.Template, error) {
	e.mu.RLock()
	if tmpl, ok := e.templates[name]; ok {
		e.mu.RUnlock()
		return tmpl, nil
	}
	e.mu.RUnlock()

	e.mu.Lock()
	defer e.mu.Unlock()
	if tmpl, ok := e.templates[name]; ok {
		return tmpl, nil
	}
	tmpl, err := e.set.FromFile(name)
	if err != nil {
		return nil, fmt.Errorf("html: load template %q: %w", name, err)
	}
	e.templates[name] = tmpl
	return tmpl, nil
}

var (
	filtersOnce    sync.Once
	markdownPolicy = bluemonday.UGCPolicy()
)

func registerDefaultFilters() {
	filtersOnce.Do(func() {
		if !pongo2.FilterExists("markdown") {
			_ = pongo2.RegisterFilter("markdown", filterMarkdown)
		}
	})
}

// filterMarkdown renders step descriptions. The output is sanitised with the
// UGC policy before it is marked safe.
func filterMarkdown(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	source := strings.TrimSpace(in.String())
	if source == "" {
		return pongo2.AsValue(""), nil
	}
	return pongo2.AsSafeValue(renderMarkdown(source)), nil
}

func renderMarkdown(source string) string {
	rendered := markdown.ToHTML([]byte(source), nil, nil)
	return strings.TrimSpace(string(markdownPolicy.SanitizeBytes(rendered)))
}
