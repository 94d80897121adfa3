package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/goliatone/go-formwizard/pkg/render"
	"github.com/goliatone/go-formwizard/pkg/renderers/html"
	"github.com/goliatone/go-formwizard/pkg/renderers/tui"
	"github.com/goliatone/go-formwizard/pkg/stepform"
)

// wizardRunner is a renderer that drives a whole wizard interactively.
type wizardRunner interface {
	render.Renderer
	Run(ctx context.Context, w *stepform.Wizard) ([]byte, error)
}

// renderers registers every built-in renderer. html is registered first and
// is the registry default.
func (a *app) renderers() (*render.Registry, error) {
	format, ok := tui.ParseOutputFormat(a.cfg.Run.Output)
	if !ok {
		return nil, fmt.Errorf("unknown output format %q", a.cfg.Run.Output)
	}

	page, err := html.New(
		html.WithTemplatesDir(a.cfg.Serve.Templates),
		html.WithLogger(a.logger),
	)
	if err != nil {
		return nil, err
	}
	terminal, err := tui.New(
		tui.WithOutputFormat(format),
		tui.WithLogger(a.logger),
		tui.WithHTTPClient(&http.Client{Timeout: 10 * time.Second}),
		tui.WithTheme(tui.Theme{ErrorPrefix: "✗ "}),
	)
	if err != nil {
		return nil, err
	}

	registry := render.NewRegistry()
	for _, r := range []render.Renderer{page, terminal} {
		if err := registry.Register(r); err != nil {
			return nil, err
		}
	}
	return registry, nil
}

// pageRenderer picks the renderer for HTTP pages. Interactive renderers read
// from the server's terminal and are refused.
func (a *app) pageRenderer() (render.Renderer, error) {
	registry, err := a.renderers()
	if err != nil {
		return nil, err
	}
	renderer, err := registry.Get(a.cfg.Renderer)
	if err != nil {
		return nil, err
	}
	if _, interactive := renderer.(wizardRunner); interactive {
		return nil, fmt.Errorf("renderer %q is interactive and cannot serve pages (available: %v)", renderer.Name(), registry.List())
	}
	return renderer, nil
}

// runner picks the interactive renderer for the run command, tui unless
// configured otherwise.
func (a *app) runner() (wizardRunner, error) {
	registry, err := a.renderers()
	if err != nil {
		return nil, err
	}
	name := a.cfg.Renderer
	if name == "" {
		name = "tui"
	}
	renderer, err := registry.Get(name)
	if err != nil {
		return nil, err
	}
	runner, ok := renderer.(wizardRunner)
	if !ok {
		return nil, fmt.Errorf("renderer %q cannot run a wizard in the terminal", name)
	}
	return runner, nil
}
