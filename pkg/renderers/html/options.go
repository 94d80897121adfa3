package html

import (
	"io/fs"
	"os"

	"github.com/rs/zerolog"
)

// Option configures the HTML renderer.
type Option func(*Renderer)

// WithTemplatesFS layers an alternate template bundle over the embedded one.
func WithTemplatesFS(files fs.FS) Option {
	return func(r *Renderer) {
		r.overrides = files
	}
}

// WithTemplatesDir loads override templates from a directory on disk.
func WithTemplatesDir(path string) Option {
	return func(r *Renderer) {
		if path == "" {
			return
		}
		r.overrides = os.DirFS(path)
	}
}

// WithLogger sets the logger used for render diagnostics.
func WithLogger(logger zerolog.Logger) Option {
	return func(r *Renderer) {
		r.logger = logger
	}
}
