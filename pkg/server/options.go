package server

import (
	"time"

	theme "github.com/goliatone/go-theme"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/goliatone/go-formwizard/pkg/render"
)

const (
	defaultBasePath   = "/wizard"
	defaultCookieName = "formwizard_session"
	defaultTracerName = "github.com/goliatone/go-formwizard/pkg/server"

	defaultSessionTTL  = 30 * time.Minute
	defaultMaxSessions = 10000
)

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request and transition logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithRenderer sets the page renderer. Defaults to the HTML renderer.
func WithRenderer(renderer render.Renderer) Option {
	return func(s *Server) {
		if renderer != nil {
			s.renderer = renderer
		}
	}
}

// WithBasePath mounts the wizard routes under path (default "/wizard").
func WithBasePath(path string) Option {
	return func(s *Server) {
		if path != "" {
			s.basePath = path
		}
	}
}

// WithTitle sets the page title passed to the renderer.
func WithTitle(title string) Option {
	return func(s *Server) {
		s.title = title
	}
}

// WithTheme forwards theme tokens to the renderer.
func WithTheme(cfg *theme.RendererConfig) Option {
	return func(s *Server) {
		s.theme = cfg
	}
}

// WithCookieName overrides the session cookie name.
func WithCookieName(name string) Option {
	return func(s *Server) {
		if name != "" {
			s.cookieName = name
		}
	}
}

// WithRegistry registers metrics with reg and serves them from /metrics.
// Defaults to a private registry.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(s *Server) {
		if reg != nil {
			s.registry = reg
		}
	}
}

// WithTracerName names the OpenTelemetry tracer used for request spans.
func WithTracerName(name string) Option {
	return func(s *Server) {
		if name != "" {
			s.tracerName = name
		}
	}
}

// WithSessionTTL drops sessions idle for longer than ttl (default 30m). Zero
// keeps idle sessions until the session limit evicts them.
func WithSessionTTL(ttl time.Duration) Option {
	return func(s *Server) {
		if ttl >= 0 {
			s.sessionTTL = ttl
		}
	}
}

// WithMaxSessions caps the sessions held in memory (default 10000). When
// full, the least recently seen session is evicted. Zero means no cap.
func WithMaxSessions(n int) Option {
	return func(s *Server) {
		if n >= 0 {
			s.maxSessions = n
		}
	}
}
