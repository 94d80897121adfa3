// Package server exposes wizards over HTTP. Each browser session gets its own
// in-memory wizard keyed by a cookie; pages are produced by a render.Renderer
// and every request is traced and counted.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	theme "github.com/goliatone/go-theme"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/goliatone/go-formwizard/pkg/progress"
	"github.com/goliatone/go-formwizard/pkg/render"
	"github.com/goliatone/go-formwizard/pkg/renderers/html"
	"github.com/goliatone/go-formwizard/pkg/stepform"
	"github.com/goliatone/go-formwizard/pkg/steps"
)

// ErrFactoryRequired is returned by New without a wizard factory.
var ErrFactoryRequired = errors.New("server: wizard factory is required")

const maskedValue = "••••"

// Server is an http.Handler serving the wizard routes and /metrics.
type Server struct {
	router     chi.Router
	sessions   *sessions
	renderer   render.Renderer
	metrics    *Metrics
	registry   *prometheus.Registry
	logger     zerolog.Logger
	basePath   string
	title      string
	theme      *theme.RendererConfig
	cookieName string
	tracerName string

	sessionTTL  time.Duration
	maxSessions int
}

// New builds the server. factory is called once per new session.
func New(factory WizardFactory, options ...Option) (*Server, error) {
	if factory == nil {
		return nil, ErrFactoryRequired
	}

	srv := &Server{
		logger:     zerolog.Nop(),
		basePath:   defaultBasePath,
		cookieName: defaultCookieName,
		tracerName: defaultTracerName,

		sessionTTL:  defaultSessionTTL,
		maxSessions: defaultMaxSessions,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(srv)
	}

	if srv.renderer == nil {
		renderer, err := html.New(html.WithLogger(srv.logger))
		if err != nil {
			return nil, fmt.Errorf("server: html renderer: %w", err)
		}
		srv.renderer = renderer
	}
	if srv.registry == nil {
		srv.registry = prometheus.NewRegistry()
	}
	srv.basePath = "/" + strings.Trim(srv.basePath, "/")
	srv.metrics = NewMetrics(srv.registry)
	srv.sessions = newSessions(factory, srv.sessionTTL, srv.maxSessions,
		stepform.WithLogger(srv.logger),
		stepform.WithObserver(srv.metrics),
	)
	srv.router = srv.routes()
	return srv, nil
}

func (srv *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(srv.traced)

	r.Route(srv.basePath, func(r chi.Router) {
		r.Get("/", srv.handleShow)
		r.Post("/next", srv.handleNext)
		r.Post("/previous", srv.handlePrevious)
		r.Post("/reset", srv.handleReset)
		r.Get("/state", srv.handleState)
	})
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(srv.registry, promhttp.HandlerOpts{}))
	return r
}

// ServeHTTP implements http.Handler.
func (srv *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	srv.router.ServeHTTP(w, r)
}

// Metrics exposes the registered collectors.
func (srv *Server) Metrics() *Metrics {
	return srv.metrics
}

func (srv *Server) handleShow(w http.ResponseWriter, r *http.Request) {
	wizard, err := srv.wizardFor(w, r)
	if err != nil {
		srv.fail(w, r, err)
		return
	}
	srv.renderPage(w, r, wizard.View(), render.RenderOptions{}, http.StatusOK)
}

func (srv *Server) handleNext(w http.ResponseWriter, r *http.Request) {
	wizard, ok := srv.existingWizard(r)
	if !ok {
		srv.redirect(w, r)
		return
	}

	view := wizard.View()
	if view.IsSubmitted {
		srv.redirect(w, r)
		return
	}

	data, postedStep, err := decodeStep(r, view.Step())
	if err != nil {
		http.Error(w, "invalid form payload", http.StatusBadRequest)
		return
	}
	if postedStep != "" && postedStep != view.Step().ID {
		// The page was rendered for another step (back button, second tab).
		srv.logger.Debug().Str("posted", postedStep).Str("current", view.Step().ID).Msg("stale step posted")
		srv.redirect(w, r)
		return
	}

	outcome, err := wizard.NextAt(r.Context(), view.Step().ID, data)
	if failure, ok := stepform.AsValidationFailure(err); ok {
		srv.renderPage(w, r, outcome.View, render.RenderOptions{
			Values: data,
			Errors: failure.Fields,
		}, http.StatusUnprocessableEntity)
		return
	}
	switch {
	case err == nil, errors.Is(err, stepform.ErrSubmitted):
		srv.redirect(w, r)
	case errors.Is(err, stepform.ErrNavigationPending), errors.Is(err, stepform.ErrStepChanged):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		srv.fail(w, r, err)
	}
}

func (srv *Server) handlePrevious(w http.ResponseWriter, r *http.Request) {
	wizard, ok := srv.existingWizard(r)
	if !ok {
		srv.redirect(w, r)
		return
	}
	if _, err := wizard.Previous(r.Context()); err != nil && !errors.Is(err, stepform.ErrSubmitted) {
		srv.fail(w, r, err)
		return
	}
	srv.redirect(w, r)
}

func (srv *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	wizard, ok := srv.existingWizard(r)
	if !ok {
		srv.redirect(w, r)
		return
	}
	wizard.Reset(r.Context())
	srv.redirect(w, r)
}

// stateResponse is the JSON read model of a session. Password values are
// masked.
type stateResponse struct {
	CurrentStep int            `json:"currentStep"`
	StepID      string         `json:"stepId"`
	Schema      string         `json:"schema"`
	IsSubmitted bool           `json:"isSubmitted"`
	IsFirstStep bool           `json:"isFirstStep"`
	IsLastStep  bool           `json:"isLastStep"`
	Percent     int            `json:"percent"`
	FormData    map[string]any `json:"formData"`
}

func (srv *Server) handleState(w http.ResponseWriter, r *http.Request) {
	wizard, ok := srv.existingWizard(r)
	if !ok {
		http.Error(w, "no wizard session", http.StatusNotFound)
		return
	}
	view := wizard.View()
	resp := stateResponse{
		CurrentStep: view.CurrentStep,
		StepID:      view.Step().ID,
		Schema:      view.Step().SchemaRef(),
		IsSubmitted: view.IsSubmitted,
		IsFirstStep: view.IsFirstStep,
		IsLastStep:  view.IsLastStep,
		Percent:     progress.FromView(view).Percent,
		FormData:    maskSecrets(view),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		srv.logger.Error().Err(err).Msg("encode state")
	}
}

func (srv *Server) renderPage(w http.ResponseWriter, r *http.Request, view stepform.View, opts render.RenderOptions, status int) {
	opts.Title = srv.title
	opts.Action = srv.basePath
	opts.Theme = srv.theme

	out, err := srv.renderer.Render(r.Context(), view, opts)
	if err != nil {
		srv.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", srv.renderer.ContentType())
	w.WriteHeader(status)
	_, _ = w.Write(out)
}

func (srv *Server) redirect(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, srv.basePath, http.StatusSeeOther)
}

func (srv *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	srv.logger.Error().Err(err).Str("method", r.Method).Str("path", r.URL.Path).Msg("wizard request failed")
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

func maskSecrets(view stepform.View) map[string]any {
	out := view.FormData.Clone()
	for _, step := range view.Steps {
		for _, field := range step.Fields {
			if field.EffectiveKind() != steps.FieldPassword {
				continue
			}
			if _, ok := out[field.Name]; ok {
				out[field.Name] = maskedValue
			}
		}
	}
	return out
}
