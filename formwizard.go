// Package formwizard wires step definitions, a validation engine and the
// step-form wizard together. Most callers only need DefaultDefinition or
// LoadDefinition followed by NewWizard; servers use NewFactory.
package formwizard

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/goliatone/go-formwizard/pkg/server"
	"github.com/goliatone/go-formwizard/pkg/stepform"
	"github.com/goliatone/go-formwizard/pkg/steps"
	"github.com/goliatone/go-formwizard/pkg/validation"
)

// Engine selects the validation backend.
type Engine string

const (
	// EngineJSONSchema validates with JSON Schema documents generated from the
	// step fields or declared inline.
	EngineJSONSchema Engine = "jsonschema"
	// EngineOpenAPI validates against component schemas of an OpenAPI 3
	// document.
	EngineOpenAPI Engine = "openapi"
	// EngineRules validates with the native field rules and no schema library.
	EngineRules Engine = "rules"
)

// ErrUnknownEngine is returned for engine names other than the three above.
var ErrUnknownEngine = errors.New("formwizard: unknown validation engine")

// ParseEngine maps a flag or config value onto an Engine. Empty selects
// EngineJSONSchema.
func ParseEngine(raw string) (Engine, error) {
	switch Engine(strings.ToLower(strings.TrimSpace(raw))) {
	case "", EngineJSONSchema:
		return EngineJSONSchema, nil
	case EngineOpenAPI:
		return EngineOpenAPI, nil
	case EngineRules:
		return EngineRules, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownEngine, raw)
	}
}

type config struct {
	engine    Engine
	openapi   []byte
	logger    zerolog.Logger
	observers []stepform.Observer
}

// Option configures NewValidator, NewWizard and NewFactory.
type Option func(*config)

// WithEngine selects the validation engine.
func WithEngine(engine Engine) Option {
	return func(c *config) {
		if engine != "" {
			c.engine = engine
		}
	}
}

// WithOpenAPIDocument supplies the document used by EngineOpenAPI. Without
// it the bundled checkout document is used.
func WithOpenAPIDocument(raw []byte) Option {
	return func(c *config) {
		c.openapi = raw
	}
}

// WithLogger sets the logger handed to the engine and wizard.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithObserver attaches an observer to wizards built by NewWizard.
func WithObserver(observer stepform.Observer) Option {
	return func(c *config) {
		if observer != nil {
			c.observers = append(c.observers, observer)
		}
	}
}

func newConfig(options []Option) config {
	cfg := config{engine: EngineJSONSchema, logger: zerolog.Nop()}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// DefaultDefinition returns the bundled three-step checkout form.
func DefaultDefinition() (*steps.Definition, error) {
	return steps.Checkout()
}

// LoadDefinition reads every definition file under dir and returns the form
// called name.
func LoadDefinition(dir, name string) (*steps.Definition, error) {
	catalog, err := steps.LoadFS(os.DirFS(dir))
	if err != nil {
		return nil, err
	}
	def, ok := catalog.Definition(name)
	if !ok {
		return nil, fmt.Errorf("formwizard: form %q not found in %s (have %v)", name, dir, catalog.Names())
	}
	return def, nil
}

// NewValidator builds the configured engine for def.
func NewValidator(ctx context.Context, def *steps.Definition, options ...Option) (stepform.Validator, error) {
	cfg := newConfig(options)
	return newValidator(ctx, def, cfg)
}

func newValidator(ctx context.Context, def *steps.Definition, cfg config) (stepform.Validator, error) {
	logOpt := validation.WithLogger(cfg.logger)
	switch cfg.engine {
	case EngineJSONSchema:
		return validation.NewJSONSchema(def, logOpt)
	case EngineOpenAPI:
		raw := cfg.openapi
		if len(raw) == 0 {
			raw = steps.EmbeddedOpenAPI()
		}
		return validation.NewOpenAPI(ctx, raw, def, logOpt)
	case EngineRules:
		return validation.NewRules(def, logOpt)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEngine, cfg.engine)
	}
}

// NewWizard builds a wizard for def validated by the configured engine.
func NewWizard(ctx context.Context, def *steps.Definition, options ...Option) (*stepform.Wizard, error) {
	factory, err := NewFactory(ctx, def, options...)
	if err != nil {
		return nil, err
	}
	return factory(ctx)
}

// NewFactory compiles the validator once and returns a factory producing
// independent wizards that share it, one per server session.
func NewFactory(ctx context.Context, def *steps.Definition, options ...Option) (server.WizardFactory, error) {
	if def == nil {
		return nil, validation.ErrDefinitionRequired
	}
	cfg := newConfig(options)
	validator, err := newValidator(ctx, def, cfg)
	if err != nil {
		return nil, err
	}

	base := []stepform.Option{stepform.WithLogger(cfg.logger)}
	for _, observer := range cfg.observers {
		base = append(base, stepform.WithObserver(observer))
	}
	return func(_ context.Context, extra ...stepform.Option) (*stepform.Wizard, error) {
		opts := append(append([]stepform.Option{}, base...), extra...)
		return stepform.New(def.Table(), validator, opts...)
	}, nil
}
