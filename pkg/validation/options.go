package validation

import "github.com/rs/zerolog"

type config struct {
	logger zerolog.Logger
}

func newConfig(options []Option) config {
	cfg := config{logger: zerolog.Nop()}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}
	return cfg
}

// Option configures an engine.
type Option func(*config)

// WithLogger sets the logger used for engine diagnostics.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}
