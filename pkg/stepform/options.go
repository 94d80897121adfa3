package stepform

import "github.com/rs/zerolog"

// Option configures a Wizard.
type Option func(*Wizard)

// WithLogger sets the structured logger used for transition logs.
func WithLogger(logger zerolog.Logger) Option {
	return func(w *Wizard) {
		w.logger = logger
	}
}

// WithObserver registers an observer. Nil observers are ignored.
func WithObserver(observer Observer) Option {
	return func(w *Wizard) {
		if observer != nil {
			w.observers = append(w.observers, observer)
		}
	}
}
