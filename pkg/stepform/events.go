package stepform

import (
	"context"

	"github.com/goliatone/go-formwizard/pkg/steps"
)

// EventKind names a wizard transition.
type EventKind string

const (
	EventAdvanced         EventKind = "advanced"
	EventRetreated        EventKind = "retreated"
	EventSubmitted        EventKind = "submitted"
	EventReset            EventKind = "reset"
	EventValidationFailed EventKind = "validation_failed"
)

// Event describes a transition after it happened. From is the step the
// transition started on; View is the state after it.
type Event struct {
	Kind    EventKind
	From    steps.Step
	View    View
	Failure *ValidationFailure
}

// Observer receives wizard events. Observers run after the wizard released
// its lock, so they may call back into the wizard.
type Observer interface {
	Observe(ctx context.Context, event Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ctx context.Context, event Event)

// Observe calls f.
func (f ObserverFunc) Observe(ctx context.Context, event Event) {
	f(ctx, event)
}
