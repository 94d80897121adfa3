package stepform

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/goliatone/go-formwizard/pkg/steps"
)

// Transition names the forward move a successful Next performed.
type Transition string

const (
	TransitionAdvanced  Transition = "advanced"
	TransitionSubmitted Transition = "submitted"
)

// Outcome reports the result of Next. On a validation failure Transition is
// empty and View holds the unchanged state.
type Outcome struct {
	Transition Transition
	View       View
}

// Wizard drives a Controller through the navigation protocol:
//
//   - Next validates the current step, merges the validated data and then
//     either advances or, on the last step, submits.
//   - Previous retreats without validating.
//   - Submitted is terminal until Reset.
//
// Wizard is safe for concurrent use. Validation runs without holding the
// lock; a second Next issued meanwhile fails with ErrNavigationPending, and a
// Next whose step moved underneath it fails with ErrStepChanged.
type Wizard struct {
	mu         sync.Mutex
	ctrl       *Controller
	validator  Validator
	logger     zerolog.Logger
	observers  []Observer
	pending    bool
	generation uint64
}

// New builds a wizard for table, validating steps with validator.
func New(table steps.Table, validator Validator, options ...Option) (*Wizard, error) {
	if validator == nil {
		return nil, ErrValidatorRequired
	}
	ctrl, err := NewController(table)
	if err != nil {
		return nil, err
	}

	w := &Wizard{
		ctrl:      ctrl,
		validator: validator,
		logger:    zerolog.Nop(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(w)
	}
	return w, nil
}

// Next runs the forward protocol for the current step with data.
func (w *Wizard) Next(ctx context.Context, data FormData) (Outcome, error) {
	return w.next(ctx, "", data)
}

// NextAt is Next for callers that collected data for a specific step. When
// stepID is no longer the current step it fails with ErrStepChanged without
// validating.
func (w *Wizard) NextAt(ctx context.Context, stepID string, data FormData) (Outcome, error) {
	return w.next(ctx, stepID, data)
}

func (w *Wizard) next(ctx context.Context, stepID string, data FormData) (Outcome, error) {
	if ctx == nil {
		return Outcome{}, errors.New("stepform: context is required")
	}
	if err := ctx.Err(); err != nil {
		return Outcome{}, err
	}

	w.mu.Lock()
	if w.ctrl.IsSubmitted() {
		w.mu.Unlock()
		return Outcome{}, ErrSubmitted
	}
	if w.pending {
		w.mu.Unlock()
		return Outcome{}, ErrNavigationPending
	}
	if stepID != "" && w.ctrl.Step().ID != stepID {
		w.mu.Unlock()
		return Outcome{}, ErrStepChanged
	}
	w.pending = true
	generation := w.generation
	schema := w.ctrl.CurrentSchema()
	from := w.ctrl.Step()
	w.mu.Unlock()

	validated, err := w.check(ctx, schema, data.Clone())

	w.mu.Lock()
	w.pending = false

	if err != nil {
		view := w.ctrl.View()
		w.mu.Unlock()

		failure, ok := AsValidationFailure(err)
		if !ok {
			w.logger.Error().Err(err).Str("step", from.ID).Str("schema", string(schema)).Msg("step validation errored")
			return Outcome{}, fmt.Errorf("stepform: validate step %q: %w", from.ID, err)
		}
		if failure.Step == "" {
			failure.Step = from.ID
		}
		if failure.Schema == "" {
			failure.Schema = schema
		}
		w.logger.Debug().Str("step", from.ID).Strs("fields", failure.FieldNames()).Msg("step validation failed")
		w.notify(ctx, Event{Kind: EventValidationFailed, From: from, View: view, Failure: failure})
		return Outcome{View: view}, failure
	}

	if w.generation != generation {
		w.mu.Unlock()
		w.logger.Debug().Str("step", from.ID).Msg("discarding validation result for a step that is no longer current")
		return Outcome{}, ErrStepChanged
	}

	if validated == nil {
		validated = data.Clone()
	}
	w.ctrl.MergeStepData(validated)

	outcome := Outcome{Transition: TransitionAdvanced}
	kind := EventAdvanced
	if w.ctrl.IsLastStep() {
		w.ctrl.Submit(validated)
		outcome.Transition = TransitionSubmitted
		kind = EventSubmitted
	} else {
		w.ctrl.Advance()
	}
	w.generation++
	outcome.View = w.ctrl.View()
	w.mu.Unlock()

	w.logger.Info().
		Str("from", from.ID).
		Int("step", outcome.View.CurrentStep).
		Str("transition", string(outcome.Transition)).
		Int("fields", len(outcome.View.FormData)).
		Msg("wizard moved forward")
	w.notify(ctx, Event{Kind: kind, From: from, View: outcome.View})
	return outcome, nil
}

// check runs the validator. If it panics the pending flag is cleared before
// the panic continues, so later calls can navigate again.
func (w *Wizard) check(ctx context.Context, schema SchemaRef, data FormData) (FormData, error) {
	returned := false
	defer func() {
		if returned {
			return
		}
		w.mu.Lock()
		w.pending = false
		w.mu.Unlock()
	}()
	validated, err := w.validator.Check(ctx, schema, data)
	returned = true
	return validated, err
}

// Previous moves back one step without validating. On the first step it is a
// no-op and emits no event.
func (w *Wizard) Previous(ctx context.Context) (View, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	w.mu.Lock()
	if w.ctrl.IsSubmitted() {
		w.mu.Unlock()
		return View{}, ErrSubmitted
	}
	from := w.ctrl.Step()
	moved := !w.ctrl.IsFirstStep()
	w.ctrl.Retreat()
	if moved {
		w.generation++
	}
	view := w.ctrl.View()
	w.mu.Unlock()

	if moved {
		w.logger.Info().Str("from", from.ID).Int("step", view.CurrentStep).Msg("wizard moved back")
		w.notify(ctx, Event{Kind: EventRetreated, From: from, View: view})
	}
	return view, nil
}

// Reset returns the wizard to the first step with empty data.
func (w *Wizard) Reset(ctx context.Context) View {
	if ctx == nil {
		ctx = context.Background()
	}

	w.mu.Lock()
	from := w.ctrl.Step()
	w.ctrl.Reset()
	w.generation++
	view := w.ctrl.View()
	w.mu.Unlock()

	w.logger.Info().Str("from", from.ID).Msg("wizard reset")
	w.notify(ctx, Event{Kind: EventReset, From: from, View: view})
	return view
}

// View returns the current read model.
func (w *Wizard) View() View {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.ctrl.View()
}

// Phase reports Editing or Submitted.
func (w *Wizard) Phase() Phase {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.ctrl.Phase()
}

// CurrentSchema returns the schema bound to the current step.
func (w *Wizard) CurrentSchema() SchemaRef {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.ctrl.CurrentSchema()
}

// Table returns the step table.
func (w *Wizard) Table() steps.Table {
	return w.ctrl.Table()
}

func (w *Wizard) notify(ctx context.Context, event Event) {
	for _, observer := range w.observers {
		observer.Observe(ctx, event)
	}
}
