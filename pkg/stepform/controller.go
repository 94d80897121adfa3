package stepform

import (
	"github.com/goliatone/go-formwizard/pkg/steps"
)

// Controller owns the step position, accumulated form data and submission
// flag for one form. Its operations are the raw transitions: none of them
// validate, and Submit does not check that the last step is current. Use
// Wizard for the gated protocol.
//
// A Controller is not safe for concurrent use; it is meant to be driven from
// a single event loop or guarded by its owner (Wizard does this).
type Controller struct {
	table   steps.Table
	schemas []SchemaRef
	state   State
}

// NewController builds a controller in the initial state for table.
func NewController(table steps.Table) (*Controller, error) {
	if table.Len() == 0 {
		return nil, ErrEmptyTable
	}
	schemas := make([]SchemaRef, table.Len())
	for idx, step := range table.Steps() {
		schemas[idx] = SchemaRef(step.SchemaRef())
	}
	return &Controller{
		table:   table,
		schemas: schemas,
		state:   Initial(),
	}, nil
}

// CurrentSchema returns the schema bound to the current step.
func (c *Controller) CurrentSchema() SchemaRef {
	return c.schemas[c.state.CurrentStep]
}

// CurrentStep returns the current step index.
func (c *Controller) CurrentStep() int {
	return c.state.CurrentStep
}

// Step returns the step at the current index.
func (c *Controller) Step() steps.Step {
	return c.table.Step(c.state.CurrentStep)
}

// IsFirstStep reports whether the current step is index 0.
func (c *Controller) IsFirstStep() bool {
	return c.state.CurrentStep == 0
}

// IsLastStep reports whether the current step is the final one.
func (c *Controller) IsLastStep() bool {
	return c.state.CurrentStep == c.table.Last()
}

// IsSubmitted reports the submission flag.
func (c *Controller) IsSubmitted() bool {
	return c.state.IsSubmitted
}

// Advance moves forward one step; no-op on the last step.
func (c *Controller) Advance() {
	c.state = c.state.Advance(c.table.Len())
}

// Retreat moves back one step; no-op on the first step.
func (c *Controller) Retreat() {
	c.state = c.state.Retreat()
}

// MergeStepData shallow-merges partial into the form data.
func (c *Controller) MergeStepData(partial FormData) {
	c.state = c.state.Merge(partial)
}

// Submit merges final and sets the submitted flag.
func (c *Controller) Submit(final FormData) {
	c.state = c.state.Submit(final)
}

// Reset restores the initial state.
func (c *Controller) Reset() {
	c.state = Initial()
}

// State returns a snapshot of the owned state.
func (c *Controller) State() State {
	snapshot := c.state
	snapshot.FormData = c.state.FormData.Clone()
	return snapshot
}

// Phase reports Editing or Submitted.
func (c *Controller) Phase() Phase {
	return c.state.Phase()
}

// Table returns the step table.
func (c *Controller) Table() steps.Table {
	return c.table
}

// View returns the read model for renderers.
func (c *Controller) View() View {
	return View{
		CurrentStep: c.state.CurrentStep,
		FormData:    c.state.FormData.Clone(),
		IsFirstStep: c.IsFirstStep(),
		IsLastStep:  c.IsLastStep(),
		IsSubmitted: c.state.IsSubmitted,
		Steps:       c.table.Steps(),
	}
}
