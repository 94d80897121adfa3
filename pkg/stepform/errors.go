package stepform

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrEmptyTable is returned when a controller is built without steps.
	ErrEmptyTable = errors.New("stepform: step table is empty")
	// ErrValidatorRequired is returned when a wizard is built without a validator.
	ErrValidatorRequired = errors.New("stepform: validator is required")
	// ErrSubmitted signals navigation attempted after submission; only Reset
	// leaves the submitted state.
	ErrSubmitted = errors.New("stepform: form already submitted")
	// ErrNavigationPending signals a Next while another Next is awaiting
	// validation.
	ErrNavigationPending = errors.New("stepform: navigation already in progress")
	// ErrStepChanged signals the data was meant for a step that is no longer
	// current: the step moved while a Next awaited validation, or NextAt named
	// another step. Nothing was merged.
	ErrStepChanged = errors.New("stepform: step changed")
	// ErrUnknownSchema is returned by validators for unregistered schema refs.
	ErrUnknownSchema = errors.New("stepform: unknown schema")
)

// FormLevelKey holds failure messages that cannot be attributed to a field.
const FormLevelKey = "_form"

// ValidationFailure is the single recoverable error of the controller: the
// current step's input did not satisfy its schema. Fields maps field names
// to human-readable messages.
type ValidationFailure struct {
	Step   string
	Schema SchemaRef
	Fields map[string]string
}

// NewValidationFailure builds a failure for schema with the given messages.
func NewValidationFailure(schema SchemaRef, fields map[string]string) *ValidationFailure {
	cloned := make(map[string]string, len(fields))
	for field, msg := range fields {
		cloned[field] = msg
	}
	return &ValidationFailure{Schema: schema, Fields: cloned}
}

func (f *ValidationFailure) Error() string {
	if f == nil {
		return "stepform: validation failed"
	}
	subject := string(f.Schema)
	if f.Step != "" {
		subject = f.Step
	}
	return fmt.Sprintf("stepform: step %q failed validation: %s", subject, strings.Join(f.FieldNames(), ", "))
}

// Message returns the message for field, or "".
func (f *ValidationFailure) Message(field string) string {
	if f == nil {
		return ""
	}
	return f.Fields[field]
}

// FieldNames lists the failing fields, sorted.
func (f *ValidationFailure) FieldNames() []string {
	if f == nil {
		return nil
	}
	names := make([]string, 0, len(f.Fields))
	for name := range f.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// AsValidationFailure unwraps err into a *ValidationFailure.
func AsValidationFailure(err error) (*ValidationFailure, bool) {
	var failure *ValidationFailure
	if errors.As(err, &failure) {
		return failure, true
	}
	return nil, false
}
