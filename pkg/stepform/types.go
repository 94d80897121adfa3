package stepform

import (
	"sort"

	"github.com/goliatone/go-formwizard/pkg/steps"
)

// FormData maps field names to collected values. Values are strings, bools or
// enum tags (strings).
type FormData map[string]any

// Clone returns a shallow copy. The result is never nil.
func (d FormData) Clone() FormData {
	out := make(FormData, len(d))
	for key, value := range d {
		out[key] = value
	}
	return out
}

// Merge returns a copy of d with partial applied on top; partial's keys win.
// Neither input is modified.
func (d FormData) Merge(partial FormData) FormData {
	out := make(FormData, len(d)+len(partial))
	for key, value := range d {
		out[key] = value
	}
	for key, value := range partial {
		out[key] = value
	}
	return out
}

// Keys returns the field names in sorted order.
func (d FormData) Keys() []string {
	keys := make([]string, 0, len(d))
	for key := range d {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// String returns the value under key formatted for display inputs. Missing
// keys and nil values yield "".
func (d FormData) String(key string) string {
	switch v := d[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		if v {
			return "true"
		}
		return "false"
	default:
		return ""
	}
}

// Bool reports the boolean value under key.
func (d FormData) Bool(key string) bool {
	switch v := d[key].(type) {
	case bool:
		return v
	case string:
		return v == "true" || v == "on"
	default:
		return false
	}
}

// SchemaRef names the validation schema bound to a step.
type SchemaRef string

// Phase is the controller's coarse state: editing some step, or submitted.
type Phase string

const (
	PhaseEditing   Phase = "editing"
	PhaseSubmitted Phase = "submitted"
)

// View is the read model handed to renderers.
type View struct {
	CurrentStep int          `json:"currentStep"`
	FormData    FormData     `json:"formData"`
	IsFirstStep bool         `json:"isFirstStep"`
	IsLastStep  bool         `json:"isLastStep"`
	IsSubmitted bool         `json:"isSubmitted"`
	Steps       []steps.Step `json:"steps"`
}

// Step returns the step at CurrentStep.
func (v View) Step() steps.Step {
	return v.Steps[v.CurrentStep]
}

// Phase derives the controller phase from the view.
func (v View) Phase() Phase {
	if v.IsSubmitted {
		return PhaseSubmitted
	}
	return PhaseEditing
}
