package render

import (
	"sort"
	"strings"

	"github.com/goliatone/go-formwizard/pkg/stepform"
	"github.com/goliatone/go-formwizard/pkg/steps"
)

// ErrorMapping splits failure messages into those that belong to a field of
// the rendered step and form-level messages.
type ErrorMapping struct {
	Fields map[string]string
	Form   []string
}

// Field returns the message for name, or "".
func (m ErrorMapping) Field(name string) string {
	return m.Fields[name]
}

// Empty reports whether there is nothing to show.
func (m ErrorMapping) Empty() bool {
	return len(m.Fields) == 0 && len(m.Form) == 0
}

// MapErrors normalises messages keyed by field name or path (JSON pointers,
// dotted paths, "body"-wrapped paths) onto the fields of step. Keys that do
// not resolve to a field of the step become form-level messages so nothing is
// lost.
func MapErrors(step steps.Step, messages map[string]string) ErrorMapping {
	mapping := ErrorMapping{}
	if len(messages) == 0 {
		return mapping
	}

	known := make(map[string]struct{}, len(step.Fields))
	for _, field := range step.Fields {
		known[field.Name] = struct{}{}
	}

	keys := make([]string, 0, len(messages))
	for key := range messages {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var form []string
	for _, raw := range keys {
		message := strings.TrimSpace(messages[raw])
		if message == "" {
			continue
		}
		name, formLevel := mapErrorPath(raw, known)
		if formLevel {
			form = append(form, message)
			continue
		}
		if mapping.Fields == nil {
			mapping.Fields = make(map[string]string)
		}
		mapping.Fields[name] = message
	}
	mapping.Form = normalizeMessages(form)
	return mapping
}

// MapFailure maps a validation failure onto the current step of view.
func MapFailure(view stepform.View, failure *stepform.ValidationFailure) ErrorMapping {
	if failure == nil || len(view.Steps) == 0 {
		return ErrorMapping{}
	}
	return MapErrors(view.Step(), failure.Fields)
}

func normalizeMessages(messages []string) []string {
	if len(messages) == 0 {
		return nil
	}
	out := make([]string, 0, len(messages))
	seen := make(map[string]struct{}, len(messages))
	for _, message := range messages {
		trimmed := strings.TrimSpace(message)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func mapErrorPath(raw string, known map[string]struct{}) (string, bool) {
	trimmed := strings.TrimSpace(raw)
	if isFormLevelKey(trimmed) {
		return "", true
	}
	if _, ok := known[trimmed]; ok {
		return trimmed, false
	}
	segments := dropWrapperSegments(parsePathSegments(trimmed))
	if len(segments) == 0 {
		return "", true
	}
	// Steps hold flat fields, so only the first segment can name one.
	if _, ok := known[segments[0]]; ok {
		return segments[0], false
	}
	return "", true
}

func parsePathSegments(path string) []string {
	clean := strings.TrimSpace(path)
	for strings.HasPrefix(clean, "#") || strings.HasPrefix(clean, "/") || strings.HasPrefix(clean, ".") || strings.HasPrefix(clean, "$") {
		clean = strings.TrimLeft(clean, "#/.$")
	}
	clean = strings.NewReplacer("[", ".", "]", "").Replace(clean)
	clean = strings.Trim(clean, "./")
	if clean == "" {
		return nil
	}

	parts := strings.FieldsFunc(clean, func(r rune) bool {
		return r == '.' || r == '/'
	})
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		segment := strings.TrimSpace(part)
		if segment == "" {
			continue
		}
		segment = strings.ReplaceAll(segment, "~1", "/")
		segment = strings.ReplaceAll(segment, "~0", "~")
		out = append(out, segment)
	}
	return out
}

func dropWrapperSegments(segments []string) []string {
	out := segments
	for len(out) > 0 {
		switch strings.ToLower(out[0]) {
		case "body", "request", "payload", "data", "formdata":
			out = out[1:]
			continue
		}
		break
	}
	return out
}

func isFormLevelKey(key string) bool {
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "", ".", "/", "#", "$", "form", stepform.FormLevelKey, "__all__", "non_field_errors":
		return true
	default:
		return false
	}
}
