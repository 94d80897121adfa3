package steps

import (
	"fmt"
	"strings"
)

// FieldKind controls how renderers present a field and which JSON type the
// collected value uses.
type FieldKind string

const (
	FieldText     FieldKind = "text"
	FieldEmail    FieldKind = "email"
	FieldTel      FieldKind = "tel"
	FieldPassword FieldKind = "password"
	FieldTextArea FieldKind = "textarea"
	FieldSelect   FieldKind = "select"
	FieldCheckbox FieldKind = "checkbox"
)

// Option is a selectable value for select fields. The value is the enum tag
// stored in form data.
type Option struct {
	Value string `json:"value" yaml:"value"`
	Label string `json:"label,omitempty" yaml:"label,omitempty"`
}

// DisplayLabel falls back to the value when no label is configured.
func (o Option) DisplayLabel() string {
	if strings.TrimSpace(o.Label) == "" {
		return o.Value
	}
	return o.Label
}

// OptionsSource points a select field at a remote JSON endpoint. Results is a
// dotted path to the array inside the payload; Value and Label name the keys
// read from each item.
type OptionsSource struct {
	URL     string `json:"url" yaml:"url"`
	Results string `json:"results,omitempty" yaml:"results,omitempty"`
	Value   string `json:"value,omitempty" yaml:"value,omitempty"`
	Label   string `json:"label,omitempty" yaml:"label,omitempty"`
}

// Field is renderer metadata for one input of a step. The constraints double
// as the source for generated schemas and the native rules engine.
type Field struct {
	Name        string            `json:"name" yaml:"name"`
	Label       string            `json:"label,omitempty" yaml:"label,omitempty"`
	Kind        FieldKind         `json:"kind,omitempty" yaml:"kind,omitempty"`
	Placeholder string            `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	Help        string            `json:"help,omitempty" yaml:"help,omitempty"`
	Required    bool              `json:"required,omitempty" yaml:"required,omitempty"`
	MinLength   *int              `json:"minLength,omitempty" yaml:"minLength,omitempty"`
	MaxLength   *int              `json:"maxLength,omitempty" yaml:"maxLength,omitempty"`
	Pattern     string            `json:"pattern,omitempty" yaml:"pattern,omitempty"`
	Options     []Option          `json:"options,omitempty" yaml:"options,omitempty"`
	OptionsFrom *OptionsSource    `json:"optionsFrom,omitempty" yaml:"optionsFrom,omitempty"`
	Messages    map[string]string `json:"messages,omitempty" yaml:"messages,omitempty"`
}

// DisplayLabel returns the configured label or the field name.
func (f Field) DisplayLabel() string {
	if label := strings.TrimSpace(f.Label); label != "" {
		return label
	}
	return f.Name
}

// EffectiveKind defaults empty kinds to text.
func (f Field) EffectiveKind() FieldKind {
	if f.Kind == "" {
		return FieldText
	}
	return f.Kind
}

// OptionValues lists the enum tags of a select field.
func (f Field) OptionValues() []string {
	if len(f.Options) == 0 {
		return nil
	}
	out := make([]string, 0, len(f.Options))
	for _, opt := range f.Options {
		out = append(out, opt.Value)
	}
	return out
}

// MessageFor resolves the human-readable message for a failed keyword
// (required, minLength, maxLength, pattern, enum, type). Configured messages
// win; "default" is consulted before the generated text.
func (f Field) MessageFor(keyword string) string {
	if msg := strings.TrimSpace(f.Messages[keyword]); msg != "" {
		return msg
	}
	if msg := strings.TrimSpace(f.Messages["default"]); msg != "" {
		return msg
	}

	label := f.DisplayLabel()
	switch keyword {
	case "required":
		return fmt.Sprintf("%s is required", label)
	case "minLength":
		if f.MinLength != nil {
			return fmt.Sprintf("%s must be at least %d characters", label, *f.MinLength)
		}
		return fmt.Sprintf("%s is too short", label)
	case "maxLength":
		if f.MaxLength != nil {
			return fmt.Sprintf("%s must be at most %d characters", label, *f.MaxLength)
		}
		return fmt.Sprintf("%s is too long", label)
	case "enum":
		if values := f.OptionValues(); len(values) > 0 {
			return fmt.Sprintf("%s must be one of: %s", label, strings.Join(values, ", "))
		}
		return fmt.Sprintf("%s is not an allowed value", label)
	case "type":
		return fmt.Sprintf("%s has the wrong type", label)
	default:
		return fmt.Sprintf("%s is invalid", label)
	}
}

// Step is one page of a multi-step form. ID, Name and Icon are the identity
// shown by progress indicators; Icon is an opaque token or sanitised SVG.
type Step struct {
	ID          string  `json:"id" yaml:"id"`
	Name        string  `json:"name" yaml:"name"`
	Icon        string  `json:"icon,omitempty" yaml:"icon,omitempty"`
	Description string  `json:"description,omitempty" yaml:"description,omitempty"`
	Schema      string  `json:"schema,omitempty" yaml:"schema,omitempty"`
	Fields      []Field `json:"fields,omitempty" yaml:"fields,omitempty"`
}

// SchemaRef returns the schema name bound to the step, defaulting to its ID.
func (s Step) SchemaRef() string {
	if ref := strings.TrimSpace(s.Schema); ref != "" {
		return ref
	}
	return s.ID
}

// Field looks up a field by name.
func (s Step) Field(name string) (Field, bool) {
	for _, field := range s.Fields {
		if field.Name == name {
			return field, true
		}
	}
	return Field{}, false
}

// FieldNames lists field names in declaration order.
func (s Step) FieldNames() []string {
	out := make([]string, 0, len(s.Fields))
	for _, field := range s.Fields {
		out = append(out, field.Name)
	}
	return out
}

// IsSVGIcon reports whether the icon holds inline markup rather than a token.
func (s Step) IsSVGIcon() bool {
	return strings.HasPrefix(strings.TrimSpace(s.Icon), "<")
}
