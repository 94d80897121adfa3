package steps

import (
	"encoding/json"
	"fmt"
)

// Definition is one loaded form: its step table plus the JSON Schema
// documents bound to each step's schema ref.
type Definition struct {
	Name    string
	Title   string
	Source  string
	table   Table
	schemas map[string]map[string]any
}

// NewDefinition wraps a table with optional explicit schema documents. Steps
// whose ref has no explicit document get one generated from their fields.
func NewDefinition(name string, table Table, schemas map[string]map[string]any) (*Definition, error) {
	if table.Len() == 0 {
		return nil, ErrEmptyTable
	}
	def := &Definition{
		Name:    name,
		table:   table,
		schemas: make(map[string]map[string]any, table.Len()),
	}
	for ref, doc := range schemas {
		def.schemas[ref] = doc
	}
	if len(schemas) > 0 {
		for _, step := range table.steps {
			if _, ok := schemas[step.SchemaRef()]; !ok {
				return nil, fmt.Errorf("steps: form %q step %q references unknown schema %q", name, step.ID, step.SchemaRef())
			}
		}
	}
	for _, step := range table.steps {
		if _, ok := def.schemas[step.SchemaRef()]; !ok {
			def.schemas[step.SchemaRef()] = GenerateSchema(step)
		}
	}
	return def, nil
}

// Table returns the immutable step table.
func (d *Definition) Table() Table {
	return d.table
}

// Schema returns the schema document for ref.
func (d *Definition) Schema(ref string) (map[string]any, bool) {
	doc, ok := d.schemas[ref]
	return doc, ok
}

// SchemaJSON encodes the schema document for ref.
func (d *Definition) SchemaJSON(ref string) ([]byte, error) {
	doc, ok := d.schemas[ref]
	if !ok {
		return nil, fmt.Errorf("steps: form %q has no schema %q", d.Name, ref)
	}
	return json.Marshal(doc)
}

// StepsForSchema lists the steps bound to ref, in table order.
func (d *Definition) StepsForSchema(ref string) []Step {
	var out []Step
	for _, step := range d.table.steps {
		if step.SchemaRef() == ref {
			out = append(out, step)
		}
	}
	return out
}

// SchemaRefs lists the distinct refs in table order.
func (d *Definition) SchemaRefs() []string {
	seen := make(map[string]struct{}, d.table.Len())
	var out []string
	for _, step := range d.table.steps {
		ref := step.SchemaRef()
		if _, ok := seen[ref]; ok {
			continue
		}
		seen[ref] = struct{}{}
		out = append(out, ref)
	}
	return out
}

// GenerateSchema derives a Draft 2020-12 object schema from a step's field
// constraints. Required text fields get minLength 1 so empty strings fail.
func GenerateSchema(step Step) map[string]any {
	properties := make(map[string]any, len(step.Fields))
	required := make([]any, 0, len(step.Fields))

	for _, field := range step.Fields {
		prop := map[string]any{}
		if field.EffectiveKind() == FieldCheckbox {
			prop["type"] = "boolean"
			if field.Required {
				prop["const"] = true
			}
		} else {
			prop["type"] = "string"
			minLength := 0
			if field.MinLength != nil {
				minLength = *field.MinLength
			}
			if field.Required && minLength < 1 {
				minLength = 1
			}
			if minLength > 0 {
				prop["minLength"] = minLength
			}
			if field.MaxLength != nil {
				prop["maxLength"] = *field.MaxLength
			}
			if field.Pattern != "" {
				prop["pattern"] = field.Pattern
			}
			if values := field.OptionValues(); len(values) > 0 {
				enum := make([]any, 0, len(values))
				for _, v := range values {
					enum = append(enum, v)
				}
				prop["enum"] = enum
			}
		}
		properties[field.Name] = prop
		if field.Required {
			required = append(required, field.Name)
		}
	}

	doc := map[string]any{
		"$schema":    "https://json-schema.org/draft/2020-12/schema",
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		doc["required"] = required
	}
	return doc
}
