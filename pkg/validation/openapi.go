package validation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/rs/zerolog"

	"github.com/goliatone/go-formwizard/pkg/stepform"
	"github.com/goliatone/go-formwizard/pkg/steps"
)

// OpenAPI validates steps against component schemas of an OpenAPI 3
// document. Each step's schema ref names a component schema.
type OpenAPI struct {
	form    string
	schemas map[stepform.SchemaRef]*openapi3.Schema
	fields  map[stepform.SchemaRef]map[string]steps.Field
	logger  zerolog.Logger
}

// NewOpenAPI loads raw (JSON or YAML), validates the document and resolves a
// component schema for every schema ref in def.
func NewOpenAPI(ctx context.Context, raw []byte, def *steps.Definition, options ...Option) (*OpenAPI, error) {
	if def == nil {
		return nil, ErrDefinitionRequired
	}
	if len(raw) == 0 {
		return nil, errors.New("validation: openapi document is empty")
	}
	cfg := newConfig(options)

	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("validation: load openapi document: %w", err)
	}
	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("validation: invalid openapi document: %w", err)
	}
	if doc.Components == nil {
		return nil, errors.New("validation: openapi document has no components")
	}

	v := &OpenAPI{
		form:    def.Name,
		schemas: make(map[stepform.SchemaRef]*openapi3.Schema),
		fields:  fieldIndex(def),
		logger:  cfg.logger,
	}
	for _, ref := range def.SchemaRefs() {
		schemaRef := doc.Components.Schemas[ref]
		if schemaRef == nil || schemaRef.Value == nil {
			return nil, fmt.Errorf("validation: openapi document has no component schema %q", ref)
		}
		v.schemas[stepform.SchemaRef(ref)] = schemaRef.Value
	}
	return v, nil
}

// Check implements stepform.Validator.
func (v *OpenAPI) Check(ctx context.Context, ref stepform.SchemaRef, data stepform.FormData) (stepform.FormData, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	schema, ok := v.schemas[ref]
	if !ok {
		return nil, fmt.Errorf("%w: %q", stepform.ErrUnknownSchema, ref)
	}

	value, err := toPlainJSON(data)
	if err != nil {
		return nil, fmt.Errorf("validation: encode %q input: %w", ref, err)
	}

	issues := newIssueSet(ref, v.fields[ref])
	issues.checkRequired(schema.Required, data)

	if err := schema.VisitJSON(value, openapi3.MultiErrors()); err != nil {
		if !collectOpenAPIErrors(err, issues) {
			return nil, fmt.Errorf("validation: openapi %q: %w", ref, err)
		}
	}

	if !issues.empty() {
		failure := issues.failure()
		v.logger.Debug().Str("form", v.form).Str("schema", string(ref)).Strs("fields", failure.FieldNames()).Msg("openapi check failed")
		return nil, failure
	}

	properties := make([]string, 0, len(schema.Properties))
	for name := range schema.Properties {
		properties = append(properties, name)
	}
	return declared(data, properties), nil
}

// collectOpenAPIErrors records schema errors and reports whether err held
// only schema errors.
func collectOpenAPIErrors(err error, issues *issueSet) bool {
	switch e := err.(type) {
	case openapi3.MultiError:
		handled := true
		for _, inner := range e {
			if !collectOpenAPIErrors(inner, issues) {
				handled = false
			}
		}
		return handled
	case *openapi3.SchemaError:
		if e.SchemaField != "required" {
			issues.add(topLevelField(e.JSONPointer()), e.SchemaField)
		}
		return true
	}

	var serr *openapi3.SchemaError
	if errors.As(err, &serr) {
		return collectOpenAPIErrors(serr, issues)
	}
	return false
}

// toPlainJSON converts form data into the map[string]any/float64 model
// kin-openapi visits.
func toPlainJSON(data stepform.FormData) (map[string]any, error) {
	if data == nil {
		return map[string]any{}, nil
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}
