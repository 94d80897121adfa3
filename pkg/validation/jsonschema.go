package validation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"

	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/goliatone/go-formwizard/pkg/stepform"
	"github.com/goliatone/go-formwizard/pkg/steps"
)

// ErrDefinitionRequired is returned when an engine is built without a form
// definition.
var ErrDefinitionRequired = errors.New("validation: form definition is required")

type compiledSchema struct {
	schema     *jsonschema.Schema
	required   []string
	properties []string
}

// JSONSchema validates steps against the Draft 2020-12 documents of a
// definition.
type JSONSchema struct {
	form    string
	schemas map[stepform.SchemaRef]compiledSchema
	fields  map[stepform.SchemaRef]map[string]steps.Field
	logger  zerolog.Logger
}

// NewJSONSchema compiles every schema referenced by def.
func NewJSONSchema(def *steps.Definition, options ...Option) (*JSONSchema, error) {
	if def == nil {
		return nil, ErrDefinitionRequired
	}
	cfg := newConfig(options)

	compiler := jsonschema.NewCompiler()
	locations := make(map[string]string)
	for _, ref := range def.SchemaRefs() {
		raw, err := def.SchemaJSON(ref)
		if err != nil {
			return nil, err
		}
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
		if err != nil {
			return nil, fmt.Errorf("validation: decode schema %q: %w", ref, err)
		}
		loc := schemaLocation(def.Name, ref)
		if err := compiler.AddResource(loc, doc); err != nil {
			return nil, fmt.Errorf("validation: register schema %q: %w", ref, err)
		}
		locations[ref] = loc
	}

	v := &JSONSchema{
		form:    def.Name,
		schemas: make(map[stepform.SchemaRef]compiledSchema, len(locations)),
		fields:  fieldIndex(def),
		logger:  cfg.logger,
	}
	for ref, loc := range locations {
		compiled, err := compiler.Compile(loc)
		if err != nil {
			return nil, fmt.Errorf("validation: compile schema %q: %w", ref, err)
		}
		doc, _ := def.Schema(ref)
		v.schemas[stepform.SchemaRef(ref)] = compiledSchema{
			schema:     compiled,
			required:   stringList(doc["required"]),
			properties: propertyNames(doc),
		}
	}
	return v, nil
}

// Check implements stepform.Validator.
func (v *JSONSchema) Check(ctx context.Context, ref stepform.SchemaRef, data stepform.FormData) (stepform.FormData, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	compiled, ok := v.schemas[ref]
	if !ok {
		return nil, fmt.Errorf("%w: %q", stepform.ErrUnknownSchema, ref)
	}

	instance, err := toInstance(data)
	if err != nil {
		return nil, fmt.Errorf("validation: encode %q input: %w", ref, err)
	}

	issues := newIssueSet(ref, v.fields[ref])
	issues.checkRequired(compiled.required, data)

	if err := compiled.schema.Validate(instance); err != nil {
		var verr *jsonschema.ValidationError
		if !errors.As(err, &verr) {
			return nil, fmt.Errorf("validation: jsonschema %q: %w", ref, err)
		}
		collectSchemaErrors(verr, issues)
	}

	if !issues.empty() {
		failure := issues.failure()
		v.logger.Debug().Str("form", v.form).Str("schema", string(ref)).Strs("fields", failure.FieldNames()).Msg("jsonschema check failed")
		return nil, failure
	}
	return declared(data, compiled.properties), nil
}

func collectSchemaErrors(verr *jsonschema.ValidationError, issues *issueSet) {
	if len(verr.Causes) > 0 {
		for _, cause := range verr.Causes {
			collectSchemaErrors(cause, issues)
		}
		return
	}
	if verr.ErrorKind == nil {
		return
	}
	keyword := ""
	if path := verr.ErrorKind.KeywordPath(); len(path) > 0 {
		keyword = path[len(path)-1]
	}
	if keyword == "required" {
		// checkRequired already covers missing and blank values.
		return
	}
	issues.add(topLevelField(verr.InstanceLocation), keyword)
}

// toInstance converts form data into the JSON value model the compiler
// validates (json.Number for numbers).
func toInstance(data stepform.FormData) (any, error) {
	if data == nil {
		data = stepform.FormData{}
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return jsonschema.UnmarshalJSON(bytes.NewReader(raw))
}

func schemaLocation(form, ref string) string {
	if form == "" {
		form = "form"
	}
	return "https://stepform.local/schemas/" + url.PathEscape(form) + "/" + url.PathEscape(ref) + ".json"
}
