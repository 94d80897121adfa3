package validation

import (
	"context"
	"fmt"
	"regexp"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/goliatone/go-formwizard/pkg/stepform"
	"github.com/goliatone/go-formwizard/pkg/steps"
)

// Rules validates steps straight from their field constraints. Explicit
// schema documents in the definition are not consulted.
type Rules struct {
	form   string
	rules  map[stepform.SchemaRef][]fieldRules
	fields map[stepform.SchemaRef]map[string]steps.Field
	logger zerolog.Logger
}

type fieldRules struct {
	name     string
	required bool
	checkbox bool
	minLen   *int
	maxLen   *int
	pattern  *regexp.Regexp
	enum     map[string]struct{}
}

// NewRules compiles the field constraints of every step in def.
func NewRules(def *steps.Definition, options ...Option) (*Rules, error) {
	if def == nil {
		return nil, ErrDefinitionRequired
	}
	cfg := newConfig(options)

	v := &Rules{
		form:   def.Name,
		rules:  make(map[stepform.SchemaRef][]fieldRules),
		fields: fieldIndex(def),
		logger: cfg.logger,
	}
	for _, ref := range def.SchemaRefs() {
		seen := map[string]struct{}{}
		var list []fieldRules
		for _, step := range def.StepsForSchema(ref) {
			for _, field := range step.Fields {
				if _, dup := seen[field.Name]; dup {
					continue
				}
				seen[field.Name] = struct{}{}
				rules, err := collectFieldRules(field)
				if err != nil {
					return nil, fmt.Errorf("validation: step %q field %q: %w", step.ID, field.Name, err)
				}
				list = append(list, rules)
			}
		}
		v.rules[stepform.SchemaRef(ref)] = list
	}
	return v, nil
}

func collectFieldRules(field steps.Field) (fieldRules, error) {
	rules := fieldRules{
		name:     field.Name,
		required: field.Required,
		checkbox: field.EffectiveKind() == steps.FieldCheckbox,
		minLen:   field.MinLength,
		maxLen:   field.MaxLength,
	}
	if field.Pattern != "" {
		re, err := regexp.Compile(field.Pattern)
		if err != nil {
			return fieldRules{}, fmt.Errorf("compile pattern: %w", err)
		}
		rules.pattern = re
	}
	if values := field.OptionValues(); len(values) > 0 {
		rules.enum = make(map[string]struct{}, len(values))
		for _, value := range values {
			rules.enum[value] = struct{}{}
		}
	}
	return rules, nil
}

// Check implements stepform.Validator.
func (v *Rules) Check(ctx context.Context, ref stepform.SchemaRef, data stepform.FormData) (stepform.FormData, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	list, ok := v.rules[ref]
	if !ok {
		return nil, fmt.Errorf("%w: %q", stepform.ErrUnknownSchema, ref)
	}

	issues := newIssueSet(ref, v.fields[ref])
	names := make([]string, 0, len(list))
	var required []string
	for _, rules := range list {
		names = append(names, rules.name)
		if rules.required {
			required = append(required, rules.name)
		}
		value, present := data[rules.name]
		if !present || value == nil {
			continue
		}
		if keyword := rules.validate(value); keyword != "" {
			issues.add(rules.name, keyword)
		}
	}
	issues.checkRequired(required, data)

	if !issues.empty() {
		failure := issues.failure()
		v.logger.Debug().Str("form", v.form).Str("schema", string(ref)).Strs("fields", failure.FieldNames()).Msg("rules check failed")
		return nil, failure
	}
	return declared(data, names), nil
}

// validate returns the first failing keyword for a present value.
func (r fieldRules) validate(value any) string {
	if r.checkbox {
		checked, ok := value.(bool)
		if !ok {
			return "type"
		}
		if r.required && !checked {
			return "required"
		}
		return ""
	}

	str, ok := value.(string)
	if !ok {
		return "type"
	}
	length := utf8.RuneCountInString(str)
	if r.required && length == 0 {
		return "required"
	}
	if r.minLen != nil && length < *r.minLen {
		return "minLength"
	}
	if r.maxLen != nil && length > *r.maxLen {
		return "maxLength"
	}
	if r.pattern != nil && !r.pattern.MatchString(str) {
		return "pattern"
	}
	if r.enum != nil {
		if _, allowed := r.enum[str]; !allowed {
			return "enum"
		}
	}
	return ""
}
