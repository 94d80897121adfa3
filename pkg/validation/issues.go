package validation

import (
	"strings"

	"github.com/goliatone/go-formwizard/pkg/stepform"
	"github.com/goliatone/go-formwizard/pkg/steps"
)

// keywordRank orders keywords so each field reports its most basic problem:
// a missing value before a wrong type before a length or format mismatch.
var keywordRank = map[string]int{
	"required":  0,
	"type":      1,
	"minLength": 2,
	"maxLength": 3,
	"pattern":   4,
	"enum":      5,
}

func rank(keyword string) int {
	if r, ok := keywordRank[keyword]; ok {
		return r
	}
	return len(keywordRank)
}

// normaliseKeyword maps engine keywords onto the message vocabulary of
// steps.Field.MessageFor.
func normaliseKeyword(keyword string) string {
	switch keyword {
	case "const":
		// Generated schemas express a required checkbox as const true.
		return "required"
	case "minimum", "exclusiveMinimum", "maximum", "exclusiveMaximum", "format":
		return "pattern"
	default:
		return keyword
	}
}

// issueSet keeps the highest-priority keyword per field for one check.
type issueSet struct {
	schema stepform.SchemaRef
	fields map[string]steps.Field
	best   map[string]string
}

func newIssueSet(schema stepform.SchemaRef, fields map[string]steps.Field) *issueSet {
	return &issueSet{schema: schema, fields: fields, best: map[string]string{}}
}

func (s *issueSet) add(field, keyword string) {
	if field == "" {
		field = stepform.FormLevelKey
	}
	keyword = normaliseKeyword(keyword)
	if current, ok := s.best[field]; ok && rank(current) <= rank(keyword) {
		return
	}
	s.best[field] = keyword
}

func (s *issueSet) empty() bool {
	return len(s.best) == 0
}

func (s *issueSet) failure() *stepform.ValidationFailure {
	messages := make(map[string]string, len(s.best))
	for name, keyword := range s.best {
		field, ok := s.fields[name]
		if !ok {
			field = steps.Field{Name: name}
			if name == stepform.FormLevelKey {
				field.Label = "Form"
			}
		}
		messages[name] = field.MessageFor(keyword)
	}
	return stepform.NewValidationFailure(s.schema, messages)
}

// checkRequired flags required names that are absent, nil or blank strings.
func (s *issueSet) checkRequired(required []string, data stepform.FormData) {
	for _, name := range required {
		value, ok := data[name]
		if !ok || value == nil {
			s.add(name, "required")
			continue
		}
		if str, isString := value.(string); isString && strings.TrimSpace(str) == "" {
			s.add(name, "required")
		}
	}
}

// topLevelField returns the property a nested location belongs to.
func topLevelField(location []string) string {
	for _, segment := range location {
		if segment = strings.TrimSpace(segment); segment != "" {
			return segment
		}
	}
	return ""
}

// fieldIndex collects the field metadata of every step bound to a schema ref.
func fieldIndex(def *steps.Definition) map[stepform.SchemaRef]map[string]steps.Field {
	out := make(map[stepform.SchemaRef]map[string]steps.Field)
	for _, ref := range def.SchemaRefs() {
		fields := map[string]steps.Field{}
		for _, step := range def.StepsForSchema(ref) {
			for _, field := range step.Fields {
				if _, exists := fields[field.Name]; !exists {
					fields[field.Name] = field
				}
			}
		}
		out[stepform.SchemaRef(ref)] = fields
	}
	return out
}

// declared keeps the keys the schema lists as properties. A schema without
// properties accepts the input as-is.
func declared(data stepform.FormData, properties []string) stepform.FormData {
	if len(properties) == 0 {
		return data.Clone()
	}
	out := make(stepform.FormData, len(properties))
	for _, name := range properties {
		if value, ok := data[name]; ok {
			out[name] = value
		}
	}
	return out
}

func stringList(raw any) []string {
	switch v := raw.(type) {
	case []string:
		return append([]string(nil), v...)
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

func propertyNames(doc map[string]any) []string {
	props, ok := doc["properties"].(map[string]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(props))
	for name := range props {
		out = append(out, name)
	}
	return out
}
