package server

import (
	"net/http"
	"strings"

	"github.com/goliatone/go-formwizard/pkg/render"
	"github.com/goliatone/go-formwizard/pkg/stepform"
	"github.com/goliatone/go-formwizard/pkg/steps"
)

// decodeStep reads the posted values for the fields of step. Checkboxes are
// booleans whether or not they were sent; other fields are kept as strings
// and left out when absent.
func decodeStep(r *http.Request, step steps.Step) (stepform.FormData, string, error) {
	if err := r.ParseForm(); err != nil {
		return nil, "", err
	}

	data := stepform.FormData{}
	for _, field := range step.Fields {
		values, present := r.PostForm[field.Name]
		if field.EffectiveKind() == steps.FieldCheckbox {
			data[field.Name] = present && checkboxValue(values)
			continue
		}
		if !present || len(values) == 0 {
			continue
		}
		data[field.Name] = values[0]
	}
	return data, r.PostForm.Get(render.StepField), nil
}

func checkboxValue(values []string) bool {
	for _, v := range values {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "on", "1", "yes":
			return true
		}
	}
	return false
}
