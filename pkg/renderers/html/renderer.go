// Package html renders the current step of a wizard as a server-side HTML
// form using pongo2 templates.
package html

import (
	"context"
	"errors"
	"io/fs"
	"strings"

	"github.com/flosch/pongo2/v6"
	"github.com/rs/zerolog"

	"github.com/goliatone/go-formwizard/pkg/progress"
	"github.com/goliatone/go-formwizard/pkg/render"
	"github.com/goliatone/go-formwizard/pkg/stepform"
	"github.com/goliatone/go-formwizard/pkg/steps"
)

const (
	stepTemplate      = "step.tpl"
	submittedTemplate = "submitted.tpl"
	maskedValue       = "••••"
)

// Renderer implements render.Renderer for browsers.
type Renderer struct {
	engine    *engine
	overrides fs.FS
	logger    zerolog.Logger
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the renderer from the embedded templates plus overrides.
func New(options ...Option) (*Renderer, error) {
	r := &Renderer{logger: zerolog.Nop()}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}

	eng, err := newEngine(r.overrides, TemplatesFS())
	if err != nil {
		return nil, err
	}
	r.engine = eng
	return r, nil
}

// Name reports the renderer identifier.
func (r *Renderer) Name() string {
	return "html"
}

// ContentType reports the media type of Render output.
func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

// Render produces the page for view: the current step form while editing,
// the confirmation page once submitted.
func (r *Renderer) Render(ctx context.Context, view stepform.View, opts render.RenderOptions) ([]byte, error) {
	if ctx == nil {
		return nil, errors.New("html: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(view.Steps) == 0 {
		return nil, errors.New("html: view has no steps")
	}

	data := r.baseContext(view, opts)
	name := stepTemplate
	if view.IsSubmitted {
		name = submittedTemplate
		data["summary"] = summary(view)
	} else {
		data = r.stepContext(data, view, opts)
	}

	out, err := r.engine.render(name, data)
	if err != nil {
		r.logger.Error().Err(err).Str("template", name).Msg("html render failed")
		return nil, err
	}
	return out, nil
}

func (r *Renderer) baseContext(view stepform.View, opts render.RenderOptions) pongo2.Context {
	model := progress.FromView(view)
	items := make([]map[string]any, 0, len(model.Items))
	for _, item := range model.Items {
		entry := map[string]any{
			"number": item.Number(),
			"id":     item.ID,
			"name":   item.Name,
			"status": string(item.Status),
			"icon":   item.Icon,
			"svg":    "",
		}
		if strings.HasPrefix(item.Icon, "<") {
			entry["svg"] = steps.SanitizeIcon(item.Icon)
			entry["icon"] = ""
		}
		items = append(items, entry)
	}

	title := strings.TrimSpace(opts.Title)
	if title == "" {
		title = view.Step().Name
	}
	action := strings.TrimRight(opts.Action, "/")
	if action == "" {
		action = "/wizard"
	}

	data := pongo2.Context{
		"title":    title,
		"action":   action,
		"css_vars": render.CSSVarsStyle(opts.Theme),
		"theme":    "",
		"variant":  "",
		"progress": map[string]any{
			"items":   items,
			"percent": model.Percent,
			"title":   model.Title(),
		},
	}
	if opts.Theme != nil {
		data["theme"] = opts.Theme.Theme
		data["variant"] = opts.Theme.Variant
	}
	return data
}

func (r *Renderer) stepContext(data pongo2.Context, view stepform.View, opts render.RenderOptions) pongo2.Context {
	step := view.Step()
	mapped := render.MapErrors(step, opts.Errors)

	fields := make([]map[string]any, 0, len(step.Fields))
	for _, field := range step.Fields {
		fields = append(fields, fieldContext(field, view, opts, mapped.Field(field.Name)))
	}

	hidden := render.MergeHiddenFields(opts.Hidden, render.Hidden(render.StepField, step.ID))
	hiddenFields := make([]map[string]any, 0, len(hidden))
	for _, h := range render.SortedHiddenFields(hidden) {
		hiddenFields = append(hiddenFields, map[string]any{"name": h.Name, "value": h.Value})
	}

	data["step"] = map[string]any{
		"id":          step.ID,
		"name":        step.Name,
		"description": step.Description,
	}
	data["fields"] = fields
	data["form_errors"] = mapped.Form
	data["hidden_fields"] = hiddenFields
	data["is_first"] = view.IsFirstStep
	data["is_last"] = view.IsLastStep
	return data
}

func fieldContext(field steps.Field, view stepform.View, opts render.RenderOptions, message string) map[string]any {
	kind := field.EffectiveKind()
	value := opts.Value(view, field.Name)
	if kind == steps.FieldPassword {
		// Secrets are never echoed back into the page.
		value = ""
	}

	entry := map[string]any{
		"id":          "field-" + field.Name,
		"name":        field.Name,
		"label":       field.DisplayLabel(),
		"kind":        string(kind),
		"input_type":  inputType(kind),
		"placeholder": field.Placeholder,
		"help":        field.Help,
		"required":    field.Required,
		"value":       value,
		"checked":     opts.Checked(view, field.Name),
		"error":       message,
	}
	if len(field.Options) > 0 {
		options := make([]map[string]any, 0, len(field.Options))
		for _, opt := range field.Options {
			options = append(options, map[string]any{
				"value":    opt.Value,
				"label":    opt.DisplayLabel(),
				"selected": opt.Value == value,
			})
		}
		entry["options"] = options
	}
	return entry
}

func inputType(kind steps.FieldKind) string {
	switch kind {
	case steps.FieldEmail, steps.FieldTel, steps.FieldPassword:
		return string(kind)
	default:
		return "text"
	}
}

// summary lists every collected value grouped by step for the confirmation
// page.
func summary(view stepform.View) []map[string]any {
	out := make([]map[string]any, 0, len(view.Steps))
	for _, step := range view.Steps {
		rows := make([]map[string]any, 0, len(step.Fields))
		for _, field := range step.Fields {
			if _, ok := view.FormData[field.Name]; !ok {
				continue
			}
			value := view.FormData.String(field.Name)
			if field.EffectiveKind() == steps.FieldPassword {
				value = maskedValue
			}
			if field.EffectiveKind() == steps.FieldSelect {
				for _, opt := range field.Options {
					if opt.Value == value {
						value = opt.DisplayLabel()
						break
					}
				}
			}
			rows = append(rows, map[string]any{"label": field.DisplayLabel(), "value": value})
		}
		out = append(out, map[string]any{"name": step.Name, "rows": rows})
	}
	return out
}
