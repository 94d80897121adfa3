package render

import (
	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-formwizard/pkg/stepform"
)

// RenderOptions carry per-request data renderers use without touching the
// wizard state.
type RenderOptions struct {
	// Title heads the rendered form. Renderers fall back to the step name.
	Title string
	// Action is the base path navigation posts to; buttons append /next,
	// /previous and /reset.
	Action string
	// Values override the accumulated form data when re-displaying input the
	// validator rejected, so users do not lose what they typed.
	Values stepform.FormData
	// Errors holds per-field messages from the last failed Next, keyed by
	// field name. stepform.FormLevelKey carries messages without a field.
	Errors map[string]string
	// Hidden fields are emitted as hidden inputs in sorted order.
	Hidden map[string]string
	// Theme supplies design tokens; nil keeps the renderer defaults.
	Theme *theme.RendererConfig
}

// Value resolves the display value for field: Values first, then the view's
// accumulated data.
func (o RenderOptions) Value(view stepform.View, field string) string {
	if o.Values != nil {
		if _, ok := o.Values[field]; ok {
			return o.Values.String(field)
		}
	}
	return view.FormData.String(field)
}

// Checked is Value for checkbox fields.
func (o RenderOptions) Checked(view stepform.View, field string) bool {
	if o.Values != nil {
		if _, ok := o.Values[field]; ok {
			return o.Values.Bool(field)
		}
	}
	return view.FormData.Bool(field)
}
