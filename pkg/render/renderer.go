package render

import (
	"context"

	"github.com/goliatone/go-formwizard/pkg/stepform"
)

// Renderer presents the current step of a wizard view (HTML, terminal text,
// JSON). Renderers only read the view; navigation goes through the Wizard.
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, view stepform.View, options RenderOptions) ([]byte, error)
}
