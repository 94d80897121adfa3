package render_test

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-formwizard/pkg/render"
	"github.com/goliatone/go-formwizard/pkg/stepform"
	"github.com/goliatone/go-formwizard/pkg/steps"
)

var personal = steps.Step{
	ID: "personal",
	Fields: []steps.Field{
		{Name: "firstName"},
		{Name: "email"},
	},
}

func TestMapErrorsNormalisesPaths(t *testing.T) {
	mapped := render.MapErrors(personal, map[string]string{
		"firstName":        "First name is required",
		"/body/email":      "Invalid email address",
		"_form":            "Something went wrong",
		"unknown":          "Falls back to form",
		"$.data.firstName": "ignored duplicate key",
	})

	if got := mapped.Field("email"); got != "Invalid email address" {
		t.Fatalf("expected pointer path mapped to email, got %q", got)
	}
	if _, ok := mapped.Fields["firstName"]; !ok {
		t.Fatalf("expected firstName message")
	}
	want := []string{"Something went wrong", "Falls back to form"}
	if diff := cmp.Diff(want, mapped.Form); diff != "" {
		t.Fatalf("form messages mismatch (-want +got):\n%s", diff)
	}
}

func TestMapFailureUsesCurrentStep(t *testing.T) {
	view := stepform.View{Steps: []steps.Step{personal}}
	failure := stepform.NewValidationFailure("personal", map[string]string{"email": "bad"})

	mapped := render.MapFailure(view, failure)
	if mapped.Field("email") != "bad" || len(mapped.Form) != 0 {
		t.Fatalf("unexpected mapping %+v", mapped)
	}
	if !render.MapFailure(view, nil).Empty() {
		t.Fatalf("nil failure must map to nothing")
	}
}

func TestRenderOptionsValuePrefersDraft(t *testing.T) {
	view := stepform.View{FormData: stepform.FormData{"firstName": "Ada", "agree": true}}
	opts := render.RenderOptions{Values: stepform.FormData{"firstName": "A"}}

	if got := opts.Value(view, "firstName"); got != "A" {
		t.Fatalf("expected draft value, got %q", got)
	}
	if !opts.Checked(view, "agree") {
		t.Fatalf("expected accumulated checkbox value")
	}
}

func TestHiddenFieldsSorted(t *testing.T) {
	merged := render.MergeHiddenFields(map[string]string{"b": "2"}, render.Hidden(render.StepField, "personal"), render.Hidden(" ", "x"))
	got := render.SortedHiddenFields(merged)
	want := []render.HiddenField{{Name: render.StepField, Value: "personal"}, {Name: "b", Value: "2"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("hidden fields mismatch (-want +got):\n%s", diff)
	}
}

func TestThemeFromSelection(t *testing.T) {
	selection := &theme.Selection{
		Theme:   "acme",
		Variant: "dark",
		Manifest: &theme.Manifest{
			Name:   "acme",
			Tokens: map[string]string{"brand": "#123456", "radius": "4px"},
			Variants: map[string]theme.Variant{
				"dark": {Tokens: map[string]string{"brand": "#654321"}},
			},
		},
	}
	cfg := render.ThemeFromSelection(selection)
	if cfg.Tokens["brand"] != "#654321" {
		t.Fatalf("variant token must win, got %q", cfg.Tokens["brand"])
	}
	if got := render.CSSVarsStyle(cfg); got != "--brand: #654321; --radius: 4px;" {
		t.Fatalf("unexpected style %q", got)
	}
	if render.ThemeFromSelection(nil) != nil {
		t.Fatalf("nil selection must yield nil config")
	}
}

type namedRenderer string

func (n namedRenderer) Name() string        { return string(n) }
func (n namedRenderer) ContentType() string { return "text/plain" }
func (n namedRenderer) Render(context.Context, stepform.View, render.RenderOptions) ([]byte, error) {
	return []byte(n), nil
}

func TestRegistry(t *testing.T) {
	registry := render.NewRegistry()
	registry.MustRegister(namedRenderer("html"))
	registry.MustRegister(namedRenderer("json"))

	if err := registry.Register(namedRenderer("html")); err == nil {
		t.Fatalf("expected duplicate registration error")
	}
	if err := registry.Register(nil); err == nil {
		t.Fatalf("expected nil renderer error")
	}
	def, err := registry.Get("")
	if err != nil || def.Name() != "html" {
		t.Fatalf("expected first renderer as default, got %v %v", def, err)
	}
	if _, err := registry.Get("pdf"); err == nil {
		t.Fatalf("expected unknown renderer error")
	}
	if diff := cmp.Diff([]string{"html", "json"}, registry.List()); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}
}
