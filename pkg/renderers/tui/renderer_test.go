package tui

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formwizard/pkg/render"
	"github.com/goliatone/go-formwizard/pkg/stepform"
	"github.com/goliatone/go-formwizard/pkg/steps"
	"github.com/goliatone/go-formwizard/pkg/testsupport"
	"github.com/goliatone/go-formwizard/pkg/validation"
)

// stubDriver answers prompts from per-style queues and records what it was
// asked.
type stubDriver struct {
	inputs       []string
	passwords    []string
	textAreas    []string
	confirm      []bool
	selectIdx    []int
	infoMessages []string
	inputCfgs    []TextPrompt
	secretCfgs   []TextPrompt
	selectCfgs   []ChoicePrompt
}

func (s *stubDriver) Text(_ context.Context, p TextPrompt) (string, error) {
	queue := &s.inputs
	switch p.Style {
	case TextSecret:
		s.secretCfgs = append(s.secretCfgs, p)
		queue = &s.passwords
	case TextMultiline:
		queue = &s.textAreas
	default:
		s.inputCfgs = append(s.inputCfgs, p)
	}
	if len(*queue) == 0 {
		return "", fmt.Errorf("no answer scripted for %q", p.Message)
	}
	val := (*queue)[0]
	*queue = (*queue)[1:]
	return val, nil
}

func (s *stubDriver) Confirm(_ context.Context, p ConfirmPrompt) (bool, error) {
	if len(s.confirm) == 0 {
		return false, fmt.Errorf("no confirm scripted for %q", p.Message)
	}
	val := s.confirm[0]
	s.confirm = s.confirm[1:]
	return val, nil
}

func (s *stubDriver) Choose(_ context.Context, p ChoicePrompt) (int, error) {
	s.selectCfgs = append(s.selectCfgs, p)
	if len(s.selectIdx) == 0 {
		return -1, errors.New("no choice scripted")
	}
	val := s.selectIdx[0]
	s.selectIdx = s.selectIdx[1:]
	return val, nil
}

func (s *stubDriver) Notify(_ context.Context, msg string) error {
	s.infoMessages = append(s.infoMessages, msg)
	return nil
}

func (s *stubDriver) sawInfo(substr string) bool {
	for _, msg := range s.infoMessages {
		if strings.Contains(msg, substr) {
			return true
		}
	}
	return false
}

func checkoutWizard(t *testing.T) *stepform.Wizard {
	t.Helper()
	rules, err := validation.NewRules(testsupport.Checkout(t))
	if err != nil {
		t.Fatalf("rules: %v", err)
	}
	return testsupport.CheckoutWizard(t, rules)
}

func singleStepView(t *testing.T, fields ...steps.Field) stepform.View {
	t.Helper()
	w, err := stepform.New(steps.MustTable(steps.Step{ID: "only", Name: "Only", Fields: fields}), stepform.AcceptAll)
	if err != nil {
		t.Fatalf("wizard: %v", err)
	}
	return w.View()
}

func TestRunCompletesCheckoutAfterFixingErrors(t *testing.T) {
	driver := &stubDriver{
		inputs: []string{
			"A", "Lovelace", "ada@example.com", "01234567890",
			"Ada", "Lovelace", "ada@example.com", "01234567890",
			"Engines Ltd", "Analyst", "Computing",
			"4111111111111111", "Ada Lovelace", "1226",
		},
		passwords: []string{"123"},
		selectIdx: []int{0, 0, 1, 0, 0},
	}
	r, err := New(WithPromptDriver(driver), WithTheme(Theme{ErrorPrefix: "! "}))
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}

	out, err := r.Run(context.Background(), checkoutWizard(t))
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if !driver.sawInfo("! First name must be at least 2 characters") {
		t.Fatalf("expected validation message, got %v", driver.infoMessages)
	}
	if got := driver.inputCfgs[4].Default; got != "A" {
		t.Fatalf("expected rejected answer as default, got %q", got)
	}

	var got map[string]any
	if err := json.Unmarshal(out, &got); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	want := map[string]any{
		"firstName":  "Ada",
		"lastName":   "Lovelace",
		"email":      "ada@example.com",
		"phone":      "01234567890",
		"company":    "Engines Ltd",
		"position":   "Analyst",
		"experience": "3-5",
		"industry":   "Computing",
		"cardNumber": "4111111111111111",
		"cardHolder": "Ada Lovelace",
		"expiryDate": "1226",
		"cvv":        "123",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("output mismatch (-want +got):\n%s", diff)
	}

	if len(driver.secretCfgs) != 1 || driver.secretCfgs[0].Default != "" {
		t.Fatalf("expected one secret prompt without default, got %+v", driver.secretCfgs)
	}

	actions := driver.selectCfgs[len(driver.selectCfgs)-1].Options
	if diff := cmp.Diff([]string{"Submit", "Back", "Cancel"}, actions); diff != "" {
		t.Fatalf("last step actions mismatch (-want +got):\n%s", diff)
	}
}

func TestRunBackKeepsDataAndCancelAborts(t *testing.T) {
	driver := &stubDriver{
		inputs: []string{
			"Ada", "Lovelace", "ada@example.com", "01234567890",
			"Engines Ltd", "Analyst", "Computing",
			"Ada", "Lovelace", "ada@example.com", "01234567890",
		},
		selectIdx: []int{0, 0, 1, 1},
	}
	r, err := New(WithPromptDriver(driver))
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	w := checkoutWizard(t)

	_, err = r.Run(context.Background(), w)
	if !errors.Is(err, ErrAborted) {
		t.Fatalf("expected ErrAborted, got %v", err)
	}
	if got := driver.inputCfgs[7].Default; got != "Ada" {
		t.Fatalf("expected collected value as default after Back, got %q", got)
	}
	view := w.View()
	if view.CurrentStep != 0 || len(view.FormData) != 4 {
		t.Fatalf("unexpected wizard state: step %d data %v", view.CurrentStep, view.FormData)
	}
	if diff := cmp.Diff([]string{"Continue", "Cancel"}, driver.selectCfgs[len(driver.selectCfgs)-1].Options); diff != "" {
		t.Fatalf("first step actions mismatch (-want +got):\n%s", diff)
	}
}

func TestRunRequiresWizard(t *testing.T) {
	r, err := New(WithPromptDriver(&stubDriver{}))
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	if _, err := r.Run(context.Background(), nil); !errors.Is(err, ErrWizardRequired) {
		t.Fatalf("expected ErrWizardRequired, got %v", err)
	}
}

func TestRenderRemoteOptions(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"items":[{"id":"fin","name":"Finance"},{"id":"tech","name":"Technology"}]}}`))
	}))
	defer srv.Close()

	driver := &stubDriver{selectIdx: []int{1, 0}}
	r, err := New(WithPromptDriver(driver), WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	view := singleStepView(t, steps.Field{
		Name:        "industry",
		Kind:        steps.FieldSelect,
		Required:    true,
		OptionsFrom: &steps.OptionsSource{URL: srv.URL, Results: "data.items", Value: "id", Label: "name"},
	})

	out, err := r.Render(context.Background(), view, render.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if string(out) != `{"industry":"tech"}` {
		t.Fatalf("unexpected output %s", out)
	}
	if diff := cmp.Diff([]string{"Finance", "Technology"}, driver.selectCfgs[0].Options); diff != "" {
		t.Fatalf("options mismatch (-want +got):\n%s", diff)
	}

	if _, err := r.Render(context.Background(), view, render.RenderOptions{}); err != nil {
		t.Fatalf("second render: %v", err)
	}
	if hits.Load() != 1 {
		t.Fatalf("expected cached options, got %d requests", hits.Load())
	}
}

func TestRenderRemoteOptionsFallBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	driver := &stubDriver{selectIdx: []int{1}}
	r, err := New(WithPromptDriver(driver), WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	view := singleStepView(t, steps.Field{
		Name:        "plan",
		Kind:        steps.FieldSelect,
		Options:     []steps.Option{{Value: "free"}, {Value: "pro"}},
		OptionsFrom: &steps.OptionsSource{URL: srv.URL},
	})

	out, err := r.Render(context.Background(), view, render.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if string(out) != `{"plan":"free"}` {
		t.Fatalf("unexpected output %s", out)
	}
	if diff := cmp.Diff([]string{"(none)", "free", "pro"}, driver.selectCfgs[0].Options); diff != "" {
		t.Fatalf("options mismatch (-want +got):\n%s", diff)
	}
	if !driver.sawInfo("could not be loaded") {
		t.Fatalf("expected fetch warning, got %v", driver.infoMessages)
	}
}

func TestRenderOutputFormats(t *testing.T) {
	fields := []steps.Field{
		{Name: "name"},
		{Name: "agree", Kind: steps.FieldCheckbox},
		{Name: "bio", Kind: steps.FieldTextArea},
	}
	cases := []struct {
		format OutputFormat
		want   string
		ctype  string
	}{
		{OutputFormatFormURLEncoded, "agree=true&bio=Hi+there&name=Ada", "application/x-www-form-urlencoded"},
		{OutputFormatPrettyText, "agree=true\nbio=Hi there\nname=Ada\n", "text/plain"},
		{OutputFormatJSON, `{"agree":true,"bio":"Hi there","name":"Ada"}`, "application/json"},
	}
	for _, tc := range cases {
		t.Run(string(tc.format), func(t *testing.T) {
			driver := &stubDriver{inputs: []string{"Ada"}, confirm: []bool{true}, textAreas: []string{"Hi there"}}
			r, err := New(WithPromptDriver(driver), WithOutputFormat(tc.format))
			if err != nil {
				t.Fatalf("new renderer: %v", err)
			}
			out, err := r.Render(context.Background(), singleStepView(t, fields...), render.RenderOptions{})
			if err != nil {
				t.Fatalf("render: %v", err)
			}
			if string(out) != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, out)
			}
			if r.ContentType() != tc.ctype {
				t.Fatalf("unexpected content type %q", r.ContentType())
			}
		})
	}
}

func TestRenderShowsErrorsAndUsesValues(t *testing.T) {
	driver := &stubDriver{inputs: []string{"Ada"}}
	r, err := New(WithPromptDriver(driver), WithSubmitTransformer(func(values map[string]any) (map[string]any, error) {
		values["source"] = "tui"
		return values, nil
	}))
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	view := singleStepView(t, steps.Field{Name: "name"})

	out, err := r.Render(context.Background(), view, render.RenderOptions{
		Values: stepform.FormData{"name": "A"},
		Errors: map[string]string{"name": "Name is too short"},
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if driver.inputCfgs[0].Default != "A" {
		t.Fatalf("expected draft value as default, got %q", driver.inputCfgs[0].Default)
	}
	if !driver.sawInfo("Name is too short") {
		t.Fatalf("expected error message, got %v", driver.infoMessages)
	}
	if string(out) != `{"name":"Ada","source":"tui"}` {
		t.Fatalf("unexpected output %s", out)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(WithPromptDriver(&stubDriver{}), WithOutputFormat("xml")); err == nil {
		t.Fatalf("expected unknown format error")
	}
}
