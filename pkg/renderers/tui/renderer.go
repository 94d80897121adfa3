package tui

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/goliatone/go-formwizard/pkg/fetch"
	"github.com/goliatone/go-formwizard/pkg/progress"
	"github.com/goliatone/go-formwizard/pkg/render"
	"github.com/goliatone/go-formwizard/pkg/stepform"
	"github.com/goliatone/go-formwizard/pkg/steps"
)

// Renderer implements render.Renderer for terminal sessions. Render prompts a
// single step; Run drives a whole wizard until it is submitted.
type Renderer struct {
	driver            PromptDriver
	outputFormat      OutputFormat
	httpClient        *http.Client
	submitTransformer SubmitTransformer
	theme             Theme
	logger            zerolog.Logger
	remote            *fetch.Resource[steps.OptionsSource, []steps.Option]
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs a TUI renderer with defaults (survey driver, JSON output).
func New(options ...Option) (*Renderer, error) {
	r := &Renderer{
		driver:       newSurveyDriver(),
		outputFormat: OutputFormatJSON,
		logger:       zerolog.Nop(),
	}

	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}

	if _, ok := ParseOutputFormat(string(r.outputFormat)); !ok {
		return nil, fmt.Errorf("tui: unknown output format %q", r.outputFormat)
	}

	remote, err := fetch.New[steps.OptionsSource, []steps.Option](r.loadOptions, fetch.WithLogger(r.logger))
	if err != nil {
		return nil, err
	}
	r.remote = remote
	return r, nil
}

// Name reports the renderer identifier.
func (r *Renderer) Name() string {
	return "tui"
}

// ContentType reports the serialization format used by Render.
func (r *Renderer) ContentType() string {
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		return "application/x-www-form-urlencoded"
	case OutputFormatPrettyText:
		return "text/plain"
	default:
		return "application/json"
	}
}

// Render prompts the fields of the current step, using opts.Values ahead of
// the collected data as defaults, and serializes the answers. A submitted
// view serializes the collected data without prompting.
func (r *Renderer) Render(ctx context.Context, view stepform.View, opts render.RenderOptions) ([]byte, error) {
	if ctx == nil {
		return nil, errors.New("tui: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(view.Steps) == 0 {
		return nil, errors.New("tui: view has no steps")
	}
	if view.IsSubmitted {
		return r.serialize(view.FormData)
	}

	if err := r.showErrors(ctx, view.Step(), render.MapErrors(view.Step(), opts.Errors)); err != nil {
		return nil, err
	}
	answers, err := r.promptStep(ctx, view, opts.Values)
	if err != nil {
		return nil, err
	}
	return r.serialize(answers)
}

type action int

const (
	actionNext action = iota
	actionBack
	actionCancel
)

// Run prompts each step of w in turn, moving forward or back as the user
// chooses, and returns the serialized form data once the wizard is
// submitted. Validation messages are printed and the step is asked again
// with the rejected answers as defaults.
func (r *Renderer) Run(ctx context.Context, w *stepform.Wizard) ([]byte, error) {
	if ctx == nil {
		return nil, errors.New("tui: context is required")
	}
	if w == nil {
		return nil, ErrWizardRequired
	}

	var draft stepform.FormData
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		view := w.View()
		if err := r.info(ctx, progress.FromView(view).Text()); err != nil {
			return nil, err
		}
		if view.IsSubmitted {
			return r.serialize(view.FormData)
		}

		answers, err := r.promptStep(ctx, view, draft)
		if err != nil {
			return nil, err
		}

		choice, err := r.chooseAction(ctx, view)
		if err != nil {
			return nil, err
		}

		switch choice {
		case actionCancel:
			r.logger.Debug().Str("step", view.Step().ID).Msg("wizard cancelled")
			return nil, ErrAborted
		case actionBack:
			if _, err := w.Previous(ctx); err != nil {
				return nil, err
			}
			draft = nil
		default:
			outcome, err := w.Next(ctx, answers)
			if failure, ok := stepform.AsValidationFailure(err); ok {
				draft = answers
				if err := r.showErrors(ctx, view.Step(), render.MapFailure(outcome.View, failure)); err != nil {
					return nil, err
				}
				continue
			}
			if err != nil {
				return nil, err
			}
			draft = nil
		}
	}
}

func (r *Renderer) chooseAction(ctx context.Context, view stepform.View) (action, error) {
	primary := "Continue"
	if view.IsLastStep {
		primary = "Submit"
	}
	labels := []string{primary}
	actions := []action{actionNext}
	if !view.IsFirstStep {
		labels = append(labels, "Back")
		actions = append(actions, actionBack)
	}
	labels = append(labels, "Cancel")
	actions = append(actions, actionCancel)

	idx, err := r.driver.Choose(ctx, ChoicePrompt{Message: "What next?", Options: labels})
	if err != nil {
		return actionCancel, err
	}
	if idx < 0 || idx >= len(actions) {
		return actionCancel, fmt.Errorf("tui: invalid action index %d", idx)
	}
	return actions[idx], nil
}

// promptStep asks every field of the current step. Empty answers are left
// out so optional fields stay absent.
func (r *Renderer) promptStep(ctx context.Context, view stepform.View, draft stepform.FormData) (stepform.FormData, error) {
	step := view.Step()
	answers := stepform.FormData{}
	for _, field := range step.Fields {
		current, ok := draft[field.Name]
		if !ok {
			current = view.FormData[field.Name]
		}
		value, err := r.promptField(ctx, field, current)
		if err != nil {
			return nil, fmt.Errorf("tui: prompt %s: %w", field.Name, err)
		}
		if s, isString := value.(string); isString && s == "" {
			continue
		}
		answers[field.Name] = value
	}
	return answers, nil
}

func (r *Renderer) promptField(ctx context.Context, field steps.Field, current any) (any, error) {
	label := field.DisplayLabel()
	switch field.EffectiveKind() {
	case steps.FieldCheckbox:
		return r.driver.Confirm(ctx, ConfirmPrompt{
			Message: label,
			Help:    field.Help,
			Default: defaultBoolValue(current),
		})
	case steps.FieldPassword:
		return r.driver.Text(ctx, TextPrompt{Message: label, Help: field.Help, Style: TextSecret})
	case steps.FieldTextArea:
		return r.driver.Text(ctx, TextPrompt{
			Message: label,
			Help:    field.Help,
			Default: defaultStringValue(current),
			Style:   TextMultiline,
		})
	case steps.FieldSelect:
		return r.promptSelect(ctx, field, defaultStringValue(current))
	default:
		return r.driver.Text(ctx, TextPrompt{
			Message: label,
			Help:    field.Help,
			Default: defaultStringValue(current),
		})
	}
}

func (r *Renderer) promptSelect(ctx context.Context, field steps.Field, current string) (string, error) {
	options := r.selectOptions(ctx, field)
	if len(options) == 0 {
		return r.driver.Text(ctx, TextPrompt{
			Message: field.DisplayLabel(),
			Help:    field.Help,
			Default: current,
		})
	}
	if !field.Required {
		options = append([]steps.Option{{Value: "", Label: "(none)"}}, options...)
	}

	labels := make([]string, len(options))
	defaultIdx := -1
	for i, opt := range options {
		labels[i] = opt.DisplayLabel()
		if opt.Value == current {
			defaultIdx = i
		}
	}

	idx, err := r.driver.Choose(ctx, ChoicePrompt{
		Message: field.DisplayLabel(),
		Help:    field.Help,
		Options: labels,
		Default: defaultIdx,
	})
	if err != nil {
		return "", err
	}
	if idx < 0 || idx >= len(options) {
		return "", fmt.Errorf("invalid option index %d", idx)
	}
	return options[idx].Value, nil
}

// selectOptions returns remote options when the field has a source and an
// HTTP client is configured, falling back to the static list.
func (r *Renderer) selectOptions(ctx context.Context, field steps.Field) []steps.Option {
	src := field.OptionsFrom
	if src == nil || strings.TrimSpace(src.URL) == "" || r.httpClient == nil {
		return field.Options
	}

	r.remote.Select(*src)
	if entry := r.remote.Entry(*src); entry.Status == fetch.StatusReady && len(entry.Value) > 0 {
		return entry.Value
	}

	opts, err := r.remote.Fetch(ctx, *src)
	if err != nil {
		r.logger.Warn().Err(err).Str("field", field.Name).Str("url", src.URL).Msg("remote options unavailable")
		_ = r.info(ctx, fmt.Sprintf("Warning: options for %s could not be loaded (%v); using defaults", field.DisplayLabel(), err))
		return field.Options
	}
	if len(opts) == 0 {
		return field.Options
	}
	return opts
}

func (r *Renderer) loadOptions(ctx context.Context, src steps.OptionsSource) ([]steps.Option, error) {
	reqURL, err := url.Parse(src.URL)
	if err != nil {
		return nil, fmt.Errorf("parse url: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var payload any
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	valueField := firstNonEmpty(src.Value, "value")
	labelField := firstNonEmpty(src.Label, "label")

	var opts []steps.Option
	for _, item := range extractResults(payload, src.Results) {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		val := pickValue(obj, valueField)
		if val == "" {
			continue
		}
		opts = append(opts, steps.Option{Value: val, Label: pickValue(obj, labelField)})
	}
	return opts, nil
}

func (r *Renderer) showErrors(ctx context.Context, step steps.Step, mapping render.ErrorMapping) error {
	if mapping.Empty() {
		return nil
	}
	for _, field := range step.Fields {
		if msg := mapping.Field(field.Name); msg != "" {
			if err := r.errorf(ctx, msg); err != nil {
				return err
			}
		}
	}
	for _, msg := range mapping.Form {
		if err := r.errorf(ctx, msg); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) info(ctx context.Context, msg string) error {
	return r.driver.Notify(ctx, r.theme.InfoPrefix+msg)
}

func (r *Renderer) errorf(ctx context.Context, msg string) error {
	return r.driver.Notify(ctx, r.theme.ErrorPrefix+msg)
}

func (r *Renderer) serialize(data stepform.FormData) ([]byte, error) {
	values := map[string]any(data.Clone())
	if r.submitTransformer != nil {
		var err error
		values, err = r.submitTransformer(values)
		if err != nil {
			return nil, fmt.Errorf("tui: submit transformer: %w", err)
		}
	}

	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		return []byte(flattenForm(values)), nil
	case OutputFormatPrettyText:
		return []byte(prettyPrint(values)), nil
	default:
		return json.Marshal(values)
	}
}

func defaultStringValue(current any) string {
	switch v := current.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

func defaultBoolValue(current any) bool {
	switch v := current.(type) {
	case bool:
		return v
	case string:
		return v == "true" || v == "on" || v == "1"
	default:
		return false
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func extractResults(payload any, path string) []any {
	if payload == nil {
		return nil
	}
	cur := payload
	if path != "" {
		for _, segment := range strings.Split(path, ".") {
			node, ok := cur.(map[string]any)
			if !ok {
				return nil
			}
			cur = node[segment]
		}
	}
	if items, ok := cur.([]any); ok {
		return items
	}
	return nil
}

func pickValue(m map[string]any, path string) string {
	if path == "" {
		return ""
	}
	cur := any(m)
	for _, segment := range strings.Split(path, ".") {
		node, ok := cur.(map[string]any)
		if !ok {
			return ""
		}
		cur = node[segment]
	}
	if cur == nil {
		return ""
	}
	return fmt.Sprint(cur)
}

func flattenForm(values map[string]any) string {
	flattened := url.Values{}
	flatten("", values, flattened)
	return flattened.Encode()
}

func flatten(prefix string, value any, out url.Values) {
	switch v := value.(type) {
	case map[string]any:
		for key, val := range v {
			next := key
			if prefix != "" {
				next = prefix + "." + key
			}
			flatten(next, val, out)
		}
	case []any:
		for _, val := range v {
			out.Add(prefix+"[]", fmt.Sprint(val))
		}
	default:
		out.Set(prefix, fmt.Sprint(v))
	}
}

func prettyPrint(values map[string]any) string {
	var b strings.Builder
	writePretty(&b, "", values)
	return b.String()
}

func writePretty(b *strings.Builder, prefix string, value any) {
	switch v := value.(type) {
	case map[string]any:
		keys := make([]string, 0, len(v))
		for key := range v {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			next := key
			if prefix != "" {
				next = prefix + "." + key
			}
			writePretty(b, next, v[key])
		}
	case []any:
		for idx, val := range v {
			writePretty(b, fmt.Sprintf("%s[%d]", prefix, idx), val)
		}
	default:
		if prefix != "" {
			fmt.Fprintf(b, "%s=%v\n", prefix, v)
		}
	}
}
