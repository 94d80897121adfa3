package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
)

// TextStyle selects how a free-text answer is read.
type TextStyle int

const (
	// TextLine reads a single echoed line.
	TextLine TextStyle = iota
	// TextSecret reads a single line without echo. Defaults are not shown.
	TextSecret
	// TextMultiline reads until an empty line.
	TextMultiline
)

// TextPrompt asks for a free-text field value.
type TextPrompt struct {
	Message string
	Help    string
	Default string
	Style   TextStyle
}

// ConfirmPrompt asks a yes/no question, used for checkbox fields.
type ConfirmPrompt struct {
	Message string
	Help    string
	Default bool
}

// ChoicePrompt asks the user to pick one of Options. Default is the
// preselected index; negative or out of range means none.
type ChoicePrompt struct {
	Message string
	Help    string
	Options []string
	Default int
}

// PromptDriver is the terminal seam used by Renderer. Tests script it; the
// default implementation asks through survey.
type PromptDriver interface {
	Text(ctx context.Context, p TextPrompt) (string, error)
	Confirm(ctx context.Context, p ConfirmPrompt) (bool, error)
	Choose(ctx context.Context, p ChoicePrompt) (int, error)
	Notify(ctx context.Context, msg string) error
}

type surveyDriver struct {
	out io.Writer
}

func newSurveyDriver() PromptDriver {
	return &surveyDriver{out: os.Stdout}
}

func (d *surveyDriver) Text(ctx context.Context, p TextPrompt) (string, error) {
	var prompt survey.Prompt
	switch p.Style {
	case TextSecret:
		prompt = &survey.Password{Message: p.Message, Help: p.Help}
	case TextMultiline:
		prompt = &survey.Multiline{Message: p.Message, Help: p.Help, Default: p.Default}
	default:
		prompt = &survey.Input{Message: p.Message, Help: p.Help, Default: p.Default}
	}

	var answer string
	if err := ask(ctx, prompt, &answer); err != nil {
		return "", err
	}
	return answer, nil
}

func (d *surveyDriver) Confirm(ctx context.Context, p ConfirmPrompt) (bool, error) {
	var answer bool
	err := ask(ctx, &survey.Confirm{Message: p.Message, Help: p.Help, Default: p.Default}, &answer)
	return answer, err
}

func (d *surveyDriver) Choose(ctx context.Context, p ChoicePrompt) (int, error) {
	if len(p.Options) == 0 {
		return -1, fmt.Errorf("tui: %q has no options", p.Message)
	}
	prompt := &survey.Select{Message: p.Message, Help: p.Help, Options: p.Options}
	if p.Default >= 0 && p.Default < len(p.Options) {
		prompt.Default = p.Options[p.Default]
	}

	var answer string
	if err := ask(ctx, prompt, &answer); err != nil {
		return -1, err
	}
	for i, option := range p.Options {
		if option == answer {
			return i, nil
		}
	}
	return -1, fmt.Errorf("tui: answer %q is not an option", answer)
}

func (d *surveyDriver) Notify(ctx context.Context, msg string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := fmt.Fprintln(d.out, msg)
	return err
}

// ask runs one survey prompt, mapping Ctrl+C to ErrAborted.
func ask(ctx context.Context, prompt survey.Prompt, answer any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := survey.AskOne(prompt, answer); err != nil {
		if errors.Is(err, terminal.InterruptErr) {
			return ErrAborted
		}
		return err
	}
	return nil
}
