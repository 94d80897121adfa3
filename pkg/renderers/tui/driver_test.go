package tui

import (
	"bytes"
	"context"
	"errors"
	"testing"
)

func TestSurveyDriverNotifyWritesLine(t *testing.T) {
	var buf bytes.Buffer
	d := &surveyDriver{out: &buf}
	if err := d.Notify(context.Background(), "Step 1 of 3"); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if buf.String() != "Step 1 of 3\n" {
		t.Fatalf("unexpected output %q", buf.String())
	}
}

func TestSurveyDriverStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	d := &surveyDriver{out: &bytes.Buffer{}}

	if _, err := d.Text(ctx, TextPrompt{Message: "Name"}); !errors.Is(err, context.Canceled) {
		t.Fatalf("text: expected context.Canceled, got %v", err)
	}
	if _, err := d.Text(ctx, TextPrompt{Message: "CVV", Style: TextSecret}); !errors.Is(err, context.Canceled) {
		t.Fatalf("secret: expected context.Canceled, got %v", err)
	}
	if _, err := d.Confirm(ctx, ConfirmPrompt{Message: "Agree"}); !errors.Is(err, context.Canceled) {
		t.Fatalf("confirm: expected context.Canceled, got %v", err)
	}
	if _, err := d.Choose(ctx, ChoicePrompt{Message: "Plan", Options: []string{"free"}}); !errors.Is(err, context.Canceled) {
		t.Fatalf("choose: expected context.Canceled, got %v", err)
	}
}

func TestSurveyDriverChooseNeedsOptions(t *testing.T) {
	d := &surveyDriver{out: &bytes.Buffer{}}
	idx, err := d.Choose(context.Background(), ChoicePrompt{Message: "Plan"})
	if err == nil || idx != -1 {
		t.Fatalf("expected error and -1, got %d %v", idx, err)
	}
}
