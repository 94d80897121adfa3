package progress

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formwizard/pkg/stepform"
	"github.com/goliatone/go-formwizard/pkg/steps"
)

var checkoutSteps = []steps.Step{
	{ID: "personal", Name: "Personal Info", Icon: "user"},
	{ID: "professional", Name: "Professional Info", Icon: "briefcase"},
	{ID: "billing", Name: "Billing Info", Icon: "credit-card"},
}

func statuses(m Model) []Status {
	out := make([]Status, 0, len(m.Items))
	for _, item := range m.Items {
		out = append(out, item.Status)
	}
	return out
}

func TestNewStatuses(t *testing.T) {
	cases := []struct {
		current int
		want    []Status
		percent int
	}{
		{0, []Status{StatusCurrent, StatusUpcoming, StatusUpcoming}, 33},
		{1, []Status{StatusComplete, StatusCurrent, StatusUpcoming}, 66},
		{2, []Status{StatusComplete, StatusComplete, StatusCurrent}, 100},
	}
	for _, tc := range cases {
		model := New(tc.current, checkoutSteps)
		if diff := cmp.Diff(tc.want, statuses(model)); diff != "" {
			t.Fatalf("step %d statuses mismatch (-want +got):\n%s", tc.current, diff)
		}
		if model.Percent != tc.percent {
			t.Fatalf("step %d: expected percent %d, got %d", tc.current, tc.percent, model.Percent)
		}
	}
}

func TestNewClampsIndex(t *testing.T) {
	if got := New(-3, checkoutSteps).Current; got != 0 {
		t.Fatalf("expected clamp to 0, got %d", got)
	}
	if got := New(9, checkoutSteps).Current; got != 2 {
		t.Fatalf("expected clamp to 2, got %d", got)
	}
	if got := New(0, nil); got.Total != 0 || got.Text() != "" || got.Title() != "" {
		t.Fatalf("expected empty model, got %+v", got)
	}
}

func TestFromViewSubmitted(t *testing.T) {
	model := FromView(stepform.View{CurrentStep: 2, IsSubmitted: true, Steps: checkoutSteps})
	want := []Status{StatusComplete, StatusComplete, StatusComplete}
	if diff := cmp.Diff(want, statuses(model)); diff != "" {
		t.Fatalf("statuses mismatch (-want +got):\n%s", diff)
	}
	if model.Percent != 100 {
		t.Fatalf("expected 100 percent, got %d", model.Percent)
	}
}

func TestTitleAndText(t *testing.T) {
	model := New(1, checkoutSteps)
	if got := model.Title(); got != "Step 2 of 3: Professional Info" {
		t.Fatalf("unexpected title %q", got)
	}
	text := model.Text()
	for _, want := range []string{"Personal Info", "Professional Info", "Billing Info"} {
		if !strings.Contains(text, want) {
			t.Fatalf("expected %q in %q", want, text)
		}
	}
	if model.CurrentItem().Number() != 2 {
		t.Fatalf("expected item number 2")
	}
}
