package stepform

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formwizard/pkg/steps"
)

func threeStepTable(t *testing.T) steps.Table {
	t.Helper()
	table, err := steps.NewTable(
		steps.Step{ID: "personal", Name: "Personal Info", Icon: "user"},
		steps.Step{ID: "professional", Name: "Professional Info", Icon: "briefcase"},
		steps.Step{ID: "billing", Name: "Billing Info", Icon: "credit-card"},
	)
	if err != nil {
		t.Fatalf("new table: %v", err)
	}
	return table
}

func newController(t *testing.T) *Controller {
	t.Helper()
	ctrl, err := NewController(threeStepTable(t))
	if err != nil {
		t.Fatalf("new controller: %v", err)
	}
	return ctrl
}

func TestNewControllerRejectsEmptyTable(t *testing.T) {
	if _, err := NewController(steps.Table{}); err != ErrEmptyTable {
		t.Fatalf("expected ErrEmptyTable, got %v", err)
	}
}

func TestControllerInitialState(t *testing.T) {
	ctrl := newController(t)

	state := ctrl.State()
	if state.CurrentStep != 0 || state.IsSubmitted {
		t.Fatalf("unexpected initial state: %+v", state)
	}
	if state.FormData == nil || len(state.FormData) != 0 {
		t.Fatalf("expected empty non-nil form data, got %#v", state.FormData)
	}
	if got := ctrl.CurrentSchema(); got != "personal" {
		t.Fatalf("expected personal schema, got %q", got)
	}
	if !ctrl.IsFirstStep() || ctrl.IsLastStep() {
		t.Fatalf("expected first (not last) step")
	}
	if ctrl.Phase() != PhaseEditing {
		t.Fatalf("expected editing phase, got %q", ctrl.Phase())
	}
}

func TestControllerSchemaFollowsStep(t *testing.T) {
	table := steps.MustTable(
		steps.Step{ID: "a", Schema: "shared"},
		steps.Step{ID: "b"},
	)
	ctrl, err := NewController(table)
	if err != nil {
		t.Fatalf("new controller: %v", err)
	}
	if got := ctrl.CurrentSchema(); got != "shared" {
		t.Fatalf("expected explicit schema ref, got %q", got)
	}
	ctrl.Advance()
	if got := ctrl.CurrentSchema(); got != "b" {
		t.Fatalf("expected id as schema ref, got %q", got)
	}
}

func TestControllerAdvanceStopsAtLastStep(t *testing.T) {
	ctrl := newController(t)

	ctrl.Advance()
	ctrl.Advance()
	if !ctrl.IsLastStep() || ctrl.CurrentStep() != 2 {
		t.Fatalf("expected last step, got %d", ctrl.CurrentStep())
	}
	ctrl.Advance()
	if ctrl.CurrentStep() != 2 {
		t.Fatalf("advance on last step must be a no-op, got %d", ctrl.CurrentStep())
	}
	if ctrl.IsSubmitted() {
		t.Fatalf("advance must never submit")
	}
}

func TestControllerRetreatStopsAtFirstStep(t *testing.T) {
	ctrl := newController(t)

	ctrl.Retreat()
	if ctrl.CurrentStep() != 0 {
		t.Fatalf("retreat on first step must be a no-op, got %d", ctrl.CurrentStep())
	}
}

func TestControllerRetreatPreservesData(t *testing.T) {
	ctrl := newController(t)
	ctrl.MergeStepData(FormData{"firstName": "Ada"})
	ctrl.Advance()
	ctrl.MergeStepData(FormData{"company": "Engines Ltd"})

	ctrl.Retreat()

	want := FormData{"firstName": "Ada", "company": "Engines Ltd"}
	if diff := cmp.Diff(want, ctrl.State().FormData); diff != "" {
		t.Fatalf("form data mismatch (-want +got):\n%s", diff)
	}
}

func TestControllerMergeIsIdempotentAndLastWriteWins(t *testing.T) {
	ctrl := newController(t)
	partial := FormData{"firstName": "Ada", "lastName": "Lovelace"}

	ctrl.MergeStepData(partial)
	once := ctrl.State().FormData
	ctrl.MergeStepData(partial)
	if diff := cmp.Diff(once, ctrl.State().FormData); diff != "" {
		t.Fatalf("merge not idempotent (-once +twice):\n%s", diff)
	}

	ctrl.MergeStepData(FormData{"lastName": "Byron"})
	if got := ctrl.State().FormData["lastName"]; got != "Byron" {
		t.Fatalf("expected later write to win, got %v", got)
	}
	if got := ctrl.State().FormData["firstName"]; got != "Ada" {
		t.Fatalf("expected untouched key to survive, got %v", got)
	}
}

func TestControllerMergeDoesNotAliasInput(t *testing.T) {
	ctrl := newController(t)
	partial := FormData{"firstName": "Ada"}
	ctrl.MergeStepData(partial)

	partial["firstName"] = "changed"
	if got := ctrl.State().FormData["firstName"]; got != "Ada" {
		t.Fatalf("controller state aliased caller map, got %v", got)
	}

	snapshot := ctrl.State()
	snapshot.FormData["firstName"] = "mutated"
	if got := ctrl.State().FormData["firstName"]; got != "Ada" {
		t.Fatalf("snapshot aliased controller state, got %v", got)
	}
}

func TestControllerSubmitAndReset(t *testing.T) {
	ctrl := newController(t)
	ctrl.Advance()
	ctrl.Advance()
	ctrl.Submit(FormData{"cvv": "123"})

	if !ctrl.IsSubmitted() || ctrl.Phase() != PhaseSubmitted {
		t.Fatalf("expected submitted state")
	}
	if got := ctrl.State().FormData["cvv"]; got != "123" {
		t.Fatalf("submit must merge final data, got %v", got)
	}

	ctrl.Reset()
	state := ctrl.State()
	if diff := cmp.Diff(Initial(), state); diff != "" {
		t.Fatalf("reset mismatch (-want +got):\n%s", diff)
	}
}

func TestControllerView(t *testing.T) {
	ctrl := newController(t)
	ctrl.MergeStepData(FormData{"firstName": "Ada"})
	ctrl.Advance()

	view := ctrl.View()
	if view.CurrentStep != 1 || view.IsFirstStep || view.IsLastStep || view.IsSubmitted {
		t.Fatalf("unexpected view flags: %+v", view)
	}
	if view.Step().ID != "professional" {
		t.Fatalf("expected professional step, got %q", view.Step().ID)
	}
	if len(view.Steps) != 3 {
		t.Fatalf("expected 3 steps, got %d", len(view.Steps))
	}
	view.FormData["firstName"] = "mutated"
	if ctrl.State().FormData["firstName"] != "Ada" {
		t.Fatalf("view aliased controller state")
	}
}

func TestStateTransitionsArePure(t *testing.T) {
	start := Initial().Merge(FormData{"a": "1"})
	next := start.Merge(FormData{"b": "2"}).Advance(3).Submit(FormData{"c": "3"})

	if diff := cmp.Diff(FormData{"a": "1"}, start.FormData); diff != "" {
		t.Fatalf("original state mutated (-want +got):\n%s", diff)
	}
	if next.CurrentStep != 1 || !next.IsSubmitted {
		t.Fatalf("unexpected derived state: %+v", next)
	}
	if len(next.FormData) != 3 {
		t.Fatalf("expected 3 keys, got %v", next.FormData.Keys())
	}
}

func TestFormDataAccessors(t *testing.T) {
	data := FormData{"name": "Ada", "agree": true, "count": 3, "flag": "on"}

	if got := data.String("name"); got != "Ada" {
		t.Fatalf("unexpected string: %q", got)
	}
	if got := data.String("agree"); got != "true" {
		t.Fatalf("unexpected bool string: %q", got)
	}
	if got := data.String("missing"); got != "" {
		t.Fatalf("expected empty string, got %q", got)
	}
	if !data.Bool("agree") || !data.Bool("flag") || data.Bool("name") {
		t.Fatalf("unexpected bool accessors")
	}
	if diff := cmp.Diff([]string{"agree", "count", "flag", "name"}, data.Keys()); diff != "" {
		t.Fatalf("keys mismatch (-want +got):\n%s", diff)
	}
	var empty FormData
	if empty.Clone() == nil {
		t.Fatalf("clone of nil must not be nil")
	}
}
