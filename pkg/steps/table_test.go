package steps

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func intPtr(v int) *int { return &v }

func TestNewTable_Defaults(t *testing.T) {
	table, err := NewTable(Step{ID: " a "}, Step{ID: "b", Name: "Bee", Schema: "bee"})
	if err != nil {
		t.Fatalf("new table: %v", err)
	}
	if table.Len() != 2 || table.Last() != 1 {
		t.Fatalf("unexpected size len=%d last=%d", table.Len(), table.Last())
	}
	if got := table.Step(0); got.ID != "a" || got.Name != "a" || got.SchemaRef() != "a" {
		t.Fatalf("unexpected defaults: %+v", got)
	}
	if idx, ok := table.Index("b"); !ok || idx != 1 {
		t.Fatalf("index lookup failed: %d %v", idx, ok)
	}
	if got := table.Step(1).SchemaRef(); got != "bee" {
		t.Fatalf("expected explicit schema ref, got %q", got)
	}
}

func TestNewTable_StepsAreCopies(t *testing.T) {
	table := MustTable(Step{ID: "a", Fields: []Field{{Name: "x", Options: []Option{{Value: "1"}}}}})
	list := table.Steps()
	list[0].ID = "mutated"
	list[0].Fields[0].Name = "mutated"
	if table.Step(0).ID != "a" {
		t.Fatalf("table should not be mutated through Steps()")
	}
}

func TestNewTable_DuplicateField(t *testing.T) {
	_, err := NewTable(Step{ID: "a", Fields: []Field{{Name: "x"}, {Name: "x"}}})
	if err == nil {
		t.Fatalf("expected duplicate field error")
	}
}

func TestField_MessageFor(t *testing.T) {
	field := Field{
		Name:      "firstName",
		Label:     "First name",
		MinLength: intPtr(2),
		Messages:  map[string]string{"pattern": "Letters only"},
	}
	cases := map[string]string{
		"required":  "First name is required",
		"minLength": "First name must be at least 2 characters",
		"pattern":   "Letters only",
		"const":     "First name is invalid",
	}
	for keyword, want := range cases {
		if got := field.MessageFor(keyword); got != want {
			t.Fatalf("%s: want %q, got %q", keyword, want, got)
		}
	}

	withDefault := Field{Name: "x", Messages: map[string]string{"default": "Nope"}}
	if got := withDefault.MessageFor("required"); got != "Nope" {
		t.Fatalf("expected default message, got %q", got)
	}
}

func TestGenerateSchema(t *testing.T) {
	step := Step{
		ID: "s",
		Fields: []Field{
			{Name: "name", Required: true},
			{Name: "code", Pattern: "^[A-Z]+$", MaxLength: intPtr(4)},
			{Name: "level", Kind: FieldSelect, Options: []Option{{Value: "lo"}, {Value: "hi"}}},
			{Name: "terms", Kind: FieldCheckbox, Required: true},
		},
	}

	want := map[string]any{
		"$schema": "https://json-schema.org/draft/2020-12/schema",
		"type":    "object",
		"properties": map[string]any{
			"name":  map[string]any{"type": "string", "minLength": 1},
			"code":  map[string]any{"type": "string", "maxLength": 4, "pattern": "^[A-Z]+$"},
			"level": map[string]any{"type": "string", "enum": []any{"lo", "hi"}},
			"terms": map[string]any{"type": "boolean", "const": true},
		},
		"required": []any{"name", "terms"},
	}
	if diff := cmp.Diff(want, GenerateSchema(step)); diff != "" {
		t.Fatalf("schema mismatch (-want +got):\n%s", diff)
	}
}
