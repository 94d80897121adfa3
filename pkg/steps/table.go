package steps

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyTable is returned when a table is built without steps.
var ErrEmptyTable = errors.New("steps: table requires at least one step")

// Table is the fixed, ordered sequence of steps of one form. It is immutable
// after construction; accessors hand out copies.
type Table struct {
	steps []Step
	index map[string]int
}

// NewTable validates the steps (non-empty, unique IDs, unique field names per
// step) and freezes them into a Table.
func NewTable(list ...Step) (Table, error) {
	if len(list) == 0 {
		return Table{}, ErrEmptyTable
	}

	table := Table{
		steps: make([]Step, 0, len(list)),
		index: make(map[string]int, len(list)),
	}
	for idx, step := range list {
		id := strings.TrimSpace(step.ID)
		if id == "" {
			return Table{}, fmt.Errorf("steps: step at index %d has an empty id", idx)
		}
		if _, exists := table.index[id]; exists {
			return Table{}, fmt.Errorf("steps: duplicate step id %q", id)
		}
		seen := make(map[string]struct{}, len(step.Fields))
		for _, field := range step.Fields {
			name := strings.TrimSpace(field.Name)
			if name == "" {
				return Table{}, fmt.Errorf("steps: step %q defines a field without a name", id)
			}
			if _, dup := seen[name]; dup {
				return Table{}, fmt.Errorf("steps: step %q defines field %q twice", id, name)
			}
			seen[name] = struct{}{}
		}

		step.ID = id
		if strings.TrimSpace(step.Name) == "" {
			step.Name = id
		}
		step.Fields = cloneFields(step.Fields)
		table.index[id] = idx
		table.steps = append(table.steps, step)
	}
	return table, nil
}

// MustTable panics when NewTable fails. Useful for package-level fixtures.
func MustTable(list ...Step) Table {
	table, err := NewTable(list...)
	if err != nil {
		panic(err)
	}
	return table
}

// Len reports the number of steps.
func (t Table) Len() int {
	return len(t.steps)
}

// Last returns the index of the final step, or -1 for an empty table.
func (t Table) Last() int {
	return len(t.steps) - 1
}

// Step returns the step at idx. Callers keep idx within [0, Len()-1].
func (t Table) Step(idx int) Step {
	return t.steps[idx]
}

// Steps returns a copy of the ordered steps.
func (t Table) Steps() []Step {
	out := make([]Step, len(t.steps))
	copy(out, t.steps)
	return out
}

// Index resolves a step ID to its position.
func (t Table) Index(id string) (int, bool) {
	idx, ok := t.index[id]
	return idx, ok
}

func cloneFields(fields []Field) []Field {
	if len(fields) == 0 {
		return nil
	}
	out := make([]Field, len(fields))
	for i, field := range fields {
		cloned := field
		if len(field.Options) > 0 {
			cloned.Options = append([]Option(nil), field.Options...)
		}
		if len(field.Messages) > 0 {
			cloned.Messages = make(map[string]string, len(field.Messages))
			for k, v := range field.Messages {
				cloned.Messages[k] = v
			}
		}
		if field.OptionsFrom != nil {
			src := *field.OptionsFrom
			cloned.OptionsFrom = &src
		}
		out[i] = cloned
	}
	return out
}
