package stepform

// State is the controller's owned state. Transitions return a new State and
// never write to the receiver's FormData map, so a State value can be kept as
// a snapshot.
type State struct {
	CurrentStep int
	FormData    FormData
	IsSubmitted bool
}

// Initial is the state at construction and after Reset.
func Initial() State {
	return State{FormData: FormData{}}
}

// Advance moves to the next step. It is a no-op on the last of n steps.
func (s State) Advance(n int) State {
	if s.CurrentStep >= n-1 {
		return s
	}
	s.CurrentStep++
	return s
}

// Retreat moves to the previous step. It is a no-op on the first step.
func (s State) Retreat() State {
	if s.CurrentStep <= 0 {
		return s
	}
	s.CurrentStep--
	return s
}

// Merge shallow-merges partial into the form data.
func (s State) Merge(partial FormData) State {
	s.FormData = s.FormData.Merge(partial)
	return s
}

// Submit merges final and marks the state submitted.
func (s State) Submit(final FormData) State {
	s = s.Merge(final)
	s.IsSubmitted = true
	return s
}

// Phase reports Editing or Submitted.
func (s State) Phase() Phase {
	if s.IsSubmitted {
		return PhaseSubmitted
	}
	return PhaseEditing
}
