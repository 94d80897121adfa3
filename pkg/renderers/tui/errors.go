package tui

import "errors"

var (
	// ErrAborted signals the user cancelled the wizard or interrupted a
	// prompt (e.g., Ctrl+C).
	ErrAborted = errors.New("tui: aborted")
	// ErrWizardRequired is returned by Run without a wizard.
	ErrWizardRequired = errors.New("tui: wizard is required")
)
