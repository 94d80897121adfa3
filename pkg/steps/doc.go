// Package steps describes the ordered pages of a multi-step form. A Step
// carries its identity (ID, display name, icon token) plus the field metadata
// renderers need to present it. Definitions are loaded from JSON/YAML files
// through LoadFS; the bundled checkout definition is available through
// EmbeddedFS so callers can start without writing any configuration.
package steps
