// Package progress derives the step indicator shown above a multi-step form.
// It reads only the current index and the step list; it never touches form
// data.
package progress

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/goliatone/go-formwizard/pkg/stepform"
	"github.com/goliatone/go-formwizard/pkg/steps"
)

// Status is the display state of one step.
type Status string

const (
	StatusComplete Status = "complete"
	StatusCurrent  Status = "current"
	StatusUpcoming Status = "upcoming"
)

// Item is one entry of the indicator.
type Item struct {
	Index  int    `json:"index"`
	ID     string `json:"id"`
	Name   string `json:"name"`
	Icon   string `json:"icon,omitempty"`
	Status Status `json:"status"`
}

// Number is the 1-based position shown to users.
func (i Item) Number() int {
	return i.Index + 1
}

// Model is the computed indicator.
type Model struct {
	Current int    `json:"current"`
	Total   int    `json:"total"`
	Percent int    `json:"percent"`
	Items   []Item `json:"items"`
}

// New builds the indicator for current within list. Steps before current are
// complete, current is current, the rest are upcoming. Percent counts the
// current step as reached, so the last step reads 100.
func New(current int, list []steps.Step) Model {
	total := len(list)
	if total == 0 {
		return Model{}
	}
	if current < 0 {
		current = 0
	}
	if current > total-1 {
		current = total - 1
	}

	items := make([]Item, total)
	for idx, step := range list {
		status := StatusUpcoming
		switch {
		case idx < current:
			status = StatusComplete
		case idx == current:
			status = StatusCurrent
		}
		items[idx] = Item{
			Index:  idx,
			ID:     step.ID,
			Name:   step.Name,
			Icon:   step.Icon,
			Status: status,
		}
	}
	return Model{
		Current: current,
		Total:   total,
		Percent: (current + 1) * 100 / total,
		Items:   items,
	}
}

// FromView builds the indicator for a wizard view. A submitted view marks
// every step complete.
func FromView(view stepform.View) Model {
	model := New(view.CurrentStep, view.Steps)
	if view.IsSubmitted {
		for idx := range model.Items {
			model.Items[idx].Status = StatusComplete
		}
		model.Percent = 100
	}
	return model
}

// CurrentItem returns the item for the current step.
func (m Model) CurrentItem() Item {
	if len(m.Items) == 0 {
		return Item{}
	}
	return m.Items[m.Current]
}

// Title reads "Step 2 of 3: Professional Info".
func (m Model) Title() string {
	if m.Total == 0 {
		return ""
	}
	return fmt.Sprintf("Step %d of %d: %s", m.Current+1, m.Total, m.CurrentItem().Name)
}

var (
	completeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("76"))
	currentStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("99")).Bold(true)
	upcomingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
)

// Text renders a single terminal line such as "✓ Personal Info › ● Professional Info › ○ Billing Info".
func (m Model) Text() string {
	if len(m.Items) == 0 {
		return ""
	}
	parts := make([]string, 0, len(m.Items))
	for _, item := range m.Items {
		switch item.Status {
		case StatusComplete:
			parts = append(parts, completeStyle.Render("✓ "+item.Name))
		case StatusCurrent:
			parts = append(parts, currentStyle.Render("● "+item.Name))
		default:
			parts = append(parts, upcomingStyle.Render("○ "+item.Name))
		}
	}
	return strings.Join(parts, upcomingStyle.Render(" › "))
}
