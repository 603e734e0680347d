package ui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/carmensoftware/carmen-catalog/pkg/model"
)

// ConfirmKind distinguishes the two confirmation flows sharing this modal.
type ConfirmKind int

const (
	// ConfirmDelete guards entity deletion.
	ConfirmDelete ConfirmKind = iota
	// ConfirmFlagChange guards saving an edit that flips the recipe or
	// sold-directly flags.
	ConfirmFlagChange
)

// ConfirmModel is a yes/no dialog. A failed action reopens it with the
// error shown, so the user can retry or give up without losing place.
type ConfirmModel struct {
	kind    ConfirmKind
	title   string
	message string
	errText string
	busy    bool
	width   int
	height  int
	theme   Theme

	// Target carries the node the confirmation refers to (the node being
	// deleted, or the pending edit result awaiting flag confirmation).
	Target *model.Node

	confirmed bool
	declined  bool
}

// NewDeleteConfirm builds a delete confirmation for node.
func NewDeleteConfirm(node *model.Node, theme Theme) ConfirmModel {
	msg := "Delete " + node.Kind.Label() + " " + node.DisplayLabel() + "?"
	if node.CanHaveChildren() && len(node.Children) > 0 {
		msg += "\nEntries underneath it will no longer appear in the tree."
	}
	return ConfirmModel{
		kind:    ConfirmDelete,
		title:   "Confirm deletion",
		message: msg,
		theme:   theme,
		Target:  node,
	}
}

// NewFlagChangeConfirm builds the confirmation shown when a save would
// change the recipe/sold flags on an existing entity.
func NewFlagChangeConfirm(pending *model.Node, theme Theme) ConfirmModel {
	return ConfirmModel{
		kind:  ConfirmFlagChange,
		title: "Confirm flag change",
		message: "This change affects how " + pending.DisplayLabel() +
			" is used in recipes and sales.\nSave anyway?",
		theme:  theme,
		Target: pending,
	}
}

// Kind returns which flow this confirmation belongs to.
func (m ConfirmModel) Kind() ConfirmKind { return m.kind }

// Update handles input for the confirmation dialog.
func (m ConfirmModel) Update(msg tea.Msg) (ConfirmModel, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if m.busy {
			return m, nil
		}
		switch keyMsg.String() {
		case "y", "Y", "enter":
			m.confirmed = true
		case "n", "N", "esc":
			m.declined = true
		}
	}
	return m, nil
}

// IsConfirmed reports whether the user accepted.
func (m ConfirmModel) IsConfirmed() bool { return m.confirmed }

// IsDeclined reports whether the user declined.
func (m ConfirmModel) IsDeclined() bool { return m.declined }

// ClearRequests resets the confirm/decline flags after the orchestrator
// has consumed them.
func (m *ConfirmModel) ClearRequests() {
	m.confirmed = false
	m.declined = false
}

// SetBusy marks the dialog as waiting on an in-flight action. Input is
// ignored while busy.
func (m *ConfirmModel) SetBusy(busy bool) { m.busy = busy }

// SetError records a failed action. The dialog stays open and the user can
// confirm again to retry.
func (m *ConfirmModel) SetError(err error) {
	m.busy = false
	if err != nil {
		m.errText = err.Error()
	} else {
		m.errText = ""
	}
}

// SetSize sets the dialog dimensions.
func (m *ConfirmModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// View renders the confirmation dialog.
func (m ConfirmModel) View() string {
	r := m.theme.Renderer

	titleStyle := r.NewStyle().Bold(true).Foreground(m.theme.Error)
	if m.kind == ConfirmFlagChange {
		titleStyle = r.NewStyle().Bold(true).Foreground(m.theme.Primary)
	}

	var content strings.Builder
	content.WriteString(titleStyle.Render(m.title))
	content.WriteString("\n\n")
	content.WriteString(m.message)
	content.WriteString("\n")

	if m.errText != "" {
		content.WriteString("\n")
		content.WriteString(m.theme.ErrorText.Render("✗ " + m.errText))
		content.WriteString("\n")
	}

	content.WriteString("\n")
	subtext := r.NewStyle().Foreground(m.theme.Subtext).Italic(true)
	if m.busy {
		content.WriteString(subtext.Render("working..."))
	} else if m.errText != "" {
		content.WriteString(subtext.Render("[y/Enter] Retry   [n/Esc] Cancel"))
	} else {
		content.WriteString(subtext.Render("[y/Enter] Confirm   [n/Esc] Cancel"))
	}

	borderColor := m.theme.Error
	if m.kind == ConfirmFlagChange {
		borderColor = m.theme.Primary
	}

	box := r.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(borderColor).
		Padding(1, 2).
		Width(56).
		Render(content.String())

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}
