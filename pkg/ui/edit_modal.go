package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/carmensoftware/carmen-catalog/pkg/model"
)

// EditFieldType defines the type of edit field
type EditFieldType int

const (
	EditFieldText EditFieldType = iota
	EditFieldTextArea
	EditFieldSelect
)

// EditField represents a single editable field
type EditField struct {
	Label    string
	Key      string // DTO field name (code, name, price_deviation_limit, ...)
	Type     EditFieldType
	Input    textinput.Model // for text fields
	TextArea textarea.Model  // for textarea fields
	Options  []string        // for select fields
	Selected int             // current selection index for select fields
	Original string          // original value for dirty detection
}

// EditModal provides field-by-field editing of one classification entity.
// The same modal serves all three kinds; the target kind is fixed when the
// modal opens (edit: the selected node's kind; create: the parent's child
// kind) and determines which payload the orchestrator builds on save.
type EditModal struct {
	fields       []EditField
	focusedField int
	width        int
	height       int
	theme        Theme

	targetKind   model.NodeKind
	isCreateMode bool
	entityID     string // empty in create mode
	parentID     string // parent link for created subcategories/item groups
	parentLabel  string // parent display label for the modal header

	originalUsedInRecipe bool
	originalSoldDirectly bool

	errors map[string]string // field key -> validation message

	dirty           bool
	saveRequested   bool
	cancelRequested bool
}

const (
	fieldCode           = "code"
	fieldName           = "name"
	fieldDescription    = "description"
	fieldActive         = "is_active"
	fieldPriceDeviation = "price_deviation_limit"
	fieldQtyDeviation   = "qty_deviation_limit"
	fieldUsedInRecipe   = "is_used_in_recipe"
	fieldSoldDirectly   = "is_sold_directly"
	fieldTaxProfileID   = "tax_profile_id"
	fieldTaxProfileName = "tax_profile_name"
	fieldTaxRate        = "tax_rate"
)

func boolOptions() []string { return []string{"no", "yes"} }

func boolOption(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

func activeOptions() []string { return []string{"inactive", "active"} }

func activeOption(v bool) string {
	if v {
		return "active"
	}
	return "inactive"
}

func formatLimit(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// classFields builds the field list from a ClassBase value.
func classFields(b model.ClassBase, theme Theme) []EditField {
	return []EditField{
		makeTextField("Code", fieldCode, b.Code, theme),
		makeTextField("Name", fieldName, b.Name, theme),
		makeTextAreaField("Description", fieldDescription, b.Description, theme),
		makeSelectField("Status", fieldActive, activeOption(b.IsActive), activeOptions(), theme),
		makeTextField("Price dev %", fieldPriceDeviation, formatLimit(b.PriceDeviationLimit), theme),
		makeTextField("Qty dev %", fieldQtyDeviation, formatLimit(b.QtyDeviationLimit), theme),
		makeSelectField("In recipes", fieldUsedInRecipe, boolOption(b.UsedInRecipe), boolOptions(), theme),
		makeSelectField("Sold directly", fieldSoldDirectly, boolOption(b.SoldDirectly), boolOptions(), theme),
		makeTextField("Tax profile", fieldTaxProfileID, b.TaxProfileID, theme),
		makeTextField("Tax name", fieldTaxProfileName, b.TaxProfileName, theme),
		makeTextField("Tax rate %", fieldTaxRate, formatLimit(b.TaxRate), theme),
	}
}

// NewEditModal creates a modal pre-populated from an existing node.
func NewEditModal(node *model.Node, theme Theme) EditModal {
	fields := classFields(node.ClassBase, theme)
	fields[0].Input.Focus()

	return EditModal{
		fields:               fields,
		theme:                theme,
		targetKind:           node.Kind,
		entityID:             node.ID,
		parentID:             node.ParentID,
		originalUsedInRecipe: node.UsedInRecipe,
		originalSoldDirectly: node.SoldDirectly,
		errors:               make(map[string]string),
	}
}

// NewCreateModal creates a modal for a new entity under parent. With no
// parent the target is a category; under a category, a subcategory; under a
// subcategory, an item group. Numeric, boolean and tax fields default from
// the parent (a one-time copy, not a stored relationship).
func NewCreateModal(parent *model.Node, theme Theme) EditModal {
	targetKind := model.KindCategory
	parentID := ""
	parentLabel := ""
	if parent != nil {
		child, ok := parent.Kind.ChildKind()
		if !ok {
			// Leaf parents never reach here: the tree gates "add child".
			child = parent.Kind
		}
		targetKind = child
		parentID = parent.ID
		parentLabel = parent.DisplayLabel()
	}

	fields := classFields(model.InheritDefaults(parent), theme)
	fields[0].Input.Focus()

	return EditModal{
		fields:       fields,
		theme:        theme,
		targetKind:   targetKind,
		isCreateMode: true,
		parentID:     parentID,
		parentLabel:  parentLabel,
		errors:       make(map[string]string),
	}
}

// makeTextField creates a text input field
func makeTextField(label, key, value string, theme Theme) EditField {
	ti := textinput.New()
	ti.SetValue(value)
	ti.CharLimit = 200
	ti.Width = 30

	return EditField{
		Label:    label,
		Key:      key,
		Type:     EditFieldText,
		Input:    ti,
		Original: value,
	}
}

// makeTextAreaField creates a textarea field
func makeTextAreaField(label, key, value string, theme Theme) EditField {
	ta := textarea.New()
	ta.SetValue(value)
	ta.SetWidth(30)
	ta.SetHeight(3)
	ta.CharLimit = 2000

	return EditField{
		Label:    label,
		Key:      key,
		Type:     EditFieldTextArea,
		TextArea: ta,
		Original: value,
	}
}

// makeSelectField creates a select field
func makeSelectField(label, key, value string, options []string, theme Theme) EditField {
	selected := 0
	for i, opt := range options {
		if opt == value {
			selected = i
			break
		}
	}

	return EditField{
		Label:    label,
		Key:      key,
		Type:     EditFieldSelect,
		Options:  options,
		Selected: selected,
		Original: value,
	}
}

// TargetKind returns the entity kind this modal edits or creates.
func (m EditModal) TargetKind() model.NodeKind { return m.targetKind }

// IsCreateMode reports whether the modal creates a new entity.
func (m EditModal) IsCreateMode() bool { return m.isCreateMode }

// Update handles input for the edit modal
func (m EditModal) Update(msg tea.Msg) (EditModal, tea.Cmd) {
	var cmd tea.Cmd
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+s":
			m.saveRequested = true
			return m, nil

		case "esc":
			m.cancelRequested = true
			return m, nil

		case "tab", "enter":
			if msg.String() == "enter" && m.fields[m.focusedField].Type == EditFieldTextArea {
				break // newline inside the description
			}
			m.fields[m.focusedField] = m.blurField(m.fields[m.focusedField])
			m.focusedField = (m.focusedField + 1) % len(m.fields)
			m.fields[m.focusedField] = m.focusField(m.fields[m.focusedField])
			return m, nil

		case "shift+tab":
			m.fields[m.focusedField] = m.blurField(m.fields[m.focusedField])
			m.focusedField = (m.focusedField - 1 + len(m.fields)) % len(m.fields)
			m.fields[m.focusedField] = m.focusField(m.fields[m.focusedField])
			return m, nil

		case "left", "right":
			if m.fields[m.focusedField].Type == EditFieldSelect {
				field := &m.fields[m.focusedField]
				if msg.String() == "left" {
					field.Selected = (field.Selected - 1 + len(field.Options)) % len(field.Options)
				} else {
					field.Selected = (field.Selected + 1) % len(field.Options)
				}
				m.updateDirtyFlag()
				return m, nil
			}
		}

		field := &m.fields[m.focusedField]
		switch field.Type {
		case EditFieldText:
			field.Input, cmd = field.Input.Update(msg)
			cmds = append(cmds, cmd)
		case EditFieldTextArea:
			field.TextArea, cmd = field.TextArea.Update(msg)
			cmds = append(cmds, cmd)
		}
		m.updateDirtyFlag()
	}

	return m, tea.Batch(cmds...)
}

func (m EditModal) focusField(field EditField) EditField {
	switch field.Type {
	case EditFieldText:
		field.Input.Focus()
	case EditFieldTextArea:
		field.TextArea.Focus()
	}
	return field
}

func (m EditModal) blurField(field EditField) EditField {
	switch field.Type {
	case EditFieldText:
		field.Input.Blur()
	case EditFieldTextArea:
		field.TextArea.Blur()
	}
	return field
}

func (m *EditModal) updateDirtyFlag() {
	m.dirty = false
	for _, field := range m.fields {
		if m.getCurrentValue(field) != field.Original {
			m.dirty = true
			break
		}
	}
}

func (m EditModal) getCurrentValue(field EditField) string {
	switch field.Type {
	case EditFieldText:
		return field.Input.Value()
	case EditFieldTextArea:
		return field.TextArea.Value()
	case EditFieldSelect:
		if field.Selected >= 0 && field.Selected < len(field.Options) {
			return field.Options[field.Selected]
		}
		return ""
	}
	return ""
}

func (m EditModal) valueByKey(key string) string {
	for _, field := range m.fields {
		if field.Key == key {
			return m.getCurrentValue(field)
		}
	}
	return ""
}

// Result assembles the edited entity as a Node of the target kind, running
// local validation first. On validation failure the returned node is nil
// and the modal's inline errors are populated; dispatch must not proceed.
func (m *EditModal) Result() *model.Node {
	m.errors = make(map[string]string)

	base := model.ClassBase{
		ID:             m.entityID,
		Code:           strings.TrimSpace(m.valueByKey(fieldCode)),
		Name:           strings.TrimSpace(m.valueByKey(fieldName)),
		Description:    strings.TrimSpace(m.valueByKey(fieldDescription)),
		IsActive:       m.valueByKey(fieldActive) == "active",
		UsedInRecipe:   m.valueByKey(fieldUsedInRecipe) == "yes",
		SoldDirectly:   m.valueByKey(fieldSoldDirectly) == "yes",
		TaxProfileID:   strings.TrimSpace(m.valueByKey(fieldTaxProfileID)),
		TaxProfileName: strings.TrimSpace(m.valueByKey(fieldTaxProfileName)),
	}

	base.PriceDeviationLimit = m.parseLimit(fieldPriceDeviation)
	base.QtyDeviationLimit = m.parseLimit(fieldQtyDeviation)
	base.TaxRate = m.parseLimit(fieldTaxRate)

	for key, msg := range base.Validate() {
		if _, taken := m.errors[key]; !taken {
			m.errors[key] = msg
		}
	}
	if len(m.errors) > 0 {
		return nil
	}

	return &model.Node{
		Kind:      m.targetKind,
		ClassBase: base,
		ParentID:  m.parentID,
	}
}

// parseLimit parses a numeric percentage field, recording a parse failure
// as an inline error.
func (m *EditModal) parseLimit(key string) float64 {
	raw := strings.TrimSpace(m.valueByKey(key))
	if raw == "" {
		return 0
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		m.errors[key] = "must be a number"
		return 0
	}
	return v
}

// FlagsChanged reports whether the recipe/sold flags differ from the values
// the modal opened with. Only meaningful in edit mode; changing either flag
// has downstream effects (recipes, menu items), so submission is
// intercepted by a confirmation step.
func (m EditModal) FlagsChanged() bool {
	if m.isCreateMode {
		return false
	}
	return m.valueByKey(fieldUsedInRecipe) != boolOption(m.originalUsedInRecipe) ||
		m.valueByKey(fieldSoldDirectly) != boolOption(m.originalSoldDirectly)
}

// Errors returns the current inline validation errors.
func (m EditModal) Errors() map[string]string { return m.errors }

// IsSaveRequested returns true if ctrl+s was pressed
func (m EditModal) IsSaveRequested() bool { return m.saveRequested }

// IsCancelRequested returns true if esc was pressed
func (m EditModal) IsCancelRequested() bool { return m.cancelRequested }

// ClearRequests resets the save/cancel request flags. The orchestrator
// calls this after consuming a request so the modal can stay open (flag
// confirmation declined, dispatch failure).
func (m *EditModal) ClearRequests() {
	m.saveRequested = false
	m.cancelRequested = false
}

// SetSize sets the modal dimensions
func (m *EditModal) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// View renders the edit modal
func (m EditModal) View() string {
	r := m.theme.Renderer

	boxWidth := m.width - 10
	if boxWidth < 60 {
		boxWidth = 60
	}
	if boxWidth > 80 {
		boxWidth = 80
	}

	headerStyle := r.NewStyle().
		Bold(true).
		Foreground(m.theme.Primary)

	var title string
	if m.isCreateMode {
		title = "Create " + m.targetKind.Label()
		if m.parentLabel != "" {
			title += " under " + m.parentLabel
		}
	} else {
		title = fmt.Sprintf("Edit %s: %s", m.targetKind.Label(), m.valueByKey(fieldCode))
	}

	var content strings.Builder
	content.WriteString(headerStyle.Render(title))
	content.WriteString("\n\n")

	labelStyle := r.NewStyle().
		Foreground(m.theme.Secondary).
		Width(14).
		Align(lipgloss.Right)

	focusedLabelStyle := r.NewStyle().
		Foreground(m.theme.Primary).
		Bold(true).
		Width(14).
		Align(lipgloss.Right)

	selectStyle := r.NewStyle().Foreground(m.theme.Primary)

	for i, field := range m.fields {
		isFocused := i == m.focusedField

		var labelStr string
		if isFocused {
			labelStr = focusedLabelStyle.Render(field.Label + ":")
		} else {
			labelStr = labelStyle.Render(field.Label + ":")
		}
		content.WriteString(labelStr)
		content.WriteString(" ")

		switch field.Type {
		case EditFieldText:
			content.WriteString(field.Input.View())

		case EditFieldTextArea:
			taView := field.TextArea.View()
			lines := strings.Split(taView, "\n")
			for idx, line := range lines {
				if idx > 0 {
					content.WriteString(strings.Repeat(" ", 15))
				}
				content.WriteString(line)
				if idx < len(lines)-1 {
					content.WriteString("\n")
				}
			}

		case EditFieldSelect:
			val := field.Options[field.Selected]
			if isFocused {
				content.WriteString(selectStyle.Render(fmt.Sprintf("< %s >", val)))
			} else {
				content.WriteString(val)
			}
		}

		if msg, bad := m.errors[field.Key]; bad {
			content.WriteString("  ")
			content.WriteString(m.theme.ErrorText.Render("✗ " + msg))
		}

		content.WriteString("\n")
		if field.Type == EditFieldTextArea {
			content.WriteString("\n")
		}
	}

	content.WriteString("\n")
	subtextStyle := r.NewStyle().
		Foreground(m.theme.Subtext).
		Italic(true)

	instructions := "[Tab] Next field   [Ctrl+S] Save   [Esc] Cancel"
	if m.fields[m.focusedField].Type == EditFieldSelect {
		instructions = "[←/→] Change   " + instructions
	}
	content.WriteString(subtextStyle.Render(instructions))

	boxStyle := r.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.theme.Primary).
		Padding(1, 2).
		Width(boxWidth)

	box := boxStyle.Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}
