package ui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/carmensoftware/carmen-catalog/pkg/model"
)

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(m EditModal, msgs ...tea.Msg) EditModal {
	for _, msg := range msgs {
		m, _ = m.Update(msg)
	}
	return m
}

func tabs(n int) []tea.Msg {
	msgs := make([]tea.Msg, n)
	for i := range msgs {
		msgs[i] = tea.KeyMsg{Type: tea.KeyTab}
	}
	return msgs
}

func sampleCategoryNode() *model.Node {
	return &model.Node{
		Kind: model.KindCategory,
		ClassBase: model.ClassBase{
			ID:                  "c1",
			Code:                "BEV",
			Name:                "Beverages",
			IsActive:            true,
			PriceDeviationLimit: 5,
			QtyDeviationLimit:   10,
			UsedInRecipe:        true,
			TaxProfileID:        "vat-std",
			TaxProfileName:      "Standard VAT",
			TaxRate:             7,
		},
	}
}

func TestCreateModalTargetKinds(t *testing.T) {
	theme := testTheme()

	m := NewCreateModal(nil, theme)
	if m.TargetKind() != model.KindCategory {
		t.Errorf("nil parent target = %v", m.TargetKind())
	}

	cat := sampleCategoryNode()
	m = NewCreateModal(cat, theme)
	if m.TargetKind() != model.KindSubCategory {
		t.Errorf("category parent target = %v", m.TargetKind())
	}

	sub := &model.Node{Kind: model.KindSubCategory, ClassBase: model.ClassBase{ID: "s1"}}
	m = NewCreateModal(sub, theme)
	if m.TargetKind() != model.KindItemGroup {
		t.Errorf("subcategory parent target = %v", m.TargetKind())
	}
}

func TestCreateModalInheritsParentDefaults(t *testing.T) {
	m := NewCreateModal(sampleCategoryNode(), testTheme())

	m = press(m, keyRunes("SOFT"))
	m = press(m, tabs(1)...)
	m = press(m, keyRunes("Soft Drinks"))

	n := m.Result()
	if n == nil {
		t.Fatalf("Result nil, errors: %v", m.Errors())
	}
	if n.Kind != model.KindSubCategory || n.ParentID != "c1" {
		t.Errorf("kind/parent = %v/%q", n.Kind, n.ParentID)
	}
	if n.Code != "SOFT" || n.Name != "Soft Drinks" {
		t.Errorf("typed values lost: %q %q", n.Code, n.Name)
	}
	if !n.IsActive {
		t.Error("new entity must start active")
	}
	if n.PriceDeviationLimit != 5 || n.QtyDeviationLimit != 10 {
		t.Errorf("deviation limits not inherited: %+v", n.ClassBase)
	}
	if !n.UsedInRecipe || n.SoldDirectly {
		t.Errorf("flags not inherited: %+v", n.ClassBase)
	}
	if n.TaxProfileID != "vat-std" || n.TaxRate != 7 {
		t.Errorf("tax defaults not inherited: %+v", n.ClassBase)
	}
}

func TestCreateModalValidationBlocksDispatch(t *testing.T) {
	m := NewCreateModal(nil, testTheme())

	if n := m.Result(); n != nil {
		t.Fatal("empty form must not produce a result")
	}
	errs := m.Errors()
	if errs["code"] == "" || errs["name"] == "" {
		t.Errorf("missing required-field errors: %v", errs)
	}

	// Errors render inline.
	m.SetSize(100, 40)
	if out := stripANSI(m.View()); !strings.Contains(out, "code is required") {
		t.Errorf("inline error missing from view:\n%s", out)
	}
}

func TestNumericFieldParseError(t *testing.T) {
	m := NewCreateModal(nil, testTheme())
	m = press(m, keyRunes("X"))
	m = press(m, tabs(1)...)
	m = press(m, keyRunes("Thing"))
	m = press(m, tabs(3)...) // description, status, price
	m = press(m, keyRunes("abc"))

	if n := m.Result(); n != nil {
		t.Fatal("unparsable number must not produce a result")
	}
	if got := m.Errors()["price_deviation_limit"]; got != "must be a number" {
		t.Errorf("price error = %q", got)
	}
}

func TestEditModalPrefillsExistingEntity(t *testing.T) {
	m := NewEditModal(sampleCategoryNode(), testTheme())

	n := m.Result()
	if n == nil {
		t.Fatalf("prefilled modal invalid: %v", m.Errors())
	}
	if n.ID != "c1" || n.Kind != model.KindCategory {
		t.Errorf("identity lost: %+v", n)
	}
	if n.Code != "BEV" || n.PriceDeviationLimit != 5 || !n.UsedInRecipe {
		t.Errorf("prefill lost: %+v", n.ClassBase)
	}
	if m.IsCreateMode() {
		t.Error("edit modal marked as create")
	}
}

func TestFlagsChangedDetection(t *testing.T) {
	m := NewEditModal(sampleCategoryNode(), testTheme())
	if m.FlagsChanged() {
		t.Error("unchanged modal reports flag change")
	}

	// Field 7 is the sold-directly select.
	m = press(m, tabs(7)...)
	m = press(m, tea.KeyMsg{Type: tea.KeyRight})
	if !m.FlagsChanged() {
		t.Error("sold-directly flip not detected")
	}

	// Flipping back clears it.
	m = press(m, tea.KeyMsg{Type: tea.KeyRight})
	if m.FlagsChanged() {
		t.Error("restored flags still report change")
	}

	n := m.Result()
	if n == nil || n.SoldDirectly {
		t.Errorf("result does not reflect selects: %+v", n)
	}
}

func TestFlagsChangedNeverInCreateMode(t *testing.T) {
	m := NewCreateModal(nil, testTheme())
	m = press(m, tabs(6)...)
	m = press(m, tea.KeyMsg{Type: tea.KeyRight})
	if m.FlagsChanged() {
		t.Error("create mode must never report flag changes")
	}
}

func TestDirtyTracking(t *testing.T) {
	m := NewEditModal(sampleCategoryNode(), testTheme())
	if m.dirty {
		t.Error("fresh modal marked dirty")
	}
	m = press(m, keyRunes("X"))
	if !m.dirty {
		t.Error("typed modal not marked dirty")
	}
}

func TestSaveAndCancelRequests(t *testing.T) {
	m := NewCreateModal(nil, testTheme())

	m = press(m, tea.KeyMsg{Type: tea.KeyCtrlS})
	if !m.IsSaveRequested() {
		t.Error("ctrl+s not registered")
	}
	m.ClearRequests()
	if m.IsSaveRequested() {
		t.Error("ClearRequests did not reset save flag")
	}

	m = press(m, tea.KeyMsg{Type: tea.KeyEsc})
	if !m.IsCancelRequested() {
		t.Error("esc not registered")
	}
}

func TestEditModalViewShowsTarget(t *testing.T) {
	m := NewEditModal(sampleCategoryNode(), testTheme())
	m.SetSize(100, 40)
	out := stripANSI(m.View())
	if !strings.Contains(out, "Edit Category: BEV") {
		t.Errorf("title missing:\n%s", out)
	}

	c := NewCreateModal(sampleCategoryNode(), testTheme())
	c.SetSize(100, 40)
	out = stripANSI(c.View())
	if !strings.Contains(out, "Create Subcategory under BEV · Beverages") {
		t.Errorf("create title missing:\n%s", out)
	}
}
