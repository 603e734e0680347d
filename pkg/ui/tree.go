// tree.go - Hierarchical tree view for the category/subcategory/item-group
// classification.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/carmensoftware/carmen-catalog/pkg/catalog"
	"github.com/carmensoftware/carmen-catalog/pkg/debug"
	"github.com/carmensoftware/carmen-catalog/pkg/model"
)

// visibleRow is one flattened, currently-visible tree row. The branch prefix
// is computed once per rebuild, not per frame.
type visibleRow struct {
	node   *model.Node
	prefix string
}

// TreeModel manages the hierarchical classification tree view state.
//
// Expansion state is a plain keyed-boolean map owned by this model; it is
// not global. Keys are kind-qualified (ids are only unique per kind), so
// state survives tree rebuilds as long as the backend ids are stable. While
// a search query is active the view uses the filter's auto-expand map
// instead; the user's own expansion state is left untouched underneath.
type TreeModel struct {
	theme Theme

	roots   []*model.Node // full merged forest
	orphans int           // dropped parent references in the last build

	expanded     map[string]bool
	defaultDepth int  // levels expanded on first build (0 = none)
	seeded       bool // defaults applied once per model lifetime

	// Search state. filteredRoots/autoExpand are only valid while
	// searchQuery is non-empty.
	searchQuery   string
	filteredRoots []*model.Node
	autoExpand    map[string]bool

	visible        []visibleRow
	cursor         int
	viewportOffset int
	width          int
	height         int

	built bool
}

// NewTreeModel creates an empty tree model. defaultDepth controls how many
// levels start expanded on the first build.
func NewTreeModel(theme Theme, defaultDepth int) TreeModel {
	return TreeModel{
		theme:        theme,
		defaultDepth: defaultDepth,
		expanded:     make(map[string]bool),
	}
}

// SetSize updates the available dimensions for the tree view.
func (t *TreeModel) SetSize(width, height int) {
	t.width = width
	t.height = height
	t.ensureCursorVisible()
}

// Build rebuilds the tree from the flat source collections. The previous
// selection is preserved by node key when possible, and expansion state
// carries over for ids that recur.
func (t *TreeModel) Build(cols model.Collections) {
	prevKey := ""
	if n := t.SelectedNode(); n != nil {
		prevKey = n.Key()
	}

	res := catalog.BuildTree(cols.Categories, cols.SubCategories, cols.ItemGroups)
	t.roots = res.Roots
	t.orphans = res.Orphans
	if t.orphans > 0 {
		debug.Log("tree build dropped %d orphaned nodes", t.orphans)
	}

	if !t.seeded {
		for _, key := range catalog.Keys(t.roots) {
			// Keys encode the kind, which fixes the depth.
			if depthForKey(key) < t.defaultDepth {
				t.expanded[key] = true
			}
		}
		t.seeded = true
	}

	if t.searchQuery != "" {
		t.applyFilter()
	}
	t.rebuildVisible()
	t.built = true

	if prevKey != "" {
		t.SelectByKey(prevKey)
	}
	t.ensureCursorVisible()
}

func depthForKey(key string) int {
	switch {
	case strings.HasPrefix(key, model.KindCategory.String()+":"):
		return 0
	case strings.HasPrefix(key, model.KindSubCategory.String()+":"):
		return 1
	default:
		return 2
	}
}

// IsBuilt reports whether Build has run at least once.
func (t *TreeModel) IsBuilt() bool { return t.built }

// Orphans returns the dropped-reference count from the last build.
func (t *TreeModel) Orphans() int { return t.orphans }

// RootCount returns the number of root categories currently displayed.
func (t *TreeModel) RootCount() int { return len(t.displayRoots()) }

// VisibleCount returns the number of currently visible rows.
func (t *TreeModel) VisibleCount() int { return len(t.visible) }

// displayRoots returns the filtered forest while searching, the full forest
// otherwise.
func (t *TreeModel) displayRoots() []*model.Node {
	if t.searchQuery != "" {
		return t.filteredRoots
	}
	return t.roots
}

// isExpanded returns the effective expansion state for a node key.
func (t *TreeModel) isExpanded(key string) bool {
	if t.searchQuery != "" {
		return t.autoExpand[key]
	}
	return t.expanded[key]
}

// ToggleExpand flips the expansion state of the selected node. No-op on
// leaves and while a search query is active (search owns expansion then).
func (t *TreeModel) ToggleExpand() {
	if t.searchQuery != "" {
		return
	}
	node := t.SelectedNode()
	if node == nil || len(node.Children) == 0 {
		return
	}
	key := node.Key()
	t.expanded[key] = !t.expanded[key]
	t.rebuildVisible()
	t.ensureCursorVisible()
}

// ExpandAll marks every node id currently present in the tree as expanded.
func (t *TreeModel) ExpandAll() {
	for _, key := range catalog.Keys(t.roots) {
		t.expanded[key] = true
	}
	t.rebuildVisible()
	t.ensureCursorVisible()
}

// CollapseAll clears the expansion map entirely.
func (t *TreeModel) CollapseAll() {
	t.expanded = make(map[string]bool)
	t.rebuildVisible()
	t.ensureCursorVisible()
}

// ExpandedKeys returns a copy of the user expansion map. Test hook.
func (t *TreeModel) ExpandedKeys() map[string]bool {
	out := make(map[string]bool, len(t.expanded))
	for k, v := range t.expanded {
		if v {
			out[k] = true
		}
	}
	return out
}

// SetQuery applies a search query. An empty query restores the unfiltered
// tree and the user's own expansion state.
func (t *TreeModel) SetQuery(query string) {
	t.searchQuery = strings.TrimSpace(query)
	if t.searchQuery == "" {
		t.filteredRoots = nil
		t.autoExpand = nil
	} else {
		t.applyFilter()
	}
	t.cursor = 0
	t.viewportOffset = 0
	t.rebuildVisible()
}

// Query returns the active search query ("" when not searching).
func (t *TreeModel) Query() string { return t.searchQuery }

func (t *TreeModel) applyFilter() {
	res := catalog.FilterTree(t.roots, t.searchQuery)
	t.filteredRoots = res.Roots
	t.autoExpand = res.AutoExpand
}

// rebuildVisible flattens the display forest under the effective expansion
// map and precomputes branch prefixes.
func (t *TreeModel) rebuildVisible() {
	t.visible = t.visible[:0]

	var walk func(n *model.Node, ancestorsLast []bool, isLast bool)
	walk = func(n *model.Node, ancestorsLast []bool, isLast bool) {
		t.visible = append(t.visible, visibleRow{
			node:   n,
			prefix: branchPrefix(ancestorsLast, isLast, n.Depth),
		})
		if len(n.Children) == 0 || !t.isExpanded(n.Key()) {
			return
		}
		childAncestors := append(append([]bool(nil), ancestorsLast...), isLast)
		for i, child := range n.Children {
			walk(child, childAncestors, i == len(n.Children)-1)
		}
	}

	roots := t.displayRoots()
	for i, root := range roots {
		walk(root, nil, i == len(roots)-1)
	}

	if t.cursor >= len(t.visible) {
		t.cursor = len(t.visible) - 1
	}
	if t.cursor < 0 {
		t.cursor = 0
	}
}

// branchPrefix builds the indentation and branch characters for a node.
func branchPrefix(ancestorsLast []bool, isLast bool, depth int) string {
	if depth == 0 {
		return ""
	}
	var sb strings.Builder
	// Skip the root level: roots draw no vertical rails.
	for _, last := range ancestorsLast[1:] {
		if last {
			sb.WriteString("    ")
		} else {
			sb.WriteString("│   ")
		}
	}
	if isLast {
		sb.WriteString("└── ")
	} else {
		sb.WriteString("├── ")
	}
	return sb.String()
}

// SelectedNode returns the currently selected node, or nil if none.
func (t *TreeModel) SelectedNode() *model.Node {
	if t.cursor >= 0 && t.cursor < len(t.visible) {
		return t.visible[t.cursor].node
	}
	return nil
}

// SelectByKey moves the cursor to the node with the given key, if visible.
func (t *TreeModel) SelectByKey(key string) bool {
	for i, row := range t.visible {
		if row.node.Key() == key {
			t.cursor = i
			t.ensureCursorVisible()
			return true
		}
	}
	return false
}

// MoveDown moves the cursor down one visible row.
func (t *TreeModel) MoveDown() {
	if t.cursor < len(t.visible)-1 {
		t.cursor++
		t.ensureCursorVisible()
	}
}

// MoveUp moves the cursor up one visible row.
func (t *TreeModel) MoveUp() {
	if t.cursor > 0 {
		t.cursor--
		t.ensureCursorVisible()
	}
}

// JumpToTop moves the cursor to the first row.
func (t *TreeModel) JumpToTop() {
	t.cursor = 0
	t.ensureCursorVisible()
}

// JumpToBottom moves the cursor to the last row.
func (t *TreeModel) JumpToBottom() {
	if len(t.visible) > 0 {
		t.cursor = len(t.visible) - 1
		t.ensureCursorVisible()
	}
}

// effectiveVisibleCount is the number of node rows that fit in the viewport
// after the header and position indicator.
func (t *TreeModel) effectiveVisibleCount() int {
	n := t.height - 2
	if n < 1 {
		n = 1
	}
	return n
}

func (t *TreeModel) visibleRange() (start, end int) {
	count := t.effectiveVisibleCount()
	start = t.viewportOffset
	if start > len(t.visible) {
		start = len(t.visible)
	}
	end = start + count
	if end > len(t.visible) {
		end = len(t.visible)
	}
	return start, end
}

func (t *TreeModel) ensureCursorVisible() {
	count := t.effectiveVisibleCount()
	if t.cursor < t.viewportOffset {
		t.viewportOffset = t.cursor
	}
	if t.cursor >= t.viewportOffset+count {
		t.viewportOffset = t.cursor - count + 1
	}
	if t.viewportOffset < 0 {
		t.viewportOffset = 0
	}
}

// View renders the tree with a header row and windowed node rendering. Only
// nodes inside the viewport are rendered, so a frame costs O(viewport)
// rather than O(tree).
func (t *TreeModel) View() string {
	if !t.built || len(t.visible) == 0 {
		return t.renderEmptyState()
	}

	var sb strings.Builder
	sb.WriteString(t.renderHeader())
	sb.WriteString("\n")

	start, end := t.visibleRange()
	for i := start; i < end; i++ {
		row := t.visible[i]
		line := t.renderNode(row, i == t.cursor)
		sb.WriteString(line)
		sb.WriteString("\n")
	}

	if len(t.visible) > t.effectiveVisibleCount() {
		sb.WriteString(t.renderPositionIndicator(start, end))
	}

	return sb.String()
}

func (t *TreeModel) renderEmptyState() string {
	r := t.theme.Renderer
	var sb strings.Builder
	sb.WriteString(t.theme.PrimaryBold.Render("Product Classification"))
	sb.WriteString("\n\n")
	if t.searchQuery != "" {
		sb.WriteString(r.NewStyle().Foreground(t.theme.Muted).Render(
			fmt.Sprintf("No matches for %q.", t.searchQuery)))
	} else {
		sb.WriteString(r.NewStyle().Foreground(t.theme.Muted).Render(
			"No categories loaded. Press r to refresh, a to create one."))
	}
	return sb.String()
}

func (t *TreeModel) renderHeader() string {
	width := t.width
	if width <= 0 {
		width = 80
	}
	return t.theme.Header.Width(width).Render("  CODE        NAME")
}

func (t *TreeModel) renderPositionIndicator(start, end int) string {
	indicator := fmt.Sprintf(" %d-%d of %d", start+1, end, len(t.visible))
	return t.theme.MutedText.Render(indicator)
}

// kindIcon returns the glyph drawn before a node's code.
func kindIcon(kind model.NodeKind) string {
	switch kind {
	case model.KindCategory:
		return "▣"
	case model.KindSubCategory:
		return "◆"
	case model.KindItemGroup:
		return "▪"
	default:
		return "?"
	}
}

// renderNode renders a single tree row:
// [branch prefix] [expand] [icon] [code] [name] ...... [count/status]
func (t *TreeModel) renderNode(row visibleRow, isSelected bool) string {
	node := row.node
	r := t.theme.Renderer
	width := t.width
	if width <= 0 {
		width = 80
	}
	width-- // avoid wrapping on the exact terminal edge

	var left strings.Builder

	prefix := t.theme.MutedText.Render(row.prefix)
	left.WriteString(prefix)

	indicator := "•"
	if len(node.Children) > 0 {
		if t.isExpanded(node.Key()) {
			indicator = "▾"
		} else {
			indicator = "▸"
		}
	}
	left.WriteString(r.NewStyle().Foreground(t.theme.Secondary).Render(indicator))
	left.WriteString(" ")

	icon := kindIcon(node.Kind)
	left.WriteString(r.NewStyle().Foreground(t.theme.KindColor(node.Depth)).Render(icon))
	left.WriteString(" ")

	codeStyle := t.theme.SecondaryText
	nameStyle := r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#333333", Dark: "#E8E8E8"})
	if isSelected {
		codeStyle = codeStyle.Bold(true)
		nameStyle = nameStyle.Bold(true)
	}
	if !node.IsActive {
		codeStyle = t.theme.InactiveText
		nameStyle = t.theme.InactiveText
	}

	code := padRight(truncate(node.Code, 10), 10)
	left.WriteString(t.renderHighlighted(code, codeStyle))
	left.WriteString("  ")

	// Right side: item count for groups, inactive marker for everything.
	var rightParts []string
	if node.Kind == model.KindItemGroup && node.ItemCount > 0 {
		rightParts = append(rightParts, t.theme.MutedText.Render(fmt.Sprintf("%d items", node.ItemCount)))
	}
	if !node.IsActive {
		rightParts = append(rightParts, t.theme.InactiveText.Render("inactive"))
	}
	rightSide := strings.Join(rightParts, " ")
	rightWidth := lipgloss.Width(rightSide)

	fixedWidth := lipgloss.Width(left.String())
	nameWidth := width - fixedWidth - rightWidth - 2
	if nameWidth < 5 {
		nameWidth = 5
	}
	name := truncate(node.Name, nameWidth)
	left.WriteString(t.renderHighlighted(name, nameStyle))

	leftLen := lipgloss.Width(left.String())
	padding := width - leftLen - rightWidth
	if padding < 0 {
		padding = 0
	}

	line := left.String() + strings.Repeat(" ", padding) + rightSide
	if isSelected {
		line = t.theme.Selected.Render(line)
	}
	return line
}

// renderHighlighted renders s in base style with query matches emphasised.
// Highlighting is presentation-only; splitting happens on the already
// truncated display string.
func (t *TreeModel) renderHighlighted(s string, base lipgloss.Style) string {
	if t.searchQuery == "" {
		return base.Render(s)
	}
	segments := catalog.HighlightSegments(s, t.searchQuery)
	var sb strings.Builder
	for _, seg := range segments {
		if seg.Match {
			sb.WriteString(t.theme.MatchText.Render(seg.Text))
		} else {
			sb.WriteString(base.Render(seg.Text))
		}
	}
	return sb.String()
}
