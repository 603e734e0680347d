package ui

import (
	"fmt"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/carmensoftware/carmen-catalog/pkg/config"
	"github.com/carmensoftware/carmen-catalog/pkg/debug"
	"github.com/carmensoftware/carmen-catalog/pkg/model"
	"github.com/carmensoftware/carmen-catalog/pkg/version"
)

// focus represents which UI element has keyboard focus
type focus int

const (
	focusTree focus = iota
	focusSearch
	focusEdit
	focusConfirm
	focusHelp
)

var refreshSpinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// spinnerTickMsg advances the refresh spinner while a fetch is in flight.
type spinnerTickMsg struct{}

// Model is the root TUI model. It owns the tree, the search input and the
// modal stack, and routes all remote calls through the Service.
type Model struct {
	svc     Service
	snap    Snapshot
	cfg     config.Config
	theme   Theme
	offline bool

	tree      TreeModel
	editModal EditModal
	confirm   ConfirmModel

	focused   focus
	prevFocus focus // restored when the help overlay closes

	searchInput textinput.Model
	searchGen   int

	width  int
	height int
	ready  bool

	loading    bool
	refreshing bool
	spinnerIdx int

	lastFetched time.Time
	fromCache   bool

	statusMsg string
	statusGen int

	// pendingSave holds an edit result parked behind the flag-change
	// confirmation. Creates never trip the flag check, so the deferred
	// dispatch is always an update.
	pendingSave *model.Node
	saving      bool

	// reselectKey restores the selection after the post-write refetch.
	reselectKey string

	quitting bool
}

// NewModel constructs the root model. snap may be nil when no snapshot
// store is available.
func NewModel(svc Service, snap Snapshot, cfg config.Config, offline bool, theme Theme) Model {
	si := textinput.New()
	si.Placeholder = "search code, name, description"
	si.Prompt = "/ "
	si.CharLimit = 120

	return Model{
		svc:         svc,
		snap:        snap,
		cfg:         cfg,
		theme:       theme,
		offline:     offline,
		tree:        NewTreeModel(theme, cfg.UI.ExpandDepth),
		searchInput: si,
		loading:     true,
	}
}

// Init kicks off the first load: the API when online, the snapshot store
// otherwise.
func (m Model) Init() tea.Cmd {
	if m.offline {
		if m.snap == nil {
			return func() tea.Msg {
				return RefreshResultMsg{Err: fmt.Errorf("offline mode requires a cached snapshot"), FromCache: true}
			}
		}
		return loadSnapshotCmd(m.snap)
	}
	return tea.Batch(refreshCmd(m.svc, m.snap), spinnerTickCmd())
}

func spinnerTickCmd() tea.Cmd {
	return tea.Tick(120*time.Millisecond, func(time.Time) tea.Msg {
		return spinnerTickMsg{}
	})
}

func (m *Model) setStatus(msg string) tea.Cmd {
	m.statusMsg = msg
	m.statusGen++
	return statusClearCmd(m.statusGen)
}

func (m *Model) debounce() time.Duration {
	return time.Duration(m.cfg.UI.SearchDebounceMS) * time.Millisecond
}

// Update routes messages by focus and handles async results.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.tree.SetSize(msg.Width, msg.Height-3)
		m.editModal.SetSize(msg.Width, msg.Height)
		m.confirm.SetSize(msg.Width, msg.Height)
		m.searchInput.Width = msg.Width - 6
		return m, nil

	case spinnerTickMsg:
		if !m.refreshing && !m.loading {
			return m, nil
		}
		m.spinnerIdx++
		return m, spinnerTickCmd()

	case RefreshResultMsg:
		return m.handleRefreshResult(msg)

	case WriteResultMsg:
		return m.handleWriteResult(msg)

	case searchTickMsg:
		if msg.Gen != m.searchGen {
			return m, nil
		}
		m.tree.SetQuery(m.searchInput.Value())
		return m, nil

	case statusClearMsg:
		if msg.Gen == m.statusGen {
			m.statusMsg = ""
		}
		return m, nil

	case tea.KeyMsg:
		switch m.focused {
		case focusSearch:
			return m.updateSearch(msg)
		case focusEdit:
			return m.updateEdit(msg)
		case focusConfirm:
			return m.updateConfirm(msg)
		case focusHelp:
			m.focused = m.prevFocus
			return m, nil
		default:
			return m.updateTree(msg)
		}
	}

	return m, nil
}

func (m Model) handleRefreshResult(msg RefreshResultMsg) (tea.Model, tea.Cmd) {
	m.loading = false
	m.refreshing = false

	if msg.Err != nil {
		debug.Error(msg.Err, "refresh failed")
		// A failed first fetch still leaves the snapshot as a fallback.
		if !msg.FromCache && !m.tree.IsBuilt() && m.snap != nil {
			cmd := m.setStatus(fmt.Sprintf("⚠ fetch failed, using cached data: %v", msg.Err))
			return m, tea.Batch(loadSnapshotCmd(m.snap), cmd)
		}
		return m, m.setStatus(fmt.Sprintf("❌ refresh failed: %v", msg.Err))
	}

	m.tree.Build(msg.Cols)
	m.lastFetched = msg.FetchedAt
	m.fromCache = msg.FromCache

	if m.reselectKey != "" {
		m.tree.SelectByKey(m.reselectKey)
		m.reselectKey = ""
	}

	var cmd tea.Cmd
	if n := m.tree.Orphans(); n > 0 {
		debug.Log("dropped %d orphaned entries", n)
	}
	if msg.FromCache {
		cmd = m.setStatus("📦 showing cached snapshot from " + FormatTimeRel(msg.FetchedAt))
	}
	return m, cmd
}

func (m Model) handleWriteResult(msg WriteResultMsg) (tea.Model, tea.Cmd) {
	m.saving = false

	if msg.Err != nil {
		debug.Error(msg.Err, "%s %s failed", msg.Action, msg.Kind)
		if msg.Action == ActionDelete {
			// The dialog stays open; confirming again retries.
			m.confirm.SetError(msg.Err)
			return m, nil
		}
		// The edit modal is still open with its values; just surface the
		// failure.
		m.focused = focusEdit
		return m, m.setStatus(fmt.Sprintf("❌ %s failed: %v", msg.Action, msg.Err))
	}

	m.focused = focusTree
	m.pendingSave = nil
	if msg.Action != ActionDelete {
		m.reselectKey = msg.Key
	}

	var verb string
	switch msg.Action {
	case ActionCreate:
		verb = "Created"
	case ActionUpdate:
		verb = "Updated"
	case ActionDelete:
		verb = "Deleted"
	}
	toast := m.setStatus(fmt.Sprintf("✓ %s %s %s", verb, msg.Kind.Label(), msg.Label))

	if m.offline {
		return m, toast
	}
	m.refreshing = true
	return m, tea.Batch(refreshCmd(m.svc, m.snap), spinnerTickCmd(), toast)
}

func (m Model) updateTree(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		return m, tea.Quit

	case "?":
		m.prevFocus = m.focused
		m.focused = focusHelp
		return m, nil

	case "/":
		m.focused = focusSearch
		m.searchInput.Focus()
		return m, textinput.Blink

	case "esc":
		if m.tree.Query() != "" {
			m.searchInput.SetValue("")
			m.searchGen++
			m.tree.SetQuery("")
		}
		return m, nil

	case "j", "down":
		m.tree.MoveDown()
	case "k", "up":
		m.tree.MoveUp()
	case "g", "home":
		m.tree.JumpToTop()
	case "G", "end":
		m.tree.JumpToBottom()

	case "enter", " ", "l", "h":
		m.tree.ToggleExpand()

	case "E":
		m.tree.ExpandAll()
	case "C":
		m.tree.CollapseAll()

	case "r":
		if m.offline {
			return m, m.setStatus("⚠ offline mode, refresh disabled")
		}
		if m.refreshing {
			return m, nil
		}
		m.refreshing = true
		return m, tea.Batch(refreshCmd(m.svc, m.snap), spinnerTickCmd())

	case "y":
		if n := m.tree.SelectedNode(); n != nil {
			if err := clipboard.WriteAll(n.Code); err != nil {
				return m, m.setStatus(fmt.Sprintf("❌ clipboard error: %v", err))
			}
			return m, m.setStatus("📋 copied " + n.Code)
		}
		return m, nil

	case "a":
		return m.openCreate(false)
	case "A":
		return m.openCreate(true)

	case "e":
		n := m.tree.SelectedNode()
		if n == nil {
			return m, nil
		}
		m.editModal = NewEditModal(n, m.theme)
		m.editModal.SetSize(m.width, m.height)
		m.focused = focusEdit
		return m, nil

	case "d", "delete":
		n := m.tree.SelectedNode()
		if n == nil {
			return m, nil
		}
		m.confirm = NewDeleteConfirm(n, m.theme)
		m.confirm.SetSize(m.width, m.height)
		m.focused = focusConfirm
		return m, nil
	}

	return m, nil
}

// openCreate opens the create modal. asRoot forces a new category; otherwise
// the target kind derives from the selected node.
func (m Model) openCreate(asRoot bool) (tea.Model, tea.Cmd) {
	parent := m.tree.SelectedNode()
	if asRoot {
		parent = nil
	}
	if parent != nil && !parent.CanHaveChildren() {
		return m, m.setStatus("⚠ " + parent.Kind.Label() + " entries cannot have children")
	}
	m.editModal = NewCreateModal(parent, m.theme)
	m.editModal.SetSize(m.width, m.height)
	m.focused = focusEdit
	return m, nil
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.searchInput.SetValue("")
		m.searchInput.Blur()
		m.searchGen++
		m.tree.SetQuery("")
		m.focused = focusTree
		return m, nil

	case "enter":
		m.searchInput.Blur()
		m.searchGen++
		m.tree.SetQuery(m.searchInput.Value())
		m.focused = focusTree
		return m, nil
	}

	var cmd tea.Cmd
	before := m.searchInput.Value()
	m.searchInput, cmd = m.searchInput.Update(msg)
	if m.searchInput.Value() != before {
		m.searchGen++
		return m, tea.Batch(cmd, searchTickCmd(m.searchGen, m.debounce()))
	}
	return m, cmd
}

func (m Model) updateEdit(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.saving {
		return m, nil
	}

	var cmd tea.Cmd
	m.editModal, cmd = m.editModal.Update(msg)

	if m.editModal.IsCancelRequested() {
		m.editModal.ClearRequests()
		m.focused = focusTree
		return m, nil
	}

	if m.editModal.IsSaveRequested() {
		m.editModal.ClearRequests()

		n := m.editModal.Result()
		if n == nil {
			// Validation failed; the modal shows inline errors.
			return m, nil
		}

		if m.offline {
			return m, m.setStatus("⚠ offline mode, changes disabled")
		}

		if m.editModal.FlagsChanged() {
			m.pendingSave = n
			m.confirm = NewFlagChangeConfirm(n, m.theme)
			m.confirm.SetSize(m.width, m.height)
			m.focused = focusConfirm
			return m, nil
		}

		m.saving = true
		return m, saveCmd(m.svc, n, m.editModal.IsCreateMode(), false)
	}

	return m, cmd
}

func (m Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.confirm, cmd = m.confirm.Update(msg)

	if m.confirm.IsDeclined() {
		m.confirm.ClearRequests()
		if m.confirm.Kind() == ConfirmFlagChange {
			// Back to the modal with the values intact.
			m.pendingSave = nil
			m.focused = focusEdit
		} else {
			m.focused = focusTree
		}
		return m, nil
	}

	if m.confirm.IsConfirmed() {
		m.confirm.ClearRequests()

		if m.offline {
			m.focused = focusTree
			return m, m.setStatus("⚠ offline mode, changes disabled")
		}

		switch m.confirm.Kind() {
		case ConfirmDelete:
			m.confirm.SetBusy(true)
			return m, deleteCmd(m.svc, m.confirm.Target)

		case ConfirmFlagChange:
			if m.pendingSave == nil {
				m.focused = focusTree
				return m, nil
			}
			n := m.pendingSave
			m.pendingSave = nil
			m.saving = true
			m.focused = focusEdit
			return m, saveCmd(m.svc, n, false, true)
		}
	}

	return m, cmd
}

// View renders the full interface.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Initializing..."
	}
	if m.loading {
		return m.renderLoadingScreen()
	}

	switch m.focused {
	case focusEdit:
		return m.editModal.View()
	case focusConfirm:
		return m.confirm.View()
	case focusHelp:
		return m.renderHelp()
	}

	header := m.renderHeader()
	body := m.tree.View()
	status := m.renderStatusBar()

	return lipgloss.JoinVertical(lipgloss.Left, header, body, status)
}

func (m Model) renderLoadingScreen() string {
	frame := refreshSpinnerFrames[m.spinnerIdx%len(refreshSpinnerFrames)]
	r := m.theme.Renderer

	spinnerStyle := r.NewStyle().Foreground(m.theme.Primary).Bold(true)
	titleStyle := r.NewStyle().Foreground(ThemeFg("#F8F8F2")).Bold(true)

	content := lipgloss.JoinVertical(lipgloss.Center,
		spinnerStyle.Render(frame),
		"",
		titleStyle.Render("Loading catalog..."),
	)
	return lipgloss.Place(m.width, m.height-1, lipgloss.Center, lipgloss.Center, content)
}

func (m Model) renderHeader() string {
	r := m.theme.Renderer
	title := m.theme.PrimaryBold.Render("Product Classification")

	var right string
	switch {
	case m.refreshing:
		frame := refreshSpinnerFrames[m.spinnerIdx%len(refreshSpinnerFrames)]
		right = r.NewStyle().Foreground(m.theme.Primary).Render(frame + " refreshing")
	case m.offline:
		right = m.theme.ErrorText.Render("⏻ offline")
	case m.fromCache:
		right = m.theme.MutedText.Render("📦 cached " + FormatTimeRel(m.lastFetched))
	case !m.lastFetched.IsZero():
		right = m.theme.MutedText.Render("fetched " + FormatTimeRel(m.lastFetched))
	}

	gap := m.width - lipgloss.Width(title) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	return " " + title + padRight("", gap) + right
}

func (m Model) renderStatusBar() string {
	if m.focused == focusSearch || m.tree.Query() != "" {
		count := ""
		if m.tree.Query() != "" {
			count = m.theme.MutedText.Render(fmt.Sprintf("  %d shown", m.tree.VisibleCount()))
		}
		return " " + m.searchInput.View() + count
	}

	if m.statusMsg != "" {
		return " " + m.statusMsg
	}

	hints := "j/k move  enter expand  / search  a add  e edit  d delete  r refresh  ? help"
	return " " + m.theme.MutedText.Render(hints)
}

func (m Model) renderHelp() string {
	r := m.theme.Renderer

	titleStyle := r.NewStyle().Bold(true).Foreground(m.theme.Primary)
	keyStyle := r.NewStyle().Foreground(m.theme.Secondary).Width(12)

	rows := []struct{ key, desc string }{
		{"j/k ↑/↓", "move selection"},
		{"g/G", "jump to top / bottom"},
		{"enter/space", "expand or collapse"},
		{"E / C", "expand all / collapse all"},
		{"/", "search (esc clears)"},
		{"a", "add child under selection"},
		{"A", "add top-level category"},
		{"e", "edit selection"},
		{"d", "delete selection"},
		{"y", "copy code to clipboard"},
		{"r", "refresh from server"},
		{"q", "quit"},
	}

	var b []string
	b = append(b, titleStyle.Render("Keyboard shortcuts"), "")
	for _, row := range rows {
		b = append(b, keyStyle.Render(row.key)+row.desc)
	}
	b = append(b, "", m.theme.MutedText.Render(version.Version+"  ·  press any key to close"))

	box := r.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.theme.Border).
		Padding(1, 3).
		Render(lipgloss.JoinVertical(lipgloss.Left, b...))

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}
