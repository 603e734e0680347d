package ui

import (
	"os"

	"github.com/charmbracelet/colorprofile"
	"github.com/charmbracelet/lipgloss"
)

// TermProfile holds the detected terminal color profile. Computed once at
// package init so every style helper can branch without re-detecting.
var TermProfile colorprofile.Profile

func init() {
	TermProfile = colorprofile.Detect(os.Stdout, os.Environ())
}

// ThemeFg returns the given hex color for ANSI256+ terminals and a safe
// ANSI white (color 7) for 16-color or lower terminals.
func ThemeFg(hex string) lipgloss.TerminalColor {
	if TermProfile < colorprofile.ANSI256 {
		return lipgloss.ANSIColor(7)
	}
	return lipgloss.Color(hex)
}

// Theme bundles the adaptive colors and pre-computed styles used across
// the catalog views. Styles are created once at startup, not per frame.
type Theme struct {
	Renderer *lipgloss.Renderer

	// Colors
	Primary   lipgloss.AdaptiveColor
	Secondary lipgloss.AdaptiveColor
	Subtext   lipgloss.AdaptiveColor
	Muted     lipgloss.AdaptiveColor

	// Per-kind accents
	Category    lipgloss.AdaptiveColor
	SubCategory lipgloss.AdaptiveColor
	ItemGroup   lipgloss.AdaptiveColor

	// Feedback
	Success lipgloss.AdaptiveColor
	Error   lipgloss.AdaptiveColor

	// UI elements
	Border    lipgloss.AdaptiveColor
	Highlight lipgloss.AdaptiveColor

	// Styles
	Selected      lipgloss.Style
	Header        lipgloss.Style
	MutedText     lipgloss.Style
	SecondaryText lipgloss.Style
	PrimaryBold   lipgloss.Style
	SuccessText   lipgloss.Style
	ErrorText     lipgloss.Style
	MatchText     lipgloss.Style
	InactiveText  lipgloss.Style
}

// DefaultTheme returns the standard Dracula-inspired theme (adaptive).
func DefaultTheme(r *lipgloss.Renderer) Theme {
	t := Theme{
		Renderer: r,

		Primary:   lipgloss.AdaptiveColor{Light: "#6B47D9", Dark: "#BD93F9"}, // Purple
		Secondary: lipgloss.AdaptiveColor{Light: "#555555", Dark: "#6272A4"}, // Gray
		Subtext:   lipgloss.AdaptiveColor{Light: "#666666", Dark: "#BFBFBF"}, // Dim
		Muted:     lipgloss.AdaptiveColor{Light: "#999999", Dark: "#44475A"},

		Category:    lipgloss.AdaptiveColor{Light: "#6B47D9", Dark: "#BD93F9"}, // Purple
		SubCategory: lipgloss.AdaptiveColor{Light: "#006080", Dark: "#8BE9FD"}, // Cyan
		ItemGroup:   lipgloss.AdaptiveColor{Light: "#007700", Dark: "#50FA7B"}, // Green

		Success: lipgloss.AdaptiveColor{Light: "#007700", Dark: "#50FA7B"},
		Error:   lipgloss.AdaptiveColor{Light: "#CC0000", Dark: "#FF5555"},

		Border:    lipgloss.AdaptiveColor{Light: "#CCCCCC", Dark: "#44475A"},
		Highlight: lipgloss.AdaptiveColor{Light: "#B06800", Dark: "#FFB86C"},
	}

	t.Selected = r.NewStyle().
		Background(lipgloss.AdaptiveColor{Light: "#EEE4FF", Dark: "#44475A"}).
		Bold(true)
	t.Header = r.NewStyle().
		Background(t.Primary).
		Foreground(lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#282A36"}).
		Bold(true)
	t.MutedText = r.NewStyle().Foreground(t.Muted)
	t.SecondaryText = r.NewStyle().Foreground(t.Secondary)
	t.PrimaryBold = r.NewStyle().Foreground(t.Primary).Bold(true)
	t.SuccessText = r.NewStyle().Foreground(t.Success)
	t.ErrorText = r.NewStyle().Foreground(t.Error).Bold(true)
	t.MatchText = r.NewStyle().Foreground(t.Highlight).Bold(true)
	t.InactiveText = r.NewStyle().Foreground(t.Muted).Faint(true)

	return t
}

// KindColor returns the accent color for a classification level index
// (0 = category, 1 = subcategory, 2 = item group).
func (t Theme) KindColor(depth int) lipgloss.AdaptiveColor {
	switch depth {
	case 0:
		return t.Category
	case 1:
		return t.SubCategory
	default:
		return t.ItemGroup
	}
}
