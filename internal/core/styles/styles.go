// Package styles provides shared lipgloss styles for CLI and TUI components.
package styles

import (
	"github.com/charmbracelet/lipgloss"
)

// CurrentPalette holds the active theme palette.
var CurrentPalette Palette

// Exported colors of the active palette.
var (
	ColorPrimary    lipgloss.Color
	ColorSecondary  lipgloss.Color
	ColorForeground lipgloss.Color
	ColorMuted      lipgloss.Color
	ColorBackground lipgloss.Color
	ColorSurface    lipgloss.Color
	ColorSuccess    lipgloss.Color
	ColorWarning    lipgloss.Color
	ColorError      lipgloss.Color
)

// Style exports.
var (
	// CLI styles.
	CommandHeaderStyle lipgloss.Style
	CommandStyle       lipgloss.Style
	DividerStyle       lipgloss.Style

	// Replay report styles.
	ReplayStepStyle  lipgloss.Style
	ReplayOpStyle    lipgloss.Style
	ReplayOKStyle    lipgloss.Style
	ReplayErrorStyle lipgloss.Style
	ReplayShapeStyle lipgloss.Style

	// List surface styles.
	SectionHeaderStyle lipgloss.Style
	RowStyle           lipgloss.Style
	RowCursorStyle     lipgloss.Style
	RowSelectedStyle   lipgloss.Style
	RowInsertedStyle   lipgloss.Style
	RowReloadedStyle   lipgloss.Style
	RowMovedStyle      lipgloss.Style

	// Demo chrome.
	TitleStyle       lipgloss.Style
	StatusStyle      lipgloss.Style
	StatusErrorStyle lipgloss.Style
	HelpStyle        lipgloss.Style
	BlurredStyle     lipgloss.Style
)

// SetTheme sets the active palette and rebuilds all global styles.
func SetTheme(p Palette) {
	CurrentPalette = p

	ColorPrimary = p.Primary
	ColorSecondary = p.Secondary
	ColorForeground = p.Foreground
	ColorMuted = p.Muted
	ColorBackground = p.Background
	ColorSurface = p.Surface
	ColorSuccess = p.Success
	ColorWarning = p.Warning
	ColorError = p.Error

	CommandHeaderStyle = lipgloss.NewStyle().
		Foreground(ColorPrimary).
		Bold(true)
	CommandStyle = lipgloss.NewStyle().
		Foreground(ColorForeground)
	DividerStyle = lipgloss.NewStyle().
		Foreground(ColorMuted)

	ReplayStepStyle = lipgloss.NewStyle().
		Foreground(ColorMuted).
		Width(4).
		Align(lipgloss.Right)
	ReplayOpStyle = lipgloss.NewStyle().
		Foreground(ColorSecondary)
	ReplayOKStyle = lipgloss.NewStyle().
		Foreground(ColorSuccess)
	ReplayErrorStyle = lipgloss.NewStyle().
		Foreground(ColorError)
	ReplayShapeStyle = lipgloss.NewStyle().
		Foreground(ColorWarning)

	SectionHeaderStyle = lipgloss.NewStyle().
		Foreground(ColorPrimary).
		Bold(true)
	RowStyle = lipgloss.NewStyle().
		Foreground(ColorForeground).
		PaddingLeft(2)
	RowCursorStyle = lipgloss.NewStyle().
		Foreground(ColorForeground).
		Background(ColorSurface).
		PaddingLeft(2)
	RowSelectedStyle = lipgloss.NewStyle().
		Foreground(ColorPrimary).
		Bold(true).
		PaddingLeft(2)
	RowInsertedStyle = lipgloss.NewStyle().
		Foreground(ColorSuccess).
		PaddingLeft(2)
	RowReloadedStyle = lipgloss.NewStyle().
		Foreground(ColorWarning).
		PaddingLeft(2)
	RowMovedStyle = lipgloss.NewStyle().
		Foreground(ColorSecondary).
		PaddingLeft(2)

	TitleStyle = lipgloss.NewStyle().
		Foreground(ColorBackground).
		Background(ColorPrimary).
		Bold(true).
		Padding(0, 1)
	StatusStyle = lipgloss.NewStyle().
		Foreground(ColorMuted)
	StatusErrorStyle = lipgloss.NewStyle().
		Foreground(ColorError)
	HelpStyle = lipgloss.NewStyle().
		Foreground(ColorMuted).
		MarginTop(1)
	BlurredStyle = lipgloss.NewStyle().
		Foreground(ColorMuted)
}

// nolint:gochecknoinits // bootstrap default theme before any style is accessed.
func init() {
	SetTheme(themes[DefaultTheme])
}
