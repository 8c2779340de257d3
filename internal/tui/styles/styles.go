// ABOUTME: Shared lipgloss styles for consistent TUI appearance
// ABOUTME: Clinic palette plus the huh theme used by every form

package styles

import (
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

var (
	// Colors - Core palette
	Primary   = lipgloss.Color("#4A90A0") // Clinic teal
	Secondary = lipgloss.Color("#4CAF50") // Green
	Warning   = lipgloss.Color("#FF9800") // Orange
	Danger    = lipgloss.Color("#F44336") // Red
	Muted     = lipgloss.Color("#9E9E9E") // Gray
	Text      = lipgloss.Color("#F5F7FA") // Light
	BgDark    = lipgloss.Color("#2D3748") // Slate

	// Colors - Extended palette
	Accent  = lipgloss.Color("#6FB3C2") // Lighter teal for highlights
	Surface = lipgloss.Color("#4A5568") // Elevated surface background
	Info    = lipgloss.Color("#3B82F6") // Blue - informational

	// Base styles
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary).
		MarginBottom(1)

	Subtitle = lipgloss.NewStyle().
			Foreground(Muted).
			MarginBottom(1)

	// Status indicators
	StatusOK = lipgloss.NewStyle().
			Foreground(Secondary).
			Bold(true)

	StatusWarning = lipgloss.NewStyle().
			Foreground(Warning).
			Bold(true)

	StatusCritical = lipgloss.NewStyle().
			Foreground(Danger).
			Bold(true)

	// Panels
	Panel = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Muted).
		Padding(1, 2)

	ActivePanel = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Primary).
			Padding(1, 2)

	// Help text
	Help = lipgloss.NewStyle().
		Foreground(Muted).
		MarginTop(1)

	// Key style for keyboard shortcuts
	KeyStyle = lipgloss.NewStyle().
			Foreground(Accent).
			Bold(true)

	// Value style for emphasized data
	ValueStyle = lipgloss.NewStyle().
			Foreground(Text).
			Bold(true)

	// Tabs
	TabActive = lipgloss.NewStyle().
			Foreground(Text).
			Background(Primary).
			Bold(true).
			Padding(0, 2)

	TabInactive = lipgloss.NewStyle().
			Foreground(Muted).
			Padding(0, 2)

	// List rows
	Selected = lipgloss.NewStyle().
			Foreground(Accent).
			Bold(true)
)

// FormTheme returns the huh theme shared by the login, booking, and profile forms
func FormTheme() *huh.Theme {
	t := huh.ThemeBase()

	teal := Primary
	tealLight := Accent
	gray := Muted
	light := lipgloss.Color("#E2E8F0")
	red := Danger

	// Group styles (section headers)
	t.Group.Title = lipgloss.NewStyle().
		Foreground(teal).
		Bold(true).
		MarginBottom(1)
	t.Group.Description = lipgloss.NewStyle().
		Foreground(gray).
		MarginBottom(1)

	// Focused field styles
	t.Focused.Base = lipgloss.NewStyle().
		PaddingLeft(1).
		BorderStyle(lipgloss.ThickBorder()).
		BorderLeft(true).
		BorderForeground(teal)
	t.Focused.Title = lipgloss.NewStyle().
		Foreground(tealLight).
		Bold(true)
	t.Focused.Description = lipgloss.NewStyle().
		Foreground(gray)
	t.Focused.ErrorIndicator = lipgloss.NewStyle().
		Foreground(red).
		SetString(" *")
	t.Focused.ErrorMessage = lipgloss.NewStyle().
		Foreground(red)

	// Select field styles
	t.Focused.SelectSelector = lipgloss.NewStyle().
		Foreground(teal).
		SetString("> ")
	t.Focused.Option = lipgloss.NewStyle().
		Foreground(light)
	t.Focused.SelectedOption = lipgloss.NewStyle().
		Foreground(teal).
		Bold(true)
	t.Focused.NextIndicator = lipgloss.NewStyle().
		Foreground(teal).
		MarginLeft(1).
		SetString("→")
	t.Focused.PrevIndicator = lipgloss.NewStyle().
		Foreground(teal).
		MarginRight(1).
		SetString("←")

	// Text input styles
	t.Focused.TextInput.Cursor = lipgloss.NewStyle().
		Foreground(teal)
	t.Focused.TextInput.Placeholder = lipgloss.NewStyle().
		Foreground(gray)
	t.Focused.TextInput.Prompt = lipgloss.NewStyle().
		Foreground(teal)
	t.Focused.TextInput.Text = lipgloss.NewStyle().
		Foreground(light)

	// Button styles
	t.Focused.FocusedButton = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(teal).
		Padding(0, 2).
		MarginRight(1)
	t.Focused.BlurredButton = lipgloss.NewStyle().
		Foreground(gray).
		Background(Surface).
		Padding(0, 2).
		MarginRight(1)

	// Blurred field styles (inherit from focused with muted colors)
	t.Blurred = t.Focused
	t.Blurred.Base = lipgloss.NewStyle().
		PaddingLeft(1).
		BorderStyle(lipgloss.HiddenBorder()).
		BorderLeft(true)
	t.Blurred.Title = lipgloss.NewStyle().
		Foreground(gray)
	t.Blurred.SelectSelector = lipgloss.NewStyle().
		Foreground(gray).
		SetString("  ")
	t.Blurred.Option = lipgloss.NewStyle().
		Foreground(gray)

	return t
}
