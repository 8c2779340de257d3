// ABOUTME: Tab bar for the signed-in screens
// ABOUTME: Cycles between home, appointments, and profile

package tabs

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/markalston/iris/internal/tui/icons"
	"github.com/markalston/iris/internal/tui/styles"
)

// Tab identifies a main screen
type Tab int

const (
	TabHome Tab = iota
	TabAppointments
	TabProfile
)

type option struct {
	label string
	icon  icons.Icon
	value Tab
}

// Bar tracks the active tab
type Bar struct {
	options []option
	active  Tab
}

// New creates a bar with the home tab active
func New() *Bar {
	return &Bar{
		options: []option{
			{label: "Início", icon: icons.App, value: TabHome},
			{label: "Consultas", icon: icons.Calendar, value: TabAppointments},
			{label: "Perfil", icon: icons.User, value: TabProfile},
		},
		active: TabHome,
	}
}

// Active returns the selected tab
func (b *Bar) Active() Tab {
	return b.active
}

// Set selects t; unknown values are ignored
func (b *Bar) Set(t Tab) {
	for _, opt := range b.options {
		if opt.value == t {
			b.active = t
			return
		}
	}
}

// Next moves right, wrapping around
func (b *Bar) Next() Tab {
	b.active = Tab((int(b.active) + 1) % len(b.options))
	return b.active
}

// Prev moves left, wrapping around
func (b *Bar) Prev() Tab {
	b.active = Tab((int(b.active) + len(b.options) - 1) % len(b.options))
	return b.active
}

// View renders the bar, underlined to width
func (b *Bar) View(width int) string {
	var parts []string
	for i, opt := range b.options {
		label := opt.icon.String() + " " + itoa(i+1) + " " + opt.label
		if opt.value == b.active {
			parts = append(parts, styles.TabActive.Render(label))
		} else {
			parts = append(parts, styles.TabInactive.Render(label))
		}
	}
	row := lipgloss.JoinHorizontal(lipgloss.Top, parts...)
	rule := lipgloss.NewStyle().Foreground(styles.Muted).
		Render(strings.Repeat("─", max(lipgloss.Width(row), width)))
	return row + "\n" + rule
}

// String returns the tab name used in logs
func (t Tab) String() string {
	switch t {
	case TabHome:
		return "home"
	case TabAppointments:
		return "appointments"
	case TabProfile:
		return "profile"
	default:
		return "unknown"
	}
}

func itoa(n int) string {
	return string(rune('0' + n))
}
