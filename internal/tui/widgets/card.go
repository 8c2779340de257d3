// ABOUTME: Appointment card widget shared by the home and appointments screens
// ABOUTME: Shows type icon, doctor, type, date and time, and a status badge

package widgets

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/markalston/iris/internal/clinic"
	"github.com/markalston/iris/internal/provider"
	"github.com/markalston/iris/internal/tui/icons"
)

// AppointmentCard renders one appointment in a rounded box of the given width
func AppointmentCard(a provider.Appointment, width int, selected bool) string {
	if width < 30 {
		width = 30
	}

	border := lipgloss.Color("#9E9E9E")
	if selected {
		border = lipgloss.Color("#4A90A0")
	}

	iconStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#4A90A0"))
	nameStyle := lipgloss.NewStyle().Bold(true)
	mutedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#9E9E9E"))

	doctor := a.DoctorName
	if doctor == "" {
		doctor = clinic.UnknownDoctor
	}

	// Inner width excludes border and padding
	inner := width - 4
	badge := AppointmentBadge(a.Status)
	head := iconStyle.Render(icons.ForType(a.Type).String()) + " " +
		nameStyle.Render(truncate(doctor, max(8, inner-lipgloss.Width(badge)-3)))
	gap := max(1, inner-lipgloss.Width(head)-lipgloss.Width(badge))
	first := head + strings.Repeat(" ", gap) + badge

	second := "  " + mutedStyle.Render(clinic.TypeLabel(a.Type))
	third := "  " + mutedStyle.Render(fmt.Sprintf("%s %s  %s %s",
		icons.Calendar.String(), clinic.FormatDate(a.Date),
		icons.Clock.String(), a.Time))

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(0, 1).
		Width(width - 2).
		Render(strings.Join([]string{first, second, third}, "\n"))
}
