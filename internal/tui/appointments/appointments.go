// ABOUTME: Appointment list with upcoming/history tabs and a detail pane
// ABOUTME: Also lists the available doctors under the appointments

package appointments

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/markalston/iris/internal/clinic"
	"github.com/markalston/iris/internal/provider"
	"github.com/markalston/iris/internal/tui/icons"
	"github.com/markalston/iris/internal/tui/styles"
	"github.com/markalston/iris/internal/tui/widgets"
)

// ScheduleRequestedMsg is sent when the patient asks to book
type ScheduleRequestedMsg struct{}

// RefreshRequestedMsg is sent when the patient asks to reload the list
type RefreshRequestedMsg struct{}

// List shows the appointment history of the patient
type List struct {
	all     []provider.Appointment
	doctors []provider.Doctor
	loaded  bool
	now     func() time.Time

	tab    clinic.Tab
	cursor int
	detail bool

	width  int
	height int
}

// New creates an empty list on the upcoming tab
func New(now func() time.Time) *List {
	if now == nil {
		now = time.Now
	}
	return &List{now: now, tab: clinic.TabUpcoming}
}

// SetAppointments replaces the list contents
func (l *List) SetAppointments(list []provider.Appointment) {
	l.all = list
	l.loaded = true
	l.clampCursor()
}

// SetDoctors replaces the doctor roster
func (l *List) SetDoctors(doctors []provider.Doctor) {
	l.doctors = doctors
}

// SetSize updates the screen dimensions
func (l *List) SetSize(width, height int) {
	l.width = width
	l.height = height
}

// Tab returns the active filter
func (l *List) Tab() clinic.Tab {
	return l.tab
}

// ShowingDetail reports whether the detail pane is open
func (l *List) ShowingDetail() bool {
	return l.detail
}

// Visible returns the appointments of the active tab
func (l *List) Visible() []provider.Appointment {
	return clinic.Filter(l.all, l.tab, l.now())
}

// Selected returns the appointment under the cursor
func (l *List) Selected() (provider.Appointment, bool) {
	visible := l.Visible()
	if l.cursor < 0 || l.cursor >= len(visible) {
		return provider.Appointment{}, false
	}
	return visible[l.cursor], true
}

func (l *List) clampCursor() {
	n := len(l.Visible())
	if l.cursor >= n {
		l.cursor = n - 1
	}
	if l.cursor < 0 {
		l.cursor = 0
	}
}

func (l *List) setTab(t clinic.Tab) {
	if l.tab == t {
		return
	}
	l.tab = t
	l.cursor = 0
	l.detail = false
}

// Update handles list navigation keys
func (l *List) Update(msg tea.Msg) (*List, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return l, nil
	}

	if l.detail {
		switch key.String() {
		case "esc", "backspace", "enter":
			l.detail = false
		}
		return l, nil
	}

	switch key.String() {
	case "up", "k":
		if l.cursor > 0 {
			l.cursor--
		}
	case "down", "j":
		if l.cursor < len(l.Visible())-1 {
			l.cursor++
		}
	case "left", "h":
		l.setTab(clinic.TabUpcoming)
	case "right", "l":
		l.setTab(clinic.TabPast)
	case "enter":
		if _, ok := l.Selected(); ok {
			l.detail = true
		}
	case "n":
		return l, func() tea.Msg { return ScheduleRequestedMsg{} }
	case "r":
		return l, func() tea.Msg { return RefreshRequestedMsg{} }
	}
	return l, nil
}

// View renders the list or the detail pane
func (l *List) View() string {
	var sb strings.Builder

	sb.WriteString(styles.Title.Render("Minhas Consultas"))
	sb.WriteString("\n")
	sb.WriteString(l.renderTabs())
	sb.WriteString("\n\n")

	switch {
	case !l.loaded:
		sb.WriteString(lipgloss.NewStyle().Foreground(styles.Muted).Render("Carregando..."))
		sb.WriteString("\n")
	case l.detail:
		sb.WriteString(l.renderDetail())
		sb.WriteString("\n")
	default:
		sb.WriteString(l.renderList())
	}

	if len(l.doctors) > 0 && !l.detail {
		sb.WriteString("\n")
		sb.WriteString(l.renderDoctors())
	}

	return lipgloss.NewStyle().Width(max(l.width, 40)).Render(sb.String())
}

func (l *List) renderTabs() string {
	var parts []string
	for _, t := range []clinic.Tab{clinic.TabUpcoming, clinic.TabPast} {
		if t == l.tab {
			parts = append(parts, styles.TabActive.Render(t.Label()))
		} else {
			parts = append(parts, styles.TabInactive.Render(t.Label()))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (l *List) renderList() string {
	visible := l.Visible()
	if len(visible) == 0 {
		var sb strings.Builder
		empty := "Não há histórico de consultas."
		if l.tab == clinic.TabUpcoming {
			empty = "Você não tem consultas agendadas."
		}
		sb.WriteString(lipgloss.NewStyle().Foreground(styles.Muted).Render(icons.Calendar.String() + " " + empty))
		sb.WriteString("\n")
		if l.tab == clinic.TabUpcoming {
			sb.WriteString(styles.KeyStyle.Render("n") + " Agendar Consulta\n")
		}
		return sb.String()
	}

	// Keep the cursor row on screen; each card takes five lines
	per := 5
	rows := max(1, (l.height-8)/per)
	start := 0
	if l.cursor >= rows {
		start = l.cursor - rows + 1
	}
	end := min(len(visible), start+rows)

	var sb strings.Builder
	for i := start; i < end; i++ {
		sb.WriteString(widgets.AppointmentCard(visible[i], l.cardWidth(), i == l.cursor))
		sb.WriteString("\n")
	}
	if end-start < len(visible) {
		sb.WriteString(lipgloss.NewStyle().Foreground(styles.Muted).
			Render(fmt.Sprintf("%d de %d", l.cursor+1, len(visible))))
		sb.WriteString("\n")
	}
	return sb.String()
}

func (l *List) renderDetail() string {
	a, ok := l.Selected()
	if !ok {
		return ""
	}

	label := lipgloss.NewStyle().Foreground(styles.Muted).Width(14)
	row := func(icon icons.Icon, name, value string) string {
		return icon.String() + " " + label.Render(name) + styles.ValueStyle.Render(value)
	}

	doctor := a.DoctorName
	if doctor == "" {
		doctor = clinic.UnknownDoctor
	}
	location := a.Location
	if location == "" {
		location = clinic.Location
	}

	lines := []string{
		styles.Title.Render(icons.ForType(a.Type).String()+" "+clinic.TypeLabel(a.Type)) + "  " + widgets.AppointmentBadge(a.Status),
		row(icons.Doctor, "Médico", doctor),
		row(icons.Calendar, "Data", clinic.FormatDate(a.Date)),
		row(icons.Clock, "Horário", a.Time),
		row(icons.Location, "Local", location),
	}
	if a.Notes != "" {
		lines = append(lines, row(icons.Notes, "Observações", a.Notes))
	}

	return styles.ActivePanel.Width(l.cardWidth()).Render(strings.Join(lines, "\n"))
}

func (l *List) renderDoctors() string {
	var sb strings.Builder
	sb.WriteString(lipgloss.NewStyle().Foreground(styles.Primary).Bold(true).Render("Médicos Disponíveis"))
	sb.WriteString("\n")
	for _, d := range l.doctors {
		sb.WriteString(fmt.Sprintf("%s %s %s\n",
			icons.Doctor.String(),
			d.Name,
			lipgloss.NewStyle().Foreground(styles.Muted).Render("- "+d.Specialty)))
	}
	return sb.String()
}

func (l *List) cardWidth() int {
	return min(max(l.width, 40), 72)
}
