// ABOUTME: Home screen with greeting, next appointments, and an eye care tip
// ABOUTME: Renders a clinic.Dashboard loaded by the app

package home

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/markalston/iris/internal/clinic"
	"github.com/markalston/iris/internal/tui/icons"
	"github.com/markalston/iris/internal/tui/styles"
	"github.com/markalston/iris/internal/tui/widgets"
)

// Home displays the patient dashboard
type Home struct {
	dash   *clinic.Dashboard
	width  int
	height int
}

// New creates a home screen; it shows a loading line until Update is called
func New(width, height int) *Home {
	return &Home{
		width:  width,
		height: height,
	}
}

// Update refreshes the home screen with new dashboard data
func (h *Home) Update(d *clinic.Dashboard) {
	h.dash = d
}

// Dashboard returns the data being shown
func (h *Home) Dashboard() *clinic.Dashboard {
	return h.dash
}

// SetSize updates the screen dimensions
func (h *Home) SetSize(width, height int) {
	h.width = width
	h.height = height
}

// View renders the home screen
func (h *Home) View() string {
	if h.dash == nil {
		return lipgloss.NewStyle().Foreground(styles.Muted).Render("Carregando...")
	}

	var sb strings.Builder

	// Greeting
	sb.WriteString(styles.Title.Render("Olá, " + h.dash.Name))
	sb.WriteString("\n")
	sb.WriteString(styles.Subtitle.Render("Bem-vindo(a) ao seu painel de saúde ocular"))
	sb.WriteString("\n")

	// Summary blocks
	cfg := widgets.DefaultMetricBlockConfig()
	blocks := lipgloss.JoinHorizontal(lipgloss.Top,
		widgets.CountBlock(icons.Calendar, "Próximas", h.dash.UpcomingTotal, "agendadas", cfg),
		" ",
		widgets.CountBlock(icons.FollowUp, "Histórico", h.dash.PastTotal, "anteriores", cfg),
	)
	sb.WriteString(blocks)
	sb.WriteString("\n\n")

	// Next appointments
	sb.WriteString(lipgloss.NewStyle().Foreground(styles.Primary).Bold(true).Render("Próximas Consultas"))
	sb.WriteString("  ")
	sb.WriteString(styles.Help.UnsetMarginTop().Render("2 Ver todas"))
	sb.WriteString("\n")

	if len(h.dash.Upcoming) == 0 {
		sb.WriteString(lipgloss.NewStyle().Foreground(styles.Muted).Render("Você não tem consultas agendadas."))
		sb.WriteString("\n")
		sb.WriteString(styles.KeyStyle.Render("n") + " Agendar Consulta\n")
	} else {
		for _, a := range h.dash.Upcoming {
			sb.WriteString(widgets.AppointmentCard(a, h.cardWidth(), false))
			sb.WriteString("\n")
		}
	}
	sb.WriteString("\n")

	// Eye care tip
	sb.WriteString(lipgloss.NewStyle().Foreground(styles.Primary).Bold(true).Render("Sua Saúde Visual"))
	sb.WriteString("\n")
	tip := styles.Panel.
		Padding(0, 1).
		Width(h.cardWidth() - 2).
		Render(styles.ValueStyle.Render("Dicas para cuidar da sua visão") + "\n" + clinic.EyeCareTip)
	sb.WriteString(tip)

	return lipgloss.NewStyle().
		Width(h.width).
		MaxHeight(max(h.height, 1)).
		Render(sb.String())
}

func (h *Home) cardWidth() int {
	return min(max(h.width, 40), 72)
}
