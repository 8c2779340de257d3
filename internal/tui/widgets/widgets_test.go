// ABOUTME: Tests for badge and metric block widgets
// ABOUTME: Checks status mapping and fixed-width rendering

package widgets

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/markalston/iris/internal/provider"
	"github.com/markalston/iris/internal/tui/icons"
)

func TestLevelForStatus(t *testing.T) {
	tests := []struct {
		status string
		want   StatusLevel
	}{
		{"confirmado", StatusOK},
		{"pendente", StatusWarning},
		{"cancelado", StatusCritical},
		{"", StatusNeutral},
		{"remarcado", StatusNeutral},
	}
	for _, tt := range tests {
		if got := LevelForStatus(tt.status); got != tt.want {
			t.Errorf("LevelForStatus(%q) = %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestAppointmentBadge_Label(t *testing.T) {
	if !strings.Contains(AppointmentBadge("pendente"), "Pendente") {
		t.Error("expected badge to contain the status label")
	}
}

func TestMetricBlock_FixedWidth(t *testing.T) {
	cfg := DefaultMetricBlockConfig()
	cfg.Width = 24
	block := MetricBlock(icons.Calendar, "Próximas", "3", "consultas agendadas com muito texto", cfg)

	lines := strings.Split(block, "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %d", len(lines))
	}
	for i, line := range lines {
		if w := lipgloss.Width(line); w != cfg.Width {
			t.Errorf("line %d width %d, want %d: %q", i, w, cfg.Width, line)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("Clínica Íris", 20); got != "Clínica Íris" {
		t.Errorf("short string changed: %q", got)
	}
	if got := truncate("Clínica Íris Oftalmologia", 10); lipgloss.Width(got) > 10 || !strings.HasSuffix(got, "...") {
		t.Errorf("unexpected truncation %q", got)
	}
}

func TestAppointmentCard(t *testing.T) {
	a := provider.Appointment{
		DoctorName: "Dr. Mock 1",
		Date:       "2026-03-12",
		Time:       "09:00",
		Type:       "consulta",
		Status:     "confirmado",
	}
	card := AppointmentCard(a, 50, false)

	for _, want := range []string{"Dr. Mock 1", "12/03/2026", "09:00", "Confirmado"} {
		if !strings.Contains(card, want) {
			t.Errorf("expected card to contain %q\n%s", want, card)
		}
	}
	for i, line := range strings.Split(card, "\n") {
		if w := lipgloss.Width(line); w != 50 {
			t.Errorf("line %d width %d, want 50", i, w)
		}
	}
}

func TestAppointmentCard_UnknownDoctor(t *testing.T) {
	card := AppointmentCard(provider.Appointment{Date: "2026-03-12", Status: "pendente"}, 60, true)
	if !strings.Contains(card, "Médico não especificado") {
		t.Errorf("expected unknown doctor placeholder\n%s", card)
	}
}
