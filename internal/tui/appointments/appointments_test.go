// ABOUTME: Tests for the appointment list screen
// ABOUTME: Validates tab filtering, cursor movement, and the detail pane

package appointments

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/markalston/iris/internal/clinic"
	"github.com/markalston/iris/internal/provider"
)

var now = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func fixture() []provider.Appointment {
	return []provider.Appointment{
		{ID: "a1", DoctorName: "Dr. Mock 1", Date: "2026-03-12", Time: "09:00", Type: "consulta", Status: "confirmado"},
		{ID: "a2", DoctorName: "Dr. Mock 2", Date: "2026-03-17", Time: "14:30", Type: "exame", Status: "pendente", Notes: "Mapeamento de retina"},
		{ID: "a3", DoctorName: "Dr. Mock 1", Date: "2026-02-28", Time: "08:30", Type: "consulta", Status: "confirmado"},
		{ID: "a4", DoctorName: "Dr. Mock 2", Date: "2026-03-20", Time: "15:00", Type: "exame", Status: "cancelado"},
	}
}

func newList() *List {
	l := New(func() time.Time { return now })
	l.SetSize(80, 60)
	l.SetAppointments(fixture())
	return l
}

func press(l *List, keys ...string) tea.Cmd {
	var cmd tea.Cmd
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		case "up":
			msg = tea.KeyMsg{Type: tea.KeyUp}
		case "right":
			msg = tea.KeyMsg{Type: tea.KeyRight}
		case "left":
			msg = tea.KeyMsg{Type: tea.KeyLeft}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		_, cmd = l.Update(msg)
	}
	return cmd
}

func TestListTabs(t *testing.T) {
	l := newList()

	if got := len(l.Visible()); got != 2 {
		t.Errorf("expected 2 upcoming, got %d", got)
	}

	press(l, "right")
	if l.Tab() != clinic.TabPast {
		t.Fatalf("expected past tab, got %s", l.Tab())
	}
	// past day plus the cancelled one
	if got := len(l.Visible()); got != 2 {
		t.Errorf("expected 2 past, got %d", got)
	}

	press(l, "left")
	if l.Tab() != clinic.TabUpcoming {
		t.Errorf("expected upcoming tab, got %s", l.Tab())
	}
}

func TestListCursorBounds(t *testing.T) {
	l := newList()

	press(l, "up")
	if a, _ := l.Selected(); a.ID != "a1" {
		t.Errorf("expected cursor to stay on first row, got %s", a.ID)
	}

	press(l, "down", "down", "down")
	if a, _ := l.Selected(); a.ID != "a2" {
		t.Errorf("expected cursor to stop at last row, got %s", a.ID)
	}
}

func TestListDetail(t *testing.T) {
	l := newList()

	press(l, "down", "enter")
	if !l.ShowingDetail() {
		t.Fatal("expected detail pane after enter")
	}
	view := l.View()
	for _, want := range []string{"Mapeamento de retina", clinic.Location, "17/03/2026"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected detail to contain %q\n%s", want, view)
		}
	}

	press(l, "esc")
	if l.ShowingDetail() {
		t.Error("expected esc to close the detail pane")
	}
}

func TestListTabResetsCursor(t *testing.T) {
	l := newList()
	press(l, "down", "right")

	if a, _ := l.Selected(); a.ID != "a3" {
		t.Errorf("expected first past row selected, got %s", a.ID)
	}
}

func TestListScheduleAndRefresh(t *testing.T) {
	l := newList()

	cmd := press(l, "n")
	if cmd == nil {
		t.Fatal("expected command for n")
	}
	if _, ok := cmd().(ScheduleRequestedMsg); !ok {
		t.Errorf("expected ScheduleRequestedMsg, got %T", cmd())
	}

	cmd = press(l, "r")
	if cmd == nil {
		t.Fatal("expected command for r")
	}
	if _, ok := cmd().(RefreshRequestedMsg); !ok {
		t.Errorf("expected RefreshRequestedMsg, got %T", cmd())
	}
}

func TestListEmptyStates(t *testing.T) {
	l := New(func() time.Time { return now })
	if !strings.Contains(l.View(), "Carregando") {
		t.Error("expected loading before data arrives")
	}

	l.SetAppointments(nil)
	if !strings.Contains(l.View(), "Você não tem consultas agendadas.") {
		t.Error("expected upcoming empty state")
	}
	press(l, "right")
	if !strings.Contains(l.View(), "Não há histórico de consultas.") {
		t.Error("expected history empty state")
	}
}

func TestListDoctors(t *testing.T) {
	l := newList()
	l.SetDoctors([]provider.Doctor{{ID: "d1", Name: "Dr. Mock 1", Specialty: "Oftalmologista"}})

	view := l.View()
	if !strings.Contains(view, "Médicos Disponíveis") || !strings.Contains(view, "Oftalmologista") {
		t.Errorf("expected doctor roster\n%s", view)
	}
}
