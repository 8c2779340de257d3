// ABOUTME: Tests for the booking wizard
// ABOUTME: Validates defaults, step advance, and emitted messages

package schedule

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/markalston/iris/internal/clinic"
	"github.com/markalston/iris/internal/provider"
)

// Tuesday
var now = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

var doctors = []provider.Doctor{
	{ID: "d1", Name: "Dr. Mock 1", Specialty: "Oftalmologista"},
	{ID: "d2", Name: "Dr. Mock 2", Specialty: "Optometrista"},
}

func TestWizardDefaults(t *testing.T) {
	w := New(doctors, now)

	if w.Step() != 1 {
		t.Errorf("expected step 1, got %d", w.Step())
	}
	req := w.Request()
	if req.DoctorID != "d1" {
		t.Errorf("expected first doctor preselected, got %q", req.DoctorID)
	}
	if req.Type != clinic.TypeConsultation {
		t.Errorf("expected consulta by default, got %q", req.Type)
	}
	if req.Time != "08:00" {
		t.Errorf("expected first slot, got %q", req.Time)
	}
	if got := req.Date.Format(provider.DateLayout); got != "2026-03-10" {
		t.Errorf("expected today as default date, got %s", got)
	}
	if err := req.Validate(now); err != nil {
		t.Errorf("expected defaults to validate, got %v", err)
	}
}

func TestWizardAdvance(t *testing.T) {
	w := New(doctors, now)

	for want := 2; want <= 3; want++ {
		w.form.State = huh.StateCompleted
		w.Update(struct{}{})
		if w.Step() != want {
			t.Fatalf("expected step %d, got %d", want, w.Step())
		}
	}

	w.doctorID = "d2"
	w.kind = clinic.TypeExam
	w.slot = "14:30"
	w.notes = "  trazer exames anteriores "
	w.form.State = huh.StateCompleted
	_, cmd := w.Update(struct{}{})
	if cmd == nil {
		t.Fatal("expected completion command")
	}
	msg, ok := cmd().(CompleteMsg)
	if !ok {
		t.Fatalf("expected CompleteMsg, got %T", cmd())
	}
	if msg.Request.DoctorID != "d2" || msg.Request.Time != "14:30" || msg.Request.Type != clinic.TypeExam {
		t.Errorf("unexpected request %+v", msg.Request)
	}
	if msg.Request.Notes != "trazer exames anteriores" {
		t.Errorf("expected trimmed notes, got %q", msg.Request.Notes)
	}
}

func TestWizardDeclineCancels(t *testing.T) {
	w := New(doctors, now)
	w.step = 3
	w.confirm = false
	w.form.State = huh.StateCompleted

	_, cmd := w.Update(struct{}{})
	if _, ok := cmd().(CancelledMsg); !ok {
		t.Errorf("expected CancelledMsg, got %T", cmd())
	}
}

func TestWizardEscCancels(t *testing.T) {
	w := New(doctors, now)

	_, cmd := w.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if cmd == nil {
		t.Fatal("expected a command")
	}
	if _, ok := cmd().(CancelledMsg); !ok {
		t.Errorf("expected CancelledMsg, got %T", cmd())
	}
}

func TestDateOptionsSkipSundays(t *testing.T) {
	w := New(doctors, now)
	opts := w.dateOptions()

	if len(opts) != BookingWindow {
		t.Fatalf("expected %d dates, got %d", BookingWindow, len(opts))
	}
	for _, o := range opts {
		if strings.HasPrefix(o.Key, "Dom") {
			t.Errorf("unexpected Sunday option %q", o.Key)
		}
	}
	if opts[0].Key != "Ter, 10/03/2026" {
		t.Errorf("unexpected first label %q", opts[0].Key)
	}
}

func TestSummary(t *testing.T) {
	w := New(doctors, now)
	w.doctorID = "d2"
	w.kind = clinic.TypeFollowUp
	w.date = "2026-03-12"
	w.slot = "09:30"

	want := "Retorno com Dr. Mock 2 em 12/03/2026 às 09:30"
	if got := w.summary(); got != want {
		t.Errorf("summary = %q, want %q", got, want)
	}
}

func TestRenderProgressWidth(t *testing.T) {
	w := New(doctors, now)
	w.SetWidth(81)

	for i, line := range strings.Split(w.renderProgress(), "\n") {
		if got := lipgloss.Width(line); got != 80 {
			t.Errorf("line %d width %d, want 80", i, got)
		}
	}
}

func TestViewWithoutDoctors(t *testing.T) {
	w := New(nil, now)
	if !strings.Contains(w.View(), "Não foi possível carregar a lista de médicos.") {
		t.Error("expected error when no doctors are available")
	}
}
