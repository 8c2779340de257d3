// ABOUTME: Tests for the login and registration forms
// ABOUTME: Drives the model with key messages and checks emitted commands

package authform

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
)

func key(s string) tea.KeyMsg {
	switch s {
	case "ctrl+t":
		return tea.KeyMsg{Type: tea.KeyCtrlT}
	case "ctrl+r":
		return tea.KeyMsg{Type: tea.KeyCtrlR}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestNewStartsInLogin(t *testing.T) {
	f := New(true)
	if f.Mode() != ModeLogin {
		t.Errorf("expected login mode, got %d", f.Mode())
	}
	if f.Busy() {
		t.Error("expected form to be idle")
	}
}

func TestToggleMode(t *testing.T) {
	f := New(false)

	f.Update(key("ctrl+t"))
	if f.Mode() != ModeRegister {
		t.Fatalf("expected register mode after ctrl+t, got %d", f.Mode())
	}
	if !strings.Contains(f.View(), "Confirmar Senha") {
		t.Error("expected register form to ask for password confirmation")
	}

	f.Update(key("ctrl+t"))
	if f.Mode() != ModeLogin {
		t.Errorf("expected login mode after second ctrl+t, got %d", f.Mode())
	}
}

func TestToggleKeepsEmail(t *testing.T) {
	f := New(false)
	f.email = "ana@iris.com"
	f.password = "segredo"

	f.SetMode(ModeRegister)

	if f.email != "ana@iris.com" {
		t.Errorf("expected email kept, got %q", f.email)
	}
	if f.password != "" {
		t.Error("expected password cleared on mode switch")
	}
}

func TestResetRequest(t *testing.T) {
	f := New(false)
	f.email = "  ana@iris.com "

	_, cmd := f.Update(key("ctrl+r"))
	if cmd == nil {
		t.Fatal("expected a command")
	}
	msg, ok := cmd().(ResetRequestedMsg)
	if !ok {
		t.Fatalf("expected ResetRequestedMsg, got %T", cmd())
	}
	if msg.Email != "ana@iris.com" {
		t.Errorf("expected trimmed email, got %q", msg.Email)
	}
}

func TestSubmitLogin(t *testing.T) {
	f := New(false)
	f.email = "teste@iris.com"
	f.password = "123456"
	f.form.State = huh.StateCompleted

	_, cmd := f.Update(struct{}{})
	if !f.Busy() {
		t.Fatal("expected form to be busy after submit")
	}

	msgs := collect(cmd)
	var got *LoginSubmittedMsg
	for _, m := range msgs {
		if l, ok := m.(LoginSubmittedMsg); ok {
			got = &l
		}
	}
	if got == nil {
		t.Fatalf("expected LoginSubmittedMsg among %v", msgs)
	}
	if got.Email != "teste@iris.com" || got.Password != "123456" {
		t.Errorf("unexpected submit %+v", got)
	}
}

func TestSubmitRegister(t *testing.T) {
	f := New(false)
	f.SetMode(ModeRegister)
	f.name = "Ana"
	f.email = "ana@iris.com"
	f.password = "abcdef"
	f.confirm = "abcdef"
	f.form.State = huh.StateCompleted

	_, cmd := f.Update(struct{}{})

	var got *RegisterSubmittedMsg
	for _, m := range collect(cmd) {
		if r, ok := m.(RegisterSubmittedMsg); ok {
			got = &r
		}
	}
	if got == nil {
		t.Fatal("expected RegisterSubmittedMsg")
	}
	if got.Input.FullName != "Ana" || got.Input.ConfirmPassword != "abcdef" {
		t.Errorf("unexpected input %+v", got.Input)
	}
}

func TestBusyIgnoresKeys(t *testing.T) {
	f := New(false)
	f.busy = true

	_, cmd := f.Update(key("ctrl+t"))
	if cmd != nil {
		t.Error("expected no command while busy")
	}
	if f.Mode() != ModeLogin {
		t.Error("expected mode unchanged while busy")
	}
	if !strings.Contains(f.View(), "Aguarde") {
		t.Error("expected busy view to say Aguarde")
	}

	f.Reset()
	if f.Busy() {
		t.Error("expected Reset to clear busy")
	}
}

func TestDemoHint(t *testing.T) {
	if !strings.Contains(New(true).View(), "teste@iris.com") {
		t.Error("expected demo hint in mock mode")
	}
	if strings.Contains(New(false).View(), "teste@iris.com") {
		t.Error("expected no demo hint without mock provider")
	}
}

// collect runs cmd and flattens batches
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collect(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}
