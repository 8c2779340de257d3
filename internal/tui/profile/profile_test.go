// ABOUTME: Tests for the profile screen
// ABOUTME: Validates modes, confirmations, and the edit payload

package profile

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/markalston/iris/internal/provider"
)

func keyMsg(s string) tea.KeyMsg {
	if s == "esc" {
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func demo() *Profile {
	p := New("teste@iris.com")
	p.SetProfile(&provider.Profile{ID: "u1", FullName: "Usuário Teste", Phone: "(11) 99999-0000"})
	return p
}

// complete marks the open form as submitted and runs one update
func complete(p *Profile) tea.Msg {
	p.form.State = huh.StateCompleted
	_, cmd := p.Update(struct{}{})
	if cmd == nil {
		return nil
	}
	return cmd()
}

func TestProfileView(t *testing.T) {
	view := demo().View()
	for _, want := range []string{"Meu Perfil", "Usuário Teste", "teste@iris.com", "(11) 99999-0000", "Sair da Conta"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected view to contain %q\n%s", want, view)
		}
	}
}

func TestProfileFallbackName(t *testing.T) {
	view := New("ana@iris.com").View()
	if !strings.Contains(view, "Usuário") || !strings.Contains(view, "ana@iris.com") {
		t.Errorf("expected fallback name and session email\n%s", view)
	}
}

func TestEditEmitsSave(t *testing.T) {
	p := demo()
	p.Update(keyMsg("e"))
	if p.Mode() != ModeEdit || !p.Editing() {
		t.Fatalf("expected edit mode, got %d", p.Mode())
	}
	if p.name != "Usuário Teste" {
		t.Errorf("expected form prefilled, got %q", p.name)
	}

	p.name = " Ana Souza "
	p.phone = "(21) 98888-7777"
	msg, ok := complete(p).(SaveRequestedMsg)
	if !ok {
		t.Fatal("expected SaveRequestedMsg")
	}
	if msg.Profile.ID != "u1" || msg.Profile.FullName != "Ana Souza" || msg.Profile.Phone != "(21) 98888-7777" {
		t.Errorf("unexpected payload %+v", msg.Profile)
	}
	if p.Mode() != ModeView {
		t.Error("expected view mode after submit")
	}
}

func TestLogoutConfirmation(t *testing.T) {
	p := demo()
	p.Update(keyMsg("l"))
	if p.Mode() != ModeConfirmLogout {
		t.Fatalf("expected logout confirmation, got %d", p.Mode())
	}
	if !strings.Contains(p.View(), "Tem certeza que deseja sair da sua conta?") {
		t.Error("expected confirmation question")
	}

	p.confirm = true
	if _, ok := complete(p).(LogoutRequestedMsg); !ok {
		t.Error("expected LogoutRequestedMsg after confirming")
	}
}

func TestLogoutDeclined(t *testing.T) {
	p := demo()
	p.Update(keyMsg("l"))
	p.confirm = false
	if msg := complete(p); msg != nil {
		t.Errorf("expected no message when declined, got %T", msg)
	}
}

func TestResetConfirmation(t *testing.T) {
	p := demo()
	p.Update(keyMsg("p"))
	p.confirm = true

	msg, ok := complete(p).(ResetRequestedMsg)
	if !ok {
		t.Fatal("expected ResetRequestedMsg")
	}
	if msg.Email != "teste@iris.com" {
		t.Errorf("expected session email, got %q", msg.Email)
	}
}

func TestEscLeavesForm(t *testing.T) {
	p := demo()
	p.Update(keyMsg("e"))
	p.Update(keyMsg("esc"))
	if p.Mode() != ModeView {
		t.Errorf("expected view mode after esc, got %d", p.Mode())
	}
}

func TestBusyDisablesActions(t *testing.T) {
	p := demo()
	p.SetBusy(true)
	p.Update(keyMsg("l"))
	if p.Mode() != ModeView {
		t.Error("expected logout disabled while busy")
	}
	if !strings.Contains(p.View(), "Aguarde") {
		t.Error("expected busy message")
	}
}
