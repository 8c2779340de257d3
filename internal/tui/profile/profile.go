// ABOUTME: Profile screen with edit form, password reset, and logout
// ABOUTME: Confirmations use huh; the app performs the requested actions

package profile

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/markalston/iris/internal/clinic"
	"github.com/markalston/iris/internal/provider"
	"github.com/markalston/iris/internal/tui/icons"
	"github.com/markalston/iris/internal/tui/styles"
)

// Mode is what the profile screen is showing
type Mode int

const (
	ModeView Mode = iota
	ModeEdit
	ModeConfirmReset
	ModeConfirmLogout
)

// SaveRequestedMsg carries the edited profile
type SaveRequestedMsg struct {
	Profile provider.Profile
}

// ResetRequestedMsg asks for a password reset mail
type ResetRequestedMsg struct {
	Email string
}

// LogoutRequestedMsg is sent once the patient confirmed logging out
type LogoutRequestedMsg struct{}

// Profile displays and edits the patient profile
type Profile struct {
	profile *provider.Profile
	email   string
	mode    Mode
	busy    bool
	form    *huh.Form
	width   int

	// Form field values
	name    string
	phone   string
	confirm bool
}

// New creates the profile screen for the signed-in email
func New(email string) *Profile {
	return &Profile{email: email}
}

// SetProfile replaces the displayed profile
func (p *Profile) SetProfile(pr *provider.Profile) {
	p.profile = pr
}

// SetBusy disables the actions while a request is in flight
func (p *Profile) SetBusy(busy bool) {
	p.busy = busy
}

// SetWidth sets the render width
func (p *Profile) SetWidth(width int) {
	p.width = width
}

// Mode returns the active mode
func (p *Profile) Mode() Mode {
	return p.mode
}

// Editing reports whether a form owns the keyboard
func (p *Profile) Editing() bool {
	return p.mode != ModeView
}

// Email returns the address shown on the profile
func (p *Profile) Email() string {
	if p.profile != nil && p.profile.Email != "" {
		return p.profile.Email
	}
	return p.email
}

func (p *Profile) open(m Mode) tea.Cmd {
	p.mode = m
	p.confirm = false

	var group *huh.Group
	switch m {
	case ModeEdit:
		p.name, p.phone = "", ""
		if p.profile != nil {
			p.name, p.phone = p.profile.FullName, p.profile.Phone
		}
		group = huh.NewGroup(
			huh.NewInput().Title("Nome Completo").Value(&p.name),
			huh.NewInput().Title("Telefone").Placeholder("(11) 99999-0000").Value(&p.phone),
		).Title("Editar Perfil")
	case ModeConfirmReset:
		group = huh.NewGroup(
			huh.NewConfirm().
				Title("Alterar Senha").
				Description("Um link para alteração de senha será enviado para seu e-mail.").
				Affirmative("Enviar").
				Negative("Cancelar").
				Value(&p.confirm),
		)
	case ModeConfirmLogout:
		group = huh.NewGroup(
			huh.NewConfirm().
				Title("Sair da conta").
				Description("Tem certeza que deseja sair da sua conta?").
				Affirmative("Sim, sair").
				Negative("Cancelar").
				Value(&p.confirm),
		)
	default:
		p.form = nil
		return nil
	}

	p.form = huh.NewForm(group).WithTheme(styles.FormTheme()).WithShowHelp(false)
	return p.form.Init()
}

// Update handles profile keys and the active form
func (p *Profile) Update(msg tea.Msg) (*Profile, tea.Cmd) {
	if p.mode == ModeView {
		key, ok := msg.(tea.KeyMsg)
		if !ok || p.busy {
			return p, nil
		}
		switch key.String() {
		case "e":
			return p, p.open(ModeEdit)
		case "p":
			return p, p.open(ModeConfirmReset)
		case "l":
			return p, p.open(ModeConfirmLogout)
		}
		return p, nil
	}

	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "esc" {
		return p, p.open(ModeView)
	}

	form, cmd := p.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		p.form = f
	}
	if p.form.State != huh.StateCompleted {
		return p, cmd
	}

	mode, confirmed := p.mode, p.confirm
	p.open(ModeView)
	switch mode {
	case ModeEdit:
		edited := provider.Profile{
			FullName: strings.TrimSpace(p.name),
			Phone:    strings.TrimSpace(p.phone),
			Email:    p.Email(),
		}
		if p.profile != nil {
			edited.ID = p.profile.ID
		}
		return p, func() tea.Msg { return SaveRequestedMsg{Profile: edited} }
	case ModeConfirmReset:
		if confirmed {
			email := p.Email()
			return p, func() tea.Msg { return ResetRequestedMsg{Email: email} }
		}
	case ModeConfirmLogout:
		if confirmed {
			return p, func() tea.Msg { return LogoutRequestedMsg{} }
		}
	}
	return p, nil
}

// View renders the profile card or the active form
func (p *Profile) View() string {
	var sb strings.Builder

	sb.WriteString(styles.Title.Render("Meu Perfil"))
	sb.WriteString("\n")

	if p.mode != ModeView && p.form != nil {
		sb.WriteString(p.form.View())
		sb.WriteString("\n")
		sb.WriteString(styles.Help.Render(styles.KeyStyle.Render("esc") + " Cancelar"))
		return sb.String()
	}

	label := lipgloss.NewStyle().Foreground(styles.Muted).Width(10)
	row := func(icon icons.Icon, name, value string) string {
		return icon.String() + " " + label.Render(name) + styles.ValueStyle.Render(value)
	}

	phone := "-"
	if p.profile != nil && p.profile.Phone != "" {
		phone = p.profile.Phone
	}
	card := strings.Join([]string{
		row(icons.User, "Nome", clinic.ProfileName(p.profile)),
		row(icons.Mail, "Email", p.Email()),
		row(icons.Phone, "Telefone", phone),
	}, "\n")
	sb.WriteString(styles.Panel.Width(min(max(p.width, 40), 72)).Render(card))
	sb.WriteString("\n\n")

	sb.WriteString(lipgloss.NewStyle().Foreground(styles.Primary).Bold(true).Render("Conta"))
	sb.WriteString("\n")
	actions := []string{
		styles.KeyStyle.Render("e") + " Editar Perfil",
		styles.KeyStyle.Render("p") + " " + icons.Key.String() + " Alterar Senha",
		styles.KeyStyle.Render("l") + " " + icons.Logout.String() + " Sair da Conta",
	}
	if p.busy {
		sb.WriteString(lipgloss.NewStyle().Foreground(styles.Muted).Render("Aguarde..."))
	} else {
		sb.WriteString(strings.Join(actions, "\n"))
	}

	return sb.String()
}
