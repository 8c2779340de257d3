// ABOUTME: Login and registration forms for the signed-out screen graph
// ABOUTME: Emits submit messages; the app runs the auth calls

package authform

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/markalston/iris/internal/auth"
	"github.com/markalston/iris/internal/notice"
	"github.com/markalston/iris/internal/tui/icons"
	"github.com/markalston/iris/internal/tui/styles"
)

// Mode selects which form is shown
type Mode int

const (
	ModeLogin Mode = iota
	ModeRegister
)

// LoginSubmittedMsg is sent when the login form is completed
type LoginSubmittedMsg struct {
	Email    string
	Password string
}

// RegisterSubmittedMsg is sent when the register form is completed
type RegisterSubmittedMsg struct {
	Input auth.RegisterInput
}

// ResetRequestedMsg asks for a password reset mail to Email
type ResetRequestedMsg struct {
	Email string
}

// Form hosts the huh form of the current mode
type Form struct {
	mode  Mode
	demo  bool
	busy  bool
	width int
	form  *huh.Form

	// Form field values
	name     string
	email    string
	password string
	confirm  string
}

// New creates the login form. demo shows the mock credential hint.
func New(demo bool) *Form {
	f := &Form{mode: ModeLogin, demo: demo}
	f.form = f.build()
	return f
}

// Mode returns the active mode
func (f *Form) Mode() Mode {
	return f.mode
}

// Busy reports whether a submit is in flight
func (f *Form) Busy() bool {
	return f.busy
}

// SetMode switches forms, keeping the typed email
func (f *Form) SetMode(m Mode) tea.Cmd {
	f.mode = m
	return f.Reset()
}

// Reset rebuilds the current form after a submit. Passwords are cleared.
func (f *Form) Reset() tea.Cmd {
	f.busy = false
	f.password = ""
	f.confirm = ""
	f.form = f.build()
	return f.form.Init()
}

func (f *Form) build() *huh.Form {
	email := huh.NewInput().
		Title("Email").
		Placeholder("seu@email.com").
		Value(&f.email)
	password := huh.NewInput().
		Title("Senha").
		EchoMode(huh.EchoModePassword).
		Value(&f.password)

	var group *huh.Group
	if f.mode == ModeRegister {
		group = huh.NewGroup(
			huh.NewInput().
				Title("Nome Completo").
				Placeholder("Seu Nome").
				Value(&f.name),
			email,
			password,
			huh.NewInput().
				Title("Confirmar Senha").
				EchoMode(huh.EchoModePassword).
				Value(&f.confirm),
		).Title("Criar Conta")
	} else {
		group = huh.NewGroup(email, password).Title("Entrar")
	}

	form := huh.NewForm(group).
		WithTheme(styles.FormTheme()).
		WithShowHelp(false)
	if f.width > 0 {
		form = form.WithWidth(min(f.width, 60))
	}
	return form
}

// Init implements tea.Model
func (f *Form) Init() tea.Cmd {
	return f.form.Init()
}

// Update implements tea.Model
func (f *Form) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		f.width = msg.Width
	case tea.KeyMsg:
		// Controls are disabled while a call is in flight
		if f.busy {
			return f, nil
		}
		switch msg.String() {
		case "ctrl+t":
			if f.mode == ModeLogin {
				return f, f.SetMode(ModeRegister)
			}
			return f, f.SetMode(ModeLogin)
		case "ctrl+r":
			if f.mode == ModeLogin {
				email := strings.TrimSpace(f.email)
				return f, func() tea.Msg { return ResetRequestedMsg{Email: email} }
			}
		}
	}

	form, cmd := f.form.Update(msg)
	if hf, ok := form.(*huh.Form); ok {
		f.form = hf
	}

	if f.form.State == huh.StateCompleted && !f.busy {
		f.busy = true
		return f, tea.Batch(cmd, f.submit())
	}
	return f, cmd
}

func (f *Form) submit() tea.Cmd {
	if f.mode == ModeRegister {
		input := auth.RegisterInput{
			FullName:        f.name,
			Email:           f.email,
			Password:        f.password,
			ConfirmPassword: f.confirm,
		}
		return func() tea.Msg { return RegisterSubmittedMsg{Input: input} }
	}
	email, password := f.email, f.password
	return func() tea.Msg { return LoginSubmittedMsg{Email: email, Password: password} }
}

// View implements tea.Model
func (f *Form) View() string {
	var sb strings.Builder

	sb.WriteString(styles.Title.Render(icons.App.String() + " Íris"))
	sb.WriteString("\n")
	sb.WriteString(styles.Subtitle.Render("Sua Saúde Visual"))
	sb.WriteString("\n")

	if f.busy {
		sb.WriteString(lipgloss.NewStyle().Foreground(styles.Muted).Render("Aguarde..."))
		sb.WriteString("\n")
	} else {
		sb.WriteString(f.form.View())
		sb.WriteString("\n")
	}

	if f.mode == ModeLogin && f.demo {
		sb.WriteString(lipgloss.NewStyle().Foreground(styles.Info).Render(icons.Info.String() + " " + notice.DemoHint))
		sb.WriteString("\n")
	}

	var help []string
	if f.mode == ModeLogin {
		help = []string{
			styles.KeyStyle.Render("ctrl+t") + " Criar Conta",
			styles.KeyStyle.Render("ctrl+r") + " Esqueci minha senha",
		}
	} else {
		help = []string{styles.KeyStyle.Render("ctrl+t") + " Já tenho conta"}
	}
	sb.WriteString(styles.Help.Render(strings.Join(help, "   ")))

	return sb.String()
}
