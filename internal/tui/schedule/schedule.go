// ABOUTME: Appointment booking wizard as a bubbletea model
// ABOUTME: Uses huh forms with visual progress indicator for step navigation

package schedule

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/markalston/iris/internal/clinic"
	"github.com/markalston/iris/internal/provider"
	"github.com/markalston/iris/internal/tui/icons"
	"github.com/markalston/iris/internal/tui/styles"
)

// BookingWindow is how many bookable days the date step offers
const BookingWindow = 30

// CompleteMsg is sent when the wizard finishes successfully
type CompleteMsg struct {
	Request clinic.ScheduleRequest
}

// CancelledMsg is sent when the wizard is cancelled
type CancelledMsg struct{}

// Wizard manages the booking flow as a bubbletea model
type Wizard struct {
	doctors []provider.Doctor
	now     time.Time
	form    *huh.Form
	step    int
	width   int

	// Form field values (strings for huh)
	doctorID string
	kind     string
	date     string
	slot     string
	notes    string
	confirm  bool
}

// Step names for progress indicator
var stepNames = []string{"Médico", "Data e Horário", "Confirmação"}

var weekdays = [...]string{"Dom", "Seg", "Ter", "Qua", "Qui", "Sex", "Sáb"}

// New creates a wizard over the given doctor roster. now anchors the
// bookable dates.
func New(doctors []provider.Doctor, now time.Time) *Wizard {
	w := &Wizard{
		doctors: doctors,
		now:     now,
		step:    1,
		kind:    clinic.TypeConsultation,
		confirm: true,
	}
	if len(doctors) > 0 {
		w.doctorID = doctors[0].ID
	}
	if dates := clinic.BookableDates(now, 1); len(dates) > 0 {
		w.date = dates[0].Format(provider.DateLayout)
	}
	if slots := clinic.TimeSlots(); len(slots) > 0 {
		w.slot = slots[0]
	}

	w.form = w.createStep1Form()
	return w
}

func (w *Wizard) doctorOptions() []huh.Option[string] {
	var opts []huh.Option[string]
	for _, d := range w.doctors {
		opts = append(opts, huh.NewOption(fmt.Sprintf("%s - %s", d.Name, d.Specialty), d.ID))
	}
	return opts
}

func typeOptions() []huh.Option[string] {
	var opts []huh.Option[string]
	for _, t := range clinic.Types {
		opts = append(opts, huh.NewOption(icons.ForType(t).String()+" "+clinic.TypeLabel(t), t))
	}
	return opts
}

func (w *Wizard) dateOptions() []huh.Option[string] {
	var opts []huh.Option[string]
	for _, d := range clinic.BookableDates(w.now, BookingWindow) {
		label := fmt.Sprintf("%s, %s", weekdays[d.Weekday()], d.Format("02/01/2006"))
		opts = append(opts, huh.NewOption(label, d.Format(provider.DateLayout)))
	}
	return opts
}

func slotOptions() []huh.Option[string] {
	var opts []huh.Option[string]
	for _, s := range clinic.TimeSlots() {
		opts = append(opts, huh.NewOption(s, s))
	}
	return opts
}

func (w *Wizard) createStep1Form() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Médico*").
				Description("Use ↑/↓ para escolher, Enter para confirmar").
				Options(w.doctorOptions()...).
				Value(&w.doctorID),
			huh.NewSelect[string]().
				Title("Tipo de Consulta*").
				Options(typeOptions()...).
				Value(&w.kind),
		).Title("Passo 1: Médico").
			Description("Escolha o médico e o tipo de atendimento"),
	).WithTheme(styles.FormTheme()).WithShowHelp(false)
}

func (w *Wizard) createStep2Form() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Data*").
				Options(w.dateOptions()...).
				Height(8).
				Value(&w.date),
			huh.NewSelect[string]().
				Title("Horário*").
				Options(slotOptions()...).
				Height(8).
				Value(&w.slot),
		).Title("Passo 2: Data e Horário").
			Description("Atendimento de segunda a sábado"),
	).WithTheme(styles.FormTheme()).WithShowHelp(false)
}

func (w *Wizard) createStep3Form() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewText().
				Title("Observações").
				Placeholder("Informe alguma observação importante (opcional)").
				CharLimit(500).
				Lines(3).
				Value(&w.notes),
			huh.NewConfirm().
				Title("Confirmar Agendamento").
				Description(w.summary()).
				Affirmative("Confirmar").
				Negative("Cancelar").
				Value(&w.confirm),
		).Title("Passo 3: Confirmação"),
	).WithTheme(styles.FormTheme()).WithShowHelp(false)
}

// summary describes the booking for the confirmation step
func (w *Wizard) summary() string {
	doctor := clinic.UnknownDoctor
	for _, d := range w.doctors {
		if d.ID == w.doctorID {
			doctor = d.Name
		}
	}
	return fmt.Sprintf("%s com %s em %s às %s",
		clinic.TypeLabel(w.kind), doctor, clinic.FormatDate(w.date), w.slot)
}

// Init implements tea.Model
func (w *Wizard) Init() tea.Cmd {
	return w.form.Init()
}

// Update implements tea.Model
func (w *Wizard) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		w.width = msg.Width
		// Forward to form
		form, cmd := w.form.Update(msg)
		if f, ok := form.(*huh.Form); ok {
			w.form = f
		}
		return w, cmd

	case tea.KeyMsg:
		if msg.String() == "esc" {
			return w, func() tea.Msg { return CancelledMsg{} }
		}
	}

	// Update the current form
	form, cmd := w.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		w.form = f
	}

	// Check if form is complete
	if w.form.State == huh.StateCompleted {
		return w.advanceStep()
	}

	return w, cmd
}

func (w *Wizard) advanceStep() (tea.Model, tea.Cmd) {
	switch w.step {
	case 1:
		w.step = 2
		w.form = w.createStep2Form()
		return w, w.form.Init()

	case 2:
		w.step = 3
		w.form = w.createStep3Form()
		return w, w.form.Init()

	case 3:
		if !w.confirm {
			return w, func() tea.Msg { return CancelledMsg{} }
		}
		req := w.Request()
		return w, func() tea.Msg {
			return CompleteMsg{Request: req}
		}
	}

	return w, nil
}

// Request returns the collected booking
func (w *Wizard) Request() clinic.ScheduleRequest {
	// Dates come from our own option list, so a parse failure leaves the
	// zero date and Validate rejects it
	day, _ := clinic.ParseDate(w.date, w.now.Location())
	return clinic.ScheduleRequest{
		DoctorID: w.doctorID,
		Date:     day,
		Time:     w.slot,
		Type:     w.kind,
		Notes:    strings.TrimSpace(w.notes),
	}
}

// Step returns the current step, starting at 1
func (w *Wizard) Step() int {
	return w.step
}

// SetWidth sets the wizard width for proper rendering
func (w *Wizard) SetWidth(width int) {
	w.width = width
}

// View implements tea.Model
func (w *Wizard) View() string {
	var sb strings.Builder

	sb.WriteString(styles.Title.Render(icons.Plus.String() + " Agendar Consulta"))
	sb.WriteString("\n")

	// Progress indicator
	sb.WriteString(w.renderProgress())
	sb.WriteString("\n\n")

	if len(w.doctors) == 0 {
		sb.WriteString(styles.StatusCritical.Render("Não foi possível carregar a lista de médicos."))
		return sb.String()
	}

	// Form content
	sb.WriteString(w.form.View())

	return sb.String()
}

// renderProgress renders the step progress indicator
func (w *Wizard) renderProgress() string {
	width := w.width - 1
	if width < 60 {
		width = 60
	}

	borderStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	titleStyle := lipgloss.NewStyle().Foreground(styles.Primary)

	// Build step indicators
	var steps []string
	for i, name := range stepNames {
		stepNum := i + 1
		var indicator string
		var nameStyle lipgloss.Style

		if stepNum < w.step {
			// Completed step
			indicator = lipgloss.NewStyle().Foreground(styles.Secondary).Render(icons.CheckOK.String())
			nameStyle = lipgloss.NewStyle().Foreground(styles.Muted)
		} else if stepNum == w.step {
			// Current step
			indicator = lipgloss.NewStyle().Foreground(styles.Primary).Bold(true).Render("●")
			nameStyle = lipgloss.NewStyle().Foreground(styles.Primary).Bold(true)
		} else {
			// Future step
			indicator = lipgloss.NewStyle().Foreground(styles.Muted).Render("○")
			nameStyle = lipgloss.NewStyle().Foreground(styles.Muted)
		}

		steps = append(steps, fmt.Sprintf("%s %s", indicator, nameStyle.Render(name)))
	}

	stepsLine := strings.Join(steps, "    ")

	// Progress bar line format: "│  " + bar + " │" = 5 chars overhead
	barWidth := width - 5
	filledWidth := (w.step * barWidth) / len(stepNames)
	emptyWidth := barWidth - filledWidth

	filledBar := lipgloss.NewStyle().Foreground(styles.Primary).Render(strings.Repeat("━", filledWidth))
	emptyBar := lipgloss.NewStyle().Foreground(styles.Surface).Render(strings.Repeat("─", emptyWidth))

	title := "Progresso"
	topBorder := "┌─ " + titleStyle.Render(title) + " " + strings.Repeat("─", max(0, width-5-lipgloss.Width(title))) + "┐"

	stepsPadding := max(0, width-4-lipgloss.Width(stepsLine))
	stepsLinePadded := "│ " + stepsLine + strings.Repeat(" ", stepsPadding) + " │"

	progressLinePadded := "│  " + filledBar + emptyBar + " │"

	bottomBorder := "└" + strings.Repeat("─", width-2) + "┘"

	return borderStyle.Render(strings.Join([]string{
		topBorder,
		stepsLinePadded,
		progressLinePadded,
		bottomBorder,
	}, "\n"))
}
