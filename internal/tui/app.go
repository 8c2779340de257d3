// ABOUTME: Root bubbletea model for the TUI application
// ABOUTME: Mounts the auth or main screen graph and routes input to child screens

package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/markalston/iris/internal/auth"
	"github.com/markalston/iris/internal/clinic"
	"github.com/markalston/iris/internal/notice"
	"github.com/markalston/iris/internal/provider"
	"github.com/markalston/iris/internal/session"
	"github.com/markalston/iris/internal/tui/appointments"
	"github.com/markalston/iris/internal/tui/authform"
	"github.com/markalston/iris/internal/tui/gate"
	"github.com/markalston/iris/internal/tui/home"
	"github.com/markalston/iris/internal/tui/icons"
	"github.com/markalston/iris/internal/tui/profile"
	"github.com/markalston/iris/internal/tui/schedule"
	"github.com/markalston/iris/internal/tui/styles"
	"github.com/markalston/iris/internal/tui/tabs"
)

// Screen represents the current TUI screen
type Screen int

const (
	ScreenLoading Screen = iota
	ScreenAuth
	ScreenHome
	ScreenAppointments
	ScreenSchedule
	ScreenProfile
)

// String returns the screen name used in logs
func (s Screen) String() string {
	switch s {
	case ScreenLoading:
		return "loading"
	case ScreenAuth:
		return "auth"
	case ScreenHome:
		return "home"
	case ScreenAppointments:
		return "appointments"
	case ScreenSchedule:
		return "schedule"
	case ScreenProfile:
		return "profile"
	default:
		return "unknown"
	}
}

// Layout constants
const (
	minTerminalWidth = 80 // Frame never renders narrower than this
	frameOverhead    = 6  // header, tab bar (2), notice, footer, spacing
)

// Deps are the collaborators built by the command layer
type Deps struct {
	Resolver *session.Resolver
	Sessions *session.Manager
	Auth     *auth.Service
	Provider provider.Provider
	Gate     *gate.Gate

	// Demo shows the mock credential hint on the login form
	Demo bool

	// Timeout bounds each remote call; zero means no extra bound
	Timeout time.Duration

	// Now defaults to time.Now
	Now func() time.Time
}

// sessionChangedMsg is sent after the session manager publishes a login
// or logout, whoever triggered it
type sessionChangedMsg struct{}

// resolvedMsg carries the startup session snapshot
type resolvedMsg struct {
	res session.Resolution
}

// loginDoneMsg is sent when a login attempt finishes
type loginDoneMsg struct {
	rec *session.Record
	err error
}

// registerDoneMsg is sent when a registration attempt finishes
type registerDoneMsg struct {
	user *provider.User
	err  error
}

// logoutDoneMsg is sent when a logout attempt finishes
type logoutDoneMsg struct {
	err error
}

// resetDoneMsg is sent when a password reset request finishes
type resetDoneMsg struct {
	err error
}

// dashboardLoadedMsg is sent when home data is loaded
type dashboardLoadedMsg struct {
	dash *clinic.Dashboard
	err  error
}

// appointmentsLoadedMsg is sent when the appointment list is loaded
type appointmentsLoadedMsg struct {
	list []provider.Appointment
	err  error
}

// doctorsLoadedMsg is sent when the doctor roster is loaded.
// openWizard starts booking once the roster is in.
type doctorsLoadedMsg struct {
	doctors    []provider.Doctor
	openWizard bool
	err        error
}

// scheduledMsg is sent when a booking finishes
type scheduledMsg struct {
	appt *provider.Appointment
	err  error
}

// profileSavedMsg is sent when a profile update finishes
type profileSavedMsg struct {
	profile *provider.Profile
	err     error
}

// App is the root model for the TUI
type App struct {
	ctx      context.Context
	resolver *session.Resolver
	sessions *session.Manager
	auth     *auth.Service
	provider provider.Provider
	gate     *gate.Gate
	demo     bool
	timeout  time.Duration
	now      func() time.Time

	screen     Screen
	prevScreen Screen
	width      int
	height     int
	spinner    spinner.Model
	busy       bool
	notice     *notice.Notice
	restart    bool // one-shot gate kept the old graph after a session change
	lastUpdate time.Time
	doctors    []provider.Doctor
	changes    chan struct{} // pending session changes, coalesced

	// Child models
	tabs     *tabs.Bar
	authForm *authform.Form
	home     *home.Home
	list     *appointments.List
	wizard   *schedule.Wizard
	profile  *profile.Profile
}

// New creates a new TUI application
func New(ctx context.Context, d Deps) *App {
	now := d.Now
	if now == nil {
		now = time.Now
	}
	g := d.Gate
	if g == nil {
		g = gate.New(false)
	}
	a := &App{
		ctx:      ctx,
		resolver: d.Resolver,
		sessions: d.Sessions,
		auth:     d.Auth,
		provider: d.Provider,
		gate:     g,
		demo:     d.Demo,
		timeout:  d.Timeout,
		now:      now,
		screen:   ScreenLoading,
		spinner: spinner.New(
			spinner.WithSpinner(spinner.Dot),
			spinner.WithStyle(lipgloss.NewStyle().Foreground(styles.Primary)),
		),
		changes: make(chan struct{}, 1),
	}
	if d.Sessions != nil {
		d.Sessions.OnChange(a.notifySession)
	}
	return a
}

// Init implements tea.Model
func (a *App) Init() tea.Cmd {
	return tea.Batch(a.spinner.Tick, a.resolve(), a.waitForSession())
}

// notifySession runs on the goroutine that changed the session and must
// not block it; the App reads the flag itself when the message arrives.
func (a *App) notifySession(bool) {
	select {
	case a.changes <- struct{}{}:
	default:
	}
}

// waitForSession delivers the next session change to Update
func (a *App) waitForSession() tea.Cmd {
	return func() tea.Msg {
		select {
		case <-a.changes:
			return sessionChangedMsg{}
		case <-a.ctx.Done():
			return nil
		}
	}
}

// Update implements tea.Model
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.resize()
		// Forward to forms
		if a.authForm != nil {
			a.authForm.Update(msg)
		}
		if a.wizard != nil {
			a.wizard.Update(tea.WindowSizeMsg{Width: a.frameWidth(), Height: msg.Height})
		}
		return a, nil

	case tea.KeyMsg:
		// Handle global quit
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}

		// Route to current screen
		switch a.screen {
		case ScreenLoading:
			if msg.String() == "q" {
				return a, tea.Quit
			}
			return a, nil
		case ScreenAuth:
			return a.updateAuth(msg)
		case ScreenSchedule:
			return a.updateWizard(msg)
		default:
			return a.updateMain(msg)
		}

	case spinner.TickMsg:
		if a.screen != ScreenLoading && !a.busy {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case sessionChangedMsg:
		return a, tea.Batch(a.sessionChanged(a.sessions.IsAuthenticated()), a.waitForSession())

	case resolvedMsg:
		a.sessions.Restore(msg.res)
		graph := a.gate.Mount(msg.res.HasSession)
		slog.Info("Gate mounted", "graph", graph.String())
		return a, a.mountGraph(graph)

	case authform.LoginSubmittedMsg:
		if a.busy {
			return a, nil
		}
		a.notice = nil
		return a, tea.Batch(a.startBusy(), a.loginCmd(msg.Email, msg.Password))

	case authform.RegisterSubmittedMsg:
		if a.busy {
			return a, nil
		}
		a.notice = nil
		return a, tea.Batch(a.startBusy(), a.registerCmd(msg.Input))

	case authform.ResetRequestedMsg:
		return a.requestReset(msg.Email)

	case profile.ResetRequestedMsg:
		return a.requestReset(msg.Email)

	case profile.LogoutRequestedMsg:
		if a.busy {
			return a, nil
		}
		a.notice = nil
		a.profile.SetBusy(true)
		return a, tea.Batch(a.startBusy(), a.logoutCmd())

	case profile.SaveRequestedMsg:
		if a.busy {
			return a, nil
		}
		return a, tea.Batch(a.startBusy(), a.saveProfileCmd(msg.Profile))

	case appointments.ScheduleRequestedMsg:
		return a, a.startSchedule()

	case appointments.RefreshRequestedMsg:
		return a, a.refresh()

	case schedule.CompleteMsg:
		a.wizard = nil
		a.screen = ScreenAppointments
		a.tabs.Set(tabs.TabAppointments)
		if err := msg.Request.Validate(a.now()); err != nil {
			a.setError(err)
			return a, nil
		}
		return a, tea.Batch(a.startBusy(), a.scheduleCmd(msg.Request))

	case schedule.CancelledMsg:
		a.wizard = nil
		a.screen = a.prevScreen
		return a, nil

	case loginDoneMsg:
		a.busy = false
		if msg.err != nil {
			a.setError(msg.err)
			if a.authForm == nil {
				return a, nil
			}
			return a, a.authForm.Reset()
		}
		a.setOK(notice.LoginOK)
		return a, nil

	case registerDoneMsg:
		a.busy = false
		if a.authForm == nil {
			return a, nil
		}
		if msg.err != nil {
			a.setError(msg.err)
			return a, a.authForm.Reset()
		}
		a.setOK(notice.RegisterOK)
		return a, a.authForm.SetMode(authform.ModeLogin)

	case logoutDoneMsg:
		a.busy = false
		if a.profile != nil {
			a.profile.SetBusy(false)
		}
		if msg.err != nil {
			// Still logged in; the main graph stays usable
			a.setError(msg.err)
			return a, nil
		}
		a.setOK(notice.LogoutOK)
		return a, nil

	case resetDoneMsg:
		a.busy = false
		if msg.err != nil {
			a.setError(msg.err)
			return a, nil
		}
		a.setOK(notice.ResetSent)
		return a, nil

	case dashboardLoadedMsg:
		if msg.dash != nil && a.home != nil {
			a.home.Update(msg.dash)
			if msg.dash.Profile != nil {
				a.profile.SetProfile(msg.dash.Profile)
			}
			a.lastUpdate = a.now()
		}
		if msg.err != nil {
			a.setError(msg.err)
		}
		return a, nil

	case appointmentsLoadedMsg:
		if msg.err != nil {
			a.setError(msg.err)
			if a.list != nil {
				a.list.SetAppointments(nil)
			}
			return a, nil
		}
		if a.list != nil {
			a.list.SetAppointments(msg.list)
		}
		a.lastUpdate = a.now()
		return a, nil

	case doctorsLoadedMsg:
		if msg.openWizard {
			a.busy = false
		}
		if msg.err != nil {
			a.setError(msg.err)
			return a, nil
		}
		a.doctors = msg.doctors
		if a.list != nil {
			a.list.SetDoctors(msg.doctors)
		}
		if msg.openWizard && a.tabs != nil {
			return a, a.openWizard()
		}
		return a, nil

	case scheduledMsg:
		a.busy = false
		if msg.err != nil {
			a.setError(msg.err)
			return a, nil
		}
		a.setOK(notice.ScheduleOK)
		return a, tea.Batch(a.loadAppointments(), a.loadDashboard())

	case profileSavedMsg:
		a.busy = false
		if msg.err != nil {
			a.setError(msg.err)
			return a, nil
		}
		if a.profile != nil {
			a.profile.SetProfile(msg.profile)
		}
		if a.home != nil && a.home.Dashboard() != nil {
			dash := a.home.Dashboard()
			dash.Profile = msg.profile
			dash.Name = clinic.DefaultPatientName
			if msg.profile.FullName != "" {
				dash.Name = msg.profile.FullName
			}
		}
		a.setOK(notice.ProfileSaved)
		return a, nil

	default:
		// Forward unknown messages to huh forms (needed for form internals)
		switch {
		case a.screen == ScreenAuth && a.authForm != nil:
			return a.updateAuth(msg)
		case a.screen == ScreenSchedule && a.wizard != nil:
			return a.updateWizard(msg)
		case a.screen == ScreenProfile && a.profile != nil && a.profile.Editing():
			var cmd tea.Cmd
			a.profile, cmd = a.profile.Update(msg)
			return a, cmd
		}
	}

	return a, nil
}

func (a *App) updateAuth(msg tea.Msg) (tea.Model, tea.Cmd) {
	if a.authForm == nil || a.restart {
		if key, ok := msg.(tea.KeyMsg); ok && key.String() == "q" {
			return a, tea.Quit
		}
		return a, nil
	}
	model, cmd := a.authForm.Update(msg)
	a.authForm = model.(*authform.Form)
	return a, cmd
}

func (a *App) updateWizard(msg tea.Msg) (tea.Model, tea.Cmd) {
	if a.wizard == nil {
		return a, nil
	}
	model, cmd := a.wizard.Update(msg)
	a.wizard = model.(*schedule.Wizard)
	return a, cmd
}

func (a *App) updateMain(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.restart {
		if msg.String() == "q" {
			return a, tea.Quit
		}
		return a, nil
	}

	// Forms and the detail pane own the keyboard
	if a.screen == ScreenProfile && a.profile.Editing() {
		var cmd tea.Cmd
		a.profile, cmd = a.profile.Update(msg)
		return a, cmd
	}
	if a.screen == ScreenAppointments && a.list.ShowingDetail() {
		var cmd tea.Cmd
		a.list, cmd = a.list.Update(msg)
		return a, cmd
	}

	switch msg.String() {
	case "q":
		return a, tea.Quit
	case "1":
		return a, a.switchTab(tabs.TabHome)
	case "2":
		return a, a.switchTab(tabs.TabAppointments)
	case "3":
		return a, a.switchTab(tabs.TabProfile)
	case "tab":
		return a, a.switchTab(a.tabs.Next())
	case "shift+tab":
		return a, a.switchTab(a.tabs.Prev())
	}

	var cmd tea.Cmd
	switch a.screen {
	case ScreenHome:
		switch msg.String() {
		case "n":
			return a, a.startSchedule()
		case "r":
			return a, a.refresh()
		}
	case ScreenAppointments:
		a.list, cmd = a.list.Update(msg)
	case ScreenProfile:
		if msg.String() == "r" {
			return a, a.refresh()
		}
		a.profile, cmd = a.profile.Update(msg)
	}
	return a, cmd
}

// mountGraph builds the screens of graph and returns their start command
func (a *App) mountGraph(graph gate.Graph) tea.Cmd {
	a.restart = false
	switch graph {
	case gate.GraphMain:
		email := ""
		if rec, ok := a.sessions.Current(); ok {
			email = rec.User.Email
		}
		a.authForm = nil
		a.tabs = tabs.New()
		a.home = home.New(a.contentWidth(), a.contentHeight())
		a.list = appointments.New(a.now)
		a.list.SetSize(a.contentWidth(), a.contentHeight())
		a.profile = profile.New(email)
		a.profile.SetWidth(a.contentWidth())
		a.doctors = nil
		a.screen = ScreenHome
		return a.loadDashboard()

	case gate.GraphAuth:
		a.tabs, a.home, a.list, a.wizard, a.profile = nil, nil, nil, nil, nil
		a.authForm = authform.New(a.demo)
		if a.width > 0 {
			a.authForm.Update(tea.WindowSizeMsg{Width: a.contentWidth(), Height: a.height})
		}
		a.screen = ScreenAuth
		return a.authForm.Init()
	}
	return nil
}

// sessionChanged re-gates after login or logout. A one-shot gate keeps the
// mounted graph and the patient is asked to restart. Before the first
// mount the resolver result decides the graph.
func (a *App) sessionChanged(authenticated bool) tea.Cmd {
	graph, changed := a.gate.Regate(authenticated)
	if changed {
		slog.Info("Gate switched", "graph", graph.String())
		return a.mountGraph(graph)
	}
	if !a.gate.Live() && a.gate.Mounted() {
		a.restart = true
	}
	return nil
}

func (a *App) switchTab(t tabs.Tab) tea.Cmd {
	a.tabs.Set(t)
	switch t {
	case tabs.TabHome:
		a.screen = ScreenHome
	case tabs.TabAppointments:
		a.screen = ScreenAppointments
		cmds := []tea.Cmd{a.loadAppointments()}
		if a.doctors == nil {
			cmds = append(cmds, a.loadDoctors(false))
		}
		return tea.Batch(cmds...)
	case tabs.TabProfile:
		a.screen = ScreenProfile
	}
	return nil
}

// refresh reloads the data behind the current screen
func (a *App) refresh() tea.Cmd {
	a.notice = nil
	if a.screen == ScreenAppointments {
		return a.loadAppointments()
	}
	return a.loadDashboard()
}

func (a *App) startSchedule() tea.Cmd {
	if a.busy {
		return nil
	}
	if a.doctors == nil {
		return tea.Batch(a.startBusy(), a.loadDoctors(true))
	}
	return a.openWizard()
}

// openWizard transitions to the booking wizard
func (a *App) openWizard() tea.Cmd {
	if a.screen != ScreenSchedule {
		a.prevScreen = a.screen
	}
	a.wizard = schedule.New(a.doctors, a.now())
	a.wizard.SetWidth(a.frameWidth())
	a.screen = ScreenSchedule
	return a.wizard.Init()
}

func (a *App) requestReset(email string) (tea.Model, tea.Cmd) {
	if a.busy {
		return a, nil
	}
	a.notice = nil
	return a, tea.Batch(a.startBusy(), a.resetCmd(email))
}

func (a *App) startBusy() tea.Cmd {
	a.busy = true
	return a.spinner.Tick
}

func (a *App) setError(err error) {
	slog.Warn("Action failed", "screen", a.screen, "error", err)
	n := notice.FromError(err)
	a.notice = &n
}

func (a *App) setOK(text string) {
	n := notice.OK(text)
	a.notice = &n
}

// callContext bounds a remote call by the configured timeout
func (a *App) callContext() (context.Context, context.CancelFunc) {
	if a.timeout > 0 {
		return context.WithTimeout(a.ctx, a.timeout)
	}
	return context.WithCancel(a.ctx)
}

func (a *App) currentUser() session.User {
	if rec, ok := a.sessions.Current(); ok {
		return rec.User
	}
	return session.User{}
}

// resolve creates a command reading the stored session once
func (a *App) resolve() tea.Cmd {
	return func() tea.Msg {
		return resolvedMsg{res: a.resolver.Resolve(a.ctx)}
	}
}

func (a *App) loginCmd(email, password string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := a.callContext()
		defer cancel()
		rec, err := a.auth.Login(ctx, email, password)
		return loginDoneMsg{rec: rec, err: err}
	}
}

func (a *App) registerCmd(in auth.RegisterInput) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := a.callContext()
		defer cancel()
		u, err := a.auth.Register(ctx, in)
		return registerDoneMsg{user: u, err: err}
	}
}

func (a *App) logoutCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := a.callContext()
		defer cancel()
		return logoutDoneMsg{err: a.auth.Logout(ctx)}
	}
}

func (a *App) resetCmd(email string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := a.callContext()
		defer cancel()
		return resetDoneMsg{err: a.auth.RequestPasswordReset(ctx, email)}
	}
}

// loadDashboard creates a command to fetch the home screen data
func (a *App) loadDashboard() tea.Cmd {
	u := a.currentUser()
	return func() tea.Msg {
		ctx, cancel := a.callContext()
		defer cancel()
		dash, err := clinic.LoadDashboard(ctx, a.provider, u, a.now())
		return dashboardLoadedMsg{dash: dash, err: err}
	}
}

func (a *App) loadAppointments() tea.Cmd {
	u := a.currentUser()
	return func() tea.Msg {
		ctx, cancel := a.callContext()
		defer cancel()
		id, err := clinic.PatientID(ctx, a.provider, u)
		if err != nil {
			return appointmentsLoadedMsg{err: err}
		}
		list, err := a.provider.ListAppointments(ctx, id)
		return appointmentsLoadedMsg{list: list, err: err}
	}
}

func (a *App) loadDoctors(openWizard bool) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := a.callContext()
		defer cancel()
		doctors, err := a.provider.ListDoctors(ctx)
		return doctorsLoadedMsg{doctors: doctors, openWizard: openWizard, err: err}
	}
}

func (a *App) scheduleCmd(req clinic.ScheduleRequest) tea.Cmd {
	u := a.currentUser()
	doctors := a.doctors
	return func() tea.Msg {
		ctx, cancel := a.callContext()
		defer cancel()
		id, err := clinic.PatientID(ctx, a.provider, u)
		if err != nil {
			return scheduledMsg{err: err}
		}
		appt, err := a.provider.CreateAppointment(ctx, req.Build(id, doctors))
		return scheduledMsg{appt: appt, err: err}
	}
}

func (a *App) saveProfileCmd(p provider.Profile) tea.Cmd {
	u := a.currentUser()
	return func() tea.Msg {
		ctx, cancel := a.callContext()
		defer cancel()
		if p.ID == "" {
			id, err := clinic.PatientID(ctx, a.provider, u)
			if err != nil {
				return profileSavedMsg{err: err}
			}
			p.ID = id
		}
		saved, err := a.provider.UpdateProfile(ctx, p)
		return profileSavedMsg{profile: saved, err: err}
	}
}

// View implements tea.Model
func (a *App) View() string {
	var content string

	switch a.screen {
	case ScreenLoading:
		content = a.viewLoading()
	case ScreenAuth:
		content = a.viewAuth()
	case ScreenSchedule:
		content = a.viewWizard()
	default:
		content = a.viewMain()
	}

	return a.wrapWithFrame(content)
}

// viewLoading renders the spinner shown until the session is resolved
func (a *App) viewLoading() string {
	return "\n  " + a.spinner.View() + " Carregando...\n"
}

func (a *App) viewAuth() string {
	if a.restart {
		return a.viewRestart()
	}
	if a.authForm != nil {
		return a.authForm.View()
	}
	return ""
}

// viewRestart replaces the screens after a session change the gate did not follow
func (a *App) viewRestart() string {
	body := styles.ValueStyle.Render(notice.RestartNeeded) + "\n" +
		lipgloss.NewStyle().Foreground(styles.Muted).Render("Pressione q para sair.")
	return styles.ActivePanel.Render(body)
}

func (a *App) viewWizard() string {
	if a.wizard != nil {
		return a.wizard.View()
	}
	return ""
}

// viewMain renders the tab bar and the active main screen
func (a *App) viewMain() string {
	if a.tabs == nil {
		return ""
	}
	if a.restart {
		return a.viewRestart()
	}

	var body string
	switch a.screen {
	case ScreenHome:
		body = a.home.View()
	case ScreenAppointments:
		body = a.list.View()
	case ScreenProfile:
		body = a.profile.View()
	}
	return a.tabs.View(a.contentWidth()) + "\n" + body
}

// renderNotice renders the busy spinner or the last notice
func (a *App) renderNotice() string {
	if a.busy {
		return a.spinner.View() + " " + lipgloss.NewStyle().Foreground(styles.Muted).Render("Aguarde...")
	}
	if a.notice == nil || a.notice.Text == "" {
		return ""
	}
	switch a.notice.Kind {
	case notice.Success:
		return styles.StatusOK.Render(icons.CheckOK.String() + " " + a.notice.Text)
	case notice.Error:
		return styles.StatusCritical.Render(icons.Critical.String() + " " + a.notice.Text)
	default:
		return lipgloss.NewStyle().Foreground(styles.Info).Render(icons.Info.String() + " " + a.notice.Text)
	}
}

// resize pushes the current dimensions to the child screens
func (a *App) resize() {
	if a.home != nil {
		a.home.SetSize(a.contentWidth(), a.contentHeight())
	}
	if a.list != nil {
		a.list.SetSize(a.contentWidth(), a.contentHeight())
	}
	if a.profile != nil {
		a.profile.SetWidth(a.contentWidth())
	}
	if a.wizard != nil {
		a.wizard.SetWidth(a.frameWidth())
	}
}

// frameWidth is one column short of the terminal so the border never wraps
func (a *App) frameWidth() int {
	return max(a.width-1, minTerminalWidth)
}

// contentWidth calculates the width available to a screen
func (a *App) contentWidth() int {
	return a.frameWidth() - 2
}

// contentHeight calculates the height available to a screen
func (a *App) contentHeight() int {
	return a.height - frameOverhead
}

// renderHeader creates the header bar with app branding and the signed-in email
func (a *App) renderHeader() string {
	width := a.frameWidth()

	borderStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	titleStyle := lipgloss.NewStyle().Foreground(styles.Primary).Bold(true)
	contextStyle := lipgloss.NewStyle().Foreground(styles.Secondary)

	leftText := fmt.Sprintf(" %s %s ", icons.App.String(), titleStyle.Render("Íris"))

	rightText := ""
	if a.sessions != nil && a.sessions.IsAuthenticated() {
		if rec, ok := a.sessions.Current(); ok {
			rightText = " " + contextStyle.Render(icons.User.String()+" "+rec.User.Email) + " "
		}
	}

	leftWidth := lipgloss.Width(leftText)
	rightWidth := lipgloss.Width(rightText)
	if leftWidth+rightWidth > width-4 {
		rightText, rightWidth = "", 0
	}
	fill := strings.Repeat("─", max(0, width-4-leftWidth-rightWidth)) // -4 for ╭─ and ─╮

	return borderStyle.Render("╭─" + leftText + fill + rightText + "─╮")
}

// renderFooter creates the footer with keyboard shortcuts and status
func (a *App) renderFooter() string {
	width := a.frameWidth()

	borderStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	keyStyle := lipgloss.NewStyle().Foreground(styles.Primary)
	labelStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	statusStyle := lipgloss.NewStyle().Foreground(styles.Secondary)

	// Build keyboard shortcuts based on current screen
	var shortcuts []string
	switch {
	case a.restart:
		shortcuts = []string{"q Sair"}
	case a.screen == ScreenLoading:
		shortcuts = []string{"q Sair"}
	case a.screen == ScreenAuth:
		shortcuts = []string{"Tab Campo", "Enter Confirmar", "ctrl+t Alternar", "ctrl+c Sair"}
	case a.screen == ScreenSchedule:
		shortcuts = []string{"↑↓ Escolher", "Enter Confirmar", "Esc Cancelar"}
	case a.screen == ScreenHome:
		shortcuts = []string{"1-3 Abas", "n Agendar", "r Atualizar", "q Sair"}
	case a.screen == ScreenAppointments:
		shortcuts = []string{"↑↓ Navegar", "←→ Filtro", "Enter Detalhes", "n Agendar", "q Sair"}
	case a.screen == ScreenProfile:
		shortcuts = []string{"e Editar", "p Senha", "l Sair da conta", "q Sair"}
	}

	// Build styled shortcuts
	var styledShortcuts []string
	for _, s := range shortcuts {
		parts := strings.SplitN(s, " ", 2)
		if len(parts) == 2 {
			styledShortcuts = append(styledShortcuts, keyStyle.Render(parts[0])+" "+labelStyle.Render(parts[1]))
		} else {
			styledShortcuts = append(styledShortcuts, s)
		}
	}

	leftText := " " + strings.Join(styledShortcuts, "  ") + " "
	leftPlainText := " " + strings.Join(shortcuts, "  ") + " "

	// Right side status (last update time)
	rightText := ""
	rightPlainText := ""
	if !a.lastUpdate.IsZero() && (a.screen == ScreenHome || a.screen == ScreenAppointments || a.screen == ScreenProfile) {
		elapsed := formatTimeSince(a.now().Sub(a.lastUpdate))
		rightText = " " + statusStyle.Render("Atualizado "+elapsed) + " "
		rightPlainText = " Atualizado " + elapsed + " "
	}

	leftWidth := lipgloss.Width(leftPlainText)
	rightWidth := lipgloss.Width(rightPlainText)
	if leftWidth+rightWidth > width-4 {
		rightText, rightWidth = "", 0
	}
	fill := strings.Repeat("─", max(0, width-4-leftWidth-rightWidth)) // -4 for ╰─ and ─╯

	return borderStyle.Render("╰─" + leftText + fill + rightText + "─╯")
}

// formatTimeSince formats an elapsed duration in human-readable form
func formatTimeSince(d time.Duration) string {
	if d < time.Minute {
		secs := int(d.Seconds())
		if secs < 5 {
			return "agora"
		}
		return fmt.Sprintf("há %ds", secs)
	}

	if d < time.Hour {
		return fmt.Sprintf("há %dmin", int(d.Minutes()))
	}

	return fmt.Sprintf("há %dh", int(d.Hours()))
}

// wrapWithFrame wraps content with header, notice line, and footer
func (a *App) wrapWithFrame(content string) string {
	var sb strings.Builder

	sb.WriteString(a.renderHeader())
	sb.WriteString("\n")
	sb.WriteString(content)
	sb.WriteString("\n")
	if line := a.renderNotice(); line != "" {
		sb.WriteString(line)
		sb.WriteString("\n")
	}
	sb.WriteString(a.renderFooter())

	return sb.String()
}

// Run starts the TUI and blocks until the user quits
func Run(ctx context.Context, d Deps) error {
	app := New(ctx, d)

	p := tea.NewProgram(
		app,
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)
	_, err := p.Run()
	return err
}
