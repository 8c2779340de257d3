// ABOUTME: Appointment commands for the iris CLI
// ABOUTME: Lists appointments and doctors, and books new appointments

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/markalston/iris/internal/clinic"
	"github.com/markalston/iris/internal/notice"
	"github.com/markalston/iris/internal/provider"
	"github.com/spf13/cobra"
)

var (
	appointmentsTab string

	scheduleDoctor string
	scheduleDate   string
	scheduleTime   string
	scheduleType   string
	scheduleNotes  string
)

var appointmentsCmd = &cobra.Command{
	Use:   "appointments",
	Short: "List your appointments",
	Long: `List the signed-in patient's appointments.

--tab selects upcoming (default), past (historico), or all.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signalContext()
		defer cancel()
		exit(runAppointments(ctx, os.Stdout))
	},
}

var doctorsCmd = &cobra.Command{
	Use:   "doctors",
	Short: "List the clinic's doctors",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signalContext()
		defer cancel()
		exit(runDoctors(ctx, os.Stdout))
	},
}

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Book an appointment",
	Long: `Book an appointment for the signed-in patient.

--doctor accepts a doctor id or name (see 'iris doctors').
--date accepts AAAA-MM-DD or DD/MM/AAAA and must not be in the past.
--time must be one of the clinic's slots: 08:00-11:30 or 14:00-17:00, every 30 minutes.
--type is consulta, retorno, or exame.

Exit codes:
  0 - Booked
  1 - Not logged in or invalid input
  2 - Backend error`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signalContext()
		defer cancel()
		exit(runSchedule(ctx, os.Stdout))
	},
}

func init() {
	rootCmd.AddCommand(appointmentsCmd, doctorsCmd, scheduleCmd)

	appointmentsCmd.Flags().StringVar(&appointmentsTab, "tab", "upcoming", "upcoming, past, or all")

	scheduleCmd.Flags().StringVar(&scheduleDoctor, "doctor", "", "Doctor id or name")
	scheduleCmd.Flags().StringVar(&scheduleDate, "date", "", "Date (AAAA-MM-DD or DD/MM/AAAA)")
	scheduleCmd.Flags().StringVar(&scheduleTime, "time", "", "Time slot (HH:MM)")
	scheduleCmd.Flags().StringVar(&scheduleType, "type", clinic.TypeConsultation, "consulta, retorno, or exame")
	scheduleCmd.Flags().StringVar(&scheduleNotes, "notes", "", "Notes for the doctor")
}

// runAppointments lists appointments and returns exit code
func runAppointments(ctx context.Context, w io.Writer) int {
	tab, ok := clinic.ParseTab(appointmentsTab)
	if !ok {
		fmt.Fprintf(w, "Error: invalid --tab %q: use upcoming, past, or all\n", appointmentsTab)
		return exitUser
	}

	e, err := openEnv()
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitError
	}
	defer e.close()

	u, ok := e.requireUser(ctx, w)
	if !ok {
		return exitUser
	}

	callCtx, cancel := e.callContext(ctx)
	defer cancel()
	id, err := clinic.PatientID(callCtx, e.provider, u)
	if err != nil {
		return fail(w, err)
	}
	list, err := e.provider.ListAppointments(callCtx, id)
	if err != nil {
		return fail(w, err)
	}
	list = clinic.Filter(list, tab, now())

	if IsJSONOutput() {
		writeJSON(w, list)
	} else {
		fmt.Fprintln(w, formatAppointmentsHuman(tab, list))
	}
	return exitOK
}

// formatAppointmentsHuman renders appointments as a table
func formatAppointmentsHuman(tab clinic.Tab, list []provider.Appointment) string {
	if len(list) == 0 {
		if tab == clinic.TabPast {
			return "Não há histórico de consultas."
		}
		return "Você não tem consultas agendadas."
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Data", "Horário", "Médico", "Tipo", "Status")
	for _, a := range list {
		doctor := a.DoctorName
		if doctor == "" {
			doctor = clinic.UnknownDoctor
		}
		t.Row(clinic.FormatDate(a.Date), a.Time, doctor, clinic.TypeLabel(a.Type), clinic.StatusLabel(a.Status))
	}
	return tab.Label() + "\n" + t.Render()
}

// runDoctors lists the doctors and returns exit code
func runDoctors(ctx context.Context, w io.Writer) int {
	e, err := openEnv()
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitError
	}
	defer e.close()

	e.restore(ctx)
	callCtx, cancel := e.callContext(ctx)
	defer cancel()
	doctors, err := e.provider.ListDoctors(callCtx)
	if err != nil {
		return fail(w, err)
	}

	if IsJSONOutput() {
		writeJSON(w, doctors)
	} else {
		fmt.Fprintln(w, formatDoctorsHuman(doctors))
	}
	return exitOK
}

// formatDoctorsHuman renders the doctor roster as a table
func formatDoctorsHuman(doctors []provider.Doctor) string {
	if len(doctors) == 0 {
		return "Nenhum médico disponível."
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Médico", "Especialidade", "ID")
	for _, d := range doctors {
		t.Row(d.Name, d.Specialty, d.ID)
	}
	return t.Render()
}

// runSchedule books an appointment and returns exit code
func runSchedule(ctx context.Context, w io.Writer) int {
	e, err := openEnv()
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitError
	}
	defer e.close()

	u, ok := e.requireUser(ctx, w)
	if !ok {
		return exitUser
	}

	today := now()
	day, err := clinic.ParseDate(scheduleDate, today.Location())
	if scheduleDate != "" && err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitUser
	}

	callCtx, cancel := e.callContext(ctx)
	defer cancel()
	doctors, err := e.provider.ListDoctors(callCtx)
	if err != nil {
		return fail(w, err)
	}

	req := clinic.ScheduleRequest{
		DoctorID: findDoctor(doctors, scheduleDoctor),
		Date:     day,
		Time:     scheduleTime,
		Type:     strings.ToLower(scheduleType),
		Notes:    scheduleNotes,
	}
	if scheduleDoctor != "" && req.DoctorID == "" {
		fmt.Fprintf(w, "Error: médico %q não encontrado. Veja 'iris doctors'.\n", scheduleDoctor)
		return exitUser
	}
	if err := req.Validate(today); err != nil {
		return fail(w, err)
	}

	id, err := clinic.PatientID(callCtx, e.provider, u)
	if err != nil {
		return fail(w, err)
	}
	appt, err := e.provider.CreateAppointment(callCtx, req.Build(id, doctors))
	if err != nil {
		return fail(w, err)
	}

	if IsJSONOutput() {
		writeJSON(w, appt)
	} else {
		fmt.Fprintln(w, notice.ScheduleOK)
		fmt.Fprintf(w, "%s com %s em %s às %s\n",
			clinic.TypeLabel(appt.Type), appt.DoctorName, clinic.FormatDate(appt.Date), appt.Time)
	}
	return exitOK
}

// findDoctor matches a doctor by id or case-insensitive name
func findDoctor(doctors []provider.Doctor, query string) string {
	query = strings.TrimSpace(query)
	if query == "" {
		return ""
	}
	for _, d := range doctors {
		if d.ID == query || strings.EqualFold(d.Name, query) {
			return d.ID
		}
	}
	return ""
}
