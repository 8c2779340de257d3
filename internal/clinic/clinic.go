// ABOUTME: Clinic vocabulary: appointment types, statuses, time slots, and labels
// ABOUTME: Shared by the TUI screens and the CLI subcommands

package clinic

import (
	"strings"
	"time"

	"github.com/markalston/iris/internal/provider"
)

// Appointment types as stored in appointment_type
const (
	TypeConsultation = "consulta"
	TypeFollowUp     = "retorno"
	TypeExam         = "exame"
)

// Appointment statuses as stored in status
const (
	StatusPending   = "pendente"
	StatusConfirmed = "confirmado"
	StatusCancelled = "cancelado"
)

// Location is where every appointment booked through the app takes place
const Location = "Clínica Íris Oftalmologia - Centro"

// UnknownDoctor replaces the doctor name when the chosen id is not listed
const UnknownDoctor = "Médico não especificado"

// Fallback display names
const (
	DefaultPatientName = "Paciente"
	DefaultProfileName = "Usuário"
)

// EyeCareTip is shown on the home screen
const EyeCareTip = "Faça pausas durante o uso de telas, mantenha uma boa iluminação ao ler e proteja seus olhos da luz solar direta."

// Types lists the bookable appointment types in menu order
var Types = []string{TypeConsultation, TypeFollowUp, TypeExam}

// Level classifies a status for coloring
type Level int

const (
	LevelUnknown Level = iota
	LevelOK
	LevelWarning
	LevelCritical
)

// StatusLevel maps an appointment status to a display level
func StatusLevel(status string) Level {
	switch strings.ToLower(status) {
	case StatusConfirmed:
		return LevelOK
	case StatusPending:
		return LevelWarning
	case StatusCancelled:
		return LevelCritical
	default:
		return LevelUnknown
	}
}

// StatusLabel returns the capitalized status for display
func StatusLabel(status string) string {
	switch strings.ToLower(status) {
	case StatusConfirmed:
		return "Confirmado"
	case StatusPending:
		return "Pendente"
	case StatusCancelled:
		return "Cancelado"
	case "":
		return "Desconhecido"
	default:
		return status
	}
}

// TypeLabel returns the display name of an appointment type
func TypeLabel(kind string) string {
	switch strings.ToLower(kind) {
	case TypeConsultation:
		return "Consulta"
	case TypeFollowUp:
		return "Retorno"
	case TypeExam:
		return "Exame"
	default:
		return kind
	}
}

// IsType reports whether kind is a bookable appointment type
func IsType(kind string) bool {
	for _, t := range Types {
		if t == kind {
			return true
		}
	}
	return false
}

// TimeSlots returns the bookable times: mornings 08:00-11:30 and
// afternoons 14:00-17:00, every 30 minutes.
func TimeSlots() []string {
	var slots []string
	add := func(from, to int) {
		for m := from; m <= to; m += 30 {
			slots = append(slots, time.Date(0, 1, 1, m/60, m%60, 0, 0, time.UTC).Format("15:04"))
		}
	}
	add(8*60, 11*60+30)
	add(14*60, 17*60)
	return slots
}

// IsTimeSlot reports whether hhmm is one of TimeSlots
func IsTimeSlot(hhmm string) bool {
	for _, s := range TimeSlots() {
		if s == hhmm {
			return true
		}
	}
	return false
}

// FormatDate renders a stored date as dd/mm/yyyy. Unparseable input is
// returned unchanged.
func FormatDate(date string) string {
	a := provider.Appointment{Date: date}
	t, err := a.Day()
	if err != nil {
		return date
	}
	return t.Format("02/01/2006")
}

// StartsAt combines date and time in loc. A missing or bad time counts
// as midnight.
func StartsAt(a provider.Appointment, loc *time.Location) (time.Time, bool) {
	day, err := a.Day()
	if err != nil {
		return time.Time{}, false
	}
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, loc)
	if hm, err := time.Parse("15:04", a.Time); err == nil {
		start = start.Add(time.Duration(hm.Hour())*time.Hour + time.Duration(hm.Minute())*time.Minute)
	}
	return start, true
}
