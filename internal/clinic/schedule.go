// ABOUTME: Booking request validation and conversion to an insert payload

package clinic

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/markalston/iris/internal/provider"
)

var (
	// ErrMissingFields means doctor, time, or type was not chosen
	ErrMissingFields = errors.New("required booking fields missing")

	// ErrPastDate means the chosen day is before today
	ErrPastDate = errors.New("appointment date is in the past")

	// ErrInvalidSlot means the time is not a bookable slot
	ErrInvalidSlot = errors.New("time is not an available slot")

	// ErrInvalidType means the appointment type is unknown
	ErrInvalidType = errors.New("unknown appointment type")
)

// ScheduleRequest is the booking form
type ScheduleRequest struct {
	DoctorID string
	Date     time.Time
	Time     string
	Type     string
	Notes    string
}

// ParseDate accepts yyyy-mm-dd or dd/mm/yyyy in loc
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{provider.DateLayout, "02/01/2006"} {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q: use AAAA-MM-DD or DD/MM/AAAA", s)
}

// Validate checks the request against today's date in now's location
func (r ScheduleRequest) Validate(now time.Time) error {
	if strings.TrimSpace(r.DoctorID) == "" || r.Time == "" || r.Type == "" {
		return ErrMissingFields
	}
	if !IsType(r.Type) {
		return fmt.Errorf("%w: %s", ErrInvalidType, r.Type)
	}
	if !IsTimeSlot(r.Time) {
		return fmt.Errorf("%w: %s", ErrInvalidSlot, r.Time)
	}
	if r.Date.IsZero() {
		return ErrMissingFields
	}
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	ry, rm, rd := r.Date.Date()
	if time.Date(ry, rm, rd, 0, 0, 0, 0, now.Location()).Before(today) {
		return ErrPastDate
	}
	return nil
}

// Build turns a validated request into an insert payload for patientID.
// New bookings start pending at the clinic's main location.
func (r ScheduleRequest) Build(patientID string, doctors []provider.Doctor) provider.NewAppointment {
	name := UnknownDoctor
	for _, d := range doctors {
		if d.ID == r.DoctorID {
			name = d.Name
			break
		}
	}
	return provider.NewAppointment{
		PatientID:  patientID,
		DoctorID:   r.DoctorID,
		DoctorName: name,
		Date:       r.Date.Format(provider.DateLayout),
		Time:       r.Time,
		Type:       r.Type,
		Status:     StatusPending,
		Notes:      strings.TrimSpace(r.Notes),
		Location:   Location,
	}
}

// BookableDates lists the next days starting today, skipping Sundays
func BookableDates(now time.Time, days int) []time.Time {
	y, m, d := now.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	var out []time.Time
	for i := 0; len(out) < days; i++ {
		day := start.AddDate(0, 0, i)
		if day.Weekday() == time.Sunday {
			continue
		}
		out = append(out, day)
	}
	return out
}
