// ABOUTME: Remote data provider contract for auth, profiles, doctors, and appointments
// ABOUTME: Implemented by the Supabase REST client and an in-memory mock

package provider

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// DateLayout is the wire format of appointment dates
const DateLayout = "2006-01-02"

var (
	// ErrRequestFailed is matched by every *RequestError
	ErrRequestFailed = errors.New("remote request failed")

	// ErrInvalidCredentials means sign-in was rejected
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrNotAuthenticated means the call needs a signed-in user
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrNotFound means the requested row does not exist
	ErrNotFound = errors.New("not found")
)

// RequestError describes a failed provider call
type RequestError struct {
	Op      string // e.g. "list appointments"
	Status  int    // HTTP status, 0 for transport failures
	Message string
	Err     error
}

func (e *RequestError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Status > 0 {
		return fmt.Sprintf("%s: backend returned status %d: %s", e.Op, e.Status, msg)
	}
	return fmt.Sprintf("%s: %s", e.Op, msg)
}

// Unwrap exposes both the cause and ErrRequestFailed to errors.Is
func (e *RequestError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrRequestFailed, e.Err}
	}
	return []error{ErrRequestFailed}
}

// User is the authenticated account as the provider sees it
type User struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name,omitempty"`
}

// AuthResult is returned by a successful sign-in
type AuthResult struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	ExpiresAt    time.Time `json:"expires_at,omitempty"`
	User         User      `json:"user"`
}

// SignUpInput carries the registration form
type SignUpInput struct {
	FullName string
	Email    string
	Password string
}

// Profile is a row of the profiles table
type Profile struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
	Phone    string `json:"phone,omitempty"`
	Email    string `json:"email,omitempty"`
}

// Doctor is a row of the doctors table
type Doctor struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Specialty string `json:"specialty"`
}

// Appointment is a row of the appointments table
type Appointment struct {
	ID         string `json:"id"`
	PatientID  string `json:"patient_id"`
	DoctorID   string `json:"doctor_id"`
	DoctorName string `json:"doctor_name"`
	Date       string `json:"appointment_date"`
	Time       string `json:"appointment_time"`
	Type       string `json:"appointment_type"`
	Status     string `json:"status"`
	Notes      string `json:"notes,omitempty"`
	Location   string `json:"location,omitempty"`
}

// Day parses the appointment date. Timestamps are accepted as well as
// plain dates.
func (a Appointment) Day() (time.Time, error) {
	if t, err := time.Parse(DateLayout, a.Date); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, a.Date)
}

// NewAppointment is the insert payload for a new booking
type NewAppointment struct {
	PatientID  string `json:"patient_id"`
	DoctorID   string `json:"doctor_id"`
	DoctorName string `json:"doctor_name"`
	Date       string `json:"appointment_date"`
	Time       string `json:"appointment_time"`
	Type       string `json:"appointment_type"`
	Status     string `json:"status"`
	Notes      string `json:"notes"`
	Location   string `json:"location"`
}

// Provider is the backend-as-a-service seen by the client.
// Every failure is returned as an error value; none is fatal.
type Provider interface {
	Health(ctx context.Context) error
	SignIn(ctx context.Context, email, password string) (*AuthResult, error)
	SignUp(ctx context.Context, input SignUpInput) (*User, error)
	// SignOut revokes accessToken; it does not read the TokenSource
	SignOut(ctx context.Context, accessToken string) error
	SendPasswordReset(ctx context.Context, email string) error
	GetCurrentUser(ctx context.Context) (*User, error)
	GetProfile(ctx context.Context, userID string) (*Profile, error)
	UpdateProfile(ctx context.Context, profile Profile) (*Profile, error)
	ListAppointments(ctx context.Context, patientID string) ([]Appointment, error)
	CreateAppointment(ctx context.Context, appt NewAppointment) (*Appointment, error)
	ListDoctors(ctx context.Context) ([]Doctor, error)
}

// TokenSource yields the bearer token for the signed-in user
type TokenSource func() string
