// ABOUTME: In-memory provider used for demos, offline work, and tests
// ABOUTME: Ships one demo account, two doctors, and appointments relative to today

package mock

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/markalston/iris/internal/provider"
)

// Demo account accepted out of the box
const (
	DemoEmail    = "teste@iris.com"
	DemoPassword = "123456"
	DemoName     = "Usuário Teste"
)

const tokenPrefix = "mock-token:"

const minPasswordLength = 6

type account struct {
	user     provider.User
	password string
}

// Provider implements provider.Provider without a network.
// Tokens encode the account email so a persisted session keeps working
// across restarts for the demo account.
type Provider struct {
	tokens provider.TokenSource
	now    func() time.Time

	mu           sync.Mutex
	accounts     map[string]*account // by lowercased email
	profiles     map[string]provider.Profile
	appointments map[string][]provider.Appointment // by patient id
	seeded       map[string]bool
	revoked      map[string]bool // tokens signed out until the next sign in
	doctors      []provider.Doctor
	resets       []string
}

// Option configures a Provider
type Option func(*Provider)

// WithClock overrides time.Now for seeding demo appointments
func WithClock(now func() time.Time) Option {
	return func(p *Provider) { p.now = now }
}

// New creates a mock provider. tokens supplies the bearer of the signed-in
// user; nil means every authenticated call fails.
func New(tokens provider.TokenSource, opts ...Option) *Provider {
	p := &Provider{
		tokens:       tokens,
		now:          time.Now,
		accounts:     make(map[string]*account),
		profiles:     make(map[string]provider.Profile),
		appointments: make(map[string][]provider.Appointment),
		seeded:       make(map[string]bool),
		revoked:      make(map[string]bool),
		doctors: []provider.Doctor{
			{ID: DoctorID("Dr. Mock 1"), Name: "Dr. Mock 1", Specialty: "Oftalmologista"},
			{ID: DoctorID("Dr. Mock 2"), Name: "Dr. Mock 2", Specialty: "Optometrista"},
		},
	}
	for _, opt := range opts {
		opt(p)
	}
	p.addAccount(DemoName, DemoEmail, DemoPassword, "(11) 99999-0000")
	return p
}

// PatientID returns the deterministic id assigned to email
func PatientID(email string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("mailto:"+strings.ToLower(email))).String()
}

// DoctorID returns the deterministic id of a seeded doctor
func DoctorID(name string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(name)).String()
}

// TokenFor returns the access token the mock issues for email
func TokenFor(email string) string {
	return tokenPrefix + strings.ToLower(email)
}

// ResetsSent lists the addresses that requested a password reset
func (p *Provider) ResetsSent() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.resets))
	copy(out, p.resets)
	return out
}

func (p *Provider) addAccount(name, email, password, phone string) *account {
	u := provider.User{ID: PatientID(email), Email: strings.ToLower(email), FullName: name}
	acc := &account{user: u, password: password}
	p.accounts[u.Email] = acc
	p.profiles[u.ID] = provider.Profile{ID: u.ID, FullName: name, Phone: phone, Email: u.Email}
	return acc
}

// currentAccount resolves the bearer token. Caller holds p.mu.
func (p *Provider) currentAccount() (*account, error) {
	if p.tokens == nil {
		return nil, provider.ErrNotAuthenticated
	}
	token := p.tokens()
	email, ok := strings.CutPrefix(token, tokenPrefix)
	if !ok || p.revoked[token] {
		return nil, provider.ErrNotAuthenticated
	}
	acc, ok := p.accounts[email]
	if !ok {
		return nil, provider.ErrNotAuthenticated
	}
	return acc, nil
}

// Health always succeeds
func (p *Provider) Health(ctx context.Context) error {
	return ctx.Err()
}

// SignIn checks the credentials against the known accounts
func (p *Provider) SignIn(ctx context.Context, email, password string) (*provider.AuthResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	acc, ok := p.accounts[strings.ToLower(strings.TrimSpace(email))]
	if !ok || acc.password != password {
		return nil, provider.ErrInvalidCredentials
	}
	token := TokenFor(acc.user.Email)
	delete(p.revoked, token)
	return &provider.AuthResult{
		AccessToken: token,
		ExpiresAt:   p.now().Add(time.Hour),
		User:        acc.user,
	}, nil
}

// SignUp creates an account and its profile
func (p *Provider) SignUp(ctx context.Context, input provider.SignUpInput) (*provider.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(input.Password) < minPasswordLength {
		return nil, &provider.RequestError{
			Op:      "sign up",
			Status:  422,
			Message: fmt.Sprintf("Password should be at least %d characters", minPasswordLength),
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	email := strings.ToLower(strings.TrimSpace(input.Email))
	if _, exists := p.accounts[email]; exists {
		return nil, &provider.RequestError{Op: "sign up", Status: 422, Message: "User already registered"}
	}
	acc := p.addAccount(input.FullName, email, input.Password, "")
	u := acc.user
	return &u, nil
}

// SignOut revokes accessToken until the account signs in again
func (p *Provider) SignOut(ctx context.Context, accessToken string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if accessToken == "" {
		return provider.ErrNotAuthenticated
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.revoked[accessToken] = true
	return nil
}

// SendPasswordReset records the request. Unknown addresses are accepted
// silently so callers cannot probe for accounts.
func (p *Provider) SendPasswordReset(ctx context.Context, email string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.resets = append(p.resets, strings.ToLower(strings.TrimSpace(email)))
	return nil
}

// GetCurrentUser resolves the bearer token
func (p *Provider) GetCurrentUser(ctx context.Context) (*provider.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	acc, err := p.currentAccount()
	if err != nil {
		return nil, err
	}
	u := acc.user
	return &u, nil
}

// GetProfile returns the profile row for userID
func (p *Provider) GetProfile(ctx context.Context, userID string) (*provider.Profile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, err := p.currentAccount(); err != nil {
		return nil, err
	}
	prof, ok := p.profiles[userID]
	if !ok {
		return nil, provider.ErrNotFound
	}
	return &prof, nil
}

// UpdateProfile replaces name and phone of the caller's own profile
func (p *Provider) UpdateProfile(ctx context.Context, profile provider.Profile) (*provider.Profile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	acc, err := p.currentAccount()
	if err != nil {
		return nil, err
	}
	if profile.ID != acc.user.ID {
		return nil, provider.ErrNotFound
	}
	stored := p.profiles[profile.ID]
	stored.FullName = profile.FullName
	stored.Phone = profile.Phone
	p.profiles[profile.ID] = stored
	acc.user.FullName = profile.FullName
	return &stored, nil
}

// ListAppointments returns the patient's appointments by date ascending.
// Rows of other patients are invisible, as with row-level security.
func (p *Provider) ListAppointments(ctx context.Context, patientID string) ([]provider.Appointment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	acc, err := p.currentAccount()
	if err != nil {
		return nil, err
	}
	if patientID != acc.user.ID {
		return []provider.Appointment{}, nil
	}
	p.seedLocked(acc)

	list := p.appointments[patientID]
	out := make([]provider.Appointment, len(list))
	copy(out, list)
	return out, nil
}

// CreateAppointment stores a new appointment for the caller
func (p *Provider) CreateAppointment(ctx context.Context, appt provider.NewAppointment) (*provider.Appointment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, err := time.Parse(provider.DateLayout, appt.Date); err != nil {
		return nil, &provider.RequestError{Op: "create appointment", Status: 400, Message: "invalid appointment_date", Err: err}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	acc, err := p.currentAccount()
	if err != nil {
		return nil, err
	}
	if appt.PatientID != acc.user.ID {
		return nil, &provider.RequestError{Op: "create appointment", Status: 403, Message: "new row violates row-level security policy"}
	}
	p.seedLocked(acc)

	row := provider.Appointment{
		ID:         uuid.NewString(),
		PatientID:  appt.PatientID,
		DoctorID:   appt.DoctorID,
		DoctorName: appt.DoctorName,
		Date:       appt.Date,
		Time:       appt.Time,
		Type:       appt.Type,
		Status:     appt.Status,
		Notes:      appt.Notes,
		Location:   appt.Location,
	}
	list := append(p.appointments[row.PatientID], row)
	sortAppointments(list)
	p.appointments[row.PatientID] = list
	return &row, nil
}

// ListDoctors returns the doctors ordered by name
func (p *Provider) ListDoctors(ctx context.Context) ([]provider.Doctor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]provider.Doctor, len(p.doctors))
	copy(out, p.doctors)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// seedLocked gives the demo account a history on first access
func (p *Provider) seedLocked(acc *account) {
	id := acc.user.ID
	if p.seeded[id] {
		return
	}
	p.seeded[id] = true
	if acc.user.Email != DemoEmail {
		return
	}

	today := p.now()
	day := func(offset int) string { return today.AddDate(0, 0, offset).Format(provider.DateLayout) }
	d1, d2 := p.doctors[0], p.doctors[1]
	const location = "Clínica Íris Oftalmologia - Centro"

	seed := []provider.Appointment{
		{DoctorID: d1.ID, DoctorName: d1.Name, Date: day(2), Time: "09:00", Type: "consulta", Status: "confirmado", Location: location},
		{DoctorID: d2.ID, DoctorName: d2.Name, Date: day(7), Time: "14:30", Type: "exame", Status: "pendente", Notes: "Mapeamento de retina", Location: location},
		{DoctorID: d1.ID, DoctorName: d1.Name, Date: day(21), Time: "10:00", Type: "retorno", Status: "pendente", Location: location},
		{DoctorID: d1.ID, DoctorName: d1.Name, Date: day(-10), Time: "08:30", Type: "consulta", Status: "confirmado", Location: location},
		{DoctorID: d2.ID, DoctorName: d2.Name, Date: day(-3), Time: "15:00", Type: "exame", Status: "cancelado", Location: location},
	}
	for i := range seed {
		seed[i].ID = uuid.NewString()
		seed[i].PatientID = id
	}
	list := append(p.appointments[id], seed...)
	sortAppointments(list)
	p.appointments[id] = list
}

func sortAppointments(list []provider.Appointment) {
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].Date != list[j].Date {
			return list[i].Date < list[j].Date
		}
		return list[i].Time < list[j].Time
	})
}

var _ provider.Provider = (*Provider)(nil)
