package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/markalston/iris/internal/provider"
	"github.com/markalston/iris/internal/provider/mock"
	"github.com/markalston/iris/internal/session"
	"github.com/markalston/iris/internal/store"
)

// brokenStore fails every mutation
type brokenStore struct {
	*store.MemoryStore
}

func (brokenStore) Write(context.Context, string, string) error { return store.ErrUnavailable }
func (brokenStore) Delete(context.Context, string) error        { return store.ErrUnavailable }

// failingSignOut is a mock whose remote sign out always fails
type failingSignOut struct {
	*mock.Provider
	calls int
}

func (f *failingSignOut) SignOut(context.Context, string) error {
	f.calls++
	return &provider.RequestError{Op: "sign out", Status: 500, Message: "boom"}
}

// recordingSignOut revokes through the mock and remembers what it revoked
type recordingSignOut struct {
	*mock.Provider
	revoked []string
}

func (r *recordingSignOut) SignOut(ctx context.Context, token string) error {
	r.revoked = append(r.revoked, token)
	return r.Provider.SignOut(ctx, token)
}

func newService(t *testing.T, s store.Store) (*Service, *session.Manager, *mock.Provider) {
	t.Helper()
	m := session.NewManager(s)
	p := mock.New(m.AccessToken)
	return NewService(p, m), m, p
}

func TestLogin_Success(t *testing.T) {
	st := store.NewMemoryStore()
	svc, m, _ := newService(t, st)

	rec, err := svc.Login(context.Background(), "  teste@iris.com ", mock.DemoPassword)
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if rec.Token != mock.TokenFor(mock.DemoEmail) {
		t.Errorf("Expected provider token in record, got %s", rec.Token)
	}
	if rec.User.Name != mock.DemoName {
		t.Errorf("Expected name %s, got %s", mock.DemoName, rec.User.Name)
	}
	if !m.IsAuthenticated() {
		t.Error("Expected manager to be authenticated")
	}
	if _, ok, _ := st.Read(context.Background(), session.SessionKey); !ok {
		t.Error("Expected session persisted")
	}
}

func TestLogin_Rejections(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		password string
		want     error
	}{
		{"blank email", " ", "123456", ErrMissingFields},
		{"blank password", "teste@iris.com", "", ErrMissingFields},
		{"wrong password", "teste@iris.com", "000000", provider.ErrInvalidCredentials},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := store.NewMemoryStore()
			svc, m, _ := newService(t, st)

			_, err := svc.Login(context.Background(), tt.email, tt.password)
			if !errors.Is(err, tt.want) {
				t.Fatalf("Expected %v, got %v", tt.want, err)
			}
			if m.IsAuthenticated() {
				t.Error("Expected manager to stay logged out")
			}
			if _, ok, _ := st.Read(context.Background(), session.SessionKey); ok {
				t.Error("Expected nothing persisted")
			}
		})
	}
}

func TestLogin_StorageFailure(t *testing.T) {
	svc, m, _ := newService(t, brokenStore{store.NewMemoryStore()})

	_, err := svc.Login(context.Background(), mock.DemoEmail, mock.DemoPassword)
	if !errors.Is(err, session.ErrStorageUnavailable) {
		t.Fatalf("Expected ErrStorageUnavailable, got %v", err)
	}
	if m.IsAuthenticated() {
		t.Error("Expected flag untouched after failed write")
	}
}

func TestRegister(t *testing.T) {
	tests := []struct {
		name  string
		input RegisterInput
		want  error
	}{
		{"missing name", RegisterInput{Email: "a@b.c", Password: "123456", ConfirmPassword: "123456"}, ErrMissingFields},
		{"missing confirmation", RegisterInput{FullName: "A", Email: "a@b.c", Password: "123456"}, ErrMissingFields},
		{"mismatch", RegisterInput{FullName: "A", Email: "a@b.c", Password: "123456", ConfirmPassword: "654321"}, ErrPasswordMismatch},
		{"duplicate", RegisterInput{FullName: "A", Email: mock.DemoEmail, Password: "123456", ConfirmPassword: "123456"}, provider.ErrRequestFailed},
		{"ok", RegisterInput{FullName: " Ana ", Email: "ana@iris.com", Password: "segredo", ConfirmPassword: "segredo"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m, _ := newService(t, store.NewMemoryStore())
			u, err := svc.Register(context.Background(), tt.input)
			if tt.want != nil {
				if !errors.Is(err, tt.want) {
					t.Fatalf("Expected %v, got %v", tt.want, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Register failed: %v", err)
			}
			if u.FullName != "Ana" {
				t.Errorf("Expected trimmed name, got %q", u.FullName)
			}
			if m.IsAuthenticated() {
				t.Error("Register must not log in")
			}
		})
	}
}

func TestLogout_ClearsSession(t *testing.T) {
	st := store.NewMemoryStore()
	svc, m, _ := newService(t, st)
	ctx := context.Background()

	if _, err := svc.Login(ctx, mock.DemoEmail, mock.DemoPassword); err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if err := svc.Logout(ctx); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}
	if m.IsAuthenticated() {
		t.Error("Expected logged out")
	}
	if _, ok, _ := st.Read(ctx, session.SessionKey); ok {
		t.Error("Expected session removed")
	}
}

func TestLogout_RemoteFailureIsNotFatal(t *testing.T) {
	m := session.NewManager(store.NewMemoryStore())
	p := &failingSignOut{Provider: mock.New(m.AccessToken)}
	svc := NewService(p, m)
	ctx := context.Background()

	if _, err := svc.Login(ctx, mock.DemoEmail, mock.DemoPassword); err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if err := svc.Logout(ctx); err != nil {
		t.Fatalf("Expected logout to succeed despite remote failure, got %v", err)
	}
	if p.calls != 1 {
		t.Errorf("Expected one remote sign out, got %d", p.calls)
	}
	if m.IsAuthenticated() {
		t.Error("Expected logged out")
	}
}

func TestLogout_SkipsRemoteWhenLoggedOut(t *testing.T) {
	m := session.NewManager(store.NewMemoryStore())
	p := &failingSignOut{Provider: mock.New(m.AccessToken)}
	svc := NewService(p, m)

	if err := svc.Logout(context.Background()); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}
	if p.calls != 0 {
		t.Errorf("Expected no remote sign out, got %d", p.calls)
	}
}

func TestLogout_StorageFailureKeepsUserLoggedIn(t *testing.T) {
	m := session.NewManager(brokenStore{store.NewMemoryStore()})
	m.Restore(session.Resolution{HasSession: true, Record: &session.Record{
		Token: mock.TokenFor(mock.DemoEmail),
		User:  session.User{Email: mock.DemoEmail},
	}})
	svc := NewService(mock.New(m.AccessToken), m)

	err := svc.Logout(context.Background())
	if !errors.Is(err, session.ErrStorageUnavailable) {
		t.Fatalf("Expected ErrStorageUnavailable, got %v", err)
	}
	if !m.IsAuthenticated() {
		t.Error("Expected user to stay logged in")
	}
}

func TestLogout_DeleteFailureLeavesTokenUsable(t *testing.T) {
	m := session.NewManager(brokenStore{store.NewMemoryStore()})
	token := mock.TokenFor(mock.DemoEmail)
	m.Restore(session.Resolution{HasSession: true, Record: &session.Record{
		Token: token,
		User:  session.User{Email: mock.DemoEmail},
	}})
	p := &recordingSignOut{Provider: mock.New(m.AccessToken)}
	svc := NewService(p, m)
	ctx := context.Background()

	if err := svc.Logout(ctx); !errors.Is(err, session.ErrStorageUnavailable) {
		t.Fatalf("Expected ErrStorageUnavailable, got %v", err)
	}
	if len(p.revoked) != 0 {
		t.Errorf("Expected no remote revoke, got %v", p.revoked)
	}
	if !m.IsAuthenticated() {
		t.Error("Expected user to stay logged in")
	}
	if _, err := p.GetCurrentUser(ctx); err != nil {
		t.Errorf("Expected the kept session to stay usable, got %v", err)
	}
}

func TestLogout_RevokesCapturedTokenAfterDelete(t *testing.T) {
	st := store.NewMemoryStore()
	m := session.NewManager(st)
	p := &recordingSignOut{Provider: mock.New(m.AccessToken)}
	svc := NewService(p, m)
	ctx := context.Background()

	rec, err := svc.Login(ctx, mock.DemoEmail, mock.DemoPassword)
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if err := svc.Logout(ctx); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}
	if len(p.revoked) != 1 || p.revoked[0] != rec.Token {
		t.Errorf("Expected %q revoked once, got %v", rec.Token, p.revoked)
	}
	if _, ok, _ := st.Read(ctx, session.SessionKey); ok {
		t.Error("Expected session removed")
	}
}

func TestRequestPasswordReset(t *testing.T) {
	svc, _, p := newService(t, store.NewMemoryStore())

	if err := svc.RequestPasswordReset(context.Background(), ""); !errors.Is(err, ErrMissingFields) {
		t.Errorf("Expected ErrMissingFields, got %v", err)
	}
	if err := svc.RequestPasswordReset(context.Background(), "teste@iris.com"); err != nil {
		t.Fatalf("RequestPasswordReset failed: %v", err)
	}
	if got := p.ResetsSent(); len(got) != 1 {
		t.Errorf("Expected one reset, got %v", got)
	}
}

func TestCurrentUser(t *testing.T) {
	svc, _, _ := newService(t, store.NewMemoryStore())
	if _, ok := svc.CurrentUser(); ok {
		t.Error("Expected no user before login")
	}
	if _, err := svc.Login(context.Background(), mock.DemoEmail, mock.DemoPassword); err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	u, ok := svc.CurrentUser()
	if !ok || u.Email != mock.DemoEmail {
		t.Errorf("Unexpected user %+v", u)
	}
}
