// ABOUTME: Login, registration, logout, and password reset workflows
// ABOUTME: Talks to the remote provider and hands sessions to the session manager

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/markalston/iris/internal/provider"
	"github.com/markalston/iris/internal/session"
)

var (
	// ErrMissingFields means a required form field was blank
	ErrMissingFields = errors.New("required fields missing")

	// ErrPasswordMismatch means password and confirmation differ
	ErrPasswordMismatch = errors.New("passwords do not match")
)

// RegisterInput is the sign-up form
type RegisterInput struct {
	FullName        string
	Email           string
	Password        string
	ConfirmPassword string
}

// Service runs the auth workflows
type Service struct {
	provider provider.Provider
	sessions *session.Manager
}

// NewService creates an auth service
func NewService(p provider.Provider, m *session.Manager) *Service {
	return &Service{provider: p, sessions: m}
}

// Login authenticates against the provider and persists the session.
// The process only counts as logged in once the store write succeeded.
func (s *Service) Login(ctx context.Context, email, password string) (*session.Record, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, ErrMissingFields
	}

	res, err := s.provider.SignIn(ctx, email, password)
	if err != nil {
		slog.Info("Sign in rejected", "email", email, "error", err)
		return nil, err
	}

	rec, err := s.sessions.Login(ctx, session.Identity{
		Token: res.AccessToken,
		ID:    res.User.ID,
		Email: firstNonEmpty(res.User.Email, email),
		Name:  res.User.FullName,
	})
	if err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	return rec, nil
}

// Register creates an account. It does not log the user in.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*provider.User, error) {
	in.FullName = strings.TrimSpace(in.FullName)
	in.Email = strings.TrimSpace(in.Email)
	if in.FullName == "" || in.Email == "" || in.Password == "" || in.ConfirmPassword == "" {
		return nil, ErrMissingFields
	}
	if in.Password != in.ConfirmPassword {
		return nil, ErrPasswordMismatch
	}

	u, err := s.provider.SignUp(ctx, provider.SignUpInput{
		FullName: in.FullName,
		Email:    in.Email,
		Password: in.Password,
	})
	if err != nil {
		return nil, err
	}
	slog.Info("Account registered", "email", u.Email)
	return u, nil
}

// Logout clears the local session, then revokes its token remotely.
// A failed local delete is returned, the user stays logged in, and the
// token is left valid. A failed revoke is logged only.
func (s *Service) Logout(ctx context.Context) error {
	token := s.sessions.AccessToken()
	if err := s.sessions.Logout(ctx); err != nil {
		return err
	}
	if token == "" {
		return nil
	}
	if err := s.provider.SignOut(ctx, token); err != nil {
		slog.Warn("Remote sign out failed", "error", err)
	}
	return nil
}

// RequestPasswordReset mails a reset link to email
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return ErrMissingFields
	}
	if err := s.provider.SendPasswordReset(ctx, email); err != nil {
		return err
	}
	slog.Info("Password reset requested", "email", email)
	return nil
}

// CurrentUser returns the identity of the active session
func (s *Service) CurrentUser() (session.User, bool) {
	rec, ok := s.sessions.Current()
	if !ok {
		return session.User{}, false
	}
	return rec.User, true
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
