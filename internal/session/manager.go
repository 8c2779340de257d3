// ABOUTME: Sole mutator of the persisted session and the in-memory auth flag
// ABOUTME: Store changes always land before the flag is published

package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/markalston/iris/internal/store"
)

// Manager owns the AuthenticationState of the process.
// Login and Logout are serialized; readers never touch the store.
type Manager struct {
	store store.Store

	writeMu sync.Mutex // serializes Login/Logout

	mu            sync.RWMutex
	authenticated bool
	record        *Record
	listeners     []func(bool)
}

// NewManager creates a logged-out manager over the given store
func NewManager(s store.Store) *Manager {
	return &Manager{store: s}
}

// Restore seeds the in-memory state from the startup resolution.
// The store is not touched.
func (m *Manager) Restore(res Resolution) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if res.HasSession && res.Record != nil {
		rec := *res.Record
		m.record = &rec
		m.authenticated = true
		return
	}
	m.record = nil
	m.authenticated = false
}

// OnChange registers fn to be called after every published state change
func (m *Manager) OnChange(fn func(authenticated bool)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, fn)
}

// Login persists a session for id and then marks the process authenticated.
// If the write fails the flag is left untouched.
func (m *Manager) Login(ctx context.Context, id Identity) (*Record, error) {
	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	token := id.Token
	if token == "" {
		token = uuid.NewString()
	}
	rec := &Record{
		Token: token,
		User:  User{ID: id.ID, Email: id.Email, Name: id.Name},
	}

	value, err := rec.Encode()
	if err != nil {
		return nil, err
	}
	if err := m.store.Write(ctx, SessionKey, value); err != nil {
		slog.Error("Session write failed", "email", id.Email, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	m.publish(true, rec)
	slog.Info("Logged in", "email", rec.User.Email)

	out := *rec
	return &out, nil
}

// Logout removes the persisted session and then marks the process
// unauthenticated. If the delete fails the user stays logged in.
func (m *Manager) Logout(ctx context.Context) error {
	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	if err := m.store.Delete(ctx, SessionKey); err != nil {
		slog.Error("Session delete failed", "error", err)
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	m.publish(false, nil)
	slog.Info("Logged out")
	return nil
}

// IsAuthenticated returns the in-memory flag
func (m *Manager) IsAuthenticated() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.authenticated
}

// Current returns a copy of the active record
func (m *Manager) Current() (*Record, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.record == nil {
		return nil, false
	}
	rec := *m.record
	return &rec, true
}

// AccessToken returns the active token, or "" when logged out
func (m *Manager) AccessToken() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.record == nil {
		return ""
	}
	return m.record.Token
}

func (m *Manager) publish(authenticated bool, rec *Record) {
	m.mu.Lock()
	m.authenticated = authenticated
	m.record = rec
	listeners := make([]func(bool), len(m.listeners))
	copy(listeners, m.listeners)
	m.mu.Unlock()

	for _, fn := range listeners {
		fn(authenticated)
	}
}
