// ABOUTME: One-shot startup resolution of the persisted session
// ABOUTME: Any doubt about the stored record resolves to logged out

package session

import (
	"context"
	"log/slog"

	"github.com/markalston/iris/internal/store"
)

// Resolution is the startup snapshot handed to the navigation gate
type Resolution struct {
	HasSession bool
	Record     *Record
}

// Resolver reads the session slot once during bootstrap
type Resolver struct {
	store store.Store
}

// NewResolver creates a resolver over the given store
func NewResolver(s store.Store) *Resolver {
	return &Resolver{store: s}
}

// Resolve decides the initial authentication state.
// It never returns an error and never retries: read failures and malformed
// records both yield HasSession=false.
func (r *Resolver) Resolve(ctx context.Context) Resolution {
	value, ok, err := r.store.Read(ctx, SessionKey)
	if err != nil {
		slog.Warn("Session read failed, starting logged out", "error", err)
		return Resolution{}
	}
	if !ok {
		slog.Debug("No stored session")
		return Resolution{}
	}

	record, err := DecodeRecord(value)
	if err != nil {
		slog.Warn("Stored session unusable, starting logged out", "error", err)
		return Resolution{}
	}

	slog.Info("Stored session found", "email", record.User.Email)
	return Resolution{HasSession: true, Record: record}
}
