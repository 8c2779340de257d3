// ABOUTME: Persisted session record and its JSON encoding
// ABOUTME: A record is either fully valid or treated as absent

package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// SessionKey is the store slot holding the serialized Record
const SessionKey = "auth.session"

var (
	// ErrMalformedRecord means the stored value could not be used as a session
	ErrMalformedRecord = errors.New("malformed session record")

	// ErrStorageUnavailable means the store rejected a session mutation
	ErrStorageUnavailable = errors.New("session storage unavailable")
)

// User is the identity snapshot embedded in a session
type User struct {
	ID    string `json:"id,omitempty"`
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// Record is the durable proof that a user has authenticated
type Record struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// Identity is what a successful sign-in hands to the Manager
type Identity struct {
	Token string
	ID    string
	Email string
	Name  string
}

// Validate reports whether the record is complete enough to count as a session
func (r *Record) Validate() error {
	if strings.TrimSpace(r.Token) == "" {
		return fmt.Errorf("%w: missing token", ErrMalformedRecord)
	}
	if strings.TrimSpace(r.User.Email) == "" {
		return fmt.Errorf("%w: missing user email", ErrMalformedRecord)
	}
	return nil
}

// Encode serializes the record for the store
func (r *Record) Encode() (string, error) {
	if err := r.Validate(); err != nil {
		return "", err
	}
	data, err := json.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("encode session: %w", err)
	}
	return string(data), nil
}

// DecodeRecord parses a stored value. Anything that does not yield a
// valid record returns ErrMalformedRecord.
func DecodeRecord(value string) (*Record, error) {
	if strings.TrimSpace(value) == "" {
		return nil, fmt.Errorf("%w: empty value", ErrMalformedRecord)
	}
	var r Record
	if err := json.Unmarshal([]byte(value), &r); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return &r, nil
}

// DisplayName returns the user's name, or the email when no name is known
func (u User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}
