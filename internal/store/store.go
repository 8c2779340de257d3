// ABOUTME: Durable key-value slots for client state that must survive restarts
// ABOUTME: File-backed store in the XDG config directory plus an in-memory variant

package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/natefinch/atomic"
)

// ErrUnavailable is wrapped by every failure of the underlying medium
// (disk full, permission denied, unreadable directory).
var ErrUnavailable = errors.New("storage unavailable")

// ErrInvalidKey is returned for keys that cannot be mapped to a slot
var ErrInvalidKey = errors.New("invalid store key")

// Store maps fixed keys to string blobs.
// Read never fails for a missing key; Delete is idempotent.
type Store interface {
	Read(ctx context.Context, key string) (string, bool, error)
	Write(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// DefaultDir returns $XDG_CONFIG_HOME/iris, or ~/.config/iris.
// It returns "" when neither is known; a FileStore over "" is unavailable.
func DefaultDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "iris")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "iris")
}

func validateKey(key string) error {
	if key == "" || key == "." || key == ".." || strings.ContainsAny(key, `/\`) {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}

// FileStore keeps one file per key under dir.
// Writes go through a temp file and rename, so a slot is never half written.
type FileStore struct {
	dir string
}

// NewFileStore creates a file store rooted at dir. The directory is
// created lazily on first write.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

// Dir returns the directory backing the store
func (fs *FileStore) Dir() string {
	return fs.dir
}

func (fs *FileStore) path(key string) string {
	return filepath.Join(fs.dir, key)
}

// check rejects bad keys, canceled contexts, and a store with no directory.
// An empty dir would otherwise resolve slots against the working directory.
func (fs *FileStore) check(ctx context.Context, key string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if fs.dir == "" {
		return fmt.Errorf("%w: no config directory", ErrUnavailable)
	}
	return nil
}

// Read returns the value stored under key
func (fs *FileStore) Read(ctx context.Context, key string) (string, bool, error) {
	if err := fs.check(ctx, key); err != nil {
		return "", false, err
	}

	data, err := os.ReadFile(fs.path(key))
	if os.IsNotExist(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("%w: read %s: %v", ErrUnavailable, key, err)
	}
	return string(data), true, nil
}

// Write replaces the value stored under key
func (fs *FileStore) Write(ctx context.Context, key, value string) error {
	if err := fs.check(ctx, key); err != nil {
		return err
	}

	if err := os.MkdirAll(fs.dir, 0700); err != nil {
		return fmt.Errorf("%w: create %s: %v", ErrUnavailable, fs.dir, err)
	}
	if err := atomic.WriteFile(fs.path(key), bytes.NewReader([]byte(value))); err != nil {
		return fmt.Errorf("%w: write %s: %v", ErrUnavailable, key, err)
	}
	// session tokens stay private even if an older file was more permissive
	if err := os.Chmod(fs.path(key), 0600); err != nil {
		return fmt.Errorf("%w: chmod %s: %v", ErrUnavailable, key, err)
	}
	return nil
}

// Delete removes key. Removing a missing key is not an error.
func (fs *FileStore) Delete(ctx context.Context, key string) error {
	if err := fs.check(ctx, key); err != nil {
		return err
	}

	err := os.Remove(fs.path(key))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("%w: delete %s: %v", ErrUnavailable, key, err)
	}
	return nil
}

// MemoryStore is a process-local Store
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]string)}
}

// Read returns the value stored under key
func (ms *MemoryStore) Read(_ context.Context, key string) (string, bool, error) {
	if err := validateKey(key); err != nil {
		return "", false, err
	}
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	v, ok := ms.data[key]
	return v, ok, nil
}

// Write replaces the value stored under key
func (ms *MemoryStore) Write(_ context.Context, key, value string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.data[key] = value
	return nil
}

// Delete removes key
func (ms *MemoryStore) Delete(_ context.Context, key string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	ms.mu.Lock()
	defer ms.mu.Unlock()
	delete(ms.data, key)
	return nil
}
