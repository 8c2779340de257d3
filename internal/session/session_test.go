// ABOUTME: Tests for session resolution and the auth session manager
// ABOUTME: Verifies fail-safe startup and write-before-publish ordering

package session

import (
	"context"
	"errors"
	"testing"

	"github.com/markalston/iris/internal/store"
)

// faultyStore fails writes or deletes on demand and can observe the
// manager's flag at the moment the store is mutated
type faultyStore struct {
	*store.MemoryStore
	failRead   bool
	failWrite  bool
	failDelete bool
	onWrite    func()
	onDelete   func()
}

func newFaultyStore() *faultyStore {
	return &faultyStore{MemoryStore: store.NewMemoryStore()}
}

func (f *faultyStore) Read(ctx context.Context, key string) (string, bool, error) {
	if f.failRead {
		return "", false, store.ErrUnavailable
	}
	return f.MemoryStore.Read(ctx, key)
}

func (f *faultyStore) Write(ctx context.Context, key, value string) error {
	if f.failWrite {
		return store.ErrUnavailable
	}
	if err := f.MemoryStore.Write(ctx, key, value); err != nil {
		return err
	}
	if f.onWrite != nil {
		f.onWrite()
	}
	return nil
}

func (f *faultyStore) Delete(ctx context.Context, key string) error {
	if f.failDelete {
		return store.ErrUnavailable
	}
	if err := f.MemoryStore.Delete(ctx, key); err != nil {
		return err
	}
	if f.onDelete != nil {
		f.onDelete()
	}
	return nil
}

func TestRecordRoundTrip(t *testing.T) {
	records := []Record{
		{Token: "t1", User: User{Email: "a@b.com"}},
		{Token: "t2", User: User{ID: "u-1", Email: "teste@iris.com", Name: "Usuário Teste"}},
	}

	for _, want := range records {
		t.Run(want.Token, func(t *testing.T) {
			st := store.NewMemoryStore()
			value, err := want.Encode()
			if err != nil {
				t.Fatalf("Encode() error: %v", err)
			}
			st.Write(context.Background(), SessionKey, value)

			raw, _, _ := st.Read(context.Background(), SessionKey)
			got, err := DecodeRecord(raw)
			if err != nil {
				t.Fatalf("DecodeRecord() error: %v", err)
			}
			if *got != want {
				t.Errorf("expected %+v, got %+v", want, *got)
			}
		})
	}
}

func TestDecodeRecordMalformed(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{"empty", ""},
		{"whitespace", "   "},
		{"not json", "{not json"},
		{"truncated", `{"token":"t1","user":{"email":"a@`},
		{"missing token", `{"user":{"email":"a@b.com"}}`},
		{"missing email", `{"token":"t1","user":{}}`},
		{"wrong shape", `["t1"]`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DecodeRecord(tc.value)
			if !errors.Is(err, ErrMalformedRecord) {
				t.Errorf("expected ErrMalformedRecord, got %v", err)
			}
		})
	}
}

func TestResolveAbsent(t *testing.T) {
	res := NewResolver(store.NewMemoryStore()).Resolve(context.Background())
	if res.HasSession {
		t.Error("expected no session for empty store")
	}
	if res.Record != nil {
		t.Error("expected nil record")
	}
}

func TestResolveMalformed(t *testing.T) {
	st := store.NewMemoryStore()
	st.Write(context.Background(), SessionKey, "garbage{")

	res := NewResolver(st).Resolve(context.Background())
	if res.HasSession {
		t.Error("expected malformed record to resolve as no session")
	}
}

func TestResolveReadFailure(t *testing.T) {
	st := newFaultyStore()
	st.failRead = true

	res := NewResolver(st).Resolve(context.Background())
	if res.HasSession {
		t.Error("expected read failure to resolve as no session")
	}
}

func TestResolvePrepopulated(t *testing.T) {
	st := store.NewMemoryStore()
	st.Write(context.Background(), SessionKey, `{"token":"t1","user":{"email":"a@b.com"}}`)

	res := NewResolver(st).Resolve(context.Background())
	if !res.HasSession {
		t.Fatal("expected stored session to be found")
	}
	if res.Record.User.Email != "a@b.com" {
		t.Errorf("expected a@b.com, got %s", res.Record.User.Email)
	}
}

func TestLoginPersistsThenPublishes(t *testing.T) {
	st := newFaultyStore()
	m := NewManager(st)

	// The flag must still be false when the store write lands
	flagDuringWrite := true
	st.onWrite = func() { flagDuringWrite = m.IsAuthenticated() }

	rec, err := m.Login(context.Background(), Identity{Email: "teste@iris.com"})
	if err != nil {
		t.Fatalf("Login() error: %v", err)
	}
	if flagDuringWrite {
		t.Error("flag was published before the store write completed")
	}
	if !m.IsAuthenticated() {
		t.Error("expected authenticated after login")
	}

	raw, ok, _ := st.Read(context.Background(), SessionKey)
	if !ok {
		t.Fatal("expected session in store")
	}
	stored, err := DecodeRecord(raw)
	if err != nil {
		t.Fatalf("stored record invalid: %v", err)
	}
	if stored.User.Email != "teste@iris.com" {
		t.Errorf("expected teste@iris.com, got %s", stored.User.Email)
	}
	if stored.Token == "" || stored.Token != rec.Token {
		t.Errorf("expected minted token %q in store, got %q", rec.Token, stored.Token)
	}
}

func TestLoginKeepsProvidedToken(t *testing.T) {
	m := NewManager(store.NewMemoryStore())

	rec, err := m.Login(context.Background(), Identity{Token: "abc", ID: "u1", Email: "a@b.com", Name: "Ana"})
	if err != nil {
		t.Fatal(err)
	}
	if rec.Token != "abc" {
		t.Errorf("expected token abc, got %s", rec.Token)
	}
	if m.AccessToken() != "abc" {
		t.Errorf("expected AccessToken abc, got %s", m.AccessToken())
	}
	cur, ok := m.Current()
	if !ok || cur.User.Name != "Ana" || cur.User.ID != "u1" {
		t.Errorf("unexpected current record %+v", cur)
	}
}

func TestLoginWriteFailureLeavesLoggedOut(t *testing.T) {
	st := newFaultyStore()
	st.failWrite = true
	m := NewManager(st)

	_, err := m.Login(context.Background(), Identity{Email: "teste@iris.com"})
	if !errors.Is(err, ErrStorageUnavailable) {
		t.Errorf("expected ErrStorageUnavailable, got %v", err)
	}
	if m.IsAuthenticated() {
		t.Error("expected flag to remain false after failed write")
	}
	if _, ok := m.Current(); ok {
		t.Error("expected no current record")
	}
}

func TestLoginRejectsMissingEmail(t *testing.T) {
	m := NewManager(store.NewMemoryStore())

	_, err := m.Login(context.Background(), Identity{})
	if !errors.Is(err, ErrMalformedRecord) {
		t.Errorf("expected ErrMalformedRecord, got %v", err)
	}
	if m.IsAuthenticated() {
		t.Error("expected logged out")
	}
}

func TestLogoutDeletesThenUnpublishes(t *testing.T) {
	st := newFaultyStore()
	m := NewManager(st)
	m.Login(context.Background(), Identity{Email: "a@b.com"})

	flagDuringDelete := false
	st.onDelete = func() { flagDuringDelete = m.IsAuthenticated() }

	if err := m.Logout(context.Background()); err != nil {
		t.Fatalf("Logout() error: %v", err)
	}
	if !flagDuringDelete {
		t.Error("flag was cleared before the store delete completed")
	}
	if m.IsAuthenticated() {
		t.Error("expected logged out")
	}
	if _, ok, _ := st.Read(context.Background(), SessionKey); ok {
		t.Error("expected session key to be removed")
	}
	if m.AccessToken() != "" {
		t.Error("expected empty token after logout")
	}
}

func TestLogoutEmptyStoreIsIdempotent(t *testing.T) {
	m := NewManager(store.NewMemoryStore())

	if err := m.Logout(context.Background()); err != nil {
		t.Errorf("expected logout on empty store to succeed, got %v", err)
	}
	if m.IsAuthenticated() {
		t.Error("expected logged out")
	}
}

func TestLogoutDeleteFailureKeepsSession(t *testing.T) {
	st := newFaultyStore()
	m := NewManager(st)
	m.Login(context.Background(), Identity{Email: "a@b.com"})
	st.failDelete = true

	err := m.Logout(context.Background())
	if !errors.Is(err, ErrStorageUnavailable) {
		t.Errorf("expected ErrStorageUnavailable, got %v", err)
	}
	if !m.IsAuthenticated() {
		t.Error("expected user to stay logged in after failed delete")
	}
}

func TestRestore(t *testing.T) {
	m := NewManager(store.NewMemoryStore())
	m.Restore(Resolution{HasSession: true, Record: &Record{Token: "t1", User: User{Email: "a@b.com"}}})

	if !m.IsAuthenticated() {
		t.Error("expected restored session to be authenticated")
	}
	if m.AccessToken() != "t1" {
		t.Errorf("expected t1, got %s", m.AccessToken())
	}

	m.Restore(Resolution{})
	if m.IsAuthenticated() {
		t.Error("expected empty resolution to log out in memory")
	}
}

func TestOnChange(t *testing.T) {
	m := NewManager(store.NewMemoryStore())
	var seen []bool
	m.OnChange(func(authenticated bool) { seen = append(seen, authenticated) })

	m.Login(context.Background(), Identity{Email: "a@b.com"})
	m.Logout(context.Background())

	if len(seen) != 2 || !seen[0] || seen[1] {
		t.Errorf("expected [true false], got %v", seen)
	}
}

func TestOnChangeNotCalledOnFailure(t *testing.T) {
	st := newFaultyStore()
	st.failWrite = true
	m := NewManager(st)
	called := false
	m.OnChange(func(bool) { called = true })

	m.Login(context.Background(), Identity{Email: "a@b.com"})
	if called {
		t.Error("expected no change notification after failed login")
	}
}

func TestStartupThenLoginScenario(t *testing.T) {
	st := store.NewMemoryStore()
	res := NewResolver(st).Resolve(context.Background())
	if res.HasSession {
		t.Fatal("expected empty store to resolve logged out")
	}

	m := NewManager(st)
	m.Restore(res)
	if _, err := m.Login(context.Background(), Identity{Email: "teste@iris.com"}); err != nil {
		t.Fatal(err)
	}

	raw, _, _ := st.Read(context.Background(), SessionKey)
	rec, err := DecodeRecord(raw)
	if err != nil {
		t.Fatal(err)
	}
	if rec.User.Email != "teste@iris.com" {
		t.Errorf("expected teste@iris.com, got %s", rec.User.Email)
	}
	if !m.IsAuthenticated() {
		t.Error("expected authenticated")
	}

	// A fresh process sees the session
	if !NewResolver(st).Resolve(context.Background()).HasSession {
		t.Error("expected next startup to find the session")
	}
}

func TestDisplayName(t *testing.T) {
	if got := (User{Email: "a@b.com"}).DisplayName(); got != "a@b.com" {
		t.Errorf("expected email fallback, got %s", got)
	}
	if got := (User{Email: "a@b.com", Name: "Ana"}).DisplayName(); got != "Ana" {
		t.Errorf("expected name, got %s", got)
	}
}
