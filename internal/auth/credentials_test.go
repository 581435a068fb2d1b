package auth

import (
	"errors"
	"testing"

	"hondana/internal/store"
)

func newCredentials(t *testing.T) *Credentials {
	t.Helper()
	st, err := store.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}
	return New(st)
}

func TestRegisterAndAuthenticate(t *testing.T) {
	c := newCredentials(t)
	if err := c.Register("alice", "s3cret"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if err := c.Authenticate("alice", "s3cret"); err != nil {
		t.Errorf("Authenticate failed for correct password: %v", err)
	}
}

func TestRegisterDuplicate(t *testing.T) {
	c := newCredentials(t)
	if err := c.Register("alice", "s3cret"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if err := c.Register("alice", "other"); !errors.Is(err, ErrDuplicateUser) {
		t.Errorf("Expected ErrDuplicateUser, got %v", err)
	}
	// Case matters: no normalization on the uniqueness check.
	if err := c.Register("Alice", "other"); err != nil {
		t.Errorf("Expected distinct case-variant username to register, got %v", err)
	}
}

func TestRegisterReservedName(t *testing.T) {
	c := newCredentials(t)
	if err := c.Register("a::b", "s3cret"); !errors.Is(err, ErrReservedName) {
		t.Errorf("Expected ErrReservedName, got %v", err)
	}
}

func TestAuthenticateGenericFailure(t *testing.T) {
	c := newCredentials(t)
	if err := c.Register("alice", "s3cret"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	// Wrong password and unknown user fail with the same error, so a
	// caller cannot probe for account existence.
	wrongPass := c.Authenticate("alice", "nope")
	unknown := c.Authenticate("mallory", "nope")
	if !errors.Is(wrongPass, ErrInvalidCredentials) {
		t.Errorf("Expected ErrInvalidCredentials for wrong password, got %v", wrongPass)
	}
	if !errors.Is(unknown, ErrInvalidCredentials) {
		t.Errorf("Expected ErrInvalidCredentials for unknown user, got %v", unknown)
	}
}

func TestStoresOnlyHashes(t *testing.T) {
	st, err := store.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}
	c := New(st)
	if err := c.Register("alice", "s3cret"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	users := map[string]string{}
	if err := st.Load(store.Users, &users); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if users["alice"] == "s3cret" || users["alice"] == "" {
		t.Errorf("Expected an opaque hash, got %q", users["alice"])
	}
}
