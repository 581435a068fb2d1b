// Package auth is the credential store: usernames mapped to bcrypt hashes,
// nothing else. Session handling lives in the HTTP layer.
package auth

import (
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"hondana/internal/models"
	"hondana/internal/store"
)

var (
	// ErrDuplicateUser means the exact username is already registered.
	ErrDuplicateUser = errors.New("username already taken")
	// ErrInvalidCredentials covers both unknown user and wrong password,
	// so login failures never reveal whether an account exists.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrReservedName rejects usernames containing the thread-key separator.
	ErrReservedName = errors.New("username contains reserved characters")
)

// Credentials reads and writes the users collection.
type Credentials struct {
	store store.Store
}

func New(st store.Store) *Credentials {
	return &Credentials{store: st}
}

func (c *Credentials) load() (map[string]string, error) {
	users := map[string]string{}
	if err := c.store.Load(store.Users, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// Register stores a new username with the bcrypt hash of its password.
// Uniqueness is exact-match, case-sensitive; no normalization.
func (c *Credentials) Register(username, password string) error {
	if strings.Contains(username, models.ThreadKeySep) {
		return ErrReservedName
	}
	users, err := c.load()
	if err != nil {
		return err
	}
	if _, ok := users[username]; ok {
		return ErrDuplicateUser
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	users[username] = string(hash)
	return c.store.Save(store.Users, users)
}

// Authenticate succeeds only when the username exists and the password
// matches its stored hash; every failure is the same generic error.
func (c *Credentials) Authenticate(username, password string) error {
	users, err := c.load()
	if err != nil {
		return err
	}
	hash, ok := users[username]
	if !ok {
		return ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return ErrInvalidCredentials
	}
	return nil
}
