// Package auth persists the access token issued at login and derives the
// current user's identity from its claims.
package auth

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// User is the identity carried in the token's claims.
type User struct {
	ID       string
	Username string
	Email    string
}

var (
	ErrNotLoggedIn  = errors.New("not logged in")
	ErrTokenExpired = errors.New("access token expired; log in again")
)

// DefaultPath returns the standard token location for this user.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locating config dir: %w", err)
	}
	return filepath.Join(dir, "flagmatch", "token"), nil
}

// Store reads and writes the token file.
type Store struct {
	path string
}

// NewStore uses path, or the default location when path is empty.
func NewStore(path string) (*Store, error) {
	if path == "" {
		var err error
		path, err = DefaultPath()
		if err != nil {
			return nil, err
		}
	}
	return &Store{path: path}, nil
}

// Save writes the token, creating parent directories as needed. The file is
// readable only by the current user.
func (s *Store) Save(token string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("creating token dir: %w", err)
	}
	if err := os.WriteFile(s.path, []byte(token+"\n"), 0o600); err != nil {
		return fmt.Errorf("writing token: %w", err)
	}
	return nil
}

// Token returns the stored token, if any.
func (s *Store) Token() (string, bool) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return "", false
	}
	token := strings.TrimSpace(string(raw))
	return token, token != ""
}

// Clear removes the stored token. Clearing an absent token is not an error.
func (s *Store) Clear() error {
	err := os.Remove(s.path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing token: %w", err)
	}
	return nil
}

// CurrentUser parses the stored token's claims.
func (s *Store) CurrentUser() (*User, error) {
	token, ok := s.Token()
	if !ok {
		return nil, ErrNotLoggedIn
	}
	return CurrentUser(token)
}

// CurrentUser extracts the user from a token's claims. The signature is not
// checked: the client holds no server key, and the server re-validates the
// token on every connection anyway. Expired tokens are rejected so the user
// is sent back to login instead of being bounced by the server.
func CurrentUser(token string) (*User, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("parsing access token: %w", err)
	}

	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		if exp.Before(time.Now()) {
			return nil, ErrTokenExpired
		}
	}

	user := &User{
		ID:       stringClaim(claims, "sub"),
		Username: stringClaim(claims, "username"),
		Email:    stringClaim(claims, "email"),
	}
	if user.ID == "" && user.Username == "" {
		return nil, errors.New("access token carries no identity claims")
	}
	return user, nil
}

func stringClaim(claims jwt.MapClaims, key string) string {
	if v, ok := claims[key].(string); ok {
		return v
	}
	return ""
}
