package auth

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}
	return token
}

func testStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "nested", "token"))
	if err != nil {
		t.Fatalf("creating store: %v", err)
	}
	return store
}

func TestStoreRoundTrip(t *testing.T) {
	store := testStore(t)

	if _, ok := store.Token(); ok {
		t.Fatal("fresh store should hold no token")
	}

	if err := store.Save("abc.def.ghi"); err != nil {
		t.Fatalf("save: %v", err)
	}
	token, ok := store.Token()
	if !ok || token != "abc.def.ghi" {
		t.Fatalf("token = %q, %v", token, ok)
	}

	if err := store.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, ok := store.Token(); ok {
		t.Fatal("token should be gone after clear")
	}
	if err := store.Clear(); err != nil {
		t.Fatalf("clearing twice: %v", err)
	}
}

func TestCurrentUserFromClaims(t *testing.T) {
	token := signedToken(t, jwt.MapClaims{
		"sub":      "u42",
		"username": "alice",
		"email":    "alice@example.com",
		"exp":      time.Now().Add(time.Hour).Unix(),
	})

	user, err := CurrentUser(token)
	if err != nil {
		t.Fatalf("CurrentUser: %v", err)
	}
	if user.ID != "u42" || user.Username != "alice" || user.Email != "alice@example.com" {
		t.Fatalf("user = %+v", user)
	}
}

func TestCurrentUserRejectsExpiredToken(t *testing.T) {
	token := signedToken(t, jwt.MapClaims{
		"sub":      "u42",
		"username": "alice",
		"exp":      time.Now().Add(-time.Minute).Unix(),
	})

	if _, err := CurrentUser(token); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestCurrentUserRejectsGarbage(t *testing.T) {
	if _, err := CurrentUser("not-a-token"); err == nil {
		t.Fatal("expected an error for a malformed token")
	}
}

func TestCurrentUserNeedsIdentity(t *testing.T) {
	token := signedToken(t, jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	if _, err := CurrentUser(token); err == nil {
		t.Fatal("expected an error for a token without identity claims")
	}
}

func TestStoreCurrentUser(t *testing.T) {
	store := testStore(t)

	if _, err := store.CurrentUser(); !errors.Is(err, ErrNotLoggedIn) {
		t.Fatalf("expected ErrNotLoggedIn, got %v", err)
	}

	token := signedToken(t, jwt.MapClaims{
		"sub":      "u7",
		"username": "bob",
		"exp":      time.Now().Add(time.Hour).Unix(),
	})
	if err := store.Save(token); err != nil {
		t.Fatalf("save: %v", err)
	}

	user, err := store.CurrentUser()
	if err != nil {
		t.Fatalf("CurrentUser: %v", err)
	}
	if user.Username != "bob" {
		t.Fatalf("user = %+v", user)
	}
}
