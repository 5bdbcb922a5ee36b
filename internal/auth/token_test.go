package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestTokenRoundTrip(t *testing.T) {
	svc := NewTokenService([]byte("test-secret"), time.Hour)
	userID := uuid.New()

	token, expiresAt, err := svc.Issue(userID, "ahmed")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if token == "" {
		t.Fatal("Issue returned empty token")
	}
	if remaining := time.Until(expiresAt); remaining < 59*time.Minute || remaining > time.Hour {
		t.Fatalf("unexpected expiry, %v remaining", remaining)
	}

	claims, err := svc.Verify(token)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if claims.Subject != userID.String() {
		t.Errorf("subject = %q, want %q", claims.Subject, userID.String())
	}
	if claims.Username != "ahmed" {
		t.Errorf("username = %q, want %q", claims.Username, "ahmed")
	}
}

func TestTokenExpired(t *testing.T) {
	svc := NewTokenService([]byte("test-secret"), time.Hour)

	token, _, err := svc.IssueWithTTL(uuid.New(), "ahmed", -time.Minute)
	if err != nil {
		t.Fatalf("IssueWithTTL failed: %v", err)
	}

	if _, err := svc.Verify(token); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("Verify = %v, want ErrTokenExpired", err)
	}
}

func TestTokenTampered(t *testing.T) {
	svc := NewTokenService([]byte("test-secret"), time.Hour)

	token, _, err := svc.Issue(uuid.New(), "ahmed")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	// Flip one byte in the payload segment
	raw := []byte(token)
	mid := len(raw) / 2
	if raw[mid] == 'A' {
		raw[mid] = 'B'
	} else {
		raw[mid] = 'A'
	}

	if _, err := svc.Verify(string(raw)); !errors.Is(err, ErrTokenMalformed) {
		t.Fatalf("Verify = %v, want ErrTokenMalformed", err)
	}
}

func TestTokenWrongSecret(t *testing.T) {
	issuer := NewTokenService([]byte("secret-a"), time.Hour)
	verifier := NewTokenService([]byte("secret-b"), time.Hour)

	token, _, err := issuer.Issue(uuid.New(), "ahmed")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	if _, err := verifier.Verify(token); !errors.Is(err, ErrTokenMalformed) {
		t.Fatalf("Verify = %v, want ErrTokenMalformed", err)
	}
}

func TestTokenEmptyString(t *testing.T) {
	svc := NewTokenService([]byte("test-secret"), 0)
	if _, err := svc.Verify(""); !errors.Is(err, ErrTokenMalformed) {
		t.Fatalf("Verify = %v, want ErrTokenMalformed", err)
	}
}

func TestTokenGarbage(t *testing.T) {
	svc := NewTokenService([]byte("test-secret"), 0)
	if _, err := svc.Verify("not.a.token"); !errors.Is(err, ErrTokenMalformed) {
		t.Fatalf("Verify = %v, want ErrTokenMalformed", err)
	}
}
