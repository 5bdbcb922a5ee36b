package auth

import (
	"strings"
	"testing"
)

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  string // substring of the reported rule, empty means valid
	}{
		{"valid", "Str0ng!pass", ""},
		{"too short", "S1!a", "at least 8 characters"},
		{"exactly seven", "Abc12!x", "at least 8 characters"},
		{"no uppercase", "weak1!pass", "uppercase"},
		{"no lowercase", "WEAK1!PASS", "lowercase"},
		{"no digit", "Weakness!", "digit"},
		{"no symbol", "Weakness1", "special character"},
		{"all rules met minimal", "Aa1!aaaa", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("ValidatePassword(%q) = %v, want nil", tt.password, err)
				}
				return
			}
			if err == nil {
				t.Fatalf("ValidatePassword(%q) = nil, want error containing %q", tt.password, tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("ValidatePassword(%q) = %q, want substring %q", tt.password, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("Str0ng!pass")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if hash == "Str0ng!pass" {
		t.Fatal("hash equals plaintext")
	}

	if !CheckPassword(hash, "Str0ng!pass") {
		t.Error("CheckPassword rejected the correct password")
	}
	if CheckPassword(hash, "Wr0ng!pass") {
		t.Error("CheckPassword accepted a wrong password")
	}
	if CheckPassword("not-a-bcrypt-hash", "Str0ng!pass") {
		t.Error("CheckPassword accepted a malformed hash")
	}
}

func TestHashPasswordSalted(t *testing.T) {
	h1, err := HashPassword("Str0ng!pass")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	h2, err := HashPassword("Str0ng!pass")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if h1 == h2 {
		t.Error("two hashes of the same password are identical, salting is broken")
	}
}
