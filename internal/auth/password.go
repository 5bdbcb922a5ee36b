package auth

import (
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

const passwordSymbols = `!@#$%^&*(),.?":{}|<>`

// HashPassword derives a one-way bcrypt hash; the plaintext is never stored.
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// CheckPassword compares a plaintext candidate against a stored hash. bcrypt's
// comparison is constant-time with respect to the hash contents.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// ValidatePassword enforces the construction-time strength policy. The first
// unmet rule is reported verbatim so the caller can surface it.
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return &ValidationError{Field: "password", Message: "must be at least 8 characters long"}
	}

	var hasUpper, hasLower, hasDigit, hasSymbol bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		case strings.ContainsRune(passwordSymbols, r):
			hasSymbol = true
		}
	}

	switch {
	case !hasUpper:
		return &ValidationError{Field: "password", Message: "must contain at least one uppercase letter"}
	case !hasLower:
		return &ValidationError{Field: "password", Message: "must contain at least one lowercase letter"}
	case !hasDigit:
		return &ValidationError{Field: "password", Message: "must contain at least one digit"}
	case !hasSymbol:
		return &ValidationError{Field: "password", Message: "must contain at least one special character"}
	}
	return nil
}
