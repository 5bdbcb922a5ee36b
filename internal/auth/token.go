package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultTokenTTL is the token lifetime used when no override is given.
const DefaultTokenTTL = 3600 * time.Second

// Claims is the signed claim set embedded in every issued token.
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies HS256-signed tokens. The signing secret is
// injected at construction; rotating it invalidates all outstanding tokens.
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenService builds a TokenService around the given secret. A zero ttl
// selects DefaultTokenTTL.
func NewTokenService(secret []byte, ttl time.Duration) *TokenService {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenService{secret: secret, ttl: ttl}
}

// Issue signs a token for the given user with the service's default TTL.
func (s *TokenService) Issue(userID uuid.UUID, username string) (string, time.Time, error) {
	return s.IssueWithTTL(userID, username, s.ttl)
}

// IssueWithTTL signs a token expiring at now + ttl.
func (s *TokenService) IssueWithTTL(userID uuid.UUID, username string, ttl time.Duration) (string, time.Time, error) {
	now := time.Now().UTC()
	expiresAt := now.Add(ttl)

	claims := Claims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Verify parses and validates a token string. It certifies only that the token
// was issued by this service and is unexpired; the caller must still check the
// referenced account's standing.
func (s *TokenService) Verify(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, ErrTokenMalformed
	}

	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenMalformed
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrTokenMalformed
	}
	if claims.Subject == "" || claims.ExpiresAt == nil {
		return nil, ErrTokenMalformed
	}
	if _, err := uuid.Parse(claims.Subject); err != nil {
		return nil, ErrTokenMalformed
	}
	return claims, nil
}
