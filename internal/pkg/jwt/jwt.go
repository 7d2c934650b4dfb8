package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// PurposeEmailVerification is the only purpose this service signs.
const PurposeEmailVerification = "email_verification"

var (
	ErrInvalidSigningMethod = errors.New("invalid JWT signing method")
	ErrSigningKeyTooShort   = errors.New("HS512 signing key must be at least 64 bytes (512 bits)")
	ErrTokenExpired         = errors.New("JWT token has expired")
	ErrInvalidToken         = errors.New("invalid token")
	ErrInvalidPurpose       = errors.New("token purpose mismatch")
)

// JWT signs and verifies verification tokens.
type JWT interface {
	Generate(subject Subject) (string, error)
	Verify(tokenStr string) (Claims, error)
}

// Subject is the verified mailbox owner.
type Subject struct {
	Email     string
	FirstName string
	LastName  string
}

type clocker interface {
	Now() time.Time
}

type generator interface {
	Generate() string
}

// Config defines the inputs for building a JWT implementation.
type Config struct {
	Secret    []byte
	Issuer    string
	Audiences []string
	TTL       time.Duration
	Clock     clocker
	UUID      generator
}

// Claims is the verification token payload.
type Claims struct {
	jwt.RegisteredClaims
	GivenName  string `json:"given_name"`
	FamilyName string `json:"family_name,omitempty"`
	Purpose    string `json:"purpose"`
}
