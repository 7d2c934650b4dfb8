package entity

import (
	"strings"
	"time"
)

// OTPRecord is the live code issued to one email address.
type OTPRecord struct {
	Email     string
	Code      string
	FirstName string
	LastName  string
	Attempts  int
	IssuedAt  time.Time
	ExpiresAt time.Time
	// Version changes on every write and guards compare-and-swap updates.
	Version int64
}

func (r OTPRecord) IsExpired(now time.Time) bool {
	return now.After(r.ExpiresAt)
}

func (r OTPRecord) IsExhausted(maxAttempts int) bool {
	return r.Attempts >= maxAttempts
}

// NormalizeEmail is the key form of an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
