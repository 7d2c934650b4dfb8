package entity

import "errors"

var (
	ErrOTPNotFound          = errors.New("otp not found")
	ErrOTPExpired           = errors.New("otp expired")
	ErrOTPAttemptsExhausted = errors.New("otp attempts exhausted")
	ErrOTPInvalidCode       = errors.New("otp invalid code")
	ErrOTPCooldown          = errors.New("otp requested too soon")
	ErrEmailDeliveryFailed  = errors.New("otp email delivery failed")
)

// Outcome labels the result of an OTP operation for metrics.
type Outcome string

const (
	OutcomeIssued            Outcome = "issued"
	OutcomeResent            Outcome = "resent"
	OutcomeVerified          Outcome = "verified"
	OutcomeInvalidCode       Outcome = "invalid_code"
	OutcomeExpired           Outcome = "expired"
	OutcomeAttemptsExhausted Outcome = "attempts_exhausted"
	OutcomeNotFound          Outcome = "not_found"
	OutcomeCooldown          Outcome = "cooldown"
	OutcomeDeliveryFailed    Outcome = "delivery_failed"
)
