package inbound

import "github.com/shandysiswandi/skillport/internal/pkg/router"

type GenerateRequest struct {
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type GenerateResponse struct {
	router.Envelope
	ExpiresIn int `json:"expiresIn" example:"600"`
}

type VerifyRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

type UserData struct {
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type VerifyResponse struct {
	router.Envelope
	UserData          UserData `json:"userData"`
	VerificationToken string   `json:"verificationToken"`
}

type ResendRequest struct {
	Email string `json:"email"`
}

type ResendResponse struct {
	router.Envelope
	ExpiresIn int `json:"expiresIn" example:"600"`
}

type HealthResponse struct {
	router.Envelope
	Timestamp string `json:"timestamp" example:"2025-01-02T03:04:05Z"`
}
