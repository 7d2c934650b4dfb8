package inbound

import (
	"time"

	"github.com/shandysiswandi/skillport/internal/pkg/router"
	"github.com/shandysiswandi/skillport/internal/verification/usecase"
)

// HTTPEndpoint exposes the OTP verification flow over HTTP.
type HTTPEndpoint struct {
	uc uc
}

// Generate issues a code for an email address and mails it.
// @Summary Generate OTP
// @Description Issues a six digit code for the email, replacing any previous one, and sends it by email.
// @Tags Verification
// @Accept json
// @Produce json
// @Param request body GenerateRequest true "Generate payload"
// @Success 200 {object} GenerateResponse "OTP sent"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 429 {object} router.errorResponse "Requested too soon"
// @Failure 502 {object} router.errorResponse "Email delivery failed"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/otp/generate [post]
func (h *HTTPEndpoint) Generate(r *router.Request) (any, error) {
	var req GenerateRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.Generate(r.Context(), usecase.GenerateInput{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		return nil, err
	}

	return GenerateResponse{
		Envelope:  router.Envelope{Success: true, Message: "OTP sent successfully"},
		ExpiresIn: resp.ExpiresIn,
	}, nil
}

// Verify checks a code and returns the verified owner.
// @Summary Verify OTP
// @Description Verifies the code for the email. A code is single use; three wrong codes void it.
// @Tags Verification
// @Accept json
// @Produce json
// @Param request body VerifyRequest true "Verify payload"
// @Success 200 {object} VerifyResponse "Email verified"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 401 {object} router.errorResponse "Invalid code, carries attemptsLeft"
// @Failure 404 {object} router.errorResponse "No OTP for this email"
// @Failure 410 {object} router.errorResponse "OTP expired"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 429 {object} router.errorResponse "Attempts exhausted"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/otp/verify [post]
func (h *HTTPEndpoint) Verify(r *router.Request) (any, error) {
	var req VerifyRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.Verify(r.Context(), usecase.VerifyInput{
		Email: req.Email,
		OTP:   req.OTP,
	})
	if err != nil {
		return nil, err
	}

	return VerifyResponse{
		Envelope: router.Envelope{Success: true, Message: "Email verified successfully"},
		UserData: UserData{
			Email:     resp.Email,
			FirstName: resp.FirstName,
			LastName:  resp.LastName,
		},
		VerificationToken: resp.VerificationToken,
	}, nil
}

// Resend reissues the code of an existing OTP.
// @Summary Resend OTP
// @Description Replaces the code of the pending OTP, resets its attempts and expiry, and sends it again.
// @Tags Verification
// @Accept json
// @Produce json
// @Param request body ResendRequest true "Resend payload"
// @Success 200 {object} ResendResponse "OTP resent"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 404 {object} router.errorResponse "No OTP for this email"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 429 {object} router.errorResponse "Requested too soon"
// @Failure 502 {object} router.errorResponse "Email delivery failed"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/otp/resend [post]
func (h *HTTPEndpoint) Resend(r *router.Request) (any, error) {
	var req ResendRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.Resend(r.Context(), usecase.ResendInput{Email: req.Email})
	if err != nil {
		return nil, err
	}

	return ResendResponse{
		Envelope:  router.Envelope{Success: true, Message: "OTP resent successfully"},
		ExpiresIn: resp.ExpiresIn,
	}, nil
}

// Health reports whether the record store is reachable.
// @Summary Health check
// @Tags Health
// @Produce json
// @Success 200 {object} HealthResponse "Service is healthy"
// @Failure 503 {object} router.errorResponse "Store unreachable"
// @Router /health [get]
func (h *HTTPEndpoint) Health(r *router.Request) (any, error) {
	resp, err := h.uc.Health(r.Context())
	if err != nil {
		return nil, err
	}

	return HealthResponse{
		Envelope:  router.Envelope{Success: true, Message: "Service is healthy"},
		Timestamp: resp.Timestamp.UTC().Format(time.RFC3339),
	}, nil
}
