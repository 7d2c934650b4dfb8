package validator

import (
	"errors"
	"testing"
)

type sample struct {
	Email     string `validate:"required,email"`
	FirstName string `validate:"required,max=100,personname"`
	OTP       string `validate:"required,otpcode"`
}

func TestV10Validator_Validate(t *testing.T) {
	v, err := NewV10Validator()
	if err != nil {
		t.Fatalf("NewV10Validator() error = %v", err)
	}

	tests := []struct {
		name       string
		in         sample
		wantFields []string
	}{
		{name: "valid", in: sample{Email: "ana@example.com", FirstName: "Ana María", OTP: "012345"}},
		{name: "missing all", in: sample{}, wantFields: []string{"email", "firstName", "otp"}},
		{name: "short code", in: sample{Email: "ana@example.com", FirstName: "Ana", OTP: "12345"}, wantFields: []string{"otp"}},
		{name: "letters in code", in: sample{Email: "ana@example.com", FirstName: "Ana", OTP: "12a456"}, wantFields: []string{"otp"}},
		{name: "digits in name", in: sample{Email: "ana@example.com", FirstName: "Ana9", OTP: "123456"}, wantFields: []string{"firstName"}},
		{name: "bad email", in: sample{Email: "nope", FirstName: "Ana", OTP: "123456"}, wantFields: []string{"email"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Act
			err := v.Validate(tt.in)

			// Assert
			if len(tt.wantFields) == 0 {
				if err != nil {
					t.Fatalf("Validate() error = %v, want nil", err)
				}
				return
			}

			var verr V10ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Validate() error = %v, want V10ValidationError", err)
			}
			if len(verr) != len(tt.wantFields) {
				t.Fatalf("fields = %v, want %v", verr, tt.wantFields)
			}
			for _, f := range tt.wantFields {
				if verr[f] == "" {
					t.Fatalf("missing message for %q in %v", f, verr)
				}
			}
		})
	}
}
