// Package validator provides a small validation abstraction for request and
// dependency structs.
//
// Use cases depend on the Validator interface; the go-playground/validator v10
// implementation lives here together with the OTP specific rules.
package validator

// Validator validates a struct using its `validate` tags.
type Validator interface {
	Validate(data any) error
}
