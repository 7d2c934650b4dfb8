package goerror

import (
	"errors"
	"fmt"
	"maps"
	"net/http"
)

var (
	// ErrNotFound is returned by repositories when the requested record is absent.
	ErrNotFound = errors.New("resource not found")

	// ErrConflict is returned by repositories when a conditional write lost a race.
	ErrConflict = errors.New("resource conflict")
)

// Type classifies errors into high-level buckets.
type Type int

const (
	TypeServer Type = iota
	TypeBusiness
	TypeValidation
)

func (t Type) String() string {
	switch t {
	case TypeValidation:
		return "ERROR_TYPE_VALIDATION"
	case TypeBusiness:
		return "ERROR_TYPE_BUSINESS"
	case TypeServer:
		return "ERROR_TYPE_SERVER"
	default:
		return "ERROR_TYPE_UNKNOWN"
	}
}

// Code is a stable identifier mapped to an HTTP status code.
type Code int

const (
	CodeInternal Code = iota
	CodeInvalidFormat
	CodeInvalidInput
	CodeNotFound
	CodeConflict
	CodeTooManyRequest
	CodeUnauthorized
	CodeForbidden
	CodeTimeout
	// CodeGone marks a resource that existed but is no longer usable.
	CodeGone
	// CodeUpstream marks a failure of a downstream provider (mail, broker).
	CodeUpstream
	// CodeUnavailable marks a dependency that is down.
	CodeUnavailable
)

var codeNames = map[Code]string{
	CodeInternal:       "ERROR_CODE_INTERNAL",
	CodeInvalidFormat:  "ERROR_CODE_INVALID_FORMAT",
	CodeInvalidInput:   "ERROR_CODE_INVALID_INPUT",
	CodeNotFound:       "ERROR_CODE_NOT_FOUND",
	CodeConflict:       "ERROR_CODE_CONFLICT",
	CodeTooManyRequest: "ERROR_CODE_TOO_MANY_REQUESTS",
	CodeUnauthorized:   "ERROR_CODE_UNAUTHORIZED",
	CodeForbidden:      "ERROR_CODE_FORBIDDEN",
	CodeTimeout:        "ERROR_CODE_TIMEOUT",
	CodeGone:           "ERROR_CODE_GONE",
	CodeUpstream:       "ERROR_CODE_UPSTREAM",
	CodeUnavailable:    "ERROR_CODE_UNAVAILABLE",
}

var codeStatus = map[Code]int{
	CodeInternal:       http.StatusInternalServerError,
	CodeInvalidFormat:  http.StatusBadRequest,
	CodeInvalidInput:   http.StatusUnprocessableEntity,
	CodeNotFound:       http.StatusNotFound,
	CodeConflict:       http.StatusConflict,
	CodeTooManyRequest: http.StatusTooManyRequests,
	CodeUnauthorized:   http.StatusUnauthorized,
	CodeForbidden:      http.StatusForbidden,
	CodeTimeout:        http.StatusRequestTimeout,
	CodeGone:           http.StatusGone,
	CodeUpstream:       http.StatusBadGateway,
	CodeUnavailable:    http.StatusServiceUnavailable,
}

func (c Code) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return "ERROR_CODE_INTERNAL"
}

// Error is the structured error returned by use cases.
//
// It wraps an optional cause, carries the message shown to clients, and may
// hold validation fields and extra response attributes (meta) such as the
// remaining attempt count.
type Error struct {
	err     error
	msg     string
	errType Type
	code    Code
	fields  map[string]string
	meta    map[string]any
}

func (e *Error) Error() string {
	if e.err != nil {
		return e.err.Error()
	}
	if e.msg != "" {
		return e.msg
	}
	switch e.errType {
	case TypeValidation:
		return "Validation violation"
	case TypeBusiness:
		return "Logical business not meet with requirement"
	default:
		return "Internal error"
	}
}

// String returns a verbose representation for logs.
func (e *Error) String() string {
	return fmt.Sprintf("Error Type: %s, Code: %s, Message: %s, Underlying Error: %v",
		e.errType, e.code, e.msg, e.err)
}

// Msg returns the user-facing message.
func (e *Error) Msg() string { return e.msg }

// Type returns the error bucket.
func (e *Error) Type() Type { return e.errType }

// Code returns the stable error code.
func (e *Error) Code() Code { return e.code }

// Fields returns validation errors keyed by field name.
func (e *Error) Fields() map[string]string { return e.fields }

// Meta returns extra attributes merged into the error response body.
func (e *Error) Meta() map[string]any { return e.meta }

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error { return e.err }

// StatusCode maps the error code to an HTTP status code.
func (e *Error) StatusCode() int {
	if status, ok := codeStatus[e.code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// WithMeta returns a copy of e carrying key=value in its meta map.
func (e *Error) WithMeta(key string, value any) *Error {
	cp := *e
	cp.meta = make(map[string]any, len(e.meta)+1)
	maps.Copy(cp.meta, e.meta)
	cp.meta[key] = value
	return &cp
}

// WithMsg returns a copy of e with a different user-facing message.
func (e *Error) WithMsg(msg string) *Error {
	cp := *e
	cp.msg = msg
	return &cp
}

func newError(err error, msg string, et Type, code Code) *Error {
	return &Error{err: err, msg: msg, errType: et, code: code}
}

// NewServer creates a server-type error wrapping err.
func NewServer(err error) error {
	return newError(err, "Internal server error", TypeServer, CodeInternal)
}

// NewBusiness creates a business-type error with the specified message and code.
func NewBusiness(msg string, code Code) error {
	return newError(nil, msg, TypeBusiness, code)
}

// NewBusinessCause is NewBusiness with a sentinel cause, so callers can match
// the outcome with errors.Is.
func NewBusinessCause(cause error, msg string, code Code) *Error {
	return newError(cause, msg, TypeBusiness, code)
}

// NewInvalidInput creates a validation error. A non-nil err (usually a
// validator result) is wrapped; otherwise kv pairs become the field map.
func NewInvalidInput(err error, kv ...string) error {
	if err != nil {
		return newError(err, "Validation error", TypeValidation, CodeInvalidInput)
	}

	if len(kv)%2 != 0 {
		return newError(nil, "Invalid request body", TypeValidation, CodeInvalidFormat)
	}

	e := newError(nil, "Validation error", TypeValidation, CodeInvalidInput)
	e.fields = make(map[string]string, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		e.fields[kv[i]] = kv[i+1]
	}

	return e
}

// NewInvalidInputMsg is NewInvalidInput for a validator result with a
// message tailored to the operation.
func NewInvalidInputMsg(err error, msg string) error {
	return newError(err, msg, TypeValidation, CodeInvalidInput)
}

// NewInvalidFormat creates a validation error for an unreadable request body.
func NewInvalidFormat(msgs ...string) error {
	if len(msgs) == 0 {
		return newError(nil, "Invalid request body", TypeValidation, CodeInvalidFormat)
	}
	return newError(nil, msgs[0], TypeValidation, CodeInvalidFormat)
}
