package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
)

type Code string

const (
	CodeValidation   Code = "VALIDATION_ERROR"
	CodeUnauthorized Code = "UNAUTHORIZED"
	CodeForbidden    Code = "FORBIDDEN"
	CodeNotFound     Code = "NOT_FOUND"
	CodeConflict     Code = "CONFLICT"
	CodeIdempotency  Code = "IDEMPOTENCY_KEY_REUSED"
	CodeRateLimit    Code = "RATE_LIMIT_EXCEEDED"
	CodeInternal     Code = "INTERNAL_ERROR"
	CodeDependency   Code = "DEPENDENCY_ERROR"
)

// ReasonKey names the detail entry carrying a machine readable failure reason.
const ReasonKey = "reason"

const (
	ReasonMissingFields      = "missing_fields"
	ReasonInvalidDate        = "invalid_date"
	ReasonPastDate           = "past_date"
	ReasonSchedulingConflict = "scheduling_conflict"
	ReasonInvalidRole        = "invalid_role"
	ReasonInvalidStatus      = "invalid_status"
	ReasonInvalidTransition  = "invalid_transition"
)

// Metadata describes how a code surfaces over HTTP. Codes that do not expose
// their message answer with PublicMessage instead.
type Metadata struct {
	HTTPStatus     int
	Retryable      bool
	PublicMessage  string
	DetailsAllowed bool
	ExposeMessage  bool
}

// Scheduling conflicts are reported as 400, not 409; only idempotency key
// misuse uses 409.
var metadataByCode = map[Code]Metadata{
	CodeValidation:   {http.StatusBadRequest, false, "validation failed", true, true},
	CodeUnauthorized: {http.StatusUnauthorized, false, "authentication required", false, true},
	CodeForbidden:    {http.StatusForbidden, false, "access denied", false, true},
	CodeNotFound:     {http.StatusNotFound, false, "resource not found", false, true},
	CodeConflict:     {http.StatusBadRequest, false, "conflict detected", true, true},
	CodeIdempotency:  {http.StatusConflict, false, "idempotency key reused", true, true},
	CodeRateLimit:    {http.StatusTooManyRequests, false, "rate limit exceeded", false, true},
	CodeInternal:     {http.StatusInternalServerError, true, "internal server error", false, false},
	CodeDependency:   {http.StatusServiceUnavailable, true, "dependency unavailable", true, false},
}

func MetadataFor(code Code) Metadata {
	if meta, ok := metadataByCode[code]; ok {
		return meta
	}
	return metadataByCode[CodeInternal]
}

// Error is the typed error carried from services to the HTTP layer.
type Error struct {
	code    Code
	message string
	details any
	cause   error
}

func New(code Code, message string) *Error {
	return &Error{code: code, message: message}
}

func Wrap(code Code, err error, message string) *Error {
	if err == nil {
		return New(code, message)
	}
	return &Error{code: code, message: message, cause: err}
}

func (e *Error) Code() Code {
	if e == nil {
		return CodeInternal
	}
	return e.code
}

func (e *Error) Message() string {
	if e == nil {
		return ""
	}
	return e.message
}

func (e *Error) Details() any {
	if e == nil {
		return nil
	}
	return e.details
}

// Reason returns the machine readable reason attached through WithReason, or
// an empty string when none was set.
func (e *Error) Reason() string {
	if e == nil {
		return ""
	}
	if m, ok := e.details.(map[string]any); ok {
		if r, ok := m[ReasonKey].(string); ok {
			return r
		}
	}
	return ""
}

// WithReason merges a reason entry into map details, creating the map when
// details are unset.
func (e *Error) WithReason(reason string) *Error {
	if e == nil {
		return nil
	}
	m, ok := e.details.(map[string]any)
	if !ok || m == nil {
		m = map[string]any{}
		if e.details != nil {
			m["info"] = e.details
		}
	}
	m[ReasonKey] = reason
	e.details = m
	return e
}

func (e *Error) WithDetails(details any) *Error {
	if e == nil {
		return nil
	}
	e.details = details
	return e
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.code, e.message)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

// CodeOf returns the code of the first *Error in err's chain. Untyped
// errors report CodeInternal and nil reports an empty code.
func CodeOf(err error) Code {
	if err == nil {
		return ""
	}
	if typed := As(err); typed != nil {
		return typed.code
	}
	return CodeInternal
}

func As(err error) *Error {
	if err == nil {
		return nil
	}
	var typed *Error
	if stdErrors.As(err, &typed) {
		return typed
	}
	return nil
}
