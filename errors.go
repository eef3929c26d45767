package payglocal

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for transport-level failures.
var (
	// ErrRequestTimeout is returned when an outbound call exceeds the
	// 90-second request deadline.
	ErrRequestTimeout = errors.New("payglocal: request deadline exceeded")

	// ErrEmptyResponse is returned when the gateway answers 2xx with an
	// empty body.
	ErrEmptyResponse = errors.New("payglocal: empty response body")
)

// ConfigError is returned when the client configuration is missing or
// inconsistent at construction time.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("payglocal: config %s %s", e.Field, e.Reason)
}

// KeyFormatError is returned when PEM key material cannot be decoded or
// parsed into an RSA key.
type KeyFormatError struct {
	Reason string
	Err    error
}

func (e *KeyFormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("payglocal: invalid key format: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("payglocal: invalid key format: %s", e.Reason)
}

func (e *KeyFormatError) Unwrap() error { return e.Err }

// CryptoError is returned when JWE encryption or JWS signing fails.
type CryptoError struct {
	Op  string // "jwe" or "jws"
	Err error
}

func (e *CryptoError) Error() string {
	return fmt.Sprintf("payglocal: %s token generation failed: %v", e.Op, e.Err)
}

func (e *CryptoError) Unwrap() error { return e.Err }

// Validation failure codes carried by ValidationError.
const (
	ValidationMissingField      = "missing_field"
	ValidationInvalidType       = "invalid_type"
	ValidationUnrecognizedField = "unrecognized_field"
	ValidationInvalidOperation  = "invalid_operation_type"
	ValidationInvalidValue      = "invalid_value"
)

// ValidationError is returned when a payload fails the pre-flight checks
// for an operation. No network call is attempted after a validation failure.
type ValidationError struct {
	// Code is one of the Validation* constants.
	Code string

	// Field is the dotted path of the offending field.
	Field string

	// Expected and Actual describe the mismatch for invalid_type and
	// invalid_value failures.
	Expected string
	Actual   string
}

func (e *ValidationError) Error() string {
	switch e.Code {
	case ValidationMissingField:
		return fmt.Sprintf("payglocal: validation: missing required field %q", e.Field)
	case ValidationInvalidType:
		return fmt.Sprintf("payglocal: validation: field %q has type %s, want %s", e.Field, e.Actual, e.Expected)
	case ValidationUnrecognizedField:
		return fmt.Sprintf("payglocal: validation: unrecognized field %q", e.Field)
	case ValidationInvalidOperation:
		return fmt.Sprintf("payglocal: validation: field %q has value %q, allowed: %s", e.Field, e.Actual, e.Expected)
	default:
		return fmt.Sprintf("payglocal: validation: field %q has invalid value %q, want %s", e.Field, e.Actual, e.Expected)
	}
}

// HTTPError is returned when the gateway responds with a non-2xx HTTP status.
type HTTPError struct {
	StatusCode int
	Status     string
	Body       []byte
	Headers    http.Header
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("payglocal: http error %d (%s): %s", e.StatusCode, e.Status, e.Body)
}
