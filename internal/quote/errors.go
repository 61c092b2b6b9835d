package quote

import (
	"errors"
	"fmt"
)

// ErrorKind enumerates every way a fetch attempt can fail. The set is
// closed: the presentation layer switches on it to choose wording.
type ErrorKind string

const (
	KindTimeout          ErrorKind = "timeout"
	KindConnection       ErrorKind = "connection"
	KindHTTP             ErrorKind = "http"
	KindMalformedPayload ErrorKind = "malformed_payload"
	KindAssetNotFound    ErrorKind = "asset_not_found"
	KindMissingField     ErrorKind = "missing_field"
	KindImplausibleValue ErrorKind = "implausible_value"
	KindOtherTransport   ErrorKind = "other_transport"
)

// FetchError is the uniform failure result of a fetch-validate attempt.
// Transport and validation failures share this type; Kind preserves the
// distinction. StatusCode is set for KindHTTP, Field for KindMissingField.
type FetchError struct {
	Kind       ErrorKind
	StatusCode int
	Field      string
	cause      error
}

func (e *FetchError) Error() string {
	switch e.Kind {
	case KindHTTP:
		return fmt.Sprintf("fetch: http status %d", e.StatusCode)
	case KindMissingField:
		return fmt.Sprintf("fetch: missing field %q", e.Field)
	default:
		if e.cause != nil {
			return fmt.Sprintf("fetch: %s: %v", e.Kind, e.cause)
		}
		return fmt.Sprintf("fetch: %s", e.Kind)
	}
}

func (e *FetchError) Unwrap() error { return e.cause }

func NewTimeoutError(cause error) *FetchError {
	return &FetchError{Kind: KindTimeout, cause: cause}
}

func NewConnectionError(cause error) *FetchError {
	return &FetchError{Kind: KindConnection, cause: cause}
}

func NewHTTPError(statusCode int) *FetchError {
	return &FetchError{Kind: KindHTTP, StatusCode: statusCode}
}

func NewMalformedPayloadError(cause error) *FetchError {
	return &FetchError{Kind: KindMalformedPayload, cause: cause}
}

func NewAssetNotFoundError() *FetchError {
	return &FetchError{Kind: KindAssetNotFound}
}

func NewMissingFieldError(field string) *FetchError {
	return &FetchError{Kind: KindMissingField, Field: field}
}

func NewImplausibleValueError(cause error) *FetchError {
	return &FetchError{Kind: KindImplausibleValue, cause: cause}
}

func NewOtherTransportError(cause error) *FetchError {
	return &FetchError{Kind: KindOtherTransport, cause: cause}
}

// KindOf extracts the ErrorKind from err, unwrapping as needed.
// ok is false when err carries no FetchError.
func KindOf(err error) (kind ErrorKind, ok bool) {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Kind, true
	}
	return "", false
}
