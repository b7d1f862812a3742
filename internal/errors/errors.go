// Package errors defines the closed error taxonomy shared by search
// back-end adapters and the orchestrator. Every outcome the
// orchestrator produces is classified into one of these types; the
// public boundary never panics or returns an unclassified error.
package errors

import (
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ErrorType is the closed taxonomy of classifiable search-provider errors.
type ErrorType string

const (
	ErrorTypeInvalidInput       ErrorType = "INVALID_INPUT"
	ErrorTypeAuthentication     ErrorType = "AUTHENTICATION_ERROR"
	ErrorTypeRateLimit          ErrorType = "RATE_LIMIT"
	ErrorTypeCreditExhausted    ErrorType = "CREDIT_EXHAUSTED"
	ErrorTypeQuotaExceeded      ErrorType = "QUOTA_EXCEEDED"
	ErrorTypeProviderError      ErrorType = "PROVIDER_ERROR"
	ErrorTypeAPIError           ErrorType = "API_ERROR"
	ErrorTypeTimeout            ErrorType = "TIMEOUT"
	ErrorTypeInternal           ErrorType = "INTERNAL"
)

var statusCodes = map[ErrorType]int{
	ErrorTypeInvalidInput:    http.StatusBadRequest,
	ErrorTypeAuthentication:  http.StatusUnauthorized,
	ErrorTypeRateLimit:       http.StatusTooManyRequests,
	ErrorTypeCreditExhausted: http.StatusPaymentRequired,
	ErrorTypeQuotaExceeded:   http.StatusTooManyRequests,
	ErrorTypeProviderError:   http.StatusBadGateway,
	ErrorTypeAPIError:        http.StatusInternalServerError,
	ErrorTypeTimeout:         http.StatusGatewayTimeout,
	ErrorTypeInternal:        http.StatusInternalServerError,
}

var safeMessages = map[ErrorType]string{
	ErrorTypeAuthentication:  "Authentication with the provider failed",
	ErrorTypeRateLimit:       "The provider is rate-limited, try again later",
	ErrorTypeCreditExhausted: "The provider's usage credit is exhausted",
	ErrorTypeQuotaExceeded:   "The provider's quota has been exceeded",
	ErrorTypeProviderError:   "The provider encountered an internal error",
	ErrorTypeAPIError:        "An internal error occurred",
	ErrorTypeTimeout:         "The provider did not respond in time",
	ErrorTypeInternal:        "An internal error occurred",
}

// SearchError is a classified search-provider error. Provider is the
// name of the back-end that produced the error, set by adapters so the health manager and orchestrator always know who to
// blame without string-sniffing a wrapped error.
type SearchError struct {
	Type       ErrorType
	Message    string
	Provider   string
	Details    string
	StatusCode int
	Cause      error

	// ResetAt is the server-provided cooldown expiry for a RATE_LIMIT
	// error. Zero when the adapter did not supply one, in which case
	// the health manager applies its own default cooldown window.
	ResetAt time.Time
}

// New creates a SearchError with the default status code for typ.
func New(typ ErrorType, provider, message string) *SearchError {
	return &SearchError{
		Type:       typ,
		Message:    message,
		Provider:   provider,
		StatusCode: statusCodes[typ],
	}
}

// Wrap creates a SearchError that carries an underlying cause.
func Wrap(cause error, typ ErrorType, provider, message string) *SearchError {
	e := New(typ, provider, message)
	e.Cause = cause
	return e
}

// Wrapf is Wrap with a formatted message.
func Wrapf(cause error, typ ErrorType, provider, format string, args ...interface{}) *SearchError {
	return Wrap(cause, typ, provider, fmt.Sprintf(format, args...))
}

// WithDetails attaches additional detail, returned in Error() and in
// LogFields, but never in SafeErrorMessage.
func (e *SearchError) WithDetails(details string) *SearchError {
	e.Details = details
	return e
}

// WithDetailsf is WithDetails with a formatted string.
func (e *SearchError) WithDetailsf(format string, args ...interface{}) *SearchError {
	return e.WithDetails(fmt.Sprintf(format, args...))
}

// WithResetAt attaches a server-provided cooldown expiry to a
// RATE_LIMIT error.
func (e *SearchError) WithResetAt(t time.Time) *SearchError {
	e.ResetAt = t
	return e
}

// Error implements the error interface.
func (e *SearchError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Type, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap exposes the underlying cause for errors.Is/As.
func (e *SearchError) Unwrap() error { return e.Cause }

// IsType reports whether err is a *SearchError of the given type.
func IsType(err error, typ ErrorType) bool {
	se, ok := err.(*SearchError)
	return ok && se.Type == typ
}

// GetType returns err's ErrorType, or ErrorTypeInternal for a non-SearchError.
func GetType(err error) ErrorType {
	if se, ok := err.(*SearchError); ok {
		return se.Type
	}
	return ErrorTypeInternal
}

// GetStatusCode returns the HTTP-shaped status code associated with err.
func GetStatusCode(err error) int {
	if se, ok := err.(*SearchError); ok {
		return se.StatusCode
	}
	return http.StatusInternalServerError
}

// SafeErrorMessage returns a message safe to surface to a caller: the
// taxonomy's canned message for every type except INVALID_INPUT, whose
// message is assumed to already describe the malformed input safely.
func SafeErrorMessage(err error) string {
	se, ok := err.(*SearchError)
	if !ok {
		return "An unexpected error occurred"
	}
	if se.Type == ErrorTypeInvalidInput {
		return se.Message
	}
	if msg, ok := safeMessages[se.Type]; ok {
		return msg
	}
	return "An unexpected error occurred"
}

// LogFields renders err as a structured-logging field map.
func LogFields(err error) map[string]interface{} {
	fields := map[string]interface{}{"error": err.Error()}
	se, ok := err.(*SearchError)
	if !ok {
		return fields
	}
	fields["error_type"] = string(se.Type)
	fields["status_code"] = se.StatusCode
	if se.Provider != "" {
		fields["provider"] = se.Provider
	}
	if se.Details != "" {
		fields["error_details"] = se.Details
	}
	if se.Cause != nil {
		fields["underlying_error"] = se.Cause.Error()
	}
	return fields
}

// IsRetryable reports whether the orchestrator's inner-retry loop should
// attempt the same provider again: never for RATE_LIMIT, INVALID_INPUT,
// or AUTHENTICATION_ERROR.
func IsRetryable(err error) bool {
	switch GetType(err) {
	case ErrorTypeRateLimit, ErrorTypeInvalidInput, ErrorTypeAuthentication:
		return false
	default:
		return true
	}
}

// Classify maps an API_ERROR's message to its true kind: substrings
// indicating credit/quota exhaustion or invalid credentials reclassify
// the error before the health manager sees it.
func Classify(err *SearchError) *SearchError {
	if err.Type != ErrorTypeAPIError {
		return err
	}
	msg := err.Message
	switch {
	case containsAny(msg, "credit", "quota", "limit"):
		err.Type = ErrorTypeCreditExhausted
	case containsAny(msg, "Invalid API key", "Unauthorized"):
		err.Type = ErrorTypeAuthentication
	}
	err.StatusCode = statusCodes[err.Type]
	return err
}

func containsAny(s string, substrs ...string) bool {
	lower := strings.ToLower(s)
	for _, sub := range substrs {
		if strings.Contains(lower, strings.ToLower(sub)) {
			return true
		}
	}
	return false
}
