package cloudflare

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

const (
	// CodeRateLimited is the provider error code for "rate limited".
	CodeRateLimited = 971

	// CodeRecordAlreadyExists is the provider error code returned when an
	// identical DNS record already exists in the zone.
	CodeRecordAlreadyExists = 81058
)

// Kind classifies a failure coming back from the Cloudflare API.
type Kind int

const (
	// KindUnknown is used for errors that did not originate from the client.
	KindUnknown Kind = iota

	// KindTransport means no response was received (network, DNS, TLS, timeout).
	KindTransport

	// KindHTTP means a response was received with a non-2xx status.
	KindHTTP

	// KindApplication means a 2xx response carried success=false.
	KindApplication

	// KindRateLimited means the caller exceeded the allowed request rate.
	KindRateLimited

	// KindAlreadyExists means the record being created is already present.
	KindAlreadyExists
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindHTTP:
		return "http"
	case KindApplication:
		return "application"
	case KindRateLimited:
		return "rate_limited"
	case KindAlreadyExists:
		return "already_exists"
	default:
		return "unknown"
	}
}

// Error is returned by every Client method. Kind is resolved once, when the
// error is built, so callers never inspect codes themselves.
type Error struct {
	Op         string
	Kind       Kind
	StatusCode int
	Errors     []ResponseError
	Err        error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Op)
	b.WriteString(": ")
	b.WriteString(e.Kind.String())

	if e.StatusCode != 0 {
		fmt.Fprintf(&b, " (status %d)", e.StatusCode)
	}

	for i, apiErr := range e.Errors {
		if i == 0 {
			b.WriteString(":")
		} else {
			b.WriteString(";")
		}
		fmt.Fprintf(&b, " %d %s", apiErr.Code, apiErr.Message)
	}

	if e.Err != nil && len(e.Errors) == 0 {
		fmt.Fprintf(&b, ": %v", e.Err)
	}

	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// HasCode reports whether the response carried the given provider error code.
func (e *Error) HasCode(code int) bool {
	for _, apiErr := range e.Errors {
		if apiErr.Code == code {
			return true
		}
	}
	return false
}

// NewError builds an Error and resolves its Kind. statusCode is 0 when no
// response was received.
func NewError(op string, statusCode int, apiErrors []ResponseError, cause error) *Error {
	e := &Error{
		Op:         op,
		StatusCode: statusCode,
		Errors:     apiErrors,
		Err:        cause,
	}

	switch {
	case statusCode == http.StatusTooManyRequests || e.HasCode(CodeRateLimited):
		e.Kind = KindRateLimited
	case e.HasCode(CodeRecordAlreadyExists):
		e.Kind = KindAlreadyExists
	case statusCode == 0:
		e.Kind = KindTransport
	case statusCode < 200 || statusCode > 299:
		e.Kind = KindHTTP
	default:
		e.Kind = KindApplication
	}

	return e
}

// Classify maps any error to the taxonomy. Errors that do not wrap an *Error
// are KindUnknown.
func Classify(err error) Kind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return KindUnknown
}

// IsRateLimited reports whether err is a rate-limit signal.
func IsRateLimited(err error) bool {
	return Classify(err) == KindRateLimited
}

// IsAlreadyExists reports whether err means the record already exists.
func IsAlreadyExists(err error) bool {
	return Classify(err) == KindAlreadyExists
}

// APIErrors returns the provider error list carried by err, if any.
func APIErrors(err error) []ResponseError {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Errors
	}
	return nil
}
