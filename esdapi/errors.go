package esdapi

import (
	"errors"
	"fmt"
	"net/http"
	"unicode/utf8"
)

// ErrUnauthorized matches an HTTPStatusError whose status is 401, which
// after NTLM negotiation means the credentials were rejected.
// Use errors.Is(err, ErrUnauthorized) to check for authentication failures.
var ErrUnauthorized = errors.New("esdapi: authentication failed (401 Unauthorized)")

// ErrNoDescription is returned by the SOAP invoker when no service
// description is available.
var ErrNoDescription = errors.New("esdapi: no service description")

// maxBodyPreview bounds the response body quoted in error strings. The full
// body is kept on the error value.
const maxBodyPreview = 3000

// TransportError reports a request that produced no usable response:
// DNS failure, refused or reset connection, TLS handshake failure,
// timeout, or an unreadable body.
type TransportError struct {
	// Op names the protocol step ("discover", "soap", "rest", "devices").
	Op     string
	Method string
	URL    string
	Err    error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %s %s: %v", e.Op, e.Method, e.URL, e.Err)
}

// Unwrap returns the underlying cause.
func (e *TransportError) Unwrap() error { return e.Err }

// Timeout reports whether the cause was a timeout.
func (e *TransportError) Timeout() bool {
	var t interface{ Timeout() bool }
	return errors.As(e.Err, &t) && t.Timeout()
}

// HTTPStatusError reports a non-2xx response.
type HTTPStatusError struct {
	Op         string
	Method     string
	URL        string
	StatusCode int
	// Header holds the response headers.
	Header http.Header
	// Body holds the raw response body.
	Body []byte
	// RequestBody holds the body that was sent, if any.
	RequestBody []byte
}

// Error implements the error interface.
func (e *HTTPStatusError) Error() string {
	preview := string(e.Body)
	if len(preview) > maxBodyPreview {
		cut := maxBodyPreview
		for cut > 0 && !utf8.RuneStart(preview[cut]) {
			cut--
		}
		preview = preview[:cut] + "..."
	}
	return fmt.Sprintf("%s: %s %s: HTTP %d: %s", e.Op, e.Method, e.URL, e.StatusCode, preview)
}

// Is matches ErrUnauthorized for 401 responses.
func (e *HTTPStatusError) Is(target error) bool {
	return target == ErrUnauthorized && e.StatusCode == http.StatusUnauthorized
}

// DiscoveryError reports a non-2xx response to the WSDL request.
type DiscoveryError struct {
	*HTTPStatusError
}

// Error implements the error interface.
func (e *DiscoveryError) Error() string {
	return "wsdl discovery failed: " + e.HTTPStatusError.Error()
}

// Unwrap exposes the HTTPStatusError.
func (e *DiscoveryError) Unwrap() error { return e.HTTPStatusError }

// InvokeError reports a failure building the SOAP client or calling the
// remote operation.
type InvokeError struct {
	Operation string
	Err       error
}

// Error implements the error interface.
func (e *InvokeError) Error() string {
	return fmt.Sprintf("invoke %s: %v", e.Operation, e.Err)
}

// Unwrap returns the underlying cause.
func (e *InvokeError) Unwrap() error { return e.Err }

// ConfigError reports caller-supplied configuration that could not be used.
type ConfigError struct {
	Field string
	Value string
	Err   error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid %s %q: %v", e.Field, e.Value, e.Err)
}

// Unwrap returns the underlying cause.
func (e *ConfigError) Unwrap() error { return e.Err }

// FailureKind classifies an error into the taxonomy above.
type FailureKind int

const (
	// KindNone means no failure.
	KindNone FailureKind = iota
	// KindTransport is a TransportError.
	KindTransport
	// KindHTTPStatus is an HTTPStatusError outside discovery.
	KindHTTPStatus
	// KindDiscovery is a DiscoveryError.
	KindDiscovery
	// KindInvoke is an InvokeError.
	KindInvoke
	// KindConfig is a ConfigError.
	KindConfig
	// KindUnknown is any other error.
	KindUnknown
)

// String returns the kind name.
func (k FailureKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindTransport:
		return "transport"
	case KindHTTPStatus:
		return "http_status"
	case KindDiscovery:
		return "discovery"
	case KindInvoke:
		return "invoke"
	case KindConfig:
		return "config"
	default:
		return "unknown"
	}
}

// Classify returns the most specific kind found in err's chain.
// Discovery wins over invoke so that a discovery status failure recorded
// together with the invoke failure it caused is reported as discovery.
func Classify(err error) FailureKind {
	if err == nil {
		return KindNone
	}
	var (
		de *DiscoveryError
		ie *InvokeError
		te *TransportError
		he *HTTPStatusError
		ce *ConfigError
	)
	switch {
	case errors.As(err, &de):
		return KindDiscovery
	case errors.As(err, &ie):
		return KindInvoke
	case errors.As(err, &te):
		return KindTransport
	case errors.As(err, &he):
		return KindHTTPStatus
	case errors.As(err, &ce):
		return KindConfig
	default:
		return KindUnknown
	}
}

// IsTransport returns true if err is or wraps a TransportError.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
