package auth

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
)

// Authenticator defines the interface for authentication handlers.
type Authenticator interface {
	// Transport wraps an http.RoundTripper with authentication.
	Transport(base http.RoundTripper) http.RoundTripper

	// Name returns the authentication scheme name.
	Name() string
}

// Scheme selects an authentication mechanism.
type Scheme int

const (
	// SchemeNTLM negotiates NTLM on the server's challenge.
	SchemeNTLM Scheme = iota
	// SchemeBasic sends HTTP Basic credentials on every request.
	SchemeBasic
)

// String returns the scheme name.
func (s Scheme) String() string {
	switch s {
	case SchemeNTLM:
		return "NTLM"
	case SchemeBasic:
		return "Basic"
	default:
		return "unknown"
	}
}

// ParseScheme maps "ntlm" or "basic" (case-insensitive) to a Scheme.
func ParseScheme(s string) (Scheme, error) {
	switch strings.ToLower(s) {
	case "", "ntlm":
		return SchemeNTLM, nil
	case "basic":
		return SchemeBasic, nil
	default:
		return SchemeNTLM, fmt.Errorf("unknown auth scheme %q", s)
	}
}

// Credentials holds authentication credentials.
type Credentials struct {
	// Username is the user name for authentication. It may already carry
	// a domain prefix ("DOMAIN\user").
	Username string

	// Password is the password for authentication.
	Password string

	// Domain is the optional domain for NTLM authentication.
	Domain string
}

// Validate checks that required credential fields are populated.
func (c *Credentials) Validate() error {
	if c.Username == "" {
		return errors.New("username is required")
	}
	if c.Password == "" {
		return errors.New("password is required")
	}
	return nil
}

// LogValue implements slog.LogValuer so credentials never reach a log sink
// in plain text.
func (c Credentials) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("username", c.Username),
		slog.String("domain", c.Domain),
		slog.String("password", "[REDACTED]"),
	)
}

// New returns the Authenticator for scheme.
func New(scheme Scheme, creds Credentials) Authenticator {
	if scheme == SchemeBasic {
		return NewBasicAuth(creds)
	}
	return NewNTLMAuth(creds)
}
