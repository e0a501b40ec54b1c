package campaign

import (
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/smnsjas/go-esd/esdapi"
	"github.com/smnsjas/go-esd/esdapi/auth"
)

// Config holds configuration for an Orchestrator.
type Config struct {
	// Username for NTLM authentication. May carry a domain prefix.
	Username string

	// Password for NTLM authentication.
	Password string

	// Domain for NTLM authentication.
	Domain string

	// Proxies maps a URL scheme to a proxy URL. Nil uses the environment.
	Proxies map[string]string

	// VerifyTLS enables certificate verification (off by default).
	VerifyTLS bool

	// TLSConfig is the base TLS configuration, e.g. a private CA pool.
	TLSConfig *tls.Config

	// Timeout bounds each HTTP exchange.
	Timeout time.Duration

	// Parallel runs the XML path and the JSON step concurrently. Both
	// always complete before Provision returns.
	Parallel bool

	// Logger receives step logs and audit events. Nil discards.
	Logger *slog.Logger
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Timeout: 60 * time.Second,
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	creds := auth.Credentials{Username: c.Username, Password: c.Password, Domain: c.Domain}
	if err := creds.Validate(); err != nil {
		return err
	}
	if c.Timeout < 0 {
		return errors.New("timeout must not be negative")
	}
	return nil
}

// Request identifies the campaign to provision.
type Request struct {
	// Domain is the base URL of the ESD server, e.g. https://esd.example.com.
	Domain string

	// FlexeraID identifies the package to retire.
	FlexeraID string

	// GroupID identifies the directory group targeted by the campaign.
	GroupID string
}

// Validate checks that the request is complete and Domain is an absolute
// http(s) URL.
func (r Request) Validate() error {
	if r.Domain == "" {
		return errors.New("domain is required")
	}
	u, err := url.Parse(r.Domain)
	if err != nil {
		return fmt.Errorf("domain: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("domain %q must be an absolute http(s) URL", r.Domain)
	}
	if r.FlexeraID == "" {
		return errors.New("flexera id is required")
	}
	if r.GroupID == "" {
		return errors.New("group id is required")
	}
	return nil
}

// ResolveProxies parses the --proxies JSON. A malformed value is not
// fatal: it is logged as a warning and the run proceeds without any proxy,
// including one from the environment.
func ResolveProxies(raw string, logger *slog.Logger) map[string]string {
	proxies, err := esdapi.ParseProxies(raw)
	if err != nil {
		if logger != nil {
			logger.Warn("ignoring proxy configuration", "error", err)
		}
		return esdapi.NoProxy()
	}
	return proxies
}
