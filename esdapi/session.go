package esdapi

import (
	"context"
	"crypto/tls"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/smnsjas/go-esd/esdapi/auth"
	"github.com/smnsjas/go-esd/esdapi/transport"
)

// SessionConfig holds everything needed to build a Session.
type SessionConfig struct {
	// Username for authentication. May carry a domain prefix.
	Username string

	// Password for authentication.
	Password string

	// Domain for NTLM authentication.
	Domain string

	// AuthScheme selects NTLM (default) or Basic.
	AuthScheme auth.Scheme

	// Proxies maps a URL scheme ("http", "https", "all") to a proxy URL.
	// Nil uses the environment.
	Proxies map[string]string

	// VerifyTLS enables certificate verification. ESD servers usually
	// present enterprise or self-signed certificates, so it is off by
	// default.
	VerifyTLS bool

	// TLSConfig is the base TLS configuration, typically carrying RootCAs
	// for an enterprise CA. VerifyTLS still decides whether certificates
	// are checked.
	TLSConfig *tls.Config

	// Timeout bounds each HTTP exchange. Zero uses transport.DefaultTimeout.
	Timeout time.Duration

	// Headers are added to every request that does not set them. Accept
	// defaults to application/json.
	Headers http.Header

	// Logger receives debug summaries of every exchange. Nil discards.
	Logger *slog.Logger
}

// Session is an authenticated connection context to one ESD server. It is
// immutable after NewSession and may be shared by concurrent callers.
type Session struct {
	transport *transport.HTTPTransport
	logger    *slog.Logger
}

// NewSession builds a Session. It never fails: bad credentials or proxy
// settings surface when a request is sent.
func NewSession(cfg SessionConfig) *Session {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	headers := http.Header{"Accept": []string{transport.ContentTypeJSON}}
	for k, vs := range cfg.Headers {
		headers[http.CanonicalHeaderKey(k)] = append([]string(nil), vs...)
	}

	creds := auth.Credentials{
		Username: cfg.Username,
		Password: cfg.Password,
		Domain:   cfg.Domain,
	}

	var opts []transport.HTTPTransportOption
	if cfg.TLSConfig != nil {
		opts = append(opts, transport.WithTLSConfig(cfg.TLSConfig))
	}
	opts = append(opts,
		transport.WithInsecureSkipVerify(!cfg.VerifyTLS),
		transport.WithProxies(cfg.Proxies),
		transport.WithDefaultHeaders(headers),
		transport.WithAuthenticator(auth.New(cfg.AuthScheme, creds)),
		transport.WithLogger(logger),
	)
	if cfg.Timeout > 0 {
		opts = append(opts, transport.WithTimeout(cfg.Timeout))
	}

	return &Session{
		transport: transport.NewHTTPTransport(opts...),
		logger:    logger,
	}
}

// HTTPClient returns the client every request of this session goes
// through. Libraries that need an *http.Client (the SOAP client) use it so
// authentication, proxies and TLS policy carry over.
func (s *Session) HTTPClient() *http.Client {
	return s.transport.Client()
}

// Close releases idle connections.
func (s *Session) Close() {
	s.transport.CloseIdleConnections()
}

// do sends one request and maps the outcome onto the error taxonomy.
// A non-2xx response is returned together with an *HTTPStatusError.
func (s *Session) do(ctx context.Context, op, method, rawURL string, header http.Header, body []byte) (*transport.Response, error) {
	resp, err := s.transport.Do(ctx, method, rawURL, header, body)
	if err != nil {
		return nil, &TransportError{Op: op, Method: method, URL: rawURL, Err: err}
	}
	if !resp.OK() {
		return resp, &HTTPStatusError{
			Op:          op,
			Method:      method,
			URL:         rawURL,
			StatusCode:  resp.StatusCode,
			Header:      resp.Header,
			Body:        resp.Body,
			RequestBody: body,
		}
	}
	return resp, nil
}

// joinURL appends path to a base URL, tolerating a trailing slash on base.
func joinURL(base, path string) string {
	return strings.TrimRight(base, "/") + path
}
