package transport

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/smnsjas/go-esd/esdapi/auth"
)

const (
	// ContentTypeJSON is the content type for REST payloads.
	ContentTypeJSON = "application/json"

	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 60 * time.Second

	// defaultBufferSize is the initial size for pooled buffers.
	defaultBufferSize = 32 * 1024 // 32KB
)

// bufferPool is a pool of reusable bytes.Buffer to reduce allocations.
var bufferPool = sync.Pool{
	New: func() interface{} {
		return bytes.NewBuffer(make([]byte, 0, defaultBufferSize))
	},
}

// getBuffer returns a buffer from the pool.
func getBuffer() *bytes.Buffer {
	return bufferPool.Get().(*bytes.Buffer)
}

// putBuffer returns a buffer to the pool after resetting it.
func putBuffer(buf *bytes.Buffer) {
	buf.Reset()
	bufferPool.Put(buf)
}

// readAllPooled reads from r using a pooled buffer and returns a copy of the data.
func readAllPooled(r io.Reader) ([]byte, error) {
	buf := getBuffer()
	defer putBuffer(buf)

	_, err := buf.ReadFrom(r)
	if err != nil {
		return nil, err
	}

	// Return a copy since buf will be reused
	result := make([]byte, buf.Len())
	copy(result, buf.Bytes())
	return result, nil
}

// Response is a fully read HTTP response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// OK reports whether the status code is 2xx.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// HTTPTransport handles HTTP/HTTPS communication with an ESD server.
// It is immutable once constructed and safe for concurrent use.
type HTTPTransport struct {
	client  *http.Client
	base    *http.Transport
	auth    auth.Authenticator
	headers http.Header
	proxies map[string]string
	logger  *slog.Logger
}

// HTTPTransportOption configures an HTTPTransport.
type HTTPTransportOption func(*HTTPTransport)

// NewHTTPTransport creates a new HTTP transport with the given options.
func NewHTTPTransport(opts ...HTTPTransportOption) *HTTPTransport {
	t := &HTTPTransport{
		base: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			TLSClientConfig: &tls.Config{
				// MinVersion: TLS 1.2 for compatibility with older IIS servers
				MinVersion: tls.VersionTLS12,
			},
			// NTLM authenticates the connection, not the request
			DisableKeepAlives:   false,
			MaxIdleConns:        10,
			MaxIdleConnsPerHost: 4,
			IdleConnTimeout:     90 * time.Second,
		},
		headers: make(http.Header),
	}
	t.client = &http.Client{Timeout: DefaultTimeout}

	for _, opt := range opts {
		opt(t)
	}

	var rt http.RoundTripper = t.base
	if t.auth != nil {
		rt = t.auth.Transport(rt)
	}
	t.client.Transport = &headerTransport{base: rt, headers: t.headers}

	return t
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) HTTPTransportOption {
	return func(t *HTTPTransport) {
		t.client.Timeout = d
	}
}

// WithInsecureSkipVerify configures TLS to skip certificate verification.
// ESD servers usually present enterprise or self-signed certificates.
func WithInsecureSkipVerify(skip bool) HTTPTransportOption {
	return func(t *HTTPTransport) {
		if t.base.TLSClientConfig == nil {
			t.base.TLSClientConfig = &tls.Config{
				MinVersion: tls.VersionTLS12,
			}
		}
		t.base.TLSClientConfig.InsecureSkipVerify = skip
	}
}

// WithTLSConfig sets a custom TLS configuration. cfg is cloned, so later
// options never mutate the caller's value.
// NOTE: MinVersion is enforced to be at least TLS 1.2 for security.
func WithTLSConfig(cfg *tls.Config) HTTPTransportOption {
	return func(t *HTTPTransport) {
		cfg := cfg.Clone()
		if cfg.MinVersion < tls.VersionTLS12 {
			cfg.MinVersion = tls.VersionTLS12
		}
		t.base.TLSClientConfig = cfg
	}
}

// WithProxies routes requests through the proxy configured for the
// request's URL scheme. The key "all" applies to every scheme without its
// own entry; schemes with no entry fall back to the environment.
// A nil or empty map keeps the environment defaults.
func WithProxies(proxies map[string]string) HTTPTransportOption {
	return func(t *HTTPTransport) {
		if len(proxies) == 0 {
			return
		}
		t.proxies = make(map[string]string, len(proxies))
		for k, v := range proxies {
			t.proxies[k] = v
		}
		t.base.Proxy = t.proxyFor
	}
}

// WithDefaultHeaders sets headers added to every request that does not
// already carry them.
func WithDefaultHeaders(h http.Header) HTTPTransportOption {
	return func(t *HTTPTransport) {
		for k, vs := range h {
			t.headers[http.CanonicalHeaderKey(k)] = append([]string(nil), vs...)
		}
	}
}

// WithAuthenticator wraps the transport with a.
func WithAuthenticator(a auth.Authenticator) HTTPTransportOption {
	return func(t *HTTPTransport) {
		t.auth = a
	}
}

// WithLogger logs a summary of every exchange at debug level.
func WithLogger(l *slog.Logger) HTTPTransportOption {
	return func(t *HTTPTransport) {
		t.logger = l
	}
}

func (t *HTTPTransport) proxyFor(req *http.Request) (*url.URL, error) {
	raw, ok := t.proxies[req.URL.Scheme]
	if !ok {
		raw, ok = t.proxies["all"]
	}
	if !ok {
		return http.ProxyFromEnvironment(req)
	}
	if raw == "" {
		return nil, nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid %s proxy %q: %w", req.URL.Scheme, raw, err)
	}
	return u, nil
}

// Do sends a request and reads the whole response. A response is returned
// for every status code; the error is non-nil only when no response could
// be obtained or its body could not be read.
func (t *HTTPTransport) Do(ctx context.Context, method, rawURL string, header http.Header, body []byte) (*Response, error) {
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, rawURL, rd)
	if err != nil {
		return nil, fmt.Errorf("transport: failed to create request: %w", err)
	}
	for k, vs := range header {
		req.Header[http.CanonicalHeaderKey(k)] = vs
	}

	start := time.Now()
	resp, err := t.client.Do(req)
	if err != nil {
		t.debug("exchange failed", "method", method, "url", rawURL, "error", err)
		return nil, fmt.Errorf("transport: request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := readAllPooled(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("transport: failed to read response: %w", err)
	}

	t.debug("exchange",
		"method", method,
		"url", rawURL,
		"status", resp.StatusCode,
		"request_bytes", len(body),
		"response_bytes", len(respBody),
		"duration", time.Since(start))

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       respBody,
	}, nil
}

func (t *HTTPTransport) debug(msg string, args ...any) {
	if t.logger != nil {
		t.logger.Debug(msg, args...)
	}
}

// Client returns the underlying HTTP client. Requests sent through it carry
// the same authentication, proxy, TLS and default-header behaviour as Do.
func (t *HTTPTransport) Client() *http.Client {
	return t.client
}

// CloseIdleConnections closes any idle connections in the transport.
// This is useful to force a fresh NTLM handshake for subsequent requests.
func (t *HTTPTransport) CloseIdleConnections() {
	t.base.CloseIdleConnections()
}

// headerTransport adds default headers without overriding explicit ones.
type headerTransport struct {
	base    http.RoundTripper
	headers http.Header
}

// RoundTrip implements http.RoundTripper.
func (h *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if len(h.headers) == 0 {
		return h.base.RoundTrip(req)
	}
	reqCopy := req.Clone(req.Context())
	for k, vs := range h.headers {
		if _, ok := reqCopy.Header[k]; !ok {
			reqCopy.Header[k] = append([]string(nil), vs...)
		}
	}
	return h.base.RoundTrip(reqCopy)
}
