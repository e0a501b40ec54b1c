package transport

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/smnsjas/go-esd/esdapi/auth"
)

// TestNewHTTPTransport verifies transport creation with default settings.
func TestNewHTTPTransport(t *testing.T) {
	tr := NewHTTPTransport()
	if tr == nil {
		t.Fatal("NewHTTPTransport returned nil")
	}
	if tr.client.Timeout != DefaultTimeout {
		t.Errorf("got timeout %v, want %v", tr.client.Timeout, DefaultTimeout)
	}
	if tr.base.TLSClientConfig.MinVersion != tls.VersionTLS12 {
		t.Error("MinVersion is not TLS 1.2")
	}
}

// TestHTTPTransport_WithTimeout verifies timeout configuration.
func TestHTTPTransport_WithTimeout(t *testing.T) {
	timeout := 30 * time.Second
	tr := NewHTTPTransport(WithTimeout(timeout))

	if tr.client.Timeout != timeout {
		t.Errorf("got timeout %v, want %v", tr.client.Timeout, timeout)
	}
}

// TestHTTPTransport_WithInsecureSkipVerify verifies TLS skip verify configuration.
func TestHTTPTransport_WithInsecureSkipVerify(t *testing.T) {
	tr := NewHTTPTransport(WithInsecureSkipVerify(true))

	if tr.base.TLSClientConfig == nil {
		t.Fatal("TLSClientConfig is nil")
	}
	if !tr.base.TLSClientConfig.InsecureSkipVerify {
		t.Error("InsecureSkipVerify is false, want true")
	}
}

// TestHTTPTransport_WithTLSConfig verifies custom TLS configuration.
func TestHTTPTransport_WithTLSConfig(t *testing.T) {
	tlsCfg := &tls.Config{MinVersion: tls.VersionTLS10}
	tr := NewHTTPTransport(WithTLSConfig(tlsCfg))

	if tr.base.TLSClientConfig == nil || tr.base.TLSClientConfig == tlsCfg {
		t.Fatal("TLSClientConfig should be a copy of the provided config")
	}
	if tr.base.TLSClientConfig.MinVersion != tls.VersionTLS12 {
		t.Errorf("MinVersion = %x, want TLS 1.2", tr.base.TLSClientConfig.MinVersion)
	}
	if tlsCfg.MinVersion != tls.VersionTLS10 {
		t.Error("caller's config was mutated")
	}
}

// TestHTTPTransport_WithTLSConfig_RootCAs verifies a custom CA pool is trusted
// while verification stays on.
func TestHTTPTransport_WithTLSConfig_RootCAs(t *testing.T) {
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))
	defer server.Close()

	pool := x509.NewCertPool()
	pool.AddCert(server.Certificate())
	tlsCfg := &tls.Config{RootCAs: pool}

	tr := NewHTTPTransport(WithTLSConfig(tlsCfg), WithInsecureSkipVerify(false))
	resp, err := tr.Do(context.Background(), http.MethodGet, server.URL, nil, nil)
	if err != nil {
		t.Fatalf("Do failed: %v", err)
	}
	if string(resp.Body) != "ok" {
		t.Errorf("body = %q", resp.Body)
	}
	if tlsCfg.InsecureSkipVerify {
		t.Error("caller's config was mutated")
	}
}

// TestHTTPTransport_SelfSignedServer verifies insecure mode reaches a TLS test server.
func TestHTTPTransport_SelfSignedServer(t *testing.T) {
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))
	defer server.Close()

	strict := NewHTTPTransport()
	if _, err := strict.Do(context.Background(), http.MethodGet, server.URL, nil, nil); err == nil {
		t.Error("expected certificate verification failure")
	}

	insecure := NewHTTPTransport(WithInsecureSkipVerify(true))
	resp, err := insecure.Do(context.Background(), http.MethodGet, server.URL, nil, nil)
	if err != nil {
		t.Fatalf("Do failed: %v", err)
	}
	if string(resp.Body) != "ok" {
		t.Errorf("body = %q", resp.Body)
	}
}

// TestHTTPTransport_Do verifies basic request execution.
func TestHTTPTransport_Do(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ct := r.Header.Get("Content-Type"); ct != ContentTypeJSON {
			t.Errorf("unexpected Content-Type: %s", ct)
		}
		body, _ := io.ReadAll(r.Body)
		if !strings.Contains(string(body), "test-body") {
			t.Errorf("unexpected body: %s", body)
		}
		w.Header().Set("X-Server", "esd")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	tr := NewHTTPTransport()
	hdr := http.Header{"Content-Type": []string{ContentTypeJSON}}

	resp, err := tr.Do(context.Background(), http.MethodPost, server.URL, hdr, []byte(`["test-body"]`))
	if err != nil {
		t.Fatalf("Do failed: %v", err)
	}
	if resp.StatusCode != http.StatusCreated || !resp.OK() {
		t.Errorf("status = %d", resp.StatusCode)
	}
	if resp.Header.Get("X-Server") != "esd" {
		t.Error("response headers not returned")
	}
	if string(resp.Body) != `{"ok":true}` {
		t.Errorf("unexpected response: %s", resp.Body)
	}
}

// TestHTTPTransport_Do_ErrorStatusIsResponse verifies non-2xx is not a transport error.
func TestHTTPTransport_Do_ErrorStatusIsResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusBadRequest)
	}))
	defer server.Close()

	resp, err := NewHTTPTransport().Do(context.Background(), http.MethodGet, server.URL, nil, nil)
	if err != nil {
		t.Fatalf("Do failed: %v", err)
	}
	if resp.OK() || resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d", resp.StatusCode)
	}
}

// TestHTTPTransport_DefaultHeaders verifies defaults apply without overriding explicit headers.
func TestHTTPTransport_DefaultHeaders(t *testing.T) {
	var accept, ctype []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		accept = append(accept, r.Header.Get("Accept"))
		ctype = append(ctype, r.Header.Get("Content-Type"))
	}))
	defer server.Close()

	tr := NewHTTPTransport(WithDefaultHeaders(http.Header{"accept": []string{"application/json"}}))
	ctx := context.Background()

	if _, err := tr.Do(ctx, http.MethodGet, server.URL, nil, nil); err != nil {
		t.Fatal(err)
	}
	if _, err := tr.Do(ctx, http.MethodGet, server.URL, http.Header{"Accept": []string{"text/xml"}}, nil); err != nil {
		t.Fatal(err)
	}
	req, _ := http.NewRequest(http.MethodGet, server.URL, nil)
	resp, err := tr.Client().Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	want := []string{"application/json", "text/xml", "application/json"}
	for i := range want {
		if accept[i] != want[i] {
			t.Errorf("request %d Accept = %q, want %q", i, accept[i], want[i])
		}
	}
	if req.Header.Get("Accept") != "" {
		t.Error("caller's request was mutated")
	}
}

// TestHTTPTransport_WithAuthenticator verifies the authenticator wraps every request.
func TestHTTPTransport_WithAuthenticator(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if u, p, ok := r.BasicAuth(); !ok || u != "svc" || p != "pw" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	tr := NewHTTPTransport(WithAuthenticator(auth.NewBasicAuth(auth.Credentials{Username: "svc", Password: "pw"})))
	resp, err := tr.Do(context.Background(), http.MethodGet, server.URL, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}

// TestHTTPTransport_Do_WithContext verifies context cancellation.
func TestHTTPTransport_Do_WithContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(100 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := NewHTTPTransport().Do(ctx, http.MethodGet, server.URL, nil, nil)
	if err == nil {
		t.Error("expected context deadline exceeded error")
	}
}

// TestHTTPTransport_Do_Error verifies error handling for failed requests.
func TestHTTPTransport_Do_Error(t *testing.T) {
	_, err := NewHTTPTransport().Do(context.Background(), http.MethodGet, "http://localhost:1", nil, nil)
	if err == nil {
		t.Error("expected connection error")
	}
}

// TestHTTPTransport_WithProxies verifies per-scheme proxy selection.
func TestHTTPTransport_WithProxies(t *testing.T) {
	tr := NewHTTPTransport(WithProxies(map[string]string{
		"http":  "http://proxy.example.com:8080",
		"https": "http://secure-proxy.example.com:3128",
	}))

	tests := []struct {
		target string
		want   string
	}{
		{"http://esd.example.com/esd", "http://proxy.example.com:8080"},
		{"https://esd.example.com/esd", "http://secure-proxy.example.com:3128"},
	}
	for _, tt := range tests {
		u, _ := url.Parse(tt.target)
		got, err := tr.base.Proxy(&http.Request{URL: u})
		if err != nil {
			t.Fatalf("Proxy(%s) error: %v", tt.target, err)
		}
		if got == nil || got.String() != tt.want {
			t.Errorf("Proxy(%s) = %v, want %s", tt.target, got, tt.want)
		}
	}
}

// TestHTTPTransport_WithProxies_DirectIgnoresEnvironment verifies an explicit
// direct mapping is not overridden by proxy environment variables.
func TestHTTPTransport_WithProxies_DirectIgnoresEnvironment(t *testing.T) {
	t.Setenv("HTTP_PROXY", "http://env-proxy.example.com:8080")
	t.Setenv("HTTPS_PROXY", "http://env-proxy.example.com:8080")

	tr := NewHTTPTransport(WithProxies(map[string]string{"all": ""}))
	for _, target := range []string{"http://esd.example.com/esd", "https://esd.example.com/esd"} {
		u, _ := url.Parse(target)
		got, err := tr.base.Proxy(&http.Request{URL: u})
		if err != nil || got != nil {
			t.Errorf("Proxy(%s) = %v, %v, want direct", target, got, err)
		}
	}
}

// TestHTTPTransport_WithProxies_AllAndInvalid verifies fallbacks and deferred errors.
func TestHTTPTransport_WithProxies_AllAndInvalid(t *testing.T) {
	tr := NewHTTPTransport(WithProxies(map[string]string{"all": "http://any.example.com:80"}))
	u, _ := url.Parse("https://esd.example.com/")
	got, err := tr.base.Proxy(&http.Request{URL: u})
	if err != nil || got == nil || got.Host != "any.example.com:80" {
		t.Errorf("Proxy() = %v, %v", got, err)
	}

	bad := NewHTTPTransport(WithProxies(map[string]string{"https": "http://bad host:%zz"}))
	if _, err := bad.base.Proxy(&http.Request{URL: u}); err == nil {
		t.Error("expected error for malformed proxy URL")
	}

	direct := NewHTTPTransport(WithProxies(map[string]string{"all": ""}))
	if got, err := direct.base.Proxy(&http.Request{URL: u}); err != nil || got != nil {
		t.Errorf("empty proxy should connect directly, got %v, %v", got, err)
	}

	empty := NewHTTPTransport(WithProxies(nil))
	if empty.proxies != nil {
		t.Error("nil map should keep environment defaults")
	}
}
