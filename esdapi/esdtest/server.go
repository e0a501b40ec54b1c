// Package esdtest provides an in-process fake of the ESD campaign
// interfaces for tests.
package esdtest

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"
)

// Paths served by the fake.
const (
	IntegrationPath = "/esd/ws/integration.asmx"
	CampaignsPath   = "/esd/api/Campaigns"
	DevicesPath     = "/esd/api/Devices"
)

// Namespace is the target namespace of the served description.
const Namespace = "http://www.flexerasoftware.com/esd/"

// Request is a request as the fake received it.
type Request struct {
	Method   string
	Path     string
	RawQuery string
	Header   http.Header
	Body     []byte
	// NTLMType is the NTLM message type in the Authorization header, or 0.
	NTLMType int
}

// Server is a fake ESD server.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	requests []Request
	logins   []NTLMLogin

	wsdlStatus  int
	wsdlBody    string
	wsdlDelay   time.Duration
	soapStatus  int
	soapFault   string
	soapResult  string
	restStatus  int
	restBody    string
	devicesBody string
	ntlm        bool
	basicUser   string
	basicPass   string
}

// Option configures a Server.
type Option func(*Server)

// WithWSDLStatus makes the description request answer status with body.
func WithWSDLStatus(status int, body string) Option {
	return func(s *Server) {
		s.wsdlStatus = status
		s.wsdlBody = body
	}
}

// WithWSDLDelay delays the description response.
func WithWSDLDelay(d time.Duration) Option {
	return func(s *Server) {
		s.wsdlDelay = d
	}
}

// WithSOAPFault makes the SOAP call answer 500 with a fault.
func WithSOAPFault(message string) Option {
	return func(s *Server) {
		s.soapFault = message
	}
}

// WithSOAPStatus makes the SOAP call answer status with a plain body.
func WithSOAPStatus(status int) Option {
	return func(s *Server) {
		s.soapStatus = status
	}
}

// WithSOAPResult sets the inner XML of the result element.
func WithSOAPResult(innerXML string) Option {
	return func(s *Server) {
		s.soapResult = innerXML
	}
}

// WithRESTStatus makes the campaign POST answer status with body.
func WithRESTStatus(status int, body string) Option {
	return func(s *Server) {
		s.restStatus = status
		s.restBody = body
	}
}

// WithDevices sets the JSON body of the device endpoint.
func WithDevices(body string) Option {
	return func(s *Server) {
		s.devicesBody = body
	}
}

// WithNTLMChallenge requires an NTLM handshake: requests without a message
// get 401 with "WWW-Authenticate: NTLM", a negotiate message gets a
// challenge and only an authenticate message is let through.
func WithNTLMChallenge() Option {
	return func(s *Server) {
		s.ntlm = true
	}
}

// WithBasicAuth rejects requests that do not carry these credentials.
func WithBasicAuth(user, pass string) Option {
	return func(s *Server) {
		s.basicUser = user
		s.basicPass = pass
	}
}

// NewServer starts a fake ESD server. Call Close when done.
func NewServer(opts ...Option) *Server {
	s := &Server{
		wsdlStatus:  http.StatusOK,
		restStatus:  http.StatusOK,
		restBody:    `"Campaign updated"`,
		soapResult:  "<Success>true</Success><CampaignId>1042</CampaignId>",
		devicesBody: `{"data":[]}`,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	return s
}

// Requests returns the requests received for path, oldest first.
func (s *Server) Requests(path string) []Request {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Request
	for _, r := range s.requests {
		if r.Path == path {
			out = append(out, r)
		}
	}
	return out
}

// NTLMLogins returns the identities of accepted authenticate messages.
func (s *Server) NTLMLogins() []NTLMLogin {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]NTLMLogin(nil), s.logins...)
}

func (s *Server) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	ntlmType, _ := ntlmToken(r.Header.Get("Authorization"))
	s.mu.Lock()
	s.requests = append(s.requests, Request{
		Method:   r.Method,
		Path:     r.URL.Path,
		RawQuery: r.URL.RawQuery,
		Header:   r.Header.Clone(),
		Body:     body,
		NTLMType: ntlmType,
	})
	s.mu.Unlock()

	if !s.authorized(w, r) {
		return
	}

	switch {
	case r.URL.Path == IntegrationPath && r.Method == http.MethodGet:
		s.serveWSDL(w, r)
	case r.URL.Path == IntegrationPath && r.Method == http.MethodPost:
		s.serveSOAP(w, body)
	case r.URL.Path == CampaignsPath && r.Method == http.MethodPost:
		w.WriteHeader(s.restStatus)
		_, _ = io.WriteString(w, s.restBody)
	case r.URL.Path == DevicesPath && r.Method == http.MethodGet:
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, s.devicesBody)
	default:
		http.NotFound(w, r)
	}
}

func (s *Server) authorized(w http.ResponseWriter, r *http.Request) bool {
	if s.ntlm && !s.ntlmHandshake(w, r) {
		return false
	}
	if s.basicUser != "" {
		u, p, ok := r.BasicAuth()
		if !ok || u != s.basicUser || p != s.basicPass {
			w.Header().Set("WWW-Authenticate", `Basic realm="esd"`)
			w.WriteHeader(http.StatusUnauthorized)
			return false
		}
	}
	return true
}

func (s *Server) ntlmHandshake(w http.ResponseWriter, r *http.Request) bool {
	typ, msg := ntlmToken(r.Header.Get("Authorization"))
	switch typ {
	case NTLMNegotiate:
		w.Header().Set("WWW-Authenticate", "NTLM "+base64.StdEncoding.EncodeToString(challengeMessage()))
	case NTLMAuthenticate:
		login, err := parseAuthenticate(msg)
		if err == nil {
			s.mu.Lock()
			s.logins = append(s.logins, login)
			s.mu.Unlock()
			return true
		}
		w.Header().Set("WWW-Authenticate", "NTLM")
	default:
		w.Header().Set("WWW-Authenticate", "NTLM")
	}
	w.WriteHeader(http.StatusUnauthorized)
	return false
}

func (s *Server) serveWSDL(w http.ResponseWriter, r *http.Request) {
	if s.wsdlDelay > 0 {
		select {
		case <-time.After(s.wsdlDelay):
		case <-r.Context().Done():
			return
		}
	}
	if s.wsdlStatus != http.StatusOK {
		w.Header().Set("X-ESD-Error", "discovery")
		w.WriteHeader(s.wsdlStatus)
		_, _ = io.WriteString(w, s.wsdlBody)
		return
	}
	w.Header().Set("Content-Type", "text/xml; charset=utf-8")
	_, _ = io.WriteString(w, Description(s.URL+IntegrationPath))
}

func (s *Server) serveSOAP(w http.ResponseWriter, body []byte) {
	if s.soapStatus != 0 {
		w.WriteHeader(s.soapStatus)
		_, _ = io.WriteString(w, "soap endpoint unavailable")
		return
	}

	w.Header().Set("Content-Type", "text/xml; charset=utf-8")
	if s.soapFault != "" {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprintf(w, faultTemplate, s.soapFault)
		return
	}

	id := between(body, "<flexeraId>", "</flexeraId>")
	fmt.Fprintf(w, responseTemplate, Namespace, s.soapResult, id)
}

func between(b []byte, open, closeTag string) string {
	i := bytes.Index(b, []byte(open))
	if i < 0 {
		return ""
	}
	rest := b[i+len(open):]
	j := bytes.Index(rest, []byte(closeTag))
	if j < 0 {
		return ""
	}
	return string(rest[:j])
}

const responseTemplate = `<?xml version="1.0" encoding="utf-8"?>
<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/"><soap:Body><AddFlexeraIdForRetireCampaignResponse xmlns="%s"><AddFlexeraIdForRetireCampaignResult>%s<FlexeraId>%s</FlexeraId></AddFlexeraIdForRetireCampaignResult></AddFlexeraIdForRetireCampaignResponse></soap:Body></soap:Envelope>`

const faultTemplate = `<?xml version="1.0" encoding="utf-8"?>
<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/"><soap:Body><soap:Fault><faultcode>soap:Server</faultcode><faultstring>%s</faultstring></soap:Fault></soap:Body></soap:Envelope>`
