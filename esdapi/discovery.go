package esdapi

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

// IntegrationPath is the ASMX service that exposes the campaign operations.
const IntegrationPath = "/esd/ws/integration.asmx"

// ServiceDescription is a WSDL document as fetched from the server.
// It is consumed once to build a SOAP client and never cached.
type ServiceDescription struct {
	// URL the document was fetched from, including the ?WSDL query.
	URL string

	// Raw is the document text.
	Raw []byte
}

// Endpoint returns the URL without its query, the conventional ASMX
// endpoint when the description does not advertise an address.
func (d *ServiceDescription) Endpoint() string {
	if i := strings.IndexByte(d.URL, '?'); i >= 0 {
		return d.URL[:i]
	}
	return d.URL
}

// DescriptionURL returns the WSDL URL for domain.
func DescriptionURL(domain string) string {
	return joinURL(domain, IntegrationPath) + "?WSDL"
}

// DiscoverDescription fetches the service description. It makes a single
// attempt. A non-2xx response yields *DiscoveryError; a request that got no
// response yields *TransportError.
func (s *Session) DiscoverDescription(ctx context.Context, domain string) (*ServiceDescription, error) {
	u := DescriptionURL(domain)

	resp, err := s.do(ctx, "discover", http.MethodGet, u, http.Header{"Accept": []string{"text/xml"}}, nil)
	if err != nil {
		var he *HTTPStatusError
		if errors.As(err, &he) {
			return nil, &DiscoveryError{HTTPStatusError: he}
		}
		return nil, err
	}

	return &ServiceDescription{URL: u, Raw: resp.Body}, nil
}
