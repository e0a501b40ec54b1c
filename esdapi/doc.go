// Package esdapi implements a client for the campaign interfaces of an ESD
// software-deployment server.
//
// The server exposes the same capability over two protocols that must be
// driven under one NTLM-authenticated Session:
//
//   - XML: a SOAP (ASMX) service, discovered with DiscoverDescription and
//     called with RetireCampaignSOAP.
//   - JSON: a REST resource, called with RetireCampaignREST.
//
// Devices enumerates the devices that carry a package.
//
// # Subpackages
//
//   - auth: Authentication handlers (NTLM, Basic)
//   - transport: HTTP/TLS transport layer
//
// # Errors
//
// Every operation reports failures as one of *TransportError (no response),
// *HTTPStatusError (non-2xx), *DiscoveryError (non-2xx WSDL fetch) or
// *InvokeError (SOAP client construction or call). Classify maps any error
// onto a FailureKind.
package esdapi
