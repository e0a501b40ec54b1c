// Package auth provides authentication handlers for ESD server sessions.
//
// # Supported Authentication Methods
//
//   - NTLM: NT LAN Manager authentication (via github.com/Azure/go-ntlmssp).
//     Required by the campaign endpoints (SOAP and REST).
//   - Basic: HTTP Basic authentication, accepted by the device enumeration
//     endpoint. Use only over TLS.
//
// # Usage
//
//	a := auth.NewNTLMAuth(auth.Credentials{
//	    Username: "svc-esd",
//	    Password: "password",
//	    Domain:   "CORP",
//	})
//	client.Transport = a.Transport(http.DefaultTransport)
package auth
