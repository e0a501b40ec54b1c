// Package transport provides the HTTP/TLS transport for ESD server sessions.
//
// The transport layer handles:
//   - HTTP/HTTPS connections and TLS policy
//   - Per-scheme proxy routing
//   - Default headers and authentication wrapping
//   - Request/response handling
package transport
