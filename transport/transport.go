// Package transport declares the pluggable collaborator the protocol
// core is deliberately agnostic to: a GET/POST-with-JSON abstraction.
// The default implementation (transport/http) is a thin net/http
// wrapper; alternate transports (see transport/ws for a WebSocket
// variant) only need to satisfy this interface to be usable by the
// client middleware.
package transport

import "context"

// Transport performs the two HTTP verbs the protocol's endpoints use.
// address is an opaque host:port (or similar) string from a Server
// record; path is the endpoint path beginning with "/api/v1/".
type Transport interface {
	// Get issues a GET request and returns the raw response body.
	Get(ctx context.Context, address, path string) ([]byte, error)

	// Post issues a POST request with a JSON body and returns the raw
	// response body.
	Post(ctx context.Context, address, path string, body []byte) ([]byte, error)
}
