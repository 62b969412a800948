// Package ws is an optional transport.Transport variant: one persistent
// WebSocket connection per server address multiplexes many
// GET/POST-shaped request/response pairs, each correlated by a frame
// ID, in the style of the project's own WebSocket transport (a
// persistent connection, a pending-response map keyed by request ID,
// and a background read loop dispatching replies to waiting callers).
// The server side only answers requests; it sends no unsolicited frames.
package ws

import "encoding/json"

// requestFrame is one multiplexed request sent over the WebSocket
// connection.
type requestFrame struct {
	ID     string          `json:"id"`
	Method string          `json:"method"`
	Path   string          `json:"path"`
	Body   json.RawMessage `json:"body,omitempty"`
}

// responseFrame is the correlated reply to a requestFrame.
type responseFrame struct {
	ID     string          `json:"id"`
	Status int             `json:"status"`
	Body   json.RawMessage `json:"body,omitempty"`
	Error  string          `json:"error,omitempty"`
}
