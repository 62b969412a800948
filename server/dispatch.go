package server

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
)

// Dispatch answers one request the same way the node's HTTP routes
// do, by replaying it through the same mux with a recorded response.
// It lets transport/ws's Handler reuse every route and validation path
// Routes already wires, without this package depending on the ws
// transport at all (ws.Dispatcher is satisfied structurally).
func (n *Node) Dispatch(ctx context.Context, method, path string, body []byte) (status int, respBody []byte) {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req = req.WithContext(ctx)
	if method == http.MethodPost {
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	n.Routes().ServeHTTP(rec, req)

	return rec.Code, rec.Body.Bytes()
}
