// Package http is the default transport.Transport implementation: a
// thin wrapper over net/http.Client, in the style of the project's own
// HTTP transport idiom (construct request, set headers, read the
// whole body back).
package http

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hyperborea-go/hyperborea/hberrors"
	"github.com/hyperborea-go/hyperborea/transport"
)

// HTTPTransport issues GET/POST requests against node addresses of the
// form "host:port", scheme-prefixed with http://.
type HTTPTransport struct {
	client *http.Client
}

// NewHTTPTransport builds a transport with a default request timeout.
func NewHTTPTransport() *HTTPTransport {
	return NewHTTPTransportWithClient(&http.Client{Timeout: 10 * time.Second})
}

// NewHTTPTransportWithClient builds a transport around a caller-supplied
// client, letting callers customize timeouts, proxies, or TLS config.
func NewHTTPTransportWithClient(client *http.Client) *HTTPTransport {
	return &HTTPTransport{client: client}
}

func (t *HTTPTransport) url(address, path string) string {
	return fmt.Sprintf("http://%s%s", address, path)
}

func (t *HTTPTransport) Get(ctx context.Context, address, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.url(address, path), nil)
	if err != nil {
		return nil, hberrors.Wrap(hberrors.KindTransport, "build GET request", err)
	}
	return t.do(req)
}

func (t *HTTPTransport) Post(ctx context.Context, address, path string, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.url(address, path), bytes.NewReader(body))
	if err != nil {
		return nil, hberrors.Wrap(hberrors.KindTransport, "build POST request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return t.do(req)
}

func (t *HTTPTransport) do(req *http.Request) ([]byte, error) {
	resp, err := t.client.Do(req)
	if err != nil {
		return nil, hberrors.Wrap(hberrors.KindTransport, "perform request", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, hberrors.Wrap(hberrors.KindTransport, "read response body", err)
	}

	if resp.StatusCode >= 400 {
		return nil, hberrors.New(hberrors.KindTransport, fmt.Sprintf("unexpected HTTP status %d", resp.StatusCode))
	}

	return data, nil
}

var _ transport.Transport = (*HTTPTransport)(nil)
