package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/hyperborea-go/hyperborea/hberrors"
	"github.com/hyperborea-go/hyperborea/transport"
)

// maxPeerConns and peerConnIdleTTL bound how many distinct-address
// connections a single Transport keeps open: a long-lived node whose
// lookups or traversal sweeps touch many addresses over its uptime
// must not accumulate an ever-growing, never-evicted connection set
// the way a bare map would.
const (
	maxPeerConns    = 256
	peerConnIdleTTL = 10 * time.Minute
)

// peerConn is one persistent WebSocket connection to a single server
// address: a dial, a background read loop, and a pending-response map
// keyed by frame ID so many requests may be in flight concurrently.
type peerConn struct {
	mu   sync.Mutex
	conn *websocket.Conn

	pendingMu sync.Mutex
	pending   map[string]chan responseFrame
}

// Transport implements transport.Transport over WebSocket connections,
// dialing and caching one peerConn per distinct address so a single
// Transport can be handed to multi-hop callers (client.Lookup's hint
// chasing, traversal.Engine's BFS sweep) the same way transport/http's
// Transport is, instead of being pinned to one server.
type Transport struct {
	defaultURL   string
	dialTimeout  time.Duration
	writeTimeout time.Duration
	readTimeout  time.Duration

	conns *expirable.LRU[string, *peerConn]
}

var _ transport.Transport = (*Transport)(nil)

// New builds a WebSocket transport. defaultURL is used whenever a
// caller passes an empty address (the single-peer case a bare
// ws.New(url) is typically constructed for); any other address dials
// its own independent connection on first use. Connections idle past
// peerConnIdleTTL, or evicted once maxPeerConns distinct addresses are
// in use, are closed automatically.
func New(defaultURL string) *Transport {
	t := &Transport{
		defaultURL:   defaultURL,
		dialTimeout:  10 * time.Second,
		writeTimeout: 10 * time.Second,
		readTimeout:  30 * time.Second,
	}
	t.conns = expirable.NewLRU[string, *peerConn](maxPeerConns, func(_ string, c *peerConn) {
		c.mu.Lock()
		if c.conn != nil {
			_ = c.conn.Close()
			c.conn = nil
		}
		c.mu.Unlock()
	}, peerConnIdleTTL)
	return t
}

func (t *Transport) targetFor(address string) string {
	if address == "" {
		return t.defaultURL
	}
	return address
}

func (t *Transport) connFor(target string) *peerConn {
	if c, ok := t.conns.Peek(target); ok {
		// Get/Peek never refresh ExpiresAt; re-Adding renews the idle TTL.
		t.conns.Add(target, c)
		return c
	}
	c := &peerConn{pending: make(map[string]chan responseFrame)}
	t.conns.Add(target, c)
	return c
}

func (t *Transport) ensureConnected(ctx context.Context, c *peerConn, target string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil {
		return nil
	}

	dialer := &websocket.Dialer{HandshakeTimeout: t.dialTimeout}
	conn, _, err := dialer.DialContext(ctx, target, nil)
	if err != nil {
		return hberrors.Wrap(hberrors.KindTransport, "websocket dial", err)
	}

	c.conn = conn
	go t.readLoop(c, conn)
	return nil
}

func (t *Transport) readLoop(c *peerConn, conn *websocket.Conn) {
	for {
		var frame responseFrame
		if err := conn.ReadJSON(&frame); err != nil {
			c.mu.Lock()
			if c.conn == conn {
				c.conn = nil
			}
			c.mu.Unlock()
			return
		}

		c.pendingMu.Lock()
		ch, ok := c.pending[frame.ID]
		c.pendingMu.Unlock()
		if ok {
			select {
			case ch <- frame:
			default:
			}
		}
	}
}

func (t *Transport) roundTrip(ctx context.Context, address, method, path string, body []byte) ([]byte, error) {
	target := t.targetFor(address)
	c := t.connFor(target)

	if err := t.ensureConnected(ctx, c, target); err != nil {
		return nil, err
	}

	id := uuid.NewString()
	respCh := make(chan responseFrame, 1)

	c.pendingMu.Lock()
	c.pending[id] = respCh
	c.pendingMu.Unlock()
	defer func() {
		c.pendingMu.Lock()
		delete(c.pending, id)
		c.pendingMu.Unlock()
	}()

	frame := requestFrame{ID: id, Method: method, Path: path, Body: body}

	c.mu.Lock()
	conn := c.conn
	if conn != nil {
		_ = conn.SetWriteDeadline(time.Now().Add(t.writeTimeout))
	}
	var writeErr error
	if conn == nil {
		writeErr = fmt.Errorf("not connected")
	} else {
		writeErr = conn.WriteJSON(frame)
	}
	c.mu.Unlock()
	if writeErr != nil {
		return nil, hberrors.Wrap(hberrors.KindTransport, "write request frame", writeErr)
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case resp := <-respCh:
		if resp.Error != "" {
			return nil, hberrors.New(hberrors.KindTransport, resp.Error)
		}
		if resp.Status >= 400 {
			return nil, hberrors.New(hberrors.KindTransport, fmt.Sprintf("unexpected status %d", resp.Status))
		}
		return []byte(resp.Body), nil
	case <-time.After(t.readTimeout):
		return nil, hberrors.New(hberrors.KindTransport, "response timeout")
	}
}

// Get issues a GET over the WebSocket connection for address (dialing
// it lazily on first use), or the transport's default connection when
// address is empty.
func (t *Transport) Get(ctx context.Context, address, path string) ([]byte, error) {
	return t.roundTrip(ctx, address, "GET", path, nil)
}

// Post issues a POST over the WebSocket connection for address, same
// address resolution as Get.
func (t *Transport) Post(ctx context.Context, address, path string, body []byte) ([]byte, error) {
	return t.roundTrip(ctx, address, "POST", path, json.RawMessage(body))
}

// Close tears down every connection this transport has opened. Purge
// runs the LRU's eviction callback for each cached peerConn, which
// closes its socket.
func (t *Transport) Close() error {
	t.conns.Purge()
	return nil
}
