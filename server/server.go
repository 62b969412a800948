// Package server implements the server-side RPC dispatch for the
// protocol's five mandatory operations plus the optional announce
// extension.
package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/hyperborea-go/hyperborea/crypto"
	"github.com/hyperborea-go/hyperborea/inbox"
	"github.com/hyperborea-go/hyperborea/internal/logger"
	"github.com/hyperborea-go/hyperborea/internal/metrics"
	"github.com/hyperborea-go/hyperborea/router"
)

// DefaultMaxMessageBytes bounds the encoded length of each of a single
// message's content and signature fields before the send handler
// rejects it with StatusMessageTooLarge.
const DefaultMaxMessageBytes = 1 << 20 // 1 MiB

// Node is a hyperborea server: its own identity, the routing table and
// inbox it serves, and the observability collaborators every handler
// reports through.
type Node struct {
	secretKey       crypto.SecretKey
	router          router.Router
	inbox           inbox.Inbox
	log             logger.Logger
	metrics         *metrics.Collector
	maxMessageBytes int
	startedAt       time.Time

	routesOnce sync.Once
	routes     http.Handler
}

// Option configures optional Node fields.
type Option func(*Node)

// WithMaxMessageBytes overrides DefaultMaxMessageBytes.
func WithMaxMessageBytes(n int) Option {
	return func(node *Node) { node.maxMessageBytes = n }
}

// WithLogger overrides the default logger.NewDefaultLogger (JSON lines
// on stdout).
func WithLogger(l logger.Logger) Option {
	return func(node *Node) { node.log = l }
}

// WithMetrics attaches a metrics collector; handlers report through it
// when set.
func WithMetrics(m *metrics.Collector) Option {
	return func(node *Node) { node.metrics = m }
}

// NewNode constructs a server identity around a secret key, router,
// and inbox.
func NewNode(secretKey crypto.SecretKey, rt router.Router, ib inbox.Inbox, opts ...Option) *Node {
	n := &Node{
		secretKey:       secretKey,
		router:          rt,
		inbox:           ib,
		log:             logger.NewDefaultLogger(),
		maxMessageBytes: DefaultMaxMessageBytes,
		startedAt:       time.Now(),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// PublicKey returns the server's own public key.
func (n *Node) PublicKey() crypto.PublicKey {
	return n.secretKey.Public()
}

func (n *Node) observe(operation, status string, start time.Time) {
	if n.metrics == nil {
		return
	}
	n.metrics.ObserveRPC(operation, status, time.Since(start).Seconds())
}
