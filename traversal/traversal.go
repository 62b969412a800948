// Package traversal implements the server's periodic BFS discovery
// engine: it walks the known-servers graph via GET /servers and
// indexes everything it discovers into the routing table. The engine
// holds no key of its own: each hop is a plain unsigned GET through a
// transport.Transport, not a request made as the server's own client.
package traversal

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/hyperborea-go/hyperborea/hberrors"
	"github.com/hyperborea-go/hyperborea/internal/logger"
	"github.com/hyperborea-go/hyperborea/internal/metrics"
	"github.com/hyperborea-go/hyperborea/restapi"
	"github.com/hyperborea-go/hyperborea/router"
	"github.com/hyperborea-go/hyperborea/transport"
)

// DefaultInterval is how often a periodic Engine runs a full sweep.
const DefaultInterval = 5 * time.Minute

// Engine owns one BFS-with-deduplication sweep over the servers known
// to router, seeded with every server router currently lists. Each
// sweep pops a server, GETs its
// /servers list, indexes every server returned, and enqueues the ones
// not yet visited.
type Engine struct {
	transport transport.Transport
	router    router.Router
	log       logger.Logger
	metrics   *metrics.Collector
	interval  time.Duration

	stopOnce sync.Once
	stopCh   chan struct{}
}

// Option configures optional Engine fields.
type Option func(*Engine)

// WithInterval overrides DefaultInterval.
func WithInterval(d time.Duration) Option {
	return func(e *Engine) { e.interval = d }
}

// WithLogger overrides the default logger.NewDefaultLogger (JSON lines
// on stdout).
func WithLogger(l logger.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// WithMetrics attaches a metrics collector; Sweep reports through it
// when set.
func WithMetrics(m *metrics.Collector) Option {
	return func(e *Engine) { e.metrics = m }
}

// NewEngine builds a traversal engine over rt, speaking through t.
func NewEngine(t transport.Transport, rt router.Router, opts ...Option) *Engine {
	e := &Engine{
		transport: t,
		router:    rt,
		log:       logger.NewDefaultLogger(),
		interval:  DefaultInterval,
		stopCh:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Sweep performs one BFS pass over every server currently known to
// the routing table, indexing everything newly discovered. It never
// returns an error: per-hop failures are logged and skipped, matching
// the lookup middleware's "skip and continue" failure semantics.
func (e *Engine) Sweep(ctx context.Context) {
	start := time.Now()
	hops := 0

	queue := e.router.ListServers()
	used := make(map[string]struct{}, len(queue))

	for len(queue) > 0 {
		srv := queue[0]
		queue = queue[1:]

		addrKey := srv.Address
		if _, seen := used[addrKey]; seen {
			continue
		}
		used[addrKey] = struct{}{}

		discovered, err := e.getServers(ctx, srv.Address)
		if err != nil {
			e.log.Warn("traversal hop failed", logger.String("address", srv.Address), logger.Error(err))
			continue
		}
		hops++

		for _, next := range discovered {
			e.router.IndexServer(next)
			if _, seen := used[next.Address]; !seen {
				queue = append(queue, next)
			}
		}
	}

	if e.metrics != nil {
		e.metrics.TraversalHopsTotal.Add(float64(hops))
	}
	e.log.Debug("traversal sweep complete", logger.Int("hops", hops), logger.Duration("elapsed", time.Since(start)))
}

func (e *Engine) getServers(ctx context.Context, address string) ([]restapi.Server, error) {
	raw, err := e.transport.Get(ctx, address, "/api/v1/servers")
	if err != nil {
		return nil, err
	}

	var resp restapi.ServersGetResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, hberrors.Wrap(hberrors.KindSerialization, "decode servers response", err)
	}
	if resp.Standard != restapi.StandardVersion {
		return nil, hberrors.New(hberrors.KindSerialization, "servers response has unsupported standard version")
	}
	return resp.Servers, nil
}

// Run executes Sweep once immediately, then every interval, until
// Stop is called or ctx is cancelled.
func (e *Engine) Run(ctx context.Context) {
	e.Sweep(ctx)

	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-e.stopCh:
			return
		case <-ticker.C:
			e.Sweep(ctx)
		}
	}
}

// Stop halts a running Run loop.
func (e *Engine) Stop() {
	e.stopOnce.Do(func() { close(e.stopCh) })
}
