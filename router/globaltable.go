package router

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/hyperborea-go/hyperborea/crypto"
	"github.com/hyperborea-go/hyperborea/restapi"
)

const (
	// DefaultCapacity bounds each of the three stores.
	DefaultCapacity = 4096
	// DefaultTimeToIdle evicts an entry that has not been touched for
	// this long.
	DefaultTimeToIdle = 30 * time.Minute
)

type remoteEntry struct {
	client restapi.Client
	server restapi.Server
}

// GlobalTableRouter is the default Router: three independent
// expirable LRU caches, one per store, each bounded by capacity and
// time-to-idle. It is safe for concurrent use; each call into a store
// is serialized by that cache's internal lock.
type GlobalTableRouter struct {
	local  *expirable.LRU[[33]byte, restapi.Client]
	remote *expirable.LRU[[33]byte, remoteEntry]
	server *expirable.LRU[[33]byte, restapi.Server]
}

// NewGlobalTableRouter builds a router with the given per-store
// capacity and time-to-idle. Pass capacity<=0 or ttl<=0 to fall back to
// the package defaults.
func NewGlobalTableRouter(capacity int, ttl time.Duration) *GlobalTableRouter {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if ttl <= 0 {
		ttl = DefaultTimeToIdle
	}

	return &GlobalTableRouter{
		local:  expirable.NewLRU[[33]byte, restapi.Client](capacity, nil, ttl),
		remote: expirable.NewLRU[[33]byte, remoteEntry](capacity, nil, ttl),
		server: expirable.NewLRU[[33]byte, restapi.Server](capacity, nil, ttl),
	}
}

func (r *GlobalTableRouter) IndexLocal(client restapi.Client) bool {
	key := keyOf(client.PublicKey)
	_, existed := r.local.Peek(key)
	r.local.Add(key, client)
	return !existed
}

func (r *GlobalTableRouter) IndexRemote(client restapi.Client, server restapi.Server) bool {
	key := keyOf(client.PublicKey)
	_, existed := r.remote.Peek(key)
	r.remote.Add(key, remoteEntry{client: client, server: server})
	return !existed
}

func (r *GlobalTableRouter) IndexServer(server restapi.Server) bool {
	key := keyOf(server.PublicKey)
	_, existed := r.server.Peek(key)
	r.server.Add(key, server)
	return !existed
}

func matchesType(info restapi.ClientInfo, filter *restapi.ClientType) bool {
	return filter == nil || info.ClientType == *filter
}

// LookupLocal looks up pk among locally-connected clients. Get/Peek
// never refresh expirable.LRU's ExpiresAt; only Add does, so a hit is
// re-Added to renew time-to-idle on access, matching the "refreshed on
// access" routing-table lifecycle.
func (r *GlobalTableRouter) LookupLocal(pk crypto.PublicKey, clientType *restapi.ClientType) (restapi.Client, bool, bool) {
	key := keyOf(pk)
	client, ok := r.local.Peek(key)
	if !ok || !matchesType(client.Info, clientType) {
		return restapi.Client{}, false, false
	}
	r.local.Add(key, client)
	return client, true, true
}

// LookupRemote looks up pk among clients known through another
// server. See LookupLocal for why the hit is re-Added.
func (r *GlobalTableRouter) LookupRemote(pk crypto.PublicKey, clientType *restapi.ClientType) (restapi.Client, restapi.Server, bool, bool) {
	key := keyOf(pk)
	entry, ok := r.remote.Peek(key)
	if !ok || !matchesType(entry.client.Info, clientType) {
		return restapi.Client{}, restapi.Server{}, false, false
	}
	r.remote.Add(key, entry)
	return entry.client, entry.server, true, true
}

func (r *GlobalTableRouter) LookupHint(pk crypto.PublicKey, clientType *restapi.ClientType) []restapi.Server {
	return r.ListServers()
}

func (r *GlobalTableRouter) ListLocal() []restapi.Client {
	return r.local.Values()
}

func (r *GlobalTableRouter) ListRemote() []restapi.Client {
	entries := r.remote.Values()
	out := make([]restapi.Client, len(entries))
	for i, e := range entries {
		out[i] = e.client
	}
	return out
}

func (r *GlobalTableRouter) ListServers() []restapi.Server {
	return r.server.Values()
}

var _ Router = (*GlobalTableRouter)(nil)
