// Package router implements the server's routing table: three
// capacity- and TTL-bounded public-key-keyed stores mapping keys to
// local clients, remote clients (with their hosting server), and known
// servers.
package router

import (
	"github.com/hyperborea-go/hyperborea/crypto"
	"github.com/hyperborea-go/hyperborea/restapi"
)

// Router is the capability contract the server and traversal engine
// depend on. The default implementation is GlobalTableRouter; any
// alternate backend is permitted provided it honors the same
// operations and invariants.
type Router interface {
	// IndexLocal upserts client into the local-clients store,
	// reporting whether the key was newly inserted.
	IndexLocal(client restapi.Client) bool

	// IndexRemote upserts client and the server hosting it into the
	// remote-clients store.
	IndexRemote(client restapi.Client, server restapi.Server) bool

	// IndexServer upserts server into the known-servers store.
	IndexServer(server restapi.Server) bool

	// LookupLocal returns the local client registered under pk, if
	// any, optionally filtered by clientType.
	LookupLocal(pk crypto.PublicKey, clientType *restapi.ClientType) (client restapi.Client, available bool, found bool)

	// LookupRemote returns the remote client and its server registered
	// under pk, if any, optionally filtered by clientType.
	LookupRemote(pk crypto.PublicKey, clientType *restapi.ClientType) (client restapi.Client, server restapi.Server, available bool, found bool)

	// LookupHint returns candidate servers likely to know pk. The
	// default implementation returns every known server.
	LookupHint(pk crypto.PublicKey, clientType *restapi.ClientType) []restapi.Server

	// ListLocal returns every locally connected client.
	ListLocal() []restapi.Client

	// ListRemote returns every known remote client.
	ListRemote() []restapi.Client

	// ListServers returns every known server.
	ListServers() []restapi.Server
}

func keyOf(pk crypto.PublicKey) [33]byte {
	return pk.Bytes()
}
