package restapi

import "github.com/hyperborea-go/hyperborea/crypto"

// InfoGetResponse is the literal GET /info response body: unlike the
// POST endpoints it is not wrapped in a Response envelope, because the
// response is itself a self-contained proof of the server's key
// ownership (the client validates Proof.Signature against Proof.Seed
// under Server.PublicKey).
type InfoGetResponse struct {
	Standard int            `json:"standard"`
	Server   ServerIdentity `json:"server"`
	Proof    InfoProof      `json:"proof"`
}

// ServerIdentity names a server by public key only, used by /info
// where no address is meaningful (the caller already has one).
type ServerIdentity struct {
	PublicKey crypto.PublicKey `json:"public_key"`
}

// InfoProof is the fresh seed and its signature returned by /info; a
// client validates the signature against the returned seed under
// server_public to confirm the server holds the claimed key.
type InfoProof struct {
	Seed      uint64 `json:"seed"`
	Signature []byte `json:"sign"`
}

// ClientsGetResponse is the literal GET /clients response body.
type ClientsGetResponse struct {
	Standard int      `json:"standard"`
	Clients  []Client `json:"clients"`
}

// ServersGetResponse is the literal GET /servers response body.
type ServersGetResponse struct {
	Standard int      `json:"standard"`
	Servers  []Server `json:"servers"`
}

// ConnectRequestBody is the POST /connect body: a certificate proving
// the requester's identity and the client's declared namespace/info.
type ConnectRequestBody struct {
	Certificate ConnectionCertificate `json:"certificate"`
	Client      ClientInfo            `json:"client"`
}

// EmptyBody is used for operations whose success response carries no
// payload (connect, send, announce).
type EmptyBody struct{}

// Disposition names how a lookup resolved its target.
type Disposition string

const (
	DispositionLocal  Disposition = "local"
	DispositionRemote Disposition = "remote"
	DispositionHint   Disposition = "hint"
)

// LookupRequestBody is the POST /lookup body.
type LookupRequestBody struct {
	PublicKey  crypto.PublicKey `json:"public_key"`
	ClientType *ClientType      `json:"type,omitempty"`
}

// LookupResult is the disposition-tagged payload of a lookup response.
// Only the fields matching Disposition are populated.
type LookupResult struct {
	Disposition Disposition `json:"disposition"`
	Client      *Client     `json:"client,omitempty"`
	Server      *Server     `json:"server,omitempty"`
	Available   *bool       `json:"available,omitempty"`
	Servers     []Server    `json:"servers,omitempty"`
}

// SendRequestBody is the POST /send body.
type SendRequestBody struct {
	Sender         Sender           `json:"sender"`
	ReceiverPublic crypto.PublicKey `json:"receiver_public"`
	Channel        string           `json:"channel"`
	Message        Message          `json:"message"`
}

// PollRequestBody is the POST /poll body. Limit of nil means "return
// every matching entry".
type PollRequestBody struct {
	Channel string `json:"channel"`
	Limit   *int   `json:"limit,omitempty"`
}

// PollResponseBody is the POST /poll success body.
type PollResponseBody struct {
	Messages  []MessageInfo `json:"messages"`
	Remaining int           `json:"remaining"`
}

// AnnounceKind selects between the two announce body shapes.
type AnnounceKind string

const (
	AnnounceKindClient AnnounceKind = "client"
	AnnounceKindServer AnnounceKind = "server"
)

// AnnounceRequestBody is the POST /announce body: either a client
// (with the server it is connected to) or a bare server.
type AnnounceRequestBody struct {
	Kind   AnnounceKind `json:"kind"`
	Client *Client      `json:"client,omitempty"`
	Server *Server      `json:"server,omitempty"`
}
