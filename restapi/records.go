package restapi

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/hyperborea-go/hyperborea/crypto"
	"github.com/hyperborea-go/hyperborea/hberrors"
)

// ClientType namespaces a public key within lookup and connect. The
// same public key may legitimately be registered under several types.
type ClientType string

const (
	ClientTypeThin   ClientType = "thin"
	ClientTypeThick  ClientType = "thick"
	ClientTypeServer ClientType = "server"
	ClientTypeFile   ClientType = "file"
)

// Valid reports whether t is one of the four wire-defined client
// types.
func (t ClientType) Valid() bool {
	switch t {
	case ClientTypeThin, ClientTypeThick, ClientTypeServer, ClientTypeFile:
		return true
	default:
		return false
	}
}

// ClientInfo describes a client's namespace and, for non-thin types,
// its reachable address.
type ClientInfo struct {
	ClientType ClientType `json:"client_type"`
	Address    string     `json:"address,omitempty"`
}

// ConnectionTokenSize is the fixed binary length of a ConnectionToken:
// 8 bytes of big-endian auth date followed by a 33-byte compressed
// public key.
const ConnectionTokenSize = 8 + 33

// ConnectionToken records when a client authenticated to which server.
type ConnectionToken struct {
	AuthDate     uint64
	ServerPublic crypto.PublicKey
}

// Bytes serializes the token to its fixed 41-byte wire layout.
func (t ConnectionToken) Bytes() []byte {
	out := make([]byte, ConnectionTokenSize)
	binary.BigEndian.PutUint64(out[0:8], t.AuthDate)
	pk := t.ServerPublic.Bytes()
	copy(out[8:41], pk[:])
	return out
}

// ConnectionTokenFromBytes parses the fixed 41-byte layout produced by
// Bytes.
func ConnectionTokenFromBytes(b []byte) (ConnectionToken, error) {
	if len(b) != ConnectionTokenSize {
		return ConnectionToken{}, fmt.Errorf("connection token must be %d bytes, got %d", ConnectionTokenSize, len(b))
	}
	authDate := binary.BigEndian.Uint64(b[0:8])
	pk, err := crypto.PublicKeyFromBytes(b[8:41])
	if err != nil {
		return ConnectionToken{}, fmt.Errorf("connection token server key: %w", err)
	}
	return ConnectionToken{AuthDate: authDate, ServerPublic: pk}, nil
}

// NewConnectionToken stamps a token for serverPublic with the current
// time.
func NewConnectionToken(serverPublic crypto.PublicKey) ConnectionToken {
	return ConnectionToken{AuthDate: uint64(time.Now().Unix()), ServerPublic: serverPublic}
}

// ConnectionCertificate proves a client is (or was) connected to a
// specific server at a specific time: the client's signature over the
// token's binary serialization.
type ConnectionCertificate struct {
	Token     ConnectionToken `json:"token"`
	Signature []byte          `json:"signature"`
}

// NewConnectionCertificate builds and signs a certificate binding
// clientSecret to serverPublic.
func NewConnectionCertificate(clientSecret crypto.SecretKey, serverPublic crypto.PublicKey) (ConnectionCertificate, error) {
	token := NewConnectionToken(serverPublic)
	sig, err := crypto.Sign(clientSecret, token.Bytes())
	if err != nil {
		return ConnectionCertificate{}, hberrors.Wrap(hberrors.KindCrypto, "sign connection certificate", err)
	}
	return ConnectionCertificate{Token: token, Signature: sig}, nil
}

// Validate reports whether the certificate was issued by clientPublic
// for expectedServer: the token's server_public must match
// expectedServer, and the signature must verify under clientPublic.
func (c ConnectionCertificate) Validate(clientPublic, expectedServer crypto.PublicKey) error {
	if !c.Token.ServerPublic.Equal(expectedServer) {
		return hberrors.New(hberrors.KindValidation, "certificate bound to a different server")
	}
	ok, err := crypto.Verify(clientPublic, c.Token.Bytes(), c.Signature)
	if err != nil {
		return hberrors.Wrap(hberrors.KindCrypto, "verify connection certificate", err)
	}
	if !ok {
		return hberrors.New(hberrors.KindValidation, "invalid certificate signature")
	}
	return nil
}

// Client is a routing-table record: a public key, the certificate
// binding it to a server, and its namespace/address info.
type Client struct {
	PublicKey   crypto.PublicKey       `json:"public_key"`
	Certificate ConnectionCertificate  `json:"certificate"`
	Info        ClientInfo             `json:"info"`
}

// Server is a routing-table record naming a known server and its
// opaque network address.
type Server struct {
	PublicKey crypto.PublicKey `json:"public_key"`
	Address   string           `json:"address"`
}

// Sender is embedded in every delivered message so the recipient knows
// where the sender can be reached for a reply.
type Sender struct {
	Client Client `json:"client"`
	Server Server `json:"server"`
}
