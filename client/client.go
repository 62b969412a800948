// Package client implements the connect/lookup/send/poll middleware a
// hyperborea peer uses to speak to a server: a thin decoder/encoder
// layer over transport.Transport plus the connected-client state.
package client

import (
	"context"
	"encoding/json"

	"github.com/hyperborea-go/hyperborea/crypto"
	"github.com/hyperborea-go/hyperborea/hberrors"
	"github.com/hyperborea-go/hyperborea/restapi"
	"github.com/hyperborea-go/hyperborea/transport"
)

// Connected bundles everything a connected client needs to send,
// poll, or look things up through its connected server: the secret
// key that proves its identity, the transport it speaks through, the
// server record it authenticated against, and the certificate that
// authentication produced.
type Connected struct {
	transport transport.Transport
	secret    crypto.SecretKey
	server    restapi.Server
	cert      restapi.ConnectionCertificate
}

// Server returns the server record this client is connected to.
func (c *Connected) Server() restapi.Server { return c.server }

// PublicKey returns the client's own public key.
func (c *Connected) PublicKey() crypto.PublicKey { return c.secret.Public() }

// fetchServerIdentity performs GET /info against address and verifies
// the returned proof is self-signed by the claimed server key, used
// by both Connect (to discover who it's about to authenticate
// against) and Announce (to learn who it's about to vouch to).
func fetchServerIdentity(ctx context.Context, t transport.Transport, address string) (crypto.PublicKey, error) {
	raw, err := t.Get(ctx, address, "/api/v1/info")
	if err != nil {
		return crypto.PublicKey{}, err
	}

	var info restapi.InfoGetResponse
	if err := json.Unmarshal(raw, &info); err != nil {
		return crypto.PublicKey{}, hberrors.Wrap(hberrors.KindSerialization, "decode info response", err)
	}
	if info.Standard != restapi.StandardVersion {
		return crypto.PublicKey{}, hberrors.New(hberrors.KindSerialization, "info response has unsupported standard version")
	}

	ok, err := crypto.Verify(info.Server.PublicKey, restapi.SeedBytes(info.Proof.Seed), info.Proof.Signature)
	if err != nil {
		return crypto.PublicKey{}, hberrors.Wrap(hberrors.KindCrypto, "verify info proof", err)
	}
	if !ok {
		return crypto.PublicKey{}, hberrors.New(hberrors.KindValidation, "info proof signature does not verify")
	}

	return info.Server.PublicKey, nil
}

// Connect fetches the server's identity from GET /info, validates its
// self-signed proof, then authenticates against it via connect_to.
func Connect(ctx context.Context, t transport.Transport, secret crypto.SecretKey, address string) (*Connected, error) {
	serverPK, err := fetchServerIdentity(ctx, t, address)
	if err != nil {
		return nil, err
	}

	return ConnectTo(ctx, t, secret, address, serverPK)
}

// ConnectTo authenticates directly against a server whose public key
// is already known (skipping the GET /info round trip), via
// POST /connect.
func ConnectTo(ctx context.Context, t transport.Transport, secret crypto.SecretKey, address string, expectedServerPK crypto.PublicKey) (*Connected, error) {
	cert, err := restapi.NewConnectionCertificate(secret, expectedServerPK)
	if err != nil {
		return nil, err
	}

	req, err := restapi.NewRequest(secret, restapi.ConnectRequestBody{
		Certificate: cert,
		Client:      restapi.ClientInfo{ClientType: restapi.ClientTypeThin},
	})
	if err != nil {
		return nil, err
	}

	resp, err := postRequest[restapi.ConnectRequestBody, restapi.EmptyBody](ctx, t, address, "/api/v1/connect", req)
	if err != nil {
		return nil, err
	}
	if err := resp.Validate(expectedServerPK, req.ProofSeed); err != nil {
		return nil, err
	}

	return &Connected{
		transport: t,
		secret:    secret,
		server:    restapi.Server{PublicKey: expectedServerPK, Address: address},
		cert:      cert,
	}, nil
}

// Send delivers a message to receiverPK on the given channel, through
// the connected server (never another one).
func (c *Connected) Send(ctx context.Context, receiverPK crypto.PublicKey, channel string, msg restapi.Message) error {
	sender := restapi.Sender{
		Client: restapi.Client{PublicKey: c.PublicKey(), Certificate: c.cert},
		Server: c.server,
	}

	req, err := restapi.NewRequest(c.secret, restapi.SendRequestBody{
		Sender:         sender,
		ReceiverPublic: receiverPK,
		Channel:        channel,
		Message:        msg,
	})
	if err != nil {
		return err
	}

	resp, err := postRequest[restapi.SendRequestBody, restapi.EmptyBody](ctx, c.transport, c.server.Address, "/api/v1/send", req)
	if err != nil {
		return err
	}
	return resp.Validate(c.server.PublicKey, req.ProofSeed)
}

// Poll retrieves up to limit queued messages on channel from the
// connected server. limit == nil means "every matching entry".
func (c *Connected) Poll(ctx context.Context, channel string, limit *int) ([]restapi.MessageInfo, int, error) {
	req, err := restapi.NewRequest(c.secret, restapi.PollRequestBody{Channel: channel, Limit: limit})
	if err != nil {
		return nil, 0, err
	}

	resp, err := postRequest[restapi.PollRequestBody, restapi.PollResponseBody](ctx, c.transport, c.server.Address, "/api/v1/poll", req)
	if err != nil {
		return nil, 0, err
	}
	if err := resp.Validate(c.server.PublicKey, req.ProofSeed); err != nil {
		return nil, 0, err
	}
	return resp.Body.Messages, resp.Body.Remaining, nil
}

func postRequest[In any, Out any](ctx context.Context, t transport.Transport, address, path string, req restapi.Request[In]) (restapi.Response[Out], error) {
	raw, err := json.Marshal(req)
	if err != nil {
		return restapi.Response[Out]{}, hberrors.Wrap(hberrors.KindSerialization, "encode request", err)
	}

	rawResp, err := t.Post(ctx, address, path, raw)
	if err != nil {
		return restapi.Response[Out]{}, err
	}

	var resp restapi.Response[Out]
	if err := json.Unmarshal(rawResp, &resp); err != nil {
		return restapi.Response[Out]{}, hberrors.Wrap(hberrors.KindSerialization, "decode response", err)
	}
	return resp, nil
}
