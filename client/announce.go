package client

import (
	"context"

	"github.com/hyperborea-go/hyperborea/restapi"
)

// Announce tells the server at address about this client's connection
// to its own connected server, so that server's routing table can
// answer remote lookups for this client without bouncing back through
// the connected server first. It reuses Connect's GET /info dance to
// learn and verify the target server's public key before posting.
func (c *Connected) Announce(ctx context.Context, address string) error {
	serverPK, err := fetchServerIdentity(ctx, c.transport, address)
	if err != nil {
		return err
	}

	client := restapi.Client{
		PublicKey:   c.PublicKey(),
		Certificate: c.cert,
		Info:        restapi.ClientInfo{ClientType: restapi.ClientTypeThin},
	}

	req, err := restapi.NewRequest(c.secret, restapi.AnnounceRequestBody{
		Kind:   restapi.AnnounceKindClient,
		Client: &client,
		Server: &c.server,
	})
	if err != nil {
		return err
	}

	resp, err := postRequest[restapi.AnnounceRequestBody, restapi.EmptyBody](ctx, c.transport, address, "/api/v1/announce", req)
	if err != nil {
		return err
	}
	return resp.Validate(serverPK, req.ProofSeed)
}
