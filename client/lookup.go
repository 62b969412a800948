package client

import (
	"context"
	"encoding/json"

	"github.com/hyperborea-go/hyperborea/crypto"
	"github.com/hyperborea-go/hyperborea/hberrors"
	"github.com/hyperborea-go/hyperborea/restapi"
)

// LookupNotFound is returned by Lookup when every reachable server has
// been exhausted without a local or remote disposition.
var LookupNotFound = lookupNotFoundError{}

type lookupNotFoundError struct{}

func (lookupNotFoundError) Error() string { return "target public key not found on any reachable server" }

// Lookup resolves targetPK starting from the connected server,
// breadth-first chasing hint servers until a local or remote
// disposition is returned or every candidate address has been tried.
// The same signed request (and its proof seed) is reused across every
// hop: each server independently signs the seed in its own response,
// so there is no need to mint a fresh one per hop.
func (c *Connected) Lookup(ctx context.Context, targetPK crypto.PublicKey, clientType *restapi.ClientType) (restapi.LookupResult, error) {
	req, err := restapi.NewRequest(c.secret, restapi.LookupRequestBody{PublicKey: targetPK, ClientType: clientType})
	if err != nil {
		return restapi.LookupResult{}, err
	}

	raw, err := json.Marshal(req)
	if err != nil {
		return restapi.LookupResult{}, hberrors.Wrap(hberrors.KindSerialization, "encode lookup request", err)
	}

	queue := []restapi.Server{{Address: c.server.Address, PublicKey: c.server.PublicKey}}
	used := make(map[string]struct{})

	for len(queue) > 0 {
		hop := queue[0]
		queue = queue[1:]

		if _, seen := used[hop.Address]; seen {
			continue
		}
		used[hop.Address] = struct{}{}

		rawResp, err := c.transport.Post(ctx, hop.Address, "/api/v1/lookup", raw)
		if err != nil {
			continue // per-hop transport errors: skip and continue
		}

		var resp restapi.Response[restapi.LookupResult]
		if err := json.Unmarshal(rawResp, &resp); err != nil {
			continue
		}
		if !resp.Status.IsSuccess() || resp.Body == nil {
			continue
		}
		// Each hop is validated against the public key known for that
		// address (the connected server for the first hop, or the
		// server record the hint that queued it came from), so an
		// untrusted or spoofed hop can't hand back a forged result.
		if err := resp.Validate(hop.PublicKey, req.ProofSeed); err != nil {
			continue
		}

		switch resp.Body.Disposition {
		case restapi.DispositionLocal, restapi.DispositionRemote:
			return *resp.Body, nil
		case restapi.DispositionHint:
			for _, hint := range resp.Body.Servers {
				if _, seen := used[hint.Address]; !seen {
					queue = append(queue, hint)
				}
			}
		}
	}

	return restapi.LookupResult{}, LookupNotFound
}
