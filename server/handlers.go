package server

import (
	"github.com/hyperborea-go/hyperborea/crypto"
	"github.com/hyperborea-go/hyperborea/inbox"
	"github.com/hyperborea-go/hyperborea/internal/logger"
	"github.com/hyperborea-go/hyperborea/restapi"
)

// HandleInfo answers GET /info: a fresh proof seed signed by the
// server's own secret key, self-authenticating the server's public
// key to any caller.
func (n *Node) HandleInfo() (restapi.InfoGetResponse, error) {
	seed, err := restapi.NewProofSeed()
	if err != nil {
		return restapi.InfoGetResponse{}, err
	}
	sig, err := crypto.Sign(n.secretKey, restapi.SeedBytes(seed))
	if err != nil {
		return restapi.InfoGetResponse{}, err
	}

	return restapi.InfoGetResponse{
		Standard: restapi.StandardVersion,
		Server:   restapi.ServerIdentity{PublicKey: n.PublicKey()},
		Proof:    restapi.InfoProof{Seed: seed, Signature: sig},
	}, nil
}

// HandleClients answers GET /clients with every locally connected
// client.
func (n *Node) HandleClients() restapi.ClientsGetResponse {
	return restapi.ClientsGetResponse{
		Standard: restapi.StandardVersion,
		Clients:  n.router.ListLocal(),
	}
}

// HandleServers answers GET /servers with every known server.
func (n *Node) HandleServers() restapi.ServersGetResponse {
	return restapi.ServersGetResponse{
		Standard: restapi.StandardVersion,
		Servers:  n.router.ListServers(),
	}
}

// HandleConnect answers POST /connect: it validates the certificate
// against this server's own key and the requester's enclosed public
// key, then upserts the client into the local-clients store.
func (n *Node) HandleConnect(req restapi.Request[restapi.ConnectRequestBody]) restapi.Response[restapi.EmptyBody] {
	cert := req.Body.Certificate

	if err := cert.Validate(req.PublicKey, n.PublicKey()); err != nil {
		n.log.Warn("connect rejected", logger.Error(err))
		return restapi.NewErrorResponse[restapi.EmptyBody](restapi.StatusRequestValidationFailed, err.Error())
	}

	client := restapi.Client{
		PublicKey:   req.PublicKey,
		Certificate: cert,
		Info:        req.Body.Client,
	}
	n.router.IndexLocal(client)

	resp, err := restapi.NewSuccessResponse(n.secretKey, req.ProofSeed, restapi.EmptyBody{})
	if err != nil {
		return restapi.NewErrorResponse[restapi.EmptyBody](restapi.StatusServerError, err.Error())
	}
	return resp
}

// HandleLookup answers POST /lookup: local disposition if the target
// is one of our own clients, remote disposition if another server has
// already announced it, otherwise a hint naming every known server.
func (n *Node) HandleLookup(req restapi.Request[restapi.LookupRequestBody]) restapi.Response[restapi.LookupResult] {
	target := req.Body.PublicKey
	filter := req.Body.ClientType

	if client, available, ok := n.router.LookupLocal(target, filter); ok {
		return n.successLookup(req.ProofSeed, restapi.LookupResult{
			Disposition: restapi.DispositionLocal,
			Client:      &client,
			Available:   &available,
		})
	}

	if client, srv, available, ok := n.router.LookupRemote(target, filter); ok {
		return n.successLookup(req.ProofSeed, restapi.LookupResult{
			Disposition: restapi.DispositionRemote,
			Client:      &client,
			Server:      &srv,
			Available:   &available,
		})
	}

	hints := n.router.LookupHint(target, filter)
	return n.successLookup(req.ProofSeed, restapi.LookupResult{
		Disposition: restapi.DispositionHint,
		Servers:     hints,
	})
}

func (n *Node) successLookup(seed uint64, result restapi.LookupResult) restapi.Response[restapi.LookupResult] {
	resp, err := restapi.NewSuccessResponse(n.secretKey, seed, result)
	if err != nil {
		return restapi.NewErrorResponse[restapi.LookupResult](restapi.StatusServerError, err.Error())
	}
	return resp
}

// HandleSend answers POST /send: it appends the message to the
// recipient's inbox without inspecting the inner message signature,
// which is the recipient's responsibility on poll.
func (n *Node) HandleSend(req restapi.Request[restapi.SendRequestBody]) restapi.Response[restapi.EmptyBody] {
	body := req.Body

	if n.maxMessageBytes > 0 && (len(body.Message.Content) > n.maxMessageBytes || len(body.Message.Signature) > n.maxMessageBytes) {
		return restapi.NewErrorResponse[restapi.EmptyBody](restapi.StatusMessageTooLarge, "message content or signature exceeds configured limit")
	}

	err := n.inbox.Add(body.Sender, body.ReceiverPublic, body.Channel, body.Message)
	if err == inbox.ErrInboxFull {
		return restapi.NewErrorResponse[restapi.EmptyBody](restapi.StatusClientInboxFull, err.Error())
	}
	if err != nil {
		return restapi.NewErrorResponse[restapi.EmptyBody](restapi.StatusServerError, err.Error())
	}

	resp, err := restapi.NewSuccessResponse(n.secretKey, req.ProofSeed, restapi.EmptyBody{})
	if err != nil {
		return restapi.NewErrorResponse[restapi.EmptyBody](restapi.StatusServerError, err.Error())
	}
	return resp
}

// HandlePoll answers POST /poll: the envelope's sender public key is
// the recipient identity, since a client can only poll its own inbox.
func (n *Node) HandlePoll(req restapi.Request[restapi.PollRequestBody]) restapi.Response[restapi.PollResponseBody] {
	messages, remaining := n.inbox.Poll(req.PublicKey, req.Body.Channel, req.Body.Limit)
	if messages == nil {
		messages = []restapi.MessageInfo{}
	}

	resp, err := restapi.NewSuccessResponse(n.secretKey, req.ProofSeed, restapi.PollResponseBody{
		Messages:  messages,
		Remaining: remaining,
	})
	if err != nil {
		return restapi.NewErrorResponse[restapi.PollResponseBody](restapi.StatusServerError, err.Error())
	}
	return resp
}

// HandleAnnounce answers POST /announce: an unsolicited routing-table
// update about a client connected elsewhere, or a bare server sighting.
// For the client variant, the certificate must be bound to the stated
// server, and is checked against that server's key, not this server's.
func (n *Node) HandleAnnounce(req restapi.Request[restapi.AnnounceRequestBody]) restapi.Response[restapi.EmptyBody] {
	body := req.Body

	switch body.Kind {
	case restapi.AnnounceKindClient:
		if body.Client == nil || body.Server == nil {
			return restapi.NewErrorResponse[restapi.EmptyBody](restapi.StatusInvalidRequestStructure, "announce client body missing client or server")
		}
		client := *body.Client
		srv := *body.Server
		if !client.PublicKey.Equal(req.PublicKey) {
			return restapi.NewErrorResponse[restapi.EmptyBody](restapi.StatusRequestValidationFailed, "announced client does not match the authenticated requester")
		}
		if err := client.Certificate.Validate(client.PublicKey, client.Certificate.Token.ServerPublic); err != nil {
			return restapi.NewErrorResponse[restapi.EmptyBody](restapi.StatusRequestValidationFailed, err.Error())
		}
		if !srv.PublicKey.Equal(client.Certificate.Token.ServerPublic) {
			return restapi.NewErrorResponse[restapi.EmptyBody](restapi.StatusRequestValidationFailed, "announced server does not match the client's certificate")
		}
		n.router.IndexRemote(client, srv)

	case restapi.AnnounceKindServer:
		if body.Server == nil {
			return restapi.NewErrorResponse[restapi.EmptyBody](restapi.StatusInvalidRequestStructure, "announce server body missing server")
		}
		n.router.IndexServer(*body.Server)

	default:
		return restapi.NewErrorResponse[restapi.EmptyBody](restapi.StatusInvalidRequestStructure, "unknown announce kind")
	}

	resp, err := restapi.NewSuccessResponse(n.secretKey, req.ProofSeed, restapi.EmptyBody{})
	if err != nil {
		return restapi.NewErrorResponse[restapi.EmptyBody](restapi.StatusServerError, err.Error())
	}
	return resp
}
