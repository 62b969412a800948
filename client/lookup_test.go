package client_test

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	hyperboreaclient "github.com/hyperborea-go/hyperborea/client"
	"github.com/hyperborea-go/hyperborea/crypto"
	"github.com/hyperborea-go/hyperborea/inbox"
	"github.com/hyperborea-go/hyperborea/restapi"
	"github.com/hyperborea-go/hyperborea/router"
	"github.com/hyperborea-go/hyperborea/server"
	httptransport "github.com/hyperborea-go/hyperborea/transport/http"
)

// TestLookupRejectsHintWithWrongPublicKey exercises the per-hop proof
// check directly: if a hint server's advertised public key doesn't
// match the key that actually signs its response, the hop must be
// rejected rather than trusted.
func TestLookupRejectsHintWithWrongPublicKey(t *testing.T) {
	ctx := context.Background()
	tr := httptransport.NewHTTPTransport()

	hostSecret, err := crypto.GenerateSecretKey()
	require.NoError(t, err)
	n := server.NewNode(hostSecret, router.NewGlobalTableRouter(0, 0), inbox.NewBasicInbox(0, 0, 0))
	ts := httptest.NewServer(n.Routes())
	defer ts.Close()

	clientSecret, err := crypto.GenerateSecretKey()
	require.NoError(t, err)

	impersonatedKey, err := crypto.GenerateSecretKey()
	require.NoError(t, err)

	entryRouter := router.NewGlobalTableRouter(0, 0)
	entryRouter.IndexServer(restapi.Server{PublicKey: impersonatedKey.Public(), Address: testAddress(t, ts.URL)})

	entrySecret, err := crypto.GenerateSecretKey()
	require.NoError(t, err)
	entryNode := server.NewNode(entrySecret, entryRouter, inbox.NewBasicInbox(0, 0, 0))
	entryTS := httptest.NewServer(entryNode.Routes())
	defer entryTS.Close()

	conn, err := hyperboreaclient.Connect(ctx, tr, clientSecret, testAddress(t, entryTS.URL))
	require.NoError(t, err)

	target, err := crypto.GenerateSecretKey()
	require.NoError(t, err)

	// The hint names ts's address but the wrong public key, so the
	// real server's genuine signature fails validation against the
	// claimed key and the hop is skipped rather than trusted.
	_, err = conn.Lookup(ctx, target.Public(), nil)
	require.ErrorIs(t, err, hyperboreaclient.LookupNotFound)
}

func TestLookupChasesHintToRemoteServer(t *testing.T) {
	ctx := context.Background()
	tr := httptransport.NewHTTPTransport()

	entrySecret, err := crypto.GenerateSecretKey()
	require.NoError(t, err)
	entryRouter := router.NewGlobalTableRouter(0, 0)
	entryNode := server.NewNode(entrySecret, entryRouter, inbox.NewBasicInbox(0, 0, 0))
	entryTS := httptest.NewServer(entryNode.Routes())
	defer entryTS.Close()

	targetSecret, err := crypto.GenerateSecretKey()
	require.NoError(t, err)
	targetHostSecret, err := crypto.GenerateSecretKey()
	require.NoError(t, err)
	targetRouter := router.NewGlobalTableRouter(0, 0)
	targetNode := server.NewNode(targetHostSecret, targetRouter, inbox.NewBasicInbox(0, 0, 0))
	targetTS := httptest.NewServer(targetNode.Routes())
	defer targetTS.Close()

	// target is connected locally to the second server
	cert, err := restapi.NewConnectionCertificate(targetSecret, targetHostSecret.Public())
	require.NoError(t, err)
	targetRouter.IndexLocal(restapi.Client{
		PublicKey:   targetSecret.Public(),
		Certificate: cert,
		Info:        restapi.ClientInfo{ClientType: restapi.ClientTypeThin},
	})

	// entry server only knows of the second server as a hint
	entryRouter.IndexServer(restapi.Server{
		PublicKey: targetHostSecret.Public(),
		Address:   testAddress(t, targetTS.URL),
	})

	clientSecret, err := crypto.GenerateSecretKey()
	require.NoError(t, err)

	conn, err := hyperboreaclient.Connect(ctx, tr, clientSecret, testAddress(t, entryTS.URL))
	require.NoError(t, err)

	result, err := conn.Lookup(ctx, targetSecret.Public(), nil)
	require.NoError(t, err)
	require.Equal(t, restapi.DispositionLocal, result.Disposition)
	require.NotNil(t, result.Client)
	require.True(t, result.Client.PublicKey.Equal(targetSecret.Public()))
}

func TestLookupReturnsNotFoundWhenExhausted(t *testing.T) {
	ctx := context.Background()
	tr := httptransport.NewHTTPTransport()

	secret, err := crypto.GenerateSecretKey()
	require.NoError(t, err)
	n := server.NewNode(secret, router.NewGlobalTableRouter(0, 0), inbox.NewBasicInbox(0, 0, 0))
	ts := httptest.NewServer(n.Routes())
	defer ts.Close()

	clientSecret, err := crypto.GenerateSecretKey()
	require.NoError(t, err)

	conn, err := hyperboreaclient.Connect(ctx, tr, clientSecret, testAddress(t, ts.URL))
	require.NoError(t, err)

	target, err := crypto.GenerateSecretKey()
	require.NoError(t, err)

	_, err = conn.Lookup(ctx, target.Public(), nil)
	require.ErrorIs(t, err, hyperboreaclient.LookupNotFound)
}
