package client_test

import (
	"context"
	"net/http/httptest"
	"strings"
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

// testAddress strips the http:// scheme httptest.Server adds, since
// transport.Transport addresses are opaque host:port strings that the
// HTTPTransport itself re-prefixes with http://.
func testAddress(t *testing.T, serverURL string) string {
	t.Helper()
	return strings.TrimPrefix(serverURL, "http://")
}

func newTestServer(t *testing.T) (*httptest.Server, crypto.SecretKey) {
	t.Helper()
	secret, err := crypto.GenerateSecretKey()
	require.NoError(t, err)
	n := server.NewNode(secret, router.NewGlobalTableRouter(0, 0), inbox.NewBasicInbox(0, 0, 0))
	return httptest.NewServer(n.Routes()), secret
}

func TestConnectThenSendThenPoll(t *testing.T) {
	ts, serverSecret := newTestServer(t)
	defer ts.Close()

	ctx := context.Background()
	tr := httptransport.NewHTTPTransport()
	address := testAddress(t, ts.URL)

	clientSecret, err := crypto.GenerateSecretKey()
	require.NoError(t, err)

	conn, err := hyperboreaclient.Connect(ctx, tr, clientSecret, address)
	require.NoError(t, err)
	require.True(t, conn.Server().PublicKey.Equal(serverSecret.Public()))

	encoding := restapi.MessageEncoding{Encryption: crypto.EncryptionNone, Compression: crypto.CompressionNone}
	msg, err := restapi.CreateMessage(clientSecret, clientSecret.Public(), []byte("hello"), encoding, crypto.CompressionFast)
	require.NoError(t, err)

	require.NoError(t, conn.Send(ctx, clientSecret.Public(), "general", msg))

	messages, remaining, err := conn.Poll(ctx, "general", nil)
	require.NoError(t, err)
	require.Equal(t, 0, remaining)
	require.Len(t, messages, 1)

	plaintext, err := restapi.ReadMessage(clientSecret, clientSecret.Public(), messages[0].Message)
	require.NoError(t, err)
	require.Equal(t, []byte("hello"), plaintext)
}

func TestConnectToRejectsWrongServerKey(t *testing.T) {
	ts, _ := newTestServer(t)
	defer ts.Close()

	ctx := context.Background()
	tr := httptransport.NewHTTPTransport()
	address := testAddress(t, ts.URL)

	clientSecret, err := crypto.GenerateSecretKey()
	require.NoError(t, err)

	wrongKey, err := crypto.GenerateSecretKey()
	require.NoError(t, err)

	_, err = hyperboreaclient.ConnectTo(ctx, tr, clientSecret, address, wrongKey.Public())
	require.Error(t, err)
}
