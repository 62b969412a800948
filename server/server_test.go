package server_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hyperborea-go/hyperborea/crypto"
	"github.com/hyperborea-go/hyperborea/inbox"
	"github.com/hyperborea-go/hyperborea/restapi"
	"github.com/hyperborea-go/hyperborea/router"
	"github.com/hyperborea-go/hyperborea/server"
)

func newTestNode(t *testing.T) (*server.Node, crypto.SecretKey) {
	t.Helper()
	serverSecret, err := crypto.GenerateSecretKey()
	require.NoError(t, err)

	n := server.NewNode(serverSecret, router.NewGlobalTableRouter(0, 0), inbox.NewBasicInbox(0, 0, 0))
	return n, serverSecret
}

func postJSON[Out any](t *testing.T, url string, body any) restapi.Response[Out] {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)

	httpResp, err := http.Post(url, "application/json", bytes.NewReader(raw))
	require.NoError(t, err)
	defer httpResp.Body.Close()

	var resp restapi.Response[Out]
	require.NoError(t, json.NewDecoder(httpResp.Body).Decode(&resp))
	return resp
}

func connectClient(t *testing.T, baseURL string, clientSecret crypto.SecretKey, serverPublic crypto.PublicKey) restapi.ConnectionCertificate {
	t.Helper()
	cert, err := restapi.NewConnectionCertificate(clientSecret, serverPublic)
	require.NoError(t, err)

	req, err := restapi.NewRequest(clientSecret, restapi.ConnectRequestBody{
		Certificate: cert,
		Client:      restapi.ClientInfo{ClientType: restapi.ClientTypeThin},
	})
	require.NoError(t, err)

	resp := postJSON[restapi.EmptyBody](t, baseURL+"/api/v1/connect", req)
	require.True(t, resp.Status.IsSuccess(), "connect failed: %s", resp.Reason)
	return cert
}

func TestSelfSendThenPollReturnsOneMessage(t *testing.T) {
	n, serverSecret := newTestNode(t)
	ts := httptest.NewServer(n.Routes())
	defer ts.Close()

	clientSecret, err := crypto.GenerateSecretKey()
	require.NoError(t, err)
	serverPublic := serverSecret.Public()

	cert := connectClient(t, ts.URL, clientSecret, serverPublic)

	selfSender := restapi.Sender{
		Client: restapi.Client{PublicKey: clientSecret.Public(), Certificate: cert, Info: restapi.ClientInfo{ClientType: restapi.ClientTypeThin}},
		Server: restapi.Server{PublicKey: serverPublic},
	}

	encoding := restapi.MessageEncoding{Encryption: crypto.EncryptionNone, Compression: crypto.CompressionNone}
	msg, err := restapi.CreateMessage(clientSecret, clientSecret.Public(), []byte("hi"), encoding, crypto.CompressionFast)
	require.NoError(t, err)

	sendReq, err := restapi.NewRequest(clientSecret, restapi.SendRequestBody{
		Sender:         selfSender,
		ReceiverPublic: clientSecret.Public(),
		Channel:        "x",
		Message:        msg,
	})
	require.NoError(t, err)

	sendResp := postJSON[restapi.EmptyBody](t, ts.URL+"/api/v1/send", sendReq)
	require.True(t, sendResp.Status.IsSuccess(), "send failed: %s", sendResp.Reason)

	pollReq, err := restapi.NewRequest(clientSecret, restapi.PollRequestBody{Channel: "x"})
	require.NoError(t, err)

	pollResp := postJSON[restapi.PollResponseBody](t, ts.URL+"/api/v1/poll", pollReq)
	require.True(t, pollResp.Status.IsSuccess(), "poll failed: %s", pollResp.Reason)
	require.NotNil(t, pollResp.Body)
	require.Len(t, pollResp.Body.Messages, 1)
	require.Equal(t, 0, pollResp.Body.Remaining)

	plaintext, err := restapi.ReadMessage(clientSecret, clientSecret.Public(), pollResp.Body.Messages[0].Message)
	require.NoError(t, err)
	require.Equal(t, []byte("hi"), plaintext)

	secondPoll := postJSON[restapi.PollResponseBody](t, ts.URL+"/api/v1/poll", pollReq)
	require.True(t, secondPoll.Status.IsSuccess())
	require.Len(t, secondPoll.Body.Messages, 0)
}

func TestInfoReturnsSelfSignedProof(t *testing.T) {
	n, serverSecret := newTestNode(t)
	ts := httptest.NewServer(n.Routes())
	defer ts.Close()

	httpResp, err := http.Get(ts.URL + "/api/v1/info")
	require.NoError(t, err)
	defer httpResp.Body.Close()

	var info restapi.InfoGetResponse
	require.NoError(t, json.NewDecoder(httpResp.Body).Decode(&info))

	require.Equal(t, restapi.StandardVersion, info.Standard)
	require.True(t, info.Server.PublicKey.Equal(serverSecret.Public()))

	ok, err := crypto.Verify(info.Server.PublicKey, restapi.SeedBytes(info.Proof.Seed), info.Proof.Signature)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestSendRejectsOversizedSignature(t *testing.T) {
	serverSecret, err := crypto.GenerateSecretKey()
	require.NoError(t, err)
	n := server.NewNode(serverSecret, router.NewGlobalTableRouter(0, 0), inbox.NewBasicInbox(0, 0, 0),
		server.WithMaxMessageBytes(64))
	ts := httptest.NewServer(n.Routes())
	defer ts.Close()

	clientSecret, err := crypto.GenerateSecretKey()
	require.NoError(t, err)
	serverPublic := serverSecret.Public()
	cert := connectClient(t, ts.URL, clientSecret, serverPublic)

	sender := restapi.Sender{
		Client: restapi.Client{PublicKey: clientSecret.Public(), Certificate: cert, Info: restapi.ClientInfo{ClientType: restapi.ClientTypeThin}},
		Server: restapi.Server{PublicKey: serverPublic},
	}
	encoding := restapi.MessageEncoding{Encryption: crypto.EncryptionNone, Compression: crypto.CompressionNone}

	// Content is tiny but Signature is stuffed with attacker-controlled
	// bytes the server never inspects at send time: must still be bounded.
	msg := restapi.Message{
		Content:   "short",
		Signature: string(bytes.Repeat([]byte("a"), 1024)),
		Encoding:  encoding,
	}

	sendReq, err := restapi.NewRequest(clientSecret, restapi.SendRequestBody{
		Sender:         sender,
		ReceiverPublic: clientSecret.Public(),
		Channel:        "x",
		Message:        msg,
	})
	require.NoError(t, err)

	sendResp := postJSON[restapi.EmptyBody](t, ts.URL+"/api/v1/send", sendReq)
	require.False(t, sendResp.Status.IsSuccess())
	require.Equal(t, restapi.StatusMessageTooLarge, sendResp.Status)
}

func TestLookupReportsHintWhenUnknown(t *testing.T) {
	n, _ := newTestNode(t)
	ts := httptest.NewServer(n.Routes())
	defer ts.Close()

	clientSecret, err := crypto.GenerateSecretKey()
	require.NoError(t, err)

	target, err := crypto.GenerateSecretKey()
	require.NoError(t, err)

	lookupReq, err := restapi.NewRequest(clientSecret, restapi.LookupRequestBody{PublicKey: target.Public()})
	require.NoError(t, err)

	resp := postJSON[restapi.LookupResult](t, ts.URL+"/api/v1/lookup", lookupReq)
	require.True(t, resp.Status.IsSuccess())
	require.NotNil(t, resp.Body)
	require.Equal(t, restapi.DispositionHint, resp.Body.Disposition)
}
