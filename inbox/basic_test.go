package inbox

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperborea-go/hyperborea/crypto"
	"github.com/hyperborea-go/hyperborea/restapi"
)

func newSender(t *testing.T) restapi.Sender {
	t.Helper()
	sk, err := crypto.GenerateSecretKey()
	require.NoError(t, err)
	serverSK, err := crypto.GenerateSecretKey()
	require.NoError(t, err)
	cert, err := restapi.NewConnectionCertificate(sk, serverSK.Public())
	require.NoError(t, err)

	return restapi.Sender{
		Client: restapi.Client{PublicKey: sk.Public(), Certificate: cert, Info: restapi.ClientInfo{ClientType: restapi.ClientTypeThin}},
		Server: restapi.Server{PublicKey: serverSK.Public(), Address: "s1:9000"},
	}
}

func plainMessage(content string) restapi.Message {
	return restapi.Message{
		Content:   crypto.EncodeMessageBytes([]byte(content)),
		Signature: crypto.EncodeMessageBytes([]byte("sig")),
		Encoding:  restapi.MessageEncoding{Encryption: crypto.EncryptionNone, Compression: crypto.CompressionNone},
	}
}

func TestAddThenPollReturnsAllOnce(t *testing.T) {
	ib := NewBasicInbox(0, 0, 0)
	sender := newSender(t)
	recipientSK, err := crypto.GenerateSecretKey()
	require.NoError(t, err)
	recipient := recipientSK.Public()

	require.NoError(t, ib.Add(sender, recipient, "x", plainMessage("hi")))

	messages, remaining := ib.Poll(recipient, "x", nil)
	require.Len(t, messages, 1)
	assert.Equal(t, 0, remaining)

	messages, remaining = ib.Poll(recipient, "x", nil)
	assert.Empty(t, messages)
	assert.Equal(t, 0, remaining)
}

func TestPollChannelIsolation(t *testing.T) {
	ib := NewBasicInbox(0, 0, 0)
	sender := newSender(t)
	recipientSK, err := crypto.GenerateSecretKey()
	require.NoError(t, err)
	recipient := recipientSK.Public()

	require.NoError(t, ib.Add(sender, recipient, "x", plainMessage("1")))
	require.NoError(t, ib.Add(sender, recipient, "y", plainMessage("2")))
	require.NoError(t, ib.Add(sender, recipient, "x", plainMessage("3")))

	messages, remaining := ib.Poll(recipient, "x", nil)
	require.Len(t, messages, 2)
	assert.Equal(t, 1, remaining)

	messages, remaining = ib.Poll(recipient, "y", nil)
	require.Len(t, messages, 1)
	assert.Equal(t, 0, remaining)
}

func TestPollRespectsLimit(t *testing.T) {
	ib := NewBasicInbox(0, 0, 0)
	sender := newSender(t)
	recipientSK, err := crypto.GenerateSecretKey()
	require.NoError(t, err)
	recipient := recipientSK.Public()

	for i := 0; i < 5; i++ {
		require.NoError(t, ib.Add(sender, recipient, "x", plainMessage("m")))
	}

	limit := 2
	messages, remaining := ib.Poll(recipient, "x", &limit)
	require.Len(t, messages, 2)
	assert.Equal(t, 3, remaining)
}

func TestInboxSurvivesRepeatedPollsPastUnrefreshedTTL(t *testing.T) {
	ttl := 60 * time.Millisecond
	ib := NewBasicInbox(0, ttl, 0)
	sender := newSender(t)
	recipientSK, err := crypto.GenerateSecretKey()
	require.NoError(t, err)
	recipient := recipientSK.Public()

	require.NoError(t, ib.Add(sender, recipient, "x", plainMessage("hi")))

	deadline := time.Now().Add(150 * time.Millisecond)
	for time.Now().Before(deadline) {
		ib.Poll(recipient, "none-matching", nil)
		time.Sleep(ttl / 3)
	}

	messages, _ := ib.Poll(recipient, "x", nil)
	require.Len(t, messages, 1, "inbox must survive repeated polls well past the unrefreshed ttl")
}

func TestInboxExpiresWithoutAccess(t *testing.T) {
	ttl := 30 * time.Millisecond
	ib := NewBasicInbox(0, ttl, 0)
	sender := newSender(t)
	recipientSK, err := crypto.GenerateSecretKey()
	require.NoError(t, err)
	recipient := recipientSK.Public()

	require.NoError(t, ib.Add(sender, recipient, "x", plainMessage("hi")))

	time.Sleep(5 * ttl)

	messages, remaining := ib.Poll(recipient, "x", nil)
	assert.Empty(t, messages)
	assert.Equal(t, 0, remaining)
}

func TestAddReportsOverflow(t *testing.T) {
	ib := NewBasicInbox(0, 0, 1)
	sender := newSender(t)
	recipientSK, err := crypto.GenerateSecretKey()
	require.NoError(t, err)
	recipient := recipientSK.Public()

	require.NoError(t, ib.Add(sender, recipient, "x", plainMessage("1")))
	err = ib.Add(sender, recipient, "x", plainMessage("2"))
	assert.ErrorIs(t, err, ErrInboxFull)
}
