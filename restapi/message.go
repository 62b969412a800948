package restapi

import (
	cryptorand "crypto/rand"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/hyperborea-go/hyperborea/crypto"
	"github.com/hyperborea-go/hyperborea/hberrors"
)

// saltSize is the length of the per-message HKDF salt: large enough
// that two messages between the same (sender, receiver) pair never
// derive the same AEAD key under the package's fixed per-algorithm
// nonce (crypto/aead.go).
const saltSize = 16

// MessageEncoding names the text encoding, symmetric encryption, and
// compression applied to a Message's content and signature fields. It
// serializes to the wire as "base64[/encryption][/compression]".
type MessageEncoding struct {
	Encryption  crypto.Encryption
	Compression crypto.Compression
}

// Format renders the encoding as its wire string.
func (e MessageEncoding) Format() string {
	parts := []string{"base64"}
	if e.Encryption != "" && e.Encryption != crypto.EncryptionNone {
		parts = append(parts, string(e.Encryption))
	}
	if e.Compression != "" && e.Compression != crypto.CompressionNone {
		parts = append(parts, string(e.Compression))
	}
	return strings.Join(parts, "/")
}

// ParseMessageEncoding parses the wire string produced by Format.
func ParseMessageEncoding(s string) (MessageEncoding, error) {
	parts := strings.Split(s, "/")
	if len(parts) == 0 || parts[0] != "base64" {
		return MessageEncoding{}, hberrors.New(hberrors.KindEncoding, fmt.Sprintf("encoding must start with base64, got %q", s))
	}

	enc := MessageEncoding{Encryption: crypto.EncryptionNone, Compression: crypto.CompressionNone}

	for _, part := range parts[1:] {
		switch crypto.Encryption(part) {
		case crypto.EncryptionAES256GCM, crypto.EncryptionChaCha20Poly1305:
			enc.Encryption = crypto.Encryption(part)
			continue
		}
		switch crypto.Compression(part) {
		case crypto.CompressionDeflate, crypto.CompressionBrotli:
			enc.Compression = crypto.Compression(part)
			continue
		}
		return MessageEncoding{}, hberrors.New(hberrors.KindEncoding, fmt.Sprintf("unknown encoding component %q in %q", part, s))
	}
	return enc, nil
}

// MarshalJSON renders the encoding as its wire string.
func (e MessageEncoding) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.Format())
}

// UnmarshalJSON parses the encoding from its wire string.
func (e *MessageEncoding) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("unmarshal message encoding: %w", err)
	}
	parsed, err := ParseMessageEncoding(s)
	if err != nil {
		return err
	}
	*e = parsed
	return nil
}

// Message is the end-to-end encrypted envelope exchanged between
// clients: content and signature have each gone through the same
// compress-then-encrypt-then-text-encode pipeline under a key derived
// with this message's own Salt. Salt is empty when Encoding carries no
// encryption, since no key is derived in that case.
type Message struct {
	Content   string          `json:"content"`
	Signature string          `json:"sign"`
	Encoding  MessageEncoding `json:"encoding"`
	Salt      string          `json:"salt,omitempty"`
}

// CreateMessage builds a Message for plaintext: it signs the
// plaintext with senderSecret, draws a fresh per-message salt and
// derives the shared secret with receiverPublic from it (crypto/aead.go's
// fixed per-algorithm nonce is safe only when every message derives a
// distinct key, per SharedSecret's salt parameter), then pipes both
// content and signature through compress -> encrypt -> base64.
func CreateMessage(senderSecret crypto.SecretKey, receiverPublic crypto.PublicKey, plaintext []byte, encoding MessageEncoding, level crypto.CompressionLevel) (Message, error) {
	sig, err := crypto.Sign(senderSecret, plaintext)
	if err != nil {
		return Message{}, hberrors.Wrap(hberrors.KindCrypto, "sign message content", err)
	}

	var salt []byte
	if encoding.Encryption != crypto.EncryptionNone {
		salt = make([]byte, saltSize)
		if _, err := cryptorand.Read(salt); err != nil {
			return Message{}, hberrors.Wrap(hberrors.KindCrypto, "draw message salt", err)
		}
	}

	content, err := encodeField(senderSecret, receiverPublic, plaintext, encoding, level, salt)
	if err != nil {
		return Message{}, err
	}
	signature, err := encodeField(senderSecret, receiverPublic, sig, encoding, level, salt)
	if err != nil {
		return Message{}, err
	}

	msg := Message{Content: content, Signature: signature, Encoding: encoding}
	if salt != nil {
		msg.Salt = crypto.EncodeMessageBytes(salt)
	}
	return msg, nil
}

// ReadMessage reverses CreateMessage: it derives the shared secret with
// senderPublic and msg.Salt, decodes both fields, and verifies the
// plaintext signature under senderPublic. A signature mismatch is
// reported as a validation error; the caller must discard the message.
func ReadMessage(receiverSecret crypto.SecretKey, senderPublic crypto.PublicKey, msg Message) ([]byte, error) {
	var salt []byte
	if msg.Encoding.Encryption != crypto.EncryptionNone {
		decoded, err := crypto.DecodeMessageBytes(msg.Salt)
		if err != nil {
			return nil, hberrors.Wrap(hberrors.KindEncoding, "decode message salt", err)
		}
		salt = decoded
	}

	plaintext, err := decodeField(receiverSecret, senderPublic, msg.Content, msg.Encoding, salt)
	if err != nil {
		return nil, err
	}
	sig, err := decodeField(receiverSecret, senderPublic, msg.Signature, msg.Encoding, salt)
	if err != nil {
		return nil, err
	}

	ok, err := crypto.Verify(senderPublic, plaintext, sig)
	if err != nil {
		return nil, hberrors.Wrap(hberrors.KindCrypto, "verify message signature", err)
	}
	if !ok {
		return nil, hberrors.New(hberrors.KindValidation, "message signature does not verify")
	}
	return plaintext, nil
}

func encodeField(senderSecret crypto.SecretKey, receiverPublic crypto.PublicKey, data []byte, encoding MessageEncoding, level crypto.CompressionLevel, salt []byte) (string, error) {
	compressed, err := crypto.Compress(encoding.Compression, level, data)
	if err != nil {
		return "", hberrors.Wrap(hberrors.KindEncoding, "compress message field", err)
	}

	sealed := compressed
	if encoding.Encryption != crypto.EncryptionNone {
		secret, err := crypto.SharedSecret(senderSecret, receiverPublic, salt)
		if err != nil {
			return "", hberrors.Wrap(hberrors.KindCrypto, "derive shared secret", err)
		}
		sealed, err = crypto.Encrypt(encoding.Encryption, secret, compressed)
		if err != nil {
			return "", hberrors.Wrap(hberrors.KindCrypto, "encrypt message field", err)
		}
	}

	return crypto.EncodeMessageBytes(sealed), nil
}

func decodeField(receiverSecret crypto.SecretKey, senderPublic crypto.PublicKey, field string, encoding MessageEncoding, salt []byte) ([]byte, error) {
	sealed, err := crypto.DecodeMessageBytes(field)
	if err != nil {
		return nil, hberrors.Wrap(hberrors.KindEncoding, "decode message field base64", err)
	}

	compressed := sealed
	if encoding.Encryption != crypto.EncryptionNone {
		secret, err := crypto.SharedSecret(receiverSecret, senderPublic, salt)
		if err != nil {
			return nil, hberrors.Wrap(hberrors.KindCrypto, "derive shared secret", err)
		}
		compressed, err = crypto.Decrypt(encoding.Encryption, secret, sealed)
		if err != nil {
			return nil, hberrors.Wrap(hberrors.KindCrypto, "decrypt message field", err)
		}
	}

	plaintext, err := crypto.Decompress(encoding.Compression, compressed)
	if err != nil {
		return nil, hberrors.Wrap(hberrors.KindEncoding, "decompress message field", err)
	}
	return plaintext, nil
}

// MessageInfo is the inbox entry: a delivered message, its channel,
// sender, and server-assigned receive timestamp.
type MessageInfo struct {
	Sender     Sender  `json:"sender"`
	Channel    string  `json:"channel"`
	Message    Message `json:"message"`
	ReceivedAt uint64  `json:"received_at"`
}

// NewMessageInfo stamps a MessageInfo with the current time.
func NewMessageInfo(sender Sender, channel string, msg Message) MessageInfo {
	return MessageInfo{
		Sender:     sender,
		Channel:    channel,
		Message:    msg,
		ReceivedAt: uint64(time.Now().Unix()),
	}
}
