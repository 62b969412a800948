package crypto

import "encoding/base64"

// MessageBase64 is the standard (non-URL-safe) alphabet used for
// message bodies and signatures. It is intentionally distinct from the
// URL-safe alphabet used for key material (see keyBase64 in keys.go)
// and the two must never be interchanged on the wire.
var MessageBase64 = base64.StdEncoding

// EncodeMessageBytes text-encodes AEAD output (or raw plaintext, if no
// encryption was applied) for transport in a JSON string field.
func EncodeMessageBytes(data []byte) string {
	return MessageBase64.EncodeToString(data)
}

// DecodeMessageBytes reverses EncodeMessageBytes.
func DecodeMessageBytes(s string) ([]byte, error) {
	return MessageBase64.DecodeString(s)
}
