package crypto

import (
	"encoding/base64"
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

// keyBase64 is the URL-safe, padded alphabet used to serialize public
// and secret key material. Message bodies use a different alphabet
// (see encoding.go) and the two must never be interchanged.
var keyBase64 = base64.URLEncoding

// PublicKey is a 33-byte compressed secp256k1 point. Its zero value is
// not a valid key; always obtain one from GenerateSecretKey (via
// SecretKey.Public), PublicKeyFromBytes, or PublicKeyFromBase64.
type PublicKey struct {
	inner *secp256k1.PublicKey
}

// SecretKey is a 32-byte secp256k1 scalar. It never leaves its owner and
// must not be serialized to a peer.
type SecretKey struct {
	inner *secp256k1.PrivateKey
}

// GenerateSecretKey draws a uniformly random nonzero secp256k1 scalar.
func GenerateSecretKey() (SecretKey, error) {
	priv, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		return SecretKey{}, fmt.Errorf("generate secret key: %w", err)
	}
	return SecretKey{inner: priv}, nil
}

// Public derives the public key for this secret key.
func (s SecretKey) Public() PublicKey {
	return PublicKey{inner: s.inner.PubKey()}
}

// Bytes serializes the secret key to its 32-byte scalar form.
func (s SecretKey) Bytes() []byte {
	b := s.inner.Serialize()
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

// SecretKeyFromBytes parses a 32-byte scalar into a SecretKey.
func SecretKeyFromBytes(b []byte) (SecretKey, error) {
	if len(b) != 32 {
		return SecretKey{}, fmt.Errorf("secret key must be 32 bytes, got %d", len(b))
	}
	priv := secp256k1.PrivKeyFromBytes(b)
	return SecretKey{inner: priv}, nil
}

// Base64 encodes the secret key with the key alphabet.
func (s SecretKey) Base64() string {
	return keyBase64.EncodeToString(s.Bytes())
}

// SecretKeyFromBase64 decodes a secret key previously produced by
// SecretKey.Base64.
func SecretKeyFromBase64(s string) (SecretKey, error) {
	b, err := keyBase64.DecodeString(s)
	if err != nil {
		return SecretKey{}, fmt.Errorf("decode secret key base64: %w", err)
	}
	return SecretKeyFromBytes(b)
}

// Bytes serializes the public key to its 33-byte compressed SEC1 form.
func (p PublicKey) Bytes() [33]byte {
	var out [33]byte
	copy(out[:], p.inner.SerializeCompressed())
	return out
}

// PublicKeyFromBytes parses a 33-byte compressed SEC1 point.
func PublicKeyFromBytes(b []byte) (PublicKey, error) {
	if len(b) != 33 {
		return PublicKey{}, fmt.Errorf("public key must be 33 bytes, got %d", len(b))
	}
	pub, err := secp256k1.ParsePubKey(b)
	if err != nil {
		return PublicKey{}, fmt.Errorf("parse public key: %w", err)
	}
	return PublicKey{inner: pub}, nil
}

// Base64 encodes the public key with the key alphabet.
func (p PublicKey) Base64() string {
	b := p.Bytes()
	return keyBase64.EncodeToString(b[:])
}

// PublicKeyFromBase64 decodes a public key previously produced by
// PublicKey.Base64.
func PublicKeyFromBase64(s string) (PublicKey, error) {
	b, err := keyBase64.DecodeString(s)
	if err != nil {
		return PublicKey{}, fmt.Errorf("decode public key base64: %w", err)
	}
	return PublicKeyFromBytes(b)
}

// Equal reports whether two public keys are byte-identical on their
// compressed form.
func (p PublicKey) Equal(other PublicKey) bool {
	a, b := p.Bytes(), other.Bytes()
	return a == b
}

// IsValid reports whether the public key wraps a parsed point.
func (p PublicKey) IsValid() bool {
	return p.inner != nil
}

// String implements fmt.Stringer by returning the base64 encoding, so
// keys are safe to log and print directly.
func (p PublicKey) String() string {
	return p.Base64()
}
