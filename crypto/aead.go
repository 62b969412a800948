package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

// Encryption names the AEAD algorithm (or absence of one) applied to a
// message field.
type Encryption string

const (
	EncryptionNone              Encryption = "none"
	EncryptionAES256GCM         Encryption = "aes256-gcm"
	EncryptionChaCha20Poly1305  Encryption = "chacha20-poly1305"
)

// aeadNonceAES and aeadNonceChaCha are the protocol-fixed 12-byte
// nonces, one per algorithm. They are part of the wire contract and
// must be reproduced exactly; see Encrypt's doc on why a fixed nonce
// is safe only because each derived key is never reused to encrypt
// more than one plaintext stream.
var (
	aeadNonceAES    = [12]byte{0x4c, 0x39, 0x8a, 0x1e, 0x72, 0xd0, 0x05, 0xf6, 0x9b, 0x21, 0xaa, 0x83}
	aeadNonceChaCha = [12]byte{0x91, 0x6e, 0x2b, 0xc4, 0x0d, 0x5f, 0x77, 0x18, 0xe3, 0x4a, 0xb6, 0x02}
)

// Encrypt seals plaintext under key using the named algorithm. Passing
// EncryptionNone returns plaintext unchanged.
//
// The nonce used for AES-256-GCM and ChaCha20-Poly1305 is a
// protocol-fixed constant, not a per-call random value. This is only
// safe because key is a one-time HKDF output (restapi.CreateMessage
// derives it from the (sender, recipient) shared secret with a fresh
// random salt per message): callers must never reuse the same key to
// encrypt a second plaintext.
func Encrypt(alg Encryption, key [32]byte, plaintext []byte) ([]byte, error) {
	aead, nonce, err := aeadFor(alg, key)
	if err != nil {
		return nil, err
	}
	if aead == nil {
		return plaintext, nil
	}
	return aead.Seal(nil, nonce, plaintext, nil), nil
}

// Decrypt opens ciphertext sealed by Encrypt with the same algorithm and
// key.
func Decrypt(alg Encryption, key [32]byte, ciphertext []byte) ([]byte, error) {
	aead, nonce, err := aeadFor(alg, key)
	if err != nil {
		return nil, err
	}
	if aead == nil {
		return ciphertext, nil
	}
	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("aead open: %w", err)
	}
	return plaintext, nil
}

func aeadFor(alg Encryption, key [32]byte) (cipher.AEAD, []byte, error) {
	switch alg {
	case EncryptionNone, "":
		return nil, nil, nil

	case EncryptionAES256GCM:
		block, err := aes.NewCipher(key[:])
		if err != nil {
			return nil, nil, fmt.Errorf("aes cipher: %w", err)
		}
		aead, err := cipher.NewGCM(block)
		if err != nil {
			return nil, nil, fmt.Errorf("aes-gcm: %w", err)
		}
		return aead, aeadNonceAES[:], nil

	case EncryptionChaCha20Poly1305:
		aead, err := chacha20poly1305.New(key[:])
		if err != nil {
			return nil, nil, fmt.Errorf("chacha20-poly1305: %w", err)
		}
		return aead, aeadNonceChaCha[:], nil

	default:
		return nil, nil, fmt.Errorf("unknown encryption algorithm %q", alg)
	}
}
