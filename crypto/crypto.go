// Package crypto implements the cryptographic core of the hyperborea
// protocol: secp256k1 key pairs, ECDH shared secret derivation, ECDSA
// signatures, AEAD encryption, compression, and the two base64
// alphabets used on the wire.
package crypto

import (
	"crypto/rand"
)

// hkdfInfo is the protocol-fixed HKDF expansion context. It must be
// reproduced exactly by every implementation or shared secrets will not
// agree across peers.
var hkdfInfo = [64]byte{
	162, 241, 203, 77, 49, 90, 31, 126, 67, 94, 191, 219, 56, 141, 46, 233,
	70, 18, 207, 194, 52, 154, 176, 139, 244, 222, 155, 110, 177, 91, 32, 218,
	150, 232, 148, 23, 13, 172, 48, 131, 95, 216, 144, 224, 163, 106, 254, 135,
	93, 220, 84, 116, 42, 3, 211, 57, 186, 174, 208, 121, 253, 185, 210, 240,
}

// randomBytes draws n cryptographically secure random bytes. The
// protocol's original dialect seeds a ChaCha20 DRBG per draw; the Go
// standard library's crypto/rand already reads from the OS CSPRNG and no
// pack example wires an alternative ChaCha20-based DRBG for this purpose,
// so crypto/rand is used directly here.
func randomBytes(n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return nil, err
	}
	return buf, nil
}
