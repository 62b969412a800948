package crypto

import (
	"crypto/sha256"
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"golang.org/x/crypto/hkdf"
)

// SharedSecretSize is the length in bytes of a derived symmetric key.
const SharedSecretSize = 32

// SharedSecret derives the 32-byte symmetric key shared between the
// owner of sk and the owner of pk. It is computed as ECDH(sk, pk) fed
// into HKDF-SHA256 with the caller-supplied salt (nil is permitted) and
// the protocol's fixed 64-byte info constant. Both parties must derive
// identical secrets: SharedSecret(A.sk, B.pk, salt) == SharedSecret(B.sk,
// A.pk, salt).
func SharedSecret(sk SecretKey, pk PublicKey, salt []byte) ([32]byte, error) {
	var out [32]byte

	if sk.inner == nil {
		return out, fmt.Errorf("shared secret: nil secret key")
	}
	if !pk.IsValid() {
		return out, fmt.Errorf("shared secret: invalid public key")
	}

	var point, result secp256k1.JacobianPoint
	pk.inner.AsJacobian(&point)

	scalar := sk.inner.Key
	secp256k1.ScalarMultNonConst(&scalar, &point, &result)
	result.ToAffine()

	dhPoint := secp256k1.NewPublicKey(&result.X, &result.Y)
	ikm := dhPoint.SerializeCompressed()

	reader := hkdf.New(sha256.New, ikm, salt, hkdfInfo[:])
	if _, err := reader.Read(out[:]); err != nil {
		return out, fmt.Errorf("hkdf expand: %w", err)
	}
	return out, nil
}
