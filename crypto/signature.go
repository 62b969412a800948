package crypto

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
)

// SignatureSize is the length in bytes of a fixed r||s signature.
const SignatureSize = 64

// Sign produces a deterministic (RFC 6979) ECDSA signature over the
// SHA-256 digest of message, encoded as a fixed 64-byte r||s pair
// rather than DER.
func Sign(sk SecretKey, message []byte) ([]byte, error) {
	if sk.inner == nil {
		return nil, fmt.Errorf("sign: nil secret key")
	}
	digest := sha256.Sum256(message)
	sig := ecdsa.Sign(sk.inner, digest[:])
	return serializeSignature(sig), nil
}

// Verify reports whether signature is a valid ECDSA signature over the
// SHA-256 digest of message under pk.
func Verify(pk PublicKey, message, signature []byte) (bool, error) {
	if !pk.IsValid() {
		return false, fmt.Errorf("verify: invalid public key")
	}
	sig, err := deserializeSignature(signature)
	if err != nil {
		return false, err
	}
	digest := sha256.Sum256(message)
	return sig.Verify(digest[:], pk.inner), nil
}

func serializeSignature(sig *ecdsa.Signature) []byte {
	r := sig.R()
	s := sig.S()
	rBytes := r.Bytes()
	sBytes := s.Bytes()

	out := make([]byte, SignatureSize)
	copy(out[0:32], rBytes[:])
	copy(out[32:64], sBytes[:])
	return out
}

func deserializeSignature(data []byte) (*ecdsa.Signature, error) {
	if len(data) != SignatureSize {
		return nil, fmt.Errorf("signature must be %d bytes, got %d", SignatureSize, len(data))
	}

	var rBytes, sBytes [32]byte
	copy(rBytes[:], data[0:32])
	copy(sBytes[:], data[32:64])

	var r, s secp256k1.ModNScalar
	r.SetBytes(&rBytes)
	s.SetBytes(&sBytes)

	return ecdsa.NewSignature(&r, &s), nil
}

// SignCapsule produces an encapsulated signature: the protocol's
// length-prefixed `u64_be(len(sig)) || sig || message` layout, so the
// signed payload travels alongside its own proof.
func SignCapsule(sk SecretKey, message []byte) ([]byte, error) {
	sig, err := Sign(sk, message)
	if err != nil {
		return nil, err
	}

	capsule := make([]byte, 0, 8+len(sig)+len(message))
	var lenBuf [8]byte
	binary.BigEndian.PutUint64(lenBuf[:], uint64(len(sig)))
	capsule = append(capsule, lenBuf[:]...)
	capsule = append(capsule, sig...)
	capsule = append(capsule, message...)
	return capsule, nil
}

// OpenCapsule verifies an encapsulated signature produced by
// SignCapsule and, on success, returns the original message. A false
// ok return means the signature did not verify; err is non-nil only
// for a malformed capsule.
func OpenCapsule(pk PublicKey, capsule []byte) (message []byte, ok bool, err error) {
	if len(capsule) < 8 {
		return nil, false, fmt.Errorf("open capsule: too short")
	}

	sigLen := binary.BigEndian.Uint64(capsule[:8])
	if sigLen > uint64(len(capsule)-8) {
		return nil, false, fmt.Errorf("open capsule: signature length exceeds capsule")
	}

	sig := capsule[8 : 8+sigLen]
	msg := capsule[8+sigLen:]

	valid, err := Verify(pk, msg, sig)
	if err != nil {
		return nil, false, err
	}
	if !valid {
		return nil, false, nil
	}

	out := make([]byte, len(msg))
	copy(out, msg)
	return out, true, nil
}
