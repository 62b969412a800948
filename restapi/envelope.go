package restapi

import (
	cryptorand "crypto/rand"
	"encoding/binary"
	"encoding/json"
	"fmt"

	"github.com/hyperborea-go/hyperborea/crypto"
	"github.com/hyperborea-go/hyperborea/hberrors"
)

// proofSeedHighBit marks every valid proof seed; the source dialect
// calls this "safe_random_u64_long".
const proofSeedHighBit = uint64(1) << 63

// NewProofSeed draws a fresh uint64 with bit 63 set.
func NewProofSeed() (uint64, error) {
	var buf [8]byte
	if _, err := cryptorand.Read(buf[:]); err != nil {
		return 0, hberrors.Wrap(hberrors.KindCrypto, "draw proof seed", err)
	}
	seed := binary.BigEndian.Uint64(buf[:])
	return proofSeedHighBit | (seed >> 1), nil
}

func seedBytes(seed uint64) []byte {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], seed)
	return buf[:]
}

// SeedBytes exposes the big-endian encoding used to sign and verify a
// proof seed, so callers outside this package (the server's /info
// handler, the client middleware) sign and verify against the same
// bytes as Request/Response do.
func SeedBytes(seed uint64) []byte {
	return seedBytes(seed)
}

// Request is the envelope wrapping every client-originated call: a
// standard version tag, the sender's public key, a proof-of-possession
// seed and its signature, and the operation-specific body.
type Request[T any] struct {
	Standard      int            `json:"standard"`
	PublicKey     crypto.PublicKey `json:"public_key"`
	ProofSeed     uint64         `json:"proof_seed"`
	ProofSignature []byte        `json:"proof_sign"`
	Body          T              `json:"request"`
}

// NewRequest builds and signs a Request envelope for body, drawing a
// fresh proof seed and signing its big-endian bytes with sk.
func NewRequest[T any](sk crypto.SecretKey, body T) (Request[T], error) {
	seed, err := NewProofSeed()
	if err != nil {
		return Request[T]{}, err
	}

	sig, err := crypto.Sign(sk, seedBytes(seed))
	if err != nil {
		return Request[T]{}, hberrors.Wrap(hberrors.KindCrypto, "sign proof seed", err)
	}

	return Request[T]{
		Standard:       StandardVersion,
		PublicKey:      sk.Public(),
		ProofSeed:      seed,
		ProofSignature: sig,
		Body:           body,
	}, nil
}

// Validate checks the envelope's standard version, the proof seed's
// high bit, and the proof signature against the enclosed public key.
func (r Request[T]) Validate() error {
	if r.Standard != StandardVersion {
		return hberrors.New(hberrors.KindSerialization, fmt.Sprintf("unsupported standard version %d", r.Standard))
	}
	if r.ProofSeed < proofSeedHighBit {
		return hberrors.New(hberrors.KindValidation, "proof seed missing high bit")
	}
	if !r.PublicKey.IsValid() {
		return hberrors.New(hberrors.KindValidation, "missing public key")
	}

	ok, err := crypto.Verify(r.PublicKey, seedBytes(r.ProofSeed), r.ProofSignature)
	if err != nil {
		return hberrors.Wrap(hberrors.KindCrypto, "verify proof signature", err)
	}
	if !ok {
		return hberrors.New(hberrors.KindValidation, "invalid proof signature")
	}
	return nil
}

// Response is the tagged success/error envelope returned by every
// handler. Status.IsSuccess reports whether it is successful; callers
// should use NewSuccessResponse/NewErrorResponse rather than
// constructing Response directly.
type Response[T any] struct {
	Standard       int            `json:"standard"`
	Status         Status         `json:"status"`
	PublicKey      *crypto.PublicKey `json:"public_key,omitempty"`
	ProofSignature []byte         `json:"proof_sign,omitempty"`
	Body           *T             `json:"response,omitempty"`
	Reason         string         `json:"reason,omitempty"`
}

// NewSuccessResponse signs the originating request's proof seed with
// the server's secret key and wraps body as a success response.
func NewSuccessResponse[T any](sk crypto.SecretKey, requestSeed uint64, body T) (Response[T], error) {
	sig, err := crypto.Sign(sk, seedBytes(requestSeed))
	if err != nil {
		return Response[T]{}, hberrors.Wrap(hberrors.KindCrypto, "sign response proof", err)
	}
	pub := sk.Public()
	return Response[T]{
		Standard:       StandardVersion,
		Status:         StatusSuccess,
		PublicKey:      &pub,
		ProofSignature: sig,
		Body:           &body,
	}, nil
}

// NewErrorResponse builds a failure response carrying a non-success
// status and a human-readable reason.
func NewErrorResponse[T any](status Status, reason string) Response[T] {
	return Response[T]{
		Standard: StandardVersion,
		Status:   status,
		Reason:   reason,
	}
}

// Validate checks the response's standard version and, for success
// responses, the proof signature against serverKey and the original
// request's seed.
func (r Response[T]) Validate(serverKey crypto.PublicKey, requestSeed uint64) error {
	if r.Standard != StandardVersion {
		return hberrors.New(hberrors.KindSerialization, fmt.Sprintf("unsupported standard version %d", r.Standard))
	}
	if !r.Status.IsSuccess() {
		return hberrors.New(hberrors.KindProtocol, fmt.Sprintf("status %d: %s", r.Status, r.Reason))
	}

	ok, err := crypto.Verify(serverKey, seedBytes(requestSeed), r.ProofSignature)
	if err != nil {
		return hberrors.Wrap(hberrors.KindCrypto, "verify response proof", err)
	}
	if !ok {
		return hberrors.New(hberrors.KindValidation, "invalid response proof signature")
	}
	return nil
}

// rawBody is used internally to defer body decoding until after the
// disposition/status of an envelope is known.
type rawBody = json.RawMessage
