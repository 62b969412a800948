package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublicKeyRoundTrip(t *testing.T) {
	sk, err := GenerateSecretKey()
	require.NoError(t, err)

	pk := sk.Public()
	b := pk.Bytes()

	decoded, err := PublicKeyFromBytes(b[:])
	require.NoError(t, err)
	assert.True(t, pk.Equal(decoded))

	decodedB64, err := PublicKeyFromBase64(pk.Base64())
	require.NoError(t, err)
	assert.True(t, pk.Equal(decodedB64))
}

func TestSecretKeyRoundTrip(t *testing.T) {
	sk, err := GenerateSecretKey()
	require.NoError(t, err)

	decoded, err := SecretKeyFromBytes(sk.Bytes())
	require.NoError(t, err)
	assert.Equal(t, sk.Bytes(), decoded.Bytes())

	decodedB64, err := SecretKeyFromBase64(sk.Base64())
	require.NoError(t, err)
	assert.Equal(t, sk.Bytes(), decodedB64.Bytes())
}

func TestSharedSecretAgreement(t *testing.T) {
	skA, err := GenerateSecretKey()
	require.NoError(t, err)
	skB, err := GenerateSecretKey()
	require.NoError(t, err)

	secretA, err := SharedSecret(skA, skB.Public(), nil)
	require.NoError(t, err)
	secretB, err := SharedSecret(skB, skA.Public(), nil)
	require.NoError(t, err)

	assert.Equal(t, secretA, secretB)
}

func TestSignVerify(t *testing.T) {
	sk, err := GenerateSecretKey()
	require.NoError(t, err)

	message := []byte("Hello, World!")
	sig, err := Sign(sk, message)
	require.NoError(t, err)
	require.Len(t, sig, SignatureSize)

	valid, err := Verify(sk.Public(), message, sig)
	require.NoError(t, err)
	assert.True(t, valid)

	flipped := append([]byte(nil), sig...)
	flipped[0] ^= 0xFF
	valid, err = Verify(sk.Public(), message, flipped)
	require.NoError(t, err)
	assert.False(t, valid)
}

func TestEncapsulatedSignature(t *testing.T) {
	sk, err := GenerateSecretKey()
	require.NoError(t, err)

	capsule, err := SignCapsule(sk, []byte("Hello, World!"))
	require.NoError(t, err)

	message, ok, err := OpenCapsule(sk.Public(), capsule)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("Hello, World!"), message)
}

func TestAEADRoundTrip(t *testing.T) {
	for _, alg := range []Encryption{EncryptionNone, EncryptionAES256GCM, EncryptionChaCha20Poly1305} {
		alg := alg
		t.Run(string(alg), func(t *testing.T) {
			var key [32]byte
			copy(key[:], []byte("0123456789abcdef0123456789abcdef"))

			plaintext := []byte("the quick brown fox")
			ciphertext, err := Encrypt(alg, key, plaintext)
			require.NoError(t, err)

			decrypted, err := Decrypt(alg, key, ciphertext)
			require.NoError(t, err)
			assert.Equal(t, plaintext, decrypted)
		})
	}
}

func TestCompressionRoundTrip(t *testing.T) {
	data := []byte("the quick brown fox jumps over the lazy dog, the quick brown fox jumps over the lazy dog")

	for _, alg := range []Compression{CompressionNone, CompressionDeflate, CompressionBrotli} {
		for _, level := range []CompressionLevel{CompressionFast, CompressionBalanced, CompressionBest} {
			alg, level := alg, level
			t.Run(string(alg), func(t *testing.T) {
				compressed, err := Compress(alg, level, data)
				require.NoError(t, err)

				decompressed, err := Decompress(alg, compressed)
				require.NoError(t, err)
				assert.Equal(t, data, decompressed)
			})
		}
	}
}
