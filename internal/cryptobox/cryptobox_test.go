package cryptobox

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "medivault/pkg/domain-errors"
)

func newTestCodec(t *testing.T) *Codec {
	t.Helper()
	encoded, err := GenerateKey()
	require.NoError(t, err)
	codec, err := NewFromBase64(encoded)
	require.NoError(t, err)
	return codec
}

func TestRoundTrip(t *testing.T) {
	codec := newTestCodec(t)

	for _, plaintext := range []string{"", "hypertension stage 2", "Sensitive Patient Data"} {
		sealed, err := codec.Encrypt(plaintext)
		require.NoError(t, err)

		opened, err := codec.Decrypt(sealed)
		require.NoError(t, err)
		assert.Equal(t, plaintext, opened)
	}
}

func TestNondeterministicNonce(t *testing.T) {
	codec := newTestCodec(t)

	first, err := codec.Encrypt("same plaintext")
	require.NoError(t, err)
	second, err := codec.Encrypt("same plaintext")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestWrongKeyFailsClosed(t *testing.T) {
	codec := newTestCodec(t)
	other := newTestCodec(t)

	sealed, err := codec.Encrypt("diagnosis")
	require.NoError(t, err)

	_, err = other.Decrypt(sealed)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeDecryptionFailed))
}

func TestMalformedEnvelope(t *testing.T) {
	codec := newTestCodec(t)

	for _, envelope := range []string{"", "!!!not-base64!!!", "dG9vc2hvcnQ"} {
		_, err := codec.Decrypt(envelope)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeDecryptionFailed))
	}
}

func TestTamperedCiphertext(t *testing.T) {
	codec := newTestCodec(t)

	sealed, err := codec.Encrypt("diagnosis")
	require.NoError(t, err)

	// Flip one character mid-envelope; authentication must fail.
	tampered := []byte(sealed)
	if tampered[10] == 'A' {
		tampered[10] = 'B'
	} else {
		tampered[10] = 'A'
	}
	_, err = codec.Decrypt(string(tampered))
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeDecryptionFailed))
}

func TestKeyValidation(t *testing.T) {
	_, err := NewFromBase64("dG9vc2hvcnQ=")
	require.Error(t, err)

	_, err = NewFromBase64("not base64 at all")
	require.Error(t, err)
}
