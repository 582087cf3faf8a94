package payment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignatureVerifier(t *testing.T) {
	v, err := NewSignatureVerifier("whsec_test_secret_value")
	require.NoError(t, err)

	body := []byte(`{"id":"evt-1","type":"payment","data":{"id":"42"}}`)
	sig := v.Sign(body)

	t.Run("accepts bare hex", func(t *testing.T) {
		assert.NoError(t, v.Verify(body, sig))
	})

	t.Run("accepts prefixed hex", func(t *testing.T) {
		assert.NoError(t, v.Verify(body, "sha256="+sig))
	})

	t.Run("rejects tampered body", func(t *testing.T) {
		tampered := []byte(`{"id":"evt-1","type":"payment","data":{"id":"43"}}`)
		assert.ErrorIs(t, v.Verify(tampered, sig), ErrInvalidSignature)
	})

	t.Run("rejects garbage header", func(t *testing.T) {
		assert.ErrorIs(t, v.Verify(body, "not-hex"), ErrInvalidSignature)
		assert.ErrorIs(t, v.Verify(body, ""), ErrInvalidSignature)
	})

	t.Run("rejects other secret", func(t *testing.T) {
		other, err := NewSignatureVerifier("another_secret_value")
		require.NoError(t, err)
		assert.ErrorIs(t, v.Verify(body, other.Sign(body)), ErrInvalidSignature)
	})
}

func TestNewSignatureVerifier_RequiresSecret(t *testing.T) {
	_, err := NewSignatureVerifier("  ")
	assert.ErrorIs(t, err, ErrMissingSecret)
}
