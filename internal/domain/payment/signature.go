package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

const signaturePrefix = "sha256="

// SignatureVerifier checks HMAC-SHA256 signatures over raw webhook bodies
type SignatureVerifier struct {
	secret []byte
}

// NewSignatureVerifier returns ErrMissingSecret for an empty secret
func NewSignatureVerifier(secret string) (*SignatureVerifier, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, ErrMissingSecret
	}
	return &SignatureVerifier{secret: []byte(secret)}, nil
}

// Sign returns the hex signature of body
func (v *SignatureVerifier) Sign(body []byte) string {
	mac := hmac.New(sha256.New, v.secret)
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify compares header against the signature of body in constant time.
// The header may carry a "sha256=" prefix.
func (v *SignatureVerifier) Verify(body []byte, header string) error {
	header = strings.TrimSpace(header)
	header = strings.TrimPrefix(header, signaturePrefix)
	if header == "" {
		return ErrInvalidSignature
	}
	given, err := hex.DecodeString(strings.ToLower(header))
	if err != nil {
		return ErrInvalidSignature
	}

	mac := hmac.New(sha256.New, v.secret)
	mac.Write(body)
	if !hmac.Equal(given, mac.Sum(nil)) {
		return ErrInvalidSignature
	}
	return nil
}
