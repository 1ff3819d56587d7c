package payment

import (
	"crypto/hmac"
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
)

// SignatureVerifier authenticates gateway notifications. The gateway signs
// the payload by sorting all fields (except the signature itself) by key,
// joining them as key=value pairs with &, appending the shared secret and
// hex-encoding the digest of that string.
type SignatureVerifier struct {
	secret string
}

// NewSignatureVerifier creates a verifier for the given shared secret.
func NewSignatureVerifier(secret string) *SignatureVerifier {
	return &SignatureVerifier{secret: strings.TrimSpace(secret)}
}

// Canonicalize builds the deterministic signing base from the received
// fields. The signature field itself is always excluded.
func Canonicalize(fields map[string]string) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		if k == FieldSignature {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+fields[k])
	}
	return strings.Join(pairs, "&")
}

// Sign computes the expected signature for a field set. Used by the
// initiation flow to hand signed redirect parameters to the gateway.
func (v *SignatureVerifier) Sign(fields map[string]string) string {
	sum := md5.Sum([]byte(Canonicalize(fields) + v.secret))
	return hex.EncodeToString(sum[:])
}

// Verify recomputes the signature over the received fields and compares it
// in constant time. Gateways here historically sign with MD5; environments
// migrated to SHA256 are accepted as fallback.
func (v *SignatureVerifier) Verify(fields map[string]string, signature string) bool {
	sig := strings.ToLower(strings.TrimSpace(signature))
	if sig == "" || v.secret == "" {
		return false
	}

	base := Canonicalize(fields) + v.secret

	md5Sum := md5.Sum([]byte(base))
	if hmac.Equal([]byte(sig), []byte(hex.EncodeToString(md5Sum[:]))) {
		return true
	}

	sha := sha256.Sum256([]byte(base))
	return hmac.Equal([]byte(sig), []byte(hex.EncodeToString(sha[:])))
}
