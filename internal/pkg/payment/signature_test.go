package payment

import (
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
	"testing"
)

func TestCanonicalize(t *testing.T) {
	fields := map[string]string{
		"status":         "1",
		"item_ref":       "abc",
		"transaction_id": "42",
		"signature":      "should-be-excluded",
	}

	got := Canonicalize(fields)
	want := "item_ref=abc&status=1&transaction_id=42"
	if got != want {
		t.Fatalf("Canonicalize() = %q, want %q", got, want)
	}
}

func TestSignAndVerify(t *testing.T) {
	v := NewSignatureVerifier("top-secret")
	fields := map[string]string{
		"status":         "1",
		"item_ref":       "order-123",
		"transaction_id": "998877",
	}

	sig := v.Sign(fields)
	if !v.Verify(fields, sig) {
		t.Fatalf("expected self-signed fields to verify")
	}

	// Uppercase hex from the gateway must still verify.
	upper := ""
	for _, r := range sig {
		if r >= 'a' && r <= 'f' {
			upper += string(r - 32)
		} else {
			upper += string(r)
		}
	}
	if !v.Verify(fields, upper) {
		t.Fatalf("expected uppercase signature to verify")
	}
}

func TestVerifySHA256Fallback(t *testing.T) {
	v := NewSignatureVerifier("top-secret")
	fields := map[string]string{"item_ref": "order-123", "status": "1"}

	sum := sha256.Sum256([]byte(Canonicalize(fields) + "top-secret"))
	if !v.Verify(fields, hex.EncodeToString(sum[:])) {
		t.Fatalf("expected sha256 fallback signature to verify")
	}
}

func TestVerifyRejectsTamperedField(t *testing.T) {
	v := NewSignatureVerifier("top-secret")
	fields := map[string]string{"item_ref": "order-123", "status": "0"}
	sig := v.Sign(fields)

	fields["status"] = "1" // flip failure to success without re-signing
	if v.Verify(fields, sig) {
		t.Fatalf("expected tampered field to fail verification")
	}
}

func TestVerifyRejectsEmptyInputs(t *testing.T) {
	fields := map[string]string{"item_ref": "order-123"}

	if NewSignatureVerifier("top-secret").Verify(fields, "") {
		t.Fatalf("expected empty signature to fail")
	}

	sum := md5.Sum([]byte(Canonicalize(fields)))
	if NewSignatureVerifier("").Verify(fields, hex.EncodeToString(sum[:])) {
		t.Fatalf("expected empty secret to fail")
	}
}
