package models

import (
	"testing"
	"time"
)

func TestPaymentTransactionIsTerminal(t *testing.T) {
	tests := []struct {
		status string
		want   bool
	}{
		{TransactionStatusPending, false},
		{TransactionStatusCompleted, true},
		{TransactionStatusFailed, true},
		{TransactionStatusExpired, true},
		{"", false},
		{"unknown", false},
	}

	for _, tc := range tests {
		tx := &PaymentTransaction{Status: tc.status}
		if got := tx.IsTerminal(); got != tc.want {
			t.Errorf("IsTerminal() with status %q = %v, want %v", tc.status, got, tc.want)
		}
	}
}

func TestPaymentTransactionIsExpired(t *testing.T) {
	now := time.Now()
	tx := &PaymentTransaction{ExpiresAt: now.Add(time.Minute)}

	if tx.IsExpired(now) {
		t.Error("transaction before its deadline reported as expired")
	}
	if tx.IsExpired(now.Add(time.Minute)) {
		t.Error("transaction exactly at its deadline reported as expired")
	}
	if !tx.IsExpired(now.Add(2 * time.Minute)) {
		t.Error("transaction past its deadline not reported as expired")
	}
}

func TestClientFingerprintFor(t *testing.T) {
	a := ClientFingerprintFor("198.51.100.7", "GatewayBot/2.1")
	b := ClientFingerprintFor("198.51.100.7", "GatewayBot/2.1")
	c := ClientFingerprintFor("203.0.113.9", "GatewayBot/2.1")
	d := ClientFingerprintFor("198.51.100.7", "OtherAgent/1.0")

	if a != b {
		t.Error("fingerprint is not deterministic for identical inputs")
	}
	if a == c || a == d {
		t.Error("fingerprint does not change with network identity")
	}
	if len(a) != 64 {
		t.Errorf("fingerprint length = %d, want 64 hex chars", len(a))
	}
}
