package models

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

const (
	TransactionStatusPending   = "pending_payment"
	TransactionStatusCompleted = "completed"
	TransactionStatusFailed    = "failed"
	TransactionStatusExpired   = "expired"
)

// PaymentTransaction is created by the payment initiation flow in state
// pending_payment and afterwards mutated only by the webhook processor.
// OrderRef is the opaque identifier handed to the gateway as item_ref.
type PaymentTransaction struct {
	ID                uint       `gorm:"primaryKey" json:"id"`
	OrderRef          string     `gorm:"type:varchar(64);uniqueIndex;not null" json:"order_ref"`
	UserID            uint       `gorm:"index;not null" json:"user_id"`
	Status            string     `gorm:"type:varchar(30);not null;default:'pending_payment';index" json:"status"`
	Amount            int64      `gorm:"not null" json:"amount"` // minor currency units
	Currency          string     `gorm:"type:varchar(3);not null;default:'EUR'" json:"currency"`
	GatewayTxID       string     `gorm:"type:varchar(64);default:null;index" json:"gateway_tx_id"`
	PaymentData       JSON       `gorm:"type:longtext" json:"payment_data"`
	SecurityScore     int        `gorm:"default:0" json:"security_score"`
	ClientFingerprint string     `gorm:"type:varchar(64);default:null" json:"-"`
	ExpiresAt         time.Time  `gorm:"type:timestamp;not null" json:"expires_at"`
	CompletedAt       *time.Time `gorm:"type:timestamp;default:null" json:"completed_at,omitempty"`
	CreatedAt         time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt         time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// IsTerminal reports whether no further status transition is permitted.
func (t *PaymentTransaction) IsTerminal() bool {
	switch t.Status {
	case TransactionStatusCompleted, TransactionStatusFailed, TransactionStatusExpired:
		return true
	default:
		return false
	}
}

// IsExpired checks the transaction against its absolute expiry deadline.
func (t *PaymentTransaction) IsExpired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}

// ClientFingerprintFor derives the stored fingerprint from network identity.
func ClientFingerprintFor(clientIP, userAgent string) string {
	sum := sha256.Sum256([]byte(clientIP + "|" + userAgent))
	return hex.EncodeToString(sum[:])
}
