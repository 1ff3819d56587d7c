package models

import "time"

// Audit event types written by the webhook processor. EventPaymentProcessed
// doubles as the replay guard: its presence means the side effect already ran.
const (
	EventProcessingStarted  = "processing_started"
	EventTransactionExpired = "transaction_expired"
	EventAdCreated          = "ad_created"
	EventAdCreationFailed   = "ad_creation_failed"
	EventPaymentFailed      = "payment_failed"
	EventPaymentProcessed   = "processed"
	EventSecurityViolation  = "security_violation"
)

// PaymentAuditLog is an append-only forensic record. Rows are never updated
// or deleted by the application.
type PaymentAuditLog struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	TransactionID uint      `gorm:"index:idx_audit_tx_event,priority:1;not null" json:"transaction_id"`
	EventType     string    `gorm:"type:varchar(50);index:idx_audit_tx_event,priority:2;not null" json:"event_type"`
	EventData     JSON      `gorm:"type:longtext" json:"event_data"`
	ClientIP      string    `gorm:"type:varchar(45);default:null" json:"client_ip"`
	ClientAgent   string    `gorm:"type:varchar(255);default:null" json:"client_agent"`
	SecurityFlags string    `gorm:"type:varchar(255);default:null" json:"security_flags"`
	CreatedAt     time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}
