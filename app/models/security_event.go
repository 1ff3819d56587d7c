package models

import "time"

const (
	SecurityIdentifierIP   = "ip"
	SecurityIdentifierUser = "user"

	SecuritySeverityLow      = "low"
	SecuritySeverityMedium   = "medium"
	SecuritySeverityHigh     = "high"
	SecuritySeverityCritical = "critical"
)

// Security event types recorded on webhook rejection paths.
const (
	SecurityEventOriginBlocked      = "origin_blocked"
	SecurityEventRateLimitExceeded  = "rate_limit_exceeded"
	SecurityEventInvalidSignature   = "invalid_signature"
	SecurityEventMissingSignature   = "missing_signature"
	SecurityEventAutoBlocked        = "auto_blocked"
	SecurityEventReplayDetected     = "replay_detected"
	SecurityEventLockContention     = "lock_contention"
	SecurityEventMalformedRequest   = "malformed_request"
	SecurityEventUnknownTransaction = "unknown_transaction"
)

// SecurityEvent is an append-only record feeding the suspicious activity
// detector and the forensic trail.
type SecurityEvent struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Identifier     string    `gorm:"type:varchar(100);index:idx_security_ident,priority:1;not null" json:"identifier"`
	IdentifierType string    `gorm:"type:varchar(10);not null;default:'ip'" json:"identifier_type"`
	EventType      string    `gorm:"type:varchar(50);index;not null" json:"event_type"`
	Severity       string    `gorm:"type:varchar(10);not null;default:'low'" json:"severity"`
	RiskScore      int       `gorm:"default:0" json:"risk_score"`
	EventData      JSON      `gorm:"type:longtext" json:"event_data"`
	CreatedAt      time.Time `gorm:"autoCreateTime;index:idx_security_ident,priority:2" json:"created_at"`
}
