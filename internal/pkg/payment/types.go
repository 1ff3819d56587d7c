package payment

import "time"

// Gateway form fields of the confirmation notification.
const (
	FieldStatus      = "status"
	FieldOrderRef    = "item_ref"
	FieldGatewayTxID = "transaction_id"
	FieldSignature   = "signature"
)

// Gateway result codes. Anything other than success is treated as a
// failure outcome by the state machine.
const (
	GatewayStatusSuccess = "1"
	GatewayStatusPending = "0"
)

// Notification is a parsed confirmation request from the payment gateway.
// Fields carries every received form field so the signature can be
// recomputed over the exact payload.
type Notification struct {
	Status      string
	OrderRef    string
	GatewayTxID string
	Signature   string
	Fields      map[string]string
}

// ClientInfo identifies the sender of a webhook delivery.
type ClientInfo struct {
	IP        string
	UserAgent string
}

// SecurityContext is the per-request security snapshot embedded into every
// audit record, so investigators never need to reconstruct it from other
// tables.
type SecurityContext struct {
	ClientIP          string `json:"client_ip"`
	ClientAgent       string `json:"client_agent"`
	RateLimitCount    int64  `json:"rate_limit_count"`
	RiskScore         int    `json:"risk_score"`
	SignatureVerified bool   `json:"signature_verified"`
}

// Outcome classifies the result of one webhook delivery.
type Outcome int

const (
	OutcomeProcessed Outcome = iota
	OutcomeDuplicate
	OutcomeMalformed
	OutcomeInvalidSignature
	OutcomeBlocked
	OutcomeNotFound
	OutcomeConflict
	OutcomeExpired
	OutcomeRateLimited
	OutcomeInternalError
)

// Result is returned by the processor; the controller maps it onto HTTP
// response codes.
type Result struct {
	Outcome     Outcome
	FinalStatus string
	ListingUUID string
	Reason      string
}

// RateLimitResult reports the sliding-window counter state for one check.
type RateLimitResult struct {
	Allowed      bool
	CurrentCount int64
	ResetTime    time.Time
}

// LockResult reports one lock acquisition attempt. A held lock is not an
// error, just Acquired=false.
type LockResult struct {
	Acquired bool
	LockID   string
}
