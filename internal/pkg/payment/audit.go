package payment

import (
	"encoding/json"
	"strings"

	"github.com/gofiber/fiber/v2/log"

	"github.com/kleinmarkt/KleinMarkt/app/models"
	"github.com/kleinmarkt/KleinMarkt/app/repository"
)

// AuditLogger appends immutable records at every decision boundary. Audit
// entries embed the full security context snapshot of the request.
type AuditLogger struct {
	audit    repository.AuditLogRepository
	security repository.SecurityEventRepository
}

// NewAuditLogger creates an audit logger over the append-only repositories.
func NewAuditLogger(audit repository.AuditLogRepository, security repository.SecurityEventRepository) *AuditLogger {
	return &AuditLogger{audit: audit, security: security}
}

// Event appends one audit record. The returned error matters only for the
// replay-guard record; all other call sites log and continue.
func (l *AuditLogger) Event(transactionID uint, eventType string, sc SecurityContext, data map[string]interface{}) error {
	payload := map[string]interface{}{
		"security_context": sc,
	}
	for k, v := range data {
		payload[k] = v
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	entry := &models.PaymentAuditLog{
		TransactionID: transactionID,
		EventType:     eventType,
		EventData:     models.JSON(raw),
		ClientIP:      sc.ClientIP,
		ClientAgent:   sc.ClientAgent,
		SecurityFlags: securityFlags(sc),
	}
	return l.audit.Create(entry)
}

// BestEffortEvent appends an audit record and only logs on failure.
func (l *AuditLogger) BestEffortEvent(transactionID uint, eventType string, sc SecurityContext, data map[string]interface{}) {
	if err := l.Event(transactionID, eventType, sc, data); err != nil {
		log.Errorf("[Payment] audit write %s for tx %d failed: %v", eventType, transactionID, err)
	}
}

// SecurityViolation appends a security event for the given client identity.
func (l *AuditLogger) SecurityViolation(identifier, identifierType, eventType, severity string, riskScore int, data map[string]interface{}) {
	raw, err := json.Marshal(data)
	if err != nil {
		raw = []byte("{}")
	}
	event := &models.SecurityEvent{
		Identifier:     identifier,
		IdentifierType: identifierType,
		EventType:      eventType,
		Severity:       severity,
		RiskScore:      riskScore,
		EventData:      models.JSON(raw),
	}
	if err := l.security.Create(event); err != nil {
		log.Errorf("[Payment] security event write %s for %s failed: %v", eventType, identifier, err)
	}
}

func securityFlags(sc SecurityContext) string {
	var flags []string
	if sc.SignatureVerified {
		flags = append(flags, "signature_verified")
	}
	if sc.RiskScore > 0 {
		flags = append(flags, "scored")
	}
	return strings.Join(flags, ",")
}
