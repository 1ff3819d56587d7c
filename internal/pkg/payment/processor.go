package payment

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/kleinmarkt/KleinMarkt/app/models"
	"github.com/kleinmarkt/KleinMarkt/app/repository"
	"github.com/kleinmarkt/KleinMarkt/internal/pkg/env"
)

const rateLimitActionWebhook = "payment_webhook"

// Processor orchestrates one webhook delivery through the full pipeline:
// origin check, rate limit, signature, anomaly scoring, per-transaction
// lock, replay guards, state transition, side effect and audit trail.
// All collaborators are injected; the processor holds no mutable state
// between invocations.
type Processor struct {
	transactions repository.TransactionRepository
	origin       *OriginValidator
	limiter      RateLimiter
	verifier     *SignatureVerifier
	detector     *SuspiciousActivityDetector
	locks        LockManager
	publisher    *ListingPublisher
	auditor      *AuditLogger
}

// NewProcessor wires a processor from its collaborators.
func NewProcessor(
	transactions repository.TransactionRepository,
	origin *OriginValidator,
	limiter RateLimiter,
	verifier *SignatureVerifier,
	detector *SuspiciousActivityDetector,
	locks LockManager,
	publisher *ListingPublisher,
	auditor *AuditLogger,
) *Processor {
	return &Processor{
		transactions: transactions,
		origin:       origin,
		limiter:      limiter,
		verifier:     verifier,
		detector:     detector,
		locks:        locks,
		publisher:    publisher,
		auditor:      auditor,
	}
}

// NewProcessorFromDB builds the default production wiring from a DB handle
// and the shared redis client, configured via the environment.
func NewProcessorFromDB(db *gorm.DB, cache *redis.Client) *Processor {
	repos := repository.NewRepositories(db)

	rateMax := envInt("WEBHOOK_RATE_LIMIT_MAX", 60)
	rateWindow := time.Duration(envInt("WEBHOOK_RATE_LIMIT_WINDOW_SECONDS", 60)) * time.Second
	lockTTL := time.Duration(envInt("PAYMENT_LOCK_TTL_SECONDS", 30)) * time.Second
	blockThreshold := envInt("SECURITY_AUTOBLOCK_THRESHOLD", 80)

	auditor := NewAuditLogger(repos.AuditLog, repos.SecurityEvent)
	return NewProcessor(
		repos.Transaction,
		NewOriginValidatorFromEnv(),
		NewRedisRateLimiter(cache, int64(rateMax), rateWindow),
		NewSignatureVerifier(env.GetEnv("PAYMENT_GATEWAY_SECRET", "")),
		NewSuspiciousActivityDetector(repos.SecurityEvent, time.Hour, blockThreshold),
		NewRedisLockManager(cache, lockTTL),
		NewListingPublisher(repos.Listing),
		auditor,
	)
}

// Process runs one delivery through the pipeline and returns the outcome.
// Every rejection path leaves a security or audit record behind, and a
// successfully acquired lock is released on every exit path.
func (p *Processor) Process(ctx context.Context, n Notification, ci ClientInfo) Result {
	sc := SecurityContext{ClientIP: ci.IP, ClientAgent: ci.UserAgent}

	if allowed, reason := p.origin.Validate(ci.IP, ci.UserAgent); !allowed {
		p.auditor.SecurityViolation(ci.IP, models.SecurityIdentifierIP, models.SecurityEventOriginBlocked,
			models.SecuritySeverityHigh, 0, map[string]interface{}{"reason": reason, "client_agent": ci.UserAgent})
		return Result{Outcome: OutcomeBlocked, Reason: reason}
	}

	rl, err := p.limiter.Allow(ctx, ci.IP, rateLimitActionWebhook)
	if err != nil {
		// Fail open: a lost legitimate confirmation costs more than a
		// burst slipping through while the counter store is down.
		log.Warnf("[Payment] rate limit check failed for %s, allowing request: %v", ci.IP, err)
	} else {
		sc.RateLimitCount = rl.CurrentCount
		if !rl.Allowed {
			p.auditor.SecurityViolation(ci.IP, models.SecurityIdentifierIP, models.SecurityEventRateLimitExceeded,
				models.SecuritySeverityMedium, 0, map[string]interface{}{
					"current_count": rl.CurrentCount,
					"reset_time":    rl.ResetTime,
				})
			return Result{Outcome: OutcomeRateLimited, Reason: "rate_limit_exceeded"}
		}
	}

	if n.Status == "" || n.OrderRef == "" {
		p.auditor.SecurityViolation(ci.IP, models.SecurityIdentifierIP, models.SecurityEventMalformedRequest,
			models.SecuritySeverityLow, 0, map[string]interface{}{"reason": "missing_required_field"})
		return Result{Outcome: OutcomeMalformed, Reason: "missing_required_field"}
	}

	// Signature verification is mandatory. Absence is a rejection, not a
	// soft warning.
	if n.Signature == "" {
		p.auditor.SecurityViolation(ci.IP, models.SecurityIdentifierIP, models.SecurityEventMissingSignature,
			models.SecuritySeverityHigh, 0, map[string]interface{}{"order_ref": n.OrderRef})
		return Result{Outcome: OutcomeInvalidSignature, Reason: "missing_signature"}
	}
	if !p.verifier.Verify(n.Fields, n.Signature) {
		// Never log the secret or the full payload, only the shape.
		p.auditor.SecurityViolation(ci.IP, models.SecurityIdentifierIP, models.SecurityEventInvalidSignature,
			models.SecuritySeverityHigh, 0, map[string]interface{}{
				"order_ref":        n.OrderRef,
				"signature_length": len(n.Signature),
			})
		return Result{Outcome: OutcomeInvalidSignature, Reason: "invalid_signature"}
	}
	sc.SignatureVerified = true

	assessment, err := p.detector.Assess(ctx, ci.IP, n)
	if err != nil {
		log.Warnf("[Payment] suspicious activity check failed for %s, continuing: %v", ci.IP, err)
	}
	sc.RiskScore = assessment.RiskScore
	if assessment.AutoBlock {
		p.auditor.SecurityViolation(ci.IP, models.SecurityIdentifierIP, models.SecurityEventAutoBlocked,
			models.SecuritySeverityCritical, assessment.RiskScore, map[string]interface{}{
				"order_ref": n.OrderRef,
				"reasons":   assessment.Reasons,
			})
		return Result{Outcome: OutcomeBlocked, Reason: "auto_blocked"}
	}

	lock, err := p.locks.Acquire(ctx, n.OrderRef)
	if err != nil {
		log.Errorf("[Payment] lock acquire for %s failed: %v", n.OrderRef, err)
		return Result{Outcome: OutcomeInternalError, Reason: "lock_unavailable"}
	}
	if !lock.Acquired {
		p.auditor.SecurityViolation(ci.IP, models.SecurityIdentifierIP, models.SecurityEventLockContention,
			models.SecuritySeverityLow, 0, map[string]interface{}{"order_ref": n.OrderRef})
		return Result{Outcome: OutcomeConflict, Reason: "concurrent_processing"}
	}
	defer p.locks.Release(ctx, n.OrderRef, lock.LockID)

	return p.processLocked(ctx, n, ci, sc)
}

// processLocked holds the per-transaction lock for everything that touches
// transaction state.
func (p *Processor) processLocked(ctx context.Context, n Notification, ci ClientInfo, sc SecurityContext) Result {
	tx, err := p.transactions.GetByOrderRef(n.OrderRef)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			p.auditor.SecurityViolation(ci.IP, models.SecurityIdentifierIP, models.SecurityEventUnknownTransaction,
				models.SecuritySeverityMedium, sc.RiskScore, map[string]interface{}{"order_ref": n.OrderRef})
			return Result{Outcome: OutcomeNotFound, Reason: "unknown_transaction"}
		}
		log.Errorf("[Payment] transaction fetch for %s failed: %v", n.OrderRef, err)
		return Result{Outcome: OutcomeInternalError, Reason: "transaction_fetch_failed"}
	}

	// Expiry is checked with the lock held so two deliveries cannot both
	// observe "not yet expired".
	if tx.Status == models.TransactionStatusExpired {
		return Result{Outcome: OutcomeExpired, FinalStatus: tx.Status, Reason: "transaction_expired"}
	}
	if tx.Status == models.TransactionStatusPending && tx.IsExpired(time.Now()) {
		tx.Status = models.TransactionStatusExpired
		if err := p.transactions.Update(tx); err != nil {
			log.Errorf("[Payment] expiry persist for %s failed: %v", n.OrderRef, err)
			return Result{Outcome: OutcomeInternalError, Reason: "expiry_persist_failed"}
		}
		p.auditor.BestEffortEvent(tx.ID, models.EventTransactionExpired, sc, map[string]interface{}{
			"expired_at": tx.ExpiresAt,
		})
		return Result{Outcome: OutcomeExpired, FinalStatus: tx.Status, Reason: "transaction_expired"}
	}

	// Replay guard one: a terminal status means a previous delivery
	// already finished after releasing its lock.
	if tx.IsTerminal() {
		p.auditor.SecurityViolation(ci.IP, models.SecurityIdentifierIP, models.SecurityEventReplayDetected,
			models.SecuritySeverityMedium, sc.RiskScore, map[string]interface{}{
				"order_ref": n.OrderRef,
				"status":    tx.Status,
			})
		return Result{Outcome: OutcomeDuplicate, FinalStatus: tx.Status, Reason: "already_finalized"}
	}

	// Replay guard two: a "processed" audit record survives a crash that
	// happened between the side effect and the status write.
	processed, err := p.auditor.audit.HasEvent(tx.ID, models.EventPaymentProcessed)
	if err != nil {
		log.Errorf("[Payment] replay guard lookup for %s failed: %v", n.OrderRef, err)
		return Result{Outcome: OutcomeInternalError, Reason: "replay_guard_failed"}
	}
	if processed {
		p.auditor.SecurityViolation(ci.IP, models.SecurityIdentifierIP, models.SecurityEventReplayDetected,
			models.SecuritySeverityMedium, sc.RiskScore, map[string]interface{}{
				"order_ref": n.OrderRef,
				"guard":     "processed_audit_record",
			})
		return Result{Outcome: OutcomeDuplicate, FinalStatus: tx.Status, Reason: "already_processed"}
	}

	if n.GatewayTxID != "" && !numericIDPattern.MatchString(n.GatewayTxID) {
		p.auditor.SecurityViolation(ci.IP, models.SecurityIdentifierIP, models.SecurityEventMalformedRequest,
			models.SecuritySeverityMedium, sc.RiskScore, map[string]interface{}{
				"order_ref": n.OrderRef,
				"reason":    "gateway_tx_id_not_numeric",
			})
		return Result{Outcome: OutcomeMalformed, Reason: "gateway_tx_id_not_numeric"}
	}

	p.auditor.BestEffortEvent(tx.ID, models.EventProcessingStarted, sc, map[string]interface{}{
		"gateway_status": n.Status,
		"gateway_tx_id":  n.GatewayTxID,
	})

	next := TransitionFor(n.Status)
	if next == models.TransactionStatusCompleted {
		return p.complete(ctx, n, tx, sc)
	}

	tx.Status = models.TransactionStatusFailed
	tx.GatewayTxID = n.GatewayTxID
	if err := p.transactions.Update(tx); err != nil {
		log.Errorf("[Payment] failure persist for %s failed: %v", n.OrderRef, err)
		return Result{Outcome: OutcomeInternalError, Reason: "status_persist_failed"}
	}
	p.auditor.BestEffortEvent(tx.ID, models.EventPaymentFailed, sc, map[string]interface{}{
		"gateway_status": n.Status,
	})
	return Result{Outcome: OutcomeProcessed, FinalStatus: tx.Status, Reason: "payment_failed"}
}

// complete runs the side effect and persists the terminal status. The side
// effect goes first: a crash between the two leaves a "processed" record
// the replay guards catch, instead of a paid transaction whose listing
// could be published twice.
func (p *Processor) complete(ctx context.Context, n Notification, tx *models.PaymentTransaction, sc SecurityContext) Result {
	listingUUID, err := p.publisher.Publish(ctx, tx)
	if err != nil {
		// The gateway took the money but we could not publish. This is
		// persisted as failed with a distinct audit type so operators can
		// remediate manually instead of silently losing a paid ad.
		log.Errorf("[Payment] listing publish for %s failed: %v", n.OrderRef, err)
		p.auditor.BestEffortEvent(tx.ID, models.EventAdCreationFailed, sc, map[string]interface{}{
			"error": err.Error(),
		})
		tx.Status = models.TransactionStatusFailed
		tx.GatewayTxID = n.GatewayTxID
		if uerr := p.transactions.Update(tx); uerr != nil {
			log.Errorf("[Payment] failure persist for %s failed: %v", n.OrderRef, uerr)
			return Result{Outcome: OutcomeInternalError, Reason: "status_persist_failed"}
		}
		return Result{Outcome: OutcomeProcessed, FinalStatus: tx.Status, Reason: "ad_creation_failed"}
	}

	p.auditor.BestEffortEvent(tx.ID, models.EventAdCreated, sc, map[string]interface{}{
		"listing_uuid": listingUUID,
	})

	// The "processed" record must be durable before the status write: it
	// is the guard that keeps a retry after a crash from re-publishing.
	if err := p.auditor.Event(tx.ID, models.EventPaymentProcessed, sc, map[string]interface{}{
		"listing_uuid":  listingUUID,
		"gateway_tx_id": n.GatewayTxID,
	}); err != nil {
		log.Errorf("[Payment] processed record write for %s failed: %v", n.OrderRef, err)
		return Result{Outcome: OutcomeInternalError, Reason: "audit_persist_failed"}
	}

	now := time.Now()
	tx.Status = models.TransactionStatusCompleted
	tx.CompletedAt = &now
	tx.GatewayTxID = n.GatewayTxID
	if err := p.transactions.Update(tx); err != nil {
		log.Errorf("[Payment] completion persist for %s failed: %v", n.OrderRef, err)
		return Result{Outcome: OutcomeInternalError, Reason: "status_persist_failed"}
	}

	return Result{Outcome: OutcomeProcessed, FinalStatus: tx.Status, ListingUUID: listingUUID}
}

func envInt(key string, def int) int {
	raw := env.GetEnv(key, "")
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		log.Warnf("[Payment] invalid %s=%q, using default %d", key, raw, def)
		return def
	}
	return v
}
