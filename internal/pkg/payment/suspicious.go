package payment

import (
	"context"
	"regexp"
	"time"

	"github.com/kleinmarkt/KleinMarkt/app/models"
	"github.com/kleinmarkt/KleinMarkt/app/repository"
)

var numericIDPattern = regexp.MustCompile(`^[0-9]+$`)

// ActivityAssessment is the detector's verdict for one request.
type ActivityAssessment struct {
	RiskScore int      `json:"risk_score"`
	AutoBlock bool     `json:"auto_block"`
	Reasons   []string `json:"reasons,omitempty"`
}

// SuspiciousActivityDetector scores a request from the client's recent
// security-event history plus the shape of the current notification. A
// score at or above the block threshold forces a hard 403 before any
// transaction state is touched.
type SuspiciousActivityDetector struct {
	events         repository.SecurityEventRepository
	window         time.Duration
	blockThreshold int
}

// NewSuspiciousActivityDetector creates a detector over the security event
// history.
func NewSuspiciousActivityDetector(events repository.SecurityEventRepository, window time.Duration, blockThreshold int) *SuspiciousActivityDetector {
	if window <= 0 {
		window = time.Hour
	}
	if blockThreshold <= 0 {
		blockThreshold = 80
	}
	return &SuspiciousActivityDetector{events: events, window: window, blockThreshold: blockThreshold}
}

// Severity weights for historic events. Critical events dominate quickly.
var severityWeights = map[string]int{
	models.SecuritySeverityLow:      5,
	models.SecuritySeverityMedium:   10,
	models.SecuritySeverityHigh:     20,
	models.SecuritySeverityCritical: 40,
}

const historyScoreCap = 70

// Assess computes the risk score. A store error is returned alongside a
// zero assessment; callers fail open the same way the rate limiter does.
func (d *SuspiciousActivityDetector) Assess(ctx context.Context, clientIP string, n Notification) (ActivityAssessment, error) {
	_ = ctx
	a := ActivityAssessment{}

	recent, err := d.events.RecentByIdentifier(clientIP, time.Now().Add(-d.window), 50)
	if err != nil {
		return a, err
	}

	history := 0
	for _, ev := range recent {
		w, ok := severityWeights[ev.Severity]
		if !ok {
			w = severityWeights[models.SecuritySeverityLow]
		}
		history += w
	}
	if history > historyScoreCap {
		history = historyScoreCap
	}
	if history > 0 {
		a.Reasons = append(a.Reasons, "recent_security_events")
	}
	a.RiskScore += history

	if n.Signature == "" {
		a.RiskScore += 20
		a.Reasons = append(a.Reasons, "missing_signature")
	}
	if n.GatewayTxID != "" && !numericIDPattern.MatchString(n.GatewayTxID) {
		a.RiskScore += 10
		a.Reasons = append(a.Reasons, "malformed_gateway_tx_id")
	}
	if n.Status != GatewayStatusSuccess && n.Status != GatewayStatusPending {
		a.RiskScore += 5
		a.Reasons = append(a.Reasons, "unusual_status_code")
	}

	a.AutoBlock = a.RiskScore >= d.blockThreshold
	return a, nil
}
