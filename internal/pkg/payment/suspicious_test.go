package payment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kleinmarkt/KleinMarkt/app/models"
)

func seedSecurityEvents(repo *fakeSecurityRepo, identifier, severity string, count int) {
	for i := 0; i < count; i++ {
		_ = repo.Create(&models.SecurityEvent{
			Identifier:     identifier,
			IdentifierType: models.SecurityIdentifierIP,
			EventType:      models.SecurityEventInvalidSignature,
			Severity:       severity,
		})
	}
}

func TestAssessCleanRequest(t *testing.T) {
	t.Parallel()
	d := NewSuspiciousActivityDetector(&fakeSecurityRepo{}, time.Hour, 80)

	n := Notification{Status: GatewayStatusSuccess, GatewayTxID: "12345", Signature: "abc"}
	a, err := d.Assess(context.Background(), "198.51.100.7", n)

	require.NoError(t, err)
	assert.Equal(t, 0, a.RiskScore)
	assert.False(t, a.AutoBlock)
	assert.Empty(t, a.Reasons)
}

func TestAssessScoresNotificationShape(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name      string
		n         Notification
		wantScore int
		wantWhy   string
	}{
		{
			name:      "missing signature",
			n:         Notification{Status: GatewayStatusSuccess, GatewayTxID: "12345"},
			wantScore: 20,
			wantWhy:   "missing_signature",
		},
		{
			name:      "non-numeric gateway tx id",
			n:         Notification{Status: GatewayStatusSuccess, GatewayTxID: "12a45", Signature: "abc"},
			wantScore: 10,
			wantWhy:   "malformed_gateway_tx_id",
		},
		{
			name:      "unknown status code",
			n:         Notification{Status: "99", GatewayTxID: "12345", Signature: "abc"},
			wantScore: 5,
			wantWhy:   "unusual_status_code",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			d := NewSuspiciousActivityDetector(&fakeSecurityRepo{}, time.Hour, 80)
			a, err := d.Assess(context.Background(), "198.51.100.7", tc.n)
			require.NoError(t, err)
			assert.Equal(t, tc.wantScore, a.RiskScore)
			assert.Contains(t, a.Reasons, tc.wantWhy)
			assert.False(t, a.AutoBlock)
		})
	}
}

func TestAssessWeighsEventHistory(t *testing.T) {
	t.Parallel()
	repo := &fakeSecurityRepo{}
	seedSecurityEvents(repo, "198.51.100.7", models.SecuritySeverityMedium, 2)
	seedSecurityEvents(repo, "203.0.113.9", models.SecuritySeverityCritical, 5) // different client

	d := NewSuspiciousActivityDetector(repo, time.Hour, 80)
	n := Notification{Status: GatewayStatusSuccess, GatewayTxID: "12345", Signature: "abc"}

	a, err := d.Assess(context.Background(), "198.51.100.7", n)
	require.NoError(t, err)
	assert.Equal(t, 20, a.RiskScore)
	assert.Contains(t, a.Reasons, "recent_security_events")
}

func TestAssessHistoryScoreIsCapped(t *testing.T) {
	t.Parallel()
	repo := &fakeSecurityRepo{}
	seedSecurityEvents(repo, "198.51.100.7", models.SecuritySeverityCritical, 10)

	d := NewSuspiciousActivityDetector(repo, time.Hour, 80)
	n := Notification{Status: GatewayStatusSuccess, GatewayTxID: "12345", Signature: "abc"}

	a, err := d.Assess(context.Background(), "198.51.100.7", n)
	require.NoError(t, err)
	assert.Equal(t, historyScoreCap, a.RiskScore)
	assert.False(t, a.AutoBlock, "history alone stays below the default threshold")
}

func TestAssessAutoBlockAtThreshold(t *testing.T) {
	t.Parallel()
	repo := &fakeSecurityRepo{}
	seedSecurityEvents(repo, "198.51.100.7", models.SecuritySeverityCritical, 2)

	d := NewSuspiciousActivityDetector(repo, time.Hour, 80)
	// History at the cap is not enough on its own; a malformed notification
	// on top of a bad history pushes past the threshold.
	n := Notification{Status: "99", GatewayTxID: "12a45"}

	a, err := d.Assess(context.Background(), "198.51.100.7", n)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, a.RiskScore, 80)
	assert.True(t, a.AutoBlock)
}

func TestAssessStoreErrorReturnsZeroAssessment(t *testing.T) {
	t.Parallel()
	repo := &fakeSecurityRepo{err: errors.New("mysql: connection lost")}
	d := NewSuspiciousActivityDetector(repo, time.Hour, 80)

	a, err := d.Assess(context.Background(), "198.51.100.7", Notification{Status: GatewayStatusSuccess, Signature: "abc"})
	require.Error(t, err)
	assert.Equal(t, 0, a.RiskScore)
	assert.False(t, a.AutoBlock)
}
