package payment

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/kleinmarkt/KleinMarkt/app/models"
)

// In-memory fakes for the repository and coordination interfaces, used by
// the processor tests.

type fakeTransactionRepo struct {
	byRef     map[string]*models.PaymentTransaction
	nextID    uint
	updateErr error
	updates   int
}

func newFakeTransactionRepo() *fakeTransactionRepo {
	return &fakeTransactionRepo{byRef: make(map[string]*models.PaymentTransaction), nextID: 1}
}

func (r *fakeTransactionRepo) Create(tx *models.PaymentTransaction) error {
	tx.ID = r.nextID
	r.nextID++
	cp := *tx
	r.byRef[tx.OrderRef] = &cp
	return nil
}

func (r *fakeTransactionRepo) GetByOrderRef(orderRef string) (*models.PaymentTransaction, error) {
	tx, ok := r.byRef[orderRef]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *tx
	return &cp, nil
}

func (r *fakeTransactionRepo) Update(tx *models.PaymentTransaction) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	r.updates++
	cp := *tx
	r.byRef[tx.OrderRef] = &cp
	return nil
}

func (r *fakeTransactionRepo) List(offset, limit int) ([]models.PaymentTransaction, error) {
	return nil, nil
}

func (r *fakeTransactionRepo) Count() (int64, error) {
	return int64(len(r.byRef)), nil
}

func (r *fakeTransactionRepo) CountByStatus(status string) (int64, error) {
	var n int64
	for _, tx := range r.byRef {
		if tx.Status == status {
			n++
		}
	}
	return n, nil
}

type fakeAuditRepo struct {
	entries   []models.PaymentAuditLog
	createErr error
}

func (r *fakeAuditRepo) Create(entry *models.PaymentAuditLog) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *fakeAuditRepo) HasEvent(transactionID uint, eventType string) (bool, error) {
	for _, e := range r.entries {
		if e.TransactionID == transactionID && e.EventType == eventType {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeAuditRepo) ListByTransactionID(transactionID uint, limit int) ([]models.PaymentAuditLog, error) {
	var out []models.PaymentAuditLog
	for _, e := range r.entries {
		if e.TransactionID == transactionID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *fakeAuditRepo) countEvents(transactionID uint, eventType string) int {
	n := 0
	for _, e := range r.entries {
		if e.TransactionID == transactionID && e.EventType == eventType {
			n++
		}
	}
	return n
}

type fakeSecurityRepo struct {
	events []models.SecurityEvent
	err    error
}

func (r *fakeSecurityRepo) Create(event *models.SecurityEvent) error {
	if r.err != nil {
		return r.err
	}
	ev := *event
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now()
	}
	r.events = append(r.events, ev)
	return nil
}

func (r *fakeSecurityRepo) CountSince(identifier, identifierType string, since time.Time) (int64, error) {
	if r.err != nil {
		return 0, r.err
	}
	var n int64
	for _, e := range r.events {
		if e.Identifier == identifier && e.IdentifierType == identifierType && !e.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

func (r *fakeSecurityRepo) RecentByIdentifier(identifier string, since time.Time, limit int) ([]models.SecurityEvent, error) {
	if r.err != nil {
		return nil, r.err
	}
	var out []models.SecurityEvent
	for _, e := range r.events {
		if e.Identifier == identifier && !e.CreatedAt.Before(since) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *fakeSecurityRepo) hasEventType(eventType string) bool {
	for _, e := range r.events {
		if e.EventType == eventType {
			return true
		}
	}
	return false
}

type fakeListingRepo struct {
	listings  []models.Listing
	createErr error
}

func (r *fakeListingRepo) Create(listing *models.Listing) error {
	if r.createErr != nil {
		return r.createErr
	}
	if listing.PaymentTransactionID != nil {
		for _, l := range r.listings {
			if l.PaymentTransactionID != nil && *l.PaymentTransactionID == *listing.PaymentTransactionID {
				return fmt.Errorf("duplicate entry for payment transaction %d", *listing.PaymentTransactionID)
			}
		}
	}
	r.listings = append(r.listings, *listing)
	return nil
}

func (r *fakeListingRepo) GetByUUID(uuid string) (*models.Listing, error) {
	for _, l := range r.listings {
		if l.UUID == uuid {
			cp := l
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeListingRepo) GetByTransactionID(transactionID uint) (*models.Listing, error) {
	for _, l := range r.listings {
		if l.PaymentTransactionID != nil && *l.PaymentTransactionID == transactionID {
			cp := l
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeListingRepo) Count() (int64, error) {
	return int64(len(r.listings)), nil
}

type fakeLockManager struct {
	held     map[string]string
	acquires int
	releases int
	fail     bool
	err      error
}

func newFakeLockManager() *fakeLockManager {
	return &fakeLockManager{held: make(map[string]string)}
}

func (m *fakeLockManager) Acquire(ctx context.Context, orderRef string) (LockResult, error) {
	if m.err != nil {
		return LockResult{}, m.err
	}
	if m.fail {
		return LockResult{Acquired: false}, nil
	}
	if _, taken := m.held[orderRef]; taken {
		return LockResult{Acquired: false}, nil
	}
	m.acquires++
	id := fmt.Sprintf("lock-%d", m.acquires)
	m.held[orderRef] = id
	return LockResult{Acquired: true, LockID: id}, nil
}

func (m *fakeLockManager) Release(ctx context.Context, orderRef, lockID string) {
	if m.held[orderRef] == lockID {
		delete(m.held, orderRef)
		m.releases++
	}
}

type fakeRateLimiter struct {
	allowed bool
	count   int64
	err     error
}

func (l *fakeRateLimiter) Allow(ctx context.Context, identity, action string) (RateLimitResult, error) {
	if l.err != nil {
		return RateLimitResult{Allowed: true}, l.err
	}
	l.count++
	return RateLimitResult{Allowed: l.allowed, CurrentCount: l.count, ResetTime: time.Now().Add(time.Minute)}, nil
}
