package repository

import (
	"time"

	"github.com/kleinmarkt/KleinMarkt/app/models"
)

// TransactionRepository defines the interface for payment transaction database operations
type TransactionRepository interface {
	Create(tx *models.PaymentTransaction) error
	GetByOrderRef(orderRef string) (*models.PaymentTransaction, error)
	Update(tx *models.PaymentTransaction) error
	List(offset, limit int) ([]models.PaymentTransaction, error)
	Count() (int64, error)
	CountByStatus(status string) (int64, error)
}

// AuditLogRepository defines the interface for the append-only payment audit trail
type AuditLogRepository interface {
	Create(entry *models.PaymentAuditLog) error
	HasEvent(transactionID uint, eventType string) (bool, error)
	ListByTransactionID(transactionID uint, limit int) ([]models.PaymentAuditLog, error)
}

// SecurityEventRepository defines the interface for append-only security events
type SecurityEventRepository interface {
	Create(event *models.SecurityEvent) error
	CountSince(identifier, identifierType string, since time.Time) (int64, error)
	RecentByIdentifier(identifier string, since time.Time, limit int) ([]models.SecurityEvent, error)
}

// ListingRepository defines the interface for classified ad listings
type ListingRepository interface {
	Create(listing *models.Listing) error
	GetByUUID(uuid string) (*models.Listing, error)
	GetByTransactionID(transactionID uint) (*models.Listing, error)
	Count() (int64, error)
}

// UserRepository defines the interface for user-related database operations
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	GetByAPIKeyHash(hash string) (*models.User, error)
	Update(user *models.User) error
}
