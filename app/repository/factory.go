package repository

import (
	"sync"

	"gorm.io/gorm"
)

// Repositories bundles all repository implementations.
type Repositories struct {
	Transaction   TransactionRepository
	AuditLog      AuditLogRepository
	SecurityEvent SecurityEventRepository
	Listing       ListingRepository
	User          UserRepository
}

// NewRepositories creates all GORM-backed repositories from one DB handle.
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Transaction:   NewTransactionRepository(db),
		AuditLog:      NewAuditLogRepository(db),
		SecurityEvent: NewSecurityEventRepository(db),
		Listing:       NewListingRepository(db),
		User:          NewUserRepository(db),
	}
}

// Factory manages repository instances and ensures they are singletons
type Factory struct {
	db    *gorm.DB
	repos *Repositories
	once  sync.Once
}

// NewFactory creates a new repository factory
func NewFactory(db *gorm.DB) *Factory {
	return &Factory{
		db: db,
	}
}

// GetRepositories returns a singleton instance of all repositories
func (f *Factory) GetRepositories() *Repositories {
	f.once.Do(func() {
		f.repos = NewRepositories(f.db)
	})
	return f.repos
}

// GetTransactionRepository returns the payment transaction repository instance
func (f *Factory) GetTransactionRepository() TransactionRepository {
	return f.GetRepositories().Transaction
}

// GetAuditLogRepository returns the audit log repository instance
func (f *Factory) GetAuditLogRepository() AuditLogRepository {
	return f.GetRepositories().AuditLog
}

// GetSecurityEventRepository returns the security event repository instance
func (f *Factory) GetSecurityEventRepository() SecurityEventRepository {
	return f.GetRepositories().SecurityEvent
}

// GetListingRepository returns the listing repository instance
func (f *Factory) GetListingRepository() ListingRepository {
	return f.GetRepositories().Listing
}

// GetUserRepository returns the user repository instance
func (f *Factory) GetUserRepository() UserRepository {
	return f.GetRepositories().User
}

// Global factory instance
var globalFactory *Factory
var factoryOnce sync.Once

// InitializeFactory initializes the global repository factory
func InitializeFactory(db *gorm.DB) {
	factoryOnce.Do(func() {
		globalFactory = NewFactory(db)
	})
}

// GetGlobalFactory returns the global repository factory
func GetGlobalFactory() *Factory {
	if globalFactory == nil {
		panic("repository factory not initialized - call InitializeFactory first")
	}
	return globalFactory
}
