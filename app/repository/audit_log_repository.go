package repository

import (
	"github.com/kleinmarkt/KleinMarkt/app/models"
	"gorm.io/gorm"
)

type auditLogRepository struct {
	db *gorm.DB
}

// NewAuditLogRepository creates a new audit log repository instance
func NewAuditLogRepository(db *gorm.DB) AuditLogRepository {
	return &auditLogRepository{db: db}
}

func (r *auditLogRepository) Create(entry *models.PaymentAuditLog) error {
	return r.db.Create(entry).Error
}

func (r *auditLogRepository) HasEvent(transactionID uint, eventType string) (bool, error) {
	var count int64
	err := r.db.Model(&models.PaymentAuditLog{}).
		Where("transaction_id = ? AND event_type = ?", transactionID, eventType).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *auditLogRepository) ListByTransactionID(transactionID uint, limit int) ([]models.PaymentAuditLog, error) {
	var entries []models.PaymentAuditLog
	err := r.db.Where("transaction_id = ?", transactionID).
		Order("created_at ASC").Limit(limit).Find(&entries).Error
	return entries, err
}
