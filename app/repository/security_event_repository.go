package repository

import (
	"time"

	"github.com/kleinmarkt/KleinMarkt/app/models"
	"gorm.io/gorm"
)

type securityEventRepository struct {
	db *gorm.DB
}

// NewSecurityEventRepository creates a new security event repository instance
func NewSecurityEventRepository(db *gorm.DB) SecurityEventRepository {
	return &securityEventRepository{db: db}
}

func (r *securityEventRepository) Create(event *models.SecurityEvent) error {
	return r.db.Create(event).Error
}

func (r *securityEventRepository) CountSince(identifier, identifierType string, since time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&models.SecurityEvent{}).
		Where("identifier = ? AND identifier_type = ? AND created_at >= ?", identifier, identifierType, since).
		Count(&count).Error
	return count, err
}

func (r *securityEventRepository) RecentByIdentifier(identifier string, since time.Time, limit int) ([]models.SecurityEvent, error) {
	var events []models.SecurityEvent
	err := r.db.Where("identifier = ? AND created_at >= ?", identifier, since).
		Order("created_at DESC").Limit(limit).Find(&events).Error
	return events, err
}
