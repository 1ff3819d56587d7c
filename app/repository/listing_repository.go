package repository

import (
	"github.com/kleinmarkt/KleinMarkt/app/models"
	"gorm.io/gorm"
)

type listingRepository struct {
	db *gorm.DB
}

// NewListingRepository creates a new listing repository instance
func NewListingRepository(db *gorm.DB) ListingRepository {
	return &listingRepository{db: db}
}

func (r *listingRepository) Create(listing *models.Listing) error {
	return r.db.Create(listing).Error
}

func (r *listingRepository) GetByUUID(uuid string) (*models.Listing, error) {
	var listing models.Listing
	err := r.db.Where("uuid = ?", uuid).First(&listing).Error
	if err != nil {
		return nil, err
	}
	return &listing, nil
}

func (r *listingRepository) GetByTransactionID(transactionID uint) (*models.Listing, error) {
	var listing models.Listing
	err := r.db.Where("payment_transaction_id = ?", transactionID).First(&listing).Error
	if err != nil {
		return nil, err
	}
	return &listing, nil
}

func (r *listingRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.Listing{}).Count(&count).Error
	return count, err
}
