package repository

import (
	"github.com/kleinmarkt/KleinMarkt/app/models"
	"gorm.io/gorm"
)

type transactionRepository struct {
	db *gorm.DB
}

// NewTransactionRepository creates a new transaction repository instance
func NewTransactionRepository(db *gorm.DB) TransactionRepository {
	return &transactionRepository{db: db}
}

func (r *transactionRepository) Create(tx *models.PaymentTransaction) error {
	return r.db.Create(tx).Error
}

func (r *transactionRepository) GetByOrderRef(orderRef string) (*models.PaymentTransaction, error) {
	var tx models.PaymentTransaction
	err := r.db.Where("order_ref = ?", orderRef).First(&tx).Error
	if err != nil {
		return nil, err
	}
	return &tx, nil
}

func (r *transactionRepository) Update(tx *models.PaymentTransaction) error {
	return r.db.Save(tx).Error
}

func (r *transactionRepository) List(offset, limit int) ([]models.PaymentTransaction, error) {
	var txs []models.PaymentTransaction
	err := r.db.Order("created_at DESC").Offset(offset).Limit(limit).Find(&txs).Error
	return txs, err
}

func (r *transactionRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.PaymentTransaction{}).Count(&count).Error
	return count, err
}

func (r *transactionRepository) CountByStatus(status string) (int64, error) {
	var count int64
	err := r.db.Model(&models.PaymentTransaction{}).Where("status = ?", status).Count(&count).Error
	return count, err
}
