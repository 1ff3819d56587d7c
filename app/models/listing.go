package models

import (
	"time"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

const (
	ListingStatusActive  = "active"
	ListingStatusRemoved = "removed"
)

// Listing is a published classified ad. Paid listings are created exactly
// once per payment transaction; the unique index on PaymentTransactionID is
// the database-level backstop for that guarantee.
type Listing struct {
	ID                   uint           `gorm:"primaryKey" json:"id"`
	UUID                 string         `gorm:"type:varchar(36);uniqueIndex;not null" json:"uuid"`
	UserID               uint           `gorm:"index;not null" json:"user_id"`
	PaymentTransactionID *uint          `gorm:"uniqueIndex;default:null" json:"payment_transaction_id,omitempty"`
	Title                string         `gorm:"type:varchar(150);not null" json:"title" validate:"required,min=3,max=150"`
	Description          string         `gorm:"type:text" json:"description" validate:"max=10000"`
	Category             string         `gorm:"type:varchar(80);index;not null" json:"category" validate:"required,max=80"`
	Price                int64          `gorm:"not null" json:"price" validate:"gte=0"`
	Currency             string         `gorm:"type:varchar(3);not null;default:'EUR'" json:"currency" validate:"required,len=3"`
	Status               string         `gorm:"type:varchar(20);not null;default:'active'" json:"status" validate:"oneof=active removed"`
	CreatedAt            time.Time      `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt            time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt            gorm.DeletedAt `gorm:"index" json:"-"`
}

func (l *Listing) Validate() error {
	v := validator.New()

	return v.Struct(l)
}
