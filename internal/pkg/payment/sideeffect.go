package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/kleinmarkt/KleinMarkt/app/models"
	"github.com/kleinmarkt/KleinMarkt/app/repository"
)

// Price ceiling in minor units for a single paid listing. Values above this
// are a data corruption or tampering signal, not a real ad.
const maxListingPrice = 100_000_000

// AdPaymentData is the structured payload captured at payment initiation.
// It holds everything needed to publish the paid listing.
type AdPaymentData struct {
	Title       string `json:"title" validate:"required,min=3,max=150"`
	Description string `json:"description" validate:"max=10000"`
	Category    string `json:"category" validate:"required,max=80"`
	Price       int64  `json:"price" validate:"gte=0"`
	Currency    string `json:"currency" validate:"required,len=3"`
}

// ListingPublisher performs the one-time side effect of a completed
// payment: publishing the paid-for classified ad.
type ListingPublisher struct {
	listings repository.ListingRepository
	validate *validator.Validate
}

// NewListingPublisher creates the side-effect processor.
func NewListingPublisher(listings repository.ListingRepository) *ListingPublisher {
	return &ListingPublisher{
		listings: listings,
		validate: validator.New(),
	}
}

// Publish validates the captured payment data and creates the listing.
// Returns the new listing's UUID. The unique index on the transaction id
// makes a duplicate publish fail at the database even if every in-process
// guard were bypassed.
func (p *ListingPublisher) Publish(ctx context.Context, tx *models.PaymentTransaction) (string, error) {
	_ = ctx
	if len(tx.PaymentData) == 0 {
		return "", errors.New("payment data is empty")
	}

	var data AdPaymentData
	if err := json.Unmarshal(tx.PaymentData, &data); err != nil {
		return "", fmt.Errorf("payment data is not valid JSON: %w", err)
	}
	if err := p.validate.Struct(&data); err != nil {
		return "", fmt.Errorf("payment data incomplete: %w", err)
	}
	if data.Price > maxListingPrice {
		return "", fmt.Errorf("listing price %d out of bounds", data.Price)
	}

	txID := tx.ID
	listing := &models.Listing{
		UUID:                 uuid.New().String(),
		UserID:               tx.UserID,
		PaymentTransactionID: &txID,
		Title:                data.Title,
		Description:          data.Description,
		Category:             data.Category,
		Price:                data.Price,
		Currency:             data.Currency,
		Status:               models.ListingStatusActive,
	}
	if err := p.listings.Create(listing); err != nil {
		return "", fmt.Errorf("listing create failed: %w", err)
	}
	return listing.UUID, nil
}
