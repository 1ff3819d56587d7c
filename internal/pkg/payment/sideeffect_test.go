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

func pendingTx(id uint, paymentData string) *models.PaymentTransaction {
	return &models.PaymentTransaction{
		ID:          id,
		OrderRef:    "order-abc",
		UserID:      7,
		Status:      models.TransactionStatusPending,
		Amount:      12500,
		Currency:    "EUR",
		PaymentData: models.JSON(paymentData),
		ExpiresAt:   time.Now().Add(30 * time.Minute),
	}
}

func TestPublishCreatesListing(t *testing.T) {
	t.Parallel()
	repo := &fakeListingRepo{}
	p := NewListingPublisher(repo)

	uuid, err := p.Publish(context.Background(), pendingTx(42, validAdData))
	require.NoError(t, err)
	require.NotEmpty(t, uuid)

	listing, err := repo.GetByTransactionID(42)
	require.NoError(t, err)
	assert.Equal(t, uuid, listing.UUID)
	assert.Equal(t, uint(7), listing.UserID)
	assert.Equal(t, "Vintage road bike", listing.Title)
	assert.Equal(t, "sports", listing.Category)
	assert.Equal(t, int64(12500), listing.Price)
	assert.Equal(t, models.ListingStatusActive, listing.Status)
	require.NotNil(t, listing.PaymentTransactionID)
	assert.Equal(t, uint(42), *listing.PaymentTransactionID)
}

func TestPublishRejectsBadPaymentData(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		data string
	}{
		{"empty payload", ""},
		{"not json", "title=Bike"},
		{"missing title", `{"category":"sports","price":100,"currency":"EUR"}`},
		{"title too short", `{"title":"ab","category":"sports","price":100,"currency":"EUR"}`},
		{"missing category", `{"title":"Vintage bike","price":100,"currency":"EUR"}`},
		{"bad currency", `{"title":"Vintage bike","category":"sports","price":100,"currency":"EURO"}`},
		{"negative price", `{"title":"Vintage bike","category":"sports","price":-1,"currency":"EUR"}`},
		{"price over ceiling", `{"title":"Vintage bike","category":"sports","price":100000001,"currency":"EUR"}`},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			repo := &fakeListingRepo{}
			p := NewListingPublisher(repo)

			_, err := p.Publish(context.Background(), pendingTx(1, tc.data))
			require.Error(t, err)
			count, _ := repo.Count()
			assert.Equal(t, int64(0), count)
		})
	}
}

func TestPublishDuplicateTransactionFails(t *testing.T) {
	t.Parallel()
	repo := &fakeListingRepo{}
	p := NewListingPublisher(repo)
	tx := pendingTx(42, validAdData)

	_, err := p.Publish(context.Background(), tx)
	require.NoError(t, err)

	// The unique index on the transaction id is the last line of defense;
	// a second publish for the same transaction must not create a second ad.
	_, err = p.Publish(context.Background(), tx)
	require.Error(t, err)
	count, _ := repo.Count()
	assert.Equal(t, int64(1), count)
}

func TestPublishPropagatesStoreError(t *testing.T) {
	t.Parallel()
	repo := &fakeListingRepo{createErr: errors.New("mysql: connection lost")}
	p := NewListingPublisher(repo)

	_, err := p.Publish(context.Background(), pendingTx(1, validAdData))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "listing create failed")
}
