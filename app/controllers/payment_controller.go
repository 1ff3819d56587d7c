package controllers

import (
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kleinmarkt/KleinMarkt/app/models"
	"github.com/kleinmarkt/KleinMarkt/app/repository"
	"github.com/kleinmarkt/KleinMarkt/internal/pkg/env"
	"github.com/kleinmarkt/KleinMarkt/internal/pkg/middleware"
	"github.com/kleinmarkt/KleinMarkt/internal/pkg/payment"
)

// CreatePaymentRequest is the initiation payload for a paid listing.
type CreatePaymentRequest struct {
	Title       string `json:"title" validate:"required,min=3,max=150"`
	Description string `json:"description" validate:"max=10000"`
	Category    string `json:"category" validate:"required,max=80"`
	Price       int64  `json:"price" validate:"gte=0"`
	Currency    string `json:"currency" validate:"required,len=3"`
}

// HandleCreatePayment creates a pending transaction and returns the signed
// field set the client forwards to the gateway's checkout.
func HandleCreatePayment(c *fiber.Ctx) error {
	userID, ok := c.Locals(middleware.LocalsUserID).(uint)
	if !ok || userID == 0 {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	var req CreatePaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_payload"})
	}
	if err := validator.New().Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_payload", "message": err.Error()})
	}

	paymentData, err := json.Marshal(payment.AdPaymentData{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Price:       req.Price,
		Currency:    req.Currency,
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "payment_data_encode_failed"})
	}

	expiryMinutes, _ := strconv.Atoi(env.GetEnv("PAYMENT_EXPIRY_MINUTES", "30"))
	if expiryMinutes <= 0 {
		expiryMinutes = 30
	}

	clientIP := ClientIdentity(c)
	tx := &models.PaymentTransaction{
		OrderRef:          uuid.New().String(),
		UserID:            userID,
		Status:            models.TransactionStatusPending,
		Amount:            req.Price,
		Currency:          req.Currency,
		PaymentData:       models.JSON(paymentData),
		ClientFingerprint: models.ClientFingerprintFor(clientIP, string(c.Request().Header.UserAgent())),
		ExpiresAt:         time.Now().Add(time.Duration(expiryMinutes) * time.Minute),
	}

	repo := repository.GetGlobalFactory().GetTransactionRepository()
	if err := repo.Create(tx); err != nil {
		log.Errorf("[Payment] transaction create failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "transaction_create_failed"})
	}

	// Signed redirect parameters for the gateway checkout page.
	verifier := payment.NewSignatureVerifier(env.GetEnv("PAYMENT_GATEWAY_SECRET", ""))
	gatewayFields := map[string]string{
		payment.FieldOrderRef: tx.OrderRef,
		"amount":              strconv.FormatInt(tx.Amount, 10),
		"currency":            tx.Currency,
	}
	gatewayFields[payment.FieldSignature] = verifier.Sign(gatewayFields)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"order_ref":      tx.OrderRef,
		"status":         tx.Status,
		"expires_at":     tx.ExpiresAt,
		"gateway_fields": gatewayFields,
	})
}

// HandleGetPayment returns the current state of one of the caller's
// transactions.
func HandleGetPayment(c *fiber.Ctx) error {
	userID, ok := c.Locals(middleware.LocalsUserID).(uint)
	if !ok || userID == 0 {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	repo := repository.GetGlobalFactory().GetTransactionRepository()
	tx, err := repo.GetByOrderRef(c.Params("ref"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found"})
		}
		log.Errorf("[Payment] transaction lookup failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "lookup_failed"})
	}
	if tx.UserID != userID {
		isAdmin, _ := c.Locals(middleware.LocalsIsAdmin).(bool)
		if !isAdmin {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found"})
		}
	}

	return c.Status(fiber.StatusOK).JSON(tx)
}
