package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/kleinmarkt/KleinMarkt/app/repository"
)

const auditTrailPageSize = 200

// HandleGetPaymentAudit returns the full forensic trail for one payment
// transaction: the ordered audit entries with their embedded security
// context snapshots.
func HandleGetPaymentAudit(c *fiber.Ctx) error {
	return getPaymentAudit(c, repository.GetGlobalFactory().GetRepositories())
}

func getPaymentAudit(c *fiber.Ctx, repos *repository.Repositories) error {
	tx, err := repos.Transaction.GetByOrderRef(c.Params("ref"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found"})
		}
		log.Errorf("[Audit] transaction lookup failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "lookup_failed"})
	}

	entries, err := repos.AuditLog.ListByTransactionID(tx.ID, auditTrailPageSize)
	if err != nil {
		log.Errorf("[Audit] trail fetch for tx %d failed: %v", tx.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "audit_fetch_failed"})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"order_ref": tx.OrderRef,
		"status":    tx.Status,
		"entries":   entries,
	})
}
