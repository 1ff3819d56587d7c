package controllers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/kleinmarkt/KleinMarkt/app/models"
	"github.com/kleinmarkt/KleinMarkt/app/repository"
)

const paymentPageSize = 50

// HandleListPayments returns a page of transactions plus totals per status,
// newest first. Admin only.
func HandleListPayments(c *fiber.Ctx) error {
	return listPayments(c, repository.GetGlobalFactory().GetRepositories())
}

func listPayments(c *fiber.Ctx, repos *repository.Repositories) error {
	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}

	total, err := repos.Transaction.Count()
	if err != nil {
		log.Errorf("[Admin] transaction count failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "lookup_failed"})
	}

	byStatus := fiber.Map{}
	for _, status := range []string{
		models.TransactionStatusPending,
		models.TransactionStatusCompleted,
		models.TransactionStatusFailed,
		models.TransactionStatusExpired,
	} {
		n, err := repos.Transaction.CountByStatus(status)
		if err != nil {
			log.Errorf("[Admin] transaction count for status %s failed: %v", status, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "lookup_failed"})
		}
		byStatus[status] = n
	}

	txs, err := repos.Transaction.List((page-1)*paymentPageSize, paymentPageSize)
	if err != nil {
		log.Errorf("[Admin] transaction list failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "lookup_failed"})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"total":        total,
		"by_status":    byStatus,
		"page":         page,
		"page_size":    paymentPageSize,
		"transactions": txs,
	})
}
