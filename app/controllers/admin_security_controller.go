package controllers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/kleinmarkt/KleinMarkt/app/models"
	"github.com/kleinmarkt/KleinMarkt/app/repository"
)

const (
	securityEventWindow   = 24 * time.Hour
	securityEventPageSize = 100
)

// HandleGetSecurityEvents returns the recent security history of one client
// identifier (IP by default), the view an operator checks when deciding
// whether an auto-block was justified. Admin only.
func HandleGetSecurityEvents(c *fiber.Ctx) error {
	return listSecurityEvents(c, repository.GetGlobalFactory().GetRepositories())
}

func listSecurityEvents(c *fiber.Ctx, repos *repository.Repositories) error {
	identifier := c.Params("identifier")
	identifierType := c.Query("type", models.SecurityIdentifierIP)
	since := time.Now().Add(-securityEventWindow)

	count, err := repos.SecurityEvent.CountSince(identifier, identifierType, since)
	if err != nil {
		log.Errorf("[Admin] security event count for %s failed: %v", identifier, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "lookup_failed"})
	}

	events, err := repos.SecurityEvent.RecentByIdentifier(identifier, since, securityEventPageSize)
	if err != nil {
		log.Errorf("[Admin] security event fetch for %s failed: %v", identifier, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "lookup_failed"})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"identifier":      identifier,
		"identifier_type": identifierType,
		"window_hours":    int(securityEventWindow.Hours()),
		"count":           count,
		"events":          events,
	})
}
